package handler

import (
	"github.com/gin-gonic/gin"

	"paperbridge/internal/domain"
	"paperbridge/internal/service"
)

// JobHandler handles job trigger and polling endpoints.
type JobHandler struct {
	jobService service.JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobService service.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// TriggerExtract handles POST /api/v1/documents/:id/extract
func (h *JobHandler) TriggerExtract(c *gin.Context) {
	h.trigger(c, domain.TaskTypeExtract)
}

// TriggerEmbed handles POST /api/v1/documents/:id/embed
func (h *JobHandler) TriggerEmbed(c *gin.Context) {
	h.trigger(c, domain.TaskTypeEmbed)
}

// TriggerPipeline handles POST /api/v1/documents/:id/pipeline
func (h *JobHandler) TriggerPipeline(c *gin.Context) {
	h.trigger(c, domain.TaskTypePipeline)
}

func (h *JobHandler) trigger(c *gin.Context, taskType domain.TaskType) {
	docID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	job, err := h.jobService.Trigger(c.Request.Context(), docID, taskType)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, job)
}

// GetByID handles GET /api/v1/jobs/:id
func (h *JobHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	job, err := h.jobService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, job)
}
