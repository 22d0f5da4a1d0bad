package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"paperbridge/internal/service"
)

// AskHandler handles the retrieval-augmented question endpoint.
type AskHandler struct {
	askService service.AskService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(askService service.AskService) *AskHandler {
	return &AskHandler{askService: askService}
}

type askRequest struct {
	Question    string   `json:"question" binding:"required"`
	TopK        int      `json:"top_k"`
	DocumentIDs []string `json:"document_ids"`
}

// Ask handles POST /api/v1/ask
func (h *AskHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "question is required")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "question must not be empty")
		return
	}

	docIDs := make([]uuid.UUID, 0, len(req.DocumentIDs))
	for _, raw := range req.DocumentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document id: "+raw)
			return
		}
		docIDs = append(docIDs, id)
	}

	answer, err := h.askService.Ask(c.Request.Context(), &service.AskInput{
		Question:    strings.TrimSpace(req.Question),
		TopK:        req.TopK,
		DocumentIDs: docIDs,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, answer)
}
