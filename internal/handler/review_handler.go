package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"paperbridge/internal/service"
)

// ReviewHandler handles human review of extractions.
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

type reviewRequest struct {
	UpdatedData json.RawMessage `json:"updated_data" binding:"required"`
	EditedBy    string          `json:"edited_by" binding:"required"`
}

// SubmitReview handles POST /api/v1/extractions/:id/review
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	extractionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "updated_data and edited_by are required")
		return
	}

	ex, err := h.reviewService.SubmitReview(c.Request.Context(), &service.SubmitReviewInput{
		ExtractionID: extractionID,
		UpdatedData:  req.UpdatedData,
		EditedBy:     req.EditedBy,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ex)
}

// ListEdits handles GET /api/v1/extractions/:id/edits
func (h *ReviewHandler) ListEdits(c *gin.Context) {
	extractionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	edits, err := h.reviewService.ListEdits(c.Request.Context(), extractionID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, edits)
}

// GetLatestExtraction handles GET /api/v1/documents/:id/extraction
func (h *ReviewHandler) GetLatestExtraction(c *gin.Context) {
	documentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	ex, err := h.reviewService.GetLatestByDocument(c.Request.Context(), documentID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ex)
}
