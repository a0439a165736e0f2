package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	feedbackDto "github.com/raunak23427/mutual-skill-sync/internal/modules/feedback/dto"
	feedback "github.com/raunak23427/mutual-skill-sync/internal/modules/feedback/service"
	commonDto "github.com/raunak23427/mutual-skill-sync/pkg/dto"
	"github.com/raunak23427/mutual-skill-sync/pkg/response"
	"github.com/raunak23427/mutual-skill-sync/pkg/validator"
)

type FeedbackHandler struct {
	feedbackService feedback.FeedbackService
}

func NewFeedbackHandler(feedbackService feedback.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
	}
}

func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req feedbackDto.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.feedbackService.CreateFeedback(c.Request.Context(), profileID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (h *FeedbackHandler) ListReceived(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.feedbackService.ListReceived(c.Request.Context(), profileID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *FeedbackHandler) MySummary(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	summary, err := h.feedbackService.MySummary(c.Request.Context(), profileID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (h *FeedbackHandler) ProfileSummary(c *gin.Context) {
	viewerID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req commonDto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	summary, err := h.feedbackService.PublicSummary(c.Request.Context(), viewerID, uuid.MustParse(req.ID))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
