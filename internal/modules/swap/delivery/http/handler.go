package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swapDto "github.com/raunak23427/mutual-skill-sync/internal/modules/swap/dto"
	swap "github.com/raunak23427/mutual-skill-sync/internal/modules/swap/service"
	commonDto "github.com/raunak23427/mutual-skill-sync/pkg/dto"
	"github.com/raunak23427/mutual-skill-sync/pkg/ratelimiter"
	"github.com/raunak23427/mutual-skill-sync/pkg/response"
	"github.com/raunak23427/mutual-skill-sync/pkg/validator"
)

type SwapHandler struct {
	swapService swap.SwapService
}

func NewSwapHandler(swapService swap.SwapService) *SwapHandler {
	return &SwapHandler{
		swapService: swapService,
	}
}

func (h *SwapHandler) CreateSwap(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req swapDto.CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.swapService.CreateSwap(c.Request.Context(), profileID, req)
	if err != nil {
		var rateLimitErr *ratelimiter.RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": rateLimitErr.Message})
			return
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (h *SwapHandler) ListIncoming(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	swaps, err := h.swapService.ListIncoming(c.Request.Context(), profileID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": swaps})
}

func (h *SwapHandler) ListOutgoing(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	swaps, err := h.swapService.ListOutgoing(c.Request.Context(), profileID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": swaps})
}

func (h *SwapHandler) ListCompleted(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	swaps, err := h.swapService.ListCompleted(c.Request.Context(), profileID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": swaps})
}

func (h *SwapHandler) Accept(c *gin.Context) {
	h.transition(c, h.swapService.Accept)
}

func (h *SwapHandler) Reject(c *gin.Context) {
	h.transition(c, h.swapService.Reject)
}

func (h *SwapHandler) Complete(c *gin.Context) {
	h.transition(c, h.swapService.Complete)
}

type transitionFunc func(ctx context.Context, profileID, swapID uuid.UUID) (*swapDto.SwapResponse, error)

func (h *SwapHandler) transition(c *gin.Context, fn transitionFunc) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req commonDto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := fn(c.Request.Context(), profileID, uuid.MustParse(req.ID))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *SwapHandler) Delete(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req commonDto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.swapService.Delete(c.Request.Context(), profileID, uuid.MustParse(req.ID)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "swap request deleted"})
}
