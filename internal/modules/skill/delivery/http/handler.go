package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	skillDto "github.com/raunak23427/mutual-skill-sync/internal/modules/skill/dto"
	skill "github.com/raunak23427/mutual-skill-sync/internal/modules/skill/service"
	commonDto "github.com/raunak23427/mutual-skill-sync/pkg/dto"
	"github.com/raunak23427/mutual-skill-sync/pkg/response"
	"github.com/raunak23427/mutual-skill-sync/pkg/validator"
)

type SkillHandler struct {
	skillService skill.SkillService
}

func NewSkillHandler(skillService skill.SkillService) *SkillHandler {
	return &SkillHandler{
		skillService: skillService,
	}
}

func (h *SkillHandler) ListApproved(c *gin.Context) {
	skills, err := h.skillService.ListApproved(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": skills})
}

func (h *SkillHandler) ListCategories(c *gin.Context) {
	categories, err := h.skillService.ListCategories(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (h *SkillHandler) ListOffered(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	offered, err := h.skillService.ListOffered(c.Request.Context(), profileID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": offered})
}

func (h *SkillHandler) AddOffered(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req skillDto.AddOfferedSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	offered, err := h.skillService.AddOffered(c.Request.Context(), profileID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": offered})
}

func (h *SkillHandler) RemoveOffered(c *gin.Context) {
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

	if err := h.skillService.RemoveOffered(c.Request.Context(), profileID, uuid.MustParse(req.ID)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "offered skill removed"})
}

func (h *SkillHandler) ListWanted(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	wanted, err := h.skillService.ListWanted(c.Request.Context(), profileID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": wanted})
}

func (h *SkillHandler) AddWanted(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req skillDto.AddWantedSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	wanted, err := h.skillService.AddWanted(c.Request.Context(), profileID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": wanted})
}

func (h *SkillHandler) RemoveWanted(c *gin.Context) {
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

	if err := h.skillService.RemoveWanted(c.Request.Context(), profileID, uuid.MustParse(req.ID)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "wanted skill removed"})
}
