package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	adminDto "github.com/raunak23427/mutual-skill-sync/internal/modules/admin/dto"
	admin "github.com/raunak23427/mutual-skill-sync/internal/modules/admin/service"
	commonDto "github.com/raunak23427/mutual-skill-sync/pkg/dto"
	"github.com/raunak23427/mutual-skill-sync/pkg/response"
	"github.com/raunak23427/mutual-skill-sync/pkg/validator"
)

type AdminHandler struct {
	adminService admin.AdminService
}

func NewAdminHandler(adminService admin.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	var filter adminDto.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	users, err := h.adminService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	ident, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var input adminDto.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	user, err := h.adminService.UpdateUserStatus(c.Request.Context(), ident, uuid.MustParse(uri.ID), input.Status)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	ident, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), ident, uuid.MustParse(uri.ID)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "user deleted successfully"})
}

func (h *AdminHandler) GetAllSkills(c *gin.Context) {
	skills, err := h.adminService.ListSkills(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": skills})
}

func (h *AdminHandler) CreateSkill(c *gin.Context) {
	ident, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input adminDto.CreateSkillRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	skill, err := h.adminService.AddSkill(c.Request.Context(), ident, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": skill})
}

func (h *AdminHandler) ModerateSkill(c *gin.Context) {
	ident, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var input adminDto.ModerateSkillRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.adminService.ModerateSkill(c.Request.Context(), ident, uuid.MustParse(uri.ID), input.Action); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: fmt.Sprintf("skill %sd", input.Action)})
}

func (h *AdminHandler) GetAllSwaps(c *gin.Context) {
	swaps, err := h.adminService.ListSwaps(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": swaps})
}

func (h *AdminHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.adminService.PlatformStats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (h *AdminHandler) GetSwapStats(c *gin.Context) {
	stats, err := h.adminService.SwapStats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (h *AdminHandler) SendMessage(c *gin.Context) {
	ident, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input adminDto.CreateMessageRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	msg, err := h.adminService.SendMessage(c.Request.Context(), ident, input.Message)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": msg})
}

// ListMessages serves both the admin list and the public announcement feed.
func (h *AdminHandler) ListMessages(c *gin.Context) {
	var query adminDto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	messages, err := h.adminService.ListMessages(c.Request.Context(), query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages})
}

func (h *AdminHandler) GetActions(c *gin.Context) {
	var query adminDto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	actions, err := h.adminService.ListActions(c.Request.Context(), query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": actions})
}

func (h *AdminHandler) DownloadReport(c *gin.Context) {
	ident, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var uri adminDto.ReportRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	report, err := h.adminService.GenerateReport(c.Request.Context(), ident, uri.Type)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(report.Encode()))
}
