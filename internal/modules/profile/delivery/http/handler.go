package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	profileDto "github.com/raunak23427/mutual-skill-sync/internal/modules/profile/dto"
	profile "github.com/raunak23427/mutual-skill-sync/internal/modules/profile/service"
	search "github.com/raunak23427/mutual-skill-sync/internal/modules/search/service"
	commonDto "github.com/raunak23427/mutual-skill-sync/pkg/dto"
	"github.com/raunak23427/mutual-skill-sync/pkg/response"
	"github.com/raunak23427/mutual-skill-sync/pkg/validator"
)

const maxPhotoSize = 5 << 20

var allowedPhotoExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

type ProfileHandler struct {
	profileService profile.ProfileService
}

func NewProfileHandler(profileService profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// SyncSession creates or refreshes the caller's profile from the identity token.
func (h *ProfileHandler) SyncSession(c *gin.Context) {
	ident, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	p, err := h.profileService.SyncProfile(c.Request.Context(), *ident)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if p.IsBanned() {
		c.JSON(http.StatusForbidden, gin.H{"error": "account is banned"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *ProfileHandler) GetCurrentProfile(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	p, err := h.profileService.GetCurrentProfile(c.Request.Context(), profileID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input profileDto.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	p, err := h.profileService.UpdateProfile(c.Request.Context(), profileID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo is required"})
		return
	}
	if fileHeader.Size > maxPhotoSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo must be at most 5MB"})
		return
	}
	if !allowedPhotoExt[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo must be a jpg, png, gif or webp image"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read photo"})
		return
	}
	defer file.Close()

	p, err := h.profileService.UploadPhoto(c.Request.Context(), profileID, &commonDto.PhotoFile{
		Reader:   file,
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *ProfileHandler) DeletePhoto(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	p, err := h.profileService.DeletePhoto(c.Request.Context(), profileID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *ProfileHandler) GetProfileByID(c *gin.Context) {
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

	p, err := h.profileService.GetPublicProfile(c.Request.Context(), viewerID, uuid.MustParse(req.ID))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *ProfileHandler) BrowseProfiles(c *gin.Context) {
	viewerID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query profileDto.BrowseProfilesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	profiles, err := h.profileService.BrowseProfiles(c.Request.Context(), viewerID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profiles})
}

func (h *ProfileHandler) SearchToken(c *gin.Context) {
	ident, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	token, err := h.profileService.SearchToken(c.Request.Context(), ident)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profileDto.SearchTokenResponse{
		Token:     token,
		IndexUID:  search.ProfilesIndex,
		ExpiresIn: 24 * 60 * 60,
	}})
}
