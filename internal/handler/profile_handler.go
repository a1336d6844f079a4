package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChungangLions/backend/internal/service"
	"github.com/ChungangLions/backend/pkg/response"
)

// ProfileHandler serves the read-only profile views.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetOwner godoc
// @Summary Get owner profile
// @Tags Profiles
// @Produce json
// @Param id path string true "User ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/owners/{id} [get]
func (h *ProfileHandler) GetOwner(c *gin.Context) {
	profile, err := h.profiles.GetOwnerProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// GetStudentGroup godoc
// @Summary Get student group profile
// @Tags Profiles
// @Produce json
// @Param id path string true "User ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/student-groups/{id} [get]
func (h *ProfileHandler) GetStudentGroup(c *gin.Context) {
	profile, err := h.profiles.GetStudentGroupProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
