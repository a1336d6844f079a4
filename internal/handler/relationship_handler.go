package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ChungangLions/backend/internal/dto"
	"github.com/ChungangLions/backend/internal/models"
	"github.com/ChungangLions/backend/internal/service"
	appErrors "github.com/ChungangLions/backend/pkg/errors"
	"github.com/ChungangLions/backend/pkg/response"
)

// RelationshipHandler exposes the like/recommend toggle endpoints.
type RelationshipHandler struct {
	relationships *service.RelationshipService
}

// NewRelationshipHandler constructs RelationshipHandler.
func NewRelationshipHandler(relationships *service.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{relationships: relationships}
}

// Toggle godoc
// @Summary Toggle a like or recommend signal
// @Description Creates the signal when absent, removes it when present
// @Tags Relationships
// @Accept json
// @Produce json
// @Param payload body dto.ToggleRelationshipRequest true "Toggle payload"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /relationships/toggle [post]
func (h *RelationshipHandler) Toggle(c *gin.Context) {
	var req dto.ToggleRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid toggle payload"))
		return
	}

	result, err := h.relationships.Toggle(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListGiven godoc
// @Summary List signals the caller has sent
// @Tags Relationships
// @Produce json
// @Param kind query string true "LIKE or RECOMMEND"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /relationships/given [get]
func (h *RelationshipHandler) ListGiven(c *gin.Context) {
	kind := models.SignalKind(strings.ToUpper(c.Query("kind")))
	signals, err := h.relationships.ListGiven(c.Request.Context(), claimsFromContext(c), kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, signals, nil)
}

// ListReceived godoc
// @Summary List signals the caller has received
// @Tags Relationships
// @Produce json
// @Param kind query string true "LIKE or RECOMMEND"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /relationships/received [get]
func (h *RelationshipHandler) ListReceived(c *gin.Context) {
	kind := models.SignalKind(strings.ToUpper(c.Query("kind")))
	signals, err := h.relationships.ListReceived(c.Request.Context(), claimsFromContext(c), kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, signals, nil)
}
