package dto

import "github.com/ChungangLions/backend/internal/models"

// ToggleRelationshipRequest toggles a like or recommend signal towards the
// target user.
type ToggleRelationshipRequest struct {
	TargetID string            `json:"target_id" validate:"required"`
	Kind     models.SignalKind `json:"kind" validate:"required"`
}
