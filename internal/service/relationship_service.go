package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ChungangLions/backend/internal/dto"
	"github.com/ChungangLions/backend/internal/models"
	"github.com/ChungangLions/backend/internal/repository"
	appErrors "github.com/ChungangLions/backend/pkg/errors"
)

type relationshipStore interface {
	Create(ctx context.Context, signal *models.RelationshipSignal) error
	Delete(ctx context.Context, fromID, toID string, kind models.SignalKind) (bool, error)
	ListGiven(ctx context.Context, userID string, kind models.SignalKind) ([]models.RelationshipSignal, error)
	ListReceived(ctx context.Context, userID string, kind models.SignalKind) ([]models.RelationshipSignal, error)
	CountReceived(ctx context.Context, userID string, kind models.SignalKind) (int, error)
}

// RelationshipService implements the like and recommend toggles. A toggle
// deletes the existing signal when one is present and creates one
// otherwise, so repeated calls flip the state.
type RelationshipService struct {
	store     relationshipStore
	actors    actorDirectory
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRelationshipService constructs the service.
func NewRelationshipService(store relationshipStore, actors actorDirectory, metrics *MetricsService, logger *zap.Logger) *RelationshipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelationshipService{
		store:     store,
		actors:    actors,
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
	}
}

// Toggle flips the signal between the actor and the target. Likes require
// the two sides to hold different roles; recommendations flow strictly from
// students to owners.
func (s *RelationshipService) Toggle(ctx context.Context, actor *models.JWTClaims, req dto.ToggleRelationshipRequest) (*models.ToggleResult, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid toggle payload")
	}
	if !req.Kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown signal kind")
	}
	if actor.UserID == req.TargetID {
		return nil, appErrors.Clone(appErrors.ErrSelfReference, "cannot signal yourself")
	}

	target, err := s.actors.FindByID(ctx, req.TargetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "target user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target user")
	}

	switch req.Kind {
	case models.SignalLike:
		if actor.Role == target.Role {
			return nil, appErrors.Clone(appErrors.ErrRoleConflict, "likes require users with different roles")
		}
	case models.SignalRecommend:
		if actor.Role != models.RoleStudent || target.Role != models.RoleOwner {
			return nil, appErrors.Clone(appErrors.ErrRoleConflict, "only students can recommend owners")
		}
	}

	removed, err := s.store.Delete(ctx, actor.UserID, target.ID, req.Kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle signal")
	}
	if removed {
		if s.metrics != nil {
			s.metrics.SignalToggled(req.Kind, models.ToggleRemoved)
		}
		return &models.ToggleResult{Outcome: models.ToggleRemoved}, nil
	}

	signal := &models.RelationshipSignal{
		ID:     uuid.NewString(),
		FromID: actor.UserID,
		ToID:   target.ID,
		Kind:   req.Kind,
	}
	if err := s.store.Create(ctx, signal); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Two concurrent toggles both missed the delete; one insert
			// wins the unique index.
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "signal already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create signal")
	}
	signal.From = models.UserRef{ID: actor.UserID, Username: actor.Username, Role: actor.Role}
	signal.To = models.UserRef{ID: target.ID, Username: target.Username, Role: target.Role}

	if s.metrics != nil {
		s.metrics.SignalToggled(req.Kind, models.ToggleCreated)
	}
	return &models.ToggleResult{Outcome: models.ToggleCreated, Signal: signal}, nil
}

// ListGiven returns the signals the user has sent, newest first.
func (s *RelationshipService) ListGiven(ctx context.Context, actor *models.JWTClaims, kind models.SignalKind) ([]models.RelationshipSignal, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown signal kind")
	}
	signals, err := s.store.ListGiven(ctx, actor.UserID, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list signals")
	}
	return signals, nil
}

// ListReceived returns the signals the user has received, newest first.
func (s *RelationshipService) ListReceived(ctx context.Context, actor *models.JWTClaims, kind models.SignalKind) ([]models.RelationshipSignal, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown signal kind")
	}
	signals, err := s.store.ListReceived(ctx, actor.UserID, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list signals")
	}
	return signals, nil
}

// CountReceived returns how many signals of a kind the user has received.
func (s *RelationshipService) CountReceived(ctx context.Context, userID string, kind models.SignalKind) (int, error) {
	if !kind.Valid() {
		return 0, appErrors.Clone(appErrors.ErrValidation, "unknown signal kind")
	}
	count, err := s.store.CountReceived(ctx, userID, kind)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count signals")
	}
	return count, nil
}
