package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ChungangLions/backend/internal/dto"
	"github.com/ChungangLions/backend/internal/models"
	"github.com/ChungangLions/backend/internal/repository"
	appErrors "github.com/ChungangLions/backend/pkg/errors"
)

type relationshipStoreStub struct {
	signals   map[string]*models.RelationshipSignal
	createErr error
}

func newRelationshipStoreStub() *relationshipStoreStub {
	return &relationshipStoreStub{signals: make(map[string]*models.RelationshipSignal)}
}

func signalKey(fromID, toID string, kind models.SignalKind) string {
	return fromID + "|" + toID + "|" + string(kind)
}

func (s *relationshipStoreStub) Create(ctx context.Context, signal *models.RelationshipSignal) error {
	if s.createErr != nil {
		return s.createErr
	}
	key := signalKey(signal.FromID, signal.ToID, signal.Kind)
	if _, ok := s.signals[key]; ok {
		return repository.ErrDuplicate
	}
	s.signals[key] = signal
	return nil
}

func (s *relationshipStoreStub) Delete(ctx context.Context, fromID, toID string, kind models.SignalKind) (bool, error) {
	key := signalKey(fromID, toID, kind)
	if _, ok := s.signals[key]; !ok {
		return false, nil
	}
	delete(s.signals, key)
	return true, nil
}

func (s *relationshipStoreStub) ListGiven(ctx context.Context, userID string, kind models.SignalKind) ([]models.RelationshipSignal, error) {
	result := make([]models.RelationshipSignal, 0)
	for _, sig := range s.signals {
		if sig.FromID == userID && sig.Kind == kind {
			result = append(result, *sig)
		}
	}
	return result, nil
}

func (s *relationshipStoreStub) ListReceived(ctx context.Context, userID string, kind models.SignalKind) ([]models.RelationshipSignal, error) {
	result := make([]models.RelationshipSignal, 0)
	for _, sig := range s.signals {
		if sig.ToID == userID && sig.Kind == kind {
			result = append(result, *sig)
		}
	}
	return result, nil
}

func (s *relationshipStoreStub) CountReceived(ctx context.Context, userID string, kind models.SignalKind) (int, error) {
	received, _ := s.ListReceived(ctx, userID, kind)
	return len(received), nil
}

var studentUser = &models.User{ID: "student-1", Username: "student", Role: models.RoleStudent, Active: true}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: studentUser.ID, Username: studentUser.Username, Role: studentUser.Role}
}

func newTestRelationshipService(store *relationshipStoreStub) *RelationshipService {
	return NewRelationshipService(store, newActorStub(groupUser, ownerUser, studentUser), nil, nil)
}

func TestRelationshipServiceToggleRoundTrip(t *testing.T) {
	store := newRelationshipStoreStub()
	svc := newTestRelationshipService(store)

	req := dto.ToggleRelationshipRequest{TargetID: ownerUser.ID, Kind: models.SignalLike}

	result, err := svc.Toggle(context.Background(), studentClaims(), req)
	require.NoError(t, err)
	require.Equal(t, models.ToggleCreated, result.Outcome)
	require.NotNil(t, result.Signal)
	require.Equal(t, studentUser.ID, result.Signal.From.ID)
	require.Equal(t, ownerUser.ID, result.Signal.To.ID)

	result, err = svc.Toggle(context.Background(), studentClaims(), req)
	require.NoError(t, err)
	require.Equal(t, models.ToggleRemoved, result.Outcome)
	require.Nil(t, result.Signal)
	require.Empty(t, store.signals)

	// Third call creates again.
	result, err = svc.Toggle(context.Background(), studentClaims(), req)
	require.NoError(t, err)
	require.Equal(t, models.ToggleCreated, result.Outcome)
}

func TestRelationshipServiceLikeRequiresDifferentRoles(t *testing.T) {
	store := newRelationshipStoreStub()
	otherOwner := &models.User{ID: "owner-2", Username: "bakery", Role: models.RoleOwner, Active: true}
	svc := NewRelationshipService(store, newActorStub(groupUser, ownerUser, studentUser, otherOwner), nil, nil)

	_, err := svc.Toggle(context.Background(), ownerClaims(), dto.ToggleRelationshipRequest{TargetID: otherOwner.ID, Kind: models.SignalLike})
	require.Equal(t, appErrors.ErrRoleConflict.Code, appErrors.FromError(err).Code)

	// Owner liking a student group is fine.
	result, err := svc.Toggle(context.Background(), ownerClaims(), dto.ToggleRelationshipRequest{TargetID: groupUser.ID, Kind: models.SignalLike})
	require.NoError(t, err)
	require.Equal(t, models.ToggleCreated, result.Outcome)
}

func TestRelationshipServiceRecommendIsStudentToOwnerOnly(t *testing.T) {
	store := newRelationshipStoreStub()
	svc := newTestRelationshipService(store)

	_, err := svc.Toggle(context.Background(), groupClaims(), dto.ToggleRelationshipRequest{TargetID: ownerUser.ID, Kind: models.SignalRecommend})
	require.Equal(t, appErrors.ErrRoleConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Toggle(context.Background(), studentClaims(), dto.ToggleRelationshipRequest{TargetID: groupUser.ID, Kind: models.SignalRecommend})
	require.Equal(t, appErrors.ErrRoleConflict.Code, appErrors.FromError(err).Code)

	result, err := svc.Toggle(context.Background(), studentClaims(), dto.ToggleRelationshipRequest{TargetID: ownerUser.ID, Kind: models.SignalRecommend})
	require.NoError(t, err)
	require.Equal(t, models.ToggleCreated, result.Outcome)
}

func TestRelationshipServiceToggleSelfAndUnknownTarget(t *testing.T) {
	store := newRelationshipStoreStub()
	svc := newTestRelationshipService(store)

	_, err := svc.Toggle(context.Background(), studentClaims(), dto.ToggleRelationshipRequest{TargetID: studentUser.ID, Kind: models.SignalLike})
	require.Equal(t, appErrors.ErrSelfReference.Code, appErrors.FromError(err).Code)

	_, err = svc.Toggle(context.Background(), studentClaims(), dto.ToggleRelationshipRequest{TargetID: "ghost", Kind: models.SignalLike})
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRelationshipServiceToggleDuplicateRace(t *testing.T) {
	store := newRelationshipStoreStub()
	store.createErr = repository.ErrDuplicate
	svc := newTestRelationshipService(store)

	_, err := svc.Toggle(context.Background(), studentClaims(), dto.ToggleRelationshipRequest{TargetID: ownerUser.ID, Kind: models.SignalLike})
	require.Equal(t, appErrors.ErrDuplicate.Code, appErrors.FromError(err).Code)
}

func TestRelationshipServiceListings(t *testing.T) {
	store := newRelationshipStoreStub()
	svc := newTestRelationshipService(store)

	_, err := svc.Toggle(context.Background(), studentClaims(), dto.ToggleRelationshipRequest{TargetID: ownerUser.ID, Kind: models.SignalLike})
	require.NoError(t, err)

	given, err := svc.ListGiven(context.Background(), studentClaims(), models.SignalLike)
	require.NoError(t, err)
	require.Len(t, given, 1)

	received, err := svc.ListReceived(context.Background(), ownerClaims(), models.SignalLike)
	require.NoError(t, err)
	require.Len(t, received, 1)

	count, err := svc.CountReceived(context.Background(), ownerUser.ID, models.SignalLike)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	_, err = svc.ListGiven(context.Background(), studentClaims(), models.SignalKind("FOLLOW"))
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
