package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/ChungangLions/backend/internal/models"
	appErrors "github.com/ChungangLions/backend/pkg/errors"
)

type profileStore interface {
	GetOwnerProfileByUserID(ctx context.Context, userID string) (*models.OwnerProfile, error)
	GetStudentGroupProfileByUserID(ctx context.Context, userID string) (*models.StudentGroupProfile, error)
}

type signalCounter interface {
	CountReceived(ctx context.Context, userID string, kind models.SignalKind) (int, error)
}

// OwnerProfileView is an owner profile together with the signal counts
// shown next to it.
type OwnerProfileView struct {
	models.OwnerProfile
	LikeCount      int `json:"like_count"`
	RecommendCount int `json:"recommend_count"`
}

// StudentGroupProfileView is a student group profile with its like count.
// The partnership count rides on the profile row itself.
type StudentGroupProfileView struct {
	models.StudentGroupProfile
	LikeCount int `json:"like_count"`
}

// ProfileService serves read-only profile views. Profile editing belongs to
// a separate surface; this service only reads and decorates.
type ProfileService struct {
	profiles profileStore
	signals  signalCounter
	logger   *zap.Logger
}

// NewProfileService constructs the service.
func NewProfileService(profiles profileStore, signals signalCounter, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{profiles: profiles, signals: signals, logger: logger}
}

// GetOwnerProfile returns the owner profile with like and recommend counts.
func (s *ProfileService) GetOwnerProfile(ctx context.Context, userID string) (*OwnerProfileView, error) {
	profile, err := s.profiles.GetOwnerProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "owner profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load owner profile")
	}

	view := &OwnerProfileView{OwnerProfile: *profile}
	view.LikeCount = s.countOrZero(ctx, userID, models.SignalLike)
	view.RecommendCount = s.countOrZero(ctx, userID, models.SignalRecommend)
	return view, nil
}

// GetStudentGroupProfile returns the student group profile with its like
// count and the accumulated partnership count.
func (s *ProfileService) GetStudentGroupProfile(ctx context.Context, userID string) (*StudentGroupProfileView, error) {
	profile, err := s.profiles.GetStudentGroupProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student group profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student group profile")
	}

	view := &StudentGroupProfileView{StudentGroupProfile: *profile}
	view.LikeCount = s.countOrZero(ctx, userID, models.SignalLike)
	return view, nil
}

// countOrZero degrades to zero on counting failures; counts decorate the
// profile and never block it.
func (s *ProfileService) countOrZero(ctx context.Context, userID string, kind models.SignalKind) int {
	count, err := s.signals.CountReceived(ctx, userID, kind)
	if err != nil {
		s.logger.Warn("failed to count signals", zap.String("user_id", userID), zap.String("kind", string(kind)), zap.Error(err))
		return 0
	}
	return count
}
