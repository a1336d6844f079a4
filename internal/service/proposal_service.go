package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ChungangLions/backend/internal/dto"
	"github.com/ChungangLions/backend/internal/models"
	appErrors "github.com/ChungangLions/backend/pkg/errors"
)

type proposalStore interface {
	Create(ctx context.Context, proposal *models.Proposal, seed *models.ProposalStatusEvent) error
	GetByID(ctx context.Context, id string) (*models.Proposal, error)
	List(ctx context.Context, filter models.ProposalFilter) ([]models.Proposal, int, error)
	Update(ctx context.Context, proposal *models.Proposal) error
	Delete(ctx context.Context, id string) error
	LatestStatusEvent(ctx context.Context, proposalID string) (*models.ProposalStatusEvent, error)
	ListStatusEvents(ctx context.Context, proposalID string) ([]models.ProposalStatusEvent, error)
	AppendStatusEvent(ctx context.Context, event *models.ProposalStatusEvent, expectedPriorID string) error
}

type actorDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type partnershipCounter interface {
	IncrementPartnershipCount(ctx context.Context, userID string) error
}

// ProposalService owns the proposal lifecycle: creation with the bootstrap
// ledger entry, content edits while unread, and the status transition
// engine over the append-only ledger.
type ProposalService struct {
	store     proposalStore
	actors    actorDirectory
	counter   partnershipCounter
	metrics   *MetricsService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// ProposalServiceOption configures the service.
type ProposalServiceOption func(*ProposalService)

// WithProposalMetrics attaches domain metrics instrumentation.
func WithProposalMetrics(metrics *MetricsService) ProposalServiceOption {
	return func(s *ProposalService) { s.metrics = metrics }
}

// WithSnapshotCache attaches the cache invalidated by the partnership
// counter side effect.
func WithSnapshotCache(cache *CacheService) ProposalServiceOption {
	return func(s *ProposalService) { s.cache = cache }
}

// NewProposalService constructs the service.
func NewProposalService(store proposalStore, actors actorDirectory, counter partnershipCounter, logger *zap.Logger, opts ...ProposalServiceOption) *ProposalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ProposalService{
		store:     store,
		actors:    actors,
		counter:   counter,
		validator: validator.New(),
		logger:    logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create validates the role pairing and content, persists the proposal, and
// seeds the ledger with the bootstrap UNREAD event. The bootstrap event is
// attributed to the recipient: "unread" describes the receiving side, and
// all later recipient-only transitions read naturally from there.
func (s *ProposalService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateProposalRequest) (*models.Proposal, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid proposal payload")
	}
	if actor.UserID == req.RecipientID {
		return nil, appErrors.Clone(appErrors.ErrSelfReference, "cannot send a proposal to yourself")
	}

	recipient, err := s.actors.FindByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recipient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recipient")
	}

	if !validProposalPair(actor.Role, recipient.Role) {
		return nil, appErrors.Clone(appErrors.ErrRoleConflict, "author and recipient must be a student group and an owner")
	}

	proposal := &models.Proposal{
		ID:            uuid.NewString(),
		AuthorID:      actor.UserID,
		RecipientID:   recipient.ID,
		AuthorRole:    actor.Role,
		RecipientRole: recipient.Role,
		SenderName:    actor.Username,
		RecipientName: recipient.Username,
		IsAIGenerated: req.AIGenerated,
	}
	if err := applyContent(proposal, req.ProposalContent); err != nil {
		return nil, err
	}

	seed := &models.ProposalStatusEvent{
		Status:      models.StatusUnread,
		ChangedByID: recipient.ID,
		Comment:     "proposal created",
	}
	if err := s.store.Create(ctx, proposal, seed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create proposal")
	}
	proposal.CurrentStatus = models.StatusUnread
	hydrateRefs(proposal)

	if s.metrics != nil {
		s.metrics.ProposalCreated(req.AIGenerated)
	}
	return proposal, nil
}

// Get returns a proposal visible to the actor. Non-participants get a not
// found rather than a permission error so proposal ids stay unguessable.
func (s *ProposalService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.Proposal, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	proposal, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	hydrateRefs(proposal)
	return proposal, nil
}

// List returns proposals the actor participates in.
func (s *ProposalService) List(ctx context.Context, actor *models.JWTClaims, query dto.ProposalQuery) ([]models.Proposal, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}

	filter := models.ProposalFilter{
		ActorID:   actor.UserID,
		Box:       query.Box,
		Status:    query.Status,
		Search:    query.Search,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if query.Status != "" && !query.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	if query.DateFrom != "" {
		from, err := time.Parse("2006-01-02", query.DateFrom)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "date_from must be YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}
	if query.DateTo != "" {
		to, err := time.Parse("2006-01-02", query.DateTo)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "date_to must be YYYY-MM-DD")
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &end
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	proposals, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list proposals")
	}
	for i := range proposals {
		hydrateRefs(&proposals[i])
	}
	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return proposals, pagination, nil
}

// Update edits content fields. Only the author may edit, and only while the
// proposal is still unread. The recipient is immutable after creation.
func (s *ProposalService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateProposalRequest) (*models.Proposal, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid proposal payload")
	}
	proposal, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if proposal.AuthorID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the author can edit a proposal")
	}
	if !proposal.IsEditable() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "proposal has been read and can no longer be edited")
	}
	if err := applyContent(proposal, req.ProposalContent); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, proposal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update proposal")
	}
	hydrateRefs(proposal)
	return proposal, nil
}

// Delete removes a proposal under the same author-and-unread guard as
// Update.
func (s *ProposalService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	proposal, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return err
	}
	if proposal.AuthorID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the author can delete a proposal")
	}
	if !proposal.IsEditable() {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "proposal has been read and can no longer be deleted")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete proposal")
	}
	return nil
}

// History returns the full status ledger, newest first.
func (s *ProposalService) History(ctx context.Context, actor *models.JWTClaims, id string) ([]models.ProposalStatusEvent, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if _, err := s.loadVisible(ctx, actor, id); err != nil {
		return nil, err
	}
	events, err := s.store.ListStatusEvents(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load status history")
	}
	for i := range events {
		events[i].ChangedBy = models.UserRef{
			ID:       events[i].ChangedByID,
			Username: events[i].ChangedByName,
			Role:     events[i].ChangedByRole,
		}
	}
	return events, nil
}

// ChangeStatus appends a new ledger entry after checking transition
// legality and the per-transition authorized party. The append is guarded
// by the id of the event the decision was based on; when a concurrent
// append wins, this caller re-reads the ledger and fails with an invalid
// transition against the updated status instead of corrupting the ledger.
func (s *ProposalService) ChangeStatus(ctx context.Context, actor *models.JWTClaims, id string, req dto.ChangeStatusRequest) (*models.Proposal, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown proposal status")
	}

	proposal, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	latest, err := s.store.LatestStatusEvent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read current status")
	}

	party, legal := models.TransitionAuthorizedParty(latest.Status, req.Status)
	if !legal {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot change status from %s to %s", latest.Status, req.Status))
	}

	authorizedID := proposal.RecipientID
	if party == models.PartyAuthor {
		authorizedID = proposal.AuthorID
	}
	if actor.UserID != authorizedID {
		return nil, appErrors.Clone(appErrors.ErrForbidden,
			fmt.Sprintf("only the %s may change the status to %s", party, req.Status))
	}

	event := &models.ProposalStatusEvent{
		ProposalID:  id,
		Status:      req.Status,
		ChangedByID: actor.UserID,
		Comment:     req.Comment,
	}
	if err := s.store.AppendStatusEvent(ctx, event, latest.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.concurrentTransitionError(ctx, id, req.Status)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to append status event")
	}

	if s.metrics != nil {
		s.metrics.StatusTransition(req.Status)
	}
	if req.Status == models.StatusPartnership {
		s.bumpPartnershipCount(ctx, proposal)
	}

	proposal.CurrentStatus = req.Status
	hydrateRefs(proposal)
	return proposal, nil
}

// concurrentTransitionError re-reads the ledger after a lost append race so
// the caller sees the transition failure against the status that actually
// won.
func (s *ProposalService) concurrentTransitionError(ctx context.Context, id string, attempted models.ProposalStatus) error {
	current, err := s.store.LatestStatusEvent(ctx, id)
	if err != nil {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "status changed concurrently")
	}
	return appErrors.Clone(appErrors.ErrInvalidTransition,
		fmt.Sprintf("status changed concurrently; cannot change from %s to %s", current.Status, attempted))
}

// bumpPartnershipCount increments the partnership counter on whichever
// party is the student group. The status change is already committed:
// a missing profile is swallowed, anything else is reported but never
// rolled back into the transition result.
func (s *ProposalService) bumpPartnershipCount(ctx context.Context, proposal *models.Proposal) {
	if s.counter == nil {
		return
	}
	groupID := ""
	switch {
	case proposal.AuthorRole == models.RoleStudentGroup:
		groupID = proposal.AuthorID
	case proposal.RecipientRole == models.RoleStudentGroup:
		groupID = proposal.RecipientID
	default:
		return
	}
	if err := s.counter.IncrementPartnershipCount(ctx, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return
		}
		s.logger.Error("failed to bump partnership count",
			zap.String("proposal_id", proposal.ID),
			zap.String("user_id", groupID),
			zap.Error(err))
		return
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, snapshotCacheKey(groupID)+"*"); err != nil {
			s.logger.Warn("failed to invalidate profile snapshot cache", zap.Error(err))
		}
	}
}

func (s *ProposalService) loadVisible(ctx context.Context, actor *models.JWTClaims, id string) (*models.Proposal, error) {
	proposal, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load proposal")
	}
	if !proposal.Participant(actor.UserID) {
		return nil, appErrors.ErrNotFound
	}
	return proposal, nil
}

func validProposalPair(author, recipient models.UserRole) bool {
	return (author == models.RoleStudentGroup && recipient == models.RoleOwner) ||
		(author == models.RoleOwner && recipient == models.RoleStudentGroup)
}

// applyContent copies validated content fields onto the proposal. Draft
// output goes through here exactly like hand-written input.
func applyContent(proposal *models.Proposal, content dto.ProposalContent) error {
	for _, pt := range content.PartnershipTypes {
		switch pt {
		case models.PartnershipDiscount, models.PartnershipReview, models.PartnershipService, models.PartnershipTimeSale:
		default:
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown partnership type: %s", pt))
		}
	}
	switch content.ApplyTarget {
	case models.ApplyTargetAll, models.ApplyTargetGroupMembers:
	case models.ApplyTargetOther:
		if content.ApplyTargetOther == "" {
			return appErrors.Clone(appErrors.ErrValidation, "apply_target_other is required when apply_target is OTHER")
		}
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown apply target: %s", content.ApplyTarget))
	}

	start, err := parseDate(content.PeriodStart)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "period_start must be YYYY-MM-DD")
	}
	end, err := parseDate(content.PeriodEnd)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "period_end must be YYYY-MM-DD")
	}
	if start != nil && end != nil && start.After(*end) {
		return appErrors.Clone(appErrors.ErrValidation, "period_end must not precede period_start")
	}

	proposal.Title = content.Title
	proposal.Contents = content.Contents
	proposal.ExpectedEffects = content.ExpectedEffects
	proposal.ContactInfo = content.ContactInfo
	proposal.PartnershipTypes = content.PartnershipTypes
	proposal.ApplyTarget = content.ApplyTarget
	proposal.ApplyTargetOther = content.ApplyTargetOther
	proposal.TimeWindows = content.TimeWindows
	proposal.BenefitDescription = content.BenefitDescription
	proposal.PeriodStart = start
	proposal.PeriodEnd = end
	return nil
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func hydrateRefs(proposal *models.Proposal) {
	proposal.Author = models.UserRef{ID: proposal.AuthorID, Username: proposal.SenderName, Role: proposal.AuthorRole}
	proposal.Recipient = models.UserRef{ID: proposal.RecipientID, Username: proposal.RecipientName, Role: proposal.RecipientRole}
}
