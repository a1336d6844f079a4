package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ChungangLions/backend/internal/models"
)

// ProposalRepository persists proposals and their append-only status ledger.
type ProposalRepository struct {
	db *sqlx.DB
}

// NewProposalRepository constructs the repository.
func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

const proposalColumns = `p.id, p.author_id, p.recipient_id, p.sender_name, p.recipient_name,
       p.title, p.contents, p.expected_effects, p.contact_info,
       p.partnership_types, p.apply_target, p.apply_target_other,
       p.time_windows, p.benefit_description, p.period_start, p.period_end,
       p.is_ai_generated, p.created_at, p.modified_at,
       au.role AS author_role, ru.role AS recipient_role,
       ls.status AS current_status`

const proposalJoins = `FROM proposals p
	JOIN users au ON au.id = p.author_id
	JOIN users ru ON ru.id = p.recipient_id
	JOIN LATERAL (
		SELECT status FROM proposal_status_events e
		WHERE e.proposal_id = p.id
		ORDER BY e.changed_at DESC, e.id DESC
		LIMIT 1
	) ls ON TRUE`

// Create inserts the proposal row and its bootstrap ledger entry in one
// transaction. A proposal is never visible without at least one event.
func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal, seed *models.ProposalStatusEvent) error {
	if proposal.ID == "" {
		proposal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if proposal.CreatedAt.IsZero() {
		proposal.CreatedAt = now
	}
	proposal.ModifiedAt = now

	seed.ProposalID = proposal.ID
	if seed.ID == "" {
		seed.ID = uuid.NewString()
	}
	if seed.ChangedAt.IsZero() {
		seed.ChangedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create proposal: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertProposal = `INSERT INTO proposals
	(id, author_id, recipient_id, sender_name, recipient_name, title, contents, expected_effects, contact_info,
	 partnership_types, apply_target, apply_target_other, time_windows, benefit_description,
	 period_start, period_end, is_ai_generated, created_at, modified_at)
	VALUES (:id, :author_id, :recipient_id, :sender_name, :recipient_name, :title, :contents, :expected_effects, :contact_info,
	 :partnership_types, :apply_target, :apply_target_other, :time_windows, :benefit_description,
	 :period_start, :period_end, :is_ai_generated, :created_at, :modified_at)`
	if _, err := tx.NamedExecContext(ctx, insertProposal, proposal); err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}

	const insertSeed = `INSERT INTO proposal_status_events (id, proposal_id, status, changed_by, changed_at, comment)
	VALUES (:id, :proposal_id, :status, :changed_by, :changed_at, :comment)`
	if _, err := tx.NamedExecContext(ctx, insertSeed, seed); err != nil {
		return fmt.Errorf("insert bootstrap status event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create proposal: %w", err)
	}
	return nil
}

// GetByID fetches a proposal with its derived current status.
func (r *ProposalRepository) GetByID(ctx context.Context, id string) (*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` ` + proposalJoins + ` WHERE p.id = $1`
	var proposal models.Proposal
	if err := r.db.GetContext(ctx, &proposal, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	return &proposal, nil
}

// List returns proposals visible to the filter's actor, newest first by
// default, along with the total count.
func (r *ProposalRepository) List(ctx context.Context, filter models.ProposalFilter) ([]models.Proposal, int, error) {
	conditions := make([]string, 0, 6)
	args := make([]interface{}, 0, 8)

	switch filter.Box {
	case models.BoxInbox:
		args = append(args, filter.ActorID)
		conditions = append(conditions, fmt.Sprintf("p.recipient_id = $%d", len(args)))
	case models.BoxSent:
		args = append(args, filter.ActorID)
		conditions = append(conditions, fmt.Sprintf("p.author_id = $%d", len(args)))
	default:
		args = append(args, filter.ActorID)
		conditions = append(conditions, fmt.Sprintf("(p.author_id = $%d OR p.recipient_id = $%d)", len(args), len(args)))
	}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("ls.status = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("p.created_at >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("p.created_at <= $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf(
			"(p.title ILIKE $%d OR p.sender_name ILIKE $%d OR p.recipient_name ILIKE $%d OR p.contact_info ILIKE $%d)",
			len(args), len(args), len(args), len(args)))
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	sortBy := "p.created_at"
	if filter.SortBy == "modified_at" {
		sortBy = "p.modified_at"
	}
	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	listQuery := fmt.Sprintf("SELECT %s %s%s ORDER BY %s %s, p.id %s LIMIT %d OFFSET %d",
		proposalColumns, proposalJoins, where, sortBy, order, order, limit, offset)

	var proposals []models.Proposal
	if err := r.db.SelectContext(ctx, &proposals, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list proposals: %w", err)
	}

	// The count only needs the ledger join when a status condition
	// references it; everything else filters on proposal columns.
	countJoins := "FROM proposals p"
	if filter.Status != "" {
		countJoins += ` JOIN LATERAL (
		SELECT status FROM proposal_status_events e
		WHERE e.proposal_id = p.id
		ORDER BY e.changed_at DESC, e.id DESC
		LIMIT 1
	) ls ON TRUE`
	}
	countQuery := "SELECT COUNT(*) " + countJoins + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count proposals: %w", err)
	}
	return proposals, total, nil
}

// Update persists the editable content fields.
func (r *ProposalRepository) Update(ctx context.Context, proposal *models.Proposal) error {
	proposal.ModifiedAt = time.Now().UTC()
	const query = `UPDATE proposals SET
		title = :title,
		contents = :contents,
		expected_effects = :expected_effects,
		contact_info = :contact_info,
		partnership_types = :partnership_types,
		apply_target = :apply_target,
		apply_target_other = :apply_target_other,
		time_windows = :time_windows,
		benefit_description = :benefit_description,
		period_start = :period_start,
		period_end = :period_end,
		modified_at = :modified_at
	WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, proposal)
	if err != nil {
		return fmt.Errorf("update proposal: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check proposal update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the proposal; ledger entries go with it via the cascading
// foreign key.
func (r *ProposalRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check proposal delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// LatestStatusEvent returns the most recent ledger entry for a proposal.
func (r *ProposalRepository) LatestStatusEvent(ctx context.Context, proposalID string) (*models.ProposalStatusEvent, error) {
	const query = `SELECT id, proposal_id, status, changed_by, changed_at, comment
	FROM proposal_status_events
	WHERE proposal_id = $1
	ORDER BY changed_at DESC, id DESC
	LIMIT 1`
	var event models.ProposalStatusEvent
	if err := r.db.GetContext(ctx, &event, query, proposalID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("latest status event: %w", err)
	}
	return &event, nil
}

// ListStatusEvents returns the full ledger for a proposal, newest first.
func (r *ProposalRepository) ListStatusEvents(ctx context.Context, proposalID string) ([]models.ProposalStatusEvent, error) {
	const query = `SELECT e.id, e.proposal_id, e.status, e.changed_by, e.changed_at, e.comment,
	       u.username AS changed_by_name, u.role AS changed_by_role
	FROM proposal_status_events e
	JOIN users u ON u.id = e.changed_by
	WHERE e.proposal_id = $1
	ORDER BY e.changed_at DESC, e.id DESC`
	var events []models.ProposalStatusEvent
	if err := r.db.SelectContext(ctx, &events, query, proposalID); err != nil {
		return nil, fmt.Errorf("list status events: %w", err)
	}
	return events, nil
}

// AppendStatusEvent inserts a ledger entry only when the supplied
// expectedPriorID still identifies the latest event (empty string for the
// bootstrap case). The proposal row is locked first, so concurrent appends
// against the same proposal queue up and the loser's guard runs against the
// winner's committed event: the loser gets sql.ErrNoRows and must re-read
// the current status. changed_at is forced strictly past the prior latest
// to keep the ledger monotonic.
func (r *ProposalRepository) AppendStatusEvent(ctx context.Context, event *models.ProposalStatusEvent, expectedPriorID string) (err error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.ChangedAt.IsZero() {
		event.ChangedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status append: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lockedID string
	const lockQuery = `SELECT id FROM proposals WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &lockedID, lockQuery, event.ProposalID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock proposal for status append: %w", err)
	}

	const query = `INSERT INTO proposal_status_events (id, proposal_id, status, changed_by, changed_at, comment)
	SELECT $1, $2, $3, $4,
	       GREATEST($5::timestamptz, COALESCE(
	           (SELECT MAX(changed_at) + interval '1 microsecond' FROM proposal_status_events WHERE proposal_id = $2),
	           $5::timestamptz)),
	       $6
	WHERE COALESCE((
	    SELECT id FROM proposal_status_events
	    WHERE proposal_id = $2
	    ORDER BY changed_at DESC, id DESC
	    LIMIT 1
	), '') = $7`
	result, err := tx.ExecContext(ctx, query,
		event.ID, event.ProposalID, event.Status, event.ChangedByID, event.ChangedAt, event.Comment, expectedPriorID)
	if err != nil {
		return fmt.Errorf("append status event: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check status append rows: %w", err)
	}
	if rows == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit status append: %w", err)
	}
	return nil
}
