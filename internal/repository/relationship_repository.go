package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ChungangLions/backend/internal/models"
)

// RelationshipRepository persists like/recommend signals. The table carries
// a unique constraint on (from_id, to_id, kind); that constraint, not
// application locking, is what makes concurrent toggles safe.
type RelationshipRepository struct {
	db *sqlx.DB
}

// NewRelationshipRepository constructs the repository.
func NewRelationshipRepository(db *sqlx.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// Create inserts a signal row. A lost creation race surfaces as
// ErrDuplicate for the service to translate.
func (r *RelationshipRepository) Create(ctx context.Context, signal *models.RelationshipSignal) error {
	if signal.ID == "" {
		signal.ID = uuid.NewString()
	}
	if signal.CreatedAt.IsZero() {
		signal.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO relationship_signals (id, from_id, to_id, kind, created_at)
	VALUES (:id, :from_id, :to_id, :kind, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, signal); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create relationship signal: %w", err)
	}
	return nil
}

// Delete removes the signal for the ordered pair, reporting whether a row
// existed.
func (r *RelationshipRepository) Delete(ctx context.Context, fromID, toID string, kind models.SignalKind) (bool, error) {
	const query = `DELETE FROM relationship_signals WHERE from_id = $1 AND to_id = $2 AND kind = $3`
	result, err := r.db.ExecContext(ctx, query, fromID, toID, kind)
	if err != nil {
		return false, fmt.Errorf("delete relationship signal: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check signal delete rows: %w", err)
	}
	return rows > 0, nil
}

// ListGiven returns signals sent by the user, newest first.
func (r *RelationshipRepository) ListGiven(ctx context.Context, userID string, kind models.SignalKind) ([]models.RelationshipSignal, error) {
	const query = `SELECT s.id, s.from_id, s.to_id, s.kind, s.created_at
	FROM relationship_signals s
	WHERE s.from_id = $1 AND s.kind = $2
	ORDER BY s.created_at DESC`
	var signals []models.RelationshipSignal
	if err := r.db.SelectContext(ctx, &signals, query, userID, kind); err != nil {
		return nil, fmt.Errorf("list given signals: %w", err)
	}
	return signals, nil
}

// ListReceived returns signals aimed at the user, newest first.
func (r *RelationshipRepository) ListReceived(ctx context.Context, userID string, kind models.SignalKind) ([]models.RelationshipSignal, error) {
	const query = `SELECT s.id, s.from_id, s.to_id, s.kind, s.created_at
	FROM relationship_signals s
	WHERE s.to_id = $1 AND s.kind = $2
	ORDER BY s.created_at DESC`
	var signals []models.RelationshipSignal
	if err := r.db.SelectContext(ctx, &signals, query, userID, kind); err != nil {
		return nil, fmt.Errorf("list received signals: %w", err)
	}
	return signals, nil
}

// CountReceived counts active signals aimed at the user.
func (r *RelationshipRepository) CountReceived(ctx context.Context, userID string, kind models.SignalKind) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM relationship_signals WHERE to_id = $1 AND kind = $2`
	if err := r.db.GetContext(ctx, &count, query, userID, kind); err != nil {
		return 0, fmt.Errorf("count received signals: %w", err)
	}
	return count, nil
}
