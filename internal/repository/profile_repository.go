package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ChungangLions/backend/internal/models"
)

// ProfileRepository reads profile snapshots owned by the out-of-scope
// profile service. The partnership counter bump is the single write this
// service performs against profile data.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetOwnerProfileByUserID loads the owner profile for a user.
func (r *ProfileRepository) GetOwnerProfileByUserID(ctx context.Context, userID string) (*models.OwnerProfile, error) {
	const query = `SELECT id, user_id, profile_name, campus_name, business_type, margin_rate, average_sales,
	       comment, schedule, created_at, modified_at
	FROM owner_profiles WHERE user_id = $1 LIMIT 1`
	var profile models.OwnerProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get owner profile: %w", err)
	}
	return &profile, nil
}

// GetStudentGroupProfileByUserID loads the student-group profile for a user.
func (r *ProfileRepository) GetStudentGroupProfileByUserID(ctx context.Context, userID string) (*models.StudentGroupProfile, error) {
	const query = `SELECT id, user_id, university_name, council_name, position, student_size,
	       term_start, term_end, partnership_count, created_at, modified_at
	FROM student_group_profiles WHERE user_id = $1 LIMIT 1`
	var profile models.StudentGroupProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get student group profile: %w", err)
	}
	return &profile, nil
}

// IncrementPartnershipCount bumps the counter on the student-group profile.
// Missing profile rows surface as sql.ErrNoRows so the caller can decide to
// swallow exactly that case.
func (r *ProfileRepository) IncrementPartnershipCount(ctx context.Context, userID string) error {
	const query = `UPDATE student_group_profiles
	SET partnership_count = partnership_count + 1, modified_at = NOW()
	WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("increment partnership count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check partnership count rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
