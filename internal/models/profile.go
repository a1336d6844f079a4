package models

import (
	"encoding/json"
	"time"
)

// OwnerProfile is the business profile consumed as a read-only snapshot.
// Profile management itself lives outside this service; proposals only read
// these rows to seed AI drafts and render counterpart details.
type OwnerProfile struct {
	ID           string          `db:"id" json:"id"`
	UserID       string          `db:"user_id" json:"user_id"`
	ProfileName  string          `db:"profile_name" json:"profile_name"`
	CampusName   string          `db:"campus_name" json:"campus_name"`
	BusinessType string          `db:"business_type" json:"business_type"`
	MarginRate   int             `db:"margin_rate" json:"margin_rate"`
	AverageSales int             `db:"average_sales" json:"average_sales"`
	Comment      string          `db:"comment" json:"comment,omitempty"`
	Schedule     json.RawMessage `db:"schedule" json:"schedule,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ModifiedAt   time.Time       `db:"modified_at" json:"modified_at"`
}

// StudentGroupProfile is the student-council profile. PartnershipCount is
// the only field this service ever writes, and only as the best-effort side
// effect of a PARTNERSHIP transition.
type StudentGroupProfile struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	UniversityName   string    `db:"university_name" json:"university_name"`
	CouncilName      string    `db:"council_name" json:"council_name"`
	Position         string    `db:"position" json:"position"`
	StudentSize      int       `db:"student_size" json:"student_size"`
	TermStart        time.Time `db:"term_start" json:"term_start"`
	TermEnd          time.Time `db:"term_end" json:"term_end"`
	PartnershipCount int       `db:"partnership_count" json:"partnership_count"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	ModifiedAt       time.Time `db:"modified_at" json:"modified_at"`
}
