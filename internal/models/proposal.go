package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ProposalStatus enumerates the negotiation states of a proposal.
type ProposalStatus string

const (
	StatusUnread      ProposalStatus = "UNREAD"
	StatusRead        ProposalStatus = "READ"
	StatusPartnership ProposalStatus = "PARTNERSHIP"
	StatusRejected    ProposalStatus = "REJECTED"
)

// Valid reports whether the status is one of the closed set.
func (s ProposalStatus) Valid() bool {
	switch s {
	case StatusUnread, StatusRead, StatusPartnership, StatusRejected:
		return true
	}
	return false
}

// PartnershipType categorises what the partnership offers.
type PartnershipType string

const (
	PartnershipDiscount PartnershipType = "DISCOUNT"
	PartnershipReview   PartnershipType = "REVIEW"
	PartnershipService  PartnershipType = "SERVICE"
	PartnershipTimeSale PartnershipType = "TIME_SALE"
)

// ApplyTarget selects who the partnership benefit applies to.
type ApplyTarget string

const (
	ApplyTargetAll          ApplyTarget = "ALL_STUDENTS"
	ApplyTargetGroupMembers ApplyTarget = "GROUP_MEMBERS"
	ApplyTargetOther        ApplyTarget = "OTHER"
)

// TimeWindow describes when a benefit applies during the week.
type TimeWindow struct {
	Days  []string `json:"days"`
	Start string   `json:"start"`
	End   string   `json:"end"`
}

// PartnershipTypeList stores the partnership types as a JSONB column.
type PartnershipTypeList []PartnershipType

// Value implements driver.Valuer.
func (l PartnershipTypeList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *PartnershipTypeList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// TimeWindowList stores the benefit time windows as a JSONB column.
type TimeWindowList []TimeWindow

// Value implements driver.Valuer.
func (l TimeWindowList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *TimeWindowList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

// Proposal is a negotiation thread between exactly two users of opposite
// roles. Status is never stored on the row; it is derived from the latest
// entry of the status ledger.
type Proposal struct {
	ID            string   `db:"id" json:"id"`
	AuthorID      string   `db:"author_id" json:"-"`
	RecipientID   string   `db:"recipient_id" json:"-"`
	Author        UserRef  `json:"author"`
	Recipient     UserRef  `json:"recipient"`
	AuthorRole    UserRole `db:"author_role" json:"-"`
	RecipientRole UserRole `db:"recipient_role" json:"-"`

	// Display snapshots captured at creation time.
	SenderName    string `db:"sender_name" json:"sender_name"`
	RecipientName string `db:"recipient_name" json:"recipient_name"`

	Title           string `db:"title" json:"title"`
	Contents        string `db:"contents" json:"contents"`
	ExpectedEffects string `db:"expected_effects" json:"expected_effects"`
	ContactInfo     string `db:"contact_info" json:"contact_info"`

	PartnershipTypes   PartnershipTypeList `db:"partnership_types" json:"partnership_types"`
	ApplyTarget        ApplyTarget         `db:"apply_target" json:"apply_target"`
	ApplyTargetOther   string              `db:"apply_target_other" json:"apply_target_other,omitempty"`
	TimeWindows        TimeWindowList      `db:"time_windows" json:"time_windows"`
	BenefitDescription string              `db:"benefit_description" json:"benefit_description"`
	PeriodStart        *time.Time          `db:"period_start" json:"period_start,omitempty"`
	PeriodEnd          *time.Time          `db:"period_end" json:"period_end,omitempty"`

	IsAIGenerated bool `db:"is_ai_generated" json:"is_ai_generated"`

	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	ModifiedAt time.Time `db:"modified_at" json:"modified_at"`

	// Derived from the status ledger; populated by query joins.
	CurrentStatus ProposalStatus `db:"current_status" json:"current_status"`
}

// IsEditable reports whether content edits are still allowed. Editability is
// purely a function of the current status.
func (p *Proposal) IsEditable() bool {
	return p.CurrentStatus == StatusUnread
}

// IsPartnershipMade reports whether the proposal reached the terminal state.
func (p *Proposal) IsPartnershipMade() bool {
	return p.CurrentStatus == StatusPartnership
}

// Participant reports whether the user takes part in this proposal.
func (p *Proposal) Participant(userID string) bool {
	return userID == p.AuthorID || userID == p.RecipientID
}

// ProposalStatusEvent is one immutable entry of the append-only status
// ledger. ChangedBy records provenance, not ownership.
type ProposalStatusEvent struct {
	ID            string         `db:"id" json:"id"`
	ProposalID    string         `db:"proposal_id" json:"proposal_id"`
	Status        ProposalStatus `db:"status" json:"status"`
	ChangedByID   string         `db:"changed_by" json:"-"`
	ChangedBy     UserRef        `json:"changed_by"`
	ChangedByName string         `db:"changed_by_name" json:"-"`
	ChangedByRole UserRole       `db:"changed_by_role" json:"-"`
	ChangedAt     time.Time      `db:"changed_at" json:"changed_at"`
	Comment       string         `db:"comment" json:"comment,omitempty"`
}

// ProposalBox selects which side of the exchange to list.
type ProposalBox string

const (
	BoxAll   ProposalBox = "all"
	BoxInbox ProposalBox = "inbox"
	BoxSent  ProposalBox = "sent"
)

// ProposalFilter constrains proposal listing queries. ActorID scopes the
// result to proposals the actor participates in.
type ProposalFilter struct {
	ActorID   string
	Box       ProposalBox
	Status    ProposalStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}
