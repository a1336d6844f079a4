package dto

import "github.com/ChungangLions/backend/internal/models"

// ProposalContent carries the free-form business fields of a proposal. The
// same shape is used for manual creation, updates, and AI drafts; drafts are
// untrusted input and go through the exact same validation.
type ProposalContent struct {
	Title              string                     `json:"title" validate:"required,max=200"`
	Contents           string                     `json:"contents" validate:"required"`
	ExpectedEffects    string                     `json:"expected_effects"`
	ContactInfo        string                     `json:"contact_info" validate:"required,max=200"`
	PartnershipTypes   models.PartnershipTypeList `json:"partnership_types"`
	ApplyTarget        models.ApplyTarget         `json:"apply_target" validate:"required"`
	ApplyTargetOther   string                     `json:"apply_target_other"`
	TimeWindows        models.TimeWindowList      `json:"time_windows"`
	BenefitDescription string                     `json:"benefit_description" validate:"required,max=300"`
	PeriodStart        *string                    `json:"period_start"` // YYYY-MM-DD
	PeriodEnd          *string                    `json:"period_end"`   // YYYY-MM-DD
}

// CreateProposalRequest creates a new proposal thread.
type CreateProposalRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	ProposalContent
	AIGenerated bool `json:"ai_generated"`
}

// UpdateProposalRequest edits content fields while the proposal is still
// unread. The recipient is immutable and deliberately absent.
type UpdateProposalRequest struct {
	ProposalContent
}

// ChangeStatusRequest appends a new ledger entry.
type ChangeStatusRequest struct {
	Status  models.ProposalStatus `json:"status" validate:"required"`
	Comment string                `json:"comment" validate:"max=1000"`
}

// ProposalQuery holds listing parameters.
type ProposalQuery struct {
	Box       models.ProposalBox
	Status    models.ProposalStatus
	DateFrom  string
	DateTo    string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// DraftRequest asks for an AI-generated proposal draft addressed to the
// given counterpart.
type DraftRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	ContactInfo string `json:"contact_info"`
}
