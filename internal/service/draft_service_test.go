package service

import (
	"context"
	"database/sql"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/ChungangLions/backend/internal/dto"
	"github.com/ChungangLions/backend/internal/models"
	appErrors "github.com/ChungangLions/backend/pkg/errors"
)

type chatCompleterStub struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (s *chatCompleterStub) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

type draftProfileStub struct {
	profiles map[string]*models.OwnerProfile
}

func (s *draftProfileStub) GetOwnerProfileByUserID(ctx context.Context, userID string) (*models.OwnerProfile, error) {
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

const draftJSON = `{
	"title": "Fall drinks partnership",
	"contents": "We propose a discount partnership for the fall term.",
	"expected_effects": "Roughly 10% revenue growth from council traffic.",
	"partnership_types": ["DISCOUNT"],
	"contact_info": "",
	"apply_target": "GROUP_MEMBERS",
	"time_windows": [{"days": ["FRI"], "start": "14:00", "end": "16:00"}],
	"benefit_description": "10% off drinks",
	"period_start": "2026-10-01",
	"period_end": "2026-12-31"
}`

func draftProfiles() *draftProfileStub {
	return &draftProfileStub{profiles: map[string]*models.OwnerProfile{
		ownerUser.ID: {ID: "prof-1", UserID: ownerUser.ID, ProfileName: "Middle Door", BusinessType: "cafe", MarginRate: 45},
	}}
}

func TestDraftServiceGenerate(t *testing.T) {
	llm := &chatCompleterStub{content: draftJSON}
	svc := NewDraftService(llm, draftProfiles(), nil, DraftConfig{Model: "gpt-4o"}, nil)

	draft, err := svc.Generate(context.Background(), groupClaims(), dto.DraftRequest{
		RecipientID: ownerUser.ID,
		ContactInfo: "council@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Fall drinks partnership", draft.Title)
	require.Equal(t, models.PartnershipTypeList{models.PartnershipDiscount}, draft.PartnershipTypes)
	// Missing contact falls back to the caller's default.
	require.Equal(t, "council@example.com", draft.ContactInfo)
	require.Equal(t, "gpt-4o", llm.lastReq.Model)
	require.Len(t, llm.lastReq.Messages, 2)
}

func TestDraftServiceGenerateStripsMarkdownFences(t *testing.T) {
	llm := &chatCompleterStub{content: "```json\n" + draftJSON + "\n```"}
	svc := NewDraftService(llm, draftProfiles(), nil, DraftConfig{}, nil)

	draft, err := svc.Generate(context.Background(), groupClaims(), dto.DraftRequest{RecipientID: ownerUser.ID})
	require.NoError(t, err)
	require.Equal(t, "10% off drinks", draft.BenefitDescription)
}

func TestDraftServiceGenerateGuards(t *testing.T) {
	llm := &chatCompleterStub{content: draftJSON}
	svc := NewDraftService(llm, draftProfiles(), nil, DraftConfig{}, nil)

	_, err := svc.Generate(context.Background(), ownerClaims(), dto.DraftRequest{RecipientID: ownerUser.ID})
	require.Equal(t, appErrors.ErrRoleConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Generate(context.Background(), groupClaims(), dto.DraftRequest{RecipientID: "ghost"})
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	disabled := NewDraftService(nil, draftProfiles(), nil, DraftConfig{}, nil)
	_, err = disabled.Generate(context.Background(), groupClaims(), dto.DraftRequest{RecipientID: ownerUser.ID})
	require.Equal(t, appErrors.ErrServiceUnavailable.Code, appErrors.FromError(err).Code)
}

func TestDraftServiceGenerateUnusableOutput(t *testing.T) {
	llm := &chatCompleterStub{content: "sorry, I cannot help with that"}
	svc := NewDraftService(llm, draftProfiles(), nil, DraftConfig{}, nil)

	_, err := svc.Generate(context.Background(), groupClaims(), dto.DraftRequest{RecipientID: ownerUser.ID})
	require.Equal(t, appErrors.ErrServiceUnavailable.Code, appErrors.FromError(err).Code)
}
