package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ChungangLions/backend/internal/dto"
	"github.com/ChungangLions/backend/internal/models"
	appErrors "github.com/ChungangLions/backend/pkg/errors"
)

const draftSystemPrompt = `You are an assistant that drafts partnership proposals between a
university student council and a local business owner. Using the owner
profile provided, produce a proposal draft as a single JSON object with
exactly these keys:
- title: string, at most 200 characters
- contents: string, the proposal body
- expected_effects: string, at most 100 characters, grounded in margin_rate and average_sales
- partnership_types: string array, values from ["DISCOUNT","REVIEW","SERVICE","TIME_SALE"]; prefer DISCOUNT when margin_rate is 30 or above
- contact_info: string, default to the author contact given
- apply_target: one of "ALL_STUDENTS","GROUP_MEMBERS","OTHER"
- apply_target_other: string, required only when apply_target is "OTHER"
- time_windows: array of {"days":["MON","TUE"],"start":"HH:MM","end":"HH:MM"}; prefer the owner's off-peak hours
- benefit_description: string, at most 30 characters
- period_start: "YYYY-MM-DD" or null; prefer a date one or two days after today
- period_end: "YYYY-MM-DD" or null; never earlier than period_start

Return only the JSON object. No markdown, no commentary, no extra keys.`

type draftProfileStore interface {
	GetOwnerProfileByUserID(ctx context.Context, userID string) (*models.OwnerProfile, error)
}

// ChatCompleter is the slice of the OpenAI client the draft flow needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// DraftConfig configures AI draft generation.
type DraftConfig struct {
	Model   string
	Timeout time.Duration
}

// DraftService generates proposal drafts from an owner profile snapshot.
// The model output is a suggestion only: it is parsed into the same content
// payload a person would submit and nothing is persisted here.
type DraftService struct {
	llm      ChatCompleter
	profiles draftProfileStore
	cache    *CacheService
	config   DraftConfig
	logger   *zap.Logger
}

// NewDraftService constructs the service. llm may be nil when drafts are
// disabled; Generate then fails with a service-unavailable error.
func NewDraftService(llm ChatCompleter, profiles draftProfileStore, cache *CacheService, config DraftConfig, logger *zap.Logger) *DraftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Model == "" {
		config.Model = openai.GPT4o
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &DraftService{llm: llm, profiles: profiles, cache: cache, config: config, logger: logger}
}

// Generate produces a draft addressed to the given owner. Only student
// groups draft against owner profiles; owners writing to student groups
// compose by hand.
func (s *DraftService) Generate(ctx context.Context, actor *models.JWTClaims, req dto.DraftRequest) (*dto.ProposalContent, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if s.llm == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "draft generation is disabled")
	}
	if actor.Role != models.RoleStudentGroup {
		return nil, appErrors.Clone(appErrors.ErrRoleConflict, "only student groups can generate drafts")
	}

	profile, err := s.ownerSnapshot(ctx, req.RecipientID)
	if err != nil {
		return nil, err
	}

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode owner profile")
	}

	userPrompt := fmt.Sprintf("[author name]: %s\n[author contact default]: %s\n[today]: %s\n\n[owner profile JSON]\n%s",
		actor.Username, req.ContactInfo, time.Now().UTC().Format("2006-01-02"), profileJSON)

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	resp, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: draftSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		s.logger.Error("draft completion failed", zap.String("recipient_id", req.RecipientID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "draft generation failed")
	}
	if len(resp.Choices) == 0 {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "draft generation returned no content")
	}

	content := cleanJSONResponse(resp.Choices[0].Message.Content)
	var draft dto.ProposalContent
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		s.logger.Warn("draft output was not valid JSON", zap.Error(err))
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "draft generation produced unusable output")
	}

	if draft.ContactInfo == "" {
		draft.ContactInfo = req.ContactInfo
	}
	if draft.PartnershipTypes == nil {
		draft.PartnershipTypes = models.PartnershipTypeList{}
	}
	if draft.TimeWindows == nil {
		draft.TimeWindows = models.TimeWindowList{}
	}
	return &draft, nil
}

// ownerSnapshot loads the owner profile, preferring the cached copy.
func (s *DraftService) ownerSnapshot(ctx context.Context, ownerID string) (*models.OwnerProfile, error) {
	var profile models.OwnerProfile
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, snapshotCacheKey(ownerID), &profile); err == nil && hit {
			return &profile, nil
		}
	}

	fresh, err := s.profiles.GetOwnerProfileByUserID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "owner profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load owner profile")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshotCacheKey(ownerID), fresh, 0); err != nil {
			s.logger.Warn("failed to cache owner profile snapshot", zap.Error(err))
		}
	}
	return fresh, nil
}

// cleanJSONResponse strips markdown fences some models wrap around JSON.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
