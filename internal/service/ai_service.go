package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/evalhub/evalhub-backend/internal/config"
	"github.com/evalhub/evalhub-backend/internal/model"
)

// ErrAIDisabled is returned when no API key is configured.
var ErrAIDisabled = errors.New("ai assistance is not configured")

// SuggestedQuestion is one AI-drafted question-bank entry. The caller
// reviews it before anything is stored.
type SuggestedQuestion struct {
	Text    string             `json:"text"`
	Type    model.QuestionType `json:"type"`
	Options []string           `json:"options,omitempty"`
	Correct json.RawMessage    `json:"correct"`
	Points  int                `json:"points"`
}

type suggestResponse struct {
	Questions []SuggestedQuestion `json:"questions"`
}

type reportResponse struct {
	Report string `json:"report"`
}

// AIService drafts questions and result reports through an
// OpenAI-compatible chat API.
type AIService struct {
	api       *openai.Client
	modelName string
	log       zerolog.Logger
}

// NewAIService creates the service. With no API key configured the service
// stays up but every call returns ErrAIDisabled.
func NewAIService(cfg *config.Config, log zerolog.Logger) *AIService {
	s := &AIService{
		modelName: cfg.OpenAIModel,
		log:       log.With().Str("component", "ai_service").Logger(),
	}
	if cfg.OpenAIAPIKey == "" {
		s.log.Info().Msg("AI assistance disabled, no API key configured")
		return s
	}

	apiCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		apiCfg.BaseURL = cfg.OpenAIBaseURL
	}
	s.api = openai.NewClientWithConfig(apiCfg)
	return s
}

// Enabled reports whether an API key is configured.
func (s *AIService) Enabled() bool {
	return s.api != nil
}

// SuggestQuestions drafts count questions on a topic at the given difficulty.
func (s *AIService) SuggestQuestions(ctx context.Context, topic string, difficulty model.Difficulty, count int) ([]SuggestedQuestion, error) {
	if s.api == nil {
		return nil, ErrAIDisabled
	}
	if count < 1 {
		count = 1
	}
	if count > 10 {
		count = 10
	}

	resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSuggestPrompt(difficulty, count)},
			{Role: openai.ChatMessageRoleUser, Content: "TOPIC: " + topic},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("ai api call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("ai returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	var parsed suggestResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse ai response: %w (raw: %s)", err, raw)
	}

	s.log.Debug().Int("count", len(parsed.Questions)).Str("topic", topic).Msg("Questions suggested")
	return parsed.Questions, nil
}

// GenerateReport writes a short narrative summary of one exam result.
func (s *AIService) GenerateReport(ctx context.Context, result *model.ExamResult) (string, error) {
	if s.api == nil {
		return "", ErrAIDisabled
	}

	summary, err := json.Marshal(map[string]any{
		"exam_title":   result.ExamTitle,
		"score":        result.Score,
		"total_points": result.TotalPoints,
		"event_count":  len(result.Events),
		"events":       result.Events,
	})
	if err != nil {
		return "", err
	}

	resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: reportPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(summary)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("ai api call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("ai returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	var parsed reportResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", fmt.Errorf("parse ai response: %w (raw: %s)", err, raw)
	}
	return parsed.Report, nil
}

func buildSuggestPrompt(difficulty model.Difficulty, count int) string {
	var sb strings.Builder
	sb.WriteString("You are an assessment author drafting exam questions.\n\n")
	sb.WriteString(fmt.Sprintf("Draft exactly %d questions at %s difficulty on the topic the user provides.\n\n", count, difficulty))
	sb.WriteString("Allowed question types: single_choice, multi_select, true_false, short_answer.\n")
	sb.WriteString("For choice types include 3-5 options. The correct field is a string for\n")
	sb.WriteString("single_choice, true_false and short_answer, and an array of strings for multi_select.\n")
	sb.WriteString("Points are between 1 and 20 and reflect difficulty.\n\n")
	sb.WriteString("Respond ONLY with a JSON object:\n")
	sb.WriteString(`{"questions": [{"text": "...", "type": "...", "options": ["..."], "correct": <string or array>, "points": <number>}]}`)
	sb.WriteString("\n")
	return sb.String()
}

const reportPrompt = `You are an assessment analyst. Given a JSON summary of one exam attempt
(score, total points and proctoring events), write a short report for the exam owner:
two or three sentences on performance and, if any proctoring events are present,
one sentence on session integrity. Do not invent facts beyond the data given.

Respond ONLY with a JSON object: {"report": "<the report text>"}`
