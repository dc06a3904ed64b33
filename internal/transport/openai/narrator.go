// Package openai writes daily report narratives with an OpenAI-compatible chat model.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/liquiditick/internal/domain"
	"github.com/kailas-cloud/liquiditick/internal/domain/report"
)

const systemPrompt = "You are a concise crypto market analyst. " +
	"Summarise the scanner results in at most three sentences. " +
	"Do not give financial advice and do not invent figures."

// Narrator turns a report summary into a short paragraph.
type Narrator struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// Config holds the chat provider settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Logger    *zap.Logger
}

// NewNarrator creates an OpenAI-compatible narrator.
func NewNarrator(cfg *Config) *Narrator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Narrator{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

// Narrate asks the model for a paragraph describing s.
func (n *Narrator) Narrate(ctx context.Context, s report.Summary) (string, error) {
	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     n.model,
		MaxTokens: n.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: summaryPrompt(s)},
		},
	})
	if err != nil {
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty chat response: %w", domain.ErrNarrativeProvider)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("blank chat response: %w", domain.ErrNarrativeProvider)
	}

	n.logger.Debug("Report narrative generated",
		zap.String("model", n.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return text, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (n *Narrator) HealthCheck(ctx context.Context) error {
	if _, err := n.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func summaryPrompt(s report.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", s.Date)
	fmt.Fprintf(&b, "Opportunities: %d (high score: %d, explosive: %d)\n", s.Total, s.HighScoreCount, s.ExplosiveCount)
	fmt.Fprintf(&b, "Average score: %.2f\n", s.AverageScore)
	fmt.Fprintf(&b, "Total 24h volume: $%.0f\n", s.TotalVolume)
	b.WriteString("Top picks:\n")
	for _, r := range s.Top {
		fmt.Fprintf(&b, "- %s score %.1f, 24h %+.1f%%, type %s\n", r.Symbol, r.Score, r.PriceChange24h, r.Type)
	}
	return b.String()
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrNarrativeProvider.
func parseAPIError(err error) error {
	wrap := domain.ErrNarrativeProvider

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("chat request failed: %v: %w", err, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
