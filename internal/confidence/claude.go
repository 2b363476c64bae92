package confidence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/models"
)

// ClaudeRater asks a Claude model for a confidence rating
type ClaudeRater struct {
	client      anthropic.Client
	logger      arbor.ILogger
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// NewClaudeRater creates a rater from the [confidence.claude] settings
func NewClaudeRater(config common.LLMConfig, logger arbor.ILogger, opts ...option.RequestOption) (*ClaudeRater, error) {
	if config.APIKey == "" {
		return nil, errors.New("Anthropic API key is required for the claude provider (set ANTHROPIC_API_KEY or confidence.claude.api_key)")
	}

	model := config.Model
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(config.APIKey)}, opts...)...)

	logger.Debug().
		Str("model", model).
		Int("max_tokens", maxTokens).
		Msg("Claude confidence rater initialized")

	return &ClaudeRater{
		client:      client,
		logger:      logger,
		model:       model,
		maxTokens:   maxTokens,
		temperature: config.Temperature,
		timeout:     common.ParseDurationOr(config.Timeout, 20*time.Second),
	}, nil
}

// Name implements ConfidenceProvider
func (r *ClaudeRater) Name() string {
	return ProviderClaude
}

// Confidence implements ConfidenceProvider
func (r *ClaudeRater) Confidence(ctx context.Context, snap models.StockSnapshot, news []models.NewsItem) (*float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: int64(r.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(snap, news))),
		},
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
	}
	if r.temperature > 0 {
		params.Temperature = anthropic.Float(float64(r.temperature))
	}

	resp, err := r.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, errors.New("empty response from Claude API")
	}

	return parseConfidence(text.String())
}
