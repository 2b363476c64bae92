package confidence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/models"
)

// GeminiRater asks a Gemini model for a confidence rating
type GeminiRater struct {
	client      *genai.Client
	logger      arbor.ILogger
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// NewGeminiRater creates a rater from the [confidence.gemini] settings
func NewGeminiRater(ctx context.Context, config common.LLMConfig, logger arbor.ILogger) (*GeminiRater, error) {
	if config.APIKey == "" {
		return nil, errors.New("Gemini API key is required for the gemini provider (set GAPPER_GEMINI_API_KEY or confidence.gemini.api_key)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	logger.Debug().
		Str("model", model).
		Msg("Gemini confidence rater initialized")

	return &GeminiRater{
		client:      client,
		logger:      logger,
		model:       model,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		timeout:     common.ParseDurationOr(config.Timeout, 20*time.Second),
	}, nil
}

// Name implements ConfidenceProvider
func (r *GeminiRater) Name() string {
	return ProviderGemini
}

// Confidence implements ConfidenceProvider
func (r *GeminiRater) Confidence(ctx context.Context, snap models.StockSnapshot, news []models.NewsItem) (*float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(r.temperature),
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	if r.maxTokens > 0 {
		config.MaxOutputTokens = int32(r.maxTokens)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buildPrompt(snap, news), genai.RoleUser),
	}

	resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}

	var text strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				text.WriteString(part.Text)
			}
			if text.Len() > 0 {
				break
			}
		}
	}
	if text.Len() == 0 {
		return nil, errors.New("empty response from Gemini API")
	}

	return parseConfidence(text.String())
}
