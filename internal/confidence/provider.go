// Package confidence supplies the aiConfidence input of the action score.
// Every provider returns a value in [0,1] or nil; nil scores as zero.
package confidence

import (
	"context"
	"fmt"
	"math"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/interfaces"
	"github.com/ternarybob/gapper/internal/models"
)

// Provider names
const (
	ProviderNone      = "none"
	ProviderHeuristic = "heuristic"
	ProviderModel     = "model"
	ProviderClaude    = "claude"
	ProviderGemini    = "gemini"
)

// New creates the provider selected in config
func New(ctx context.Context, config common.ConfidenceConfig, logger arbor.ILogger) (interfaces.ConfidenceProvider, error) {
	switch config.Provider {
	case ProviderNone, "":
		return None{}, nil
	case ProviderHeuristic:
		return NewHeuristic(), nil
	case ProviderModel:
		return NewLogisticModel(config.Model)
	case ProviderClaude:
		return NewClaudeRater(config.Claude, logger)
	case ProviderGemini:
		return NewGeminiRater(ctx, config.Gemini, logger)
	default:
		return nil, fmt.Errorf("unknown confidence provider: %s", config.Provider)
	}
}

// None never rates
type None struct{}

// Name implements ConfidenceProvider
func (None) Name() string { return ProviderNone }

// Confidence implements ConfidenceProvider
func (None) Confidence(context.Context, models.StockSnapshot, []models.NewsItem) (*float64, error) {
	return nil, nil
}

func clip(value, min, max float64) float64 {
	return math.Min(math.Max(value, min), max)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
