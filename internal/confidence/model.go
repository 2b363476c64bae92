package confidence

import (
	"context"
	"errors"

	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/models"
)

// LogisticModel applies a trained logistic regression over (gap, rvol, rsi).
// Features are clipped to gap [-40,40], rvol [0,15], rsi [0,100], then
// standardized with the stored scaler before the sigmoid.
type LogisticModel struct {
	intercept    float64
	coefficients [3]float64
	means        [3]float64
	scales       [3]float64
}

// NewLogisticModel creates a model from config
func NewLogisticModel(config common.ModelConfig) (*LogisticModel, error) {
	if len(config.Coefficients) != 3 || len(config.Means) != 3 || len(config.Scales) != 3 {
		return nil, errors.New("logistic model needs 3 coefficients, means and scales")
	}

	m := &LogisticModel{intercept: config.Intercept}
	for i := 0; i < 3; i++ {
		m.coefficients[i] = config.Coefficients[i]
		m.means[i] = config.Means[i]
		m.scales[i] = config.Scales[i]
		if m.scales[i] == 0 {
			m.scales[i] = 1
		}
	}
	return m, nil
}

// Name implements ConfidenceProvider
func (m *LogisticModel) Name() string {
	return ProviderModel
}

// Confidence implements ConfidenceProvider
func (m *LogisticModel) Confidence(_ context.Context, snap models.StockSnapshot, _ []models.NewsItem) (*float64, error) {
	if snap.GapPct == nil || snap.RelativeVolume == nil || snap.RSI == nil {
		return nil, nil
	}

	features := [3]float64{
		clip(*snap.GapPct, -40, 40),
		clip(*snap.RelativeVolume, 0, 15),
		clip(*snap.RSI, 0, 100),
	}

	z := m.intercept
	for i, x := range features {
		z += m.coefficients[i] * (x - m.means[i]) / m.scales[i]
	}

	p := sigmoid(z)
	return &p, nil
}
