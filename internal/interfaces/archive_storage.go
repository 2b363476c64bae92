package interfaces

import (
	"context"

	"github.com/ternarybob/gapper/internal/models"
)

// ArchiveStorage keeps the history of scored poll cycles
type ArchiveStorage interface {
	SaveRun(ctx context.Context, run *models.ScoreRun) error
	ListRuns(ctx context.Context, limit int) ([]*models.ScoreRun, error)
	GetRun(ctx context.Context, id string) (*models.ScoreRun, error)
	TickerHistory(ctx context.Context, ticker string, limit int) ([]models.ArchivedCandidate, error)
	Close() error
}
