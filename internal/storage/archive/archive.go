// Package archive keeps every scored poll cycle in a SQL database through
// gorm, so past candidates can be reviewed or used to fit the confidence
// model.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ternarybob/gapper/internal/interfaces"
	"github.com/ternarybob/gapper/internal/models"
)

// Store implements ArchiveStorage
type Store struct {
	db     *gorm.DB
	logger arbor.ILogger
}

// Open connects to driver ("sqlite" or "postgres") and migrates the schema
func Open(driver, dsn string, log arbor.ILogger) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create archive directory: %w", err)
			}
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported archive driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to archive database: %w", err)
	}

	if driver != "postgres" {
		// One connection so an in-memory database is shared by every query
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if err := db.AutoMigrate(&runRow{}, &candidateRow{}); err != nil {
		return nil, fmt.Errorf("archive migration failed: %w", err)
	}

	log.Debug().Str("driver", driver).Msg("Archive database initialized")
	return &Store{db: db, logger: log}, nil
}

// SaveRun implements ArchiveStorage
func (s *Store) SaveRun(ctx context.Context, run *models.ScoreRun) error {
	if run == nil || run.ID == "" {
		return errors.New("run id is required")
	}

	row := runRow{
		ID:          run.ID,
		GeneratedAt: run.GeneratedAt.UTC(),
		DurationMs:  run.Duration.Milliseconds(),
		Sources:     strings.Join(run.Sources, ","),
	}
	for _, c := range run.Candidates {
		row.Candidates = append(row.Candidates, toCandidateRow(run, c))
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to archive run %s: %w", run.ID, err)
	}
	return nil
}

// ListRuns implements ArchiveStorage. Newest first, candidates included.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*models.ScoreRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []runRow
	err := s.db.WithContext(ctx).
		Preload("Candidates", func(db *gorm.DB) *gorm.DB { return db.Order("action_score DESC, id ASC") }).
		Order("generated_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*models.ScoreRun, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, fromRunRow(row))
	}
	return runs, nil
}

// GetRun implements ArchiveStorage
func (s *Store) GetRun(ctx context.Context, id string) (*models.ScoreRun, error) {
	var row runRow
	err := s.db.WithContext(ctx).
		Preload("Candidates", func(db *gorm.DB) *gorm.DB { return db.Order("action_score DESC, id ASC") }).
		First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return fromRunRow(row), nil
}

// TickerHistory implements ArchiveStorage. Newest first.
func (s *Store) TickerHistory(ctx context.Context, ticker string, limit int) ([]models.ArchivedCandidate, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []candidateRow
	err := s.db.WithContext(ctx).
		Where("ticker = ?", strings.ToUpper(ticker)).
		Order("generated_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", ticker, err)
	}

	history := make([]models.ArchivedCandidate, 0, len(rows))
	for _, row := range rows {
		history = append(history, models.ArchivedCandidate{
			RunID:           row.RunID,
			GeneratedAt:     row.GeneratedAt,
			ScoredCandidate: fromCandidateRow(row),
		})
	}
	return history, nil
}

// Close implements ArchiveStorage
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toCandidateRow(run *models.ScoreRun, c models.ScoredCandidate) candidateRow {
	return candidateRow{
		RunID:          run.ID,
		Ticker:         c.Ticker,
		GeneratedAt:    run.GeneratedAt.UTC(),
		Price:          c.Price,
		ChangePct:      c.ChangePct,
		GapPct:         c.GapPct,
		RelativeVolume: c.RelativeVolume,
		FloatShares:    c.FloatShares,
		RSI:            c.RSI,
		Volume:         c.Volume,
		AvgVolume:      c.AvgVolume,
		Sector:         c.Sector,
		Company:        c.Company,
		AsOf:           c.AsOf.UTC(),
		AIConfidence:   c.AIConfidence,
		ActionScore:    c.ActionScore,
		Decision:       string(c.Decision),
		TopCatalyst:    string(c.TopCatalyst),
	}
}

func fromCandidateRow(row candidateRow) models.ScoredCandidate {
	return models.ScoredCandidate{
		StockSnapshot: models.StockSnapshot{
			Ticker:         row.Ticker,
			Price:          row.Price,
			ChangePct:      row.ChangePct,
			GapPct:         row.GapPct,
			RelativeVolume: row.RelativeVolume,
			FloatShares:    row.FloatShares,
			RSI:            row.RSI,
			Volume:         row.Volume,
			AvgVolume:      row.AvgVolume,
			Sector:         row.Sector,
			Company:        row.Company,
			AsOf:           row.AsOf.UTC(),
		},
		AIConfidence: row.AIConfidence,
		ActionScore:  row.ActionScore,
		Decision:     models.Decision(row.Decision),
		TopCatalyst:  models.CatalystTag(row.TopCatalyst),
	}
}

func fromRunRow(row runRow) *models.ScoreRun {
	run := &models.ScoreRun{
		ID:          row.ID,
		GeneratedAt: row.GeneratedAt.UTC(),
		Duration:    time.Duration(row.DurationMs) * time.Millisecond,
		Candidates:  make([]models.ScoredCandidate, 0, len(row.Candidates)),
	}
	if row.Sources != "" {
		run.Sources = strings.Split(row.Sources, ",")
	}
	for _, c := range row.Candidates {
		run.Candidates = append(run.Candidates, fromCandidateRow(c))
	}
	return run
}
