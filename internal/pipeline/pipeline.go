// Package pipeline imports the ingestion CSVs into the event tables and
// rebuilds the artifact from them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/flowstate/internal/artifact"
	"github.com/starford/flowstate/internal/correlator"
	"github.com/starford/flowstate/internal/events"
	"github.com/starford/flowstate/internal/metrics"
	"github.com/starford/flowstate/internal/models"
)

// Inputs names the two ingestion CSV files.
type Inputs struct {
	ConsumptionCSV string
	CommitsCSV     string
}

// ImportResult reports per-table read statistics.
type ImportResult struct {
	Consumption events.ReadStats
	Commits     events.ReadStats
}

// Import reads both CSVs and replaces the event tables with their rows.
// Both files are parsed before either table is touched.
func Import(ctx context.Context, db *events.DB, in Inputs, logger *slog.Logger) (ImportResult, error) {
	var res ImportResult

	consumption, cst, err := events.ReadConsumptionFile(in.ConsumptionCSV)
	if err != nil {
		return res, fmt.Errorf("pipeline: import: %w", err)
	}
	commits, mst, err := events.ReadCommitsFile(in.CommitsCSV)
	if err != nil {
		return res, fmt.Errorf("pipeline: import: %w", err)
	}
	res.Consumption, res.Commits = cst, mst

	if err := db.ReplaceConsumption(ctx, consumption); err != nil {
		return res, fmt.Errorf("pipeline: import: %w", err)
	}
	if err := db.ReplaceCommits(ctx, commits); err != nil {
		return res, fmt.Errorf("pipeline: import: %w", err)
	}

	metrics.RecordImport("consumption", len(consumption), cst.Skipped)
	metrics.RecordImport("commits", len(commits), mst.Skipped)
	logger.Info("pipeline: imported",
		slog.Int("consumption_rows", len(consumption)),
		slog.Int("consumption_skipped", cst.Skipped),
		slog.Int("commit_rows", len(commits)),
		slog.Int("commit_skipped", mst.Skipped))
	return res, nil
}

// Build correlates the current event tables and atomically writes the artifact.
func Build(ctx context.Context, src events.Source, store *artifact.Store, logger *slog.Logger) (*models.Artifact, error) {
	start := time.Now()
	a, err := build(ctx, src, store)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordBuild("error", elapsed)
		return nil, err
	}
	metrics.RecordBuild("ok", elapsed)
	logger.Info("pipeline: artifact built",
		slog.Int("days", len(a.Timeline)),
		slog.String("best_pattern", string(a.Insights.BestPattern)),
		slog.Float64("seconds", elapsed))
	return a, nil
}

func build(ctx context.Context, src events.Source, store *artifact.Store) (*models.Artifact, error) {
	consumption, err := src.Consumption(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: build: %w", err)
	}
	commits, err := src.Commits(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: build: %w", err)
	}
	a := correlator.Build(consumption, commits)
	if _, err := store.Save(a); err != nil {
		return nil, fmt.Errorf("pipeline: build: %w", err)
	}
	return a, nil
}

// Run imports the inputs and rebuilds the artifact.
func Run(ctx context.Context, db *events.DB, in Inputs, store *artifact.Store, logger *slog.Logger) (*models.Artifact, error) {
	if _, err := Import(ctx, db, in, logger); err != nil {
		return nil, err
	}
	return Build(ctx, db, store, logger)
}
