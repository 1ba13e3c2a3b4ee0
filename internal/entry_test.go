package internal

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/flowstate/internal/artifact"
	"github.com/starford/flowstate/internal/models"
)

func writeCSV(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunBuild(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Artifact.Path = filepath.Join(dir, "public", "correlations.json")
	cfg.Ingest.SQLitePath = filepath.Join(dir, "events.db")
	cfg.Ingest.ConsumptionCSV = filepath.Join(dir, "consumption.csv")
	cfg.Ingest.CommitsCSV = filepath.Join(dir, "commits.csv")

	writeCSV(t, cfg.Ingest.ConsumptionCSV,
		"date,category\n2024-01-01,music\n2024-01-02,video\n2024-01-03,music\n2024-01-03,video\n")
	writeCSV(t, cfg.Ingest.CommitsCSV,
		"date,count\n2024-01-01,5\n2024-01-02,3\n2024-01-03,10\n2024-01-04,2\n")

	if err := RunBuild(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)); err != nil {
		t.Fatalf("RunBuild: %v", err)
	}

	store, err := artifact.NewStore(cfg.Artifact.Path)
	if err != nil {
		t.Fatal(err)
	}
	a, _, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(a.Timeline) != 4 || a.Insights.BestPattern != models.PatternBoth {
		t.Errorf("artifact = %d days, best %s", len(a.Timeline), a.Insights.BestPattern)
	}
	if a.Insights.SynergyBoost != "+400.0%" {
		t.Errorf("synergy = %s, want +400.0%%", a.Insights.SynergyBoost)
	}
}

func TestRunBuild_MissingInput(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Artifact.Path = filepath.Join(dir, "correlations.json")
	cfg.Ingest.SQLitePath = filepath.Join(dir, "events.db")
	cfg.Ingest.ConsumptionCSV = filepath.Join(dir, "missing.csv")
	cfg.Ingest.CommitsCSV = filepath.Join(dir, "commits.csv")

	if err := RunBuild(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)); err == nil {
		t.Fatal("expected error for missing input")
	}
	if _, err := os.Stat(cfg.Artifact.Path); !os.IsNotExist(err) {
		t.Errorf("artifact written despite failed import: %v", err)
	}
}

func TestEntryPointsRequireConfig(t *testing.T) {
	ctx := context.Background()
	for name, run := range map[string]func(context.Context, ...Option) error{
		"serve": Run,
		"mcp":   RunMCP,
		"build": RunBuild,
	} {
		if err := run(ctx, WithLogOutput(io.Discard)); err == nil {
			t.Errorf("%s without config should fail", name)
		}
	}
}
