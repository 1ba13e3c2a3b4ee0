// Package testutil provides shared test helpers for artifacts, caches and event databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/flowstate/internal/artifact"
	"github.com/starford/flowstate/internal/correlator"
	"github.com/starford/flowstate/internal/events"
	"github.com/starford/flowstate/internal/models"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// ReferenceDays is the four-day timeline with one day in each grid bucket.
func ReferenceDays() []models.DailyMetrics {
	return []models.DailyMetrics{
		{Date: "2024-01-01", MusicCount: 1, VideoCount: 0, CommitCount: 5},
		{Date: "2024-01-02", MusicCount: 0, VideoCount: 1, CommitCount: 3},
		{Date: "2024-01-03", MusicCount: 1, VideoCount: 1, CommitCount: 10},
		{Date: "2024-01-04", MusicCount: 0, VideoCount: 0, CommitCount: 2},
	}
}

// Artifact runs the correlator over event tables equivalent to days.
func Artifact(days ...models.DailyMetrics) *models.Artifact {
	var consumption []models.ConsumptionEvent
	var commits []models.CommitEvent
	for _, d := range days {
		if d.MusicCount > 0 {
			consumption = append(consumption, models.ConsumptionEvent{Date: d.Date, Category: models.CategoryMusic, Count: d.MusicCount})
		}
		if d.VideoCount > 0 {
			consumption = append(consumption, models.ConsumptionEvent{Date: d.Date, Category: models.CategoryVideo, Count: d.VideoCount})
		}
		commits = append(commits, models.CommitEvent{Date: d.Date, Count: d.CommitCount})
	}
	return correlator.Build(consumption, commits)
}

// Store creates an artifact store in a temp dir, writing a when non-nil.
func Store(t *testing.T, a *models.Artifact) *artifact.Store {
	t.Helper()
	s, err := artifact.NewStore(filepath.Join(t.TempDir(), "public", "correlations.json"))
	if err != nil {
		t.Fatal(err)
	}
	if a != nil {
		if _, err := s.Save(a); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

// Cache returns an unloaded cache over a stored copy of a. A nil a leaves
// the artifact file missing.
func Cache(t *testing.T, a *models.Artifact) *artifact.Cache {
	t.Helper()
	return artifact.NewCache(Store(t, a), Logger())
}

// CorruptCache returns a cache whose artifact file holds content.
func CorruptCache(t *testing.T, content string) *artifact.Cache {
	t.Helper()
	s := Store(t, nil)
	if err := os.WriteFile(s.Path(), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return artifact.NewCache(s, Logger())
}

// EventsDB creates a temporary SQLite event database that is automatically cleaned up.
func EventsDB(t *testing.T) *events.DB {
	t.Helper()
	db, err := events.Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
