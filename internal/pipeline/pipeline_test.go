package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/flowstate/internal/artifact"
	"github.com/starford/flowstate/internal/events"
	"github.com/starford/flowstate/internal/models"
)

var quiet = slog.New(slog.NewJSONHandler(io.Discard, nil))

type env struct {
	dir   string
	in    Inputs
	db    *events.DB
	store *artifact.Store
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	db, err := events.Open(filepath.Join(dir, "events.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	store, err := artifact.NewStore(filepath.Join(dir, "public", "correlations.json"))
	if err != nil {
		t.Fatal(err)
	}
	return &env{
		dir: dir,
		in: Inputs{
			ConsumptionCSV: filepath.Join(dir, "youtube_data.csv"),
			CommitsCSV:     filepath.Join(dir, "github_data.csv"),
		},
		db:    db,
		store: store,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const consumptionCSV = "date,category\n" +
	"2024-01-01,music\n" +
	"2024-01-02,video\n" +
	"2024-01-03,music\n" +
	"2024-01-03,video\n"

const commitsCSV = "repo,message,date\n" +
	"a,one,2024-01-01\na,two,2024-01-01\na,three,2024-01-01\na,four,2024-01-01\na,five,2024-01-01\n" +
	"a,one,2024-01-02\na,two,2024-01-02\na,three,2024-01-02\n" +
	"b,x,2024-01-03\nb,x,2024-01-03\nb,x,2024-01-03\nb,x,2024-01-03\nb,x,2024-01-03\n" +
	"b,x,2024-01-03\nb,x,2024-01-03\nb,x,2024-01-03\nb,x,2024-01-03\nb,x,2024-01-03\n" +
	"c,y,2024-01-04\nc,y,2024-01-04\n"

func TestRun_BuildsArtifactFromCSVs(t *testing.T) {
	e := newEnv(t)
	writeFile(t, e.in.ConsumptionCSV, consumptionCSV)
	writeFile(t, e.in.CommitsCSV, commitsCSV)

	a, err := Run(context.Background(), e.db, e.in, e.store, quiet)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(a.Timeline) != 4 {
		t.Fatalf("timeline len = %d, want 4", len(a.Timeline))
	}
	if a.Insights.BestPattern != models.PatternBoth || a.Insights.SynergyBoost != "+400.0%" {
		t.Errorf("insights = %+v", a.Insights)
	}

	// The written file is a valid artifact equal to what Run returned.
	loaded, _, err := e.store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Totals != a.Totals {
		t.Errorf("totals = %+v, want %+v", loaded.Totals, a.Totals)
	}
}

func TestImport_BadInputLeavesTablesUntouched(t *testing.T) {
	e := newEnv(t)
	writeFile(t, e.in.ConsumptionCSV, consumptionCSV)
	writeFile(t, e.in.CommitsCSV, commitsCSV)
	if _, err := Import(context.Background(), e.db, e.in, quiet); err != nil {
		t.Fatal(err)
	}

	writeFile(t, e.in.ConsumptionCSV, "date,category\n2024-02-01,podcast\n")
	if _, err := Import(context.Background(), e.db, e.in, quiet); err == nil {
		t.Fatal("expected import error for unknown category")
	}
	rows, _ := e.db.Consumption(context.Background())
	if len(rows) != 4 {
		t.Errorf("consumption rows = %d, want previous 4", len(rows))
	}
}

func TestImport_MissingFile(t *testing.T) {
	e := newEnv(t)
	writeFile(t, e.in.CommitsCSV, commitsCSV)
	if _, err := Import(context.Background(), e.db, e.in, quiet); err == nil {
		t.Error("expected error for missing consumption csv")
	}
}

func TestBuild_EmptyTables(t *testing.T) {
	e := newEnv(t)
	a, err := Build(context.Background(), e.db, e.store, quiet)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(a.Timeline) != 0 || a.Insights.BestPattern != models.PatternBoth {
		t.Errorf("artifact = %+v", a)
	}
}

func TestWatch_DebouncesInputChanges(t *testing.T) {
	e := newEnv(t)
	writeFile(t, e.in.ConsumptionCSV, consumptionCSV)
	writeFile(t, e.in.CommitsCSV, commitsCSV)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{e.in.ConsumptionCSV, e.in.CommitsCSV}, 100*time.Millisecond, quiet,
			func(context.Context) { calls.Add(1) })
	}()
	time.Sleep(100 * time.Millisecond)

	// Unrelated files never trigger.
	writeFile(t, filepath.Join(e.dir, "notes.txt"), "hello")
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Fatalf("calls = %d after unrelated write, want 0", n)
	}

	// A burst of writes coalesces into one call.
	for i := 0; i < 5; i++ {
		writeFile(t, e.in.CommitsCSV, commitsCSV)
		time.Sleep(10 * time.Millisecond)
	}
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop")
	}
}
