package artifact

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/flowstate/internal/apperr"
	"github.com/starford/flowstate/internal/models"
)

// fakeLoader returns whatever the test currently configures and counts calls.
type fakeLoader struct {
	mu    sync.Mutex
	a     *models.Artifact
	err   error
	calls atomic.Int32
	delay time.Duration
}

func (f *fakeLoader) set(a *models.Artifact, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.a, f.err = a, err
}

func (f *fakeLoader) Load() (*models.Artifact, []byte, error) {
	f.calls.Add(1)
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, nil, f.err
	}
	raw, _ := Encode(f.a)
	return f.a, raw, nil
}

var errMissing = apperr.New(apperr.CodeDataNotFound, "Correlation data not found.", "Run the pipeline")

func TestCache_LazyLoad(t *testing.T) {
	l := &fakeLoader{a: sampleArtifact()}
	c := NewCache(l, nil)
	if c.State() != StateUnloaded {
		t.Fatalf("state = %v, want UNLOADED", c.State())
	}
	if st := c.Status(); st.State != "UNLOADED" || st.SnapshotID != "" {
		t.Errorf("status = %+v", st)
	}

	snap, err := c.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.State() != StateLoaded {
		t.Errorf("state = %v, want LOADED", c.State())
	}
	if snap.Checksum == "" || snap.ID.String() == "" {
		t.Errorf("snapshot missing identity: %+v", snap)
	}
	if snap.Model.Points != len(snap.Artifact.Timeline) {
		t.Errorf("model points = %d, want %d", snap.Model.Points, len(snap.Artifact.Timeline))
	}

	again, _ := c.Get()
	if again != snap {
		t.Error("second Get should return the same snapshot")
	}
	if n := l.calls.Load(); n != 1 {
		t.Errorf("loader calls = %d, want 1", n)
	}
	if st := c.Status(); st.State != "LOADED" || st.TimelineDays != 4 || st.LoadedAt == nil {
		t.Errorf("status = %+v", st)
	}
}

func TestCache_ConcurrentFirstGetLoadsOnce(t *testing.T) {
	l := &fakeLoader{a: sampleArtifact(), delay: 20 * time.Millisecond}
	c := NewCache(l, nil)

	var wg sync.WaitGroup
	snaps := make([]*Snapshot, 16)
	for i := range snaps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snaps[i], _ = c.Get()
		}(i)
	}
	wg.Wait()

	if n := l.calls.Load(); n != 1 {
		t.Errorf("loader calls = %d, want 1", n)
	}
	for i, s := range snaps {
		if s == nil || s != snaps[0] {
			t.Fatalf("caller %d got a different snapshot", i)
		}
	}
}

func TestCache_ErrorIsSticky(t *testing.T) {
	l := &fakeLoader{err: errMissing}
	c := NewCache(l, nil)

	for i := 0; i < 3; i++ {
		if _, err := c.Get(); !errors.Is(err, apperr.ErrDataNotFound) {
			t.Fatalf("Get %d: err = %v, want DATA_NOT_FOUND", i, err)
		}
	}
	if n := l.calls.Load(); n != 1 {
		t.Errorf("loader calls = %d, want 1 (error cached)", n)
	}
	if c.State() != StateError {
		t.Errorf("state = %v, want ERROR", c.State())
	}
	if st := c.Status(); st.Error == nil || st.Error.ErrorCode != apperr.CodeDataNotFound {
		t.Errorf("status = %+v", st)
	}

	// Fixing the file alone changes nothing until an explicit reload.
	l.set(sampleArtifact(), nil)
	if _, err := c.Get(); err == nil {
		t.Fatal("Get should still report the cached error")
	}
	snap, err := c.Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if c.State() != StateLoaded || snap == nil {
		t.Errorf("state = %v after reload", c.State())
	}
}

func TestCache_FailedReloadFromErrorReplacesError(t *testing.T) {
	l := &fakeLoader{err: errMissing}
	c := NewCache(l, nil)
	_, _ = c.Get()

	l.set(nil, apperr.New(apperr.CodeDataInvalid, "Correlation data is invalid", "Re-run"))
	if _, err := c.Reload(); !errors.Is(err, apperr.ErrDataInvalid) {
		t.Fatalf("Reload err = %v, want DATA_INVALID", err)
	}
	if _, err := c.Get(); !errors.Is(err, apperr.ErrDataInvalid) {
		t.Errorf("Get err = %v, want the replaced DATA_INVALID", err)
	}
}

func TestCache_FailedReloadKeepsSnapshot(t *testing.T) {
	l := &fakeLoader{a: sampleArtifact()}
	c := NewCache(l, nil)
	first, err := c.Get()
	if err != nil {
		t.Fatal(err)
	}

	l.set(nil, apperr.New(apperr.CodeDataInvalid, "Correlation data is invalid", "Re-run"))
	if _, err := c.Reload(); !errors.Is(err, apperr.ErrDataInvalid) {
		t.Fatalf("Reload err = %v, want DATA_INVALID", err)
	}
	got, err := c.Get()
	if err != nil {
		t.Fatalf("Get after failed reload: %v", err)
	}
	if got != first {
		t.Error("failed reload must keep the previous snapshot")
	}
	if c.State() != StateLoaded {
		t.Errorf("state = %v, want LOADED", c.State())
	}
}

func TestCache_ReloadSwapsSnapshot(t *testing.T) {
	l := &fakeLoader{a: sampleArtifact()}
	c := NewCache(l, nil)
	first, _ := c.Get()

	next, err := c.Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if next == first || next.ID == first.ID {
		t.Error("reload should produce a new snapshot")
	}
	if got, _ := c.Get(); got != next {
		t.Error("Get should return the reloaded snapshot")
	}
	// The old snapshot stays intact for readers still holding it.
	if len(first.Artifact.Timeline) != 4 {
		t.Error("previous snapshot was mutated")
	}
}

func TestCache_UntaggedLoaderErrorBecomesInternal(t *testing.T) {
	c := NewCache(&fakeLoader{err: errors.New("disk on fire")}, nil)
	_, err := c.Get()
	if !errors.Is(err, apperr.ErrInternal) {
		t.Fatalf("err = %v, want INTERNAL", err)
	}
}
