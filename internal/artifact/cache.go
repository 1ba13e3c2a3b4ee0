package artifact

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/starford/flowstate/internal/apperr"
	"github.com/starford/flowstate/internal/checksum"
	"github.com/starford/flowstate/internal/forecast"
	"github.com/starford/flowstate/internal/metrics"
	"github.com/starford/flowstate/internal/models"
)

// State is the cache lifecycle state.
type State int32

const (
	StateUnloaded State = iota
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "LOADED"
	case StateError:
		return "ERROR"
	default:
		return "UNLOADED"
	}
}

// Snapshot is one loaded artifact plus everything derived from it. It is
// shared by concurrent readers and must not be mutated.
type Snapshot struct {
	ID       uuid.UUID
	Artifact *models.Artifact
	Model    forecast.Model
	Checksum string
	LoadedAt time.Time
}

// Loader reads and validates the artifact. *Store implements it.
type Loader interface {
	Load() (*models.Artifact, []byte, error)
}

type entry struct {
	state State
	snap  *Snapshot
	err   error
}

// Cache holds the current snapshot. The first Get loads the artifact;
// afterwards the cached snapshot or cached error is returned until Reload.
type Cache struct {
	loader Loader
	logger *slog.Logger
	now    func() time.Time

	group   singleflight.Group
	current atomic.Pointer[entry]
}

// NewCache creates an UNLOADED cache.
func NewCache(loader Loader, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{loader: loader, logger: logger, now: time.Now}
}

// State returns the current state.
func (c *Cache) State() State {
	if e := c.current.Load(); e != nil {
		return e.state
	}
	return StateUnloaded
}

// Get returns the current snapshot, loading it on first use. Concurrent
// first callers share a single load.
func (c *Cache) Get() (*Snapshot, error) {
	if e := c.current.Load(); e != nil {
		return e.snap, e.err
	}
	v, _, _ := c.group.Do("load", func() (any, error) {
		if e := c.current.Load(); e != nil {
			return e, nil
		}
		e := c.load("load")
		if !c.current.CompareAndSwap(nil, e) {
			return c.current.Load(), nil
		}
		c.publish(e)
		return e, nil
	})
	e := v.(*entry)
	return e.snap, e.err
}

// Reload re-reads the artifact and swaps in a new snapshot. On failure a
// LOADED cache keeps serving its previous snapshot and the error is only
// returned to the caller; an UNLOADED or ERROR cache records the error.
func (c *Cache) Reload() (*Snapshot, error) {
	v, _, _ := c.group.Do("reload", func() (any, error) {
		next := c.load("reload")
		for {
			prev := c.current.Load()
			if next.err != nil && prev != nil && prev.state == StateLoaded {
				c.logger.Warn("artifact: reload failed, keeping previous snapshot",
					slog.String("snapshot", prev.snap.ID.String()),
					slog.String("error", next.err.Error()))
				return next, nil
			}
			if c.current.CompareAndSwap(prev, next) {
				c.publish(next)
				return next, nil
			}
		}
	})
	e := v.(*entry)
	return e.snap, e.err
}

func (c *Cache) load(kind string) *entry {
	a, raw, err := c.loader.Load()
	if err != nil {
		ae := apperr.From(err)
		metrics.RecordLoad(kind, string(ae.Code))
		c.logger.Error("artifact: load failed",
			slog.String("kind", kind),
			slog.String("code", string(ae.Code)),
			slog.String("error", err.Error()))
		return &entry{state: StateError, err: ae}
	}
	snap := &Snapshot{
		ID:       uuid.New(),
		Artifact: a,
		Model:    forecast.Derive(a),
		Checksum: checksum.Sum(raw),
		LoadedAt: c.now().UTC(),
	}
	metrics.RecordLoad(kind, "ok")
	c.logger.Info("artifact: loaded",
		slog.String("kind", kind),
		slog.String("snapshot", snap.ID.String()),
		slog.Int("days", len(a.Timeline)))
	return &entry{state: StateLoaded, snap: snap}
}

func (c *Cache) publish(e *entry) {
	days := 0
	if e.snap != nil {
		days = len(e.snap.Artifact.Timeline)
	}
	metrics.SetCacheState(int(e.state), days)
}

// Status describes the cache for health and status endpoints.
type Status struct {
	State        string       `json:"state"`
	SnapshotID   string       `json:"snapshot_id,omitempty"`
	LoadedAt     *time.Time   `json:"loaded_at,omitempty"`
	Checksum     string       `json:"checksum,omitempty"`
	TimelineDays int          `json:"timeline_days"`
	Error        *apperr.Body `json:"error,omitempty"`
}

// Status reports the current state without triggering a load.
func (c *Cache) Status() Status {
	e := c.current.Load()
	if e == nil {
		return Status{State: StateUnloaded.String()}
	}
	st := Status{State: e.state.String()}
	if e.snap != nil {
		loaded := e.snap.LoadedAt
		st.SnapshotID = e.snap.ID.String()
		st.LoadedAt = &loaded
		st.Checksum = e.snap.Checksum
		st.TimelineDays = len(e.snap.Artifact.Timeline)
	}
	if e.err != nil {
		body := apperr.From(e.err).Body()
		st.Error = &body
	}
	return st
}
