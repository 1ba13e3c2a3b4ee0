package query

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/flowstate/internal/apperr"
	"github.com/starford/flowstate/internal/metrics"
)

// Handler decodes raw parameters and runs one operation.
type Handler func(ctx context.Context, s *Service, raw json.RawMessage) (any, error)

// handlers binds every catalogue member to its typed service method.
var handlers = map[Operation]Handler{
	OpBestHours: func(ctx context.Context, s *Service, raw json.RawMessage) (any, error) {
		if _, err := decodeParams[struct{}](raw); err != nil {
			return nil, badParams(err)
		}
		return s.BestHours(ctx)
	},
	OpFlowStatePattern: func(ctx context.Context, s *Service, raw json.RawMessage) (any, error) {
		if _, err := decodeParams[struct{}](raw); err != nil {
			return nil, badParams(err)
		}
		return s.FlowStatePattern(ctx)
	},
	OpAnalyzeProductivity: func(ctx context.Context, s *Service, raw json.RawMessage) (any, error) {
		p, err := decodeParams[ProductivityParams](raw)
		if err != nil {
			return nil, invalidDate(string(raw), err)
		}
		return s.AnalyzeProductivity(ctx, p)
	},
	OpMusicImpact: func(ctx context.Context, s *Service, raw json.RawMessage) (any, error) {
		if _, err := decodeParams[struct{}](raw); err != nil {
			return nil, badParams(err)
		}
		return s.MusicImpact(ctx)
	},
	OpPredictCommits: func(ctx context.Context, s *Service, raw json.RawMessage) (any, error) {
		p, err := decodeParams[PredictParams](raw)
		if err != nil {
			return nil, badParams(err)
		}
		return s.PredictCommits(ctx, p)
	},
}

func badParams(cause error) *apperr.Error {
	return apperr.Wrap(cause, apperr.CodeInvalidParameter,
		"Parameters could not be decoded",
		"Send a JSON object with only the documented parameters and numeric values where numbers are expected")
}

// Dispatcher routes operation calls to their handlers and records each call.
type Dispatcher struct {
	svc      *Service
	handlers map[Operation]Handler
	logger   *slog.Logger
}

// NewDispatcher binds the catalogue to svc. It fails when an operation has
// no handler or a handler has no operation.
func NewDispatcher(svc *Service, logger *slog.Logger) (*Dispatcher, error) {
	if err := verify(handlers); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{svc: svc, handlers: handlers, logger: logger}, nil
}

func verify(h map[Operation]Handler) error {
	for _, op := range Operations {
		if h[op] == nil {
			return fmt.Errorf("query: operation %s has no handler", op)
		}
	}
	if len(h) != len(Operations) {
		return fmt.Errorf("query: %d handlers for %d operations", len(h), len(Operations))
	}
	return nil
}

// Service returns the underlying query service.
func (d *Dispatcher) Service() *Service { return d.svc }

// Catalogue lists the operations this dispatcher serves.
func (d *Dispatcher) Catalogue() []Descriptor { return Catalogue() }

// Call runs op with raw JSON parameters. Any returned error is an
// *apperr.Error.
func (d *Dispatcher) Call(ctx context.Context, op Operation, raw json.RawMessage) (any, error) {
	h, ok := d.handlers[op]
	if !ok {
		_, err := ParseOperation(string(op))
		return nil, err
	}

	start := time.Now()
	res, err := h(ctx, d.svc, raw)
	elapsed := time.Since(start)

	code := "ok"
	if err != nil {
		ae := apperr.From(err)
		code = string(ae.Code)
		level := slog.LevelWarn
		if ae.Code == apperr.CodeInternal {
			level = slog.LevelError
		}
		d.logger.Log(ctx, level, "query: operation failed",
			slog.String("operation", string(op)),
			slog.String("code", code),
			slog.String("error", err.Error()))
		err = ae
	} else {
		d.logger.Debug("query: operation completed",
			slog.String("operation", string(op)),
			slog.Duration("elapsed", elapsed))
	}
	metrics.RecordQuery(string(op), code, elapsed.Seconds())
	return res, err
}

// CallName is Call for a wire operation name.
func (d *Dispatcher) CallName(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	op, err := ParseOperation(name)
	if err != nil {
		return nil, err
	}
	return d.Call(ctx, op, raw)
}
