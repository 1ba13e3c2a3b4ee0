package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeNotFound, "No data available for 2024-01-01", "try another date")
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is to match ErrNotFound")
	}
	if errors.Is(err, ErrInsufficientData) {
		t.Error("different codes must not match")
	}

	wrapped := fmt.Errorf("query: %w", err)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("match should survive fmt wrapping")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(fs.ErrNotExist, CodeDataNotFound, "Correlation data not found", "run the pipeline")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("cause should be reachable through Unwrap")
	}
	if !errors.Is(err, ErrDataNotFound) {
		t.Error("code sentinel should match")
	}
}

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}

	tagged := New(CodeInvalidParameter, "bad", "fix it")
	if got := From(fmt.Errorf("ctx: %w", tagged)); got != tagged {
		t.Errorf("From should unwrap to the tagged error, got %v", got)
	}

	got := From(errors.New("/var/lib/secret.json: permission denied"))
	if got.Code != CodeInternal {
		t.Errorf("code = %s, want INTERNAL", got.Code)
	}
	body := got.Body()
	if body.Suggestion == "" || body.Error == "" {
		t.Errorf("body should be fully populated: %+v", body)
	}
	for _, s := range []string{body.Error, body.Suggestion} {
		if s == "/var/lib/secret.json: permission denied" {
			t.Error("library message leaked into response body")
		}
	}
}
