package events

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/starford/flowstate/internal/models"
)

// ReadStats reports how many rows were read and how many were skipped for
// carrying an unparseable date.
type ReadStats struct {
	Rows    int
	Skipped int
}

// header maps lower-cased column names to their index.
type header map[string]int

func readHeader(r *csv.Reader, required ...string) (header, error) {
	rec, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("events: csv: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("events: csv: read header: %w", err)
	}
	h := make(header, len(rec))
	for i, name := range rec {
		h[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("events: csv: missing %q column", col)
		}
	}
	return h, nil
}

func (h header) get(rec []string, col string) (string, bool) {
	i, ok := h[col]
	if !ok || i >= len(rec) {
		return "", false
	}
	return strings.TrimSpace(rec[i]), true
}

// count parses the optional count column; rows without one count once.
func (h header) count(rec []string, line int) (int, error) {
	v, ok := h.get(rec, "count")
	if !ok || v == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("events: csv: line %d: count must be a non-negative integer, got %q", line, v)
	}
	return n, nil
}

func validDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return cr
}

// ReadConsumption parses a consumption CSV with columns date, category and
// an optional count.
func ReadConsumption(r io.Reader) ([]models.ConsumptionEvent, ReadStats, error) {
	cr := newReader(r)
	h, err := readHeader(cr, "date", "category")
	if err != nil {
		return nil, ReadStats{}, err
	}

	var out []models.ConsumptionEvent
	var st ReadStats
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, st, fmt.Errorf("events: csv: line %d: %w", line, err)
		}
		st.Rows++
		date, _ := h.get(rec, "date")
		if !validDate(date) {
			st.Skipped++
			continue
		}
		category, _ := h.get(rec, "category")
		category = strings.ToLower(category)
		if category != models.CategoryMusic && category != models.CategoryVideo {
			return nil, st, fmt.Errorf("events: csv: line %d: unknown category %q", line, category)
		}
		n, err := h.count(rec, line)
		if err != nil {
			return nil, st, err
		}
		out = append(out, models.ConsumptionEvent{Date: date, Category: category, Count: n})
	}
	return out, st, nil
}

// ReadCommits parses a commit CSV with a date column and an optional count.
func ReadCommits(r io.Reader) ([]models.CommitEvent, ReadStats, error) {
	cr := newReader(r)
	h, err := readHeader(cr, "date")
	if err != nil {
		return nil, ReadStats{}, err
	}

	var out []models.CommitEvent
	var st ReadStats
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, st, fmt.Errorf("events: csv: line %d: %w", line, err)
		}
		st.Rows++
		date, _ := h.get(rec, "date")
		if !validDate(date) {
			st.Skipped++
			continue
		}
		n, err := h.count(rec, line)
		if err != nil {
			return nil, st, err
		}
		out = append(out, models.CommitEvent{Date: date, Count: n})
	}
	return out, st, nil
}

// ReadConsumptionFile opens path and parses it with ReadConsumption.
func ReadConsumptionFile(path string) ([]models.ConsumptionEvent, ReadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ReadStats{}, fmt.Errorf("events: open consumption csv: %w", err)
	}
	defer f.Close()
	return ReadConsumption(f)
}

// ReadCommitsFile opens path and parses it with ReadCommits.
func ReadCommitsFile(path string) ([]models.CommitEvent, ReadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ReadStats{}, fmt.Errorf("events: open commits csv: %w", err)
	}
	defer f.Close()
	return ReadCommits(f)
}
