// Package artifact persists the derived FlowState artifact and serves it to
// the query layer through an immutable, lazily loaded cache.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/flowstate/internal/apperr"
	"github.com/starford/flowstate/internal/models"
)

var (
	requiredKeys = []string{"timeline", "totals", "correlations", "insights"}
	percentRe    = regexp.MustCompile(`^[+-]\d+(\.\d+)?%$`)
)

const invalidSuggestion = "Re-run the FlowState pipeline to regenerate the correlation data"

// Encode renders the artifact as indented JSON with a trailing newline.
func Encode(a *models.Artifact) ([]byte, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("artifact: encode: %w", err)
	}
	return append(data, '\n'), nil
}

type rawDay struct {
	Date        *string `json:"date"`
	MusicCount  *int    `json:"music_count"`
	VideoCount  *int    `json:"video_count"`
	CommitCount *int    `json:"commit_count"`
}

func (d *rawDay) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Date, validation.NotNil, validation.Date(models.DateLayout)),
		validation.Field(&d.MusicCount, validation.NotNil, validation.Min(0)),
		validation.Field(&d.VideoCount, validation.NotNil, validation.Min(0)),
		validation.Field(&d.CommitCount, validation.NotNil, validation.Min(0)),
	)
}

type rawTotals struct {
	TotalMusic   *int `json:"total_music"`
	TotalVideos  *int `json:"total_videos"`
	TotalCommits *int `json:"total_commits"`
}

func (t *rawTotals) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.TotalMusic, validation.NotNil, validation.Min(0)),
		validation.Field(&t.TotalVideos, validation.NotNil, validation.Min(0)),
		validation.Field(&t.TotalCommits, validation.NotNil, validation.Min(0)),
	)
}

type rawPattern struct {
	AvgCommits *float64 `json:"avg_commits"`
	Days       *int     `json:"days"`
}

func (p *rawPattern) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.AvgCommits, validation.NotNil, validation.Min(0.0)),
		validation.Field(&p.Days, validation.NotNil, validation.Min(0)),
	)
}

type rawInsights struct {
	MusicImpact  *string `json:"music_impact"`
	VideoImpact  *string `json:"video_impact"`
	SynergyBoost *string `json:"synergy_boost"`
	BestPattern  *string `json:"best_pattern"`
}

func (i *rawInsights) Validate() error {
	labels := make([]interface{}, 0, len(models.Patterns))
	for _, p := range models.Patterns {
		labels = append(labels, string(p))
	}
	return validation.ValidateStruct(i,
		validation.Field(&i.MusicImpact, validation.NotNil, validation.Match(percentRe)),
		validation.Field(&i.VideoImpact, validation.NotNil, validation.Match(percentRe)),
		validation.Field(&i.SynergyBoost, validation.NotNil, validation.Match(percentRe)),
		validation.Field(&i.BestPattern, validation.NotNil, validation.In(labels...)),
	)
}

// Decode parses and validates artifact JSON. Every failure is a DATA_INVALID
// *apperr.Error.
func Decode(data []byte) (*models.Artifact, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, invalid("file is not a JSON object", err)
	}
	for _, k := range requiredKeys {
		raw, ok := top[k]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, invalid("missing required field: "+k, nil)
		}
	}

	a := &models.Artifact{}

	var days []rawDay
	if err := json.Unmarshal(top["timeline"], &days); err != nil {
		return nil, invalid("timeline must be a list of daily metrics", err)
	}
	a.Timeline = make([]models.DailyMetrics, 0, len(days))
	for i := range days {
		d := &days[i]
		if err := d.Validate(); err != nil {
			return nil, invalid(fmt.Sprintf("timeline entry %d is malformed", i), err)
		}
		if i > 0 && *d.Date <= a.Timeline[i-1].Date {
			return nil, invalid(fmt.Sprintf("timeline entry %d is out of order or duplicated", i), nil)
		}
		a.Timeline = append(a.Timeline, models.DailyMetrics{
			Date:        *d.Date,
			MusicCount:  *d.MusicCount,
			VideoCount:  *d.VideoCount,
			CommitCount: *d.CommitCount,
		})
	}

	var totals rawTotals
	if err := json.Unmarshal(top["totals"], &totals); err != nil {
		return nil, invalid("totals must be an object", err)
	}
	if err := totals.Validate(); err != nil {
		return nil, invalid("totals are malformed", err)
	}
	a.Totals = models.Totals{
		TotalMusic:   *totals.TotalMusic,
		TotalVideos:  *totals.TotalVideos,
		TotalCommits: *totals.TotalCommits,
	}

	var grid map[string]rawPattern
	if err := json.Unmarshal(top["correlations"], &grid); err != nil {
		return nil, invalid("correlations must be an object", err)
	}
	a.Correlations = make(map[models.Pattern]models.CorrelationPattern, len(models.Patterns))
	for label, rp := range grid {
		p, err := models.ParsePattern(label)
		if err != nil {
			return nil, invalid("unknown correlation label "+label, err)
		}
		if err := rp.Validate(); err != nil {
			return nil, invalid("correlation "+label+" is malformed", err)
		}
		a.Correlations[p] = models.CorrelationPattern{AvgCommits: *rp.AvgCommits, Days: *rp.Days}
	}
	for _, p := range models.Patterns {
		if _, ok := a.Correlations[p]; !ok {
			return nil, invalid("missing correlation label "+string(p), nil)
		}
	}
	if a.DaysInGrid() != len(a.Timeline) {
		return nil, invalid(fmt.Sprintf("correlation days (%d) do not match timeline length (%d)", a.DaysInGrid(), len(a.Timeline)), nil)
	}

	var ins rawInsights
	if err := json.Unmarshal(top["insights"], &ins); err != nil {
		return nil, invalid("insights must be an object", err)
	}
	if err := ins.Validate(); err != nil {
		return nil, invalid("insights are malformed", err)
	}
	a.Insights = models.InsightSet{
		MusicImpact:  *ins.MusicImpact,
		VideoImpact:  *ins.VideoImpact,
		SynergyBoost: *ins.SynergyBoost,
		BestPattern:  models.Pattern(*ins.BestPattern),
	}

	return a, nil
}

func invalid(detail string, cause error) *apperr.Error {
	return apperr.Wrap(cause, apperr.CodeDataInvalid, "Correlation data is invalid: "+detail, invalidSuggestion)
}
