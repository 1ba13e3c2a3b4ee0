package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/flowstate/internal/apperr"
	"github.com/starford/flowstate/internal/forecast"
	"github.com/starford/flowstate/internal/models"
)

// ProductivityParams are the inputs of analyze_productivity.
type ProductivityParams struct {
	Date string `json:"date"`
}

// Validate checks the date against the calendar-date grammar.
func (p ProductivityParams) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Date, validation.Required, validation.Date(models.DateLayout)),
	)
	if err != nil {
		return invalidDate(p.Date, err)
	}
	return nil
}

// PredictParams are the inputs of predict_commits. Pointers distinguish a
// missing value from zero.
type PredictParams struct {
	MusicHours   *float64 `json:"music_hours"`
	VideoMinutes *float64 `json:"video_minutes"`
}

// Floats builds PredictParams from plain values.
func Floats(musicHours, videoMinutes float64) PredictParams {
	return PredictParams{MusicHours: &musicHours, VideoMinutes: &videoMinutes}
}

var finite = validation.By(func(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	f, ok := v.(float64)
	if !ok || !forecast.Finite(f) {
		return errors.New("must be a finite number")
	}
	return nil
})

// Validate requires both values to be present, finite and non-negative.
func (p PredictParams) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.MusicHours, validation.NotNil, finite, validation.Min(0.0)),
		validation.Field(&p.VideoMinutes, validation.NotNil, finite, validation.Min(0.0)),
	)
	if err != nil {
		return invalidParams(err, "Provide music_hours and video_minutes as finite numbers >= 0, for example {\"music_hours\": 2, \"video_minutes\": 30}")
	}
	return nil
}

func invalidDate(provided string, cause error) *apperr.Error {
	return apperr.Wrap(cause, apperr.CodeInvalidDateFormat,
		"Invalid date format. Use YYYY-MM-DD",
		fmt.Sprintf("Provided: %q. Expected format: YYYY-MM-DD, for example 2024-01-15", truncate(provided, 32)))
}

// invalidParams names the offending fields in the message; the library's own
// wording stays in the cause.
func invalidParams(cause error, suggestion string) *apperr.Error {
	msg := "Invalid parameters"
	if fields := fieldNames(cause); len(fields) > 0 {
		msg = "Invalid parameters: " + strings.Join(fields, ", ")
	}
	return apperr.Wrap(cause, apperr.CodeInvalidParameter, msg, suggestion)
}

func fieldNames(err error) []string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil
	}
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// decodeParams unmarshals raw into T, rejecting unknown fields. An empty or
// null body yields the zero value.
func decodeParams[T any](raw json.RawMessage) (T, error) {
	var v T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return v, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}
