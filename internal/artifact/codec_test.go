package artifact

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/flowstate/internal/apperr"
	"github.com/starford/flowstate/internal/correlator"
	"github.com/starford/flowstate/internal/models"
)

func sampleArtifact() *models.Artifact {
	return correlator.Build(
		[]models.ConsumptionEvent{
			{Date: "2024-01-01", Category: models.CategoryMusic, Count: 1},
			{Date: "2024-01-02", Category: models.CategoryVideo, Count: 1},
			{Date: "2024-01-03", Category: models.CategoryMusic, Count: 1},
			{Date: "2024-01-03", Category: models.CategoryVideo, Count: 1},
		},
		[]models.CommitEvent{
			{Date: "2024-01-01", Count: 5},
			{Date: "2024-01-02", Count: 3},
			{Date: "2024-01-03", Count: 10},
			{Date: "2024-01-04", Count: 2},
		},
	)
}

const validJSON = `{
  "timeline": [
    {"date": "2024-01-01", "music_count": 1, "video_count": 0, "commit_count": 5},
    {"date": "2024-01-02", "music_count": 0, "video_count": 0, "commit_count": 2}
  ],
  "totals": {"total_music": 1, "total_videos": 0, "total_commits": 7},
  "correlations": {
    "music_only": {"avg_commits": 5.0, "days": 1},
    "video_only": {"avg_commits": 0, "days": 0},
    "both": {"avg_commits": 0, "days": 0},
    "neither": {"avg_commits": 2.0, "days": 1}
  },
  "insights": {
    "music_impact": "+150.0%",
    "video_impact": "+0.0%",
    "synergy_boost": "+0.0%",
    "best_pattern": "music_only"
  }
}`

func TestEncodeDecode_RoundTrip(t *testing.T) {
	a := sampleArtifact()
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasPrefix(string(data), "{\n  \"") {
		t.Errorf("expected two-space indented JSON, got %q", data[:10])
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(a, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_EmptyTimelineIsArray(t *testing.T) {
	data, err := Encode(correlator.Build(nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"timeline": []`) {
		t.Errorf("empty timeline should encode as []:\n%s", data)
	}
	if _, err := Decode(data); err != nil {
		t.Errorf("empty artifact should decode: %v", err)
	}
}

func TestDecode_Valid(t *testing.T) {
	a, err := Decode([]byte(validJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(a.Timeline) != 2 || a.Insights.BestPattern != models.PatternMusicOnly {
		t.Errorf("unexpected artifact: %+v", a)
	}
}

func TestDecode_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(string) string
		message string
	}{
		{"not json", func(string) string { return "not json" }, "not a JSON object"},
		{"missing timeline", func(s string) string {
			return strings.Replace(s, `"timeline"`, `"timelines"`, 1)
		}, "timeline"},
		{"null totals", func(s string) string {
			return strings.Replace(s, `{"total_music": 1, "total_videos": 0, "total_commits": 7}`, "null", 1)
		}, "totals"},
		{"bad date", func(s string) string {
			return strings.Replace(s, "2024-01-02", "2024/01/02", 1)
		}, "timeline entry 1"},
		{"negative count", func(s string) string {
			return strings.Replace(s, `"commit_count": 5`, `"commit_count": -5`, 1)
		}, "timeline entry 0"},
		{"missing field", func(s string) string {
			return strings.Replace(s, `"video_count": 0, "commit_count": 5`, `"commit_count": 5`, 1)
		}, "timeline entry 0"},
		{"fractional count", func(s string) string {
			return strings.Replace(s, `"commit_count": 5`, `"commit_count": 5.5`, 1)
		}, "timeline"},
		{"out of order", func(s string) string {
			return strings.Replace(s, "2024-01-02", "2023-12-31", 1)
		}, "out of order"},
		{"duplicate date", func(s string) string {
			return strings.Replace(s, "2024-01-02", "2024-01-01", 1)
		}, "out of order"},
		{"missing label", func(s string) string {
			return strings.Replace(s, `"both": {"avg_commits": 0, "days": 0},`, "", 1)
		}, "missing correlation label both"},
		{"unknown label", func(s string) string {
			return strings.Replace(s, `"both":`, `"Both":`, 1)
		}, "unknown correlation label"},
		{"days mismatch", func(s string) string {
			return strings.Replace(s, `"neither": {"avg_commits": 2.0, "days": 1}`, `"neither": {"avg_commits": 2.0, "days": 2}`, 1)
		}, "do not match"},
		{"negative days", func(s string) string {
			return strings.Replace(s, `"both": {"avg_commits": 0, "days": 0}`, `"both": {"avg_commits": 0, "days": -1}`, 1)
		}, "correlation both"},
		{"bad best pattern", func(s string) string {
			return strings.Replace(s, `"best_pattern": "music_only"`, `"best_pattern": "Music Only"`, 1)
		}, "insights"},
		{"bad percentage", func(s string) string {
			return strings.Replace(s, `"+150.0%"`, `"150"`, 1)
		}, "insights"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Decode([]byte(c.mutate(validJSON)))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, apperr.ErrDataInvalid) {
				t.Fatalf("error = %v, want DATA_INVALID", err)
			}
			ae := apperr.From(err)
			if !strings.Contains(ae.Message, c.message) {
				t.Errorf("message %q does not mention %q", ae.Message, c.message)
			}
			if strings.Contains(ae.Suggestion, "/") {
				t.Errorf("suggestion leaks a path: %q", ae.Suggestion)
			}
		})
	}
}
