package internal

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
}

func TestDashboardConfig_URLs(t *testing.T) {
	cases := []struct {
		name    string
		cfg     DashboardConfig
		wantErr bool
	}{
		{"fallback only", DashboardConfig{FallbackURL: "http://localhost:5173"}, false},
		{"production", DashboardConfig{URL: "https://flowstate.example.com/app", FallbackURL: "http://localhost:5173"}, false},
		{"missing fallback", DashboardConfig{URL: "https://flowstate.example.com"}, true},
		{"bad scheme", DashboardConfig{URL: "ftp://flowstate.example.com", FallbackURL: "http://localhost:5173"}, true},
		{"not a url", DashboardConfig{URL: "flowstate dashboard", FallbackURL: "http://localhost:5173"}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if (err != nil) != c.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestQueryConfig_Thresholds(t *testing.T) {
	cfg := QueryConfig{MinFlowStateDays: 5, MinMusicImpactDays: 5, MediumConfidenceMin: 8, HighConfidenceAbove: 4}
	if err := cfg.Validate(); err == nil {
		t.Error("high threshold below medium should fail")
	}

	cfg = QueryConfig{MinFlowStateDays: 0, MinMusicImpactDays: 5, MediumConfidenceMin: 5, HighConfidenceAbove: 10}
	if err := cfg.Validate(); err == nil {
		t.Error("zero minimum days should fail")
	}
}

func TestIngestConfig_NegativeDebounce(t *testing.T) {
	cfg := NewDefaultConfig().Ingest
	cfg.Debounce = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("negative debounce should fail")
	}
}

func TestFullConfig_SectionNamedInError(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Artifact.Path = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch artifact error")
	}
	if !strings.HasPrefix(err.Error(), "artifact:") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfig_QueryServiceConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Query.HighConfidenceAbove = 20
	cfg.Dashboard.URL = "https://flowstate.example.com"

	qc := cfg.QueryServiceConfig()
	if qc.Confidence.MediumMin != 5 || qc.Confidence.HighAbove != 20 {
		t.Errorf("confidence = %+v", qc.Confidence)
	}
	if qc.MinFlowStateDays != 5 || qc.DashboardURL != "https://flowstate.example.com" || qc.FallbackURL != "http://localhost:5173" {
		t.Errorf("query config = %+v", qc)
	}
}

func TestConfig_Origins(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.CORSOrigins = []string{"http://127.0.0.1:3000"}
	cfg.Dashboard.URL = "https://flowstate.example.com/app/index.html"

	want := []string{"http://127.0.0.1:3000", "https://flowstate.example.com", "http://localhost:5173"}
	if diff := cmp.Diff(want, cfg.Origins()); diff != "" {
		t.Errorf("origins mismatch (-want +got):\n%s", diff)
	}
}
