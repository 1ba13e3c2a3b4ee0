package models

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		music, video bool
		want         Pattern
	}{
		{false, false, PatternNeither},
		{true, false, PatternMusicOnly},
		{false, true, PatternVideoOnly},
		{true, true, PatternBoth},
	}
	for _, c := range cases {
		if got := Classify(c.music, c.video); got != c.want {
			t.Errorf("Classify(%v, %v) = %q, want %q", c.music, c.video, got, c.want)
		}
	}
}

func TestDailyMetricsPattern(t *testing.T) {
	d := DailyMetrics{Date: "2024-01-01", MusicCount: 3, VideoCount: 0, CommitCount: 9}
	if d.Pattern() != PatternMusicOnly {
		t.Errorf("pattern = %q, want music_only", d.Pattern())
	}
}

func TestParsePattern(t *testing.T) {
	for _, p := range Patterns {
		got, err := ParsePattern(string(p))
		if err != nil || got != p {
			t.Errorf("ParsePattern(%q) = %q, %v", p, got, err)
		}
	}
	if _, err := ParsePattern("Music Only"); err == nil {
		t.Error("title-cased label should be rejected")
	}
}

func TestDaysInGrid_MissingBucketCountsZero(t *testing.T) {
	a := &Artifact{Correlations: map[Pattern]CorrelationPattern{
		PatternBoth: {AvgCommits: 4, Days: 2},
	}}
	if a.DaysInGrid() != 2 {
		t.Errorf("DaysInGrid = %d, want 2", a.DaysInGrid())
	}
	if !a.Correlation(PatternNeither).LowConfidence() {
		t.Error("absent bucket should be low confidence")
	}
}
