// Package models defines the domain types for FlowState.
package models

import "time"

// DateLayout is the calendar-date format used by every table and the artifact.
const DateLayout = time.DateOnly

// Consumption categories accepted by the ingestion schema.
const (
	CategoryMusic = "music"
	CategoryVideo = "video"
)

// ConsumptionEvent is one row of the content-consumption table.
type ConsumptionEvent struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CommitEvent is one row of the code-contribution table.
type CommitEvent struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DailyMetrics holds the merged counts for a single calendar date.
type DailyMetrics struct {
	Date        string `json:"date"`
	MusicCount  int    `json:"music_count"`
	VideoCount  int    `json:"video_count"`
	CommitCount int    `json:"commit_count"`
}

// Pattern returns the grid label the day belongs to.
func (d DailyMetrics) Pattern() Pattern {
	return Classify(d.MusicCount > 0, d.VideoCount > 0)
}

// Totals sums every count across the timeline.
type Totals struct {
	TotalMusic   int `json:"total_music"`
	TotalVideos  int `json:"total_videos"`
	TotalCommits int `json:"total_commits"`
}

// CorrelationPattern is the average commit rate of one grid bucket.
type CorrelationPattern struct {
	AvgCommits float64 `json:"avg_commits"`
	Days       int     `json:"days"`
}

// LowConfidence reports whether the bucket has no days behind its average.
func (c CorrelationPattern) LowConfidence() bool {
	return c.Days == 0
}

// InsightSet holds the headline values. Percentages are signed strings such as "+42.5%".
type InsightSet struct {
	MusicImpact  string  `json:"music_impact"`
	VideoImpact  string  `json:"video_impact"`
	SynergyBoost string  `json:"synergy_boost"`
	BestPattern  Pattern `json:"best_pattern"`
}

// Artifact is the derived output of one correlator run. It is never mutated
// after construction.
type Artifact struct {
	Timeline     []DailyMetrics                 `json:"timeline"`
	Totals       Totals                         `json:"totals"`
	Correlations map[Pattern]CorrelationPattern `json:"correlations"`
	Insights     InsightSet                     `json:"insights"`
}

// Correlation returns the bucket for p, or a zero bucket when absent.
func (a *Artifact) Correlation(p Pattern) CorrelationPattern {
	return a.Correlations[p]
}

// DaysInGrid sums days across the four grid buckets.
func (a *Artifact) DaysInGrid() int {
	n := 0
	for _, p := range Patterns {
		n += a.Correlations[p].Days
	}
	return n
}
