// Package forecast derives the fixed linear commit predictor from an artifact.
// It is a linear combination of historical averages, not a fitted model.
package forecast

import (
	"math"

	"github.com/starford/flowstate/internal/models"
)

const (
	// fallbackPerMusic and fallbackPerVideo apply when the history has no
	// sessions of that kind.
	fallbackPerMusic = 0.5
	fallbackPerVideo = 0.1

	// assumedMusicHoursPerDay converts a music_only daily boost to a per-hour coefficient.
	assumedMusicHoursPerDay = 2.0
	// minutesPerVideo converts planned video minutes to a video count.
	minutesPerVideo = 10.0
	// assumedVideosPerDay is one hour of viewing at minutesPerVideo.
	assumedVideosPerDay = 60.0 / minutesPerVideo
)

// Confidence tiers.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// Thresholds control the confidence tiers: low below MediumMin points,
// high strictly above HighAbove, medium in between.
type Thresholds struct {
	MediumMin int
	HighAbove int
}

// DefaultThresholds are 5 and 10 historical points.
var DefaultThresholds = Thresholds{MediumMin: 5, HighAbove: 10}

// Model is an immutable set of coefficients derived from one artifact.
type Model struct {
	Base        float64 `json:"base"`
	MusicCoeff  float64 `json:"music_coefficient"`
	VideoCoeff  float64 `json:"video_coefficient"`
	Points      int     `json:"historical_data_points"`
	MusicRefine bool    `json:"-"`
	VideoRefine bool    `json:"-"`
}

// Derive computes coefficients from the artifact's full timeline and grid.
// Every coefficient is non-negative.
func Derive(a *models.Artifact) Model {
	var totalMusic, totalVideos, totalCommits int
	for _, d := range a.Timeline {
		totalMusic += d.MusicCount
		totalVideos += d.VideoCount
		totalCommits += d.CommitCount
	}

	perMusic := fallbackPerMusic
	if totalMusic > 0 {
		perMusic = float64(totalCommits) / float64(totalMusic)
	}
	perVideo := fallbackPerVideo
	if totalVideos > 0 {
		perVideo = float64(totalCommits) / float64(totalVideos)
	}

	m := Model{Points: len(a.Timeline)}

	neither := a.Correlation(models.PatternNeither).AvgCommits
	if mo := a.Correlation(models.PatternMusicOnly).AvgCommits; mo > neither {
		if boost := (mo - neither) / assumedMusicHoursPerDay; boost > perMusic {
			perMusic = boost
			m.MusicRefine = true
		}
	}
	if vo := a.Correlation(models.PatternVideoOnly).AvgCommits; vo > neither {
		if boost := (vo - neither) / assumedVideosPerDay; boost > perVideo {
			perVideo = boost
			m.VideoRefine = true
		}
	}

	m.Base = neither
	m.MusicCoeff = perMusic
	m.VideoCoeff = perVideo / minutesPerVideo
	return m
}

// Predict returns the expected commits for a planned day.
func (m Model) Predict(musicHours, videoMinutes float64) float64 {
	return m.Base + m.MusicCoeff*musicHours + m.VideoCoeff*videoMinutes
}

// Confidence returns the tier for the model's number of historical points.
func (m Model) Confidence(th Thresholds) string {
	switch {
	case m.Points < th.MediumMin:
		return ConfidenceLow
	case m.Points > th.HighAbove:
		return ConfidenceHigh
	default:
		return ConfidenceMedium
	}
}

// Factors lists what went into the prediction.
func (m Model) Factors(th Thresholds) []string {
	factors := []string{"historical_music_impact", "video_consumption_patterns", "base_productivity"}
	if m.MusicRefine || m.VideoRefine {
		factors = append(factors, "correlation_analysis")
	}
	if m.Points > th.HighAbove {
		factors = append(factors, "sufficient_historical_data")
	}
	return factors
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
