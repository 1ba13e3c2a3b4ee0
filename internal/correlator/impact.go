package correlator

import (
	"fmt"
	"math"

	"github.com/starford/flowstate/internal/models"
)

// Split is a binary partition of the timeline on a single signal.
type Split struct {
	WithDays      int
	WithoutDays   int
	AvgWith       float64
	AvgWithout    float64
	BoostPercent  float64
	LowConfidence bool
}

// Partition splits the timeline on signal and averages commits on each side.
// The signal-absent side is the baseline.
func Partition(timeline []models.DailyMetrics, signal func(models.DailyMetrics) bool) Split {
	var s Split
	var withSum, withoutSum int
	for _, d := range timeline {
		if signal(d) {
			s.WithDays++
			withSum += d.CommitCount
		} else {
			s.WithoutDays++
			withoutSum += d.CommitCount
		}
	}
	if s.WithDays > 0 {
		s.AvgWith = float64(withSum) / float64(s.WithDays)
	}
	if s.WithoutDays > 0 {
		s.AvgWithout = float64(withoutSum) / float64(s.WithoutDays)
	}
	s.BoostPercent = Boost(s.AvgWith, s.AvgWithout)
	s.LowConfidence = s.WithDays == 0 || s.WithoutDays == 0
	return s
}

// MusicSplit partitions on music_count > 0.
func MusicSplit(timeline []models.DailyMetrics) Split { return Partition(timeline, hasMusic) }

// VideoSplit partitions on video_count > 0.
func VideoSplit(timeline []models.DailyMetrics) Split { return Partition(timeline, hasVideo) }

// Impact is the boost of signal-present days over signal-absent days.
func Impact(timeline []models.DailyMetrics, signal func(models.DailyMetrics) bool) float64 {
	return Partition(timeline, signal).BoostPercent
}

// Boost is the percentage change of value over baseline; zero when the
// baseline is zero.
func Boost(value, baseline float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (value - baseline) / baseline * 100
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	r := math.Round(v*pow) / pow
	if r == 0 {
		// normalise -0
		return 0
	}
	return r
}

// FormatPercent renders a percentage with an explicit sign and one decimal.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%+.1f%%", Round(v, 1))
}
