// Package correlator merges the consumption and commit tables into the
// derived FlowState artifact.
package correlator

import (
	"sort"

	"github.com/starford/flowstate/internal/models"
)

// Build merges both event tables into a fully derived artifact. It is a pure
// function of its inputs: empty tables yield an empty timeline with all
// averages at zero.
func Build(consumption []models.ConsumptionEvent, commits []models.CommitEvent) *models.Artifact {
	timeline := Merge(consumption, commits)
	grid := Grid(timeline)

	return &models.Artifact{
		Timeline:     timeline,
		Totals:       Sum(timeline),
		Correlations: grid,
		Insights: models.InsightSet{
			MusicImpact:  FormatPercent(Impact(timeline, hasMusic)),
			VideoImpact:  FormatPercent(Impact(timeline, hasVideo)),
			SynergyBoost: FormatPercent(Boost(grid[models.PatternBoth].AvgCommits, grid[models.PatternNeither].AvgCommits)),
			BestPattern:  BestPattern(grid),
		},
	}
}

// Merge groups both tables by date and full-outer-joins them. A date present
// in either table appears exactly once; the missing side is zero.
func Merge(consumption []models.ConsumptionEvent, commits []models.CommitEvent) []models.DailyMetrics {
	days := make(map[string]*models.DailyMetrics)
	day := func(date string) *models.DailyMetrics {
		d, ok := days[date]
		if !ok {
			d = &models.DailyMetrics{Date: date}
			days[date] = d
		}
		return d
	}

	for _, ev := range consumption {
		d := day(ev.Date)
		switch ev.Category {
		case models.CategoryMusic:
			d.MusicCount += ev.Count
		case models.CategoryVideo:
			d.VideoCount += ev.Count
		}
	}
	for _, ev := range commits {
		day(ev.Date).CommitCount += ev.Count
	}

	out := make([]models.DailyMetrics, 0, len(days))
	for _, d := range days {
		out = append(out, *d)
	}
	// DateLayout sorts lexically in calendar order.
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Grid partitions the timeline into the four patterns and averages commits
// per bucket. Every label is present; empty buckets are {0, 0}.
func Grid(timeline []models.DailyMetrics) map[models.Pattern]models.CorrelationPattern {
	sums := make(map[models.Pattern]int, len(models.Patterns))
	days := make(map[models.Pattern]int, len(models.Patterns))
	for _, d := range timeline {
		p := d.Pattern()
		sums[p] += d.CommitCount
		days[p]++
	}

	grid := make(map[models.Pattern]models.CorrelationPattern, len(models.Patterns))
	for _, p := range models.Patterns {
		c := models.CorrelationPattern{Days: days[p]}
		if c.Days > 0 {
			c.AvgCommits = Round(float64(sums[p])/float64(c.Days), 1)
		}
		grid[p] = c
	}
	return grid
}

// BestPattern returns the label with the highest average. Ties go to the
// earlier label in models.Patterns.
func BestPattern(grid map[models.Pattern]models.CorrelationPattern) models.Pattern {
	best := models.Patterns[0]
	for _, p := range models.Patterns[1:] {
		if grid[p].AvgCommits > grid[best].AvgCommits {
			best = p
		}
	}
	return best
}

// Sum totals every count in the timeline.
func Sum(timeline []models.DailyMetrics) models.Totals {
	var t models.Totals
	for _, d := range timeline {
		t.TotalMusic += d.MusicCount
		t.TotalVideos += d.VideoCount
		t.TotalCommits += d.CommitCount
	}
	return t
}

func hasMusic(d models.DailyMetrics) bool { return d.MusicCount > 0 }
func hasVideo(d models.DailyMetrics) bool { return d.VideoCount > 0 }
