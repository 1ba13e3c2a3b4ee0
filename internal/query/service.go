package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/starford/flowstate/internal/apperr"
	"github.com/starford/flowstate/internal/artifact"
	"github.com/starford/flowstate/internal/correlator"
	"github.com/starford/flowstate/internal/forecast"
	"github.com/starford/flowstate/internal/models"
)

// DashboardURI identifies the dashboard resource.
const DashboardURI = "flowstate://dashboard"

// Config holds the thresholds and dashboard location, built once at startup.
type Config struct {
	MinFlowStateDays   int
	MinMusicImpactDays int
	Confidence         forecast.Thresholds
	DashboardURL       string
	FallbackURL        string
}

// DefaultConfig returns the standard thresholds with the local dashboard.
func DefaultConfig() Config {
	return Config{
		MinFlowStateDays:   5,
		MinMusicImpactDays: 5,
		Confidence:         forecast.DefaultThresholds,
		FallbackURL:        "http://localhost:5173",
	}
}

// SnapshotSource yields the current artifact snapshot. *artifact.Cache
// implements it.
type SnapshotSource interface {
	Get() (*artifact.Snapshot, error)
}

// Service answers queries against the cached artifact. Every method is a
// pure function of the snapshot and its validated parameters.
type Service struct {
	src SnapshotSource
	cfg Config
	now func() time.Time
}

// NewService creates a query service.
func NewService(src SnapshotSource, cfg Config) *Service {
	return &Service{src: src, cfg: cfg, now: time.Now}
}

func (s *Service) snapshot() (*artifact.Snapshot, error) {
	snap, err := s.src.Get()
	if err != nil {
		return nil, apperr.From(err)
	}
	return snap, nil
}

const bestHoursNote = "Insights derived from day-of-week patterns. For precise hourly analysis, hourly commit data would be needed."

// BestHours compares weekday and weekend commit rates over days with commits
// and suggests an evening window for the stronger one. Weekdays win only
// when strictly higher.
func (s *Service) BestHours(_ context.Context) (*BestHoursResult, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	var weekdaySum, weekendSum, weekdayDays, weekendDays int
	for _, d := range snap.Artifact.Timeline {
		if d.CommitCount == 0 {
			continue
		}
		t, err := time.Parse(models.DateLayout, d.Date)
		if err != nil {
			continue
		}
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekendSum += d.CommitCount
			weekendDays++
		} else {
			weekdaySum += d.CommitCount
			weekdayDays++
		}
	}

	res := &BestHoursResult{
		WeekdayDays: weekdayDays,
		WeekendDays: weekendDays,
		DataNote:    bestHoursNote,
		BestHours:   []HourSlot{},
	}
	if weekdayDays+weekendDays == 0 {
		res.DayPattern = "insufficient_data"
		res.Recommendation = "Not enough commit history for personalized hours. Evening hours (8-10 PM) tend to suit many developers; collect more data for personalized insights."
		return res, nil
	}

	var weekdayAvg, weekendAvg float64
	if weekdayDays > 0 {
		weekdayAvg = float64(weekdaySum) / float64(weekdayDays)
	}
	if weekendDays > 0 {
		weekendAvg = float64(weekendSum) / float64(weekendDays)
	}
	res.WeekdayAvg = correlator.Round(weekdayAvg, 1)
	res.WeekendAvg = correlator.Round(weekendAvg, 1)

	if weekdayAvg > weekendAvg {
		res.DayPattern = "weekday"
		res.SuggestedWindow = "20:00-22:00"
		res.BestHours = slots("weekday", weekdayAvg, 20, 21, 22)
		res.Recommendation = fmt.Sprintf("Peak productivity on weekday evenings (8-10 PM). Average %.1f commits on productive weekdays.", weekdayAvg)
	} else {
		res.DayPattern = "weekend"
		res.SuggestedWindow = "14:00-20:00"
		res.BestHours = slots("weekend", weekendAvg, 14, 16, 20)
		res.Recommendation = fmt.Sprintf("Peak productivity on weekends with flexible hours. Average %.1f commits on productive weekends.", weekendAvg)
	}
	return res, nil
}

// slots spreads avg over three hours with a peak in the middle.
func slots(pattern string, avg float64, hours ...int) []HourSlot {
	weights := []float64{0.4, 0.6, 0.5}
	out := make([]HourSlot, len(hours))
	for i, h := range hours {
		out[i] = HourSlot{Hour: h, AvgCommits: correlator.Round(avg*weights[i], 1), DayPattern: pattern}
	}
	return out
}

var patternRecommendations = map[models.Pattern]string{
	models.PatternBoth:      "Use both music and videos for optimal productivity. The combination of audio and visual content creates your best flow state.",
	models.PatternMusicOnly: "Focus on music without videos for maximum productivity. Audio helps maintain focus without visual distractions.",
	models.PatternVideoOnly: "Use videos without music for best results. Visual content provides the right stimulation for your coding sessions.",
	models.PatternNeither:   "Your productivity is highest without music or videos. A distraction-free environment works best for your flow state.",
}

// FlowStatePattern reports the artifact's best grid pattern and its boost
// over the neither baseline.
func (s *Service) FlowStatePattern(_ context.Context) (*FlowStatePatternResult, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	a := snap.Artifact
	if n := len(a.Timeline); n < s.cfg.MinFlowStateDays {
		return nil, apperr.New(apperr.CodeInsufficientData,
			"Insufficient data for meaningful analysis",
			fmt.Sprintf("Collect more data by running the FlowState pipeline over several days (current: %d days, need: %d+)", n, s.cfg.MinFlowStateDays))
	}

	best := a.Insights.BestPattern
	bucket := a.Correlation(best)
	baseline := a.Correlation(models.PatternNeither)

	total := 0
	for _, p := range models.Patterns {
		if a.Correlation(p).Days > 0 {
			total++
		}
	}

	return &FlowStatePatternResult{
		Pattern:         best,
		AvgCommits:      bucket.AvgCommits,
		BaselineAvg:     baseline.AvgCommits,
		BoostPercentage: correlator.FormatPercent(correlator.Boost(bucket.AvgCommits, baseline.AvgCommits)),
		SynergyBoost:    a.Insights.SynergyBoost,
		DaysAnalyzed:    bucket.Days,
		TotalDays:       len(a.Timeline),
		TotalPatterns:   total,
		LowConfidence:   bucket.LowConfidence() || baseline.LowConfidence(),
		Recommendation:  patternRecommendations[best],
	}, nil
}

const calculationNote = "Score = (commits×3 + music×1 + videos×1) ÷ 5"

// AnalyzeProductivity scores a single day of the timeline.
func (s *Service) AnalyzeProductivity(_ context.Context, p ProductivityParams) (*ProductivityResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	timeline := snap.Artifact.Timeline

	i := sort.Search(len(timeline), func(i int) bool { return timeline[i].Date >= p.Date })
	if i == len(timeline) || timeline[i].Date != p.Date {
		suggestion := "No timeline data available"
		if len(timeline) > 0 {
			suggestion = fmt.Sprintf("Try a different date within the available range. Available dates: %s to %s",
				timeline[0].Date, timeline[len(timeline)-1].Date)
		}
		return nil, apperr.New(apperr.CodeNotFound, "No data available for "+p.Date, suggestion)
	}

	d := timeline[i]
	score := correlator.Round(float64(d.CommitCount*3+d.MusicCount+d.VideoCount)/5, 2)
	return &ProductivityResult{
		Date:              d.Date,
		MusicCount:        d.MusicCount,
		VideoCount:        d.VideoCount,
		CommitCount:       d.CommitCount,
		ProductivityScore: score,
		ProductivityLevel: productivityLevel(score),
		CalculationNote:   calculationNote,
	}, nil
}

func productivityLevel(score float64) string {
	switch {
	case score >= 10:
		return "very_high"
	case score >= 7:
		return "high"
	case score >= 4:
		return "moderate"
	case score >= 1:
		return "low"
	default:
		return "minimal"
	}
}

// MusicImpact compares days with music against days without.
func (s *Service) MusicImpact(_ context.Context) (*MusicImpactResult, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	timeline := snap.Artifact.Timeline
	if n := len(timeline); n < s.cfg.MinMusicImpactDays {
		return nil, apperr.New(apperr.CodeInsufficientData,
			"Insufficient data for meaningful analysis",
			fmt.Sprintf("Collect more data by running the FlowState pipeline over several days (current: %d days, need: %d+)", n, s.cfg.MinMusicImpactDays))
	}

	split := correlator.MusicSplit(timeline)
	total := split.WithDays + split.WithoutDays
	usage := 0.0
	if total > 0 {
		usage = float64(split.WithDays) / float64(total) * 100
	}
	return &MusicImpactResult{
		MusicBoostPercentage:   correlator.FormatPercent(split.BoostPercent),
		DaysWithMusic:          split.WithDays,
		DaysWithoutMusic:       split.WithoutDays,
		AvgCommitsWithMusic:    correlator.Round(split.AvgWith, 2),
		AvgCommitsWithoutMusic: correlator.Round(split.AvgWithout, 2),
		Recommendation:         musicRecommendation(split),
		AnalysisContext: MusicImpactContext{
			TotalDaysAnalyzed:    total,
			MusicUsagePercentage: fmt.Sprintf("%.1f%%", correlator.Round(usage, 1)),
			Confidence:           tier(total, s.cfg.Confidence),
			LowConfidence:        split.LowConfidence,
		},
	}, nil
}

func musicRecommendation(s correlator.Split) string {
	switch {
	case s.WithDays == 0:
		return "No music listening recorded yet. Try coding with background music on some days to measure its effect."
	case s.WithoutDays == 0:
		return "Every recorded day includes music, so there is no baseline to compare against. Try a few quiet coding days."
	case s.AvgWith == 0 && s.AvgWithout == 0:
		return "No commits recorded in either group. Focus on increasing overall coding activity."
	case s.BoostPercent > 50:
		return "Music significantly boosts productivity! Consider listening to music while coding for optimal performance."
	case s.BoostPercent > 20:
		return "Music has a moderate positive impact on productivity. Try incorporating background music into your coding sessions."
	case s.BoostPercent > 0:
		return "Music has a slight positive impact on productivity. Music may help maintain focus during longer coding sessions."
	case s.BoostPercent > -20:
		return "Music has minimal impact on productivity. Your coding performance is similar with or without music."
	default:
		return "Music appears to reduce productivity. Consider coding in a quiet environment for better focus."
	}
}

func tier(points int, th forecast.Thresholds) string {
	return forecast.Model{Points: points}.Confidence(th)
}

// PredictCommits applies the snapshot's linear model to a planned day.
func (s *Service) PredictCommits(_ context.Context, p PredictParams) (*PredictResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	m := snap.Model
	music, video := *p.MusicHours, *p.VideoMinutes

	return &PredictResult{
		PredictedCommits:  correlator.Round(m.Predict(music, video), 1),
		ConfidenceLevel:   m.Confidence(s.cfg.Confidence),
		FactorsConsidered: m.Factors(s.cfg.Confidence),
		PredictionContext: PredictionContext{
			Base:                 correlator.Round(m.Base, 3),
			MusicCoefficient:     correlator.Round(m.MusicCoeff, 3),
			VideoCoefficient:     correlator.Round(m.VideoCoeff, 3),
			HistoricalDataPoints: m.Points,
		},
		Input: PredictInput{MusicHours: music, VideoMinutes: video},
	}, nil
}

// Dashboard describes where the presentation layer is served. It never
// touches the artifact.
func (s *Service) Dashboard(_ context.Context) *DashboardResult {
	url, deployment := s.cfg.DashboardURL, "production"
	if url == "" {
		url, deployment = s.cfg.FallbackURL, "development"
	}
	return &DashboardResult{
		URI: DashboardURI,
		URL: url,
		Metadata: DashboardMetadata{
			Description:    "FlowState Dashboard - Interactive visualization of productivity insights based on music, video consumption, and GitHub commits",
			ContentType:    "text/html",
			LastModified:   s.now().UTC().Format(time.RFC3339),
			DeploymentType: deployment,
			ResourceType:   "dashboard",
		},
	}
}
