package query

import "github.com/starford/flowstate/internal/models"

// HourSlot is one suggested coding hour.
type HourSlot struct {
	Hour       int     `json:"hour"`
	AvgCommits float64 `json:"avg_commits"`
	DayPattern string  `json:"day_pattern"`
}

// BestHoursResult is the get_best_hours answer.
type BestHoursResult struct {
	DayPattern      string     `json:"day_pattern"`
	BestHours       []HourSlot `json:"best_hours"`
	SuggestedWindow string     `json:"suggested_window"`
	WeekdayAvg      float64    `json:"weekday_avg_commits"`
	WeekendAvg      float64    `json:"weekend_avg_commits"`
	WeekdayDays     int        `json:"weekday_days"`
	WeekendDays     int        `json:"weekend_days"`
	Recommendation  string     `json:"recommendation"`
	DataNote        string     `json:"data_note"`
}

// FlowStatePatternResult is the get_flow_state_pattern answer.
type FlowStatePatternResult struct {
	Pattern         models.Pattern `json:"pattern"`
	AvgCommits      float64        `json:"avg_commits"`
	BaselineAvg     float64        `json:"baseline_avg"`
	BoostPercentage string         `json:"boost_percentage"`
	SynergyBoost    string         `json:"synergy_boost"`
	DaysAnalyzed    int            `json:"days_analyzed"`
	TotalDays       int            `json:"total_days"`
	TotalPatterns   int            `json:"total_patterns"`
	LowConfidence   bool           `json:"low_confidence"`
	Recommendation  string         `json:"recommendation"`
}

// ProductivityResult is the analyze_productivity answer.
type ProductivityResult struct {
	Date              string  `json:"date"`
	MusicCount        int     `json:"music_count"`
	VideoCount        int     `json:"video_count"`
	CommitCount       int     `json:"commit_count"`
	ProductivityScore float64 `json:"productivity_score"`
	ProductivityLevel string  `json:"productivity_level"`
	CalculationNote   string  `json:"calculation_note"`
}

// MusicImpactContext qualifies a music impact answer.
type MusicImpactContext struct {
	TotalDaysAnalyzed    int    `json:"total_days_analyzed"`
	MusicUsagePercentage string `json:"music_usage_percentage"`
	Confidence           string `json:"confidence"`
	LowConfidence        bool   `json:"low_confidence"`
}

// MusicImpactResult is the get_music_impact answer.
type MusicImpactResult struct {
	MusicBoostPercentage   string             `json:"music_boost_percentage"`
	DaysWithMusic          int                `json:"days_with_music"`
	DaysWithoutMusic       int                `json:"days_without_music"`
	AvgCommitsWithMusic    float64            `json:"avg_commits_with_music"`
	AvgCommitsWithoutMusic float64            `json:"avg_commits_without_music"`
	Recommendation         string             `json:"recommendation"`
	AnalysisContext        MusicImpactContext `json:"analysis_context"`
}

// PredictionContext exposes the coefficients behind a prediction.
type PredictionContext struct {
	Base                 float64 `json:"base"`
	MusicCoefficient     float64 `json:"music_coefficient"`
	VideoCoefficient     float64 `json:"video_coefficient"`
	HistoricalDataPoints int     `json:"historical_data_points"`
}

// PredictInput echoes the validated inputs.
type PredictInput struct {
	MusicHours   float64 `json:"music_hours"`
	VideoMinutes float64 `json:"video_minutes"`
}

// PredictResult is the predict_commits answer.
type PredictResult struct {
	PredictedCommits  float64           `json:"predicted_commits"`
	ConfidenceLevel   string            `json:"confidence_level"`
	FactorsConsidered []string          `json:"factors_considered"`
	PredictionContext PredictionContext `json:"prediction_context"`
	Input             PredictInput      `json:"input"`
}

// DashboardMetadata describes the dashboard resource.
type DashboardMetadata struct {
	Description    string `json:"description"`
	ContentType    string `json:"content_type"`
	LastModified   string `json:"last_modified"`
	DeploymentType string `json:"deployment_type"`
	ResourceType   string `json:"resource_type"`
}

// DashboardResult is the flowstate://dashboard descriptor.
type DashboardResult struct {
	URI      string            `json:"uri"`
	URL      string            `json:"url"`
	Metadata DashboardMetadata `json:"metadata"`
}
