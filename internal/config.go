package internal

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/flowstate/internal/forecast"
	"github.com/starford/flowstate/internal/query"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Artifact  ArtifactConfig    `yaml:"artifact"`
	Ingest    IngestConfig      `yaml:"ingest"`
	Query     QueryConfig       `yaml:"query"`
	Dashboard DashboardConfig   `yaml:"dashboard"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Artifact.Validate(); err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	if err := c.Ingest.Validate(); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if err := c.Query.Validate(); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if err := c.Dashboard.Validate(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// CORSOrigins lists browser origins allowed to call the API. The dashboard
	// URLs are always allowed.
	CORSOrigins []string `yaml:"cors_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ArtifactConfig locates the correlation artifact.
type ArtifactConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the artifact configuration.
func (c *ArtifactConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// IngestConfig holds the event database and CSV inputs of the pipeline.
type IngestConfig struct {
	SQLitePath     string        `yaml:"sqlite_path"`
	ConsumptionCSV string        `yaml:"consumption_csv"`
	CommitsCSV     string        `yaml:"commits_csv"`
	Watch          bool          `yaml:"watch"`
	Debounce       time.Duration `yaml:"debounce"`
}

// Validate validates the ingest configuration.
func (c *IngestConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SQLitePath, validation.Required),
		validation.Field(&c.ConsumptionCSV, validation.Required),
		validation.Field(&c.CommitsCSV, validation.Required),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// QueryConfig holds the thresholds of the query catalogue.
type QueryConfig struct {
	MinFlowStateDays    int `yaml:"min_flow_state_days"`
	MinMusicImpactDays  int `yaml:"min_music_impact_days"`
	MediumConfidenceMin int `yaml:"medium_confidence_min"`
	HighConfidenceAbove int `yaml:"high_confidence_above"`
}

// Validate validates the query configuration.
func (c *QueryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MinFlowStateDays, validation.Required, validation.Min(1)),
		validation.Field(&c.MinMusicImpactDays, validation.Required, validation.Min(1)),
		validation.Field(&c.MediumConfidenceMin, validation.Required, validation.Min(1)),
		validation.Field(&c.HighConfidenceAbove, validation.Required, validation.Min(c.MediumConfidenceMin)),
	)
}

// DashboardConfig locates the presentation layer.
type DashboardConfig struct {
	// URL is the production dashboard; empty means local development.
	URL         string `yaml:"url"`
	FallbackURL string `yaml:"fallback_url"`
}

// Validate validates the dashboard configuration.
func (c *DashboardConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Match(httpURL).Error("must be an http or https URL")),
		validation.Field(&c.FallbackURL, validation.Required, validation.Match(httpURL).Error("must be an http or https URL")),
	)
}

var httpURL = regexp.MustCompile(`^https?://[^\s/?#]+(/\S*)?$`)

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Origins returns the CORS origins the dashboard is served from.
func (c *Config) Origins() []string {
	origins := append([]string{}, c.App.HTTP.CORSOrigins...)
	for _, u := range []string{c.Dashboard.URL, c.Dashboard.FallbackURL} {
		if o := originOf(u); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// QueryServiceConfig converts the loaded sections into query service settings.
func (c *Config) QueryServiceConfig() query.Config {
	return query.Config{
		MinFlowStateDays:   c.Query.MinFlowStateDays,
		MinMusicImpactDays: c.Query.MinMusicImpactDays,
		Confidence: forecast.Thresholds{
			MediumMin: c.Query.MediumConfidenceMin,
			HighAbove: c.Query.HighConfidenceAbove,
		},
		DashboardURL: c.Dashboard.URL,
		FallbackURL:  c.Dashboard.FallbackURL,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	q := query.DefaultConfig()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Artifact: ArtifactConfig{
			Path: "public/correlations.json",
		},
		Ingest: IngestConfig{
			SQLitePath:     "./flowstate.db",
			ConsumptionCSV: "data/consumption.csv",
			CommitsCSV:     "data/commits.csv",
			Debounce:       500 * time.Millisecond,
		},
		Query: QueryConfig{
			MinFlowStateDays:    q.MinFlowStateDays,
			MinMusicImpactDays:  q.MinMusicImpactDays,
			MediumConfidenceMin: q.Confidence.MediumMin,
			HighConfidenceAbove: q.Confidence.HighAbove,
		},
		Dashboard: DashboardConfig{
			FallbackURL: q.FallbackURL,
		},
	}
}
