// Copyright 2025 Lumina Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for costcharts.
//
// Settings come from (highest precedence first) command line flags,
// COSTCHARTS_* environment variables, an optional YAML file, and defaults.
// Uses Viper so all three sources resolve through one instance.
package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nextdoor/costcharts/pkg/aws"
)

// Config represents the complete costcharts configuration.
type Config struct {
	// Profile is the AWS shared config profile. Empty uses the default chain.
	Profile string `yaml:"profile,omitempty"`

	// Region is the region for the Cost Explorer endpoint.
	// Default: us-east-1 (Cost Explorer is only served there)
	Region string `yaml:"region,omitempty"`

	// EndpointURL overrides AWS endpoints, e.g. http://localhost:4566 for LocalStack.
	EndpointURL string `yaml:"endpointURL,omitempty"`

	// MaxRetries is the SDK retryer's maximum number of attempts.
	MaxRetries int `yaml:"maxRetries,omitempty"`

	// HTTPTimeout bounds a single AWS HTTP request.
	// Format: Go duration string (e.g., "30s")
	HTTPTimeout string `yaml:"httpTimeout,omitempty"`

	// Service is the SERVICE dimension value to filter on.
	Service string `yaml:"service,omitempty"`

	// Metric is the Cost Explorer metric to chart.
	// Valid values: AmortizedCost, BlendedCost, NetAmortizedCost, NetUnblendedCost, UnblendedCost
	Metric string `yaml:"metric,omitempty"`

	// Months is how far back the range starts from End.
	// Default: 12
	Months int `yaml:"months,omitempty"`

	// Start and End pin the range explicitly (YYYY-MM-DD, End exclusive).
	// When End is empty it is today (UTC). When Start is empty it is End minus Months.
	Start string `yaml:"start,omitempty"`
	End   string `yaml:"end,omitempty"`

	// OutputDir is where charts and exports are written.
	OutputDir string `yaml:"outputDir,omitempty"`

	// OutputPrefix names the artifacts: <prefix>_chart.png, <prefix>_chart.html.
	// Default: aws_costs
	OutputPrefix string `yaml:"outputPrefix,omitempty"`

	// Headless skips the preview server after rendering.
	Headless bool `yaml:"headless,omitempty"`

	// LogLevel controls the verbosity of logs.
	// Valid values: debug, info, warn, error
	// Default: info
	LogLevel string `yaml:"logLevel,omitempty"`

	// DPI is the PNG chart resolution.
	// Default: 300
	DPI int `yaml:"dpi,omitempty"`

	// Export lists extra table dumps to write next to the charts.
	// Valid values: csv, json, yaml
	Export []string `yaml:"export,omitempty"`

	Commitments CommitmentsConfig `yaml:"commitments,omitempty"`
	Cache       CacheConfig       `yaml:"cache,omitempty"`
	Metrics     MetricsConfig     `yaml:"metrics,omitempty"`
	Upload      UploadConfig      `yaml:"upload,omitempty"`
	Preview     PreviewConfig     `yaml:"preview,omitempty"`
}

// CommitmentsConfig controls the active Savings Plans / Reserved Instances
// section of the summary report.
type CommitmentsConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`

	// Regions to query for Reserved Instances (RIs are regional, Savings Plans are not).
	// If empty, defaults to DefaultRegions.
	Regions []string `yaml:"regions,omitempty"`
}

// CacheConfig configures the Cost Explorer response cache.
type CacheConfig struct {
	// RedisURL enables the cache, e.g. redis://localhost:6379/0.
	RedisURL string `yaml:"redisURL,omitempty"`

	// TTL is how long a cached response is reused.
	// Format: Go duration string (e.g., "6h")
	// Default: 6h
	TTL string `yaml:"ttl,omitempty"`
}

// MetricsConfig controls where run metrics are published.
type MetricsConfig struct {
	// Textfile is a node_exporter textfile collector path (*.prom).
	Textfile string `yaml:"textfile,omitempty"`

	// PushgatewayURL pushes metrics to a Prometheus Pushgateway.
	PushgatewayURL string `yaml:"pushgatewayURL,omitempty"`

	// Job is the Pushgateway job label.
	// Default: costcharts
	Job string `yaml:"job,omitempty"`
}

// UploadConfig enables uploading artifacts to S3.
type UploadConfig struct {
	Bucket string `yaml:"bucket,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
}

// PreviewConfig configures the local chart preview server.
type PreviewConfig struct {
	// BindAddress is the address the preview server listens on.
	// Default: 127.0.0.1:8050
	BindAddress string `yaml:"bindAddress,omitempty"`
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"profile":          "profile",
	"region":           "region",
	"endpoint-url":     "endpointURL",
	"max-retries":      "maxRetries",
	"service":          "service",
	"metric":           "metric",
	"months":           "months",
	"start":            "start",
	"end":              "end",
	"output-dir":       "outputDir",
	"output-prefix":    "outputPrefix",
	"headless":         "headless",
	"log-level":        "logLevel",
	"dpi":              "dpi",
	"export":           "export",
	"commitments":      "commitments.enabled",
	"regions":          "commitments.regions",
	"cache-redis-url":  "cache.redisURL",
	"cache-ttl":        "cache.ttl",
	"metrics-textfile": "metrics.textfile",
	"pushgateway-url":  "metrics.pushgatewayURL",
	"s3-bucket":        "upload.bucket",
	"s3-prefix":        "upload.prefix",
	"preview-addr":     "preview.bindAddress",
}

// Load resolves the configuration and validates it.
//
// path may be empty, in which case only flags, environment and defaults are
// used. flags may be nil.
//
// Environment variables override file values using the COSTCHARTS_ prefix and
// SCREAMING_SNAKE_CASE names, for example:
//   - COSTCHARTS_PROFILE overrides profile
//   - COSTCHARTS_OUTPUT_PREFIX overrides outputPrefix
//   - COSTCHARTS_CACHE_REDIS_URL overrides cache.redisURL
//
// Flags override everything, but only when set explicitly.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("region", aws.CostExplorerRegion)
	v.SetDefault("maxRetries", DefaultMaxRetries)
	v.SetDefault("httpTimeout", DefaultHTTPTimeout.String())
	v.SetDefault("service", aws.DefaultService)
	v.SetDefault("metric", aws.DefaultMetric)
	v.SetDefault("months", DefaultMonths)
	v.SetDefault("outputDir", ".")
	v.SetDefault("outputPrefix", DefaultOutputPrefix)
	v.SetDefault("logLevel", "info")
	v.SetDefault("dpi", DefaultDPI)
	v.SetDefault("cache.ttl", DefaultCacheTTL.String())
	v.SetDefault("metrics.job", DefaultPushJob)
	v.SetDefault("preview.bindAddress", DefaultPreviewAddress)

	// Viper's automatic mapping doesn't handle camelCase to SCREAMING_SNAKE_CASE,
	// so every key is bound by hand.
	v.SetEnvPrefix("COSTCHARTS")
	_ = v.BindEnv("profile", "COSTCHARTS_PROFILE", "AWS_PROFILE")
	_ = v.BindEnv("region", "COSTCHARTS_REGION")
	_ = v.BindEnv("endpointURL", "COSTCHARTS_ENDPOINT_URL")
	_ = v.BindEnv("maxRetries", "COSTCHARTS_MAX_RETRIES")
	_ = v.BindEnv("httpTimeout", "COSTCHARTS_HTTP_TIMEOUT")
	_ = v.BindEnv("service", "COSTCHARTS_SERVICE")
	_ = v.BindEnv("metric", "COSTCHARTS_METRIC")
	_ = v.BindEnv("months", "COSTCHARTS_MONTHS")
	_ = v.BindEnv("start", "COSTCHARTS_START")
	_ = v.BindEnv("end", "COSTCHARTS_END")
	_ = v.BindEnv("outputDir", "COSTCHARTS_OUTPUT_DIR")
	_ = v.BindEnv("outputPrefix", "COSTCHARTS_OUTPUT_PREFIX")
	_ = v.BindEnv("headless", "COSTCHARTS_HEADLESS")
	_ = v.BindEnv("logLevel", "COSTCHARTS_LOG_LEVEL")
	_ = v.BindEnv("dpi", "COSTCHARTS_DPI")
	_ = v.BindEnv("export", "COSTCHARTS_EXPORT")
	_ = v.BindEnv("commitments.enabled", "COSTCHARTS_COMMITMENTS_ENABLED")
	_ = v.BindEnv("commitments.regions", "COSTCHARTS_COMMITMENTS_REGIONS")
	_ = v.BindEnv("cache.redisURL", "COSTCHARTS_CACHE_REDIS_URL")
	_ = v.BindEnv("cache.ttl", "COSTCHARTS_CACHE_TTL")
	_ = v.BindEnv("metrics.textfile", "COSTCHARTS_METRICS_TEXTFILE")
	_ = v.BindEnv("metrics.pushgatewayURL", "COSTCHARTS_METRICS_PUSHGATEWAY_URL")
	_ = v.BindEnv("metrics.job", "COSTCHARTS_METRICS_JOB")
	_ = v.BindEnv("upload.bucket", "COSTCHARTS_UPLOAD_BUCKET")
	_ = v.BindEnv("upload.prefix", "COSTCHARTS_UPLOAD_PREFIX")
	_ = v.BindEnv("preview.bindAddress", "COSTCHARTS_PREVIEW_BIND_ADDRESS")

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			// coverage:ignore - BindPFlag only fails on a nil flag, which is checked above
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	// coverage:ignore - Viper unmarshal errors are extremely rare and difficult to trigger
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.Metric != "" && !slices.Contains(aws.CostMetrics, c.Metric) {
		return fmt.Errorf("invalid metric %q, must be one of: %s", c.Metric, strings.Join(aws.CostMetrics, ", "))
	}

	if c.Months <= 0 && c.Start == "" {
		return fmt.Errorf("months must be positive, got %d", c.Months)
	}

	var start, end time.Time
	var err error
	if c.Start != "" {
		if start, err = time.Parse(aws.DateLayout, c.Start); err != nil {
			return fmt.Errorf("invalid start date %q: must be YYYY-MM-DD", c.Start)
		}
	}
	if c.End != "" {
		if end, err = time.Parse(aws.DateLayout, c.End); err != nil {
			return fmt.Errorf("invalid end date %q: must be YYYY-MM-DD", c.End)
		}
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return fmt.Errorf("start date %s must be before end date %s", c.Start, c.End)
	}

	if strings.TrimSpace(c.OutputPrefix) == "" {
		return fmt.Errorf("output prefix is required")
	}
	if strings.ContainsAny(c.OutputPrefix, `/\`) {
		return fmt.Errorf("output prefix %q must not contain path separators, use outputDir", c.OutputPrefix)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if c.LogLevel != "" && !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	if c.DPI < 0 {
		return fmt.Errorf("invalid dpi %d, must be positive", c.DPI)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("invalid max retries %d, must not be negative", c.MaxRetries)
	}

	for _, format := range c.Export {
		if !slices.Contains(ExportFormats, format) {
			return fmt.Errorf("invalid export format %q, must be one of: %s", format, strings.Join(ExportFormats, ", "))
		}
	}

	if c.HTTPTimeout != "" {
		if _, err := time.ParseDuration(c.HTTPTimeout); err != nil {
			return fmt.Errorf("invalid HTTP timeout %q: %w", c.HTTPTimeout, err)
		}
	}
	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("invalid cache TTL %q: %w", c.Cache.TTL, err)
		}
	}

	if c.EndpointURL != "" {
		if err := validateURL(c.EndpointURL); err != nil {
			return fmt.Errorf("invalid endpoint URL: %w", err)
		}
	}
	if c.Metrics.PushgatewayURL != "" {
		if err := validateURL(c.Metrics.PushgatewayURL); err != nil {
			return fmt.Errorf("invalid pushgateway URL: %w", err)
		}
	}

	if c.Upload.Prefix != "" && c.Upload.Bucket == "" {
		return fmt.Errorf("upload prefix %q set without an upload bucket", c.Upload.Prefix)
	}

	return nil
}

// validateURL requires an absolute http(s) URL.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q must be an absolute http(s) URL", raw)
	}
	return nil
}

// DateRange returns the [start, end) range to query.
//
// End defaults to today (UTC, truncated to the day) and Start to End minus
// Months calendar months.
func (c *Config) DateRange(now time.Time) (time.Time, time.Time) {
	y, m, d := now.UTC().Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if c.End != "" {
		// Should never fail since Validate() checks this
		if t, err := time.Parse(aws.DateLayout, c.End); err == nil {
			end = t
		}
	}

	start := end.AddDate(0, -c.Months, 0)
	if c.Start != "" {
		if t, err := time.Parse(aws.DateLayout, c.Start); err == nil {
			start = t
		}
	}
	return start, end
}

// GetHTTPTimeout returns the parsed HTTP timeout.
// Returns DefaultHTTPTimeout if not configured.
func (c *Config) GetHTTPTimeout() time.Duration {
	return parseDurationOr(c.HTTPTimeout, DefaultHTTPTimeout)
}

// GetCacheTTL returns the parsed response cache TTL.
// Returns DefaultCacheTTL if not configured.
func (c *Config) GetCacheTTL() time.Duration {
	return parseDurationOr(c.Cache.TTL, DefaultCacheTTL)
}

// GetCommitmentRegions returns the regions to query for Reserved Instances.
func (c *Config) GetCommitmentRegions() []string {
	if len(c.Commitments.Regions) > 0 {
		return c.Commitments.Regions
	}
	return DefaultRegions
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
