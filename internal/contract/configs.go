package contract

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/codelinehq/codeline/schema"
)

// Default values for configuration.
const (
	DefaultLookbackDays = 180
	DefaultResultLimit  = 25
	MaxResultLimit      = 1000
	DefaultPrecision    = 2
	DefaultTargetNodes  = 15
	MaxTargetNodes      = 200
)

// CacheGranularity defines the time granularity for caching analysis results.
// This ensures consistent cache key generation and time window alignment
// across the application and tests.
const CacheGranularity = time.Hour

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DateOnlyFormat is accepted for --start/--end values without a time part.
const DateOnlyFormat = "2006-01-02"

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath    string
	StartTime   time.Time
	EndTime     time.Time
	ResultLimit int
	Excludes    []string
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	TargetNodes    int // Visual complexity budget for the affinity network
	TunerTolerance int
	Lookback       time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	ChartFile string // Destination for HTML chart output

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile     string `mapstructure:"output-file"`
	Limit          int    `mapstructure:"limit"`
	Start          string `mapstructure:"start"`
	End            string `mapstructure:"end"`
	Lookback       string `mapstructure:"lookback"`
	Exclude        string `mapstructure:"exclude"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	Width          int    `mapstructure:"width"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunBackend     string `mapstructure:"run-backend"`
	RunDBConnect   string `mapstructure:"run-db-connect"`
	Emoji          string `mapstructure:"emoji"`
	Color          string `mapstructure:"color"`

	// --- Fields from affinityCmd.Flags() ---
	TargetNodes int `mapstructure:"target-nodes"`
	Tolerance   int `mapstructure:"tolerance"`

	// --- Fields from chartCmd.Flags() ---
	ChartFile string `mapstructure:"chart-file"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	return &clone
}

// CloneWithTimeWindow creates a copy of the Config and sets the new StartTime and EndTime.
func (c *Config) CloneWithTimeWindow(start time.Time, end time.Time) *Config {
	clone := c.Clone()
	clone.StartTime = start
	clone.EndTime = end
	return clone
}

// GetAnalysisStartTime returns the configured start time, truncated to the caching granularity.
func (c *Config) GetAnalysisStartTime() time.Time {
	return c.StartTime.Truncate(CacheGranularity)
}

// GetAnalysisEndTime returns the configured end time, truncated to the caching granularity.
func (c *Config) GetAnalysisEndTime() time.Time {
	return c.EndTime.Truncate(CacheGranularity)
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := resolveGitPath(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if input.RunBackend != "" {
		if _, ok := schema.ValidCacheBackends[cfg.RunBackend]; !ok {
			return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
		}
		cfg.RunDBConnect = input.RunDBConnect
		if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
			return err
		}

		// Cache and run stores must not share a SQLite file.
		if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
			cacheDBPath := cfg.CacheDBConnect
			if cacheDBPath == "" {
				cacheDBPath = GetCacheDBFilePath()
			}
			runDBPath := cfg.RunDBConnect
			if runDBPath == "" {
				runDBPath = GetRunDBFilePath()
			}
			if cacheDBPath == runDBPath {
				return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
			}
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.ChartFile = input.ChartFile

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.TargetNodes <= 0 || input.TargetNodes > MaxTargetNodes {
		return fmt.Errorf("target-nodes must be greater than 0 and cannot exceed %d (received %d)", MaxTargetNodes, input.TargetNodes)
	}
	cfg.TargetNodes = input.TargetNodes

	if input.Tolerance < 0 {
		return fmt.Errorf("tolerance cannot be negative (received %d)", input.Tolerance)
	}
	cfg.TunerTolerance = input.Tolerance

	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}

	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}

	defaults := []string{
		"Cargo.lock", "go.sum", "package-lock.json", "yarn.lock", "pnpm-lock.yaml", "composer.lock", "uv.lock",
		".min.js", ".min.css",
		".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico", ".mp4", ".mov", ".webm", ".mp3", ".ogg", ".pdf", ".webp",
		".DS_Store",
		"dist/", "build/", "out/", "target/", "bin/",
	}
	cfg.Excludes = defaults
	if input.Exclude != "" {
		for _, p := range strings.Split(input.Exclude, ",") {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				cfg.Excludes = append(cfg.Excludes, trimmed)
			}
		}
	}

	return nil
}

// ParseLookback parses a lookback expression like "90d", "6m" or "1y" into a
// duration. Plain Go duration strings ("72h") work as well.
func ParseLookback(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty lookback")
	}
	unit := s[len(s)-1]
	if unit == 'd' || unit == 'm' || unit == 'y' {
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid lookback %q", s)
		}
		switch unit {
		case 'd':
			return time.Duration(n) * 24 * time.Hour, nil
		case 'm':
			return time.Duration(n) * 30 * 24 * time.Hour, nil
		default:
			return time.Duration(n) * 365 * 24 * time.Hour, nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid lookback %q", s)
	}
	return d, nil
}

// RevalidateLookback re-resolves the analysis window from a lookback
// expression supplied at request time, as MCP tools do.
func RevalidateLookback(cfg *Config, lookbackStr string) error {
	if lookbackStr == "" {
		return nil
	}
	lookback, err := ParseLookback(lookbackStr)
	if err != nil {
		return err
	}
	cfg.Lookback = lookback
	cfg.EndTime = time.Now()
	cfg.StartTime = cfg.EndTime.Add(-lookback)
	return nil
}

// parseTimeValue accepts RFC3339 or plain dates for window boundaries.
func parseTimeValue(s string) (time.Time, error) {
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	return time.Parse(DateOnlyFormat, s)
}

// processTimeRange resolves the analysis window from --start/--end or the
// lookback expression. Explicit boundaries win over the lookback.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	lookback := time.Duration(DefaultLookbackDays) * 24 * time.Hour
	if input.Lookback != "" {
		parsed, err := ParseLookback(input.Lookback)
		if err != nil {
			return err
		}
		lookback = parsed
	}
	cfg.Lookback = lookback

	end := time.Now()
	if input.End != "" {
		parsed, err := parseTimeValue(input.End)
		if err != nil {
			return fmt.Errorf("invalid --end value %q: %w", input.End, err)
		}
		end = parsed
	}
	cfg.EndTime = end

	if input.Start != "" {
		parsed, err := parseTimeValue(input.Start)
		if err != nil {
			return fmt.Errorf("invalid --start value %q: %w", input.Start, err)
		}
		cfg.StartTime = parsed
	} else {
		cfg.StartTime = end.Add(-lookback)
	}

	if !cfg.StartTime.Before(cfg.EndTime) {
		return fmt.Errorf("start time %s must precede end time %s",
			cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}
	return nil
}

// resolveGitPath resolves the positional repo argument to the repository root.
func resolveGitPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	repoPath := input.RepoPathStr
	if repoPath == "" {
		repoPath = "."
	}
	root, err := client.GetRepoRoot(ctx, repoPath)
	if err != nil {
		return fmt.Errorf("not a git repository: %q", repoPath)
	}
	cfg.RepoPath = root
	return nil
}
