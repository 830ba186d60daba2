package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/grading"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/report"
)

const DefaultPath = "gradecalc.yaml"

type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	CGPAPolicy     string         `yaml:"cgpa_policy"`
	GradeScalePath string         `yaml:"grade_scale_path"`
	Bounds         grading.Bounds `yaml:"bounds"`
	ReportTitle    string         `yaml:"report_title"`

	AllowedOrigins        []string `yaml:"allowed_origins"`
	MaxRequestsPerMin     int      `yaml:"max_requests_per_min"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
	EnableSwagger         bool     `yaml:"enable_swagger"`
}

// Default returns the configuration used when no file or env is present.
func Default() Config {
	return Config{
		Port:                  "8080",
		LogLevel:              "info",
		CGPAPolicy:            string(grading.PolicyCreditWeighted),
		Bounds:                grading.DefaultBounds(),
		ReportTitle:           report.DefaultTitle,
		AllowedOrigins:        []string{"http://localhost:3000", "http://localhost:5173"},
		MaxRequestsPerMin:     60,
		RequestTimeoutSeconds: 10,
		EnableSwagger:         true,
	}
}

// Load reads the YAML file at path (or CONFIG_PATH, or DefaultPath) over
// the defaults, then applies environment overrides. A missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			path = envPath
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, apperrors.NewConfigurationError(fmt.Sprintf("error parsing %s", path), err)
		}
		slog.Debug("Loaded config", "path", path)
	case !os.IsNotExist(err):
		return Config{}, apperrors.NewConfigurationError(fmt.Sprintf("error reading %s", path), err)
	}

	envOverride(&cfg.Port, "PORT")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.CGPAPolicy, "CGPA_POLICY")
	envOverride(&cfg.GradeScalePath, "GRADE_SCALE_PATH")
	envOverride(&cfg.ReportTitle, "REPORT_TITLE")
	envOverrideInt(&cfg.Bounds.MaxSubjects, "MAX_SUBJECTS")
	envOverrideInt(&cfg.Bounds.MaxSubjectCredits, "MAX_SUBJECT_CREDITS")
	envOverrideInt(&cfg.Bounds.MaxSemesters, "MAX_SEMESTERS")
	envOverrideInt(&cfg.Bounds.MaxSemesterCredits, "MAX_SEMESTER_CREDITS")
	envOverrideInt(&cfg.MaxRequestsPerMin, "MAX_REQUESTS_PER_MIN")
	envOverrideInt(&cfg.RequestTimeoutSeconds, "REQUEST_TIMEOUT_SECONDS")
	envOverrideBool(&cfg.EnableSwagger, "ENABLE_SWAGGER")

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return apperrors.NewConfigurationError(fmt.Sprintf("port %q is not a number", c.Port), err)
	}
	if _, err := c.Policy(); err != nil {
		return apperrors.NewConfigurationError(fmt.Sprintf("unknown cgpa_policy %q", c.CGPAPolicy), err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return apperrors.NewConfigurationError(fmt.Sprintf("unknown log_level %q", c.LogLevel), err)
	}

	b := c.Bounds
	for name, v := range map[string]int{
		"max_subjects":         b.MaxSubjects,
		"max_subject_credits":  b.MaxSubjectCredits,
		"max_semesters":        b.MaxSemesters,
		"max_semester_credits": b.MaxSemesterCredits,
	} {
		if v < 1 {
			return apperrors.NewConfigurationError(fmt.Sprintf("bounds.%s must be at least 1, got %d", name, v), nil)
		}
	}

	if !report.Printable(c.ReportTitle) {
		return apperrors.NewConfigurationError(fmt.Sprintf("report_title %q has characters the PDF fonts cannot print", c.ReportTitle), nil)
	}

	if c.MaxRequestsPerMin < 1 {
		return apperrors.NewConfigurationError("max_requests_per_min must be positive", nil)
	}
	if c.RequestTimeoutSeconds < 1 {
		return apperrors.NewConfigurationError("request_timeout_seconds must be positive", nil)
	}
	return nil
}

// Policy returns the configured CGPA policy.
func (c Config) Policy() (grading.Policy, error) {
	return grading.ParsePolicy(c.CGPAPolicy)
}

// SlogLevel maps log_level onto a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel)))
	return level, err
}

// RequestTimeout returns the per-request deadline.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		} else {
			slog.Warn("Ignoring invalid integer env override", "key", key, "value", v)
		}
	}
}

func envOverrideBool(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		} else {
			slog.Warn("Ignoring invalid boolean env override", "key", key, "value", v)
		}
	}
}
