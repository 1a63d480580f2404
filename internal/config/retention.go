package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/darshan-rambhia/whm/internal/model"
)

// Retention is the maximum age of chart rows per scope, in that scope's unit.
type Retention struct {
	HoursAgeMax int `yaml:"hours_age_max"`
	DaysAgeMax  int `yaml:"days_age_max"`
	WeeksAgeMax int `yaml:"weeks_age_max"`
}

// DefaultRetention keeps 24 hours, 30 days and 52 weeks.
func DefaultRetention() Retention {
	return Retention{HoursAgeMax: 24, DaysAgeMax: 30, WeeksAgeMax: 52}
}

// Get returns the configured max age for scope in scope units.
func (r Retention) Get(scope model.Scope) int {
	switch scope {
	case model.ScopeHours:
		return r.HoursAgeMax
	case model.ScopeDays:
		return r.DaysAgeMax
	case model.ScopeWeeks:
		return r.WeeksAgeMax
	}
	return 0
}

func (r *Retention) set(scope model.Scope, n int) {
	switch scope {
	case model.ScopeHours:
		r.HoursAgeMax = n
	case model.ScopeDays:
		r.DaysAgeMax = n
	case model.ScopeWeeks:
		r.WeeksAgeMax = n
	}
}

// MaxAgeLimit is the largest max age for scope, in scope units, whose
// duration still fits in a time.Duration.
func MaxAgeLimit(scope model.Scope) int {
	h := scope.Hours()
	if h == 0 {
		return 0
	}
	return int(math.MaxInt64 / (int64(h) * int64(time.Hour)))
}

// MaxAge converts the scope's max age to a duration. Ages past
// MaxAgeLimit saturate instead of wrapping negative.
func (r Retention) MaxAge(scope model.Scope) time.Duration {
	n := r.Get(scope)
	if n > MaxAgeLimit(scope) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(n) * time.Duration(scope.Hours()) * time.Hour
}

// Validate rejects negative ages and ages too large to express as a duration.
func (r Retention) Validate() error {
	for _, scope := range model.Scopes {
		if n := r.Get(scope); n < 0 || n > MaxAgeLimit(scope) {
			return fmt.Errorf("%s_age_max must be between 0 and %d", scope, MaxAgeLimit(scope))
		}
	}
	return nil
}

// withDefaults replaces out-of-range values with the default for that scope.
func (r Retention) withDefaults() (Retention, []model.Scope) {
	def := DefaultRetention()
	var replaced []model.Scope
	for _, scope := range model.Scopes {
		if n := r.Get(scope); n < 0 || n > MaxAgeLimit(scope) {
			r.set(scope, def.Get(scope))
			replaced = append(replaced, scope)
		}
	}
	return r, replaced
}

func applyRetentionEnv(r *Retention) {
	for env, dst := range map[string]*int{
		"WHM_HOURS_AGE_MAX": &r.HoursAgeMax,
		"WHM_DAYS_AGE_MAX":  &r.DaysAgeMax,
		"WHM_WEEKS_AGE_MAX": &r.WeeksAgeMax,
	} {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
}

// RetentionFile re-reads the record block of a config file on every call,
// so retention edits apply to the next recording without a restart.
// Problems never fail the caller: they are logged and defaults are used.
type RetentionFile struct {
	path   string
	logger *slog.Logger
}

// NewRetentionFile creates a retention source backed by path. An empty path
// always yields the defaults (plus environment overrides).
func NewRetentionFile(path string, logger *slog.Logger) *RetentionFile {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetentionFile{path: path, logger: logger.With("component", "retention")}
}

// Load returns the current retention settings.
func (f *RetentionFile) Load() Retention {
	r := DefaultRetention()
	if f.path != "" {
		data, err := os.ReadFile(f.path)
		switch {
		case err != nil:
			f.logger.Warn("retention config unreadable, using defaults", "path", f.path, "error", err)
		default:
			doc := struct {
				Record Retention `yaml:"record"`
			}{Record: DefaultRetention()}
			if err := yaml.Unmarshal(expandEnvVars(data), &doc); err != nil {
				f.logger.Warn("retention config invalid, using defaults", "path", f.path, "error", err)
			} else {
				r = doc.Record
			}
		}
	}
	applyRetentionEnv(&r)

	r, replaced := r.withDefaults()
	for _, scope := range replaced {
		f.logger.Warn("retention out of range, using default", "scope", scope, "default", r.Get(scope), "max", MaxAgeLimit(scope))
	}
	return r
}

// MaxAge implements store.RetentionSource.
func (f *RetentionFile) MaxAge(scope model.Scope) time.Duration {
	return f.Load().MaxAge(scope)
}
