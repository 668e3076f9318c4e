// Package config holds the engine configuration: dimension weights, grade
// breakpoints, severity penalties, and scanner limits. Configuration
// problems are engine misconfiguration, not a property of any skill, so
// Validate runs at startup and fails fast before any skill is scanned.
package config

import (
	"math"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// weightTolerance is the floating tolerance for the weight-sum check
const weightTolerance = 1e-6

// GradeBreakpoints holds the minimum total score for each letter grade.
// Scores below MinD map to F. The table must be strictly decreasing.
type GradeBreakpoints struct {
	MinA float64 `mapstructure:"min_a"`
	MinB float64 `mapstructure:"min_b"`
	MinC float64 `mapstructure:"min_c"`
	MinD float64 `mapstructure:"min_d"`
}

// GradeFor maps a total score onto the letter grade table
func (g GradeBreakpoints) GradeFor(total float64) audit.Grade {
	switch {
	case total >= g.MinA:
		return audit.GradeA
	case total >= g.MinB:
		return audit.GradeB
	case total >= g.MinC:
		return audit.GradeC
	case total >= g.MinD:
		return audit.GradeD
	default:
		return audit.GradeF
	}
}

// Config is the full engine configuration
type Config struct {
	Weights           map[string]float64 `mapstructure:"weights"`
	Grades            GradeBreakpoints   `mapstructure:"grades"`
	SeverityPenalties map[string]float64 `mapstructure:"severity_penalties"`
	MaxFileSize       int64              `mapstructure:"max_file_size"`
	Concurrency       int                `mapstructure:"concurrency"`
	ExcludeGlobs      []string           `mapstructure:"exclude_globs"`
	RuleFiles         []string           `mapstructure:"rule_files"`
	ResultCachePath   string             `mapstructure:"result_cache_path"`
	TokenBudget       int                `mapstructure:"token_budget"`
}

// Default returns the builtin configuration. Weights cover the seven
// builtin dimensions and sum to 1.0.
func Default() Config {
	return Config{
		Weights: map[string]float64{
			"frontmatter": 0.15,
			"content":     0.15,
			"security":    0.25,
			"structure":   0.10,
			"tokens":      0.10,
			"practices":   0.10,
			"codequality": 0.15,
		},
		Grades: GradeBreakpoints{MinA: 9.0, MinB: 7.5, MinC: 6.0, MinD: 4.0},
		SeverityPenalties: map[string]float64{
			string(audit.SeverityCritical): 4.0,
			string(audit.SeverityHigh):     2.5,
			string(audit.SeverityMedium):   1.5,
			string(audit.SeverityLow):      0.5,
		},
		MaxFileSize: 1 << 20,
		Concurrency: 4,
		TokenBudget: 2048,
	}
}

// Load overlays viper-provided settings (config file, env) onto the
// defaults and validates the result.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to build config decoder")
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode configuration")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency
func (c Config) Validate() error {
	sum := 0.0
	for name, w := range c.Weights {
		if w < 0 || w > 1 {
			return errors.Errorf("weight for dimension %q out of range: %v", name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return errors.Errorf("dimension weights sum to %.4f, want 1.0", sum)
	}

	g := c.Grades
	if !(g.MinA > g.MinB && g.MinB > g.MinC && g.MinC > g.MinD && g.MinD > 0) {
		return errors.Errorf("grade breakpoints must be strictly decreasing and positive: %+v", g)
	}

	for sev, penalty := range c.SeverityPenalties {
		if _, err := audit.ParseSeverity(sev); err != nil {
			return errors.Wrap(err, "invalid severity in penalties")
		}
		if penalty < 0 {
			return errors.Errorf("penalty for severity %q is negative", sev)
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.New("max_file_size must be positive")
	}
	if c.Concurrency <= 0 {
		return errors.New("concurrency must be positive")
	}
	for _, glob := range c.ExcludeGlobs {
		if !doublestar.ValidatePattern(glob) {
			return errors.Errorf("invalid exclude glob %q", glob)
		}
	}
	return nil
}

// PenaltyFor returns the score penalty for one finding of the severity
func (c Config) PenaltyFor(sev audit.Severity) float64 {
	return c.SeverityPenalties[string(sev)]
}
