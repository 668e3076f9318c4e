package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.Weights, 7)
	assert.Equal(t, 4.0, cfg.PenaltyFor(audit.SeverityCritical))
	assert.Equal(t, 0.5, cfg.PenaltyFor(audit.SeverityLow))
	assert.Equal(t, int64(1<<20), cfg.MaxFileSize)
	assert.Equal(t, 2048, cfg.TokenBudget)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "weights summing to 0.9",
			mutate: func(c *Config) {
				c.Weights["security"] = 0.15
			},
			wantErr: "weights sum",
		},
		{
			name: "weight out of range",
			mutate: func(c *Config) {
				c.Weights["security"] = -0.1
			},
			wantErr: "out of range",
		},
		{
			name: "non-decreasing grade breakpoints",
			mutate: func(c *Config) {
				c.Grades.MinB = 9.5
			},
			wantErr: "strictly decreasing",
		},
		{
			name: "unknown severity in penalties",
			mutate: func(c *Config) {
				c.SeverityPenalties["catastrophic"] = 9.0
			},
			wantErr: "invalid severity",
		},
		{
			name: "negative penalty",
			mutate: func(c *Config) {
				c.SeverityPenalties["low"] = -1
			},
			wantErr: "negative",
		},
		{
			name: "zero max file size",
			mutate: func(c *Config) {
				c.MaxFileSize = 0
			},
			wantErr: "max_file_size",
		},
		{
			name: "zero concurrency",
			mutate: func(c *Config) {
				c.Concurrency = 0
			},
			wantErr: "concurrency",
		},
		{
			name: "invalid exclude glob",
			mutate: func(c *Config) {
				c.ExcludeGlobs = []string{"[bad"}
			},
			wantErr: "invalid exclude glob",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadOverlaysViperSettings(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "skillaudit-config.yaml")
	content := `
weights:
  frontmatter: 0.15
  content: 0.15
  security: 0.30
  structure: 0.10
  tokens: 0.10
  practices: 0.10
  codequality: 0.10
concurrency: 8
token_budget: 4096
exclude_globs:
  - "scripts/vendor/**"
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	v := viper.New()
	v.SetConfigFile(configFile)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 0.30, cfg.Weights["security"])
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 4096, cfg.TokenBudget)
	assert.Equal(t, []string{"scripts/vendor/**"}, cfg.ExcludeGlobs)

	// untouched settings keep their defaults
	assert.Equal(t, 9.0, cfg.Grades.MinA)
	assert.Equal(t, 4.0, cfg.PenaltyFor(audit.SeverityCritical))
}

func TestLoadRejectsInvalidOverlay(t *testing.T) {
	v := viper.New()
	v.Set("weights", map[string]float64{"security": 1.5})
	_, err := Load(v)
	assert.Error(t, err)
}

func TestLoadEmptyViperYieldsDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, Default().Weights, cfg.Weights)
	assert.Equal(t, Default().Concurrency, cfg.Concurrency)
}

func TestGradeForTable(t *testing.T) {
	g := Default().Grades
	assert.Equal(t, audit.GradeA, g.GradeFor(9.0))
	assert.Equal(t, audit.GradeB, g.GradeFor(8.0))
	assert.Equal(t, audit.GradeC, g.GradeFor(6.5))
	assert.Equal(t, audit.GradeD, g.GradeFor(4.0))
	assert.Equal(t, audit.GradeF, g.GradeFor(3.9))
}
