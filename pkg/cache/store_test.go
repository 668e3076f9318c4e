package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

func testResult(skillPath string) *audit.EvaluationResult {
	return &audit.EvaluationResult{
		RunID:     "run-1",
		SkillPath: skillPath,
		SkillName: "demo",
		Dimensions: map[string]*audit.DimensionScore{
			"security": {
				Name:   "security",
				Score:  6,
				Weight: 0.25,
				Findings: []audit.Finding{{
					Dimension: "security",
					Severity:  audit.SeverityCritical,
					Message:   "direct OS command execution",
					File:      filepath.Join(skillPath, "scripts", "run.py"),
					Line:      12,
					RuleID:    "os-command-exec",
				}},
			},
		},
		TotalScore: 7.5,
		Grade:      audit.GradeB,
		Timestamp:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestResultStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "results.db")

	store, err := OpenResultStore(ctx, dbPath)
	require.NoError(t, err)
	defer store.Close()

	result := testResult("/skills/demo")
	require.NoError(t, store.Put(ctx, "sig-abc", result))

	got, err := store.Get(ctx, "/skills/demo", "sig-abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, result.TotalScore, got.TotalScore)
	assert.Equal(t, result.Grade, got.Grade)
	require.Contains(t, got.Dimensions, "security")
	require.Len(t, got.Dimensions["security"].Findings, 1)
	assert.Equal(t, 12, got.Dimensions["security"].Findings[0].Line)
}

func TestResultStoreMissAndStale(t *testing.T) {
	ctx := context.Background()
	store, err := OpenResultStore(ctx, filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Get(ctx, "/skills/none", "sig")
	require.NoError(t, err)
	assert.Nil(t, got, "unknown skill must be a miss")

	result := testResult("/skills/demo")
	require.NoError(t, store.Put(ctx, "sig-old", result))

	got, err = store.Get(ctx, "/skills/demo", "sig-new")
	require.NoError(t, err)
	assert.Nil(t, got, "stale signature must be a miss")
}

func TestResultStoreSupersedesOldSignature(t *testing.T) {
	ctx := context.Background()
	store, err := OpenResultStore(ctx, filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	result := testResult("/skills/demo")
	require.NoError(t, store.Put(ctx, "sig-1", result))
	require.NoError(t, store.Put(ctx, "sig-2", result))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "one row per skill path")

	got, err := store.Get(ctx, "/skills/demo", "sig-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultStoreClear(t *testing.T) {
	ctx := context.Background()
	store, err := OpenResultStore(ctx, filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(ctx, "sig", testResult("/skills/a")))
	require.NoError(t, store.Clear(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
