package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillaudit/pkg/cache"
	"github.com/jingkaihe/skillaudit/pkg/config"
	"github.com/jingkaihe/skillaudit/pkg/evaluator"
	"github.com/jingkaihe/skillaudit/pkg/rules"
	"github.com/jingkaihe/skillaudit/pkg/scanner"
	"github.com/jingkaihe/skillaudit/pkg/skill"
	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

const sampleManifest = `---
name: sample
description: A sample skill used to drive catalog evaluation tests.
---

# Sample

## Usage

Run scripts/main.py to produce the report described above in detail.
`

func writeCatalogSkill(t *testing.T, catalog, name string, scripts map[string]string) string {
	t.Helper()
	dir := filepath.Join(catalog, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, skill.ScriptsDirName), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, skill.ManifestFileName), []byte(sampleManifest), 0o644))
	for rel, content := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, skill.ScriptsDirName, rel), []byte(content), 0o755))
	}
	return dir
}

func newTestRunner(t *testing.T, catalog string, opts ...RunnerOption) (*Runner, *cache.Manager) {
	t.Helper()
	cfg := config.Default()
	cm := cache.NewManager()
	sc := scanner.New(rules.DefaultSet(), cm)
	registry, err := evaluator.NewRegistryWithBuiltins(cfg, sc, cm)
	require.NoError(t, err)
	discovery, err := skill.NewDiscovery(skill.WithCatalogDirs(catalog))
	require.NoError(t, err)
	return NewRunner(discovery, registry, cm, opts...), cm
}

func TestEvaluateSkill(t *testing.T) {
	catalog := t.TempDir()
	dir := writeCatalogSkill(t, catalog, "sample", map[string]string{
		"main.py": "#!/usr/bin/env python3\nprint('ok')\n",
	})
	runner, _ := newTestRunner(t, catalog)

	result, err := runner.EvaluateSkill(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "sample", result.SkillName)
	assert.Equal(t, dir, result.SkillPath)
	assert.Len(t, result.Dimensions, 7)
	assert.NotEmpty(t, result.RunID)
}

func TestEvaluateSkillIsIdempotent(t *testing.T) {
	catalog := t.TempDir()
	dir := writeCatalogSkill(t, catalog, "sample", map[string]string{
		"main.py": "#!/usr/bin/env python3\nprint('ok')\n",
	})
	runner, cm := newTestRunner(t, catalog)

	first, err := runner.EvaluateSkill(context.Background(), dir)
	require.NoError(t, err)
	second, err := runner.EvaluateSkill(context.Background(), dir)
	require.NoError(t, err)

	// unchanged inputs hit the memoized result, RunID included
	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, first.TotalScore, second.TotalScore)
	assert.Greater(t, cm.Stats().Hits, int64(0))
}

func TestEvaluateSkillRecomputesOnChange(t *testing.T) {
	catalog := t.TempDir()
	dir := writeCatalogSkill(t, catalog, "sample", map[string]string{
		"main.py": "#!/usr/bin/env python3\nprint('ok')\n",
	})
	runner, _ := newTestRunner(t, catalog)

	first, err := runner.EvaluateSkill(context.Background(), dir)
	require.NoError(t, err)

	script := filepath.Join(dir, skill.ScriptsDirName, "main.py")
	require.NoError(t, os.WriteFile(script, []byte("#!/usr/bin/env python3\nimport os\nos.system(x)\n"), 0o755))

	second, err := runner.EvaluateSkill(context.Background(), dir)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Less(t, second.TotalScore, first.TotalScore)
	require.Len(t, second.Dimensions["security"].Findings, 1)
	assert.Equal(t, audit.SeverityCritical, second.Dimensions["security"].Findings[0].Severity)
}

func TestEvaluateSkillMissingDir(t *testing.T) {
	runner, _ := newTestRunner(t, t.TempDir())
	_, err := runner.EvaluateSkill(context.Background(), "/does/not/exist")
	assert.Error(t, err)
}

func TestRunBatch(t *testing.T) {
	catalog := t.TempDir()
	writeCatalogSkill(t, catalog, "alpha", map[string]string{"main.py": "print('a')\n"})
	writeCatalogSkill(t, catalog, "beta", map[string]string{"main.py": "print('b')\n"})

	// a directory without a loadable manifest is skipped, not fatal
	require.NoError(t, os.MkdirAll(filepath.Join(catalog, "not-a-skill"), 0o755))

	runner, _ := newTestRunner(t, catalog, WithConcurrency(2))
	results, err := runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "sample", results[0].SkillName)
	assert.Equal(t, filepath.Join(catalog, "alpha"), results[0].SkillPath)
	assert.Equal(t, filepath.Join(catalog, "beta"), results[1].SkillPath)
}

func TestRunEmptyCatalog(t *testing.T) {
	runner, _ := newTestRunner(t, t.TempDir())
	results, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRunMissingCatalog(t *testing.T) {
	runner, _ := newTestRunner(t, filepath.Join(t.TempDir(), "absent"))
	_, err := runner.Run(context.Background())
	assert.Error(t, err)
}

func TestRunPersistsToStore(t *testing.T) {
	catalog := t.TempDir()
	dir := writeCatalogSkill(t, catalog, "sample", map[string]string{"main.py": "print('ok')\n"})

	store, err := cache.OpenResultStore(context.Background(), filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	runner, _ := newTestRunner(t, catalog, WithResultStore(store))

	first, err := runner.EvaluateSkill(context.Background(), dir)
	require.NoError(t, err)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// a fresh runner over the same store reuses the persisted result
	fresh, _ := newTestRunner(t, catalog, WithResultStore(store))
	second, err := fresh.EvaluateSkill(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, first.RunID, second.RunID)
}
