package evaluator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillaudit/pkg/cache"
	"github.com/jingkaihe/skillaudit/pkg/config"
	"github.com/jingkaihe/skillaudit/pkg/rules"
	"github.com/jingkaihe/skillaudit/pkg/scanner"
	"github.com/jingkaihe/skillaudit/pkg/skill"
	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

func writeSkill(t *testing.T, manifest string, scripts map[string]string) *skill.Skill {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, skill.ManifestFileName), []byte(manifest), 0o644))
	if len(scripts) > 0 {
		scriptsDir := filepath.Join(dir, skill.ScriptsDirName)
		require.NoError(t, os.MkdirAll(scriptsDir, 0o755))
		for name, content := range scripts {
			require.NoError(t, os.WriteFile(filepath.Join(scriptsDir, name), []byte(content), 0o755))
		}
	}
	d, err := skill.NewDiscovery()
	require.NoError(t, err)
	sk, err := d.Load(dir)
	require.NoError(t, err)
	return sk
}

func newSecurityEvaluator(t *testing.T) (*securityEvaluator, config.Config) {
	t.Helper()
	cfg := config.Default()
	cm := cache.NewManager()
	sc := scanner.New(rules.DefaultSet(), cm)
	return &securityEvaluator{
		base:      base{DimSecurity, cfg.Weights[DimSecurity]},
		scanner:   sc,
		cache:     cm,
		penalties: cfg,
	}, cfg
}

const securityManifest = `---
name: deploy-helper
description: Helps deploy services to staging environments safely.
---

# Deploy Helper

## Usage

Run the deploy script. As a rule, never call ` + "`os.system`" + ` directly
from your own automation; the script below wraps it with validation.
`

// Twelve lines: os.system(user_input) sits on line 12.
const deployScript = `#!/usr/bin/env python3
"""Deploy wrapper."""

import os
import sys


def main():
    user_input = sys.argv[1]
    # validation elided
    print("deploying")
    os.system(user_input)
`

func TestSecurityProseMentionIsNotAFinding(t *testing.T) {
	e, _ := newSecurityEvaluator(t)
	sk := writeSkill(t, securityManifest, nil)

	ds, err := e.Evaluate(context.Background(), sk)
	require.NoError(t, err)
	assert.Empty(t, ds.Findings, "prose that only talks about os.system must not match")
	assert.Equal(t, 10.0, ds.Score)
}

func TestSecurityScriptCallSiteIsFound(t *testing.T) {
	e, cfg := newSecurityEvaluator(t)
	sk := writeSkill(t, securityManifest, map[string]string{"deploy.py": deployScript})

	ds, err := e.Evaluate(context.Background(), sk)
	require.NoError(t, err)

	require.Len(t, ds.Findings, 1)
	f := ds.Findings[0]
	assert.Equal(t, audit.SeverityCritical, f.Severity)
	assert.Equal(t, 12, f.Line)
	assert.Equal(t, "os-command-exec", f.RuleID)
	assert.Contains(t, f.File, "deploy.py")
	assert.InDelta(t, 10.0-cfg.PenaltyFor(audit.SeverityCritical), ds.Score, 1e-9)
}

func TestSecurityScansFencedFragmentsWithRemappedLines(t *testing.T) {
	e, _ := newSecurityEvaluator(t)
	manifest := `---
name: fragment-demo
description: Demonstrates scanning of fenced code examples in prose.
---

# Fragment Demo

` + "```python" + `
import os
os.system("rm -rf /tmp/scratch")
` + "```" + `
`
	sk := writeSkill(t, manifest, nil)

	ds, err := e.Evaluate(context.Background(), sk)
	require.NoError(t, err)

	require.Len(t, ds.Findings, 1)
	// fence opens on line 8, so the call on fragment line 2 lands on line 10
	assert.Equal(t, 10, ds.Findings[0].Line)
	assert.Contains(t, ds.Findings[0].File, skill.ManifestFileName)
}

func TestSecurityBrokenScriptDegradesGracefully(t *testing.T) {
	e, _ := newSecurityEvaluator(t)
	sk := writeSkill(t, securityManifest, map[string]string{"broken.py": "def f(:\n"})

	ds, err := e.Evaluate(context.Background(), sk)
	require.NoError(t, err, "a broken script must not abort the evaluation")

	require.Len(t, ds.Findings, 1)
	assert.Equal(t, audit.SeverityLow, ds.Findings[0].Severity)
	assert.Contains(t, ds.Findings[0].Message, "unparseable")
}

func TestSecuritySkipsUnknownScriptTypes(t *testing.T) {
	e, _ := newSecurityEvaluator(t)
	sk := writeSkill(t, securityManifest, map[string]string{"helper.rb": "system(cmd)\n"})

	ds, err := e.Evaluate(context.Background(), sk)
	require.NoError(t, err)
	assert.Empty(t, ds.Findings)

	var skipped bool
	for _, note := range ds.Notes {
		if strings.Contains(note, "helper.rb") && strings.Contains(note, "skipped") {
			skipped = true
		}
	}
	assert.True(t, skipped, "unknown script types should be noted as skipped, notes: %v", ds.Notes)
}
