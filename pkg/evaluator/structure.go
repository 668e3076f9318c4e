package evaluator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jingkaihe/skillaudit/pkg/skill"
	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// junkNames are artifacts that should never ship inside a skill package
var junkNames = map[string]bool{
	"__pycache__":   true,
	".DS_Store":     true,
	"node_modules":  true,
	".pytest_cache": true,
}

// maxScriptDepth bounds how deeply scripts may nest under scripts/
const maxScriptDepth = 4

// structureEvaluator checks the skill directory layout
type structureEvaluator struct {
	base
}

func (e *structureEvaluator) Evaluate(_ context.Context, sk *skill.Skill) (*audit.DimensionScore, error) {
	ds := &audit.DimensionScore{Score: 10}

	entries, err := os.ReadDir(sk.Directory)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if junkNames[name] {
			ds.Score -= 1
			ds.Findings = append(ds.Findings, audit.Finding{
				Severity: audit.SeverityLow,
				Message:  fmt.Sprintf("stray artifact %q inside skill package", name),
				File:     filepath.Join(sk.Directory, name),
			})
			continue
		}
		// Source files belong under scripts/, not the package root
		if !entry.IsDir() && skill.DetectLanguage(name) != skill.LangUnknown {
			ds.Score -= 1.5
			ds.Findings = append(ds.Findings, audit.Finding{
				Severity: audit.SeverityLow,
				Message:  fmt.Sprintf("script %q at package root; move it under %s/", name, skill.ScriptsDirName),
				File:     filepath.Join(sk.Directory, name),
			})
		}
	}

	for _, script := range sk.Scripts {
		if strings.Count(script.RelPath, "/") > maxScriptDepth {
			ds.Score -= 0.5
			ds.Findings = append(ds.Findings, audit.Finding{
				Severity: audit.SeverityLow,
				Message:  "script nested too deeply; flatten the scripts tree",
				File:     script.Path,
			})
		}
	}

	return ds, nil
}

// practicesEvaluator checks adherence to skill-authoring conventions
type practicesEvaluator struct {
	base
}

func (e *practicesEvaluator) Evaluate(_ context.Context, sk *skill.Skill) (*audit.DimensionScore, error) {
	ds := &audit.DimensionScore{Score: 10}

	for _, marker := range []string{"TODO", "FIXME", "XXX"} {
		if strings.Contains(sk.Manifest, marker) {
			ds.Score -= 1
			ds.Findings = append(ds.Findings, audit.Finding{
				Severity: audit.SeverityLow,
				Message:  fmt.Sprintf("manifest contains %s marker; finish the instructions before publishing", marker),
				File:     sk.ManifestPath,
			})
		}
	}

	// Every scripts/ path mentioned in the manifest should exist
	for _, ref := range referencedScripts(sk.Manifest) {
		if _, err := os.Stat(filepath.Join(sk.Directory, ref)); err != nil {
			ds.Score -= 2
			ds.Findings = append(ds.Findings, audit.Finding{
				Severity: audit.SeverityMedium,
				Message:  fmt.Sprintf("manifest references %s which does not exist", ref),
				File:     sk.ManifestPath,
			})
		}
	}

	if len(sk.Scripts) > 0 && !strings.Contains(sk.Manifest, skill.ScriptsDirName+"/") {
		ds.Score -= 1
		ds.Notes = append(ds.Notes, "skill ships scripts but the manifest never mentions them")
	}

	return ds, nil
}

// referencedScripts pulls scripts/... path mentions out of the manifest body
func referencedScripts(body string) []string {
	var refs []string
	seen := map[string]bool{}
	rest := body
	for {
		idx := strings.Index(rest, skill.ScriptsDirName+"/")
		if idx < 0 {
			break
		}
		tail := rest[idx:]
		end := strings.IndexFunc(tail, func(r rune) bool {
			return r == ' ' || r == '\n' || r == '`' || r == ')' || r == '"' || r == '\''
		})
		if end < 0 {
			end = len(tail)
		}
		ref := strings.TrimRight(tail[:end], ".,:;")
		if ref != skill.ScriptsDirName+"/" && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
		rest = rest[idx+end:]
	}
	return refs
}
