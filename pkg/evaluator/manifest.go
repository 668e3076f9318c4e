package evaluator

import (
	"context"
	"strings"

	"github.com/jingkaihe/skillaudit/pkg/skill"
	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// frontmatterEvaluator checks the manifest's frontmatter metadata. Loading
// already guarantees name and description exist; this dimension scores
// their quality.
type frontmatterEvaluator struct {
	base
}

func (e *frontmatterEvaluator) Evaluate(_ context.Context, sk *skill.Skill) (*audit.DimensionScore, error) {
	ds := &audit.DimensionScore{Score: 10}

	if len(sk.Description) < 20 {
		ds.Score -= 3
		ds.Findings = append(ds.Findings, audit.Finding{
			Severity: audit.SeverityLow,
			Message:  "description is too short to guide skill selection (want at least 20 characters)",
			File:     sk.ManifestPath,
		})
	}
	if len(sk.Description) > 500 {
		ds.Score -= 2
		ds.Findings = append(ds.Findings, audit.Finding{
			Severity: audit.SeverityLow,
			Message:  "description exceeds 500 characters; keep frontmatter concise",
			File:     sk.ManifestPath,
		})
	}
	if sk.Name != strings.ToLower(sk.Name) || strings.ContainsAny(sk.Name, " _") {
		ds.Score -= 2
		ds.Findings = append(ds.Findings, audit.Finding{
			Severity: audit.SeverityLow,
			Message:  "skill name should be lowercase kebab-case",
			File:     sk.ManifestPath,
		})
	}

	return ds, nil
}

// contentEvaluator scores the completeness of the manifest body
type contentEvaluator struct {
	base
}

func (e *contentEvaluator) Evaluate(_ context.Context, sk *skill.Skill) (*audit.DimensionScore, error) {
	ds := &audit.DimensionScore{Score: 10}
	body := sk.Manifest

	if len(strings.TrimSpace(body)) < 100 {
		ds.Score -= 4
		ds.Findings = append(ds.Findings, audit.Finding{
			Severity: audit.SeverityMedium,
			Message:  "manifest body is too thin to describe the skill's behavior",
			File:     sk.ManifestPath,
		})
	}
	if !strings.Contains(body, "#") {
		ds.Score -= 2
		ds.Findings = append(ds.Findings, audit.Finding{
			Severity: audit.SeverityLow,
			Message:  "manifest has no headings; structure the instructions with sections",
			File:     sk.ManifestPath,
		})
	}

	lower := strings.ToLower(body)
	if !strings.Contains(lower, "usage") && !strings.Contains(lower, "instructions") && !strings.Contains(lower, "when to use") {
		ds.Score -= 2
		ds.Notes = append(ds.Notes, "no usage or instructions section found")
	}

	return ds, nil
}
