package evaluator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jingkaihe/skillaudit/pkg/skill"
	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// tokensEvaluator scores the manifest's token efficiency: skill bodies are
// injected into model context, so oversized manifests waste budget.
type tokensEvaluator struct {
	base
	budget int
}

// estimateTokens approximates the token count of a text at ~4 chars/token
func estimateTokens(text string) int {
	return len(text) / 4
}

func (e *tokensEvaluator) Evaluate(_ context.Context, sk *skill.Skill) (*audit.DimensionScore, error) {
	ds := &audit.DimensionScore{Score: 10}

	tokens := estimateTokens(sk.Manifest)
	ds.Notes = append(ds.Notes, fmt.Sprintf("estimated %d tokens against a budget of %d", tokens, e.budget))

	if tokens > e.budget {
		over := float64(tokens-e.budget) / float64(e.budget)
		ds.Score -= min(8, over*10)
		ds.Findings = append(ds.Findings, audit.Finding{
			Severity: audit.SeverityMedium,
			Message:  fmt.Sprintf("manifest is ~%d tokens, over the %d token budget", tokens, e.budget),
			File:     sk.ManifestPath,
		})
	}
	return ds, nil
}

// maxScriptLines is the length bound for a single script
const maxScriptLines = 400

// codeQualityEvaluator applies lightweight quality checks to the scripts
type codeQualityEvaluator struct {
	base
}

func (e *codeQualityEvaluator) Evaluate(_ context.Context, sk *skill.Skill) (*audit.DimensionScore, error) {
	ds := &audit.DimensionScore{Score: 10}

	for _, script := range sk.Scripts {
		data, err := os.ReadFile(script.Path)
		if err != nil {
			ds.Findings = append(ds.Findings, audit.Finding{
				Severity: audit.SeverityLow,
				Message:  fmt.Sprintf("failed to read script: %v", err),
				File:     script.Path,
			})
			continue
		}
		content := string(data)

		if len(strings.TrimSpace(content)) == 0 {
			ds.Score -= 1
			ds.Findings = append(ds.Findings, audit.Finding{
				Severity: audit.SeverityLow,
				Message:  "script is empty",
				File:     script.Path,
			})
			continue
		}

		if script.Language == "bash" && !strings.HasPrefix(content, "#!") {
			ds.Score -= 1
			ds.Findings = append(ds.Findings, audit.Finding{
				Severity: audit.SeverityLow,
				Message:  "shell script has no shebang line",
				File:     script.Path,
				Line:     1,
			})
		}

		if lines := strings.Count(content, "\n") + 1; lines > maxScriptLines {
			ds.Score -= 1
			ds.Findings = append(ds.Findings, audit.Finding{
				Severity: audit.SeverityLow,
				Message:  fmt.Sprintf("script is %d lines; split files over %d lines", lines, maxScriptLines),
				File:     script.Path,
			})
		}

		if script.Language == skill.LangUnknown {
			ds.Notes = append(ds.Notes, fmt.Sprintf("%s: unrecognized file type", script.RelPath))
		}
	}

	return ds, nil
}
