package evaluator

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/jingkaihe/skillaudit/pkg/cache"
	"github.com/jingkaihe/skillaudit/pkg/config"
	"github.com/jingkaihe/skillaudit/pkg/extract"
	"github.com/jingkaihe/skillaudit/pkg/scanner"
	"github.com/jingkaihe/skillaudit/pkg/skill"
	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// securityEvaluator scans the skill's scripts and the code fragments
// embedded in its prose documents. Prose itself is never scanned, so a
// manifest that merely *talks about* a dangerous call contributes nothing;
// only syntax-tree call-sites do.
type securityEvaluator struct {
	base
	scanner   *scanner.Scanner
	cache     *cache.Manager
	penalties config.Config
}

func (e *securityEvaluator) Evaluate(ctx context.Context, sk *skill.Skill) (*audit.DimensionScore, error) {
	ds := &audit.DimensionScore{Score: 10}

	for _, prosePath := range sk.ProseFiles {
		source, err := e.readFile(prosePath)
		if err != nil {
			ds.Findings = append(ds.Findings, audit.Finding{
				Severity: audit.SeverityLow,
				Message:  fmt.Sprintf("failed to read document: %v", err),
				File:     prosePath,
			})
			continue
		}

		fragments, diags := extract.Extract(source)
		for _, diag := range diags {
			ds.Notes = append(ds.Notes, fmt.Sprintf("%s:%d: %s", prosePath, diag.Line, diag.Message))
		}
		for _, frag := range fragments {
			if frag.Language == extract.LangUnknown {
				continue
			}
			findings := e.scanner.ScanSource(ctx, []byte(frag.Source), frag.Language, prosePath, frag.StartLine)
			ds.Findings = append(ds.Findings, findings...)
		}
	}

	scanned := 0
	for _, script := range sk.Scripts {
		if script.Language == skill.LangUnknown {
			ds.Notes = append(ds.Notes, fmt.Sprintf("%s: no scanner for this file type, skipped", script.RelPath))
			continue
		}
		findings := e.scanner.ScanFile(ctx, script.Path, script.Language)
		ds.Findings = append(ds.Findings, findings...)
		scanned++
	}
	ds.Notes = append(ds.Notes, fmt.Sprintf("scanned %d script(s) and %d prose document(s)", scanned, len(sk.ProseFiles)))

	for _, f := range ds.Findings {
		ds.Score -= e.penalties.PenaltyFor(f.Severity)
	}
	if ds.Score < 0 {
		ds.Score = 0
	}
	return ds, nil
}

// readFile loads prose text through the shared cache manager
func (e *securityEvaluator) readFile(path string) ([]byte, error) {
	payload, err := e.cache.GetOrLoad(path, cache.KindFileText, func() (any, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return payload.([]byte), nil
}
