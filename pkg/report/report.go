// Package report renders evaluation results. Formatters are stateless,
// pure functions of the EvaluationResult: they never re-derive or re-score
// anything, so the scoring pipeline and its presentation can evolve and be
// tested independently.
package report

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// Formatter renders an evaluation result into one output format
type Formatter interface {
	Format(result *audit.EvaluationResult) (string, error)
}

// New returns the formatter for a format name: text, json, or markdown
func New(format string) (Formatter, error) {
	switch format {
	case "text":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{Indent: true}, nil
	case "markdown":
		return &MarkdownFormatter{}, nil
	default:
		return nil, errors.Errorf("unknown report format %q (want text, json, or markdown)", format)
	}
}

// sortedDimensions returns the result's dimensions in stable name order
func sortedDimensions(result *audit.EvaluationResult) []*audit.DimensionScore {
	names := make([]string, 0, len(result.Dimensions))
	for name := range result.Dimensions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*audit.DimensionScore, 0, len(names))
	for _, name := range names {
		out = append(out, result.Dimensions[name])
	}
	return out
}
