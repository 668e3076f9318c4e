package report

import (
	"fmt"
	"strings"

	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// MarkdownFormatter renders the result as a markdown document with a
// per-dimension score table and a findings list.
type MarkdownFormatter struct{}

// Format implements Formatter
func (f *MarkdownFormatter) Format(result *audit.EvaluationResult) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# Skill Evaluation: %s\n\n", result.SkillName)
	fmt.Fprintf(&b, "**Total score:** %.1f/10, **Grade %s**\n\n", result.TotalScore, result.Grade)
	fmt.Fprintf(&b, "Evaluated `%s` at %s.\n\n", result.SkillPath, result.Timestamp.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("| Dimension | Score | Weight | Findings |\n")
	b.WriteString("|-----------|-------|--------|----------|\n")
	for _, ds := range sortedDimensions(result) {
		fmt.Fprintf(&b, "| %s | %.1f | %.2f | %d |\n", ds.Name, ds.Score, ds.Weight, len(ds.Findings))
	}
	b.WriteString("\n")

	wroteHeader := false
	for _, ds := range sortedDimensions(result) {
		for _, finding := range ds.Findings {
			if !wroteHeader {
				b.WriteString("## Findings\n\n")
				wroteHeader = true
			}
			fmt.Fprintf(&b, "- **%s** `%s`", finding.Severity, finding.Location())
			if finding.RuleID != "" {
				fmt.Fprintf(&b, " _(%s)_", finding.RuleID)
			}
			fmt.Fprintf(&b, ": %s\n", finding.Message)
		}
	}

	return b.String(), nil
}
