package report

import (
	"fmt"
	"strings"

	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// TextFormatter renders a plain-text report for terminal consumption
type TextFormatter struct{}

// Format implements Formatter
func (f *TextFormatter) Format(result *audit.EvaluationResult) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Skill: %s\n", result.SkillName)
	fmt.Fprintf(&b, "Path:  %s\n", result.SkillPath)
	fmt.Fprintf(&b, "Total: %.1f/10 (grade %s)\n", result.TotalScore, result.Grade)
	fmt.Fprintf(&b, "Run:   %s at %s\n", result.RunID, result.Timestamp.Format("2006-01-02 15:04:05 MST"))
	b.WriteString("\n")

	for _, ds := range sortedDimensions(result) {
		fmt.Fprintf(&b, "%-12s %5.1f/10  (weight %.2f)\n", ds.Name, ds.Score, ds.Weight)
		for _, finding := range ds.Findings {
			fmt.Fprintf(&b, "  [%s] %s", finding.Severity, finding.Location())
			if finding.RuleID != "" {
				fmt.Fprintf(&b, " (%s)", finding.RuleID)
			}
			fmt.Fprintf(&b, ": %s\n", finding.Message)
		}
		for _, note := range ds.Notes {
			fmt.Fprintf(&b, "  note: %s\n", note)
		}
	}

	return b.String(), nil
}
