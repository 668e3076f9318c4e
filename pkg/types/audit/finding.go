// Package audit defines the shared value types produced by skill evaluation:
// findings, per-dimension scores, and the final evaluation result. These are
// pure data types with no behavior beyond construction and presentation
// helpers, so scanners, evaluators, and formatters can share them without
// depending on each other.
package audit

import "fmt"

// Finding is one reported issue, attributable to a file and, when known, a
// line in that file. Line numbers are 1-based and always refer to the
// original document the user can open, never to an extracted fragment's
// local offset. A Finding is never mutated after creation.
type Finding struct {
	Dimension string   `json:"dimension"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	File      string   `json:"file"`
	Line      int      `json:"line,omitempty"`
	RuleID    string   `json:"rule_id,omitempty"`
}

// Location renders the file:line position of the finding
func (f Finding) Location() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return f.File
}
