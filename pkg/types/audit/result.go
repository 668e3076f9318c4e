package audit

import (
	"time"
)

// Grade is the letter bucket derived from the weighted total score
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// DimensionScore holds one evaluator's verdict for a single skill evaluation.
// Score is on a 0-10 scale; Weight is the dimension's share of the total.
type DimensionScore struct {
	Name     string    `json:"name"`
	Score    float64   `json:"score"`
	Weight   float64   `json:"weight"`
	Findings []Finding `json:"findings,omitempty"`
	Notes    []string  `json:"notes,omitempty"`
}

// EvaluationResult is the complete outcome of evaluating one skill directory.
// It is built once per run and read-only afterwards; formatters only present
// what is already computed here.
type EvaluationResult struct {
	RunID      string                     `json:"run_id"`
	SkillPath  string                     `json:"skill_path"`
	SkillName  string                     `json:"skill_name,omitempty"`
	Dimensions map[string]*DimensionScore `json:"dimensions"`
	TotalScore float64                    `json:"total_score"`
	Grade      Grade                      `json:"grade"`
	Timestamp  time.Time                  `json:"timestamp"`
}

// FindingCount returns the total number of findings across all dimensions
func (r *EvaluationResult) FindingCount() int {
	n := 0
	for _, d := range r.Dimensions {
		n += len(d.Findings)
	}
	return n
}

// FindingsAtLeast returns all findings with severity at or above the threshold
func (r *EvaluationResult) FindingsAtLeast(min Severity) []Finding {
	var out []Finding
	for _, d := range r.Dimensions {
		for _, f := range d.Findings {
			if f.Severity.AtLeast(min) {
				out = append(out, f)
			}
		}
	}
	return out
}
