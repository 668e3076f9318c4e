// Package evaluator scores skill packages across pluggable quality
// dimensions. Evaluators are registered explicitly at startup (no
// reflection or directory scanning), validated once, then run per skill
// with failure isolation: a broken evaluator zeroes its own dimension and
// never aborts the rest of the run.
package evaluator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/skillaudit/pkg/config"
	"github.com/jingkaihe/skillaudit/pkg/logger"
	"github.com/jingkaihe/skillaudit/pkg/skill"
	"github.com/jingkaihe/skillaudit/pkg/telemetry"
	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// weightTolerance mirrors the config package's weight-sum tolerance
const weightTolerance = 1e-6

// Evaluator scores one quality dimension of a skill
type Evaluator interface {
	Name() string
	Weight() float64
	Evaluate(ctx context.Context, sk *skill.Skill) (*audit.DimensionScore, error)
}

// Registry holds the ordered set of registered evaluators and turns their
// per-dimension scores into a graded EvaluationResult.
type Registry struct {
	evaluators []Evaluator
	grades     config.GradeBreakpoints
}

// NewRegistry creates an empty registry using the given grade table
func NewRegistry(grades config.GradeBreakpoints) *Registry {
	return &Registry{grades: grades}
}

// Register appends an evaluator. Registration order is evaluation order.
func (r *Registry) Register(e Evaluator) {
	r.evaluators = append(r.evaluators, e)
}

// Evaluators returns the registered evaluators in order
func (r *Registry) Evaluators() []Evaluator {
	return r.evaluators
}

// Validate checks that the registered evaluators form a coherent scoring
// configuration: unique names and weights summing to 1.0. A mismatch is an
// engine misconfiguration and must surface before any skill is scanned;
// weights are never silently normalized.
func (r *Registry) Validate() error {
	if len(r.evaluators) == 0 {
		return errors.New("no evaluators registered")
	}
	seen := make(map[string]bool, len(r.evaluators))
	sum := 0.0
	for _, e := range r.evaluators {
		if e.Name() == "" {
			return errors.New("evaluator with empty name registered")
		}
		if seen[e.Name()] {
			return errors.Errorf("duplicate evaluator name %q", e.Name())
		}
		seen[e.Name()] = true
		sum += e.Weight()
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return errors.Errorf("evaluator weights sum to %.4f, want 1.0", sum)
	}
	return nil
}

// Evaluate runs every registered evaluator against the skill and aggregates
// the weighted total and grade. Individual evaluator errors and panics are
// converted into a zero score with one critical finding; the remaining
// dimensions still run.
func (r *Registry) Evaluate(ctx context.Context, sk *skill.Skill) *audit.EvaluationResult {
	result := &audit.EvaluationResult{
		RunID:      uuid.NewString(),
		SkillPath:  sk.Directory,
		SkillName:  sk.Name,
		Dimensions: make(map[string]*audit.DimensionScore, len(r.evaluators)),
		Timestamp:  time.Now().UTC(),
	}

	total := 0.0
	for _, e := range r.evaluators {
		ds := r.runOne(ctx, e, sk)
		result.Dimensions[e.Name()] = ds
		total += ds.Score * ds.Weight
	}

	result.TotalScore = total
	result.Grade = r.grades.GradeFor(total)
	return result
}

// runOne executes a single evaluator with panic and error isolation
func (r *Registry) runOne(ctx context.Context, e Evaluator, sk *skill.Skill) (ds *audit.DimensionScore) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.G(ctx).WithField("dimension", e.Name()).Errorf("evaluator panicked: %v", rec)
			ds = failedDimension(e, fmt.Sprintf("evaluator panicked: %v", rec), sk)
		}
	}()

	var evalErr error
	_ = telemetry.WithSpan(ctx, "evaluator."+e.Name(), func(ctx context.Context) error {
		ds, evalErr = e.Evaluate(ctx, sk)
		return evalErr
	}, attribute.String("skill.path", sk.Directory))

	if evalErr != nil {
		logger.G(ctx).WithField("dimension", e.Name()).WithError(evalErr).Error("evaluator failed")
		return failedDimension(e, fmt.Sprintf("evaluator failed: %v", evalErr), sk)
	}
	if ds == nil {
		return failedDimension(e, "evaluator returned no score", sk)
	}

	// Normalize: clamp the score, pin the weight, stamp the dimension
	ds.Name = e.Name()
	ds.Weight = e.Weight()
	ds.Score = clampScore(ds.Score)
	for i := range ds.Findings {
		ds.Findings[i].Dimension = e.Name()
	}
	return ds
}

// failedDimension builds the zero score recorded for a broken evaluator
func failedDimension(e Evaluator, msg string, sk *skill.Skill) *audit.DimensionScore {
	return &audit.DimensionScore{
		Name:   e.Name(),
		Score:  0,
		Weight: e.Weight(),
		Findings: []audit.Finding{{
			Dimension: e.Name(),
			Severity:  audit.SeverityCritical,
			Message:   msg,
			File:      sk.Directory,
		}},
	}
}

// clampScore bounds a score to the 0-10 scale
func clampScore(s float64) float64 {
	return math.Max(0, math.Min(10, s))
}
