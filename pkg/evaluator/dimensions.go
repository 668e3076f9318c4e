package evaluator

import (
	"github.com/jingkaihe/skillaudit/pkg/cache"
	"github.com/jingkaihe/skillaudit/pkg/config"
	"github.com/jingkaihe/skillaudit/pkg/scanner"
)

// Dimension names of the seven builtin evaluators
const (
	DimFrontmatter = "frontmatter"
	DimContent     = "content"
	DimSecurity    = "security"
	DimStructure   = "structure"
	DimTokens      = "tokens"
	DimPractices   = "practices"
	DimCodeQuality = "codequality"
)

// base carries the name and weight shared by all builtin evaluators
type base struct {
	name   string
	weight float64
}

func (b base) Name() string    { return b.name }
func (b base) Weight() float64 { return b.weight }

// Builtin constructs the seven builtin evaluators with weights taken from
// the configuration, in their canonical order.
func Builtin(cfg config.Config, sc *scanner.Scanner, cm *cache.Manager) []Evaluator {
	w := func(name string) float64 { return cfg.Weights[name] }
	return []Evaluator{
		&frontmatterEvaluator{base: base{DimFrontmatter, w(DimFrontmatter)}},
		&contentEvaluator{base: base{DimContent, w(DimContent)}},
		&securityEvaluator{
			base:      base{DimSecurity, w(DimSecurity)},
			scanner:   sc,
			cache:     cm,
			penalties: cfg,
		},
		&structureEvaluator{base: base{DimStructure, w(DimStructure)}},
		&tokensEvaluator{base: base{DimTokens, w(DimTokens)}, budget: cfg.TokenBudget},
		&practicesEvaluator{base: base{DimPractices, w(DimPractices)}},
		&codeQualityEvaluator{base: base{DimCodeQuality, w(DimCodeQuality)}},
	}
}

// NewRegistryWithBuiltins wires a registry with the builtin evaluators and
// validates it, the standard startup path for the CLI.
func NewRegistryWithBuiltins(cfg config.Config, sc *scanner.Scanner, cm *cache.Manager) (*Registry, error) {
	registry := NewRegistry(cfg.Grades)
	for _, e := range Builtin(cfg, sc, cm) {
		registry.Register(e)
	}
	if err := registry.Validate(); err != nil {
		return nil, err
	}
	return registry, nil
}
