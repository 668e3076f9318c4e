// Package rules defines the security rule model used by the syntax-tree
// scanner. Rules are data, not code: they are loaded at construction time
// from the builtin defaults and optional YAML files, validated against the
// set of languages the scanner actually supports, and immutable during a
// scan.
package rules

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// KwargMatch narrows a rule to calls carrying a specific keyword argument
// binding, e.g. shell=True on a subprocess call. Value is matched against
// the literal text of the argument's value node.
type KwargMatch struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Rule is one named call-site pattern. Calls holds fully-qualified callee
// names (`os.system`, `eval`); a trailing `.*` matches any attribute of the
// prefix (`subprocess.*`). Languages limits which scanners apply the rule.
type Rule struct {
	ID           string         `yaml:"id"`
	Message      string         `yaml:"message"`
	Severity     audit.Severity `yaml:"severity"`
	Languages    []string       `yaml:"languages"`
	Calls        []string       `yaml:"calls"`
	RequireKwarg *KwargMatch    `yaml:"require_kwarg,omitempty"`
}

// AppliesTo reports whether the rule is active for the given language
func (r *Rule) AppliesTo(language string) bool {
	for _, l := range r.Languages {
		if l == language {
			return true
		}
	}
	return false
}

// MatchesCall reports whether the resolved callee name matches one of the
// rule's call patterns. Matching is exact except for trailing `.*` patterns,
// which match any single-step attribute of the prefix.
func (r *Rule) MatchesCall(callee string) bool {
	for _, pattern := range r.Calls {
		if prefix, ok := strings.CutSuffix(pattern, ".*"); ok {
			rest, found := strings.CutPrefix(callee, prefix+".")
			if found && rest != "" && !strings.Contains(rest, ".") {
				return true
			}
			continue
		}
		if callee == pattern {
			return true
		}
	}
	return false
}

// Set is an immutable collection of rules plus a by-language index
type Set struct {
	rules      []Rule
	byLanguage map[string][]*Rule
}

// NewSet builds a rule set and its language index. Rules are kept in the
// order given, which is also the order matches are attempted in.
func NewSet(rules []Rule) *Set {
	s := &Set{
		rules:      rules,
		byLanguage: make(map[string][]*Rule),
	}
	for i := range s.rules {
		r := &s.rules[i]
		for _, lang := range r.Languages {
			s.byLanguage[lang] = append(s.byLanguage[lang], r)
		}
	}
	return s
}

// Rules returns all rules in load order
func (s *Set) Rules() []Rule {
	return s.rules
}

// ForLanguage returns the rules applicable to one language
func (s *Set) ForLanguage(language string) []*Rule {
	return s.byLanguage[language]
}

// Validate checks the whole set against the languages the engine actually
// has a scanner for. A rule naming an unsupported language, an empty call
// pattern, or an invalid severity is a configuration error and must fail
// before any skill is scanned.
func (s *Set) Validate(supported map[string]bool) error {
	seen := make(map[string]bool, len(s.rules))
	for i := range s.rules {
		r := &s.rules[i]
		if r.ID == "" {
			return errors.Errorf("rule at index %d has no id", i)
		}
		if seen[r.ID] {
			return errors.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
		if !r.Severity.Valid() {
			return errors.Errorf("rule %q: unknown severity %q", r.ID, r.Severity)
		}
		if len(r.Calls) == 0 {
			return errors.Errorf("rule %q has no call patterns", r.ID)
		}
		for _, c := range r.Calls {
			if strings.TrimSpace(c) == "" {
				return errors.Errorf("rule %q has an empty call pattern", r.ID)
			}
		}
		if len(r.Languages) == 0 {
			return errors.Errorf("rule %q applies to no languages", r.ID)
		}
		for _, lang := range r.Languages {
			if !supported[lang] {
				return errors.Errorf("rule %q targets language %q which has no registered scanner", r.ID, lang)
			}
		}
		if r.RequireKwarg != nil && r.RequireKwarg.Name == "" {
			return errors.Errorf("rule %q: require_kwarg needs a name", r.ID)
		}
	}
	return nil
}
