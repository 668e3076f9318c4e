package rules

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ruleFile is the YAML shape of an external rule file
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Load reads additional rules from a YAML file. The file holds a top-level
// `rules:` list; each entry uses the same fields as the builtin rules.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read rule file %s", path)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, errors.Wrapf(err, "failed to parse rule file %s", path)
	}
	if len(rf.Rules) == 0 {
		return nil, errors.Errorf("rule file %s contains no rules", path)
	}

	return rf.Rules, nil
}

// LoadSet builds a Set from the builtin defaults merged with any number of
// external rule files. Later files append after the builtins; duplicate ids
// are rejected by Validate, not silently overridden.
func LoadSet(paths ...string) (*Set, error) {
	merged := DefaultRules()
	for _, path := range paths {
		extra, err := Load(path)
		if err != nil {
			return nil, err
		}
		merged = append(merged, extra...)
	}
	return NewSet(merged), nil
}
