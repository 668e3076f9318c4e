package report

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// JSONFormatter renders the result as machine-readable JSON. The shape is
// the EvaluationResult's own serialization: dimensions.<name>.score,
// dimensions.<name>.findings[], total_score, grade.
type JSONFormatter struct {
	Indent bool
}

// Format implements Formatter
func (f *JSONFormatter) Format(result *audit.EvaluationResult) (string, error) {
	var (
		data []byte
		err  error
	)
	if f.Indent {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to encode result")
	}
	return string(data) + "\n", nil
}

// Schema returns the JSON schema of the machine-readable output, for
// consumers that validate reports before ingesting them.
func Schema() (string, error) {
	reflector := &jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&audit.EvaluationResult{})
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode schema")
	}
	return string(data) + "\n", nil
}
