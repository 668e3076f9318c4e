package presenter

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewWithOptions(&out, &errOut, ColorNever), &out, &errOut
}

func TestError(t *testing.T) {
	t.Run("with context", func(t *testing.T) {
		p, out, errOut := newTestPresenter()
		p.Error(errors.New("no such directory"), "loading skill")
		assert.Equal(t, "[ERROR] loading skill: no such directory\n", errOut.String())
		assert.Empty(t, out.String())
	})

	t.Run("without context", func(t *testing.T) {
		p, _, errOut := newTestPresenter()
		p.Error(errors.New("boom"), "")
		assert.Equal(t, "[ERROR] boom\n", errOut.String())
	})

	t.Run("nil error prints nothing", func(t *testing.T) {
		p, _, errOut := newTestPresenter()
		p.Error(nil, "context")
		assert.Empty(t, errOut.String())
	})

	t.Run("quiet mode never silences errors", func(t *testing.T) {
		p, _, errOut := newTestPresenter()
		p.SetQuiet(true)
		p.Error(errors.New("boom"), "")
		assert.NotEmpty(t, errOut.String())
	})
}

func TestMessages(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Success("evaluation complete")
	p.Warning("skipped one script")
	p.Info("3 skills discovered")

	output := out.String()
	assert.Contains(t, output, "✓ evaluation complete")
	assert.Contains(t, output, "⚠ skipped one script")
	assert.Contains(t, output, "3 skills discovered\n")
}

func TestSection(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.Section("Findings")
	assert.Equal(t, "Findings\n--------\n", out.String())
}

func TestGradeSummary(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.GradeSummary(&audit.EvaluationResult{
		SkillName:  "pdf-tools",
		TotalScore: 8.2,
		Grade:      audit.GradeB,
		Dimensions: map[string]*audit.DimensionScore{
			"security": {Findings: []audit.Finding{{Severity: audit.SeverityLow}}},
		},
	})
	assert.Equal(t, "pdf-tools: 8.2/10 (grade B, 1 finding(s))\n", out.String())
}

func TestQuietModeSuppressesOutput(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.SetQuiet(true)
	assert.True(t, p.IsQuiet())

	p.Success("hidden")
	p.Warning("hidden")
	p.Info("hidden")
	p.Section("hidden")
	p.GradeSummary(&audit.EvaluationResult{SkillName: "x", Grade: audit.GradeA})

	assert.Empty(t, out.String())
}
