package scanner

import (
	"bytes"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// scanShell parses src as a bash script and walks its call expressions.
// Shell rules match on the command name; rules carrying a `pipe_to` kwarg
// requirement only match when the command's output is piped into one of the
// named interpreters (e.g. curl ... | sh).
func (s *Scanner) scanShell(src []byte, file string, lineOffset int) []audit.Finding {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	f, err := parser.Parse(bytes.NewReader(src), file)
	if err != nil {
		return unparseable(file, lineOffset)
	}

	active := s.rules.ForLanguage("bash")
	if len(active) == 0 {
		return nil
	}

	// Commands that feed a pipeline, keyed by their CallExpr node, mapped
	// to the name of the command consuming their output.
	pipeTargets := make(map[*syntax.CallExpr]string)
	syntax.Walk(f, func(node syntax.Node) bool {
		if bin, ok := node.(*syntax.BinaryCmd); ok && (bin.Op == syntax.Pipe || bin.Op == syntax.PipeAll) {
			if call := stmtCall(bin.X); call != nil {
				pipeTargets[call] = commandName(bin.Y)
			}
		}
		return true
	})

	var findings []audit.Finding
	syntax.Walk(f, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		name := call.Args[0].Lit()
		if name == "" {
			return true
		}
		for _, r := range active {
			if !r.MatchesCall(name) {
				continue
			}
			if r.RequireKwarg != nil && r.RequireKwarg.Name == "pipe_to" {
				target := pipeTargets[call]
				if target == "" || !pipeTargetAllowed(r.RequireKwarg.Value, target) {
					continue
				}
			}
			line := int(call.Args[0].Pos().Line())
			findings = append(findings, s.finding(r, name, file, line, lineOffset))
			break
		}
		return true
	})

	return findings
}

// stmtCall unwraps a statement down to its call expression, if any
func stmtCall(st *syntax.Stmt) *syntax.CallExpr {
	if st == nil {
		return nil
	}
	call, _ := st.Cmd.(*syntax.CallExpr)
	return call
}

// commandName returns the literal command name a statement runs, following
// nested pipelines to their first command.
func commandName(st *syntax.Stmt) string {
	if st == nil {
		return ""
	}
	switch cmd := st.Cmd.(type) {
	case *syntax.CallExpr:
		if len(cmd.Args) > 0 {
			return cmd.Args[0].Lit()
		}
	case *syntax.BinaryCmd:
		return commandName(cmd.X)
	}
	return ""
}

// pipeTargetAllowed matches a pipeline consumer against the rule's
// pipe-separated interpreter list.
func pipeTargetAllowed(allowed, target string) bool {
	for _, candidate := range strings.Split(allowed, "|") {
		if target == candidate {
			return true
		}
	}
	return false
}
