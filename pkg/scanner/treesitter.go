package scanner

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/jingkaihe/skillaudit/pkg/rules"
	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// grammar returns the tree-sitter grammar for a supported language
func grammar(language string) *sitter.Language {
	switch language {
	case "python":
		return python.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	default:
		return nil
	}
}

// callNodeTypes maps a language to its call-expression node type
var callNodeTypes = map[string]string{
	"python":     "call",
	"javascript": "call_expression",
}

// scanTreeSitter parses src with the language's grammar and walks every
// call node, matching resolved callee names against the rule set.
func (s *Scanner) scanTreeSitter(ctx context.Context, src []byte, language, file string, lineOffset int) []audit.Finding {
	parser := sitter.NewParser()
	parser.SetLanguage(grammar(language))

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil || tree == nil {
		return unparseable(file, lineOffset)
	}
	root := tree.RootNode()
	if root.HasError() {
		return unparseable(file, lineOffset)
	}

	active := s.rules.ForLanguage(language)
	if len(active) == 0 {
		return nil
	}

	var findings []audit.Finding
	callType := callNodeTypes[language]

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == callType || (language == "javascript" && n.Type() == "new_expression") {
			if f, ok := s.matchCall(n, src, language, active, file, lineOffset); ok {
				findings = append(findings, f)
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)

	return findings
}

// matchCall resolves the callee of one call node and tests it against the
// active rules. Only real call nodes reach this point, so names occurring
// in string literals or comments can never match.
func (s *Scanner) matchCall(n *sitter.Node, src []byte, language string, active []*rules.Rule, file string, lineOffset int) (audit.Finding, bool) {
	calleeField := "function"
	if n.Type() == "new_expression" {
		calleeField = "constructor"
	}
	calleeNode := n.ChildByFieldName(calleeField)
	if calleeNode == nil {
		return audit.Finding{}, false
	}

	callee := resolveCallee(calleeNode, src)
	if callee == "" {
		return audit.Finding{}, false
	}

	for _, r := range active {
		if !r.MatchesCall(callee) {
			continue
		}
		if r.RequireKwarg != nil && !hasKeywordArg(n, src, r.RequireKwarg) {
			continue
		}
		line := int(n.StartPoint().Row) + 1
		return s.finding(r, callee, file, line, lineOffset), true
	}
	return audit.Finding{}, false
}

// resolveCallee flattens an identifier or attribute/member chain into a
// dotted name, e.g. `os.system` or `subprocess.run`. Anything that is not a
// plain chain (a subscript, a call result) resolves to empty and is not
// matched.
func resolveCallee(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "identifier":
		return n.Content(src)
	case "import": // javascript: dynamic import(...) call
		return "import"
	case "attribute": // python: object.attribute
		obj := n.ChildByFieldName("object")
		attr := n.ChildByFieldName("attribute")
		if obj == nil || attr == nil {
			return ""
		}
		base := resolveCallee(obj, src)
		if base == "" {
			return ""
		}
		return base + "." + attr.Content(src)
	case "member_expression": // javascript: object.property
		obj := n.ChildByFieldName("object")
		prop := n.ChildByFieldName("property")
		if obj == nil || prop == nil {
			return ""
		}
		base := resolveCallee(obj, src)
		if base == "" {
			return ""
		}
		return base + "." + prop.Content(src)
	default:
		return ""
	}
}

// hasKeywordArg checks the call's argument list for an actual keyword
// binding matching the requirement. A string literal that merely contains
// the suspicious text does not count: the argument must be a
// keyword_argument node whose name and literal value both match.
func hasKeywordArg(call *sitter.Node, src []byte, want *rules.KwargMatch) bool {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return false
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() != "keyword_argument" {
			continue
		}
		name := arg.ChildByFieldName("name")
		value := arg.ChildByFieldName("value")
		if name == nil || value == nil {
			continue
		}
		if name.Content(src) != want.Name {
			continue
		}
		if want.Value == "" || value.Content(src) == want.Value {
			return true
		}
	}
	return false
}
