// Package extract pulls fenced code blocks out of prose documents so the
// security scanner only ever sees real code. Prose outside fences is never
// inspected, which is what keeps documentation that merely *mentions* a
// dangerous call from producing findings.
package extract

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// LangUnknown marks fragments whose fence carried no tag or a tag the
// engine has no scanner for. Callers decide whether to skip them.
const LangUnknown = "unknown"

// Fragment is one fenced code block lifted out of a host document.
// StartLine is the 1-based line of the first content line inside the fence
// (not the fence line itself), so findings inside the fragment can be
// remapped to the original document.
type Fragment struct {
	Language  string
	Source    string
	StartLine int
}

// Diagnostic is a non-fatal extraction problem, e.g. an unterminated fence
type Diagnostic struct {
	Message string
	Line    int
}

// languageAliases normalizes fence tags to canonical language names
var languageAliases = map[string]string{
	"py":      "python",
	"python":  "python",
	"python3": "python",
	"js":      "javascript",
	"node":    "javascript",
	"jsx":     "javascript",
	"sh":      "bash",
	"shell":   "bash",
	"bash":    "bash",
	"zsh":     "bash",
}

// NormalizeLanguage maps a fence tag to its canonical language name,
// case-insensitively. Unrecognized tags map to LangUnknown.
func NormalizeLanguage(tag string) string {
	if lang, ok := languageAliases[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return lang
	}
	return LangUnknown
}

// Extract parses the document and returns its fenced code blocks in source
// order, plus diagnostics for malformed fences. Both backtick and tilde
// fences are recognized. An unterminated fence yields a fragment running to
// end-of-document and one diagnostic; it never fails the extraction.
func Extract(source []byte) ([]Fragment, []Diagnostic) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var fragments []Fragment
	var diags []Diagnostic

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		lang := LangUnknown
		if fcb.Info != nil {
			tag := string(fcb.Info.Segment.Value(source))
			// The info string may carry attributes after the tag
			if fields := strings.Fields(tag); len(fields) > 0 {
				lang = NormalizeLanguage(fields[0])
			}
		}

		frag := Fragment{Language: lang}
		lines := fcb.Lines()
		if lines.Len() > 0 {
			first := lines.At(0)
			frag.StartLine = lineAt(source, first.Start)

			var buf bytes.Buffer
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(source))
			}
			frag.Source = buf.String()

			last := lines.At(lines.Len() - 1)
			if !hasClosingFence(source, last.Stop) {
				diags = append(diags, Diagnostic{
					Message: "unterminated code fence; block runs to end of document",
					Line:    frag.StartLine - 1,
				})
			}
		} else {
			// Empty block: content would have started right after the fence
			// line; still useful for diagnostics.
			frag.StartLine = lineAt(source, fenceOffset(fcb, source)) + 1
		}

		fragments = append(fragments, frag)
		return ast.WalkSkipChildren, nil
	})

	return fragments, diags
}

// lineAt returns the 1-based line number of the byte offset
func lineAt(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}

// fenceOffset finds a byte offset on the opening fence line of an empty
// block by searching backwards from the block's position in the document.
func fenceOffset(fcb *ast.FencedCodeBlock, source []byte) int {
	if fcb.Info != nil {
		return fcb.Info.Segment.Start
	}
	// No info string: fall back to the block's own segment if present
	if fcb.Lines().Len() > 0 {
		return fcb.Lines().At(0).Start
	}
	return len(source)
}

// hasClosingFence reports whether the first non-blank line after the block
// content opens with a fence delimiter, i.e. the block was terminated.
func hasClosingFence(source []byte, after int) bool {
	rest := source[min(after, len(source)):]
	for _, line := range bytes.Split(rest, []byte{'\n'}) {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		return bytes.HasPrefix(trimmed, []byte("```")) || bytes.HasPrefix(trimmed, []byte("~~~"))
	}
	return false
}
