// Package scanner performs syntax-aware security analysis of source
// fragments. Source text is parsed into a real syntax tree and call
// expressions are matched structurally against the active rule set, so a
// dangerous function name inside a string literal, a comment, or prose can
// never produce a finding: only actual call nodes are inspected.
package scanner

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/jingkaihe/skillaudit/pkg/cache"
	"github.com/jingkaihe/skillaudit/pkg/rules"
	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// DefaultMaxFileSize bounds parse time on pathological inputs
const DefaultMaxFileSize = 1 << 20 // 1 MiB

// Scanner analyzes source files and extracted fragments against a rule set.
// It is safe for concurrent use: the rule set is immutable and the cache
// manager is internally synchronized.
type Scanner struct {
	rules       *rules.Set
	cache       *cache.Manager
	maxFileSize int64
}

// ScannerOption configures a Scanner
type ScannerOption func(*Scanner)

// WithMaxFileSize overrides the size ceiling above which files are skipped
func WithMaxFileSize(n int64) ScannerOption {
	return func(s *Scanner) { s.maxFileSize = n }
}

// New creates a Scanner over the given rule set and shared cache
func New(set *rules.Set, cm *cache.Manager, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		rules:       set,
		cache:       cm,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SupportedLanguages returns the languages this scanner can parse
func SupportedLanguages() map[string]bool {
	return map[string]bool{
		"python":     true,
		"javascript": true,
		"bash":       true,
	}
}

// ScanFile reads a script through the cache manager and scans it. Findings
// for unreadable or oversized files degrade to low-severity diagnostics;
// scanning never fails the overall evaluation.
func (s *Scanner) ScanFile(ctx context.Context, path, language string) []audit.Finding {
	payload, err := s.cache.GetOrLoad(path, cache.KindTree, func() (any, error) {
		src, err := s.readFile(path)
		if err != nil {
			return nil, err
		}
		if int64(len(src)) > s.maxFileSize {
			return []audit.Finding{{
				Severity: audit.SeverityLow,
				Message:  fmt.Sprintf("skipped: file exceeds size ceiling (%d bytes)", s.maxFileSize),
				File:     path,
			}}, nil
		}
		return s.ScanSource(ctx, src, language, path, 1), nil
	})
	if err != nil {
		return []audit.Finding{{
			Severity: audit.SeverityLow,
			Message:  fmt.Sprintf("failed to read file: %v", err),
			File:     path,
		}}
	}
	findings, _ := payload.([]audit.Finding)
	return findings
}

// readFile loads raw file text through the cache manager
func (s *Scanner) readFile(path string) ([]byte, error) {
	payload, err := s.cache.GetOrLoad(path, cache.KindFileText, func() (any, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return payload.([]byte), nil
}

// ScanSource parses src as the given language and returns one finding per
// dangerous call-site. lineOffset is the 1-based line in the host document
// where src begins; findings are emitted with lines remapped into the host
// document (offset 1 means src is the whole file). A parse failure yields
// exactly one low-severity "unparseable" finding; an unsupported language
// yields one low-severity diagnostic.
func (s *Scanner) ScanSource(ctx context.Context, src []byte, language, file string, lineOffset int) []audit.Finding {
	if lineOffset < 1 {
		lineOffset = 1
	}
	switch language {
	case "python", "javascript":
		return s.scanTreeSitter(ctx, src, language, file, lineOffset)
	case "bash":
		return s.scanShell(src, file, lineOffset)
	default:
		return []audit.Finding{{
			Severity: audit.SeverityLow,
			Message:  fmt.Sprintf("no scanner for language %q", language),
			File:     file,
		}}
	}
}

// unparseable builds the single diagnostic finding for a parse failure
func unparseable(file string, lineOffset int) []audit.Finding {
	return []audit.Finding{{
		Severity: audit.SeverityLow,
		Message:  "unparseable: source could not be parsed, analysis skipped",
		File:     file,
		Line:     lineOffset,
	}}
}

// finding constructs a rule-matched finding with the remapped line number
func (s *Scanner) finding(r *rules.Rule, callee, file string, localLine, lineOffset int) audit.Finding {
	return audit.Finding{
		Severity: r.Severity,
		Message:  fmt.Sprintf("%s (call to %s)", r.Message, callee),
		File:     file,
		Line:     lineOffset + localLine - 1,
		RuleID:   r.ID,
	}
}
