// Package patch implements the patch validator (C6): a uniqueness check for
// a literal or regex pattern against a buffer, with context, warnings, and
// a replacement preview — used to decide whether a textual patch is safe to
// apply before the caller actually applies it.
package patch

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/wellofspirit/bundlescope/errs"
	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/scanner/search"
	"github.com/wellofspirit/bundlescope/scanner/state"
)

const (
	contextRadius   = 200
	previewRadius   = 60
	nonCodeLookback = 50000
)

var reservedWords = map[string]bool{
	"var": true, "let": true, "for": true, "if": true,
	"of": true, "in": true, "do": true, "new": true,
}

// Options configures a Check call.
type Options struct {
	Regex          bool
	Replacement    string
	HasReplacement bool
}

// Check runs the uniqueness check described in §4.6 and returns a
// model.PatchResult. It never applies the replacement — that is always the
// caller's job.
func Check(buf []byte, pattern string, opts Options) (model.PatchResult, error) {
	matches, err := findMatches(buf, pattern, opts.Regex)
	if err != nil {
		return model.PatchResult{}, err
	}

	var status model.PatchStatus
	switch len(matches) {
	case 0:
		status = model.StatusNotFound
	case 1:
		status = model.StatusUnique
	default:
		status = model.StatusAmbiguous
	}

	var warnings []model.Warning
	if msg := shortIdentifierWarning(pattern); msg != "" {
		warnings = append(warnings, model.Warning{Kind: "short-identifier", Message: msg})
	}

	var preview *model.Preview
	if status == model.StatusUnique {
		m := matches[0]
		if !isInCodeContext(buf, m.Offset) {
			warnings = append(warnings, model.Warning{
				Kind:    "non-code-context",
				Message: fmt.Sprintf("match at offset %d lies outside normal code context", m.Offset),
			})
		}
		if opts.HasReplacement {
			preview = buildPreview(buf, m, opts.Replacement, opts.Regex)
		}
	}

	return model.PatchResult{Status: status, Matches: matches, Warnings: warnings, Preview: preview}, nil
}

func findMatches(buf []byte, pattern string, isRegex bool) ([]model.PatchMatch, error) {
	if isRegex {
		expanded := search.ExpandShorthand(pattern)
		re, err := regexp2.Compile(expanded, regexp2.None)
		if err != nil {
			return nil, errs.Wrap(errs.PatternInvalid, "regex compilation failed", err)
		}
		s := string(buf)
		var matches []model.PatchMatch
		m, err := re.FindStringMatch(s)
		if err != nil {
			return nil, errs.Wrap(errs.PatternInvalid, "regex match failed", err)
		}
		for m != nil {
			var captures []string
			named := map[string]string{}
			for i, g := range m.Groups() {
				if i == 0 {
					continue
				}
				if g.Name != "" && g.Name != fmt.Sprintf("%d", i) {
					named[g.Name] = g.String()
				} else {
					captures = append(captures, g.String())
				}
			}
			matches = append(matches, buildMatch(buf, m.Index, m.String(), captures, named))
			m, err = re.FindNextMatch(m)
			if err != nil {
				return nil, errs.Wrap(errs.PatternInvalid, "regex match failed", err)
			}
		}
		return matches, nil
	}

	if pattern == "" {
		return nil, nil
	}
	var matches []model.PatchMatch
	s := string(buf)
	idx := 0
	for {
		found := strings.Index(s[idx:], pattern)
		if found < 0 {
			break
		}
		offset := idx + found
		matches = append(matches, buildMatch(buf, offset, pattern, nil, nil))
		idx = offset + len(pattern)
	}
	return matches, nil
}

func buildMatch(buf []byte, offset int, text string, captures []string, named map[string]string) model.PatchMatch {
	start := offset - contextRadius
	if start < 0 {
		start = 0
	}
	end := offset + len(text) + contextRadius
	if end > len(buf) {
		end = len(buf)
	}
	return model.PatchMatch{
		Offset:        offset,
		MatchText:     text,
		Context:       string(buf[start:end]),
		ContextOffset: start,
		Captures:      captures,
		NamedCaptures: named,
	}
}

// shortIdentifierWarning scans pattern's literal text for a word-boundary
// identifier of length <= 3 not in the reserved-word set.
func shortIdentifierWarning(pattern string) string {
	isIdentChar := func(c byte) bool {
		return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
	}
	i := 0
	for i < len(pattern) {
		if !isIdentChar(pattern[i]) {
			i++
			continue
		}
		start := i
		for i < len(pattern) && isIdentChar(pattern[i]) {
			i++
		}
		word := pattern[start:i]
		if len(word) <= 3 && !reservedWords[word] {
			return fmt.Sprintf("pattern contains short identifier %q", word)
		}
	}
	return ""
}

// isInCodeContext re-derives context by driving C1 from max(0, offset -
// 50000) up to offset, per §4.6, rather than trusting global state (which
// would require redoing the whole buffer for every patch check).
func isInCodeContext(buf []byte, offset int) bool {
	start := offset - nonCodeLookback
	if start < 0 {
		start = 0
	}
	s := state.New()
	s = state.FinalFrom(s, buf[start:offset])
	return state.IsInCode(s)
}

func buildPreview(buf []byte, m model.PatchMatch, replacement string, isRegex bool) *model.Preview {
	start := m.Offset - previewRadius
	if start < 0 {
		start = 0
	}
	before := string(buf[start:m.Offset])

	afterStart := m.Offset + len(m.MatchText)
	afterEnd := afterStart + previewRadius
	if afterEnd > len(buf) {
		afterEnd = len(buf)
	}
	after := string(buf[afterStart:afterEnd])

	expanded := replacement
	if isRegex {
		expanded = expandCaptures(replacement, m.Captures, m.NamedCaptures)
	}

	return &model.Preview{
		BeforeWindow: before + expanded,
		AfterWindow:  after,
	}
}

func expandCaptures(repl string, captures []string, named map[string]string) string {
	for name, val := range named {
		repl = strings.ReplaceAll(repl, "${"+name+"}", val)
	}
	for i := len(captures); i >= 1; i-- {
		repl = strings.ReplaceAll(repl, fmt.Sprintf("$%d", i), captures[i-1])
	}
	return repl
}
