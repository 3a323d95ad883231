// Package funcscan implements the function-boundary scanner (C4): a
// locality-bounded forward scan, driven by the character state machine, that
// recognizes function-like forms (declarations, expressions, method
// shorthand, arrows) without a full parse and resolves the enclosing
// function and nesting stack for a query offset.
package funcscan

import (
	"sort"
	"strings"

	"github.com/wellofspirit/bundlescope/errs"
	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/scanner/state"
)

// DefaultHorizon bounds how far past the query offset the candidate scan
// runs, so it stops there instead of walking to the end of a giant buffer.
// The scan itself always starts at byte 0.
const DefaultHorizon = 500000

// Option configures a scan.
type Option func(*config)

type config struct {
	horizon int
}

// WithHorizon overrides DefaultHorizon, chiefly so tests can exercise
// BoundaryScanExceeded without constructing a 500KB fixture.
func WithHorizon(n int) Option {
	return func(c *config) { c.horizon = n }
}

type pendingBrace struct {
	hasSig    bool
	sigStart  int
	braceOpen int
}

type candidate struct {
	sigStart, braceOpen, bodyEnd int
}

// FindEnclosing scans buf for function forms and returns the nesting stack of
// spans containing offset, sorted smallest-first (index 0 = tightest
// enclosing function, matching Depth 0).
func FindEnclosing(buf []byte, offset int, opts ...Option) ([]model.FunctionSpan, error) {
	cfg := config{horizon: DefaultHorizon}
	for _, o := range opts {
		o(&cfg)
	}

	horizonEnd := offset + cfg.horizon
	if horizonEnd > len(buf) || horizonEnd < 0 {
		horizonEnd = len(buf)
	}

	candidates, openAtHorizon := scanCandidates(buf, horizonEnd)

	if horizonEnd < len(buf) {
		for _, open := range openAtHorizon {
			if open.hasSig && open.sigStart <= offset {
				return nil, errs.New(errs.BoundaryScanExceeded,
					"function containing the offset extends past the scan horizon; retry with the tree-based fallback")
			}
		}
	}

	var containing []candidate
	for _, c := range candidates {
		if c.sigStart <= offset && offset <= c.bodyEnd {
			containing = append(containing, c)
		}
	}
	sort.SliceStable(containing, func(i, j int) bool {
		return (containing[i].bodyEnd - containing[i].sigStart) < (containing[j].bodyEnd - containing[j].sigStart)
	})

	modes := state.AdvanceBuffer(buf)
	spans := make([]model.FunctionSpan, 0, len(containing))
	for depth, c := range containing {
		span, err := deriveSpan(buf, modes, c.sigStart, depth)
		if err != nil {
			continue
		}
		spans = append(spans, span)
	}
	return spans, nil
}

// scanCandidates performs the single forward pass from §4.4: it maintains a
// stack of pending function openings and a brace-depth counter, recording a
// candidate every time a pending signature's brace pair closes.
func scanCandidates(buf []byte, horizonEnd int) (candidates []candidate, openStack []pendingBrace) {
	modes := state.AdvanceBuffer(buf[:horizonEnd])
	var stack []pendingBrace
	hasPending := false
	pendingSigStart := -1
	// pendingParens counts '(' left open since the pending signature began,
	// so a '{' of a destructured parameter is not taken as the body brace.
	pendingParens := 0

	i := 0
	for i < horizonEnd {
		if modes[i] != state.Normal {
			i++
			continue
		}
		ch := buf[i]
		switch {
		case matchWord(buf, i, "function"):
			start := i
			if j, ok := precedingAsyncKeyword(buf, i); ok {
				start = j
			}
			hasPending, pendingSigStart, pendingParens = true, start, 0
			i += len("function")

		case matchWord(buf, i, "async") && asyncMethodShorthand(buf, i):
			hasPending, pendingSigStart, pendingParens = true, i, 0
			i += len("async")

		case ch == '=' && i+1 < horizonEnd && buf[i+1] == '>':
			if !hasPending {
				if start, ok := scanBackForArrowSignature(buf, i); ok {
					hasPending, pendingSigStart, pendingParens = true, start, 0
				}
			}
			i += 2

		case ch == '(' || ch == ')':
			if hasPending && ch == '(' {
				pendingParens++
			} else if hasPending && pendingParens > 0 {
				pendingParens--
			}
			i++

		case ch == '{' && hasPending && pendingParens > 0:
			stack = append(stack, pendingBrace{braceOpen: i})
			i++

		case ch == '{':
			if hasPending {
				stack = append(stack, pendingBrace{hasSig: true, sigStart: pendingSigStart, braceOpen: i})
			} else {
				stack = append(stack, pendingBrace{braceOpen: i})
			}
			hasPending, pendingSigStart = false, -1
			i++

		case ch == '}':
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.hasSig {
					candidates = append(candidates, candidate{sigStart: top.sigStart, braceOpen: top.braceOpen, bodyEnd: i})
				}
			}
			i++

		default:
			i++
		}
	}
	return candidates, stack
}

// deriveSpan re-derives the authoritative span for sigStart, per §4.4:
// skipping the parameter list (balanced parens, which may contain a
// destructured object or array pattern) before tracking body-brace depth to
// zero. It never trusts the coarse brace pairing scanCandidates used for
// containment, since a destructured parameter's '{' would otherwise be
// mistaken for the body's opening brace.
func deriveSpan(buf []byte, modes []state.Mode, sigStart, depth int) (model.FunctionSpan, error) {
	i := sigStart
	for i < len(buf) && buf[i] != '(' {
		i++
	}
	if i >= len(buf) {
		return model.FunctionSpan{}, errs.New(errs.ParseFailed, "no parameter list found for function signature")
	}
	openParen := i
	parenDepth := 0
	for ; i < len(buf); i++ {
		if modes[i] != state.Normal {
			continue
		}
		switch buf[i] {
		case '(':
			parenDepth++
		case ')':
			parenDepth--
			if parenDepth == 0 {
				goto paramsClosed
			}
		}
	}
	return model.FunctionSpan{}, errs.New(errs.ParseFailed, "unbalanced parameter list")

paramsClosed:
	closeParen := i
	params := splitParams(string(buf[openParen+1 : closeParen]))

	j := closeParen + 1
	for j < len(buf) && isSpace(buf[j]) {
		j++
	}
	if j+1 < len(buf) && buf[j] == '=' && buf[j+1] == '>' {
		j += 2
		for j < len(buf) && isSpace(buf[j]) {
			j++
		}
	}

	sigText := strings.TrimSpace(string(buf[sigStart:openParen]))

	if j >= len(buf) || buf[j] != '{' {
		end := j
		for end < len(buf) && buf[end] != ';' && buf[end] != '\n' {
			end++
		}
		return model.FunctionSpan{
			SigStart:      sigStart,
			BodyOpenBrace: j,
			BodyEnd:       end,
			SignatureText: sigText,
			ParameterList: params,
			ParamCount:    len(params),
			Depth:         depth,
		}, nil
	}

	bodyOpen := j
	braceDepth := 0
	k := bodyOpen
	for ; k < len(buf); k++ {
		if modes[k] != state.Normal {
			continue
		}
		switch buf[k] {
		case '{':
			braceDepth++
		case '}':
			braceDepth--
			if braceDepth == 0 {
				goto bodyClosed
			}
		}
	}
	return model.FunctionSpan{}, errs.New(errs.ParseFailed, "unbalanced function body")

bodyClosed:
	return model.FunctionSpan{
		SigStart:      sigStart,
		BodyOpenBrace: bodyOpen,
		BodyEnd:       k,
		SignatureText: sigText,
		ParameterList: params,
		ParamCount:    len(params),
		Depth:         depth,
	}, nil
}

func splitParams(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var params []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		case ',':
			if depth == 0 {
				params = append(params, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	params = append(params, strings.TrimSpace(s[start:]))
	return params
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func matchWord(buf []byte, i int, word string) bool {
	if i+len(word) > len(buf) || string(buf[i:i+len(word)]) != word {
		return false
	}
	if i > 0 && isIdentChar(buf[i-1]) {
		return false
	}
	end := i + len(word)
	return end >= len(buf) || !isIdentChar(buf[end])
}

// precedingAsyncKeyword recognizes an "async " immediately before a
// "function" keyword, per §4.4's first recognition rule.
func precedingAsyncKeyword(buf []byte, funcStart int) (int, bool) {
	const kw = "async "
	start := funcStart - len(kw)
	if start < 0 || string(buf[start:funcStart]) != kw {
		return 0, false
	}
	if start > 0 && isIdentChar(buf[start-1]) {
		return 0, false
	}
	return start, true
}

// asyncMethodShorthand recognizes "async <ident>(" — an async method
// shorthand — but not "async function", which the caller handles via
// precedingAsyncKeyword instead.
func asyncMethodShorthand(buf []byte, i int) bool {
	j := i + len("async")
	if j >= len(buf) || !isSpace(buf[j]) {
		return false
	}
	for j < len(buf) && isSpace(buf[j]) {
		j++
	}
	if matchWord(buf, j, "function") {
		return false
	}
	identStart := j
	for j < len(buf) && isIdentChar(buf[j]) {
		j++
	}
	if j == identStart {
		return false
	}
	for j < len(buf) && isSpace(buf[j]) {
		j++
	}
	return j < len(buf) && buf[j] == '('
}

// scanBackForArrowSignature handles the case where "=>" is seen with no
// pending signature: scan backwards through an immediately preceding ")"
// ... "(" pair (or a single bare identifier parameter), and treat a
// preceding "async" (up to 10 characters before) as part of the signature.
func scanBackForArrowSignature(buf []byte, arrowPos int) (int, bool) {
	i := arrowPos - 1
	for i >= 0 && isSpace(buf[i]) {
		i--
	}
	if i < 0 {
		return 0, false
	}
	if buf[i] != ')' {
		return scanBackSingleIdentArrow(buf, arrowPos)
	}

	depth := 0
	j := i
	for j >= 0 {
		switch buf[j] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				goto foundOpenParen
			}
		}
		j--
	}
	return 0, false

foundOpenParen:
	start := j
	k := j - 1
	for k >= 0 && isSpace(buf[k]) {
		k--
	}
	if k >= 4 {
		maybe := k - 4
		if maybe >= 0 && string(buf[maybe:k+1]) == "async" && (j-(k+1)) <= 10 {
			if maybe == 0 || !isIdentChar(buf[maybe-1]) {
				start = maybe
			}
		}
	}
	return start, true
}

func scanBackSingleIdentArrow(buf []byte, arrowPos int) (int, bool) {
	i := arrowPos - 1
	for i >= 0 && isSpace(buf[i]) {
		i--
	}
	end := i + 1
	for i >= 0 && isIdentChar(buf[i]) {
		i--
	}
	start := i + 1
	if start >= end {
		return 0, false
	}
	return start, true
}
