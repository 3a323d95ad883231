// Package search implements pattern search (C5): literal or regex matching
// over a source buffer, with the two fixed shorthand substitutions, grouping
// by enclosing function, and the rendering options the `find` command
// exposes.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/wellofspirit/bundlescope/errs"
	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/scanner/funcscan"
)

const contextRadius = 80

// ExpandShorthand applies the two fixed substitutions from §6's shorthand
// DSL. It must only ever be called in regex mode — literal-mode search never
// expands them (invariant 7).
func ExpandShorthand(pattern string) string {
	pattern = strings.ReplaceAll(pattern, "%V%", `[\w$]+`)
	pattern = strings.ReplaceAll(pattern, "%S%", `"(?:[^"\\]|\\.)*"`)
	return pattern
}

// Options configures a Find call. Find reads only Regex; the other fields
// are not consulted by Find, and callers apply proximity, limiting and
// counting themselves through Near, Limit and CountPerFunction.
type Options struct {
	Regex    bool
	Near     int // proximity filter target offset
	HasNear  bool
	Radius   int // proximity radius in bytes
	Limit    int // 0 means unlimited
	CountOnly bool
}

// Group is one enclosing function's matches, used by the `find` command's
// default (non-compact, non-count) rendering.
type Group struct {
	Function *model.FunctionSpan // nil for matches outside any function
	Matches  []model.PatchMatch
}

// Find runs a literal or regex search over buf per Options, returning every
// match (before grouping, proximity filtering, or limiting — those are
// applied by the caller via Group/Near/Limit so commands can compose them).
func Find(buf []byte, pattern string, opts Options) ([]model.PatchMatch, error) {
	if opts.Regex {
		return findRegex(buf, pattern)
	}
	return findLiteral(buf, pattern), nil
}

func findLiteral(buf []byte, pattern string) []model.PatchMatch {
	if pattern == "" {
		return nil
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
	return matches
}

func findRegex(buf []byte, pattern string) ([]model.PatchMatch, error) {
	expanded := ExpandShorthand(pattern)
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
		offset := m.Index
		var captures []string
		named := map[string]string{}
		groups := m.Groups()
		for i, g := range groups {
			if i == 0 {
				continue
			}
			if g.Name != "" && g.Name != fmt.Sprintf("%d", i) {
				named[g.Name] = g.String()
			} else {
				captures = append(captures, g.String())
			}
		}
		matches = append(matches, buildMatch(buf, offset, m.String(), captures, named))
		m, err = re.FindNextMatch(m)
		if err != nil {
			return nil, errs.Wrap(errs.PatternInvalid, "regex match failed", err)
		}
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

// Near filters matches to those within radius bytes of target. radius <= 0
// uses 5000.
func Near(matches []model.PatchMatch, target, radius int) []model.PatchMatch {
	if radius <= 0 {
		radius = 5000
	}
	var out []model.PatchMatch
	for _, m := range matches {
		d := m.Offset - target
		if d < 0 {
			d = -d
		}
		if d <= radius {
			out = append(out, m)
		}
	}
	return out
}

// Limit truncates matches to n entries, returning the kept matches and the
// count dropped (for the "and N more" footer). n <= 0 means unlimited.
func Limit(matches []model.PatchMatch, n int) (kept []model.PatchMatch, dropped int) {
	if n <= 0 || len(matches) <= n {
		return matches, 0
	}
	return matches[:n], len(matches) - n
}

// GroupByFunction groups matches by their enclosing function (via C4),
// sorted by function start; matches outside any function form a single
// group with a nil Function, placed last.
func GroupByFunction(buf []byte, matches []model.PatchMatch) []Group {
	byStart := map[int]*Group{}
	var global Group
	var order []int
	for _, m := range matches {
		spans, err := funcscan.FindEnclosing(buf, m.Offset)
		if err != nil || len(spans) == 0 {
			global.Matches = append(global.Matches, m)
			continue
		}
		enclosing := spans[0]
		g, ok := byStart[enclosing.SigStart]
		if !ok {
			span := enclosing
			g = &Group{Function: &span}
			byStart[enclosing.SigStart] = g
			order = append(order, enclosing.SigStart)
		}
		g.Matches = append(g.Matches, m)
	}
	sort.Ints(order)
	groups := make([]Group, 0, len(order)+1)
	for _, start := range order {
		groups = append(groups, *byStart[start])
	}
	if len(global.Matches) > 0 {
		groups = append(groups, global)
	}
	return groups
}

// Compact renders matches one per line as "offset: matchText".
func Compact(matches []model.PatchMatch) string {
	var b strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&b, "%d: %s\n", m.Offset, m.MatchText)
	}
	return b.String()
}

// CountPerFunction renders a count-only summary, one line per function.
func CountPerFunction(groups []Group) string {
	var b strings.Builder
	for _, g := range groups {
		name := "<global>"
		if g.Function != nil {
			name = g.Function.SignatureText
		}
		fmt.Fprintf(&b, "%s: %d\n", name, len(g.Matches))
	}
	return b.String()
}
