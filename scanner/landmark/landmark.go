// Package landmark implements the landmark index (C3): a single streaming
// pass over a source buffer, driven by the character state machine, that
// enumerates every string and template literal as a navigation anchor —
// a "landmark" that survives minification and renaming.
package landmark

import (
	"strings"

	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/scanner/state"
)

// DefaultRadius is the proximity-query default window, in bytes either side
// of a target offset.
const DefaultRadius = 5000

// EnrichmentCap bounds how large a result set can be before enclosing-function
// enrichment is skipped, to keep the command fast on giant bundles.
const EnrichmentCap = 500

// Index is the enumerated set of string/template landmarks for one buffer.
type Index struct {
	Items []model.StringLiteral
}

// Build performs the single forward pass described in §4.3: it drives the
// state machine byte by byte and, on every Normal→(string|template)
// transition, records the opening-quote offset; on the matching return to
// Normal it emits a landmark. Template literals containing "${" (i.e. with
// interpolation) are discarded, since their content is not a stable string
// constant.
func Build(src []byte) *Index {
	var items []model.StringLiteral
	s := state.New()
	openOffset := -1
	openMode := state.Normal

	for i := 0; i < len(src); i++ {
		var next byte
		if i+1 < len(src) {
			next = src[i+1]
		}
		before := s.Mode
		s = state.Advance(s, src[i], next)

		switch {
		case before == state.Normal && isLiteralMode(s.Mode):
			openOffset = i
			openMode = s.Mode
		case openOffset >= 0 && before == openMode && s.Mode == state.Normal:
			closeOffset := i
			content := string(src[openOffset+1 : closeOffset])
			if openMode == state.Template && strings.Contains(content, "${") {
				openOffset = -1
				continue
			}
			items = append(items, model.StringLiteral{
				Content: content,
				Offset:  openOffset,
				Length:  closeOffset - openOffset + 1,
			})
			openOffset = -1
		}
	}
	return &Index{Items: items}
}

func isLiteralMode(m state.Mode) bool {
	return m == state.StringSingle || m == state.StringDouble || m == state.Template
}

// All returns every landmark, in byte-offset order (the order Build
// discovers them in, which is already offset-ascending since it is a single
// forward pass).
func (idx *Index) All() []model.StringLiteral { return idx.Items }

// Filter returns landmarks whose content contains substr.
func (idx *Index) Filter(substr string) []model.StringLiteral {
	var out []model.StringLiteral
	for _, it := range idx.Items {
		if strings.Contains(it.Content, substr) {
			out = append(out, it)
		}
	}
	return out
}

// Near returns landmarks within radius bytes of target. A radius <= 0 uses
// DefaultRadius.
func (idx *Index) Near(target, radius int) []model.StringLiteral {
	if radius <= 0 {
		radius = DefaultRadius
	}
	var out []model.StringLiteral
	for _, it := range idx.Items {
		d := it.Offset - target
		if d < 0 {
			d = -d
		}
		if d <= radius {
			out = append(out, it)
		}
	}
	return out
}

// WithEnclosingFunctions enriches every landmark in items with its enclosing
// function name, using resolve to look it up by offset. Per §4.3 this
// enrichment is capped: it is skipped entirely when len(items) exceeds
// EnrichmentCap, so a `strings` query over a giant bundle stays fast.
func WithEnclosingFunctions(items []model.StringLiteral, resolve func(offset int) string) []model.StringLiteral {
	if len(items) > EnrichmentCap || resolve == nil {
		return items
	}
	for i := range items {
		items[i].EnclosingFunction = resolve(items[i].Offset)
	}
	return items
}
