// Package beautify implements the beautifier (C2): it reformats a one-line
// minified source buffer into indented lines while recording, for each
// output line, the byte offset in the original buffer where that line's
// content began. The mapping is what lets every other command translate a
// beautified-file line number back into an anchor in the real bundle.
package beautify

import (
	"strings"

	"github.com/wellofspirit/bundlescope/scanner/state"
)

const indentUnit = "  "

// Result is the output of a beautify pass: the reformatted text and the
// line-to-offset map (OffsetMap[i] is the byte offset of beautified line i,
// 0-indexed to match a JSON array written to *.offsetmap.json).
type Result struct {
	Text      string
	OffsetMap []int
}

// Beautify reformats src. Formatting punctuation ('{', '}', ';', newline)
// is only honored while the character state machine (C1) reports Normal —
// inside strings, templates, comments, and regex literals every byte is
// copied through verbatim, including any of those four characters.
func Beautify(src []byte) Result {
	modes := state.AdvanceBuffer(src)

	var out strings.Builder
	var line strings.Builder
	var offsetMap []int
	indent := 0
	lineStart := -1

	flush := func() {
		content := line.String()
		if strings.TrimSpace(content) != "" {
			out.WriteString(strings.Repeat(indentUnit, indent))
			out.WriteString(content)
			out.WriteByte('\n')
			off := lineStart
			if off < 0 {
				off = 0
			}
			offsetMap = append(offsetMap, off)
		}
		line.Reset()
		lineStart = -1
	}

	for i := 0; i < len(src); i++ {
		ch := src[i]
		inCode := modes[i] == state.Normal

		if inCode {
			switch ch {
			case '\n':
				flush()
				continue
			case ';':
				if lineStart < 0 {
					lineStart = i
				}
				line.WriteByte(ch)
				flush()
				continue
			case '{':
				if lineStart < 0 {
					lineStart = i
				}
				line.WriteByte(ch)
				flush()
				indent++
				continue
			case '}':
				flush()
				if indent > 0 {
					indent--
				}
				out.WriteString(strings.Repeat(indentUnit, indent))
				out.WriteByte('}')
				out.WriteByte('\n')
				offsetMap = append(offsetMap, i)
				continue
			}
		}

		if lineStart < 0 && ch != ' ' && ch != '\t' && ch != '\r' {
			lineStart = i
		}
		line.WriteByte(ch)
	}
	flush()

	return Result{Text: out.String(), OffsetMap: offsetMap}
}

// Lines splits Text into its constituent lines, dropping the trailing empty
// element left by the final newline — a convenience for tests and for the
// `slice --beautify` / `context` commands that render a beautified window.
func (r Result) Lines() []string {
	lines := strings.Split(r.Text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
