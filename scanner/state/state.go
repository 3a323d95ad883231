// Package state implements the character state machine (C1): a streaming
// classifier that tags every byte of a source buffer as normal code, one of
// the string flavours, template, regex, or one of the comment kinds. Every
// other component in bundlescope (beautifier, landmark index, function
// scanner, pattern search, patch validator) drives this machine instead of
// re-deriving lexical context on its own.
package state

// Mode is one of the seven classification states the machine can be in.
type Mode int

const (
	Normal Mode = iota
	StringSingle
	StringDouble
	Template
	Regex
	LineComment
	BlockComment
)

// State is a small record advanced one code unit at a time. It is
// deliberately a value type so callers can snapshot it cheaply (e.g. to
// restart scanning from an arbitrary offset, as C6's non-code-context check
// and C4's re-derivation passes both do).
type State struct {
	Mode          Mode
	EscapePending bool
	TemplateDepth int
	// PrevNonWS is the last non-whitespace character seen while in Normal
	// mode; it decides whether a '/' opens a regex literal.
	PrevNonWS byte

	// starSeen tracks "previous byte was '*'" while inside a block comment,
	// so the closing "*/" pair can be recognized one byte at a time without
	// adding an eighth public Mode value.
	starSeen bool
}

// New returns the machine's initial state: Normal, no pending escape, no
// preceding non-whitespace character.
func New() State {
	return State{Mode: Normal}
}

// regexContextSet is exactly the fixed predicate from §4.1: a '/' opens a
// regex literal only when the previous non-whitespace character is one of
// these, or absent/newline.
const regexContextSet = "=(:;,!&|?{[+-~%^>"

// IsRegexContext reports whether prevNonWS (0 means "absent") permits a
// following '/' to open a regex literal.
func IsRegexContext(prevNonWS byte) bool {
	if prevNonWS == 0 || prevNonWS == '\n' {
		return true
	}
	for i := 0; i < len(regexContextSet); i++ {
		if regexContextSet[i] == prevNonWS {
			return true
		}
	}
	return false
}

// IsInCode reports whether s represents being in live code (as opposed to a
// string, template, regex, or comment).
func IsInCode(s State) bool { return s.Mode == Normal }

func isWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// Advance drives the machine forward by one code unit. ch is the current
// byte, next is the byte following it (0 at end of buffer), and the
// returned state's PrevNonWS is updated for Normal-mode bytes only.
func Advance(s State, ch byte, next byte) State {
	switch s.Mode {
	case Normal:
		switch {
		case ch == '\'':
			s.Mode = StringSingle
		case ch == '"':
			s.Mode = StringDouble
		case ch == '`':
			s.Mode = Template
			s.TemplateDepth = 0
		case ch == '/' && next == '/':
			s.Mode = LineComment
		case ch == '/' && next == '*':
			s.Mode = BlockComment
			s.starSeen = false
		case ch == '/' && IsRegexContext(s.PrevNonWS):
			s.Mode = Regex
		}
		if s.Mode == Normal && !isWhitespace(ch) {
			s.PrevNonWS = ch
		}
		return s

	case StringSingle:
		return advanceString(s, ch, '\'')
	case StringDouble:
		return advanceString(s, ch, '"')

	case Template:
		if s.EscapePending {
			s.EscapePending = false
			return s
		}
		switch {
		case ch == '\\':
			s.EscapePending = true
		case ch == '`' && s.TemplateDepth == 0:
			s.Mode = Normal
			s.PrevNonWS = '`'
		case ch == '$' && next == '{':
			s.TemplateDepth++
		case ch == '}' && s.TemplateDepth > 0:
			s.TemplateDepth--
		}
		return s

	case Regex:
		if s.EscapePending {
			s.EscapePending = false
			return s
		}
		switch ch {
		case '\\':
			s.EscapePending = true
		case '/':
			s.Mode = Normal
			s.PrevNonWS = '/'
		}
		return s

	case LineComment:
		if ch == '\n' {
			s.Mode = Normal
			s.PrevNonWS = 0
		}
		return s

	case BlockComment:
		if s.starSeen && ch == '/' {
			s.Mode = Normal
			s.PrevNonWS = '/'
			s.starSeen = false
			return s
		}
		s.starSeen = ch == '*'
		return s
	}
	return s
}

func advanceString(s State, ch byte, quote byte) State {
	if s.EscapePending {
		s.EscapePending = false
		return s
	}
	switch ch {
	case '\\':
		s.EscapePending = true
	case quote:
		s.Mode = Normal
		s.PrevNonWS = quote
	}
	return s
}

// AdvanceBuffer drives the machine across an entire buffer and returns the
// mode each byte belongs to. Delimiter bytes are attributed to the literal
// they delimit on both ends: the opening quote/backtick/slash/comment-marker
// is reported in the mode it enters, and the closing delimiter is reported
// in the mode it closes (not Normal) — so is_in_code partitions the buffer
// into disjoint code/non-code spans with the delimiters themselves treated
// as non-code, matching "buffer[open+1..close]" landmark content in §4.3.
func AdvanceBuffer(buf []byte) []Mode {
	modes := make([]Mode, len(buf))
	s := New()
	for i := 0; i < len(buf); i++ {
		var next byte
		if i+1 < len(buf) {
			next = buf[i+1]
		}
		old := s.Mode
		s = Advance(s, buf[i], next)
		if s.Mode == Normal && old != Normal {
			modes[i] = old
		} else {
			modes[i] = s.Mode
		}
	}
	return modes
}

// Final drives the machine across an entire buffer and returns only the
// final state, without materializing a per-byte mode slice.
func Final(buf []byte) State {
	s := New()
	for i := 0; i < len(buf); i++ {
		var next byte
		if i+1 < len(buf) {
			next = buf[i+1]
		}
		s = Advance(s, buf[i], next)
	}
	return s
}

// FinalFrom drives the machine starting from a given state across buf,
// returning the resulting state. Used by C6 to re-derive context by driving
// the machine from max(0, offset-50000) instead of from byte 0.
func FinalFrom(s State, buf []byte) State {
	for i := 0; i < len(buf); i++ {
		var next byte
		if i+1 < len(buf) {
			next = buf[i+1]
		}
		s = Advance(s, buf[i], next)
	}
	return s
}
