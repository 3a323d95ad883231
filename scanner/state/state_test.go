package state

import "testing"

func TestIsRegexContext(t *testing.T) {
	cases := map[byte]bool{
		'=': true, '(': true, ':': true, ';': true, ',': true, '!': true,
		'&': true, '|': true, '?': true, '{': true, '[': true, '+': true,
		'-': true, '~': true, '%': true, '^': true, '>': true,
		0: true, '\n': true,
		')': false, ']': false, '}': false, 'a': false, '1': false,
	}
	for ch, want := range cases {
		if got := IsRegexContext(ch); got != want {
			t.Errorf("IsRegexContext(%q) = %v, want %v", ch, got, want)
		}
	}
}

// TestDivisionVsRegex covers scenario S2 from the spec: "x=a/b" is division,
// "x=/ab/" is a regex literal.
func TestDivisionVsRegex(t *testing.T) {
	modes := AdvanceBuffer([]byte("x=a/b"))
	if modes[3] != Normal {
		t.Fatalf("division '/' at index 3 should be Normal, got %v", modes[3])
	}

	modes = AdvanceBuffer([]byte("x=/ab/"))
	if modes[2] != Regex {
		t.Fatalf("opening '/' at index 2 should enter Regex, got %v", modes[2])
	}
	if modes[5] != Regex {
		t.Fatalf("closing '/' at index 5 should still be Regex, got %v", modes[5])
	}
	if len(modes) > 6 {
		t.Fatalf("unexpected extra bytes")
	}
}

func TestStringEscaping(t *testing.T) {
	buf := []byte(`"a\"b"c`)
	modes := AdvanceBuffer(buf)
	// escaped quote at index 3 does not close the string
	for i := 0; i <= 5; i++ {
		if modes[i] != StringDouble {
			t.Fatalf("index %d: want StringDouble, got %v", i, modes[i])
		}
	}
	if modes[6] != Normal {
		t.Fatalf("index 6 ('c') should be Normal, got %v", modes[6])
	}
}

func TestTemplateInterpolationDepth(t *testing.T) {
	buf := []byte("`a${ `nested` }b`")
	modes := AdvanceBuffer(buf)
	// the nested backtick pair inside ${...} must not close the outer template
	if modes[len(buf)-1] != Template {
		t.Fatalf("closing backtick should still be Template, got %v", modes[len(buf)-1])
	}
}

func TestBlockComment(t *testing.T) {
	buf := []byte("a/*c*/b")
	modes := AdvanceBuffer(buf)
	if modes[0] != Normal {
		t.Fatalf("index 0 should be Normal, got %v", modes[0])
	}
	for i := 1; i <= 5; i++ {
		if modes[i] != BlockComment {
			t.Fatalf("index %d should be BlockComment, got %v", i, modes[i])
		}
	}
	if modes[6] != Normal {
		t.Fatalf("index 6 should be Normal, got %v", modes[6])
	}
}

// TestTotality asserts invariant 1: driving the machine over any buffer
// yields a defined state, and is_in_code partitions the buffer into
// disjoint code/non-code spans (every byte gets exactly one classification).
func TestTotality(t *testing.T) {
	samples := []string{
		``,
		`var a = "unterminated`,
		"`template ${with} interpolation`",
		`/regex/gi.test(x)`,
		"// comment\ncode();",
		"/* block */ code",
	}
	for _, s := range samples {
		modes := AdvanceBuffer([]byte(s))
		if len(modes) != len(s) {
			t.Fatalf("mode count mismatch for %q", s)
		}
		final := Final([]byte(s))
		_ = final // defined state, no panic
	}
}
