// Package funcmap implements the function map and cross-version diff (C9):
// walking a parsed tree into a flat list of function entries, fingerprinting
// them for version-stable identity, a three-pass diff between two maps, an
// advisory categorization of the diff, and a fast string-set-only diff path
// over the landmark index.
package funcmap

import (
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/minio/highwayhash"

	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/scanner/landmark"
	"github.com/wellofspirit/bundlescope/tree/parse"
)

const maxSignaturePrefix = 120

// hashKey is fixed rather than random: ContentHash values must compare equal
// across separate invocations (and separate bundle versions) of the same
// function body, which a per-process random key would defeat.
var hashKey = [32]byte{
	0x62, 0x75, 0x6e, 0x64, 0x6c, 0x65, 0x73, 0x63,
	0x6f, 0x70, 0x65, 0x2d, 0x66, 0x75, 0x6e, 0x63,
	0x6d, 0x61, 0x70, 0x2d, 0x63, 0x6f, 0x6e, 0x74,
	0x65, 0x6e, 0x74, 0x2d, 0x68, 0x61, 0x73, 0x68,
}

func contentHash(text string) string {
	sum := highwayhash.Sum128([]byte(text), hashKey[:])
	return hex.EncodeToString(sum[:])
}

// AssignedNames maps each function-like node's start offset to the name it
// was assigned via a variable declaration, a plain assignment, or an
// object/class property key — the dominant way a function acquires a name
// in a minified bundle, where `function_declaration`'s own "name" field is
// rare. Build and tree/refs's incoming-call resolution both rely on this.
func AssignedNames(tree *parse.Tree) map[int]string {
	src := tree.Src
	nameByStart := map[int]string{}

	parse.Walk(tree.Root(), func(n *parse.Node) bool {
		switch n.Type() {
		case "variable_declarator":
			recordNamedValue(n, "name", "value", src, nameByStart)
		case "pair":
			recordNamedValue(n, "key", "value", src, nameByStart)
		case "assignment_expression":
			recordNamedValue(n, "left", "right", src, nameByStart)
		case "public_field_definition", "field_definition":
			recordNamedValue(n, "property", "value", src, nameByStart)
		}
		return true
	})
	return nameByStart
}

// Build walks tree and returns every function-like node as a
// model.FunctionEntry, ordered by increasing Start. withStrings controls
// whether the (more expensive) string-literal subtree scan runs per entry.
func Build(tree *parse.Tree, withStrings bool) []model.FunctionEntry {
	src := tree.Src
	nameByStart := AssignedNames(tree)

	var entries []model.FunctionEntry
	parse.Walk(tree.Root(), func(n *parse.Node) bool {
		if n.IsFunctionLike() {
			entries = append(entries, buildEntry(n, src, nameByStart, withStrings))
		}
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })
	return entries
}

func recordNamedValue(n *parse.Node, nameField, valueField string, src []byte, out map[int]string) {
	nameNode := n.ChildByFieldName(nameField)
	valueNode := n.ChildByFieldName(valueField)
	if nameNode.IsNull() || valueNode.IsNull() || !valueNode.IsFunctionLike() {
		return
	}
	start, _ := valueNode.Span()
	out[start] = strings.TrimSpace(nameNode.Text(src))
}

func buildEntry(n *parse.Node, src []byte, nameByStart map[int]string, withStrings bool) model.FunctionEntry {
	start, end := n.Span()
	name := nameByStart[start]
	if name == "" && (n.Type() == "method_definition" || n.Type() == "function_declaration" || n.Type() == "generator_function_declaration") {
		if key := n.ChildByFieldName("name"); !key.IsNull() {
			name = key.Text(src)
		}
	}
	if name == "" {
		name = model.AnonymousName
	}

	text := n.Text(src)
	trimmed := strings.TrimSpace(text)
	isAsync := strings.HasPrefix(trimmed, "async")
	head := trimmed
	if len(head) > 20 {
		head = head[:20]
	}
	isGenerator := strings.Contains(n.Type(), "generator") ||
		strings.Contains(head, "function*") || strings.Contains(head, "function *")

	paramCount := 0
	if params := n.ChildByFieldName("parameters"); !params.IsNull() {
		paramCount = params.NamedChildCount()
	} else if p := n.ChildByFieldName("parameter"); !p.IsNull() {
		paramCount = 1
	}

	prefixLen := min(len(text), maxSignaturePrefix)
	prefix := strings.ReplaceAll(text[:prefixLen], "\n", " ")

	entry := model.FunctionEntry{
		Name:            name,
		Start:           start,
		End:             end,
		ParamCount:      paramCount,
		IsAsync:         isAsync,
		IsGenerator:     isGenerator,
		SignaturePrefix: prefix,
		ContentHash:     contentHash(text),
	}
	if withStrings {
		entry.StringsUsed = collectStrings(n, src)
	}
	return entry
}

func collectStrings(n *parse.Node, src []byte) []string {
	set := map[string]bool{}
	parse.Walk(n, func(c *parse.Node) bool {
		switch c.Type() {
		case "string":
			set[stripDelims(c.Text(src))] = true
		case "template_string":
			set[stripDelims(c.Text(src))] = true
		}
		return true
	})
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func stripDelims(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

// Fingerprint computes the version-stable, identifier-insensitive digest
// from §4.9: param count, async/generator flags, size bin, and the sorted
// string-literal set.
func Fingerprint(e model.FunctionEntry) string {
	size := e.End - e.Start
	bin := sizeBin(size)
	return fmt.Sprintf("%d|%v|%v|%d|%s", e.ParamCount, e.IsAsync, e.IsGenerator, bin, strings.Join(e.StringsUsed, "\x1f"))
}

func sizeBin(size int) int {
	step := int(math.Round(float64(size) * 0.1))
	if step < 1 {
		step = 1
	}
	return int(math.Round(float64(size)/float64(step))) * step
}

// Diff runs the three-pass match from §4.9 between two function maps.
func Diff(map1, map2 []model.FunctionEntry) model.DiffResult {
	claimed1 := make([]bool, len(map1))
	claimed2 := make([]bool, len(map2))

	fp2ByFingerprint := map[string][]int{}
	for i, f := range map2 {
		fp := Fingerprint(f)
		fp2ByFingerprint[fp] = append(fp2ByFingerprint[fp], i)
	}

	var unchanged []model.FunctionShift
	for i, f1 := range map1 {
		fp := Fingerprint(f1)
		best, bestDist := -1, -1
		for _, j := range fp2ByFingerprint[fp] {
			if claimed2[j] {
				continue
			}
			dist := abs(map2[j].Start - f1.Start)
			if best == -1 || dist < bestDist {
				best, bestDist = j, dist
			}
		}
		if best >= 0 {
			claimed1[i], claimed2[best] = true, true
			unchanged = append(unchanged, model.FunctionShift{
				V1: f1, V2: map2[best], Shift: map2[best].Start - f1.Start,
			})
		}
	}

	var modified []model.FunctionModification
	for i, f1 := range map1 {
		if claimed1[i] || len(f1.StringsUsed) == 0 {
			continue
		}
		bestJ, bestSim := -1, 0.0
		for j, f2 := range map2 {
			if claimed2[j] || f2.ParamCount != f1.ParamCount || len(f2.StringsUsed) == 0 {
				continue
			}
			if sim := jaccard(f1.StringsUsed, f2.StringsUsed); sim > bestSim {
				bestJ, bestSim = j, sim
			}
		}
		if bestJ >= 0 && bestSim > 0.5 {
			f2 := map2[bestJ]
			claimed1[i], claimed2[bestJ] = true, true
			added, removed := stringSetDiff(f1.StringsUsed, f2.StringsUsed)
			modified = append(modified, model.FunctionModification{
				V1: f1, V2: f2,
				SizeDiff:       (f2.End - f2.Start) - (f1.End - f1.Start),
				AddedStrings:   added,
				RemovedStrings: removed,
				Similarity:     bestSim,
			})
		}
	}

	var removed, added []model.FunctionEntry
	for i, f1 := range map1 {
		if !claimed1[i] {
			removed = append(removed, f1)
		}
	}
	for j, f2 := range map2 {
		if !claimed2[j] {
			added = append(added, f2)
		}
	}

	return model.DiffResult{Unchanged: unchanged, Modified: modified, Added: added, Removed: removed}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func jaccard(a, b []string) float64 {
	setA, setB := toSet(a), toSet(b)
	inter := 0
	for s := range setA {
		if setB[s] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

func stringSetDiff(a, b []string) (added, removed []string) {
	setA, setB := toSet(a), toSet(b)
	for s := range setB {
		if !setA[s] {
			added = append(added, s)
		}
	}
	for s := range setA {
		if !setB[s] {
			removed = append(removed, s)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return
}

// Category is an advisory bucket assigned to a FunctionModification; it must
// never influence the diff sets themselves.
type Category string

const (
	CategoryVersionBump   Category = "version bump"
	CategoryTelemetry     Category = "telemetry"
	CategoryUIUX          Category = "UI/UX"
	CategoryConfiguration Category = "configuration"
	CategoryErrorHandling Category = "error-handling"
	CategoryOther         Category = "Other"
)

var (
	versionPattern = regexp.MustCompile(`^v?\d+(\.\d+)+$|^\d{4}-\d{2}$|^v\d+$`)
	configPattern  = regexp.MustCompile(`(?i)config|setting|option`)
	errorPattern   = regexp.MustCompile(`(?i)error|exception|fail`)
)

var telemetryPrefixes = []string{"tengu_", "cli_", "telemetry_"}

// Categorize buckets one modification per §4.9's heuristic rules.
func Categorize(m model.FunctionModification) Category {
	changed := make([]string, 0, len(m.AddedStrings)+len(m.RemovedStrings))
	changed = append(changed, m.AddedStrings...)
	changed = append(changed, m.RemovedStrings...)
	if len(changed) == 0 {
		return CategoryOther
	}
	if allMatch(changed, versionPattern) {
		return CategoryVersionBump
	}
	if anyHasPrefix(changed, telemetryPrefixes) {
		return CategoryTelemetry
	}
	if anyUIUX(changed) {
		return CategoryUIUX
	}
	if anyMatch(changed, configPattern) {
		return CategoryConfiguration
	}
	if anyMatch(changed, errorPattern) {
		return CategoryErrorHandling
	}
	return CategoryOther
}

func allMatch(strs []string, re *regexp.Regexp) bool {
	for _, s := range strs {
		if !re.MatchString(s) {
			return false
		}
	}
	return true
}

func anyMatch(strs []string, re *regexp.Regexp) bool {
	for _, s := range strs {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func anyHasPrefix(strs []string, prefixes []string) bool {
	for _, s := range strs {
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
	}
	return false
}

func anyUIUX(strs []string) bool {
	for _, s := range strs {
		if len(s) > 30 && s[0] >= 'A' && s[0] <= 'Z' {
			return true
		}
	}
	return false
}

var codeKeywords = []string{"function", "=>", "return ", "if(", "else{", "catch("}

// StringSetDiff is the fast path from §4.9: a string-literal-only diff over
// the landmark index of two buffers, skipping the tree parse entirely.
func StringSetDiff(buf1, buf2 []byte, minLength int, filterCode bool, limit int) (onlyV1, onlyV2 []string, droppedV1, droppedV2 int) {
	set1 := toSet(landmarkContents(buf1))
	set2 := toSet(landmarkContents(buf2))

	var raw1, raw2 []string
	for s := range set1 {
		if !set2[s] {
			raw1 = append(raw1, s)
		}
	}
	for s := range set2 {
		if !set1[s] {
			raw2 = append(raw2, s)
		}
	}
	sort.Strings(raw1)
	sort.Strings(raw2)

	filter := func(ss []string) []string {
		var out []string
		for _, s := range ss {
			if len(s) < minLength {
				continue
			}
			if filterCode && isCodeLike(s) {
				continue
			}
			out = append(out, s)
		}
		return out
	}
	f1, f2 := filter(raw1), filter(raw2)
	if limit > 0 && len(f1) > limit {
		droppedV1 = len(f1) - limit
		f1 = f1[:limit]
	}
	if limit > 0 && len(f2) > limit {
		droppedV2 = len(f2) - limit
		f2 = f2[:limit]
	}
	return f1, f2, droppedV1, droppedV2
}

func landmarkContents(buf []byte) []string {
	idx := landmark.Build(buf)
	out := make([]string, 0, len(idx.All()))
	for _, it := range idx.All() {
		out = append(out, it.Content)
	}
	return out
}

// isCodeLike discards strings that look like embedded source rather than
// natural-language content: a high ratio of JS syntax characters, or one of
// a fixed set of keyword substrings.
func isCodeLike(s string) bool {
	for _, kw := range codeKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	syntaxChars := 0
	for _, c := range s {
		switch c {
		case '{', '}', '(', ')', ';', '=', '<', '>', '!', '&', '|':
			syntaxChars++
		}
	}
	return len(s) > 0 && float64(syntaxChars)/float64(len(s)) > 0.05
}
