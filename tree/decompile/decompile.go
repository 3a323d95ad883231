// Package decompile implements the decompile annotator (C11): over a single
// extracted function, it collects per-identifier usage contexts, proposes
// readable names for short identifiers, expands common minification idioms
// textually, and renders the beautified source with inline annotation
// comments. Renames are suggested, never applied; annotations never alter
// semantics.
package decompile

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/wellofspirit/bundlescope/scanner/beautify"
	"github.com/wellofspirit/bundlescope/scanner/state"
	"github.com/wellofspirit/bundlescope/tree/parse"
)

// UsageKind classifies one identifier occurrence's syntactic role.
type UsageKind string

const (
	UsageDestructuredKey             UsageKind = "destructured-from-key"
	UsagePropertyAccess              UsageKind = "property-access"
	UsageComparisonWithStringLiteral UsageKind = "comparison-with-string-literal"
	UsageCallArgument                UsageKind = "call-argument"
	UsageAssignmentSource            UsageKind = "assignment-source"
)

// Usage is one recorded occurrence of an identifier.
type Usage struct {
	Kind   UsageKind
	Detail string
}

// Proposal is a suggested readable alternative for a short identifier.
type Proposal struct {
	Identifier string
	Suggested  string
	Reason     string
}

// Result is the full decompile-annotate output for one function.
type Result struct {
	Source     string
	Proposals  []Proposal
	Confidence float64
}

const shortIdentifierMaxLen = 3

// Annotate parses src (a single extracted function's source) locally,
// collects identifier usage, proposes renames for short identifiers, and
// returns the beautified, annotated source.
func Annotate(src []byte) (Result, error) {
	tree, err := parse.Parse(src, 0)
	if err != nil {
		return Result{}, err
	}

	usages := map[string][]Usage{}
	collectUsages(tree.Root(), src, usages)

	shortIdents := map[string]bool{}
	for name := range usages {
		if len(name) <= shortIdentifierMaxLen {
			shortIdents[name] = true
		}
	}

	var proposals []Proposal
	for name := range shortIdents {
		if suggestion, reason, ok := proposeName(usages[name]); ok {
			proposals = append(proposals, Proposal{Identifier: name, Suggested: suggestion, Reason: reason})
		}
	}
	sort.Slice(proposals, func(i, j int) bool { return proposals[i].Identifier < proposals[j].Identifier })

	confidence := 0.0
	if len(shortIdents) > 0 {
		confidence = float64(len(proposals)) / float64(len(shortIdents))
	}

	expanded := expandMinificationIdioms(src)
	beautified := beautify.Beautify(expanded)
	annotated := annotateSource(beautified, proposals)

	return Result{Source: annotated, Proposals: proposals, Confidence: confidence}, nil
}

func collectUsages(n *parse.Node, src []byte, usages map[string][]Usage) {
	if n.IsNull() {
		return
	}
	switch n.Type() {
	case "variable_declarator":
		name := n.ChildByFieldName("name")
		value := n.ChildByFieldName("value")
		if name.Type() == "object_pattern" {
			recordDestructuring(name, src, usages)
		} else if name.Type() == "identifier" && !value.IsNull() {
			ident := name.Text(src)
			usages[ident] = append(usages[ident], Usage{Kind: UsageAssignmentSource, Detail: describeInitializer(value, src)})
		}

	case "assignment_expression":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left.Type() == "identifier" {
			ident := left.Text(src)
			usages[ident] = append(usages[ident], Usage{Kind: UsageAssignmentSource, Detail: describeInitializer(right, src)})
		}

	case "member_expression":
		obj := n.ChildByFieldName("object")
		prop := n.ChildByFieldName("property")
		if obj.Type() == "identifier" && !prop.IsNull() {
			ident := obj.Text(src)
			usages[ident] = append(usages[ident], Usage{Kind: UsagePropertyAccess, Detail: prop.Text(src)})
		}

	case "binary_expression":
		op := operatorText(n)
		if op == "===" || op == "==" || op == "!==" || op == "!=" {
			left := n.ChildByFieldName("left")
			right := n.ChildByFieldName("right")
			if left.Type() == "identifier" && right.Type() == "string" {
				usages[left.Text(src)] = append(usages[left.Text(src)],
					Usage{Kind: UsageComparisonWithStringLiteral, Detail: stripDelims(right.Text(src))})
			} else if right.Type() == "identifier" && left.Type() == "string" {
				usages[right.Text(src)] = append(usages[right.Text(src)],
					Usage{Kind: UsageComparisonWithStringLiteral, Detail: stripDelims(left.Text(src))})
			}
		}

	case "arguments":
		for i := 0; i < n.NamedChildCount(); i++ {
			arg := n.NamedChild(i)
			if arg.Type() == "identifier" {
				usages[arg.Text(src)] = append(usages[arg.Text(src)], Usage{Kind: UsageCallArgument})
			}
		}
	}

	for i := 0; i < n.ChildCount(); i++ {
		collectUsages(n.Child(i), src, usages)
	}
}

func recordDestructuring(pattern *parse.Node, src []byte, usages map[string][]Usage) {
	for i := 0; i < pattern.NamedChildCount(); i++ {
		child := pattern.NamedChild(i)
		switch child.Type() {
		case "pair_pattern":
			key := child.ChildByFieldName("key")
			value := child.ChildByFieldName("value")
			if !value.IsNull() && value.Type() == "identifier" {
				usages[value.Text(src)] = append(usages[value.Text(src)], Usage{Kind: UsageDestructuredKey, Detail: key.Text(src)})
			}
		case "shorthand_property_identifier_pattern":
			name := child.Text(src)
			usages[name] = append(usages[name], Usage{Kind: UsageDestructuredKey, Detail: name})
		}
	}
}

func operatorText(n *parse.Node) string {
	for i := 0; i < n.ChildCount(); i++ {
		switch n.Child(i).Type() {
		case "===", "==", "!==", "!=":
			return n.Child(i).Type()
		}
	}
	return ""
}

func describeInitializer(value *parse.Node, src []byte) string {
	if value.IsNull() {
		return ""
	}
	switch value.Type() {
	case "call_expression":
		if callee := value.ChildByFieldName("function"); !callee.IsNull() {
			return callee.Text(src)
		}
	case "new_expression":
		if ctor := value.ChildByFieldName("constructor"); !ctor.IsNull() {
			return "new" + capitalize(ctor.Text(src))
		}
	case "member_expression":
		return value.Text(src)
	}
	return ""
}

// proposeName picks a readable alternative by the priority order from
// §4.11: destructured key, initializer-derived description, property-access
// suffix, comparison-derived suffix.
func proposeName(usages []Usage) (string, string, bool) {
	for _, u := range usages {
		if u.Kind == UsageDestructuredKey && u.Detail != "" {
			return u.Detail, "destructured-from-key", true
		}
	}
	for _, u := range usages {
		if u.Kind == UsageAssignmentSource && u.Detail != "" {
			return lowerFirst(u.Detail), "initializer", true
		}
	}
	for _, u := range usages {
		if u.Kind == UsagePropertyAccess && u.Detail != "" {
			return "via" + capitalize(u.Detail), "property-access", true
		}
	}
	for _, u := range usages {
		if u.Kind == UsageComparisonWithStringLiteral && u.Detail != "" {
			if ident := sanitizeIdent(u.Detail); ident != "" {
				return "is" + capitalize(ident), "comparison-with-string-literal", true
			}
		}
	}
	return "", "", false
}

func expandMinificationIdioms(src []byte) []byte {
	modes := state.AdvanceBuffer(src)
	var out []byte
	i := 0
	for i < len(src) {
		if modes[i] == state.Normal {
			switch {
			case matchLiteral(src, i, "void 0"):
				out = append(out, "undefined /* void 0 */"...)
				i += len("void 0")
				continue
			case matchLiteral(src, i, "!0"):
				out = append(out, "true /* !0 */"...)
				i += len("!0")
				continue
			case matchLiteral(src, i, "!1"):
				out = append(out, "false /* !1 */"...)
				i += len("!1")
				continue
			}
		}
		out = append(out, src[i])
		i++
	}
	return out
}

func matchLiteral(src []byte, i int, lit string) bool {
	return i+len(lit) <= len(src) && string(src[i:i+len(lit)]) == lit
}

// annotateSource appends one trailing comment per proposal on the first
// beautified line where that identifier occurs as a whole word.
func annotateSource(res beautify.Result, proposals []Proposal) string {
	lines := strings.Split(res.Text, "\n")
	annotated := make([]string, len(lines))
	copy(annotated, lines)
	for _, p := range proposals {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(p.Identifier) + `\b`)
		for i, line := range annotated {
			if re.MatchString(line) {
				annotated[i] = line + fmt.Sprintf(" // %s -> %s (%s)", p.Identifier, p.Suggested, p.Reason)
				break
			}
		}
	}
	return strings.Join(annotated, "\n")
}

func stripDelims(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func sanitizeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
