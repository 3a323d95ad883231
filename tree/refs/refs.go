// Package refs implements reference and call-graph analysis (C8): external
// identifier references grouped by declaring scope, and outgoing/incoming
// call-graph extraction, both scoped to one function located via the scope
// tree (C7).
package refs

import (
	"sort"
	"strings"

	"github.com/wellofspirit/bundlescope/errs"
	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/scanner/funcscan"
	"github.com/wellofspirit/bundlescope/tree/funcmap"
	"github.com/wellofspirit/bundlescope/tree/parse"
	"github.com/wellofspirit/bundlescope/tree/scope"
)

// AnonymousCallerName is reported for a function with no declared or
// assigned name, per §4.8.
const AnonymousCallerName = "[anonymous]"

// ReferenceBinding is one externally-declared name used inside a function,
// aggregated across all of its occurrences.
type ReferenceBinding struct {
	Name              string
	DeclarationKind   model.BindingKind
	OccurrenceCount   int
	OccurrenceOffsets []int
}

// ReferenceGroup is every external reference resolving to the same source
// scope. Depth -1 means "global" (no declaring scope found).
type ReferenceGroup struct {
	Depth    int
	Bindings []ReferenceBinding
}

type occurrence struct {
	name   string
	offset int
}

// ExternalReferences implements §4.8's "External references" analysis.
func ExternalReferences(tree *parse.Tree, arena *scope.Arena, offset int) ([]ReferenceGroup, error) {
	targetIdx, err := targetFunctionScope(arena, offset)
	if err != nil {
		return nil, err
	}
	target := arena.Scopes[targetIdx]

	localNames := map[string]bool{}
	for _, b := range target.Bindings {
		localNames[b.Name] = true
	}

	fnNode := findNodeBySpan(tree.Root(), target.Start, target.End)
	if fnNode == nil {
		return nil, errs.New(errs.ParseFailed, "could not relocate function node for scope")
	}

	var occs []occurrence
	collectIdentifierUses(fnNode, tree.Src, &occs)

	type key struct {
		depth int
		name  string
	}
	agg := map[key]*ReferenceBinding{}
	var order []key

	for _, o := range occs {
		if localNames[o.name] {
			continue
		}
		depth, kind, found := resolveAncestorBinding(arena, targetIdx, o.name)
		if !found {
			depth = -1
		}
		k := key{depth: depth, name: o.name}
		rb, ok := agg[k]
		if !ok {
			rb = &ReferenceBinding{Name: o.name, DeclarationKind: kind}
			agg[k] = rb
			order = append(order, k)
		}
		rb.OccurrenceCount++
		rb.OccurrenceOffsets = append(rb.OccurrenceOffsets, o.offset)
	}

	groups := map[int]*ReferenceGroup{}
	var depths []int
	for _, k := range order {
		g, ok := groups[k.depth]
		if !ok {
			g = &ReferenceGroup{Depth: k.depth}
			groups[k.depth] = g
			depths = append(depths, k.depth)
		}
		g.Bindings = append(g.Bindings, *agg[k])
	}
	sort.Slice(depths, func(i, j int) bool {
		if depths[i] == -1 {
			return false
		}
		if depths[j] == -1 {
			return true
		}
		return depths[i] < depths[j]
	})
	result := make([]ReferenceGroup, 0, len(depths))
	for _, d := range depths {
		result = append(result, *groups[d])
	}
	return result, nil
}

func resolveAncestorBinding(arena *scope.Arena, fromIdx int, name string) (depth int, kind model.BindingKind, found bool) {
	idx := arena.Scopes[fromIdx].Parent
	d := 1
	for idx >= 0 {
		for _, b := range arena.Scopes[idx].Bindings {
			if b.Name == name {
				return d, b.Kind, true
			}
		}
		idx = arena.Scopes[idx].Parent
		d++
	}
	return 0, "", false
}

// collectIdentifierUses walks n for "identifier" nodes — tree-sitter's
// javascript grammar already distinguishes these from "property_identifier"
// and "shorthand_property_identifier", so member-expression property names
// and object-literal keys are never visited here. Descent stops at nested
// function-like nodes.
func collectIdentifierUses(n *parse.Node, src []byte, out *[]occurrence) {
	if n.IsNull() {
		return
	}
	if n.Type() == "identifier" {
		start, _ := n.Span()
		*out = append(*out, occurrence{name: n.Text(src), offset: start})
	}
	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child.IsFunctionLike() {
			continue
		}
		collectIdentifierUses(child, src, out)
	}
}

// CallSite is one distinct outgoing callee, with its total occurrence count.
type CallSite struct {
	Name  string
	Count int
}

// OutgoingCalls implements §4.8's "Calls: Outgoing" analysis.
func OutgoingCalls(tree *parse.Tree, arena *scope.Arena, offset int) ([]CallSite, error) {
	targetIdx, err := targetFunctionScope(arena, offset)
	if err != nil {
		return nil, err
	}
	target := arena.Scopes[targetIdx]
	fnNode := findNodeBySpan(tree.Root(), target.Start, target.End)
	if fnNode == nil {
		return nil, errs.New(errs.ParseFailed, "could not relocate function node for scope")
	}

	counts := map[string]int{}
	var walkCalls func(n *parse.Node)
	walkCalls = func(n *parse.Node) {
		if n.IsNull() {
			return
		}
		if n.Type() == "call_expression" {
			if callee := n.ChildByFieldName("function"); !callee.IsNull() {
				if name, ok := calleeName(callee, tree.Src); ok {
					counts[name]++
				}
			}
		}
		for i := 0; i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child.IsFunctionLike() {
				continue
			}
			walkCalls(child)
		}
	}
	walkCalls(fnNode)

	sites := make([]CallSite, 0, len(counts))
	for name, c := range counts {
		sites = append(sites, CallSite{Name: name, Count: c})
	}
	sort.Slice(sites, func(i, j int) bool {
		if sites[i].Count != sites[j].Count {
			return sites[i].Count > sites[j].Count
		}
		return sites[i].Name < sites[j].Name
	})
	return sites, nil
}

func calleeName(n *parse.Node, src []byte) (string, bool) {
	switch n.Type() {
	case "identifier":
		return n.Text(src), true
	case "member_expression":
		obj := n.ChildByFieldName("object")
		prop := n.ChildByFieldName("property")
		if prop.IsNull() {
			return "", false
		}
		objName, ok := calleeName(obj, src)
		if !ok {
			objName = obj.Text(src)
		}
		return objName + "." + prop.Text(src), true
	default:
		return "", false
	}
}

// IncomingCall is one literal-text call site for a named function, found by
// scanning the buffer outside the function's own span.
type IncomingCall struct {
	CallerSignature string
	CallerStart     int
	CallOffset      int
	Context         string
	Ambiguous       bool
}

// IncomingCalls implements §4.8's "Calls: Incoming" analysis, returning the
// resolved caller name alongside the call sites (AnonymousCallerName and no
// sites when the function has no declared/assigned name).
func IncomingCalls(buf []byte, tree *parse.Tree, arena *scope.Arena, offset int) ([]IncomingCall, string, error) {
	targetIdx, err := targetFunctionScope(arena, offset)
	if err != nil {
		return nil, "", err
	}
	target := arena.Scopes[targetIdx]
	fnNode := findNodeBySpan(tree.Root(), target.Start, target.End)
	if fnNode == nil {
		return nil, "", errs.New(errs.ParseFailed, "could not relocate function node for scope")
	}

	name := declaredName(fnNode, tree.Src)
	if name == "" {
		start, _ := fnNode.Span()
		name = funcmap.AssignedNames(tree)[start]
	}
	if name == "" {
		return nil, AnonymousCallerName, nil
	}

	pattern := name + "("
	var calls []IncomingCall
	s := string(buf)
	idx := 0
	for {
		found := strings.Index(s[idx:], pattern)
		if found < 0 {
			break
		}
		off := idx + found
		idx = off + len(pattern)
		if off >= target.Start && off <= target.End {
			continue
		}
		var sig string
		var callerStart int
		if spans, err := funcscan.FindEnclosing(buf, off); err == nil && len(spans) > 0 {
			sig = spans[0].SignatureText
			callerStart = spans[0].SigStart
		}
		ctxStart := off - 40
		if ctxStart < 0 {
			ctxStart = 0
		}
		ctxEnd := off + len(pattern) + 40
		if ctxEnd > len(buf) {
			ctxEnd = len(buf)
		}
		calls = append(calls, IncomingCall{
			CallerSignature: sig,
			CallerStart:     callerStart,
			CallOffset:      off,
			Context:         string(buf[ctxStart:ctxEnd]),
			Ambiguous:       len(name) <= 2,
		})
	}
	return calls, name, nil
}

// declaredName reads a function node's own "name" field, the form
// function_declaration and method_definition carry directly. Anything
// assigned instead (var f=function(){}, f=function(){}, a pair/field value)
// falls through to funcmap.AssignedNames in the caller.
func declaredName(n *parse.Node, src []byte) string {
	if name := n.ChildByFieldName("name"); !name.IsNull() {
		return name.Text(src)
	}
	return ""
}

func targetFunctionScope(arena *scope.Arena, offset int) (int, error) {
	idx := arena.Find(offset)
	for idx >= 0 {
		k := arena.Scopes[idx].Kind
		if k == model.ScopeFunction || k == model.ScopeArrow {
			return idx, nil
		}
		idx = arena.Scopes[idx].Parent
	}
	return -1, errs.New(errs.OffsetOutsideFunction, "offset is not inside any function scope")
}

func findNodeBySpan(root *parse.Node, start, end int) *parse.Node {
	var found *parse.Node
	parse.Walk(root, func(n *parse.Node) bool {
		if found != nil {
			return false
		}
		if n.IsFunctionLike() {
			s, e := n.Span()
			if s == start && e == end {
				found = n
				return false
			}
		}
		return true
	})
	return found
}
