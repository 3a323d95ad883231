// Package parse adapts the external, opaque full-syntax parser
// (github.com/smacker/go-tree-sitter with its javascript grammar) behind a
// small Tree/Node interface carrying byte spans. Every deep-path component
// (C7 scope builder, C8 references, C9 function map, C11 decompiler) walks
// through this package instead of importing tree-sitter directly, so the
// parser stays swappable.
package parse

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/wellofspirit/bundlescope/errs"
)

// FunctionLikeKinds is the set of tree-sitter node types treated as a
// function form by every deep-path walker.
var FunctionLikeKinds = map[string]bool{
	"function_declaration":           true,
	"function":                       true,
	"function_expression":            true,
	"generator_function_declaration": true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

// Node wraps a tree-sitter node, normalizing its span by a base offset so
// that a tree parsed from an extracted substring with a non-zero base
// reports spans aligned to the original buffer.
type Node struct {
	raw  *sitter.Node
	base int
}

// IsNull reports whether n is the absence of a node (the Go equivalent of a
// nil child from ChildByFieldName or an out-of-range Child index).
func (n *Node) IsNull() bool { return n == nil || n.raw == nil }

// Type returns the grammar node kind, e.g. "function_declaration".
func (n *Node) Type() string { return n.raw.Type() }

// Span returns the node's normalized [start, end) byte range.
func (n *Node) Span() (int, int) {
	return int(n.raw.StartByte()) + n.base, int(n.raw.EndByte()) + n.base
}

// Text returns the node's source slice, given the same buffer it was parsed
// from (already base-adjusted by the caller, since Span() is already
// normalized to that buffer's offsets).
func (n *Node) Text(buf []byte) string {
	start, end := n.Span()
	if start < 0 || end > len(buf) || start > end {
		return ""
	}
	return string(buf[start:end])
}

// ChildCount returns the number of direct children, named or anonymous.
func (n *Node) ChildCount() int { return int(n.raw.ChildCount()) }

// Child returns the i-th direct child, or a null Node if out of range.
func (n *Node) Child(i int) *Node {
	c := n.raw.Child(i)
	if c == nil {
		return nil
	}
	return &Node{raw: c, base: n.base}
}

// NamedChildCount returns the number of named (non-punctuation) children.
func (n *Node) NamedChildCount() int { return int(n.raw.NamedChildCount()) }

// NamedChild returns the i-th named child.
func (n *Node) NamedChild(i int) *Node {
	c := n.raw.NamedChild(i)
	if c == nil {
		return nil
	}
	return &Node{raw: c, base: n.base}
}

// ChildByFieldName returns the child bound to the grammar's named field
// (e.g. "name", "parameters", "body"), or a null Node if absent.
func (n *Node) ChildByFieldName(name string) *Node {
	c := n.raw.ChildByFieldName(name)
	if c == nil {
		return nil
	}
	return &Node{raw: c, base: n.base}
}

// IsFunctionLike reports whether n's kind is one of FunctionLikeKinds.
func (n *Node) IsFunctionLike() bool { return FunctionLikeKinds[n.Type()] }

// Tree is a parsed syntax tree plus the source it was parsed from.
type Tree struct {
	raw  *sitter.Tree
	base int
	Src  []byte
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node { return &Node{raw: t.raw.RootNode(), base: t.base} }

// Parse parses src as JavaScript. base is the accumulated span offset to
// normalize against (§4.7's parser-offset normalization): it is added to
// every raw tree-sitter span, so pass the absolute buffer offset where src
// begins. Every caller in this repository passes 0, C11 included: it parses
// one extracted function's source on its own, so its spans are relative to
// that source.
func Parse(src []byte, base int) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	raw, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, errs.Wrap(errs.ParseFailed, "tree-sitter parse failed", err)
	}
	return &Tree{raw: raw, base: base, Src: src}, nil
}

// Walk performs a pre-order traversal starting at n, calling visit on every
// node. If visit returns false, Walk does not descend into that node's
// children; C8's node lookup uses this to stop once it has found its node.
func Walk(n *Node, visit func(*Node) bool) {
	if n.IsNull() {
		return
	}
	if !visit(n) {
		return
	}
	for i := 0; i < n.ChildCount(); i++ {
		Walk(n.Child(i), visit)
	}
}
