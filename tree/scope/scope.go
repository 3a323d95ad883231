// Package scope implements the scope builder (C7): a tree walk that builds
// a flat arena of lexical scopes with integer parent indices, and a
// lookup (Arena.Find) returning the smallest scope containing an offset.
package scope

import (
	"strings"

	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/tree/parse"
)

// Arena is the flat scope tree produced by Build. Scopes[0] is always the
// module scope, with Parent -1.
type Arena struct {
	Scopes []model.Scope
}

func (a *Arena) push(kind model.ScopeKind, start, end, parent int) int {
	a.Scopes = append(a.Scopes, model.Scope{Kind: kind, Start: start, End: end, Parent: parent})
	return len(a.Scopes) - 1
}

// Find returns the index of the smallest scope whose [Start, End] contains
// offset, falling back to the module scope (index 0) if nothing tighter
// matches.
func (a *Arena) Find(offset int) int {
	best := 0
	bestSize := a.Scopes[0].End - a.Scopes[0].Start
	for i, s := range a.Scopes {
		if i == 0 {
			continue
		}
		if s.Start <= offset && offset <= s.End {
			size := s.End - s.Start
			if size < bestSize {
				bestSize = size
				best = i
			}
		}
	}
	return best
}

// Build walks tree and returns the scope arena, per §4.7's recognition
// rules.
func Build(tree *parse.Tree) *Arena {
	src := tree.Src
	arena := &Arena{}
	moduleIdx := arena.push(model.ScopeModule, 0, len(src), -1)
	walk(tree.Root(), src, arena, moduleIdx, false)
	return arena
}

func walk(n *parse.Node, src []byte, arena *Arena, scopeIdx int, isFunctionBody bool) {
	if n.IsNull() {
		return
	}

	switch {
	case n.IsFunctionLike():
		walkFunction(n, src, arena, scopeIdx)
		return

	case n.Type() == "class_declaration" || n.Type() == "class":
		walkClass(n, src, arena, scopeIdx)
		return

	case n.Type() == "statement_block":
		if isFunctionBody {
			for i := 0; i < n.ChildCount(); i++ {
				walk(n.Child(i), src, arena, scopeIdx, false)
			}
			return
		}
		start, end := n.Span()
		newIdx := arena.push(model.ScopeBlock, start, end, scopeIdx)
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i), src, arena, newIdx, false)
		}
		return

	case n.Type() == "for_statement" || n.Type() == "for_in_statement":
		start, end := n.Span()
		newIdx := arena.push(model.ScopeFor, start, end, scopeIdx)
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i), src, arena, newIdx, false)
		}
		return

	case n.Type() == "catch_clause":
		start, end := n.Span()
		newIdx := arena.push(model.ScopeCatch, start, end, scopeIdx)
		if p := n.ChildByFieldName("parameter"); !p.IsNull() {
			var bindings []model.Binding
			flattenPattern(p, src, model.BindCatch, &bindings)
			arena.Scopes[newIdx].Bindings = append(arena.Scopes[newIdx].Bindings, bindings...)
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i), src, arena, newIdx, false)
		}
		return

	case n.Type() == "variable_declaration" || n.Type() == "lexical_declaration":
		walkVariableDeclaration(n, src, arena, scopeIdx)
		return

	default:
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i), src, arena, scopeIdx, false)
		}
	}
}

func walkFunction(n *parse.Node, src []byte, arena *Arena, scopeIdx int) {
	start, end := n.Span()
	kind := model.ScopeFunction
	if n.Type() == "arrow_function" {
		kind = model.ScopeArrow
	}
	newIdx := arena.push(kind, start, end, scopeIdx)

	if n.Type() == "function_declaration" || n.Type() == "generator_function_declaration" {
		if nameNode := n.ChildByFieldName("name"); !nameNode.IsNull() {
			ns, _ := nameNode.Span()
			arena.Scopes[scopeIdx].Bindings = append(arena.Scopes[scopeIdx].Bindings,
				model.Binding{Name: nameNode.Text(src), Kind: model.BindFunction, Offset: ns})
		}
	}

	var bindings []model.Binding
	if params := n.ChildByFieldName("parameters"); !params.IsNull() {
		for i := 0; i < params.NamedChildCount(); i++ {
			flattenPattern(params.NamedChild(i), src, model.BindParam, &bindings)
		}
	} else if p := n.ChildByFieldName("parameter"); !p.IsNull() {
		// bare single-identifier arrow parameter: x => ...
		flattenPattern(p, src, model.BindParam, &bindings)
	}
	arena.Scopes[newIdx].Bindings = append(arena.Scopes[newIdx].Bindings, bindings...)

	if body := n.ChildByFieldName("body"); !body.IsNull() {
		if body.Type() == "statement_block" {
			walk(body, src, arena, newIdx, true)
		} else {
			walk(body, src, arena, newIdx, false)
		}
	}
}

func walkClass(n *parse.Node, src []byte, arena *Arena, scopeIdx int) {
	start, end := n.Span()
	newIdx := arena.push(model.ScopeClass, start, end, scopeIdx)
	if n.Type() == "class_declaration" {
		if nameNode := n.ChildByFieldName("name"); !nameNode.IsNull() {
			ns, _ := nameNode.Span()
			arena.Scopes[scopeIdx].Bindings = append(arena.Scopes[scopeIdx].Bindings,
				model.Binding{Name: nameNode.Text(src), Kind: model.BindClass, Offset: ns})
		}
	}
	for i := 0; i < n.ChildCount(); i++ {
		walk(n.Child(i), src, arena, newIdx, false)
	}
}

func walkVariableDeclaration(n *parse.Node, src []byte, arena *Arena, scopeIdx int) {
	text := n.Text(src)
	kind := model.BindVar
	switch {
	case strings.HasPrefix(text, "let"):
		kind = model.BindLet
	case strings.HasPrefix(text, "const"):
		kind = model.BindConst
	}
	for i := 0; i < n.NamedChildCount(); i++ {
		decl := n.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		var bindings []model.Binding
		flattenPattern(nameNode, src, kind, &bindings)
		arena.Scopes[scopeIdx].Bindings = append(arena.Scopes[scopeIdx].Bindings, bindings...)
		if value := decl.ChildByFieldName("value"); !value.IsNull() {
			walk(value, src, arena, scopeIdx, false)
		}
	}
}

// flattenPattern recurses through identifier / object / array / assignment /
// rest binding patterns, recording each identifier once. A `{key: local}`
// destructuring pair binds local, not key.
func flattenPattern(n *parse.Node, src []byte, kind model.BindingKind, out *[]model.Binding) {
	if n.IsNull() {
		return
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		start, _ := n.Span()
		*out = append(*out, model.Binding{Name: n.Text(src), Kind: kind, Offset: start})

	case "object_pattern":
		for i := 0; i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "pair_pattern", "object_assignment_pattern":
				value := child.ChildByFieldName("value")
				if value.IsNull() {
					value = child.ChildByFieldName("left")
				}
				flattenPattern(value, src, kind, out)
			case "rest_pattern":
				if child.NamedChildCount() > 0 {
					flattenPattern(child.NamedChild(0), src, kind, out)
				}
			default:
				flattenPattern(child, src, kind, out)
			}
		}

	case "array_pattern":
		for i := 0; i < n.NamedChildCount(); i++ {
			flattenPattern(n.NamedChild(i), src, kind, out)
		}

	case "assignment_pattern":
		flattenPattern(n.ChildByFieldName("left"), src, kind, out)

	case "rest_pattern":
		if n.NamedChildCount() > 0 {
			flattenPattern(n.NamedChild(0), src, kind, out)
		}

	default:
		for i := 0; i < n.NamedChildCount(); i++ {
			flattenPattern(n.NamedChild(i), src, kind, out)
		}
	}
}
