// Package model holds the shared data types produced and consumed by every
// analysis in bundlescope: function spans, scopes, patch results, landmarks
// and cross-version diffs. Every type here borrows conceptually from the
// SourceBuffer that produced it; context substrings are copied for output,
// nothing else is.
package model

// SourceBuffer is the immutable byte sequence every offset in this package
// is relative to. It is never mutated after construction.
type SourceBuffer []byte

// Warning is a non-fatal advisory attached to a result (patch checks and I/O
// tracing). Landmark enrichment skipped over its cap attaches no Warning.
type Warning struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// FunctionSpan is the result of a C4 boundary scan: the byte range of one
// function form plus its parsed signature text and parameter list.
type FunctionSpan struct {
	SigStart      int      `json:"sigStart" yaml:"sigStart"`
	BodyOpenBrace int      `json:"bodyOpenBrace" yaml:"bodyOpenBrace"`
	BodyEnd       int      `json:"bodyEnd" yaml:"bodyEnd"`
	SignatureText string   `json:"signatureText" yaml:"signatureText"`
	ParameterList []string `json:"parameterList" yaml:"parameterList"`
	ParamCount    int      `json:"paramCount" yaml:"paramCount"`
	// Depth is this span's position in the nesting stack for a given query
	// offset; 0 is the tightest (innermost) enclosing function.
	Depth int `json:"depth" yaml:"depth"`
}

// Span returns the byte length of buffer[SigStart:BodyEnd], used to rank
// candidates by tightness during enclosing-function resolution.
func (f FunctionSpan) Span() int { return f.BodyEnd - f.SigStart }

// FunctionEntry is one row of a function map (C9): every function-like node
// found in a parsed tree, with enough metadata to fingerprint and diff it
// across bundle versions.
type FunctionEntry struct {
	Name             string   `json:"name" yaml:"name"`
	Start            int      `json:"start" yaml:"start"`
	End              int      `json:"end" yaml:"end"`
	ParamCount       int      `json:"paramCount" yaml:"paramCount"`
	IsAsync          bool     `json:"isAsync" yaml:"isAsync"`
	IsGenerator      bool     `json:"isGenerator" yaml:"isGenerator"`
	SignaturePrefix  string   `json:"signaturePrefix" yaml:"signaturePrefix"`
	StringsUsed      []string `json:"stringsUsed,omitempty" yaml:"stringsUsed,omitempty"`
	// ContentHash is a hex-encoded HighwayHash-128 digest of the function's
	// own byte span, independent of the identifier-insensitive fingerprint.
	// Two entries sharing one are exact content duplicates rather than
	// Fingerprint's coarser structural equivalents.
	ContentHash string `json:"contentHash,omitempty" yaml:"contentHash,omitempty"`
}

// AnonymousName is the placeholder used when a function cannot be named from
// a surrounding declarator, property key, or identifier.
const AnonymousName = "<anonymous>"

// BindingKind enumerates the ways a name can be bound within a Scope.
type BindingKind string

const (
	BindParam       BindingKind = "Param"
	BindVar         BindingKind = "Var"
	BindLet         BindingKind = "Let"
	BindConst       BindingKind = "Const"
	BindFunction    BindingKind = "Function"
	BindClass       BindingKind = "Class"
	BindCatch       BindingKind = "Catch"
	BindDestructured BindingKind = "Destructured"
)

// Binding is one name introduced into a Scope.
type Binding struct {
	Name   string      `json:"name" yaml:"name"`
	Kind   BindingKind `json:"kind" yaml:"kind"`
	Offset int         `json:"offset" yaml:"offset"`
}

// ScopeKind enumerates the lexical-scope-tree node kinds.
type ScopeKind string

const (
	ScopeModule   ScopeKind = "Module"
	ScopeFunction ScopeKind = "Function"
	ScopeArrow    ScopeKind = "Arrow"
	ScopeClass    ScopeKind = "Class"
	ScopeBlock    ScopeKind = "Block"
	ScopeFor      ScopeKind = "For"
	ScopeCatch    ScopeKind = "Catch"
)

// Scope is one node of the lexical scope tree. Scopes are stored in a flat
// arena (see tree/scope.Arena); Parent is resolved by index, not pointer, so
// the tree has no cycles to manage.
type Scope struct {
	Kind     ScopeKind `json:"kind" yaml:"kind"`
	Start    int       `json:"start" yaml:"start"`
	End      int       `json:"end" yaml:"end"`
	Bindings []Binding `json:"bindings" yaml:"bindings"`
	Parent   int       `json:"parent" yaml:"parent"` // index into the arena, -1 for the module scope
}

// PatchStatus is the result of a uniqueness check against a buffer.
type PatchStatus string

const (
	StatusNotFound  PatchStatus = "NotFound"
	StatusUnique    PatchStatus = "Unique"
	StatusAmbiguous PatchStatus = "Ambiguous"
)

// PatchMatch is one occurrence found by the patch validator or pattern search.
type PatchMatch struct {
	Offset         int               `json:"offset" yaml:"offset"`
	MatchText      string            `json:"matchText" yaml:"matchText"`
	Context        string            `json:"context" yaml:"context"`
	ContextOffset  int               `json:"contextOffset" yaml:"contextOffset"`
	Captures       []string          `json:"captures,omitempty" yaml:"captures,omitempty"`
	NamedCaptures  map[string]string `json:"namedCaptures,omitempty" yaml:"namedCaptures,omitempty"`
}

// Preview is a replacement preview rendered only when a patch check resolves
// to exactly one match.
type Preview struct {
	BeforeWindow string `json:"beforeWindow" yaml:"beforeWindow"`
	AfterWindow  string `json:"afterWindow" yaml:"afterWindow"`
}

// PatchResult is the outcome of a patch-validator run (C6).
type PatchResult struct {
	Status   PatchStatus  `json:"status" yaml:"status"`
	Matches  []PatchMatch `json:"matches" yaml:"matches"`
	Warnings []Warning    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Preview  *Preview     `json:"preview,omitempty" yaml:"preview,omitempty"`
}

// StringLiteral is a landmark: a string or template literal (without
// interpolation) surviving minification, usable as a stable navigation anchor.
type StringLiteral struct {
	Content             string `json:"content" yaml:"content"`
	Offset              int    `json:"offset" yaml:"offset"`
	Length              int    `json:"length" yaml:"length"`
	EnclosingFunction   string `json:"enclosingFunction,omitempty" yaml:"enclosingFunction,omitempty"`
}

// FunctionShift records the byte-offset displacement of an unchanged function
// across two bundle versions.
type FunctionShift struct {
	V1    FunctionEntry `json:"v1" yaml:"v1"`
	V2    FunctionEntry `json:"v2" yaml:"v2"`
	Shift int           `json:"shift" yaml:"shift"`
}

// FunctionModification records a fuzzy-matched function across two versions.
type FunctionModification struct {
	V1             FunctionEntry `json:"v1" yaml:"v1"`
	V2             FunctionEntry `json:"v2" yaml:"v2"`
	SizeDiff       int           `json:"sizeDiff" yaml:"sizeDiff"`
	AddedStrings   []string      `json:"addedStrings" yaml:"addedStrings"`
	RemovedStrings []string      `json:"removedStrings" yaml:"removedStrings"`
	Similarity     float64       `json:"similarity" yaml:"similarity"`
}

// DiffResult is the outcome of a cross-version function-map diff (C9).
type DiffResult struct {
	Unchanged []FunctionShift         `json:"unchanged" yaml:"unchanged"`
	Modified  []FunctionModification  `json:"modified" yaml:"modified"`
	Added     []FunctionEntry         `json:"added" yaml:"added"`
	Removed   []FunctionEntry         `json:"removed" yaml:"removed"`
}
