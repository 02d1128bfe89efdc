package ir

// when adding node kinds here, you should add them to the switch cases in:
// - ir:equal.go/Equal
// - ir:showExpr.go/showWalker
// - infer:infer.go/inferNode
// - transforms/cse:collect.go/visit and cse.go/visit

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// Node is any element of an iterator IR tree.
//
// Nodes are immutable once built: passes that rewrite a tree produce new nodes
// rather than modifying existing ones. The pointer of a node is its identity.
type Node interface {
	fmt.Stringer
	// Hash is structural: equal trees have equal hashes, regardless of identity
	Hash() uint64
	// Describe is what to call this node in error messages
	Describe() string
}

// Expr is the base for all expressions.
//
// The following expressions are supported:
//
//	SymRef:         reference to a symbol (parameter, function definition or builtin)
//	Literal:        typed scalar literal like 1 or 2.0
//	AxisLiteral:    dimension literal, like K
//	OffsetLiteral:  offset tag or index, only meaningful inside shift
//	Lambda:         function abstraction
//	FunCall:        function application
type Expr interface {
	Node
	exprNode()
}

var (
	_ Expr = (*SymRef)(nil)
	_ Expr = (*Literal)(nil)
	_ Expr = (*AxisLiteral)(nil)
	_ Expr = (*OffsetLiteral)(nil)
	_ Expr = (*Lambda)(nil)
	_ Expr = (*FunCall)(nil)

	_ Node = (*Sym)(nil)
	_ Node = (*FunctionDefinition)(nil)
	_ Node = (*StencilClosure)(nil)
	_ Node = (*FencilDefinition)(nil)
)

func (*SymRef) exprNode()        {}
func (*Literal) exprNode()       {}
func (*AxisLiteral) exprNode()   {}
func (*OffsetLiteral) exprNode() {}
func (*Lambda) exprNode()        {}
func (*FunCall) exprNode()       {}

func (*Sym) Describe() string                { return "symbol declaration" }
func (*SymRef) Describe() string             { return "symbol reference" }
func (e *Literal) Describe() string          { return e.Type + " literal" }
func (*AxisLiteral) Describe() string        { return "axis literal" }
func (*OffsetLiteral) Describe() string      { return "offset literal" }
func (*Lambda) Describe() string             { return "lambda" }
func (*FunCall) Describe() string            { return "function call" }
func (*FunctionDefinition) Describe() string { return "function definition" }
func (*StencilClosure) Describe() string     { return "stencil closure" }
func (*FencilDefinition) Describe() string   { return "fencil definition" }

func (e *Sym) String() string                { return ExprString(e) }
func (e *SymRef) String() string             { return ExprString(e) }
func (e *Literal) String() string            { return ExprString(e) }
func (e *AxisLiteral) String() string        { return ExprString(e) }
func (e *OffsetLiteral) String() string      { return ExprString(e) }
func (e *Lambda) String() string             { return ExprString(e) }
func (e *FunCall) String() string            { return ExprString(e) }
func (e *FunctionDefinition) String() string { return ExprString(e) }
func (e *StencilClosure) String() string     { return ExprString(e) }
func (e *FencilDefinition) String() string   { return ExprString(e) }

// Sym declares a symbol, as a parameter of a Lambda, FunctionDefinition or FencilDefinition
type Sym struct {
	ID string
}

func (e *Sym) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Sym"))
	_, _ = h.Write([]byte(e.ID))
	return h.Sum64()
}

// SymRef references a symbol by name
type SymRef struct {
	ID string
}

func (e *SymRef) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("SymRef"))
	_, _ = h.Write([]byte(e.ID))
	return h.Sum64()
}

// Literal is a scalar constant. Type is the name of its primitive type,
// like "int", "float" or "bool", and Value its syntax.
type Literal struct {
	Value string
	Type  string
}

func (e *Literal) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Literal"))
	_, _ = h.Write([]byte(e.Value))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(e.Type))
	return h.Sum64()
}

type AxisLiteral struct {
	Value string
}

func (e *AxisLiteral) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("AxisLiteral"))
	_, _ = h.Write([]byte(e.Value))
	return h.Sum64()
}

// OffsetLiteral is either an offset tag (like "K" or "V2E") or an integer index
type OffsetLiteral struct {
	Value string
}

func (e *OffsetLiteral) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("OffsetLiteral"))
	_, _ = h.Write([]byte(e.Value))
	return h.Sum64()
}

// Lambda abstraction: `λ(x, y) → x`
type Lambda struct {
	Params []*Sym
	Expr   Expr
}

func (e *Lambda) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Lambda")
	for _, param := range e.Params {
		arr = binary.LittleEndian.AppendUint64(arr, param.Hash())
	}
	arr = binary.LittleEndian.AppendUint64(arr, e.Expr.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// FunCall is the application `f(x, y)`
type FunCall struct {
	Fun  Expr
	Args []Expr
}

func (e *FunCall) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("FunCall")
	arr = binary.LittleEndian.AppendUint64(arr, e.Fun.Hash())
	for _, arg := range e.Args {
		arr = binary.LittleEndian.AppendUint64(arr, arg.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// IsCallTo is true when e is a FunCall whose function is exactly the SymRef name
func IsCallTo(e Node, name string) bool {
	call, ok := e.(*FunCall)
	if !ok {
		return false
	}
	ref, ok := call.Fun.(*SymRef)
	return ok && ref.ID == name
}

// Transform should, in order:
//   - copy the expression
//   - call Transform(f) on any child expressions (thus copying them too)
//   - call f on this Expr
//
// In practice this means first copying the entire tree, applying f to each component bottom-up,
// and returning the result
func Transform(e Expr, f func(Expr) Expr) Expr {
	switch e := e.(type) {
	case *SymRef:
		copied := *e
		return f(&copied)
	case *Literal:
		copied := *e
		return f(&copied)
	case *AxisLiteral:
		copied := *e
		return f(&copied)
	case *OffsetLiteral:
		copied := *e
		return f(&copied)
	case *Lambda:
		copied := *e
		copied.Params = copySyms(e.Params)
		copied.Expr = Transform(e.Expr, f)
		return f(&copied)
	case *FunCall:
		copied := *e
		copied.Fun = Transform(e.Fun, f)
		copied.Args = make([]Expr, len(e.Args))
		for i, arg := range e.Args {
			copied.Args[i] = Transform(arg, f)
		}
		return f(&copied)
	}
	panic(fmt.Sprintf("unreachable: unknown expression %T", e))
}

// Walk visits n and then, if visit returned true, its children, in pre-order
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, visit)
	}
}

// Children returns the immediate child nodes of n in declaration order
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Lambda:
		children := make([]Node, 0, len(n.Params)+1)
		for _, p := range n.Params {
			children = append(children, p)
		}
		return append(children, n.Expr)
	case *FunCall:
		children := make([]Node, 0, len(n.Args)+1)
		children = append(children, n.Fun)
		for _, arg := range n.Args {
			children = append(children, arg)
		}
		return children
	case *FunctionDefinition:
		children := make([]Node, 0, len(n.Params)+1)
		for _, p := range n.Params {
			children = append(children, p)
		}
		return append(children, n.Expr)
	case *StencilClosure:
		children := []Node{n.Domain, n.Stencil, n.Output}
		for _, input := range n.Inputs {
			children = append(children, input)
		}
		return children
	case *FencilDefinition:
		var children []Node
		for _, fd := range n.FunctionDefinitions {
			children = append(children, fd)
		}
		for _, p := range n.Params {
			children = append(children, p)
		}
		for _, c := range n.Closures {
			children = append(children, c)
		}
		return children
	default:
		return nil
	}
}

func copySyms(syms []*Sym) []*Sym {
	copied := make([]*Sym, len(syms))
	for i, s := range syms {
		sym := *s
		copied[i] = &sym
	}
	return copied
}
