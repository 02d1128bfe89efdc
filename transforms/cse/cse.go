// Package cse implements common subexpression elimination over iterator IR trees.
package cse

import (
	"github.com/cottand/itir/internal/log"
	"github.com/cottand/itir/ir"
	"github.com/cottand/itir/util"
	"github.com/hashicorp/go-set/v3"
)

var logger = log.DefaultLogger.With("section", "cse")

// Eliminator rewrites trees so that repeated subexpressions are computed once.
//
// An Eliminator numbers the symbols it introduces (_cs_1, _cs_2...) in the
// order it creates them, so the same input always produces the same names
// when given a new Eliminator.
//
// Names already used in the trees it visits are skipped, so that the symbols
// it introduces never capture existing ones.
type Eliminator struct {
	uids  util.UIDGenerator
	taken *set.Set[string]
}

// Eliminate runs a new Eliminator over n.
//
// For example, (x + x) + (x + x) becomes (λ(_cs_1) → _cs_1 + _cs_1)(x + x)
func Eliminate(n ir.Node) ir.Node {
	return (&Eliminator{}).Visit(n)
}

// Visit returns a copy of n with common subexpressions eliminated. n is not modified.
func (e *Eliminator) Visit(n ir.Node) ir.Node {
	e.avoidNamesIn(n)
	switch n := n.(type) {
	case ir.Expr:
		return e.visitExpr(n)
	case *ir.Sym:
		copied := *n
		return &copied
	case *ir.FunctionDefinition:
		return &ir.FunctionDefinition{ID: n.ID, Params: copySyms(n.Params), Expr: e.visitExpr(n.Expr)}
	case *ir.StencilClosure:
		return e.visitClosure(n)
	case *ir.FencilDefinition:
		fencil := &ir.FencilDefinition{ID: n.ID, Params: copySyms(n.Params)}
		for _, fd := range n.FunctionDefinitions {
			fencil.FunctionDefinitions = append(fencil.FunctionDefinitions, e.Visit(fd).(*ir.FunctionDefinition))
		}
		for _, c := range n.Closures {
			fencil.Closures = append(fencil.Closures, e.visitClosure(c))
		}
		return fencil
	}
	panic("unreachable: unknown node " + n.Describe())
}

func (e *Eliminator) avoidNamesIn(n ir.Node) {
	if e.taken == nil {
		e.taken = set.New[string](0)
	}
	ir.Walk(n, func(n ir.Node) bool {
		switch n := n.(type) {
		case *ir.Sym:
			e.taken.Insert(n.ID)
		case *ir.SymRef:
			e.taken.Insert(n.ID)
		}
		return true
	})
}

// freshName is the next _cs_N not used in any tree e visited
func (e *Eliminator) freshName() string {
	for {
		id := e.uids.SequentialID("_cs")
		if !e.taken.Contains(id) {
			return id
		}
	}
}

func (e *Eliminator) visitClosure(n *ir.StencilClosure) *ir.StencilClosure {
	return &ir.StencilClosure{
		Domain:  e.visitExpr(n.Domain),
		Stencil: e.visitExpr(n.Stencil),
		Output:  e.visitExpr(n.Output),
		Inputs:  e.visitExprs(n.Inputs),
	}
}

func (e *Eliminator) visitExprs(exprs []ir.Expr) []ir.Expr {
	visited := make([]ir.Expr, len(exprs))
	for i, expr := range exprs {
		visited[i] = e.visitExpr(expr)
	}
	return visited
}

func (e *Eliminator) visitExpr(n ir.Expr) ir.Expr {
	switch n := n.(type) {
	case *ir.FunCall:
		return e.visitFunCall(n)
	case *ir.Lambda:
		return &ir.Lambda{Params: copySyms(n.Params), Expr: e.visitExpr(n.Expr)}
	}
	return ir.Transform(n, identity)
}

func (e *Eliminator) visitFunCallChildren(n *ir.FunCall) *ir.FunCall {
	return &ir.FunCall{Fun: e.visitExpr(n.Fun), Args: e.visitExprs(n.Args)}
}

func (e *Eliminator) visitFunCall(n *ir.FunCall) ir.Expr {
	if ref, ok := n.Fun.(*ir.SymRef); ok && ir.IsDomainBuiltin(ref.ID) {
		return ir.Transform(n, identity)
	}

	// occurrences are replaced by identity, so every position needs its own node
	n = ir.Transform(n, identity).(*ir.FunCall)
	subexprs := Collect(n)

	// map every occurrence of a repeated subexpression to a fresh symbol
	replacements := make(map[ir.Expr]string)
	var params []*ir.Sym
	var args []ir.Expr
	for _, c := range subexprs.All() {
		if c.Count() <= 1 {
			continue
		}
		// it goes away together with its parent
		if parent := subexprs.Lookup(c.Parent); parent != nil && parent.Count() > 1 {
			continue
		}
		id := e.freshName()
		params = append(params, &ir.Sym{ID: id})
		args = append(args, c.Expr)
		for _, occurrence := range c.Occurrences {
			replacements[occurrence] = id
		}
	}
	if len(replacements) == 0 {
		return e.visitFunCallChildren(n)
	}
	logger.Debug("eliminating common subexpressions", "count", len(params), "node", n)

	return e.visitFunCallChildren(&ir.FunCall{
		Fun:  &ir.Lambda{Params: params, Expr: replace(n, replacements)},
		Args: args,
	})
}

// replace copies n top-down, swapping the nodes in replacements (by identity)
// for references to their symbol
func replace(n ir.Expr, replacements map[ir.Expr]string) ir.Expr {
	if id, ok := replacements[n]; ok {
		return ir.Ref(id)
	}
	switch n := n.(type) {
	case *ir.Lambda:
		return &ir.Lambda{Params: copySyms(n.Params), Expr: replace(n.Expr, replacements)}
	case *ir.FunCall:
		args := make([]ir.Expr, len(n.Args))
		for i, arg := range n.Args {
			args[i] = replace(arg, replacements)
		}
		return &ir.FunCall{Fun: replace(n.Fun, replacements), Args: args}
	}
	return ir.Transform(n, identity)
}

func identity(e ir.Expr) ir.Expr { return e }

func copySyms(syms []*ir.Sym) []*ir.Sym {
	copied := make([]*ir.Sym, len(syms))
	for i, s := range syms {
		copied[i] = &ir.Sym{ID: s.ID}
	}
	return copied
}
