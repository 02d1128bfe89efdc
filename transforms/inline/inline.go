// Package inline substitutes the arguments of calls to lambdas into the lambda bodies.
package inline

import (
	"iter"
	"slices"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/itir/internal/log"
	"github.com/cottand/itir/ir"
	"github.com/cottand/itir/util"
	"github.com/hashicorp/go-set/v3"
	sset "github.com/xtgo/set"
)

var logger = log.DefaultLogger.With("section", "inline")

type Options struct {
	// OpcountPreserving only inlines an argument when that does not make the
	// result compute it more times than the call did. Arguments which are
	// symbols or literals are always inlined.
	OpcountPreserving bool
	// ForceInlineLift always inlines arguments of the form lift(stencil)(args...)
	ForceInlineLift bool
}

// InlineLambdas returns a copy of n where calls `(λ(params) → body)(args)` are
// replaced by body with every param substituted by its argument, innermost calls first.
//
// For example:
//
//	(λ(x) → x)(y)         becomes  y
//	(λ(x) → x + x)(y + y) becomes  y + y + (y + y)
//	                      or stays as is with Options.OpcountPreserving
//
// n is not modified.
func InlineLambdas(n ir.Node, opts Options) ir.Node {
	switch n := n.(type) {
	case ir.Expr:
		return inlineExpr(n, opts)
	case *ir.Sym:
		return &ir.Sym{ID: n.ID}
	case *ir.FunctionDefinition:
		return &ir.FunctionDefinition{ID: n.ID, Params: copySyms(n.Params), Expr: inlineExpr(n.Expr, opts)}
	case *ir.StencilClosure:
		return inlineClosure(n, opts)
	case *ir.FencilDefinition:
		fencil := &ir.FencilDefinition{ID: n.ID, Params: copySyms(n.Params)}
		for _, fd := range n.FunctionDefinitions {
			fencil.FunctionDefinitions = append(fencil.FunctionDefinitions, InlineLambdas(fd, opts).(*ir.FunctionDefinition))
		}
		for _, c := range n.Closures {
			fencil.Closures = append(fencil.Closures, inlineClosure(c, opts))
		}
		return fencil
	}
	panic("unreachable: unknown node " + n.Describe())
}

func inlineClosure(n *ir.StencilClosure, opts Options) *ir.StencilClosure {
	inputs := make([]ir.Expr, len(n.Inputs))
	for i, input := range n.Inputs {
		inputs[i] = inlineExpr(input, opts)
	}
	return &ir.StencilClosure{
		Domain:  inlineExpr(n.Domain, opts),
		Stencil: inlineExpr(n.Stencil, opts),
		Output:  inlineExpr(n.Output, opts),
		Inputs:  inputs,
	}
}

func inlineExpr(e ir.Expr, opts Options) ir.Expr {
	return ir.Transform(e, func(e ir.Expr) ir.Expr {
		call, ok := e.(*ir.FunCall)
		if !ok {
			return e
		}
		if _, ok := call.Fun.(*ir.Lambda); !ok {
			return e
		}
		return inlineLambda(call, opts)
	})
}

// inlineLambda inlines a single call whose function is a Lambda. Parameters that
// can not be inlined stay bound by a smaller lambda around the result.
func inlineLambda(call *ir.FunCall, opts Options) ir.Expr {
	lambda := call.Fun.(*ir.Lambda)
	if len(lambda.Params) != len(call.Args) {
		logger.Warn("not inlining call with wrong number of arguments", "call", call)
		return call
	}

	eligible := make([]bool, len(lambda.Params))
	for i := range eligible {
		eligible[i] = true
	}
	if opts.OpcountPreserving {
		counts := countRefs(lambda.Expr, lambda.Params)
		for i, param := range lambda.Params {
			if counts[param.ID] != 1 && !isTrivial(call.Args[i]) {
				eligible[i] = false
			}
		}
	}
	if opts.ForceInlineLift {
		for i, arg := range call.Args {
			if isLiftedStencilCall(arg) {
				eligible[i] = true
			}
		}
	}
	if len(lambda.Params) > 0 && !slices.Contains(eligible, true) {
		return call
	}

	var inlined []ir.Expr
	for i, arg := range call.Args {
		if eligible[i] {
			inlined = append(inlined, arg)
		}
	}
	body := avoidCapture(lambda.Expr, inlined)

	substitutions := immutable.NewMap[string, ir.Expr](nil)
	for i, param := range lambda.Params {
		if eligible[i] {
			substitutions = substitutions.Set(param.ID, call.Args[i])
		}
	}
	body = substitute(body, substitutions)

	if !slices.Contains(eligible, false) {
		return body
	}
	var params []*ir.Sym
	var args []ir.Expr
	for i, param := range lambda.Params {
		if !eligible[i] {
			params = append(params, &ir.Sym{ID: param.ID})
			args = append(args, call.Args[i])
		}
	}
	kept := &ir.FunCall{Fun: &ir.Lambda{Params: params, Expr: body}, Args: args}
	logger.Debug("partially inlined lambda", "call", call, "result", kept)
	return kept
}

// avoidCapture renames the symbols declared inside body which are referenced by
// args, so that substituting args into body does not bind their free symbols
// to the wrong lambda. New names append _ until they are unique.
func avoidCapture(body ir.Expr, args []ir.Expr) ir.Expr {
	var refs []string
	for _, arg := range args {
		refs = append(refs, util.SortedUnique(symRefIDs(arg))...)
	}
	refs = sset.Strings(refs)
	syms := util.SortedUnique(symIDs(body))

	clashes := sset.StringsDo(sset.Inter, slices.Clone(refs), syms...)
	if len(clashes) == 0 {
		return body
	}

	taken := set.From(refs)
	taken.InsertSlice(syms)
	renames := make(map[string]string, len(clashes))
	for _, clash := range clashes {
		name := clash
		for taken.Contains(name) {
			name += "_"
		}
		taken.Insert(name)
		renames[clash] = name
	}
	logger.Debug("renaming symbols to avoid capture", "renames", renames, "body", body)
	return rename(body, renames, immutable.NewMap[string, string](nil))
}

// rename renames the lambda params in renames, and the references bound to them
func rename(e ir.Expr, renames map[string]string, active *immutable.Map[string, string]) ir.Expr {
	switch e := e.(type) {
	case *ir.SymRef:
		if to, ok := active.Get(e.ID); ok {
			return ir.Ref(to)
		}
		return ir.Ref(e.ID)
	case *ir.Lambda:
		params := make([]*ir.Sym, len(e.Params))
		for i, p := range e.Params {
			if to, ok := renames[p.ID]; ok {
				active = active.Set(p.ID, to)
				params[i] = &ir.Sym{ID: to}
			} else {
				active = active.Delete(p.ID)
				params[i] = &ir.Sym{ID: p.ID}
			}
		}
		return &ir.Lambda{Params: params, Expr: rename(e.Expr, renames, active)}
	case *ir.FunCall:
		args := make([]ir.Expr, len(e.Args))
		for i, arg := range e.Args {
			args[i] = rename(arg, renames, active)
		}
		return &ir.FunCall{Fun: rename(e.Fun, renames, active), Args: args}
	}
	return ir.Transform(e, identity)
}

// substitute replaces free references to the symbols in substitutions by a copy of their value
func substitute(e ir.Expr, substitutions *immutable.Map[string, ir.Expr]) ir.Expr {
	switch e := e.(type) {
	case *ir.SymRef:
		if value, ok := substitutions.Get(e.ID); ok {
			return ir.Transform(value, identity)
		}
		return ir.Ref(e.ID)
	case *ir.Lambda:
		for _, p := range e.Params {
			substitutions = substitutions.Delete(p.ID)
		}
		return &ir.Lambda{Params: copySyms(e.Params), Expr: substitute(e.Expr, substitutions)}
	case *ir.FunCall:
		args := make([]ir.Expr, len(e.Args))
		for i, arg := range e.Args {
			args[i] = substitute(arg, substitutions)
		}
		return &ir.FunCall{Fun: substitute(e.Fun, substitutions), Args: args}
	}
	return ir.Transform(e, identity)
}

// countRefs counts the references to each of params in body that are not shadowed
func countRefs(body ir.Expr, params []*ir.Sym) map[string]int {
	counts := make(map[string]int, len(params))
	tracked := immutable.NewMap[string, bool](nil)
	for _, p := range params {
		counts[p.ID] = 0
		tracked = tracked.Set(p.ID, true)
	}
	var count func(n ir.Node, tracked *immutable.Map[string, bool])
	count = func(n ir.Node, tracked *immutable.Map[string, bool]) {
		switch n := n.(type) {
		case *ir.SymRef:
			if _, ok := tracked.Get(n.ID); ok {
				counts[n.ID]++
			}
			return
		case *ir.Lambda:
			for _, p := range n.Params {
				tracked = tracked.Delete(p.ID)
			}
		}
		for _, child := range ir.Children(n) {
			count(child, tracked)
		}
	}
	count(body, tracked)
	return counts
}

func isTrivial(e ir.Expr) bool {
	switch e.(type) {
	case *ir.SymRef, *ir.Literal, *ir.OffsetLiteral:
		return true
	}
	return false
}

// isLiftedStencilCall matches lift(stencil)(args...)
func isLiftedStencilCall(e ir.Expr) bool {
	call, ok := e.(*ir.FunCall)
	return ok && ir.IsCallTo(call.Fun, ir.Lift)
}

func symRefIDs(n ir.Node) iter.Seq[string] {
	return func(yield func(string) bool) {
		stopped := false
		ir.Walk(n, func(n ir.Node) bool {
			if ref, ok := n.(*ir.SymRef); ok && !stopped {
				stopped = !yield(ref.ID)
			}
			return !stopped
		})
	}
}

func symIDs(n ir.Node) iter.Seq[string] {
	return func(yield func(string) bool) {
		stopped := false
		ir.Walk(n, func(n ir.Node) bool {
			if sym, ok := n.(*ir.Sym); ok && !stopped {
				stopped = !yield(sym.ID)
			}
			return !stopped
		})
	}
}

func identity(e ir.Expr) ir.Expr { return e }

func copySyms(syms []*ir.Sym) []*ir.Sym {
	copied := make([]*ir.Sym, len(syms))
	for i, s := range syms {
		copied[i] = &ir.Sym{ID: s.ID}
	}
	return copied
}
