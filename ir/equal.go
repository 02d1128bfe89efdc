package ir

import "slices"

// Equal compares two trees structurally, ignoring node identity
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case *Sym:
		b, ok := b.(*Sym)
		return ok && a.ID == b.ID
	case *SymRef:
		b, ok := b.(*SymRef)
		return ok && a.ID == b.ID
	case *Literal:
		b, ok := b.(*Literal)
		return ok && *a == *b
	case *AxisLiteral:
		b, ok := b.(*AxisLiteral)
		return ok && a.Value == b.Value
	case *OffsetLiteral:
		b, ok := b.(*OffsetLiteral)
		return ok && a.Value == b.Value
	case *Lambda:
		b, ok := b.(*Lambda)
		return ok && equalAll(a.Params, b.Params) && Equal(a.Expr, b.Expr)
	case *FunCall:
		b, ok := b.(*FunCall)
		return ok && Equal(a.Fun, b.Fun) && equalAll(a.Args, b.Args)
	case *FunctionDefinition:
		b, ok := b.(*FunctionDefinition)
		return ok && a.ID == b.ID && equalAll(a.Params, b.Params) && Equal(a.Expr, b.Expr)
	case *StencilClosure:
		b, ok := b.(*StencilClosure)
		return ok &&
			Equal(a.Domain, b.Domain) &&
			Equal(a.Stencil, b.Stencil) &&
			Equal(a.Output, b.Output) &&
			equalAll(a.Inputs, b.Inputs)
	case *FencilDefinition:
		b, ok := b.(*FencilDefinition)
		return ok &&
			a.ID == b.ID &&
			equalAll(a.FunctionDefinitions, b.FunctionDefinitions) &&
			equalAll(a.Params, b.Params) &&
			equalAll(a.Closures, b.Closures)
	}
	return false
}

func equalAll[N Node](as, bs []N) bool {
	return slices.EqualFunc(as, bs, func(a, b N) bool { return Equal(a, b) })
}
