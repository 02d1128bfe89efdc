package ir

import "strconv"

// constructors to keep building trees by hand readable, mostly for tests and
// for passes that synthesise new nodes

func Ref(id string) *SymRef { return &SymRef{ID: id} }

func Syms(ids ...string) []*Sym {
	syms := make([]*Sym, len(ids))
	for i, id := range ids {
		syms[i] = &Sym{ID: id}
	}
	return syms
}

// Lam builds `λ(params) → body`
func Lam(params []string, body Expr) *Lambda {
	return &Lambda{Params: Syms(params...), Expr: body}
}

// Call builds a call to the builtin or symbol named fun
func Call(fun string, args ...Expr) *FunCall {
	return &FunCall{Fun: Ref(fun), Args: args}
}

// CallOf builds a call whose function position is an arbitrary expression
func CallOf(fun Expr, args ...Expr) *FunCall {
	return &FunCall{Fun: fun, Args: args}
}

func IntLit(i int) *Literal { return &Literal{Value: strconv.Itoa(i), Type: "int"} }

func FloatLit(f float64) *Literal {
	return &Literal{Value: strconv.FormatFloat(f, 'g', -1, 64), Type: "float"}
}

func BoolLit(b bool) *Literal { return &Literal{Value: strconv.FormatBool(b), Type: "bool"} }

func Offset(value string) *OffsetLiteral { return &OffsetLiteral{Value: value} }

func Axis(value string) *AxisLiteral { return &AxisLiteral{Value: value} }
