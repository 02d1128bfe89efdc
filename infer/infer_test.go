package infer

import (
	"testing"

	"github.com/cottand/itir/ir"
	"github.com/cottand/itir/irerr"
	"github.com/cottand/itir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itOf(dtype types.Type, size types.Type) types.Val {
	return types.Val{Kind: types.Iterator{}, Dtype: dtype, Size: size}
}

func TestInferExpressions(t *testing.T) {
	x, it := ir.Ref("x"), ir.Ref("it")
	cases := []struct {
		name     string
		expr     ir.Expr
		symtypes map[string]types.Type
		expected string
	}{
		{"int literal", ir.IntLit(1), nil, "int⁰"},
		{"axis literal", ir.Axis("K"), nil, "axisˢ"},
		{"offset literal", ir.Offset("K"), nil, "T₀"},
		{"unknown symbol", x, nil, "T₀"},
		{"type name", ir.Ref("float64"), nil, "T₀"},
		{"tuple_get of make_tuple",
			ir.Call(ir.TupleGet, ir.IntLit(1), ir.Call(ir.MakeTuple, ir.IntLit(1), ir.FloatLit(2.0))),
			nil, "float⁰"},
		{"deref of column iterator",
			ir.Call(ir.Deref, it),
			map[string]types.Type{"it": itOf(types.FloatDtype, types.Column{})},
			"floatᶜ"},
		{"deref builtin", ir.Ref(ir.Deref), nil, "(It[T₀¹]) → T₀¹"},
		{"identity", ir.Lam([]string{"a"}, ir.Ref("a")), nil, "(T₀) → T₀"},
		{"lambda of plus",
			ir.Lam([]string{"a", "b"}, ir.Call(ir.Plus, ir.Call(ir.Deref, ir.Ref("a")), ir.Call(ir.Deref, ir.Ref("b")))),
			nil, "(It[T₀¹], It[T₀¹]) → T₀¹"},
		{"comparison", ir.Lam([]string{"a"}, ir.Call("less", ir.Ref("a"), ir.FloatLit(0))), nil, "(float⁰) → bool⁰"},
		{"if_", ir.Call("if_", ir.BoolLit(true), ir.IntLit(1), ir.IntLit(2)), nil, "int⁰"},
		{"shift applied",
			ir.CallOf(ir.Call(ir.Shift, ir.Offset("K"), ir.Offset("1")), it),
			map[string]types.Type{"it": itOf(types.IntDtype, types.Column{})},
			"It[intᶜ]"},
		{"make_tuple of iterators",
			ir.Lam([]string{"a", "b"}, ir.Call(ir.MakeTuple, ir.Ref("a"), ir.Ref("b"))),
			nil, "(ItOrVal₀[T₁²], ItOrVal₀[T₃²]) → ItOrVal₀[(T₁, T₃)²]"},
		{"lift",
			ir.Call(ir.Lift, ir.Lam([]string{"a"}, ir.Call(ir.Deref, ir.Ref("a")))),
			nil, "(It[T₀¹]) → It[T₀¹]"},
		{"lift of two arguments",
			ir.Call(ir.Lift, ir.Lam([]string{"a", "b"}, ir.Call(ir.Plus, ir.Call(ir.Deref, ir.Ref("a")), ir.Call(ir.Deref, ir.Ref("b"))))),
			nil, "(It[T₀¹], It[T₀¹]) → It[T₀¹]"},
		{"named_range",
			ir.Call(ir.NamedRange, ir.Axis("K"), ir.IntLit(0), ir.IntLit(10)),
			nil, "named_rangeˢ"},
		{"cartesian_domain",
			ir.Call(ir.CartesianDomain, ir.Call(ir.NamedRange, ir.Axis("K"), ir.IntLit(0), ir.IntLit(10))),
			nil, "domainˢ"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			typ, err := Infer(c.expr, c.symtypes)
			require.NoError(t, err)
			assert.Equal(t, c.expected, types.Pretty(typ))
		})
	}
}

func TestInferErrors(t *testing.T) {
	x := ir.Ref("x")
	cases := []struct {
		name string
		node ir.Node
		code irerr.ErrCode
	}{
		{"bare shift", ir.Ref(ir.Shift), irerr.IllFormedBuiltinUsageCode},
		{"make_tuple as argument", ir.Call("apply", ir.Ref(ir.MakeTuple), x), irerr.IllFormedBuiltinUsageCode},
		{"tuple_get arity", ir.Call(ir.TupleGet, ir.IntLit(0)), irerr.IllFormedBuiltinUsageCode},
		{"tuple_get index", ir.Call(ir.TupleGet, x, x), irerr.IllFormedBuiltinUsageCode},
		{"tuple_get float index", ir.Call(ir.TupleGet, ir.FloatLit(1), x), irerr.IllFormedBuiltinUsageCode},
		{"untyped builtin", ir.Call("power", x, x), irerr.UnsupportedBuiltinCode},
		{"mixed primitives", ir.Call(ir.Plus, ir.IntLit(1), ir.FloatLit(1)), irerr.UnificationConflictCode},
		{"self application", ir.Lam([]string{"f"}, ir.CallOf(ir.Ref("f"), ir.Ref("f"))), irerr.UnificationConflictCode},
		{"closure with scalar domain", &ir.StencilClosure{
			Domain:  ir.IntLit(0),
			Stencil: ir.Lam([]string{"a"}, ir.Call(ir.Deref, ir.Ref("a"))),
			Output:  ir.Ref("out"),
			Inputs:  []ir.Expr{ir.Ref("inp")},
		}, irerr.UnificationConflictCode},
		{"duplicate function definition", &ir.FencilDefinition{
			ID: "dup",
			FunctionDefinitions: []*ir.FunctionDefinition{
				{ID: "f", Params: ir.Syms("a"), Expr: ir.Ref("a")},
				{ID: "f", Params: ir.Syms("b"), Expr: ir.Ref("b")},
			},
		}, irerr.IllFormedBuiltinUsageCode},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			typ, err := Infer(c.node, nil)
			require.Error(t, err)
			assert.Nil(t, typ)
			assert.Equal(t, c.code, irerr.CodeOf(err), err.Error())
		})
	}
}

func TestInferClosure(t *testing.T) {
	closure := &ir.StencilClosure{
		Domain:  ir.Call(ir.CartesianDomain),
		Stencil: ir.Lam([]string{"a"}, ir.Call(ir.Deref, ir.Ref("a"))),
		Output:  ir.Ref("out"),
		Inputs:  []ir.Expr{ir.Ref("inp")},
	}
	typ, err := Infer(closure, nil)
	require.NoError(t, err)
	assert.Equal(t, "(It[T₀ᶜ]) ⇒ It[T₀ᶜ]", types.Pretty(typ))
}

func copyFencil() *ir.FencilDefinition {
	return &ir.FencilDefinition{
		ID: "fencil",
		FunctionDefinitions: []*ir.FunctionDefinition{
			{ID: "f", Params: ir.Syms("x"), Expr: ir.Call(ir.Deref, ir.Ref("x"))},
			{ID: "g", Params: ir.Syms("y"), Expr: ir.Call("f", ir.Ref("y"))},
		},
		Params: ir.Syms("inp", "out"),
		Closures: []*ir.StencilClosure{{
			Domain:  ir.Call(ir.CartesianDomain, ir.Call(ir.NamedRange, ir.Axis("K"), ir.IntLit(0), ir.IntLit(10))),
			Stencil: ir.Ref("g"),
			Output:  ir.Ref("out"),
			Inputs:  []ir.Expr{ir.Ref("inp")},
		}},
	}
}

func TestInferFencilSequentialDefinitions(t *testing.T) {
	typ, err := Infer(copyFencil(), nil)
	require.NoError(t, err)
	assert.Equal(t, "{f :: (It[T₀¹]) → T₀¹, g :: (It[T₂³]) → T₂³, fencil(It[T₄ᶜ], It[T₄ᶜ])}", types.Pretty(typ))
}

func TestInferFencilDefinitionsAreLetPolymorphic(t *testing.T) {
	fencil := &ir.FencilDefinition{
		ID: "poly",
		FunctionDefinitions: []*ir.FunctionDefinition{
			{ID: "ident", Params: ir.Syms("x"), Expr: ir.Ref("x")},
			{ID: "g", Params: ir.Syms("x"), Expr: ir.Call(ir.MakeTuple, ir.Call("ident", ir.IntLit(1)), ir.Call("ident", ir.FloatLit(2)))},
		},
	}
	typ, err := Infer(fencil, nil)
	require.NoError(t, err)
	assert.Equal(t, "{ident :: (T₀) → T₀, g :: (T₁) → (int, float)², poly()}", types.Pretty(typ))
}

func TestInferFunctionDefinitionCanNotSeeLaterOnes(t *testing.T) {
	fencil := copyFencil()
	// g is declared after f, so inside f it is just an unknown symbol
	fencil.FunctionDefinitions[0].Expr = ir.Call("g", ir.Ref("x"))
	fencil.FunctionDefinitions[1].Expr = ir.Call(ir.Deref, ir.Ref("y"))

	typ, err := Infer(fencil, nil)
	require.NoError(t, err)
	assert.Equal(t, "{f :: (T₀) → T₁, g :: (It[T₂³]) → T₂³, fencil(It[T₄ᶜ], It[T₄ᶜ])}", types.Pretty(typ))
}

func TestInferIsAlphaInvariant(t *testing.T) {
	a := ir.Lam([]string{"a", "b"}, ir.Call(ir.Plus, ir.Ref("a"), ir.Call(ir.Deref, ir.Ref("b"))))
	b := ir.Lam([]string{"p", "q"}, ir.Call(ir.Plus, ir.Ref("p"), ir.Call(ir.Deref, ir.Ref("q"))))

	typA, err := Infer(a, nil)
	require.NoError(t, err)
	typB, err := Infer(b, nil)
	require.NoError(t, err)
	assert.Equal(t, typA, typB)
}

func TestInferIsRepeatable(t *testing.T) {
	first, err := Infer(copyFencil(), nil)
	require.NoError(t, err)
	second, err := Infer(copyFencil(), nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, types.Reindex(first), first)
}

func TestInferDoesNotModifySymtypes(t *testing.T) {
	symtypes := map[string]types.Type{
		"it": itOf(types.IntDtype, types.TypeVar{Idx: 0}),
		"f":  types.LetPolymorphic{Dtype: types.FunctionType{Args: types.TupleFrom(types.TypeVar{Idx: 1}), Ret: types.TypeVar{Idx: 1}}},
	}
	expr := ir.Lam([]string{"x"}, ir.Call(ir.Plus, ir.Call("f", ir.Call(ir.Deref, ir.Ref("it"))), ir.Ref("x")))

	typ, err := Infer(expr, symtypes)
	require.NoError(t, err)
	assert.Equal(t, "(int⁰) → int⁰", types.Pretty(typ))
	assert.Len(t, symtypes, 2)
	assert.Equal(t, itOf(types.IntDtype, types.TypeVar{Idx: 0}), symtypes["it"])
}

func TestInferLambdaShadowsEnv(t *testing.T) {
	symtypes := map[string]types.Type{"x": types.Val{Kind: types.Value{}, Dtype: types.BoolDtype, Size: types.Scalar{}}}
	typ, err := Infer(ir.Lam([]string{"x"}, ir.Call(ir.Plus, ir.Ref("x"), ir.IntLit(1))), symtypes)
	require.NoError(t, err)
	assert.Equal(t, "(int⁰) → int⁰", types.Pretty(typ))
}

func TestConstraints(t *testing.T) {
	root, cs, err := Constraints(ir.Call(ir.Deref, ir.Ref("it")), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cs.Len())
	assert.IsType(t, types.TypeVar{}, root)
}
