package cse

import (
	"testing"

	"github.com/cottand/itir/ir"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireTreeEqual(t *testing.T, expected, actual ir.Node) {
	t.Helper()
	if !ir.Equal(expected, actual) {
		t.Fatalf("trees differ:\nexpected: %v\nactual:   %v\n%s",
			expected, actual, pretty.Sprint(pretty.Diff(expected, actual)))
	}
}

func plus(a, b ir.Expr) ir.Expr { return ir.Call(ir.Plus, a, b) }

func TestEliminateSharedSum(t *testing.T) {
	x := ir.Ref("x")
	e := plus(plus(x, x), plus(x, x))

	result := Eliminate(e)

	assert.Equal(t, "(λ(_cs_1) → _cs_1 + _cs_1)(x + x)", result.String())
	requireTreeEqual(t,
		ir.CallOf(ir.Lam([]string{"_cs_1"}, plus(ir.Ref("_cs_1"), ir.Ref("_cs_1"))), plus(x, x)),
		result)
	// the input is left alone
	assert.Equal(t, "x + x + (x + x)", e.String())
}

func TestEliminateNeverHoistsShift(t *testing.T) {
	shifted := func() ir.Expr {
		return ir.Call(ir.Deref, ir.CallOf(ir.Call(ir.Shift, ir.Offset("K"), ir.Offset("1")), ir.Ref("it")))
	}
	e := plus(shifted(), shifted())

	result := Eliminate(e)

	requireTreeEqual(t, e, result)
	for _, c := range Collect(result).All() {
		assert.False(t, ir.IsCallTo(c.Expr, ir.Shift))
	}
}

func TestEliminateLeavesDomainsAlone(t *testing.T) {
	rng := func() ir.Expr { return ir.Call(ir.NamedRange, ir.Axis("K"), ir.IntLit(0), ir.IntLit(10)) }
	domain := ir.Call(ir.CartesianDomain, rng(), rng())

	result := Eliminate(domain)

	requireTreeEqual(t, domain, result)
	assert.NotSame(t, domain, result)
}

func TestEliminateInsideLambdaBodies(t *testing.T) {
	a := ir.Ref("a")
	body := plus(ir.Call(ir.Deref, a), ir.Call(ir.Deref, a))
	e := ir.Call("apply", ir.Lam([]string{"a"}, body), ir.Ref("inp"))

	result := Eliminate(e)

	// deref(a) can not leave the lambda binding a, but it is shared inside it
	assert.Equal(t, "apply(λ(a) → (λ(_cs_1) → _cs_1 + _cs_1)(deref(a)), inp)", result.String())
}

func TestEliminateSeveralCandidates(t *testing.T) {
	x, y := ir.Ref("x"), ir.Ref("y")
	e := ir.Call("f", plus(x, x), ir.Call(ir.Multiplies, y, y), plus(x, x), ir.Call(ir.Multiplies, y, y))

	result := Eliminate(e)

	assert.Equal(t, "(λ(_cs_1, _cs_2) → f(_cs_1, _cs_2, _cs_1, _cs_2))(x + x, y * y)", result.String())
}

func TestEliminateOnlyHoistsOutermostOfNestedRepeats(t *testing.T) {
	x := ir.Ref("x")
	inner := func() ir.Expr { return ir.Call("g", plus(x, x)) }
	e := ir.Call("f", inner(), inner())

	result := Eliminate(e)

	assert.Equal(t, "(λ(_cs_1) → f(_cs_1, _cs_1))(g(x + x))", result.String())
}

// The skip rule only looks at the first parent of a candidate. These pin
// down the results, which still compute x + x twice.
func TestEliminateParentSkipRule(t *testing.T) {
	x := ir.Ref("x")
	c := func() ir.Expr { return plus(x, x) }
	g := func() ir.Expr { return ir.Call("g", c()) }

	t.Run("first parent hoisted", func(t *testing.T) {
		result := Eliminate(ir.Call("f", g(), g(), c()))
		assert.Equal(t, "(λ(_cs_1) → f(_cs_1, _cs_1, x + x))(g(x + x))", result.String())
	})
	t.Run("first parent unique", func(t *testing.T) {
		result := Eliminate(ir.Call("f", c(), g(), g()))
		assert.Equal(t, "(λ(_cs_1, _cs_2) → f(_cs_1, _cs_2, _cs_2))(x + x, g(x + x))", result.String())
	})
}

func TestEliminateNamesAreStablePerEliminator(t *testing.T) {
	x := ir.Ref("x")
	e := plus(plus(x, x), plus(x, x))

	assert.Equal(t, Eliminate(e).String(), Eliminate(e).String())

	shared := &Eliminator{}
	first := shared.Visit(e)
	second := shared.Visit(e)
	assert.Equal(t, "(λ(_cs_1) → _cs_1 + _cs_1)(x + x)", first.String())
	assert.Equal(t, "(λ(_cs_2) → _cs_2 + _cs_2)(x + x)", second.String())
}

func TestEliminateSharedNodes(t *testing.T) {
	a := ir.Ref("a")
	sum := plus(a, a)
	// the same node in three positions, one of them under a lambda binding a
	e := ir.Call("f", sum, sum, ir.Lam([]string{"a"}, sum))

	result := Eliminate(e)

	assert.Equal(t, "(λ(_cs_1) → f(_cs_1, _cs_1, λ(a) → a + a))(a + a)", result.String())
	assert.Equal(t, "f(a + a, a + a, λ(a) → a + a)", e.String())
}

func TestEliminateSkipsNamesInUse(t *testing.T) {
	y := ir.Ref("y")
	e := ir.CallOf(ir.Lam([]string{"_cs_1"}, ir.Call("f", ir.Ref("_cs_1"), plus(y, y), plus(y, y))), ir.Ref("z"))

	result := Eliminate(e)

	assert.Equal(t, "(λ(_cs_1) → (λ(_cs_2) → f(_cs_1, _cs_2, _cs_2))(y + y))(z)", result.String())
}

func TestEliminateAgainIsStable(t *testing.T) {
	x := ir.Ref("x")
	once := Eliminate(plus(plus(x, x), plus(x, x)))

	requireTreeEqual(t, once, Eliminate(once))
}

func TestEliminateFencil(t *testing.T) {
	it := ir.Ref("it")
	derefTwice := plus(ir.Call(ir.Deref, it), ir.Call(ir.Deref, it))
	fencil := &ir.FencilDefinition{
		ID: "fencil",
		FunctionDefinitions: []*ir.FunctionDefinition{
			{ID: "f", Params: ir.Syms("it"), Expr: derefTwice},
		},
		Params: ir.Syms("inp", "out"),
		Closures: []*ir.StencilClosure{{
			Domain:  ir.Call(ir.CartesianDomain),
			Stencil: ir.Ref("f"),
			Output:  ir.Ref("out"),
			Inputs:  []ir.Expr{ir.Ref("inp")},
		}},
	}

	result, ok := Eliminate(fencil).(*ir.FencilDefinition)
	require.True(t, ok)
	assert.Equal(t, "f = λ(it) → (λ(_cs_1) → _cs_1 + _cs_1)(deref(it));", result.FunctionDefinitions[0].String())
	requireTreeEqual(t, fencil.Closures[0], result.Closures[0])
}

func TestCollectedCountsAreGoneAfterElimination(t *testing.T) {
	x, y := ir.Ref("x"), ir.Ref("y")
	trees := []ir.Expr{
		plus(plus(x, x), plus(x, x)),
		ir.Call("f", plus(x, y), ir.Lam([]string{"a"}, plus(x, y)), plus(x, y)),
		ir.Call("f", ir.Call("g", plus(x, x)), ir.Call("g", plus(x, x)), ir.Call("h", y), ir.Call("h", y)),
	}
	for _, tree := range trees {
		t.Run(tree.String(), func(t *testing.T) {
			result := Eliminate(tree)
			for _, c := range Collect(result).All() {
				assert.LessOrEqual(t, c.Count(), 1, "%v occurs %d times in %v", c.Expr, c.Count(), result)
			}
		})
	}
}

func TestCollect(t *testing.T) {
	x := ir.Ref("x")
	sum := plus(x, x)
	lam := ir.Lam([]string{"a"}, plus(ir.Ref("a"), x))
	root := ir.Call("f", sum, plus(x, x), lam, ir.Lam([]string{"b"}, sum))

	subexprs := Collect(root)

	got := subexprs.Lookup(plus(x, x))
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Count())
	assert.Same(t, sum, got.Expr)
	assert.Same(t, root, got.Parent)

	// references its own parameter, so neither it nor its body can be hoisted
	assert.Nil(t, subexprs.Lookup(lam))
	assert.Nil(t, subexprs.Lookup(lam.Expr))
	// does not reference b
	assert.NotNil(t, subexprs.Lookup(ir.Lam([]string{"b"}, plus(x, x))))
	// poisoned by lam
	assert.Nil(t, subexprs.Lookup(root))
}
