package types

import (
	"testing"

	"github.com/cottand/itir/irerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unifyAll(t *testing.T, f *Fresher, root Type, pairs ...[2]Type) (Type, error) {
	t.Helper()
	cs := NewConstraintSet()
	for _, p := range pairs {
		cs.Add(p[0], p[1])
	}
	return Unify(f, root, cs)
}

func TestUnifyPrimitiveConflict(t *testing.T) {
	f := NewFresher()
	_, err := unifyAll(t, f, IntDtype, [2]Type{IntDtype, FloatDtype})

	require.Error(t, err)
	assert.Equal(t, irerr.UnificationConflictCode, irerr.CodeOf(err))
	assert.Contains(t, err.Error(), "int ≡ float")
}

func TestUnifyNestedPrimitiveConflict(t *testing.T) {
	f := NewFresher()
	v := f.Fresh()
	_, err := unifyAll(t, f, v,
		[2]Type{v, Val{Kind: Value{}, Dtype: IntDtype, Size: Scalar{}}},
		[2]Type{v, Val{Kind: Value{}, Dtype: FloatDtype, Size: Scalar{}}},
	)
	assert.Equal(t, irerr.UnificationConflictCode, irerr.CodeOf(err))
}

func TestUnifyShapeConflict(t *testing.T) {
	f := NewFresher()
	_, err := unifyAll(t, f, EmptyTuple{},
		[2]Type{TupleFrom(IntDtype), TupleFrom(IntDtype, IntDtype)},
	)
	assert.Equal(t, irerr.UnificationConflictCode, irerr.CodeOf(err))

	_, err = unifyAll(t, f, EmptyTuple{},
		[2]Type{FunctionDefinitionType{Name: "f", Fun: f.Fresh()}, FunctionDefinitionType{Name: "g", Fun: f.Fresh()}},
	)
	assert.Equal(t, irerr.UnificationConflictCode, irerr.CodeOf(err))
}

func TestUnifyOccursCheck(t *testing.T) {
	f := NewFresher()
	v := f.Fresh()
	_, err := unifyAll(t, f, v, [2]Type{v, TupleFrom(v)})

	require.Error(t, err)
	assert.Equal(t, irerr.UnificationConflictCode, irerr.CodeOf(err))
	assert.Contains(t, err.Error(), "occurs check")
}

func TestUnifyFollowsChains(t *testing.T) {
	f := NewFresher()
	a, b, c := f.Fresh(), f.Fresh(), f.Fresh()
	solved, err := unifyAll(t, f, FunctionType{Args: TupleFrom(a), Ret: b},
		[2]Type{a, b},
		[2]Type{b, c},
		[2]Type{c, Val{Kind: Iterator{}, Dtype: FloatDtype, Size: Column{}}},
	)
	require.NoError(t, err)
	assert.Equal(t, "(It[floatᶜ]) → It[floatᶜ]", Pretty(solved))
}

func TestUnifyValTupleAgainstTuple(t *testing.T) {
	f := NewFresher()
	dtypes, kind := f.Fresh(), f.Fresh()
	vt := ValTuple{Kind: kind, Dtypes: dtypes, Size: Column{}}
	tuple := TupleFrom(
		Val{Kind: Iterator{}, Dtype: IntDtype, Size: Column{}},
		Val{Kind: Iterator{}, Dtype: FloatDtype, Size: Column{}},
	)

	solved, err := unifyAll(t, f, vt, [2]Type{vt, tuple})
	require.NoError(t, err)
	assert.Equal(t, "(It[intᶜ], It[floatᶜ])", Pretty(solved))
	assert.True(t, Equal(solved, tuple))
	assert.True(t, Equal(tuple, solved))
}

func TestUnifyValTupleAgainstPartialTuple(t *testing.T) {
	f := NewFresher()
	dtypes, tail := f.Fresh(), f.Fresh()
	vt := ValTuple{Kind: Iterator{}, Dtypes: dtypes, Size: Scalar{}}
	partial := Tuple{Front: Val{Kind: Iterator{}, Dtype: BoolDtype, Size: Scalar{}}, Others: tail}

	solved, err := unifyAll(t, f, partial, [2]Type{vt, partial})
	require.NoError(t, err)
	// the tail becomes a row of the remaining iterators, of unknown length
	assert.Equal(t, "(It[boolˢ]):(It[Tˢ], …)₀", Pretty(Reindex(solved)))
}

func TestUnifyValTupleAgainstEmptyTuple(t *testing.T) {
	f := NewFresher()
	vt := ValTuple{Kind: Value{}, Dtypes: f.Fresh(), Size: f.Fresh()}

	solved, err := unifyAll(t, f, vt, [2]Type{EmptyTuple{}, vt})
	require.NoError(t, err)
	assert.Equal(t, "()", Pretty(solved))
	assert.Equal(t, ValTuple{Kind: Value{}, Dtypes: EmptyTuple{}, Size: TypeVar{Idx: 1}}, solved)
}

func TestUnifyValTupleArityConflict(t *testing.T) {
	f := NewFresher()
	vt := ValTuple{Kind: Value{}, Dtypes: TupleFrom(IntDtype), Size: Scalar{}}
	_, err := unifyAll(t, f, vt, [2]Type{vt, EmptyTuple{}})
	assert.Equal(t, irerr.UnificationConflictCode, irerr.CodeOf(err))
}

func TestConstraintSetIgnoresOrientation(t *testing.T) {
	f := NewFresher()
	a := f.Fresh()
	cs := NewConstraintSet()
	cs.Add(a, IntDtype)
	cs.Add(IntDtype, a)
	cs.Add(a, IntDtype)
	cs.Add(a, FloatDtype)

	assert.Equal(t, 2, cs.Len())
	assert.Equal(t, "{T₀ ≡ int, T₀ ≡ float}", cs.String())
}
