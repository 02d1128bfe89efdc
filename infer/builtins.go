package infer

import (
	"github.com/cottand/itir/types"
)

// builtinTypes are the signatures of the builtins that can be typed like
// ordinary functions. Their variables are placeholders: every use of a builtin
// gets a freshened copy.
var builtinTypes = func() map[string]types.Type {
	t0, t1, t2 := types.TypeVar{Idx: 0}, types.TypeVar{Idx: 1}, types.TypeVar{Idx: 2}
	itT0T1 := types.Val{Kind: types.Iterator{}, Dtype: t0, Size: t1}
	valT0T1 := types.Val{Kind: types.Value{}, Dtype: t0, Size: t1}
	valT0Scalar := types.Val{Kind: types.Value{}, Dtype: t0, Size: types.Scalar{}}
	valBoolT1 := types.Val{Kind: types.Value{}, Dtype: types.BoolDtype, Size: t1}

	binary := types.FunctionType{Args: types.TupleFrom(valT0T1, valT0T1), Ret: valT0T1}
	comparison := types.FunctionType{Args: types.TupleFrom(valT0T1, valT0T1), Ret: valBoolT1}
	logical := types.FunctionType{Args: types.TupleFrom(valBoolT1, valBoolT1), Ret: valBoolT1}

	return map[string]types.Type{
		"deref":      types.FunctionType{Args: types.TupleFrom(itT0T1), Ret: valT0T1},
		"can_deref":  types.FunctionType{Args: types.TupleFrom(itT0T1), Ret: valBoolT1},
		"plus":       binary,
		"minus":      binary,
		"multiplies": binary,
		"divides":    binary,
		"eq":         comparison,
		"less":       comparison,
		"greater":    comparison,
		"and_":       logical,
		"or_":        logical,
		"xor_":       logical,
		"not_":       types.FunctionType{Args: types.TupleFrom(valBoolT1), Ret: valBoolT1},
		"if_":        types.FunctionType{Args: types.TupleFrom(valBoolT1, valT0T1, valT0T1), Ret: valT0T1},
		"cast_":      binary,
		"lift": types.FunctionType{
			Args: types.TupleFrom(types.FunctionType{Args: types.ValTuple{Kind: types.Iterator{}, Dtypes: t2, Size: t1}, Ret: valT0T1}),
			Ret:  types.FunctionType{Args: types.ValTuple{Kind: types.Iterator{}, Dtypes: t2, Size: t1}, Ret: itT0T1},
		},
		"reduce": types.FunctionType{
			Args: types.TupleFrom(
				types.FunctionType{
					Args: types.Tuple{Front: valT0T1, Others: types.ValTuple{Kind: types.Value{}, Dtypes: t2, Size: t1}},
					Ret:  valT0T1,
				},
				valT0T1,
			),
			Ret: types.FunctionType{Args: types.ValTuple{Kind: types.Iterator{}, Dtypes: t2, Size: t1}, Ret: valT0T1},
		},
		"scan": types.FunctionType{
			Args: types.TupleFrom(
				types.FunctionType{
					Args: types.Tuple{Front: valT0Scalar, Others: types.ValTuple{Kind: types.Iterator{}, Dtypes: t2, Size: types.Scalar{}}},
					Ret:  valT0Scalar,
				},
				types.Val{Kind: types.Value{}, Dtype: types.BoolDtype, Size: types.Scalar{}},
				valT0Scalar,
			),
			Ret: types.FunctionType{
				Args: types.ValTuple{Kind: types.Iterator{}, Dtypes: t2, Size: types.Column{}},
				Ret:  types.Val{Kind: types.Value{}, Dtype: t0, Size: types.Column{}},
			},
		},
		"named_range": types.FunctionType{
			Args: types.TupleFrom(
				types.Val{Kind: types.Value{}, Dtype: types.AxisDtype, Size: types.Scalar{}},
				types.Val{Kind: types.Value{}, Dtype: types.IntDtype, Size: types.Scalar{}},
				types.Val{Kind: types.Value{}, Dtype: types.IntDtype, Size: types.Scalar{}},
			),
			Ret: types.Val{Kind: types.Value{}, Dtype: types.NamedRangeDtype, Size: types.Scalar{}},
		},
	}
}()

// BuiltinType returns the signature of a builtin that has one, with fresh variables from f
func BuiltinType(f *types.Fresher, name string) (types.Type, bool) {
	t, ok := builtinTypes[name]
	if !ok {
		return nil, false
	}
	return f.Freshen(t), true
}
