// Package infer assigns types to iterator IR trees.
//
// It walks a tree, giving every node a type term and collecting equality
// constraints between them, and then solves those constraints with types.Unify.
package infer

import (
	"fmt"
	"strconv"

	"github.com/cottand/itir/internal/log"
	"github.com/cottand/itir/ir"
	"github.com/cottand/itir/irerr"
	"github.com/cottand/itir/types"
	"github.com/pkg/errors"
)

var logger = log.DefaultLogger.With("section", "inference")

// Infer returns the most general type of n, with its variables reindexed.
//
// symtypes holds the types of names defined outside n, which may be wrapped in
// types.LetPolymorphic. It is never modified.
func Infer(n ir.Node, symtypes map[string]types.Type) (types.Type, error) {
	root, cs, f, err := generate(n, symtypes)
	if err != nil {
		return nil, errors.Wrapf(err, "type inference of %s failed", n.Describe())
	}
	unified, err := types.Unify(f, root, cs)
	if err != nil {
		return nil, errors.Wrapf(err, "type inference of %s failed", n.Describe())
	}
	return types.Reindex(unified), nil
}

// Constraints returns the type of n and the constraints it has to satisfy,
// without solving them
func Constraints(n ir.Node, symtypes map[string]types.Type) (types.Type, *types.ConstraintSet, error) {
	root, cs, _, err := generate(n, symtypes)
	return root, cs, err
}

func generate(n ir.Node, symtypes map[string]types.Type) (types.Type, *types.ConstraintSet, *types.Fresher, error) {
	env := NewEnv(symtypes)
	f := types.NewFresherAvoiding(env.Types()...)
	cs := types.NewConstraintSet()
	inf := &inferrer{fresher: f}
	root, err := inf.infer(n, cs, env)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Debug("generated constraints", "node", n, "constraints", cs.Len())
	return root, cs, f, nil
}

type inferrer struct {
	fresher *types.Fresher
}

func (inf *inferrer) fresh() types.TypeVar { return inf.fresher.Fresh() }

// freshVal is a Val whose kind, dtype and size are all unknown
func (inf *inferrer) freshVal() types.Val {
	return types.Val{Kind: inf.fresh(), Dtype: inf.fresh(), Size: inf.fresh()}
}

func illFormed(builtin, reason string) error {
	return irerr.New(irerr.NewIllFormedBuiltinUsage{Builtin: builtin, Reason: reason})
}

func (inf *inferrer) inferAll(exprs []ir.Expr, cs *types.ConstraintSet, env Env) ([]types.Type, error) {
	ts := make([]types.Type, len(exprs))
	for i, e := range exprs {
		t, err := inf.infer(e, cs, env)
		if err != nil {
			return nil, err
		}
		ts[i] = t
	}
	return ts, nil
}

func (inf *inferrer) infer(n ir.Node, cs *types.ConstraintSet, env Env) (types.Type, error) {
	switch n := n.(type) {
	case *ir.SymRef:
		return inf.inferSymRef(n, env)

	case *ir.Literal:
		return types.Val{Kind: types.Value{}, Dtype: types.Primitive{Name: n.Type}, Size: inf.fresh()}, nil

	case *ir.AxisLiteral:
		return types.Val{Kind: types.Value{}, Dtype: types.AxisDtype, Size: types.Scalar{}}, nil

	case *ir.OffsetLiteral:
		return inf.fresh(), nil

	case *ir.Lambda:
		params := make([]types.Type, len(n.Params))
		inner := env
		for i, p := range n.Params {
			params[i] = inf.fresh()
			inner = inner.With(p.ID, params[i])
		}
		ret, err := inf.infer(n.Expr, cs, inner)
		if err != nil {
			return nil, err
		}
		return types.FunctionType{Args: types.TupleFrom(params...), Ret: ret}, nil

	case *ir.FunCall:
		if ref, ok := n.Fun.(*ir.SymRef); ok {
			if t, handled, err := inf.inferGrammarCall(ref.ID, n, cs, env); handled {
				return t, err
			}
		}
		fun, err := inf.infer(n.Fun, cs, env)
		if err != nil {
			return nil, err
		}
		args, err := inf.inferAll(n.Args, cs, env)
		if err != nil {
			return nil, err
		}
		ret := inf.fresh()
		cs.Add(fun, types.FunctionType{Args: types.TupleFrom(args...), Ret: ret})
		return ret, nil

	case *ir.FunctionDefinition:
		if _, ok := env.Lookup(n.ID); ok {
			return nil, illFormed("", fmt.Sprintf("multiple definitions of symbol '%s'", n.ID))
		}
		fun, err := inf.infer(n.AsLambda(), cs, env)
		if err != nil {
			return nil, err
		}
		cs.Add(fun, types.FunctionType{Args: inf.fresh(), Ret: inf.fresh()})
		return types.FunctionDefinitionType{Name: n.ID, Fun: fun}, nil

	case *ir.StencilClosure:
		return inf.inferClosure(n, cs, env)

	case *ir.FencilDefinition:
		return inf.inferFencil(n, cs, env)
	}
	return nil, irerr.New(irerr.Unclassified{From: fmt.Errorf("can not infer the type of %s", n.Describe())})
}

func (inf *inferrer) inferSymRef(n *ir.SymRef, env Env) (types.Type, error) {
	if t, ok := env.Lookup(n.ID); ok {
		if poly, ok := t.(types.LetPolymorphic); ok {
			return inf.fresher.Freshen(poly.Dtype), nil
		}
		return t, nil
	}
	if t, ok := BuiltinType(inf.fresher, n.ID); ok {
		return t, nil
	}
	if ir.GrammarBuiltins.Contains(n.ID) {
		return nil, illFormed(n.ID, "only supported as applied/called function by the type checker")
	}
	if ir.Builtins.Contains(n.ID) && !ir.TypeBuiltins.Contains(n.ID) {
		return nil, irerr.New(irerr.NewUnsupportedBuiltin{Builtin: n.ID})
	}
	return inf.fresh(), nil
}

// inferGrammarCall types calls to builtins whose type depends on the shape of
// the call. handled is false for any other call.
func (inf *inferrer) inferGrammarCall(name string, n *ir.FunCall, cs *types.ConstraintSet, env Env) (t types.Type, handled bool, err error) {
	switch {
	case name == ir.MakeTuple:
		args, err := inf.inferAll(n.Args, cs, env)
		if err != nil {
			return nil, true, err
		}
		kind, size := inf.fresh(), inf.fresh()
		dtypes := inf.fresher.FreshN(len(args))
		for i, arg := range args {
			cs.Add(types.Val{Kind: kind, Dtype: dtypes[i], Size: size}, arg)
		}
		return types.Val{Kind: kind, Dtype: types.TupleFrom(dtypes...), Size: size}, true, nil

	case name == ir.TupleGet:
		if len(n.Args) != 2 {
			return nil, true, illFormed(name, "requires exactly two arguments")
		}
		lit, ok := n.Args[0].(*ir.Literal)
		if !ok || lit.Type != ir.IntTypeName {
			return nil, true, illFormed(name, "the first argument must be a literal int")
		}
		idx, err := strconv.Atoi(lit.Value)
		if err != nil || idx < 0 {
			return nil, true, illFormed(name, fmt.Sprintf("invalid index %s", lit.Value))
		}
		tup, err := inf.infer(n.Args[1], cs, env)
		if err != nil {
			return nil, true, err
		}
		kind, elem, size := inf.fresh(), inf.fresh(), inf.fresh()
		var dtype types.Type = types.Tuple{Front: elem, Others: inf.fresh()}
		for range idx {
			dtype = types.Tuple{Front: inf.fresh(), Others: dtype}
		}
		cs.Add(tup, types.Val{Kind: kind, Dtype: dtype, Size: size})
		return types.Val{Kind: kind, Dtype: elem, Size: size}, true, nil

	case name == ir.Shift:
		// offsets are not typed: shift maps an iterator onto an iterator of the same type
		it := types.Val{Kind: types.Iterator{}, Dtype: inf.fresh(), Size: inf.fresh()}
		return types.FunctionType{Args: types.TupleFrom(it), Ret: it}, true, nil

	case ir.IsDomainBuiltin(name):
		for _, arg := range n.Args {
			argType, err := inf.infer(arg, cs, env)
			if err != nil {
				return nil, true, err
			}
			cs.Add(types.Val{Kind: types.Value{}, Dtype: types.NamedRangeDtype, Size: types.Scalar{}}, argType)
		}
		return types.Val{Kind: types.Value{}, Dtype: types.DomainDtype, Size: types.Scalar{}}, true, nil
	}
	return nil, false, nil
}

func (inf *inferrer) inferClosure(n *ir.StencilClosure, cs *types.ConstraintSet, env Env) (types.Type, error) {
	domain, err := inf.infer(n.Domain, cs, env)
	if err != nil {
		return nil, err
	}
	stencil, err := inf.infer(n.Stencil, cs, env)
	if err != nil {
		return nil, err
	}
	output, err := inf.infer(n.Output, cs, env)
	if err != nil {
		return nil, err
	}
	inputTypes, err := inf.inferAll(n.Inputs, cs, env)
	if err != nil {
		return nil, err
	}
	inputs := types.TupleFrom(inputTypes...)
	outputDtype := inf.fresh()
	cs.Add(domain, types.Val{Kind: types.Value{}, Dtype: types.DomainDtype, Size: types.Scalar{}})
	cs.Add(output, types.Val{Kind: types.Iterator{}, Dtype: outputDtype, Size: types.Column{}})
	cs.Add(stencil, types.FunctionType{
		Args: inputs,
		Ret:  types.Val{Kind: types.Value{}, Dtype: outputDtype, Size: types.Column{}},
	})
	return types.Closure{Output: output, Inputs: inputs}, nil
}

// inferFencil types function definitions in declaration order, like a let*:
// each one is solved on its own and then generalised, so every later use
// instantiates it with fresh variables
func (inf *inferrer) inferFencil(n *ir.FencilDefinition, cs *types.ConstraintSet, env Env) (types.Type, error) {
	ftypes := make([]types.Type, 0, len(n.FunctionDefinitions))
	for _, fd := range n.FunctionDefinitions {
		fcs := types.NewConstraintSet()
		ftype, err := inf.infer(fd, fcs, env)
		if err != nil {
			return nil, err
		}
		solved, err := types.Unify(inf.fresher, ftype, fcs)
		if err != nil {
			return nil, errors.Wrapf(err, "in function definition '%s'", fd.ID)
		}
		fdType, ok := solved.(types.FunctionDefinitionType)
		if !ok {
			panic(fmt.Sprintf("unreachable: function definition typed as %v", solved))
		}
		logger.Debug("inferred function definition", "name", fd.ID, "type", fdType)
		ftypes = append(ftypes, fdType)
		env = env.With(fdType.Name, types.LetPolymorphic{Dtype: fdType.Fun})
	}

	params := make([]types.Type, len(n.Params))
	for i, p := range n.Params {
		params[i] = inf.fresh()
		env = env.With(p.ID, params[i])
	}
	for _, c := range n.Closures {
		if _, err := inf.infer(c, cs, env); err != nil {
			return nil, err
		}
	}
	return types.FencilDefinitionType{
		Name:    n.ID,
		Fundefs: types.TupleFrom(ftypes...),
		Params:  types.TupleFrom(params...),
	}, nil
}
