package types

import (
	"github.com/cottand/itir/internal/log"
	"github.com/cottand/itir/irerr"
)

var logger = log.DefaultLogger.With("section", "unify")

// constraintHandler is implemented by terms which know how to absorb a
// constraint against some other shape of term.
//
// handleConstraint returns false if it does not handle other, in which case
// unification carries on field by field.
type constraintHandler interface {
	handleConstraint(u *unifier, other Type) (bool, error)
}

var (
	_ constraintHandler = ValTuple{}
	_ constraintHandler = Primitive{}
)

type unifier struct {
	fresher *Fresher
	subst   map[int]Type
	pending []Constraint
}

// Unify solves cs and returns root with the solution applied.
//
// Constraints produced while solving (for example when a ValTuple is unified
// with a concrete Tuple) take new variables from f.
// The result is not reindexed, see Reindex.
func Unify(f *Fresher, root Type, cs *ConstraintSet) (Type, error) {
	u := &unifier{
		fresher: f,
		subst:   make(map[int]Type),
		pending: cs.All(),
	}
	logger.Debug("unifying", "constraints", cs.Len(), "root", root)
	for len(u.pending) > 0 {
		c := u.pending[0]
		u.pending = u.pending[1:]
		if err := u.unifyOne(c.A, c.B); err != nil {
			return nil, err
		}
	}
	solved := u.apply(root)
	logger.Debug("unified", "type", solved)
	return solved, nil
}

func (u *unifier) add(a, b Type) {
	u.pending = append(u.pending, Constraint{A: a, B: b})
}

// resolve follows the substitution at the top level of t only
func (u *unifier) resolve(t Type) Type {
	for {
		v, ok := t.(TypeVar)
		if !ok {
			return t
		}
		bound, ok := u.subst[v.Idx]
		if !ok {
			return t
		}
		t = bound
	}
}

// apply follows the substitution everywhere in t
func (u *unifier) apply(t Type) Type {
	return mapVars(t, func(v TypeVar) Type {
		if bound, ok := u.subst[v.Idx]; ok {
			return u.apply(bound)
		}
		return v
	})
}

func (u *unifier) conflict(a, b Type, reason string) error {
	return irerr.New(irerr.NewUnificationConflict{First: u.apply(a), Second: u.apply(b), Reason: reason})
}

func (u *unifier) bind(v TypeVar, t Type) error {
	if occurs(v, u.apply(t)) {
		return u.conflict(v, t, "occurs check")
	}
	u.subst[v.Idx] = t
	return nil
}

func (u *unifier) unifyOne(a, b Type) error {
	a, b = u.resolve(a), u.resolve(b)
	if Equal(a, b) {
		return nil
	}
	if v, ok := a.(TypeVar); ok {
		return u.bind(v, b)
	}
	if v, ok := b.(TypeVar); ok {
		return u.bind(v, a)
	}
	if handler, ok := a.(constraintHandler); ok {
		handled, err := handler.handleConstraint(u, b)
		if err != nil || handled {
			return err
		}
	}
	if handler, ok := b.(constraintHandler); ok {
		handled, err := handler.handleConstraint(u, a)
		if err != nil || handled {
			return err
		}
	}
	if !sameShape(a, b) {
		return u.conflict(a, b, "")
	}
	ca, cb := children(a), children(b)
	for i := range ca {
		u.add(ca[i], cb[i])
	}
	return nil
}

// handleConstraint decomposes a concrete tuple into one Val per element, which
// fixes the arity of t.
//
// The tuple is consumed one element at a time, so its tail may still be a
// variable: that variable is then bound to a ValTuple of the remaining dtypes.
func (t ValTuple) handleConstraint(u *unifier, other Type) (bool, error) {
	switch other := other.(type) {
	case Tuple:
		dtype, rest := u.fresher.Fresh(), u.fresher.Fresh()
		u.add(t.Dtypes, Tuple{Front: dtype, Others: rest})
		u.add(Val{Kind: t.Kind, Dtype: dtype, Size: t.Size}, other.Front)
		u.add(ValTuple{Kind: t.Kind, Dtypes: rest, Size: t.Size}, other.Others)
		return true, nil
	case EmptyTuple:
		u.add(t.Dtypes, EmptyTuple{})
		return true, nil
	}
	return false, nil
}

func (t Primitive) handleConstraint(u *unifier, other Type) (bool, error) {
	if other, ok := other.(Primitive); ok {
		if t.Name != other.Name {
			return false, u.conflict(t, other, "primitive types differ")
		}
		return true, nil
	}
	return false, nil
}
