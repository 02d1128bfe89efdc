// Package types is the type algebra of the iterator IR: type terms, the
// fresh-variable supply, constraint sets and the unifier that solves them.
package types

// when adding type variants here, you should add them to:
// - types:pretty.go/prettyWalker if they need a custom rendering
// - types:unify.go/constraintHandler if they cannot be unified field by field

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// Type is a type term.
//
// Terms are immutable values which can be compared with ==. Use Equal to also
// consider a ValTuple equal to the concrete Tuple it stands for.
type Type interface {
	fmt.Stringer
	// Hash is structural, so equal terms always have equal hashes
	Hash() uint64

	// variant is the name of the kind of term, like "Val"
	variant() string
	// fields returns the fields of the term in declaration order
	fields() []field
	// withChildren rebuilds the term with new values for the fields that are types,
	// in the order fields returns them
	withChildren(children []Type) Type
}

// field is either a named type child (typ is set) or a named string attribute
type field struct {
	name string
	typ  Type
	str  string
}

var (
	_ Type = TypeVar{}
	_ Type = EmptyTuple{}
	_ Type = Tuple{}
	_ Type = ValTuple{}
	_ Type = Val{}
	_ Type = Primitive{}
	_ Type = FunctionType{}
	_ Type = Closure{}
	_ Type = FunctionDefinitionType{}
	_ Type = FencilDefinitionType{}
	_ Type = LetPolymorphic{}
	_ Type = Value{}
	_ Type = Iterator{}
	_ Type = Scalar{}
	_ Type = Column{}
)

// TypeVar is a unification variable. Idx is only unique within the Fresher
// that created it
type TypeVar struct {
	Idx int
}

// EmptyTuple terminates a Tuple chain
type EmptyTuple struct{}

// Tuple is a cons cell. Others is a Tuple or EmptyTuple once fully resolved,
// and may be a TypeVar before that
type Tuple struct {
	Front  Type
	Others Type
}

// ValTuple is a tuple of Val which all share Kind and Size but have their own
// dtype. Its arity is unknown until Dtypes is unified with a concrete tuple.
type ValTuple struct {
	Kind   Type
	Dtypes Type
	Size   Type
}

// Val is the type of values and iterators.
//
// Kind is Value, Iterator or a variable. Dtype is a Primitive, a Tuple of
// dtypes or a variable. Size is Scalar, Column or a variable.
type Val struct {
	Kind  Type
	Dtype Type
	Size  Type
}

// Primitive is a scalar dtype like bool, int or float.
// Two primitives only unify when their names are the same.
type Primitive struct {
	Name string
}

// FunctionType always has a tuple-shaped Args, even for a single parameter
type FunctionType struct {
	Args Type
	Ret  Type
}

// Closure is the type of a stencil closure
type Closure struct {
	Output Type
	Inputs Type
}

type FunctionDefinitionType struct {
	Name string
	Fun  Type
}

type FencilDefinitionType struct {
	Name    string
	Fundefs Type
	Params  Type
}

// LetPolymorphic wraps a generalised type bound to a name. Every use of the
// name gets a freshened copy of Dtype.
type LetPolymorphic struct {
	Dtype Type
}

// Value marks a Val as a plain value
type Value struct{}

// Iterator marks a Val as an iterator
type Iterator struct{}

// Scalar marks a Val as scalar-sized
type Scalar struct{}

// Column marks a Val as spanning a column
type Column struct{}

var (
	BoolDtype       = Primitive{Name: "bool"}
	IntDtype        = Primitive{Name: "int"}
	FloatDtype      = Primitive{Name: "float"}
	AxisDtype       = Primitive{Name: "axis"}
	NamedRangeDtype = Primitive{Name: "named_range"}
	DomainDtype     = Primitive{Name: "domain"}
)

// TupleFrom builds the Tuple chain of elems, terminated by EmptyTuple
func TupleFrom(elems ...Type) Type {
	var tup Type = EmptyTuple{}
	for i := len(elems) - 1; i >= 0; i-- {
		tup = Tuple{Front: elems[i], Others: tup}
	}
	return tup
}

// Elems returns the elements of a fully resolved Tuple chain.
// It fails if the chain ends in anything but EmptyTuple.
func Elems(t Type) ([]Type, error) {
	var elems []Type
	for {
		switch tup := t.(type) {
		case EmptyTuple:
			return elems, nil
		case Tuple:
			elems = append(elems, tup.Front)
			t = tup.Others
		default:
			return nil, fmt.Errorf("can not iterate over partially defined tuple ending in %v", t)
		}
	}
}

func (TypeVar) variant() string                { return "TypeVar" }
func (EmptyTuple) variant() string             { return "EmptyTuple" }
func (Tuple) variant() string                  { return "Tuple" }
func (ValTuple) variant() string               { return "ValTuple" }
func (Val) variant() string                    { return "Val" }
func (Primitive) variant() string              { return "Primitive" }
func (FunctionType) variant() string           { return "FunctionType" }
func (Closure) variant() string                { return "Closure" }
func (FunctionDefinitionType) variant() string { return "FunctionDefinitionType" }
func (FencilDefinitionType) variant() string   { return "FencilDefinitionType" }
func (LetPolymorphic) variant() string         { return "LetPolymorphic" }
func (Value) variant() string                  { return "Value" }
func (Iterator) variant() string               { return "Iterator" }
func (Scalar) variant() string                 { return "Scalar" }
func (Column) variant() string                 { return "Column" }

func (t TypeVar) fields() []field { return []field{{name: "idx", str: fmt.Sprint(t.Idx)}} }
func (EmptyTuple) fields() []field { return nil }
func (t Tuple) fields() []field {
	return []field{{name: "front", typ: t.Front}, {name: "others", typ: t.Others}}
}
func (t ValTuple) fields() []field {
	return []field{{name: "kind", typ: t.Kind}, {name: "dtypes", typ: t.Dtypes}, {name: "size", typ: t.Size}}
}
func (t Val) fields() []field {
	return []field{{name: "kind", typ: t.Kind}, {name: "dtype", typ: t.Dtype}, {name: "size", typ: t.Size}}
}
func (t Primitive) fields() []field { return []field{{name: "name", str: t.Name}} }
func (t FunctionType) fields() []field {
	return []field{{name: "args", typ: t.Args}, {name: "ret", typ: t.Ret}}
}
func (t Closure) fields() []field {
	return []field{{name: "output", typ: t.Output}, {name: "inputs", typ: t.Inputs}}
}
func (t FunctionDefinitionType) fields() []field {
	return []field{{name: "name", str: t.Name}, {name: "fun", typ: t.Fun}}
}
func (t FencilDefinitionType) fields() []field {
	return []field{{name: "name", str: t.Name}, {name: "fundefs", typ: t.Fundefs}, {name: "params", typ: t.Params}}
}
func (t LetPolymorphic) fields() []field { return []field{{name: "dtype", typ: t.Dtype}} }
func (Value) fields() []field            { return nil }
func (Iterator) fields() []field         { return nil }
func (Scalar) fields() []field           { return nil }
func (Column) fields() []field           { return nil }

func (t TypeVar) withChildren([]Type) Type    { return t }
func (t EmptyTuple) withChildren([]Type) Type { return t }
func (Tuple) withChildren(c []Type) Type      { return Tuple{Front: c[0], Others: c[1]} }
func (ValTuple) withChildren(c []Type) Type   { return ValTuple{Kind: c[0], Dtypes: c[1], Size: c[2]} }
func (Val) withChildren(c []Type) Type        { return Val{Kind: c[0], Dtype: c[1], Size: c[2]} }
func (t Primitive) withChildren([]Type) Type  { return t }
func (FunctionType) withChildren(c []Type) Type {
	return FunctionType{Args: c[0], Ret: c[1]}
}
func (Closure) withChildren(c []Type) Type { return Closure{Output: c[0], Inputs: c[1]} }
func (t FunctionDefinitionType) withChildren(c []Type) Type {
	return FunctionDefinitionType{Name: t.Name, Fun: c[0]}
}
func (t FencilDefinitionType) withChildren(c []Type) Type {
	return FencilDefinitionType{Name: t.Name, Fundefs: c[0], Params: c[1]}
}
func (LetPolymorphic) withChildren(c []Type) Type { return LetPolymorphic{Dtype: c[0]} }
func (t Value) withChildren([]Type) Type          { return t }
func (t Iterator) withChildren([]Type) Type       { return t }
func (t Scalar) withChildren([]Type) Type         { return t }
func (t Column) withChildren([]Type) Type         { return t }

// children returns the fields of t which are types
func children(t Type) []Type {
	var cs []Type
	for _, f := range t.fields() {
		if f.typ != nil {
			cs = append(cs, f.typ)
		}
	}
	return cs
}

// mapChildren rebuilds t with f applied to each of its immediate type children
func mapChildren(t Type, f func(Type) Type) Type {
	cs := children(t)
	if len(cs) == 0 {
		return t
	}
	mapped := make([]Type, len(cs))
	for i, c := range cs {
		mapped[i] = f(c)
	}
	return t.withChildren(mapped)
}

// mapVars rebuilds t bottom-up, replacing every TypeVar v with f(v)
func mapVars(t Type, f func(TypeVar) Type) Type {
	if v, ok := t.(TypeVar); ok {
		return f(v)
	}
	return mapChildren(t, func(c Type) Type { return mapVars(c, f) })
}

// sameShape is true when a and b are the same variant with the same string attributes,
// so that they are equal iff their children are pairwise equal
func sameShape(a, b Type) bool {
	if a.variant() != b.variant() {
		return false
	}
	fa, fb := a.fields(), b.fields()
	if len(fa) != len(fb) {
		return false
	}
	for i := range fa {
		if fa[i].typ == nil && fa[i].str != fb[i].str {
			return false
		}
	}
	return true
}

// Equal compares a and b structurally, where a ValTuple whose dtypes are a
// Tuple is equal to the Tuple of Val it expands to
func Equal(a, b Type) bool {
	if a == b {
		return true
	}
	if vt, ok := a.(ValTuple); ok {
		if _, ok := b.(Tuple); ok {
			return vt.equalsTuple(b)
		}
	}
	if vt, ok := b.(ValTuple); ok {
		if _, ok := a.(Tuple); ok {
			return vt.equalsTuple(a)
		}
	}
	if !sameShape(a, b) {
		return false
	}
	ca, cb := children(a), children(b)
	for i := range ca {
		if !Equal(ca[i], cb[i]) {
			return false
		}
	}
	return true
}

func (t ValTuple) equalsTuple(other Type) bool {
	dtypes, elems := t.Dtypes, other
	for {
		dtup, ok1 := dtypes.(Tuple)
		etup, ok2 := elems.(Tuple)
		if !ok1 || !ok2 || !Equal(Val{Kind: t.Kind, Dtype: dtup.Front, Size: t.Size}, etup.Front) {
			break
		}
		dtypes, elems = dtup.Others, etup.Others
	}
	return dtypes == EmptyTuple{} && elems == EmptyTuple{}
}

func hashType(t Type) uint64 {
	h := fnv.New64a()
	arr := []byte(t.variant())
	for _, f := range t.fields() {
		if f.typ != nil {
			arr = binary.LittleEndian.AppendUint64(arr, f.typ.Hash())
		} else {
			arr = append(arr, f.str...)
			arr = append(arr, 0)
		}
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

func (t TypeVar) Hash() uint64                { return hashType(t) }
func (t EmptyTuple) Hash() uint64             { return hashType(t) }
func (t Tuple) Hash() uint64                  { return hashType(t) }
func (t ValTuple) Hash() uint64               { return hashType(t) }
func (t Val) Hash() uint64                    { return hashType(t) }
func (t Primitive) Hash() uint64              { return hashType(t) }
func (t FunctionType) Hash() uint64           { return hashType(t) }
func (t Closure) Hash() uint64                { return hashType(t) }
func (t FunctionDefinitionType) Hash() uint64 { return hashType(t) }
func (t FencilDefinitionType) Hash() uint64   { return hashType(t) }
func (t LetPolymorphic) Hash() uint64         { return hashType(t) }
func (t Value) Hash() uint64                  { return hashType(t) }
func (t Iterator) Hash() uint64               { return hashType(t) }
func (t Scalar) Hash() uint64                 { return hashType(t) }
func (t Column) Hash() uint64                 { return hashType(t) }
