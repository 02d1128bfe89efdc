package ir

import (
	"encoding/binary"
	"hash/fnv"
)

// FunctionDefinition is a named, top-level function of a fencil.
//
// It is typed like a Lambda over Params, but its name is made visible to the
// function definitions declared after it.
type FunctionDefinition struct {
	ID     string
	Params []*Sym
	Expr   Expr
}

func (e *FunctionDefinition) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("FunctionDefinition" + e.ID)
	for _, param := range e.Params {
		arr = binary.LittleEndian.AppendUint64(arr, param.Hash())
	}
	arr = binary.LittleEndian.AppendUint64(arr, e.Expr.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// AsLambda returns the Lambda this definition is equivalent to
func (e *FunctionDefinition) AsLambda() *Lambda {
	return &Lambda{Params: e.Params, Expr: e.Expr}
}

// StencilClosure applies Stencil over Domain, reading from Inputs and writing into Output
type StencilClosure struct {
	Domain  Expr
	Stencil Expr
	Output  Expr
	Inputs  []Expr
}

func (e *StencilClosure) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("StencilClosure")
	arr = binary.LittleEndian.AppendUint64(arr, e.Domain.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, e.Stencil.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, e.Output.Hash())
	for _, input := range e.Inputs {
		arr = binary.LittleEndian.AppendUint64(arr, input.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// FencilDefinition is the unit of compilation: shared function definitions,
// parameters and the closures that use them.
//
// FunctionDefinitions may only reference definitions declared before them.
type FencilDefinition struct {
	ID                  string
	FunctionDefinitions []*FunctionDefinition
	Params              []*Sym
	Closures            []*StencilClosure
}

func (e *FencilDefinition) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("FencilDefinition" + e.ID)
	for _, fd := range e.FunctionDefinitions {
		arr = binary.LittleEndian.AppendUint64(arr, fd.Hash())
	}
	arr = append(arr, 0)
	for _, param := range e.Params {
		arr = binary.LittleEndian.AppendUint64(arr, param.Hash())
	}
	arr = append(arr, 0)
	for _, c := range e.Closures {
		arr = binary.LittleEndian.AppendUint64(arr, c.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}
