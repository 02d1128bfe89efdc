package types

import (
	"maps"
	"slices"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DecodeSymtypes reads a YAML (or JSON) mapping from symbol names to types.
// Types are written as follows:
//
//	int, float, bool...                primitive
//	value, iterator                    Val kinds
//	scalar, column                     Val sizes
//	{var: 0}                           type variable
//	{val: {kind: K, dtype: D, size: S}} Val, where missing fields are fresh variables
//	{tuple: [A, B]}                    tuple, () for the empty tuple
//	{fun: {args: [A, B], ret: R}}      function
//
// Variables written with the same index are the same variable. Variables
// introduced for missing fields never clash with them.
func DecodeSymtypes(data []byte) (map[string]Type, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "could not parse symbol types")
	}
	if len(doc.Content) != 1 {
		return map[string]Type{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nodeErrorf(root, "expected a mapping from symbols to types")
	}
	d := &decoder{}
	symtypes := make(map[string]Type, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		t, err := d.decode(root.Content[i+1])
		if err != nil {
			return nil, errors.Wrapf(err, "type of %s", root.Content[i].Value)
		}
		symtypes[root.Content[i].Value] = t
	}

	// variables for missing fields are numbered after every written variable
	names := slices.Sorted(maps.Keys(symtypes))
	written := make([]Type, 0, len(names))
	for _, name := range names {
		written = append(written, symtypes[name])
	}
	fresher := NewFresherAvoiding(written...)
	for _, name := range names {
		symtypes[name] = mapVars(symtypes[name], func(v TypeVar) Type {
			if v.Idx >= 0 {
				return v
			}
			return fresher.Fresh()
		})
	}
	return symtypes, nil
}

func nodeErrorf(n *yaml.Node, format string, args ...any) error {
	return errors.Wrapf(errors.Errorf(format, args...), "line %d, column %d", n.Line, n.Column)
}

type decoder struct {
	// placeholders for missing fields use negative indices until every
	// written variable is known
	placeholders int
}

func (d *decoder) placeholder() TypeVar {
	d.placeholders--
	return TypeVar{Idx: d.placeholders}
}

func (d *decoder) decode(n *yaml.Node) (Type, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Value {
		case "value":
			return Value{}, nil
		case "iterator":
			return Iterator{}, nil
		case "scalar":
			return Scalar{}, nil
		case "column":
			return Column{}, nil
		case "()":
			return EmptyTuple{}, nil
		case "":
			return nil, nodeErrorf(n, "expected a type")
		}
		return Primitive{Name: n.Value}, nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return nil, nodeErrorf(n, "expected exactly one of var, val, tuple or fun")
		}
		key, value := n.Content[0].Value, n.Content[1]
		switch key {
		case "var":
			idx, err := strconv.Atoi(value.Value)
			if err != nil || idx < 0 {
				return nil, nodeErrorf(value, "type variables are non-negative integers, got %q", value.Value)
			}
			return TypeVar{Idx: idx}, nil
		case "val":
			return d.decodeVal(value)
		case "tuple":
			if value.Kind != yaml.SequenceNode {
				return nil, nodeErrorf(value, "expected a list of tuple elements")
			}
			elems, err := d.decodeAll(value.Content)
			if err != nil {
				return nil, err
			}
			return TupleFrom(elems...), nil
		case "fun":
			return d.decodeFun(value)
		}
		return nil, nodeErrorf(n, "unknown type %q", key)
	}
	return nil, nodeErrorf(n, "expected a type")
}

func (d *decoder) decodeAll(nodes []*yaml.Node) ([]Type, error) {
	decoded := make([]Type, len(nodes))
	for i, n := range nodes {
		t, err := d.decode(n)
		if err != nil {
			return nil, err
		}
		decoded[i] = t
	}
	return decoded, nil
}

func (d *decoder) field(fields map[string]*yaml.Node, name string) (Type, error) {
	n, ok := fields[name]
	if !ok {
		return d.placeholder(), nil
	}
	return d.decode(n)
}

func (d *decoder) decodeVal(n *yaml.Node) (Type, error) {
	fields, err := fieldsOf(n, "kind", "dtype", "size")
	if err != nil {
		return nil, err
	}
	kind, err := d.field(fields, "kind")
	if err != nil {
		return nil, err
	}
	dtype, err := d.field(fields, "dtype")
	if err != nil {
		return nil, err
	}
	size, err := d.field(fields, "size")
	if err != nil {
		return nil, err
	}
	return Val{Kind: kind, Dtype: dtype, Size: size}, nil
}

func (d *decoder) decodeFun(n *yaml.Node) (Type, error) {
	fields, err := fieldsOf(n, "args", "ret")
	if err != nil {
		return nil, err
	}
	var args []Type
	if argsNode, ok := fields["args"]; ok {
		if argsNode.Kind != yaml.SequenceNode {
			return nil, nodeErrorf(argsNode, "expected a list of argument types")
		}
		if args, err = d.decodeAll(argsNode.Content); err != nil {
			return nil, err
		}
	}
	ret, err := d.field(fields, "ret")
	if err != nil {
		return nil, err
	}
	return FunctionType{Args: TupleFrom(args...), Ret: ret}, nil
}

func fieldsOf(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nodeErrorf(n, "expected a mapping")
	}
	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if !slices.Contains(allowed, key) {
			return nil, nodeErrorf(n.Content[i], "unexpected field %q", key)
		}
		fields[key] = n.Content[i+1]
	}
	return fields, nil
}
