package ir

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Decode reads an IR document in YAML (or JSON, which is valid YAML).
//
// A document holds exactly one of the keys `expr`, `fundef`, `closure` or `fencil`.
// Expressions are written as follows:
//
//	x                              symbol reference
//	1, 2.5, true                   int, float and bool literals
//	{lit: "1", type: int32}        literal of any type
//	{axis: K}                      axis literal
//	{offset: V2E}, {offset: 0}     offset literal
//	{lambda: [a, b], body: E}      lambda
//	{call: plus, args: [a, b]}     call, where call may also be an expression
func Decode(data []byte) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "could not parse IR document")
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, errors.New("empty IR document")
	}
	root := doc.Content[0]
	fields, err := mappingOf(root)
	if err != nil {
		return nil, err
	}
	if len(fields) != 1 {
		return nil, nodeErrorf(root, "expected exactly one of expr, fundef, closure or fencil")
	}
	for key, value := range fields {
		switch key {
		case "expr":
			return decodeExpr(value)
		case "fundef":
			return decodeFunctionDefinition(value)
		case "closure":
			return decodeStencilClosure(value)
		case "fencil":
			return decodeFencil(value)
		}
		return nil, nodeErrorf(root, "unknown document kind %q", key)
	}
	panic("unreachable")
}

// DecodeExpr is like Decode for a bare expression, without the top-level `expr` key
func DecodeExpr(data []byte) (Expr, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "could not parse IR expression")
	}
	if len(doc.Content) != 1 {
		return nil, errors.New("empty IR expression")
	}
	return decodeExpr(doc.Content[0])
}

func nodeErrorf(n *yaml.Node, format string, args ...any) error {
	return errors.Wrapf(errors.Errorf(format, args...), "line %d, column %d", n.Line, n.Column)
}

func mappingOf(n *yaml.Node) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nodeErrorf(n, "expected a mapping")
	}
	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		fields[n.Content[i].Value] = n.Content[i+1]
	}
	return fields, nil
}

func decodeExpr(n *yaml.Node) (Expr, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int":
			return &Literal{Value: n.Value, Type: IntTypeName}, nil
		case "!!float":
			return &Literal{Value: n.Value, Type: FloatTypeName}, nil
		case "!!bool":
			return &Literal{Value: n.Value, Type: BoolTypeName}, nil
		case "!!str":
			return Ref(n.Value), nil
		}
		return nil, nodeErrorf(n, "unexpected scalar %q", n.Value)
	case yaml.MappingNode:
		return decodeCompound(n)
	}
	return nil, nodeErrorf(n, "expected an expression")
}

func decodeCompound(n *yaml.Node) (Expr, error) {
	fields, err := mappingOf(n)
	if err != nil {
		return nil, err
	}
	if ref, ok := fields["ref"]; ok {
		return Ref(ref.Value), nil
	}
	if lit, ok := fields["lit"]; ok {
		typ, ok := fields["type"]
		if !ok {
			return nil, nodeErrorf(n, "literal %q needs a type", lit.Value)
		}
		return &Literal{Value: lit.Value, Type: typ.Value}, nil
	}
	if axis, ok := fields["axis"]; ok {
		return Axis(axis.Value), nil
	}
	if offset, ok := fields["offset"]; ok {
		return Offset(offset.Value), nil
	}
	if params, ok := fields["lambda"]; ok {
		syms, err := decodeSyms(params)
		if err != nil {
			return nil, err
		}
		body, ok := fields["body"]
		if !ok {
			return nil, nodeErrorf(n, "lambda needs a body")
		}
		expr, err := decodeExpr(body)
		if err != nil {
			return nil, err
		}
		return &Lambda{Params: syms, Expr: expr}, nil
	}
	if fun, ok := fields["call"]; ok {
		funExpr, err := decodeExpr(fun)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(fields["args"])
		if err != nil {
			return nil, err
		}
		return &FunCall{Fun: funExpr, Args: args}, nil
	}
	return nil, nodeErrorf(n, "unknown expression")
}

func decodeExprs(n *yaml.Node) ([]Expr, error) {
	if n == nil {
		return []Expr{}, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(n, "expected a list of expressions")
	}
	exprs := make([]Expr, 0, len(n.Content))
	for _, item := range n.Content {
		e, err := decodeExpr(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func decodeSyms(n *yaml.Node) ([]*Sym, error) {
	if n == nil {
		return []*Sym{}, nil
	}
	var ids []string
	if err := n.Decode(&ids); err != nil {
		return nil, errors.Wrapf(err, "line %d: expected a list of symbols", n.Line)
	}
	return Syms(ids...), nil
}

func decodeFunctionDefinition(n *yaml.Node) (*FunctionDefinition, error) {
	fields, err := mappingOf(n)
	if err != nil {
		return nil, err
	}
	params, err := decodeSyms(fields["params"])
	if err != nil {
		return nil, err
	}
	body, ok := fields["expr"]
	if !ok {
		return nil, nodeErrorf(n, "function definition needs an expr")
	}
	expr, err := decodeExpr(body)
	if err != nil {
		return nil, err
	}
	id := ""
	if idNode, ok := fields["id"]; ok {
		id = idNode.Value
	}
	if id == "" {
		return nil, nodeErrorf(n, "function definition needs an id")
	}
	return &FunctionDefinition{ID: id, Params: params, Expr: expr}, nil
}

func decodeStencilClosure(n *yaml.Node) (*StencilClosure, error) {
	fields, err := mappingOf(n)
	if err != nil {
		return nil, err
	}
	var parts [3]Expr
	for i, key := range []string{"domain", "stencil", "output"} {
		field, ok := fields[key]
		if !ok {
			return nil, nodeErrorf(n, "stencil closure needs a %s", key)
		}
		if parts[i], err = decodeExpr(field); err != nil {
			return nil, err
		}
	}
	inputs, err := decodeExprs(fields["inputs"])
	if err != nil {
		return nil, err
	}
	return &StencilClosure{Domain: parts[0], Stencil: parts[1], Output: parts[2], Inputs: inputs}, nil
}

func decodeFencil(n *yaml.Node) (*FencilDefinition, error) {
	fields, err := mappingOf(n)
	if err != nil {
		return nil, err
	}
	fencil := &FencilDefinition{}
	if id, ok := fields["id"]; ok {
		fencil.ID = id.Value
	}
	if fencil.Params, err = decodeSyms(fields["params"]); err != nil {
		return nil, err
	}
	if fundefs := fields["function_definitions"]; fundefs != nil {
		for _, item := range fundefs.Content {
			fd, err := decodeFunctionDefinition(item)
			if err != nil {
				return nil, err
			}
			fencil.FunctionDefinitions = append(fencil.FunctionDefinitions, fd)
		}
	}
	if closures := fields["closures"]; closures != nil {
		for _, item := range closures.Content {
			c, err := decodeStencilClosure(item)
			if err != nil {
				return nil, err
			}
			fencil.Closures = append(fencil.Closures, c)
		}
	}
	return fencil, nil
}
