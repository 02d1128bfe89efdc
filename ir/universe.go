package ir

import (
	"strings"

	"github.com/hashicorp/go-set/v3"
)

const (
	MakeTuple          = "make_tuple"
	TupleGet           = "tuple_get"
	Shift              = "shift"
	CartesianDomain    = "cartesian_domain"
	UnstructuredDomain = "unstructured_domain"
	Deref              = "deref"
	Lift               = "lift"
	Reduce             = "reduce"
	Scan               = "scan"
	NamedRange         = "named_range"
	Plus               = "plus"
	Minus              = "minus"
	Multiplies         = "multiplies"
	Divides            = "divides"
)

const (
	BoolTypeName       = "bool"
	IntTypeName        = "int"
	FloatTypeName      = "float"
	AxisTypeName       = "axis"
	NamedRangeTypeName = "named_range"
	DomainTypeName     = "domain"
)

var (
	// TypeBuiltins name scalar types. They can be referenced (e.g. as the
	// second argument to cast_) but have no function type of their own.
	TypeBuiltins = set.From([]string{
		"int", "int32", "int64", "float", "float32", "float64", "bool",
	})

	// GrammarBuiltins can only appear in the function position of a call:
	// their typing depends on the shape of the call rather than on a signature
	GrammarBuiltins = set.From([]string{
		MakeTuple, TupleGet, Shift, CartesianDomain, UnstructuredDomain,
	})

	// Builtins is every name the IR reserves, TypeBuiltins included
	Builtins = func() *set.Set[string] {
		builtins := set.From([]string{
			CartesianDomain, UnstructuredDomain, NamedRange, Lift, MakeTuple, TupleGet, Reduce,
			Deref, "can_deref", Scan, Shift, "if_", "cast_",
			Plus, Minus, Multiplies, Divides, "eq", "less", "greater",
			"and_", "or_", "xor_", "not_",
			"abs", "minimum", "maximum", "fmod", "power",
		})
		builtins.InsertSet(TypeBuiltins)
		return builtins
	}()
)

// IsDomainBuiltin is true for names following the domain constructor convention,
// like cartesian_domain
func IsDomainBuiltin(name string) bool {
	return strings.HasSuffix(name, "domain")
}
