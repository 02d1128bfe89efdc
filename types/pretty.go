package types

import (
	"strconv"
	"strings"
)

// Pretty renders t in the notation used in diagnostics, for example
//
//	(It[T₀¹], It[T₁¹]) → T₀¹
//
// where the superscript is the size (ᶜ for Column, ˢ for Scalar) and It[...]
// marks an iterator.
func Pretty(t Type) string {
	sb := &strings.Builder{}
	prettyWalker(sb, t)
	return sb.String()
}

func (t TypeVar) String() string                { return Pretty(t) }
func (t EmptyTuple) String() string             { return Pretty(t) }
func (t Tuple) String() string                  { return Pretty(t) }
func (t ValTuple) String() string               { return Pretty(t) }
func (t Val) String() string                    { return Pretty(t) }
func (t Primitive) String() string              { return Pretty(t) }
func (t FunctionType) String() string           { return Pretty(t) }
func (t Closure) String() string                { return Pretty(t) }
func (t FunctionDefinitionType) String() string { return Pretty(t) }
func (t FencilDefinitionType) String() string   { return Pretty(t) }
func (t LetPolymorphic) String() string         { return Pretty(t) }
func (t Value) String() string                  { return Pretty(t) }
func (t Iterator) String() string               { return Pretty(t) }
func (t Scalar) String() string                 { return Pretty(t) }
func (t Column) String() string                 { return Pretty(t) }

func digits(i int, table []rune) string {
	s := strconv.Itoa(i)
	out := make([]rune, 0, len(s))
	for _, d := range s {
		out = append(out, table[d-'0'])
	}
	return string(out)
}

var (
	subscripts   = []rune("₀₁₂₃₄₅₆₇₈₉")
	superscripts = []rune("⁰¹²³⁴⁵⁶⁷⁸⁹")
)

func subscript(i int) string   { return digits(i, subscripts) }
func superscript(i int) string { return digits(i, superscripts) }

func fmtSize(sb *strings.Builder, size Type) {
	switch size := size.(type) {
	case Column:
		sb.WriteString("ᶜ")
	case Scalar:
		sb.WriteString("ˢ")
	case TypeVar:
		sb.WriteString(superscript(size.Idx))
	default:
		sb.WriteString("^")
		prettyWalker(sb, size)
	}
}

func fmtDtype(sb *strings.Builder, kind Type, dtype func()) {
	switch kind := kind.(type) {
	case Value:
		dtype()
	case Iterator:
		sb.WriteString("It[")
		dtype()
		sb.WriteString("]")
	case TypeVar:
		sb.WriteString("ItOrVal" + subscript(kind.Idx) + "[")
		dtype()
		sb.WriteString("]")
	default:
		prettyWalker(sb, kind)
		sb.WriteString("[")
		dtype()
		sb.WriteString("]")
	}
}

func prettyWalker(sb *strings.Builder, t Type) {
	switch t := t.(type) {
	case TypeVar:
		sb.WriteString("T" + subscript(t.Idx))
	case EmptyTuple:
		sb.WriteString("()")
	case Tuple:
		sb.WriteString("(")
		prettyWalker(sb, t.Front)
		for {
			next, ok := t.Others.(Tuple)
			if !ok {
				break
			}
			t = next
			sb.WriteString(", ")
			prettyWalker(sb, t.Front)
		}
		sb.WriteString(")")
		if _, ok := t.Others.(EmptyTuple); !ok {
			sb.WriteString(":")
			prettyWalker(sb, t.Others)
		}
	case FunctionType:
		prettyWalker(sb, t.Args)
		sb.WriteString(" → ")
		prettyWalker(sb, t.Ret)
	case Val:
		fmtDtype(sb, t.Kind, func() {
			prettyWalker(sb, t.Dtype)
			fmtSize(sb, t.Size)
		})
	case Primitive:
		sb.WriteString(t.Name)
	case FunctionDefinitionType:
		sb.WriteString(t.Name + " :: ")
		prettyWalker(sb, t.Fun)
	case Closure:
		prettyWalker(sb, t.Inputs)
		sb.WriteString(" ⇒ ")
		prettyWalker(sb, t.Output)
	case FencilDefinitionType:
		fundefs, err1 := Elems(t.Fundefs)
		params, err2 := Elems(t.Params)
		if err1 != nil || err2 != nil {
			debugWalker(sb, t)
			return
		}
		sb.WriteString("{")
		for _, f := range fundefs {
			prettyWalker(sb, f)
			sb.WriteString(", ")
		}
		sb.WriteString(t.Name + "(")
		for i, p := range params {
			if i > 0 {
				sb.WriteString(", ")
			}
			prettyWalker(sb, p)
		}
		sb.WriteString(")}")
	case ValTuple:
		if dtypes, ok := t.Dtypes.(TypeVar); ok {
			sb.WriteString("(")
			fmtDtype(sb, t.Kind, func() {
				sb.WriteString("T")
				fmtSize(sb, t.Size)
			})
			sb.WriteString(", …)" + subscript(dtypes.Idx))
			return
		}
		dtypes, err := Elems(t.Dtypes)
		if err != nil {
			debugWalker(sb, t)
			return
		}
		sb.WriteString("(")
		for i, dtype := range dtypes {
			if i > 0 {
				sb.WriteString(", ")
			}
			prettyWalker(sb, Val{Kind: t.Kind, Dtype: dtype, Size: t.Size})
		}
		sb.WriteString(")")
	default:
		genericWalker(sb, t, prettyWalker)
	}
}

// Debug renders every field of t explicitly, like `Val(kind=Value(), dtype=T₀, size=Column())`.
// Unlike Pretty, different terms always render differently.
func Debug(t Type) string {
	sb := &strings.Builder{}
	debugWalker(sb, t)
	return sb.String()
}

func debugWalker(sb *strings.Builder, t Type) {
	if v, ok := t.(TypeVar); ok {
		sb.WriteString("T" + subscript(v.Idx))
		return
	}
	genericWalker(sb, t, debugWalker)
}

func genericWalker(sb *strings.Builder, t Type, walk func(*strings.Builder, Type)) {
	sb.WriteString(t.variant() + "(")
	for i, f := range t.fields() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.name + "=")
		if f.typ != nil {
			walk(sb, f.typ)
		} else {
			sb.WriteString(strconv.Quote(f.str))
		}
	}
	sb.WriteString(")")
}
