package ir

import (
	"strings"
)

// ExprString renders n in a compact, math-like syntax, where calls to arithmetic
// and comparison builtins are shown infix:
//
//	(λ(_cs_1) → _cs_1 + _cs_1)(x + x)
func ExprString(n Node) string {
	ctx := newShowContext()
	ctx.showWalker(n, 0)
	return ctx.String()
}

type showContext struct {
	*strings.Builder
	indent    int
	indentStr string
}

func newShowContext() *showContext {
	return &showContext{
		Builder:   &strings.Builder{},
		indentStr: "  ",
		indent:    0,
	}
}

func (ctx *showContext) currentIndent() string {
	return strings.Repeat(ctx.indentStr, ctx.indent)
}

type infixOp struct {
	symbol     string
	precedence int16
}

// precedences are as follows:
// 0: can be shown on its own
// 1: lambda bodies extend as far right as possible
// 10-12: boolean connectives
// 20: comparisons
// 22: + and -
// 24: / and *
// 30: function position of a call
var infixOps = map[string]infixOp{
	"or_":      {"∨", 10},
	"xor_":     {"⊕", 11},
	"and_":     {"∧", 12},
	"eq":       {"==", 20},
	"less":     {"<", 20},
	"greater":  {">", 20},
	Minus:      {"-", 22},
	Plus:       {"+", 22},
	Divides:    {"/", 24},
	Multiplies: {"*", 24},
}

const callPrecedence int16 = 30

func (ctx *showContext) showWalker(n Node, outerPrecedence int16) {
	if n == nil {
		ctx.WriteString("nil")
		return
	}
	switch n := n.(type) {
	case *Sym:
		ctx.WriteString(n.ID)
	case *SymRef:
		ctx.WriteString(n.ID)
	case *Literal:
		ctx.WriteString(n.Value)
	case *AxisLiteral:
		ctx.WriteString(n.Value)
	case *OffsetLiteral:
		ctx.WriteString(n.Value)
	case *Lambda:
		if outerPrecedence > 1 {
			ctx.WriteString("(")
			defer ctx.WriteString(")")
		}
		ctx.WriteString("λ(")
		ctx.showSyms(n.Params)
		ctx.WriteString(") → ")
		ctx.showWalker(n.Expr, 1)
	case *FunCall:
		if ref, ok := n.Fun.(*SymRef); ok && len(n.Args) == 2 {
			if op, ok := infixOps[ref.ID]; ok {
				if outerPrecedence > op.precedence {
					ctx.WriteString("(")
					defer ctx.WriteString(")")
				}
				ctx.showWalker(n.Args[0], op.precedence)
				ctx.WriteString(" " + op.symbol + " ")
				ctx.showWalker(n.Args[1], op.precedence+1)
				return
			}
		}
		ctx.showWalker(n.Fun, callPrecedence)
		ctx.WriteString("(")
		ctx.showExprs(n.Args)
		ctx.WriteString(")")
	case *FunctionDefinition:
		ctx.WriteString(n.ID + " = λ(")
		ctx.showSyms(n.Params)
		ctx.WriteString(") → ")
		ctx.showWalker(n.Expr, 1)
		ctx.WriteString(";")
	case *StencilClosure:
		ctx.showWalker(n.Output, 0)
		ctx.WriteString(" ← ")
		ctx.showWalker(n.Stencil, callPrecedence)
		ctx.WriteString("(")
		ctx.showExprs(n.Inputs)
		ctx.WriteString(") @ ")
		ctx.showWalker(n.Domain, 0)
		ctx.WriteString(";")
	case *FencilDefinition:
		ctx.WriteString(n.ID + "(")
		ctx.showSyms(n.Params)
		ctx.WriteString(") {")
		ctx.indent++
		for _, fd := range n.FunctionDefinitions {
			ctx.WriteString("\n" + ctx.currentIndent())
			ctx.showWalker(fd, 0)
		}
		for _, c := range n.Closures {
			ctx.WriteString("\n" + ctx.currentIndent())
			ctx.showWalker(c, 0)
		}
		ctx.indent--
		ctx.WriteString("\n}")
	default:
		ctx.WriteString("<" + n.Describe() + ">")
	}
}

func (ctx *showContext) showSyms(syms []*Sym) {
	for i, sym := range syms {
		if i > 0 {
			ctx.WriteString(", ")
		}
		ctx.WriteString(sym.ID)
	}
}

func (ctx *showContext) showExprs(exprs []Expr) {
	for i, e := range exprs {
		if i > 0 {
			ctx.WriteString(", ")
		}
		ctx.showWalker(e, 0)
	}
}
