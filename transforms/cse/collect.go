package cse

import (
	"github.com/benbjohnson/immutable"
	"github.com/cottand/itir/ir"
	"github.com/cottand/itir/util"
)

// Candidate is a class of structurally equal subtrees found by Collect
type Candidate struct {
	// Expr is the first occurrence found
	Expr ir.Expr
	// Occurrences are the identities of every occurrence, Expr included
	Occurrences []ir.Expr
	// Parent is the node containing Expr, or nil if Expr is the root
	Parent ir.Node
}

func (c *Candidate) Count() int { return len(c.Occurrences) }

// Subexpressions are the candidates of a tree, in the order they were first
// completed (post-order), so children always come before their parents
type Subexpressions struct {
	buckets map[uint64][]*Candidate
	order   []*Candidate
}

func newSubexpressions() *Subexpressions {
	return &Subexpressions{buckets: make(map[uint64][]*Candidate)}
}

// Lookup finds the candidate structurally equal to n, if any
func (s *Subexpressions) Lookup(n ir.Node) *Candidate {
	if n == nil {
		return nil
	}
	for _, c := range s.buckets[n.Hash()] {
		if ir.Equal(c.Expr, n) {
			return c
		}
	}
	return nil
}

func (s *Subexpressions) All() []*Candidate { return s.order }

func (s *Subexpressions) add(e ir.Expr, parent ir.Node) {
	if c := s.Lookup(e); c != nil {
		c.Occurrences = append(c.Occurrences, e)
		return
	}
	c := &Candidate{Expr: e, Occurrences: []ir.Expr{e}, Parent: parent}
	s.buckets[e.Hash()] = append(s.buckets[e.Hash()], c)
	s.order = append(s.order, c)
}

// Collect finds the calls and lambdas of root that could be hoisted to the
// top of root, and how many times each of them occurs.
//
// A subtree is not hoistable if it references a symbol bound by a lambda inside
// root, or if it is a call to shift. A subtree that is not hoistable makes its
// parent not hoistable either.
//
// Occurrences are kept by identity, so a node shared between several positions
// of root is listed once per position under the same pointer.
func Collect(root ir.Node) *Subexpressions {
	c := &collector{subexprs: newSubexpressions()}
	c.visit(root, immutable.NewMap[string, bool](nil), nil)
	return c.subexprs
}

type collector struct {
	subexprs *Subexpressions
	// frames has one entry per enclosing Lambda or FunCall, which is true
	// as long as that node can still be hoisted
	frames util.Stack[bool]
}

func (c *collector) visit(n ir.Node, refs *immutable.Map[string, bool], parent ir.Node) {
	switch n := n.(type) {
	case *ir.SymRef:
		if _, bound := refs.Get(n.ID); bound {
			c.frames.SetTop(false)
		}
	case *ir.Lambda:
		inner := refs
		for _, p := range n.Params {
			inner = inner.Set(p.ID, false)
		}
		c.frames.Push(true)
		for _, child := range ir.Children(n) {
			c.visit(child, inner, n)
		}
		c.finish(n, parent)
	case *ir.FunCall:
		c.frames.Push(!ir.IsCallTo(n, ir.Shift))
		for _, child := range ir.Children(n) {
			c.visit(child, refs, n)
		}
		c.finish(n, parent)
	default:
		for _, child := range ir.Children(n) {
			c.visit(child, refs, parent)
		}
	}
}

// finish pops the frame of e and either records e or poisons the frame of its parent
func (c *collector) finish(e ir.Expr, parent ir.Node) {
	if hoistable, _ := c.frames.Pop(); hoistable {
		c.subexprs.add(e, parent)
		return
	}
	c.frames.SetTop(false)
}
