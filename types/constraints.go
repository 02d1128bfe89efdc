package types

import (
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// Constraint requires A and B to be the same type. Orientation does not matter:
// A ≡ B and B ≡ A are the same constraint
type Constraint struct {
	A, B Type
}

func (c Constraint) String() string {
	return Pretty(c.A) + " ≡ " + Pretty(c.B)
}

// key identifies a constraint regardless of orientation
func (c Constraint) key() string {
	a, b := Debug(c.A), Debug(c.B)
	if b < a {
		a, b = b, a
	}
	return a + " ≡ " + b
}

// ConstraintSet is a set of constraints that remembers insertion order,
// so that solving it is deterministic
type ConstraintSet struct {
	seen  *set.HashSet[Constraint, string]
	items []Constraint
}

func NewConstraintSet() *ConstraintSet {
	return &ConstraintSet{
		seen: set.NewHashSetFunc[Constraint, string](0, Constraint.key),
	}
}

// Add records a ≡ b, unless the same constraint (in any orientation) is already present
func (cs *ConstraintSet) Add(a, b Type) {
	c := Constraint{A: a, B: b}
	if cs.seen.Insert(c) {
		cs.items = append(cs.items, c)
	}
}

func (cs *ConstraintSet) Len() int { return len(cs.items) }

// All returns the constraints in the order they were first added
func (cs *ConstraintSet) All() []Constraint {
	return append([]Constraint(nil), cs.items...)
}

func (cs *ConstraintSet) String() string {
	lines := make([]string, len(cs.items))
	for i, c := range cs.items {
		lines[i] = c.String()
	}
	return "{" + strings.Join(lines, ", ") + "}"
}
