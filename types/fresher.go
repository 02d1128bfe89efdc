package types

// Fresher hands out type variables that are unique among the ones it created.
//
// There is one Fresher per inference call, so that inference never depends on
// global state and two calls on the same expression produce the same variables.
type Fresher struct {
	freshCount int
}

func NewFresher() *Fresher {
	return &Fresher{}
}

// NewFresherAvoiding returns a Fresher whose variables never clash with the
// ones already present in ts
func NewFresherAvoiding(ts ...Type) *Fresher {
	f := NewFresher()
	for _, t := range ts {
		for _, v := range Vars(t) {
			f.freshCount = max(f.freshCount, v.Idx+1)
		}
	}
	return f
}

func (f *Fresher) Fresh() TypeVar {
	v := TypeVar{Idx: f.freshCount}
	f.freshCount++
	return v
}

// FreshN returns n fresh variables
func (f *Fresher) FreshN(n int) []Type {
	vars := make([]Type, n)
	for i := range vars {
		vars[i] = f.Fresh()
	}
	return vars
}

// Freshen copies t, replacing each distinct variable with a new one.
// Occurrences of the same variable inside t keep pointing to the same new variable.
func (f *Fresher) Freshen(t Type) Type {
	freshened := make(map[int]TypeVar)
	return mapVars(t, func(v TypeVar) Type {
		if existing, ok := freshened[v.Idx]; ok {
			return existing
		}
		fresh := f.Fresh()
		freshened[v.Idx] = fresh
		return fresh
	})
}

// Reindex renumbers the variables of t to 0, 1, 2... in the order they are first
// met when walking t depth-first, so that the result does not depend on how
// the variables were generated
func Reindex(t Type) Type {
	reindexed := make(map[int]TypeVar)
	return mapVars(t, func(v TypeVar) Type {
		if existing, ok := reindexed[v.Idx]; ok {
			return existing
		}
		fresh := TypeVar{Idx: len(reindexed)}
		reindexed[v.Idx] = fresh
		return fresh
	})
}

// Vars returns the distinct variables of t in depth-first order
func Vars(t Type) []TypeVar {
	var vars []TypeVar
	seen := make(map[TypeVar]bool)
	var walk func(Type)
	walk = func(t Type) {
		if v, ok := t.(TypeVar); ok {
			if !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
			return
		}
		for _, c := range children(t) {
			walk(c)
		}
	}
	walk(t)
	return vars
}

// occurs is true when v appears anywhere in t
func occurs(v TypeVar, t Type) bool {
	if other, ok := t.(TypeVar); ok {
		return other == v
	}
	for _, c := range children(t) {
		if occurs(v, c) {
			return true
		}
	}
	return false
}
