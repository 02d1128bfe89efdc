package infer

import (
	"github.com/benbjohnson/immutable"
	"github.com/cottand/itir/types"
)

// Env maps the names visible in a scope to their types.
//
// An Env is persistent: With returns a new Env and leaves the receiver as it
// was, so entering a scope never affects the enclosing one.
type Env struct {
	m *immutable.Map[string, types.Type]
}

// NewEnv copies symtypes into a new Env
func NewEnv(symtypes map[string]types.Type) Env {
	return Env{m: immutable.NewMapOf[string, types.Type](nil, symtypes)}
}

func (e Env) Lookup(name string) (types.Type, bool) {
	return e.m.Get(name)
}

// With binds name to t, shadowing any outer binding of name
func (e Env) With(name string, t types.Type) Env {
	return Env{m: e.m.Set(name, t)}
}

func (e Env) Len() int { return e.m.Len() }

// Types returns the types bound in e, in no particular order
func (e Env) Types() []types.Type {
	ts := make([]types.Type, 0, e.m.Len())
	itr := e.m.Iterator()
	for !itr.Done() {
		_, t, _ := itr.Next()
		ts = append(ts, t)
	}
	return ts
}
