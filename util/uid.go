package util

import "fmt"

// UIDGenerator hands out identifiers like _cs_1, _cs_2...
//
// Generated names end up in generated source, which is cached by its text, so
// each independent compilation unit should use its own UIDGenerator to get the
// same names on every run.
type UIDGenerator struct {
	counter int
}

// SequentialID returns prefix followed by the next number in the sequence, starting at 1
func (g *UIDGenerator) SequentialID(prefix string) string {
	g.counter++
	return fmt.Sprintf("%s_%d", prefix, g.counter)
}
