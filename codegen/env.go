package codegen

import "golang.org/x/exp/maps"

// Env is the persistent compile-time environment of spec.md §3:
// identifier name to stack-slot index. It is never mutated in place;
// Extend returns a new mapping that shares the parent's entries,
// following the copy-on-write idiom the rest of the corpus uses for
// symbol tables (mna-nenuphar/lang/resolver).
type Env map[string]int

// Extend returns a new Env equal to e plus the one new binding,
// leaving e itself untouched.
func (e Env) Extend(name string, slot int) Env {
	c := maps.Clone(e)
	if c == nil {
		c = Env{}
	}
	c[name] = slot
	return c
}
