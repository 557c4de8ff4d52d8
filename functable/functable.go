// Package functable builds the compile-time table of user-defined
// functions, mapping each function name to its arity and generated
// label. Building the table is a separate first pass over the
// program's definitions so that function bodies can freely call each
// other, forward or backward, including mutual recursion.
package functable

import (
	"github.com/dolthub/swiss"
	"github.com/josharian/intern"
	"github.com/pkg/errors"

	"github.com/skx/snek-compiler/ast"
)

// Entry records what the code generator needs to know about a
// function at a call site.
type Entry struct {
	Arity int
	Label string
}

// Table is a compile-time symbol table of function name to Entry,
// backed by a flat SwissTable hash map: it is built once and then
// probed at every Call site during code generation.
type Table struct {
	m *swiss.Map[string, Entry]
}

// New returns an empty Table sized for n definitions.
func New(n int) *Table {
	if n < 1 {
		n = 1
	}
	return &Table{m: swiss.NewMap[string, Entry](uint32(n))}
}

// Build registers every definition in defs, rejecting duplicate
// function names and definitions with no name at all.
func Build(defs []ast.Func) (*Table, error) {
	t := New(len(defs))
	for _, def := range defs {
		if def.Label == "" {
			return nil, errors.New("Invalid function definition without function name")
		}
		name := intern.String(def.Label)
		if _, ok := t.m.Get(name); ok {
			return nil, errors.Errorf("Duplicate binding: function %q is already defined", name)
		}
		t.m.Put(name, Entry{Arity: len(def.Params), Label: name})
	}
	return t, nil
}

// Lookup returns the Entry registered for name, if any.
func (t *Table) Lookup(name string) (Entry, bool) {
	return t.m.Get(name)
}
