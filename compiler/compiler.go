// Package compiler contains the core of our compiler.
//
// In brief we go through a five-step process:
//
//  1. Read the expression into a single top-level S-expression.
//
//  2. Parse that S-expression into a Program: function definitions
//     plus a trailing main expression.
//
//  3. Build the function table, so calls may resolve forward and
//     mutually-recursive references.
//
//  4. Walk the Program, generating an abstract instruction list for
//     every definition and for main.
//
//  5. Render the instruction list as assembly text.
package compiler

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/skx/snek-compiler/codegen"
	"github.com/skx/snek-compiler/functable"
	"github.com/skx/snek-compiler/parser"
	"github.com/skx/snek-compiler/printer"
)

// Compiler holds our object-state.
type Compiler struct {

	// debug holds a flag to decide if -debug dumps are logged via
	// logrus while compiling.
	debug bool

	// expression holds the program text we're compiling.
	expression string
}

// New creates a new compiler, given the program text in the constructor.
func New(input string) *Compiler {
	return &Compiler{expression: input}
}

// SetDebug changes the debug-flag for our output.
func (c *Compiler) SetDebug(val bool) {
	c.debug = val
}

// Compile converts the input program into x86-64 assembly text.
func (c *Compiler) Compile() (string, error) {
	prog, err := parser.Parse(c.expression)
	if err != nil {
		return "", errors.Wrap(err, "parsing")
	}
	if c.debug {
		logrus.Debugf("parsed program: %d definition(s), main=%#v", len(prog.Defs), prog.Main)
	}

	ft, err := functable.Build(prog.Defs)
	if err != nil {
		return "", errors.Wrap(err, "building function table")
	}
	if c.debug {
		for _, def := range prog.Defs {
			logrus.Debugf("registered function: %s/%d", def.Label, len(def.Params))
		}
	}

	gen := codegen.New(ft)
	instrs, err := gen.Generate(prog)
	if err != nil {
		return "", errors.Wrap(err, "generating code")
	}
	if c.debug {
		logrus.Debugf("generated %d instruction(s)", len(instrs))
	}

	return printer.Print(instrs), nil
}
