// Package codegen lowers a parsed ast.Program into a flat instruction
// list per spec.md §4.4: one pass per function definition plus one
// for main, each threading a stack index, a persistent environment, a
// fresh-label counter, a loop-label stack, and the tail-call context
// flags needed to decide whether a Call reuses the caller's frame.
package codegen

import (
	"fmt"

	"github.com/josharian/intern"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/skx/snek-compiler/ast"
	"github.com/skx/snek-compiler/depth"
	"github.com/skx/snek-compiler/functable"
	"github.com/skx/snek-compiler/instructions"
	"github.com/skx/snek-compiler/stack"
)

// Tagged boolean constants, per spec.md §3.
const (
	trueVal  = int64(3)
	falseVal = int64(1)
)

// Runtime error codes, per spec.md §7.
const (
	errInvalidArgument = int64(1)
	errOverflow        = int64(2)
)

const (
	throwErrorLabel = "throw_error"
	snekPrintLabel  = "snek_print"
	mainLabel       = "our_code_starts_here"
)

// Generator holds the state threaded across one whole-program lowering:
// the function table built by the previous pass, and a monotonic
// label counter shared by every definition and main so generated
// labels never collide across functions.
type Generator struct {
	funcs   *functable.Table
	labelID int
}

// New returns a Generator that resolves calls against ft.
func New(ft *functable.Table) *Generator {
	return &Generator{funcs: ft}
}

// context carries the per-expression compile-time state of spec.md
// §4.4: the next free stack slot, the identifier environment, the
// enclosing loop's break-target stack, and the flags that decide
// whether a Call in tail position may become a jump.
type context struct {
	si                  int
	env                 Env
	loopStack           *stack.Stack
	isMain              bool
	isTail              bool
	enclosingArity      int
	enclosingFrameBytes int64
}

// Generate lowers every definition and then main, in that order, into
// one flat instruction stream. Definitions may be compiled in any
// order since the function table (built by a prior pass) already
// resolves forward references and mutual recursion.
func (g *Generator) Generate(prog *ast.Program) ([]instructions.Instruction, error) {
	var out []instructions.Instruction

	for _, def := range prog.Defs {
		logrus.Debugln("codegen: compiling function", def.Label)
		fn, err := g.compileFunction(def)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling function %q", def.Label)
		}
		out = append(out, fn...)
	}

	main, err := g.compileMain(prog.Main)
	if err != nil {
		return nil, errors.Wrap(err, "compiling main")
	}
	out = append(out, main...)

	return out, nil
}

// frameSlots returns the number of 8-byte slots to reserve for an
// activation whose body needs d temporaries: d rounded up to even,
// plus one, so the frame is always an odd slot count (spec.md
// GLOSSARY "Frame slots").
func frameSlots(d int) int {
	if d%2 != 0 {
		d++
	}
	return d + 1
}

func (g *Generator) compileFunction(def ast.Func) ([]instructions.Instruction, error) {
	d := depth.Of(def.Body)
	slots := frameSlots(d)
	frameBytes := int64(slots) * 8

	env := Env{}
	for i, p := range def.Params {
		env[p] = slots + i + 1
	}

	ctx := context{
		si:                  0,
		env:                 env,
		loopStack:           stack.New(),
		isMain:              false,
		isTail:              true,
		enclosingArity:      len(def.Params),
		enclosingFrameBytes: frameBytes,
	}

	body, err := g.lower(def.Body, ctx)
	if err != nil {
		return nil, err
	}

	out := []instructions.Instruction{
		instructions.Lbl(intern.String(def.Label)),
		{Op: instructions.Sub, Dst: instructions.RegOp(instructions.RSP), Src: instructions.ImmOp(frameBytes)},
	}
	out = append(out, body...)
	out = append(out,
		instructions.Instruction{Op: instructions.Add, Dst: instructions.RegOp(instructions.RSP), Src: instructions.ImmOp(frameBytes)},
		instructions.Instruction{Op: instructions.Ret},
	)
	return out, nil
}

func (g *Generator) compileMain(main ast.Expr) ([]instructions.Instruction, error) {
	d := depth.Of(main)
	slots := frameSlots(d)
	frameBytes := int64(slots) * 8

	ctx := context{
		si:                  0,
		env:                 Env{},
		loopStack:           stack.New(),
		isMain:              true,
		isTail:              true,
		enclosingArity:      0,
		enclosingFrameBytes: frameBytes,
	}

	body, err := g.lower(main, ctx)
	if err != nil {
		return nil, err
	}

	out := []instructions.Instruction{
		instructions.Lbl(mainLabel),
		{Op: instructions.Sub, Dst: instructions.RegOp(instructions.RSP), Src: instructions.ImmOp(frameBytes)},
	}
	out = append(out, body...)
	out = append(out,
		instructions.Instruction{Op: instructions.Add, Dst: instructions.RegOp(instructions.RSP), Src: instructions.ImmOp(frameBytes)},
		instructions.Instruction{Op: instructions.Ret},
	)
	return out, nil
}

// fresh returns a new, program-unique label built from prefix.
func (g *Generator) fresh(prefix string) string {
	g.labelID++
	return intern.String(fmt.Sprintf("%s%d", prefix, g.labelID))
}
