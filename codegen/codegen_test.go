package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skx/snek-compiler/functable"
	"github.com/skx/snek-compiler/instructions"
	"github.com/skx/snek-compiler/parser"
	"github.com/skx/snek-compiler/printer"
)

func generate(t *testing.T, src string) []instructions.Instruction {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	ft, err := functable.Build(prog.Defs)
	require.NoError(t, err)
	instrs, err := New(ft).Generate(prog)
	require.NoError(t, err)
	return instrs
}

func TestGenerateNumberLiteral(t *testing.T) {
	instrs := generate(t, "73")
	require.NotEmpty(t, instrs)
	require.Equal(t, instructions.Label, instrs[0].Op)
	require.Equal(t, mainLabel, instrs[0].Dst.Label)
}

func TestGenerateFactorialEmitsNormalCall(t *testing.T) {
	instrs := generate(t, `(fun (fact n) (if (< n 2) 1 (* n (fact (sub1 n))))) (fact 7)`)
	out := printer.Print(instrs)
	require.Contains(t, out, "call fact")
	require.Contains(t, out, "fact:")
}

func TestGenerateTailRecursiveLoopSumUsesJumpNotCall(t *testing.T) {
	instrs := generate(t, `(fun (loop-sum n acc) (if (= n 0) acc (loop-sum (sub1 n) (+ acc n)))) (loop-sum 1000000 0)`)
	out := printer.Print(instrs)
	// Only loop-sum's own body is checked: main's call into loop-sum
	// passes 2 args while main has none, so that one is a normal call.
	body := out[strings.Index(out, "loop-sum:"):strings.Index(out, mainLabel+":")]
	require.Contains(t, body, "jmp loop-sum")
	require.NotContains(t, body, "call loop-sum")
}

func TestGenerateNonTailCallToDifferentArityFallsBackToCall(t *testing.T) {
	// (g x 2) is in tail position in f, but it passes 2 args while f
	// has only 1 param, so it falls back to a normal call.
	instrs := generate(t, `(fun (f x) (g x 2)) (fun (g a b) (+ a b)) (f 3)`)
	out := printer.Print(instrs)
	require.Contains(t, out, "call g")
}

func TestGenerateBreakOutsideLoopFails(t *testing.T) {
	prog, err := parser.Parse("(break 1)")
	require.NoError(t, err)
	ft, err := functable.Build(prog.Defs)
	require.NoError(t, err)
	_, err = New(ft).Generate(prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "break")
}

func TestGenerateUnboundIdentifierFails(t *testing.T) {
	prog, err := parser.Parse("x")
	require.NoError(t, err)
	ft, err := functable.Build(prog.Defs)
	require.NoError(t, err)
	_, err = New(ft).Generate(prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Unbound variable identifier x")
}

func TestGenerateCallToUndefinedFunctionFails(t *testing.T) {
	prog, err := parser.Parse("(f 1)")
	require.NoError(t, err)
	ft, err := functable.Build(prog.Defs)
	require.NoError(t, err)
	_, err = New(ft).Generate(prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid function")
}

func TestGenerateLoopBreakBlockEmitsLoopLabels(t *testing.T) {
	instrs := generate(t, "(block (let ((i 0) (s 0)) (loop (if (> i 10) (break s) (block (set! s (+ s i)) (set! i (add1 i)))))))")
	out := printer.Print(instrs)
	require.Contains(t, out, "loop_start1:")
	require.Contains(t, out, "jmp loop_start1")
}

func TestGenerateEqualityCheckPreservesInputAcrossGuard(t *testing.T) {
	// RDI holds the live `input` value throughout main; the tag/overflow
	// guards must only move an error code into RDI on the failing
	// branch (cmovne/cmovo), never unconditionally ahead of the
	// jne/jo, or a passing check on a false branch like this one would
	// clobber `input` before it's read back.
	instrs := generate(t, "(if (= input 0) 1 input)")
	out := printer.Print(instrs)
	require.Contains(t, out, "cmovne rdi,")
	require.NotContains(t, out, "mov rdi, 1\n\tjne")
}

func TestGenerateArithmeticOverflowCheckUsesCMovO(t *testing.T) {
	instrs := generate(t, "(+ 1 2)")
	out := printer.Print(instrs)
	require.Contains(t, out, "cmovo rdi,")
	require.NotContains(t, out, "mov rdi, 2\n\tjo")
}

func TestFrameSlotsIsAlwaysOdd(t *testing.T) {
	for d := 0; d < 8; d++ {
		slots := frameSlots(d)
		if slots%2 == 0 {
			t.Errorf("frameSlots(%d) = %d, expected an odd slot count", d, slots)
		}
	}
}
