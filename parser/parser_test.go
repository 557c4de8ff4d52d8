package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skx/snek-compiler/ast"
)

func TestParseNumberLiteral(t *testing.T) {
	p, err := Parse("73")
	require.NoError(t, err)
	require.Empty(t, p.Defs)
	require.Equal(t, ast.Number{Value: 73}, p.Main)
}

func TestParseNestedAdd1Sub1(t *testing.T) {
	p, err := Parse("(add1 (add1 (add1 (sub1 4))))")
	require.NoError(t, err)
	require.IsType(t, ast.UnOp{}, p.Main)
}

func TestParseLetSetSequence(t *testing.T) {
	p, err := Parse("(let ((x 5)) (block (set! x (+ x x)) x))")
	require.NoError(t, err)
	let, ok := p.Main.(ast.Let)
	require.True(t, ok)
	require.Len(t, let.Bindings, 1)
	require.Equal(t, "x", let.Bindings[0].Name)
	require.IsType(t, ast.Block{}, let.Body)
}

func TestParseRejectsLetWithMultipleBodyExprs(t *testing.T) {
	_, err := Parse("(let ((x 5)) (set! x (+ x x)) x)")
	require.Error(t, err)
}

func TestParseFunctionDefinitionAndCall(t *testing.T) {
	src := `(fun (fact n) (if (< n 2) 1 (* n (fact (sub1 n))))) (fact 7)`
	p, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, p.Defs, 1)
	require.Equal(t, "fact", p.Defs[0].Label)
	require.Equal(t, []string{"n"}, p.Defs[0].Params)
	call, ok := p.Main.(ast.Call)
	require.True(t, ok)
	require.Equal(t, "fact", call.Name)
	require.Len(t, call.Args, 1)
}

func TestParseBlockLoopBreak(t *testing.T) {
	src := `(block (let ((i 0) (s 0)) (loop (if (> i 10) (break s) (block (set! s (+ s i)) (set! i (add1 i)))))))`
	p, err := Parse(src)
	require.NoError(t, err)
	require.IsType(t, ast.Block{}, p.Main)
}

func TestParseRejectsReservedWordAsBinding(t *testing.T) {
	_, err := Parse("(let ((true 5)) true)")
	require.Error(t, err)
	require.Contains(t, err.Error(), "keyword")
}

func TestParseRejectsDuplicateBinding(t *testing.T) {
	_, err := Parse("(let ((x 1) (x 2)) x)")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Duplicate binding")
}

func TestParseRejectsZeroBindingLet(t *testing.T) {
	_, err := Parse("(let () 1)")
	require.Error(t, err)
}

func TestParseRejectsEmptyBlock(t *testing.T) {
	_, err := Parse("(block)")
	require.Error(t, err)
}

func TestParseRejectsMainNotLast(t *testing.T) {
	_, err := Parse(`1 (fun (f x) x)`)
	require.Error(t, err)
}

func TestParseRejectsOutOfRangeLiteral(t *testing.T) {
	_, err := Parse("4611686018427387904")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid")
}

func TestParseRejectsDuplicateParameter(t *testing.T) {
	_, err := Parse(`(fun (f x x) x) 1`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Duplicate binding")
}

func TestParseRejectsZeroParamFunction(t *testing.T) {
	_, err := Parse(`(fun (f) 1) (f)`)
	require.Error(t, err)
}

func TestParseRejectsReservedLabelFunctionName(t *testing.T) {
	_, err := Parse(`(fun (snek_print x) x) 1`)
	require.Error(t, err)
}

func TestParseUnaryAndBinaryArity(t *testing.T) {
	_, err := Parse("(add1 1 2)")
	require.Error(t, err)

	_, err = Parse("(+ 1)")
	require.Error(t, err)
}
