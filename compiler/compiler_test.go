package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileNumberLiteral(t *testing.T) {
	c := New("73")
	out, err := c.Compile()
	require.NoError(t, err)
	require.Contains(t, out, "our_code_starts_here:")
	require.Contains(t, out, "extern snek_error")
	require.Contains(t, out, "extern snek_print")
}

func TestCompileFactorial(t *testing.T) {
	c := New(`(fun (fact n) (if (< n 2) 1 (* n (fact (sub1 n))))) (fact 7)`)
	out, err := c.Compile()
	require.NoError(t, err)
	require.Contains(t, out, "fact:")
	require.Contains(t, out, "call fact")
}

func TestCompileTailRecursiveLoopSum(t *testing.T) {
	c := New(`(fun (loop-sum n acc) (if (= n 0) acc (loop-sum (sub1 n) (+ acc n)))) (loop-sum 1000000 0)`)
	out, err := c.Compile()
	require.NoError(t, err)
	// main's own call into loop-sum is a normal call; the recursion
	// inside loop-sum's body is a jump.
	body := out[strings.Index(out, "loop-sum:"):strings.Index(out, "our_code_starts_here:")]
	require.Contains(t, body, "jmp loop-sum")
	require.NotContains(t, body, "call loop-sum")
}

func TestCompileRejectsParseError(t *testing.T) {
	c := New("(let () 1)")
	_, err := c.Compile()
	require.Error(t, err)
}

func TestCompileRejectsUnboundIdentifier(t *testing.T) {
	c := New("x")
	_, err := c.Compile()
	require.Error(t, err)
	require.Contains(t, err.Error(), "Unbound variable identifier")
}

func TestCompileRejectsBreakOutsideLoop(t *testing.T) {
	c := New("(break 1)")
	_, err := c.Compile()
	require.Error(t, err)
	require.Contains(t, err.Error(), "break")
}

func TestCompileDebugModeDoesNotError(t *testing.T) {
	c := New("(block (let ((i 0) (s 0)) (loop (if (> i 10) (break s) (block (set! s (+ s i)) (set! i (add1 i)))))))")
	c.SetDebug(true)
	_, err := c.Compile()
	require.NoError(t, err)
}
