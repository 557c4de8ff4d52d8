package depth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skx/snek-compiler/ast"
)

func TestLiteralsHaveZeroDepth(t *testing.T) {
	require.Equal(t, 0, Of(ast.Number{Value: 5}))
	require.Equal(t, 0, Of(ast.Boolean{Value: true}))
	require.Equal(t, 0, Of(ast.Input{}))
	require.Equal(t, 0, Of(ast.Id{Name: "x"}))
}

func TestBinOpDepth(t *testing.T) {
	// (+ 1 2) -> rhs at depth 0, lhs needs 1 extra slot to hold the
	// spilled rhs, so max(0, 1+0) == 1.
	e := ast.BinOp{Op: ast.Plus, Lhs: ast.Number{Value: 1}, Rhs: ast.Number{Value: 2}}
	require.Equal(t, 1, Of(e))
}

func TestLetDepthAtLeastBindingCount(t *testing.T) {
	e := ast.Let{
		Bindings: []ast.Binding{
			{Name: "a", Rhs: ast.Number{Value: 1}},
			{Name: "b", Rhs: ast.Number{Value: 2}},
		},
		Body: ast.Id{Name: "b"},
	}
	// Every slot written (0 and 1 for the two bindings) must be < Of(e).
	require.GreaterOrEqual(t, Of(e), 2)
}

func TestPrintReservesTwoExtraSlots(t *testing.T) {
	require.Equal(t, 2, Of(ast.Print{Value: ast.Number{Value: 1}}))
}

func TestCallDepthAtLeastArgCount(t *testing.T) {
	e := ast.Call{Name: "f", Args: []ast.Expr{ast.Number{Value: 1}, ast.Number{Value: 2}, ast.Number{Value: 3}}}
	require.GreaterOrEqual(t, Of(e), 3)
}

func TestNestedLoopBreakBlock(t *testing.T) {
	e := ast.Loop{Body: ast.Block{Exprs: []ast.Expr{
		ast.If{
			Cond: ast.BinOp{Op: ast.Greater, Lhs: ast.Id{Name: "i"}, Rhs: ast.Number{Value: 10}},
			Then: ast.Break{Value: ast.Id{Name: "s"}},
			Else: ast.Block{Exprs: []ast.Expr{
				ast.Set{Name: "s", Rhs: ast.BinOp{Op: ast.Plus, Lhs: ast.Id{Name: "s"}, Rhs: ast.Id{Name: "i"}}},
				ast.Set{Name: "i", Rhs: ast.UnOp{Op: ast.Add1, Operand: ast.Id{Name: "i"}}},
			}},
		},
	}}}
	require.GreaterOrEqual(t, Of(e), 1)
}
