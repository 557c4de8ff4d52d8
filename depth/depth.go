// Package depth computes, for an expression, a safe upper bound on the
// number of stack slots its evaluation needs for temporaries and
// locals. The code generator uses this bound to pre-size activation
// frames; any value that is ≥ every slot index actually written during
// code generation is acceptable, so the rules below follow the
// reference formula but are not required to be tight.
package depth

import "github.com/skx/snek-compiler/ast"

// Of returns an upper bound on the stack depth required to evaluate e.
func Of(e ast.Expr) int {
	switch n := e.(type) {
	case ast.Number, ast.Boolean, ast.Input, ast.Id:
		return 0

	case ast.UnOp:
		return Of(n.Operand)

	case ast.BinOp:
		return max(Of(n.Rhs), 1+Of(n.Lhs))

	case ast.Set:
		return Of(n.Rhs)

	case ast.If:
		return max(Of(n.Cond), Of(n.Then), Of(n.Else))

	case ast.Block:
		d := 0
		for _, sub := range n.Exprs {
			d = max(d, Of(sub))
		}
		return d

	case ast.Loop:
		return Of(n.Body)

	case ast.Break:
		return Of(n.Value)

	case ast.Let:
		k := len(n.Bindings)
		for i, b := range n.Bindings {
			k = max(k, Of(b.Rhs)+i)
		}
		return k + Of(n.Body)

	case ast.Call:
		k := len(n.Args)
		for i, a := range n.Args {
			k = max(k, Of(a)+i)
		}
		return k

	case ast.Print:
		return Of(n.Value) + 2

	default:
		// An AST node the parser never produces; treat conservatively.
		return 0
	}
}

func max(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
