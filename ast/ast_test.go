package ast

import "testing"

func TestExprNodesSatisfyExprInterface(t *testing.T) {
	var nodes = []Expr{
		Number{Value: 1},
		Boolean{Value: true},
		Input{},
		Id{Name: "x"},
		Let{Bindings: []Binding{{Name: "x", Rhs: Number{Value: 1}}}, Body: Id{Name: "x"}},
		UnOp{Op: Add1, Operand: Number{Value: 1}},
		BinOp{Op: Plus, Lhs: Number{Value: 1}, Rhs: Number{Value: 2}},
		Set{Name: "x", Rhs: Number{Value: 1}},
		If{Cond: Boolean{Value: true}, Then: Number{Value: 1}, Else: Number{Value: 2}},
		Block{Exprs: []Expr{Number{Value: 1}}},
		Loop{Body: Break{Value: Number{Value: 1}}},
		Break{Value: Number{Value: 1}},
		Call{Name: "f", Args: []Expr{Number{Value: 1}}},
		Print{Value: Number{Value: 1}},
	}
	for _, n := range nodes {
		if n == nil {
			t.Errorf("nil node in table")
		}
	}
}

func TestIsReservedWord(t *testing.T) {
	for _, w := range []string{"let", "if", "fun", "+", "isbool"} {
		if !IsReservedWord(w) {
			t.Errorf("expected %q to be reserved", w)
		}
	}
	if IsReservedWord("myvar") {
		t.Errorf("myvar should not be reserved")
	}
}

func TestIsReservedLabel(t *testing.T) {
	for _, l := range []string{"throw_error", "snek_print", "snek_error", "our_code_starts_here"} {
		if !IsReservedLabel(l) {
			t.Errorf("expected %q to be a reserved label", l)
		}
	}
	if IsReservedLabel("fact") {
		t.Errorf("fact should not be a reserved label")
	}
}
