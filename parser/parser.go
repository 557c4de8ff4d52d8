// Package parser builds an ast.Program out of a sexp.Value tree,
// validating keyword/arity/scope shape along the way. A parse failure
// is always fatal and single-shot: the first violation found aborts
// with an error whose text names the kind of violation (Syntax,
// Invalid, keyword, or Duplicate binding), per the compiler's error
// taxonomy.
package parser

import (
	"github.com/pkg/errors"

	"github.com/skx/snek-compiler/ast"
	"github.com/skx/snek-compiler/sexp"
)

// numeric bounds for an integer literal: [-2^62, 2^62).
const (
	maxLiteral = int64(1) << 62
	minLiteral = -(int64(1) << 62)
)

// Parse reads src — the program text, NOT yet wrapped in an outer pair
// of parentheses — and returns the Program it denotes.
func Parse(src string) (*ast.Program, error) {
	top, err := sexp.Read("(" + src + ")")
	if err != nil {
		return nil, err
	}
	if !top.IsList() {
		return nil, errors.New("Syntax error: Invalid program, program is not a list")
	}
	return parseProgram(top)
}

func parseProgram(v sexp.Value) (*ast.Program, error) {
	var defs []ast.Func

	for i, item := range v.Items {
		if isFuncDefine(item) {
			def, err := parseDefinition(item)
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
			continue
		}

		if i != len(v.Items)-1 {
			return nil, errors.New("Syntax error: Invalid program, main is not the last element")
		}
		main, err := parseExpr(item)
		if err != nil {
			return nil, err
		}
		return &ast.Program{Defs: defs, Main: main}, nil
	}

	return nil, errors.New("Syntax error: Invalid program, no main expression found")
}

// isFuncDefine reports whether v has the shape (fun (name p...) body).
func isFuncDefine(v sexp.Value) bool {
	if !v.IsList() || len(v.Items) != 3 {
		return false
	}
	return v.Items[0].IsSymbol("fun") && v.Items[1].IsList()
}

func parseDefinition(v sexp.Value) (ast.Func, error) {
	sig := v.Items[1].Items
	if len(sig) == 0 {
		return ast.Func{}, errors.New("Invalid function definition without function name")
	}

	nameVal := sig[0]
	if nameVal.Kind != sexp.AtomSymbol {
		return ast.Func{}, errors.New("Syntax error: Invalid function name")
	}
	name := nameVal.Symbol
	if ast.IsReservedLabel(name) {
		return ast.Func{}, errors.Errorf("Invalid function definition with reserved label function name %q", name)
	}

	var params []string
	seen := map[string]bool{}
	for _, p := range sig[1:] {
		if p.Kind != sexp.AtomSymbol {
			return ast.Func{}, errors.New("Syntax error: Invalid parameter, expected a symbol")
		}
		if ast.IsReservedWord(p.Symbol) {
			return ast.Func{}, errors.Errorf("Invalid keyword %q matches reserved word", p.Symbol)
		}
		if seen[p.Symbol] {
			return ast.Func{}, errors.Errorf("Duplicate binding: parameter %q repeated in function %q", p.Symbol, name)
		}
		seen[p.Symbol] = true
		params = append(params, p.Symbol)
	}
	if len(params) == 0 {
		return ast.Func{}, errors.Errorf("Invalid function definition: %q has no parameters", name)
	}

	body, err := parseExpr(v.Items[2])
	if err != nil {
		return ast.Func{}, err
	}
	return ast.Func{Label: name, Params: params, Body: body}, nil
}

func parseBind(v sexp.Value) (ast.Binding, error) {
	if !v.IsList() || len(v.Items) != 2 {
		return ast.Binding{}, errors.New("Syntax error: Invalid bind, expected (name expr)")
	}
	nameVal := v.Items[0]
	if nameVal.Kind != sexp.AtomSymbol {
		return ast.Binding{}, errors.New("Syntax error: Invalid bind, name is not a symbol")
	}
	if ast.IsReservedWord(nameVal.Symbol) {
		return ast.Binding{}, errors.Errorf("Invalid keyword %q matches reserved word", nameVal.Symbol)
	}
	rhs, err := parseExpr(v.Items[1])
	if err != nil {
		return ast.Binding{}, err
	}
	return ast.Binding{Name: nameVal.Symbol, Rhs: rhs}, nil
}

var unOps = map[string]ast.UnOp1{
	"add1":   ast.Add1,
	"sub1":   ast.Sub1,
	"isnum":  ast.IsNum,
	"isbool": ast.IsBool,
}

var binOps = map[string]ast.BinOp2{
	"+":  ast.Plus,
	"-":  ast.Minus,
	"*":  ast.Times,
	"=":  ast.Equal,
	"<":  ast.Less,
	"<=": ast.LessEqual,
	">":  ast.Greater,
	">=": ast.GreaterEqual,
}

func parseExpr(v sexp.Value) (ast.Expr, error) {
	switch v.Kind {
	case sexp.AtomNumber:
		if v.Number >= maxLiteral || v.Number < minLiteral {
			return nil, errors.Errorf("Invalid operand %d, outside representable range", v.Number)
		}
		return ast.Number{Value: v.Number}, nil

	case sexp.AtomSymbol:
		switch v.Symbol {
		case "true":
			return ast.Boolean{Value: true}, nil
		case "false":
			return ast.Boolean{Value: false}, nil
		case "input":
			return ast.Input{}, nil
		default:
			return ast.Id{Name: v.Symbol}, nil
		}

	case sexp.List:
		return parseList(v.Items)
	}
	return nil, errors.New("Syntax error: Invalid expression")
}

func parseList(items []sexp.Value) (ast.Expr, error) {
	if len(items) == 0 {
		return nil, errors.New("Syntax error: Invalid empty expression ()")
	}
	head := items[0]
	if head.Kind != sexp.AtomSymbol {
		return nil, errors.New("Syntax error: Invalid expression, expected an operator or function name")
	}
	op := head.Symbol

	switch op {
	case "let":
		if len(items) != 3 || !items[1].IsList() {
			return nil, errors.New("Syntax error: Invalid let, expected (let (bindings...) body)")
		}
		rawBindings := items[1].Items
		if len(rawBindings) == 0 {
			return nil, errors.New("Invalid let: at least one binding is required")
		}
		bindings := make([]ast.Binding, 0, len(rawBindings))
		seen := map[string]bool{}
		for _, rb := range rawBindings {
			b, err := parseBind(rb)
			if err != nil {
				return nil, err
			}
			if seen[b.Name] {
				return nil, errors.Errorf("Duplicate binding %q Invalid", b.Name)
			}
			seen[b.Name] = true
			bindings = append(bindings, b)
		}
		body, err := parseExpr(items[2])
		if err != nil {
			return nil, err
		}
		return ast.Let{Bindings: bindings, Body: body}, nil

	case "add1", "sub1", "isnum", "isbool":
		if len(items) != 2 {
			return nil, errors.Errorf("Syntax error: Invalid %s, expected exactly one operand", op)
		}
		operand, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		return ast.UnOp{Op: unOps[op], Operand: operand}, nil

	case "+", "-", "*", "=", "<", "<=", ">", ">=":
		if len(items) != 3 {
			return nil, errors.Errorf("Syntax error: Invalid %s, expected exactly two operands", op)
		}
		lhs, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		rhs, err := parseExpr(items[2])
		if err != nil {
			return nil, err
		}
		return ast.BinOp{Op: binOps[op], Lhs: lhs, Rhs: rhs}, nil

	case "print":
		if len(items) != 2 {
			return nil, errors.New("Syntax error: Invalid print, expected exactly one operand")
		}
		val, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		return ast.Print{Value: val}, nil

	case "if":
		if len(items) != 4 {
			return nil, errors.New("Syntax error: Invalid if, expected (if cond then else)")
		}
		cond, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		then, err := parseExpr(items[2])
		if err != nil {
			return nil, err
		}
		els, err := parseExpr(items[3])
		if err != nil {
			return nil, err
		}
		return ast.If{Cond: cond, Then: then, Else: els}, nil

	case "loop":
		if len(items) != 2 {
			return nil, errors.New("Syntax error: Invalid loop, expected exactly one body expression")
		}
		body, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		return ast.Loop{Body: body}, nil

	case "break":
		if len(items) != 2 {
			return nil, errors.New("Syntax error: Invalid break, expected exactly one operand")
		}
		val, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		return ast.Break{Value: val}, nil

	case "set!":
		if len(items) != 3 {
			return nil, errors.New("Syntax error: Invalid set!, expected (set! name expr)")
		}
		if items[1].Kind != sexp.AtomSymbol {
			return nil, errors.New("Syntax error: Invalid set!, expected a symbol name")
		}
		if ast.IsReservedWord(items[1].Symbol) {
			return nil, errors.Errorf("Invalid keyword %q matches reserved word", items[1].Symbol)
		}
		val, err := parseExpr(items[2])
		if err != nil {
			return nil, err
		}
		return ast.Set{Name: items[1].Symbol, Rhs: val}, nil

	case "block":
		if len(items) < 2 {
			return nil, errors.New("Syntax error: Invalid Block with 0 subexpr")
		}
		exprs := make([]ast.Expr, 0, len(items)-1)
		for _, sub := range items[1:] {
			e, err := parseExpr(sub)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		return ast.Block{Exprs: exprs}, nil

	default:
		if ast.IsReservedWord(op) {
			return nil, errors.Errorf("Invalid keyword %q matches reserved word", op)
		}
		args := make([]ast.Expr, 0, len(items)-1)
		for _, sub := range items[1:] {
			a, err := parseExpr(sub)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return ast.Call{Name: op, Args: args}, nil
	}
}
