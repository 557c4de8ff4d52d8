// Package sexp builds a tree of S-expression values out of the token
// stream produced by the lexer. It is the "reader boundary" of the
// compiler pipeline: callers hand it source text wrapped in an outer
// pair of parentheses and get back a single top-level Value, or an
// error describing where the shape of the input broke down.
package sexp

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/skx/snek-compiler/lexer"
	"github.com/skx/snek-compiler/token"
)

// Kind distinguishes the shapes a Value can take: a symbol atom, a
// number atom, or a list.
type Kind int

// The three Value kinds.
const (
	AtomSymbol Kind = iota
	AtomNumber
	List
)

// Value is a single node of the parsed S-expression tree: either an
// atom (a symbol or a number) or a list of child Values.
type Value struct {
	Kind Kind

	// Symbol holds the literal text when Kind == AtomSymbol.
	Symbol string

	// Number holds the parsed integer when Kind == AtomNumber.
	Number int64

	// Items holds the children when Kind == List.
	Items []Value
}

// IsList reports whether v is a list.
func (v Value) IsList() bool { return v.Kind == List }

// IsSymbol reports whether v is a symbol atom whose text is name.
func (v Value) IsSymbol(name string) bool {
	return v.Kind == AtomSymbol && v.Symbol == name
}

// reader walks a token stream, building a Value tree.
type reader struct {
	lex  *lexer.Lexer
	peek token.Token
	have bool
}

// Read parses the entirety of src, which must be a single top-level
// S-expression (the caller wraps the source file in an outer pair of
// parentheses before calling Read, per the compiler's CLI contract).
func Read(src string) (Value, error) {
	r := &reader{lex: lexer.New(src)}
	v, err := r.readValue()
	if err != nil {
		return Value{}, err
	}
	if tok := r.next(); tok.Type != token.EOF {
		return Value{}, errors.Errorf("Syntax error: trailing content after top-level expression: %q", tok.Literal)
	}
	return v, nil
}

func (r *reader) next() token.Token {
	if r.have {
		r.have = false
		return r.peek
	}
	return r.lex.NextToken()
}

func (r *reader) peekToken() token.Token {
	if !r.have {
		r.peek = r.lex.NextToken()
		r.have = true
	}
	return r.peek
}

func (r *reader) readValue() (Value, error) {
	tok := r.next()

	switch tok.Type {
	case token.LPAREN:
		return r.readList()
	case token.NUMBER:
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return Value{}, errors.Wrapf(err, "Invalid number literal %q", tok.Literal)
		}
		return Value{Kind: AtomNumber, Number: n}, nil
	case token.SYMBOL:
		return Value{Kind: AtomSymbol, Symbol: tok.Literal}, nil
	case token.RPAREN:
		return Value{}, errors.New("Syntax error: unexpected ')'")
	case token.ERROR:
		return Value{}, errors.Errorf("Syntax error: %s", tok.Literal)
	default:
		return Value{}, errors.New("Syntax error: unexpected end of input")
	}
}

func (r *reader) readList() (Value, error) {
	items := []Value{}
	for {
		if r.peekToken().Type == token.RPAREN {
			r.next()
			return Value{Kind: List, Items: items}, nil
		}
		if r.peekToken().Type == token.EOF {
			return Value{}, errors.New("Syntax error: unterminated list, missing ')'")
		}
		v, err := r.readValue()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
}
