// Package lexer turns raw S-expression source text into a stream of
// token.Token values: parentheses, integer literals, and symbols.
package lexer

import (
	"strings"

	"github.com/skx/snek-compiler/token"
)

// Lexer holds our object-state.
type Lexer struct {
	position     int    //current character position
	readPosition int    //next character position
	ch           rune   //current character
	characters   []rune //rune slice of input string
}

// New creates a Lexer instance from string input.
func New(input string) *Lexer {
	l := &Lexer{characters: []rune(input)}
	l.readChar()
	return l
}

// read one forward character
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.characters) {
		l.ch = rune(0)
	} else {
		l.ch = l.characters[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// NextToken reads the next token, skipping any leading white space.
func (l *Lexer) NextToken() token.Token {
	var tok token.Token
	l.skipWhitespace()

	switch l.ch {
	case rune('('):
		tok = newToken(token.LPAREN, l.ch)
	case rune(')'):
		tok = newToken(token.RPAREN, l.ch)
	case rune('-'):
		// "-3" is the number -3, but a bare "-" followed by whitespace
		// or a parenthesis is the subtraction symbol.
		if isDigit(l.peekChar()) {
			l.readChar() // swallow the '-'
			tok = l.readNumber()
			tok.Literal = "-" + tok.Literal
		} else {
			tok = l.readSymbol()
		}
		return tok
	case rune(0):
		tok.Literal = ""
		tok.Type = token.EOF
	default:
		if isDigit(l.ch) {
			return l.readNumber()
		}
		return l.readSymbol()
	}
	l.readChar()
	return tok
}

// return new token
func newToken(tokenType token.Type, ch rune) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch)}
}

// skip white space
func (l *Lexer) skipWhitespace() {
	for isWhitespace(l.ch) {
		l.readChar()
	}
}

// readNumber reads a run of digits into a NUMBER token. The caller has
// already consumed any leading '-'.
func (l *Lexer) readNumber() token.Token {
	str := ""

	accept := "0123456789"
	for strings.Contains(accept, string(l.ch)) {
		str += string(l.ch)
		l.readChar()
	}
	return token.Token{Type: token.NUMBER, Literal: str}
}

// readSymbol reads a run of non-whitespace, non-parenthesis characters
// into a SYMBOL token: identifiers, keywords, and operators such as
// "+", "<=", or "set!" are all symbols at this layer.
func (l *Lexer) readSymbol() token.Token {
	sym := ""

	for isSymbolChar(l.ch) {
		sym += string(l.ch)
		l.readChar()
	}

	if sym == "" {
		tok := token.Token{Type: token.ERROR, Literal: "unexpected character " + string(l.ch)}
		l.readChar()
		return tok
	}
	return token.Token{Type: token.SYMBOL, Literal: sym}
}

// peek character
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.characters) {
		return rune(0)
	}
	return l.characters[l.readPosition]
}

// is white space
func isWhitespace(ch rune) bool {
	return ch == rune(' ') || ch == rune('\t') || ch == rune('\n') || ch == rune('\r')
}

// is Digit
func isDigit(ch rune) bool {
	return rune('0') <= ch && ch <= rune('9')
}

// isSymbolChar reports whether ch may appear within a symbol: everything
// except whitespace, parentheses, and end-of-input.
func isSymbolChar(ch rune) bool {
	return !isWhitespace(ch) && ch != rune(0) && ch != rune('(') && ch != rune(')')
}
