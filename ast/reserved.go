package ast

// ReservedWords is the set of identifiers that may never be used in a
// binding or parameter position: the keywords, literals, and operator
// symbols of the language.
var ReservedWords = map[string]bool{
	"true": true, "false": true, "input": true,
	"let": true, "set!": true, "if": true,
	"block": true, "loop": true, "break": true,
	"add1": true, "sub1": true, "isnum": true, "isbool": true,
	"print": true, "fun": true,
	"+": true, "-": true, "*": true,
	"<": true, ">": true, ">=": true, "<=": true, "=": true,
}

// ReservedLabels is the set of names a user-defined function may not
// take, because the generated assembly already defines them.
var ReservedLabels = map[string]bool{
	"throw_error":          true,
	"snek_print":           true,
	"snek_error":           true,
	"our_code_starts_here": true,
}

// IsReservedWord reports whether name is a reserved keyword/operator.
func IsReservedWord(name string) bool { return ReservedWords[name] }

// IsReservedLabel reports whether name collides with a generated label.
func IsReservedLabel(name string) bool { return ReservedLabels[name] }
