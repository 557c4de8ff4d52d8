// Package ast defines the abstract syntax tree produced by the parser:
// expressions, function definitions, and whole programs.
//
// AST nodes are a strict tree, constructed once by the parser and
// consumed once by the depth analyzer and code generator; there are no
// back-edges and no node is shared between two parents.
package ast

// Expr is implemented by every expression node. The interface carries
// no behavior of its own; callers recover the concrete shape with a
// type switch.
type Expr interface {
	exprNode()
}

// Number is an integer literal, already range-checked by the parser to
// fit in [-2^62, 2^62).
type Number struct {
	Value int64
}

// Boolean is a literal true/false.
type Boolean struct {
	Value bool
}

// Input reads the tagged argument passed to the emitted program. Only
// valid inside the main expression.
type Input struct{}

// Id references a bound identifier: a let-binding or function parameter.
type Id struct {
	Name string
}

// Binding is one (name expr) pair inside a Let.
type Binding struct {
	Name string
	Rhs  Expr
}

// Let introduces one or more bindings, evaluated left to right, each
// visible to the bindings after it, then evaluates Body with all of
// them in scope.
type Let struct {
	Bindings []Binding
	Body     Expr
}

// UnOp1 names the unary primitives.
type UnOp1 int

// The four unary primitives.
const (
	Add1 UnOp1 = iota
	Sub1
	IsNum
	IsBool
)

// UnOp applies a unary primitive to Operand.
type UnOp struct {
	Op      UnOp1
	Operand Expr
}

// BinOp2 names the binary primitives.
type BinOp2 int

// The eight binary primitives.
const (
	Plus BinOp2 = iota
	Minus
	Times
	Equal
	Less
	LessEqual
	Greater
	GreaterEqual
)

// BinOp applies a binary primitive to Lhs and Rhs.
type BinOp struct {
	Op  BinOp2
	Lhs Expr
	Rhs Expr
}

// Set reassigns the mutable binding Name to the value of Rhs, and
// itself evaluates to that value.
type Set struct {
	Name string
	Rhs  Expr
}

// If evaluates Cond; if it is the false constant, evaluates Else,
// otherwise evaluates Then.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Block evaluates each of Exprs in order; its value is the value of
// the last one. Exprs is never empty.
type Block struct {
	Exprs []Expr
}

// Loop repeats Body until a Break inside it (directly, or nested
// inside If/Block/Let but not inside a nested Loop or Call) fires.
type Loop struct {
	Body Expr
}

// Break evaluates Value and then exits the nearest enclosing Loop with
// that value as the loop's result.
type Break struct {
	Value Expr
}

// Call invokes the function named Name with Args. Name and the arity
// of Args are checked against the function table at compile time.
type Call struct {
	Name string
	Args []Expr
}

// Print evaluates Value, prints it via the runtime's snek_print, and
// itself evaluates to that value.
type Print struct {
	Value Expr
}

func (Number) exprNode()  {}
func (Boolean) exprNode() {}
func (Input) exprNode()   {}
func (Id) exprNode()      {}
func (Let) exprNode()     {}
func (UnOp) exprNode()    {}
func (BinOp) exprNode()   {}
func (Set) exprNode()     {}
func (If) exprNode()      {}
func (Block) exprNode()   {}
func (Loop) exprNode()    {}
func (Break) exprNode()   {}
func (Call) exprNode()    {}
func (Print) exprNode()   {}

// Func is a user-defined function: a name, its (non-empty, distinct,
// non-reserved) parameter names, and its body.
type Func struct {
	Label  string
	Params []string
	Body   Expr
}

// Program is an ordered list of function definitions followed by
// exactly one main expression.
type Program struct {
	Defs []Func
	Main Expr
}
