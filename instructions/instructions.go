// Package instructions contains the abstract instruction IR the code
// generator produces and the printer renders to assembly text. A
// program is lowered into a flat []Instruction; this package only
// describes instruction shape, not how to emit or print them.
package instructions

// Reg names an x86-64 general-purpose register touched by emitted
// code. RSP is handled separately: almost every mention of it is a
// memory operand (a stack slot), not a bare register operand.
type Reg string

const (
	RAX Reg = "rax"
	RBX Reg = "rbx"
	RCX Reg = "rcx"
	RDI Reg = "rdi"
	RSP Reg = "rsp"
)

// OperandKind distinguishes the operand shapes an Instruction can
// hold: a bare register, an immediate integer, a stack slot relative
// to RSP, or a label reference used as a jump/call target.
type OperandKind byte

const (
	OpNone  OperandKind = 0
	OpReg   OperandKind = 'r'
	OpImm   OperandKind = 'i'
	OpSlot  OperandKind = 's'
	OpLabel OperandKind = 'l'
)

// Operand is a single operand of an Instruction. Exactly one field is
// meaningful, selected by Kind.
type Operand struct {
	Kind  OperandKind
	Reg   Reg
	Imm   int64
	Slot  int // stack index; rendered as [rsp+8*Slot]
	Label string
}

// RegOp builds a register operand.
func RegOp(r Reg) Operand { return Operand{Kind: OpReg, Reg: r} }

// ImmOp builds an immediate operand.
func ImmOp(n int64) Operand { return Operand{Kind: OpImm, Imm: n} }

// SlotOp builds a stack-slot operand addressing [rsp+8*si].
func SlotOp(si int) Operand { return Operand{Kind: OpSlot, Slot: si} }

// LabelOp builds a label-reference operand.
func LabelOp(name string) Operand { return Operand{Kind: OpLabel, Label: name} }

// Op names the kind of instruction. Naming follows the teacher's
// byte-enum convention (instructions/instructions.go), re-purposed for
// an x86-64 mnemonic set instead of RPN math operators.
type Op byte

const (
	Mov    Op = 'M'
	Add    Op = '+'
	Sub    Op = '-'
	IMul   Op = '*'
	Sar    Op = '>'
	Cmp    Op = '?'
	And    Op = '&'
	CMovE  Op = 'e'
	CMovNE Op = 'N'
	CMovG  Op = 'g'
	CMovGE Op = 'G'
	CMovL  Op = 'l'
	CMovLE Op = 'L'
	CMovO  Op = 'o'
	Jmp    Op = 'j'
	Je     Op = 'z'
	Jne    Op = 'n'
	Jo     Op = 'v'
	Label  Op = ':'
	Call   Op = 'c'
	Ret    Op = 'R'
)

// Instruction is one line of the lowered program. Dst/Src follow
// Intel operand order (destination first) to match the printer's
// output. Not every Op uses both operands: Label/Jmp/Je/... variants
// use only Dst.Label, Ret uses neither.
type Instruction struct {
	Op  Op
	Dst Operand
	Src Operand
}

// Lbl builds a Label instruction naming a jump target.
func Lbl(name string) Instruction { return Instruction{Op: Label, Dst: LabelOp(name)} }

// Jump builds an unconditional or conditional jump to a label.
func Jump(op Op, label string) Instruction { return Instruction{Op: op, Dst: LabelOp(label)} }
