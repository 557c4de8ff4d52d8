// Package printer renders a flat []instructions.Instruction into the
// assembly text format documented in spec.md §6: a fixed header
// declaring the runtime's external symbols, the throw_error
// trampoline, and then the body the code generator produced.
package printer

import (
	"fmt"
	"strings"

	"github.com/skx/snek-compiler/instructions"
)

const header = `.intel_syntax noprefix
.text
.extern snek_error
.extern snek_print
.global our_code_starts_here

throw_error:
	jmp snek_error

`

// Print renders body (the concatenated output of every compiled
// function plus main) as a complete assembly file.
func Print(body []instructions.Instruction) string {
	var sb strings.Builder
	sb.WriteString(header)
	for _, ins := range body {
		sb.WriteString(render(ins))
	}
	return sb.String()
}

func render(ins instructions.Instruction) string {
	switch ins.Op {
	case instructions.Label:
		return ins.Dst.Label + ":\n"

	case instructions.Ret:
		return "\tret\n"

	case instructions.Call:
		return fmt.Sprintf("\tcall %s\n", ins.Dst.Label)

	case instructions.Jmp:
		return fmt.Sprintf("\tjmp %s\n", ins.Dst.Label)
	case instructions.Je:
		return fmt.Sprintf("\tje %s\n", ins.Dst.Label)
	case instructions.Jne:
		return fmt.Sprintf("\tjne %s\n", ins.Dst.Label)
	case instructions.Jo:
		return fmt.Sprintf("\tjo %s\n", ins.Dst.Label)

	case instructions.Mov:
		return binary("mov", ins.Dst, ins.Src)
	case instructions.Add:
		return binary("add", ins.Dst, ins.Src)
	case instructions.Sub:
		return binary("sub", ins.Dst, ins.Src)
	case instructions.IMul:
		return binary("imul", ins.Dst, ins.Src)
	case instructions.Sar:
		return binary("sar", ins.Dst, ins.Src)
	case instructions.Cmp:
		return binary("cmp", ins.Dst, ins.Src)
	case instructions.And:
		return binary("and", ins.Dst, ins.Src)
	case instructions.CMovE:
		return binary("cmove", ins.Dst, ins.Src)
	case instructions.CMovNE:
		return binary("cmovne", ins.Dst, ins.Src)
	case instructions.CMovG:
		return binary("cmovg", ins.Dst, ins.Src)
	case instructions.CMovGE:
		return binary("cmovge", ins.Dst, ins.Src)
	case instructions.CMovL:
		return binary("cmovl", ins.Dst, ins.Src)
	case instructions.CMovLE:
		return binary("cmovle", ins.Dst, ins.Src)
	case instructions.CMovO:
		return binary("cmovo", ins.Dst, ins.Src)
	}

	return fmt.Sprintf("\t# unhandled instruction op %q\n", rune(ins.Op))
}

func binary(mnemonic string, dst, src instructions.Operand) string {
	return fmt.Sprintf("\t%s %s, %s\n", mnemonic, operand(dst), operand(src))
}

func operand(o instructions.Operand) string {
	switch o.Kind {
	case instructions.OpReg:
		return string(o.Reg)
	case instructions.OpImm:
		return fmt.Sprintf("%d", o.Imm)
	case instructions.OpSlot:
		return slotText(o.Slot)
	case instructions.OpLabel:
		return o.Label
	}
	return ""
}

// slotText renders a stack-index operand as a qword-sized memory
// reference relative to RSP, per spec.md §4.4 ("slot si is
// [RSP + 8*si]"). Negative slots address the outgoing-argument region
// a normal call builds just below the current stack pointer.
func slotText(si int) string {
	if si >= 0 {
		return fmt.Sprintf("qword ptr [rsp+%d]", si*8)
	}
	return fmt.Sprintf("qword ptr [rsp-%d]", -si*8)
}
