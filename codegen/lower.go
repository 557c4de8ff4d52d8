package codegen

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/skx/snek-compiler/ast"
	"github.com/skx/snek-compiler/instructions"
)

// lower dispatches on the concrete Expr type and returns the
// instructions that leave the expression's value in RAX.
func (g *Generator) lower(e ast.Expr, ctx context) ([]instructions.Instruction, error) {
	switch n := e.(type) {
	case ast.Number:
		return []instructions.Instruction{
			mov(acc(), instructions.ImmOp(n.Value<<1)),
		}, nil

	case ast.Boolean:
		v := falseVal
		if n.Value {
			v = trueVal
		}
		return []instructions.Instruction{mov(acc(), instructions.ImmOp(v))}, nil

	case ast.Input:
		if !ctx.isMain {
			return nil, errors.New("Invalid use of input outside main")
		}
		return []instructions.Instruction{mov(acc(), instructions.RegOp(instructions.RDI))}, nil

	case ast.Id:
		slot, ok := ctx.env[n.Name]
		if !ok {
			return nil, errors.Errorf("Unbound variable identifier %s", n.Name)
		}
		return []instructions.Instruction{mov(acc(), instructions.SlotOp(slot))}, nil

	case ast.Let:
		return g.lowerLet(n, ctx)

	case ast.UnOp:
		return g.lowerUnOp(n, ctx)

	case ast.BinOp:
		return g.lowerBinOp(n, ctx)

	case ast.Set:
		return g.lowerSet(n, ctx)

	case ast.If:
		return g.lowerIf(n, ctx)

	case ast.Block:
		return g.lowerBlock(n, ctx)

	case ast.Loop:
		return g.lowerLoop(n, ctx)

	case ast.Break:
		return g.lowerBreak(n, ctx)

	case ast.Call:
		return g.lowerCall(n, ctx)

	case ast.Print:
		return g.lowerPrint(n, ctx)
	}

	logrus.Panicln("codegen: unreachable expression kind reached lower()")
	return nil, nil
}

func (g *Generator) lowerLet(n ast.Let, ctx context) ([]instructions.Instruction, error) {
	var out []instructions.Instruction
	env := ctx.env

	for i, b := range n.Bindings {
		rhsCtx := ctx
		rhsCtx.si = ctx.si + i
		rhsCtx.env = env
		rhsCtx.isTail = false
		rhs, err := g.lower(b.Rhs, rhsCtx)
		if err != nil {
			return nil, err
		}
		out = append(out, rhs...)
		slot := ctx.si + i
		out = append(out, store(slot, acc()))
		env = env.Extend(b.Name, slot)
	}

	bodyCtx := ctx
	bodyCtx.si = ctx.si + len(n.Bindings)
	bodyCtx.env = env
	body, err := g.lower(n.Body, bodyCtx)
	if err != nil {
		return nil, err
	}
	return append(out, body...), nil
}

func (g *Generator) lowerUnOp(n ast.UnOp, ctx context) ([]instructions.Instruction, error) {
	operandCtx := ctx
	operandCtx.isTail = false
	operand, err := g.lower(n.Operand, operandCtx)
	if err != nil {
		return nil, err
	}
	out := append([]instructions.Instruction{}, operand...)

	switch n.Op {
	case ast.Add1, ast.Sub1:
		out = append(out, checkNotBool(instructions.RegOp(instructions.RAX))...)
		delta := int64(2)
		op := instructions.Add
		if n.Op == ast.Sub1 {
			op = instructions.Sub
		}
		out = append(out, instructions.Instruction{Op: op, Dst: acc(), Src: instructions.ImmOp(delta)})
		out = append(out, checkNotOverflow()...)
		return out, nil

	case ast.IsNum, ast.IsBool:
		wantBit := int64(0)
		if n.Op == ast.IsBool {
			wantBit = 1
		}
		out = append(out,
			mov(instructions.RegOp(instructions.RBX), acc()),
			instructions.Instruction{Op: instructions.And, Dst: instructions.RegOp(instructions.RBX), Src: instructions.ImmOp(1)},
			instructions.Instruction{Op: instructions.Cmp, Dst: instructions.RegOp(instructions.RBX), Src: instructions.ImmOp(wantBit)},
			mov(instructions.RegOp(instructions.RBX), instructions.ImmOp(falseVal)),
			mov(instructions.RegOp(instructions.RCX), instructions.ImmOp(trueVal)),
			instructions.Instruction{Op: instructions.CMovE, Dst: instructions.RegOp(instructions.RBX), Src: instructions.RegOp(instructions.RCX)},
			mov(acc(), instructions.RegOp(instructions.RBX)),
		)
		return out, nil
	}

	logrus.Panicln("codegen: unreachable unary operator")
	return nil, nil
}

func (g *Generator) lowerBinOp(n ast.BinOp, ctx context) ([]instructions.Instruction, error) {
	rhsCtx := ctx
	rhsCtx.isTail = false
	rhsSlot := ctx.si
	rhs, err := g.lower(n.Rhs, rhsCtx)
	if err != nil {
		return nil, err
	}
	out := append([]instructions.Instruction{}, rhs...)
	out = append(out, store(rhsSlot, acc()))

	lhsCtx := ctx
	lhsCtx.si = ctx.si + 1
	lhsCtx.isTail = false
	lhs, err := g.lower(n.Lhs, lhsCtx)
	if err != nil {
		return nil, err
	}
	out = append(out, lhs...)
	// acc now holds lhs; rhs is spilled at rhsSlot.

	switch n.Op {
	case ast.Plus, ast.Minus, ast.Times:
		out = append(out, checkNotBool(instructions.RegOp(instructions.RAX))...)
		out = append(out, checkNotBool(instructions.SlotOp(rhsSlot))...)
		switch n.Op {
		case ast.Plus:
			out = append(out, instructions.Instruction{Op: instructions.Add, Dst: acc(), Src: instructions.SlotOp(rhsSlot)})
		case ast.Minus:
			out = append(out, instructions.Instruction{Op: instructions.Sub, Dst: acc(), Src: instructions.SlotOp(rhsSlot)})
		case ast.Times:
			out = append(out,
				instructions.Instruction{Op: instructions.Sar, Dst: acc(), Src: instructions.ImmOp(1)},
				instructions.Instruction{Op: instructions.IMul, Dst: acc(), Src: instructions.SlotOp(rhsSlot)},
			)
		}
		out = append(out, checkNotOverflow()...)
		return out, nil

	case ast.Equal:
		out = append(out, checkTagsMatch(rhsSlot)...)
		out = append(out,
			instructions.Instruction{Op: instructions.Cmp, Dst: acc(), Src: instructions.SlotOp(rhsSlot)},
			mov(instructions.RegOp(instructions.RBX), instructions.ImmOp(falseVal)),
			mov(instructions.RegOp(instructions.RCX), instructions.ImmOp(trueVal)),
			instructions.Instruction{Op: instructions.CMovE, Dst: instructions.RegOp(instructions.RBX), Src: instructions.RegOp(instructions.RCX)},
			mov(acc(), instructions.RegOp(instructions.RBX)),
		)
		return out, nil

	case ast.Less, ast.LessEqual, ast.Greater, ast.GreaterEqual:
		out = append(out, checkNotBool(instructions.RegOp(instructions.RAX))...)
		out = append(out, checkNotBool(instructions.SlotOp(rhsSlot))...)

		var cmov instructions.Op
		switch n.Op {
		case ast.Less:
			cmov = instructions.CMovL
		case ast.LessEqual:
			cmov = instructions.CMovLE
		case ast.Greater:
			cmov = instructions.CMovG
		case ast.GreaterEqual:
			cmov = instructions.CMovGE
		}
		out = append(out,
			instructions.Instruction{Op: instructions.Cmp, Dst: acc(), Src: instructions.SlotOp(rhsSlot)},
			mov(instructions.RegOp(instructions.RBX), instructions.ImmOp(falseVal)),
			mov(instructions.RegOp(instructions.RCX), instructions.ImmOp(trueVal)),
			instructions.Instruction{Op: cmov, Dst: instructions.RegOp(instructions.RBX), Src: instructions.RegOp(instructions.RCX)},
			mov(acc(), instructions.RegOp(instructions.RBX)),
		)
		return out, nil
	}

	logrus.Panicln("codegen: unreachable binary operator")
	return nil, nil
}

func (g *Generator) lowerSet(n ast.Set, ctx context) ([]instructions.Instruction, error) {
	slot, ok := ctx.env[n.Name]
	if !ok {
		return nil, errors.Errorf("Unbound variable identifier %s", n.Name)
	}
	rhsCtx := ctx
	rhsCtx.isTail = false
	val, err := g.lower(n.Rhs, rhsCtx)
	if err != nil {
		return nil, err
	}
	out := append([]instructions.Instruction{}, val...)
	out = append(out, store(slot, acc()))
	return out, nil
}

func (g *Generator) lowerIf(n ast.If, ctx context) ([]instructions.Instruction, error) {
	elseLabel := g.fresh("if_else")
	endLabel := g.fresh("if_end")

	condCtx := ctx
	condCtx.isTail = false
	cond, err := g.lower(n.Cond, condCtx)
	if err != nil {
		return nil, err
	}

	then, err := g.lower(n.Then, ctx)
	if err != nil {
		return nil, err
	}
	els, err := g.lower(n.Else, ctx)
	if err != nil {
		return nil, err
	}

	out := append([]instructions.Instruction{}, cond...)
	out = append(out,
		instructions.Instruction{Op: instructions.Cmp, Dst: acc(), Src: instructions.ImmOp(falseVal)},
		instructions.Jump(instructions.Je, elseLabel),
	)
	out = append(out, then...)
	out = append(out, instructions.Jump(instructions.Jmp, endLabel))
	out = append(out, instructions.Lbl(elseLabel))
	out = append(out, els...)
	out = append(out, instructions.Lbl(endLabel))
	return out, nil
}

func (g *Generator) lowerBlock(n ast.Block, ctx context) ([]instructions.Instruction, error) {
	var out []instructions.Instruction
	for i, sub := range n.Exprs {
		subCtx := ctx
		subCtx.isTail = ctx.isTail && i == len(n.Exprs)-1
		ins, err := g.lower(sub, subCtx)
		if err != nil {
			return nil, err
		}
		out = append(out, ins...)
	}
	return out, nil
}

func (g *Generator) lowerLoop(n ast.Loop, ctx context) ([]instructions.Instruction, error) {
	startLabel := g.fresh("loop_start")
	endLabel := g.fresh("loop_end")

	ctx.loopStack.Push(endLabel)
	bodyCtx := ctx
	bodyCtx.isTail = false
	body, err := g.lower(n.Body, bodyCtx)
	if err != nil {
		return nil, err
	}
	if _, err := ctx.loopStack.Pop(); err != nil {
		return nil, errors.Wrap(err, "internal: loop stack underflow")
	}

	out := []instructions.Instruction{instructions.Lbl(startLabel)}
	out = append(out, body...)
	out = append(out, instructions.Jump(instructions.Jmp, startLabel))
	out = append(out, instructions.Lbl(endLabel))
	return out, nil
}

func (g *Generator) lowerBreak(n ast.Break, ctx context) ([]instructions.Instruction, error) {
	if ctx.loopStack.Empty() {
		return nil, errors.New("Invalid break outside loop")
	}
	target, err := ctx.loopStack.Top()
	if err != nil {
		return nil, errors.Wrap(err, "internal: loop stack")
	}
	valCtx := ctx
	valCtx.isTail = false
	val, err := g.lower(n.Value, valCtx)
	if err != nil {
		return nil, err
	}
	out := append([]instructions.Instruction{}, val...)
	out = append(out, instructions.Jump(instructions.Jmp, target))
	return out, nil
}

func (g *Generator) lowerCall(n ast.Call, ctx context) ([]instructions.Instruction, error) {
	entry, ok := g.funcs.Lookup(n.Name)
	if !ok {
		return nil, errors.Errorf("Invalid function %s not defined", n.Name)
	}
	if entry.Arity != len(n.Args) {
		return nil, errors.Errorf("Invalid function %s called with wrong number of arguments: expected %d, got %d", n.Name, entry.Arity, len(n.Args))
	}

	var out []instructions.Instruction
	for i, arg := range n.Args {
		argCtx := ctx
		argCtx.si = ctx.si + i
		argCtx.isTail = false
		ins, err := g.lower(arg, argCtx)
		if err != nil {
			return nil, err
		}
		out = append(out, ins...)
		out = append(out, store(ctx.si+i, acc()))
	}

	nargs := len(n.Args)
	paramOffset := ((nargs + 1) / 2) * 2

	if ctx.isTail && nargs <= ctx.enclosingArity {
		for i := 0; i < nargs; i++ {
			out = append(out,
				mov(acc(), instructions.SlotOp(ctx.si+i)),
				instructions.Instruction{
					Op:  instructions.Mov,
					Dst: callerParamSlot(ctx.enclosingFrameBytes, i),
					Src: acc(),
				},
			)
		}
		out = append(out,
			instructions.Instruction{Op: instructions.Add, Dst: instructions.RegOp(instructions.RSP), Src: instructions.ImmOp(ctx.enclosingFrameBytes)},
			instructions.Jump(instructions.Jmp, entry.Label),
		)
		return out, nil
	}

	for i := 0; i < nargs; i++ {
		out = append(out,
			mov(acc(), instructions.SlotOp(ctx.si+i)),
			instructions.Instruction{
				Op:  instructions.Mov,
				Dst: outgoingParamSlot(paramOffset, i),
				Src: acc(),
			},
		)
	}
	out = append(out,
		instructions.Instruction{Op: instructions.Sub, Dst: instructions.RegOp(instructions.RSP), Src: instructions.ImmOp(int64(paramOffset) * 8)},
		instructions.Instruction{Op: instructions.Call, Dst: instructions.LabelOp(entry.Label)},
		instructions.Instruction{Op: instructions.Add, Dst: instructions.RegOp(instructions.RSP), Src: instructions.ImmOp(int64(paramOffset) * 8)},
	)
	return out, nil
}

func (g *Generator) lowerPrint(n ast.Print, ctx context) ([]instructions.Instruction, error) {
	valCtx := ctx
	valCtx.isTail = false
	val, err := g.lower(n.Value, valCtx)
	if err != nil {
		return nil, err
	}
	out := append([]instructions.Instruction{}, val...)
	out = append(out,
		store(ctx.si, acc()),
		instructions.Instruction{Op: instructions.Mov, Dst: instructions.SlotOp(ctx.si+1), Src: instructions.RegOp(instructions.RDI)},
		mov(instructions.RegOp(instructions.RDI), acc()),
		instructions.Instruction{Op: instructions.Call, Dst: instructions.LabelOp(snekPrintLabel)},
		mov(acc(), instructions.SlotOp(ctx.si)),
		instructions.Instruction{Op: instructions.Mov, Dst: instructions.RegOp(instructions.RDI), Src: instructions.SlotOp(ctx.si + 1)},
	)
	return out, nil
}

func acc() instructions.Operand { return instructions.RegOp(instructions.RAX) }

func mov(dst, src instructions.Operand) instructions.Instruction {
	return instructions.Instruction{Op: instructions.Mov, Dst: dst, Src: src}
}

func store(slot int, src instructions.Operand) instructions.Instruction {
	return instructions.Instruction{Op: instructions.Mov, Dst: instructions.SlotOp(slot), Src: src}
}

// callerParamSlot addresses the caller's incoming-parameter region for
// a tail call, per spec.md §4.4.1: [RSP + enclosing_frame_bytes + 8*(i+1)].
func callerParamSlot(enclosingFrameBytes int64, i int) instructions.Operand {
	return instructions.Operand{Kind: instructions.OpSlot, Slot: int(enclosingFrameBytes/8) + i + 1}
}

// outgoingParamSlot addresses the fresh outgoing region for a normal
// call, per spec.md §4.4.1: [RSP - 8*param_offset + 8*i].
func outgoingParamSlot(paramOffset, i int) instructions.Operand {
	return instructions.Operand{Kind: instructions.OpSlot, Slot: -paramOffset + i}
}

// checkNotBool guards v against being a tagged boolean, per spec.md
// §4.4: mask the low bit and, if set, jump to the error trampoline.
// RDI holds the live `input` value for the whole of main, so the
// error code is only conditionally moved into RDI (cmovne) — it must
// never be written on the passing path.
func checkNotBool(v instructions.Operand) []instructions.Instruction {
	return []instructions.Instruction{
		mov(instructions.RegOp(instructions.RBX), v),
		{Op: instructions.And, Dst: instructions.RegOp(instructions.RBX), Src: instructions.ImmOp(1)},
		{Op: instructions.Cmp, Dst: instructions.RegOp(instructions.RBX), Src: instructions.ImmOp(0)},
		mov(instructions.RegOp(instructions.RCX), instructions.ImmOp(errInvalidArgument)),
		{Op: instructions.CMovNE, Dst: instructions.RegOp(instructions.RDI), Src: instructions.RegOp(instructions.RCX)},
		instructions.Jump(instructions.Jne, throwErrorLabel),
	}
}

// checkTagsMatch guards equality comparisons: the operands' tags must
// agree, or the comparison itself is an invalid-argument error rather
// than silently evaluating to false (spec.md §9, decision (d)). As in
// checkNotBool, RDI is only conditionally overwritten.
func checkTagsMatch(rhsSlot int) []instructions.Instruction {
	return []instructions.Instruction{
		mov(instructions.RegOp(instructions.RBX), acc()),
		{Op: instructions.And, Dst: instructions.RegOp(instructions.RBX), Src: instructions.ImmOp(1)},
		mov(instructions.RegOp(instructions.RCX), instructions.SlotOp(rhsSlot)),
		{Op: instructions.And, Dst: instructions.RegOp(instructions.RCX), Src: instructions.ImmOp(1)},
		{Op: instructions.Cmp, Dst: instructions.RegOp(instructions.RBX), Src: instructions.RegOp(instructions.RCX)},
		mov(instructions.RegOp(instructions.RCX), instructions.ImmOp(errInvalidArgument)),
		{Op: instructions.CMovNE, Dst: instructions.RegOp(instructions.RDI), Src: instructions.RegOp(instructions.RCX)},
		instructions.Jump(instructions.Jne, throwErrorLabel),
	}
}

// checkNotOverflow guards the arithmetic instruction immediately
// preceding it: if that instruction set the CPU overflow flag, the
// overflow code is conditionally moved into RDI (cmovo) before the
// trampoline jump. mov does not touch flags, so OF survives intact
// from the arithmetic op through to the cmovo/jo pair.
func checkNotOverflow() []instructions.Instruction {
	return []instructions.Instruction{
		mov(instructions.RegOp(instructions.RCX), instructions.ImmOp(errOverflow)),
		{Op: instructions.CMovO, Dst: instructions.RegOp(instructions.RDI), Src: instructions.RegOp(instructions.RCX)},
		instructions.Jump(instructions.Jo, throwErrorLabel),
	}
}
