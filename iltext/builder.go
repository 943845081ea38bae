// Package iltext builds ilasm.MethodBody values from a short sequence of
// opcode/operand steps, playing the role of a disassembly listing for
// tests (section 8) — a textual
// lexer/parser over real CIL syntax has no consumer here since the real
// reader/writer is out of scope (section 1); this builder is the
// in-repo stand-in for "type the fragment from the spec scenario".
package iltext

import "ilopt/ilasm"

// Builder accumulates instructions in order and links Prev/Next/Offset
// as they're appended, matching how cfg.Build expects a MethodBody's
// stream to already be wired.
type Builder struct {
	body *ilasm.MethodBody
	last *ilasm.Instruction
	next int
}

// New starts a builder for a method with the given declared locals and
// parameters. initLocals seeds MethodBody.InitLocals.
func New(locals []*ilasm.LocalRef, params []*ilasm.ParamRef, this *ilasm.ParamRef, initLocals bool) *Builder {
	return &Builder{
		body: &ilasm.MethodBody{
			Locals:     locals,
			Params:     params,
			This:       this,
			HasThis:    this != nil,
			InitLocals: initLocals,
		},
	}
}

// Emit appends one instruction and returns it, so branch/switch operands
// in later Emit calls can reference it directly.
func (b *Builder) Emit(op ilasm.Opcode, operand any) *ilasm.Instruction {
	i := &ilasm.Instruction{Opcode: op, Operand: operand, Offset: b.next}
	b.next++
	if b.last == nil {
		b.body.First = i
	} else {
		b.last.Next = i
		i.Prev = b.last
	}
	b.last = i
	return i
}

// Body returns the finished method body.
func (b *Builder) Body() *ilasm.MethodBody { return b.body }
