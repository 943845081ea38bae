// Package stackeval implements the abstract evaluation-stack simulator
// (spec section 4.D): given a ldloca immediately followed by an
// instruction sequence, it walks forward to find which later instruction
// consumes the pushed managed pointer and at what stack depth.
package stackeval

import (
	"ilopt/family"
	"ilopt/ilasm"
	"ilopt/ilerrors"
	"ilopt/operand"
)

// Consumer describes the instruction that consumes a ldloca-produced
// address. StackIndex is the consumer's required pop count minus the
// stack depth just before it, i.e. how many of the slots it consumes lie
// below the address: 0 means the address is the deepest operand it
// consumes (the receiver of an instance call, the sole operand of
// initobj).
type Consumer struct {
	Instruction *ilasm.Instruction
	StackIndex  int
}

// FindConsumer walks forward from start (the instruction immediately
// after a ldloca) tracking abstract stack slot sizes, beginning with a
// single 4-byte entry for the just-pushed address. It returns the
// consuming instruction and its stack index, or (nil, false) if no
// instruction along this straight-line path consumes the address (the
// stack emptied out from under it, or a control transfer was reached
// first).
func FindConsumer(body *ilasm.MethodBody, start *ilasm.Instruction) (*Consumer, bool, error) {
	var st slots
	st.push(4)

	for i := start; i != nil; i = i.Next {
		f, err := family.Of(i.Opcode)
		if err != nil {
			return nil, false, err
		}

		if isControlTransfer(f) {
			return nil, false, nil
		}
		if isUnsupported(f) {
			return nil, false, ilerrors.New(ilerrors.UnsupportedFamily, "stack simulator does not model family %s", f)
		}

		depth := st.depth()

		if f == family.Call || f == family.Callvirt || f == family.Newobj {
			argCount, thisPop, retSize, isVoid, err := callShape(body, i, f)
			if err != nil {
				return nil, false, err
			}
			required := argCount + thisPop
			if required >= depth {
				return &Consumer{Instruction: i, StackIndex: required - depth}, true, nil
			}
			for n := 0; n < required; n++ {
				st.pop()
			}
			if !isVoid {
				st.push(retSize)
			}
			if st.isEmpty() {
				return nil, false, nil
			}
			continue
		}

		required, err := popCount(body, i, f)
		if err != nil {
			return nil, false, err
		}
		if required >= depth {
			return &Consumer{Instruction: i, StackIndex: required - depth}, true, nil
		}

		if err := apply(&st, body, i, f, required); err != nil {
			return nil, false, err
		}
		if st.isEmpty() {
			return nil, false, nil
		}
	}
	return nil, false, nil
}

func isControlTransfer(f family.InstructionFamily) bool {
	switch f {
	case family.Jmp, family.Ret, family.Br, family.Brfalse, family.Brtrue,
		family.Beq, family.Bge, family.Bgt, family.Ble, family.Blt, family.Bne,
		family.Switch, family.Throw:
		return true
	}
	return false
}

func isUnsupported(f family.InstructionFamily) bool {
	switch f {
	case family.Cpobj, family.Ldobj, family.Stobj, family.Refanyval,
		family.Ckfinite, family.Mkrefany, family.Endfinally, family.Leave,
		family.Ldftn, family.Ldvirtftn, family.Localloc, family.Endfilter,
		family.Cpblk, family.Initblk, family.Tail, family.Unaligned,
		family.No, family.Rethrow, family.Refanytype, family.Readonly:
		return true
	}
	return false
}

// callShape returns the argument count, the implicit-this pop (0 or 1),
// the return value's slot size, and whether the callee is void.
func callShape(body *ilasm.MethodBody, i *ilasm.Instruction, f family.InstructionFamily) (argCount, thisPop, retSize int, isVoid bool, err error) {
	ref, err := operand.Method(i)
	if err != nil {
		return 0, 0, 0, false, err
	}
	argCount = len(ref.Params)
	if ref.HasThis && !ref.ExplicitThis {
		thisPop = 1
	}
	if ref.ReturnType == nil {
		return argCount, thisPop, 0, true, nil
	}
	retSize, err = sizeOf(ref.ReturnType)
	if err != nil {
		return 0, 0, 0, false, err
	}
	return argCount, thisPop, retSize, false, nil
}

// popCount is the number of slots the instruction requires to be present
// before it executes, per the per-family rows of the transition table.
// Calli is deliberately routed through the arithmetic case (pop two, push
// max) rather than the call-shape case — the spec's own open question
// preserves this grouping verbatim even though it misrepresents calling
// conventions with non-matching operand sizes.
func popCount(body *ilasm.MethodBody, i *ilasm.Instruction, f family.InstructionFamily) (int, error) {
	switch f {
	case family.Nop, family.Break, family.Volatile, family.Constrained,
		family.Ldarg, family.Ldloc, family.Ldarga, family.Ldloca, family.Ldnull,
		family.Ldstr, family.Ldsflda, family.Ldtoken, family.Arglist, family.Sizeof,
		family.Ldc, family.Dup, family.Ldsfld:
		return 0, nil
	case family.Stloc, family.Starg, family.Pop, family.Ldind, family.Neg,
		family.Not, family.Conv, family.Castclass, family.Isinst, family.Unbox,
		family.Box, family.Ldflda, family.Newarr, family.Ldlen, family.Stsfld,
		family.Initobj:
		return 1, nil
	case family.Stind, family.Add, family.Sub, family.Mul, family.Div, family.Rem,
		family.And, family.Or, family.Xor, family.Shl, family.Shr, family.Calli,
		family.Ceq, family.Cgt, family.Clt:
		return 2, nil
	case family.Ldfld:
		return 1, nil
	case family.Ldelema, family.Ldelem:
		return 2, nil
	case family.Stfld:
		return 2, nil
	case family.Stelem:
		return 3, nil
	default:
		return 0, ilerrors.New(ilerrors.UnsupportedFamily, "stack simulator has no pop-count rule for family %s", f)
	}
}

// apply performs the actual stack transition once popCount has already
// been confirmed not to underflow, pushing whatever the family's
// transition row specifies.
func apply(st *slots, body *ilasm.MethodBody, i *ilasm.Instruction, f family.InstructionFamily, required int) error {
	switch f {
	case family.Nop, family.Break, family.Volatile, family.Constrained:
		return nil

	case family.Ldarg:
		p, err := operand.Param(body, i)
		if err != nil {
			return err
		}
		sz, err := sizeOf(&p.Type)
		if err != nil {
			return err
		}
		st.push(sz)
		return nil

	case family.Ldloc:
		l, err := operand.Local(body, i)
		if err != nil {
			return err
		}
		sz, err := sizeOf(&l.Type)
		if err != nil {
			return err
		}
		st.push(sz)
		return nil

	case family.Stloc:
		st.pop()
		return nil

	case family.Starg:
		st.pop()
		return nil

	case family.Ldarga, family.Ldloca, family.Ldnull, family.Ldstr,
		family.Ldsflda, family.Ldtoken, family.Arglist, family.Sizeof:
		st.push(4)
		return nil

	case family.Ldc:
		st.push(ldcWidth(i.Opcode))
		return nil

	case family.Dup:
		top, _ := st.peek()
		st.push(top)
		return nil

	case family.Pop:
		st.pop()
		return nil

	case family.Ldind:
		st.pop()
		st.push(indWidth(i.Opcode))
		return nil

	case family.Stind:
		st.pop()
		st.pop()
		return nil

	case family.Add, family.Sub, family.Mul, family.Div, family.Rem,
		family.And, family.Or, family.Xor, family.Shl, family.Shr, family.Calli:
		a, _ := st.pop()
		b, _ := st.pop()
		st.push(max(a, b))
		return nil

	case family.Neg, family.Not:
		// in-place: pop and push back the same size, net stack
		// height unchanged.
		v, _ := st.pop()
		st.push(v)
		return nil

	case family.Conv:
		st.pop()
		st.push(convWidth(i.Opcode))
		return nil

	case family.Castclass, family.Isinst:
		st.pop()
		st.push(4)
		return nil

	case family.Unbox, family.Box:
		st.pop()
		st.push(4)
		return nil

	case family.Ldfld:
		st.pop()
		fld, err := operand.Field(i)
		if err != nil {
			return err
		}
		sz, err := sizeOf(&fld.Type)
		if err != nil {
			return err
		}
		st.push(sz)
		return nil

	case family.Ldflda:
		st.pop()
		st.push(4)
		return nil

	case family.Stfld:
		st.pop()
		st.pop()
		return nil

	case family.Ldsfld:
		fld, err := operand.Field(i)
		if err != nil {
			return err
		}
		sz, err := sizeOf(&fld.Type)
		if err != nil {
			return err
		}
		st.push(sz)
		return nil

	case family.Stsfld:
		st.pop()
		return nil

	case family.Newarr, family.Ldlen:
		st.pop()
		st.push(4)
		return nil

	case family.Ldelema:
		st.pop()
		st.pop()
		st.push(4)
		return nil

	case family.Ldelem:
		st.pop()
		st.pop()
		sz, err := elementSize(i)
		if err != nil {
			return err
		}
		st.push(sz)
		return nil

	case family.Stelem:
		st.pop()
		st.pop()
		st.pop()
		return nil

	case family.Ceq, family.Cgt, family.Clt:
		st.pop()
		st.pop()
		st.push(4)
		return nil

	case family.Initobj:
		st.pop()
		return nil

	default:
		return ilerrors.New(ilerrors.UnsupportedFamily, "stack simulator has no transition rule for family %s", f)
	}
}

func elementSize(i *ilasm.Instruction) (int, error) {
	t, err := operand.ElementType(i)
	if err != nil {
		return 0, err
	}
	if t != nil {
		return sizeOf(t)
	}
	switch i.Opcode {
	case ilasm.LdelemI8, ilasm.LdelemR8:
		return 8, nil
	default:
		return 4, nil
	}
}

func ldcWidth(op ilasm.Opcode) int {
	switch op {
	case ilasm.LdcI8, ilasm.LdcR8:
		return 8
	default:
		return 4
	}
}

func indWidth(op ilasm.Opcode) int {
	switch op {
	case ilasm.LdindI8, ilasm.LdindR8:
		return 8
	default:
		return 4
	}
}

func convWidth(op ilasm.Opcode) int {
	switch op {
	case ilasm.ConvI8, ilasm.ConvU8, ilasm.ConvR8:
		return 8
	default:
		return 4
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
