// Package operand resolves the implicit operands of short/indexed CIL
// opcodes to their explicit local/parameter/field/type references.
// Decoders are free functions dispatched by family.InstructionFamily, per
// the design note against virtual methods on an instruction hierarchy
// (spec section 9).
package operand

import (
	"ilopt/family"
	"ilopt/ilasm"
	"ilopt/ilerrors"
)

func mismatch(want family.InstructionFamily, instr *ilasm.Instruction) error {
	got, _ := family.Of(instr.Opcode)
	return ilerrors.New(ilerrors.FamilyMismatch, "expected family %s, got %s (opcode %d)", want, got, instr.Opcode)
}

// Local resolves the local-variable reference of a Ldloc/Stloc/Ldloca/
// Stloc.* instruction, fixed-index short forms included.
func Local(body *ilasm.MethodBody, instr *ilasm.Instruction) (*ilasm.LocalRef, error) {
	f, err := family.Of(instr.Opcode)
	if err != nil {
		return nil, err
	}
	switch f {
	case family.Ldloc, family.Stloc, family.Ldloca:
	default:
		return nil, mismatch(family.Ldloc, instr)
	}

	switch instr.Opcode {
	case ilasm.Ldloc0, ilasm.Stloc0:
		return indexedLocal(body, 0)
	case ilasm.Ldloc1, ilasm.Stloc1:
		return indexedLocal(body, 1)
	case ilasm.Ldloc2, ilasm.Stloc2:
		return indexedLocal(body, 2)
	case ilasm.Ldloc3, ilasm.Stloc3:
		return indexedLocal(body, 3)
	default:
		ref, ok := instr.Operand.(*ilasm.LocalRef)
		if !ok {
			return nil, ilerrors.New(ilerrors.FamilyMismatch, "instruction at offset %d has no local operand", instr.Offset)
		}
		return ref, nil
	}
}

func indexedLocal(body *ilasm.MethodBody, index int) (*ilasm.LocalRef, error) {
	if index < 0 || index >= len(body.Locals) {
		return nil, ilerrors.New(ilerrors.FamilyMismatch, "local index %d out of range (%d locals)", index, len(body.Locals))
	}
	return body.Locals[index], nil
}

// Param resolves the parameter reference of a Ldarg/Starg/Ldarga
// instruction. The fixed-index short forms (ldarg.0..3) apply the
// HasThis adjustment exactly as specified: index 0 returns `this` when
// the method has one, else parameter 0; indices 1..3 return parameter
// (index - 1) when the method has `this`, else parameter (index).
func Param(body *ilasm.MethodBody, instr *ilasm.Instruction) (*ilasm.ParamRef, error) {
	f, err := family.Of(instr.Opcode)
	if err != nil {
		return nil, err
	}
	if f != family.Ldarg && f != family.Starg && f != family.Ldarga {
		return nil, mismatch(family.Ldarg, instr)
	}

	switch instr.Opcode {
	case ilasm.Ldarg0:
		return shortFormParam(body, 0)
	case ilasm.Ldarg1:
		return shortFormParam(body, 1)
	case ilasm.Ldarg2:
		return shortFormParam(body, 2)
	case ilasm.Ldarg3:
		return shortFormParam(body, 3)
	default:
		ref, ok := instr.Operand.(*ilasm.ParamRef)
		if !ok {
			return nil, ilerrors.New(ilerrors.FamilyMismatch, "instruction at offset %d has no parameter operand", instr.Offset)
		}
		return ref, nil
	}
}

func shortFormParam(body *ilasm.MethodBody, index int) (*ilasm.ParamRef, error) {
	if body.HasThis {
		if index == 0 {
			return body.This, nil
		}
		return paramAt(body, index-1)
	}
	return paramAt(body, index)
}

func paramAt(body *ilasm.MethodBody, index int) (*ilasm.ParamRef, error) {
	if index < 0 || index >= len(body.Params) {
		return nil, ilerrors.New(ilerrors.FamilyMismatch, "parameter index %d out of range (%d parameters)", index, len(body.Params))
	}
	return body.Params[index], nil
}

// Field resolves the field reference of a Ldfld/Ldflda/Stfld/Ldsfld/
// Ldsflda/Stsfld instruction.
func Field(instr *ilasm.Instruction) (*ilasm.FieldRef, error) {
	f, err := family.Of(instr.Opcode)
	if err != nil {
		return nil, err
	}
	switch f {
	case family.Ldfld, family.Ldflda, family.Stfld, family.Ldsfld, family.Ldsflda, family.Stsfld:
	default:
		return nil, mismatch(family.Ldfld, instr)
	}
	ref, ok := instr.Operand.(*ilasm.FieldRef)
	if !ok {
		return nil, ilerrors.New(ilerrors.FamilyMismatch, "instruction at offset %d has no field operand", instr.Offset)
	}
	return ref, nil
}

// ElementType resolves the element type of a Ldelem/Ldelema/Stelem
// instruction. Encoded-type short forms (ldelem.i4, stelem.ref, ...) have
// no explicit operand and return nil — their width is implied by the
// opcode itself, decided by the caller.
func ElementType(instr *ilasm.Instruction) (*ilasm.TypeRef, error) {
	f, err := family.Of(instr.Opcode)
	if err != nil {
		return nil, err
	}
	switch f {
	case family.Ldelem, family.Ldelema, family.Stelem:
	default:
		return nil, mismatch(family.Ldelem, instr)
	}
	switch instr.Opcode {
	case ilasm.Ldelem, ilasm.Stelem, ilasm.Ldelema:
		ref, ok := instr.Operand.(*ilasm.TypeRef)
		if !ok {
			return nil, ilerrors.New(ilerrors.FamilyMismatch, "instruction at offset %d has no type operand", instr.Offset)
		}
		return ref, nil
	default:
		return nil, nil
	}
}

// Method resolves the callee reference of a Call/Callvirt/Newobj/Calli
// instruction.
func Method(instr *ilasm.Instruction) (*ilasm.MethodRef, error) {
	f, err := family.Of(instr.Opcode)
	if err != nil {
		return nil, err
	}
	switch f {
	case family.Call, family.Callvirt, family.Newobj, family.Calli:
	default:
		return nil, mismatch(family.Call, instr)
	}
	ref, ok := instr.Operand.(*ilasm.MethodRef)
	if !ok {
		return nil, ilerrors.New(ilerrors.FamilyMismatch, "instruction at offset %d has no method operand", instr.Offset)
	}
	return ref, nil
}
