// Package family classifies CIL opcodes into the closed instruction-family
// alphabet the rest of the analysis pipeline reasons over. The mapping is a
// dense, process-lifetime lookup table, grounded on the teacher's
// compiler/code.go OpCodeDefinition table (there: Opcode -> {Name,
// OperandWidths}; here: Opcode -> {Family, Flow}), looked up the same way
// through a package-level Get-style accessor.
package family

import (
	"ilopt/ilasm"
	"ilopt/ilerrors"
)

// InstructionFamily is the closed ~80-tag alphabet from the spec's data
// model (section 3).
type InstructionFamily int

const (
	Nop InstructionFamily = iota
	Break
	Ldarg
	Ldarga
	Starg
	Ldloc
	Ldloca
	Stloc
	Ldnull
	Ldc
	Dup
	Pop
	Jmp
	Call
	Calli
	Callvirt
	Newobj
	Ret
	Br
	Brfalse
	Brtrue
	Beq
	Bge
	Bgt
	Ble
	Blt
	Bne
	Switch
	Ldind
	Stind
	Add
	Sub
	Mul
	Div
	Rem
	And
	Or
	Xor
	Shl
	Shr
	Neg
	Not
	Conv
	Cpobj
	Ldobj
	Ldstr
	Castclass
	Isinst
	Unbox
	Throw
	Ldfld
	Ldflda
	Stfld
	Ldsfld
	Ldsflda
	Stsfld
	Stobj
	Box
	Newarr
	Ldlen
	Ldelema
	Ldelem
	Stelem
	Refanyval
	Ckfinite
	Mkrefany
	Ldtoken
	Endfinally
	Leave
	Arglist
	Ceq
	Cgt
	Clt
	Ldftn
	Ldvirtftn
	Localloc
	Endfilter
	Unaligned
	Volatile
	Tail
	Initobj
	Constrained
	Cpblk
	Initblk
	No
	Rethrow
	Sizeof
	Refanytype
	Readonly
)

//go:generate stringer -type=InstructionFamily
func (f InstructionFamily) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return "Unknown"
}

var familyNames = map[InstructionFamily]string{
	Nop: "Nop", Break: "Break", Ldarg: "Ldarg", Ldarga: "Ldarga", Starg: "Starg",
	Ldloc: "Ldloc", Ldloca: "Ldloca", Stloc: "Stloc", Ldnull: "Ldnull", Ldc: "Ldc",
	Dup: "Dup", Pop: "Pop", Jmp: "Jmp", Call: "Call", Calli: "Calli",
	Callvirt: "Callvirt", Newobj: "Newobj", Ret: "Ret", Br: "Br", Brfalse: "Brfalse",
	Brtrue: "Brtrue", Beq: "Beq", Bge: "Bge", Bgt: "Bgt", Ble: "Ble", Blt: "Blt",
	Bne: "Bne", Switch: "Switch", Ldind: "Ldind", Stind: "Stind", Add: "Add",
	Sub: "Sub", Mul: "Mul", Div: "Div", Rem: "Rem", And: "And", Or: "Or", Xor: "Xor",
	Shl: "Shl", Shr: "Shr", Neg: "Neg", Not: "Not", Conv: "Conv", Cpobj: "Cpobj",
	Ldobj: "Ldobj", Ldstr: "Ldstr", Castclass: "Castclass", Isinst: "Isinst",
	Unbox: "Unbox", Throw: "Throw", Ldfld: "Ldfld", Ldflda: "Ldflda", Stfld: "Stfld",
	Ldsfld: "Ldsfld", Ldsflda: "Ldsflda", Stsfld: "Stsfld", Stobj: "Stobj", Box: "Box",
	Newarr: "Newarr", Ldlen: "Ldlen", Ldelema: "Ldelema", Ldelem: "Ldelem",
	Stelem: "Stelem", Refanyval: "Refanyval", Ckfinite: "Ckfinite", Mkrefany: "Mkrefany",
	Ldtoken: "Ldtoken", Endfinally: "Endfinally", Leave: "Leave", Arglist: "Arglist",
	Ceq: "Ceq", Cgt: "Cgt", Clt: "Clt", Ldftn: "Ldftn", Ldvirtftn: "Ldvirtftn",
	Localloc: "Localloc", Endfilter: "Endfilter", Unaligned: "Unaligned",
	Volatile: "Volatile", Tail: "Tail", Initobj: "Initobj", Constrained: "Constrained",
	Cpblk: "Cpblk", Initblk: "Initblk", No: "No", Rethrow: "Rethrow", Sizeof: "Sizeof",
	Refanytype: "Refanytype", Readonly: "Readonly",
}

type definition struct {
	family InstructionFamily
	flow   ilasm.FlowControl
}

// table is the dense, immutable opcode -> {family, flow} lookup. It is
// built once at package init and shared read-only across every method's
// analysis (and across goroutines, per the concurrency model in section 5).
var table = map[ilasm.Opcode]definition{
	ilasm.Nop:   {Nop, ilasm.FlowNext},
	ilasm.Break: {Break, ilasm.FlowBreak},

	ilasm.LdargS: {Ldarg, ilasm.FlowNext}, ilasm.Ldarg: {Ldarg, ilasm.FlowNext},
	ilasm.Ldarg0: {Ldarg, ilasm.FlowNext}, ilasm.Ldarg1: {Ldarg, ilasm.FlowNext},
	ilasm.Ldarg2: {Ldarg, ilasm.FlowNext}, ilasm.Ldarg3: {Ldarg, ilasm.FlowNext},
	ilasm.LdargaS: {Ldarga, ilasm.FlowNext}, ilasm.Ldarga: {Ldarga, ilasm.FlowNext},
	ilasm.StargS: {Starg, ilasm.FlowNext}, ilasm.Starg: {Starg, ilasm.FlowNext},

	ilasm.LdlocS: {Ldloc, ilasm.FlowNext}, ilasm.Ldloc: {Ldloc, ilasm.FlowNext},
	ilasm.Ldloc0: {Ldloc, ilasm.FlowNext}, ilasm.Ldloc1: {Ldloc, ilasm.FlowNext},
	ilasm.Ldloc2: {Ldloc, ilasm.FlowNext}, ilasm.Ldloc3: {Ldloc, ilasm.FlowNext},
	ilasm.LdlocaS: {Ldloca, ilasm.FlowNext}, ilasm.Ldloca: {Ldloca, ilasm.FlowNext},
	ilasm.StlocS: {Stloc, ilasm.FlowNext}, ilasm.Stloc: {Stloc, ilasm.FlowNext},
	ilasm.Stloc0: {Stloc, ilasm.FlowNext}, ilasm.Stloc1: {Stloc, ilasm.FlowNext},
	ilasm.Stloc2: {Stloc, ilasm.FlowNext}, ilasm.Stloc3: {Stloc, ilasm.FlowNext},

	ilasm.Ldnull: {Ldnull, ilasm.FlowNext},
	ilasm.LdcI4: {Ldc, ilasm.FlowNext}, ilasm.LdcI4S: {Ldc, ilasm.FlowNext},
	ilasm.LdcI4M1: {Ldc, ilasm.FlowNext}, ilasm.LdcI40: {Ldc, ilasm.FlowNext},
	ilasm.LdcI41: {Ldc, ilasm.FlowNext}, ilasm.LdcI42: {Ldc, ilasm.FlowNext},
	ilasm.LdcI43: {Ldc, ilasm.FlowNext}, ilasm.LdcI44: {Ldc, ilasm.FlowNext},
	ilasm.LdcI45: {Ldc, ilasm.FlowNext}, ilasm.LdcI46: {Ldc, ilasm.FlowNext},
	ilasm.LdcI47: {Ldc, ilasm.FlowNext}, ilasm.LdcI48: {Ldc, ilasm.FlowNext},
	ilasm.LdcI8: {Ldc, ilasm.FlowNext}, ilasm.LdcR4: {Ldc, ilasm.FlowNext},
	ilasm.LdcR8: {Ldc, ilasm.FlowNext},

	ilasm.Dup: {Dup, ilasm.FlowNext}, ilasm.Pop: {Pop, ilasm.FlowNext},

	ilasm.Jmp: {Jmp, ilasm.FlowCall}, ilasm.Call: {Call, ilasm.FlowCall},
	ilasm.Calli: {Calli, ilasm.FlowCall}, ilasm.Callvirt: {Callvirt, ilasm.FlowCall},
	ilasm.Newobj: {Newobj, ilasm.FlowCall}, ilasm.Ret: {Ret, ilasm.FlowReturn},

	ilasm.BrS: {Br, ilasm.FlowBranch}, ilasm.Br: {Br, ilasm.FlowBranch},
	ilasm.BrfalseS: {Brfalse, ilasm.FlowCondBranch}, ilasm.Brfalse: {Brfalse, ilasm.FlowCondBranch},
	ilasm.BrtrueS: {Brtrue, ilasm.FlowCondBranch}, ilasm.Brtrue: {Brtrue, ilasm.FlowCondBranch},
	ilasm.BeqS: {Beq, ilasm.FlowCondBranch}, ilasm.Beq: {Beq, ilasm.FlowCondBranch},
	ilasm.BgeS: {Bge, ilasm.FlowCondBranch}, ilasm.Bge: {Bge, ilasm.FlowCondBranch},
	ilasm.BgtS: {Bgt, ilasm.FlowCondBranch}, ilasm.Bgt: {Bgt, ilasm.FlowCondBranch},
	ilasm.BleS: {Ble, ilasm.FlowCondBranch}, ilasm.Ble: {Ble, ilasm.FlowCondBranch},
	ilasm.BltS: {Blt, ilasm.FlowCondBranch}, ilasm.Blt: {Blt, ilasm.FlowCondBranch},
	ilasm.BneUnS: {Bne, ilasm.FlowCondBranch}, ilasm.BneUn: {Bne, ilasm.FlowCondBranch},
	ilasm.Switch: {Switch, ilasm.FlowCondBranch},

	ilasm.LdindI1: {Ldind, ilasm.FlowNext}, ilasm.LdindU1: {Ldind, ilasm.FlowNext},
	ilasm.LdindI2: {Ldind, ilasm.FlowNext}, ilasm.LdindU2: {Ldind, ilasm.FlowNext},
	ilasm.LdindI4: {Ldind, ilasm.FlowNext}, ilasm.LdindU4: {Ldind, ilasm.FlowNext},
	ilasm.LdindI8: {Ldind, ilasm.FlowNext}, ilasm.LdindI: {Ldind, ilasm.FlowNext},
	ilasm.LdindR4: {Ldind, ilasm.FlowNext}, ilasm.LdindR8: {Ldind, ilasm.FlowNext},
	ilasm.LdindRef: {Ldind, ilasm.FlowNext},
	ilasm.StindRef: {Stind, ilasm.FlowNext}, ilasm.StindI1: {Stind, ilasm.FlowNext},
	ilasm.StindI2: {Stind, ilasm.FlowNext}, ilasm.StindI4: {Stind, ilasm.FlowNext},
	ilasm.StindI8: {Stind, ilasm.FlowNext}, ilasm.StindR4: {Stind, ilasm.FlowNext},
	ilasm.StindR8: {Stind, ilasm.FlowNext}, ilasm.StindI: {Stind, ilasm.FlowNext},

	ilasm.Add: {Add, ilasm.FlowNext}, ilasm.Sub: {Sub, ilasm.FlowNext},
	ilasm.Mul: {Mul, ilasm.FlowNext}, ilasm.Div: {Div, ilasm.FlowNext},
	ilasm.DivUn: {Div, ilasm.FlowNext}, ilasm.Rem: {Rem, ilasm.FlowNext},
	ilasm.RemUn: {Rem, ilasm.FlowNext}, ilasm.And: {And, ilasm.FlowNext},
	ilasm.Or: {Or, ilasm.FlowNext}, ilasm.Xor: {Xor, ilasm.FlowNext},
	ilasm.Shl: {Shl, ilasm.FlowNext}, ilasm.Shr: {Shr, ilasm.FlowNext},
	ilasm.ShrUn: {Shr, ilasm.FlowNext}, ilasm.Neg: {Neg, ilasm.FlowNext},
	ilasm.Not: {Not, ilasm.FlowNext},

	ilasm.ConvI1: {Conv, ilasm.FlowNext}, ilasm.ConvI2: {Conv, ilasm.FlowNext},
	ilasm.ConvI4: {Conv, ilasm.FlowNext}, ilasm.ConvI8: {Conv, ilasm.FlowNext},
	ilasm.ConvR4: {Conv, ilasm.FlowNext}, ilasm.ConvR8: {Conv, ilasm.FlowNext},
	ilasm.ConvU4: {Conv, ilasm.FlowNext}, ilasm.ConvU8: {Conv, ilasm.FlowNext},
	ilasm.ConvU: {Conv, ilasm.FlowNext}, ilasm.ConvI: {Conv, ilasm.FlowNext},
	ilasm.ConvOvfI4: {Conv, ilasm.FlowNext}, ilasm.ConvOvfU4: {Conv, ilasm.FlowNext},

	ilasm.Cpobj: {Cpobj, ilasm.FlowNext}, ilasm.Ldobj: {Ldobj, ilasm.FlowNext},
	ilasm.Ldstr: {Ldstr, ilasm.FlowNext}, ilasm.Castclass: {Castclass, ilasm.FlowNext},
	ilasm.Isinst: {Isinst, ilasm.FlowNext}, ilasm.UnboxAny: {Unbox, ilasm.FlowNext},
	ilasm.Unbox: {Unbox, ilasm.FlowNext}, ilasm.Throw: {Throw, ilasm.FlowThrow},

	ilasm.Ldfld: {Ldfld, ilasm.FlowNext}, ilasm.Ldflda: {Ldflda, ilasm.FlowNext},
	ilasm.Stfld: {Stfld, ilasm.FlowNext}, ilasm.Ldsfld: {Ldsfld, ilasm.FlowNext},
	ilasm.Ldsflda: {Ldsflda, ilasm.FlowNext}, ilasm.Stsfld: {Stsfld, ilasm.FlowNext},
	ilasm.Stobj: {Stobj, ilasm.FlowNext}, ilasm.Box: {Box, ilasm.FlowNext},
	ilasm.Newarr: {Newarr, ilasm.FlowNext}, ilasm.Ldlen: {Ldlen, ilasm.FlowNext},
	ilasm.Ldelema: {Ldelema, ilasm.FlowNext},

	ilasm.LdelemI1: {Ldelem, ilasm.FlowNext}, ilasm.LdelemU1: {Ldelem, ilasm.FlowNext},
	ilasm.LdelemI2: {Ldelem, ilasm.FlowNext}, ilasm.LdelemU2: {Ldelem, ilasm.FlowNext},
	ilasm.LdelemI4: {Ldelem, ilasm.FlowNext}, ilasm.LdelemU4: {Ldelem, ilasm.FlowNext},
	ilasm.LdelemI8: {Ldelem, ilasm.FlowNext}, ilasm.LdelemI: {Ldelem, ilasm.FlowNext},
	ilasm.LdelemR4: {Ldelem, ilasm.FlowNext}, ilasm.LdelemR8: {Ldelem, ilasm.FlowNext},
	ilasm.LdelemRef: {Ldelem, ilasm.FlowNext}, ilasm.Ldelem: {Ldelem, ilasm.FlowNext},

	ilasm.StelemI: {Stelem, ilasm.FlowNext}, ilasm.StelemI1: {Stelem, ilasm.FlowNext},
	ilasm.StelemI2: {Stelem, ilasm.FlowNext}, ilasm.StelemI4: {Stelem, ilasm.FlowNext},
	ilasm.StelemI8: {Stelem, ilasm.FlowNext}, ilasm.StelemR4: {Stelem, ilasm.FlowNext},
	ilasm.StelemR8: {Stelem, ilasm.FlowNext}, ilasm.StelemRef: {Stelem, ilasm.FlowNext},
	ilasm.Stelem: {Stelem, ilasm.FlowNext},

	ilasm.Refanyval: {Refanyval, ilasm.FlowNext}, ilasm.Ckfinite: {Ckfinite, ilasm.FlowNext},
	ilasm.Mkrefany: {Mkrefany, ilasm.FlowNext}, ilasm.Ldtoken: {Ldtoken, ilasm.FlowNext},

	ilasm.Endfinally: {Endfinally, ilasm.FlowReturn},
	ilasm.LeaveS: {Leave, ilasm.FlowBranch}, ilasm.Leave: {Leave, ilasm.FlowBranch},
	ilasm.Arglist: {Arglist, ilasm.FlowNext},

	ilasm.Ceq: {Ceq, ilasm.FlowNext}, ilasm.Cgt: {Cgt, ilasm.FlowNext},
	ilasm.CgtUn: {Cgt, ilasm.FlowNext}, ilasm.Clt: {Clt, ilasm.FlowNext},
	ilasm.CltUn: {Clt, ilasm.FlowNext},

	ilasm.Ldftn: {Ldftn, ilasm.FlowNext}, ilasm.Ldvirtftn: {Ldvirtftn, ilasm.FlowNext},
	ilasm.Localloc: {Localloc, ilasm.FlowNext}, ilasm.Endfilter: {Endfilter, ilasm.FlowReturn},

	ilasm.UnalignedPrefix: {Unaligned, ilasm.FlowMeta}, ilasm.VolatilePrefix: {Volatile, ilasm.FlowMeta},
	ilasm.TailPrefix: {Tail, ilasm.FlowMeta}, ilasm.Initobj: {Initobj, ilasm.FlowNext},
	ilasm.ConstrainedPrefix: {Constrained, ilasm.FlowMeta}, ilasm.Cpblk: {Cpblk, ilasm.FlowNext},
	ilasm.Initblk: {Initblk, ilasm.FlowNext}, ilasm.NoPrefix: {No, ilasm.FlowMeta},
	ilasm.Rethrow: {Rethrow, ilasm.FlowThrow}, ilasm.Sizeof: {Sizeof, ilasm.FlowNext},
	ilasm.Refanytype: {Refanytype, ilasm.FlowNext}, ilasm.ReadonlyPrefix: {Readonly, ilasm.FlowMeta},
}

// Of maps an opcode to its instruction family. It fails with
// UnknownOpcode only if the opcode's numeric code lies outside the table.
func Of(op ilasm.Opcode) (InstructionFamily, error) {
	d, ok := table[op]
	if !ok {
		return 0, ilerrors.New(ilerrors.UnknownOpcode, "opcode %d has no family mapping", op)
	}
	return d.family, nil
}

// FlowOf maps an opcode to its flow-control category, used by the CFG
// builder's block-growing switch (4.C).
func FlowOf(op ilasm.Opcode) (ilasm.FlowControl, error) {
	d, ok := table[op]
	if !ok {
		return 0, ilerrors.New(ilerrors.UnknownOpcode, "opcode %d has no flow mapping", op)
	}
	return d.flow, nil
}
