// Package ilasm is the in-memory stand-in for the metadata reader/writer
// that parses an ECMA-335 module and hands the optimizer a MethodBody.
// That reader/writer is explicitly out of scope for this repository (no
// third-party ECMA-335 library exists in the Go ecosystem — this is .NET
// tooling territory, served there by dnlib/Mono.Cecil); the core package
// only ever consumes the values defined here. Nothing in this file builds
// or rewrites instructions — it is a passive data model.
package ilasm

// Opcode is the numeric code of a CIL instruction. The exact values are a
// private encoding local to this module (the real metadata format uses
// ECMA-335's 1- and 2-byte opcodes); what matters for the analyses in this
// repository is that family.Of is total over the values defined below.
type Opcode uint16

const (
	Nop Opcode = iota
	Break

	LdargS
	Ldarg
	Ldarg0
	Ldarg1
	Ldarg2
	Ldarg3
	LdargaS
	Ldarga
	StargS
	Starg

	LdlocS
	Ldloc
	Ldloc0
	Ldloc1
	Ldloc2
	Ldloc3
	LdlocaS
	Ldloca
	StlocS
	Stloc
	Stloc0
	Stloc1
	Stloc2
	Stloc3

	Ldnull
	LdcI4
	LdcI4S
	LdcI4M1
	LdcI40
	LdcI41
	LdcI42
	LdcI43
	LdcI44
	LdcI45
	LdcI46
	LdcI47
	LdcI48
	LdcI8
	LdcR4
	LdcR8

	Dup
	Pop

	Jmp
	Call
	Calli
	Callvirt
	Newobj
	Ret

	BrS
	Br
	BrfalseS
	Brfalse
	BrtrueS
	Brtrue
	BeqS
	Beq
	BgeS
	Bge
	BgtS
	Bgt
	BleS
	Ble
	BltS
	Blt
	BneUnS
	BneUn
	Switch

	LdindI1
	LdindU1
	LdindI2
	LdindU2
	LdindI4
	LdindU4
	LdindI8
	LdindI
	LdindR4
	LdindR8
	LdindRef
	StindRef
	StindI1
	StindI2
	StindI4
	StindI8
	StindR4
	StindR8
	StindI

	Add
	Sub
	Mul
	Div
	DivUn
	Rem
	RemUn
	And
	Or
	Xor
	Shl
	Shr
	ShrUn
	Neg
	Not

	ConvI1
	ConvI2
	ConvI4
	ConvI8
	ConvR4
	ConvR8
	ConvU4
	ConvU8
	ConvU
	ConvI
	ConvOvfI4
	ConvOvfU4

	Cpobj
	Ldobj
	Ldstr
	Castclass
	Isinst
	UnboxAny
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
	LdelemI1
	LdelemU1
	LdelemI2
	LdelemU2
	LdelemI4
	LdelemU4
	LdelemI8
	LdelemI
	LdelemR4
	LdelemR8
	LdelemRef
	Ldelem
	StelemI
	StelemI1
	StelemI2
	StelemI4
	StelemI8
	StelemR4
	StelemR8
	StelemRef
	Stelem

	Refanyval
	Ckfinite
	Mkrefany
	Ldtoken

	Endfinally
	LeaveS
	Leave
	Arglist

	Ceq
	Cgt
	CgtUn
	Clt
	CltUn

	Ldftn
	Ldvirtftn
	Localloc
	Endfilter

	UnalignedPrefix
	VolatilePrefix
	TailPrefix
	Initobj
	ConstrainedPrefix
	Cpblk
	Initblk
	NoPrefix
	Rethrow
	Sizeof
	Refanytype
	ReadonlyPrefix
)

// FlowControl groups opcodes by the effect they have on linear control
// flow, as used by the CFG builder (4.C).
type FlowControl int

const (
	FlowNext FlowControl = iota
	FlowBreak
	FlowCall
	FlowMeta
	FlowBranch
	FlowCondBranch
	FlowReturn
	FlowThrow
	FlowPhi
)

// TypeKind classifies the operand types the analyses need to know the
// slot width or enum/modifier structure of (4.D's sizeOf table).
type TypeKind int

const (
	KBool TypeKind = iota
	KChar
	KI1
	KU1
	KI2
	KU2
	KI4
	KU4
	KI8
	KU8
	KR4
	KR8
	KString
	KPointer
	KByReference
	KClass
	KArray
	KIntPtr
	KUIntPtr
	KFunctionPointer
	KObject
	KPinned
	KGenericVar
	KValueType
	KEnum
	KRequiredModifier
	KOptionalModifier
	KVoid
	KTypedByReference
	KSentinel
)

// TypeRef is a minimal type reference: enough to decide slot width (4.D)
// without modeling a full type system.
type TypeRef struct {
	Kind TypeKind
	// Elem is the wrapped/underlying type for Enum (underlying field
	// type) and RequiredModifier/OptionalModifier (modified type).
	Elem *TypeRef
}

// LocalRef identifies a declared local variable by its position in
// MethodBody.Locals.
type LocalRef struct {
	Index int
	Type  TypeRef
	Name  string
}

// ParamRef identifies a parameter, or the implicit `this` parameter when
// IsThis is set.
type ParamRef struct {
	Index  int
	Type   TypeRef
	IsThis bool
	IsOut  bool
	Name   string
}

// FieldRef identifies a field accessed by Ldfld/Ldflda/Stfld/Ldsfld/
// Ldsflda/Stsfld.
type FieldRef struct {
	Name     string
	Type     TypeRef
	IsStatic bool
}

// MethodRef identifies the callee of Call/Callvirt/Newobj/Calli.
type MethodRef struct {
	Name          string
	IsConstructor bool
	HasThis       bool
	ExplicitThis  bool
	Params        []ParamRef
	ReturnType    *TypeRef // nil means void
}

// Instruction is one element of a method body's linear instruction
// stream. The core never creates, reorders, or mutates instructions; CFG
// construction only reads Next/Prev/Offset and classifies Opcode.
type Instruction struct {
	Opcode  Opcode
	Operand any // *LocalRef, *ParamRef, *FieldRef, *TypeRef, *MethodRef, []*Instruction (switch targets), *Instruction (branch target), int64, float64, string, nil
	Offset  int
	Prev    *Instruction
	Next    *Instruction
}

// MethodBody is an ordered instruction stream plus the declared locals,
// parameters, and the mutable InitLocals flag. The core mutates only
// InitLocals.
type MethodBody struct {
	First        *Instruction
	Locals       []*LocalRef
	This         *ParamRef
	Params       []*ParamRef
	InitLocals   bool
	HasThis      bool
	ExplicitThis bool
}

// HasBody reports whether the method has an instruction stream at all
// (an abstract/extern/P-Invoke method has none).
func (m *MethodBody) HasBody() bool { return m != nil && m.First != nil }
