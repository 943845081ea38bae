package stackeval

import (
	"ilopt/ilasm"
	"ilopt/ilerrors"
)

// sizeOf maps a type reference to its abstract stack slot width in bytes,
// per the type -> slot-size table in spec section 4.D.
func sizeOf(t *ilasm.TypeRef) (int, error) {
	if t == nil {
		return 4, nil
	}
	switch t.Kind {
	case ilasm.KBool, ilasm.KChar, ilasm.KI1, ilasm.KU1, ilasm.KI2, ilasm.KU2,
		ilasm.KI4, ilasm.KU4, ilasm.KR4,
		ilasm.KString, ilasm.KPointer, ilasm.KByReference, ilasm.KClass,
		ilasm.KArray, ilasm.KIntPtr, ilasm.KUIntPtr, ilasm.KFunctionPointer,
		ilasm.KObject, ilasm.KPinned, ilasm.KGenericVar, ilasm.KValueType:
		return 4, nil
	case ilasm.KI8, ilasm.KU8, ilasm.KR8:
		return 8, nil
	case ilasm.KEnum, ilasm.KRequiredModifier, ilasm.KOptionalModifier:
		return sizeOf(t.Elem)
	case ilasm.KVoid, ilasm.KTypedByReference, ilasm.KSentinel:
		return 0, ilerrors.New(ilerrors.StackUnderflow, "type kind %d has no stack slot size", t.Kind)
	default:
		return 0, ilerrors.New(ilerrors.UnsupportedFamily, "unrecognized type kind %d", t.Kind)
	}
}
