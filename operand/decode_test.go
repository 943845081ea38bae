package operand

import (
	"testing"

	"ilopt/ilasm"
)

func TestLocalShortForms(t *testing.T) {
	locals := []*ilasm.LocalRef{
		{Index: 0, Type: ilasm.TypeRef{Kind: ilasm.KI4}},
		{Index: 1, Type: ilasm.TypeRef{Kind: ilasm.KI4}},
	}
	body := &ilasm.MethodBody{Locals: locals}

	got, err := Local(body, &ilasm.Instruction{Opcode: ilasm.Ldloc1})
	if err != nil {
		t.Fatalf("Local: %v", err)
	}
	if got != locals[1] {
		t.Errorf("Local(ldloc.1) = %v, want locals[1]", got)
	}
}

func TestParamHasThisAdjustment(t *testing.T) {
	this := &ilasm.ParamRef{IsThis: true}
	params := []*ilasm.ParamRef{
		{Index: 0, Name: "a"},
		{Index: 1, Name: "b"},
	}
	body := &ilasm.MethodBody{This: this, Params: params, HasThis: true}

	got, err := Param(body, &ilasm.Instruction{Opcode: ilasm.Ldarg0})
	if err != nil {
		t.Fatalf("Param: %v", err)
	}
	if got != this {
		t.Errorf("ldarg.0 on a HasThis method should resolve to `this`, got %v", got)
	}

	got, err = Param(body, &ilasm.Instruction{Opcode: ilasm.Ldarg1})
	if err != nil {
		t.Fatalf("Param: %v", err)
	}
	if got != params[0] {
		t.Errorf("ldarg.1 on a HasThis method should resolve to param 0, got %v", got)
	}
}

func TestParamWithoutThis(t *testing.T) {
	params := []*ilasm.ParamRef{
		{Index: 0, Name: "a"},
		{Index: 1, Name: "b"},
	}
	body := &ilasm.MethodBody{Params: params, HasThis: false}

	got, err := Param(body, &ilasm.Instruction{Opcode: ilasm.Ldarg0})
	if err != nil {
		t.Fatalf("Param: %v", err)
	}
	if got != params[0] {
		t.Errorf("ldarg.0 without `this` should resolve to param 0, got %v", got)
	}
}

func TestFamilyMismatch(t *testing.T) {
	body := &ilasm.MethodBody{}
	if _, err := Local(body, &ilasm.Instruction{Opcode: ilasm.Ret}); err == nil {
		t.Fatal("expected a FamilyMismatch error decoding a local from a ret instruction")
	}
}
