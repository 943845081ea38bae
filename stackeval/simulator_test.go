package stackeval

import (
	"testing"

	"ilopt/ilasm"
)

func link(instrs ...*ilasm.Instruction) *ilasm.Instruction {
	for idx := 0; idx < len(instrs); idx++ {
		instrs[idx].Offset = idx
		if idx > 0 {
			instrs[idx-1].Next = instrs[idx]
			instrs[idx].Prev = instrs[idx-1]
		}
	}
	return instrs[0]
}

func TestFindConsumerOutParameter(t *testing.T) {
	local := &ilasm.LocalRef{Index: 0, Type: ilasm.TypeRef{Kind: ilasm.KI4}}
	ldloca := &ilasm.Instruction{Opcode: ilasm.LdlocaS, Operand: local}
	call := &ilasm.Instruction{Opcode: ilasm.Call, Operand: &ilasm.MethodRef{
		Name: "Fill",
		Params: []ilasm.ParamRef{
			{Index: 0, Type: ilasm.TypeRef{Kind: ilasm.KI4}, IsOut: true},
		},
	}}
	ret := &ilasm.Instruction{Opcode: ilasm.Ret}
	link(ldloca, call, ret)

	body := &ilasm.MethodBody{First: ldloca, Locals: []*ilasm.LocalRef{local}}
	consumer, found, err := FindConsumer(body, ldloca.Next)
	if err != nil {
		t.Fatalf("FindConsumer: %v", err)
	}
	if !found {
		t.Fatal("expected a consumer")
	}
	if consumer.Instruction != call {
		t.Errorf("consumer = %v, want the call instruction", consumer.Instruction)
	}
	if consumer.StackIndex != 0 {
		t.Errorf("StackIndex = %d, want 0", consumer.StackIndex)
	}
}

func TestFindConsumerNoneOnControlTransfer(t *testing.T) {
	local := &ilasm.LocalRef{Index: 0, Type: ilasm.TypeRef{Kind: ilasm.KI4}}
	ldloca := &ilasm.Instruction{Opcode: ilasm.LdlocaS, Operand: local}
	br := &ilasm.Instruction{Opcode: ilasm.Br}
	link(ldloca, br)

	body := &ilasm.MethodBody{First: ldloca}
	_, found, err := FindConsumer(body, ldloca.Next)
	if err != nil {
		t.Fatalf("FindConsumer: %v", err)
	}
	if found {
		t.Fatal("expected no consumer across a control transfer")
	}
}

func TestSizeOfWidths(t *testing.T) {
	tests := []struct {
		kind ilasm.TypeKind
		want int
	}{
		{ilasm.KI4, 4},
		{ilasm.KI8, 8},
		{ilasm.KR8, 8},
		{ilasm.KObject, 4},
		{ilasm.KValueType, 4},
	}
	for _, tt := range tests {
		got, err := sizeOf(&ilasm.TypeRef{Kind: tt.kind})
		if err != nil {
			t.Fatalf("sizeOf(%v): %v", tt.kind, err)
		}
		if got != tt.want {
			t.Errorf("sizeOf(%v) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
