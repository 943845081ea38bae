package analysis

import (
	"testing"

	"ilopt/cfg"
	"ilopt/ilasm"
	"ilopt/iltext"
)

func i32Local(index int) *ilasm.LocalRef {
	return &ilasm.LocalRef{Index: index, Type: ilasm.TypeRef{Kind: ilasm.KI4}}
}

func structLocal(index int) *ilasm.LocalRef {
	return &ilasm.LocalRef{Index: index, Type: ilasm.TypeRef{Kind: ilasm.KValueType}}
}

func buildAndAnalyze(t *testing.T, b *iltext.Builder, mode Mode) Result {
	t.Helper()
	g, err := cfg.Build(b.Body())
	if err != nil {
		t.Fatalf("cfg.Build: %v", err)
	}
	result, err := Analyze(g, mode)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return result
}

// Scenario 1: ldc.i4.0; stloc.0; ldloc.0; ret
func TestSimpleRootBlockAssignment(t *testing.T) {
	local := i32Local(0)
	b := iltext.New([]*ilasm.LocalRef{local}, nil, nil, true)
	b.Emit(ilasm.LdcI40, nil)
	b.Emit(ilasm.Stloc0, nil)
	b.Emit(ilasm.Ldloc0, nil)
	b.Emit(ilasm.Ret, nil)

	if got := buildAndAnalyze(t, b, ModeNone); got != Updated {
		t.Errorf("none mode: got %s, want Updated", got)
	}
}

// Scenario 2: ldloc.0; ret
func TestReadBeforeWrite(t *testing.T) {
	local := i32Local(0)
	b := iltext.New([]*ilasm.LocalRef{local}, nil, nil, true)
	b.Emit(ilasm.Ldloc0, nil)
	b.Emit(ilasm.Ret, nil)

	if got := buildAndAnalyze(t, b, ModeNone); got != Failed {
		t.Errorf("none mode: got %s, want Failed", got)
	}
}

// Scenario 3: ldloca.s 0; initobj MyStruct; ret
func TestInitobjViaLdloca(t *testing.T) {
	local := structLocal(0)
	b := iltext.New([]*ilasm.LocalRef{local}, nil, nil, true)
	b.Emit(ilasm.LdlocaS, local)
	b.Emit(ilasm.Initobj, &ilasm.TypeRef{Kind: ilasm.KValueType})
	b.Emit(ilasm.Ret, nil)

	if got := buildAndAnalyze(t, b, ModeNone); got != Updated {
		t.Errorf("none mode: got %s, want Updated", got)
	}
}

// Scenario 4: ldloca.s 0; call instance void MyStruct::.ctor(); ret
func TestConstructorViaLdloca(t *testing.T) {
	local := structLocal(0)
	b := iltext.New([]*ilasm.LocalRef{local}, nil, nil, true)
	b.Emit(ilasm.LdlocaS, local)
	b.Emit(ilasm.Call, &ilasm.MethodRef{
		Name: ".ctor", IsConstructor: true, HasThis: true,
	})
	b.Emit(ilasm.Ret, nil)

	if got := buildAndAnalyze(t, b, ModeNone); got != Updated {
		t.Errorf("none mode: got %s, want Updated", got)
	}
}

// Scenario 5: ldloca.s 0; call void C::Fill(int32&); ldloc.0; ret
// where Fill's parameter is out.
func TestOutParameterAssignment(t *testing.T) {
	local := i32Local(0)
	newFill := func() *ilasm.MethodRef {
		return &ilasm.MethodRef{
			Name: "Fill",
			Params: []ilasm.ParamRef{
				{Index: 0, Type: ilasm.TypeRef{Kind: ilasm.KI4}, IsOut: true},
			},
		}
	}

	build := func(initLocals bool) *iltext.Builder {
		b := iltext.New([]*ilasm.LocalRef{local}, nil, nil, initLocals)
		b.Emit(ilasm.LdlocaS, local)
		b.Emit(ilasm.Call, newFill())
		b.Emit(ilasm.Ldloc0, nil)
		b.Emit(ilasm.Ret, nil)
		return b
	}

	if got := buildAndAnalyze(t, build(true), ModeNone); got != Failed {
		t.Errorf("none mode: got %s, want Failed", got)
	}
	if got := buildAndAnalyze(t, build(true), ModeOut); got != Updated {
		t.Errorf("out mode: got %s, want Updated", got)
	}
	if got := buildAndAnalyze(t, build(true), ModeCsharp); got != Updated {
		t.Errorf("csharp mode: got %s, want Updated", got)
	}
}

// Scenario 6: ldc.i4 16; localloc; pop; ret
func TestLocallocPresent(t *testing.T) {
	build := func() *iltext.Builder {
		b := iltext.New(nil, nil, nil, true)
		b.Emit(ilasm.LdcI4, int64(16))
		b.Emit(ilasm.Localloc, nil)
		b.Emit(ilasm.Pop, nil)
		b.Emit(ilasm.Ret, nil)
		return b
	}

	if got := buildAndAnalyze(t, build(), ModeNone); got != Failed {
		t.Errorf("none mode: got %s, want Failed", got)
	}
	if got := buildAndAnalyze(t, build(), ModeOut); got != Failed {
		t.Errorf("out mode: got %s, want Failed", got)
	}
	if got := buildAndAnalyze(t, build(), ModeStackalloc); got != Updated {
		t.Errorf("stackalloc mode: got %s, want Updated", got)
	}
	if got := buildAndAnalyze(t, build(), ModeCsharp); got != Updated {
		t.Errorf("csharp mode: got %s, want Updated", got)
	}
	if got := buildAndAnalyze(t, build(), ModeAll); got != Updated {
		t.Errorf("all mode: got %s, want Updated", got)
	}
}

// Scenario 7: br L2; L1: ldloc.0; ret; L2: ldc.i4.0; stloc.0; br L1
func TestCrossBlockWrite(t *testing.T) {
	build := func() *iltext.Builder {
		local := i32Local(0)
		b := iltext.New([]*ilasm.LocalRef{local}, nil, nil, true)
		br1 := b.Emit(ilasm.Br, nil)
		l1 := b.Emit(ilasm.Ldloc0, nil)
		b.Emit(ilasm.Ret, nil)
		l2 := b.Emit(ilasm.LdcI40, nil)
		b.Emit(ilasm.Stloc0, nil)
		brBack := b.Emit(ilasm.Br, nil)

		br1.Operand = l2
		brBack.Operand = l1
		return b
	}

	if got := buildAndAnalyze(t, build(), ModeNone); got != Failed {
		t.Errorf("none mode: got %s, want Failed", got)
	}
	if got := buildAndAnalyze(t, build(), ModeAll); got != Updated {
		t.Errorf("all mode: got %s, want Updated", got)
	}
}

func TestNoLocalsIsUpdated(t *testing.T) {
	b := iltext.New(nil, nil, nil, true)
	b.Emit(ilasm.Nop, nil)
	b.Emit(ilasm.Ret, nil)

	if got := buildAndAnalyze(t, b, ModeNone); got != Updated {
		t.Errorf("got %s, want Updated", got)
	}
}

func TestAlreadyClearIsSkipped(t *testing.T) {
	local := i32Local(0)
	b := iltext.New([]*ilasm.LocalRef{local}, nil, nil, false)
	b.Emit(ilasm.Ldloc0, nil)
	b.Emit(ilasm.Ret, nil)

	if got := buildAndAnalyze(t, b, ModeNone); got != Skipped {
		t.Errorf("got %s, want Skipped", got)
	}
}

// A method whose initLocals is already false is Skipped under every mode,
// all included: U(all) only counts methods with body and initLocals=true
// (spec section 8), and re-running mode all over its own output must not
// report Updated again (idempotence).
func TestAlreadyClearIsSkippedEvenUnderAll(t *testing.T) {
	local := i32Local(0)
	b := iltext.New([]*ilasm.LocalRef{local}, nil, nil, false)
	b.Emit(ilasm.Ldloc0, nil)
	b.Emit(ilasm.Ret, nil)

	if got := buildAndAnalyze(t, b, ModeAll); got != Skipped {
		t.Errorf("all mode: got %s, want Skipped", got)
	}
}

// Idempotence: running mode all twice over the same body only clears
// initLocals (and reports Updated) the first time.
func TestAllModeIdempotent(t *testing.T) {
	local := i32Local(0)
	b := iltext.New([]*ilasm.LocalRef{local}, nil, nil, true)
	b.Emit(ilasm.Ldloc0, nil)
	b.Emit(ilasm.Ret, nil)

	g, err := cfg.Build(b.Body())
	if err != nil {
		t.Fatalf("cfg.Build: %v", err)
	}
	first, err := Analyze(g, ModeAll)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if first != Updated {
		t.Fatalf("first run: got %s, want Updated", first)
	}

	g2, err := cfg.Build(b.Body())
	if err != nil {
		t.Fatalf("cfg.Build: %v", err)
	}
	second, err := Analyze(g2, ModeAll)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if second != Skipped {
		t.Errorf("second run: got %s, want Skipped (idempotence)", second)
	}
}
