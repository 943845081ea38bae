package cfg

import (
	"testing"

	"ilopt/ilasm"
	"ilopt/iltext"
)

// countEachInstruction counts how many blocks hold each instruction. The
// CFG bijection invariant (spec section 8) holds when every instruction
// of the original stream is counted exactly once.
func countEachInstruction(g *CFG) map[*ilasm.Instruction]int {
	counts := make(map[*ilasm.Instruction]int)
	for _, b := range g.Blocks {
		for _, i := range b.Instructions {
			counts[i]++
		}
	}
	return counts
}

func TestBijectionStraightLine(t *testing.T) {
	local := &ilasm.LocalRef{Index: 0, Type: ilasm.TypeRef{Kind: ilasm.KI4}}
	b := iltext.New([]*ilasm.LocalRef{local}, nil, nil, true)
	b.Emit(ilasm.LdcI40, nil)
	b.Emit(ilasm.Stloc0, nil)
	b.Emit(ilasm.Ldloc0, nil)
	b.Emit(ilasm.Ret, nil)

	g, err := Build(b.Body())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.NodeCount() != 1 {
		t.Fatalf("straight-line body should be one block, got %d", g.NodeCount())
	}

	seen := 0
	for i := b.Body().First; i != nil; i = i.Next {
		seen++
	}
	counts := countEachInstruction(g)
	if len(counts) != seen {
		t.Fatalf("expected %d distinct instructions in the CFG, got %d", seen, len(counts))
	}
	for i, c := range counts {
		if c != 1 {
			t.Errorf("instruction at offset %d appears %d times, want 1", i.Offset, c)
		}
	}
}

func TestBijectionBranching(t *testing.T) {
	local := &ilasm.LocalRef{Index: 0, Type: ilasm.TypeRef{Kind: ilasm.KI4}}
	b := iltext.New([]*ilasm.LocalRef{local}, nil, nil, true)
	br1 := b.Emit(ilasm.Br, nil)
	l1 := b.Emit(ilasm.Ldloc0, nil)
	b.Emit(ilasm.Ret, nil)
	l2 := b.Emit(ilasm.LdcI40, nil)
	b.Emit(ilasm.Stloc0, nil)
	brBack := b.Emit(ilasm.Br, nil)
	br1.Operand = l2
	brBack.Operand = l1

	g, err := Build(b.Body())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.NodeCount() != 3 {
		t.Fatalf("expected 3 blocks, got %d", g.NodeCount())
	}

	seen := 0
	for i := b.Body().First; i != nil; i = i.Next {
		seen++
	}
	counts := countEachInstruction(g)
	if len(counts) != seen {
		t.Fatalf("expected %d distinct instructions in the CFG, got %d", seen, len(counts))
	}
	for i, c := range counts {
		if c != 1 {
			t.Errorf("instruction at offset %d appears %d times, want 1", i.Offset, c)
		}
	}

	// Edge symmetry: every parent a block lists also lists that block
	// as a child.
	for _, block := range g.Blocks {
		for _, parentID := range block.Parents() {
			parent := g.Block(parentID)
			found := false
			for _, c := range parent.Children() {
				if c == block.ID {
					found = true
				}
			}
			if !found {
				t.Errorf("block %d lists parent %d but parent does not list it as a child", block.ID, parentID)
			}
		}
	}
}

func TestEntryUniquenessSplitsMidBlock(t *testing.T) {
	// A backward branch into the middle of an already-grown block must
	// split it so the target becomes a fresh block's first instruction.
	local := &ilasm.LocalRef{Index: 0, Type: ilasm.TypeRef{Kind: ilasm.KI4}}
	b := iltext.New([]*ilasm.LocalRef{local}, nil, nil, true)
	b.Emit(ilasm.LdcI40, nil)
	b.Emit(ilasm.Stloc0, nil)
	ldloc := b.Emit(ilasm.Ldloc0, nil)
	brfalse := b.Emit(ilasm.Brfalse, nil)
	b.Emit(ilasm.Ret, nil)
	brfalse.Operand = ldloc

	g, err := Build(b.Body())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	isEntry := false
	for _, block := range g.Blocks {
		if block.First() == ldloc {
			isEntry = true
		}
	}
	if !isEntry {
		t.Fatal("branch target in mid-block was not split into its own block")
	}

	for _, block := range g.Blocks {
		if len(block.Instructions) == 0 {
			t.Fatalf("block %d has no instructions", block.ID)
		}
		for _, parentID := range block.Parents() {
			if g.Block(parentID).First() == nil {
				t.Fatalf("parent block %d has no first instruction", parentID)
			}
		}
	}
}
