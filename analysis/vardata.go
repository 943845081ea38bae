package analysis

import "ilopt/ilasm"

// VariableAccessData is the per-(block, local) side table the analyzer
// builds while walking the CFG. It is kept in a map local to the
// analyzer run (see Analyze), not embedded on cfg.Block, so the CFG
// itself stays reusable for other analyses (spec section 9).
type VariableAccessData struct {
	// Instructions is the ordered list of accesses to this local within
	// the block.
	Instructions []*ilasm.Instruction
	// AssignedFirst is true when the block's first access to this local
	// is a write.
	AssignedFirst bool
	// AssignedAfter is true when at least one write to this local occurs
	// anywhere in the block.
	AssignedAfter bool
	// AssignedBefore is reserved for inter-block analysis and is never
	// set by the shipped analyzer (spec section 9's open question: the
	// cross-block decision is an acknowledged TODO, not a semantics this
	// repository should invent).
	AssignedBefore bool
}

func (d *VariableAccessData) recordAccess(instr *ilasm.Instruction, write bool) {
	if len(d.Instructions) == 0 {
		d.AssignedFirst = write
	}
	if write {
		d.AssignedAfter = true
	}
	d.Instructions = append(d.Instructions, instr)
}
