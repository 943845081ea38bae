package cfg

import (
	"ilopt/family"
	"ilopt/ilasm"
	"ilopt/ilerrors"
)

// Build constructs the CFG for a method body. It is iterative throughout
// (an explicit worklist stack, never recursion) because method bodies may
// be arbitrarily deep (spec section 9).
func Build(body *ilasm.MethodBody) (*CFG, error) {
	g := &CFG{Body: body}

	instructionToBlock := make(map[*ilasm.Instruction]BlockID)
	blockEntry := make(map[*ilasm.Instruction]BlockID)

	root := g.newBlock()
	root.Instructions = append(root.Instructions, body.First)
	instructionToBlock[body.First] = root.ID
	blockEntry[body.First] = root.ID
	g.Root = root.ID

	pending := []BlockID{root.ID}

	for len(pending) > 0 {
		id := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if err := grow(g, id, instructionToBlock, blockEntry, &pending); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// grow advances block id's tail instruction until it hits a branch,
// return, throw, or unsupported flow, per the switch in spec 4.C.
func grow(g *CFG, id BlockID, instructionToBlock, blockEntry map[*ilasm.Instruction]BlockID, pending *[]BlockID) error {
	for {
		b := g.Blocks[id]
		i := b.Instructions[len(b.Instructions)-1]

		flow, err := family.FlowOf(i.Opcode)
		if err != nil {
			return err
		}

		switch flow {
		case ilasm.FlowNext, ilasm.FlowBreak, ilasm.FlowCall:
			j := i.Next
			if done := linkOrGrow(g, id, j, instructionToBlock, blockEntry); done {
				return nil
			}
			continue

		case ilasm.FlowMeta:
			if i.Opcode != ilasm.VolatilePrefix {
				return ilerrors.New(ilerrors.UnsupportedFlow, "unsupported Meta opcode %d at offset %d", i.Opcode, i.Offset)
			}
			j := i.Next
			if done := linkOrGrow(g, id, j, instructionToBlock, blockEntry); done {
				return nil
			}
			continue

		case ilasm.FlowBranch:
			target := branchTarget(i)
			if err := processBranchTarget(g, id, target, instructionToBlock, blockEntry, pending); err != nil {
				return err
			}
			return nil

		case ilasm.FlowCondBranch:
			targets := condBranchTargets(i)
			for _, t := range targets {
				if err := processBranchTarget(g, id, t, instructionToBlock, blockEntry, pending); err != nil {
					return err
				}
			}
			if err := processBranchTarget(g, id, i.Next, instructionToBlock, blockEntry, pending); err != nil {
				return err
			}
			return nil

		case ilasm.FlowReturn, ilasm.FlowThrow:
			return nil

		case ilasm.FlowPhi:
			return ilerrors.New(ilerrors.UnsupportedFlow, "Phi opcode %d at offset %d is unsupported", i.Opcode, i.Offset)

		default:
			return ilerrors.New(ilerrors.UnsupportedFlow, "unrecognized flow category for opcode %d", i.Opcode)
		}
	}
}

// linkOrGrow appends j to the block in progress, unless j is already the
// entry of some block — in which case it links to that block as a
// successor and reports the caller should stop growing.
func linkOrGrow(g *CFG, id BlockID, j *ilasm.Instruction, instructionToBlock, blockEntry map[*ilasm.Instruction]BlockID) (stop bool) {
	if entryID, ok := blockEntry[j]; ok {
		g.addEdge(id, entryID)
		return true
	}
	b := g.Blocks[id]
	b.Instructions = append(b.Instructions, j)
	instructionToBlock[j] = id
	return false
}

// processBranchTarget resolves T to a block (existing entry, mid-block
// split, or fresh block) and links id -> that block, per spec 4.C.
func processBranchTarget(g *CFG, id BlockID, t *ilasm.Instruction, instructionToBlock, blockEntry map[*ilasm.Instruction]BlockID, pending *[]BlockID) error {
	if entryID, ok := blockEntry[t]; ok {
		g.addEdge(id, entryID)
		return nil
	}

	if ownerID, ok := instructionToBlock[t]; ok {
		n, err := split(g, ownerID, t, instructionToBlock, blockEntry)
		if err != nil {
			return err
		}
		g.addEdge(id, n.ID)
		return nil
	}

	n := g.newBlock()
	n.Instructions = append(n.Instructions, t)
	instructionToBlock[t] = n.ID
	blockEntry[t] = n.ID
	*pending = append(*pending, n.ID)
	g.addEdge(id, n.ID)
	return nil
}

// split divides block m at instruction t: t and every later instruction
// of m move into a new block n, m keeps the prefix, m's children become
// n's children, and n becomes m's sole child.
func split(g *CFG, m BlockID, t *ilasm.Instruction, instructionToBlock, blockEntry map[*ilasm.Instruction]BlockID) (*Block, error) {
	mb := g.Blocks[m]

	splitAt := -1
	for idx, instr := range mb.Instructions {
		if instr == t {
			splitAt = idx
			break
		}
	}
	if splitAt <= 0 {
		return nil, ilerrors.New(ilerrors.UnsupportedFlow, "split target is not a strict suffix of its owning block")
	}

	n := g.newBlock()
	n.Instructions = append(n.Instructions, mb.Instructions[splitAt:]...)
	mb.Instructions = mb.Instructions[:splitAt]

	for _, instr := range n.Instructions {
		instructionToBlock[instr] = n.ID
	}
	blockEntry[t] = n.ID

	n.children = mb.children
	for _, c := range n.children {
		cb := g.Blocks[c]
		for i, p := range cb.parents {
			if p == m {
				cb.parents[i] = n.ID
			}
		}
	}
	mb.children = nil
	g.addEdge(m, n.ID)

	return n, nil
}

func branchTarget(i *ilasm.Instruction) *ilasm.Instruction {
	t, _ := i.Operand.(*ilasm.Instruction)
	return t
}

func condBranchTargets(i *ilasm.Instruction) []*ilasm.Instruction {
	if targets, ok := i.Operand.([]*ilasm.Instruction); ok {
		return targets
	}
	if t, ok := i.Operand.(*ilasm.Instruction); ok {
		return []*ilasm.Instruction{t}
	}
	return nil
}
