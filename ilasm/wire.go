package ilasm

import "encoding/json"

// MethodBody round-trips through JSON via this flattened wire form: the
// instruction stream is a plain ordered slice (no Prev/Next, which would
// otherwise make the object graph self-referential) and operands that
// point elsewhere in the body — a local, a parameter, a branch target —
// are carried as indices and resolved back to shared pointers on
// decode, so that two instructions referencing "local 0" end up
// pointing at the very same *LocalRef the analyzer keys its access
// tables on.
type wireOperand struct {
	Kind          string     `json:"kind,omitempty"`
	LocalIndex    *int       `json:"localIndex,omitempty"`
	ParamIndex    *int       `json:"paramIndex,omitempty"` // -1 means `this`
	Field         *FieldRef  `json:"field,omitempty"`
	Type          *TypeRef   `json:"type,omitempty"`
	Method        *MethodRef `json:"method,omitempty"`
	Int64         int64      `json:"int64,omitempty"`
	Float64       float64    `json:"float64,omitempty"`
	String        string     `json:"string,omitempty"`
	BranchOffset  *int       `json:"branchOffset,omitempty"`
	SwitchOffsets []int      `json:"switchOffsets,omitempty"`
}

type wireInstruction struct {
	Opcode  Opcode      `json:"opcode"`
	Offset  int         `json:"offset"`
	Operand wireOperand `json:"operand"`
}

type wireMethodBody struct {
	Instructions []wireInstruction `json:"instructions"`
	Locals       []*LocalRef       `json:"locals"`
	This         *ParamRef         `json:"this,omitempty"`
	Params       []*ParamRef       `json:"params"`
	InitLocals   bool              `json:"initLocals"`
	HasThis      bool              `json:"hasThis"`
	ExplicitThis bool              `json:"explicitThis"`
}

func (m MethodBody) MarshalJSON() ([]byte, error) {
	w := wireMethodBody{
		Locals:       m.Locals,
		This:         m.This,
		Params:       m.Params,
		InitLocals:   m.InitLocals,
		HasThis:      m.HasThis,
		ExplicitThis: m.ExplicitThis,
	}
	offsetOf := map[*Instruction]int{}
	for i := m.First; i != nil; i = i.Next {
		offsetOf[i] = i.Offset
	}
	for i := m.First; i != nil; i = i.Next {
		w.Instructions = append(w.Instructions, wireInstruction{
			Opcode:  i.Opcode,
			Offset:  i.Offset,
			Operand: encodeOperand(&m, i.Operand, offsetOf),
		})
	}
	return json.Marshal(w)
}

func (m *MethodBody) UnmarshalJSON(data []byte) error {
	var w wireMethodBody
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.Locals = w.Locals
	m.This = w.This
	m.Params = w.Params
	m.InitLocals = w.InitLocals
	m.HasThis = w.HasThis
	m.ExplicitThis = w.ExplicitThis

	byOffset := map[int]*Instruction{}
	var instrs []*Instruction
	for _, wi := range w.Instructions {
		i := &Instruction{Opcode: wi.Opcode, Offset: wi.Offset}
		instrs = append(instrs, i)
		byOffset[wi.Offset] = i
	}
	for idx, i := range instrs {
		if idx > 0 {
			i.Prev = instrs[idx-1]
			instrs[idx-1].Next = i
		}
	}
	if len(instrs) > 0 {
		m.First = instrs[0]
	}
	for idx, wi := range w.Instructions {
		instrs[idx].Operand = decodeOperand(m, wi.Operand, byOffset)
	}
	return nil
}

func encodeOperand(body *MethodBody, operand any, offsetOf map[*Instruction]int) wireOperand {
	switch v := operand.(type) {
	case nil:
		return wireOperand{}
	case *LocalRef:
		idx := v.Index
		return wireOperand{Kind: "local", LocalIndex: &idx}
	case *ParamRef:
		idx := v.Index
		if v.IsThis {
			idx = -1
		}
		return wireOperand{Kind: "param", ParamIndex: &idx}
	case *FieldRef:
		return wireOperand{Kind: "field", Field: v}
	case *TypeRef:
		return wireOperand{Kind: "type", Type: v}
	case *MethodRef:
		return wireOperand{Kind: "method", Method: v}
	case *Instruction:
		off := offsetOf[v]
		return wireOperand{Kind: "branch", BranchOffset: &off}
	case []*Instruction:
		offs := make([]int, len(v))
		for i, t := range v {
			offs[i] = offsetOf[t]
		}
		return wireOperand{Kind: "switch", SwitchOffsets: offs}
	case int64:
		return wireOperand{Kind: "int64", Int64: v}
	case float64:
		return wireOperand{Kind: "float64", Float64: v}
	case string:
		return wireOperand{Kind: "string", String: v}
	default:
		return wireOperand{}
	}
}

func decodeOperand(body *MethodBody, w wireOperand, byOffset map[int]*Instruction) any {
	switch w.Kind {
	case "local":
		if w.LocalIndex == nil || *w.LocalIndex < 0 || *w.LocalIndex >= len(body.Locals) {
			return nil
		}
		return body.Locals[*w.LocalIndex]
	case "param":
		if w.ParamIndex == nil {
			return nil
		}
		if *w.ParamIndex == -1 {
			return body.This
		}
		if *w.ParamIndex < 0 || *w.ParamIndex >= len(body.Params) {
			return nil
		}
		return body.Params[*w.ParamIndex]
	case "field":
		return w.Field
	case "type":
		return w.Type
	case "method":
		return w.Method
	case "branch":
		if w.BranchOffset == nil {
			return nil
		}
		return byOffset[*w.BranchOffset]
	case "switch":
		targets := make([]*Instruction, len(w.SwitchOffsets))
		for i, off := range w.SwitchOffsets {
			targets[i] = byOffset[off]
		}
		return targets
	case "int64":
		return w.Int64
	case "float64":
		return w.Float64
	case "string":
		return w.String
	default:
		return nil
	}
}
