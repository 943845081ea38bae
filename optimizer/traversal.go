// Package optimizer implements the per-assembly optimization driver
// (spec section 4.F) and the traversal that feeds it every reachable
// method (section 4.I).
package optimizer

import "ilopt/ilasm"

// Counts is the processed-counts line from section 6: how many of each
// container kind the traversal walked.
type Counts struct {
	Modules    int
	Types      int
	Events     int
	Properties int
	Methods    int
}

// walkAssembly performs the depth-first, explicit-stack traversal over
// modules -> types -> (nested types, events, properties, methods),
// invoking visit once per method and returning the processed-counts
// line. Recursion is avoided even though TypeDef nesting could in
// principle run deep, matching the no-recursion-over-method-scale-
// structures rule (section 9) applied here to assembly-scale structures
// too.
func walkAssembly(asm *ilasm.Assembly, visit func(*ilasm.Method)) Counts {
	var c Counts

	type frame struct {
		t *ilasm.TypeDef
	}

	for _, mod := range asm.Modules {
		c.Modules++
		var stack []frame
		for _, t := range mod.Types {
			stack = append(stack, frame{t})
		}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			c.Types++

			for _, e := range f.t.Events {
				c.Events++
				visitEventMethods(e, visit)
			}
			for _, p := range f.t.Properties {
				c.Properties++
				visitPropertyMethods(p, visit)
			}
			for _, m := range f.t.Methods {
				c.Methods++
				visit(m)
			}
			for _, nested := range f.t.Nested {
				stack = append(stack, frame{nested})
			}
		}
	}
	return c
}

func visitEventMethods(e *ilasm.Event, visit func(*ilasm.Method)) {
	for _, m := range []*ilasm.Method{e.Add, e.Remove, e.Raise} {
		if m != nil {
			visit(m)
		}
	}
}

func visitPropertyMethods(p *ilasm.Property, visit func(*ilasm.Method)) {
	for _, m := range []*ilasm.Method{p.Get, p.Set} {
		if m != nil {
			visit(m)
		}
	}
}
