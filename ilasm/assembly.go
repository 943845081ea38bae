package ilasm

// Assembly, Module, TypeDef, Method, Event, and Property are the
// in-memory stand-in for what an ECMA-335 metadata reader/writer would
// hand back (section 1's boundary note): the core package never parses
// bytes, it only ever walks values shaped like these.
type Assembly struct {
	Name    string
	Modules []*Module
}

type Module struct {
	Name  string
	Types []*TypeDef
}

// TypeDef is a class/struct/interface declaration. Nested is recursed
// into by the assembly traversal exactly like top-level Types.
type TypeDef struct {
	Name       string
	Nested     []*TypeDef
	Events     []*Event
	Properties []*Property
	Methods    []*Method
}

// Event and Property each carry the accessor methods the traversal must
// still reach, even though the optimizer has no event/property-specific
// logic of its own.
type Event struct {
	Name   string
	Add    *Method
	Remove *Method
	Raise  *Method // nil when absent
}

type Property struct {
	Name string
	Get  *Method // nil when write-only
	Set  *Method // nil when read-only
}

// Method is a declared method plus its body. Body is nil for an
// abstract/extern/P-Invoke method (HasBody reports false on a nil
// receiver).
type Method struct {
	Name string
	Body *MethodBody
}
