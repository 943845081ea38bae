package optimizer

import (
	"testing"

	"ilopt/ilasm"
)

func TestWalkAssemblyVisitsEventsAndProperties(t *testing.T) {
	addM := &ilasm.Method{Name: "add_X"}
	removeM := &ilasm.Method{Name: "remove_X"}
	getM := &ilasm.Method{Name: "get_Y"}
	nestedMethod := &ilasm.Method{Name: "Inner.M"}

	asm := &ilasm.Assembly{
		Modules: []*ilasm.Module{{
			Types: []*ilasm.TypeDef{{
				Name:       "Outer",
				Events:     []*ilasm.Event{{Name: "X", Add: addM, Remove: removeM}},
				Properties: []*ilasm.Property{{Name: "Y", Get: getM}},
				Nested: []*ilasm.TypeDef{{
					Name:    "Inner",
					Methods: []*ilasm.Method{nestedMethod},
				}},
			}},
		}},
	}

	var visited []string
	counts := walkAssembly(asm, func(m *ilasm.Method) { visited = append(visited, m.Name) })

	if counts.Modules != 1 || counts.Types != 2 || counts.Events != 1 || counts.Properties != 1 {
		t.Errorf("counts = %+v", counts)
	}
	want := map[string]bool{"add_X": true, "remove_X": true, "get_Y": true, "Inner.M": true}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want exactly %v", visited, want)
	}
	for _, name := range visited {
		if !want[name] {
			t.Errorf("unexpected visit: %s", name)
		}
	}
}
