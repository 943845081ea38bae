package ilasm

import (
	"encoding/json"
	"os"
)

// JSONCodec reads and writes Assembly values as the opaque container
// format (section 6). It plays the role the external ECMA-335
// reader/writer would play in a real build (section 1's boundary
// note) — encoding/json is the right tool here precisely because this
// is our own self-contained fixture format, not metadata parsing, so
// the stdlib-only boundary stays confined to this file and wire.go.
type JSONCodec struct{}

func (JSONCodec) Read(path string) (*Assembly, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var asm Assembly
	if err := json.NewDecoder(f).Decode(&asm); err != nil {
		return nil, err
	}
	return &asm, nil
}

// Write implements optimizer.Writer: it creates outPath fresh (the
// caller is responsible for the overwrite-confirmation prompt) and
// encodes asm into it.
func (JSONCodec) Write(path string, asm *Assembly) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(asm)
}
