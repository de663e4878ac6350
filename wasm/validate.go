package wasm

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
)

// Validate performs a construction-time check of a guest module's shape
// using wazero: a real wasm compiler and validator, not the hand-rolled
// interpreter this package uses to execute guest code. wazero never runs
// guest instructions here, so it never contends with the instruction
// counting in interpreter.go and executor.go; it only confirms the
// module parses as valid wasm and exports the names and signatures
// Executor depends on, so a malformed guest fails fast with a precise
// error instead of surfacing as a confusing mid-run trap.
//
// Grounded on other_examples' claircore wasm matcher, which uses the
// same CompileModule-then-inspect-ExportedFunctions pattern to validate
// a guest module before instantiating it.
func Validate(bytecode []byte) error {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, bytecode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSection, err)
	}
	defer compiled.Close(ctx)

	mems := compiled.ExportedMemories()
	if _, ok := mems["memory"]; !ok {
		return ErrNoMemory
	}

	fns := compiled.ExportedFunctions()
	required := []struct {
		name    string
		params  int
		results int
	}{
		{"fuzz", 0, 0},
		{"input_pointer", 0, 1},
		{"input_len", 0, 1},
	}
	for _, r := range required {
		def, ok := fns[r.name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingExport, r.name)
		}
		if len(def.ParamTypes()) != r.params || len(def.ResultTypes()) != r.results {
			return fmt.Errorf("%w: %s", ErrExportBadType, r.name)
		}
	}
	return nil
}
