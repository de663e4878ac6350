package main

import (
	"fmt"
	"os"

	"github.com/sidefuzz/sidefuzz/fuzzing"
	"github.com/sidefuzz/sidefuzz/log"
	"github.com/sidefuzz/sidefuzz/wasm"
)

func runFuzzCmd(args []string) int {
	var cf commonFlags
	fs := newCustomFlagSet("sidefuzz fuzz")
	bindCommonFlags(fs, &cf)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: sidefuzz fuzz <wasm-file>")
		return 1
	}

	log.SetDefault(setupLogger(cf))

	exec, err := wasm.FromFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if _, err := fuzzing.RunFuzz(exec, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
