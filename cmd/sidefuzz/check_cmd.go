package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/sidefuzz/sidefuzz/fuzzing"
	"github.com/sidefuzz/sidefuzz/log"
	"github.com/sidefuzz/sidefuzz/wasm"
)

func runCheckCmd(args []string) int {
	var cf commonFlags
	fs := newCustomFlagSet("sidefuzz check")
	bindCommonFlags(fs, &cf)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "usage: sidefuzz check <wasm-file> <hex-input-1> <hex-input-2>")
		return 1
	}

	log.SetDefault(setupLogger(cf))

	exec, err := wasm.FromFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	first, err := hex.DecodeString(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid hex input 1: %v\n", err)
		return 1
	}
	second, err := hex.DecodeString(fs.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid hex input 2: %v\n", err)
		return 1
	}

	if _, err := fuzzing.RunCheck(exec, first, second, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
