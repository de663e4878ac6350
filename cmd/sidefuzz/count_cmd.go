package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/sidefuzz/sidefuzz/log"
	"github.com/sidefuzz/sidefuzz/wasm"
)

func runCountCmd(args []string) int {
	var cf commonFlags
	fs := newCustomFlagSet("sidefuzz count")
	bindCommonFlags(fs, &cf)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: sidefuzz count <wasm-file> <hex-input>")
		return 1
	}

	log.SetDefault(setupLogger(cf))

	exec, err := wasm.FromFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	input, err := hex.DecodeString(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid hex input: %v\n", err)
		return 1
	}
	if uint32(len(input)) != exec.InputLength() {
		fmt.Fprintf(os.Stderr, "error: input length %d does not match declared fuzz length %d\n", len(input), exec.InputLength())
		return 1
	}

	n, err := exec.CountInstructions(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(n)
	return 0
}
