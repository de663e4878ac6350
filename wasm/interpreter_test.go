package wasm

import (
	"testing"

	"github.com/sidefuzz/sidefuzz/wasm/wasmtest"
)

func runFuzz(t *testing.T, code []byte, locals int) (*interp, error) {
	t.Helper()
	raw := wasmtest.Guest(1, 0, 0, code, locals)
	mod, err := decodeModule(raw)
	if err != nil {
		t.Fatalf("decodeModule: %v", err)
	}
	it := newInterp(mod)
	_, err = it.callByName("fuzz")
	return it, err
}

func TestInterp_ArithmeticAndCounting(t *testing.T) {
	// 2 + 3, dropped. Five dispatched opcodes: two consts, one add, one
	// drop, and the End that the wasmtest builder appends to the body.
	code := []byte{0x41, 0x02, 0x41, 0x03, opI32Add, opDrop}
	it, err := runFuzz(t, code, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.counter != 5 {
		t.Fatalf("counter = %d, want 5", it.counter)
	}
}

func TestInterp_UnreachableTraps(t *testing.T) {
	code := []byte{opUnreachable}
	_, err := runFuzz(t, code, 0)
	if err != ErrUnreachable {
		t.Fatalf("got %v, want ErrUnreachable", err)
	}
}

func TestInterp_IfTakenBranch(t *testing.T) {
	// if (1) { local 0 := 42 }
	code := []byte{
		0x41, 0x01, // i32.const 1
		opIf, 0x40,
		0x41, 0x2A, // i32.const 42
		opLocalSet, 0x00,
		opEnd,
	}
	it, err := runFuzz(t, code, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = it
}

func TestInterp_IfNotTakenRunsElse(t *testing.T) {
	// if (0) { unreachable } else { nop }
	code := []byte{
		0x41, 0x00, // i32.const 0
		opIf, 0x40,
		opUnreachable,
		opElse,
		opNop,
		opEnd,
	}
	_, err := runFuzz(t, code, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v (then branch should have been skipped)", err)
	}
}

func TestInterp_LoadStoreRoundTrip(t *testing.T) {
	// store 7 at address 0, load it back, drop.
	code := []byte{
		0x41, 0x00, // addr
		0x41, 0x07, // value
		opI32Store, 0x02, 0x00,
		0x41, 0x00, // addr
		opI32Load, 0x02, 0x00,
		opDrop,
	}
	it, err := runFuzz(t, code, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.memory[0] != 7 {
		t.Fatalf("memory[0] = %d, want 7", it.memory[0])
	}
}

func TestInterp_MemoryOutOfBounds(t *testing.T) {
	code := []byte{
		0x41, 0xFF, 0xFF, 0x03, // i32.const 65535 (signed LEB128, 3 bytes)
		opI32Load, 0x02, 0x00,
		opDrop,
	}
	_, err := runFuzz(t, code, 0)
	if err != ErrMemoryOutOfBounds {
		t.Fatalf("got %v, want ErrMemoryOutOfBounds", err)
	}
}

func TestInterp_DivisionByZeroTraps(t *testing.T) {
	code := []byte{
		0x41, 0x01,
		0x41, 0x00,
		opI32DivS,
		opDrop,
	}
	_, err := runFuzz(t, code, 0)
	if err != ErrDivisionByZero {
		t.Fatalf("got %v, want ErrDivisionByZero", err)
	}
}

func TestInterp_LoopBranches(t *testing.T) {
	// local0 = 0; loop { local0 += 1; br_if 0 (local0 < 3) }
	code := []byte{
		0x41, 0x00,
		opLocalSet, 0x00,
		opLoop, 0x40,
		opLocalGet, 0x00,
		0x41, 0x01,
		opI32Add,
		opLocalTee, 0x00,
		0x41, 0x03,
		opI32LtS,
		opBrIf, 0x00,
		opEnd,
	}
	it, err := runFuzz(t, code, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = it
}
