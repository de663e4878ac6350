package fuzzing

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sidefuzz/sidefuzz/wasm"
	"github.com/sidefuzz/sidefuzz/wasm/wasmtest"
)

func branchyFuzz() []byte {
	return []byte{
		0x41, 0x00,
		0x2D, 0x00, 0x00,
		0x21, 0x00,
		0x03, 0x40,
		0x20, 0x00,
		0x45,
		0x0D, 0x01,
		0x20, 0x00,
		0x41, 0x01,
		0x6B,
		0x21, 0x00,
		0x0C, 0x00,
		0x0B,
	}
}

func constantFuzz() []byte {
	return []byte{0x41, 0x00, 0x1A} // i32.const 0; drop
}

func TestRunCheck_RejectsDifferentSizes(t *testing.T) {
	raw := wasmtest.Guest(1, 0, 2, constantFuzz(), 0)
	ex, err := wasm.New(raw)
	if err != nil {
		t.Fatalf("wasm.New: %v", err)
	}
	var buf bytes.Buffer
	_, err = RunCheck(ex, []byte{1}, []byte{1, 2}, &buf)
	if err != ErrInputsDifferentSizes {
		t.Fatalf("got %v, want ErrInputsDifferentSizes", err)
	}
}

func TestRunCheck_RejectsWrongLength(t *testing.T) {
	raw := wasmtest.Guest(1, 0, 2, constantFuzz(), 0)
	ex, err := wasm.New(raw)
	if err != nil {
		t.Fatalf("wasm.New: %v", err)
	}
	var buf bytes.Buffer
	_, err = RunCheck(ex, []byte{1}, []byte{2}, &buf)
	if !errors.Is(err, ErrInputWrongSize) {
		t.Fatalf("got %v, want ErrInputWrongSize", err)
	}
}

func TestRunCheck_AcceptsCleanDifference(t *testing.T) {
	raw := wasmtest.Guest(1, 0, 1, branchyFuzz(), 1)
	ex, err := wasm.New(raw)
	if err != nil {
		t.Fatalf("wasm.New: %v", err)
	}
	var buf bytes.Buffer
	res, err := RunCheck(ex, []byte{1}, []byte{200}, &buf)
	if err != nil {
		t.Fatalf("RunCheck: %v", err)
	}
	if !res.Accepted {
		t.Fatalf("expected accept, got reject")
	}
}

func TestRunCheck_RejectsConstantTimeGuest(t *testing.T) {
	raw := wasmtest.Guest(1, 0, 1, constantFuzz(), 0)
	ex, err := wasm.New(raw)
	if err != nil {
		t.Fatalf("wasm.New: %v", err)
	}
	var buf bytes.Buffer
	res, err := RunCheck(ex, []byte{1}, []byte{200}, &buf)
	if err != nil {
		t.Fatalf("RunCheck: %v", err)
	}
	if res.Accepted {
		t.Fatalf("expected reject for a constant-time guest")
	}
}
