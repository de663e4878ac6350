package dudect

import (
	"testing"

	"github.com/sidefuzz/sidefuzz/wasm"
	"github.com/sidefuzz/sidefuzz/wasm/wasmtest"
)

// branchyFuzz reads a byte from the input buffer and loops that many
// times, so two inputs with different leading bytes cost a different
// number of instructions, the property a timing side channel exploits.
func branchyFuzz() []byte {
	return []byte{
		// local0 = *input (loop counter)
		0x41, 0x00, // addr 0 (ptr)
		0x2D, 0x00, 0x00, // i32.load8_u
		0x21, 0x00, // local.set 0
		// loop { if local0==0 break; local0 -= 1 }
		0x03, 0x40, // loop
		0x20, 0x00, // local.get 0
		0x45,       // i32.eqz
		0x0D, 0x01, // br_if 1
		0x20, 0x00, // local.get 0
		0x41, 0x01, // i32.const 1
		0x6B,       // i32.sub
		0x21, 0x00, // local.set 0
		0x0C, 0x00, // br 0
		0x0B, // end
	}
}

func TestVerifier_AcceptsCleanTimingDifference(t *testing.T) {
	raw := wasmtest.Guest(1, 0, 1, branchyFuzz(), 1)
	exec, err := wasm.New(raw)
	if err != nil {
		t.Fatalf("wasm.New: %v", err)
	}
	v := New(exec, []byte{1}, []byte{200})
	for v.Outcome() == Continue && v.Samples() < 2000 {
		if err := v.Sample(50); err != nil {
			t.Fatalf("Sample: %v", err)
		}
	}
	if v.Outcome() != Accept {
		t.Fatalf("Outcome() = %v, want Accept (t=%v, samples=%d)", v.Outcome(), v.T(), v.Samples())
	}
}

func TestVerifier_RejectsConstantTimeAfterManySamples(t *testing.T) {
	code := []byte{0x41, 0x00, 0x1A} // i32.const 0; drop
	raw := wasmtest.Guest(1, 0, 1, code, 0)
	exec, err := wasm.New(raw)
	if err != nil {
		t.Fatalf("wasm.New: %v", err)
	}
	v := New(exec, []byte{1}, []byte{200})
	if err := v.Sample(minSamplesBeforeGiveUp + 1); err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if v.Outcome() != Reject {
		t.Fatalf("Outcome() = %v, want Reject", v.Outcome())
	}
}
