package wasm

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"time"
)

// maxPrimeAttempts bounds the handshake retry loop below. Grounded on
// original_source/src/wasm.rs's prime_lazy_statics, which gives up after
// 100 attempts rather than looping forever against a guest that never
// settles.
const maxPrimeAttempts = 100

// Executor wraps a decoded guest module with the handshake, priming, and
// reboot-on-trap semantics the fuzz and check drivers depend on: exact,
// repeatable instruction counts per invocation of the guest's exported
// fuzz function. Grounded on original_source/src/wasm.rs's WasmModule.
type Executor struct {
	moduleBytes []byte
	mod         *decodedModule
	it          *interp
	fuzzPtr     uint32
	fuzzLen     uint32
}

// New validates and instantiates a guest module, then runs the
// handshake that discovers where and how large an input buffer the
// guest expects. The guest's first invocation of fuzz is expected to
// trap deliberately (it has not yet been told its input length); New
// absorbs that trap as part of bringing the module to a runnable state.
func New(bytecode []byte) (*Executor, error) {
	if err := Validate(bytecode); err != nil {
		return nil, err
	}
	mod, err := decodeModule(bytecode)
	if err != nil {
		return nil, err
	}
	if !mod.hasMemory {
		return nil, ErrNoMemory
	}

	e := &Executor{moduleBytes: bytecode, mod: mod, it: newInterp(mod)}
	if err := e.prime(); err != nil {
		return nil, err
	}
	if err := e.discoverInputBuffer(); err != nil {
		return nil, err
	}
	return e, nil
}

// FromFile reads and constructs an Executor from a wasm file on disk.
func FromFile(path string) (*Executor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCouldNotReadFile, err)
	}
	return New(data)
}

// InputLength returns the exact byte length the guest's fuzz function
// expects, as declared by its input_len export.
func (e *Executor) InputLength() uint32 { return e.fuzzLen }

// prime repeatedly invokes fuzz with no meaningful input until a call
// succeeds or attempts are exhausted, rebooting the instance only after
// an out-of-bounds trap.
// Some guests need more than one invocation to settle internal state
// before input_pointer/input_len can be trusted; this mirrors that
// without assuming how many invocations a given guest needs.
func (e *Executor) prime() error {
	for i := 0; i < maxPrimeAttempts; i++ {
		_, err := e.countInstructionsInternal(nil)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrMemoryOutOfBounds) {
			// A genuine out-of-bounds access reboots the instance, same
			// as any other call. Any other trap (including the
			// intentional first-call trap most guests use) leaves state
			// alone: the guest is expected to have recorded what it
			// needed before trapping, and the next attempt reuses that
			// state rather than losing it to a fresh instance.
			if rerr := e.reboot(); rerr != nil {
				return rerr
			}
		}
	}
	return nil
}

// discoverInputBuffer asks the guest where to place fuzz input and how
// long it must be, rejecting guests that declare more than 1024 bytes.
func (e *Executor) discoverInputBuffer() error {
	ptrResults, err := e.it.callByName("input_pointer")
	if err != nil {
		return err
	}
	if len(ptrResults) == 0 {
		return ErrMissingExport
	}
	e.fuzzPtr = uint32(ptrResults[0])

	lenResults, err := e.it.callByName("input_len")
	if err != nil {
		return err
	}
	if len(lenResults) == 0 {
		return ErrMissingExport
	}
	fuzzLen := uint32(lenResults[0])
	if fuzzLen > 1024 {
		return ErrFuzzLenTooLong
	}
	e.fuzzLen = fuzzLen
	return nil
}

// CountInstructions writes input into the guest's declared input buffer
// and invokes fuzz once, returning the exact number of instructions
// dispatched. A memory-out-of-bounds trap reboots the underlying
// instance so the next call starts from a clean slate; the trap itself
// is still returned to the caller, since a trap is meaningful signal
// (see Generate in package optimizer).
func (e *Executor) CountInstructions(input []byte) (uint64, error) {
	n, err := e.countInstructionsInternal(input)
	if errors.Is(err, ErrMemoryOutOfBounds) {
		if rerr := e.reboot(); rerr != nil {
			return 0, rerr
		}
	}
	return n, err
}

func (e *Executor) countInstructionsInternal(input []byte) (uint64, error) {
	if len(input) > 0 {
		end := uint64(e.fuzzPtr) + uint64(len(input))
		if end > uint64(len(e.it.memory)) {
			return 0, ErrMemoryOutOfBounds
		}
		copy(e.it.memory[e.fuzzPtr:], input)
	}
	e.it.counter = 0
	_, err := e.it.callByName("fuzz")
	return e.it.counter, err
}

// reboot reinstantiates the guest module from its original bytes,
// discarding all linear memory and stack state. Grounded on
// original_source/src/wasm.rs's WasmModule::reboot.
func (e *Executor) reboot() error {
	mod, err := decodeModule(e.moduleBytes)
	if err != nil {
		return err
	}
	e.mod = mod
	e.it = newInterp(mod)
	return nil
}

// Clone produces an independent Executor over the same module bytes,
// re-run through the full handshake. The verifier needs a module
// instance it does not share with the optimizer's population, since
// concurrent CountInstructions calls against one Executor would
// interleave on its single linear memory and stack.
func (e *Executor) Clone() (*Executor, error) {
	return New(e.moduleBytes)
}

// MeasureTime times a single CountInstructions call against a random
// input of the guest's declared length, used by the fuzz driver to
// estimate total run time before starting evolution.
func (e *Executor) MeasureTime() time.Duration {
	input := make([]byte, e.fuzzLen)
	_, _ = rand.Read(input)
	start := time.Now()
	_, _ = e.CountInstructions(input)
	return time.Since(start)
}
