// Package wasmtest builds minimal, hand-assembled wasm binaries for
// exercising package wasm's decoder and interpreter without depending on
// an external wat2wasm toolchain. Grounded on core/vm/ewasm_engine.go's
// BuildEngineWasm and core/vm/ewasm_jit.go's BuildMinimalWasm, which
// build test modules the same way: append section bytes by hand rather
// than invoke a real wasm assembler.
package wasmtest

import "encoding/binary"

// appendULEB128 and appendSLEB128 are private copies of package wasm's
// equivalents. They exist separately here because wasmtest cannot import
// wasm's unexported helpers, and this mirrors the teacher's own repo,
// which keeps independent LEB128 append helpers in its executor test
// file rather than exporting the production ones.
func appendULEB128(buf []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if v == 0 {
			return buf
		}
	}
}

func appendSLEB128(buf []byte, v int64) []byte {
	more := true
	for more {
		b := byte(v & 0x7F)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		buf = append(buf, b)
	}
	return buf
}

const (
	secType     = 1
	secFunction = 3
	secMemory   = 5
	secExport   = 7
	secCode     = 10

	exportFunc   = 0
	exportMemory = 2
)

func appendSection(buf []byte, id byte, data []byte) []byte {
	buf = append(buf, id)
	buf = appendULEB128(buf, uint64(len(data)))
	return append(buf, data...)
}

// FuncSpec describes one locally-defined function: its signature (as
// param/result counts, since the interpreter never inspects value
// types), its declared local count, and its instruction bytes (without
// a trailing End; Build appends it).
type FuncSpec struct {
	NumParams  int
	NumResults int
	NumLocals  int
	Code       []byte
}

// Builder assembles a wasm module byte-by-byte: a type per function (one
// type per function keeps this simple, at the cost of duplicate type
// entries when two functions share a signature, which the interpreter
// does not care about), an export for "memory" plus any named function
// exports, and a code section with each function's local-declarations
// prefix and body.
type Builder struct {
	memoryPages uint32
	funcs       []FuncSpec
	exports     map[string]int // export name -> func index
}

func New(memoryPages uint32) *Builder {
	return &Builder{memoryPages: memoryPages, exports: make(map[string]int)}
}

// AddFunc registers a function and returns its index for use with Export.
func (b *Builder) AddFunc(spec FuncSpec) int {
	b.funcs = append(b.funcs, spec)
	return len(b.funcs) - 1
}

func (b *Builder) Export(name string, funcIdx int) {
	b.exports[name] = funcIdx
}

// Build emits the complete module: header, type section, function
// section, memory section, export section, code section.
func (b *Builder) Build() []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint32(out[0:4], 0x6D736100)
	binary.LittleEndian.PutUint32(out[4:8], 1)

	var typeSec, funcSec, codeSec []byte
	typeSec = appendULEB128(typeSec, uint64(len(b.funcs)))
	funcSec = appendULEB128(funcSec, uint64(len(b.funcs)))
	codeSec = appendULEB128(codeSec, uint64(len(b.funcs)))

	for i, f := range b.funcs {
		typeSec = append(typeSec, 0x60)
		typeSec = appendULEB128(typeSec, uint64(f.NumParams))
		for j := 0; j < f.NumParams; j++ {
			typeSec = append(typeSec, 0x7F) // i32
		}
		typeSec = appendULEB128(typeSec, uint64(f.NumResults))
		for j := 0; j < f.NumResults; j++ {
			typeSec = append(typeSec, 0x7F)
		}
		funcSec = appendULEB128(funcSec, uint64(i))

		var body []byte
		if f.NumLocals > 0 {
			body = appendULEB128(body, 1) // one local-decl run
			body = appendULEB128(body, uint64(f.NumLocals))
			body = append(body, 0x7F)
		} else {
			body = appendULEB128(body, 0)
		}
		body = append(body, f.Code...)
		body = append(body, 0x0B) // End

		codeSec = appendULEB128(codeSec, uint64(len(body)))
		codeSec = append(codeSec, body...)
	}

	var memSec []byte
	memSec = appendULEB128(memSec, 1)
	memSec = append(memSec, 0x00) // no max
	memSec = appendULEB128(memSec, uint64(b.memoryPages))

	var exportSec []byte
	exportSec = appendULEB128(exportSec, uint64(len(b.exports)+1))
	exportSec = appendExport(exportSec, "memory", exportMemory, 0)
	for name, idx := range b.exports {
		exportSec = appendExport(exportSec, name, exportFunc, uint64(idx))
	}

	out = appendSection(out, secType, typeSec)
	out = appendSection(out, secFunction, funcSec)
	out = appendSection(out, secMemory, memSec)
	out = appendSection(out, secExport, exportSec)
	out = appendSection(out, secCode, codeSec)
	return out
}

func appendExport(buf []byte, name string, kind byte, idx uint64) []byte {
	buf = appendULEB128(buf, uint64(len(name)))
	buf = append(buf, name...)
	buf = append(buf, kind)
	return appendULEB128(buf, idx)
}

// ConstI32Func returns a FuncSpec for a zero-arg function that returns a
// fixed i32 constant, the shape input_pointer and input_len need.
func ConstI32Func(v int32) FuncSpec {
	var code []byte
	code = append(code, 0x41) // i32.const
	code = appendSLEB128(code, int64(v))
	return FuncSpec{NumParams: 0, NumResults: 1, Code: code}
}

// Guest builds a complete, minimal valid guest module: it exports
// "memory", "fuzz" (running fuzzCode), "input_pointer" (returning ptr),
// and "input_len" (returning length). Suitable as a base for tests that
// then tweak fuzzCode to exercise specific opcodes or trap conditions.
func Guest(memoryPages uint32, ptr, length int32, fuzzCode []byte, fuzzLocals int) []byte {
	b := New(memoryPages)
	fuzzIdx := b.AddFunc(FuncSpec{NumParams: 0, NumResults: 0, NumLocals: fuzzLocals, Code: fuzzCode})
	ptrIdx := b.AddFunc(ConstI32Func(ptr))
	lenIdx := b.AddFunc(ConstI32Func(length))
	b.Export("fuzz", fuzzIdx)
	b.Export("input_pointer", ptrIdx)
	b.Export("input_len", lenIdx)
	return b.Build()
}
