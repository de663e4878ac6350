package wasm

// LEB128 variable-length integer encoding, as used throughout the wasm
// binary format for section sizes, counts, indices, and i32/i64 const
// immediates. Grounded on the teacher's decodeLEB128/readLEB128U/
// readLEB128S trio (core/vm/ewasm_jit.go, core/vm/ewasm_executor.go),
// generalized to 64-bit results and split into its own file.

// readULEB reads an unsigned LEB128 value from data starting at pos.
// Returns the value, the number of bytes consumed, and an error if the
// encoding runs past the end of data or exceeds 64 bits.
func readULEB(data []byte, pos int) (uint64, int, error) {
	var result uint64
	var shift uint
	for i := 0; i < 10; i++ {
		if pos+i >= len(data) {
			return 0, 0, ErrBadLEB128
		}
		b := data[pos+i]
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrBadLEB128
}

// readSLEB reads a signed LEB128 value from data starting at pos.
func readSLEB(data []byte, pos int) (int64, int, error) {
	var result int64
	var shift uint
	for i := 0; i < 10; i++ {
		if pos+i >= len(data) {
			return 0, 0, ErrBadLEB128
		}
		b := data[pos+i]
		result |= int64(b&0x7F) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -(int64(1) << shift)
			}
			return result, i + 1, nil
		}
	}
	return 0, 0, ErrBadLEB128
}

// appendULEB128 appends the unsigned LEB128 encoding of v to buf. Nothing
// in package wasm calls it; wasmtest's module builder keeps its own copy.
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

// appendSLEB128 appends the signed LEB128 encoding of v to buf.
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
