package wasm

import "encoding/binary"

// Binary format constants, grounded on core/vm/ewasm_jit.go's WasmMagic/
// WasmSection* constants.
const (
	wasmMagic   uint32 = 0x6D736100 // "\0asm" little-endian
	wasmVersion uint32 = 1
	headerSize         = 8 // magic (4) + version (4)

	maxModuleSize = 4 * 1024 * 1024 // generous cap; guests here are tiny
)

const (
	sectionCustom   byte = 0
	sectionType     byte = 1
	sectionImport   byte = 2
	sectionFunction byte = 3
	sectionTable    byte = 4
	sectionMemory   byte = 5
	sectionGlobal   byte = 6
	sectionExport   byte = 7
	sectionStart    byte = 8
	sectionElement  byte = 9
	sectionCode     byte = 10
	sectionData     byte = 11
)

const (
	exportKindFunc   byte = 0
	exportKindTable  byte = 1
	exportKindMemory byte = 2
	exportKindGlobal byte = 3
)

// funcType is a parsed entry of the type section: parameter and result
// counts (the value types themselves never matter to an untyped
// interpreter, only their counts do).
type funcType struct {
	numParams  int
	numResults int
}

// function is a parsed entry of the function+code sections: its type
// index and its decoded body (locals declaration stripped into
// numDeclaredLocals, code left pointing at the first real instruction).
type function struct {
	typeIdx          uint32
	numDeclaredLocals int
	code             []byte // body after the local-declarations prefix
}

// export is a parsed entry of the export section.
type export struct {
	name string
	kind byte
	idx  uint32
}

// rawSection is a single section header + its raw payload.
type rawSection struct {
	id   byte
	data []byte
}

// decodedModule is the result of parsing a module's binary sections,
// stopping short of instantiation: no memory is allocated and no code
// runs. Grounded on core/vm/ewasm_jit.go's parseSections/ValidateWasmBytecode
// and core/vm/ewasm_engine.go's parseFuncs/parseCode, merged into a single
// pass and generalized to multiple functions reachable by call.
type decodedModule struct {
	types       []funcType
	funcs       []function
	exports     map[string]export
	memoryMin   uint32 // initial memory size in 64KiB pages
	memoryMax   uint32 // 0 means unbounded
	hasMemory   bool
}

func decodeModule(bytecode []byte) (*decodedModule, error) {
	if len(bytecode) < headerSize {
		return nil, ErrTooShort
	}
	if len(bytecode) > maxModuleSize {
		return nil, ErrSectionTooLong
	}
	if binary.LittleEndian.Uint32(bytecode[0:4]) != wasmMagic {
		return nil, ErrBadMagic
	}
	if binary.LittleEndian.Uint32(bytecode[4:8]) != wasmVersion {
		return nil, ErrBadVersion
	}

	sections, err := parseSections(bytecode[headerSize:])
	if err != nil {
		return nil, err
	}

	m := &decodedModule{exports: make(map[string]export)}
	var funcTypeIdx []uint32

	for _, sec := range sections {
		switch sec.id {
		case sectionType:
			types, err := parseTypeSection(sec.data)
			if err != nil {
				return nil, err
			}
			m.types = types
		case sectionFunction:
			idxs, err := parseFunctionSection(sec.data)
			if err != nil {
				return nil, err
			}
			funcTypeIdx = idxs
		case sectionMemory:
			min, max, hasMax, err := parseMemorySection(sec.data)
			if err != nil {
				return nil, err
			}
			m.memoryMin, m.memoryMax, m.hasMemory = min, 0, true
			if hasMax {
				m.memoryMax = max
			}
		case sectionExport:
			exports, err := parseExportSection(sec.data)
			if err != nil {
				return nil, err
			}
			for _, e := range exports {
				m.exports[e.name] = e
			}
		case sectionCode:
			funcs, err := parseCodeSection(sec.data, funcTypeIdx)
			if err != nil {
				return nil, err
			}
			m.funcs = funcs
		}
	}

	return m, nil
}

// parseSections walks the section-header stream after the module header.
func parseSections(data []byte) ([]rawSection, error) {
	var sections []rawSection
	offset := 0
	for offset < len(data) {
		id := data[offset]
		offset++
		size, n, err := readULEB(data, offset)
		if err != nil {
			return nil, ErrBadSection
		}
		offset += n
		if offset+int(size) > len(data) {
			return nil, ErrSectionTooLong
		}
		sd := make([]byte, size)
		copy(sd, data[offset:offset+int(size)])
		sections = append(sections, rawSection{id: id, data: sd})
		offset += int(size)
	}
	return sections, nil
}

// parseTypeSection decodes the vector of (form 0x60, params, results)
// function type entries. Only the param/result counts are retained.
func parseTypeSection(data []byte) ([]funcType, error) {
	count, n, err := readULEB(data, 0)
	if err != nil {
		return nil, err
	}
	off := n
	types := make([]funcType, 0, count)
	for i := uint64(0); i < count; i++ {
		if off >= len(data) {
			return nil, ErrBadSection
		}
		off++ // form byte, always 0x60 for func types
		numParams, n2, err := readULEB(data, off)
		if err != nil {
			return nil, err
		}
		off += n2 + int(numParams) // skip the param value-type bytes
		numResults, n3, err := readULEB(data, off)
		if err != nil {
			return nil, err
		}
		off += n3 + int(numResults)
		types = append(types, funcType{numParams: int(numParams), numResults: int(numResults)})
	}
	return types, nil
}

// parseFunctionSection decodes the vector of type indices, one per
// locally-defined function.
func parseFunctionSection(data []byte) ([]uint32, error) {
	count, n, err := readULEB(data, 0)
	if err != nil {
		return nil, err
	}
	off := n
	idxs := make([]uint32, 0, count)
	for i := uint64(0); i < count; i++ {
		idx, n2, err := readULEB(data, off)
		if err != nil {
			return nil, err
		}
		off += n2
		idxs = append(idxs, uint32(idx))
	}
	return idxs, nil
}

// parseMemorySection decodes the (at most one, per the guest contract)
// memory entry's limits.
func parseMemorySection(data []byte) (min, max uint32, hasMax bool, err error) {
	count, n, err := readULEB(data, 0)
	if err != nil || count == 0 {
		return 0, 0, false, err
	}
	off := n
	if off >= len(data) {
		return 0, 0, false, ErrBadSection
	}
	flags := data[off]
	off++
	minVal, n2, err := readULEB(data, off)
	if err != nil {
		return 0, 0, false, err
	}
	off += n2
	if flags&0x01 != 0 {
		maxVal, _, err := readULEB(data, off)
		if err != nil {
			return 0, 0, false, err
		}
		return uint32(minVal), uint32(maxVal), true, nil
	}
	return uint32(minVal), 0, false, nil
}

// parseExportSection decodes the export vector: name, kind, index.
func parseExportSection(data []byte) ([]export, error) {
	count, n, err := readULEB(data, 0)
	if err != nil {
		return nil, err
	}
	off := n
	exports := make([]export, 0, count)
	for i := uint64(0); i < count; i++ {
		nameLen, n2, err := readULEB(data, off)
		if err != nil {
			return nil, err
		}
		off += n2
		if off+int(nameLen) > len(data) {
			return nil, ErrBadSection
		}
		name := string(data[off : off+int(nameLen)])
		off += int(nameLen)
		if off >= len(data) {
			return nil, ErrBadSection
		}
		kind := data[off]
		off++
		idx, n3, err := readULEB(data, off)
		if err != nil {
			return nil, err
		}
		off += n3
		exports = append(exports, export{name: name, kind: kind, idx: uint32(idx)})
	}
	return exports, nil
}

// parseCodeSection decodes each function body: its local-declaration
// prefix (runs of (count, valtype) pairs) and its instruction stream.
func parseCodeSection(data []byte, typeIdx []uint32) ([]function, error) {
	count, n, err := readULEB(data, 0)
	if err != nil {
		return nil, err
	}
	off := n
	funcs := make([]function, 0, count)
	for i := uint64(0); i < count; i++ {
		bodySize, n2, err := readULEB(data, off)
		if err != nil {
			return nil, err
		}
		off += n2
		if off+int(bodySize) > len(data) {
			return nil, ErrSectionTooLong
		}
		body := data[off : off+int(bodySize)]
		off += int(bodySize)

		declCount, n3, err := readULEB(body, 0)
		if err != nil {
			return nil, ErrMalformedBody
		}
		bOff := n3
		numLocals := 0
		for d := uint64(0); d < declCount; d++ {
			n4, n5, err := readULEB(body, bOff)
			if err != nil {
				return nil, ErrMalformedBody
			}
			bOff += n5 + 1 // skip the value-type byte
			numLocals += int(n4)
		}

		var ti uint32
		if int(i) < len(typeIdx) {
			ti = typeIdx[i]
		}
		funcs = append(funcs, function{
			typeIdx:           ti,
			numDeclaredLocals: numLocals,
			code:              body[bOff:],
		})
	}
	return funcs, nil
}
