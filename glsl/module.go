// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gxp/spirv"
)

// typeKind classifies the SPIR-V types the reader understands.
type typeKind uint8

const (
	typeVoid typeKind = iota
	typeBool
	typeFloat
	typeInt
	typeVector
	typeMatrix
	typeImage
	typeSampledImage
	typeStruct
	typePointer
	typeFunction
)

// typeInfo is one parsed OpType instruction. The meaning of elem and
// count depends on the kind: vectors and matrices store their element
// type and arity, pointers their pointee, sampled images their image
// type.
type typeInfo struct {
	kind    typeKind
	width   uint32
	signed  bool
	elem    uint32
	count   uint32
	dim     spirv.Dim
	members []uint32
	storage spirv.StorageClass
}

// constantInfo is a parsed OpConstant or OpConstantComposite.
type constantInfo struct {
	typeID uint32
	words  []uint32 // scalar value words
	parts  []uint32 // composite constituent ids
}

// variableInfo is a parsed OpVariable. typeID is the pointee type, not
// the pointer.
type variableInfo struct {
	id      uint32
	typeID  uint32
	storage spirv.StorageClass
}

// decorationInfo collects the decorations that matter to GLSL output.
type decorationInfo struct {
	builtIn  *spirv.BuiltIn
	location *uint32
	block    bool
}

// bodyOp is one instruction from the entry point body.
type bodyOp struct {
	opcode spirv.OpCode
	ops    []uint32
}

// module is the parsed form of a SPIR-V binary, reduced to what the
// GLSL writer consumes.
type module struct {
	stage       spirv.ExecutionModel
	entryName   string
	extImports  map[uint32]string
	names       map[uint32]string
	memberNames map[uint32][]string
	decorations map[uint32]*decorationInfo
	types       map[uint32]typeInfo
	constants   map[uint32]constantInfo
	globals     []variableInfo
	locals      []variableInfo
	body        []bodyOp
}

// parseModule decodes the SPIR-V sections the GLSL writer needs.
// Debug and annotation instructions outside that set are skipped;
// unrecognized instructions inside the function body are collected and
// rejected by the writer with a precise error.
//
//nolint:gocognit,gocyclo,cyclop,funlen // switch cases for SPIR-V opcodes
func parseModule(data []byte) (*module, error) {
	if len(data) < 20 {
		return nil, fmt.Errorf("binary too small for a SPIR-V header: %d bytes", len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != spirv.MagicNumber {
		return nil, fmt.Errorf("invalid SPIR-V magic: 0x%08X", magic)
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("binary size %d is not a multiple of the word size", len(data))
	}

	m := &module{
		extImports:  make(map[uint32]string),
		names:       make(map[uint32]string),
		memberNames: make(map[uint32][]string),
		decorations: make(map[uint32]*decorationInfo),
		types:       make(map[uint32]typeInfo),
		constants:   make(map[uint32]constantInfo),
	}

	inFunction := false
	sawEntryPoint := false

	offset := 20
	for offset < len(data) {
		at := offset
		word := binary.LittleEndian.Uint32(data[offset:])
		opcode := spirv.OpCode(word & 0xFFFF)
		wordCount := int(word >> 16)

		if wordCount == 0 || at+wordCount*4 > len(data) {
			return nil, fmt.Errorf("invalid word count %d at offset 0x%X", wordCount, at)
		}

		ops := make([]uint32, wordCount-1)
		for i := range ops {
			ops[i] = binary.LittleEndian.Uint32(data[offset+4+i*4:])
		}
		offset += wordCount * 4

		switch opcode {
		case spirv.OpEntryPoint:
			if sawEntryPoint {
				return nil, fmt.Errorf("multiple entry points are not supported")
			}
			sawEntryPoint = true
			m.stage = spirv.ExecutionModel(ops[0])
			m.entryName, _ = decodeString(ops, 2)

		case spirv.OpExtInstImport:
			name, _ := decodeString(ops, 1)
			m.extImports[ops[0]] = name

		case spirv.OpName:
			name, _ := decodeString(ops, 1)
			m.names[ops[0]] = name

		case spirv.OpMemberName:
			name, _ := decodeString(ops, 2)
			member := ops[1]
			fields := m.memberNames[ops[0]]
			for uint32(len(fields)) <= member {
				fields = append(fields, "")
			}
			fields[member] = name
			m.memberNames[ops[0]] = fields

		case spirv.OpDecorate:
			m.parseDecoration(ops)

		case spirv.OpTypeVoid:
			m.types[ops[0]] = typeInfo{kind: typeVoid}
		case spirv.OpTypeBool:
			m.types[ops[0]] = typeInfo{kind: typeBool}
		case spirv.OpTypeFloat:
			m.types[ops[0]] = typeInfo{kind: typeFloat, width: ops[1]}
		case spirv.OpTypeInt:
			m.types[ops[0]] = typeInfo{kind: typeInt, width: ops[1], signed: ops[2] == 1}
		case spirv.OpTypeVector:
			m.types[ops[0]] = typeInfo{kind: typeVector, elem: ops[1], count: ops[2]}
		case spirv.OpTypeMatrix:
			m.types[ops[0]] = typeInfo{kind: typeMatrix, elem: ops[1], count: ops[2]}
		case spirv.OpTypeImage:
			m.types[ops[0]] = typeInfo{kind: typeImage, elem: ops[1], dim: spirv.Dim(ops[2])}
		case spirv.OpTypeSampledImage:
			m.types[ops[0]] = typeInfo{kind: typeSampledImage, elem: ops[1]}
		case spirv.OpTypeStruct:
			m.types[ops[0]] = typeInfo{kind: typeStruct, members: append([]uint32(nil), ops[1:]...)}
		case spirv.OpTypePointer:
			m.types[ops[0]] = typeInfo{kind: typePointer, storage: spirv.StorageClass(ops[1]), elem: ops[2]}
		case spirv.OpTypeFunction:
			m.types[ops[0]] = typeInfo{kind: typeFunction}

		case spirv.OpConstant:
			m.constants[ops[1]] = constantInfo{typeID: ops[0], words: append([]uint32(nil), ops[2:]...)}
		case spirv.OpConstantComposite:
			m.constants[ops[1]] = constantInfo{typeID: ops[0], parts: append([]uint32(nil), ops[2:]...)}

		case spirv.OpVariable:
			pointer, ok := m.types[ops[0]]
			if !ok || pointer.kind != typePointer {
				return nil, fmt.Errorf("variable %%_%d has no pointer type", ops[1])
			}
			v := variableInfo{id: ops[1], typeID: pointer.elem, storage: spirv.StorageClass(ops[2])}
			if inFunction {
				m.locals = append(m.locals, v)
			} else {
				m.globals = append(m.globals, v)
			}

		case spirv.OpFunction:
			if inFunction {
				return nil, fmt.Errorf("nested function at offset 0x%X", at)
			}
			inFunction = true
		case spirv.OpFunctionEnd:
			inFunction = false

		case spirv.OpCapability, spirv.OpMemoryModel, spirv.OpExecutionMode,
			spirv.OpSource, spirv.OpSourceExtension, spirv.OpString,
			spirv.OpExtension, spirv.OpMemberDecorate, spirv.OpLabel,
			spirv.OpReturn, spirv.OpNop, spirv.OpLine:
			// No GLSL counterpart.

		default:
			if inFunction {
				m.body = append(m.body, bodyOp{opcode: opcode, ops: ops})
			}
			// Module-level instructions outside the supported set are
			// skipped the same way the disassembler skips them.
		}
	}

	if !sawEntryPoint {
		return nil, fmt.Errorf("module has no entry point")
	}
	return m, nil
}

func (m *module) parseDecoration(ops []uint32) {
	dec := m.decorations[ops[0]]
	if dec == nil {
		dec = &decorationInfo{}
		m.decorations[ops[0]] = dec
	}
	switch spirv.Decoration(ops[1]) {
	case spirv.DecorationBuiltIn:
		if len(ops) > 2 {
			b := spirv.BuiltIn(ops[2])
			dec.builtIn = &b
		}
	case spirv.DecorationLocation:
		if len(ops) > 2 {
			loc := ops[2]
			dec.location = &loc
		}
	case spirv.DecorationBlock:
		dec.block = true
	}
}

// decodeString reads a null-terminated string from operand words
// starting at index start. It returns the string and the number of
// words it occupied.
func decodeString(ops []uint32, start int) (string, int) {
	var text []byte
	for i := start; i < len(ops); i++ {
		word := ops[i]
		for shift := 0; shift < 32; shift += 8 {
			c := byte(word >> shift)
			if c == 0 {
				return string(text), i - start + 1
			}
			text = append(text, c)
		}
	}
	return string(text), len(ops) - start
}
