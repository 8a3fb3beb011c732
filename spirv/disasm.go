package spirv

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

var opcodeNames = map[OpCode]string{
	0: "OpNop", 1: "OpUndef", 2: "OpSourceContinued", 3: "OpSource",
	4: "OpSourceExtension", 5: "OpName", 6: "OpMemberName", 7: "OpString",
	8: "OpLine", 10: "OpExtension", 11: "OpExtInstImport", 12: "OpExtInst",
	14: "OpMemoryModel", 15: "OpEntryPoint", 16: "OpExecutionMode",
	17: "OpCapability", 19: "OpTypeVoid", 20: "OpTypeBool",
	21: "OpTypeInt", 22: "OpTypeFloat", 23: "OpTypeVector",
	24: "OpTypeMatrix", 25: "OpTypeImage", 26: "OpTypeSampler",
	27: "OpTypeSampledImage", 28: "OpTypeArray", 29: "OpTypeRuntimeArray",
	30: "OpTypeStruct", 31: "OpTypeOpaque", 32: "OpTypePointer",
	33: "OpTypeFunction", 41: "OpConstantTrue", 42: "OpConstantFalse",
	43: "OpConstant", 44: "OpConstantComposite", 45: "OpConstantSampler",
	46: "OpConstantNull", 54: "OpFunction", 55: "OpFunctionParameter",
	56: "OpFunctionEnd", 57: "OpFunctionCall", 59: "OpVariable",
	61: "OpLoad", 62: "OpStore", 65: "OpAccessChain",
	66: "OpInBoundsAccessChain", 71: "OpDecorate", 72: "OpMemberDecorate",
	77: "OpVectorExtractDynamic", 78: "OpVectorInsertDynamic",
	79: "OpVectorShuffle", 80: "OpCompositeConstruct", 81: "OpCompositeExtract",
	82: "OpCompositeInsert", 83: "OpCopyObject", 84: "OpTranspose",
	86: "OpSampledImage", 87: "OpImageSampleImplicitLod",
	88: "OpImageSampleExplicitLod", 95: "OpImageFetch", 100: "OpImage",
	109: "OpConvertFToU", 110: "OpConvertFToS", 111: "OpConvertSToF",
	112: "OpConvertUToF", 113: "OpUConvert", 114: "OpSConvert",
	115: "OpFConvert", 116: "OpQuantizeToF16", 124: "OpBitcast",
	126: "OpSNegate", 127: "OpFNegate", 128: "OpIAdd", 129: "OpFAdd",
	130: "OpISub", 131: "OpFSub", 132: "OpIMul", 133: "OpFMul",
	134: "OpUDiv", 135: "OpSDiv", 136: "OpFDiv", 137: "OpUMod",
	138: "OpSRem", 139: "OpSMod", 140: "OpFRem", 141: "OpFMod",
	142: "OpVectorTimesScalar", 143: "OpMatrixTimesScalar",
	144: "OpVectorTimesMatrix", 145: "OpMatrixTimesVector",
	146: "OpMatrixTimesMatrix", 147: "OpOuterProduct", 148: "OpDot",
	154: "OpAny", 155: "OpAll", 156: "OpIsNan", 157: "OpIsInf",
	164: "OpLogicalEqual", 165: "OpLogicalNotEqual", 166: "OpLogicalOr",
	167: "OpLogicalAnd", 168: "OpLogicalNot", 169: "OpSelect",
	170: "OpIEqual", 171: "OpINotEqual",
	172: "OpUGreaterThan", 173: "OpSGreaterThan", 174: "OpUGreaterThanEqual",
	175: "OpSGreaterThanEqual", 176: "OpULessThan", 177: "OpSLessThan",
	178: "OpULessThanEqual", 179: "OpSLessThanEqual",
	180: "OpFOrdEqual", 181: "OpFUnordEqual", 182: "OpFOrdNotEqual",
	183: "OpFUnordNotEqual", 184: "OpFOrdLessThan", 185: "OpFUnordLessThan",
	186: "OpFOrdGreaterThan", 187: "OpFUnordGreaterThan",
	188: "OpFOrdLessThanEqual", 189: "OpFUnordLessThanEqual",
	190: "OpFOrdGreaterThanEqual", 191: "OpFUnordGreaterThanEqual",
	194: "OpShiftRightLogical", 195: "OpShiftRightArithmetic",
	196: "OpShiftLeftLogical", 197: "OpBitwiseOr", 198: "OpBitwiseXor",
	199: "OpBitwiseAnd", 200: "OpNot",
	245: "OpPhi", 246: "OpLoopMerge", 247: "OpSelectionMerge",
	248: "OpLabel", 249: "OpBranch", 250: "OpBranchConditional",
	251: "OpSwitch", 252: "OpKill", 253: "OpReturn", 254: "OpReturnValue",
	255: "OpUnreachable",
}

var capabilityNames = map[uint32]string{
	0: "Matrix", 1: "Shader", 2: "Geometry", 3: "Tessellation",
	4: "Addresses", 5: "Linkage", 6: "Kernel",
	9: "Float16", 10: "Float64", 11: "Int64", 22: "Int16",
	32: "ClipDistance", 33: "CullDistance", 39: "Int8",
	50: "ImageQuery", 51: "DerivativeControl",
}

var storageClassNames = map[uint32]string{
	0: "UniformConstant", 1: "Input", 2: "Uniform", 3: "Output",
	4: "Workgroup", 5: "CrossWorkgroup", 6: "Private", 7: "Function",
	8: "Generic", 9: "PushConstant", 10: "AtomicCounter", 11: "Image",
	12: "StorageBuffer",
}

var decorationNames = map[uint32]string{
	0: "RelaxedPrecision", 1: "SpecId", 2: "Block", 3: "BufferBlock",
	4: "RowMajor", 5: "ColMajor", 6: "ArrayStride", 7: "MatrixStride",
	11: "BuiltIn", 13: "NoPerspective", 14: "Flat", 15: "Patch",
	16: "Centroid", 18: "Invariant", 30: "Location", 31: "Component",
	32: "Index", 33: "Binding", 34: "DescriptorSet", 35: "Offset",
}

var builtinNames = map[uint32]string{
	0: "Position", 1: "PointSize", 3: "ClipDistance", 4: "CullDistance",
	5: "VertexId", 6: "InstanceId", 7: "PrimitiveId",
	15: "FragCoord", 16: "PointCoord", 17: "FrontFacing",
	22: "FragDepth", 42: "VertexIndex", 43: "InstanceIndex",
}

var executionModeNames = map[uint32]string{
	7: "OriginUpperLeft", 8: "OriginLowerLeft", 9: "EarlyFragmentTests",
	12: "DepthReplacing", 17: "LocalSize",
}

var executionModelNames = map[uint32]string{
	0: "Vertex", 1: "TessellationControl", 2: "TessellationEvaluation",
	3: "Geometry", 4: "Fragment", 5: "GLCompute", 6: "Kernel",
}

var dimNames = map[uint32]string{
	0: "1D", 1: "2D", 2: "3D", 3: "Cube", 4: "Rect", 5: "Buffer", 6: "SubpassData",
}

var sourceLanguageNames = map[uint32]string{
	0: "Unknown", 1: "ESSL", 2: "GLSL", 3: "OpenCL_C", 4: "OpenCL_CPP", 5: "HLSL",
}

var glslStd450Names = map[uint32]string{
	8: "Floor", 10: "Fract", 26: "Pow", 29: "Exp2", 30: "Log2",
	31: "Sqrt", 32: "InverseSqrt", 37: "FMin", 40: "FMax",
	43: "FClamp", 46: "FMix", 50: "Fma",
}

// Disassemble renders a SPIR-V binary in the spvasm text format. IDs
// are printed as %_N. It keeps going past opcodes it does not know,
// so partially supported modules still produce readable output.
func Disassemble(data []byte) (string, error) {
	if len(data) < 20 {
		return "", fmt.Errorf("binary too small for a SPIR-V header: %d bytes", len(data))
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != MagicNumber {
		return "", fmt.Errorf("invalid SPIR-V magic: 0x%08X", magic)
	}
	if len(data)%4 != 0 {
		return "", fmt.Errorf("binary size %d is not a multiple of the word size", len(data))
	}

	version := binary.LittleEndian.Uint32(data[4:8])

	var sb strings.Builder
	fmt.Fprintf(&sb, "; SPIR-V\n")
	fmt.Fprintf(&sb, "; Version: %d.%d\n", (version>>16)&0xFF, (version>>8)&0xFF)
	fmt.Fprintf(&sb, "; Generator: 0x%08X\n", binary.LittleEndian.Uint32(data[8:12]))
	fmt.Fprintf(&sb, "; Bound: %d\n", binary.LittleEndian.Uint32(data[12:16]))
	fmt.Fprintf(&sb, "; Schema: %d\n", binary.LittleEndian.Uint32(data[16:20]))
	sb.WriteString("\n")

	// Float type IDs seen so far, so scalar constants of those types
	// can be shown as numbers instead of raw bit patterns.
	floatTypes := make(map[uint32]uint32)

	offset := 20
	for offset < len(data) {
		word := binary.LittleEndian.Uint32(data[offset:])
		opcode := OpCode(word & 0xFFFF)
		wordCount := int(word >> 16)

		if wordCount == 0 || offset+wordCount*4 > len(data) {
			return sb.String(), fmt.Errorf("invalid word count %d at offset 0x%X", wordCount, offset)
		}

		ops := make([]uint32, wordCount-1)
		for i := range ops {
			ops[i] = binary.LittleEndian.Uint32(data[offset+4+i*4:])
		}

		if opcode == OpTypeFloat && len(ops) >= 2 {
			floatTypes[ops[0]] = ops[1]
		}

		writeInstructionText(&sb, opcode, ops, floatTypes)
		offset += wordCount * 4
	}
	return sb.String(), nil
}

func id(n uint32) string {
	return fmt.Sprintf("%%_%d", n)
}

func lookup(m map[uint32]string, v uint32) string {
	if s, ok := m[v]; ok {
		return s
	}
	return fmt.Sprintf("%d", v)
}

// decodeString reads a null-terminated string from operand words
// starting at index start. It returns the string and the number of
// words it occupied.
func decodeString(ops []uint32, start int) (string, int) {
	var sb strings.Builder
	for i := start; i < len(ops); i++ {
		word := ops[i]
		for shift := 0; shift < 32; shift += 8 {
			c := byte(word >> shift)
			if c == 0 {
				return sb.String(), i - start + 1
			}
			sb.WriteByte(c)
		}
	}
	return sb.String(), len(ops) - start
}

//nolint:gocognit,gocyclo,cyclop,funlen,maintidx // switch cases for SPIR-V opcodes
func writeInstructionText(sb *strings.Builder, opcode OpCode, ops []uint32, floatTypes map[uint32]uint32) {
	name := opcodeNames[opcode]
	if name == "" {
		name = fmt.Sprintf("Op%d", opcode)
	}

	switch opcode {
	case OpCapability:
		fmt.Fprintf(sb, "               %s %s\n", name, lookup(capabilityNames, ops[0]))

	case OpExtension:
		str, _ := decodeString(ops, 0)
		fmt.Fprintf(sb, "               %s \"%s\"\n", name, str)

	case OpExtInstImport:
		str, _ := decodeString(ops, 1)
		fmt.Fprintf(sb, "         %s = %s \"%s\"\n", id(ops[0]), name, str)

	case OpExtInst:
		fmt.Fprintf(sb, "         %s = %s %s %s %s", id(ops[1]), name, id(ops[0]), id(ops[2]), lookup(glslStd450Names, ops[3]))
		for i := 4; i < len(ops); i++ {
			fmt.Fprintf(sb, " %s", id(ops[i]))
		}
		sb.WriteString("\n")

	case OpMemoryModel:
		addrModels := map[uint32]string{0: "Logical", 1: "Physical32", 2: "Physical64"}
		memModels := map[uint32]string{0: "Simple", 1: "GLSL450", 2: "OpenCL", 3: "Vulkan"}
		fmt.Fprintf(sb, "               %s %s %s\n", name, lookup(addrModels, ops[0]), lookup(memModels, ops[1]))

	case OpEntryPoint:
		model := lookup(executionModelNames, ops[0])
		str, strWords := decodeString(ops, 2)
		fmt.Fprintf(sb, "               %s %s %s \"%s\"", name, model, id(ops[1]), str)
		for i := 2 + strWords; i < len(ops); i++ {
			fmt.Fprintf(sb, " %s", id(ops[i]))
		}
		sb.WriteString("\n")

	case OpExecutionMode:
		mode := lookup(executionModeNames, ops[1])
		fmt.Fprintf(sb, "               %s %s %s", name, id(ops[0]), mode)
		for i := 2; i < len(ops); i++ {
			fmt.Fprintf(sb, " %d", ops[i])
		}
		sb.WriteString("\n")

	case OpSource:
		lang := lookup(sourceLanguageNames, ops[0])
		fmt.Fprintf(sb, "               %s %s %d", name, lang, ops[1])
		if len(ops) > 2 {
			fmt.Fprintf(sb, " %s", id(ops[2]))
		}
		sb.WriteString("\n")

	case OpSourceExtension:
		str, _ := decodeString(ops, 0)
		fmt.Fprintf(sb, "               %s \"%s\"\n", name, str)

	case OpString:
		str, _ := decodeString(ops, 1)
		fmt.Fprintf(sb, "         %s = %s \"%s\"\n", id(ops[0]), name, str)

	case OpName:
		str, _ := decodeString(ops, 1)
		fmt.Fprintf(sb, "               %s %s \"%s\"\n", name, id(ops[0]), str)

	case OpMemberName:
		str, _ := decodeString(ops, 2)
		fmt.Fprintf(sb, "               %s %s %d \"%s\"\n", name, id(ops[0]), ops[1], str)

	case OpDecorate:
		dec := lookup(decorationNames, ops[1])
		fmt.Fprintf(sb, "               %s %s %s", name, id(ops[0]), dec)
		if Decoration(ops[1]) == DecorationBuiltIn && len(ops) > 2 {
			fmt.Fprintf(sb, " %s", lookup(builtinNames, ops[2]))
		} else {
			for i := 2; i < len(ops); i++ {
				fmt.Fprintf(sb, " %d", ops[i])
			}
		}
		sb.WriteString("\n")

	case OpMemberDecorate:
		dec := lookup(decorationNames, ops[2])
		fmt.Fprintf(sb, "               %s %s %d %s", name, id(ops[0]), ops[1], dec)
		for i := 3; i < len(ops); i++ {
			fmt.Fprintf(sb, " %d", ops[i])
		}
		sb.WriteString("\n")

	case OpTypeVoid, OpTypeBool, OpTypeSampler:
		fmt.Fprintf(sb, "         %s = %s\n", id(ops[0]), name)

	case OpTypeInt:
		fmt.Fprintf(sb, "         %s = %s %d %d\n", id(ops[0]), name, ops[1], ops[2])

	case OpTypeFloat:
		fmt.Fprintf(sb, "         %s = %s %d\n", id(ops[0]), name, ops[1])

	case OpTypeVector, OpTypeMatrix:
		fmt.Fprintf(sb, "         %s = %s %s %d\n", id(ops[0]), name, id(ops[1]), ops[2])

	case OpTypeImage:
		dim := lookup(dimNames, ops[2])
		fmt.Fprintf(sb, "         %s = %s %s %s %d %d %d %d Unknown", id(ops[0]), name, id(ops[1]), dim, ops[3], ops[4], ops[5], ops[6])
		if ops[6] != 1 && len(ops) > 7 {
			fmt.Fprintf(sb, " %d", ops[7])
		}
		sb.WriteString("\n")

	case OpTypeSampledImage:
		fmt.Fprintf(sb, "         %s = %s %s\n", id(ops[0]), name, id(ops[1]))

	case OpTypeArray:
		fmt.Fprintf(sb, "         %s = %s %s %s\n", id(ops[0]), name, id(ops[1]), id(ops[2]))

	case OpTypeStruct:
		fmt.Fprintf(sb, "         %s = %s", id(ops[0]), name)
		for i := 1; i < len(ops); i++ {
			fmt.Fprintf(sb, " %s", id(ops[i]))
		}
		sb.WriteString("\n")

	case OpTypePointer:
		sc := lookup(storageClassNames, ops[1])
		fmt.Fprintf(sb, "         %s = %s %s %s\n", id(ops[0]), name, sc, id(ops[2]))

	case OpTypeFunction:
		fmt.Fprintf(sb, "         %s = %s %s", id(ops[0]), name, id(ops[1]))
		for i := 2; i < len(ops); i++ {
			fmt.Fprintf(sb, " %s", id(ops[i]))
		}
		sb.WriteString("\n")

	case OpConstant:
		if width, ok := floatTypes[ops[0]]; ok && width == 32 && len(ops) == 3 {
			fmt.Fprintf(sb, "         %s = %s %s %g\n", id(ops[1]), name, id(ops[0]), math.Float32frombits(ops[2]))
			return
		}
		fmt.Fprintf(sb, "         %s = %s %s", id(ops[1]), name, id(ops[0]))
		for i := 2; i < len(ops); i++ {
			fmt.Fprintf(sb, " %d", ops[i])
		}
		sb.WriteString("\n")

	case OpConstantComposite:
		fmt.Fprintf(sb, "         %s = %s %s", id(ops[1]), name, id(ops[0]))
		for i := 2; i < len(ops); i++ {
			fmt.Fprintf(sb, " %s", id(ops[i]))
		}
		sb.WriteString("\n")

	case OpFunction:
		controls := map[uint32]string{0: "None", 1: "Inline", 2: "DontInline", 4: "Pure", 8: "Const"}
		fmt.Fprintf(sb, "         %s = %s %s %s %s\n", id(ops[1]), name, id(ops[0]), lookup(controls, ops[2]), id(ops[3]))

	case OpFunctionParameter:
		fmt.Fprintf(sb, "         %s = %s %s\n", id(ops[1]), name, id(ops[0]))

	case OpFunctionEnd, OpReturn:
		fmt.Fprintf(sb, "               %s\n", name)

	case OpVariable:
		sc := lookup(storageClassNames, ops[2])
		fmt.Fprintf(sb, "         %s = %s %s %s", id(ops[1]), name, id(ops[0]), sc)
		if len(ops) > 3 {
			fmt.Fprintf(sb, " %s", id(ops[3]))
		}
		sb.WriteString("\n")

	case OpLoad:
		fmt.Fprintf(sb, "         %s = %s %s %s\n", id(ops[1]), name, id(ops[0]), id(ops[2]))

	case OpStore:
		fmt.Fprintf(sb, "               %s %s %s\n", name, id(ops[0]), id(ops[1]))

	case OpAccessChain:
		fmt.Fprintf(sb, "         %s = %s %s %s", id(ops[1]), name, id(ops[0]), id(ops[2]))
		for i := 3; i < len(ops); i++ {
			fmt.Fprintf(sb, " %s", id(ops[i]))
		}
		sb.WriteString("\n")

	case OpVectorShuffle:
		fmt.Fprintf(sb, "         %s = %s %s %s %s", id(ops[1]), name, id(ops[0]), id(ops[2]), id(ops[3]))
		for i := 4; i < len(ops); i++ {
			fmt.Fprintf(sb, " %d", ops[i])
		}
		sb.WriteString("\n")

	case OpCompositeConstruct:
		fmt.Fprintf(sb, "         %s = %s %s", id(ops[1]), name, id(ops[0]))
		for i := 2; i < len(ops); i++ {
			fmt.Fprintf(sb, " %s", id(ops[i]))
		}
		sb.WriteString("\n")

	case OpCompositeExtract:
		fmt.Fprintf(sb, "         %s = %s %s %s", id(ops[1]), name, id(ops[0]), id(ops[2]))
		for i := 3; i < len(ops); i++ {
			fmt.Fprintf(sb, " %d", ops[i])
		}
		sb.WriteString("\n")

	case OpSampledImage, OpImageSampleImplicitLod:
		fmt.Fprintf(sb, "         %s = %s %s %s %s\n", id(ops[1]), name, id(ops[0]), id(ops[2]), id(ops[3]))

	case OpSelect:
		fmt.Fprintf(sb, "         %s = %s %s %s %s %s\n", id(ops[1]), name, id(ops[0]), id(ops[2]), id(ops[3]), id(ops[4]))

	case OpLabel:
		fmt.Fprintf(sb, "         %s = %s\n", id(ops[0]), name)

	case OpBranch:
		fmt.Fprintf(sb, "               %s %s\n", name, id(ops[0]))

	case OpReturnValue:
		fmt.Fprintf(sb, "               %s %s\n", name, id(ops[0]))

	default:
		writeGenericInstructionText(sb, name, opcode, ops)
	}
}

func writeGenericInstructionText(sb *strings.Builder, name string, opcode OpCode, ops []uint32) {
	sb.WriteString("         ")
	switch {
	case len(ops) >= 2 && opcode >= 109 && opcode <= 200:
		// Conversion, arithmetic and comparison ops: type, result, operands.
		fmt.Fprintf(sb, "%s = %s %s", id(ops[1]), name, id(ops[0]))
		for i := 2; i < len(ops); i++ {
			fmt.Fprintf(sb, " %s", id(ops[i]))
		}
	case len(ops) >= 1:
		sb.WriteString(name)
		for _, op := range ops {
			fmt.Fprintf(sb, " %s", id(op))
		}
	default:
		sb.WriteString(name)
	}
	sb.WriteString("\n")
}
