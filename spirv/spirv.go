package spirv

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_4 = Version{1, 4}
	Version1_5 = Version{1, 5}
	Version1_6 = Version{1, 6}
)

// MagicNumber is the first word of every SPIR-V module.
const MagicNumber = 0x07230203

// OpCode represents a SPIR-V opcode.
type OpCode uint16

const (
	OpNop                    OpCode = 0
	OpSource                 OpCode = 3
	OpSourceExtension        OpCode = 4
	OpName                   OpCode = 5
	OpMemberName             OpCode = 6
	OpString                 OpCode = 7
	OpLine                   OpCode = 8
	OpExtension              OpCode = 10
	OpExtInstImport          OpCode = 11
	OpExtInst                OpCode = 12
	OpMemoryModel            OpCode = 14
	OpEntryPoint             OpCode = 15
	OpExecutionMode          OpCode = 16
	OpCapability             OpCode = 17
	OpTypeVoid               OpCode = 19
	OpTypeBool               OpCode = 20
	OpTypeInt                OpCode = 21
	OpTypeFloat              OpCode = 22
	OpTypeVector             OpCode = 23
	OpTypeMatrix             OpCode = 24
	OpTypeImage              OpCode = 25
	OpTypeSampler            OpCode = 26
	OpTypeSampledImage       OpCode = 27
	OpTypeArray              OpCode = 28
	OpTypeStruct             OpCode = 30
	OpTypePointer            OpCode = 32
	OpTypeFunction           OpCode = 33
	OpConstantTrue           OpCode = 41
	OpConstantFalse          OpCode = 42
	OpConstant               OpCode = 43
	OpConstantComposite      OpCode = 44
	OpFunction               OpCode = 54
	OpFunctionParameter      OpCode = 55
	OpFunctionEnd            OpCode = 56
	OpVariable               OpCode = 59
	OpLoad                   OpCode = 61
	OpStore                  OpCode = 62
	OpAccessChain            OpCode = 65
	OpDecorate               OpCode = 71
	OpMemberDecorate         OpCode = 72
	OpVectorShuffle          OpCode = 79
	OpCompositeConstruct     OpCode = 80
	OpCompositeExtract       OpCode = 81
	OpSampledImage           OpCode = 86
	OpImageSampleImplicitLod OpCode = 87
	OpFNegate                OpCode = 127
	OpFAdd                   OpCode = 129
	OpFSub                   OpCode = 131
	OpFMul                   OpCode = 133
	OpFDiv                   OpCode = 136
	OpDot                    OpCode = 148
	OpSelect                 OpCode = 169
	OpFOrdEqual              OpCode = 180
	OpFOrdNotEqual           OpCode = 182
	OpLabel                  OpCode = 248
	OpBranch                 OpCode = 249
	OpReturn                 OpCode = 253
	OpReturnValue            OpCode = 254
)

// Capability represents a SPIR-V capability.
type Capability uint32

const (
	CapabilityMatrix Capability = 0
	CapabilityShader Capability = 1
	CapabilityInt16  Capability = 22
	CapabilityInt8   Capability = 39
)

// AddressingModel selects the pointer addressing scheme.
type AddressingModel uint32

const (
	AddressingModelLogical    AddressingModel = 0
	AddressingModelPhysical32 AddressingModel = 1
	AddressingModelPhysical64 AddressingModel = 2
)

// MemoryModel selects the memory consistency model.
type MemoryModel uint32

const (
	MemoryModelSimple  MemoryModel = 0
	MemoryModelGLSL450 MemoryModel = 1
	MemoryModelOpenCL  MemoryModel = 2
)

// ExecutionModel identifies a pipeline stage.
type ExecutionModel uint32

const (
	ExecutionModelVertex    ExecutionModel = 0
	ExecutionModelFragment  ExecutionModel = 4
	ExecutionModelGLCompute ExecutionModel = 5
)

// ExecutionMode declares stage-specific entry point behavior.
type ExecutionMode uint32

const (
	ExecutionModeOriginUpperLeft ExecutionMode = 7
	ExecutionModeOriginLowerLeft ExecutionMode = 8
	ExecutionModeLocalSize       ExecutionMode = 17
)

// StorageClass identifies where a variable lives.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
)

// Decoration represents a SPIR-V decoration.
type Decoration uint32

const (
	DecorationBlock       Decoration = 2
	DecorationRowMajor    Decoration = 4
	DecorationColMajor    Decoration = 5
	DecorationArrayStride Decoration = 6
	DecorationBuiltIn     Decoration = 11
	DecorationLocation    Decoration = 30
	DecorationBinding     Decoration = 33
	DecorationOffset      Decoration = 35
)

// BuiltIn identifies a pipeline built-in variable.
type BuiltIn uint32

const (
	BuiltInPosition     BuiltIn = 0
	BuiltInPointSize    BuiltIn = 1
	BuiltInClipDistance BuiltIn = 3
	BuiltInFragCoord    BuiltIn = 15
	BuiltInFragDepth    BuiltIn = 22
)

// Dim is an image dimensionality.
type Dim uint32

const (
	Dim1D   Dim = 0
	Dim2D   Dim = 1
	Dim3D   Dim = 2
	DimCube Dim = 3
)

// ImageFormat is a declared image texel format.
type ImageFormat uint32

// ImageFormatUnknown leaves the texel format to the sampler.
const ImageFormatUnknown ImageFormat = 0

// SourceLanguage tags the OpSource debug instruction.
type SourceLanguage uint32

const (
	SourceLanguageUnknown SourceLanguage = 0
	SourceLanguageESSL    SourceLanguage = 1
	SourceLanguageGLSL    SourceLanguage = 2
)

// FunctionControl carries OpFunction optimization hints.
type FunctionControl uint32

const (
	FunctionControlNone   FunctionControl = 0
	FunctionControlInline FunctionControl = 1
)

// GLSLstd450 identifies an instruction in the GLSL.std.450 extended set.
type GLSLstd450 uint32

const (
	GLSLstd450Fract       GLSLstd450 = 10
	GLSLstd450Exp2        GLSLstd450 = 29
	GLSLstd450Log2        GLSLstd450 = 30
	GLSLstd450Sqrt        GLSLstd450 = 31
	GLSLstd450InverseSqrt GLSLstd450 = 32
	GLSLstd450FMin        GLSLstd450 = 37
	GLSLstd450FMax        GLSLstd450 = 40
	GLSLstd450FClamp      GLSLstd450 = 43
	GLSLstd450Fma         GLSLstd450 = 50
)
