package gxm

import "strings"

// ProgramType is the shading stage a program was compiled for.
type ProgramType uint8

const (
	VertexProgram ProgramType = iota
	FragmentProgram
)

func (t ProgramType) String() string {
	switch t {
	case VertexProgram:
		return "vertex"
	case FragmentProgram:
		return "fragment"
	default:
		return "unknown"
	}
}

// ParameterCategory classifies a parameter descriptor.
type ParameterCategory uint8

const (
	CategoryAttribute ParameterCategory = iota
	CategoryUniform
	CategorySampler
	CategoryAuxiliarySurface
	CategoryUniformBuffer
)

func (c ParameterCategory) String() string {
	switch c {
	case CategoryAttribute:
		return "attribute"
	case CategoryUniform:
		return "uniform"
	case CategorySampler:
		return "sampler"
	case CategoryAuxiliarySurface:
		return "auxiliary surface"
	case CategoryUniformBuffer:
		return "uniform buffer"
	default:
		return "unknown"
	}
}

// ParameterType is the element type tag of a parameter.
type ParameterType uint8

const (
	TypeF32 ParameterType = iota
	TypeF16
	TypeC10
	TypeU8
	TypeS8
	TypeU16
	TypeS16
	TypeU32
	TypeS32
)

// GenericType is the aggregate shape of a parameter.
type GenericType uint8

const (
	GenericScalar GenericType = iota
	GenericVector
	GenericMatrix
)

// VertexOutput is a bit set of the semantics a vertex program writes.
type VertexOutput uint32

const (
	OutputPosition VertexOutput = 1 << iota
	OutputFog
	OutputColor0
	OutputColor1
	OutputTexCoord0
	OutputTexCoord1
	OutputTexCoord2
	OutputTexCoord3
	OutputTexCoord4
	OutputTexCoord5
	OutputTexCoord6
	OutputTexCoord7
	OutputTexCoord8
	OutputTexCoord9
	OutputPointSize
	OutputClip0
	OutputClip1
	OutputClip2
	OutputClip3
	OutputClip4
	OutputClip5
	OutputClip6
	OutputClip7

	outputLast
)

// FragmentInput is a bit set of the semantics a fragment program
// reads from the previous stage.
type FragmentInput uint32

const (
	InputPosition FragmentInput = 1 << iota
	InputFog
	InputColor0
	InputColor1
	InputTexCoord0
	InputTexCoord1
	InputTexCoord2
	InputTexCoord3
	InputTexCoord4
	InputTexCoord5
	InputTexCoord6
	InputTexCoord7
	InputTexCoord8
	InputTexCoord9
	InputSpriteCoord

	inputLast
)

// Parameter is one entry of a program's descriptor table.
//
// Names use a dotted convention to encode aggregate membership:
// "Light.color" is field "color" of struct "Light". Consecutive
// descriptors sharing a prefix form one aggregate.
type Parameter struct {
	Name           string
	Category       ParameterCategory
	Type           ParameterType
	GenericType    GenericType
	ComponentCount uint32
	ArraySize      uint32
}

// StructName returns the aggregate prefix of a dotted name, or the
// empty string for a plain parameter.
func (p *Parameter) StructName() string {
	if prefix, _, ok := strings.Cut(p.Name, "."); ok {
		return prefix
	}
	return ""
}

// FieldName returns the name with its aggregate prefix removed. For a
// plain parameter it is the name itself.
func (p *Parameter) FieldName() string {
	if _, field, ok := strings.Cut(p.Name, "."); ok {
		return field
	}
	return p.Name
}

// Program is the read-only descriptor of one shader program.
type Program struct {
	Type       ProgramType
	Parameters []Parameter

	// Code is the raw USSE instruction stream.
	Code []byte

	// TempRegCount1 is the temporary register budget declared by the
	// container (the first of its two temp counts).
	TempRegCount1 uint32

	// PrimaryRegCount is the number of primary attribute registers
	// the program was compiled against.
	PrimaryRegCount uint32

	// NativeColor is set when a fragment program writes the color
	// target directly instead of going through fixed-function
	// blending.
	NativeColor bool

	VertexOutputs  VertexOutput
	FragmentInputs FragmentInput
}
