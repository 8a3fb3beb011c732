package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/gxp/gxm"
	"github.com/gogpu/gxp/spirv"
	"github.com/gogpu/gxp/usse"
)

// LevelCritical tags diagnostics for shader constructs the recompiler
// recognizes but cannot express yet. It sits one step above
// slog.LevelError so handlers can separate them from ordinary
// translation noise.
const LevelCritical = slog.LevelError + 4

// structDecl accumulates consecutive descriptor entries that name
// fields of the same aggregate, until a field of a different
// aggregate (or a plain parameter) ends the declaration.
type structDecl struct {
	name           string
	bank           usse.RegisterBank
	interfaceBlock bool
	fieldTypes     []uint32
	fieldNames     []string
}

func (d *structDecl) empty() bool {
	return d.name == ""
}

type allocator struct {
	b       *spirv.ModuleBuilder
	program *gxm.Program
	logger  *slog.Logger
	params  *Parameters
}

// CreateParameters builds one SPIR-V variable per logical register
// range of the program: declared parameters first, then the
// stage-synthesized inputs and outputs, temporaries and internal
// registers. The builder must have an open function so that
// temporaries land in function scope.
//
// Unsupported parameter shapes degrade per entry with a logged
// diagnostic; only descriptor violations that leave the register
// layout meaningless return an error.
func CreateParameters(b *spirv.ModuleBuilder, program *gxm.Program, logger *slog.Logger) (*Parameters, error) {
	a := &allocator{b: b, program: program, logger: logger, params: &Parameters{}}
	var open structDecl

	for i := range program.Parameters {
		param := &program.Parameters[i]
		logger.Debug("shader parameter",
			"name", param.Name,
			"category", param.Category,
			"components", param.ComponentCount,
			"array", param.ArraySize)

		switch param.Category {
		case gxm.CategoryAttribute, gxm.CategoryUniform:
			a.allocateValue(param, &open)
		case gxm.CategorySampler:
			a.createSampler(param)
		case gxm.CategoryAuxiliarySurface:
			if param.ComponentCount != 0 {
				return nil, fmt.Errorf("auxiliary surface parameter %q has %d components, want 0", param.Name, param.ComponentCount)
			}
			a.critical("auxiliary surface parameters not supported", "name", param.Name)
		case gxm.CategoryUniformBuffer:
			if param.ComponentCount != 0 {
				return nil, fmt.Errorf("uniform buffer parameter %q has %d components, want 0", param.Name, param.ComponentCount)
			}
			a.critical("uniform buffer parameters not supported", "name", param.Name)
		default:
			a.critical("unknown parameter category", "name", param.Name, "category", uint32(param.Category))
		}
	}
	a.flushStruct(&open)

	switch program.Type {
	case gxm.VertexProgram:
		a.createVertexOutputs()
	case gxm.FragmentProgram:
		a.createFragmentInputs()
		a.createFragmentOutput()
	}

	for i := uint32(0); i < program.TempRegCount1; i++ {
		a.createVariable(fmt.Sprintf("r%d", i), usse.BankTemp, 4, vecType(a.b, 4), 4)
	}

	// The internal registers are 128 bits wide each; the bank accounts
	// for the full width even though only a vec4 is addressable.
	for i := 0; i < 3; i++ {
		a.createVariable(fmt.Sprintf("i%d", i), usse.BankFPInternal, 16, vecType(a.b, 4), 4)
	}

	if program.Type == gxm.FragmentProgram && !program.NativeColor {
		a.padBlendInputs()
	}

	return a.params, nil
}

// allocateValue handles the attribute and uniform categories, which
// share everything but the destination bank.
func (a *allocator) allocateValue(param *gxm.Parameter, open *structDecl) {
	bank := usse.BankPrimAttr
	if param.Category == gxm.CategoryUniform {
		bank = usse.BankSecAttr
	}

	structName := param.StructName()
	isStructField := structName != ""

	declEnded := (!isStructField && !open.empty()) ||
		(isStructField && !open.empty() && open.name != structName)
	if declEnded {
		a.flushStruct(open)
	}

	typeID, components := a.paramType(param)

	isUniform := bank == usse.BankSecAttr
	isVertexOutput := bank == usse.BankOutput && a.program.Type == gxm.VertexProgram
	isFragmentInput := bank == usse.BankPrimAttr && a.program.Type == gxm.FragmentProgram
	interfaceBlock := isVertexOutput || isFragmentInput

	// Uniform aggregates are flattened to their fields below; only
	// stage interface values keep their aggregate shape.
	if isStructField && isUniform {
		a.logger.Warn("uniform structs not fully supported", "name", param.Name)
	}

	if isStructField && interfaceBlock {
		open.name = structName
		open.bank = bank
		open.interfaceBlock = interfaceBlock
		open.fieldTypes = append(open.fieldTypes, typeID)
		open.fieldNames = append(open.fieldNames, param.FieldName())
		return
	}

	var name string
	if isUniform {
		// Field names keep uniforms addressable without aggregate
		// support, at the cost of possible collisions between a global
		// and an equally named field.
		name = param.FieldName()
	} else {
		name = param.Name
		if isStructField {
			name = strings.ReplaceAll(name, ".", "_")
		}
	}

	for i := uint32(0); i < param.ArraySize; i++ {
		elem := name
		if param.ArraySize != 1 {
			elem = fmt.Sprintf("%s_%d", name, i)
		}
		a.createVariable(elem, bank, param.ComponentCount, typeID, components)
	}
}

// flushStruct closes an open aggregate declaration: it makes the
// struct type, decorates and names it, and allocates a single
// register slot for the whole value.
func (a *allocator) flushStruct(open *structDecl) {
	if open.empty() {
		return
	}

	structType := a.b.AddTypeStruct(open.fieldTypes...)
	a.b.AddName(structType, open.name)
	if open.interfaceBlock {
		a.b.AddDecorate(structType, spirv.DecorationBlock)
	}
	for i, field := range open.fieldNames {
		a.b.AddMemberName(structType, uint32(i), field)
	}

	a.createVariable(open.name, open.bank, 1, structType, 0)
	*open = structDecl{}
}

func (a *allocator) createSampler(param *gxm.Parameter) {
	sampled := a.b.AddTypeFloat(32)
	image := a.b.AddTypeImage(sampled, spirv.Dim2D, false, false, false, 1, spirv.ImageFormatUnknown)
	// Paired image and sampler occupy two registers.
	a.createVariable(param.Name, usse.BankSecAttr, 2, a.b.AddTypeSampledImage(image), 0)
}

// createVariable allocates a variable in the storage class of the
// given bank and records it in the matching bank group. It returns 0
// when the bank has no backing variables.
func (a *allocator) createVariable(name string, bank usse.RegisterBank, size uint32, typeID uint32, components uint32) uint32 {
	name = sanitizeName(name)

	storage, ok := storageClass(bank)
	if !ok {
		a.logger.Warn("unsupported register bank for variable", "bank", bank.String(), "name", name)
		return 0
	}

	id := a.b.AddVariable(storage, typeID, name)
	a.params.BankFor(bank).Push(Var{TypeID: typeID, ID: id, Components: components}, size)
	return id
}

// paramType derives the SPIR-V type of a parameter descriptor along
// with its addressable lane count.
func (a *allocator) paramType(param *gxm.Parameter) (typeID uint32, components uint32) {
	switch param.GenericType {
	case gxm.GenericScalar:
		return a.basicType(param), 1
	case gxm.GenericVector:
		if param.ComponentCount <= 1 {
			return a.basicType(param), 1
		}
		return a.b.AddTypeVector(a.basicType(param), param.ComponentCount), param.ComponentCount
	case gxm.GenericMatrix:
		return a.matrixType(param)
	default:
		return a.b.AddTypeFloat(32), 1
	}
}

// matrixType recovers a square matrix from the flattened component
// and array counts. Shapes that do not divide evenly into a square
// matrix fall back to a plain vector per register range.
func (a *allocator) matrixType(param *gxm.Parameter) (uint32, uint32) {
	base := a.basicType(param)
	side := param.ComponentCount
	total := param.ComponentCount * param.ArraySize
	if side >= 2 && total%(side*side) == 0 {
		return a.b.AddTypeMatrix(a.b.AddTypeVector(base, side), side), 0
	}
	if side <= 1 {
		return base, 1
	}
	return a.b.AddTypeVector(base, side), side
}

func (a *allocator) basicType(param *gxm.Parameter) uint32 {
	switch param.Type {
	case gxm.TypeF16:
		return a.b.AddTypeFloat(32) // TODO: support f16
	case gxm.TypeF32:
		return a.b.AddTypeFloat(32)
	case gxm.TypeU8:
		return a.b.AddTypeInt(8, false)
	case gxm.TypeU16:
		return a.b.AddTypeInt(16, false)
	case gxm.TypeU32:
		return a.b.AddTypeInt(32, false)
	case gxm.TypeS8:
		return a.b.AddTypeInt(8, true)
	case gxm.TypeS16:
		return a.b.AddTypeInt(16, true)
	case gxm.TypeS32:
		return a.b.AddTypeInt(32, true)
	default:
		a.logger.Error("unsupported parameter element type", "name", param.Name, "type", uint32(param.Type))
		return a.b.AddTypeFloat(32)
	}
}

// vecType returns an n-lane f32 vector, degrading to the scalar type
// for single-lane values since SPIR-V has no one-component vectors.
func vecType(b *spirv.ModuleBuilder, n uint32) uint32 {
	f32 := b.AddTypeFloat(32)
	if n <= 1 {
		return f32
	}
	return b.AddTypeVector(f32, n)
}

// semanticProperties describes the synthesized variable of one
// stage-semantic bit.
type semanticProperties struct {
	name       string
	components uint32
}

var vertexOutputProperties = map[gxm.VertexOutput]semanticProperties{
	gxm.OutputPosition:  {"out_Position", 4},
	gxm.OutputFog:       {"out_Fog", 4},
	gxm.OutputColor0:    {"out_Color0", 4},
	gxm.OutputColor1:    {"out_Color1", 4},
	gxm.OutputTexCoord0: {"out_TexCoord0", 2},
	gxm.OutputTexCoord1: {"out_TexCoord1", 2},
	gxm.OutputTexCoord2: {"out_TexCoord2", 2},
	gxm.OutputTexCoord3: {"out_TexCoord3", 2},
	gxm.OutputTexCoord4: {"out_TexCoord4", 2},
	gxm.OutputTexCoord5: {"out_TexCoord5", 2},
	gxm.OutputTexCoord6: {"out_TexCoord6", 2},
	gxm.OutputTexCoord7: {"out_TexCoord7", 2},
	gxm.OutputTexCoord8: {"out_TexCoord8", 2},
	gxm.OutputTexCoord9: {"out_TexCoord9", 2},
	gxm.OutputPointSize: {"out_Psize", 1},
	gxm.OutputClip0:     {"out_Clip0", 4},
	gxm.OutputClip1:     {"out_Clip1", 4},
	gxm.OutputClip2:     {"out_Clip2", 4},
	gxm.OutputClip3:     {"out_Clip3", 4},
	gxm.OutputClip4:     {"out_Clip4", 4},
	gxm.OutputClip5:     {"out_Clip5", 4},
	gxm.OutputClip6:     {"out_Clip6", 4},
	gxm.OutputClip7:     {"out_Clip7", 4},
}

var fragmentInputProperties = map[gxm.FragmentInput]semanticProperties{
	gxm.InputPosition:    {"in_Position", 4},
	gxm.InputFog:         {"in_Fog", 4},
	gxm.InputColor0:      {"in_Color0", 4},
	gxm.InputColor1:      {"in_Color1", 4},
	gxm.InputTexCoord0:   {"in_TexCoord0", 2},
	gxm.InputTexCoord1:   {"in_TexCoord1", 2},
	gxm.InputTexCoord2:   {"in_TexCoord2", 2},
	gxm.InputTexCoord3:   {"in_TexCoord3", 2},
	gxm.InputTexCoord4:   {"in_TexCoord4", 2},
	gxm.InputTexCoord5:   {"in_TexCoord5", 2},
	gxm.InputTexCoord6:   {"in_TexCoord6", 2},
	gxm.InputTexCoord7:   {"in_TexCoord7", 2},
	gxm.InputTexCoord8:   {"in_TexCoord8", 2},
	gxm.InputTexCoord9:   {"in_TexCoord9", 2},
	gxm.InputSpriteCoord: {"in_SpriteCoord", 2},
}

// createVertexOutputs allocates output registers for every semantic
// bit the descriptor declares, in ascending bit order so the register
// offsets match the hardware layout.
func (a *allocator) createVertexOutputs() {
	for bit := gxm.OutputPosition; bit <= gxm.OutputClip7; bit <<= 1 {
		if a.program.VertexOutputs&bit == 0 {
			continue
		}
		props := vertexOutputProperties[bit]
		id := a.createVariable(props.name, usse.BankOutput, props.components, vecType(a.b, props.components), props.components)
		if bit == gxm.OutputPosition {
			a.b.AddDecorate(id, spirv.DecorationBuiltIn, uint32(spirv.BuiltInPosition))
		}
	}
}

// createFragmentInputs mirrors createVertexOutputs for the varyings a
// fragment program reads through its primary attribute bank.
func (a *allocator) createFragmentInputs() {
	for bit := gxm.InputPosition; bit <= gxm.InputSpriteCoord; bit <<= 1 {
		if a.program.FragmentInputs&bit == 0 {
			continue
		}
		props := fragmentInputProperties[bit]
		a.createVariable(props.name, usse.BankPrimAttr, props.components, vecType(a.b, props.components), props.components)
	}
}

func (a *allocator) createFragmentOutput() {
	id := a.createVariable("out_color", usse.BankOutput, 4, vecType(a.b, 4), 4)
	a.b.AddDecorate(id, spirv.DecorationLocation, 0)
}

// padBlendInputs fills the primary attribute bank up to the declared
// register count for fragment programs without native color output,
// where the color surface is fed back through the leading registers.
func (a *allocator) padBlendInputs() {
	missing := int64(a.program.PrimaryRegCount) - int64(a.params.Ins.Size())
	if missing <= 0 {
		return
	}
	if missing > 2 {
		a.logger.Error("too many missing primary attribute registers to pad", "missing", missing)
		return
	}
	// Doubled while f16 packing is unsupported.
	n := uint32(missing) * 2
	a.createVariable("pa0_blend", usse.BankPrimAttr, n, vecType(a.b, n), n)
}

func (a *allocator) critical(msg string, args ...any) {
	a.logger.Log(context.Background(), LevelCritical, msg, args...)
}

// storageClass maps a register bank to the storage class of its
// variables. ok is false for banks that never have backing variables.
func storageClass(bank usse.RegisterBank) (storage spirv.StorageClass, ok bool) {
	switch bank {
	case usse.BankTemp:
		return spirv.StorageClassFunction, true
	case usse.BankPrimAttr:
		return spirv.StorageClassInput, true
	case usse.BankOutput:
		return spirv.StorageClassOutput, true
	case usse.BankSecAttr:
		return spirv.StorageClassUniformConstant, true
	case usse.BankFPInternal:
		return spirv.StorageClassPrivate, true
	default:
		return 0, false
	}
}

// sanitizeName collapses the runs of underscores left over from
// flattening dotted aggregate names.
func sanitizeName(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	var prev rune
	for _, r := range name {
		if r == '_' && prev == '_' {
			continue
		}
		sb.WriteRune(r)
		prev = r
	}
	return sb.String()
}
