// Package gxp provides a pure Go shader recompiler for PlayStation
// Vita GXM programs.
//
// gxp translates the USSE instruction stream of a GXM program
// descriptor to formats desktop GPU APIs accept:
//   - SPIR-V, the binary format Vulkan consumes
//   - GLSL, OpenGL Shading Language 4.10 core
//
// The package provides a simple, high-level API for shader
// recompilation as well as lower-level access to the individual
// stages through the gxm, usse, translate, spirv and glsl packages.
//
// Example usage (GLSL):
//
//	source, err := gxp.CompileGLSL(program, hash)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The hash names the program in log records and in the OpSource debug
// record of the generated module; callers typically pass a digest of
// the descriptor bytes.
//
// For SPIR-V output, use CompileSPIRV. Both ends of the pipeline can
// be rendered as text for inspection:
//
//	asm, err := gxp.DisassembleUSSE(program)
//	dis, err := gxp.DisassembleSPIRV(binary)
package gxp

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gxp/glsl"
	"github.com/gogpu/gxp/gxm"
	"github.com/gogpu/gxp/spirv"
	"github.com/gogpu/gxp/translate"
	"github.com/gogpu/gxp/usse"
)

// generator identifies the recompiler in the SPIR-V module header.
const generator = 0x1337 << 12

// LevelCritical tags diagnostics for shader constructs the recompiler
// recognizes but cannot express yet. Handlers that split these from
// ordinary errors can match on it directly.
const LevelCritical = translate.LevelCritical

// CompileOptions configures shader recompilation.
type CompileOptions struct {
	// SPIRVVersion is the target SPIR-V version (default: 1.0).
	SPIRVVersion spirv.Version

	// Debug logs the USSE disassembly of the source program, the
	// SPIR-V disassembly of the result and, when GLSL is requested,
	// the generated source.
	Debug bool

	// Logger receives translation diagnostics. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns sensible default options.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		SPIRVVersion: spirv.Version1_0,
	}
}

func (o *CompileOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// CompileSPIRV recompiles a program descriptor to a SPIR-V binary
// using default options.
//
// This is the simplest way to target Vulkan. For more control, use
// CompileSPIRVWithOptions.
func CompileSPIRV(program *gxm.Program, hash string) ([]byte, error) {
	return CompileSPIRVWithOptions(program, hash, DefaultOptions())
}

// CompileSPIRVWithOptions recompiles a program descriptor to a SPIR-V
// binary with custom options.
//
// The recompilation pipeline is:
//  1. Allocate one module variable per logical register range
//  2. Decode the USSE instruction stream
//  3. Translate each instruction into the entry function
//  4. Serialize the module
//
// Serialization problems noticed by the module builder are logged and
// do not discard the binary.
func CompileSPIRVWithOptions(program *gxm.Program, hash string, opts CompileOptions) ([]byte, error) {
	log := opts.logger()
	if opts.SPIRVVersion == (spirv.Version{}) {
		opts.SPIRVVersion = spirv.Version1_0
	}

	model, entryName := entryPoint(program.Type, hash, log)

	if opts.Debug {
		if asm, err := usse.Disassemble(program.Code); err == nil {
			log.Info("recompiling shader", "hash", hash, "usse", "\n"+asm)
		}
	}

	b := spirv.NewModuleBuilder(opts.SPIRVVersion, generator)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	b.SetSourceFile(hash)
	b.AddSourceExtension("gxp")

	// The entry function opens before parameter allocation so that
	// temporaries land in function scope.
	voidType := b.AddTypeVoid()
	funcType := b.AddTypeFunction(voidType)
	funcID := b.AddFunction(funcType, voidType, spirv.FunctionControlNone)
	b.AddLabel()

	params, err := translate.CreateParameters(b, program, log)
	if err != nil {
		return nil, fmt.Errorf("parameter allocation error: %w", err)
	}

	if err := translate.Translate(b, params, program, log); err != nil {
		return nil, fmt.Errorf("translation error: %w", err)
	}

	b.AddReturn()
	b.AddFunctionEnd()

	if model == spirv.ExecutionModelFragment {
		b.AddExecutionMode(funcID, spirv.ExecutionModeOriginLowerLeft)
	}
	b.AddEntryPoint(model, funcID, entryName, interfaceVars(params)...)

	binary := b.Build()
	for _, d := range b.Diagnostics() {
		log.Error("module builder diagnostic", "hash", hash, "detail", d)
	}

	if opts.Debug {
		if asm, err := spirv.Disassemble(binary); err == nil {
			log.Info("recompiled shader", "hash", hash, "spirv", "\n"+asm)
		}
	}

	return binary, nil
}

// CompileGLSL recompiles a program descriptor to GLSL 4.10 core
// source using default options.
func CompileGLSL(program *gxm.Program, hash string) (string, error) {
	return CompileGLSLWithOptions(program, hash, DefaultOptions())
}

// CompileGLSLWithOptions recompiles a program descriptor to GLSL
// source with custom options. The GLSL stage consumes the serialized
// SPIR-V binary, so both output formats stay in lockstep.
func CompileGLSLWithOptions(program *gxm.Program, hash string, opts CompileOptions) (string, error) {
	binary, err := CompileSPIRVWithOptions(program, hash, opts)
	if err != nil {
		return "", err
	}
	source, _, err := glsl.Compile(binary, glsl.DefaultOptions())
	if err != nil {
		return "", fmt.Errorf("GLSL generation error: %w", err)
	}
	if opts.Debug {
		opts.logger().Info("generated GLSL", "hash", hash, "glsl", "\n"+source)
	}
	return source, nil
}

// DisassembleUSSE renders the program's instruction stream as USSE
// assembly text.
func DisassembleUSSE(program *gxm.Program) (string, error) {
	return usse.Disassemble(program.Code)
}

// DisassembleSPIRV renders a recompiled binary as SPIR-V assembly
// text.
func DisassembleSPIRV(binary []byte) (string, error) {
	return spirv.Disassemble(binary)
}

// entryPoint maps the program stage to its execution model and entry
// point name. Unknown stages log an error and compile as vertex
// programs.
func entryPoint(t gxm.ProgramType, hash string, log *slog.Logger) (spirv.ExecutionModel, string) {
	switch t {
	case gxm.VertexProgram:
		return spirv.ExecutionModelVertex, "main_vs"
	case gxm.FragmentProgram:
		return spirv.ExecutionModelFragment, "main_fs"
	default:
		log.Error("unknown shader stage", "hash", hash, "type", uint8(t))
		return spirv.ExecutionModelVertex, "main_vs"
	}
}

// interfaceVars collects the variables the entry point declaration
// must name: the stage inputs and outputs, in allocation order.
func interfaceVars(params *translate.Parameters) []uint32 {
	ins := params.Ins.Vars()
	outs := params.Outs.Vars()
	ids := make([]uint32, 0, len(ins)+len(outs))
	for _, v := range ins {
		ids = append(ids, v.ID)
	}
	for _, v := range outs {
		ids = append(ids, v.ID)
	}
	return ids
}
