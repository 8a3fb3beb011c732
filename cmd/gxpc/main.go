// Command gxpc is the GXM shader recompiler CLI.
//
// Usage:
//
//	gxpc [options] <input.json>
//
// The input is a JSON program descriptor with the USSE instruction
// stream hex-encoded:
//
//	{
//	    "type": "fragment",
//	    "nativeColor": true,
//	    "fragmentInputs": 4,
//	    "parameters": [{"name": "tex", "category": "sampler"}],
//	    "code": "00201a1000f205020000000000000000"
//	}
//
// Examples:
//
//	gxpc shader.json                     # GLSL to stdout
//	gxpc -spirv -o shader.spv shader.json
//	gxpc -disasm shader.json             # USSE disassembly only
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/gxp"
	"github.com/gogpu/gxp/gxm"
)

var (
	output    = flag.String("o", "", "output file (default: stdout)")
	spirvMode = flag.Bool("spirv", false, "emit a SPIR-V binary instead of GLSL")
	disasm    = flag.Bool("disasm", false, "print the USSE disassembly and exit")
	debug     = flag.Bool("debug", false, "log the intermediate dumps")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}
	inputPath := args[0]

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	program, err := parseDescriptor(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing descriptor: %v\n", err)
		os.Exit(1)
	}

	var out []byte
	if *disasm {
		asm, err := gxp.DisassembleUSSE(program)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Disassembly error: %v\n", err)
			os.Exit(1)
		}
		out = []byte(asm)
	} else {
		out, err = compile(program)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
			os.Exit(1)
		}
	}

	if *output != "" {
		if err := os.WriteFile(*output, out, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Successfully compiled %s to %s (%d bytes)\n", inputPath, *output, len(out))
	} else {
		if _, err := os.Stdout.Write(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
	}
}

func compile(program *gxm.Program) ([]byte, error) {
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	opts := gxp.DefaultOptions()
	opts.Debug = *debug
	opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Programs are named after their instruction bytes, the way a
	// shader cache would key them.
	sum := sha256.Sum256(program.Code)
	hash := hex.EncodeToString(sum[:8])

	if *spirvMode {
		return gxp.CompileSPIRVWithOptions(program, hash, opts)
	}
	source, err := gxp.CompileGLSLWithOptions(program, hash, opts)
	if err != nil {
		return nil, err
	}
	return []byte(source), nil
}

// programJSON is the on-disk descriptor shape: gxm.Program with the
// enums spelled out by name and the instruction stream hex-encoded.
// The semantic bit sets stay numeric, matching the container fields
// they were dumped from.
type programJSON struct {
	Type            string          `json:"type"`
	Code            string          `json:"code"`
	TempRegCount    uint32          `json:"tempRegCount"`
	PrimaryRegCount uint32          `json:"primaryRegCount"`
	NativeColor     bool            `json:"nativeColor"`
	VertexOutputs   uint32          `json:"vertexOutputs"`
	FragmentInputs  uint32          `json:"fragmentInputs"`
	Parameters      []parameterJSON `json:"parameters"`
}

type parameterJSON struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	Type           string `json:"type"`
	GenericType    string `json:"genericType"`
	ComponentCount uint32 `json:"componentCount"`
	ArraySize      uint32 `json:"arraySize"`
}

var stageNames = map[string]gxm.ProgramType{
	"vertex":   gxm.VertexProgram,
	"fragment": gxm.FragmentProgram,
}

var categoryNames = map[string]gxm.ParameterCategory{
	"attribute":         gxm.CategoryAttribute,
	"uniform":           gxm.CategoryUniform,
	"sampler":           gxm.CategorySampler,
	"auxiliary surface": gxm.CategoryAuxiliarySurface,
	"uniform buffer":    gxm.CategoryUniformBuffer,
}

var typeNames = map[string]gxm.ParameterType{
	"f32": gxm.TypeF32, "f16": gxm.TypeF16, "c10": gxm.TypeC10,
	"u8": gxm.TypeU8, "s8": gxm.TypeS8, "u16": gxm.TypeU16,
	"s16": gxm.TypeS16, "u32": gxm.TypeU32, "s32": gxm.TypeS32,
}

var genericNames = map[string]gxm.GenericType{
	"scalar": gxm.GenericScalar,
	"vector": gxm.GenericVector,
	"matrix": gxm.GenericMatrix,
}

func parseDescriptor(data []byte) (*gxm.Program, error) {
	var desc programJSON
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, err
	}

	stage, ok := stageNames[desc.Type]
	if !ok {
		return nil, fmt.Errorf("unknown program type %q", desc.Type)
	}

	code, err := hex.DecodeString(desc.Code)
	if err != nil {
		return nil, fmt.Errorf("code is not valid hex: %w", err)
	}

	program := &gxm.Program{
		Type:            stage,
		Code:            code,
		TempRegCount1:   desc.TempRegCount,
		PrimaryRegCount: desc.PrimaryRegCount,
		NativeColor:     desc.NativeColor,
		VertexOutputs:   gxm.VertexOutput(desc.VertexOutputs),
		FragmentInputs:  gxm.FragmentInput(desc.FragmentInputs),
	}
	for _, p := range desc.Parameters {
		param, err := parseParameter(p)
		if err != nil {
			return nil, err
		}
		program.Parameters = append(program.Parameters, param)
	}
	return program, nil
}

func parseParameter(p parameterJSON) (gxm.Parameter, error) {
	category, ok := categoryNames[p.Category]
	if !ok {
		return gxm.Parameter{}, fmt.Errorf("parameter %q has unknown category %q", p.Name, p.Category)
	}

	elemType := gxm.TypeF32
	if p.Type != "" {
		if elemType, ok = typeNames[p.Type]; !ok {
			return gxm.Parameter{}, fmt.Errorf("parameter %q has unknown type %q", p.Name, p.Type)
		}
	}

	generic := gxm.GenericScalar
	if p.ComponentCount > 1 {
		generic = gxm.GenericVector
	}
	if p.GenericType != "" {
		if generic, ok = genericNames[p.GenericType]; !ok {
			return gxm.Parameter{}, fmt.Errorf("parameter %q has unknown generic type %q", p.Name, p.GenericType)
		}
	}

	arraySize := p.ArraySize
	if arraySize == 0 {
		arraySize = 1
	}

	return gxm.Parameter{
		Name:           p.Name,
		Category:       category,
		Type:           elemType,
		GenericType:    generic,
		ComponentCount: p.ComponentCount,
		ArraySize:      arraySize,
	}, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: gxpc [options] <input.json>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  gxpc shader.json                    GLSL to stdout\n")
	fmt.Fprintf(os.Stderr, "  gxpc -spirv -o shader.spv shader.json  SPIR-V to file\n")
	fmt.Fprintf(os.Stderr, "  gxpc -disasm shader.json            USSE disassembly\n")
}
