package translate

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/gxp/gxm"
	"github.com/gogpu/gxp/spirv"
)

// newTestBuilder returns a builder with the usual module preamble and
// an open void function, the state CreateParameters expects.
func newTestBuilder(t *testing.T) *spirv.ModuleBuilder {
	t.Helper()
	b := spirv.NewModuleBuilder(spirv.Version1_0, 0x1337<<12)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	void := b.AddTypeVoid()
	b.AddFunction(b.AddTypeFunction(void), void, spirv.FunctionControlNone)
	b.AddLabel()
	return b
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	h := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h), buf
}

func allocate(t *testing.T, program *gxm.Program, logger *slog.Logger) (*spirv.ModuleBuilder, *Parameters) {
	t.Helper()
	b := newTestBuilder(t)
	params, err := CreateParameters(b, program, logger)
	if err != nil {
		t.Fatalf("CreateParameters() error = %v", err)
	}
	return b, params
}

func moduleText(t *testing.T, b *spirv.ModuleBuilder) string {
	t.Helper()
	b.AddReturn()
	b.AddFunctionEnd()
	asm, err := spirv.Disassemble(b.Build())
	if err != nil {
		t.Fatalf("Disassemble() error = %v", err)
	}
	return asm
}

func TestCreateParameters_StructGrouping(t *testing.T) {
	program := &gxm.Program{
		Type:        gxm.FragmentProgram,
		NativeColor: true,
		Parameters: []gxm.Parameter{
			{Name: "Light.color", Category: gxm.CategoryAttribute, Type: gxm.TypeF32, GenericType: gxm.GenericVector, ComponentCount: 4, ArraySize: 1},
			{Name: "Light.intensity", Category: gxm.CategoryAttribute, Type: gxm.TypeF32, GenericType: gxm.GenericScalar, ComponentCount: 1, ArraySize: 1},
			{Name: "weight", Category: gxm.CategoryAttribute, Type: gxm.TypeF32, GenericType: gxm.GenericScalar, ComponentCount: 1, ArraySize: 1},
		},
	}
	b, params := allocate(t, program, discardLogger())

	// One struct record plus the plain attribute that ended it.
	if got := len(params.Ins.Vars()); got != 2 {
		t.Fatalf("Ins has %d records, want 2", got)
	}
	structReg := params.Ins.Vars()[0]
	if structReg.Size != 1 {
		t.Errorf("struct record size = %d, want 1", structReg.Size)
	}
	if structReg.Components != 0 {
		t.Errorf("struct record components = %d, want 0", structReg.Components)
	}

	asm := moduleText(t, b)
	for _, want := range []string{
		`"Light"`,
		`0 "color"`,
		`1 "intensity"`,
		" Block",
		`"weight"`,
		"OpTypeStruct",
	} {
		if !strings.Contains(asm, want) {
			t.Errorf("module does not mention %s:\n%s", want, asm)
		}
	}
}

func TestCreateParameters_UniformStructFieldIsFlattened(t *testing.T) {
	logger, buf := captureLogger()
	program := &gxm.Program{
		Type: gxm.VertexProgram,
		Parameters: []gxm.Parameter{
			{Name: "Material.diffuse", Category: gxm.CategoryUniform, Type: gxm.TypeF32, GenericType: gxm.GenericVector, ComponentCount: 4, ArraySize: 1},
		},
	}
	b, params := allocate(t, program, logger)

	if got := len(params.Uniforms.Vars()); got != 1 {
		t.Fatalf("Uniforms has %d records, want 1", got)
	}
	asm := moduleText(t, b)
	if !strings.Contains(asm, `"diffuse"`) {
		t.Errorf("uniform field not named by its bare field name:\n%s", asm)
	}
	if strings.Contains(asm, "Material") {
		t.Errorf("aggregate name leaked into the module:\n%s", asm)
	}
	if !strings.Contains(buf.String(), "uniform structs not fully supported") {
		t.Errorf("missing warning, log:\n%s", buf.String())
	}
}

func TestCreateParameters_IneligibleStructFieldIsRenamed(t *testing.T) {
	// A vertex-stage attribute is not interface-block eligible, so the
	// dotted name is flattened with underscores.
	program := &gxm.Program{
		Type: gxm.VertexProgram,
		Parameters: []gxm.Parameter{
			{Name: "Inst.pos", Category: gxm.CategoryAttribute, Type: gxm.TypeF32, GenericType: gxm.GenericVector, ComponentCount: 3, ArraySize: 1},
		},
	}
	b, params := allocate(t, program, discardLogger())

	if got := len(params.Ins.Vars()); got != 1 {
		t.Fatalf("Ins has %d records, want 1", got)
	}
	asm := moduleText(t, b)
	if !strings.Contains(asm, `"Inst_pos"`) {
		t.Errorf("flattened name missing:\n%s", asm)
	}
	if strings.Contains(asm, "OpTypeStruct") {
		t.Errorf("unexpected struct type:\n%s", asm)
	}
}

func TestCreateParameters_Arrays(t *testing.T) {
	program := &gxm.Program{
		Type: gxm.VertexProgram,
		Parameters: []gxm.Parameter{
			{Name: "bones", Category: gxm.CategoryUniform, Type: gxm.TypeF32, GenericType: gxm.GenericVector, ComponentCount: 4, ArraySize: 3},
			{Name: "tint", Category: gxm.CategoryUniform, Type: gxm.TypeF32, GenericType: gxm.GenericVector, ComponentCount: 4, ArraySize: 1},
		},
	}
	b, params := allocate(t, program, discardLogger())

	vars := params.Uniforms.Vars()
	if len(vars) != 4 {
		t.Fatalf("Uniforms has %d records, want 4", len(vars))
	}
	wantOffsets := []uint32{0, 4, 8, 12}
	for i, reg := range vars {
		if reg.Offset != wantOffsets[i] {
			t.Errorf("record %d offset = %d, want %d", i, reg.Offset, wantOffsets[i])
		}
		if reg.Size != 4 {
			t.Errorf("record %d size = %d, want 4", i, reg.Size)
		}
	}

	asm := moduleText(t, b)
	for _, want := range []string{`"bones_0"`, `"bones_1"`, `"bones_2"`, `"tint"`} {
		if !strings.Contains(asm, want) {
			t.Errorf("module does not mention %s", want)
		}
	}
	if strings.Contains(asm, `"tint_0"`) {
		t.Error("single-element parameter was given an array suffix")
	}
}

func TestCreateParameters_Sampler(t *testing.T) {
	program := &gxm.Program{
		Type:        gxm.FragmentProgram,
		NativeColor: true,
		Parameters: []gxm.Parameter{
			{Name: "tex", Category: gxm.CategorySampler},
		},
	}
	b, params := allocate(t, program, discardLogger())

	vars := params.Uniforms.Vars()
	if len(vars) != 1 {
		t.Fatalf("Uniforms has %d records, want 1", len(vars))
	}
	if vars[0].Size != 2 {
		t.Errorf("sampler record size = %d, want 2", vars[0].Size)
	}
	if vars[0].Components != 0 {
		t.Errorf("sampler record components = %d, want 0", vars[0].Components)
	}

	asm := moduleText(t, b)
	for _, want := range []string{"OpTypeImage", "OpTypeSampledImage", `"tex"`, "UniformConstant"} {
		if !strings.Contains(asm, want) {
			t.Errorf("module does not mention %s", want)
		}
	}
}

func TestCreateParameters_VertexOutputs(t *testing.T) {
	program := &gxm.Program{
		Type: gxm.VertexProgram,
		VertexOutputs: gxm.OutputPosition | gxm.OutputTexCoord0 |
			gxm.OutputPointSize | gxm.OutputClip1,
	}
	b, params := allocate(t, program, discardLogger())

	vars := params.Outs.Vars()
	if len(vars) != 4 {
		t.Fatalf("Outs has %d records, want 4", len(vars))
	}
	wantSizes := []uint32{4, 2, 1, 4}
	wantOffsets := []uint32{0, 4, 6, 7}
	for i := range vars {
		if vars[i].Size != wantSizes[i] {
			t.Errorf("record %d size = %d, want %d", i, vars[i].Size, wantSizes[i])
		}
		if vars[i].Offset != wantOffsets[i] {
			t.Errorf("record %d offset = %d, want %d", i, vars[i].Offset, wantOffsets[i])
		}
	}
	if vars[2].Components != 1 {
		t.Errorf("point size record components = %d, want 1", vars[2].Components)
	}

	asm := moduleText(t, b)
	for _, want := range []string{
		`"out_Position"`, `"out_TexCoord0"`, `"out_Psize"`, `"out_Clip1"`,
		"BuiltIn Position",
	} {
		if !strings.Contains(asm, want) {
			t.Errorf("module does not mention %s", want)
		}
	}
	if strings.Contains(asm, `"out_Fog"`) {
		t.Error("undeclared semantic out_Fog was synthesized")
	}
}

func TestCreateParameters_FragmentDefaults(t *testing.T) {
	program := &gxm.Program{
		Type:           gxm.FragmentProgram,
		NativeColor:    true,
		TempRegCount1:  2,
		FragmentInputs: gxm.InputPosition | gxm.InputColor0,
	}
	b, params := allocate(t, program, discardLogger())

	ins := params.Ins.Vars()
	if len(ins) != 2 {
		t.Fatalf("Ins has %d records, want 2", len(ins))
	}
	if ins[0].Size != 4 || ins[1].Size != 4 {
		t.Errorf("input record sizes = %d,%d, want 4,4", ins[0].Size, ins[1].Size)
	}

	outs := params.Outs.Vars()
	if len(outs) != 1 {
		t.Fatalf("Outs has %d records, want 1", len(outs))
	}
	if outs[0].Size != 4 {
		t.Errorf("color record size = %d, want 4", outs[0].Size)
	}

	if got := len(params.Temps.Vars()); got != 2 {
		t.Errorf("Temps has %d records, want 2", got)
	}
	if got := params.Internals.Size(); got != 48 {
		t.Errorf("Internals size = %d, want 48", got)
	}

	asm := moduleText(t, b)
	for _, want := range []string{
		`"in_Position"`, `"in_Color0"`, `"out_color"`, "Location",
		`"r0"`, `"r1"`, `"i0"`, `"i2"`,
	} {
		if !strings.Contains(asm, want) {
			t.Errorf("module does not mention %s", want)
		}
	}
}

func TestCreateParameters_BlendPadding(t *testing.T) {
	tests := []struct {
		name         string
		primaryRegs  uint32
		inputs       gxm.FragmentInput
		wantPadding  uint32 // 0 means no padding record
		wantErrorLog bool
	}{
		{name: "none missing", primaryRegs: 0},
		{name: "one missing", primaryRegs: 1, wantPadding: 2},
		{name: "two missing", primaryRegs: 2, wantPadding: 4},
		{name: "after declared inputs", primaryRegs: 3, inputs: gxm.InputTexCoord0, wantPadding: 2},
		{name: "too many missing", primaryRegs: 5, wantErrorLog: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger, buf := captureLogger()
			program := &gxm.Program{
				Type:            gxm.FragmentProgram,
				PrimaryRegCount: tc.primaryRegs,
				FragmentInputs:  tc.inputs,
			}
			_, params := allocate(t, program, logger)

			vars := params.Ins.Vars()
			declared := 0
			if tc.inputs != 0 {
				declared = 1
			}
			if tc.wantPadding == 0 {
				if len(vars) != declared {
					t.Fatalf("Ins has %d records, want %d", len(vars), declared)
				}
			} else {
				if len(vars) != declared+1 {
					t.Fatalf("Ins has %d records, want %d", len(vars), declared+1)
				}
				if pad := vars[len(vars)-1]; pad.Size != tc.wantPadding {
					t.Errorf("padding size = %d, want %d", pad.Size, tc.wantPadding)
				}
			}
			if got := strings.Contains(buf.String(), "missing primary attribute"); got != tc.wantErrorLog {
				t.Errorf("error logged = %v, want %v, log:\n%s", got, tc.wantErrorLog, buf.String())
			}
		})
	}
}

func TestCreateParameters_DescriptorErrors(t *testing.T) {
	tests := []struct {
		name  string
		param gxm.Parameter
		want  string
	}{
		{
			name:  "auxiliary surface with components",
			param: gxm.Parameter{Name: "aux", Category: gxm.CategoryAuxiliarySurface, ComponentCount: 1},
			want:  "auxiliary surface",
		},
		{
			name:  "uniform buffer with components",
			param: gxm.Parameter{Name: "buf", Category: gxm.CategoryUniformBuffer, ComponentCount: 2},
			want:  "uniform buffer",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := newTestBuilder(t)
			program := &gxm.Program{Type: gxm.VertexProgram, Parameters: []gxm.Parameter{tc.param}}
			_, err := CreateParameters(b, program, discardLogger())
			if err == nil {
				t.Fatal("CreateParameters() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateParameters_UnsupportedCategoriesLogCritical(t *testing.T) {
	logger, buf := captureLogger()
	program := &gxm.Program{
		Type: gxm.VertexProgram,
		Parameters: []gxm.Parameter{
			{Name: "aux", Category: gxm.CategoryAuxiliarySurface},
			{Name: "buf", Category: gxm.CategoryUniformBuffer},
			{Name: "junk", Category: gxm.ParameterCategory(9)},
		},
	}
	_, params := allocate(t, program, logger)

	if got := len(params.Uniforms.Vars()); got != 0 {
		t.Errorf("Uniforms has %d records, want 0", got)
	}
	log := buf.String()
	if got := strings.Count(log, "level=ERROR+4"); got != 3 {
		t.Errorf("critical log entries = %d, want 3, log:\n%s", got, log)
	}
	for _, want := range []string{"auxiliary surface", "uniform buffer", "unknown parameter category"} {
		if !strings.Contains(log, want) {
			t.Errorf("log does not mention %q", want)
		}
	}
}

func TestCreateParameters_ElementTypes(t *testing.T) {
	t.Run("c10 falls back to f32", func(t *testing.T) {
		logger, buf := captureLogger()
		program := &gxm.Program{
			Type: gxm.VertexProgram,
			Parameters: []gxm.Parameter{
				{Name: "packed", Category: gxm.CategoryUniform, Type: gxm.TypeC10, GenericType: gxm.GenericVector, ComponentCount: 4, ArraySize: 1},
			},
		}
		b, params := allocate(t, program, logger)
		if got := len(params.Uniforms.Vars()); got != 1 {
			t.Fatalf("Uniforms has %d records, want 1", got)
		}
		if !strings.Contains(buf.String(), "unsupported parameter element type") {
			t.Errorf("missing fallback diagnostic, log:\n%s", buf.String())
		}
		asm := moduleText(t, b)
		if !strings.Contains(asm, "OpTypeFloat 32") {
			t.Error("fallback type is not f32")
		}
	})

	t.Run("integer widths", func(t *testing.T) {
		program := &gxm.Program{
			Type: gxm.VertexProgram,
			Parameters: []gxm.Parameter{
				{Name: "idx", Category: gxm.CategoryUniform, Type: gxm.TypeU8, GenericType: gxm.GenericScalar, ComponentCount: 1, ArraySize: 1},
				{Name: "off", Category: gxm.CategoryUniform, Type: gxm.TypeS16, GenericType: gxm.GenericScalar, ComponentCount: 1, ArraySize: 1},
			},
		}
		b, _ := allocate(t, program, discardLogger())
		asm := moduleText(t, b)
		for _, want := range []string{"OpTypeInt 8 0", "OpTypeInt 16 1", "Int8", "Int16"} {
			if !strings.Contains(asm, want) {
				t.Errorf("module does not mention %s", want)
			}
		}
	})
}

func TestCreateParameters_MatrixHeuristic(t *testing.T) {
	t.Run("square total makes a matrix", func(t *testing.T) {
		program := &gxm.Program{
			Type: gxm.VertexProgram,
			Parameters: []gxm.Parameter{
				{Name: "mvp", Category: gxm.CategoryUniform, Type: gxm.TypeF32, GenericType: gxm.GenericMatrix, ComponentCount: 4, ArraySize: 4},
			},
		}
		b, params := allocate(t, program, discardLogger())
		vars := params.Uniforms.Vars()
		if len(vars) != 4 {
			t.Fatalf("Uniforms has %d records, want 4", len(vars))
		}
		if vars[0].Components != 0 {
			t.Errorf("matrix record components = %d, want 0", vars[0].Components)
		}
		asm := moduleText(t, b)
		if !strings.Contains(asm, "OpTypeMatrix") {
			t.Error("matrix type missing")
		}
	})

	t.Run("uneven total falls back to vectors", func(t *testing.T) {
		program := &gxm.Program{
			Type: gxm.VertexProgram,
			Parameters: []gxm.Parameter{
				{Name: "rows", Category: gxm.CategoryUniform, Type: gxm.TypeF32, GenericType: gxm.GenericMatrix, ComponentCount: 4, ArraySize: 3},
			},
		}
		b, params := allocate(t, program, discardLogger())
		vars := params.Uniforms.Vars()
		if len(vars) != 3 {
			t.Fatalf("Uniforms has %d records, want 3", len(vars))
		}
		if vars[0].Components != 4 {
			t.Errorf("fallback record components = %d, want 4", vars[0].Components)
		}
		asm := moduleText(t, b)
		if strings.Contains(asm, "OpTypeMatrix") {
			t.Error("unexpected matrix type")
		}
	})
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a__b", "a_b"},
		{"a____b", "a_b"},
		{"_x_", "_x_"},
		{"___", "_"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := sanitizeName(tc.in); got != tc.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
