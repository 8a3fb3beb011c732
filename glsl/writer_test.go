// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"
	"testing"

	"github.com/gogpu/gxp/spirv"
)

// buildShader assembles a minimal single-function module around the
// instructions added by build.
func buildShader(t *testing.T, model spirv.ExecutionModel, build func(b *spirv.ModuleBuilder)) []byte {
	t.Helper()
	b := spirv.NewModuleBuilder(spirv.Version1_0, 0)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	voidType := b.AddTypeVoid()
	funcType := b.AddTypeFunction(voidType)
	funcID := b.AddFunction(funcType, voidType, spirv.FunctionControlNone)
	b.AddLabel()
	if build != nil {
		build(b)
	}
	b.AddReturn()
	b.AddFunctionEnd()

	name := "main_fs"
	if model == spirv.ExecutionModelVertex {
		name = "main_vs"
	}
	b.AddEntryPoint(model, funcID, name)
	return b.Build()
}

func compileShader(t *testing.T, model spirv.ExecutionModel, build func(b *spirv.ModuleBuilder)) string {
	t.Helper()
	source, _, err := Compile(buildShader(t, model, build), DefaultOptions())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return source
}

func hasLine(source, line string) bool {
	for _, l := range strings.Split(source, "\n") {
		if l == line {
			return true
		}
	}
	return false
}

func vec4Type(b *spirv.ModuleBuilder) uint32 {
	return b.AddTypeVector(b.AddTypeFloat(32), 4)
}

func TestCompileHeader(t *testing.T) {
	binary := buildShader(t, spirv.ExecutionModelFragment, nil)

	source, info, err := Compile(binary, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	lines := strings.Split(source, "\n")
	if lines[0] != "#version 410 core" {
		t.Errorf("first line = %q, want %q", lines[0], "#version 410 core")
	}
	if lines[1] != "#extension GL_ARB_shading_language_420pack : require" {
		t.Errorf("second line = %q, want the 420pack extension", lines[1])
	}
	if !hasLine(source, "void main() {") || !hasLine(source, "}") {
		t.Errorf("output missing main function:\n%s", source)
	}

	if got := info.EntryPointNames["main_fs"]; got != "main" {
		t.Errorf("EntryPointNames[main_fs] = %q, want %q", got, "main")
	}
	if info.RequiredVersion != Version410 {
		t.Errorf("RequiredVersion = %+v, want %+v", info.RequiredVersion, Version410)
	}
	if len(info.UsedExtensions) != 1 || info.UsedExtensions[0] != "GL_ARB_shading_language_420pack" {
		t.Errorf("UsedExtensions = %v, want the 420pack extension", info.UsedExtensions)
	}

	t.Run("extension not needed", func(t *testing.T) {
		source, info, err := Compile(binary, Options{LangVersion: Version420, Enable420Pack: true})
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		if strings.Contains(source, "#extension") {
			t.Errorf("output has an extension directive at version 420:\n%s", source)
		}
		if len(info.UsedExtensions) != 0 {
			t.Errorf("UsedExtensions = %v, want none", info.UsedExtensions)
		}
	})

	t.Run("extension disabled", func(t *testing.T) {
		source, _, err := Compile(binary, Options{LangVersion: Version410})
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		if strings.Contains(source, "#extension") {
			t.Errorf("output has an extension directive when disabled:\n%s", source)
		}
	})
}

func TestCompileDeclarations(t *testing.T) {
	source := compileShader(t, spirv.ExecutionModelFragment, func(b *spirv.ModuleBuilder) {
		f32 := b.AddTypeFloat(32)
		vec4 := vec4Type(b)

		b.AddVariable(spirv.StorageClassInput, vec4, "in_Color0")
		b.AddVariable(spirv.StorageClassUniformConstant, f32, "scale")

		image := b.AddTypeImage(f32, spirv.Dim2D, false, false, false, 1, spirv.ImageFormatUnknown)
		b.AddVariable(spirv.StorageClassUniformConstant, b.AddTypeSampledImage(image), "tex")

		b.AddVariable(spirv.StorageClassPrivate, vec4, "i0")

		out := b.AddVariable(spirv.StorageClassOutput, vec4, "out_color")
		b.AddDecorate(out, spirv.DecorationLocation, 0)

		b.AddVariable(spirv.StorageClassFunction, vec4, "r0")
	})

	for _, want := range []string{
		"in vec4 in_Color0;",
		"uniform float scale;",
		"uniform sampler2D tex;",
		"vec4 i0;",
		"layout(location = 0) out vec4 out_color;",
		"    vec4 r0;",
	} {
		if !hasLine(source, want) {
			t.Errorf("output missing line %q:\n%s", want, source)
		}
	}
}

func TestCompileBuiltinPosition(t *testing.T) {
	source := compileShader(t, spirv.ExecutionModelVertex, func(b *spirv.ModuleBuilder) {
		f32 := b.AddTypeFloat(32)
		vec4 := vec4Type(b)

		pos := b.AddVariable(spirv.StorageClassOutput, vec4, "out_Position")
		b.AddDecorate(pos, spirv.DecorationBuiltIn, uint32(spirv.BuiltInPosition))

		one := b.AddConstantFloat32(f32, 1)
		b.AddStore(pos, b.AddConstantComposite(vec4, one, one, one, one))
	})

	if !hasLine(source, "    gl_Position = vec4(1.0, 1.0, 1.0, 1.0);") {
		t.Errorf("output missing gl_Position store:\n%s", source)
	}
	if strings.Contains(source, "out_Position") {
		t.Errorf("built-in variable leaked a declaration:\n%s", source)
	}
}

func TestCompileInterfaceBlock(t *testing.T) {
	source := compileShader(t, spirv.ExecutionModelFragment, func(b *spirv.ModuleBuilder) {
		f32 := b.AddTypeFloat(32)
		vec4 := vec4Type(b)

		structType := b.AddTypeStruct(vec4, f32)
		b.AddName(structType, "Light")
		b.AddDecorate(structType, spirv.DecorationBlock)
		b.AddMemberName(structType, 0, "color")
		b.AddMemberName(structType, 1, "intensity")
		b.AddVariable(spirv.StorageClassInput, structType, "Light")
	})

	for _, want := range []string{
		"in Light {",
		"    vec4 color;",
		"    float intensity;",
		"} Light_1;",
	} {
		if !hasLine(source, want) {
			t.Errorf("output missing line %q:\n%s", want, source)
		}
	}
}

func TestCompileExpressions(t *testing.T) {
	t.Run("assign", func(t *testing.T) {
		source := compileShader(t, spirv.ExecutionModelFragment, func(b *spirv.ModuleBuilder) {
			vec4 := vec4Type(b)
			in := b.AddVariable(spirv.StorageClassInput, vec4, "in_Color0")
			out := b.AddVariable(spirv.StorageClassOutput, vec4, "out_color")
			b.AddStore(out, b.AddLoad(vec4, in))
		})
		if !hasLine(source, "    out_color = in_Color0;") {
			t.Errorf("output missing assignment:\n%s", source)
		}
	})

	t.Run("constant splat", func(t *testing.T) {
		source := compileShader(t, spirv.ExecutionModelFragment, func(b *spirv.ModuleBuilder) {
			f32 := b.AddTypeFloat(32)
			vec4 := vec4Type(b)
			r0 := b.AddVariable(spirv.StorageClassFunction, vec4, "r0")
			half := b.AddConstantFloat32(f32, 0.5)
			b.AddStore(r0, b.AddConstantComposite(vec4, half, half, half, half))
		})
		if !hasLine(source, "    r0 = vec4(0.5, 0.5, 0.5, 0.5);") {
			t.Errorf("output missing constant store:\n%s", source)
		}
	})

	t.Run("add", func(t *testing.T) {
		source := compileShader(t, spirv.ExecutionModelFragment, func(b *spirv.ModuleBuilder) {
			vec4 := vec4Type(b)
			a := b.AddVariable(spirv.StorageClassInput, vec4, "in_a")
			c := b.AddVariable(spirv.StorageClassInput, vec4, "in_b")
			out := b.AddVariable(spirv.StorageClassOutput, vec4, "out_color")
			sum := b.AddBinaryOp(spirv.OpFAdd, vec4, b.AddLoad(vec4, a), b.AddLoad(vec4, c))
			b.AddStore(out, sum)
		})
		if !hasLine(source, "    out_color = (in_a + in_b);") {
			t.Errorf("output missing addition:\n%s", source)
		}
	})

	t.Run("swizzle", func(t *testing.T) {
		source := compileShader(t, spirv.ExecutionModelFragment, func(b *spirv.ModuleBuilder) {
			vec4 := vec4Type(b)
			in := b.AddVariable(spirv.StorageClassInput, vec4, "in_Color0")
			out := b.AddVariable(spirv.StorageClassOutput, vec4, "out_color")
			ld := b.AddLoad(vec4, in)
			b.AddStore(out, b.AddVectorShuffle(vec4, ld, ld, 2, 1, 0, 3))
		})
		if !hasLine(source, "    out_color = in_Color0.zyxw;") {
			t.Errorf("output missing swizzle:\n%s", source)
		}
	})

	t.Run("merge shuffle", func(t *testing.T) {
		source := compileShader(t, spirv.ExecutionModelFragment, func(b *spirv.ModuleBuilder) {
			vec4 := vec4Type(b)
			in := b.AddVariable(spirv.StorageClassInput, vec4, "in_Color0")
			r0 := b.AddVariable(spirv.StorageClassFunction, vec4, "r0")
			old := b.AddLoad(vec4, r0)
			value := b.AddLoad(vec4, in)
			b.AddStore(r0, b.AddVectorShuffle(vec4, old, value, 0, 1, 4, 5))
		})
		if !hasLine(source, "    r0 = vec4(r0.x, r0.y, in_Color0.x, in_Color0.y);") {
			t.Errorf("output missing merge constructor:\n%s", source)
		}
	})

	t.Run("extract and construct", func(t *testing.T) {
		source := compileShader(t, spirv.ExecutionModelFragment, func(b *spirv.ModuleBuilder) {
			f32 := b.AddTypeFloat(32)
			vec4 := vec4Type(b)
			in := b.AddVariable(spirv.StorageClassInput, vec4, "in_Color0")
			out := b.AddVariable(spirv.StorageClassOutput, vec4, "out_color")
			ld := b.AddLoad(vec4, in)
			x := b.AddCompositeExtract(f32, ld, 0)
			one := b.AddConstantFloat32(f32, 1)
			b.AddStore(out, b.AddCompositeConstruct(vec4, x, one, one, one))
		})
		if !hasLine(source, "    out_color = vec4(in_Color0.x, 1.0, 1.0, 1.0);") {
			t.Errorf("output missing constructor:\n%s", source)
		}
	})

	t.Run("fma", func(t *testing.T) {
		source := compileShader(t, spirv.ExecutionModelFragment, func(b *spirv.ModuleBuilder) {
			vec4 := vec4Type(b)
			ext := b.AddExtInstImport("GLSL.std.450")
			a := b.AddVariable(spirv.StorageClassInput, vec4, "in_a")
			c := b.AddVariable(spirv.StorageClassInput, vec4, "in_b")
			d := b.AddVariable(spirv.StorageClassInput, vec4, "in_c")
			out := b.AddVariable(spirv.StorageClassOutput, vec4, "out_color")
			result := b.AddExtInst(vec4, ext, spirv.GLSLstd450Fma,
				b.AddLoad(vec4, a), b.AddLoad(vec4, c), b.AddLoad(vec4, d))
			b.AddStore(out, result)
		})
		if !hasLine(source, "    out_color = fma(in_a, in_b, in_c);") {
			t.Errorf("output missing fma:\n%s", source)
		}
	})

	t.Run("dot is materialized once", func(t *testing.T) {
		source := compileShader(t, spirv.ExecutionModelFragment, func(b *spirv.ModuleBuilder) {
			f32 := b.AddTypeFloat(32)
			vec4 := vec4Type(b)
			a := b.AddVariable(spirv.StorageClassInput, vec4, "in_a")
			c := b.AddVariable(spirv.StorageClassInput, vec4, "in_b")
			out := b.AddVariable(spirv.StorageClassOutput, vec4, "out_color")
			d := b.AddBinaryOp(spirv.OpDot, f32, b.AddLoad(vec4, a), b.AddLoad(vec4, c))
			b.AddStore(out, b.AddCompositeConstruct(vec4, d, d, d, d))
		})
		if !strings.Contains(source, "float _e") {
			t.Errorf("output missing dot temporary:\n%s", source)
		}
		if got := strings.Count(source, "dot(in_a, in_b)"); got != 1 {
			t.Errorf("dot expression appears %d times, want 1:\n%s", got, source)
		}
	})

	t.Run("vector select", func(t *testing.T) {
		source := compileShader(t, spirv.ExecutionModelFragment, func(b *spirv.ModuleBuilder) {
			f32 := b.AddTypeFloat(32)
			vec4 := vec4Type(b)
			bvec4 := b.AddTypeVector(b.AddTypeBool(), 4)
			a := b.AddVariable(spirv.StorageClassInput, vec4, "in_a")
			c := b.AddVariable(spirv.StorageClassInput, vec4, "in_b")
			out := b.AddVariable(spirv.StorageClassOutput, vec4, "out_color")

			zero := b.AddConstantFloat32(f32, 0)
			zeroes := b.AddConstantComposite(vec4, zero, zero, zero, zero)
			lda := b.AddLoad(vec4, a)
			cond := b.AddBinaryOp(spirv.OpFOrdNotEqual, bvec4, lda, zeroes)
			b.AddStore(out, b.AddSelect(vec4, cond, lda, b.AddLoad(vec4, c)))
		})
		if !strings.Contains(source, "mix(in_b, in_a, vec4(notEqual(in_a, vec4(0.0, 0.0, 0.0, 0.0))))") {
			t.Errorf("output missing vector select:\n%s", source)
		}
	})

	t.Run("scalar select", func(t *testing.T) {
		source := compileShader(t, spirv.ExecutionModelFragment, func(b *spirv.ModuleBuilder) {
			f32 := b.AddTypeFloat(32)
			boolType := b.AddTypeBool()
			x := b.AddVariable(spirv.StorageClassInput, f32, "in_x")
			y := b.AddVariable(spirv.StorageClassInput, f32, "in_y")
			out := b.AddVariable(spirv.StorageClassOutput, f32, "out_value")

			ldx := b.AddLoad(f32, x)
			cond := b.AddBinaryOp(spirv.OpFOrdNotEqual, boolType, ldx, b.AddConstantFloat32(f32, 0))
			b.AddStore(out, b.AddSelect(f32, cond, ldx, b.AddLoad(f32, y)))
		})
		if !strings.Contains(source, "((in_x != 0.0) ? in_x : in_y)") {
			t.Errorf("output missing scalar select:\n%s", source)
		}
	})

	t.Run("texture", func(t *testing.T) {
		source := compileShader(t, spirv.ExecutionModelFragment, func(b *spirv.ModuleBuilder) {
			f32 := b.AddTypeFloat(32)
			vec2 := b.AddTypeVector(f32, 2)
			vec4 := vec4Type(b)
			image := b.AddTypeImage(f32, spirv.Dim2D, false, false, false, 1, spirv.ImageFormatUnknown)
			sampled := b.AddTypeSampledImage(image)

			tex := b.AddVariable(spirv.StorageClassUniformConstant, sampled, "tex")
			uv := b.AddVariable(spirv.StorageClassInput, vec2, "in_TexCoord0")
			out := b.AddVariable(spirv.StorageClassOutput, vec4, "out_color")

			sample := b.AddImageSampleImplicitLod(vec4, b.AddLoad(sampled, tex), b.AddLoad(vec2, uv))
			b.AddStore(out, sample)
		})
		if !hasLine(source, "    out_color = texture(tex, in_TexCoord0);") {
			t.Errorf("output missing texture sample:\n%s", source)
		}
	})
}

func TestCompileBodyErrors(t *testing.T) {
	tests := []struct {
		name    string
		build   func(b *spirv.ModuleBuilder)
		wantErr string
	}{
		{
			name: "unsupported instruction",
			build: func(b *spirv.ModuleBuilder) {
				f32 := b.AddTypeFloat(32)
				one := b.AddConstantFloat32(f32, 1)
				b.AddBinaryOp(spirv.OpCode(128), f32, one, one) // OpIAdd
			},
			wantErr: "unsupported instruction Op128",
		},
		{
			name: "undefined value",
			build: func(b *spirv.ModuleBuilder) {
				vec4 := vec4Type(b)
				out := b.AddVariable(spirv.StorageClassOutput, vec4, "out_color")
				b.AddStore(out, 999)
			},
			wantErr: "used before it is defined",
		},
		{
			name: "unknown pointer",
			build: func(b *spirv.ModuleBuilder) {
				b.AddLoad(vec4Type(b), 999)
			},
			wantErr: "does not name a variable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Compile(buildShader(t, spirv.ExecutionModelFragment, tt.build), DefaultOptions())
			if err == nil {
				t.Fatal("Compile() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Compile() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
