// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

// glslKeywords holds the GLSL reserved words an identifier may not
// spell: keywords and future reserved words of GLSL 4.10 plus the
// built-in variables and functions a shader can reach.
var glslKeywords = map[string]struct{}{
	// Scalar, vector and matrix types
	"void": {}, "bool": {}, "int": {}, "uint": {}, "float": {}, "double": {},
	"vec2": {}, "vec3": {}, "vec4": {},
	"ivec2": {}, "ivec3": {}, "ivec4": {},
	"uvec2": {}, "uvec3": {}, "uvec4": {},
	"bvec2": {}, "bvec3": {}, "bvec4": {},
	"dvec2": {}, "dvec3": {}, "dvec4": {},
	"mat2": {}, "mat3": {}, "mat4": {},
	"mat2x2": {}, "mat2x3": {}, "mat2x4": {},
	"mat3x2": {}, "mat3x3": {}, "mat3x4": {},
	"mat4x2": {}, "mat4x3": {}, "mat4x4": {},
	"dmat2": {}, "dmat3": {}, "dmat4": {},

	// Sampler types
	"sampler1D": {}, "sampler2D": {}, "sampler3D": {}, "samplerCube": {},
	"sampler2DRect": {}, "sampler1DShadow": {}, "sampler2DShadow": {},
	"samplerCubeShadow": {}, "sampler2DRectShadow": {},
	"sampler1DArray": {}, "sampler2DArray": {},
	"sampler1DArrayShadow": {}, "sampler2DArrayShadow": {},
	"samplerCubeArray": {}, "samplerCubeArrayShadow": {},
	"samplerBuffer": {}, "sampler2DMS": {}, "sampler2DMSArray": {},
	"isampler1D": {}, "isampler2D": {}, "isampler3D": {}, "isamplerCube": {},
	"isampler2DRect": {}, "isampler1DArray": {}, "isampler2DArray": {},
	"isamplerCubeArray": {}, "isamplerBuffer": {},
	"isampler2DMS": {}, "isampler2DMSArray": {},
	"usampler1D": {}, "usampler2D": {}, "usampler3D": {}, "usamplerCube": {},
	"usampler2DRect": {}, "usampler1DArray": {}, "usampler2DArray": {},
	"usamplerCubeArray": {}, "usamplerBuffer": {},
	"usampler2DMS": {}, "usampler2DMSArray": {},

	// Storage and layout qualifiers
	"attribute": {}, "const": {}, "uniform": {}, "varying": {},
	"layout": {}, "centroid": {}, "flat": {}, "smooth": {}, "noperspective": {},
	"patch": {}, "sample": {}, "subroutine": {},
	"in": {}, "out": {}, "inout": {},
	"invariant": {}, "precise": {},
	"lowp": {}, "mediump": {}, "highp": {}, "precision": {},

	// Control flow
	"break": {}, "continue": {}, "do": {}, "for": {}, "while": {},
	"switch": {}, "case": {}, "default": {}, "if": {}, "else": {},
	"discard": {}, "return": {},
	"true": {}, "false": {}, "struct": {},

	// Reserved for future use
	"common": {}, "partition": {}, "active": {},
	"asm": {}, "class": {}, "union": {}, "enum": {}, "typedef": {},
	"template": {}, "this": {}, "packed": {}, "resource": {}, "goto": {},
	"inline": {}, "noinline": {}, "volatile": {}, "public": {}, "static": {},
	"extern": {}, "external": {}, "interface": {},
	"long": {}, "short": {}, "half": {}, "fixed": {}, "unsigned": {}, "superp": {},
	"input": {}, "output": {},
	"hvec2": {}, "hvec3": {}, "hvec4": {}, "fvec2": {}, "fvec3": {}, "fvec4": {},
	"sampler3DRect": {}, "filter": {},
	"image1D": {}, "image2D": {}, "image3D": {}, "imageCube": {},
	"iimage1D": {}, "iimage2D": {}, "iimage3D": {}, "iimageCube": {},
	"uimage1D": {}, "uimage2D": {}, "uimage3D": {}, "uimageCube": {},
	"imageBuffer": {}, "iimageBuffer": {}, "uimageBuffer": {},
	"sizeof": {}, "cast": {}, "namespace": {}, "using": {},
	"row_major": {},

	// Built-in variables
	"gl_VertexID": {}, "gl_InstanceID": {},
	"gl_Position": {}, "gl_PointSize": {}, "gl_ClipDistance": {},
	"gl_PerVertex": {},
	"gl_FragCoord": {}, "gl_FrontFacing": {}, "gl_PointCoord": {},
	"gl_SampleID": {}, "gl_SamplePosition": {}, "gl_SampleMaskIn": {},
	"gl_FragDepth": {}, "gl_SampleMask": {},
	"gl_PrimitiveID": {}, "gl_Layer": {},

	// Built-in constants
	"gl_MaxVertexAttribs": {}, "gl_MaxVertexUniformComponents": {},
	"gl_MaxVaryingComponents": {}, "gl_MaxVertexTextureImageUnits": {},
	"gl_MaxCombinedTextureImageUnits": {}, "gl_MaxTextureImageUnits": {},
	"gl_MaxFragmentUniformComponents": {}, "gl_MaxDrawBuffers": {},
	"gl_MaxClipDistances": {},

	// Built-in functions commonly used as identifiers
	"main":    {},
	"radians": {}, "degrees": {}, "sin": {}, "cos": {}, "tan": {},
	"asin": {}, "acos": {}, "atan": {}, "sinh": {}, "cosh": {}, "tanh": {},
	"asinh": {}, "acosh": {}, "atanh": {},
	"pow": {}, "exp": {}, "log": {}, "exp2": {}, "log2": {},
	"sqrt": {}, "inversesqrt": {},
	"abs": {}, "sign": {}, "floor": {}, "trunc": {}, "round": {},
	"roundEven": {}, "ceil": {}, "fract": {},
	"mod": {}, "modf": {}, "min": {}, "max": {}, "clamp": {}, "mix": {},
	"step": {}, "smoothstep": {}, "fma": {},
	"isnan": {}, "isinf": {},
	"floatBitsToInt": {}, "floatBitsToUint": {},
	"intBitsToFloat": {}, "uintBitsToFloat": {},
	"packUnorm2x16": {}, "packSnorm2x16": {}, "packUnorm4x8": {}, "packSnorm4x8": {},
	"unpackUnorm2x16": {}, "unpackSnorm2x16": {}, "unpackUnorm4x8": {}, "unpackSnorm4x8": {},
	"packHalf2x16": {}, "unpackHalf2x16": {},
	"length": {}, "distance": {}, "dot": {}, "cross": {}, "normalize": {},
	"faceforward": {}, "reflect": {}, "refract": {},
	"matrixCompMult": {}, "outerProduct": {}, "transpose": {},
	"determinant": {}, "inverse": {},
	"lessThan": {}, "lessThanEqual": {}, "greaterThan": {}, "greaterThanEqual": {},
	"equal": {}, "notEqual": {}, "any": {}, "all": {}, "not": {},
	"textureSize": {}, "textureQueryLod": {},
	"texture": {}, "textureProj": {}, "textureLod": {}, "textureOffset": {},
	"texelFetch": {}, "texelFetchOffset": {},
	"textureProjLod": {}, "textureProjOffset": {}, "textureLodOffset": {},
	"textureProjLodOffset": {},
	"textureGrad": {}, "textureGradOffset": {},
	"textureProjGrad": {}, "textureProjGradOffset": {},
	"textureGather": {}, "textureGatherOffset": {},
	"dFdx": {}, "dFdy": {}, "fwidth": {},
	"noise1": {}, "noise2": {}, "noise3": {}, "noise4": {},
	"EmitVertex": {}, "EndPrimitive": {},
	"EmitStreamVertex": {}, "EndStreamPrimitive": {},
}

// isKeyword checks if a name is a GLSL keyword or reserved word.
func isKeyword(name string) bool {
	_, ok := glslKeywords[name]
	return ok
}

// escapeKeyword escapes a name if it conflicts with GLSL keywords.
// Returns the name with underscore prefix if it's reserved.
func escapeKeyword(name string) string {
	if name == "" {
		return "_unnamed"
	}
	if isKeyword(name) {
		return "_" + name
	}
	// Also escape names starting with "gl_" (reserved prefix)
	if len(name) >= 3 && name[:3] == "gl_" {
		return "_" + name
	}
	return name
}
