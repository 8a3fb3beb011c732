// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl converts SPIR-V binaries produced by the shader
// recompiler into GLSL source accepted by desktop OpenGL.
//
// The input is restricted to the shape the recompiler emits: a single
// entry point, straight-line code, and register-file variables. In
// exchange no control flow reconstruction is needed and the output is
// compact GLSL 4.10 core, the version the renderer requests.
//
// # Basic Usage
//
//	source, info, err := glsl.Compile(binary, glsl.DefaultOptions())
//
// # Reserved Words
//
// Parameter names come straight out of game binaries and may collide
// with GLSL keywords or built-in names. Conflicting identifiers are
// escaped with an underscore prefix.
package glsl
