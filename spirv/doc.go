// Package spirv builds and inspects SPIR-V binary modules.
//
// The GXP recompiler emits SPIR-V directly while it walks a shader's
// parameter table and instruction stream, so this package is organized
// around ModuleBuilder: an append-only builder with one slice per
// logical SPIR-V section, memoized type and constant constructors, and
// a Build method that serializes the sections in logical-layout order.
//
// Disassemble renders a finished binary back to readable text. It is
// used by the debug dump path and by tests; it is never required for
// compilation itself.
package spirv
