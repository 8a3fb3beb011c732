// Package translate is the middle of the recompiler pipeline: it
// allocates one SPIR-V variable per logical register-bank slot from a
// program's parameter descriptors, then walks the USSE instruction
// stream emitting equivalent SPIR-V operations against those
// variables.
package translate
