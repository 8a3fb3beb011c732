// Package usse models the USSE vector instruction set found in GXP
// shader programs: register banks, swizzles, predicates and the
// instruction layout, together with a binary decoder and a text
// disassembler for diagnostics.
package usse
