// Package gxm describes GXP shader programs as seen by the
// recompiler: the stage kind, parameter descriptor table, register
// counts and the raw instruction stream. The container file format
// itself is parsed elsewhere; this package is the already-validated
// in-memory contract.
package gxm
