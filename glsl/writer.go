// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/gxp/spirv"
)

const componentLetters = "xyzw"

// Writer generates GLSL source from a parsed SPIR-V module.
type Writer struct {
	module  *module
	options Options
	out     strings.Builder
	indent  int

	info TranslationInfo

	// names maps variable and struct type ids to emitted identifiers.
	names map[uint32]string
	// exprs maps result ids to the GLSL expression producing them.
	exprs map[uint32]string
	// exprTypes maps result ids to their SPIR-V result type.
	exprTypes map[uint32]uint32
	// uses counts how often a result feeds later instructions. Results
	// consumed more than once are materialized into temporaries so
	// their expression text is not re-evaluated.
	uses map[uint32]int

	namer *namer
}

// namer generates unique identifiers.
type namer struct {
	usedNames map[string]struct{}
	counter   uint32
}

func newNamer() *namer {
	return &namer{
		usedNames: make(map[string]struct{}),
	}
}

// call generates a unique name based on the given base.
func (n *namer) call(base string) string {
	escaped := escapeKeyword(base)

	if _, used := n.usedNames[escaped]; !used {
		n.usedNames[escaped] = struct{}{}
		return escaped
	}

	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		if _, used := n.usedNames[candidate]; !used {
			n.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}

// newWriter creates a new GLSL writer.
func newWriter(mod *module, options Options) *Writer {
	return &Writer{
		module:    mod,
		options:   options,
		names:     make(map[uint32]string),
		exprs:     make(map[uint32]string),
		exprTypes: make(map[uint32]uint32),
		uses:      make(map[uint32]int),
		namer:     newNamer(),
		info: TranslationInfo{
			EntryPointNames: make(map[string]string),
			RequiredVersion: options.LangVersion,
		},
	}
}

// writeModule emits the complete GLSL translation unit.
func (w *Writer) writeModule() error {
	w.writeLine("#version %s", w.options.LangVersion.String())
	if w.options.Enable420Pack && !w.options.LangVersion.ES &&
		w.options.LangVersion.VersionNumber() < Version420.VersionNumber() {
		w.writeLine("#extension GL_ARB_shading_language_420pack : require")
		w.info.UsedExtensions = append(w.info.UsedExtensions, "GL_ARB_shading_language_420pack")
	}
	w.writeLine("")

	w.registerNames()

	if err := w.writeGlobals(); err != nil {
		return err
	}
	return w.writeEntryPoint()
}

// registerNames assigns GLSL identifiers to every named id up front so
// declarations and references agree. Struct types come first: an
// interface block shares its spelling with the backing variable and
// the block keeps the clean name.
func (w *Writer) registerNames() {
	for _, g := range w.module.globals {
		if w.module.types[g.typeID].kind == typeStruct {
			w.names[g.typeID] = w.namer.call(w.module.names[g.typeID])
		}
	}
	for _, g := range w.module.globals {
		if dec := w.module.decorations[g.id]; dec != nil && dec.builtIn != nil {
			w.names[g.id] = glslBuiltIn(*dec.builtIn)
			continue
		}
		w.names[g.id] = w.namer.call(w.module.names[g.id])
	}
	for _, l := range w.module.locals {
		w.names[l.id] = w.namer.call(w.module.names[l.id])
	}
}

// glslBuiltIn returns the GLSL variable for a SPIR-V built-in.
func glslBuiltIn(b spirv.BuiltIn) string {
	switch b {
	case spirv.BuiltInPosition:
		return "gl_Position"
	case spirv.BuiltInPointSize:
		return "gl_PointSize"
	case spirv.BuiltInClipDistance:
		return "gl_ClipDistance"
	case spirv.BuiltInFragCoord:
		return "gl_FragCoord"
	case spirv.BuiltInFragDepth:
		return "gl_FragDepth"
	default:
		return fmt.Sprintf("gl_BuiltIn%d", b)
	}
}

// writeGlobals declares module-scope variables. Built-in decorated
// variables get no declaration; they are spelled as their gl_ name at
// the point of use.
func (w *Writer) writeGlobals() error {
	wrote := false
	for _, g := range w.module.globals {
		dec := w.module.decorations[g.id]
		if dec != nil && dec.builtIn != nil {
			continue
		}
		if w.module.types[g.typeID].kind == typeStruct {
			if err := w.writeInterfaceBlock(g); err != nil {
				return err
			}
			wrote = true
			continue
		}

		typeName, err := w.typeName(g.typeID)
		if err != nil {
			return err
		}
		name := w.names[g.id]

		switch g.storage {
		case spirv.StorageClassUniformConstant:
			w.writeLine("uniform %s %s;", typeName, name)
		case spirv.StorageClassInput:
			w.writeLine("%sin %s %s;", w.layoutPrefix(dec), typeName, name)
		case spirv.StorageClassOutput:
			w.writeLine("%sout %s %s;", w.layoutPrefix(dec), typeName, name)
		case spirv.StorageClassPrivate:
			w.writeLine("%s %s;", typeName, name)
		default:
			return fmt.Errorf("variable %q has unsupported storage class %d", name, g.storage)
		}
		wrote = true
	}
	if wrote {
		w.writeLine("")
	}
	return nil
}

func (w *Writer) layoutPrefix(dec *decorationInfo) string {
	if dec == nil || dec.location == nil {
		return ""
	}
	return fmt.Sprintf("layout(location = %d) ", *dec.location)
}

// writeInterfaceBlock declares a struct-typed stage interface variable
// as a named GLSL interface block. Structs are not legal in/out types,
// blocks are.
func (w *Writer) writeInterfaceBlock(g variableInfo) error {
	var qualifier string
	switch g.storage {
	case spirv.StorageClassInput:
		qualifier = "in"
	case spirv.StorageClassOutput:
		qualifier = "out"
	default:
		return fmt.Errorf("struct variable %q has unsupported storage class %d", w.names[g.id], g.storage)
	}

	dec := w.module.decorations[g.typeID]
	if dec == nil || !dec.block {
		return fmt.Errorf("struct variable %q is not an interface block", w.names[g.id])
	}

	w.writeLine("%s %s {", qualifier, w.names[g.typeID])
	w.pushIndent()
	typ := w.module.types[g.typeID]
	fields := w.module.memberNames[g.typeID]
	for i, member := range typ.members {
		memberType, err := w.typeName(member)
		if err != nil {
			return err
		}
		fieldName := fmt.Sprintf("member%d", i)
		if i < len(fields) && fields[i] != "" {
			fieldName = escapeKeyword(fields[i])
		}
		w.writeLine("%s %s;", memberType, fieldName)
	}
	w.popIndent()
	w.writeLine("} %s;", w.names[g.id])
	return nil
}

// writeEntryPoint emits the main function: local declarations first,
// then one statement per store in the instruction stream.
func (w *Writer) writeEntryPoint() error {
	w.info.EntryPointNames[w.module.entryName] = "main"

	w.countUses()

	w.writeLine("void main() {")
	w.pushIndent()

	for _, l := range w.module.locals {
		typeName, err := w.typeName(l.typeID)
		if err != nil {
			return err
		}
		w.writeLine("%s %s;", typeName, w.names[l.id])
	}

	for _, op := range w.module.body {
		if err := w.writeInstruction(op); err != nil {
			return err
		}
	}

	w.popIndent()
	w.writeLine("}")
	return nil
}

// countUses tallies how many times each result feeds later
// instructions. Shuffles are counted per pattern component: a merge
// shuffle reads one of its operands several times and would otherwise
// duplicate that operand's expression text.
func (w *Writer) countUses() {
	types := make(map[uint32]uint32)
	for _, op := range w.module.body {
		if result, typeID, ok := resultOf(op); ok {
			types[result] = typeID
		}
	}

	componentsOf := func(id uint32) uint32 {
		typeID, ok := types[id]
		if !ok {
			if c, isConst := w.module.constants[id]; isConst {
				typeID = c.typeID
			}
		}
		return w.module.types[typeID].count
	}

	for _, op := range w.module.body {
		if op.opcode == spirv.OpVectorShuffle {
			firstCount := componentsOf(op.ops[2])
			for _, idx := range op.ops[4:] {
				if idx < firstCount {
					w.uses[op.ops[2]]++
				} else {
					w.uses[op.ops[3]]++
				}
			}
			continue
		}
		for _, id := range operandIDs(op) {
			w.uses[id]++
		}
	}
}

// resultOf reports the result id and type of a body instruction, when
// it has one.
func resultOf(op bodyOp) (result, typeID uint32, ok bool) {
	switch op.opcode {
	case spirv.OpLoad, spirv.OpFNegate, spirv.OpFAdd, spirv.OpFSub,
		spirv.OpFMul, spirv.OpFDiv, spirv.OpDot, spirv.OpFOrdEqual,
		spirv.OpFOrdNotEqual, spirv.OpSelect, spirv.OpVectorShuffle,
		spirv.OpCompositeConstruct, spirv.OpCompositeExtract,
		spirv.OpImageSampleImplicitLod, spirv.OpExtInst:
		return op.ops[1], op.ops[0], true
	default:
		return 0, 0, false
	}
}

// operandIDs returns the value ids an instruction consumes. Literal
// operands such as shuffle patterns and extract indexes are excluded.
func operandIDs(op bodyOp) []uint32 {
	ops := op.ops
	switch op.opcode {
	case spirv.OpLoad:
		return ops[2:3]
	case spirv.OpStore:
		return ops[0:2]
	case spirv.OpFNegate:
		return ops[2:3]
	case spirv.OpFAdd, spirv.OpFSub, spirv.OpFMul, spirv.OpFDiv,
		spirv.OpDot, spirv.OpFOrdEqual, spirv.OpFOrdNotEqual:
		return ops[2:4]
	case spirv.OpSelect:
		return ops[2:5]
	case spirv.OpVectorShuffle:
		return ops[2:4]
	case spirv.OpCompositeConstruct:
		return ops[2:]
	case spirv.OpCompositeExtract:
		return ops[2:3]
	case spirv.OpImageSampleImplicitLod:
		return ops[2:4]
	case spirv.OpExtInst:
		return ops[4:]
	default:
		return nil
	}
}

// writeInstruction translates one body instruction. Most record an
// expression for later use; OpStore is the only one that always emits
// a statement.
func (w *Writer) writeInstruction(op bodyOp) error {
	ops := op.ops
	switch op.opcode {
	case spirv.OpLoad:
		name, err := w.variableName(ops[2])
		if err != nil {
			return err
		}
		w.exprs[ops[1]] = name
		w.exprTypes[ops[1]] = ops[0]
		return nil

	case spirv.OpStore:
		target, err := w.variableName(ops[0])
		if err != nil {
			return err
		}
		value, err := w.operand(ops[1])
		if err != nil {
			return err
		}
		w.writeLine("%s = %s;", target, value)
		return nil

	case spirv.OpFNegate:
		operand, err := w.operand(ops[2])
		if err != nil {
			return err
		}
		return w.emitExpr(ops, fmt.Sprintf("-(%s)", operand))

	case spirv.OpFAdd:
		return w.binaryExpr(ops, "+")
	case spirv.OpFSub:
		return w.binaryExpr(ops, "-")
	case spirv.OpFMul:
		return w.binaryExpr(ops, "*")
	case spirv.OpFDiv:
		return w.binaryExpr(ops, "/")

	case spirv.OpFOrdEqual:
		return w.compareExpr(ops, "==", "equal")
	case spirv.OpFOrdNotEqual:
		return w.compareExpr(ops, "!=", "notEqual")

	case spirv.OpDot:
		left, err := w.operand(ops[2])
		if err != nil {
			return err
		}
		right, err := w.operand(ops[3])
		if err != nil {
			return err
		}
		return w.emitExpr(ops, fmt.Sprintf("dot(%s, %s)", left, right))

	case spirv.OpSelect:
		return w.selectExpr(ops)

	case spirv.OpVectorShuffle:
		return w.shuffleExpr(ops)

	case spirv.OpCompositeConstruct:
		return w.constructExpr(ops)

	case spirv.OpCompositeExtract:
		return w.extractExpr(ops)

	case spirv.OpImageSampleImplicitLod:
		sampler, err := w.operand(ops[2])
		if err != nil {
			return err
		}
		coord, err := w.operand(ops[3])
		if err != nil {
			return err
		}
		return w.emitExpr(ops, fmt.Sprintf("texture(%s, %s)", sampler, coord))

	case spirv.OpExtInst:
		return w.extInstExpr(ops)

	default:
		return fmt.Errorf("unsupported instruction Op%d", op.opcode)
	}
}

// emitExpr records the GLSL expression for a result id. Results that
// later instructions consume more than once get a local temporary.
func (w *Writer) emitExpr(ops []uint32, expr string) error {
	typeID, result := ops[0], ops[1]
	w.exprTypes[result] = typeID
	if w.uses[result] > 1 {
		typeName, err := w.typeName(typeID)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("_e%d", result)
		w.writeLine("%s %s = %s;", typeName, name, expr)
		w.exprs[result] = name
		return nil
	}
	w.exprs[result] = expr
	return nil
}

// operand resolves a value id to GLSL text: a previously recorded
// expression, a constant literal, or a named variable.
func (w *Writer) operand(id uint32) (string, error) {
	if expr, ok := w.exprs[id]; ok {
		return expr, nil
	}
	if c, ok := w.module.constants[id]; ok {
		return w.constantText(c)
	}
	if name, ok := w.names[id]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%%_%d is used before it is defined", id)
}

// variableName resolves a pointer operand to a declared variable.
func (w *Writer) variableName(id uint32) (string, error) {
	if name, ok := w.names[id]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%%_%d does not name a variable", id)
}

func (w *Writer) constantText(c constantInfo) (string, error) {
	typ := w.module.types[c.typeID]
	switch typ.kind {
	case typeFloat:
		if len(c.words) != 1 {
			return "", fmt.Errorf("unsupported %d-word float constant", len(c.words))
		}
		return formatFloat(math.Float32frombits(c.words[0])), nil
	case typeInt:
		if len(c.words) != 1 {
			return "", fmt.Errorf("unsupported %d-word integer constant", len(c.words))
		}
		if typ.signed {
			return fmt.Sprintf("%d", int32(c.words[0])), nil
		}
		return fmt.Sprintf("%du", c.words[0]), nil
	case typeVector:
		name, err := w.typeName(c.typeID)
		if err != nil {
			return "", err
		}
		parts := make([]string, len(c.parts))
		for i, part := range c.parts {
			pc, ok := w.module.constants[part]
			if !ok {
				return "", fmt.Errorf("composite constant references undefined %%_%d", part)
			}
			text, err := w.constantText(pc)
			if err != nil {
				return "", err
			}
			parts[i] = text
		}
		return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", ")), nil
	default:
		return "", fmt.Errorf("constant of unsupported type")
	}
}

func (w *Writer) binaryExpr(ops []uint32, operator string) error {
	left, err := w.operand(ops[2])
	if err != nil {
		return err
	}
	right, err := w.operand(ops[3])
	if err != nil {
		return err
	}
	return w.emitExpr(ops, fmt.Sprintf("(%s %s %s)", left, operator, right))
}

// compareExpr emits a comparison: the infix operator for scalars, the
// component-wise builtin for vectors.
func (w *Writer) compareExpr(ops []uint32, operator, builtin string) error {
	left, err := w.operand(ops[2])
	if err != nil {
		return err
	}
	right, err := w.operand(ops[3])
	if err != nil {
		return err
	}
	if w.module.types[ops[0]].kind == typeVector {
		return w.emitExpr(ops, fmt.Sprintf("%s(%s, %s)", builtin, left, right))
	}
	return w.emitExpr(ops, fmt.Sprintf("(%s %s %s)", left, operator, right))
}

// selectExpr emits OpSelect. The scalar form maps to the ternary
// operator. The vector form converts the condition to a float vector
// and blends with mix; mix with a boolean selector only arrived in
// GLSL 4.50.
func (w *Writer) selectExpr(ops []uint32) error {
	cond, err := w.operand(ops[2])
	if err != nil {
		return err
	}
	accept, err := w.operand(ops[3])
	if err != nil {
		return err
	}
	reject, err := w.operand(ops[4])
	if err != nil {
		return err
	}
	typ := w.module.types[ops[0]]
	if typ.kind == typeVector {
		return w.emitExpr(ops, fmt.Sprintf("mix(%s, %s, vec%d(%s))", reject, accept, typ.count, cond))
	}
	return w.emitExpr(ops, fmt.Sprintf("(%s ? %s : %s)", cond, accept, reject))
}

// shuffleExpr emits OpVectorShuffle. A shuffle that only reads its
// first operand becomes a swizzle; anything else becomes a constructor
// extracting each component from its source.
func (w *Writer) shuffleExpr(ops []uint32) error {
	first, err := w.operand(ops[2])
	if err != nil {
		return err
	}
	firstCount, err := w.componentCount(ops[2])
	if err != nil {
		return err
	}
	pattern := ops[4:]

	firstOnly := true
	for _, idx := range pattern {
		if idx >= firstCount {
			firstOnly = false
			break
		}
	}
	if firstOnly {
		var swizzle strings.Builder
		for _, idx := range pattern {
			swizzle.WriteByte(componentLetters[idx])
		}
		return w.emitExpr(ops, fmt.Sprintf("%s.%s", first, swizzle.String()))
	}

	second, err := w.operand(ops[3])
	if err != nil {
		return err
	}
	secondCount, err := w.componentCount(ops[3])
	if err != nil {
		return err
	}
	typeName, err := w.typeName(ops[0])
	if err != nil {
		return err
	}
	parts := make([]string, len(pattern))
	for i, idx := range pattern {
		switch {
		case idx < firstCount:
			parts[i] = fmt.Sprintf("%s.%c", first, componentLetters[idx])
		case idx-firstCount < secondCount:
			parts[i] = fmt.Sprintf("%s.%c", second, componentLetters[idx-firstCount])
		default:
			return fmt.Errorf("shuffle component %d is out of range", idx)
		}
	}
	return w.emitExpr(ops, fmt.Sprintf("%s(%s)", typeName, strings.Join(parts, ", ")))
}

func (w *Writer) constructExpr(ops []uint32) error {
	typeName, err := w.typeName(ops[0])
	if err != nil {
		return err
	}
	parts := make([]string, len(ops)-2)
	for i, id := range ops[2:] {
		text, err := w.operand(id)
		if err != nil {
			return err
		}
		parts[i] = text
	}
	return w.emitExpr(ops, fmt.Sprintf("%s(%s)", typeName, strings.Join(parts, ", ")))
}

// extractExpr emits OpCompositeExtract as a component selection. Only
// vector sources appear in recompiled code.
func (w *Writer) extractExpr(ops []uint32) error {
	if len(ops) != 4 {
		return fmt.Errorf("unsupported composite extract depth %d", len(ops)-3)
	}
	source, err := w.operand(ops[2])
	if err != nil {
		return err
	}
	typeID, ok := w.valueType(ops[2])
	if !ok || w.module.types[typeID].kind != typeVector {
		return fmt.Errorf("composite extract from a non-vector value")
	}
	if ops[3] >= uint32(len(componentLetters)) {
		return fmt.Errorf("component index %d is out of range", ops[3])
	}
	return w.emitExpr(ops, fmt.Sprintf("%s.%c", source, componentLetters[ops[3]]))
}

// glslStd450Functions maps GLSL.std.450 opcodes to GLSL builtins.
var glslStd450Functions = map[spirv.GLSLstd450]string{
	spirv.GLSLstd450Fract:       "fract",
	spirv.GLSLstd450Exp2:        "exp2",
	spirv.GLSLstd450Log2:        "log2",
	spirv.GLSLstd450Sqrt:        "sqrt",
	spirv.GLSLstd450InverseSqrt: "inversesqrt",
	spirv.GLSLstd450FMin:        "min",
	spirv.GLSLstd450FMax:        "max",
	spirv.GLSLstd450FClamp:      "clamp",
	spirv.GLSLstd450Fma:         "fma",
}

func (w *Writer) extInstExpr(ops []uint32) error {
	if set := w.module.extImports[ops[2]]; set != "GLSL.std.450" {
		return fmt.Errorf("unsupported extended instruction set %q", set)
	}
	fn, ok := glslStd450Functions[spirv.GLSLstd450(ops[3])]
	if !ok {
		return fmt.Errorf("unsupported GLSL.std.450 instruction %d", ops[3])
	}
	args := make([]string, len(ops)-4)
	for i, id := range ops[4:] {
		text, err := w.operand(id)
		if err != nil {
			return err
		}
		args[i] = text
	}
	return w.emitExpr(ops, fmt.Sprintf("%s(%s)", fn, strings.Join(args, ", ")))
}

// componentCount reports the vector width of a value id.
func (w *Writer) componentCount(id uint32) (uint32, error) {
	typeID, ok := w.valueType(id)
	if !ok {
		return 0, fmt.Errorf("%%_%d is used before it is defined", id)
	}
	typ := w.module.types[typeID]
	if typ.kind != typeVector {
		return 0, fmt.Errorf("vector shuffle of a non-vector value")
	}
	return typ.count, nil
}

// valueType reports the SPIR-V type of a result id or constant.
func (w *Writer) valueType(id uint32) (uint32, bool) {
	if t, ok := w.exprTypes[id]; ok {
		return t, true
	}
	if c, ok := w.module.constants[id]; ok {
		return c.typeID, true
	}
	return 0, false
}

// typeName returns the GLSL spelling of a type. Integer widths narrower
// than 32 bits widen to the native GLSL types.
func (w *Writer) typeName(typeID uint32) (string, error) {
	typ, ok := w.module.types[typeID]
	if !ok {
		return "", fmt.Errorf("unknown type %%_%d", typeID)
	}
	switch typ.kind {
	case typeVoid:
		return "void", nil
	case typeBool:
		return "bool", nil
	case typeFloat:
		return "float", nil
	case typeInt:
		if typ.signed {
			return "int", nil
		}
		return "uint", nil
	case typeVector:
		elem := w.module.types[typ.elem]
		prefix := ""
		switch elem.kind {
		case typeBool:
			prefix = "b"
		case typeInt:
			if elem.signed {
				prefix = "i"
			} else {
				prefix = "u"
			}
		case typeFloat:
		default:
			return "", fmt.Errorf("vector of unsupported element type")
		}
		return fmt.Sprintf("%svec%d", prefix, typ.count), nil
	case typeMatrix:
		return fmt.Sprintf("mat%d", typ.count), nil
	case typeSampledImage:
		image := w.module.types[typ.elem]
		switch image.dim {
		case spirv.Dim1D:
			return "sampler1D", nil
		case spirv.Dim2D:
			return "sampler2D", nil
		case spirv.Dim3D:
			return "sampler3D", nil
		case spirv.DimCube:
			return "samplerCube", nil
		default:
			return "", fmt.Errorf("sampler of unsupported dimensionality %d", image.dim)
		}
	case typeStruct:
		if name, ok := w.names[typeID]; ok {
			return name, nil
		}
		return "", fmt.Errorf("struct type %%_%d has no name", typeID)
	default:
		return "", fmt.Errorf("type %%_%d has no GLSL spelling", typeID)
	}
}

// writeLine writes an indented line. With no arguments the format
// string is written as-is, so pre-formatted text is safe from Printf
// expansion.
func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

func (w *Writer) pushIndent() {
	w.indent++
}

func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// formatFloat renders a float literal, keeping a decimal point so the
// literal stays a float.
func formatFloat(v float32) string {
	s := fmt.Sprintf("%g", v)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
