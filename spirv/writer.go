package spirv

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Instruction represents a SPIR-V instruction.
type Instruction struct {
	Opcode OpCode
	Words  []uint32 // result type ID, result ID, operands
}

// InstructionBuilder builds SPIR-V instructions.
type InstructionBuilder struct {
	words []uint32
}

// NewInstructionBuilder creates a new instruction builder.
func NewInstructionBuilder() *InstructionBuilder {
	return &InstructionBuilder{
		words: make([]uint32, 0, 8),
	}
}

// AddWord adds a word to the instruction.
func (b *InstructionBuilder) AddWord(word uint32) {
	b.words = append(b.words, word)
}

// AddString adds a null-terminated UTF-8 string padded to a word boundary.
func (b *InstructionBuilder) AddString(s string) {
	bytes := []byte(s)
	if len(bytes) == 0 || bytes[len(bytes)-1] != 0 {
		bytes = append(bytes, 0)
	}
	for len(bytes)%4 != 0 {
		bytes = append(bytes, 0)
	}
	for i := 0; i < len(bytes); i += 4 {
		word := uint32(bytes[i]) |
			uint32(bytes[i+1])<<8 |
			uint32(bytes[i+2])<<16 |
			uint32(bytes[i+3])<<24
		b.words = append(b.words, word)
	}
}

// Build builds the instruction with the given opcode.
func (b *InstructionBuilder) Build(opcode OpCode) Instruction {
	return Instruction{
		Opcode: opcode,
		Words:  b.words,
	}
}

// Encode encodes the instruction to binary.
func (i Instruction) Encode() []uint32 {
	wordCount := uint32(len(i.Words) + 1) // +1 for opcode word
	result := make([]uint32, 0, wordCount)
	result = append(result, (wordCount<<16)|uint32(i.Opcode))
	result = append(result, i.Words...)
	return result
}

// ModuleBuilder builds complete SPIR-V modules.
//
// Type and scalar-constant constructors are memoized: requesting the
// same type or constant twice returns the first ID, so callers can use
// them as lookups without tracking IDs themselves. Struct types are
// never deduplicated since two structurally identical blocks are still
// distinct interface declarations.
type ModuleBuilder struct {
	// Header
	version   Version
	generator uint32
	bound     uint32 // max ID + 1
	schema    uint32

	// Sections in SPIR-V logical-layout order
	capabilities   []Instruction
	extensions     []Instruction
	extInstImports []Instruction
	memoryModel    *Instruction
	entryPoints    []Instruction
	executionModes []Instruction
	debugStrings   []Instruction // OpString, OpSource, OpSourceExtension
	debugNames     []Instruction // OpName, OpMemberName
	annotations    []Instruction // OpDecorate, OpMemberDecorate
	types          []Instruction // OpType*, OpConstant*
	globalVars     []Instruction // OpVariable (module scope)
	functions      []Instruction // OpFunction...OpFunctionEnd

	// ID allocation and memoization
	nextID     uint32
	typeIDs    map[string]uint32
	constIDs   map[string]uint32
	importIDs  map[string]uint32
	inFunction bool
	diags      []string
}

// NewModuleBuilder creates a new SPIR-V module builder. The generator
// word identifies the producing tool in the module header.
func NewModuleBuilder(version Version, generator uint32) *ModuleBuilder {
	return &ModuleBuilder{
		version:   version,
		generator: generator,
		schema:    0,
		nextID:    1,
		typeIDs:   make(map[string]uint32),
		constIDs:  make(map[string]uint32),
		importIDs: make(map[string]uint32),
	}
}

// AllocID allocates a new SPIR-V ID.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

// Bound returns the current ID bound (max allocated ID + 1).
func (b *ModuleBuilder) Bound() uint32 {
	return b.nextID
}

// Diagnostics returns the serialization problems noticed so far.
// A non-empty list does not prevent Build from producing a binary.
func (b *ModuleBuilder) Diagnostics() []string {
	return b.diags
}

func (b *ModuleBuilder) diag(format string, args ...any) {
	b.diags = append(b.diags, fmt.Sprintf(format, args...))
}

// AddCapability adds a capability declaration.
func (b *ModuleBuilder) AddCapability(capability Capability) {
	builder := NewInstructionBuilder()
	builder.AddWord(uint32(capability))
	b.capabilities = append(b.capabilities, builder.Build(OpCapability))
}

// AddExtInstImport imports an extended instruction set and returns its
// ID. Importing the same set twice returns the original ID.
func (b *ModuleBuilder) AddExtInstImport(name string) uint32 {
	if id, ok := b.importIDs[name]; ok {
		return id
	}
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddString(name)
	b.extInstImports = append(b.extInstImports, builder.Build(OpExtInstImport))
	b.importIDs[name] = id
	return id
}

// SetMemoryModel sets the addressing and memory model.
func (b *ModuleBuilder) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	builder := NewInstructionBuilder()
	builder.AddWord(uint32(addressing))
	builder.AddWord(uint32(memory))
	inst := builder.Build(OpMemoryModel)
	b.memoryModel = &inst
}

// SetSourceFile records the module origin: an OpString holding name
// followed by an OpSource referencing it. The recompiler passes the
// shader content hash here.
func (b *ModuleBuilder) SetSourceFile(name string) uint32 {
	fileID := b.AddString(name)
	builder := NewInstructionBuilder()
	builder.AddWord(uint32(SourceLanguageUnknown))
	builder.AddWord(0)
	builder.AddWord(fileID)
	b.debugStrings = append(b.debugStrings, builder.Build(OpSource))
	return fileID
}

// AddSourceExtension records an OpSourceExtension string.
func (b *ModuleBuilder) AddSourceExtension(ext string) {
	builder := NewInstructionBuilder()
	builder.AddString(ext)
	b.debugStrings = append(b.debugStrings, builder.Build(OpSourceExtension))
}

// AddEntryPoint declares an entry point and its interface variables.
func (b *ModuleBuilder) AddEntryPoint(execModel ExecutionModel, funcID uint32, name string, interfaces ...uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(uint32(execModel))
	builder.AddWord(funcID)
	builder.AddString(name)
	for _, iface := range interfaces {
		builder.AddWord(iface)
	}
	b.entryPoints = append(b.entryPoints, builder.Build(OpEntryPoint))
}

// AddExecutionMode adds an execution mode for an entry point.
func (b *ModuleBuilder) AddExecutionMode(entryPoint uint32, mode ExecutionMode, params ...uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(entryPoint)
	builder.AddWord(uint32(mode))
	for _, param := range params {
		builder.AddWord(param)
	}
	b.executionModes = append(b.executionModes, builder.Build(OpExecutionMode))
}

// AddString adds a debug string and returns its ID.
func (b *ModuleBuilder) AddString(text string) uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddString(text)
	b.debugStrings = append(b.debugStrings, builder.Build(OpString))
	return id
}

// AddName attaches a debug name to an ID.
func (b *ModuleBuilder) AddName(id uint32, name string) {
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddString(name)
	b.debugNames = append(b.debugNames, builder.Build(OpName))
}

// AddMemberName attaches a debug name to a struct member.
func (b *ModuleBuilder) AddMemberName(structID, member uint32, name string) {
	builder := NewInstructionBuilder()
	builder.AddWord(structID)
	builder.AddWord(member)
	builder.AddString(name)
	b.debugNames = append(b.debugNames, builder.Build(OpMemberName))
}

// AddDecorate adds a decoration.
func (b *ModuleBuilder) AddDecorate(id uint32, decoration Decoration, params ...uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddWord(uint32(decoration))
	for _, param := range params {
		builder.AddWord(param)
	}
	b.annotations = append(b.annotations, builder.Build(OpDecorate))
}

func (b *ModuleBuilder) memoType(key string, build func(id uint32) Instruction) uint32 {
	if id, ok := b.typeIDs[key]; ok {
		return id
	}
	id := b.AllocID()
	b.types = append(b.types, build(id))
	b.typeIDs[key] = id
	return id
}

// AddTypeVoid returns the OpTypeVoid ID.
func (b *ModuleBuilder) AddTypeVoid() uint32 {
	return b.memoType("void", func(id uint32) Instruction {
		builder := NewInstructionBuilder()
		builder.AddWord(id)
		return builder.Build(OpTypeVoid)
	})
}

// AddTypeBool returns the OpTypeBool ID.
func (b *ModuleBuilder) AddTypeBool() uint32 {
	return b.memoType("bool", func(id uint32) Instruction {
		builder := NewInstructionBuilder()
		builder.AddWord(id)
		return builder.Build(OpTypeBool)
	})
}

// AddTypeFloat returns the OpTypeFloat ID for the given bit width.
func (b *ModuleBuilder) AddTypeFloat(width uint32) uint32 {
	return b.memoType(fmt.Sprintf("f%d", width), func(id uint32) Instruction {
		builder := NewInstructionBuilder()
		builder.AddWord(id)
		builder.AddWord(width)
		return builder.Build(OpTypeFloat)
	})
}

// AddTypeInt returns the OpTypeInt ID for the given width and
// signedness. Widths below 32 declare their required capability.
func (b *ModuleBuilder) AddTypeInt(width uint32, signed bool) uint32 {
	key := fmt.Sprintf("u%d", width)
	signedWord := uint32(0)
	if signed {
		key = fmt.Sprintf("i%d", width)
		signedWord = 1
	}
	if _, ok := b.typeIDs[key]; !ok {
		switch width {
		case 8:
			b.AddCapability(CapabilityInt8)
		case 16:
			b.AddCapability(CapabilityInt16)
		}
	}
	return b.memoType(key, func(id uint32) Instruction {
		builder := NewInstructionBuilder()
		builder.AddWord(id)
		builder.AddWord(width)
		builder.AddWord(signedWord)
		return builder.Build(OpTypeInt)
	})
}

// AddTypeVector returns the OpTypeVector ID.
func (b *ModuleBuilder) AddTypeVector(componentType uint32, count uint32) uint32 {
	return b.memoType(fmt.Sprintf("v%d:%d", count, componentType), func(id uint32) Instruction {
		builder := NewInstructionBuilder()
		builder.AddWord(id)
		builder.AddWord(componentType)
		builder.AddWord(count)
		return builder.Build(OpTypeVector)
	})
}

// AddTypeMatrix returns the OpTypeMatrix ID.
func (b *ModuleBuilder) AddTypeMatrix(columnType uint32, columnCount uint32) uint32 {
	return b.memoType(fmt.Sprintf("m%d:%d", columnCount, columnType), func(id uint32) Instruction {
		builder := NewInstructionBuilder()
		builder.AddWord(id)
		builder.AddWord(columnType)
		builder.AddWord(columnCount)
		return builder.Build(OpTypeMatrix)
	})
}

// AddTypeImage returns the OpTypeImage ID.
func (b *ModuleBuilder) AddTypeImage(sampledType uint32, dim Dim, depth, arrayed, multisampled bool, sampled uint32, format ImageFormat) uint32 {
	boolWord := func(v bool) uint32 {
		if v {
			return 1
		}
		return 0
	}
	key := fmt.Sprintf("img%d:%d:%d%d%d:%d:%d", sampledType, dim, boolWord(depth), boolWord(arrayed), boolWord(multisampled), sampled, format)
	return b.memoType(key, func(id uint32) Instruction {
		builder := NewInstructionBuilder()
		builder.AddWord(id)
		builder.AddWord(sampledType)
		builder.AddWord(uint32(dim))
		builder.AddWord(boolWord(depth))
		builder.AddWord(boolWord(arrayed))
		builder.AddWord(boolWord(multisampled))
		builder.AddWord(sampled)
		builder.AddWord(uint32(format))
		return builder.Build(OpTypeImage)
	})
}

// AddTypeSampledImage returns the OpTypeSampledImage ID.
func (b *ModuleBuilder) AddTypeSampledImage(imageType uint32) uint32 {
	return b.memoType(fmt.Sprintf("simg%d", imageType), func(id uint32) Instruction {
		builder := NewInstructionBuilder()
		builder.AddWord(id)
		builder.AddWord(imageType)
		return builder.Build(OpTypeSampledImage)
	})
}

// AddTypePointer returns the OpTypePointer ID.
func (b *ModuleBuilder) AddTypePointer(storageClass StorageClass, baseType uint32) uint32 {
	return b.memoType(fmt.Sprintf("p%d:%d", storageClass, baseType), func(id uint32) Instruction {
		builder := NewInstructionBuilder()
		builder.AddWord(id)
		builder.AddWord(uint32(storageClass))
		builder.AddWord(baseType)
		return builder.Build(OpTypePointer)
	})
}

// AddTypeFunction returns the OpTypeFunction ID.
func (b *ModuleBuilder) AddTypeFunction(returnType uint32, paramTypes ...uint32) uint32 {
	key := fmt.Sprintf("fn%d:%v", returnType, paramTypes)
	return b.memoType(key, func(id uint32) Instruction {
		builder := NewInstructionBuilder()
		builder.AddWord(id)
		builder.AddWord(returnType)
		for _, paramType := range paramTypes {
			builder.AddWord(paramType)
		}
		return builder.Build(OpTypeFunction)
	})
}

// AddTypeStruct adds a new OpTypeStruct. Struct types are not
// memoized; every call declares a distinct type.
func (b *ModuleBuilder) AddTypeStruct(memberTypes ...uint32) uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	for _, memberType := range memberTypes {
		builder.AddWord(memberType)
	}
	b.types = append(b.types, builder.Build(OpTypeStruct))
	return id
}

// AddConstant returns the OpConstant ID for the given type and words.
func (b *ModuleBuilder) AddConstant(typeID uint32, values ...uint32) uint32 {
	key := fmt.Sprintf("c%d:%v", typeID, values)
	if id, ok := b.constIDs[key]; ok {
		return id
	}
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(typeID)
	builder.AddWord(id)
	for _, value := range values {
		builder.AddWord(value)
	}
	b.types = append(b.types, builder.Build(OpConstant))
	b.constIDs[key] = id
	return id
}

// AddConstantFloat32 returns the ID of a 32-bit float constant.
func (b *ModuleBuilder) AddConstantFloat32(typeID uint32, value float32) uint32 {
	return b.AddConstant(typeID, math.Float32bits(value))
}

// AddConstantComposite returns the OpConstantComposite ID.
func (b *ModuleBuilder) AddConstantComposite(typeID uint32, constituents ...uint32) uint32 {
	key := fmt.Sprintf("cc%d:%v", typeID, constituents)
	if id, ok := b.constIDs[key]; ok {
		return id
	}
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(typeID)
	builder.AddWord(id)
	for _, constituent := range constituents {
		builder.AddWord(constituent)
	}
	b.types = append(b.types, builder.Build(OpConstantComposite))
	b.constIDs[key] = id
	return id
}

// AddVariable declares a variable of the given storage class and
// content type, creating the pointer type as needed. Function-storage
// variables are placed in the current function body; anything else
// goes to the module-scope section. A non-empty name is attached as a
// debug name: downstream GLSL generation resolves identifiers through
// these, so they are emitted regardless of any debug option.
func (b *ModuleBuilder) AddVariable(storageClass StorageClass, typeID uint32, name string) uint32 {
	pointerType := b.AddTypePointer(storageClass, typeID)
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(pointerType)
	builder.AddWord(id)
	builder.AddWord(uint32(storageClass))
	inst := builder.Build(OpVariable)
	if storageClass == StorageClassFunction {
		if !b.inFunction {
			b.diag("function-storage variable %q declared outside a function", name)
		}
		b.functions = append(b.functions, inst)
	} else {
		b.globalVars = append(b.globalVars, inst)
	}
	if name != "" {
		b.AddName(id, name)
	}
	return id
}

// AddFunction opens a function definition.
func (b *ModuleBuilder) AddFunction(funcType uint32, returnType uint32, control FunctionControl) uint32 {
	if b.inFunction {
		b.diag("function opened while previous function is unterminated")
	}
	b.inFunction = true
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(returnType)
	builder.AddWord(id)
	builder.AddWord(uint32(control))
	builder.AddWord(funcType)
	b.functions = append(b.functions, builder.Build(OpFunction))
	return id
}

// AddLabel starts a new block.
func (b *ModuleBuilder) AddLabel() uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	b.functions = append(b.functions, builder.Build(OpLabel))
	return id
}

// AddReturn adds OpReturn.
func (b *ModuleBuilder) AddReturn() {
	builder := NewInstructionBuilder()
	b.functions = append(b.functions, builder.Build(OpReturn))
}

// AddFunctionEnd closes the current function definition.
func (b *ModuleBuilder) AddFunctionEnd() {
	if !b.inFunction {
		b.diag("function end without an open function")
	}
	b.inFunction = false
	builder := NewInstructionBuilder()
	b.functions = append(b.functions, builder.Build(OpFunctionEnd))
}

// AddBinaryOp adds a binary operation instruction.
func (b *ModuleBuilder) AddBinaryOp(opcode OpCode, resultType uint32, left uint32, right uint32) uint32 {
	resultID := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(resultType)
	builder.AddWord(resultID)
	builder.AddWord(left)
	builder.AddWord(right)
	b.functions = append(b.functions, builder.Build(opcode))
	return resultID
}

// AddLoad adds OpLoad.
func (b *ModuleBuilder) AddLoad(resultType uint32, pointer uint32) uint32 {
	resultID := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(resultType)
	builder.AddWord(resultID)
	builder.AddWord(pointer)
	b.functions = append(b.functions, builder.Build(OpLoad))
	return resultID
}

// AddStore adds OpStore.
func (b *ModuleBuilder) AddStore(pointer uint32, value uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(pointer)
	builder.AddWord(value)
	b.functions = append(b.functions, builder.Build(OpStore))
}

// AddCompositeConstruct adds OpCompositeConstruct.
func (b *ModuleBuilder) AddCompositeConstruct(resultType uint32, constituents ...uint32) uint32 {
	resultID := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(resultType)
	builder.AddWord(resultID)
	for _, constituent := range constituents {
		builder.AddWord(constituent)
	}
	b.functions = append(b.functions, builder.Build(OpCompositeConstruct))
	return resultID
}

// AddCompositeExtract adds OpCompositeExtract.
func (b *ModuleBuilder) AddCompositeExtract(resultType uint32, composite uint32, indexes ...uint32) uint32 {
	resultID := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(resultType)
	builder.AddWord(resultID)
	builder.AddWord(composite)
	for _, index := range indexes {
		builder.AddWord(index)
	}
	b.functions = append(b.functions, builder.Build(OpCompositeExtract))
	return resultID
}

// AddVectorShuffle adds OpVectorShuffle for vector swizzle operations.
func (b *ModuleBuilder) AddVectorShuffle(resultType uint32, vec1 uint32, vec2 uint32, components ...uint32) uint32 {
	resultID := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(resultType)
	builder.AddWord(resultID)
	builder.AddWord(vec1)
	builder.AddWord(vec2)
	for _, component := range components {
		builder.AddWord(component)
	}
	b.functions = append(b.functions, builder.Build(OpVectorShuffle))
	return resultID
}

// AddSelect adds OpSelect.
func (b *ModuleBuilder) AddSelect(resultType uint32, condition uint32, accept uint32, reject uint32) uint32 {
	resultID := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(resultType)
	builder.AddWord(resultID)
	builder.AddWord(condition)
	builder.AddWord(accept)
	builder.AddWord(reject)
	b.functions = append(b.functions, builder.Build(OpSelect))
	return resultID
}

// AddImageSampleImplicitLod adds OpImageSampleImplicitLod.
func (b *ModuleBuilder) AddImageSampleImplicitLod(resultType uint32, sampledImage uint32, coordinate uint32) uint32 {
	resultID := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(resultType)
	builder.AddWord(resultID)
	builder.AddWord(sampledImage)
	builder.AddWord(coordinate)
	b.functions = append(b.functions, builder.Build(OpImageSampleImplicitLod))
	return resultID
}

// AddExtInst adds OpExtInst for an extended-set instruction.
func (b *ModuleBuilder) AddExtInst(resultType uint32, extSet uint32, instruction GLSLstd450, operands ...uint32) uint32 {
	resultID := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(resultType)
	builder.AddWord(resultID)
	builder.AddWord(extSet)
	builder.AddWord(uint32(instruction))
	for _, operand := range operands {
		builder.AddWord(operand)
	}
	b.functions = append(b.functions, builder.Build(OpExtInst))
	return resultID
}

// Build generates the final SPIR-V binary. Structural problems are
// recorded as diagnostics rather than aborting; callers that care
// should check Diagnostics afterwards.
func (b *ModuleBuilder) Build() []byte {
	b.bound = b.nextID

	if b.memoryModel == nil {
		b.diag("module has no memory model")
	}
	if len(b.entryPoints) == 0 {
		b.diag("module has no entry point")
	}
	if b.inFunction {
		b.diag("module ends inside an unterminated function")
	}

	totalWords := 5 // header
	totalWords += countWords(b.capabilities)
	totalWords += countWords(b.extensions)
	totalWords += countWords(b.extInstImports)
	if b.memoryModel != nil {
		totalWords += len(b.memoryModel.Encode())
	}
	totalWords += countWords(b.entryPoints)
	totalWords += countWords(b.executionModes)
	totalWords += countWords(b.debugStrings)
	totalWords += countWords(b.debugNames)
	totalWords += countWords(b.annotations)
	totalWords += countWords(b.types)
	totalWords += countWords(b.globalVars)
	totalWords += countWords(b.functions)

	buffer := make([]byte, totalWords*4)
	offset := 0

	binary.LittleEndian.PutUint32(buffer[offset:], MagicNumber)
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], versionToWord(b.version))
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], b.generator)
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], b.bound)
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], b.schema)
	offset += 4

	offset = writeInstructions(buffer, offset, b.capabilities)
	offset = writeInstructions(buffer, offset, b.extensions)
	offset = writeInstructions(buffer, offset, b.extInstImports)
	if b.memoryModel != nil {
		offset = writeInstruction(buffer, offset, *b.memoryModel)
	}
	offset = writeInstructions(buffer, offset, b.entryPoints)
	offset = writeInstructions(buffer, offset, b.executionModes)
	offset = writeInstructions(buffer, offset, b.debugStrings)
	offset = writeInstructions(buffer, offset, b.debugNames)
	offset = writeInstructions(buffer, offset, b.annotations)
	offset = writeInstructions(buffer, offset, b.types)
	offset = writeInstructions(buffer, offset, b.globalVars)
	_ = writeInstructions(buffer, offset, b.functions)

	return buffer
}

// countWords counts total words in instructions.
func countWords(instructions []Instruction) int {
	count := 0
	for _, inst := range instructions {
		count += len(inst.Words) + 1
	}
	return count
}

// writeInstructions writes instructions to buffer.
func writeInstructions(buffer []byte, offset int, instructions []Instruction) int {
	for _, inst := range instructions {
		offset = writeInstruction(buffer, offset, inst)
	}
	return offset
}

// writeInstruction writes a single instruction to buffer.
func writeInstruction(buffer []byte, offset int, inst Instruction) int {
	words := inst.Encode()
	for _, word := range words {
		binary.LittleEndian.PutUint32(buffer[offset:], word)
		offset += 4
	}
	return offset
}

// versionToWord converts Version to SPIR-V word format.
func versionToWord(v Version) uint32 {
	return (uint32(v.Major) << 16) | (uint32(v.Minor) << 8)
}
