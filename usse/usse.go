package usse

import "fmt"

// RegisterBank identifies which register file an operand addresses.
type RegisterBank uint8

const (
	BankTemp RegisterBank = iota
	BankPrimAttr
	BankOutput
	BankSecAttr
	BankFPInternal
	BankSpecial
	BankGlobal
	BankFPConstant
	BankImmediate
	BankIndex
	BankIndexed

	BankInvalid
)

var bankNames = [...]string{
	BankTemp:       "temp",
	BankPrimAttr:   "primattr",
	BankOutput:     "output",
	BankSecAttr:    "secattr",
	BankFPInternal: "fpinternal",
	BankSpecial:    "special",
	BankGlobal:     "global",
	BankFPConstant: "fpconstant",
	BankImmediate:  "immediate",
	BankIndex:      "index",
	BankIndexed:    "indexed",
	BankInvalid:    "invalid",
}

func (b RegisterBank) String() string {
	if int(b) < len(bankNames) {
		return bankNames[b]
	}
	return fmt.Sprintf("bank(%d)", uint8(b))
}

// SwizzleChannel selects what a source lane reads: a register
// component or one of the inline constants.
type SwizzleChannel uint8

const (
	ChannelX SwizzleChannel = iota
	ChannelY
	ChannelZ
	ChannelW
	ChannelZero
	ChannelOne
	ChannelHalf
	ChannelUndefined
)

// Component returns true when the channel selects a register
// component rather than an inline constant.
func (c SwizzleChannel) Component() bool {
	return c <= ChannelW
}

func (c SwizzleChannel) char() byte {
	switch c {
	case ChannelX:
		return 'x'
	case ChannelY:
		return 'y'
	case ChannelZ:
		return 'z'
	case ChannelW:
		return 'w'
	case ChannelZero:
		return '0'
	case ChannelOne:
		return '1'
	case ChannelHalf:
		return 'h'
	default:
		return '?'
	}
}

// Swizzle3 is a three-channel swizzle.
type Swizzle3 [3]SwizzleChannel

// Swizzle4 is a four-channel swizzle.
type Swizzle4 [4]SwizzleChannel

var (
	SwizzleIdentity4  = Swizzle4{ChannelX, ChannelY, ChannelZ, ChannelW}
	SwizzleUndefined4 = Swizzle4{ChannelUndefined, ChannelUndefined, ChannelUndefined, ChannelUndefined}
)

// ToSwizzle4 widens a three-channel swizzle, filling the last lane
// with X.
func ToSwizzle4(sw Swizzle3) Swizzle4 {
	return Swizzle4{sw[0], sw[1], sw[2], ChannelX}
}

// IsDefault reports whether the first length channels form the
// identity pattern xyzw.
func (s Swizzle4) IsDefault(length int) bool {
	res := true
	if length >= 4 && s[3] != ChannelW {
		res = false
	}
	if length >= 3 && s[2] != ChannelZ {
		res = false
	}
	if length >= 2 && s[1] != ChannelY {
		res = false
	}
	if length >= 1 && s[0] != ChannelX {
		res = false
	}
	return res
}

func (s Swizzle4) String() string {
	return string([]byte{s[0].char(), s[1].char(), s[2].char(), s[3].char()})
}

// ExtPredicate is the extended predicate field controlling whether an
// instruction executes.
type ExtPredicate uint8

const (
	PredNone ExtPredicate = iota
	PredP0
	PredP1
	PredP2
	PredP3
	PredNegP0
	PredNegP1
	PredPN
)

var predicateNames = [...]string{
	PredNone:  "",
	PredP0:    "p0",
	PredP1:    "p1",
	PredP2:    "p2",
	PredP3:    "p3",
	PredNegP0: "!p0",
	PredNegP1: "!p1",
	PredPN:    "pN",
}

func (p ExtPredicate) String() string {
	if int(p) < len(predicateNames) {
		return predicateNames[p]
	}
	return "invalid"
}

// RepeatCount is the hardware repeat field. Values above REPEAT_0 ask
// for the instruction to be re-run over consecutive register windows.
type RepeatCount uint8

const (
	Repeat0 RepeatCount = iota
	Repeat1
	Repeat2
	Repeat3
)

// MoveDataType is the element type field of the move family.
type MoveDataType uint8

const (
	DataTypeInt8 MoveDataType = iota
	DataTypeInt16
	DataTypeInt32
	DataTypeC10
	DataTypeF16
	DataTypeF32
)

var dataTypeNames = [...]string{
	DataTypeInt8:  "i8",
	DataTypeInt16: "i16",
	DataTypeInt32: "i32",
	DataTypeC10:   "c10",
	DataTypeF16:   "f16",
	DataTypeF32:   "f32",
}

func (t MoveDataType) String() string {
	if int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return "invalid"
}

// Opcode identifies an instruction. The zero value is the INVALID
// sentinel produced for unrecognized wire values.
type Opcode uint8

const (
	OpInvalid Opcode = iota
	OpNOP
	OpVMOV
	OpVMOVC
	OpVMOVCU8
	OpVADD
	OpVMUL
	OpVMAD
	OpVDP
	OpVMIN
	OpVMAX
	OpVFRC
	OpVRCP
	OpVRSQ
	OpVLOG
	OpVEXP
	OpSMP
	OpBR
	OpBA
	OpPHAS
	OpSPEC

	numOpcodes
)

type opcodeInfo struct {
	name     string
	sources  int
	hasDest  bool
	dataType bool
}

var opcodeTable = [numOpcodes]opcodeInfo{
	OpInvalid: {name: "INVALID"},
	OpNOP:     {name: "NOP"},
	OpVMOV:    {name: "VMOV", sources: 1, hasDest: true, dataType: true},
	OpVMOVC:   {name: "VMOVC", sources: 3, hasDest: true, dataType: true},
	OpVMOVCU8: {name: "VMOVCU8", sources: 3, hasDest: true, dataType: true},
	OpVADD:    {name: "VADD", sources: 2, hasDest: true},
	OpVMUL:    {name: "VMUL", sources: 2, hasDest: true},
	OpVMAD:    {name: "VMAD", sources: 3, hasDest: true},
	OpVDP:     {name: "VDP", sources: 2, hasDest: true},
	OpVMIN:    {name: "VMIN", sources: 2, hasDest: true},
	OpVMAX:    {name: "VMAX", sources: 2, hasDest: true},
	OpVFRC:    {name: "VFRC", sources: 1, hasDest: true},
	OpVRCP:    {name: "VRCP", sources: 1, hasDest: true},
	OpVRSQ:    {name: "VRSQ", sources: 1, hasDest: true},
	OpVLOG:    {name: "VLOG", sources: 1, hasDest: true},
	OpVEXP:    {name: "VEXP", sources: 1, hasDest: true},
	OpSMP:     {name: "SMP", sources: 2, hasDest: true},
	OpBR:      {name: "BR"},
	OpBA:      {name: "BA"},
	OpPHAS:    {name: "PHAS"},
	OpSPEC:    {name: "SPEC"},
}

func (o Opcode) String() string {
	if o < numOpcodes {
		return opcodeTable[o].name
	}
	return fmt.Sprintf("opcode(%d)", uint8(o))
}

// Valid reports whether the opcode names a real instruction.
func (o Opcode) Valid() bool {
	return o > OpInvalid && o < numOpcodes
}

// SourceCount returns how many source operands the instruction reads.
func (o Opcode) SourceCount() int {
	if o < numOpcodes {
		return opcodeTable[o].sources
	}
	return 0
}

// HasDest reports whether the instruction writes a destination.
func (o Opcode) HasDest() bool {
	return o < numOpcodes && opcodeTable[o].hasDest
}

// HasDataType reports whether the instruction carries the move
// family's element type field.
func (o Opcode) HasDataType() bool {
	return o < numOpcodes && opcodeTable[o].dataType
}

// Operand is a register reference. WriteMask is meaningful on
// destinations only; a zero mask means every component of the backing
// record.
type Operand struct {
	Bank      RegisterBank
	Num       uint8
	Swizzle   Swizzle4
	WriteMask uint8
}

// Instruction is one decoded USSE instruction. Unused source slots
// keep their zero value.
type Instruction struct {
	Opcode   Opcode
	Dest     Operand
	Src0     Operand
	Src1     Operand
	Src2     Operand
	Pred     ExtPredicate
	Repeat   RepeatCount
	DataType MoveDataType
}

// Sources returns the populated source operands in slot order.
func (i *Instruction) Sources() []Operand {
	all := [3]Operand{i.Src0, i.Src1, i.Src2}
	return all[:i.Opcode.SourceCount()]
}
