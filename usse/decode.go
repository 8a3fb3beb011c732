package usse

import (
	"encoding/binary"
	"fmt"
)

// InstructionSize is the byte size of one encoded instruction: two
// little-endian 64-bit words.
const InstructionSize = 16

// Word 0 field positions.
const (
	opcodeShift   = 56 // 8 bits
	predShift     = 53 // 3 bits
	repeatShift   = 51 // 2 bits
	dataTypeShift = 48 // 3 bits
	destMaskShift = 44 // 4 bits
	destBankShift = 40 // 4 bits
	destNumShift  = 34 // 6 bits
	src0BankShift = 28 // 4 bits
	src0NumShift  = 22 // 6 bits
	src0SwizShift = 10 // 12 bits
)

// Word 1 field positions.
const (
	src1BankShift = 60
	src1NumShift  = 54
	src1SwizShift = 42
	src2BankShift = 38
	src2NumShift  = 32
	src2SwizShift = 20
)

// Decode decodes a complete instruction stream. Unrecognized opcodes
// decode to the INVALID sentinel rather than failing, so callers can
// report them with positions.
func Decode(code []byte) ([]Instruction, error) {
	if len(code)%InstructionSize != 0 {
		return nil, fmt.Errorf("code size %d is not a multiple of the %d-byte instruction size", len(code), InstructionSize)
	}
	insts := make([]Instruction, 0, len(code)/InstructionSize)
	for off := 0; off < len(code); off += InstructionSize {
		w0 := binary.LittleEndian.Uint64(code[off:])
		w1 := binary.LittleEndian.Uint64(code[off+8:])
		insts = append(insts, decodeWords(w0, w1))
	}
	return insts, nil
}

// DecodeInstruction decodes a single instruction from the first 16
// bytes of data.
func DecodeInstruction(data []byte) (Instruction, error) {
	if len(data) < InstructionSize {
		return Instruction{}, fmt.Errorf("instruction truncated: got %d bytes, need %d", len(data), InstructionSize)
	}
	w0 := binary.LittleEndian.Uint64(data[0:8])
	w1 := binary.LittleEndian.Uint64(data[8:16])
	return decodeWords(w0, w1), nil
}

func decodeWords(w0, w1 uint64) Instruction {
	inst := Instruction{
		Opcode:   decodeOpcode(bits(w0, opcodeShift, 8)),
		Pred:     ExtPredicate(bits(w0, predShift, 3)),
		Repeat:   RepeatCount(bits(w0, repeatShift, 2)),
		DataType: MoveDataType(bits(w0, dataTypeShift, 3)),
	}
	inst.Dest = Operand{
		Bank:      decodeBank(bits(w0, destBankShift, 4)),
		Num:       uint8(bits(w0, destNumShift, 6)),
		Swizzle:   SwizzleIdentity4,
		WriteMask: uint8(bits(w0, destMaskShift, 4)),
	}
	inst.Src0 = Operand{
		Bank:    decodeBank(bits(w0, src0BankShift, 4)),
		Num:     uint8(bits(w0, src0NumShift, 6)),
		Swizzle: decodeSwizzle(bits(w0, src0SwizShift, 12)),
	}
	inst.Src1 = Operand{
		Bank:    decodeBank(bits(w1, src1BankShift, 4)),
		Num:     uint8(bits(w1, src1NumShift, 6)),
		Swizzle: decodeSwizzle(bits(w1, src1SwizShift, 12)),
	}
	inst.Src2 = Operand{
		Bank:    decodeBank(bits(w1, src2BankShift, 4)),
		Num:     uint8(bits(w1, src2NumShift, 6)),
		Swizzle: decodeSwizzle(bits(w1, src2SwizShift, 12)),
	}
	return inst
}

// Encode encodes a full instruction stream, the inverse of Decode.
func Encode(insts []Instruction) []byte {
	out := make([]byte, 0, len(insts)*InstructionSize)
	for i := range insts {
		enc := EncodeInstruction(insts[i])
		out = append(out, enc[:]...)
	}
	return out
}

// EncodeInstruction encodes inst into its 16-byte wire form. The
// destination swizzle has no wire field and is dropped; Decode
// restores it as the identity.
func EncodeInstruction(inst Instruction) [InstructionSize]byte {
	w0 := uint64(inst.Opcode)&0xFF<<opcodeShift |
		uint64(inst.Pred)&0x7<<predShift |
		uint64(inst.Repeat)&0x3<<repeatShift |
		uint64(inst.DataType)&0x7<<dataTypeShift |
		uint64(inst.Dest.WriteMask)&0xF<<destMaskShift |
		uint64(inst.Dest.Bank)&0xF<<destBankShift |
		uint64(inst.Dest.Num)&0x3F<<destNumShift |
		uint64(inst.Src0.Bank)&0xF<<src0BankShift |
		uint64(inst.Src0.Num)&0x3F<<src0NumShift |
		encodeSwizzle(inst.Src0.Swizzle)<<src0SwizShift

	w1 := uint64(inst.Src1.Bank)&0xF<<src1BankShift |
		uint64(inst.Src1.Num)&0x3F<<src1NumShift |
		encodeSwizzle(inst.Src1.Swizzle)<<src1SwizShift |
		uint64(inst.Src2.Bank)&0xF<<src2BankShift |
		uint64(inst.Src2.Num)&0x3F<<src2NumShift |
		encodeSwizzle(inst.Src2.Swizzle)<<src2SwizShift

	var out [InstructionSize]byte
	binary.LittleEndian.PutUint64(out[0:8], w0)
	binary.LittleEndian.PutUint64(out[8:16], w1)
	return out
}

func bits(w uint64, lo, n uint) uint32 {
	return uint32(w >> lo & (1<<n - 1))
}

func decodeOpcode(raw uint32) Opcode {
	if raw == 0 || raw >= uint32(numOpcodes) {
		return OpInvalid
	}
	return Opcode(raw)
}

func decodeBank(raw uint32) RegisterBank {
	if raw > uint32(BankIndexed) {
		return BankInvalid
	}
	return RegisterBank(raw)
}

func decodeSwizzle(raw uint32) Swizzle4 {
	var sw Swizzle4
	for i := range sw {
		sw[i] = SwizzleChannel(raw >> (3 * i) & 0x7)
	}
	return sw
}

func encodeSwizzle(sw Swizzle4) uint64 {
	var raw uint64
	for i, ch := range sw {
		raw |= uint64(ch) & 0x7 << (3 * i)
	}
	return raw
}
