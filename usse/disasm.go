package usse

import (
	"fmt"
	"strings"
)

var bankPrefixes = map[RegisterBank]string{
	BankPrimAttr:   "pa",
	BankSecAttr:    "sa",
	BankTemp:       "r",
	BankOutput:     "o",
	BankFPInternal: "i",
}

// operandString renders a register reference with the swizzle
// channels selected by mask. A zero mask suppresses the suffix.
func operandString(op Operand, mask uint8) string {
	prefix, ok := bankPrefixes[op.Bank]
	if !ok {
		prefix = "?"
	}
	if mask == 0 {
		return fmt.Sprintf("%s%d", prefix, op.Num)
	}
	var sw strings.Builder
	for i, ch := range op.Swizzle {
		if mask&(1<<i) != 0 {
			sw.WriteByte(ch.char())
		}
	}
	return fmt.Sprintf("%s%d.%s", prefix, op.Num, sw.String())
}

// DisassembleInstruction renders one instruction at the given byte
// address. Source swizzles are filtered by the destination write mask
// since those are the lanes the instruction actually reads.
func DisassembleInstruction(addr uint32, inst Instruction) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%08x: ", addr)
	if inst.Pred != PredNone {
		sb.WriteString(inst.Pred.String())
		sb.WriteByte(' ')
	}
	sb.WriteString(inst.Opcode.String())
	if inst.Opcode.HasDataType() {
		sb.WriteByte('.')
		sb.WriteString(inst.DataType.String())
	}
	if inst.Opcode.HasDest() {
		sb.WriteByte(' ')
		sb.WriteString(operandString(inst.Dest, inst.Dest.WriteMask))
	}
	for _, src := range inst.Sources() {
		sb.WriteByte(' ')
		sb.WriteString(operandString(src, inst.Dest.WriteMask))
	}
	return sb.String()
}

// Disassemble decodes and renders a whole instruction stream, one
// line per instruction.
func Disassemble(code []byte) (string, error) {
	insts, err := Decode(code)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for i := range insts {
		sb.WriteString(DisassembleInstruction(uint32(i*InstructionSize), insts[i]))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
