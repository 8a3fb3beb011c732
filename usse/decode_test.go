package usse

import (
	"encoding/binary"
	"testing"
)

func TestDecode_RoundTrip(t *testing.T) {
	cases := []struct {
		name string
		inst Instruction
	}{
		{
			name: "vmov",
			inst: Instruction{
				Opcode:   OpVMOV,
				DataType: DataTypeF32,
				Dest: Operand{
					Bank:      BankOutput,
					Num:       0,
					Swizzle:   SwizzleIdentity4,
					WriteMask: 0xF,
				},
				Src0: Operand{
					Bank:    BankPrimAttr,
					Num:     4,
					Swizzle: SwizzleIdentity4,
				},
			},
		},
		{
			name: "predicated vmad",
			inst: Instruction{
				Opcode: OpVMAD,
				Pred:   PredNegP0,
				Repeat: Repeat2,
				Dest: Operand{
					Bank:      BankTemp,
					Num:       3,
					Swizzle:   SwizzleIdentity4,
					WriteMask: 0x7,
				},
				Src0: Operand{
					Bank:    BankPrimAttr,
					Num:     63,
					Swizzle: Swizzle4{ChannelW, ChannelZ, ChannelY, ChannelX},
				},
				Src1: Operand{
					Bank:    BankSecAttr,
					Num:     17,
					Swizzle: Swizzle4{ChannelZero, ChannelOne, ChannelHalf, ChannelUndefined},
				},
				Src2: Operand{
					Bank:    BankFPInternal,
					Num:     2,
					Swizzle: Swizzle4{ChannelX, ChannelX, ChannelX, ChannelX},
				},
			},
		},
		{
			name: "nop",
			inst: Instruction{
				Opcode: OpNOP,
				Dest:   Operand{Swizzle: SwizzleIdentity4},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enc := EncodeInstruction(tc.inst)
			got, err := DecodeInstruction(enc[:])
			if err != nil {
				t.Fatalf("DecodeInstruction failed: %v", err)
			}
			if got != tc.inst {
				t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", got, tc.inst)
			}
		})
	}
}

func TestDecode_Program(t *testing.T) {
	insts := []Instruction{
		{
			Opcode:   OpVMOV,
			DataType: DataTypeF32,
			Dest:     Operand{Bank: BankTemp, Num: 1, Swizzle: SwizzleIdentity4, WriteMask: 0xF},
			Src0:     Operand{Bank: BankPrimAttr, Num: 0, Swizzle: SwizzleIdentity4},
		},
		{
			Opcode: OpVADD,
			Dest:   Operand{Bank: BankOutput, Num: 0, Swizzle: SwizzleIdentity4, WriteMask: 0x3},
			Src0:   Operand{Bank: BankTemp, Num: 1, Swizzle: SwizzleIdentity4},
			Src1:   Operand{Bank: BankSecAttr, Num: 0, Swizzle: SwizzleIdentity4},
		},
	}

	code := Encode(insts)
	if len(code) != 2*InstructionSize {
		t.Fatalf("Encoded size: got %d, want %d", len(code), 2*InstructionSize)
	}

	got, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(got) != len(insts) {
		t.Fatalf("Instruction count: got %d, want %d", len(got), len(insts))
	}
	for i := range insts {
		if got[i] != insts[i] {
			t.Errorf("Instruction %d mismatch:\n got %+v\nwant %+v", i, got[i], insts[i])
		}
	}
}

func TestDecode_InvalidOpcode(t *testing.T) {
	// Wire opcode 0 is the INVALID sentinel.
	zero := make([]byte, InstructionSize)
	inst, err := DecodeInstruction(zero)
	if err != nil {
		t.Fatalf("DecodeInstruction failed: %v", err)
	}
	if inst.Opcode != OpInvalid {
		t.Errorf("Zero opcode: got %v, want INVALID", inst.Opcode)
	}

	// Values past the opcode table decode to INVALID too.
	data := make([]byte, InstructionSize)
	binary.LittleEndian.PutUint64(data[0:8], uint64(200)<<opcodeShift)
	inst, err = DecodeInstruction(data)
	if err != nil {
		t.Fatalf("DecodeInstruction failed: %v", err)
	}
	if inst.Opcode != OpInvalid {
		t.Errorf("Out-of-table opcode: got %v, want INVALID", inst.Opcode)
	}
}

func TestDecode_InvalidBank(t *testing.T) {
	for raw := uint64(11); raw <= 15; raw++ {
		data := make([]byte, InstructionSize)
		binary.LittleEndian.PutUint64(data[0:8], uint64(OpNOP)<<opcodeShift|raw<<destBankShift)
		inst, err := DecodeInstruction(data)
		if err != nil {
			t.Fatalf("DecodeInstruction failed: %v", err)
		}
		if inst.Dest.Bank != BankInvalid {
			t.Errorf("Bank value %d: got %v, want invalid", raw, inst.Dest.Bank)
		}
	}

	// Every in-range value maps to its own bank.
	data := make([]byte, InstructionSize)
	binary.LittleEndian.PutUint64(data[0:8], uint64(OpNOP)<<opcodeShift|uint64(BankIndexed)<<destBankShift)
	inst, err := DecodeInstruction(data)
	if err != nil {
		t.Fatalf("DecodeInstruction failed: %v", err)
	}
	if inst.Dest.Bank != BankIndexed {
		t.Errorf("Bank value %d: got %v, want indexed", BankIndexed, inst.Dest.Bank)
	}
}

func TestDecode_DestSwizzleIsIdentity(t *testing.T) {
	data := make([]byte, InstructionSize)
	binary.LittleEndian.PutUint64(data[0:8], uint64(OpVMOV)<<opcodeShift)
	inst, err := DecodeInstruction(data)
	if err != nil {
		t.Fatalf("DecodeInstruction failed: %v", err)
	}
	if inst.Dest.Swizzle != SwizzleIdentity4 {
		t.Errorf("Dest swizzle: got %v, want identity", inst.Dest.Swizzle)
	}
}

func TestDecode_SizeErrors(t *testing.T) {
	if _, err := Decode(make([]byte, 15)); err == nil {
		t.Error("Expected error for non-multiple code size")
	}
	if _, err := Decode(make([]byte, 17)); err == nil {
		t.Error("Expected error for non-multiple code size")
	}
	if _, err := DecodeInstruction(make([]byte, 8)); err == nil {
		t.Error("Expected error for truncated instruction")
	}

	// Empty programs are fine.
	insts, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode of empty code failed: %v", err)
	}
	if len(insts) != 0 {
		t.Errorf("Empty code: got %d instructions, want 0", len(insts))
	}
}
