package translate

import "github.com/gogpu/gxp/usse"

// Var identifies one SPIR-V variable together with the shape of its
// value type. Components is the lane count for scalar and vector
// records and zero for anything lane arithmetic cannot address
// directly, such as structs, matrices and samplers.
type Var struct {
	TypeID     uint32
	ID         uint32
	Components uint32
}

// Reg is one allocated record of a register bank. Offset and Size are
// in register units, so a vec4 record spans four consecutive register
// indices.
type Reg struct {
	Var
	Offset uint32
	Size   uint32
}

// Bank tracks the variable records of one register file in
// allocation order. Records are packed: each new record starts where
// the previous one ended.
type Bank struct {
	vars       []Reg
	nextOffset uint32
}

// Push appends a record of the given size at the next free offset.
func (b *Bank) Push(v Var, size uint32) {
	b.vars = append(b.vars, Reg{Var: v, Offset: b.nextOffset, Size: size})
	b.nextOffset += size
}

// Find returns the record whose register range contains index, along
// with the component offset of index inside that record.
func (b *Bank) Find(index uint32) (Reg, uint32, bool) {
	for _, reg := range b.vars {
		if index >= reg.Offset && index < reg.Offset+reg.Size {
			return reg, index - reg.Offset, true
		}
	}
	return Reg{}, 0, false
}

// Vars returns the records in allocation order.
func (b *Bank) Vars() []Reg {
	return b.vars
}

// Size returns the total number of register units allocated.
func (b *Bank) Size() uint32 {
	var total uint32
	for _, reg := range b.vars {
		total += reg.Size
	}
	return total
}

// Parameters holds the variable banks produced by CreateParameters,
// one per register file the recompiler allocates.
type Parameters struct {
	Ins       Bank // primary attributes
	Uniforms  Bank // secondary attributes
	Temps     Bank
	Internals Bank
	Outs      Bank
}

// BankFor maps a register file to its variable bank. It returns nil
// for banks the recompiler does not allocate, such as immediates and
// indexed access.
func (p *Parameters) BankFor(bank usse.RegisterBank) *Bank {
	switch bank {
	case usse.BankTemp:
		return &p.Temps
	case usse.BankPrimAttr:
		return &p.Ins
	case usse.BankOutput:
		return &p.Outs
	case usse.BankSecAttr:
		return &p.Uniforms
	case usse.BankFPInternal:
		return &p.Internals
	default:
		return nil
	}
}
