package translate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gxp/gxm"
	"github.com/gogpu/gxp/spirv"
	"github.com/gogpu/gxp/usse"
)

// ErrInvalidOpcode reports an instruction word whose opcode field does
// not decode to any known operation. Callers can detect it through
// errors.Is across the offset wrapping.
var ErrInvalidOpcode = errors.New("unrecognized opcode")

// Translate lowers the program's instruction stream to SPIR-V
// operations over the allocated variable banks. The builder must have
// an open function.
//
// An instruction the recompiler cannot resolve against the banks
// poisons everything emitted so far, so Translate returns an error
// instead of producing a partial body.
func Translate(b *spirv.ModuleBuilder, params *Parameters, program *gxm.Program, logger *slog.Logger) error {
	insts, err := usse.Decode(program.Code)
	if err != nil {
		return err
	}

	t := &translator{b: b, params: params, logger: logger, f32: b.AddTypeFloat(32)}
	for i := range insts {
		offset := uint32(i * usse.InstructionSize)
		if err := t.instruction(offset, &insts[i]); err != nil {
			return fmt.Errorf("instruction at %#x: %w", offset, err)
		}
	}
	return nil
}

type translator struct {
	b      *spirv.ModuleBuilder
	params *Parameters
	logger *slog.Logger
	f32    uint32
}

// regRef is a resolved operand: the record backing it and the
// component offset of the operand's register inside that record.
type regRef struct {
	reg        Reg
	compOffset uint32
}

// destination is a validated write target: the lane positions
// selected by the write mask and the packed type of the value those
// lanes carry.
type destination struct {
	ref   regRef
	lanes []uint32
	typ   uint32
}

func (t *translator) instruction(offset uint32, inst *usse.Instruction) error {
	if inst.Opcode == usse.OpInvalid {
		return ErrInvalidOpcode
	}
	if inst.Pred != usse.PredNone {
		t.logger.Warn("predicated instruction runs unconditionally", "pred", inst.Pred.String(), "offset", offset)
	}
	if inst.Repeat != usse.Repeat0 {
		t.logger.Warn("instruction repeat ignored", "count", int(inst.Repeat), "offset", offset)
	}

	switch inst.Opcode {
	case usse.OpNOP, usse.OpPHAS:
		// PHAS schedules hardware phases; there is nothing to express.
		return nil
	case usse.OpBR, usse.OpBA, usse.OpSPEC:
		t.logger.Warn("instruction not translated", "op", inst.Opcode.String(), "offset", offset)
		return nil
	case usse.OpVMOV:
		return t.move(inst)
	case usse.OpVMOVC, usse.OpVMOVCU8:
		return t.conditionalMove(inst)
	case usse.OpVADD:
		return t.binary(inst, spirv.OpFAdd)
	case usse.OpVMUL:
		return t.binary(inst, spirv.OpFMul)
	case usse.OpVMAD:
		return t.multiplyAdd(inst)
	case usse.OpVDP:
		return t.dotProduct(inst)
	case usse.OpVMIN:
		return t.extBinary(inst, spirv.GLSLstd450FMin)
	case usse.OpVMAX:
		return t.extBinary(inst, spirv.GLSLstd450FMax)
	case usse.OpVFRC:
		return t.extUnary(inst, spirv.GLSLstd450Fract)
	case usse.OpVRCP:
		return t.reciprocal(inst)
	case usse.OpVRSQ:
		return t.extUnary(inst, spirv.GLSLstd450InverseSqrt)
	case usse.OpVLOG:
		return t.extUnary(inst, spirv.GLSLstd450Log2)
	case usse.OpVEXP:
		return t.extUnary(inst, spirv.GLSLstd450Exp2)
	case usse.OpSMP:
		return t.sample(inst)
	default:
		return fmt.Errorf("opcode %s not handled", inst.Opcode)
	}
}

func (t *translator) move(inst *usse.Instruction) error {
	dest, err := t.destination(inst.Dest)
	if err != nil {
		return err
	}
	value, err := t.loadLanes(inst.Src0, dest.lanes)
	if err != nil {
		return err
	}
	t.storeDest(dest, value)
	return nil
}

// conditionalMove translates the VMOVC family as a component-wise
// select on src0 != 0. The u8 variant behaves identically while every
// bank holds f32 values.
func (t *translator) conditionalMove(inst *usse.Instruction) error {
	dest, err := t.destination(inst.Dest)
	if err != nil {
		return err
	}
	cond, err := t.loadLanes(inst.Src0, dest.lanes)
	if err != nil {
		return err
	}
	accept, err := t.loadLanes(inst.Src1, dest.lanes)
	if err != nil {
		return err
	}
	reject, err := t.loadLanes(inst.Src2, dest.lanes)
	if err != nil {
		return err
	}

	n := uint32(len(dest.lanes))
	boolType := t.b.AddTypeBool()
	if n > 1 {
		boolType = t.b.AddTypeVector(boolType, n)
	}
	notZero := t.b.AddBinaryOp(spirv.OpFOrdNotEqual, boolType, cond, t.splatConstant(0, n))
	t.storeDest(dest, t.b.AddSelect(dest.typ, notZero, accept, reject))
	return nil
}

func (t *translator) binary(inst *usse.Instruction, op spirv.OpCode) error {
	dest, err := t.destination(inst.Dest)
	if err != nil {
		return err
	}
	left, err := t.loadLanes(inst.Src0, dest.lanes)
	if err != nil {
		return err
	}
	right, err := t.loadLanes(inst.Src1, dest.lanes)
	if err != nil {
		return err
	}
	t.storeDest(dest, t.b.AddBinaryOp(op, dest.typ, left, right))
	return nil
}

func (t *translator) multiplyAdd(inst *usse.Instruction) error {
	dest, err := t.destination(inst.Dest)
	if err != nil {
		return err
	}
	a, err := t.loadLanes(inst.Src0, dest.lanes)
	if err != nil {
		return err
	}
	b, err := t.loadLanes(inst.Src1, dest.lanes)
	if err != nil {
		return err
	}
	c, err := t.loadLanes(inst.Src2, dest.lanes)
	if err != nil {
		return err
	}
	t.storeDest(dest, t.b.AddExtInst(dest.typ, t.glslImport(), spirv.GLSLstd450Fma, a, b, c))
	return nil
}

// dotProduct reduces the masked lanes of both sources to a scalar and
// broadcasts it across the destination lanes.
func (t *translator) dotProduct(inst *usse.Instruction) error {
	dest, err := t.destination(inst.Dest)
	if err != nil {
		return err
	}
	left, err := t.loadLanes(inst.Src0, dest.lanes)
	if err != nil {
		return err
	}
	right, err := t.loadLanes(inst.Src1, dest.lanes)
	if err != nil {
		return err
	}

	n := uint32(len(dest.lanes))
	if n == 1 {
		t.storeDest(dest, t.b.AddBinaryOp(spirv.OpFMul, t.f32, left, right))
		return nil
	}
	dot := t.b.AddBinaryOp(spirv.OpDot, t.f32, left, right)
	lanes := make([]uint32, n)
	for i := range lanes {
		lanes[i] = dot
	}
	t.storeDest(dest, t.b.AddCompositeConstruct(dest.typ, lanes...))
	return nil
}

func (t *translator) extUnary(inst *usse.Instruction, ext spirv.GLSLstd450) error {
	dest, err := t.destination(inst.Dest)
	if err != nil {
		return err
	}
	x, err := t.loadLanes(inst.Src0, dest.lanes)
	if err != nil {
		return err
	}
	t.storeDest(dest, t.b.AddExtInst(dest.typ, t.glslImport(), ext, x))
	return nil
}

func (t *translator) extBinary(inst *usse.Instruction, ext spirv.GLSLstd450) error {
	dest, err := t.destination(inst.Dest)
	if err != nil {
		return err
	}
	left, err := t.loadLanes(inst.Src0, dest.lanes)
	if err != nil {
		return err
	}
	right, err := t.loadLanes(inst.Src1, dest.lanes)
	if err != nil {
		return err
	}
	t.storeDest(dest, t.b.AddExtInst(dest.typ, t.glslImport(), ext, left, right))
	return nil
}

func (t *translator) reciprocal(inst *usse.Instruction) error {
	dest, err := t.destination(inst.Dest)
	if err != nil {
		return err
	}
	x, err := t.loadLanes(inst.Src0, dest.lanes)
	if err != nil {
		return err
	}
	n := uint32(len(dest.lanes))
	t.storeDest(dest, t.b.AddBinaryOp(spirv.OpFDiv, dest.typ, t.splatConstant(1, n), x))
	return nil
}

// sample translates SMP: src0 carries the texture coordinate in its
// first two lanes and src1 names the sampler register.
func (t *translator) sample(inst *usse.Instruction) error {
	dest, err := t.destination(inst.Dest)
	if err != nil {
		return err
	}
	coord, err := t.loadLanes(inst.Src0, []uint32{0, 1})
	if err != nil {
		return err
	}

	samplerRef, err := t.resolve(inst.Src1)
	if err != nil {
		return err
	}
	if samplerRef.reg.TypeID != t.sampledImageType() {
		return fmt.Errorf("SMP source %s register %d is not a sampler", inst.Src1.Bank, inst.Src1.Num)
	}

	sampler := t.b.AddLoad(samplerRef.reg.TypeID, samplerRef.reg.ID)
	texel := t.b.AddImageSampleImplicitLod(vecType(t.b, 4), sampler, coord)

	n := uint32(len(dest.lanes))
	value := texel
	switch {
	case n == 1:
		value = t.b.AddCompositeExtract(t.f32, texel, 0)
	case n < 4:
		comps := make([]uint32, n)
		for i := range comps {
			comps[i] = uint32(i)
		}
		value = t.b.AddVectorShuffle(dest.typ, texel, texel, comps...)
	}
	t.storeDest(dest, value)
	return nil
}

func (t *translator) resolve(op usse.Operand) (regRef, error) {
	bank := t.params.BankFor(op.Bank)
	if bank == nil {
		return regRef{}, fmt.Errorf("operands in %s bank are not supported", op.Bank)
	}
	reg, compOffset, ok := bank.Find(uint32(op.Num))
	if !ok {
		return regRef{}, fmt.Errorf("no variable covers %s register %d", op.Bank, op.Num)
	}
	return regRef{reg: reg, compOffset: compOffset}, nil
}

func (t *translator) destination(op usse.Operand) (destination, error) {
	ref, err := t.resolve(op)
	if err != nil {
		return destination{}, fmt.Errorf("dest: %w", err)
	}
	if ref.reg.Components == 0 {
		return destination{}, fmt.Errorf("dest: %s register %d is not lane addressable", op.Bank, op.Num)
	}
	lanes := maskLanes(op.WriteMask, ref)
	if len(lanes) == 0 {
		return destination{}, fmt.Errorf("dest: write mask resolves no lanes")
	}
	for _, lane := range lanes {
		if ref.compOffset+lane >= ref.reg.Components {
			return destination{}, fmt.Errorf("dest: lane %d is outside a %d-component variable", ref.compOffset+lane, ref.reg.Components)
		}
	}
	return destination{ref: ref, lanes: lanes, typ: vecType(t.b, uint32(len(lanes)))}, nil
}

// maskLanes expands a write mask into lane positions. An empty mask
// selects every lane of the destination record from the operand's
// component offset, capped at the four-lane instruction width.
func maskLanes(mask uint8, ref regRef) []uint32 {
	if mask == 0 {
		var n uint32
		if ref.reg.Components > ref.compOffset {
			n = ref.reg.Components - ref.compOffset
		}
		if n > 4 {
			n = 4
		}
		lanes := make([]uint32, n)
		for i := range lanes {
			lanes[i] = uint32(i)
		}
		return lanes
	}
	var lanes []uint32
	for i := uint32(0); i < 4; i++ {
		if mask&(1<<i) != 0 {
			lanes = append(lanes, i)
		}
	}
	return lanes
}

// loadLanes reads a source operand lane by lane: lane position i
// reads the register component named by swizzle channel i, or a
// constant for the constant channels. The undefined channel reads the
// identity component. The result packs the lanes into a scalar or
// vector value.
func (t *translator) loadLanes(op usse.Operand, lanes []uint32) (uint32, error) {
	ref, err := t.resolve(op)
	if err != nil {
		return 0, err
	}
	reg := ref.reg
	if reg.Components == 0 {
		return 0, fmt.Errorf("%s register %d is not lane addressable", op.Bank, op.Num)
	}

	var loaded uint32
	load := func() uint32 {
		if loaded == 0 {
			loaded = t.b.AddLoad(reg.TypeID, reg.ID)
		}
		return loaded
	}

	comps := make([]uint32, len(lanes))
	consts := make([]float32, len(lanes))
	isComp := make([]bool, len(lanes))
	allComps := true
	for k, lane := range lanes {
		ch := op.Swizzle[lane]
		if ch == usse.ChannelUndefined {
			ch = usse.SwizzleChannel(lane)
		}
		switch ch {
		case usse.ChannelZero:
			consts[k] = 0
			allComps = false
		case usse.ChannelOne:
			consts[k] = 1
			allComps = false
		case usse.ChannelHalf:
			consts[k] = 0.5
			allComps = false
		default:
			comp := ref.compOffset + uint32(ch)
			if comp >= reg.Components {
				return 0, fmt.Errorf("swizzle %s selects component %d of a %d-component variable", op.Swizzle, comp, reg.Components)
			}
			comps[k] = comp
			isComp[k] = true
		}
	}

	if len(lanes) == 1 {
		switch {
		case !isComp[0]:
			return t.b.AddConstantFloat32(t.f32, consts[0]), nil
		case reg.Components == 1:
			return load(), nil
		default:
			return t.b.AddCompositeExtract(t.f32, load(), comps[0]), nil
		}
	}

	resultType := vecType(t.b, uint32(len(lanes)))
	if allComps && reg.Components >= 2 {
		if identityComps(comps, reg.Components) {
			return load(), nil
		}
		return t.b.AddVectorShuffle(resultType, load(), load(), comps...), nil
	}

	scalars := make([]uint32, len(lanes))
	for k := range lanes {
		switch {
		case !isComp[k]:
			scalars[k] = t.b.AddConstantFloat32(t.f32, consts[k])
		case reg.Components == 1:
			scalars[k] = load()
		default:
			scalars[k] = t.b.AddCompositeExtract(t.f32, load(), comps[k])
		}
	}
	return t.b.AddCompositeConstruct(resultType, scalars...), nil
}

// storeDest writes the packed lanes of value back into the
// destination, preserving the components the write mask leaves
// untouched.
func (t *translator) storeDest(dest destination, value uint32) {
	reg := dest.ref.reg
	n := uint32(len(dest.lanes))

	fullOverwrite := dest.ref.compOffset == 0 && n == reg.Components
	if fullOverwrite {
		for k, lane := range dest.lanes {
			if lane != uint32(k) {
				fullOverwrite = false
				break
			}
		}
	}
	if fullOverwrite {
		t.b.AddStore(reg.ID, value)
		return
	}

	old := t.b.AddLoad(reg.TypeID, reg.ID)
	if n == 1 {
		comp := dest.ref.compOffset + dest.lanes[0]
		scalars := make([]uint32, reg.Components)
		for j := uint32(0); j < reg.Components; j++ {
			if j == comp {
				scalars[j] = value
			} else {
				scalars[j] = t.b.AddCompositeExtract(t.f32, old, j)
			}
		}
		t.b.AddStore(reg.ID, t.b.AddCompositeConstruct(reg.TypeID, scalars...))
		return
	}

	comps := make([]uint32, reg.Components)
	for j := range comps {
		comps[j] = uint32(j)
	}
	for k, lane := range dest.lanes {
		comps[dest.ref.compOffset+lane] = reg.Components + uint32(k)
	}
	t.b.AddStore(reg.ID, t.b.AddVectorShuffle(reg.TypeID, old, value, comps...))
}

// identityComps reports whether comps reads every component of a
// width-wide vector in order, making a shuffle redundant.
func identityComps(comps []uint32, width uint32) bool {
	if uint32(len(comps)) != width {
		return false
	}
	for k, c := range comps {
		if c != uint32(k) {
			return false
		}
	}
	return true
}

// splatConstant returns the n-lane constant with every lane set to v.
func (t *translator) splatConstant(v float32, n uint32) uint32 {
	scalar := t.b.AddConstantFloat32(t.f32, v)
	if n <= 1 {
		return scalar
	}
	lanes := make([]uint32, n)
	for i := range lanes {
		lanes[i] = scalar
	}
	return t.b.AddConstantComposite(vecType(t.b, n), lanes...)
}

// sampledImageType returns the type every sampler variable is
// allocated with, to tell sampler registers apart from value
// registers.
func (t *translator) sampledImageType() uint32 {
	image := t.b.AddTypeImage(t.f32, spirv.Dim2D, false, false, false, 1, spirv.ImageFormatUnknown)
	return t.b.AddTypeSampledImage(image)
}

func (t *translator) glslImport() uint32 {
	return t.b.AddExtInstImport("GLSL.std.450")
}
