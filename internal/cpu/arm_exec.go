package cpu

import "goba/internal/interfaces"

// ARMDataProcessingOperation is the 4-bit opcode field of a data
// processing instruction.
type ARMDataProcessingOperation uint32

const (
	opAND ARMDataProcessingOperation = 0x0
	opEOR ARMDataProcessingOperation = 0x1
	opSUB ARMDataProcessingOperation = 0x2
	opRSB ARMDataProcessingOperation = 0x3
	opADD ARMDataProcessingOperation = 0x4
	opADC ARMDataProcessingOperation = 0x5
	opSBC ARMDataProcessingOperation = 0x6
	opRSC ARMDataProcessingOperation = 0x7
	opTST ARMDataProcessingOperation = 0x8
	opTEQ ARMDataProcessingOperation = 0x9
	opCMP ARMDataProcessingOperation = 0xA
	opCMN ARMDataProcessingOperation = 0xB
	opORR ARMDataProcessingOperation = 0xC
	opMOV ARMDataProcessingOperation = 0xD
	opBIC ARMDataProcessingOperation = 0xE
	opMVN ARMDataProcessingOperation = 0xF
)

func (c *CPU) operand(n uint8) uint32 {
	if n == 15 {
		return c.pc8()
	}
	return c.Regs.GetReg(n)
}

// armDataProcessing decodes and executes AND/EOR/SUB/.../MVN, and the
// MRS/MSR PSR-transfer instructions that share the same opcode space
// when S=0 on a comparison opcode (TST/TEQ/CMP/CMN).
func armDataProcessing(c *CPU, bus interfaces.Bus, instr uint32) int {
	opcode := ARMDataProcessingOperation((instr >> 21) & 0xF)
	s := (instr>>20)&1 != 0
	rn := uint8((instr >> 16) & 0xF)
	rd := uint8((instr >> 12) & 0xF)

	if !s && (opcode == opTST || opcode == opTEQ || opcode == opCMP || opcode == opCMN) {
		return armPSRTransfer(c, instr)
	}

	op2, shiftCarry := armOperand2(c, instr)
	rnVal := c.operand(rn)
	carryIn := c.Regs.GetFlagC()

	var result uint32
	var carryOut, overflow bool
	logical := false

	switch opcode {
	case opAND:
		result = rnVal & op2
		logical = true
	case opEOR:
		result = rnVal ^ op2
		logical = true
	case opSUB:
		result, carryOut, overflow = subWithFlags(rnVal, op2)
	case opRSB:
		result, carryOut, overflow = subWithFlags(op2, rnVal)
	case opADD:
		result, carryOut, overflow = addWithFlags(rnVal, op2)
	case opADC:
		result, carryOut, overflow = addWithFlags(rnVal, op2, carryIn)
	case opSBC:
		result, carryOut, overflow = sbcWithFlags(rnVal, op2, carryIn)
	case opRSC:
		result, carryOut, overflow = sbcWithFlags(op2, rnVal, carryIn)
	case opTST:
		result = rnVal & op2
		logical = true
	case opTEQ:
		result = rnVal ^ op2
		logical = true
	case opCMP:
		result, carryOut, overflow = subWithFlags(rnVal, op2)
	case opCMN:
		result, carryOut, overflow = addWithFlags(rnVal, op2)
	case opORR:
		result = rnVal | op2
		logical = true
	case opMOV:
		result = op2
		logical = true
	case opBIC:
		result = rnVal &^ op2
		logical = true
	case opMVN:
		result = ^op2
		logical = true
	}

	writesResult := opcode != opTST && opcode != opTEQ && opcode != opCMP && opcode != opCMN
	if writesResult {
		if rd == 15 {
			if s {
				// MOVS/... PC,... restores CPSR from SPSR: subroutine/exception return.
				c.Regs.CPSR = c.Regs.GetSPSR()
			}
			c.Regs.PC = result &^ 1
			if !c.Regs.IsThumb() {
				c.Regs.PC &^= 3
			}
			return 3
		}
		c.Regs.SetReg(rd, result)
	}

	if s && rd != 15 {
		c.Regs.SetFlagN(result&0x80000000 != 0)
		c.Regs.SetFlagZ(result == 0)
		if logical {
			c.Regs.SetFlagC(shiftCarry)
		} else {
			c.Regs.SetFlagC(carryOut)
			c.Regs.SetFlagV(overflow)
		}
	}
	return 1
}

// armOperand2 resolves the shifter operand of a data-processing
// instruction and the carry-out it produces for logical opcodes.
func armOperand2(c *CPU, instr uint32) (uint32, bool) {
	carryIn := c.Regs.GetFlagC()
	if instr&(1<<25) != 0 { // immediate
		imm := instr & 0xFF
		rotate := ((instr >> 8) & 0xF) * 2
		return shiftROR(imm, rotate, carryIn, true)
	}

	rm := uint8(instr & 0xF)
	shiftType := ARMShiftType((instr >> 5) & 0x3)
	if instr&(1<<4) != 0 { // shift by register
		rs := uint8((instr >> 8) & 0xF)
		amount := c.Regs.GetReg(rs) & 0xFF
		val := c.operand(rm)
		return barrelShift(shiftType, val, amount, carryIn, false)
	}
	amount := (instr >> 7) & 0x1F
	val := c.operand(rm)
	return barrelShift(shiftType, val, amount, carryIn, true)
}

// armPSRTransfer implements MRS (Rd = CPSR/SPSR) and MSR (CPSR/SPSR
// field(s) = operand), reached from armDataProcessing when S=0 on a
// comparison opcode.
func armPSRTransfer(c *CPU, instr uint32) int {
	useSPSR := instr&(1<<22) != 0
	if instr&(1<<21) == 0 { // MRS
		rd := uint8((instr >> 12) & 0xF)
		if useSPSR {
			c.Regs.SetReg(rd, c.Regs.GetSPSR())
		} else {
			c.Regs.SetReg(rd, c.Regs.CPSR)
		}
		return 1
	}

	// MSR
	var value uint32
	if instr&(1<<25) != 0 {
		imm := instr & 0xFF
		rotate := ((instr >> 8) & 0xF) * 2
		value, _ = shiftROR(imm, rotate, false, true)
	} else {
		rm := uint8(instr & 0xF)
		value = c.operand(rm)
	}

	fieldMask := (instr >> 16) & 0xF
	var mask uint32
	if fieldMask&0x1 != 0 {
		mask |= 0x000000FF // control field (mode, T, I, F) — only in privileged modes
	}
	if fieldMask&0x2 != 0 {
		mask |= 0x0000FF00
	}
	if fieldMask&0x4 != 0 {
		mask |= 0x00FF0000
	}
	if fieldMask&0x8 != 0 {
		mask |= 0xFF000000 // flags field
	}

	if useSPSR {
		c.Regs.SetSPSR((c.Regs.GetSPSR() &^ mask) | (value & mask))
	} else {
		if c.Regs.GetMode() == USRMode {
			mask &= 0xFF000000 // user mode may only change flags
		}
		c.Regs.CPSR = (c.Regs.CPSR &^ mask) | (value & mask)
	}
	return 1
}

func armMultiply(c *CPU, bus interfaces.Bus, instr uint32) int {
	rd := uint8((instr >> 16) & 0xF)
	rn := uint8((instr >> 12) & 0xF)
	rs := uint8((instr >> 8) & 0xF)
	rm := uint8(instr & 0xF)
	accumulate := instr&(1<<21) != 0
	s := instr&(1<<20) != 0

	result := c.Regs.GetReg(rm) * c.Regs.GetReg(rs)
	if accumulate {
		result += c.Regs.GetReg(rn)
	}
	c.Regs.SetReg(rd, result)
	if s {
		c.Regs.SetFlagN(result&0x80000000 != 0)
		c.Regs.SetFlagZ(result == 0)
	}
	return 2
}

func armMultiplyLong(c *CPU, bus interfaces.Bus, instr uint32) int {
	rdHi := uint8((instr >> 16) & 0xF)
	rdLo := uint8((instr >> 12) & 0xF)
	rs := uint8((instr >> 8) & 0xF)
	rm := uint8(instr & 0xF)
	signedOp := instr&(1<<22) != 0
	accumulate := instr&(1<<21) != 0
	s := instr&(1<<20) != 0

	var result uint64
	if signedOp {
		result = uint64(int64(int32(c.Regs.GetReg(rm))) * int64(int32(c.Regs.GetReg(rs))))
	} else {
		result = uint64(c.Regs.GetReg(rm)) * uint64(c.Regs.GetReg(rs))
	}
	if accumulate {
		result += uint64(c.Regs.GetReg(rdHi))<<32 | uint64(c.Regs.GetReg(rdLo))
	}
	c.Regs.SetReg(rdLo, uint32(result))
	c.Regs.SetReg(rdHi, uint32(result>>32))
	if s {
		c.Regs.SetFlagN(result&0x8000000000000000 != 0)
		c.Regs.SetFlagZ(result == 0)
	}
	return 3
}

func armSwap(c *CPU, bus interfaces.Bus, instr uint32) int {
	rn := uint8((instr >> 16) & 0xF)
	rd := uint8((instr >> 12) & 0xF)
	rm := uint8(instr & 0xF)
	addr := c.Regs.GetReg(rn)
	byteSwap := instr&(1<<22) != 0
	if byteSwap {
		old := bus.Read8(addr)
		bus.Write8(addr, uint8(c.Regs.GetReg(rm)))
		c.Regs.SetReg(rd, uint32(old))
	} else {
		old := readRotatedWord(bus, addr)
		bus.Write32(addr, c.Regs.GetReg(rm))
		c.Regs.SetReg(rd, old)
	}
	return 4
}

func armHalfwordTransfer(c *CPU, bus interfaces.Bus, instr uint32) int {
	p := instr&(1<<24) != 0
	u := instr&(1<<23) != 0
	immOffset := instr&(1<<22) != 0
	w := instr&(1<<21) != 0
	l := instr&(1<<20) != 0
	rn := uint8((instr >> 16) & 0xF)
	rd := uint8((instr >> 12) & 0xF)
	sh := (instr >> 5) & 0x3

	var offset uint32
	if immOffset {
		offset = ((instr >> 4) & 0xF0) | (instr & 0xF)
	} else {
		rm := uint8(instr & 0xF)
		offset = c.Regs.GetReg(rm)
	}

	base := c.Regs.GetReg(rn)
	addr := base
	if p {
		if u {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	if l {
		var value uint32
		switch sh {
		case 0b01: // unsigned halfword
			value = uint32(readRotatedHalf(bus, addr))
		case 0b10: // signed byte
			value = uint32(int32(int8(bus.Read8(addr))))
		case 0b11: // signed halfword
			h := readRotatedHalf(bus, addr)
			if addr&1 != 0 {
				value = uint32(int32(int8(h >> 8)))
			} else {
				value = uint32(int32(int16(h)))
			}
		}
		if rd == 15 {
			c.Regs.PC = value &^ 1
		} else {
			c.Regs.SetReg(rd, value)
		}
	} else {
		bus.Write16(addr, uint16(c.operand(rd)))
	}

	if !p {
		if u {
			addr = base + offset
		} else {
			addr = base - offset
		}
		c.Regs.SetReg(rn, addr)
	} else if w {
		c.Regs.SetReg(rn, addr)
	}
	return 2
}

func armSingleDataTransfer(c *CPU, bus interfaces.Bus, instr uint32) int {
	i := instr&(1<<25) != 0
	p := instr&(1<<24) != 0
	u := instr&(1<<23) != 0
	b := instr&(1<<22) != 0
	w := instr&(1<<21) != 0
	l := instr&(1<<20) != 0
	rn := uint8((instr >> 16) & 0xF)
	rd := uint8((instr >> 12) & 0xF)

	var offset uint32
	if i {
		rm := uint8(instr & 0xF)
		shiftType := ARMShiftType((instr >> 5) & 0x3)
		amount := (instr >> 7) & 0x1F
		offset, _ = barrelShift(shiftType, c.Regs.GetReg(rm), amount, c.Regs.GetFlagC(), true)
	} else {
		offset = instr & 0xFFF
	}

	base := c.Regs.GetReg(rn)
	addr := base
	if p {
		if u {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	if l {
		var value uint32
		if b {
			value = uint32(bus.Read8(addr))
		} else {
			value = readRotatedWord(bus, addr)
		}
		if rd == 15 {
			c.Regs.PC = value &^ 3
		} else {
			c.Regs.SetReg(rd, value)
		}
	} else {
		if b {
			bus.Write8(addr, uint8(c.operand(rd)))
		} else {
			bus.Write32(addr, c.operand(rd))
		}
	}

	if !p {
		if u {
			addr = base + offset
		} else {
			addr = base - offset
		}
		c.Regs.SetReg(rn, addr)
	} else if w {
		c.Regs.SetReg(rn, addr)
	}
	if rd == 15 && l {
		return 5
	}
	return 2
}

func armBlockDataTransfer(c *CPU, bus interfaces.Bus, instr uint32) int {
	p := instr&(1<<24) != 0
	u := instr&(1<<23) != 0
	s := instr&(1<<22) != 0
	w := instr&(1<<21) != 0
	l := instr&(1<<20) != 0
	rn := uint8((instr >> 16) & 0xF)
	list := uint16(instr & 0xFFFF)

	count := 0
	for i := 0; i < 16; i++ {
		if list&(1<<uint(i)) != 0 {
			count++
		}
	}
	if count == 0 {
		count = 16 // empty-list edge case: transfers R15 only, base +/- 0x40
		list = 1 << 15
	}

	base := c.Regs.GetReg(rn)
	var addr uint32
	switch {
	case u && !p: // IA
		addr = base
	case u && p: // IB
		addr = base + 4
	case !u && !p: // DA
		addr = base - uint32(count)*4 + 4
	default: // DB
		addr = base - uint32(count)*4
	}

	userBank := s && (!l || list&(1<<15) == 0)

	cycles := 1
	pcWritten := false
	for i := 0; i < 16; i++ {
		if list&(1<<uint(i)) == 0 {
			continue
		}
		reg := uint8(i)
		if l {
			value := readRotatedWord(bus, addr)
			if userBank {
				c.Regs.SetRegUser(reg, value)
			} else {
				c.Regs.SetReg(reg, value)
			}
			if reg == 15 {
				pcWritten = true
				c.Regs.PC = value &^ 3
				if s {
					c.Regs.CPSR = c.Regs.GetSPSR()
				}
			}
		} else {
			var value uint32
			if userBank {
				value = c.Regs.GetRegUser(reg)
			} else {
				value = c.operand(reg)
			}
			bus.Write32(addr, value)
		}
		addr += 4
		cycles++
	}

	if w {
		if u {
			c.Regs.SetReg(rn, base+uint32(count)*4)
		} else {
			c.Regs.SetReg(rn, base-uint32(count)*4)
		}
	}
	if pcWritten {
		cycles += 2
	}
	return cycles
}

func armBranch(c *CPU, bus interfaces.Bus, instr uint32) int {
	link := instr&(1<<24) != 0
	offset := instr & 0x00FFFFFF
	if offset&0x800000 != 0 {
		offset |= 0xFF000000
	}
	target := c.pc8() + (offset << 2)
	if link {
		c.Regs.SetReg(14, c.Regs.PC)
	}
	c.Regs.PC = target
	return 3
}

func armBranchExchange(c *CPU, bus interfaces.Bus, instr uint32) int {
	rm := uint8(instr & 0xF)
	target := c.Regs.GetReg(rm)
	c.Regs.SetThumbState(target&1 != 0)
	c.Regs.PC = target &^ 1
	return 3
}

func armSWI(c *CPU, bus interfaces.Bus, instr uint32) int {
	comment := uint8((instr >> 16) & 0xFF)
	c.raiseSWI(comment, bus)
	return 3
}

func armUndefined(c *CPU, bus interfaces.Bus, instr uint32) int {
	c.raiseUndefined()
	return 3
}

// readRotatedWord implements the LDR "unaligned address" behavior: the
// real bus always reads a word-aligned access, and a non-aligned
// request rotates the result right by 8 times the misalignment.
func readRotatedWord(bus interfaces.Bus, addr uint32) uint32 {
	v := bus.Read32(addr &^ 3)
	rot := (addr & 3) * 8
	if rot == 0 {
		return v
	}
	return (v >> rot) | (v << (32 - rot))
}

// readRotatedHalf implements the equivalent misaligned-halfword rule
// for LDRH: an odd address rotates the 16-bit read by 8 bits.
func readRotatedHalf(bus interfaces.Bus, addr uint32) uint16 {
	v := bus.Read16(addr &^ 1)
	if addr&1 != 0 {
		return (v >> 8) | (v << 8)
	}
	return v
}

func addWithFlags(a, b uint32, carryIn ...bool) (uint32, bool, bool) {
	c := uint64(0)
	if len(carryIn) > 0 && carryIn[0] {
		c = 1
	}
	sum := uint64(a) + uint64(b) + c
	result := uint32(sum)
	carryOut := sum > 0xFFFFFFFF
	overflow := (^(a^b))&(a^result)&0x80000000 != 0
	return result, carryOut, overflow
}

func subWithFlags(a, b uint32) (uint32, bool, bool) {
	result := a - b
	carryOut := a >= b
	overflow := (a^b)&(a^result)&0x80000000 != 0
	return result, carryOut, overflow
}

func sbcWithFlags(a, b uint32, carryIn bool) (uint32, bool, bool) {
	borrow := uint64(1)
	if carryIn {
		borrow = 0
	}
	diff := uint64(a) - uint64(b) - borrow
	result := uint32(diff)
	carryOut := uint64(a) >= uint64(b)+borrow
	overflow := (a^b)&(a^result)&0x80000000 != 0
	return result, carryOut, overflow
}
