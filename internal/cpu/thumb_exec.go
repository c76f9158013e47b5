package cpu

import "goba/internal/interfaces"

// --- Format 1: move shifted register (LSL/LSR/ASR #imm) ---

func thumbMoveShifted(c *CPU, bus interfaces.Bus, instr uint16) int {
	op := (instr >> 11) & 0x3
	offset := uint32((instr >> 6) & 0x1F)
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	value := c.Regs.GetReg(rs)
	var result uint32
	var carry bool
	switch op {
	case 0:
		result, carry = shiftLSL(value, offset, c.Regs.GetFlagC())
	case 1:
		result, carry = shiftLSR(value, offset, c.Regs.GetFlagC(), true)
	default:
		result, carry = shiftASR(value, offset, c.Regs.GetFlagC(), true)
	}
	c.Regs.SetReg(rd, result)
	c.Regs.SetFlagN(result&0x80000000 != 0)
	c.Regs.SetFlagZ(result == 0)
	c.Regs.SetFlagC(carry)
	return 1
}

// --- Format 2: add/subtract ---

func thumbAddSub(c *CPU, bus interfaces.Bus, instr uint16) int {
	immFlag := instr&(1<<10) != 0
	sub := instr&(1<<9) != 0
	rnOrImm := uint32((instr >> 6) & 0x7)
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	a := c.Regs.GetReg(rs)
	var b uint32
	if immFlag {
		b = rnOrImm
	} else {
		b = c.Regs.GetReg(uint8(rnOrImm))
	}

	var result uint32
	var carry, overflow bool
	if sub {
		result, carry, overflow = subWithFlags(a, b)
	} else {
		result, carry, overflow = addWithFlags(a, b)
	}
	c.Regs.SetReg(rd, result)
	c.Regs.SetFlagN(result&0x80000000 != 0)
	c.Regs.SetFlagZ(result == 0)
	c.Regs.SetFlagC(carry)
	c.Regs.SetFlagV(overflow)
	return 1
}

// --- Format 3: move/compare/add/subtract immediate ---

func thumbImmediate(c *CPU, bus interfaces.Bus, instr uint16) int {
	op := (instr >> 11) & 0x3
	rd := uint8((instr >> 8) & 0x7)
	imm := uint32(instr & 0xFF)

	current := c.Regs.GetReg(rd)
	var result uint32
	var carry, overflow bool
	switch op {
	case 0: // MOV
		result = imm
		c.Regs.SetReg(rd, result)
	case 1: // CMP
		result, carry, overflow = subWithFlags(current, imm)
	case 2: // ADD
		result, carry, overflow = addWithFlags(current, imm)
		c.Regs.SetReg(rd, result)
	default: // SUB
		result, carry, overflow = subWithFlags(current, imm)
		c.Regs.SetReg(rd, result)
	}
	c.Regs.SetFlagN(result&0x80000000 != 0)
	c.Regs.SetFlagZ(result == 0)
	if op != 0 {
		c.Regs.SetFlagC(carry)
		c.Regs.SetFlagV(overflow)
	}
	return 1
}

// --- Format 4: ALU operations ---

func thumbALU(c *CPU, bus interfaces.Bus, instr uint16) int {
	op := (instr >> 6) & 0xF
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	dst := c.Regs.GetReg(rd)
	src := c.Regs.GetReg(rs)
	carryIn := c.Regs.GetFlagC()

	var result uint32
	var carry, overflow bool
	store := true
	switch op {
	case 0x0: // AND
		result = dst & src
	case 0x1: // EOR
		result = dst ^ src
	case 0x2: // LSL
		result, carry = shiftLSL(dst, src&0xFF, carryIn)
		c.Regs.SetFlagC(carry)
	case 0x3: // LSR
		result, carry = shiftLSR(dst, src&0xFF, carryIn, false)
		c.Regs.SetFlagC(carry)
	case 0x4: // ASR
		result, carry = shiftASR(dst, src&0xFF, carryIn, false)
		c.Regs.SetFlagC(carry)
	case 0x5: // ADC
		result, carry, overflow = addWithFlags(dst, src, carryIn)
		c.Regs.SetFlagC(carry)
		c.Regs.SetFlagV(overflow)
	case 0x6: // SBC
		result, carry, overflow = sbcWithFlags(dst, src, carryIn)
		c.Regs.SetFlagC(carry)
		c.Regs.SetFlagV(overflow)
	case 0x7: // ROR
		result, carry = shiftROR(dst, src&0xFF, carryIn, false)
		c.Regs.SetFlagC(carry)
	case 0x8: // TST
		result = dst & src
		store = false
	case 0x9: // NEG
		result, carry, overflow = subWithFlags(0, src)
		c.Regs.SetFlagC(carry)
		c.Regs.SetFlagV(overflow)
	case 0xA: // CMP
		result, carry, overflow = subWithFlags(dst, src)
		c.Regs.SetFlagC(carry)
		c.Regs.SetFlagV(overflow)
		store = false
	case 0xB: // CMN
		result, carry, overflow = addWithFlags(dst, src)
		c.Regs.SetFlagC(carry)
		c.Regs.SetFlagV(overflow)
		store = false
	case 0xC: // ORR
		result = dst | src
	case 0xD: // MUL
		result = dst * src
	case 0xE: // BIC
		result = dst &^ src
	default: // MVN
		result = ^src
	}

	c.Regs.SetFlagN(result&0x80000000 != 0)
	c.Regs.SetFlagZ(result == 0)
	if store {
		c.Regs.SetReg(rd, result)
	}
	return 1
}

// --- Format 5: hi register operations / branch exchange ---

func thumbHiRegBX(c *CPU, bus interfaces.Bus, instr uint16) int {
	op := (instr >> 8) & 0x3
	h1 := instr&(1<<7) != 0
	h2 := instr&(1<<6) != 0
	rs := uint8((instr>>3)&0x7) | boolReg(h2)
	rd := uint8(instr&0x7) | boolReg(h1)

	switch op {
	case 0: // ADD
		c.Regs.SetReg(rd, c.Regs.GetReg(rd)+c.Regs.GetReg(rs))
		if rd == 15 {
			c.Regs.PC &^= 1
			return 3
		}
	case 1: // CMP
		result, carry, overflow := subWithFlags(c.Regs.GetReg(rd), c.Regs.GetReg(rs))
		c.Regs.SetFlagN(result&0x80000000 != 0)
		c.Regs.SetFlagZ(result == 0)
		c.Regs.SetFlagC(carry)
		c.Regs.SetFlagV(overflow)
	case 2: // MOV
		c.Regs.SetReg(rd, c.Regs.GetReg(rs))
		if rd == 15 {
			c.Regs.PC &^= 1
			return 3
		}
	default: // BX
		target := c.Regs.GetReg(rs)
		c.Regs.SetThumbState(target&1 != 0)
		c.Regs.PC = target &^ 1
		return 3
	}
	return 1
}

func boolReg(b bool) uint8 {
	if b {
		return 8
	}
	return 0
}

// --- Format 6: PC-relative load ---

func thumbPCRelLoad(c *CPU, bus interfaces.Bus, instr uint16) int {
	rd := uint8((instr >> 8) & 0x7)
	word := uint32(instr&0xFF) << 2
	addr := (c.pc4() &^ 3) + word
	c.Regs.SetReg(rd, bus.Read32(addr))
	return 3
}

// --- Format 7/8: load/store with register offset ---

func thumbLoadStoreReg(c *CPU, bus interfaces.Bus, instr uint16) int {
	l := instr&(1<<11) != 0
	b := instr&(1<<10) != 0
	ro := uint8((instr >> 6) & 0x7)
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	addr := c.Regs.GetReg(rb) + c.Regs.GetReg(ro)
	switch {
	case l && b:
		c.Regs.SetReg(rd, uint32(bus.Read8(addr)))
	case l && !b:
		c.Regs.SetReg(rd, readRotatedWord(bus, addr))
	case !l && b:
		bus.Write8(addr, uint8(c.Regs.GetReg(rd)))
	default:
		bus.Write32(addr, c.Regs.GetReg(rd))
	}
	return 2
}

func thumbLoadStoreSignExt(c *CPU, bus interfaces.Bus, instr uint16) int {
	h := instr&(1<<11) != 0
	s := instr&(1<<10) != 0
	ro := uint8((instr >> 6) & 0x7)
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	addr := c.Regs.GetReg(rb) + c.Regs.GetReg(ro)
	switch {
	case !s && !h: // STRH
		bus.Write16(addr, uint16(c.Regs.GetReg(rd)))
	case !s && h: // LDRH
		c.Regs.SetReg(rd, uint32(readRotatedHalf(bus, addr)))
	case s && !h: // LDSB
		v := uint32(int32(int8(bus.Read8(addr))))
		c.Regs.SetReg(rd, v)
	default: // LDSH
		if addr&1 != 0 {
			v := uint32(int32(int8(bus.Read8(addr))))
			c.Regs.SetReg(rd, v)
		} else {
			v := uint32(int32(int16(bus.Read16(addr))))
			c.Regs.SetReg(rd, v)
		}
	}
	return 2
}

// --- Format 9: load/store with immediate offset ---

func thumbLoadStoreImm(c *CPU, bus interfaces.Bus, instr uint16) int {
	b := instr&(1<<12) != 0
	l := instr&(1<<11) != 0
	offset5 := uint32((instr >> 6) & 0x1F)
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	var addr uint32
	if b {
		addr = c.Regs.GetReg(rb) + offset5
	} else {
		addr = c.Regs.GetReg(rb) + offset5*4
	}

	switch {
	case l && b:
		c.Regs.SetReg(rd, uint32(bus.Read8(addr)))
	case l && !b:
		c.Regs.SetReg(rd, readRotatedWord(bus, addr))
	case !l && b:
		bus.Write8(addr, uint8(c.Regs.GetReg(rd)))
	default:
		bus.Write32(addr, c.Regs.GetReg(rd))
	}
	return 2
}

// --- Format 10: load/store halfword ---

func thumbLoadStoreHalf(c *CPU, bus interfaces.Bus, instr uint16) int {
	l := instr&(1<<11) != 0
	offset5 := uint32((instr>>6)&0x1F) * 2
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	addr := c.Regs.GetReg(rb) + offset5
	if l {
		c.Regs.SetReg(rd, readRotatedHalf(bus, addr))
	} else {
		bus.Write16(addr, uint16(c.Regs.GetReg(rd)))
	}
	return 2
}

// --- Format 11: SP-relative load/store ---

func thumbSPRelLoadStore(c *CPU, bus interfaces.Bus, instr uint16) int {
	l := instr&(1<<11) != 0
	rd := uint8((instr >> 8) & 0x7)
	word := uint32(instr&0xFF) << 2

	addr := c.Regs.GetReg(13) + word
	if l {
		c.Regs.SetReg(rd, readRotatedWord(bus, addr))
	} else {
		bus.Write32(addr, c.Regs.GetReg(rd))
	}
	return 2
}

// --- Format 12: load address ---

func thumbLoadAddress(c *CPU, bus interfaces.Bus, instr uint16) int {
	sp := instr&(1<<11) != 0
	rd := uint8((instr >> 8) & 0x7)
	word := uint32(instr&0xFF) << 2

	var base uint32
	if sp {
		base = c.Regs.GetReg(13)
	} else {
		base = c.pc4() &^ 3
	}
	c.Regs.SetReg(rd, base+word)
	return 1
}

// --- Format 13: add offset to stack pointer ---

func thumbAddSPOffset(c *CPU, bus interfaces.Bus, instr uint16) int {
	sign := instr&(1<<7) != 0
	word := uint32(instr&0x7F) << 2

	sp := c.Regs.GetReg(13)
	if sign {
		c.Regs.SetReg(13, sp-word)
	} else {
		c.Regs.SetReg(13, sp+word)
	}
	return 1
}

// --- Format 14: push/pop registers ---

func thumbPushPop(c *CPU, bus interfaces.Bus, instr uint16) int {
	l := instr&(1<<11) != 0
	pcLR := instr&(1<<8) != 0
	list := uint8(instr & 0xFF)

	cycles := 1
	if l {
		sp := c.Regs.GetReg(13)
		for i := 0; i < 8; i++ {
			if list&(1<<uint(i)) != 0 {
				c.Regs.SetReg(uint8(i), bus.Read32(sp))
				sp += 4
				cycles++
			}
		}
		if pcLR {
			c.Regs.PC = bus.Read32(sp) &^ 1
			sp += 4
			cycles += 2
		}
		c.Regs.SetReg(13, sp)
	} else {
		count := 0
		for i := 0; i < 8; i++ {
			if list&(1<<uint(i)) != 0 {
				count++
			}
		}
		if pcLR {
			count++
		}
		sp := c.Regs.GetReg(13) - uint32(count)*4
		base := sp
		for i := 0; i < 8; i++ {
			if list&(1<<uint(i)) != 0 {
				bus.Write32(base, c.Regs.GetReg(uint8(i)))
				base += 4
				cycles++
			}
		}
		if pcLR {
			bus.Write32(base, c.Regs.GetReg(14))
			cycles++
		}
		c.Regs.SetReg(13, sp)
	}
	return cycles
}

// --- Format 15: multiple load/store ---

func thumbMultipleLoadStore(c *CPU, bus interfaces.Bus, instr uint16) int {
	l := instr&(1<<11) != 0
	rb := uint8((instr >> 8) & 0x7)
	list := uint8(instr & 0xFF)

	addr := c.Regs.GetReg(rb)
	cycles := 1
	count := 0
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) == 0 {
			continue
		}
		count++
		if l {
			c.Regs.SetReg(uint8(i), bus.Read32(addr))
		} else {
			bus.Write32(addr, c.Regs.GetReg(uint8(i)))
		}
		addr += 4
		cycles++
	}
	if list == 0 {
		// degenerate empty-list case: still bumps base by a full bank
		count = 8
		addr = c.Regs.GetReg(rb) + 32
	}
	c.Regs.SetReg(rb, c.Regs.GetReg(rb)+uint32(count)*4)
	return cycles
}

// --- Format 16: conditional branch ---

func thumbCondBranch(c *CPU, bus interfaces.Bus, instr uint16) int {
	cond := ARMCondition((instr >> 8) & 0xF)
	if !evalCondition(c.Regs, cond) {
		return 1
	}
	offset := int32(int8(instr & 0xFF))
	c.Regs.PC = uint32(int32(c.pc4()) + offset*2)
	return 3
}

// --- Format 17: software interrupt ---

func thumbSWI(c *CPU, bus interfaces.Bus, instr uint16) int {
	c.raiseSWI(uint8(instr&0xFF), bus)
	return 3
}

// --- Format 18: unconditional branch ---

func thumbUncondBranch(c *CPU, bus interfaces.Bus, instr uint16) int {
	offset := signExtend11(uint32(instr&0x7FF)) << 1
	c.Regs.PC = uint32(int32(c.pc4()) + offset)
	return 3
}

// --- Format 19: long branch with link ---

func thumbLongBranchLink(c *CPU, bus interfaces.Bus, instr uint16) int {
	low := instr&(1<<11) != 0
	offset11 := uint32(instr & 0x7FF)

	if !low {
		// first instruction: LR = PC + (signed offset << 12)
		c.Regs.SetReg(14, uint32(int32(c.pc4())+signExtend11(offset11)<<12))
		return 1
	}
	// second instruction: BL completes using LR as the high-bits base
	nextInstr := c.Regs.PC - 2
	target := c.Regs.GetReg(14) + offset11<<1
	c.Regs.SetReg(14, (nextInstr+2)|1)
	c.Regs.PC = target
	return 3
}

func thumbUndefinedT(c *CPU, bus interfaces.Bus, instr uint16) int {
	c.raiseUndefined()
	return 3
}

func signExtend11(v uint32) int32 {
	if v&0x400 != 0 {
		return int32(v | 0xFFFFF800)
	}
	return int32(v)
}
