// Package cpu implements the ARM7TDMI core: the banked register file,
// ARM and THUMB instruction decoding via precomputed dispatch tables,
// condition evaluation, the barrel shifter, and exception entry/return,
// per spec §4.1.
package cpu

import (
	"goba/internal/interfaces"
	"goba/internal/swi"
)

const (
	vectorUndefined = 0x04
	vectorSWI       = 0x08
	vectorIRQ       = 0x18
)

// CPU is the ARM7TDMI execution engine. It holds no back-reference to
// the bus or interrupt controller; both are supplied per call so the
// CPU package stays free of cyclic imports, per the "Cyclic references"
// design note.
type CPU struct {
	Regs   *Registers
	Halted bool
	cycles uint64
}

func New() *CPU {
	return &CPU{Regs: NewRegisters()}
}

// Reset restores the BIOS entry state: Supervisor mode, ARM state, IRQ
// and FIQ disabled, PC at the reset vector. The banked stack pointers
// are preset to the values the real BIOS's startup code would have
// written, per spec §3's lifecycle note ("SP values per BIOS convention
// if no BIOS is loaded") — harmless when a real BIOS image is present,
// since its own init code overwrites them within its first few
// instructions.
func (c *CPU) Reset() {
	c.Regs = NewRegisters()
	c.Regs.PC = 0
	c.Regs.SP_usr = 0x03007F00
	c.Regs.SP_irq = 0x03007FA0
	c.Regs.SP_svc = 0x03007FE0
	c.Halted = false
	c.cycles = 0
}

// Step executes one instruction (or services a pending exception first)
// and returns the number of CPU cycles it took. irqPending reflects
// IE & IF & IME computed by the owning System from the interrupt
// controller each call.
func (c *CPU) Step(bus interfaces.Bus, irqPending bool) int {
	if c.Halted {
		if irqPending {
			c.Halted = false
		} else {
			return 1
		}
	}

	if irqPending && !c.Regs.IsIRQDisabled() {
		c.enterException(IRQMode, vectorIRQ, c.Regs.PC+4)
		return 3
	}

	if c.Regs.IsThumb() {
		pc := c.Regs.PC
		instr := bus.Read16(pc)
		c.Regs.PC = pc + 2
		return c.executeThumb(bus, instr)
	}
	pc := c.Regs.PC
	instr := bus.Read32(pc)
	c.Regs.PC = pc + 4
	return c.executeARM(bus, instr)
}

// pc8 returns the value R15 reads as when used as an operand in ARM
// state (pipelined two instructions ahead of the one executing).
func (c *CPU) pc8() uint32 { return c.Regs.PC + 4 }

// pc4 returns the THUMB-state pipelined PC-as-operand value.
func (c *CPU) pc4() uint32 { return c.Regs.PC + 2 }

// enterException switches to mode, banks CPSR into the new mode's SPSR,
// sets LR to retAddr, forces ARM state, and masks IRQs.
func (c *CPU) enterException(mode uint8, vector uint32, retAddr uint32) {
	saved := c.Regs.CPSR
	c.Regs.SetMode(mode)
	c.Regs.SetSPSR(saved)
	c.Regs.SetReg(14, retAddr)
	c.Regs.SetThumbState(false)
	c.Regs.SetIRQDisabled(true)
	c.Regs.PC = vector
}

func (c *CPU) raiseUndefined() {
	c.enterException(UNDMode, vectorUndefined, c.Regs.PC)
}

// raiseSWI runs the BIOS shim for the requested function directly
// against the calling mode's registers, per spec §12's high-level BIOS
// emulation: no title depends on the real SVC-mode trap being visible,
// so no exception entry happens here.
func (c *CPU) raiseSWI(comment uint8, bus interfaces.Bus) {
	if swi.Dispatch(comment, c.Regs, bus) {
		c.Halted = true
	}
}
