package cpu

import (
	"fmt"
	"strconv"
)

// ARM7TDMI CPU operating modes.
const (
	USRMode = 0b10000
	FIQMode = 0b10001
	IRQMode = 0b10010
	SVCMode = 0b10011
	ABTMode = 0b10111
	UNDMode = 0b11011
	SYSMode = 0b11111
)

// Registers holds the full banked register file of the ARM7TDMI: R0-R12
// shared (save FIQ's private R8-R12), SP/LR banked per mode, and CPSR
// plus one SPSR per exception mode.
type Registers struct {
	R [13]uint32 // R0-R12 for non-FIQ modes

	SP_usr, LR_usr uint32
	SP_svc, LR_svc uint32
	SP_abt, LR_abt uint32
	SP_und, LR_und uint32
	SP_irq, LR_irq uint32

	R8_fiq, R9_fiq, R10_fiq, R11_fiq, R12_fiq uint32
	SP_fiq, LR_fiq                            uint32

	PC   uint32
	CPSR uint32

	SPSR_svc, SPSR_abt, SPSR_und, SPSR_irq, SPSR_fiq uint32
}

// NewRegisters returns a register file reset to the BIOS entry state:
// Supervisor mode, ARM state, IRQ/FIQ disabled.
func NewRegisters() *Registers {
	r := &Registers{}
	r.CPSR = uint32(SVCMode) | (1 << 7) | (1 << 6)
	return r
}

func (r *Registers) GetMode() uint8 { return uint8(r.CPSR & 0x1F) }

func (r *Registers) SetMode(mode uint8) {
	r.CPSR = (r.CPSR &^ 0x1F) | uint32(mode)
}

// GetReg returns R0-R15, routing to the correct banked register for the
// current mode. PC reads return the raw program counter; callers
// needing the pipelined PC+8/PC+4 value for operand computation add the
// offset themselves.
func (r *Registers) GetReg(n uint8) uint32 {
	if n == 15 {
		return r.PC
	}
	mode := r.GetMode()
	if mode == FIQMode {
		switch n {
		case 8:
			return r.R8_fiq
		case 9:
			return r.R9_fiq
		case 10:
			return r.R10_fiq
		case 11:
			return r.R11_fiq
		case 12:
			return r.R12_fiq
		case 13:
			return r.SP_fiq
		case 14:
			return r.LR_fiq
		}
	}
	if n == 13 {
		switch mode {
		case SVCMode:
			return r.SP_svc
		case ABTMode:
			return r.SP_abt
		case UNDMode:
			return r.SP_und
		case IRQMode:
			return r.SP_irq
		default:
			return r.SP_usr
		}
	}
	if n == 14 {
		switch mode {
		case SVCMode:
			return r.LR_svc
		case ABTMode:
			return r.LR_abt
		case UNDMode:
			return r.LR_und
		case IRQMode:
			return r.LR_irq
		default:
			return r.LR_usr
		}
	}
	return r.R[n]
}

func (r *Registers) SetReg(n uint8, value uint32) {
	if n == 15 {
		r.PC = value
		return
	}
	mode := r.GetMode()
	if mode == FIQMode {
		switch n {
		case 8:
			r.R8_fiq = value
			return
		case 9:
			r.R9_fiq = value
			return
		case 10:
			r.R10_fiq = value
			return
		case 11:
			r.R11_fiq = value
			return
		case 12:
			r.R12_fiq = value
			return
		case 13:
			r.SP_fiq = value
			return
		case 14:
			r.LR_fiq = value
			return
		}
	}
	if n == 13 {
		switch mode {
		case SVCMode:
			r.SP_svc = value
		case ABTMode:
			r.SP_abt = value
		case UNDMode:
			r.SP_und = value
		case IRQMode:
			r.SP_irq = value
		default:
			r.SP_usr = value
		}
		return
	}
	if n == 14 {
		switch mode {
		case SVCMode:
			r.LR_svc = value
		case ABTMode:
			r.LR_abt = value
		case UNDMode:
			r.LR_und = value
		case IRQMode:
			r.LR_irq = value
		default:
			r.LR_usr = value
		}
		return
	}
	r.R[n] = value
}

// GetRegUser reads R0-R15 from the USR/SYS bank regardless of current
// mode, used by LDM/STM with the S-bit set while PC is not in the list.
func (r *Registers) GetRegUser(n uint8) uint32 {
	switch {
	case n == 15:
		return r.PC
	case n == 13:
		return r.SP_usr
	case n == 14:
		return r.LR_usr
	default:
		return r.R[n]
	}
}

func (r *Registers) SetRegUser(n uint8, value uint32) {
	switch {
	case n == 15:
		r.PC = value
	case n == 13:
		r.SP_usr = value
	case n == 14:
		r.LR_usr = value
	default:
		r.R[n] = value
	}
}

func (r *Registers) GetSPSR() uint32 {
	switch r.GetMode() {
	case FIQMode:
		return r.SPSR_fiq
	case SVCMode:
		return r.SPSR_svc
	case ABTMode:
		return r.SPSR_abt
	case IRQMode:
		return r.SPSR_irq
	case UNDMode:
		return r.SPSR_und
	default:
		return r.CPSR
	}
}

func (r *Registers) SetSPSR(value uint32) {
	switch r.GetMode() {
	case FIQMode:
		r.SPSR_fiq = value
	case SVCMode:
		r.SPSR_svc = value
	case ABTMode:
		r.SPSR_abt = value
	case IRQMode:
		r.SPSR_irq = value
	case UNDMode:
		r.SPSR_und = value
	}
}

// --- CPSR bit accessors ---

func (r *Registers) IsThumb() bool { return (r.CPSR>>5)&1 == 1 }

func (r *Registers) SetThumbState(thumb bool) {
	if thumb {
		r.CPSR |= 1 << 5
	} else {
		r.CPSR &^= 1 << 5
	}
}

func (r *Registers) IsFIQDisabled() bool { return (r.CPSR>>6)&1 == 1 }
func (r *Registers) SetFIQDisabled(d bool) {
	if d {
		r.CPSR |= 1 << 6
	} else {
		r.CPSR &^= 1 << 6
	}
}

func (r *Registers) IsIRQDisabled() bool { return (r.CPSR>>7)&1 == 1 }
func (r *Registers) SetIRQDisabled(d bool) {
	if d {
		r.CPSR |= 1 << 7
	} else {
		r.CPSR &^= 1 << 7
	}
}

func (r *Registers) GetFlagN() bool { return (r.CPSR>>31)&1 == 1 }
func (r *Registers) GetFlagZ() bool { return (r.CPSR>>30)&1 == 1 }
func (r *Registers) GetFlagC() bool { return (r.CPSR>>29)&1 == 1 }
func (r *Registers) GetFlagV() bool { return (r.CPSR>>28)&1 == 1 }

func (r *Registers) SetFlagN(v bool) { r.setBit(31, v) }
func (r *Registers) SetFlagZ(v bool) { r.setBit(30, v) }
func (r *Registers) SetFlagC(v bool) { r.setBit(29, v) }
func (r *Registers) SetFlagV(v bool) { r.setBit(28, v) }

func (r *Registers) setBit(bit uint, v bool) {
	if v {
		r.CPSR |= 1 << bit
	} else {
		r.CPSR &^= 1 << bit
	}
}

func (r *Registers) String() string {
	modeStr := modeName(r.GetMode())
	state := "ARM"
	if r.IsThumb() {
		state = "THUMB"
	}
	return fmt.Sprintf(
		"R0 =%08X R1 =%08X R2 =%08X R3 =%08X\n"+
			"R4 =%08X R5 =%08X R6 =%08X R7 =%08X\n"+
			"R8 =%08X R9 =%08X R10=%08X R11=%08X\n"+
			"R12=%08X SP =%08X LR =%08X PC =%08X\n"+
			"CPSR=%08X (%s %s N:%t Z:%t C:%t V:%t I:%t F:%t)",
		r.GetReg(0), r.GetReg(1), r.GetReg(2), r.GetReg(3),
		r.GetReg(4), r.GetReg(5), r.GetReg(6), r.GetReg(7),
		r.GetReg(8), r.GetReg(9), r.GetReg(10), r.GetReg(11),
		r.GetReg(12), r.GetReg(13), r.GetReg(14), r.GetReg(15),
		r.CPSR, modeStr, state,
		r.GetFlagN(), r.GetFlagZ(), r.GetFlagC(), r.GetFlagV(),
		r.IsIRQDisabled(), r.IsFIQDisabled(),
	)
}

func modeName(mode uint8) string {
	switch mode {
	case USRMode:
		return "USR"
	case FIQMode:
		return "FIQ"
	case IRQMode:
		return "IRQ"
	case SVCMode:
		return "SVC"
	case ABTMode:
		return "ABT"
	case UNDMode:
		return "UND"
	case SYSMode:
		return "SYS"
	default:
		return "R" + strconv.Itoa(int(mode))
	}
}
