// Package bus implements the GBA's address-routed memory map: it
// classifies every 32-bit physical address into one of the regions
// named in spec §3/§6 and dispatches reads and writes to the backing
// store or sub-component that owns it. Components never reach into
// each other directly; they only ever see the bus, per the "Cyclic
// references" design note in spec §9.
package bus

import (
	"goba/internal/apu"
	"goba/internal/cartridge"
	"goba/internal/dma"
	"goba/internal/input"
	"goba/internal/interrupt"
	"goba/internal/memory"
	"goba/internal/ppu"
	"goba/internal/timer"
)

// Region base addresses and mirror periods, per spec §6.
const (
	biosBase = 0x00000000
	biosEnd  = 0x00003FFF

	ewramBase = 0x02000000
	ewramEnd  = 0x02FFFFFF

	iwramBase = 0x03000000
	iwramEnd  = 0x03FFFFFF

	ioBase = 0x04000000
	ioEnd  = 0x040003FF

	paletteBase = 0x05000000
	paletteEnd  = 0x05FFFFFF

	vramBase = 0x06000000
	vramEnd  = 0x06FFFFFF

	oamBase = 0x07000000
	oamEnd  = 0x07FFFFFF

	romBase = 0x08000000
	romEnd  = 0x09FFFFFF

	saveBase = 0x0E000000
	saveEnd  = 0x0EFFFFFF
)

// Bus owns no backing storage itself: BIOS/EWRAM/IWRAM are plain
// regions, and PPU/APU/DMA/Timers/Interrupt/Keypad/Cartridge each own
// their own state. The bus is the single place that knows the address
// map connecting them, per spec §5's "the bus is the single shared
// mutable surface" concurrency note.
type Bus struct {
	BIOS  *memory.BIOS
	EWRAM *memory.RAM
	IWRAM *memory.RAM

	PPU       *ppu.PPU
	APU       *apu.APU
	DMA       *dma.Controller
	Timers    *timer.Controller
	Interrupt *interrupt.Controller
	Keypad    *input.Keypad
	Cartridge *cartridge.Cartridge

	dmaRegs dmaRegs
	tmRegs  timerRegs

	ieShadow     uint16
	keycntShadow uint16

	// executingBIOS approximates "the CPU is fetching inside BIOS" for
	// the open-bus rule in spec §3; set by the owning System before
	// each CPU step from the current PC.
	executingBIOS bool
}

// New builds a bus over the supplied components. Every field must be
// non-nil; wiring them together is the owning System's job.
func New(bios *memory.BIOS, ewram, iwram *memory.RAM, p *ppu.PPU, a *apu.APU, d *dma.Controller, t *timer.Controller, ic *interrupt.Controller, kp *input.Keypad, cart *cartridge.Cartridge) *Bus {
	return &Bus{
		BIOS: bios, EWRAM: ewram, IWRAM: iwram,
		PPU: p, APU: a, DMA: d, Timers: t, Interrupt: ic, Keypad: kp, Cartridge: cart,
	}
}

// SetExecutingBIOS records whether the CPU's program counter currently
// lies inside the BIOS region, for the open-bus approximation spec §3
// allows.
func (b *Bus) SetExecutingBIOS(pc uint32) { b.executingBIOS = pc <= biosEnd }

// Read8 reads one byte from the full 32-bit address space.
func (b *Bus) Read8(addr uint32) uint8 {
	switch {
	case addr <= biosEnd:
		return b.BIOS.Read8(addr, b.executingBIOS)
	case addr >= ewramBase && addr <= ewramEnd:
		return b.EWRAM.Read8(addr & memory.EWRAMMask)
	case addr >= iwramBase && addr <= iwramEnd:
		return b.IWRAM.Read8(addr & memory.IWRAMMask)
	case addr >= ioBase && addr <= ioEnd:
		return b.readIO8(addr - ioBase)
	case addr >= paletteBase && addr <= paletteEnd:
		return b.PPU.ReadPalette8(addr - paletteBase)
	case addr >= vramBase && addr <= vramEnd:
		return b.PPU.ReadVRAM8(vramOffset(addr))
	case addr >= oamBase && addr <= oamEnd:
		return b.PPU.ReadOAM8(addr - oamBase)
	case addr >= romBase && addr <= romEnd:
		return b.Cartridge.ReadROM8(addr - romBase)
	case addr >= saveBase && addr <= saveEnd:
		return b.Cartridge.Save.Read8(addr - saveBase)
	default:
		return 0
	}
}

// Write8 writes one byte. ROM and BIOS are read-only and silently drop
// writes, per spec §3/§7.
func (b *Bus) Write8(addr uint32, value uint8) {
	switch {
	case addr <= biosEnd:
		return
	case addr >= ewramBase && addr <= ewramEnd:
		b.EWRAM.Write8(addr&memory.EWRAMMask, value)
	case addr >= iwramBase && addr <= iwramEnd:
		b.IWRAM.Write8(addr&memory.IWRAMMask, value)
	case addr >= ioBase && addr <= ioEnd:
		b.writeIO8(addr-ioBase, value)
	case addr >= paletteBase && addr <= paletteEnd:
		b.PPU.WritePalette8(addr-paletteBase, value)
	case addr >= vramBase && addr <= vramEnd:
		b.PPU.WriteVRAM8(vramOffset(addr), value)
	case addr >= oamBase && addr <= oamEnd:
		b.PPU.WriteOAM8(addr-oamBase, value) // OAM ignores byte writes, per spec §4.2
	case addr >= romBase && addr <= romEnd:
		return
	case addr >= saveBase && addr <= saveEnd:
		b.Cartridge.Save.Write8(addr-saveBase, value)
	}
}

// vramOffset implements VRAM's split mirroring, per spec §6: the 96KiB
// region is two 64KiB halves, the second of which further mirrors as
// two 32KiB halves (used by bitmap modes' page-flip addressing).
func vramOffset(addr uint32) uint32 {
	a := (addr - vramBase) % (128 * 1024)
	if a >= ppu.VRAMSize {
		a -= 32 * 1024
	}
	return a
}

func (b *Bus) Read16(addr uint32) uint16 {
	switch {
	case addr >= paletteBase && addr <= paletteEnd:
		return b.PPU.ReadPalette16(addr - paletteBase)
	case addr >= vramBase && addr <= vramEnd:
		return b.PPU.ReadVRAM16(vramOffset(addr))
	case addr >= oamBase && addr <= oamEnd:
		return b.PPU.ReadOAM16(addr - oamBase)
	case addr >= saveBase && addr <= saveEnd:
		return b.Cartridge.Save.Read16(addr - saveBase)
	default:
		lo := uint16(b.Read8(addr))
		hi := uint16(b.Read8(addr + 1))
		return lo | hi<<8
	}
}

func (b *Bus) Write16(addr uint32, value uint16) {
	switch {
	case addr >= paletteBase && addr <= paletteEnd:
		b.PPU.WritePalette16(addr-paletteBase, value)
	case addr >= vramBase && addr <= vramEnd:
		b.PPU.WriteVRAM16(vramOffset(addr), value)
	case addr >= oamBase && addr <= oamEnd:
		b.PPU.WriteOAM16(addr-oamBase, value)
	case addr >= saveBase && addr <= saveEnd:
		b.Cartridge.Save.Write16(addr-saveBase, value)
	default:
		b.Write8(addr, uint8(value))
		b.Write8(addr+1, uint8(value>>8))
	}
}

func (b *Bus) Read32(addr uint32) uint32 {
	lo := uint32(b.Read16(addr))
	hi := uint32(b.Read16(addr + 2))
	return lo | hi<<16
}

func (b *Bus) Write32(addr uint32, value uint32) {
	b.Write16(addr, uint16(value))
	b.Write16(addr+2, uint16(value>>16))
}

// Reset restores power-on state for every component the bus owns a
// reference to; the backing memory arrays are left as-is (the GBA does
// not clear WRAM on a soft reset, and real titles rely on this).
func (b *Bus) Reset() {
	b.PPU.Reset()
	b.APU.Reset()
	b.DMA.Reset()
	b.Timers.Reset()
	b.Interrupt.Reset()
	b.dmaRegs = dmaRegs{}
	b.tmRegs = timerRegs{}
	b.executingBIOS = false
}
