// Package interfaces declares the narrow contracts components use to talk
// to each other without holding back-pointers: the bus, CPU, PPU, APU,
// timers, DMA and SWI shim all see each other only through these
// interfaces, passed in as parameters, never stored as cyclic ownership.
package interfaces

// Bus is the address-routed façade every component reads and writes
// through. Components never reach into each other's backing arrays
// directly.
type Bus interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, value uint8)
	Read16(addr uint32) uint16
	Write16(addr uint32, value uint16)
	Read32(addr uint32) uint32
	Write32(addr uint32, value uint32)
}

// InterruptRaiser lets any component assert an interrupt source without
// knowing about the interrupt controller's internals.
type InterruptRaiser interface {
	RaiseIRQ(source IRQSource)
}

// Registers is the narrow view of the ARM7TDMI register file the SWI
// shim needs: r0-r15 access through the currently banked mode, exactly
// as guest code would see it from inside the SWI handler's own mode.
// Declared here (rather than imported from package cpu) so internal/swi
// and internal/cpu can depend on each other's contracts without a
// package import cycle.
type Registers interface {
	GetReg(n uint8) uint32
	SetReg(n uint8, value uint32)
}

// IRQSource enumerates the 14 GBA interrupt sources, in IE/IF bit order.
type IRQSource uint16

const (
	IRQVBlank IRQSource = 1 << iota
	IRQHBlank
	IRQVCount
	IRQTimer0
	IRQTimer1
	IRQTimer2
	IRQTimer3
	IRQSerial
	IRQDMA0
	IRQDMA1
	IRQDMA2
	IRQDMA3
	IRQKeypad
	IRQGamePak
)

// DMATrigger enumerates the asynchronous events a DMA channel can be
// armed against besides Immediate.
type DMATrigger uint8

const (
	DMATriggerVBlank DMATrigger = iota
	DMATriggerHBlank
	DMATriggerSpecial
)
