// Package ppu implements the scanline-driven raster engine: DISPCNT/
// DISPSTAT/VCOUNT timing, the four tiled/bitmap background layers,
// sprites, windows and blending, per spec §4.4.
package ppu

import "goba/internal/interfaces"

const (
	ScreenWidth  = 240
	ScreenHeight = 160

	CyclesPerLine  = 1232
	HBlankCycle    = 960
	LinesPerFrame  = 228
	VBlankLine     = 160

	PaletteSize = 1024
	VRAMSize    = 96 * 1024
	OAMSize     = 1024
)

// PPU owns palette RAM, VRAM, OAM and all display-control registers,
// and produces a 240x160 RGB555 framebuffer one scanline at a time.
type PPU struct {
	Palette [PaletteSize]byte
	VRAM    [VRAMSize]byte
	OAM     [OAMSize]byte

	Framebuffer [ScreenWidth * ScreenHeight]uint16 // RGB555

	DISPCNT  uint16
	DISPSTAT uint16
	VCOUNT   uint16

	BGCNT  [4]uint16
	BGHOFS [4]uint16
	BGVOFS [4]uint16

	BGAffine [2]AffineParams // indexed 0=BG2, 1=BG3

	WIN0H, WIN0V, WIN1H, WIN1V uint16
	WININ, WINOUT              uint16

	BLDCNT  uint16
	BLDALPHA uint16
	BLDY    uint16

	lineCycle  int
	frameReady bool

	// hooks, wired by the owning System
	onHBlank func()
	onVBlank func()
}

// AffineParams is the 2x2 matrix plus reference point used by affine
// BG2/BG3 in modes 1/2, latched per spec §4.4.
type AffineParams struct {
	PA, PB, PC, PD int16   // 8.8 fixed point
	X, Y           int32   // 20.8 fixed point reference, written value
	latchedX, latchedY int32 // latched at line start, advances each scanline
}

func New() *PPU {
	return &PPU{}
}

// SetHooks registers the callbacks the owning System uses to trigger
// HBlank/VBlank-timed DMAs and interrupts; kept as callbacks rather than
// a stored bus/interrupt reference to avoid a cyclic dependency.
func (p *PPU) SetHooks(onHBlank, onVBlank func()) {
	p.onHBlank = onHBlank
	p.onVBlank = onVBlank
}

const (
	dispstatVBlank    = 1 << 0
	dispstatHBlank    = 1 << 1
	dispstatVCount    = 1 << 2
	dispstatVBlankIRQ = 1 << 3
	dispstatHBlankIRQ = 1 << 4
	dispstatVCountIRQ = 1 << 5
)

// Tick advances the PPU by cycles CPU cycles, crossing the HBlank/VBlank
// and per-scanline boundaries documented in spec §4.4, raising IF bits
// through irq as configured.
func (p *PPU) Tick(cycles int, irq interfaces.InterruptRaiser) {
	for cycles > 0 {
		step := cycles
		if p.lineCycle < HBlankCycle && p.lineCycle+step > HBlankCycle {
			step = HBlankCycle - p.lineCycle
		} else if p.lineCycle >= HBlankCycle && p.lineCycle+step > CyclesPerLine {
			step = CyclesPerLine - p.lineCycle
		}
		p.lineCycle += step
		cycles -= step

		if p.lineCycle == HBlankCycle {
			p.enterHBlank(irq)
		}
		if p.lineCycle >= CyclesPerLine {
			p.lineCycle = 0
			p.nextLine(irq)
		}
	}
}

func (p *PPU) enterHBlank(irq interfaces.InterruptRaiser) {
	if p.VCOUNT < VBlankLine {
		p.renderScanline()
	}
	p.DISPSTAT |= dispstatHBlank
	if p.DISPSTAT&dispstatHBlankIRQ != 0 {
		irq.RaiseIRQ(interfaces.IRQHBlank)
	}
	if p.onHBlank != nil {
		p.onHBlank()
	}
}

func (p *PPU) nextLine(irq interfaces.InterruptRaiser) {
	p.DISPSTAT &^= dispstatHBlank
	p.VCOUNT++
	if p.VCOUNT >= LinesPerFrame {
		p.VCOUNT = 0
		p.frameReady = true
		p.latchAffine()
	}

	if p.VCOUNT == VBlankLine {
		p.DISPSTAT |= dispstatVBlank
		if p.DISPSTAT&dispstatVBlankIRQ != 0 {
			irq.RaiseIRQ(interfaces.IRQVBlank)
		}
		if p.onVBlank != nil {
			p.onVBlank()
		}
	}
	if p.VCOUNT == 0 {
		p.DISPSTAT &^= dispstatVBlank
	}

	vcountTarget := uint16(p.DISPSTAT >> 8)
	if p.VCOUNT == vcountTarget {
		p.DISPSTAT |= dispstatVCount
		if p.DISPSTAT&dispstatVCountIRQ != 0 {
			irq.RaiseIRQ(interfaces.IRQVCount)
		}
	} else {
		p.DISPSTAT &^= dispstatVCount
	}

	if p.VCOUNT < ScreenHeight {
		p.latchAffineLine()
	}
}

func (p *PPU) latchAffine() {
	for i := range p.BGAffine {
		p.BGAffine[i].latchedX = p.BGAffine[i].X
		p.BGAffine[i].latchedY = p.BGAffine[i].Y
	}
}

func (p *PPU) latchAffineLine() {
	// On scanlines after the first, the reference point advances by one
	// row's worth of PB/PD (the per-scanline latching spec §4.4 calls
	// out); at VCOUNT==0 the stored X/Y write value is used directly.
	if p.VCOUNT == 0 {
		p.latchAffine()
		return
	}
	for i := range p.BGAffine {
		p.BGAffine[i].latchedX += int32(p.BGAffine[i].PB)
		p.BGAffine[i].latchedY += int32(p.BGAffine[i].PD)
	}
}

func (p *PPU) IsFrameReady() bool { return p.frameReady }
func (p *PPU) ResetFrameReady()   { p.frameReady = false }

// Reset restores power-on state for a system reset.
func (p *PPU) Reset() {
	hb, vb := p.onHBlank, p.onVBlank
	*p = PPU{}
	p.onHBlank, p.onVBlank = hb, vb
}
