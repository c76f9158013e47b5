package ppu

// Bit-field accessors for the display-control registers. Kept separate
// from the raw register storage in ppu.go so the rendering code reads
// named fields instead of magic shifts.

func (p *PPU) bgMode() int        { return int(p.DISPCNT & 0x7) }
func (p *PPU) frameSelect() int   { return int((p.DISPCNT >> 4) & 1) }
func (p *PPU) objVRAM1D() bool    { return p.DISPCNT&(1<<6) != 0 }
func (p *PPU) forceBlank() bool   { return p.DISPCNT&(1<<7) != 0 }
func (p *PPU) bgEnabled(i int) bool  { return p.DISPCNT&(1<<(8+uint(i))) != 0 }
func (p *PPU) objEnabled() bool   { return p.DISPCNT&(1<<12) != 0 }
func (p *PPU) win0Enabled() bool  { return p.DISPCNT&(1<<13) != 0 }
func (p *PPU) win1Enabled() bool  { return p.DISPCNT&(1<<14) != 0 }
func (p *PPU) winObjEnabled() bool { return p.DISPCNT&(1<<15) != 0 }
func (p *PPU) anyWindow() bool    { return p.win0Enabled() || p.win1Enabled() || p.winObjEnabled() }

func (p *PPU) bgPriority(i int) int   { return int(p.BGCNT[i] & 0x3) }
func (p *PPU) bgCharBase(i int) uint32 { return uint32((p.BGCNT[i]>>2)&0x3) * 0x4000 }
func (p *PPU) bgMosaic(i int) bool   { return p.BGCNT[i]&(1<<6) != 0 }
func (p *PPU) bg256Color(i int) bool { return p.BGCNT[i]&(1<<7) != 0 }
func (p *PPU) bgScreenBase(i int) uint32 { return uint32((p.BGCNT[i]>>8)&0x1F) * 0x800 }
func (p *PPU) bgWrapAround(i int) bool { return p.BGCNT[i]&(1<<13) != 0 }
func (p *PPU) bgSizeField(i int) int  { return int((p.BGCNT[i] >> 14) & 0x3) }

// regularBGSize returns the tilemap size in pixels for text mode BGs.
func regularBGSize(sizeField int) (w, h int) {
	switch sizeField {
	case 0:
		return 256, 256
	case 1:
		return 512, 256
	case 2:
		return 256, 512
	default:
		return 512, 512
	}
}

// affineBGSize returns the tilemap size in pixels for affine BG2/BG3.
func affineBGSize(sizeField int) int {
	return 128 << uint(sizeField)
}

func (p *PPU) win0Left() int   { return int(p.WIN0H >> 8) }
func (p *PPU) win0Right() int  { return int(p.WIN0H & 0xFF) }
func (p *PPU) win1Left() int   { return int(p.WIN1H >> 8) }
func (p *PPU) win1Right() int  { return int(p.WIN1H & 0xFF) }
func (p *PPU) win0Top() int    { return int(p.WIN0V >> 8) }
func (p *PPU) win0Bottom() int { return int(p.WIN0V & 0xFF) }
func (p *PPU) win1Top() int    { return int(p.WIN1V >> 8) }
func (p *PPU) win1Bottom() int { return int(p.WIN1V & 0xFF) }

func (p *PPU) blendMode() int      { return int((p.BLDCNT >> 6) & 0x3) }
func (p *PPU) blendTargetA(layer int) bool { return p.BLDCNT&(1<<uint(layer)) != 0 }
func (p *PPU) blendTargetB(layer int) bool { return p.BLDCNT&(1<<(8+uint(layer))) != 0 }
func (p *PPU) blendEVA() int { v := int(p.BLDALPHA & 0x1F); if v > 16 { v = 16 }; return v }
func (p *PPU) blendEVB() int { v := int((p.BLDALPHA >> 8) & 0x1F); if v > 16 { v = 16 }; return v }
func (p *PPU) blendEVY() int { v := int(p.BLDY & 0x1F); if v > 16 { v = 16 }; return v }

// layer indices used by BLDCNT target bits: 0-3 = BG0-3, 4 = OBJ, 5 = backdrop.
const (
	layerBG0 = 0
	layerBG1 = 1
	layerBG2 = 2
	layerBG3 = 3
	layerOBJ = 4
	layerBD  = 5
)

const (
	blendNone = 0
	blendAlpha = 1
	blendWhite = 2
	blendBlack = 3
)
