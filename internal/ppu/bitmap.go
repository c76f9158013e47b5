package ppu

// renderBitmapBG2 renders BG2 in one of the bitmap modes (3, 4, 5),
// which only BG2 can display.
func (p *PPU) renderBitmapBG2() bgLine {
	switch p.bgMode() {
	case 3:
		return p.renderMode3()
	case 4:
		return p.renderMode4()
	case 5:
		return p.renderMode5()
	default:
		return bgLine{}
	}
}

// renderMode3 reads a direct 15-bit color per pixel from a single
// 240x160 frame at VRAM base 0.
func (p *PPU) renderMode3() bgLine {
	var line bgLine
	y := uint32(p.VCOUNT)
	for x := 0; x < ScreenWidth; x++ {
		addr := (y*ScreenWidth + uint32(x)) * 2
		line.color[x] = p.ReadVRAM16(addr)
		line.opaque[x] = true
	}
	return line
}

// renderMode4 reads an 8-bit palette index per pixel from one of two
// 240x160 pages, resolved through palette RAM.
func (p *PPU) renderMode4() bgLine {
	var line bgLine
	y := uint32(p.VCOUNT)
	base := uint32(0)
	if p.frameSelect() == 1 {
		base = 0xA000
	}
	for x := 0; x < ScreenWidth; x++ {
		addr := base + y*ScreenWidth + uint32(x)
		idx := p.ReadVRAM8(addr)
		color, opaque := p.paletteColor(idx, 0, true)
		line.color[x] = color
		line.opaque[x] = opaque
	}
	return line
}

// renderMode5 reads a direct 15-bit color per pixel from a smaller
// 160x128 frame (one of two pages), letterboxed to the 240-wide line.
func (p *PPU) renderMode5() bgLine {
	var line bgLine
	const modeW, modeH = 160, 128
	y := int(p.VCOUNT)
	if y >= modeH {
		return line
	}
	base := uint32(0)
	if p.frameSelect() == 1 {
		base = 0xA000
	}
	for x := 0; x < modeW; x++ {
		addr := base + (uint32(y)*modeW+uint32(x))*2
		line.color[x] = p.ReadVRAM16(addr)
		line.opaque[x] = true
	}
	return line
}
