package ppu

// bgLine is one background layer's resolved scanline: a palette-index
// color (already resolved to RGB555) per pixel, and whether that pixel
// is transparent (index 0, or off-screen for affine layers in
// non-wraparound mode).
type bgLine struct {
	color    [ScreenWidth]uint16
	opaque   [ScreenWidth]bool
}

func (p *PPU) paletteColor(index uint8, bank uint8, use256 bool) (uint16, bool) {
	if use256 {
		if index == 0 {
			return 0, false
		}
		return p.ReadPalette16(uint32(index) * 2), true
	}
	if index == 0 {
		return 0, false
	}
	offset := (uint32(bank)*16 + uint32(index)) * 2
	return p.ReadPalette16(offset), true
}

// renderTextBG renders one scanline of a regular (non-affine) tiled
// background using BGnHOFS/VOFS scrolling.
func (p *PPU) renderTextBG(bgIndex int) bgLine {
	var line bgLine
	y := int(p.VCOUNT) + int(p.BGVOFS[bgIndex])
	use256 := p.bg256Color(bgIndex)
	charBase := p.bgCharBase(bgIndex)
	screenBase := p.bgScreenBase(bgIndex)
	mapW, mapH := regularBGSize(p.bgSizeField(bgIndex))

	tileBytes := uint32(32)
	if use256 {
		tileBytes = 64
	}

	for sx := 0; sx < ScreenWidth; sx++ {
		x := sx + int(p.BGHOFS[bgIndex])
		wx := ((x % mapW) + mapW) % mapW
		wy := ((y % mapH) + mapH) % mapH

		tileCol := wx / 8
		tileRow := wy / 8
		mapBlock := 0
		localCol, localRow := tileCol, tileRow
		if mapW > 256 && wx >= 256 {
			mapBlock += 1
			localCol = tileCol - 32
		}
		if mapH > 256 && wy >= 256 {
			mapBlock += 2
			localRow = tileRow - 32
		}
		screenEntryAddr := screenBase + uint32(mapBlock)*0x800 + uint32(localRow*32+localCol)*2
		entry := p.ReadVRAM16(screenEntryAddr)

		tileID := entry & 0x3FF
		flipH := entry&(1<<10) != 0
		flipV := entry&(1<<11) != 0
		palBank := uint8((entry >> 12) & 0xF)

		px, py := wx%8, wy%8
		if flipH {
			px = 7 - px
		}
		if flipV {
			py = 7 - py
		}

		var idx uint8
		if use256 {
			tileAddr := charBase + uint32(tileID)*tileBytes + uint32(py*8+px)
			idx = p.ReadVRAM8(tileAddr)
		} else {
			tileAddr := charBase + uint32(tileID)*tileBytes + uint32(py*8+px)/2
			b := p.ReadVRAM8(tileAddr)
			if px%2 == 0 {
				idx = b & 0xF
			} else {
				idx = b >> 4
			}
		}

		color, opaque := p.paletteColor(idx, palBank, use256)
		line.color[sx] = color
		line.opaque[sx] = opaque
	}
	return line
}

// renderAffineBG renders one scanline of an affine BG (BG2/BG3 in modes
// 1/2), using the latched per-scanline reference point.
func (p *PPU) renderAffineBG(bgIndex int, affineIdx int) bgLine {
	var line bgLine
	aff := &p.BGAffine[affineIdx]
	use256 := true // affine BGs are always 256-color
	charBase := p.bgCharBase(bgIndex)
	screenBase := p.bgScreenBase(bgIndex)
	size := affineBGSize(p.bgSizeField(bgIndex))
	wrap := p.bgWrapAround(bgIndex)

	refX, refY := aff.latchedX, aff.latchedY
	pa, pc := int32(aff.PA), int32(aff.PC)

	for sx := 0; sx < ScreenWidth; sx++ {
		px := (refX + int32(sx)*pa) >> 8
		py := (refY + int32(sx)*pc) >> 8

		if wrap {
			px = ((px % int32(size)) + int32(size)) % int32(size)
			py = ((py % int32(size)) + int32(size)) % int32(size)
		} else if px < 0 || py < 0 || px >= int32(size) || py >= int32(size) {
			line.opaque[sx] = false
			continue
		}

		tilesPerRow := uint32(size / 8)
		tileCol := uint32(px) / 8
		tileRow := uint32(py) / 8
		screenEntryAddr := screenBase + (tileRow*tilesPerRow+tileCol)
		tileID := p.ReadVRAM8(screenEntryAddr)

		tx, ty := uint32(px)%8, uint32(py)%8
		tileAddr := charBase + uint32(tileID)*64 + ty*8 + tx
		idx := p.ReadVRAM8(tileAddr)

		color, opaque := p.paletteColor(idx, 0, use256)
		line.color[sx] = color
		line.opaque[sx] = opaque
	}
	return line
}
