package ppu

const oamEntrySize = 8

// objShapeSize maps (shape, size) to {width, height} in pixels, per the
// standard GBA OBJ attribute table.
var objShapeSize = [3][4][2]int{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},   // square
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},   // horizontal
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},   // vertical
}

type objLine struct {
	color           [ScreenWidth]uint16
	opaque          [ScreenWidth]bool
	priority        [ScreenWidth]int
	semiTransparent [ScreenWidth]bool
	winMask         [ScreenWidth]bool
}

// renderSprites scans all 128 OAM entries and produces the OBJ layer and
// OBJ-window mask for the current scanline. Processed from OBJ 127 down
// to 0 so that, for pixels of equal priority, the lowest-numbered OBJ
// (processed last) wins, matching hardware.
func (p *PPU) renderSprites() objLine {
	var out objLine
	y := int(p.VCOUNT)

	for i := 127; i >= 0; i-- {
		base := uint32(i * oamEntrySize)
		attr0 := p.ReadOAM16(base)
		attr1 := p.ReadOAM16(base + 2)
		attr2 := p.ReadOAM16(base + 4)

		objMode := (attr0 >> 10) & 0x3
		if objMode == 3 {
			continue // prohibited
		}
		isAffine := attr0&(1<<8) != 0
		doubleSize := isAffine && attr0&(1<<9) != 0
		if !isAffine && attr0&(1<<9) != 0 {
			continue // disabled (non-affine "double size" bit means hidden)
		}

		shape := int((attr0 >> 14) & 0x3)
		if shape == 3 {
			continue
		}
		size := int((attr1 >> 14) & 0x3)
		w, h := objShapeSize[shape][size][0], objShapeSize[shape][size][1]
		boundW, boundH := w, h
		if doubleSize {
			boundW, boundH = w*2, h*2
		}

		objY := int(attr0 & 0xFF)
		if objY >= 160 {
			objY -= 256
		}
		row := y - objY
		if row < 0 || row >= boundH {
			continue
		}

		objX := int(attr1 & 0x1FF)
		if objX >= 240 {
			objX -= 512
		}

		use256 := attr0&(1<<13) != 0
		priority := int((attr2 >> 10) & 0x3)
		tileID := uint32(attr2 & 0x3FF)
		palBank := uint8((attr2 >> 12) & 0xF)

		var pa, pb, pc, pd int32 = 256, 0, 0, 256
		if isAffine {
			affGroup := uint32((attr1 >> 9) & 0x1F)
			agBase := affGroup * 32
			pa = int32(int16(p.ReadOAM16(agBase + 6)))
			pb = int32(int16(p.ReadOAM16(agBase + 14)))
			pc = int32(int16(p.ReadOAM16(agBase + 22)))
			pd = int32(int16(p.ReadOAM16(agBase + 30)))
		}

		flipH := !isAffine && attr1&(1<<12) != 0
		flipV := !isAffine && attr1&(1<<13) != 0

		cx, cy := boundW/2, boundH/2
		relY := row - cy
		wTiles := w / 8

		for col := 0; col < boundW; col++ {
			sx := objX + col
			if sx < 0 || sx >= ScreenWidth {
				continue
			}
			relX := col - cx

			var texX, texY int
			if isAffine {
				tx := (pa*int32(relX) + pb*int32(relY)) >> 8
				ty := (pc*int32(relX) + pd*int32(relY)) >> 8
				texX = int(tx) + w/2
				texY = int(ty) + h/2
				if texX < 0 || texY < 0 || texX >= w || texY >= h {
					continue
				}
			} else {
				texX, texY = col, row
				if flipH {
					texX = w - 1 - texX
				}
				if flipV {
					texY = h - 1 - texY
				}
			}

			idx := p.sampleObjTile(tileID, texX, texY, wTiles, use256)
			if idx == 0 {
				continue
			}

			if objMode == 2 {
				out.winMask[sx] = true
				continue
			}
			if out.opaque[sx] && out.priority[sx] < priority {
				continue
			}
			color, _ := p.paletteColor(idx, palBank, use256)
			out.color[sx] = color
			out.opaque[sx] = true
			out.priority[sx] = priority
			out.semiTransparent[sx] = objMode == 1
		}
	}
	return out
}

// sampleObjTile reads one texel of a (possibly multi-tile) sprite.
// wTiles is the sprite's width in tiles, needed to stride between rows
// under the DISPCNT 1D OBJ-mapping mode; in 2D mode rows are 32 tiles
// apart regardless of sprite width.
func (p *PPU) sampleObjTile(tileID uint32, texX, texY, wTiles int, use256 bool) uint8 {
	const objBase = 0x10000
	tileCol, tileRow := uint32(texX/8), uint32(texY/8)
	px, py := texX%8, texY%8

	tileStep := uint32(1)
	tileBytes := uint32(32)
	if use256 {
		tileStep = 2
		tileBytes = 64
	}

	rowStride := uint32(32)
	if p.objVRAM1D() {
		rowStride = uint32(wTiles) * tileStep
	}
	tileNum := tileID + tileRow*rowStride + tileCol*tileStep
	tileAddr := uint32(objBase) + tileNum*tileBytes

	if use256 {
		return p.ReadVRAM8(tileAddr + uint32(py*8+px))
	}
	b := p.ReadVRAM8(tileAddr + uint32(py*8+px)/2)
	if px%2 == 0 {
		return b & 0xF
	}
	return b >> 4
}
