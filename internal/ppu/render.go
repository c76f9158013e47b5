package ppu

// renderScanline composites one row of the framebuffer at VCOUNT,
// combining backgrounds, sprites, windows and blending per spec §4.4's
// "Compositing" rule: gather {backdrop, enabled BGs at this priority,
// OBJ at this priority} in priority-then-layer order and take the first
// non-transparent pixel.
func (p *PPU) renderScanline() {
	y := int(p.VCOUNT)
	if p.forceBlank() {
		for x := 0; x < ScreenWidth; x++ {
			p.Framebuffer[y*ScreenWidth+x] = 0x7FFF
		}
		return
	}

	mode := p.bgMode()
	var bgLines [4]bgLine
	var bgActive [4]bool

	switch mode {
	case 0:
		for i := 0; i < 4; i++ {
			if p.bgEnabled(i) {
				bgLines[i] = p.renderTextBG(i)
				bgActive[i] = true
			}
		}
	case 1:
		for i := 0; i < 2; i++ {
			if p.bgEnabled(i) {
				bgLines[i] = p.renderTextBG(i)
				bgActive[i] = true
			}
		}
		if p.bgEnabled(2) {
			bgLines[2] = p.renderAffineBG(2, 0)
			bgActive[2] = true
		}
	case 2:
		if p.bgEnabled(2) {
			bgLines[2] = p.renderAffineBG(2, 0)
			bgActive[2] = true
		}
		if p.bgEnabled(3) {
			bgLines[3] = p.renderAffineBG(3, 1)
			bgActive[3] = true
		}
	case 3, 4, 5:
		if p.bgEnabled(2) {
			bgLines[2] = p.renderBitmapBG2()
			bgActive[2] = true
		}
	}

	var sprites objLine
	if p.objEnabled() {
		sprites = p.renderSprites()
	}

	backdrop, _ := p.paletteColor(0, 0, true)

	win := p.windowMaskForLine(y, &sprites)

	for x := 0; x < ScreenWidth; x++ {
		p.Framebuffer[y*ScreenWidth+x] = p.composePixel(x, mode, &bgLines, &bgActive, &sprites, &win, backdrop)
	}
}

// lineWindows holds, per pixel, which window region it falls in and
// which layers that region enables.
type lineWindows struct {
	enabled  bool
	inWin0   [ScreenWidth]bool
	inWin1   [ScreenWidth]bool
	inWinObj [ScreenWidth]bool
}

func (p *PPU) windowMaskForLine(y int, sprites *objLine) lineWindows {
	var w lineWindows
	if !p.anyWindow() {
		return w
	}
	w.enabled = true

	win0Vert := p.win0Enabled() && vertInRange(y, p.win0Top(), p.win0Bottom())
	win1Vert := p.win1Enabled() && vertInRange(y, p.win1Top(), p.win1Bottom())

	for x := 0; x < ScreenWidth; x++ {
		if win0Vert && horizInRange(x, p.win0Left(), p.win0Right()) {
			w.inWin0[x] = true
		}
		if win1Vert && horizInRange(x, p.win1Left(), p.win1Right()) {
			w.inWin1[x] = true
		}
		if p.winObjEnabled() && sprites.winMask[x] {
			w.inWinObj[x] = true
		}
	}
	return w
}

func vertInRange(y, top, bottom int) bool {
	if top <= bottom {
		return y >= top && y < bottom
	}
	return y >= top || y < bottom // wraps around the bottom of the screen
}

func horizInRange(x, left, right int) bool {
	if left <= right {
		return x >= left && x < right
	}
	return x >= left || x < right
}

// layerWindowEnable reports whether the given BLDCNT-style layer index
// may contribute to pixel x under the active window set.
func (p *PPU) layerWindowEnable(w *lineWindows, x, layer int) bool {
	if !w.enabled {
		return true
	}
	if w.inWin0[x] {
		return p.WININ&(1<<uint(layer)) != 0
	}
	if w.inWin1[x] {
		return p.WININ&(1<<(8+uint(layer))) != 0
	}
	if w.inWinObj[x] {
		return p.WINOUT&(1<<(8+uint(layer))) != 0
	}
	return p.WINOUT&(1<<uint(layer)) != 0
}

func (p *PPU) blendEnabledAt(w *lineWindows, x int) bool {
	if !w.enabled {
		return true
	}
	if w.inWin0[x] {
		return p.WININ&(1<<5) != 0
	}
	if w.inWin1[x] {
		return p.WININ&(1<<13) != 0
	}
	if w.inWinObj[x] {
		return p.WINOUT&(1<<13) != 0
	}
	return p.WINOUT&(1<<5) != 0
}

type candidate struct {
	layer    int
	priority int
	color    uint16
	semi     bool
}

func (p *PPU) composePixel(x, mode int, bgLines *[4]bgLine, bgActive *[4]bool, sprites *objLine, w *lineWindows, backdrop uint16) uint16 {
	candidates := make([]candidate, 0, 5)

	bgLayers := 4
	if mode >= 3 {
		bgLayers = 3 // only BG2 exists as layer index 2 for bitmap modes
	}
	for i := 0; i < bgLayers; i++ {
		if !bgActive[i] || !bgLines[i].opaque[x] {
			continue
		}
		if !p.layerWindowEnable(w, x, i) {
			continue
		}
		candidates = append(candidates, candidate{layer: i, priority: p.bgPriority(i), color: bgLines[i].color[x]})
	}
	if sprites.opaque[x] && p.layerWindowEnable(w, x, layerOBJ) {
		candidates = append(candidates, candidate{layer: layerOBJ, priority: sprites.priority[x], color: sprites.color[x], semi: sprites.semiTransparent[x]})
	}

	// Stable sort by priority (ties keep gather order, so a BG of equal
	// priority sorts ahead of OBJ); candidates slice is small (<=5) so a simple
	// insertion sort keeps this allocation-free in spirit.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].priority < candidates[j-1].priority; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}

	if len(candidates) == 0 {
		return backdrop
	}
	top := candidates[0]
	if !p.blendEnabledAt(w, x) {
		return top.color
	}

	mode2 := p.blendMode()
	if top.semi && len(candidates) > 1 {
		return blendAlphaColors(top.color, candidates[1].color, p.blendEVA(), p.blendEVB())
	}
	switch mode2 {
	case blendAlpha:
		if !p.blendTargetA(top.layer) {
			return top.color
		}
		var bottom uint16 = backdrop
		bottomLayer := layerBD
		if len(candidates) > 1 {
			bottom = candidates[1].color
			bottomLayer = candidates[1].layer
		}
		if !p.blendTargetB(bottomLayer) {
			return top.color
		}
		return blendAlphaColors(top.color, bottom, p.blendEVA(), p.blendEVB())
	case blendWhite:
		if !p.blendTargetA(top.layer) {
			return top.color
		}
		return blendToward(top.color, 0x7FFF, p.blendEVY())
	case blendBlack:
		if !p.blendTargetA(top.layer) {
			return top.color
		}
		return blendToward(top.color, 0x0000, p.blendEVY())
	default:
		return top.color
	}
}

func channels(c uint16) (r, g, b int) {
	return int(c & 0x1F), int((c >> 5) & 0x1F), int((c >> 10) & 0x1F)
}

func pack(r, g, b int) uint16 {
	if r > 31 {
		r = 31
	}
	if g > 31 {
		g = 31
	}
	if b > 31 {
		b = 31
	}
	return uint16(r) | uint16(g)<<5 | uint16(b)<<10
}

func blendAlphaColors(a, bCol uint16, eva, evb int) uint16 {
	ar, ag, ab := channels(a)
	br, bg, bb := channels(bCol)
	r := (ar*eva + br*evb) / 16
	g := (ag*eva + bg*evb) / 16
	b := (ab*eva + bb*evb) / 16
	return pack(r, g, b)
}

func blendToward(c, target uint16, evy int) uint16 {
	r, g, b := channels(c)
	tr, tg, tb := channels(target)
	r += (tr - r) * evy / 16
	g += (tg - g) * evy / 16
	b += (tb - b) * evy / 16
	return pack(r, g, b)
}
