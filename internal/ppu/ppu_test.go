package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goba/internal/interfaces"
)

// noopIRQ discards every raised interrupt; the scanline/mode-3 pixel
// tests below don't assert on IF bits.
type noopIRQ struct{}

func (noopIRQ) RaiseIRQ(interfaces.IRQSource) {}

// TestMode3Pixel writes a single RGB555 pixel into VRAM, selects bitmap
// mode 3 with BG2 enabled, and checks the scanline renderer copies it
// straight into the framebuffer untouched.
func TestMode3Pixel(t *testing.T) {
	p := New()
	p.DISPCNT = 0x3 | (1 << 10) // mode 3, BG2 enable

	want := uint16(0x1F) // pure red in RGB555
	p.WriteVRAM16(0, want)

	p.Tick(HBlankCycle, noopIRQ{})

	assert.Equal(t, want, p.Framebuffer[0])
}

func TestFrameReadyAfterFullFrame(t *testing.T) {
	p := New()
	assert.False(t, p.IsFrameReady())

	p.Tick(CyclesPerLine*LinesPerFrame, noopIRQ{})
	assert.True(t, p.IsFrameReady())

	p.ResetFrameReady()
	assert.False(t, p.IsFrameReady())
}

func TestForceBlankFillsWhite(t *testing.T) {
	p := New()
	p.DISPCNT = 1 << 7 // force blank

	p.Tick(HBlankCycle, noopIRQ{})

	assert.Equal(t, uint16(0x7FFF), p.Framebuffer[0])
}
