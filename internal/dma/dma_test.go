package dma

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goba/internal/interfaces"
)

type flatBus struct {
	mem [0x10000]byte
}

func (b *flatBus) Read8(addr uint32) uint8     { return b.mem[addr&0xFFFF] }
func (b *flatBus) Write8(addr uint32, v uint8)  { b.mem[addr&0xFFFF] = v }
func (b *flatBus) Read16(addr uint32) uint16 {
	a := addr & 0xFFFF
	return uint16(b.mem[a]) | uint16(b.mem[a+1])<<8
}
func (b *flatBus) Write16(addr uint32, v uint16) {
	a := addr & 0xFFFF
	b.mem[a] = uint8(v)
	b.mem[a+1] = uint8(v >> 8)
}
func (b *flatBus) Read32(addr uint32) uint32 {
	return uint32(b.Read16(addr)) | uint32(b.Read16(addr+2))<<16
}
func (b *flatBus) Write32(addr uint32, v uint32) {
	b.Write16(addr, uint16(v))
	b.Write16(addr+2, uint16(v>>16))
}

type noopIRQ struct{}

func (noopIRQ) RaiseIRQ(interfaces.IRQSource) {}

// TestImmediateTransfer arms DMA0 for an immediate word copy and checks
// it runs as soon as RunImmediate is called, copying the programmed
// count and disabling itself afterward (no repeat).
func TestImmediateTransfer(t *testing.T) {
	bus := &flatBus{}
	bus.Write32(0x100, 0xDEADBEEF)
	bus.Write32(0x104, 0x12345678)

	c := New()
	ctrl := uint16(1<<15) | uint16(1<<10) // enable, 32-bit width, increment/increment, immediate timing
	c.WriteControl(0, ctrl, 0x100, 0x200, 2)

	c.RunImmediate(bus, noopIRQ{})

	assert.Equal(t, uint32(0xDEADBEEF), bus.Read32(0x200))
	assert.Equal(t, uint32(0x12345678), bus.Read32(0x204))
	assert.False(t, c.Channels[0].Enable)
}

func TestSoundFIFOTransferAlwaysFourWords(t *testing.T) {
	bus := &flatBus{}
	for i := uint32(0); i < 16; i++ {
		bus.Write32(0x300+i*4, 0x01010101*i)
	}

	c := New()
	c.SoundFIFODest = [2]uint32{0x040000A0, 0x040000A4}

	ctrl := uint16(1<<15) | uint16(1<<10) | uint16(3<<12) | uint16(1<<9) // enable, 32-bit, special timing, repeat
	c.WriteControl(1, ctrl, 0x300, 0x040000A0, 100)                      // programmed count far larger than 4

	c.RunSpecial(bus, noopIRQ{})

	// only 4 words moved regardless of the programmed count of 100, and
	// the fixed FIFO destination holds the last of those 4 words.
	assert.Equal(t, uint32(0x01010101*3), bus.Read32(0x040000A0))
	assert.Equal(t, uint32(0x300+4*4), c.Channels[1].shadowSrc)
	assert.True(t, c.Channels[1].Enable) // repeat keeps it armed
}
