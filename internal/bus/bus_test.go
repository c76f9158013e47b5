package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goba/internal/apu"
	"goba/internal/cartridge"
	"goba/internal/dma"
	"goba/internal/input"
	"goba/internal/interrupt"
	"goba/internal/memory"
	"goba/internal/ppu"
	"goba/internal/timer"
)

func newTestBus(t *testing.T) *Bus {
	cart, err := cartridge.Load(make([]byte, 1024))
	if err != nil {
		t.Fatal(err)
	}
	return New(memory.NewBIOS(), memory.NewEWRAM(), memory.NewIWRAM(), ppu.New(), apu.New(32768), dma.New(), timer.New(), interrupt.New(), input.New(), cart)
}

// TestEWRAMRoundTrip checks a plain RAM region routes reads back to
// whatever was last written at the same address.
func TestEWRAMRoundTrip(t *testing.T) {
	b := newTestBus(t)
	b.Write8(ewramBase+0x10, 0x42)
	assert.Equal(t, uint8(0x42), b.Read8(ewramBase+0x10))
}

// TestEWRAMMirrors checks the 256KiB region mirrors across its full
// 16MiB window, per spec §6.
func TestEWRAMMirrors(t *testing.T) {
	b := newTestBus(t)
	b.Write8(ewramBase+0x10, 0x99)
	assert.Equal(t, uint8(0x99), b.Read8(ewramBase+memory.EWRAMSize+0x10))
}

// TestROMAndBIOSWritesAreDropped checks writes to read-only regions
// never reach the backing store.
func TestROMAndBIOSWritesAreDropped(t *testing.T) {
	b := newTestBus(t)
	before := b.Read8(romBase)
	b.Write8(romBase, before+1)
	assert.Equal(t, before, b.Read8(romBase))

	b.SetExecutingBIOS(biosBase) // BIOS contents are only readable while executing there
	biosBefore := b.Read8(biosBase)
	b.Write8(biosBase, biosBefore+1)
	assert.Equal(t, biosBefore, b.Read8(biosBase))
}

// TestIEReadWrite checks the IE register is assembled from its two
// byte-wide writes and routed to the interrupt controller.
func TestIEReadWrite(t *testing.T) {
	b := newTestBus(t)
	b.Write8(ioBase+regIE, 0x34)
	b.Write8(ioBase+regIE+1, 0x12)
	assert.Equal(t, uint16(0x1234), b.Interrupt.ReadIE())
	assert.Equal(t, uint8(0x34), b.Read8(ioBase+regIE))
	assert.Equal(t, uint8(0x12), b.Read8(ioBase+regIE+1))
}

// TestVRAMUpperMirror checks the split mirroring rule: within each
// 128KiB mirror period, the top 32KiB folds back 32KiB onto the real
// VRAM's own last 32KiB rather than repeating the whole 96KiB window.
func TestVRAMUpperMirror(t *testing.T) {
	b := newTestBus(t)
	b.Write16(vramBase+0x11FFE, 0xBEEF)
	assert.Equal(t, uint16(0xBEEF), b.Read16(vramBase+0x19FFE))
}
