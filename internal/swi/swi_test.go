package swi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeRegs is a minimal interfaces.Registers satisfying r0-r3 storage,
// enough to drive the BIOS function tests without the full CPU register
// file.
type fakeRegs struct {
	r [16]uint32
}

func (f *fakeRegs) GetReg(n uint8) uint32         { return f.r[n] }
func (f *fakeRegs) SetReg(n uint8, value uint32) { f.r[n] = value }

// TestDivInvariant checks the documented BIOS Div contract:
// quotient*divisor + remainder == dividend, |remainder| < |divisor|, and
// the remainder's sign matches the dividend's, across a spread of
// signed inputs including negative operands.
func TestDivInvariant(t *testing.T) {
	cases := []struct{ a, b int32 }{
		{10, 3}, {-10, 3}, {10, -3}, {-10, -3}, {0, 5}, {7, 7}, {-7, 1},
	}
	for _, tc := range cases {
		regs := &fakeRegs{}
		regs.SetReg(0, uint32(tc.a))
		regs.SetReg(1, uint32(tc.b))

		Dispatch(fnDiv, regs, nil)

		quot := int32(regs.GetReg(0))
		rem := int32(regs.GetReg(1))

		assert.Equal(t, tc.a, quot*tc.b+rem, "quot*b+rem != a for %d/%d", tc.a, tc.b)
		absB := tc.b
		if absB < 0 {
			absB = -absB
		}
		absRem := rem
		if absRem < 0 {
			absRem = -absRem
		}
		assert.Less(t, absRem, absB)
		if rem != 0 {
			assert.Equal(t, tc.a < 0, rem < 0, "sign(rem) must match sign(a) for %d/%d", tc.a, tc.b)
		}
	}
}

func TestIsqrt(t *testing.T) {
	assert.Equal(t, uint32(0), isqrt(0))
	assert.Equal(t, uint32(4), isqrt(16))
	assert.Equal(t, uint32(4), isqrt(20))
	assert.Equal(t, uint32(5), isqrt(25))
}

func TestBitUnPack(t *testing.T) {
	// source: two 4-bit units (0x1, 0x2) packed into one byte, expanded
	// to 8-bit units with a +0x10 offset.
	bus := &stubBus{mem: make(map[uint32]uint8)}
	bus.writeByte(0x1000, 0x21) // low nibble=1, high nibble=2
	bus.write16(0x2000, 1)      // srcLen = 1 byte
	bus.writeByte(0x2002, 4)    // srcBits = 4
	bus.writeByte(0x2003, 8)    // destBits = 8
	bus.write32(0x2004, 0x10)   // offset = 0x10, addToZero = false

	regs := &fakeRegs{}
	regs.SetReg(0, 0x1000)
	regs.SetReg(1, 0x3000)
	regs.SetReg(2, 0x2000)

	Dispatch(fnBitUnPack, regs, bus)

	assert.Equal(t, uint8(0x11), bus.readByte(0x3000))
	assert.Equal(t, uint8(0x12), bus.readByte(0x3001))
}

// stubBus is a sparse byte-addressed map satisfying interfaces.Bus for
// the decompression/unpack helpers, which only ever touch a handful of
// addresses.
type stubBus struct {
	mem map[uint32]uint8
}

func (b *stubBus) Read8(addr uint32) uint8 { return b.mem[addr] }
func (b *stubBus) Write8(addr uint32, v uint8) { b.mem[addr] = v }
func (b *stubBus) Read16(addr uint32) uint16 {
	return uint16(b.mem[addr]) | uint16(b.mem[addr+1])<<8
}
func (b *stubBus) Write16(addr uint32, v uint16) {
	b.mem[addr] = uint8(v)
	b.mem[addr+1] = uint8(v >> 8)
}
func (b *stubBus) Read32(addr uint32) uint32 {
	return uint32(b.Read16(addr)) | uint32(b.Read16(addr+2))<<16
}
func (b *stubBus) Write32(addr uint32, v uint32) {
	b.Write16(addr, uint16(v))
	b.Write16(addr+2, uint16(v>>16))
}

func (b *stubBus) writeByte(addr uint32, v uint8)  { b.Write8(addr, v) }
func (b *stubBus) readByte(addr uint32) uint8       { return b.Read8(addr) }
func (b *stubBus) write16(addr uint32, v uint16)    { b.Write16(addr, v) }
func (b *stubBus) write32(addr uint32, v uint32)    { b.Write32(addr, v) }
