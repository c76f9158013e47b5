// Package dma implements the GBA's four DMA channels: address-mode and
// trigger logic, per spec §4.7.
package dma

import "goba/internal/interfaces"

type AddrMode uint8

const (
	AddrIncrement AddrMode = iota
	AddrDecrement
	AddrFixed
	AddrIncrementReload // destination only
)

type Timing uint8

const (
	TimingImmediate Timing = iota
	TimingVBlank
	TimingHBlank
	TimingSpecial
)

// Channel holds one DMA channel's programmed registers plus the shadow
// copies latched when the channel is armed.
type Channel struct {
	SrcAddr, DstAddr uint32
	Count            uint16 // 0 means the channel's maximum: 0x4000 for ch0-2, 0x10000 for ch3
	SrcMode, DstMode AddrMode
	Repeat           bool
	Width32          bool
	Timing           Timing
	IRQOnComplete    bool
	Enable           bool

	shadowSrc, shadowDst uint32
	shadowCount          uint32
	pending              bool // armed and waiting for its trigger condition
}

var irqSource = [4]interfaces.IRQSource{
	interfaces.IRQDMA0, interfaces.IRQDMA1, interfaces.IRQDMA2, interfaces.IRQDMA3,
}

// Bus is the narrow memory contract DMA copies through.
type Bus interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, value uint8)
	Read16(addr uint32) uint16
	Write16(addr uint32, value uint16)
	Read32(addr uint32) uint32
	Write32(addr uint32, value uint32)
}

// Controller owns all four channels.
type Controller struct {
	Channels [4]Channel

	// SoundFIFODest is consulted for the Special-timing sound-FIFO
	// transfer semantics on DMA1/DMA2: a transfer to one of these
	// addresses always moves 4 words of 32 bits regardless of the
	// programmed count.
	SoundFIFODest [2]uint32 // addresses of FIFO A/B, DMA1 and DMA2 typically each target one
}

func New() *Controller { return &Controller{} }

func maxCount(width32 bool, ch int) uint32 {
	if ch == 3 {
		if width32 {
			return 0x10000
		}
		return 0x10000
	}
	return 0x4000
}

// WriteControl handles a write to DMAxCNT_H. An enable edge 0->1 latches
// the shadow source/dest/count registers, per spec §3's invariant.
func (c *Controller) WriteControl(idx int, value uint16, src, dst uint32, count uint16) {
	ch := &c.Channels[idx]
	wasEnabled := ch.Enable

	ch.DstMode = AddrMode((value >> 5) & 0x3)
	ch.SrcMode = AddrMode((value >> 7) & 0x3)
	ch.Repeat = value&(1<<9) != 0
	ch.Width32 = value&(1<<10) != 0
	ch.Timing = Timing((value >> 12) & 0x3)
	ch.IRQOnComplete = value&(1<<14) != 0
	ch.Enable = value&(1<<15) != 0
	ch.Count = count
	ch.SrcAddr = src
	ch.DstAddr = dst

	if ch.Enable && !wasEnabled {
		c.arm(idx)
	}
	if !ch.Enable {
		ch.pending = false
	}
}

func (c *Controller) arm(idx int) {
	ch := &c.Channels[idx]
	ch.shadowSrc = ch.SrcAddr
	ch.shadowDst = ch.DstAddr
	cnt := uint32(ch.Count)
	if cnt == 0 {
		cnt = maxCount(ch.Width32, idx)
	}
	ch.shadowCount = cnt
	ch.pending = true
}

// RunImmediate executes every channel armed for Immediate timing, in
// ascending channel-number priority. Called once per CPU step.
func (c *Controller) RunImmediate(bus Bus, irq interfaces.InterruptRaiser) {
	c.runTrigger(TimingImmediate, bus, irq)
}

// RunVBlank/RunHBlank/RunSpecial are called by the PPU/APU/timer when
// those events occur.
func (c *Controller) RunVBlank(bus Bus, irq interfaces.InterruptRaiser) {
	c.runTrigger(TimingVBlank, bus, irq)
}
func (c *Controller) RunHBlank(bus Bus, irq interfaces.InterruptRaiser) {
	c.runTrigger(TimingHBlank, bus, irq)
}
func (c *Controller) RunSpecial(bus Bus, irq interfaces.InterruptRaiser) {
	c.runTrigger(TimingSpecial, bus, irq)
}

// RunSpecialForTarget executes only the Special-timing channels whose
// latched destination is targetAddr. The timer block calls this (rather
// than the unfiltered RunSpecial) on a TM0/TM1 overflow so that only the
// Direct Sound FIFO actually assigned to that timer is refilled, per
// spec §4.5's "each FIFO is refilled by a DMA triggered by a configured
// timer overflow (TM0 or TM1)" — routing both FIFOs off either timer's
// overflow would refill the wrong one.
func (c *Controller) RunSpecialForTarget(targetAddr uint32, bus Bus, irq interfaces.InterruptRaiser) {
	for i := 0; i < 4; i++ {
		ch := &c.Channels[i]
		if ch.Enable && ch.pending && ch.Timing == TimingSpecial && ch.shadowDst == targetAddr {
			c.transfer(i, bus, irq)
		}
	}
}

// RunVideoCapture executes DMA3 when armed for Special timing. Unlike
// DMA1/DMA2's Special semantics (fixed 4-word Sound FIFO refill), DMA3's
// Special timing is the GBA's video-capture mode: the transfer runs once
// per scanline rather than waiting for VBlank/HBlank, copying the
// programmed count through the configured address modes (no FIFO
// fixed-count override applies to channel 3), per spec §4.3's "DMA3 =
// video-capture" note. Callers trigger this once per scanline alongside
// RunHBlank.
func (c *Controller) RunVideoCapture(bus Bus, irq interfaces.InterruptRaiser) {
	ch := &c.Channels[3]
	if ch.Enable && ch.pending && ch.Timing == TimingSpecial {
		c.transfer(3, bus, irq)
	}
}

func (c *Controller) runTrigger(timing Timing, bus Bus, irq interfaces.InterruptRaiser) {
	for i := 0; i < 4; i++ {
		ch := &c.Channels[i]
		if ch.Enable && ch.pending && ch.Timing == timing {
			c.transfer(i, bus, irq)
		}
	}
}

func (c *Controller) transfer(idx int, bus Bus, irq interfaces.InterruptRaiser) {
	ch := &c.Channels[idx]

	isFIFO := ch.Timing == TimingSpecial && (idx == 1 || idx == 2) && c.isSoundFIFODest(ch.shadowDst)

	count := ch.shadowCount
	width32 := ch.Width32
	if isFIFO {
		count = 4
		width32 = true
	}

	src, dst := ch.shadowSrc, ch.shadowDst
	for i := uint32(0); i < count; i++ {
		if width32 {
			bus.Write32(dst, bus.Read32(src))
		} else {
			bus.Write16(dst, bus.Read16(src))
		}
		step := uint32(2)
		if width32 {
			step = 4
		}
		src = stepAddr(src, ch.SrcMode, step)
		if isFIFO {
			// destination is fixed for FIFO refills
		} else {
			dst = stepAddr(dst, ch.DstMode, step)
		}
	}
	ch.shadowSrc = src
	if !isFIFO {
		ch.shadowDst = dst
	}

	if ch.IRQOnComplete {
		irq.RaiseIRQ(irqSource[idx])
	}

	if ch.Repeat && ch.Timing != TimingImmediate {
		cnt := uint32(ch.Count)
		if cnt == 0 {
			cnt = maxCount(ch.Width32, idx)
		}
		ch.shadowCount = cnt
		if ch.DstMode == AddrIncrementReload {
			ch.shadowDst = ch.DstAddr
		}
	} else {
		ch.Enable = false
		ch.pending = false
	}
}

func (c *Controller) isSoundFIFODest(addr uint32) bool {
	for _, a := range c.SoundFIFODest {
		if a != 0 && addr == a {
			return true
		}
	}
	return false
}

func stepAddr(addr uint32, mode AddrMode, step uint32) uint32 {
	switch mode {
	case AddrIncrement, AddrIncrementReload:
		return addr + step
	case AddrDecrement:
		return addr - step
	case AddrFixed:
		return addr
	default:
		return addr
	}
}

// Reset clears all channels.
func (c *Controller) Reset() {
	c.Channels = [4]Channel{}
}
