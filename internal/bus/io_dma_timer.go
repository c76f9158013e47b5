package bus

// dmaRegs shadows the raw, byte-addressable DMA registers (DMAxSAD,
// DMAxDAD, DMAxCNT_L, DMAxCNT_H). The dma package itself only knows
// about already-assembled values (see dma.Controller.WriteControl); the
// bus is where the real hardware's byte-at-a-time register writes get
// assembled before being handed to it, mirroring how ppu/io.go treats
// its own registers as raw storage plus bit-field accessors.
type dmaRegs struct {
	src  [4]uint32
	dst  [4]uint32
	cnt  [4]uint16
	ctrl [4]uint16
}

// channel layout, 12 bytes each starting at dmaBase: SAD(4) DAD(4)
// CNT_L(2) CNT_H(2).
const dmaChannelSize = 12

func (b *Bus) readDMA8(off uint32) uint8 {
	ch := int(off / dmaChannelSize)
	if ch > 3 {
		return 0
	}
	local := off % dmaChannelSize
	switch {
	case local < 4:
		return byteOf32(b.dmaRegs.src[ch], local)
	case local < 8:
		return byteOf32(b.dmaRegs.dst[ch], local-4)
	case local < 10:
		return byteOf16(b.dmaRegs.cnt[ch], local-8)
	default:
		return byteOf16(b.dmaRegs.ctrl[ch], local-10)
	}
}

func (b *Bus) writeDMA8(off uint32, value uint8) {
	ch := int(off / dmaChannelSize)
	if ch > 3 {
		return
	}
	local := off % dmaChannelSize
	switch {
	case local < 4:
		setByte32(&b.dmaRegs.src[ch], local, value)
	case local < 8:
		setByte32(&b.dmaRegs.dst[ch], local-4, value)
	case local < 10:
		setByte16(&b.dmaRegs.cnt[ch], local-8, value)
	default:
		setByte16(&b.dmaRegs.ctrl[ch], local-10, value)
		b.DMA.WriteControl(ch, b.dmaRegs.ctrl[ch], b.dmaRegs.src[ch], b.dmaRegs.dst[ch], b.dmaRegs.cnt[ch])
	}
}

// timerRegs shadows the reload value written through TMxCNT_L (reads of
// TMxCNT_L return the live counter instead); TMxCNT_H's control byte is
// passed straight to the timer controller. 4 bytes per channel.
type timerRegs struct {
	reload [4]uint16
}

const timerChannelSize = 4

func (b *Bus) readTimer8(off uint32) uint8 {
	ch := int(off / timerChannelSize)
	if ch > 3 {
		return 0
	}
	local := off % timerChannelSize
	switch {
	case local < 2:
		return byteOf16(b.Timers.ReadCounter(ch), local)
	case local == 2:
		return b.Timers.ReadControl(ch)
	default:
		return 0
	}
}

func (b *Bus) writeTimer8(off uint32, value uint8) {
	ch := int(off / timerChannelSize)
	if ch > 3 {
		return
	}
	local := off % timerChannelSize
	switch {
	case local < 2:
		setByte16(&b.tmRegs.reload[ch], local, value)
		b.Timers.WriteReload(ch, b.tmRegs.reload[ch])
	case local == 2:
		b.Timers.WriteControl(ch, value)
	}
}

func byteOf16(v uint16, idx uint32) uint8 {
	if idx == 0 {
		return uint8(v)
	}
	return uint8(v >> 8)
}

func byteOf32(v uint32, idx uint32) uint8 {
	return uint8(v >> (idx * 8))
}

func setByte16(v *uint16, idx uint32, b uint8) {
	shift := idx * 8
	*v = (*v &^ (0xFF << shift)) | uint16(b)<<shift
}

func setByte32(v *uint32, idx uint32, b uint8) {
	shift := idx * 8
	*v = (*v &^ (0xFF << shift)) | uint32(b)<<shift
}
