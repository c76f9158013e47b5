package apu

// Register offsets relative to SOUND_BASE (0x04000060), per spec §6.
const (
	regSound1CntL = 0x00 // sweep
	regSound1CntH = 0x02 // duty/length/envelope
	regSound1CntX = 0x04 // frequency/trigger
	regSound2CntL = 0x08
	regSound2CntH = 0x0C
	regSound3CntL = 0x10 // enable
	regSound3CntH = 0x12 // length/volume
	regSound3CntX = 0x14 // frequency/trigger
	regSound4CntL = 0x18
	regSound4CntH = 0x1C
	regSoundCntL  = 0x20 // master L/R volume + channel enables
	regSoundCntH  = 0x22 // DMA sound control
	regSoundCntX  = 0x24 // master enable
	regWaveRAM    = 0x30
	regFifoA      = 0x40
	regFifoB      = 0x44
)

// ReadIO8 reads a byte from the sound I/O block (offset relative to
// SOUND_BASE).
func (a *APU) ReadIO8(off uint32) uint8 {
	switch {
	case off == regSound1CntL:
		return sweepByte(a.Square1)
	case off == regSound1CntH:
		return dutyEnvelopeByteLo(a.Square1)
	case off == regSound1CntH+1:
		return dutyEnvelopeByteHi(a.Square1)
	case off == regSound2CntL:
		return dutyEnvelopeByteLo(a.Square2)
	case off == regSound2CntL+1:
		return dutyEnvelopeByteHi(a.Square2)
	case off == regSound3CntL:
		if a.Wave.DACEnable {
			return 1 << 7
		}
		return 0
	case off == regSoundCntL:
		return a.LeftVolume | (a.RightVolume << 4)
	case off == regSoundCntL+1:
		return a.ChanEnableL | (a.ChanEnableR << 4)
	case off == regSoundCntH:
		return soundCntHLo(a)
	case off == regSoundCntH+1:
		v := uint8(0)
		if a.DirectEnableR[0] {
			v |= 1 << 0
		}
		if a.DirectEnableL[0] {
			v |= 1 << 1
		}
		v |= uint8(a.DirectTimerSelect[0]) << 2
		if a.DirectEnableR[1] {
			v |= 1 << 4
		}
		if a.DirectEnableL[1] {
			v |= 1 << 5
		}
		v |= uint8(a.DirectTimerSelect[1]) << 6
		return v
	case off == regSoundCntX:
		v := uint8(0)
		if a.MasterEnable {
			v |= 1 << 7
		}
		if a.Square1.Enable {
			v |= 1
		}
		if a.Square2.Enable {
			v |= 1 << 1
		}
		if a.Wave.Enable {
			v |= 1 << 2
		}
		if a.Noise.Enable {
			v |= 1 << 3
		}
		return v
	case off >= regWaveRAM && off < regWaveRAM+16:
		return a.Wave.RAM[off-regWaveRAM]
	default:
		return 0
	}
}

func sweepByte(s SquareChannel) uint8 {
	v := s.SweepShift
	if s.SweepDir {
		v |= 1 << 3
	}
	v |= s.SweepPace << 4
	return v
}

func dutyEnvelopeByteLo(s SquareChannel) uint8 {
	v := s.LengthLoad & 0x3F
	v |= s.Duty << 6
	return v
}

func dutyEnvelopeByteHi(s SquareChannel) uint8 {
	v := s.EnvelopePace & 0x7
	if s.EnvelopeDir {
		v |= 1 << 3
	}
	v |= s.EnvelopeInit << 4
	return v
}

func soundCntHLo(a *APU) uint8 {
	v := a.DirectVolumeA
	v |= a.DirectVolumeB << 1
	return v
}

// WriteIO8 writes a byte to the sound I/O block.
func (a *APU) WriteIO8(off uint32, value uint8) {
	switch {
	case off == regSound1CntL:
		a.Square1.SweepShift = value & 0x7
		a.Square1.SweepDir = value&(1<<3) != 0
		a.Square1.SweepPace = (value >> 4) & 0x7
	case off == regSound1CntH:
		a.Square1.LengthLoad = value & 0x3F
		a.Square1.Duty = (value >> 6) & 0x3
	case off == regSound1CntH+1:
		a.Square1.EnvelopePace = value & 0x7
		a.Square1.EnvelopeDir = value&(1<<3) != 0
		a.Square1.EnvelopeInit = (value >> 4) & 0xF
	case off == regSound1CntX:
		a.Square1.Freq = (a.Square1.Freq &^ 0xFF) | uint16(value)
	case off == regSound1CntX+1:
		a.Square1.Freq = (a.Square1.Freq &^ 0x700) | (uint16(value&0x7) << 8)
		a.Square1.LengthEnable = value&(1<<6) != 0
		if value&(1<<7) != 0 {
			a.Square1.Trigger()
		}
	case off == regSound2CntL:
		a.Square2.LengthLoad = value & 0x3F
		a.Square2.Duty = (value >> 6) & 0x3
	case off == regSound2CntL+1:
		a.Square2.EnvelopePace = value & 0x7
		a.Square2.EnvelopeDir = value&(1<<3) != 0
		a.Square2.EnvelopeInit = (value >> 4) & 0xF
	case off == regSound2CntH:
		a.Square2.Freq = (a.Square2.Freq &^ 0xFF) | uint16(value)
	case off == regSound2CntH+1:
		a.Square2.Freq = (a.Square2.Freq &^ 0x700) | (uint16(value&0x7) << 8)
		a.Square2.LengthEnable = value&(1<<6) != 0
		if value&(1<<7) != 0 {
			a.Square2.Trigger()
		}
	case off == regSound3CntL:
		a.Wave.DACEnable = value&(1<<7) != 0
	case off == regSound3CntH:
		a.Wave.LengthLoad = value
	case off == regSound3CntH+1:
		a.Wave.Volume = (value >> 5) & 0x3
	case off == regSound3CntX:
		a.Wave.Freq = (a.Wave.Freq &^ 0xFF) | uint16(value)
	case off == regSound3CntX+1:
		a.Wave.Freq = (a.Wave.Freq &^ 0x700) | (uint16(value&0x7) << 8)
		a.Wave.LengthEnable = value&(1<<6) != 0
		if value&(1<<7) != 0 {
			a.Wave.Trigger()
		}
	case off == regSound4CntL:
		a.Noise.LengthLoad = value & 0x3F
	case off == regSound4CntL+1:
		a.Noise.EnvelopePace = value & 0x7
		a.Noise.EnvelopeDir = value&(1<<3) != 0
		a.Noise.EnvelopeInit = (value >> 4) & 0xF
	case off == regSound4CntH:
		a.Noise.DivisorCode = value & 0x7
		a.Noise.NarrowMode = value&(1<<3) != 0
		a.Noise.ShiftFreq = (value >> 4) & 0xF
	case off == regSound4CntH+1:
		a.Noise.LengthEnable = value&(1<<6) != 0
		if value&(1<<7) != 0 {
			a.Noise.Trigger()
		}
	case off == regSoundCntL:
		a.LeftVolume = value & 0x7
		a.RightVolume = (value >> 4) & 0x7
	case off == regSoundCntL+1:
		a.ChanEnableL = value & 0xF
		a.ChanEnableR = (value >> 4) & 0xF
	case off == regSoundCntH:
		a.DirectVolumeA = value & 0x1
		a.DirectVolumeB = (value >> 1) & 0x1
	case off == regSoundCntH+1:
		a.DirectEnableR[0] = value&(1<<0) != 0
		a.DirectEnableL[0] = value&(1<<1) != 0
		a.DirectTimerSelect[0] = int((value >> 2) & 1)
		if value&(1<<3) != 0 {
			a.FifoA.Reset()
		}
		a.DirectEnableR[1] = value&(1<<4) != 0
		a.DirectEnableL[1] = value&(1<<5) != 0
		a.DirectTimerSelect[1] = int((value >> 6) & 1)
		if value&(1<<7) != 0 {
			a.FifoB.Reset()
		}
	case off == regSoundCntX:
		a.MasterEnable = value&(1<<7) != 0
	case off >= regWaveRAM && off < regWaveRAM+16:
		a.Wave.RAM[off-regWaveRAM] = value
	case off == regFifoA, off == regFifoA+1, off == regFifoA+2, off == regFifoA+3:
		a.FifoA.Push([]int8{int8(value)})
	case off == regFifoB, off == regFifoB+1, off == regFifoB+2, off == regFifoB+3:
		a.FifoB.Push([]int8{int8(value)})
	}
}
