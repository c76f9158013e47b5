package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSquareTriggerLoadsLength checks Trigger() seeds the length
// counter from LengthLoad using the 64-step legacy formula, and that
// clocking it down to zero with LengthEnable set silences the channel.
func TestSquareTriggerLoadsLength(t *testing.T) {
	var s SquareChannel
	s.LengthLoad = 62
	s.LengthEnable = true
	s.Trigger()

	assert.True(t, s.Enable)
	assert.Equal(t, 2, s.lengthCount)

	s.clockLength()
	assert.True(t, s.Enable)
	s.clockLength()
	assert.False(t, s.Enable)
}

// TestSquareEnvelopeDecaysToZero checks a decreasing envelope with pace
// 1 steps down to silence after EnvelopeInit clocks and holds there.
func TestSquareEnvelopeDecaysToZero(t *testing.T) {
	var s SquareChannel
	s.EnvelopeInit = 2
	s.EnvelopeDir = false
	s.EnvelopePace = 1
	s.Trigger()

	s.clockEnvelope()
	assert.Equal(t, 1, s.envelopeVol)
	s.clockEnvelope()
	assert.Equal(t, 0, s.envelopeVol)
	s.clockEnvelope() // already at floor, stays
	assert.Equal(t, 0, s.envelopeVol)
}

// TestSquareSweepOverflowDisablesChannel checks an increasing sweep
// that would push the shadow frequency past the 11-bit ceiling turns
// the channel off instead of wrapping.
func TestSquareSweepOverflowDisablesChannel(t *testing.T) {
	var s SquareChannel
	s.HasSweep = true
	s.Freq = 0x7FE
	s.SweepPace = 1
	s.SweepShift = 0 // delta == freq itself, so 0x7FE+0x7FE overflows 0x7FF
	s.SweepDir = false
	s.Trigger()

	s.clockSweep()
	assert.False(t, s.Enable)
}

// TestSquareDutyCycleAdvances checks Advance() steps the duty phase
// forward by whole periods and keeps the remainder for next time.
func TestSquareDutyCycleAdvances(t *testing.T) {
	var s SquareChannel
	s.Freq = 2047 // period = 4*(2048-2047) = 4 cycles/step
	s.Duty = 2
	s.Trigger()

	s.Advance(4)
	assert.Equal(t, 1, s.dutyStep)
	s.Advance(12)
	assert.Equal(t, 4, s.dutyStep)
}

// TestWaveOutputReadsNibbles checks the wave channel unpacks the high
// nibble of a RAM byte first, centers it around zero, and scales it by
// the selected volume shift.
func TestWaveOutputReadsNibbles(t *testing.T) {
	var w WaveChannel
	w.DACEnable = true
	w.RAM[0] = 0xF0 // high nibble 0xF (=15 -> +7 centered), low nibble 0
	w.Volume = 1    // 100%
	w.Trigger()

	assert.Equal(t, int8(7), w.Output())

	w.Advance(2 * (2048 - int(w.Freq))) // one full period advances to nibble 1
	assert.Equal(t, int8(-8), w.Output())
}

// TestWaveMuteVolumeIsSilent checks Volume==0 always outputs zero
// regardless of the RAM contents.
func TestWaveMuteVolumeIsSilent(t *testing.T) {
	var w WaveChannel
	w.DACEnable = true
	w.RAM[0] = 0xFF
	w.Volume = 0
	w.Trigger()
	assert.Equal(t, int8(0), w.Output())
}

// TestNoiseLFSRNarrowModeFeedback checks the 7-bit mode folds the
// feedback bit into bit 6 in addition to the normal bit-14 feedback.
func TestNoiseLFSRNarrowModeFeedback(t *testing.T) {
	var n NoiseChannel
	n.NarrowMode = true
	n.Trigger()

	before := n.lfsr
	n.clockLFSR()
	bit := (before ^ (before >> 1)) & 1
	assert.Equal(t, bit, (n.lfsr>>6)&1, "narrow mode must mirror feedback into bit 6")
}

// TestNoiseOutputTracksLFSRBit0 checks the channel outputs positive
// envelope volume when LFSR bit 0 is clear and negative when set.
func TestNoiseOutputTracksLFSRBit0(t *testing.T) {
	var n NoiseChannel
	n.EnvelopeInit = 5
	n.Trigger()
	n.lfsr = 0x7FFE // bit0 clear
	assert.Equal(t, int8(5), n.Output())
	n.lfsr = 0x7FFF // bit0 set
	assert.Equal(t, int8(-5), n.Output())
}

// TestFifoPopLatchesOnStarvation checks a starved FIFO keeps returning
// its last popped sample rather than silence, matching the real
// hardware's behavior when DMA fails to refill it in time.
func TestFifoPopLatchesOnStarvation(t *testing.T) {
	var f Fifo
	f.Push([]int8{10, -20})

	assert.Equal(t, int8(10), f.Pop())
	assert.Equal(t, int8(-20), f.Pop())
	assert.Equal(t, int8(-20), f.Pop(), "starved FIFO should hold its last sample")
	assert.Equal(t, int8(-20), f.Pop())
}

func TestFifoNeedsRefillAtHalfDepth(t *testing.T) {
	var f Fifo
	assert.True(t, f.NeedsRefill())
	f.Push(make([]int8, fifoDepth))
	assert.False(t, f.NeedsRefill())
}

// TestMixRespectsChannelEnableMask checks a channel producing a
// nonzero sample is excluded from the mix unless its enable bit for
// that side is set.
func TestMixRespectsChannelEnableMask(t *testing.T) {
	a := New(32768)
	a.MasterEnable = true
	a.LeftVolume = 7
	a.RightVolume = 7

	a.Square1.Enable = true
	a.Square1.Duty = 2
	a.Square1.envelopeVol = 15
	a.Square1.dutyStep = 0 // dutyTable[2][0] == 1

	a.ChanEnableL = 1 << 0 // only left hears channel 0
	a.ChanEnableR = 0

	left, right := a.mix()
	assert.NotEqual(t, int16(0), left)
	assert.Equal(t, int16(0), right)
}

// TestDrainAudioClearsBuffer checks DrainAudio both returns and resets
// the accumulated sample buffer.
func TestDrainAudioClearsBuffer(t *testing.T) {
	a := New(32768)
	a.MasterEnable = true
	a.Tick(cpuHz) // one second's worth of cycles, plenty to resample

	samples := a.DrainAudio()
	assert.NotEmpty(t, samples)
	assert.Empty(t, a.DrainAudio())
}
