package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goba/internal/interfaces"
)

type recordingIRQ struct {
	raised []interfaces.IRQSource
}

func (r *recordingIRQ) RaiseIRQ(source interfaces.IRQSource) {
	r.raised = append(r.raised, source)
}

// TestTimerOverflowRaisesIRQ runs a timer reloaded near the 16-bit wrap
// point through enough prescaled ticks to overflow once, and checks the
// reload value is restored and Timer0's IRQ is raised exactly once.
func TestTimerOverflowRaisesIRQ(t *testing.T) {
	c := New()
	c.WriteReload(0, 0xFFFE)
	c.WriteControl(0, 1<<7|1<<6) // enable, prescale /1, IRQ enable

	irq := &recordingIRQ{}

	c.Tick(1, irq) // 0xFFFE -> 0xFFFF
	assert.Equal(t, uint16(0xFFFF), c.ReadCounter(0))
	assert.Empty(t, irq.raised)

	c.Tick(1, irq) // 0xFFFF -> overflow -> reload
	assert.Equal(t, uint16(0xFFFE), c.ReadCounter(0))
	assert.Equal(t, []interfaces.IRQSource{interfaces.IRQTimer0}, irq.raised)
}

// TestTimerCascade checks timer1 configured as a cascade of timer0 only
// advances on timer0's overflow, not on its own cycle count.
func TestTimerCascade(t *testing.T) {
	c := New()
	c.WriteReload(0, 0xFFFE)
	c.WriteControl(0, 1<<7) // enable, prescale /1

	c.WriteReload(1, 5)
	c.WriteControl(1, 1<<7|1<<2) // enable, cascade

	irq := &recordingIRQ{}

	c.Tick(2, irq) // 0xFFFE -> 0xFFFF -> overflow -> reload
	assert.Equal(t, uint16(6), c.ReadCounter(1))

	c.Tick(1, irq) // timer0 has not overflowed again; timer1 holds
	assert.Equal(t, uint16(6), c.ReadCounter(1))
}
