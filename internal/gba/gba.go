// Package gba glues the CPU, bus and every hardware co-processor into
// the single owned aggregate spec §9's "Global state / singletons" note
// calls for, and exposes the host-facing entry points named in spec
// §6: load_bios, load_rom, reset, set_key_state, step_frame,
// drain_audio, save_data and load_save_data. Nothing outside this
// package reaches into more than one component at a time; System is
// where the per-cycle scheduling pattern of spec §5 actually lives.
package gba

import (
	"errors"

	"goba/internal/apu"
	"goba/internal/bus"
	"goba/internal/cartridge"
	"goba/internal/cpu"
	"goba/internal/dma"
	"goba/internal/input"
	"goba/internal/interfaces"
	"goba/internal/interrupt"
	"goba/internal/memory"
	"goba/internal/ppu"
	"goba/internal/timer"
)

// Direct Sound FIFO register addresses, relative to the full 32-bit
// address space, per spec §6's SOUND range.
const (
	fifoAAddr = 0x040000A0
	fifoBAddr = 0x040000A4
)

var (
	// ErrNoRomLoaded is returned by StepFrame when called before a ROM
	// has been loaded, a host contract violation per spec §7.
	ErrNoRomLoaded = errors.New("gba: step_frame called before load_rom")
	// ErrNoCartridge is returned by the save-data accessors before a ROM
	// (and therefore a save device) exists.
	ErrNoCartridge = errors.New("gba: no cartridge loaded")
)

// System is the core aggregate: every subsystem named in spec §2, wired
// together through the narrow interfaces in internal/interfaces rather
// than back-pointers, per spec §9's "Cyclic references" note.
type System struct {
	CPU       *cpu.CPU
	Bus       *bus.Bus
	Interrupt *interrupt.Controller
	PPU       *ppu.PPU
	APU       *apu.APU
	DMA       *dma.Controller
	Timers    *timer.Controller
	Keypad    *input.Keypad
	Cartridge *cartridge.Cartridge

	romLoaded bool
}

// New constructs a System with every component reset to its power-on
// state and no ROM loaded. sampleRate is the host's chosen audio output
// rate (spec §4.5 requires >= 32768 Hz).
func New(sampleRate int) *System {
	bios := memory.NewBIOS()
	ewram := memory.NewEWRAM()
	iwram := memory.NewIWRAM()

	p := ppu.New()
	a := apu.New(sampleRate)
	d := dma.New()
	t := timer.New()
	ic := interrupt.New()
	kp := input.New()

	d.SoundFIFODest = [2]uint32{fifoAAddr, fifoBAddr}

	b := bus.New(bios, ewram, iwram, p, a, d, t, ic, kp, nil)

	s := &System{
		CPU:       cpu.New(),
		Bus:       b,
		Interrupt: ic,
		PPU:       p,
		APU:       a,
		DMA:       d,
		Timers:    t,
		Keypad:    kp,
	}

	p.SetHooks(
		func() {
			s.DMA.RunHBlank(s.Bus, s.Interrupt)
			s.DMA.RunVideoCapture(s.Bus, s.Interrupt)
		},
		func() { s.DMA.RunVBlank(s.Bus, s.Interrupt) },
	)
	// Each FIFO is refilled only by the timer it's actually assigned to
	// (APU.DirectTimerSelect), not by whichever of TM0/TM1 happens to
	// overflow first.
	t.FIFORefill = func(idx int) {
		if s.APU.DirectTimerSelect[0] == idx {
			s.DMA.RunSpecialForTarget(fifoAAddr, s.Bus, s.Interrupt)
		}
		if s.APU.DirectTimerSelect[1] == idx {
			s.DMA.RunSpecialForTarget(fifoBAddr, s.Bus, s.Interrupt)
		}
	}

	s.CPU.Reset()
	return s
}

// LoadBIOS installs a BIOS image. A title can run without one: the SWI
// shim serves BIOS calls directly, per spec §7's BiosMissing policy.
func (s *System) LoadBIOS(data []byte) {
	s.Bus.BIOS.Load(data)
}

// LoadROM auto-detects the cartridge's backup storage device from data
// and installs it, then resets the system to a clean power-on state
// over the new cartridge.
func (s *System) LoadROM(data []byte) error {
	cart, err := cartridge.Load(data)
	if err != nil {
		return err
	}
	s.Cartridge = cart
	s.Bus.Cartridge = cart
	s.romLoaded = true
	s.Reset()
	return nil
}

// Reset restores power-on state: CPU registers re-seeded (PC=0, SVC
// mode, IRQ disabled), and PPU/APU/Timers/DMA/Interrupt cleared, per
// spec §3's Lifecycle note. WRAM and the cartridge's save data are left
// untouched, matching real hardware.
func (s *System) Reset() {
	s.CPU.Reset()
	s.Bus.Reset()
}

// SetKeyState updates the keypad's pressed-button mask; bits use the
// input package's constants (1 = pressed).
func (s *System) SetKeyState(pressedMask uint16) {
	s.Keypad.SetKeyState(pressedMask)
}

// StepFrame runs the system until the PPU completes scanline 227 (the
// natural quantum of host interaction per spec §5) and returns the
// completed framebuffer. It fails with ErrNoRomLoaded on a host contract
// violation (load_rom not yet called).
func (s *System) StepFrame() (*[ppu.ScreenWidth * ppu.ScreenHeight]uint16, error) {
	if !s.romLoaded {
		return nil, ErrNoRomLoaded
	}

	for !s.PPU.IsFrameReady() {
		s.Bus.SetExecutingBIOS(s.CPU.Regs.PC)

		irqPending := s.Interrupt.Pending()
		cycles := s.CPU.Step(s.Bus, irqPending)

		s.DMA.RunImmediate(s.Bus, s.Interrupt)
		s.PPU.Tick(cycles, s.Interrupt)
		s.Timers.Tick(cycles, s.Interrupt)
		s.APU.Tick(cycles)

		if s.Keypad.IRQPending() {
			s.Interrupt.RaiseIRQ(interfaces.IRQKeypad)
		}
	}
	s.PPU.ResetFrameReady()
	return &s.PPU.Framebuffer, nil
}

// DrainAudio returns and clears the interleaved stereo samples produced
// since the last call.
func (s *System) DrainAudio() []int16 {
	return s.APU.DrainAudio()
}

// SaveData returns the cartridge's raw backup storage bytes, for the
// host to persist, per spec §6.
func (s *System) SaveData() ([]byte, error) {
	if s.Cartridge == nil {
		return nil, ErrNoCartridge
	}
	return s.Cartridge.Save.Bytes(), nil
}

// LoadSaveData installs previously persisted backup storage bytes into
// the current cartridge's save device.
func (s *System) LoadSaveData(data []byte) error {
	if s.Cartridge == nil {
		return ErrNoCartridge
	}
	s.Cartridge.Save.LoadBytes(data)
	return nil
}
