// Package dmgcore wires the CPU, Bus, PPU, timer and serial sink
// together into a runnable machine, with debugger-style pause/step
// controls for host frontends.
//
// Grounded on valerio-go-jeebie's core.go Emulator: the 70224-cycle
// frame budget, the DebuggerState machine (Running/Paused/Step/
// StepFrame) and its mutex-guarded request flags are adapted from
// there; Run's context.Context cancellation replaces the teacher's
// main.go signal.Notify loop with the more idiomatic Go shape for the
// same shutdown capability (see SPEC_FULL.md).
package dmgcore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/kklx/dmgcore/cartridge"
	"github.com/kklx/dmgcore/cpu"
	"github.com/kklx/dmgcore/gberr"
	"github.com/kklx/dmgcore/joypad"
	"github.com/kklx/dmgcore/mbc"
	"github.com/kklx/dmgcore/memory"
	"github.com/kklx/dmgcore/ppu"
)

// cyclesPerFrame is the M-cycle budget of one 59.7 Hz DMG frame
// (70224 dot-cycles / 4).
const cyclesPerFrame = 70224 / 4

// DebuggerState is the host-visible execution mode.
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStep
	DebuggerStepFrame
)

// FramePresenter receives a completed frame; implementations must copy
// the buffer if they retain it past the call since the PPU reuses it.
type FramePresenter func(*ppu.FrameBuffer)

// Machine owns one emulation session: a cartridge, the Bus, CPU, and
// PPU, plus the debugger state a host frontend can drive.
type Machine struct {
	bus *memory.Bus
	cpu *cpu.CPU
	ppu *ppu.PPU

	header *cartridge.Header

	debugMu       sync.RWMutex
	debugState    DebuggerState
	stepRequested bool
	frameReq      bool

	instructionCount uint64
	frameCount       uint64

	latestFrame *ppu.FrameBuffer

	logger *slog.Logger
}

// Option configures a Machine at construction time.
type Option func(*Machine)

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// New builds a Machine from a ROM image and an optional boot ROM
// image (pass nil to skip it). present is called once per V-blank.
func New(romPath string, bootROM []byte, present FramePresenter, opts ...Option) (*Machine, error) {
	rom, err := os.ReadFile(romPath)
	if err != nil {
		return nil, &gberr.ErrCartridgeRead{Path: romPath, Err: err}
	}

	header, err := cartridge.Parse(rom)
	if err != nil {
		if cartErr, ok := err.(*gberr.ErrCartridgeRead); ok {
			cartErr.Path = romPath
			return nil, cartErr
		}
		return nil, err
	}

	variant, err := newMBC(header, rom)
	if err != nil {
		return nil, err
	}

	m := &Machine{logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}

	m.header = header
	m.latestFrame = ppu.NewFrameBuffer()
	m.bus = memory.New()
	m.bus.LoadROM(variant)
	if bootROM != nil {
		m.bus.LoadBootROM(bootROM)
	}

	m.cpu = cpu.New(m.bus)
	if bootROM == nil {
		m.cpu.SetInitialState()
	}

	m.ppu = ppu.New(m.bus, m.bus.RequestInterrupt, func(fb *ppu.FrameBuffer) {
		m.latestFrame = fb
		if present != nil {
			present(fb)
		}
	})

	m.logger.Info("cartridge loaded", "title", header.Title, "variant", header.Variant, "rom_banks", header.ROMBankCount, "ram_banks", header.RAMBankCount)

	return m, nil
}

func newMBC(h *cartridge.Header, rom []byte) (mbc.MBC, error) {
	switch h.Variant {
	case cartridge.VariantNoMBC:
		return mbc.NewNoMBC(rom, h.HasRAM), nil
	case cartridge.VariantMBC1:
		return mbc.NewMBC1(rom, h.RAMBankCount), nil
	case cartridge.VariantMBC3:
		return mbc.NewMBC3(rom, h.RAMBankCount), nil
	case cartridge.VariantMBC5:
		return mbc.NewMBC5(rom, h.RAMBankCount), nil
	default:
		return nil, &gberr.ErrUnsupportedMBC{CartridgeType: h.CartType}
	}
}

// Header returns the parsed cartridge header.
func (m *Machine) Header() *cartridge.Header { return m.header }

// CurrentFrame returns the frame buffer handed over at the most recent
// V-blank (the PPU keeps rendering into that same buffer), or a blank
// frame before the first V-blank.
func (m *Machine) CurrentFrame() *ppu.FrameBuffer { return m.latestFrame }

// RunOneFrameForHost executes exactly one frame's worth of
// instructions unless the debugger is paused; the Step and StepFrame
// states are not distinguished from Running here. Host loops that
// pace themselves externally (e.g. a ticker) call this once per tick
// instead of Run.
func (m *Machine) RunOneFrameForHost() {
	state := m.DebuggerState()
	if state == DebuggerPaused {
		return
	}
	m.runOneFrame()
}

// PressKey/ReleaseKey forward to the Bus's joypad latch.
func (m *Machine) PressKey(key joypad.Key)   { m.bus.PressKey(key) }
func (m *Machine) ReleaseKey(key joypad.Key) { m.bus.ReleaseKey(key) }

// step executes one CPU instruction and advances every other
// component by the same cycle count, per spec.md §5's ordering
// contract (CPU dispatch, then PPU step, then Timer tick, both
// happening-before the next instruction's interrupt check).
func (m *Machine) step() int {
	cycles := m.cpu.Step()
	m.ppu.Step(cycles)
	m.bus.Tick(cycles)
	m.instructionCount++
	return cycles
}

// Run drives the machine until ctx is canceled, checking for
// cancellation before each frame (or single debugger step), so it is
// observed between instruction dispatches (spec.md §5).
func (m *Machine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		m.runUntilFrame()
	}
}

// runUntilFrame executes work according to the current debugger state,
// returning once a frame boundary (or a single step) completes.
func (m *Machine) runUntilFrame() {
	state := m.DebuggerState()

	switch state {
	case DebuggerPaused:
		return
	case DebuggerStep:
		m.debugMu.Lock()
		requested := m.stepRequested
		m.stepRequested = false
		m.debugMu.Unlock()
		if !requested {
			return
		}
		m.step()
		m.SetDebuggerState(DebuggerPaused)
		return
	case DebuggerStepFrame:
		m.debugMu.Lock()
		requested := m.frameReq
		m.frameReq = false
		m.debugMu.Unlock()
		if !requested {
			return
		}
		m.runOneFrame()
		m.SetDebuggerState(DebuggerPaused)
		return
	default: // DebuggerRunning
		m.runOneFrame()
	}
}

func (m *Machine) runOneFrame() {
	total := 0
	for total < cyclesPerFrame {
		total += m.step()
	}
	m.frameCount++
	if m.frameCount%60 == 0 {
		m.logger.Debug("frame completed", "frame", m.frameCount, "pc", fmt.Sprintf("0x%04X", m.cpu.PC()))
	}
}

// SetDebuggerState changes the execution mode a host frontend observes.
func (m *Machine) SetDebuggerState(state DebuggerState) {
	m.debugMu.Lock()
	defer m.debugMu.Unlock()
	m.debugState = state
}

// DebuggerState reports the current execution mode.
func (m *Machine) DebuggerState() DebuggerState {
	m.debugMu.RLock()
	defer m.debugMu.RUnlock()
	return m.debugState
}

// DebuggerPause halts execution between instructions.
func (m *Machine) DebuggerPause() { m.SetDebuggerState(DebuggerPaused) }

// DebuggerResume returns to free-running execution.
func (m *Machine) DebuggerResume() { m.SetDebuggerState(DebuggerRunning) }

// DebuggerStepInstruction arms a single-instruction step.
func (m *Machine) DebuggerStepInstruction() {
	m.debugMu.Lock()
	defer m.debugMu.Unlock()
	m.stepRequested = true
	m.debugState = DebuggerStep
}

// DebuggerStepOneFrame arms a single-frame step.
func (m *Machine) DebuggerStepOneFrame() {
	m.debugMu.Lock()
	defer m.debugMu.Unlock()
	m.frameReq = true
	m.debugState = DebuggerStepFrame
}
