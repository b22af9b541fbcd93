// Package memory implements the Bus: the single read/write surface all
// other components use to reach the DMG's 64 KiB guest address space.
// It owns VRAM/WRAM/OAM/HRAM/IO storage and the boot-ROM overlay, and
// delegates the cartridge window (0x0000-0x7FFF, 0xA000-0xBFFF) to an
// mbc.MBC, per spec.md §9's Bus/MBC split.
//
// Grounded on valerio-go-jeebie's memory/mem.go: the region-dispatch
// Read/Write pair, the DMA-copy block, and the boot-overlay/one-shot
// disable pattern are all adapted from there.
package memory

import (
	"log/slog"
	"math/bits"

	"github.com/kklx/dmgcore/addr"
	"github.com/kklx/dmgcore/gberr"
	"github.com/kklx/dmgcore/joypad"
	"github.com/kklx/dmgcore/mbc"
	"github.com/kklx/dmgcore/serial"
	"github.com/kklx/dmgcore/timer"
)

// Bus is the DMG memory map (spec.md §3).
type Bus struct {
	memory [0x10000]byte
	mbc    mbc.MBC

	bootROM    [0x100]byte
	hasBootROM bool
	bootActive bool

	joypad *joypad.State
	timer  *timer.Timer
	serial serial.Port

	diag gberr.Seen
}

// New creates a Bus with no cartridge loaded; reads/writes to the
// cartridge window are tolerated (return 0xFF / discarded) until
// LoadROM installs an MBC.
func New() *Bus {
	b := &Bus{joypad: joypad.NewState()}
	b.timer = timer.New(b.RequestInterrupt)
	b.serial = serial.NewLogSink(func() { b.RequestInterrupt(addr.Serial) })
	b.setPowerOnDefaults()
	return b
}

// setPowerOnDefaults seeds the handful of I/O registers a real boot ROM
// would otherwise leave in a known state, so a cartridge run without a
// boot ROM renders correctly from frame one.
func (b *Bus) setPowerOnDefaults() {
	b.memory[addr.LCDC] = 0x91
	b.memory[addr.BGP] = 0xFC
	b.memory[addr.OBP0] = 0xFF
	b.memory[addr.OBP1] = 0xFF
	b.memory[addr.IF] = 0xE1
}

// LoadROM installs the MBC that will service the cartridge window.
func (b *Bus) LoadROM(m mbc.MBC) {
	b.mbc = m
}

// LoadBootROM installs a 256-byte boot ROM overlay; absence is not an
// error (spec.md §6).
func (b *Bus) LoadBootROM(data []byte) {
	n := copy(b.bootROM[:], data)
	b.hasBootROM = n > 0
	b.bootActive = b.hasBootROM
}

// BootActive reports whether guest reads at 0x0000-0x00FF still see the
// boot ROM overlay.
func (b *Bus) BootActive() bool {
	return b.bootActive
}

// DisableBoot removes the boot-ROM overlay. It is idempotent but the
// overlay can never be re-enabled within a session (invariant 5).
func (b *Bus) DisableBoot() {
	b.bootActive = false
}

// Read performs a single indivisible guest read.
func (b *Bus) Read(address uint16) byte {
	if b.bootActive && address <= 0x00FF {
		return b.bootROM[address]
	}

	switch {
	case address <= 0x7FFF:
		if b.mbc == nil {
			return 0xFF
		}
		return b.mbc.ReadROM(address)
	case address <= 0x9FFF:
		return b.memory[address]
	case address <= 0xBFFF:
		if b.mbc == nil {
			return 0xFF
		}
		return b.mbc.ReadRAM(address)
	case address <= 0xDFFF:
		return b.memory[address]
	case address <= 0xFDFF: // echo of 0xC000-0xDDFF
		return b.memory[address-0x2000]
	case address <= 0xFE9F:
		return b.memory[address]
	case address <= 0xFEFF: // unused
		return 0
	case address <= 0xFF7F:
		return b.readIO(address)
	case address <= 0xFFFE:
		return b.memory[address]
	default: // 0xFFFF
		return b.memory[addr.IE]
	}
}

// Write performs a single indivisible guest write.
func (b *Bus) Write(address uint16, val byte) {
	switch {
	case address <= 0x7FFF:
		if b.mbc != nil {
			b.mbc.WriteROMRegion(address, val)
		}
	case address <= 0x9FFF:
		b.memory[address] = val
	case address <= 0xBFFF:
		if b.mbc != nil {
			b.mbc.WriteRAM(address, val)
		}
	case address <= 0xDFFF:
		b.memory[address] = val
	case address <= 0xFDFF:
		b.memory[address-0x2000] = val
	case address <= 0xFE9F:
		b.memory[address] = val
	case address <= 0xFEFF:
		// unused region, discard
	case address <= 0xFF7F:
		b.writeIO(address, val)
	case address <= 0xFFFE:
		b.memory[address] = val
	default: // 0xFFFF
		b.memory[addr.IE] = val
	}
}

func (b *Bus) readIO(address uint16) byte {
	switch {
	case address == addr.P1:
		return b.joypad.Read()
	case address == addr.SB || address == addr.SC:
		return b.serial.Read(address)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		return b.timer.Read(address)
	case address == addr.IF:
		return b.memory[address] | 0xE0
	default:
		return b.memory[address]
	}
}

func (b *Bus) writeIO(address uint16, val byte) {
	switch {
	case address == addr.P1:
		b.joypad.WriteSelect(val)
	case address == addr.SB || address == addr.SC:
		b.serial.Write(address, val)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		b.timer.Write(address, val)
	case address == addr.DMA:
		b.memory[address] = val
		source := uint16(val) << 8
		for i := uint16(0); i < 160; i++ {
			b.memory[addr.OAMStart+i] = b.Read(source + i)
		}
	case address == addr.BootDisable:
		b.DisableBoot()
		b.memory[address] = val
	case address == addr.IF:
		b.memory[address] = val | 0xE0
	default:
		b.memory[address] = val
	}
}

// Tick advances timer and serial state by c CPU machine cycles.
func (b *Bus) Tick(c int) {
	b.timer.Tick(c)
	b.serial.Tick(c)
}

// RequestInterrupt sets the given interrupt's bit in IF.
func (b *Bus) RequestInterrupt(i addr.Interrupt) {
	pos := uint8(bits.TrailingZeros8(uint8(i)))
	if pos > 4 {
		if b.diag.Mark(uint8(i)) {
			// spec.md §7 UnknownInterruptBit: drop the anomalous request
			// rather than corrupting IF, logging it the first time.
			slog.Warn("unknown interrupt bit", "mask", uint8(i))
		}
		return
	}
	b.Write(addr.IF, bitSet(pos, b.Read(addr.IF)))
}

func bitSet(pos uint8, v byte) byte {
	return v | (1 << pos)
}

// PressKey marks key as pressed and raises the joypad interrupt on a
// high-to-low transition of the externally visible nibble.
func (b *Bus) PressKey(key joypad.Key) {
	if b.joypad.Press(key) {
		b.RequestInterrupt(addr.Joypad)
	}
}

// ReleaseKey marks key as released.
func (b *Bus) ReleaseKey(key joypad.Key) {
	b.joypad.Release(key)
}

// ReadBit reports whether the given bit of the byte at address is set.
func (b *Bus) ReadBit(index uint8, address uint16) bool {
	return (b.Read(address)>>index)&1 == 1
}
