package mbc

// MBC3 adds a real-time-clock register bank on top of MBC1-style
// banking, with simple (non-modal) RAM banking. The RTC registers are
// stubbed: writes are accepted so games that probe them do not desync,
// but no wall-clock counting happens (spec.md Non-goals).
type MBC3 struct {
	rom []uint8
	ram []uint8

	ramEnable   bool
	romBank     uint8 // 7 bits, never 0
	ramOrRTCSel uint8 // 0-3: RAM bank, 0x08-0x0C: RTC register

	rtc [5]uint8 // seconds, minutes, hours, day-low, day-high/flags

	romBanks   int
	ramSizeLen int
}

// NewMBC3 constructs an MBC3 controller.
func NewMBC3(rom []uint8, ramBankCount int) *MBC3 {
	return &MBC3{
		rom:        rom,
		ram:        make([]uint8, ramSize(ramBankCount)),
		romBank:    1,
		romBanks:   romBankCount(len(rom)),
		ramSizeLen: ramSize(ramBankCount),
	}
}

func (m *MBC3) ReadROM(addr uint16) uint8 {
	if addr <= 0x3FFF {
		return m.rom[uint32(addr)%uint32(len(m.rom))]
	}
	offset := uint32(m.romBank)*0x4000 + uint32(addr-0x4000)
	return m.rom[offset%uint32(len(m.rom))]
}

func (m *MBC3) WriteROMRegion(addr uint16, val uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnable = val&0x0F == 0x0A && m.ramSizeLen > 0
	case addr <= 0x3FFF:
		bank := val & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr <= 0x5FFF:
		m.ramOrRTCSel = val
	default: // 0x6000-0x7FFF: RTC latch. Accepting the write is sufficient.
	}
}

func (m *MBC3) isRTCSelected() bool {
	return m.ramOrRTCSel >= 0x08 && m.ramOrRTCSel <= 0x0C
}

func (m *MBC3) ReadRAM(addr uint16) uint8 {
	if m.isRTCSelected() {
		return m.rtc[m.ramOrRTCSel-0x08]
	}
	if !m.ramEnable || m.ramSizeLen == 0 {
		return 0xFF
	}
	offset := (int(m.ramOrRTCSel&0x03)*0x2000 + int(addr-0xA000)) % m.ramSizeLen
	return m.ram[offset]
}

func (m *MBC3) WriteRAM(addr uint16, val uint8) {
	if m.isRTCSelected() {
		m.rtc[m.ramOrRTCSel-0x08] = val
		return
	}
	if !m.ramEnable || m.ramSizeLen == 0 {
		return
	}
	offset := (int(m.ramOrRTCSel&0x03)*0x2000 + int(addr-0xA000)) % m.ramSizeLen
	m.ram[offset] = val
}
