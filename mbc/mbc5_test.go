package mbc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMBC5_bankZeroIsDirectlySelectable(t *testing.T) {
	// Unlike MBC1/MBC3, MBC5 has no "never 0" quirk: writing 0 to the low
	// bank register must select bank 0 at 0x4000-0x7FFF.
	m := NewMBC5(rom(4), 1)
	m.WriteROMRegion(0x2000, 0x00)
	assert.Equal(t, uint16(0), m.bank())
	assert.Equal(t, byte(0), m.ReadROM(0x4000))
}

func TestMBC5_highBankExtendsTo9Bits(t *testing.T) {
	m := NewMBC5(rom(512), 1)
	m.WriteROMRegion(0x2000, 0xFF) // low 8 bits
	m.WriteROMRegion(0x3000, 0x01) // bit 8
	assert.Equal(t, uint16(0x1FF), m.bank())
	assert.Equal(t, byte(0xFF), m.ReadROM(0x4000))
}

func TestMBC5_nonOverlappingRegisterRanges(t *testing.T) {
	m := NewMBC5(rom(4), 1)
	m.WriteROMRegion(0x0000, 0x0A) // enable, within 0x0000-0x1FFF
	m.WriteROMRegion(0x2000, 0x02) // low bank, within 0x2000-0x2FFF
	m.WriteROMRegion(0x3000, 0x00) // high bit, within 0x3000-0x3FFF
	m.WriteROMRegion(0x4000, 0x03) // RAM bank, within 0x4000-0x5FFF

	assert.Equal(t, uint8(0x02), m.romBankLow)
	assert.Equal(t, uint8(0x03), m.ramBank)
	assert.True(t, m.ramEnable)
}
