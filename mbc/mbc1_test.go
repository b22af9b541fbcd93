package mbc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rom(banks int) []byte {
	data := make([]byte, banks*0x4000)
	for bank := 0; bank < banks; bank++ {
		data[bank*0x4000] = byte(bank)
	}
	return data
}

func TestMBC1_zeroBankNumber(t *testing.T) {
	testCases := []struct {
		desc         string
		romBanks     int
		upperBits    uint8
		wantLowMasks uint8
	}{
		{desc: "32 or fewer banks never forces a high bit", romBanks: 32, upperBits: 0b11, wantLowMasks: 0},
		{desc: "64 banks uses bit 5 from bit 0 of upper bits", romBanks: 64, upperBits: 0b01, wantLowMasks: 0x20},
		{desc: "128 banks combines bits 5 and 6", romBanks: 128, upperBits: 0b10, wantLowMasks: 0x40},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			m := NewMBC1(rom(tC.romBanks), 0)
			m.WriteROMRegion(0x2000, 0x00) // romBankLo = 0 -> forced to 1
			m.ramOrUpperRom = tC.upperBits
			got := m.zeroBankNumber()
			assert.Equal(t, tC.wantLowMasks, got)
		})
	}
}

func TestMBC1_romBankSwitchForcesNonZero(t *testing.T) {
	m := NewMBC1(rom(4), 0)
	m.WriteROMRegion(0x2000, 0x00)
	assert.Equal(t, uint8(1), m.romBankLo)

	m.WriteROMRegion(0x2000, 0x03)
	assert.Equal(t, uint8(3), m.romBankLo)

	got := m.ReadROM(0x4000)
	assert.Equal(t, byte(3), got)
}

func TestMBC1_ramRequiresEnable(t *testing.T) {
	m := NewMBC1(rom(4), 1)
	m.WriteRAM(0xA000, 0x42)
	assert.Equal(t, uint8(0xFF), m.ReadRAM(0xA000))

	m.WriteROMRegion(0x0000, 0x0A)
	m.WriteRAM(0xA000, 0x42)
	assert.Equal(t, uint8(0x42), m.ReadRAM(0xA000))
}
