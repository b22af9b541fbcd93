package mbc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoMBC_directMapping(t *testing.T) {
	data := rom(2)
	m := NewNoMBC(data, false)
	assert.Equal(t, data[0x4000], m.ReadROM(0x4000))
}

func TestNoMBC_writesToROMAreDiscarded(t *testing.T) {
	data := rom(2)
	m := NewNoMBC(data, false)
	before := m.ReadROM(0x0100)
	m.WriteROMRegion(0x0100, 0xFF)
	assert.Equal(t, before, m.ReadROM(0x0100))
}

func TestNoMBC_ramAbsentReadsZero(t *testing.T) {
	m := NewNoMBC(rom(2), false)
	assert.Equal(t, uint8(0), m.ReadRAM(0xA000))
	m.WriteRAM(0xA000, 0x42) // must not panic when RAM is absent
	assert.Equal(t, uint8(0), m.ReadRAM(0xA000))
}

func TestNoMBC_ramPresentIsAlwaysEnabled(t *testing.T) {
	m := NewNoMBC(rom(2), true)
	m.WriteRAM(0xA000, 0x42)
	assert.Equal(t, uint8(0x42), m.ReadRAM(0xA000))
}
