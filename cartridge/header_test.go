package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kklx/dmgcore/gberr"
)

func makeHeaderROM(title string, cartType, romSizeCode, ramSizeCode byte) []byte {
	data := make([]byte, headerMinLength)
	copy(data[titleAddress:], title)
	data[cartridgeTypeAddress] = cartType
	data[romSizeAddress] = romSizeCode
	data[ramSizeAddress] = ramSizeCode
	return data
}

func TestParse_decodesMBC1WithBattery(t *testing.T) {
	data := makeHeaderROM("ZELDA", 0x03, 0x01, 0x03)
	h, err := Parse(data)
	assert.NoError(t, err)
	assert.Equal(t, "ZELDA", h.Title)
	assert.Equal(t, VariantMBC1, h.Variant)
	assert.True(t, h.HasRAM)
	assert.True(t, h.HasBattery)
	assert.Equal(t, 4, h.ROMBankCount) // code 1 -> 1<<2 = 4
	assert.Equal(t, 4, h.RAMBankCount) // code 3 -> 32 KiB -> 4 banks
}

func TestParse_decodesNoMBC(t *testing.T) {
	data := makeHeaderROM("TETRIS", 0x00, 0x00, 0x00)
	h, err := Parse(data)
	assert.NoError(t, err)
	assert.Equal(t, VariantNoMBC, h.Variant)
	assert.False(t, h.HasRAM)
	assert.Equal(t, 2, h.ROMBankCount) // code 0 -> 1<<1 = 2
}

func TestParse_decodesMBC3WithRTC(t *testing.T) {
	data := makeHeaderROM("POKEMON", 0x10, 0x02, 0x02)
	h, err := Parse(data)
	assert.NoError(t, err)
	assert.Equal(t, VariantMBC3, h.Variant)
	assert.True(t, h.HasRTC)
	assert.True(t, h.HasBattery)
}

func TestParse_unsupportedCartTypeReturnsTypedError(t *testing.T) {
	data := makeHeaderROM("MYSTERY", 0xFE, 0x00, 0x00)
	_, err := Parse(data)
	var target *gberr.ErrUnsupportedMBC
	assert.ErrorAs(t, err, &target)
	assert.Equal(t, byte(0xFE), target.CartridgeType)
}

func TestParse_shortROMReturnsCartridgeReadError(t *testing.T) {
	_, err := Parse(make([]byte, 0x10))
	var target *gberr.ErrCartridgeRead
	assert.ErrorAs(t, err, &target)
}

func TestCleanTitle_stripsNonPrintableAndPads(t *testing.T) {
	raw := append([]byte("SUPERMARIO"), 0, 0, 0, 0, 0, 0)
	assert.Equal(t, "SUPERMARIO", cleanTitle(raw))
}

func TestCleanTitle_emptyBecomesUntitled(t *testing.T) {
	assert.Equal(t, "(untitled)", cleanTitle(make([]byte, 16)))
}
