// Package cartridge parses the DMG cartridge header and selects the
// matching MBC variant, grounded on valerio-go-jeebie's
// memory/cartridge.go field offsets and memory/cart_utils.go title
// cleanup.
package cartridge

import (
	"strings"
	"unicode"

	"github.com/kklx/dmgcore/gberr"
)

// Variant identifies which MBC family a cartridge uses.
type Variant int

const (
	VariantNoMBC Variant = iota
	VariantMBC1
	VariantMBC3
	VariantMBC5
)

const (
	titleAddress         = 0x0134
	titleLength          = 16
	cartridgeTypeAddress = 0x0147
	romSizeAddress       = 0x0148
	ramSizeAddress       = 0x0149
	headerMinLength      = 0x0150
)

// Header holds the decoded fields of a cartridge's 0x0100-0x014F header.
type Header struct {
	Title        string
	Variant      Variant
	HasRAM       bool
	HasBattery   bool
	HasRTC       bool
	ROMBankCount int
	RAMBankCount int
	CartType     byte
}

// Parse decodes the header from a ROM image. The image must be at least
// large enough to contain the header (0x150 bytes); spec.md §7
// CartridgeRead.
func Parse(data []byte) (*Header, error) {
	if len(data) < headerMinLength {
		return nil, &gberr.ErrCartridgeRead{Err: errShortROM}
	}

	cartType := data[cartridgeTypeAddress]
	variant, hasRAM, hasBattery, hasRTC, ok := decodeCartType(cartType)
	if !ok {
		return nil, &gberr.ErrUnsupportedMBC{CartridgeType: cartType}
	}

	romBanks := 1 << (uint(data[romSizeAddress]) + 1)
	ramBanks := ramBankCountForCode(data[ramSizeAddress])

	end := titleAddress + titleLength
	if end > len(data) {
		end = len(data)
	}

	return &Header{
		Title:        cleanTitle(data[titleAddress:end]),
		Variant:      variant,
		HasRAM:       hasRAM,
		HasBattery:   hasBattery,
		HasRTC:       hasRTC,
		ROMBankCount: romBanks,
		RAMBankCount: ramBanks,
		CartType:     cartType,
	}, nil
}

// decodeCartType maps the 0x0147 header byte to an MBC variant per
// spec.md §6's table.
func decodeCartType(b byte) (v Variant, hasRAM, hasBattery, hasRTC, ok bool) {
	switch b {
	case 0x00:
		return VariantNoMBC, false, false, false, true
	case 0x08, 0x09:
		return VariantNoMBC, true, b == 0x09, false, true
	case 0x01, 0x02:
		return VariantMBC1, b == 0x02, false, false, true
	case 0x03:
		return VariantMBC1, true, true, false, true
	case 0x0F:
		return VariantMBC3, false, true, true, true
	case 0x10:
		return VariantMBC3, true, true, true, true
	case 0x11, 0x12:
		return VariantMBC3, b == 0x12, false, false, true
	case 0x13:
		return VariantMBC3, true, true, false, true
	case 0x19, 0x1A, 0x1C, 0x1D:
		return VariantMBC5, b == 0x1A || b == 0x1D, false, false, true
	case 0x1B, 0x1E:
		return VariantMBC5, true, true, false, true
	default:
		return 0, false, false, false, false
	}
}

func ramBankCountForCode(code byte) int {
	switch code {
	case 0:
		return 0
	case 1:
		return 1 // 2 KiB, treated as a single (partially used) bank
	case 2:
		return 1 // 8 KiB
	case 3:
		return 4 // 32 KiB
	default:
		return 0
	}
}

func cleanTitle(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		r := rune(b)
		switch {
		case r == 0:
			continue
		case !unicode.IsPrint(r):
			r = '?'
		}
		runes = append(runes, r)
	}
	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(untitled)"
	}
	return title
}

type shortROMError struct{}

func (shortROMError) Error() string { return "rom shorter than header region" }

var errShortROM = shortROMError{}
