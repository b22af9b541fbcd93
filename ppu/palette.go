package ppu

// shadeColor maps a DMG 2-bit shade (0=lightest) to an RGBA color. The
// four-greys ramp is the conventional DMG palette used by every
// software renderer in the absence of real LCD color matching.
var shadeColor = [4][4]byte{
	{0xFF, 0xFF, 0xFF, 0xFF},
	{0xAA, 0xAA, 0xAA, 0xFF},
	{0x55, 0x55, 0x55, 0xFF},
	{0x00, 0x00, 0x00, 0xFF},
}

// paletteLookup resolves a 2-bit color index through a BGP/OBP0/OBP1
// palette register.
func paletteLookup(reg uint8, colorIndex uint8) [4]byte {
	shade := (reg >> (2 * colorIndex)) & 0x3
	return shadeColor[shade]
}
