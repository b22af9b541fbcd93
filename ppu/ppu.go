package ppu

import (
	"github.com/kklx/dmgcore/addr"
)

// Bus is the narrow surface the PPU needs from memory.Bus.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, val uint8)
}

// mode bits, matching STAT[1:0].
const (
	modeHBlank = 0
	modeVBlank = 1
	modeOAM    = 2
	modeDraw   = 3
)

const (
	dotsOAM   = 80
	dotsDraw  = 252 // OAM(80) + drawing(172)
	dotsTotal = 456
)

// sprite is one decoded OAM entry.
type sprite struct {
	y, x, tile, attr uint8
}

// PPU drives the scanline state machine described in spec.md §4.4.
type PPU struct {
	bus              Bus
	requestInterrupt func(addr.Interrupt)
	presentFrame     func(*FrameBuffer)

	dot        int
	line       int
	mode       uint8
	windowLine int

	frame *FrameBuffer
}

// New creates a PPU wired to bus. requestInterrupt should raise IF
// bits; presentFrame is called once per completed frame with the
// just-rendered buffer.
func New(bus Bus, requestInterrupt func(addr.Interrupt), presentFrame func(*FrameBuffer)) *PPU {
	return &PPU{
		bus:              bus,
		requestInterrupt: requestInterrupt,
		presentFrame:     presentFrame,
		frame:            NewFrameBuffer(),
		mode:             modeOAM,
	}
}

// Step advances the PPU by c CPU machine cycles (c*4 dot-clock ticks),
// per spec.md §4.4.
func (p *PPU) Step(c int) {
	dots := c * 4
	for dots > 0 {
		step := dotsTotal - p.dot
		if step > dots {
			step = dots
		}
		p.advance(step)
		dots -= step
	}
}

func (p *PPU) advance(dots int) {
	prevDot := p.dot
	p.dot += dots

	// The OAM/Draw/H-Blank sub-cycle only exists on visible lines; during
	// V-Blank (line >= Height) the mode stays at V-Blank for the whole
	// 456-dot period regardless of where dot lands (spec.md §4.4).
	if p.line < Height {
		if prevDot < dotsOAM && p.dot >= dotsOAM {
			p.setMode(modeDraw)
		}
		if prevDot < dotsDraw && p.dot >= dotsDraw {
			p.setMode(modeHBlank)
			p.renderScanline(p.line)
		}
	}
	if p.dot >= dotsTotal {
		p.dot -= dotsTotal
		p.endScanline()
	}
}

func (p *PPU) endScanline() {
	p.line++
	if p.line > 153 {
		p.line = 0
		p.windowLine = 0
	}
	p.setLY(p.line)

	switch {
	case p.line < Height:
		p.setMode(modeOAM)
	case p.line == Height:
		p.setMode(modeVBlank)
		if p.lcdOn() {
			p.requestInterrupt(addr.VBlank)
			p.presentFrame(p.frame)
		}
	}
}

func (p *PPU) setMode(mode uint8) {
	p.mode = mode
	stat := p.bus.Read(addr.STAT)
	stat = stat&0xFC | mode
	p.bus.Write(addr.STAT, stat)

	switch mode {
	case modeOAM:
		if stat&0x20 != 0 {
			p.requestInterrupt(addr.LCDSTAT)
		}
	case modeHBlank:
		if stat&0x08 != 0 {
			p.requestInterrupt(addr.LCDSTAT)
		}
	}
}

func (p *PPU) setLY(line int) {
	p.bus.Write(addr.LY, uint8(line))
	stat := p.bus.Read(addr.STAT)
	lyc := p.bus.Read(addr.LYC)
	if uint8(line) == lyc {
		stat |= 0x04
		if stat&0x40 != 0 {
			p.requestInterrupt(addr.LCDSTAT)
		}
	} else {
		stat &^= 0x04
	}
	p.bus.Write(addr.STAT, stat)
}

func (p *PPU) lcdc() uint8   { return p.bus.Read(addr.LCDC) }
func (p *PPU) lcdOn() bool   { return p.lcdc()&0x80 != 0 }

func (p *PPU) renderScanline(ly int) {
	lcdc := p.lcdc()
	bgEnabled := lcdc&0x01 != 0
	windowEnabled := lcdc&0x20 != 0 && bgEnabled

	scy := p.bus.Read(addr.SCY)
	scx := p.bus.Read(addr.SCX)
	wy := p.bus.Read(addr.WY)
	wx := int(p.bus.Read(addr.WX)) - 7

	windowVisibleThisLine := windowEnabled && ly >= int(wy)
	sprites := p.scanSprites(ly, lcdc)

	for x := 0; x < Width; x++ {
		var colorIdx uint8
		var rgba [4]byte
		var bgOpaque bool

		if bgEnabled {
			if windowVisibleThisLine && x >= wx {
				colorIdx = p.tileColorIndex(lcdc, x-wx, p.windowLine, true)
			} else {
				colorIdx = p.tileColorIndex(lcdc, (x+int(scx))&0xFF, (ly+int(scy))&0xFF, false)
			}
			rgba = paletteLookup(p.bus.Read(addr.BGP), colorIdx)
			bgOpaque = colorIdx != 0
		} else {
			rgba = shadeColor[0]
		}

		if spriteColor, ok := p.spriteColorAt(sprites, x, ly, bgOpaque); ok {
			rgba = spriteColor
		}

		p.frame.setPixel(x, ly, rgba)
	}

	if windowVisibleThisLine {
		p.windowLine++
	}
}

// tileColorIndex samples the background or window tile plane at
// (planeX, planeY) in 256-wide tile-map space. windowPlane selects the
// window's own tile map bit (LCDC bit 6) instead of the background's
// (bit 3).
func (p *PPU) tileColorIndex(lcdc uint8, planeX, planeY int, windowPlane bool) uint8 {
	var mapBase uint16
	if windowPlane {
		if lcdc&0x40 != 0 {
			mapBase = addr.TileMap1
		} else {
			mapBase = addr.TileMap0
		}
	} else {
		if lcdc&0x08 != 0 {
			mapBase = addr.TileMap1
		} else {
			mapBase = addr.TileMap0
		}
	}

	tileCol := planeX / 8
	tileRow := planeY / 8
	mapAddr := mapBase + uint16(tileRow*32+tileCol)
	tileNum := p.bus.Read(mapAddr)

	tileAddr := p.tileDataAddress(lcdc, tileNum)
	rowInTile := planeY % 8
	colInTile := planeX % 8

	lo := p.bus.Read(tileAddr + uint16(rowInTile)*2)
	hi := p.bus.Read(tileAddr + uint16(rowInTile)*2 + 1)

	bitIdx := 7 - colInTile
	loBit := (lo >> bitIdx) & 1
	hiBit := (hi >> bitIdx) & 1
	return hiBit<<1 | loBit
}

func (p *PPU) tileDataAddress(lcdc uint8, tileNum uint8) uint16 {
	if lcdc&0x10 != 0 {
		return addr.TileData0 + uint16(tileNum)*16
	}
	return uint16(int32(addr.TileData2) + int32(int8(tileNum))*16)
}

// scanSprites implements the OAM scan for one line: up to 10 sprites,
// in OAM order, per spec.md §4.4.
func (p *PPU) scanSprites(ly int, lcdc uint8) []sprite {
	height := 8
	if lcdc&0x04 != 0 {
		height = 16
	}

	var found []sprite
	for i := uint16(0); i < 40 && len(found) < 10; i++ {
		base := addr.OAMStart + i*4
		y := int(p.bus.Read(base)) - 16
		if ly < y || ly >= y+height {
			continue
		}
		found = append(found, sprite{
			y:    p.bus.Read(base),
			x:    p.bus.Read(base + 1),
			tile: p.bus.Read(base + 2),
			attr: p.bus.Read(base + 3),
		})
	}
	return found
}

// spriteColorAt resolves the topmost opaque sprite pixel at screen x on
// the already-scanned sprite list, honoring the bg-priority attribute
// bit (bit 7: sprite drawn behind a non-zero background pixel).
func (p *PPU) spriteColorAt(sprites []sprite, x, ly int, bgOpaque bool) ([4]byte, bool) {
	lcdc := p.lcdc()
	if lcdc&0x02 == 0 {
		return [4]byte{}, false
	}
	height := 8
	if lcdc&0x04 != 0 {
		height = 16
	}

	for _, s := range sprites {
		spriteX := int(s.x) - 8
		if x < spriteX || x >= spriteX+8 {
			continue
		}

		col := x - spriteX
		row := ly - (int(s.y) - 16)

		if s.attr&0x20 != 0 { // X flip
			col = 7 - col
		}
		if s.attr&0x40 != 0 { // Y flip
			row = height - 1 - row
		}

		tile := s.tile
		if height == 16 {
			tile &^= 1
		}
		tileAddr := addr.TileData0 + uint16(tile)*16

		lo := p.bus.Read(tileAddr + uint16(row)*2)
		hi := p.bus.Read(tileAddr + uint16(row)*2 + 1)
		bitIdx := 7 - col
		loBit := (lo >> bitIdx) & 1
		hiBit := (hi >> bitIdx) & 1
		colorIdx := hiBit<<1 | loBit
		if colorIdx == 0 {
			continue // transparent
		}

		if s.attr&0x80 != 0 && bgOpaque {
			continue // behind background
		}

		palette := addr.OBP0
		if s.attr&0x10 != 0 {
			palette = addr.OBP1
		}
		return paletteLookup(p.bus.Read(palette), colorIdx), true
	}
	return [4]byte{}, false
}
