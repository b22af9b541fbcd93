// Package ppu implements the pixel-processing unit: the scanline
// state machine, background/window/sprite compositing, and the
// 160x144 RGBA frame it hands to a backend once per frame.
//
// Grounded on valerio-go-jeebie's video/gpu.go (mode state machine,
// setLY writing through the bus, frame-present on V-blank entry) and
// video/framebuffer.go (the RGBA buffer shape), adapted to spec.md
// §4.4's dot-exact 80/252/456 scanline breakdown rather than the
// teacher's 80/172/204 cycle constants (see DESIGN.md).
package ppu

// Width and Height are the visible LCD dimensions.
const (
	Width  = 160
	Height = 144
)

// FrameBuffer holds one composited RGBA frame.
type FrameBuffer struct {
	Pixels []byte // Width*Height*4 bytes, row-major, RGBA8
	Stride int
}

// NewFrameBuffer allocates a blank (opaque black) frame.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{
		Pixels: make([]byte, Width*Height*4),
		Stride: Width * 4,
	}
	for i := 3; i < len(fb.Pixels); i += 4 {
		fb.Pixels[i] = 0xFF
	}
	return fb
}

func (fb *FrameBuffer) setPixel(x, y int, rgba [4]byte) {
	offset := y*fb.Stride + x*4
	copy(fb.Pixels[offset:offset+4], rgba[:])
}
