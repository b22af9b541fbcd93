// Package sdl2 renders frames through an SDL2 window, grounded on
// valerio-go-jeebie's backend/sdl2/sdl2.go (window/renderer/texture
// setup, the PollEvent loop, the streaming-texture update-then-present
// sequence), stripped of its debug window, audio device and
// test-pattern features, which are outside this core's scope.
//
// Like the teacher's go.mod, go-sdl2 is a real dependency here that
// requires the SDL2 development libraries at build time; hosts that
// cannot provide them should use backend/terminal or backend/headless
// instead.
package sdl2

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/kklx/dmgcore/backend"
	"github.com/kklx/dmgcore/joypad"
	"github.com/kklx/dmgcore/ppu"
)

// Scale is the integer pixel scale applied to the 160x144 LCD image.
const Scale = 4

// keyMap translates SDL scancodes to joypad keys.
var keyMap = map[sdl.Scancode]joypad.Key{
	sdl.SCANCODE_UP:     joypad.Up,
	sdl.SCANCODE_DOWN:   joypad.Down,
	sdl.SCANCODE_LEFT:   joypad.Left,
	sdl.SCANCODE_RIGHT:  joypad.Right,
	sdl.SCANCODE_Z:      joypad.A,
	sdl.SCANCODE_X:      joypad.B,
	sdl.SCANCODE_RETURN: joypad.Start,
	sdl.SCANCODE_RSHIFT: joypad.Select,
}

// Backend implements backend.Backend using an SDL2 window and a
// streaming texture the size of the LCD.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	quit     bool
}

// New constructs an SDL2 backend; Init performs the actual SDL setup.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(title string) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("sdl2 backend: %w", err)
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		ppu.Width*Scale, ppu.Height*Scale, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("sdl2 backend: create window: %w", err)
	}
	b.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2 backend: create renderer: %w", err)
	}
	b.renderer = renderer

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING, ppu.Width, ppu.Height)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2 backend: create texture: %w", err)
	}
	b.texture = texture

	return nil
}

func (b *Backend) Update(frame *ppu.FrameBuffer) ([]backend.InputEvent, error) {
	events := b.pollEvents()

	if err := b.texture.Update(nil, frame.Pixels, frame.Stride); err != nil {
		return events, fmt.Errorf("sdl2 backend: update texture: %w", err)
	}
	b.renderer.Clear()
	b.renderer.Copy(b.texture, nil, nil)
	b.renderer.Present()

	return events, nil
}

func (b *Backend) pollEvents() []backend.InputEvent {
	var events []backend.InputEvent
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			b.quit = true
		case *sdl.KeyboardEvent:
			key, ok := keyMap[e.Keysym.Scancode]
			if !ok {
				continue
			}
			events = append(events, backend.InputEvent{Key: key, Pressed: e.State == sdl.PRESSED})
		}
	}
	return events
}

// Quit reports whether the window's close button or Alt+F4 fired.
func (b *Backend) Quit() bool { return b.quit }

func (b *Backend) Cleanup() error {
	if b.texture != nil {
		b.texture.Destroy()
	}
	if b.renderer != nil {
		b.renderer.Destroy()
	}
	if b.window != nil {
		b.window.Destroy()
	}
	sdl.Quit()
	return nil
}
