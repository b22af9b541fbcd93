// Package terminal renders frames to a tcell screen as block
// characters, grounded almost directly on valerio-go-jeebie's
// main.go TerminalRenderer (shade ramp, 2x horizontal scale to
// compensate for terminal cell aspect ratio). Escape key presses are
// swallowed rather than forwarded; this backend has no quit key.
package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/kklx/dmgcore/backend"
	"github.com/kklx/dmgcore/joypad"
	"github.com/kklx/dmgcore/ppu"
)

// scaleX compensates for terminal cells being taller than wide.
const scaleX = 2

// shadeChars ramps from darkest to lightest.
var shadeChars = []rune{'█', '▓', '▒', '░'}

// keyMap translates the handful of keys a terminal session can usefully
// bind without stealing OS shortcuts.
var keyMap = map[rune]joypad.Key{
	'z': joypad.A,
	'x': joypad.B,
	'a': joypad.Select,
	's': joypad.Start,
}

// Backend renders via tcell and reports arrow/zxas key events.
type Backend struct {
	screen tcell.Screen
}

// New constructs a terminal backend; Init performs the actual tcell
// screen setup.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(title string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal backend: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal backend: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()
	screen.SetTitle(title)
	b.screen = screen
	return nil
}

func (b *Backend) Update(frame *ppu.FrameBuffer) ([]backend.InputEvent, error) {
	events := b.pollEvents()
	b.render(frame)
	b.screen.Show()
	return events, nil
}

func (b *Backend) pollEvents() []backend.InputEvent {
	var events []backend.InputEvent
	for b.screen.HasPendingEvent() {
		switch ev := b.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape {
				continue
			}
			if dpadKey, ok := dpadFromKey(ev.Key()); ok {
				events = append(events, backend.InputEvent{Key: dpadKey, Pressed: true})
				continue
			}
			if key, ok := keyMap[ev.Rune()]; ok {
				events = append(events, backend.InputEvent{Key: key, Pressed: true})
			}
		case *tcell.EventResize:
			b.screen.Sync()
		}
	}
	return events
}

func dpadFromKey(k tcell.Key) (joypad.Key, bool) {
	switch k {
	case tcell.KeyUp:
		return joypad.Up, true
	case tcell.KeyDown:
		return joypad.Down, true
	case tcell.KeyLeft:
		return joypad.Left, true
	case tcell.KeyRight:
		return joypad.Right, true
	default:
		return 0, false
	}
}

func (b *Backend) render(frame *ppu.FrameBuffer) {
	b.screen.Clear()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	for y := 0; y < ppu.Height; y++ {
		for x := 0; x < ppu.Width; x++ {
			offset := y*frame.Stride + x*4
			brightness := frame.Pixels[offset] // R channel; greyscale so any channel works
			shade := 3 - brightness/64
			if shade > 3 {
				shade = 3
			}
			char := shadeChars[shade]

			screenX := x * scaleX
			for sx := 0; sx < scaleX; sx++ {
				b.screen.SetContent(screenX+sx, y, char, nil, style)
			}
		}
	}
}

func (b *Backend) Cleanup() error {
	if b.screen != nil {
		b.screen.Fini()
	}
	return nil
}
