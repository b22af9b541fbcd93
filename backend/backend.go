// Package backend defines the host-facing rendering/input surface a
// frontend plugs into a Machine, grounded on valerio-go-jeebie's
// backend/backend.go Backend interface, narrowed to this core's
// actual capabilities (no audio, no snapshot/debug-window features).
package backend

import (
	"github.com/kklx/dmgcore/joypad"
	"github.com/kklx/dmgcore/ppu"
)

// InputEvent reports a key transition translated from a backend's
// native event type.
type InputEvent struct {
	Key     joypad.Key
	Pressed bool
}

// Backend is a complete presentation surface: it renders frames and
// reports input. Implementations must not block Update for longer than
// one frame interval except in the host-facing present call itself
// (spec.md §5: windowing present is the one operation allowed to
// block).
type Backend interface {
	Init(title string) error
	Update(frame *ppu.FrameBuffer) ([]InputEvent, error)
	Cleanup() error
}
