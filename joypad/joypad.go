// Package joypad models the P1 (0xFF00) register's button/d-pad
// selection logic, grounded on valerio-go-jeebie's memory/mem.go
// HandleKeyPress/HandleKeyRelease and updateJoypadRegister.
package joypad

import "github.com/kklx/dmgcore/bit"

// Key identifies one of the eight physical buttons.
type Key uint8

const (
	Right Key = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// State tracks the current button/d-pad bit state (1 = released,
// matching hardware polarity) and the selection bits last written to
// P1's upper nibble.
type State struct {
	buttons uint8 // bits 0-3: A, B, Select, Start
	dpad    uint8 // bits 0-3: Right, Left, Up, Down
	select_ uint8 // bits 4-5 as last written
}

// NewState returns a State with no buttons pressed.
func NewState() *State {
	return &State{buttons: 0x0F, dpad: 0x0F}
}

// Press marks key as pressed. It reports whether this is a high-to-low
// transition on the externally visible nibble, which is what should
// raise the joypad interrupt.
func (s *State) Press(key Key) bool {
	before := s.selectedNibble()
	s.setBit(key, false)
	return before & ^s.selectedNibble() != 0
}

// Release marks key as released.
func (s *State) Release(key Key) {
	s.setBit(key, true)
}

func (s *State) setBit(key Key, released bool) {
	switch key {
	case Right:
		s.dpad = bit.SetTo(0, s.dpad, released)
	case Left:
		s.dpad = bit.SetTo(1, s.dpad, released)
	case Up:
		s.dpad = bit.SetTo(2, s.dpad, released)
	case Down:
		s.dpad = bit.SetTo(3, s.dpad, released)
	case A:
		s.buttons = bit.SetTo(0, s.buttons, released)
	case B:
		s.buttons = bit.SetTo(1, s.buttons, released)
	case Select:
		s.buttons = bit.SetTo(2, s.buttons, released)
	case Start:
		s.buttons = bit.SetTo(3, s.buttons, released)
	}
}

// WriteSelect stores the selection bits (4-5) from a guest write to P1.
func (s *State) WriteSelect(val uint8) {
	s.select_ = val & 0b0011_0000
}

func (s *State) selectedNibble() uint8 {
	selectDpad := !bit.IsSet(4, s.select_)
	selectButtons := !bit.IsSet(5, s.select_)

	switch {
	case selectButtons && !selectDpad:
		return s.buttons & 0x0F
	case selectDpad && !selectButtons:
		return s.dpad & 0x0F
	case selectButtons && selectDpad:
		return s.buttons & s.dpad & 0x0F
	default:
		return 0x0F
	}
}

// Read composes the full P1 byte: bits 6-7 always read as 1, bits 4-5
// echo the stored selection, bits 0-3 come from the selected group.
func (s *State) Read() uint8 {
	return 0b1100_0000 | s.select_ | s.selectedNibble()
}
