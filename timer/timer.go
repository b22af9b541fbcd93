// Package timer implements the DIV/TIMA/TMA/TAC interval timer, grounded
// on valerio-go-jeebie's memory/timer.go struct shape (Tick/Read/Write
// plus an interrupt-request callback), but following the simplified
// pre-divider + selectable-divisor accumulator model spec.md §4.6
// prescribes rather than the teacher's falling-edge-on-system-counter-bit
// model (see DESIGN.md).
package timer

import "github.com/kklx/dmgcore/addr"

// Timer holds the four timer registers and the internal accumulators
// that drive them.
type Timer struct {
	div  uint8
	tima uint8
	tma  uint8
	tac  uint8

	divAccum   int // CPU cycles accumulated toward the next DIV increment
	timaAccum  int // dot-cycles accumulated toward the next TIMA increment

	// RequestInterrupt is called when TIMA overflows from 0xFF to 0x00.
	RequestInterrupt func(addr.Interrupt)
}

// New creates a Timer with the given interrupt-request callback.
func New(requestInterrupt func(addr.Interrupt)) *Timer {
	return &Timer{RequestInterrupt: requestInterrupt}
}

func divisorFor(select2bit uint8) int {
	switch select2bit {
	case 0:
		return 1024
	case 1:
		return 16
	case 2:
		return 64
	default: // 3
		return 256
	}
}

// Tick advances the timer by c CPU machine cycles.
func (t *Timer) Tick(c int) {
	t.divAccum += c
	for t.divAccum >= 256 {
		t.divAccum -= 256
		t.div++
	}

	if t.tac&0x04 == 0 {
		return
	}

	divisor := divisorFor(t.tac & 0x03)
	t.timaAccum += c * 4
	for t.timaAccum >= divisor {
		t.timaAccum -= divisor
		t.incrementTIMA()
	}
}

func (t *Timer) incrementTIMA() {
	if t.tima == 0xFF {
		t.tima = t.tma
		if t.RequestInterrupt != nil {
			t.RequestInterrupt(addr.Timer)
		}
		return
	}
	t.tima++
}

// Read returns the stored value of one of DIV/TIMA/TMA/TAC. TAC's upper
// 5 bits always read back as 1, matching real hardware.
func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case addr.DIV:
		return t.div
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

// Write handles a guest write to one of the timer registers.
func (t *Timer) Write(address uint16, val uint8) {
	switch address {
	case addr.DIV:
		// Any write resets DIV and the internal pre-divider (spec.md §4.5).
		t.div = 0
		t.divAccum = 0
	case addr.TIMA:
		t.tima = val
	case addr.TMA:
		t.tma = val
	case addr.TAC:
		t.tac = val & 0x07
	}
}
