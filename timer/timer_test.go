package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kklx/dmgcore/addr"
)

func TestTimer_overflowReloadsFromTMAAndRequestsInterrupt(t *testing.T) {
	var requested addr.Interrupt
	fired := 0
	tm := New(func(i addr.Interrupt) {
		requested = i
		fired++
	})

	tm.Write(addr.TMA, 0xAB)
	tm.Write(addr.TAC, 0x05) // enabled, divisor select 1 -> every 16 dots
	tm.Write(addr.TIMA, 0xFF)

	// One TIMA increment needs 16 dot-cycles = 4 M-cycles.
	tm.Tick(4)

	assert.Equal(t, uint8(0xAB), tm.Read(addr.TIMA))
	assert.Equal(t, 1, fired)
	assert.Equal(t, addr.Timer, requested)
}

func TestTimer_disabledTACNeverIncrementsTIMA(t *testing.T) {
	tm := New(nil)
	tm.Write(addr.TAC, 0x00) // bit 2 clear: disabled
	tm.Write(addr.TIMA, 0x10)
	tm.Tick(10000)
	assert.Equal(t, uint8(0x10), tm.Read(addr.TIMA))
}

func TestTimer_writeToDIVResetsItAndThePreDivider(t *testing.T) {
	tm := New(nil)
	tm.Tick(1000)
	assert.NotEqual(t, uint8(0), tm.Read(addr.DIV))

	tm.Write(addr.DIV, 0x99) // value is irrelevant; any write resets to 0
	assert.Equal(t, uint8(0), tm.Read(addr.DIV))
}

func TestTimer_divIncrementsEvery256Cycles(t *testing.T) {
	tm := New(nil)
	tm.Tick(256)
	assert.Equal(t, uint8(1), tm.Read(addr.DIV))
	tm.Tick(255)
	assert.Equal(t, uint8(1), tm.Read(addr.DIV))
	tm.Tick(1)
	assert.Equal(t, uint8(2), tm.Read(addr.DIV))
}

func TestTimer_tacUpperBitsReadAsSet(t *testing.T) {
	tm := New(nil)
	tm.Write(addr.TAC, 0x05)
	assert.Equal(t, uint8(0xFD), tm.Read(addr.TAC))
}
