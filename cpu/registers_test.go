package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisters_fLowNibbleAlwaysMasked(t *testing.T) {
	var r registers
	r.setF(0xFF)
	assert.Equal(t, uint8(0xF0), r.f())
}

func TestRegisters_highLowAccessorsAreIndependent(t *testing.T) {
	var r registers
	r.setB(0x12)
	r.setC(0x34)
	assert.Equal(t, uint16(0x1234), r.bc.get())
	assert.Equal(t, uint8(0x12), r.b())
	assert.Equal(t, uint8(0x34), r.c())
}

func TestRegisters_flagBitRoundTrip(t *testing.T) {
	var r registers
	r.setZero(true)
	r.setCarry(true)
	assert.True(t, r.zero())
	assert.True(t, r.carry())
	assert.False(t, r.subtract())
	assert.False(t, r.halfCarry())

	r.setZero(false)
	assert.False(t, r.zero())
	assert.True(t, r.carry())
}
