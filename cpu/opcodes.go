package cpu

// execute dispatches one base (non-CB) opcode and returns the
// machine-cycle count it consumed. The 0x40-0xBF blocks decode
// regularly (LD r,r' and ALU A,r8) and are handled by bit-field
// extraction; everything else is enumerated explicitly, following the
// standard LR35902 opcode table.
func (c *CPU) execute(opcode uint8) int {
	switch {
	case opcode == 0x76: // HALT, inside the LD r,r' block but irregular
		c.halted = true
		return 1
	case opcode >= 0x40 && opcode <= 0x7F:
		dst := (opcode >> 3) & 7
		src := opcode & 7
		c.setR8(dst, c.getR8(src))
		return r8Cycles(dst, r8Cycles(src, 1))
	case opcode >= 0x80 && opcode <= 0xBF:
		return c.executeALUBlock(opcode)
	}

	switch opcode {
	case 0x00:
		return 1
	case 0x01:
		c.reg.bc.set(c.fetch16())
		return 3
	case 0x02:
		c.bus.Write(c.reg.bc.get(), c.reg.a())
		return 2
	case 0x03:
		c.reg.bc.set(c.reg.bc.get() + 1)
		return 2
	case 0x04:
		c.reg.setB(c.inc8(c.reg.b()))
		return 1
	case 0x05:
		c.reg.setB(c.dec8(c.reg.b()))
		return 1
	case 0x06:
		c.reg.setB(c.fetch8())
		return 2
	case 0x07:
		c.reg.setA(c.rlc(c.reg.a(), false))
		return 1
	case 0x08:
		addr16 := c.fetch16()
		sp := c.reg.sp.get()
		c.bus.Write(addr16, uint8(sp))
		c.bus.Write(addr16+1, uint8(sp>>8))
		return 5
	case 0x09:
		c.reg.hl.set(c.add16(c.reg.hl.get(), c.reg.bc.get()))
		return 2
	case 0x0A:
		c.reg.setA(c.bus.Read(c.reg.bc.get()))
		return 2
	case 0x0B:
		c.reg.bc.set(c.reg.bc.get() - 1)
		return 2
	case 0x0C:
		c.reg.setC(c.inc8(c.reg.c()))
		return 1
	case 0x0D:
		c.reg.setC(c.dec8(c.reg.c()))
		return 1
	case 0x0E:
		c.reg.setC(c.fetch8())
		return 2
	case 0x0F:
		c.reg.setA(c.rrc(c.reg.a(), false))
		return 1

	case 0x10:
		c.stopped = true
		c.fetch8() // STOP is followed by a padding byte on hardware
		return 1
	case 0x11:
		c.reg.de.set(c.fetch16())
		return 3
	case 0x12:
		c.bus.Write(c.reg.de.get(), c.reg.a())
		return 2
	case 0x13:
		c.reg.de.set(c.reg.de.get() + 1)
		return 2
	case 0x14:
		c.reg.setD(c.inc8(c.reg.d()))
		return 1
	case 0x15:
		c.reg.setD(c.dec8(c.reg.d()))
		return 1
	case 0x16:
		c.reg.setD(c.fetch8())
		return 2
	case 0x17:
		c.reg.setA(c.rl(c.reg.a(), false))
		return 1
	case 0x18:
		c.jr()
		return 3
	case 0x19:
		c.reg.hl.set(c.add16(c.reg.hl.get(), c.reg.de.get()))
		return 2
	case 0x1A:
		c.reg.setA(c.bus.Read(c.reg.de.get()))
		return 2
	case 0x1B:
		c.reg.de.set(c.reg.de.get() - 1)
		return 2
	case 0x1C:
		c.reg.setE(c.inc8(c.reg.e()))
		return 1
	case 0x1D:
		c.reg.setE(c.dec8(c.reg.e()))
		return 1
	case 0x1E:
		c.reg.setE(c.fetch8())
		return 2
	case 0x1F:
		c.reg.setA(c.rr(c.reg.a(), false))
		return 1

	case 0x20:
		return c.jrCond(condNZ)
	case 0x21:
		c.reg.hl.set(c.fetch16())
		return 3
	case 0x22:
		c.bus.Write(c.reg.hl.get(), c.reg.a())
		c.reg.hl.set(c.reg.hl.get() + 1)
		return 2
	case 0x23:
		c.reg.hl.set(c.reg.hl.get() + 1)
		return 2
	case 0x24:
		c.reg.setH(c.inc8(c.reg.h()))
		return 1
	case 0x25:
		c.reg.setH(c.dec8(c.reg.h()))
		return 1
	case 0x26:
		c.reg.setH(c.fetch8())
		return 2
	case 0x27:
		c.daa()
		return 1
	case 0x28:
		return c.jrCond(condZ)
	case 0x29:
		c.reg.hl.set(c.add16(c.reg.hl.get(), c.reg.hl.get()))
		return 2
	case 0x2A:
		c.reg.setA(c.bus.Read(c.reg.hl.get()))
		c.reg.hl.set(c.reg.hl.get() + 1)
		return 2
	case 0x2B:
		c.reg.hl.set(c.reg.hl.get() - 1)
		return 2
	case 0x2C:
		c.reg.setL(c.inc8(c.reg.l()))
		return 1
	case 0x2D:
		c.reg.setL(c.dec8(c.reg.l()))
		return 1
	case 0x2E:
		c.reg.setL(c.fetch8())
		return 2
	case 0x2F:
		c.cpl()
		return 1

	case 0x30:
		return c.jrCond(condNC)
	case 0x31:
		c.reg.sp.set(c.fetch16())
		return 3
	case 0x32:
		c.bus.Write(c.reg.hl.get(), c.reg.a())
		c.reg.hl.set(c.reg.hl.get() - 1)
		return 2
	case 0x33:
		c.reg.sp.set(c.reg.sp.get() + 1)
		return 2
	case 0x34:
		c.bus.Write(c.reg.hl.get(), c.inc8(c.bus.Read(c.reg.hl.get())))
		return 3
	case 0x35:
		c.bus.Write(c.reg.hl.get(), c.dec8(c.bus.Read(c.reg.hl.get())))
		return 3
	case 0x36:
		c.bus.Write(c.reg.hl.get(), c.fetch8())
		return 3
	case 0x37:
		c.scf()
		return 1
	case 0x38:
		return c.jrCond(condC)
	case 0x39:
		c.reg.hl.set(c.add16(c.reg.hl.get(), c.reg.sp.get()))
		return 2
	case 0x3A:
		c.reg.setA(c.bus.Read(c.reg.hl.get()))
		c.reg.hl.set(c.reg.hl.get() - 1)
		return 2
	case 0x3B:
		c.reg.sp.set(c.reg.sp.get() - 1)
		return 2
	case 0x3C:
		c.reg.setA(c.inc8(c.reg.a()))
		return 1
	case 0x3D:
		c.reg.setA(c.dec8(c.reg.a()))
		return 1
	case 0x3E:
		c.reg.setA(c.fetch8())
		return 2
	case 0x3F:
		c.ccf()
		return 1

	case 0xC0:
		return c.retCond(condNZ)
	case 0xC1:
		c.setR16Stack(r16stackBC, c.pop16())
		return 3
	case 0xC2:
		return c.jpCond(condNZ)
	case 0xC3:
		c.reg.pc.set(c.fetch16())
		return 4
	case 0xC4:
		return c.callCond(condNZ)
	case 0xC5:
		c.push16(c.getR16Stack(r16stackBC))
		return 4
	case 0xC6:
		c.reg.setA(c.add8(c.reg.a(), c.fetch8(), false))
		return 2
	case 0xC7:
		c.rst(0x00)
		return 4
	case 0xC8:
		return c.retCond(condZ)
	case 0xC9:
		c.reg.pc.set(c.pop16())
		return 4
	case 0xCA:
		return c.jpCond(condZ)
	case 0xCB:
		return c.executeCB(c.fetch8())
	case 0xCC:
		return c.callCond(condZ)
	case 0xCD:
		target := c.fetch16()
		c.push16(c.reg.pc.get())
		c.reg.pc.set(target)
		return 6
	case 0xCE:
		c.reg.setA(c.add8(c.reg.a(), c.fetch8(), c.reg.carry()))
		return 2
	case 0xCF:
		c.rst(0x08)
		return 4

	case 0xD0:
		return c.retCond(condNC)
	case 0xD1:
		c.setR16Stack(r16stackDE, c.pop16())
		return 3
	case 0xD2:
		return c.jpCond(condNC)
	case 0xD4:
		return c.callCond(condNC)
	case 0xD5:
		c.push16(c.getR16Stack(r16stackDE))
		return 4
	case 0xD6:
		c.reg.setA(c.sub8(c.reg.a(), c.fetch8(), false))
		return 2
	case 0xD7:
		c.rst(0x10)
		return 4
	case 0xD8:
		return c.retCond(condC)
	case 0xD9:
		c.reg.pc.set(c.pop16())
		c.imeEnabled = true // RETI takes effect immediately, no EI-style delay
		c.eiDelay = 0
		return 4
	case 0xDA:
		return c.jpCond(condC)
	case 0xDC:
		return c.callCond(condC)
	case 0xDE:
		c.reg.setA(c.sub8(c.reg.a(), c.fetch8(), c.reg.carry()))
		return 2
	case 0xDF:
		c.rst(0x18)
		return 4

	case 0xE0:
		c.bus.Write(0xFF00+uint16(c.fetch8()), c.reg.a())
		return 3
	case 0xE1:
		c.setR16Stack(r16stackHL, c.pop16())
		return 3
	case 0xE2:
		c.bus.Write(0xFF00+uint16(c.reg.c()), c.reg.a())
		return 2
	case 0xE5:
		c.push16(c.getR16Stack(r16stackHL))
		return 4
	case 0xE6:
		c.reg.setA(c.and8(c.reg.a(), c.fetch8()))
		return 2
	case 0xE7:
		c.rst(0x20)
		return 4
	case 0xE8:
		c.reg.sp.set(c.addSPSigned(c.reg.sp.get(), int8(c.fetch8())))
		return 4
	case 0xE9:
		c.reg.pc.set(c.reg.hl.get())
		return 1
	case 0xEA:
		c.bus.Write(c.fetch16(), c.reg.a())
		return 4
	case 0xEE:
		c.reg.setA(c.xor8(c.reg.a(), c.fetch8()))
		return 2
	case 0xEF:
		c.rst(0x28)
		return 4

	case 0xF0:
		c.reg.setA(c.bus.Read(0xFF00 + uint16(c.fetch8())))
		return 3
	case 0xF1:
		c.setR16Stack(r16stackAF, c.pop16())
		return 3
	case 0xF2:
		c.reg.setA(c.bus.Read(0xFF00 + uint16(c.reg.c())))
		return 2
	case 0xF3:
		c.imeEnabled = false
		c.eiDelay = 0
		return 1
	case 0xF5:
		c.push16(c.getR16Stack(r16stackAF))
		return 4
	case 0xF6:
		c.reg.setA(c.or8(c.reg.a(), c.fetch8()))
		return 2
	case 0xF7:
		c.rst(0x30)
		return 4
	case 0xF8:
		c.reg.hl.set(c.addSPSigned(c.reg.sp.get(), int8(c.fetch8())))
		return 3
	case 0xF9:
		c.reg.sp.set(c.reg.hl.get())
		return 2
	case 0xFA:
		c.reg.setA(c.bus.Read(c.fetch16()))
		return 4
	case 0xFB:
		c.eiDelay = 2
		return 1
	case 0xFE:
		c.cp8(c.reg.a(), c.fetch8())
		return 2
	case 0xFF:
		c.rst(0x38)
		return 4

	default:
		// 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD
		return c.unreachableOpcode(opcode)
	}
}

func (c *CPU) executeALUBlock(opcode uint8) int {
	op := (opcode >> 3) & 7
	src := opcode & 7
	value := c.getR8(src)
	a := c.reg.a()

	switch op {
	case 0:
		c.reg.setA(c.add8(a, value, false))
	case 1:
		c.reg.setA(c.add8(a, value, c.reg.carry()))
	case 2:
		c.reg.setA(c.sub8(a, value, false))
	case 3:
		c.reg.setA(c.sub8(a, value, c.reg.carry()))
	case 4:
		c.reg.setA(c.and8(a, value))
	case 5:
		c.reg.setA(c.xor8(a, value))
	case 6:
		c.reg.setA(c.or8(a, value))
	default: // 7: CP
		c.cp8(a, value)
	}

	return r8Cycles(src, 1)
}

func (c *CPU) jr() {
	offset := int8(c.fetch8())
	c.reg.pc.set(uint16(int32(c.reg.pc.get()) + int32(offset)))
}

func (c *CPU) jrCond(cond uint8) int {
	offset := int8(c.fetch8())
	if !c.checkCond(cond) {
		return 2
	}
	c.reg.pc.set(uint16(int32(c.reg.pc.get()) + int32(offset)))
	return 3
}

func (c *CPU) jpCond(cond uint8) int {
	target := c.fetch16()
	if !c.checkCond(cond) {
		return 3
	}
	c.reg.pc.set(target)
	return 4
}

func (c *CPU) callCond(cond uint8) int {
	target := c.fetch16()
	if !c.checkCond(cond) {
		return 3
	}
	c.push16(c.reg.pc.get())
	c.reg.pc.set(target)
	return 6
}

func (c *CPU) retCond(cond uint8) int {
	if !c.checkCond(cond) {
		return 2
	}
	c.reg.pc.set(c.pop16())
	return 5
}

func (c *CPU) rst(vector uint16) {
	c.push16(c.reg.pc.get())
	c.reg.pc.set(vector)
}
