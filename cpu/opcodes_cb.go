package cpu

// executeCB dispatches a CB-prefixed opcode (the second byte already
// fetched by the caller) and returns the total machine-cycle count for
// the whole two-byte instruction.
func (c *CPU) executeCB(opcode uint8) int {
	group := opcode >> 6
	reg := opcode & 7

	if group == 0 {
		op := (opcode >> 3) & 7
		value := c.getR8(reg)

		var result uint8
		switch op {
		case 0:
			result = c.rlc(value, true)
		case 1:
			result = c.rrc(value, true)
		case 2:
			result = c.rl(value, true)
		case 3:
			result = c.rr(value, true)
		case 4:
			result = c.sla(value)
		case 5:
			result = c.sra(value)
		case 6:
			result = c.swap(value)
		default: // 7: SRL
			result = c.srl(value)
		}
		c.setR8(reg, result)
		return cbCost(reg, 4)
	}

	n := (opcode >> 3) & 7

	switch group {
	case 1: // BIT n, r8
		c.bitTest(n, c.getR8(reg))
		if reg == r8HL {
			return 3
		}
		return 2
	case 2: // RES n, r8
		c.setR8(reg, c.getR8(reg)&^(1<<n))
		return cbCost(reg, 4)
	default: // 3: SET n, r8
		c.setR8(reg, c.getR8(reg)|(1<<n))
		return cbCost(reg, 4)
	}
}

// cbCost returns the total two-byte instruction cost: 2 for a register
// operand, hlCost for (HL).
func cbCost(reg uint8, hlCost int) int {
	if reg == r8HL {
		return hlCost
	}
	return 2
}
