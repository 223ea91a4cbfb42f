package r3000

// Shifts: SLL/SRL/SRA use the instruction's own 5-bit shamt field; the
// variable forms SLLV/SRLV/SRAV mask rs down to 5 bits instead.

func (c *CPU) insSll(i instruction) {
	c.setReg(i.rd(), c.rt(i)<<i.shamt())
}

func (c *CPU) insSrl(i instruction) {
	c.setReg(i.rd(), c.rt(i)>>i.shamt())
}

func (c *CPU) insSra(i instruction) {
	c.setReg(i.rd(), uint32(int32(c.rt(i))>>i.shamt()))
}

func (c *CPU) insSllv(i instruction) {
	c.setReg(i.rd(), c.rt(i)<<(c.rs(i)&0x1f))
}

func (c *CPU) insSrlv(i instruction) {
	c.setReg(i.rd(), c.rt(i)>>(c.rs(i)&0x1f))
}

func (c *CPU) insSrav(i instruction) {
	c.setReg(i.rd(), uint32(int32(c.rt(i))>>(c.rs(i)&0x1f)))
}

// Multiply/divide write HI/LO, not a GPR, and never fault: MIPS I leaves
// divide-by-zero and INT_MIN/-1 results well-defined, just not useful.

func (c *CPU) insMult(i instruction) {
	result := int64(int32(c.rs(i))) * int64(int32(c.rt(i)))
	c.lo = uint32(result)
	c.hi = uint32(result >> 32)
}

func (c *CPU) insMultu(i instruction) {
	result := uint64(c.rs(i)) * uint64(c.rt(i))
	c.lo = uint32(result)
	c.hi = uint32(result >> 32)
}

func (c *CPU) insDiv(i instruction) {
	n := int32(c.rs(i))
	d := int32(c.rt(i))
	switch {
	case d == 0:
		c.lo = uint32(1)
		if n >= 0 {
			c.lo = 0xFFFFFFFF
		}
		c.hi = uint32(n)
	case n == -0x80000000 && d == -1:
		c.lo = uint32(n)
		c.hi = 0
	default:
		c.lo = uint32(n / d)
		c.hi = uint32(n % d)
	}
}

func (c *CPU) insDivu(i instruction) {
	n := c.rs(i)
	d := c.rt(i)
	if d == 0 {
		c.lo = 0xFFFFFFFF
		c.hi = n
		return
	}
	c.lo = n / d
	c.hi = n % d
}

func (c *CPU) insMfhi(i instruction) { c.setReg(i.rd(), c.hi) }
func (c *CPU) insMthi(i instruction) { c.hi = c.rs(i) }
func (c *CPU) insMflo(i instruction) { c.setReg(i.rd(), c.lo) }
func (c *CPU) insMtlo(i instruction) { c.lo = c.rs(i) }

// ADD/SUB (and their immediate forms) trap on signed overflow; the U
// variants never do, which is the only difference between them on the
// R3000A (the bit pattern computed is identical either way).

func (c *CPU) insAdd(i instruction) {
	s, t := int32(c.rs(i)), int32(c.rt(i))
	result := s + t
	if overflowsAdd(s, t, result) {
		c.exception(ExcOverflow)
		return
	}
	c.setReg(i.rd(), uint32(result))
}

func (c *CPU) insAddu(i instruction) {
	c.setReg(i.rd(), c.rs(i)+c.rt(i))
}

func (c *CPU) insSub(i instruction) {
	s, t := int32(c.rs(i)), int32(c.rt(i))
	result := s - t
	if overflowsSub(s, t, result) {
		c.exception(ExcOverflow)
		return
	}
	c.setReg(i.rd(), uint32(result))
}

func (c *CPU) insSubu(i instruction) {
	c.setReg(i.rd(), c.rs(i)-c.rt(i))
}

func (c *CPU) insAddi(i instruction) {
	s, imm := int32(c.rs(i)), i.simm16()
	result := s + imm
	if overflowsAdd(s, imm, result) {
		c.exception(ExcOverflow)
		return
	}
	c.setReg(i.rt(), uint32(result))
}

func (c *CPU) insAddiu(i instruction) {
	c.setReg(i.rt(), c.rs(i)+uint32(i.simm16()))
}

// overflowsAdd/overflowsSub detect signed 32-bit overflow the way the
// architecture defines it: the operands agree in sign and the result
// disagrees with them (add), or the operands disagree in sign and the
// result disagrees with the minuend (sub).
func overflowsAdd(a, b, result int32) bool {
	return (a >= 0) == (b >= 0) && (result >= 0) != (a >= 0)
}

func overflowsSub(a, b, result int32) bool {
	return (a >= 0) != (b >= 0) && (result >= 0) != (a >= 0)
}

func (c *CPU) insAnd(i instruction) { c.setReg(i.rd(), c.rs(i)&c.rt(i)) }
func (c *CPU) insOr(i instruction)  { c.setReg(i.rd(), c.rs(i)|c.rt(i)) }
func (c *CPU) insXor(i instruction) { c.setReg(i.rd(), c.rs(i)^c.rt(i)) }
func (c *CPU) insNor(i instruction) { c.setReg(i.rd(), ^(c.rs(i) | c.rt(i))) }

func (c *CPU) insAndi(i instruction) { c.setReg(i.rt(), c.rs(i)&i.imm16()) }
func (c *CPU) insOri(i instruction)  { c.setReg(i.rt(), c.rs(i)|i.imm16()) }
func (c *CPU) insXori(i instruction) { c.setReg(i.rt(), c.rs(i)^i.imm16()) }
func (c *CPU) insLui(i instruction)  { c.setReg(i.rt(), i.imm16()<<16) }

func (c *CPU) insSlt(i instruction) {
	var v uint32
	if int32(c.rs(i)) < int32(c.rt(i)) {
		v = 1
	}
	c.setReg(i.rd(), v)
}

func (c *CPU) insSltu(i instruction) {
	var v uint32
	if c.rs(i) < c.rt(i) {
		v = 1
	}
	c.setReg(i.rd(), v)
}

func (c *CPU) insSlti(i instruction) {
	var v uint32
	if int32(c.rs(i)) < i.simm16() {
		v = 1
	}
	c.setReg(i.rt(), v)
}

func (c *CPU) insSltiu(i instruction) {
	var v uint32
	if c.rs(i) < uint32(i.simm16()) {
		v = 1
	}
	c.setReg(i.rt(), v)
}
