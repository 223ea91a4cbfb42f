package r3000

// Every branch and jump below ends by calling c.takeBranch(target) rather
// than writing PC directly: the actual PC change is deferred one
// instruction, to the delay slot parked by takeBranch. J-type and I-type
// targets are computed from curPC (this instruction's own address), not
// the already-advanced c.pc, so nested delay-slot arithmetic can't skew
// them.

func (c *CPU) insJ(i instruction) {
	target := (c.curPC & 0xF0000000) | (i.imm26() << 2)
	c.takeBranch(target)
}

func (c *CPU) insJal(i instruction) {
	c.setReg(31, c.curPC+8)
	target := (c.curPC & 0xF0000000) | (i.imm26() << 2)
	c.takeBranch(target)
}

func (c *CPU) insJr(i instruction) {
	c.takeBranch(c.rs(i))
}

func (c *CPU) insJalr(i instruction) {
	target := c.rs(i)
	c.setReg(i.rd(), c.curPC+8)
	c.takeBranch(target)
}

// branchTarget resolves an I-type branch displacement, which is relative
// to the delay slot's address (curPC+4), not the branch's own.
func branchTarget(curPC uint32, simm16 int32) uint32 {
	return uint32(int32(curPC+4) + simm16<<2)
}

func (c *CPU) insBeq(i instruction) {
	if c.rs(i) == c.rt(i) {
		c.takeBranch(branchTarget(c.curPC, i.simm16()))
	}
}

func (c *CPU) insBne(i instruction) {
	if c.rs(i) != c.rt(i) {
		c.takeBranch(branchTarget(c.curPC, i.simm16()))
	}
}

func (c *CPU) insBlez(i instruction) {
	if int32(c.rs(i)) <= 0 {
		c.takeBranch(branchTarget(c.curPC, i.simm16()))
	}
}

func (c *CPU) insBgtz(i instruction) {
	if int32(c.rs(i)) > 0 {
		c.takeBranch(branchTarget(c.curPC, i.simm16()))
	}
}

// insBcondZ implements the REGIMM opcode (primary 0x01): BLTZ, BGEZ, and
// their link variants, selected by rt. Bit 16 chooses "greater or equal"
// over "less than"; the link to r31 happens only when rt's upper four
// bits are exactly 0x8 (BLTZAL=0x10, BGEZAL=0x11) - every other rt value
// behaves like plain BLTZ/BGEZ without touching r31.
func (c *CPU) insBcondZ(i instruction) {
	rt := i.rt()
	isGE := rt&1 != 0
	link := (rt>>1)&0xf == 8

	if link {
		c.setReg(31, c.curPC+8)
	}

	s := int32(c.rs(i))
	taken := s < 0
	if isGE {
		taken = s >= 0
	}
	if taken {
		c.takeBranch(branchTarget(c.curPC, i.simm16()))
	}
}
