package r3000

// Aligned loads and stores trap with an AddressError if the address
// isn't naturally aligned for their width; LWL/LWR/SWL/SWR exist
// precisely so software can assemble and disassemble an unaligned word
// out of two aligned accesses instead.

func (c *CPU) effAddr(i instruction) uint32 {
	return c.rs(i) + uint32(i.simm16())
}

func (c *CPU) insLb(i instruction) {
	addr := c.effAddr(i)
	v := int32(int8(c.busRead(Byte, addr)))
	c.stageLoad(i.rt(), uint32(v))
}

func (c *CPU) insLbu(i instruction) {
	addr := c.effAddr(i)
	c.stageLoad(i.rt(), c.busRead(Byte, addr))
}

func (c *CPU) insLh(i instruction) {
	addr := c.effAddr(i)
	if addr&1 != 0 {
		c.cop0.regs[cop0BadVA] = addr
		c.exception(ExcAddressErrorLoad)
		return
	}
	v := int32(int16(c.busRead(Half, addr)))
	c.stageLoad(i.rt(), uint32(v))
}

func (c *CPU) insLhu(i instruction) {
	addr := c.effAddr(i)
	if addr&1 != 0 {
		c.cop0.regs[cop0BadVA] = addr
		c.exception(ExcAddressErrorLoad)
		return
	}
	c.stageLoad(i.rt(), c.busRead(Half, addr))
}

func (c *CPU) insLw(i instruction) {
	addr := c.effAddr(i)
	if addr&3 != 0 {
		c.cop0.regs[cop0BadVA] = addr
		c.exception(ExcAddressErrorLoad)
		return
	}
	c.stageLoad(i.rt(), c.busRead(Word, addr))
}

// loadMergeSource is the value LWL/LWR merge the fetched bytes into: the
// load still sitting in the delay pipeline for rt if there is one, so an
// LWL/LWR pair over an unaligned word chains correctly, otherwise the
// committed register.
func (c *CPU) loadMergeSource(rt uint32) uint32 {
	if c.loadPending[0].idx == rt {
		return c.loadPending[0].val
	}
	return c.regs[rt]
}

func (c *CPU) insLwl(i instruction) {
	addr := c.effAddr(i)
	word := c.busRead(Word, addr&^3)
	shift := (addr & 3) * 8
	cur := c.loadMergeSource(i.rt())
	merged := (word << (24 - shift)) | (cur &^ (0xFFFFFFFF << (24 - shift)))
	c.stageLoad(i.rt(), merged)
}

func (c *CPU) insLwr(i instruction) {
	addr := c.effAddr(i)
	word := c.busRead(Word, addr&^3)
	shift := (addr & 3) * 8
	cur := c.loadMergeSource(i.rt())
	var merged uint32
	if shift == 0 {
		merged = word
	} else {
		merged = (word >> shift) | (cur & (0xFFFFFFFF << (32 - shift)))
	}
	c.stageLoad(i.rt(), merged)
}

func (c *CPU) insSb(i instruction) {
	c.busWrite(Byte, c.effAddr(i), c.rt(i))
}

func (c *CPU) insSh(i instruction) {
	addr := c.effAddr(i)
	if addr&1 != 0 {
		c.cop0.regs[cop0BadVA] = addr
		c.exception(ExcAddressErrorStore)
		return
	}
	c.busWrite(Half, addr, c.rt(i))
}

func (c *CPU) insSw(i instruction) {
	addr := c.effAddr(i)
	if addr&3 != 0 {
		c.cop0.regs[cop0BadVA] = addr
		c.exception(ExcAddressErrorStore)
		return
	}
	c.busWrite(Word, addr, c.rt(i))
}

func (c *CPU) insSwl(i instruction) {
	addr := c.effAddr(i)
	aligned := addr &^ 3
	old := c.busRead(Word, aligned)
	shift := (addr & 3) * 8
	val := c.rt(i)
	merged := (old &^ (0xFFFFFFFF >> (24 - shift))) | (val >> (24 - shift))
	c.busWrite(Word, aligned, merged)
}

func (c *CPU) insSwr(i instruction) {
	addr := c.effAddr(i)
	aligned := addr &^ 3
	old := c.busRead(Word, aligned)
	shift := (addr & 3) * 8
	val := c.rt(i)
	var merged uint32
	if shift == 0 {
		merged = val
	} else {
		merged = (old & (0xFFFFFFFF >> (32 - shift))) | (val << shift)
	}
	c.busWrite(Word, aligned, merged)
}
