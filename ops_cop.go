package r3000

import "log"

// executeCop0 dispatches MFC0/MTC0/RFE. COP0 itself is always reachable
// in kernel mode; SR.CU0 only gates user-mode access, and the boot ROM
// never runs with SR.KUc set while touching it, so this follows the
// architecture manual rather than carrying a PSX-specific shortcut.
func (c *CPU) executeCop0(i instruction) {
	if c.cop0.isUser() && !c.cop0.copEnabled(0) {
		c.coprocessorException(0)
		return
	}
	if i.isCopOp() {
		switch i.cop0Operation() & 0x3f {
		case 0x10: // RFE
			c.cop0.rfe()
		default:
			log.Printf("r3000: reserved COP0 CO function %#02x at %#08x", i.cop0Operation()&0x3f, c.curPC)
			c.exception(ExcReservedInstruction)
		}
		return
	}
	switch i.rs() {
	case 0x00: // MFC0
		v, ok := c.cop0.ReadReg(i.rd())
		if !ok {
			c.coprocessorException(0)
			return
		}
		c.stageLoad(i.rt(), v)
	case 0x02, 0x06: // CFC0/CTC0: COP0 has no control-register bank
		c.coprocessorException(0)
	case 0x04: // MTC0
		wasIsolated := c.cop0.isolateCache()
		c.cop0.WriteReg(i.rd(), c.rt(i))
		if !wasIsolated && c.cop0.isolateCache() {
			c.icache.Invalidate()
		}
	default:
		log.Printf("r3000: reserved COP0 rs field %#02x at %#08x", i.rs(), c.curPC)
		c.exception(ExcReservedInstruction)
	}
}

// executeCop1 and executeCop3 always fault: the R3000A as wired into the
// PlayStation implements only COP0 and COP2, so any COP1/COP3 access
// traps regardless of SR.CU1/CU3.
func (c *CPU) executeCop1(_ instruction) { c.coprocessorException(1) }
func (c *CPU) executeCop3(_ instruction) { c.coprocessorException(3) }

// executeCop2 dispatches MFC2/CFC2/MTC2/CTC2 and the full GTE opcode
// space. The GTE's 64 logical registers are split into a data bank
// (0-31, reached by MFC2/MTC2) and a control bank (32-63, reached by
// CFC2/CTC2); Gte.ReadReg/WriteReg take the unified 0-63 index.
func (c *CPU) executeCop2(i instruction) {
	if c.cop0.isUser() && !c.cop0.copEnabled(2) {
		c.coprocessorException(2)
		return
	}
	if i.isCopOp() {
		c.gte.Execute(i.cop0Operation())
		return
	}
	switch i.rs() {
	case 0x00: // MFC2
		c.stageLoad(i.rt(), c.gte.ReadReg(i.rd()))
	case 0x02: // CFC2
		c.stageLoad(i.rt(), c.gte.ReadReg(32+i.rd()))
	case 0x04: // MTC2
		c.gte.WriteReg(i.rd(), c.rt(i))
	case 0x06: // CTC2
		c.gte.WriteReg(32+i.rd(), c.rt(i))
	default:
		log.Printf("r3000: reserved COP2 rs field %#02x at %#08x", i.rs(), c.curPC)
		c.exception(ExcReservedInstruction)
	}
}

// insLwc and insSwc cover LWC0/SWC0/LWC1/SWC1/LWC3/SWC3: no coprocessor
// lives at those numbers, so every one of them traps exactly like an
// MFCz/MTCz to the same coprocessor would.
func (c *CPU) insLwc(_ instruction, cop uint32) { c.coprocessorException(cop) }
func (c *CPU) insSwc(_ instruction, cop uint32) { c.coprocessorException(cop) }

func (c *CPU) insLwc2(i instruction) {
	if c.cop0.isUser() && !c.cop0.copEnabled(2) {
		c.coprocessorException(2)
		return
	}
	addr := c.effAddr(i)
	if addr&3 != 0 {
		c.cop0.regs[cop0BadVA] = addr
		c.exception(ExcAddressErrorLoad)
		return
	}
	c.gte.WriteReg(i.rt(), c.busRead(Word, addr))
}

func (c *CPU) insSwc2(i instruction) {
	if c.cop0.isUser() && !c.cop0.copEnabled(2) {
		c.coprocessorException(2)
		return
	}
	addr := c.effAddr(i)
	if addr&3 != 0 {
		c.cop0.regs[cop0BadVA] = addr
		c.exception(ExcAddressErrorStore)
		return
	}
	c.busWrite(Word, addr, c.gte.ReadReg(i.rt()))
}
