package r3000

import "log"

// execute decodes and runs a single instruction word. Unimplemented or
// reserved encodings raise ReservedInstruction, matching real hardware;
// this is logged once per occurrence since it normally indicates either a
// bug in the running program or a gap in this core, not a condition the
// program itself is expected to handle silently.
func (c *CPU) execute(i instruction) {
	switch i.opcode() {
	case 0x00:
		c.executeSpecial(i)
	case 0x01:
		c.insBcondZ(i)
	case 0x02:
		c.insJ(i)
	case 0x03:
		c.insJal(i)
	case 0x04:
		c.insBeq(i)
	case 0x05:
		c.insBne(i)
	case 0x06:
		c.insBlez(i)
	case 0x07:
		c.insBgtz(i)
	case 0x08:
		c.insAddi(i)
	case 0x09:
		c.insAddiu(i)
	case 0x0A:
		c.insSlti(i)
	case 0x0B:
		c.insSltiu(i)
	case 0x0C:
		c.insAndi(i)
	case 0x0D:
		c.insOri(i)
	case 0x0E:
		c.insXori(i)
	case 0x0F:
		c.insLui(i)
	case 0x10:
		c.executeCop0(i)
	case 0x11:
		c.executeCop1(i)
	case 0x12:
		c.executeCop2(i)
	case 0x13:
		c.executeCop3(i)
	case 0x20:
		c.insLb(i)
	case 0x21:
		c.insLh(i)
	case 0x22:
		c.insLwl(i)
	case 0x23:
		c.insLw(i)
	case 0x24:
		c.insLbu(i)
	case 0x25:
		c.insLhu(i)
	case 0x26:
		c.insLwr(i)
	case 0x28:
		c.insSb(i)
	case 0x29:
		c.insSh(i)
	case 0x2A:
		c.insSwl(i)
	case 0x2B:
		c.insSw(i)
	case 0x2E:
		c.insSwr(i)
	case 0x30:
		c.insLwc(i, 0)
	case 0x31:
		c.insLwc(i, 1)
	case 0x32:
		c.insLwc2(i)
	case 0x33:
		c.insLwc(i, 3)
	case 0x38:
		c.insSwc(i, 0)
	case 0x39:
		c.insSwc(i, 1)
	case 0x3A:
		c.insSwc2(i)
	case 0x3B:
		c.insSwc(i, 3)
	default:
		log.Printf("r3000: reserved primary opcode %#02x at %#08x", i.opcode(), c.curPC)
		c.exception(ExcReservedInstruction)
	}
}

func (c *CPU) executeSpecial(i instruction) {
	switch i.special() {
	case 0x00:
		c.insSll(i)
	case 0x02:
		c.insSrl(i)
	case 0x03:
		c.insSra(i)
	case 0x04:
		c.insSllv(i)
	case 0x06:
		c.insSrlv(i)
	case 0x07:
		c.insSrav(i)
	case 0x08:
		c.insJr(i)
	case 0x09:
		c.insJalr(i)
	case 0x0C:
		c.insSyscall(i)
	case 0x0D:
		c.insBreak(i)
	case 0x10:
		c.insMfhi(i)
	case 0x11:
		c.insMthi(i)
	case 0x12:
		c.insMflo(i)
	case 0x13:
		c.insMtlo(i)
	case 0x18:
		c.insMult(i)
	case 0x19:
		c.insMultu(i)
	case 0x1A:
		c.insDiv(i)
	case 0x1B:
		c.insDivu(i)
	case 0x20:
		c.insAdd(i)
	case 0x21:
		c.insAddu(i)
	case 0x22:
		c.insSub(i)
	case 0x23:
		c.insSubu(i)
	case 0x24:
		c.insAnd(i)
	case 0x25:
		c.insOr(i)
	case 0x26:
		c.insXor(i)
	case 0x27:
		c.insNor(i)
	case 0x2A:
		c.insSlt(i)
	case 0x2B:
		c.insSltu(i)
	default:
		log.Printf("r3000: reserved SPECIAL function %#02x at %#08x", i.special(), c.curPC)
		c.exception(ExcReservedInstruction)
	}
}
