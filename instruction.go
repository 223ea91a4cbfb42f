package r3000

// instruction is a single 32-bit MIPS-I instruction word, with the field
// accessors the decoder and every handler need. Field names follow the
// architectural manual, not the assembler mnemonics.
type instruction uint32

func (i instruction) opcode() uint32        { return uint32(i) >> 26 }
func (i instruction) special() uint32       { return uint32(i) & 0x3f }
func (i instruction) rs() uint32            { return (uint32(i) >> 21) & 0x1f }
func (i instruction) rt() uint32            { return (uint32(i) >> 16) & 0x1f }
func (i instruction) rd() uint32            { return (uint32(i) >> 11) & 0x1f }
func (i instruction) shamt() uint32         { return (uint32(i) >> 6) & 0x1f }
func (i instruction) imm16() uint32         { return uint32(i) & 0xffff }
func (i instruction) simm16() int32         { return int32(int16(uint32(i) & 0xffff)) }
func (i instruction) imm26() uint32         { return uint32(i) & 0x3ff_ffff }
func (i instruction) copSub() uint32        { return (uint32(i) >> 21) & 0xf }
func (i instruction) cop0Operation() uint32 { return uint32(i) & 0x1ff_ffff }
func (i instruction) isCopOp() bool         { return uint32(i)&(1<<25) != 0 }
