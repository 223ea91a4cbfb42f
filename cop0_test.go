package r3000

import "testing"

// Scenario from spec.md §8: a Syscall taken outside a delay slot with
// IEc set pushes the mode-bit stack, latches EPC/CAUSE, and RFE pops it
// back.
func TestCop0ExceptionAndRFEStack(t *testing.T) {
	var c0 Cop0
	c0.Reset()
	c0.regs[cop0SR] = 0x00000001 // IEc=1, everything else 0

	c0.enterException(ExcSyscall, 0x00010004, false, 0)

	if c0.regs[cop0EPC] != 0x00010004 {
		t.Fatalf("EPC = %#x, want 0x00010004", c0.regs[cop0EPC])
	}
	if got := c0.regs[cop0SR] & 0x3f; got != 0b000100 {
		t.Fatalf("SR[5:0] = %#b, want 0b000100", got)
	}
	if got := (c0.regs[cop0CAUSE] >> 2) & 0x1f; Exception(got) != ExcSyscall {
		t.Fatalf("CAUSE.ExcCode = %d, want Syscall(%d)", got, ExcSyscall)
	}
	if c0.regs[cop0CAUSE]&(1<<31) != 0 {
		t.Fatalf("CAUSE.BD set, want clear (fault wasn't in a delay slot)")
	}

	c0.rfe()

	if got := c0.regs[cop0SR] & 0x3f; got != 0b000001 {
		t.Fatalf("SR[5:0] after RFE = %#b, want 0b000001", got)
	}
	if !c0.interruptsEnabled() {
		t.Fatalf("IEc after RFE = false, want true")
	}
}

// A fault latched inside a branch delay slot backs EPC up one word and
// sets CAUSE.BD, so the handler can re-execute the branch itself.
func TestCop0ExceptionInDelaySlotBacksUpEPC(t *testing.T) {
	var c0 Cop0
	c0.Reset()

	c0.enterException(ExcOverflow, 0x1000, true, 0)

	if c0.regs[cop0EPC] != 0x0ffc {
		t.Fatalf("EPC = %#x, want 0x0ffc (faultPC - 4)", c0.regs[cop0EPC])
	}
	if c0.regs[cop0CAUSE]&(1<<31) == 0 {
		t.Fatalf("CAUSE.BD clear, want set")
	}
}

func TestCop0BootVsRAMVectors(t *testing.T) {
	var c0 Cop0
	c0.Reset() // BEV set after reset

	if got := c0.exceptionHandler(ExcSyscall); got != 0xBFC00180 {
		t.Fatalf("boot vector = %#x, want 0xBFC00180", got)
	}
	if got := c0.exceptionHandler(ExcBreakpoint); got != 0xBFC00140 {
		t.Fatalf("boot breakpoint vector = %#x, want 0xBFC00140", got)
	}

	c0.regs[cop0SR] &^= srBEV
	if got := c0.exceptionHandler(ExcSyscall); got != 0x80000080 {
		t.Fatalf("RAM vector = %#x, want 0x80000080", got)
	}
	if got := c0.exceptionHandler(ExcBreakpoint); got != 0x80000040 {
		t.Fatalf("RAM breakpoint vector = %#x, want 0x80000040", got)
	}
}

// Registers 16-31 have no architectural backing: they read as zero and
// accept writes as no-ops, without touching the real register bank.
func TestCop0Registers16To31AreGarbageNotAliases(t *testing.T) {
	var c0 Cop0
	c0.Reset()
	c0.regs[cop0SR] = 0x12345678 // register 12

	if got, ok := c0.ReadReg(16); !ok || got != 0 {
		t.Fatalf("ReadReg(16) = (%#x, %v), want (0, true)", got, ok)
	}
	c0.WriteReg(16, 0xffffffff)
	if c0.regs[cop0SR] != 0x12345678 {
		t.Fatalf("SR clobbered by a write to register 16: %#x", c0.regs[cop0SR])
	}
	if got, ok := c0.ReadReg(16); !ok || got != 0 {
		t.Fatalf("ReadReg(16) after writing it = (%#x, %v), want (0, true)", got, ok)
	}
}

// Registers 0-2, 4 and 10 have no hardware behind them at all: reads
// fault (the caller turns the failure into CoprocessorUnusable), and
// writes fall through without touching anything.
func TestCop0UnimplementedRegisterReadFaultsWriteIgnored(t *testing.T) {
	var c0 Cop0
	c0.Reset()

	if _, ok := c0.ReadReg(0); ok {
		t.Fatalf("ReadReg(0) reported success, want failure (register 0 is unimplemented)")
	}

	before := c0.regs
	c0.WriteReg(0, 0xffffffff)
	if c0.regs != before {
		t.Fatalf("WriteReg(0) mutated the register bank")
	}
}

func TestCop0SRWriteIsMasked(t *testing.T) {
	var c0 Cop0
	c0.Reset()

	c0.WriteReg(cop0SR, 0xffffffff)
	if got := c0.regs[cop0SR]; got != writeMasks[cop0SR] {
		t.Fatalf("SR after an all-ones write = %#x, want %#x (the write mask itself)", got, writeMasks[cop0SR])
	}
}
