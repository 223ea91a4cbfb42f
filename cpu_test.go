package r3000

import "testing"

// testBus is a flat 8 MiB byte-array bus, addressed the way the physical
// bus contract in spec.md §6 expects: callers pass already-stripped
// addresses, which this only wraps to its own 8 MiB size.
type testBus struct {
	mem    [8 * 1024 * 1024]byte
	cycles uint32
}

func (b *testBus) Read(w Width, addr uint32) uint32 {
	addr &= uint32(len(b.mem) - 1)
	switch w {
	case Byte:
		return uint32(b.mem[addr])
	case Half:
		return uint32(b.mem[addr]) | uint32(b.mem[addr+1])<<8
	default:
		return uint32(b.mem[addr]) | uint32(b.mem[addr+1])<<8 |
			uint32(b.mem[addr+2])<<16 | uint32(b.mem[addr+3])<<24
	}
}

func (b *testBus) Write(w Width, addr uint32, val uint32) {
	addr &= uint32(len(b.mem) - 1)
	switch w {
	case Byte:
		b.mem[addr] = byte(val)
	case Half:
		b.mem[addr] = byte(val)
		b.mem[addr+1] = byte(val >> 8)
	default:
		b.mem[addr] = byte(val)
		b.mem[addr+1] = byte(val >> 8)
		b.mem[addr+2] = byte(val >> 16)
		b.mem[addr+3] = byte(val >> 24)
	}
}

func (b *testBus) UpdateCycles(n uint32) { b.cycles += n }

// loadProgram writes a sequence of raw instruction words starting at
// physical address 0. Tests run out of KUSEG address 0 (newTestCPU sets PC
// there) rather than from the boot vector, because 0xBFC00000 strips to
// 0x1FC00000, beyond the 8 MiB test bus.
func loadProgram(b *testBus, words ...uint32) {
	for i, w := range words {
		b.Write(Word, uint32(i*4), w)
	}
}

func newTestCPU(b *testBus) *CPU {
	c := New(b)
	c.pc = 0
	c.curPC = 0
	return c
}

func TestRegisterZeroAlwaysReadsZero(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	c.setReg(0, 0xdeadbeef)
	if c.Reg(0) != 0 {
		t.Fatalf("r0 = %#x, want 0", c.Reg(0))
	}
}

// Scenario 1 from spec.md §8: ADDI overflow leaves the destination
// unchanged, raises Overflow, and vectors to the boot exception handler.
func TestADDIOverflow(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	loadProgram(b, 0x20220001) // ADDI r2, r1, 1
	c.SetReg(1, 0x7fffffff)
	c.SetReg(2, 0)

	c.Step()

	if got := c.Reg(2); got != 0 {
		t.Fatalf("r2 = %#x, want 0 (overflow must not write destination)", got)
	}
	if cause := (c.cop0.cause() >> 2) & 0x1f; Exception(cause) != ExcOverflow {
		t.Fatalf("CAUSE code = %d, want Overflow(%d)", cause, ExcOverflow)
	}
	if c.cop0.regs[cop0EPC] != 0 {
		t.Fatalf("EPC = %#x, want 0 (address of the ADDI)", c.cop0.regs[cop0EPC])
	}
	if c.pc != 0xBFC00180 {
		t.Fatalf("PC = %#x, want boot exception vector 0xBFC00180", c.pc)
	}
}

func TestADDUNeverOverflows(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	loadProgram(b, 0x00221821) // ADDU r3, r1, r2
	c.SetReg(1, 0x7fffffff)
	c.SetReg(2, 1)

	c.Step()

	if got := c.Reg(3); got != 0x80000000 {
		t.Fatalf("r3 = %#x, want 0x80000000 (wraps, no trap)", got)
	}
	if c.pc != 4 {
		t.Fatalf("PC = %#x, want 4 (no exception taken)", c.pc)
	}
}

// Scenario 2 from spec.md §8: a taken branch executes its delay slot
// before the target, and an untaken one simply falls through it.
func TestBranchDelaySlot(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	loadProgram(b,
		0x14200002, // BNE r1, r0, +8 (skip to the XOR at +12)
		0x20030005, // ADDI r3, r0, 5   (delay slot; always executes)
		0x20030009, // ADDI r3, r0, 9   (skipped if branch taken)
		0x00842026, // XOR r4, r4, r4   (branch target)
	)
	c.SetReg(1, 1)

	c.Step() // BNE: parks the delay slot, doesn't move PC yet
	c.Step() // delay slot: ADDI r3, r0, 5
	c.Step() // branch target: XOR r4, r4, r4

	if got := c.Reg(3); got != 5 {
		t.Fatalf("r3 = %d, want 5 (only the delay slot should have run)", got)
	}
	if got := c.Reg(4); got != 0 {
		t.Fatalf("r4 = %d, want 0", got)
	}
	if c.pc != 0x10 {
		t.Fatalf("PC = %#x, want 0x10", c.pc)
	}
}

func TestBranchNotTakenFallsThrough(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	loadProgram(b,
		0x14200002, // BNE r1, r0, +8
		0x20030005, // ADDI r3, r0, 5 (delay slot)
		0x20030009, // ADDI r3, r0, 9
	)
	c.SetReg(1, 0) // r1 == r0, so BNE is not taken

	c.Step() // BNE
	c.Step() // delay slot
	c.Step() // falls through to the ADDI at +8

	if got := c.Reg(3); got != 9 {
		t.Fatalf("r3 = %d, want 9", got)
	}
}

// Scenario 3 from spec.md §8: a load's result isn't visible to the very
// next instruction, only the one after.
func TestLoadDelaySlot(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	loadProgram(b,
		0x8C220000, // LW r2, 0(r1)
		0x00021821, // ADDU r3, r0, r2
	)
	b.Write(Word, 0x100, 0xDEADBEEF)
	c.SetReg(1, 0x100)
	c.SetReg(2, 0x11111111)

	c.Step() // LW: r2 not yet updated
	if got := c.Reg(2); got != 0x11111111 {
		t.Fatalf("r2 = %#x immediately after LW, want old value 0x11111111", got)
	}

	c.Step() // ADDU sees the stale r2, then the load commits
	if got := c.Reg(3); got != 0x11111111 {
		t.Fatalf("r3 = %#x, want the pre-load value of r2", got)
	}
	if got := c.Reg(2); got != 0xDEADBEEF {
		t.Fatalf("r2 = %#x after the second step, want 0xDEADBEEF", got)
	}
}

func TestBackToBackLoadsToSameRegisterKeepLatest(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	loadProgram(b,
		0x8C220000, // LW r2, 0(r1)
		0x8C220004, // LW r2, 4(r1)
	)
	b.Write(Word, 0x100, 0x11111111)
	b.Write(Word, 0x104, 0x22222222)
	c.SetReg(1, 0x100)

	c.Step()
	c.Step()
	c.Step() // drains the second load

	if got := c.Reg(2); got != 0x22222222 {
		t.Fatalf("r2 = %#x, want the second load's value", got)
	}
}

// An LWL/LWR pair over an unaligned word chains through the load-delay
// pipeline: the second instruction merges into the first one's pending
// value, not the stale committed register.
func TestLwlLwrPairAssemblesUnalignedWord(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	loadProgram(b,
		0x88220004, // LWL r2, 4(r1)
		0x98220001, // LWR r2, 1(r1)
	)
	b.Write(Word, 0x100, 0x44332211)
	b.Write(Word, 0x104, 0x88776655)
	c.SetReg(1, 0x101)
	c.SetReg(2, 0xAAAAAAAA)

	c.Step() // LWL from 0x105
	c.Step() // LWR from 0x102, merging into the pending LWL value
	c.Step() // drain the load delay

	if got := c.Reg(2); got != 0x66554433 {
		t.Fatalf("r2 = %#x, want 0x66554433 (bytes 2..5 of the stream)", got)
	}
}

func TestMisalignedPCRaisesAddressError(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	c.pc = 2

	c.Step()

	if cause := (c.cop0.cause() >> 2) & 0x1f; Exception(cause) != ExcAddressErrorLoad {
		t.Fatalf("CAUSE code = %d, want AddressErrorLoad", cause)
	}
	if c.cop0.regs[cop0EPC] != 2 {
		t.Fatalf("EPC = %#x, want 2 (the misaligned fetch address)", c.cop0.regs[cop0EPC])
	}
}

// A masked pending interrupt is delivered between steps, never
// mid-instruction: the instruction under way retires first, then the
// next Cycle enters the handler with EPC at the not-yet-fetched PC.
func TestInterruptDeliveredBetweenSteps(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	loadProgram(b,
		0x20010005, // ADDI r1, r0, 5
		0x20020007, // ADDI r2, r0, 7
	)
	c.cop0.regs[cop0SR] = srBEV | srIEc | 1<<10 // IEc + IM2 unmasked

	c.Cycle()
	if got := c.Reg(1); got != 5 {
		t.Fatalf("r1 = %d, want 5 (first instruction retires normally)", got)
	}

	c.RequestInterrupt(3) // any I_STAT line; I_MASK still clear, so no delivery
	c.biu.iMask = 1 << 3
	c.refreshPendingInterrupts()

	c.Cycle() // second ADDI retires, then the interrupt preempts the next fetch
	if got := c.Reg(2); got != 7 {
		t.Fatalf("r2 = %d, want 7 (interrupt must not cancel the in-flight step)", got)
	}
	if c.pc != 0xBFC00180 {
		t.Fatalf("PC = %#x, want the exception vector", c.pc)
	}
	if cause := (c.cop0.cause() >> 2) & 0x1f; Exception(cause) != ExcInterrupt {
		t.Fatalf("CAUSE code = %d, want Interrupt", cause)
	}
	if c.cop0.regs[cop0EPC] != 8 {
		t.Fatalf("EPC = %#x, want 8 (the instruction the handler resumes at)", c.cop0.regs[cop0EPC])
	}
}

func TestMisalignedLoadRaisesAddressError(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	loadProgram(b, 0x8C220001) // LW r2, 1(r1)
	c.SetReg(1, 0)

	c.Step()

	if cause := (c.cop0.cause() >> 2) & 0x1f; Exception(cause) != ExcAddressErrorLoad {
		t.Fatalf("CAUSE code = %d, want AddressErrorLoad", cause)
	}
}

func TestDivByZero(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	loadProgram(b, 0x0022001A) // DIV r1, r2
	c.SetReg(1, 5)
	c.SetReg(2, 0)

	c.Step()

	if c.lo != 0xFFFFFFFF {
		t.Fatalf("LO = %#x, want 0xFFFFFFFF", c.lo)
	}
	if c.hi != 5 {
		t.Fatalf("HI = %#x, want 5", c.hi)
	}
}

func TestDivOverflowCase(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	loadProgram(b, 0x0022001A) // DIV r1, r2
	c.SetReg(1, 0x80000000)
	c.SetReg(2, 0xFFFFFFFF) // -1

	c.Step()

	if c.lo != 0x80000000 || c.hi != 0 {
		t.Fatalf("LO:HI = %#x:%#x, want 0x80000000:0", c.lo, c.hi)
	}
}

func TestSLTSignedVsSLTUUnsigned(t *testing.T) {
	b := &testBus{}
	c := newTestCPU(b)
	loadProgram(b,
		0x0022082A, // SLT r1, r1, r2
		0x0022082B, // SLTU r1, r1, r2
	)
	c.SetReg(1, 0xFFFFFFFF) // -1 signed, huge unsigned
	c.SetReg(2, 1)

	c.Step()
	if got := c.Reg(1); got != 1 {
		t.Fatalf("SLT result = %d, want 1 (-1 < 1 signed)", got)
	}

	c.SetReg(1, 0xFFFFFFFF)
	c.SetReg(2, 1)
	c.Step()
	if got := c.Reg(1); got != 0 {
		t.Fatalf("SLTU result = %d, want 0 (0xFFFFFFFF > 1 unsigned)", got)
	}
}
