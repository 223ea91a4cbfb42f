// Package r3000 implements the compute core of a MIPS R3000A CPU as used
// by the PlayStation: the scalar interpreter, its System Control
// Coprocessor (COP0), and its Geometry Transformation Engine (COP2/GTE).
//
// The package models:
//   - 32 general-purpose registers plus HI/LO, a branch-delay slot, and a
//     two-entry load-delay pipeline
//   - a 1 KiB direct-mapped instruction cache and a 1 KiB scratchpad
//   - COP0 exception entry/exit and interrupt masking
//   - the full GTE instruction set
//
// Memory outside the CPU's own registers and scratchpad — main RAM, the
// GPU, DMA, timers, the SPU, the CDROM, joypads — is reached only through
// the Bus interface; none of it is modeled here.
package r3000

const sinkReg = 32

// Bus is everything external to the CPU core: main memory and every
// memory-mapped peripheral. Reads and writes are always 1, 2 or 4 bytes,
// at addresses the CPU has already stripped of their region bits.
// UpdateCycles lets the bus account for wait states and DMA contention
// without the CPU core needing to know about either.
type Bus interface {
	Read(width Width, addr uint32) uint32
	Write(width Width, addr uint32, val uint32)
	UpdateCycles(n uint32)
}

// delayedLoad is one entry of the two-stage load-delay pipeline. idx is
// always a valid index into CPU.regs; cancelled or empty entries point at
// the sink register so committing them is harmless.
type delayedLoad struct {
	idx uint32
	val uint32
}

// pendingBranch is the one-deep branch-delay slot: a branch handler
// fetches its delay-slot word immediately and parks it here instead of
// changing PC right away.
type pendingBranch struct {
	valid  bool
	fromPC uint32 // the branch instruction's own PC
	word   uint32 // the delay-slot instruction word, already fetched
	target uint32 // where PC goes once the delay slot has executed
}

// CPU is the R3000A scalar core together with its closely-coupled
// coprocessors and caches.
type CPU struct {
	regs [33]uint32 // regs[0] is always zero; regs[32] is the load-delay sink
	hi   uint32
	lo   uint32

	pc    uint32 // address of the next normal fetch
	curPC uint32 // address of the instruction presently executing

	inDelay    bool
	excThisStep bool
	branch     pendingBranch

	loadPending [2]delayedLoad

	cop0    Cop0
	gte     Gte
	icache  InstructionCache
	scratch Scratchpad
	biu     biu

	bus Bus
}

// New creates a CPU wired to the given bus and performs a hardware reset.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.Reset()
	return c
}

// Reset puts the core into its post-reset state: PC at the BIOS boot
// vector, boot exception vectors selected, caches invalidated, no
// pending branch or load.
func (c *CPU) Reset() {
	c.regs = [33]uint32{}
	c.hi, c.lo = 0, 0
	c.pc = 0xBFC00000
	c.curPC = c.pc
	c.inDelay = false
	c.branch = pendingBranch{}
	c.loadPending = [2]delayedLoad{{idx: sinkReg}, {idx: sinkReg}}
	c.cop0.Reset()
	c.gte.Reset()
	c.icache.Invalidate()
}

func (c *CPU) rs(i instruction) uint32 { return c.regs[i.rs()] }
func (c *CPU) rt(i instruction) uint32 { return c.regs[i.rt()] }
func (c *CPU) rd(i instruction) uint32 { return c.regs[i.rd()] }

// setReg writes a general-purpose register immediately (not through the
// load-delay pipeline). Writes to register 0 are redirected to the sink.
// If either load-delay slot targets the same register, it is cancelled:
// an immediate write always wins over a stale in-flight load.
func (c *CPU) setReg(idx uint32, val uint32) {
	if idx == 0 {
		idx = sinkReg
	}
	if c.loadPending[0].idx == idx {
		c.loadPending[0].idx = sinkReg
	}
	if c.loadPending[1].idx == idx {
		c.loadPending[1].idx = sinkReg
	}
	c.regs[idx] = val
}

// stageLoad schedules a load's result to become visible starting two
// Step calls from now (the standard R3000A one-instruction load-delay).
// A second load to the same register before the first commits cancels
// the first outright, matching hardware: only the most recent wins.
func (c *CPU) stageLoad(idx uint32, val uint32) {
	if idx == 0 {
		idx = sinkReg
	}
	if c.loadPending[0].idx == idx {
		c.loadPending[0].idx = sinkReg
	}
	c.loadPending[1] = delayedLoad{idx: idx, val: val}
}

// commitLoads applies the oldest pending load and advances the pipeline.
// Called once at the end of every Step, after the instruction's own
// register writes (which may have cancelled the entry being committed).
func (c *CPU) commitLoads() {
	c.regs[c.loadPending[0].idx] = c.loadPending[0].val
	c.loadPending[0] = c.loadPending[1]
	c.loadPending[1] = delayedLoad{idx: sinkReg}
}

// clearDelay is called by exception entry: it discards any parked branch
// and marks this step as having taken an exception, so Step does not
// subsequently stomp on the exception vector with the branch's target.
func (c *CPU) clearDelay() {
	c.branch.valid = false
	c.excThisStep = true
}

// takeBranch parks a taken branch's delay-slot word and target. Called
// by ops_branch.go once a branch/jump's condition and target are known.
// The delay-slot word is fetched eagerly, during the branch's own step.
// Branches that are not taken never call this: their delay-slot word is
// fetched by the next Step as an ordinary sequential fetch.
func (c *CPU) takeBranch(target uint32) {
	delaySlotAddr := c.pc
	c.branch = pendingBranch{
		valid:  true,
		fromPC: c.curPC,
		word:   c.fetch(delaySlotAddr),
		target: target,
	}
}

// Step executes exactly one instruction: either the next sequential
// fetch, or a parked branch-delay-slot word if one is waiting. Pending
// loads commit at the end of the step, after the instruction's own
// register writes.
func (c *CPU) Step() {
	c.excThisStep = false

	if c.branch.valid {
		pb := c.branch
		c.branch.valid = false

		c.curPC = pb.fromPC + 4
		c.inDelay = true
		c.pc = pb.fromPC + 8

		c.execute(instruction(pb.word))

		if !c.excThisStep {
			c.pc = pb.target
		}
		c.inDelay = false
		c.commitLoads()
		return
	}

	c.curPC = c.pc
	c.inDelay = false
	if c.pc&3 != 0 {
		c.cop0.regs[cop0BadVA] = c.pc
		c.exception(ExcAddressErrorLoad)
		return
	}
	word := c.fetch(c.pc)
	c.pc += 4
	c.execute(instruction(word))
	c.commitLoads()
}

// Cycle is the unit of progress the surrounding machine drives: one Step,
// then delivery of any pending masked interrupt before the next fetch,
// then one cycle accounted to the bus. The interrupt waits out a parked
// branch delay slot so the slot is never abandoned mid-flight.
func (c *CPU) Cycle() {
	c.Step()
	if c.cop0.ShouldInterrupt() && !c.branch.valid {
		c.interrupt()
	}
	c.bus.UpdateCycles(1)
}

// fetch reads one instruction word, through the instruction cache for
// everything below the KSEG1 uncached mirror, straight from the bus for
// KSEG1 itself. A miss fills from the missing word up to the next
// 16-byte line boundary, not the whole aligned line: the refill burst
// starts wherever the fetch landed, so the words before it stay stale.
func (c *CPU) fetch(vaddr uint32) uint32 {
	if vaddr >= 0xA0000000 {
		return c.busRead(Word, vaddr)
	}
	if w, ok := c.icache.Lookup(vaddr); ok {
		return w
	}
	w := c.busRead(Word, vaddr)
	c.icache.Fill(vaddr, w)
	for next := vaddr + 4; next&0xF != 0; next += 4 {
		c.icache.Fill(next, c.busRead(Word, next))
	}
	return w
}

// RequestInterrupt and ClearInterrupt forward an external interrupt line
// (from the GPU, DMA, timers, etc., all modeled on the Bus side) onto
// COP0's CAUSE register, via the BIU's I_STAT/I_MASK pair.
func (c *CPU) RequestInterrupt(bit uint32) {
	c.biu.iStat |= 1 << (bit & 0x1f)
	c.refreshPendingInterrupts()
}

func (c *CPU) ClearInterrupt(bit uint32) {
	c.biu.iStat &^= 1 << (bit & 0x1f)
	c.refreshPendingInterrupts()
}

// PC returns the address of the instruction that will execute on the
// next Step call (or, if a branch delay slot is pending, the delay
// slot's own address).
func (c *CPU) PC() uint32 {
	if c.branch.valid {
		return c.branch.fromPC + 4
	}
	return c.pc
}

// Reg reads a general-purpose register, bypassing the load-delay
// pipeline (the value after any pending commit for this register, not
// a speculative view of an in-flight load).
func (c *CPU) Reg(idx uint32) uint32 { return c.regs[idx&0x1f] }

// SetReg sets a general-purpose register directly; intended for test
// fixtures, not instruction execution.
func (c *CPU) SetReg(idx uint32, val uint32) {
	if idx == 0 {
		return
	}
	c.regs[idx&0x1f] = val
}
