package r3000

// Exception enumerates the MIPS exception codes this core raises, stored
// in CAUSE[6:2] on entry.
type Exception uint32

const (
	ExcInterrupt           Exception = 0
	ExcAddressErrorLoad    Exception = 4
	ExcAddressErrorStore   Exception = 5
	ExcBusErrorInstr       Exception = 6
	ExcBusErrorData        Exception = 7
	ExcSyscall             Exception = 8
	ExcBreakpoint          Exception = 9
	ExcReservedInstruction Exception = 10
	ExcCoprocessorUnusable Exception = 11
	ExcOverflow            Exception = 12
)

// exception enters a COP0 exception for the instruction currently
// executing, using the PC this core latched for it at dispatch time
// (curPC) rather than the live PC register: inside a branch delay slot the
// PC register holds the address after the delay slot (Step installs the
// branch target only once the slot has executed), not the delay slot's
// own address. cop0.enterException applies the CAUSE.BD/EPC adjustment.
func (c *CPU) exception(cause Exception) {
	c.cop0.enterException(cause, c.curPC, c.inDelay, 0)
	c.pc = c.cop0.exceptionHandler(cause)
	c.clearDelay()
}

// interrupt enters an Interrupt exception between instructions, so the
// faulting PC is simply the address that was about to be fetched.
func (c *CPU) interrupt() {
	c.cop0.enterException(ExcInterrupt, c.pc, false, 0)
	c.pc = c.cop0.exceptionHandler(ExcInterrupt)
	c.clearDelay()
}

// coprocessorException enters a CoprocessorUnusable exception, recording
// which coprocessor number was the target of the disabled access.
func (c *CPU) coprocessorException(copNumber uint32) {
	c.cop0.enterException(ExcCoprocessorUnusable, c.curPC, c.inDelay, copNumber)
	c.pc = c.cop0.exceptionHandler(ExcCoprocessorUnusable)
	c.clearDelay()
}

func (c *CPU) insSyscall(_ instruction) { c.exception(ExcSyscall) }
func (c *CPU) insBreak(_ instruction)   { c.exception(ExcBreakpoint) }
