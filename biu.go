package r3000

// biu models the small slice of the CPU's own Bus Interface Unit that
// software can see directly, rather than through the external Bus: the
// cache-control register, and the interrupt status/mask pair that lives
// on the CPU side of the interrupt controller.
type biu struct {
	cacheControl uint32 // 0xFFFE0130
	iStat        uint32 // 0x1F801070
	iMask        uint32 // 0x1F801074
}

const (
	biuWindowBase    = 0xFFFE0000
	biuWindowEnd     = 0xFFFE0140
	cacheControlAddr = 0xFFFE0130
	iStatAddr        = 0x1F801070
	iMaskAddr        = 0x1F801074
	scratchpadBase   = 0x1F800000
	scratchpadEnd    = 0x1F8003FF
)

// stripRegion maps a virtual address onto its physical one. The top
// three address bits select the segment: everything below KSEG2 (kuseg,
// kseg0, kseg1) aliases the same 512 MiB physical window and masks down
// to 29 bits; KSEG2 addresses pass through untouched, which is where the
// BIU window lives.
func stripRegion(addr uint32) uint32 {
	if addr >= 0xC0000000 {
		return addr
	}
	return addr & 0x1FFFFFFF
}

// busRead services a data load: the CPU-internal registers first,
// scratchpad next, then the external Bus. A Byte/Half read of a
// Word-sized internal register quietly returns the corresponding slice
// of it, matching how those regions behave on hardware.
func (c *CPU) busRead(width Width, vaddr uint32) uint32 {
	addr := stripRegion(vaddr)
	switch {
	case addr&^3 == cacheControlAddr:
		return (c.biu.cacheControl >> ((addr & 3) * 8)) & width.Mask()
	case addr >= biuWindowBase && addr < biuWindowEnd:
		return 0 // the rest of the BIU window reads as zero
	case addr&^3 == iStatAddr:
		return (c.biu.iStat >> ((addr & 3) * 8)) & width.Mask()
	case addr&^3 == iMaskAddr:
		return (c.biu.iMask >> ((addr & 3) * 8)) & width.Mask()
	case addr >= scratchpadBase && addr <= scratchpadEnd:
		return c.scratch.Read(width, addr-scratchpadBase)
	default:
		return c.bus.Read(width, addr)
	}
}

func (c *CPU) busWrite(width Width, vaddr uint32, val uint32) {
	if c.cop0.isolateCache() {
		// SR.Isc disconnects stores from everything: the BIOS sets it
		// only while invalidating the instruction cache, which this core
		// performs as an explicit flush on the 0->1 transition.
		return
	}
	addr := stripRegion(vaddr)
	switch {
	case addr == cacheControlAddr:
		c.biu.cacheControl = val &^ ((1 << 6) | (1 << 10))
	case addr >= biuWindowBase && addr < biuWindowEnd:
		// the rest of the BIU window ignores writes
	case addr == iStatAddr:
		c.biu.iStat &= val // writing 0 to a bit acknowledges that interrupt
		c.refreshPendingInterrupts()
	case addr == iMaskAddr:
		c.biu.iMask = val &^ (0x1f << 11)
		c.refreshPendingInterrupts()
	case addr >= scratchpadBase && addr <= scratchpadEnd:
		c.scratch.Write(width, addr-scratchpadBase, val)
	default:
		c.bus.Write(width, addr, val)
	}
}

// refreshPendingInterrupts mirrors the BIU's I_STAT/I_MASK state into
// COP0's CAUSE.IP[2] line, the single external-interrupt line the
// R3000A actually implements.
func (c *CPU) refreshPendingInterrupts() {
	if c.biu.iStat&c.biu.iMask != 0 {
		c.cop0.RequestInterrupt(2)
	} else {
		c.cop0.ClearInterrupt(2)
	}
}
