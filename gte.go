package r3000

// FLAG (control register 63) bit positions. Bit 31 is not independently
// writable: it is always the OR of the bits under flagErrorMask,
// recomputed after every write.
const (
	flagIR0Sat  = 1 << 12
	flagSY2Sat  = 1 << 13
	flagSX2Sat  = 1 << 14
	flagMAC0Neg = 1 << 15
	flagMAC0Pos = 1 << 16
	flagDivOvf  = 1 << 17
	flagSZ3Sat  = 1 << 18
	flagBSat    = 1 << 19
	flagGSat    = 1 << 20
	flagRSat    = 1 << 21
	flagIR3Sat  = 1 << 22
	flagIR2Sat  = 1 << 23
	flagIR1Sat  = 1 << 24
	flagMAC3Neg = 1 << 25
	flagMAC2Neg = 1 << 26
	flagMAC1Neg = 1 << 27
	flagMAC3Pos = 1 << 28
	flagMAC2Pos = 1 << 29
	flagMAC1Pos = 1 << 30
	flagError   = 1 << 31
)

// flagErrorMask picks out the bits that roll up into the aggregate error
// bit (31) on every FLAG write, per the write contract in
// cpu/src/gte/mod.rs.
const flagErrorMask = 0x7F87E000

// Gte is the Geometry Transformation Engine (COP2): a fixed-point SIMD
// coprocessor for 3D projection and lighting math. Its 64 logical
// registers split into a data bank (0-31) and a control bank (32-63);
// both are exposed through the single ReadReg/WriteReg pair, matching
// how MFC2/CFC2 and MTC2/CTC2 both ultimately reach the same store.
type Gte struct {
	v  [3]vector3 // V0, V1, V2 (components stored sign-extended from s16)
	rgbc uint32   // R,G,B,CODE packed as in memory

	otz uint32 // u16

	ir [4]int32 // IR0..IR3, sign-extended from s16

	// screen XY FIFO: sxy[0..1] are the two oldest stages, sxy[2] the
	// most recent; SXYP (register 15) mirrors sxy[2] on read and pushes
	// the FIFO on write.
	sxy [3][2]int32
	sz  [4]uint32 // Z FIFO, sz[3] most recent
	rgbFifo [3]uint32

	mac [4]int32 // MAC0..MAC3

	lzcs int32
	lzcr int32

	rt matrix3 // rotation matrix
	tr vector3 // translation vector

	l matrix3 // light matrix

	lc matrix3 // light-color (background) matrix
	bk vector3 // background color
	fc vector3 // far color

	ofx, ofy int32
	h        uint32
	dqa      int32
	dqb      int32
	zsf3     int32
	zsf4     int32

	flag uint32
}

func (g *Gte) Reset() { *g = Gte{} }

// ReadReg and WriteReg address all 64 logical GTE registers uniformly,
// the way MFC2/MTC2 (0-31) and CFC2/CTC2 (32-63, passed here already
// offset by the caller) do.
func (g *Gte) ReadReg(n uint32) uint32 {
	switch n & 0x3f {
	case 0:
		return packXY(g.v[0].x, g.v[0].y)
	case 1:
		return uint32(g.v[0].z)
	case 2:
		return packXY(g.v[1].x, g.v[1].y)
	case 3:
		return uint32(g.v[1].z)
	case 4:
		return packXY(g.v[2].x, g.v[2].y)
	case 5:
		return uint32(g.v[2].z)
	case 6:
		return g.rgbc
	case 7:
		return g.otz
	case 8:
		return uint32(g.ir[0])
	case 9:
		return uint32(g.ir[1])
	case 10:
		return uint32(g.ir[2])
	case 11:
		return uint32(g.ir[3])
	case 12:
		return packXY(g.sxy[0][0], g.sxy[0][1])
	case 13:
		return packXY(g.sxy[1][0], g.sxy[1][1])
	case 14, 15:
		return packXY(g.sxy[2][0], g.sxy[2][1])
	case 16:
		return g.sz[0]
	case 17:
		return g.sz[1]
	case 18:
		return g.sz[2]
	case 19:
		return g.sz[3]
	case 20:
		return g.rgbFifo[0]
	case 21:
		return g.rgbFifo[1]
	case 22:
		return g.rgbFifo[2]
	case 23:
		return 0
	case 24:
		return uint32(g.mac[0])
	case 25:
		return uint32(g.mac[1])
	case 26:
		return uint32(g.mac[2])
	case 27:
		return uint32(g.mac[3])
	case 28, 29:
		return g.irgb()
	case 30:
		return uint32(g.lzcs)
	case 31:
		return uint32(g.lzcr)
	case 32:
		return packXY(int32(g.rt.m[0][0]), int32(g.rt.m[0][1]))
	case 33:
		return packXY(int32(g.rt.m[0][2]), int32(g.rt.m[1][0]))
	case 34:
		return packXY(int32(g.rt.m[1][1]), int32(g.rt.m[1][2]))
	case 35:
		return packXY(int32(g.rt.m[2][0]), int32(g.rt.m[2][1]))
	case 36:
		return uint32(g.rt.m[2][2])
	case 37:
		return uint32(g.tr.x)
	case 38:
		return uint32(g.tr.y)
	case 39:
		return uint32(g.tr.z)
	case 40:
		return packXY(int32(g.l.m[0][0]), int32(g.l.m[0][1]))
	case 41:
		return packXY(int32(g.l.m[0][2]), int32(g.l.m[1][0]))
	case 42:
		return packXY(int32(g.l.m[1][1]), int32(g.l.m[1][2]))
	case 43:
		return packXY(int32(g.l.m[2][0]), int32(g.l.m[2][1]))
	case 44:
		return uint32(g.l.m[2][2])
	case 45:
		return uint32(g.bk.x)
	case 46:
		return uint32(g.bk.y)
	case 47:
		return uint32(g.bk.z)
	case 48:
		return packXY(int32(g.lc.m[0][0]), int32(g.lc.m[0][1]))
	case 49:
		return packXY(int32(g.lc.m[0][2]), int32(g.lc.m[1][0]))
	case 50:
		return packXY(int32(g.lc.m[1][1]), int32(g.lc.m[1][2]))
	case 51:
		return packXY(int32(g.lc.m[2][0]), int32(g.lc.m[2][1]))
	case 52:
		return uint32(g.lc.m[2][2])
	case 53:
		return uint32(g.fc.x)
	case 54:
		return uint32(g.fc.y)
	case 55:
		return uint32(g.fc.z)
	case 56:
		return uint32(g.ofx)
	case 57:
		return uint32(g.ofy)
	case 58:
		return g.h
	case 59:
		return uint32(g.dqa)
	case 60:
		return uint32(g.dqb)
	case 61:
		return uint32(g.zsf3)
	case 62:
		return uint32(g.zsf4)
	default: // 63
		return g.flag
	}
}

func (g *Gte) WriteReg(n uint32, val uint32) {
	switch n & 0x3f {
	case 0:
		g.v[0].x, g.v[0].y = unpackXY(val)
	case 1:
		g.v[0].z = int32(int16(val))
	case 2:
		g.v[1].x, g.v[1].y = unpackXY(val)
	case 3:
		g.v[1].z = int32(int16(val))
	case 4:
		g.v[2].x, g.v[2].y = unpackXY(val)
	case 5:
		g.v[2].z = int32(int16(val))
	case 6:
		g.rgbc = val
	case 7:
		g.otz = val & 0xffff
	case 8:
		g.ir[0] = int32(int16(val))
	case 9:
		g.ir[1] = int32(int16(val))
	case 10:
		g.ir[2] = int32(int16(val))
	case 11:
		g.ir[3] = int32(int16(val))
	case 12:
		g.sxy[0][0], g.sxy[0][1] = unpackXY(val)
	case 13:
		g.sxy[1][0], g.sxy[1][1] = unpackXY(val)
	case 14:
		g.sxy[2][0], g.sxy[2][1] = unpackXY(val)
	case 15:
		x, y := unpackXY(val)
		g.pushSXY(x, y)
	case 16:
		g.sz[0] = val & 0xffff
	case 17:
		g.sz[1] = val & 0xffff
	case 18:
		g.sz[2] = val & 0xffff
	case 19:
		g.sz[3] = val & 0xffff
	case 20:
		g.rgbFifo[0] = val
	case 21:
		g.rgbFifo[1] = val
	case 22:
		g.rgbFifo[2] = val
	case 23:
		// RES1: no backing storage, writes discarded
	case 24:
		g.mac[0] = int32(val)
	case 25:
		g.mac[1] = int32(val)
	case 26:
		g.mac[2] = int32(val)
	case 27:
		g.mac[3] = int32(val)
	case 28:
		g.setFromIRGB(val)
	case 29:
		// ORGB is read-only
	case 30:
		g.lzcs = int32(val)
		g.lzcr = int32(countLeadingZeroesOrOnes(val))
	case 31:
		// LZCR is read-only
	case 32:
		g.rt.m[0][0], g.rt.m[0][1] = unpackXY16(val)
	case 33:
		g.rt.m[0][2], g.rt.m[1][0] = unpackXY16(val)
	case 34:
		g.rt.m[1][1], g.rt.m[1][2] = unpackXY16(val)
	case 35:
		g.rt.m[2][0], g.rt.m[2][1] = unpackXY16(val)
	case 36:
		g.rt.m[2][2] = int16(val)
	case 37:
		g.tr.x = int32(val)
	case 38:
		g.tr.y = int32(val)
	case 39:
		g.tr.z = int32(val)
	case 40:
		g.l.m[0][0], g.l.m[0][1] = unpackXY16(val)
	case 41:
		g.l.m[0][2], g.l.m[1][0] = unpackXY16(val)
	case 42:
		g.l.m[1][1], g.l.m[1][2] = unpackXY16(val)
	case 43:
		g.l.m[2][0], g.l.m[2][1] = unpackXY16(val)
	case 44:
		g.l.m[2][2] = int16(val)
	case 45:
		g.bk.x = int32(val)
	case 46:
		g.bk.y = int32(val)
	case 47:
		g.bk.z = int32(val)
	case 48:
		g.lc.m[0][0], g.lc.m[0][1] = unpackXY16(val)
	case 49:
		g.lc.m[0][2], g.lc.m[1][0] = unpackXY16(val)
	case 50:
		g.lc.m[1][1], g.lc.m[1][2] = unpackXY16(val)
	case 51:
		g.lc.m[2][0], g.lc.m[2][1] = unpackXY16(val)
	case 52:
		g.lc.m[2][2] = int16(val)
	case 53:
		g.fc.x = int32(val)
	case 54:
		g.fc.y = int32(val)
	case 55:
		g.fc.z = int32(val)
	case 56:
		g.ofx = int32(val)
	case 57:
		g.ofy = int32(val)
	case 58:
		g.h = val & 0xffff
	case 59:
		g.dqa = int32(int16(val))
	case 60:
		g.dqb = int32(val)
	case 61:
		g.zsf3 = int32(int16(val))
	case 62:
		g.zsf4 = int32(int16(val))
	default: // 63: FLAG
		g.flag = val &^ 0x80000fff
		g.recomputeFlagMSB()
	}
}

func (g *Gte) pushSXY(x, y int32) {
	g.sxy[0] = g.sxy[1]
	g.sxy[1] = g.sxy[2]
	g.sxy[2] = [2]int32{x, y}
}

func (g *Gte) pushSZ(z uint32) {
	g.sz[0], g.sz[1], g.sz[2], g.sz[3] = g.sz[1], g.sz[2], g.sz[3], z
}

func (g *Gte) pushRGB(rgb uint32) {
	g.rgbFifo[0], g.rgbFifo[1], g.rgbFifo[2] = g.rgbFifo[1], g.rgbFifo[2], rgb
}

func (g *Gte) irgb() uint32 {
	r := clampU5(g.ir[1] / 0x80)
	gg := clampU5(g.ir[2] / 0x80)
	b := clampU5(g.ir[3] / 0x80)
	return r | gg<<5 | b<<10
}

func (g *Gte) setFromIRGB(val uint32) {
	g.ir[1] = int32(val&0x1f) * 0x80
	g.ir[2] = int32((val>>5)&0x1f) * 0x80
	g.ir[3] = int32((val>>10)&0x1f) * 0x80
}

func clampU5(v int32) uint32 {
	if v < 0 {
		return 0
	}
	if v > 0x1f {
		return 0x1f
	}
	return uint32(v)
}

func (g *Gte) recomputeFlagMSB() {
	if g.flag&flagErrorMask != 0 {
		g.flag |= flagError
	} else {
		g.flag &^= flagError
	}
}

func (g *Gte) setFlag(bits uint32) {
	g.flag |= bits
	g.recomputeFlagMSB()
}

func packXY(x, y int32) uint32   { return uint32(uint16(x)) | uint32(uint16(y))<<16 }
func unpackXY(v uint32) (int32, int32) {
	return int32(int16(v & 0xffff)), int32(int16(v >> 16))
}
func unpackXY16(v uint32) (int16, int16) {
	return int16(v & 0xffff), int16(v >> 16)
}

// countLeadingZeroesOrOnes implements LZCS/LZCR: the count of leading
// bits matching the sign bit of a 32-bit value, i.e. how many more
// doublings it could take before overflowing that sign.
func countLeadingZeroesOrOnes(val uint32) uint32 {
	v := int32(val)
	if v >= 0 {
		n := uint32(0)
		for n < 32 && v&(1<<(31-n)) == 0 {
			n++
		}
		return n
	}
	n := uint32(0)
	for n < 32 && v&(1<<(31-n)) != 0 {
		n++
	}
	return n
}
