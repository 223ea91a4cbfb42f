package r3000

import "log"

// gteCmd decodes the 25-bit COP2 command word every GTE instruction is
// encoded in.
type gteCmd struct {
	fn       uint32
	sf       bool
	lm       bool
	mvMatrix uint32
	mvVector uint32
	mvTrans  uint32
}

func decodeGteCmd(cmd uint32) gteCmd {
	return gteCmd{
		fn:       cmd & 0x3f,
		sf:       cmd&(1<<19) != 0,
		lm:       cmd&(1<<10) != 0,
		mvMatrix: (cmd >> 17) & 3,
		mvVector: (cmd >> 15) & 3,
		mvTrans:  (cmd >> 13) & 3,
	}
}

// Execute runs one GTE instruction, selected by its low 6 bits; the rest
// of the 25-bit command word configures MVMVA's matrix/vector/translation
// choice, the shift-fraction flag, and the IR saturation floor. FLAG is
// cleared on entry and rebuilt by whatever the instruction saturates.
func (g *Gte) Execute(cmd uint32) {
	c := decodeGteCmd(cmd)
	g.flag = 0
	switch c.fn {
	case 0x01:
		g.rtps(g.v[0], c.sf, c.lm, true)
	case 0x06:
		g.nclip()
	case 0x0C:
		g.op(c.sf, c.lm)
	case 0x10:
		g.dpcs(g.currentColor(), c.sf, c.lm)
	case 0x11:
		g.intpl(c.sf, c.lm)
	case 0x12:
		g.mvmva(c)
	case 0x13:
		g.ncds(g.v[0], c.sf, c.lm)
	case 0x14:
		g.cdp(c.sf, c.lm)
	case 0x16:
		for _, v := range g.v {
			g.ncds(v, c.sf, c.lm)
		}
	case 0x1B:
		g.nccs(g.v[0], c.sf, c.lm)
	case 0x1C:
		g.cc(c.sf, c.lm)
	case 0x1E:
		g.ncs(g.v[0], c.sf, c.lm)
	case 0x20:
		for _, v := range g.v {
			g.ncs(v, c.sf, c.lm)
		}
	case 0x28:
		g.sqr(c.sf, c.lm)
	case 0x29:
		g.dcpl(c.sf, c.lm)
	case 0x2A:
		for i := 0; i < 3; i++ {
			g.dpcs(g.rgbFifoColor(), c.sf, c.lm)
		}
	case 0x2D:
		g.avsz3()
	case 0x2E:
		g.avsz4()
	case 0x30:
		g.rtps(g.v[0], c.sf, c.lm, false)
		g.rtps(g.v[1], c.sf, c.lm, false)
		g.rtps(g.v[2], c.sf, c.lm, true)
	case 0x3D:
		g.gpf(c.sf, c.lm)
	case 0x3E:
		g.gpl(c.sf, c.lm)
	case 0x3F:
		for _, v := range g.v {
			g.nccs(v, c.sf, c.lm)
		}
	default:
		log.Printf("r3000: reserved GTE function %#02x", c.fn)
	}
}

// setMAC truncates a 44-bit-range accumulator into MAC[lane+1] (lane is
// 0-indexed over MAC1-3), applying the shift-fraction (>>12) when
// requested, and flags the lane's own positive/negative 44-bit overflow
// bit independently of the other two lanes.
func (g *Gte) setMAC(lane int, sum int64, sf bool) int32 {
	const maxV = int64(1) << 43
	if sum >= maxV {
		g.setFlag(macPosFlag(lane))
	} else if sum < -maxV {
		g.setFlag(macNegFlag(lane))
	}
	if sf {
		sum >>= 12
	}
	v := int32(sum)
	g.mac[lane+1] = v
	return v
}

func macPosFlag(lane int) uint32 {
	return [3]uint32{flagMAC1Pos, flagMAC2Pos, flagMAC3Pos}[lane]
}
func macNegFlag(lane int) uint32 {
	return [3]uint32{flagMAC1Neg, flagMAC2Neg, flagMAC3Neg}[lane]
}

// setIR saturates a MAC-derived value into IR[lane] (1-3). lm selects
// whether the floor is 0 (color math) or -0x8000 (everything else).
func (g *Gte) setIR(lane int, v int32, lm bool) int32 {
	lo := int32(-0x8000)
	if lm {
		lo = 0
	}
	const hi = int32(0x7fff)
	clamped := v
	sat := false
	if clamped > hi {
		clamped = hi
		sat = true
	} else if clamped < lo {
		clamped = lo
		sat = true
	}
	if sat {
		g.setFlag([3]uint32{flagIR1Sat, flagIR2Sat, flagIR3Sat}[lane-1])
	}
	g.ir[lane] = clamped
	return clamped
}

// setMACIR is the combined MAC-then-IR update nearly every arithmetic
// step below performs: saturation-account the 44-bit sum into MAC
// (lane 0-indexed), shift if sf, clamp the result into IR.
func (g *Gte) setMACIR(lane int, sum int64, sf, lm bool) {
	g.setIR(lane+1, g.setMAC(lane, sum, sf), lm)
}

func (g *Gte) setMAC0(v int64) int32 {
	if v > 0x7fffffff {
		g.setFlag(flagMAC0Pos)
	} else if v < -0x80000000 {
		g.setFlag(flagMAC0Neg)
	}
	r := int32(v)
	g.mac[0] = r
	return r
}

// saturateColorByte clamps a color channel (post >>4 of its MAC lane) to
// 0..255, setting the matching FIFO-saturation flag bit.
func (g *Gte) saturateColorByte(v int32, flag uint32) uint32 {
	if v < 0 {
		g.setFlag(flag)
		return 0
	}
	if v > 0xff {
		g.setFlag(flag)
		return 0xff
	}
	return uint32(v)
}

// pushColorFromMAC converts the current MAC1-3 into an 8-bit RGB triple
// (preserving RGBC's CODE byte) and pushes it onto the color FIFO.
func (g *Gte) pushColorFromMAC() {
	r := g.saturateColorByte(g.mac[1]>>4, flagRSat)
	gr := g.saturateColorByte(g.mac[2]>>4, flagGSat)
	b := g.saturateColorByte(g.mac[3]>>4, flagBSat)
	code := (g.rgbc >> 24) & 0xff
	g.pushRGB(r | gr<<8 | b<<16 | code<<24)
}

// currentColor returns RGBC's color bytes shifted up 4 bits, aligning
// their integer part with the far color's 4-bit fraction.
func (g *Gte) currentColor() vector3 {
	return vector3{
		x: int32((g.rgbc>>0)&0xff) << 4,
		y: int32((g.rgbc>>8)&0xff) << 4,
		z: int32((g.rgbc>>16)&0xff) << 4,
	}
}

func (g *Gte) rgbFifoColor() vector3 {
	rgb := g.rgbFifo[0]
	return vector3{
		x: int32((rgb>>0)&0xff) << 4,
		y: int32((rgb>>8)&0xff) << 4,
		z: int32((rgb>>16)&0xff) << 4,
	}
}

func (g *Gte) irVector() vector3 {
	return vector3{x: g.ir[1], y: g.ir[2], z: g.ir[3]}
}

// applyMatrix runs the shared matrix step: rows(m*v) + (bias<<12),
// saturated into MAC1-3/IR1-3. Used directly by MVMVA and by the
// specific opcodes that are really just MVMVA with a fixed
// matrix/vector/bias choice.
func (g *Gte) applyMatrix(m matrix3, v vector3, bias vector3, sf, lm bool) {
	rows := matVecRows(m, v)
	for lane := 0; lane < 3; lane++ {
		g.setMACIR(lane, rows[lane]+int64(biasComponent(bias, lane))<<12, sf, lm)
	}
}

func biasComponent(v vector3, lane int) int32 {
	switch lane {
	case 0:
		return v.x
	case 1:
		return v.y
	default:
		return v.z
	}
}

// rtps projects one vertex: rotate+translate, then a perspective divide
// through the screen XY/Z FIFOs. last selects whether this call also
// derives the depth-cue DQA/DQB-scaled IR0 (done once per RTPT triple,
// on the final vertex only, matching real hardware). SZ3 is always taken
// from the pre-shift 44-bit Z sum, not from MAC3 after the sf shift that
// may have been applied to it for IR3 - the two diverge whenever sf is
// set, and getting this wrong throws off every depth comparison
// downstream, so it is read directly off the raw per-lane sums rather
// than through setMAC's sf-aware return value.
func (g *Gte) rtps(v vector3, sf bool, lm bool, last bool) {
	rows := matVecRows(g.rt, v)
	var raw [3]int64
	for lane := 0; lane < 3; lane++ {
		raw[lane] = rows[lane] + int64(biasComponent(g.tr, lane))<<12
	}
	for lane := 0; lane < 3; lane++ {
		g.setMACIR(lane, raw[lane], sf, lm)
	}

	szClamped := raw[2] >> 12
	if szClamped < 0 {
		szClamped = 0
		g.setFlag(flagSZ3Sat)
	} else if szClamped > 0xffff {
		szClamped = 0xffff
		g.setFlag(flagSZ3Sat)
	}
	g.pushSZ(uint32(szClamped))

	quotient, ovf := reciprocalDivide(g.h, uint16(szClamped))
	if ovf {
		g.setFlag(flagDivOvf)
	}

	x := int64(quotient)*int64(g.ir[1]) + int64(g.ofx)
	y := int64(quotient)*int64(g.ir[2]) + int64(g.ofy)
	g.setMAC0(y)
	x >>= 16
	y >>= 16
	sx := saturateSXY(int32(x), flagSX2Sat, g)
	sy := saturateSXY(int32(y), flagSY2Sat, g)
	g.pushSXY(sx, sy)

	if last {
		depth := int64(quotient)*int64(g.dqa) + int64(g.dqb)
		g.setMAC0(depth)
		ir0 := depth >> 12
		if ir0 < 0 {
			ir0 = 0
			g.setFlag(flagIR0Sat)
		} else if ir0 > 0x1000 {
			ir0 = 0x1000
			g.setFlag(flagIR0Sat)
		}
		g.ir[0] = int32(ir0)
	}
}

func saturateSXY(v int32, flag uint32, g *Gte) int32 {
	if v < -0x400 {
		g.setFlag(flag)
		return -0x400
	}
	if v > 0x3ff {
		g.setFlag(flag)
		return 0x3ff
	}
	return v
}

// nclip computes the Z component of the cross product of the three
// screen-space triangle edges, used by software to cull backfaces.
func (g *Gte) nclip() {
	x0, y0 := g.sxy[0][0], g.sxy[0][1]
	x1, y1 := g.sxy[1][0], g.sxy[1][1]
	x2, y2 := g.sxy[2][0], g.sxy[2][1]
	sum := int64(x0)*int64(y1-y2) + int64(x1)*int64(y2-y0) + int64(x2)*int64(y0-y1)
	g.setMAC0(sum)
}

// op computes the cross product of IR with the rotation matrix's
// diagonal, with no translation bias.
func (g *Gte) op(sf, lm bool) {
	d1, d2, d3 := int64(g.rt.m[0][0]), int64(g.rt.m[1][1]), int64(g.rt.m[2][2])
	ir1, ir2, ir3 := int64(g.ir[1]), int64(g.ir[2]), int64(g.ir[3])
	mac1 := g.setMAC(0, ir3*d2-ir2*d3, sf)
	mac2 := g.setMAC(1, ir1*d3-ir3*d1, sf)
	mac3 := g.setMAC(2, ir2*d1-ir1*d2, sf)
	g.setIR(1, mac1, lm)
	g.setIR(2, mac2, lm)
	g.setIR(3, mac3, lm)
}

// mvmva is the general matrix*vector+translation instruction; every
// selector combination is valid, including the matrix-3 "garbage"
// composition, which real software has been caught relying on.
func (g *Gte) mvmva(c gteCmd) {
	m := g.selectMatrix(c.mvMatrix)
	v := g.selectVector(c.mvVector)
	bias := g.selectBias(c.mvTrans)
	g.applyMatrix(m, v, bias, c.sf, c.lm)
}

// selectMatrix resolves the mx field. Selector 3 names no real matrix;
// the hardware assembles one from whatever happens to be on the internal
// buses: the color register's R byte (positive and negated, shifted to
// 1.3.12 range), IR0, and two rotation-matrix entries replicated across
// their rows. Reproduced exactly because it is observable.
func (g *Gte) selectMatrix(sel uint32) matrix3 {
	switch sel {
	case 0:
		return g.rt
	case 1:
		return g.l
	case 2:
		return g.lc
	default:
		r := int16(int32((g.rgbc&0xff)<<4))
		return matrix3{m: [3][3]int16{
			{-r, r, int16(g.ir[0])},
			{g.rt.m[0][2], g.rt.m[0][2], g.rt.m[0][2]},
			{g.rt.m[1][1], g.rt.m[1][1], g.rt.m[1][1]},
		}}
	}
}

func (g *Gte) selectVector(sel uint32) vector3 {
	switch sel {
	case 0:
		return g.v[0]
	case 1:
		return g.v[1]
	case 2:
		return g.v[2]
	default:
		return g.irVector()
	}
}

func (g *Gte) selectBias(sel uint32) vector3 {
	switch sel {
	case 0:
		return g.tr
	case 1:
		return g.bk
	case 2:
		return g.fc
	default:
		return vector3{}
	}
}

// lightPass is the shared front half of every NCx opcode: light-matrix
// the normal, then color-matrix the lit intensities over the background
// color.
func (g *Gte) lightPass(normal vector3, sf, lm bool) {
	g.applyMatrix(g.l, normal, vector3{}, sf, lm)
	g.applyMatrix(g.lc, g.irVector(), g.bk, sf, lm)
}

// depthCue interpolates MAC1-3 toward the far color by IR0: first the
// (FarColor<<12 - base) differences pass through MAC/IR with the lm
// floor released (the intermediate may legitimately be negative), then
// base + diff*IR0 lands as the final MAC/IR. base carries each lane's
// pre-shift 44-bit-range starting value.
func (g *Gte) depthCue(base [3]int64, sf, lm bool) {
	for lane := 0; lane < 3; lane++ {
		g.setMACIR(lane, int64(biasComponent(g.fc, lane))<<12-base[lane], sf, false)
	}
	for lane := 0; lane < 3; lane++ {
		g.setMACIR(lane, base[lane]+int64(g.ir[lane+1])*int64(g.ir[0]), sf, lm)
	}
}

// tintBase returns the per-lane products (R<<4)*IR1, (G<<4)*IR2,
// (B<<4)*IR3 shared by the color-by-intensity opcodes.
func (g *Gte) tintBase() [3]int64 {
	col := g.currentColor()
	var base [3]int64
	for lane := range base {
		base[lane] = int64(biasComponent(col, lane)) * int64(g.ir[lane+1])
	}
	return base
}

// ncs/nct: normal-color. Light the normal, mix over the background
// color, push the result; no per-vertex tint, no depth cue.
func (g *Gte) ncs(normal vector3, sf, lm bool) {
	g.lightPass(normal, sf, lm)
	g.pushColorFromMAC()
}

// nccs/ncct: normal-color with the primary color (RGBC) multiplied in as
// a per-vertex tint.
func (g *Gte) nccs(normal vector3, sf, lm bool) {
	g.lightPass(normal, sf, lm)
	base := g.tintBase()
	for lane := 0; lane < 3; lane++ {
		g.setMACIR(lane, base[lane], sf, lm)
	}
	g.pushColorFromMAC()
}

// ncds/ncdt: normal-color with the tinted result depth-cued toward the
// far color.
func (g *Gte) ncds(normal vector3, sf, lm bool) {
	g.lightPass(normal, sf, lm)
	g.depthCue(g.tintBase(), sf, lm)
	g.pushColorFromMAC()
}

// cc/cdp: color the intensities already in IR1-3 (left there by an
// earlier light pass) through the color matrix and the RGBC tint; CDP
// additionally depth-cues the result.
func (g *Gte) cc(sf, lm bool) {
	g.applyMatrix(g.lc, g.irVector(), g.bk, sf, lm)
	base := g.tintBase()
	for lane := 0; lane < 3; lane++ {
		g.setMACIR(lane, base[lane], sf, lm)
	}
	g.pushColorFromMAC()
}

func (g *Gte) cdp(sf, lm bool) {
	g.applyMatrix(g.lc, g.irVector(), g.bk, sf, lm)
	g.depthCue(g.tintBase(), sf, lm)
	g.pushColorFromMAC()
}

// dpcs/dpct: depth-cue a flat color (RGBC for DPCS, successive color
// FIFO entries for DPCT) toward the far color by IR0, with no lighting
// involved.
func (g *Gte) dpcs(col vector3, sf, lm bool) {
	var base [3]int64
	for lane := range base {
		base[lane] = int64(biasComponent(col, lane)) << 12
	}
	g.depthCue(base, sf, lm)
	g.pushColorFromMAC()
}

// dcpl: depth-cue the RGBC-tinted IR intensities, without an intervening
// color-matrix pass.
func (g *Gte) dcpl(sf, lm bool) {
	g.depthCue(g.tintBase(), sf, lm)
	g.pushColorFromMAC()
}

// intpl: interpolate the bare IR1-3 toward the far color by IR0.
func (g *Gte) intpl(sf, lm bool) {
	var base [3]int64
	for lane := range base {
		base[lane] = int64(g.ir[lane+1]) << 12
	}
	g.depthCue(base, sf, lm)
	g.pushColorFromMAC()
}

// sqr squares IR1-3 in place, MAC1-3 <- IR1-3^2 (shifted by sf).
func (g *Gte) sqr(sf, lm bool) {
	for lane := 0; lane < 3; lane++ {
		v := int64(g.ir[lane+1])
		g.setMACIR(lane, v*v, sf, lm)
	}
}

// avsz3/avsz4 average the Z FIFO's most recent three or four entries,
// scaled by ZSF3/ZSF4, into MAC0/OTZ.
func (g *Gte) avsz3() {
	sum := int64(g.sz[1]) + int64(g.sz[2]) + int64(g.sz[3])
	g.avszCommon(sum, int64(g.zsf3))
}

func (g *Gte) avsz4() {
	sum := int64(g.sz[0]) + int64(g.sz[1]) + int64(g.sz[2]) + int64(g.sz[3])
	g.avszCommon(sum, int64(g.zsf4))
}

func (g *Gte) avszCommon(sum int64, zsf int64) {
	mac0 := zsf * sum
	g.setMAC0(mac0)
	v := mac0 >> 12
	if v < 0 {
		v = 0
		g.setFlag(flagSZ3Sat)
	} else if v > 0xffff {
		v = 0xffff
		g.setFlag(flagSZ3Sat)
	}
	g.otz = uint32(v)
}

// gpf/gpl: general-purpose color blend. GPF scales IR1-3 by IR0 alone;
// GPL first rescales the running MAC1-3 back to pre-shift range (when sf
// is set) and accumulates the scaled intensities on top. Both push the
// result, making them the building blocks of custom lighting loops that
// don't fit the fixed NCx/DPCx shapes.
func (g *Gte) gpf(sf, lm bool) {
	for lane := 0; lane < 3; lane++ {
		g.setMACIR(lane, int64(g.ir[0])*int64(g.ir[lane+1]), sf, lm)
	}
	g.pushColorFromMAC()
}

func (g *Gte) gpl(sf, lm bool) {
	shift := uint(0)
	if sf {
		shift = 12
	}
	for lane := 0; lane < 3; lane++ {
		sum := int64(g.ir[0])*int64(g.ir[lane+1]) + int64(g.mac[lane+1])<<shift
		g.setMACIR(lane, sum, sf, lm)
	}
	g.pushColorFromMAC()
}
