package r3000

import (
	"encoding/binary"
	"errors"
)

// stateVersion is incremented whenever the binary layout below changes.
const stateVersion = 1

// stateSize is the number of bytes produced by CPU.Serialize. Update this
// constant whenever the layout changes.
const stateSize = 1 + /* version */
	33*4 + 4 + 4 + /* regs, hi, lo */
	4 + 4 + 1 + /* pc, curPC, inDelay */
	13 + 16 + /* branch, loadPending */
	16*4 + /* cop0 */
	gteStateSize +
	icacheStateSize +
	scratchpadSize

const gteStateSize = 3*12 + 4 + 4 + 4*4 + 3*2*4 + 4*4 + 3*4 + 4*4 + 4 + 4 +
	18 + 12 + 18 + 18 + 12 + 12 + 4 + 4 + 4 + 4 + 4 + 4 + 4 + 4

const icacheStateSize = icacheEntries * (4 + 4 + 1)

// SerializeSize returns the number of bytes Serialize needs.
func (c *CPU) SerializeSize() int { return stateSize }

// stateWriter and stateReader walk a fixed-layout buffer the way the
// teacher's flat register dump does, just with a cursor instead of a
// hand-tracked offset for every one of the many more fields here.
type stateWriter struct {
	buf []byte
	off int
}

func (w *stateWriter) u8(v uint8) {
	w.buf[w.off] = v
	w.off++
}

func (w *stateWriter) bool(v bool) { w.u8(boolByte(v)) }

func (w *stateWriter) u16(v uint16) {
	binary.BigEndian.PutUint16(w.buf[w.off:], v)
	w.off += 2
}

func (w *stateWriter) u32(v uint32) {
	binary.BigEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

func (w *stateWriter) i32(v int32)  { w.u32(uint32(v)) }
func (w *stateWriter) i16(v int16)  { w.u16(uint16(v)) }

type stateReader struct {
	buf []byte
	off int
}

func (r *stateReader) u8() uint8 {
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *stateReader) boolean() bool { return r.u8() != 0 }

func (r *stateReader) u16() uint16 {
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v
}

func (r *stateReader) u32() uint32 {
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *stateReader) i32() int32 { return int32(r.u32()) }
func (r *stateReader) i16() int16 { return int16(r.u16()) }

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Serialize writes the full CPU, COP0, GTE, instruction-cache and
// scratchpad state into buf, which must be at least SerializeSize()
// bytes. The Bus is not included: callers own reattaching one on restore.
// The BIU registers (cache control, I_STAT, I_MASK) are not included
// either, so Deserialize leaves them as they were.
func (c *CPU) Serialize(buf []byte) error {
	if len(buf) < stateSize {
		return errors.New("r3000: serialize buffer too small")
	}
	w := &stateWriter{buf: buf}
	w.u8(stateVersion)

	for _, r := range c.regs {
		w.u32(r)
	}
	w.u32(c.hi)
	w.u32(c.lo)
	w.u32(c.pc)
	w.u32(c.curPC)
	w.bool(c.inDelay)

	w.bool(c.branch.valid)
	w.u32(c.branch.fromPC)
	w.u32(c.branch.word)
	w.u32(c.branch.target)

	for _, l := range c.loadPending {
		w.u32(l.idx)
		w.u32(l.val)
	}

	for _, r := range c.cop0.regs {
		w.u32(r)
	}

	c.gte.serialize(w)
	c.icache.serialize(w)

	copy(buf[w.off:], c.scratch.mem[:])
	w.off += scratchpadSize

	return nil
}

// Deserialize restores state written by Serialize. It leaves the Bus
// field untouched; the caller is expected to have constructed the CPU
// with New(bus) (or to call SetBus, if this core grows one) before or
// after restoring.
func (c *CPU) Deserialize(buf []byte) error {
	if len(buf) < stateSize {
		return errors.New("r3000: deserialize buffer too small")
	}
	r := &stateReader{buf: buf}
	if v := r.u8(); v != stateVersion {
		return errors.New("r3000: unsupported state version")
	}

	for i := range c.regs {
		c.regs[i] = r.u32()
	}
	c.hi = r.u32()
	c.lo = r.u32()
	c.pc = r.u32()
	c.curPC = r.u32()
	c.inDelay = r.boolean()

	c.branch.valid = r.boolean()
	c.branch.fromPC = r.u32()
	c.branch.word = r.u32()
	c.branch.target = r.u32()

	for i := range c.loadPending {
		c.loadPending[i].idx = r.u32()
		c.loadPending[i].val = r.u32()
	}

	for i := range c.cop0.regs {
		c.cop0.regs[i] = r.u32()
	}

	c.gte.deserialize(r)
	c.icache.deserialize(r)

	copy(c.scratch.mem[:], buf[r.off:])
	r.off += scratchpadSize

	return nil
}

func (g *Gte) serialize(w *stateWriter) {
	for _, v := range g.v {
		w.i32(v.x)
		w.i32(v.y)
		w.i32(v.z)
	}
	w.u32(g.rgbc)
	w.u32(g.otz)
	for _, v := range g.ir {
		w.i32(v)
	}
	for _, xy := range g.sxy {
		w.i32(xy[0])
		w.i32(xy[1])
	}
	for _, z := range g.sz {
		w.u32(z)
	}
	for _, c := range g.rgbFifo {
		w.u32(c)
	}
	for _, m := range g.mac {
		w.i32(m)
	}
	w.i32(g.lzcs)
	w.i32(g.lzcr)
	writeMatrix(w, g.rt)
	w.i32(g.tr.x)
	w.i32(g.tr.y)
	w.i32(g.tr.z)
	writeMatrix(w, g.l)
	w.i32(g.bk.x)
	w.i32(g.bk.y)
	w.i32(g.bk.z)
	writeMatrix(w, g.lc)
	w.i32(g.fc.x)
	w.i32(g.fc.y)
	w.i32(g.fc.z)
	w.i32(g.ofx)
	w.i32(g.ofy)
	w.u32(g.h)
	w.i32(g.dqa)
	w.i32(g.dqb)
	w.i32(g.zsf3)
	w.i32(g.zsf4)
	w.u32(g.flag)
}

func (g *Gte) deserialize(r *stateReader) {
	for i := range g.v {
		g.v[i] = vector3{x: r.i32(), y: r.i32(), z: r.i32()}
	}
	g.rgbc = r.u32()
	g.otz = r.u32()
	for i := range g.ir {
		g.ir[i] = r.i32()
	}
	for i := range g.sxy {
		g.sxy[i] = [2]int32{r.i32(), r.i32()}
	}
	for i := range g.sz {
		g.sz[i] = r.u32()
	}
	for i := range g.rgbFifo {
		g.rgbFifo[i] = r.u32()
	}
	for i := range g.mac {
		g.mac[i] = r.i32()
	}
	g.lzcs = r.i32()
	g.lzcr = r.i32()
	g.rt = readMatrix(r)
	g.tr = vector3{x: r.i32(), y: r.i32(), z: r.i32()}
	g.l = readMatrix(r)
	g.bk = vector3{x: r.i32(), y: r.i32(), z: r.i32()}
	g.lc = readMatrix(r)
	g.fc = vector3{x: r.i32(), y: r.i32(), z: r.i32()}
	g.ofx = r.i32()
	g.ofy = r.i32()
	g.h = r.u32()
	g.dqa = r.i32()
	g.dqb = r.i32()
	g.zsf3 = r.i32()
	g.zsf4 = r.i32()
	g.flag = r.u32()
}

func writeMatrix(w *stateWriter, m matrix3) {
	for _, row := range m.m {
		for _, v := range row {
			w.i16(v)
		}
	}
}

func readMatrix(r *stateReader) matrix3 {
	var m matrix3
	for i := range m.m {
		for j := range m.m[i] {
			m.m[i][j] = r.i16()
		}
	}
	return m
}

func (ic *InstructionCache) serialize(w *stateWriter) {
	for _, e := range ic.entries {
		w.u32(e.tag)
		w.u32(e.data)
		w.bool(e.valid)
	}
}

func (ic *InstructionCache) deserialize(r *stateReader) {
	for i := range ic.entries {
		ic.entries[i].tag = r.u32()
		ic.entries[i].data = r.u32()
		ic.entries[i].valid = r.boolean()
	}
}
