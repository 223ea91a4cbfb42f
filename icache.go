package r3000

// icacheEntries is the number of single-word entries in the 1 KiB
// instruction cache: 1024 bytes / 4 bytes-per-word.
const icacheEntries = 1024

// icacheEntry is one cached instruction word. Each word carries its own
// tag and valid bit: the R3000A fills a line one word at a time on a
// miss, starting wherever the fetch landed, so the words of a 16-byte
// line are independently present or absent.
type icacheEntry struct {
	tag   uint32
	data  uint32
	valid bool
}

// InstructionCache models the R3000A's 1 KiB direct-mapped I-cache,
// indexed by PC[11:2] and tagged by PC[31:12] with the top address bit
// ignored (KUSEG and KSEG0 mirrors of the same physical word share an
// entry).
type InstructionCache struct {
	entries [icacheEntries]icacheEntry
}

// Invalidate clears every entry's valid bit, as a cold reset or a
// cache-isolate-driven flush would.
func (ic *InstructionCache) Invalidate() {
	for i := range ic.entries {
		ic.entries[i].valid = false
	}
}

func icacheIndex(pc uint32) uint32 { return (pc >> 2) & (icacheEntries - 1) }
func icacheTag(pc uint32) uint32   { return (pc &^ (1 << 31)) >> 12 }

// Lookup returns the cached word at pc and true if it is a cache hit.
func (ic *InstructionCache) Lookup(pc uint32) (uint32, bool) {
	e := &ic.entries[icacheIndex(pc)]
	if !e.valid || e.tag != icacheTag(pc) {
		return 0, false
	}
	return e.data, true
}

// Fill records a freshly-fetched word at pc, evicting whatever the entry
// held before.
func (ic *InstructionCache) Fill(pc, word uint32) {
	ic.entries[icacheIndex(pc)] = icacheEntry{tag: icacheTag(pc), data: word, valid: true}
}
