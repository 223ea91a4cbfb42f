package r3000

import "testing"

func TestICacheMissThenHit(t *testing.T) {
	var ic InstructionCache

	if _, ok := ic.Lookup(0x80000000); ok {
		t.Fatalf("Lookup on a cold cache reported a hit")
	}

	ic.Fill(0x80000000, 0xdeadbeef)
	got, ok := ic.Lookup(0x80000000)
	if !ok || got != 0xdeadbeef {
		t.Fatalf("Lookup = (%#x, %v), want (0xdeadbeef, true)", got, ok)
	}
}

// A fill only populates the one word fetched; the other words of the
// same 16-byte line stay misses until they're filled themselves.
func TestICachePartialLineFill(t *testing.T) {
	var ic InstructionCache
	ic.Fill(0x80000000, 0x11111111) // word 0 of the line

	if _, ok := ic.Lookup(0x80000004); ok {
		t.Fatalf("Lookup of an unfilled word in a partially-filled line reported a hit")
	}

	ic.Fill(0x80000004, 0x22222222)
	if got, ok := ic.Lookup(0x80000000); !ok || got != 0x11111111 {
		t.Fatalf("Lookup(word 0) = (%#x, %v), want (0x11111111, true)", got, ok)
	}
	if got, ok := ic.Lookup(0x80000004); !ok || got != 0x22222222 {
		t.Fatalf("Lookup(word 1) = (%#x, %v), want (0x22222222, true)", got, ok)
	}
}

// KUSEG and KSEG0 addresses of the same physical word share an entry:
// the top address bit is ignored by the tag.
func TestICacheTopAddressBitIgnored(t *testing.T) {
	var ic InstructionCache
	ic.Fill(0x80001230, 0xcafef00d)

	if got, ok := ic.Lookup(0x00001230); !ok || got != 0xcafef00d {
		t.Fatalf("Lookup(KUSEG mirror) = (%#x, %v), want (0xcafef00d, true)", got, ok)
	}
}

// Two addresses that alias the same line (same index, different tag)
// evict each other rather than coexisting.
func TestICacheTagMismatchEvictsLine(t *testing.T) {
	var ic InstructionCache
	ic.Fill(0x80000000, 0xaaaaaaaa)
	ic.Fill(0x80001000, 0xbbbbbbbb) // same index, different tag

	if _, ok := ic.Lookup(0x80000000); ok {
		t.Fatalf("stale line from a different tag still reported a hit")
	}
	if got, ok := ic.Lookup(0x80001000); !ok || got != 0xbbbbbbbb {
		t.Fatalf("Lookup(new tag) = (%#x, %v), want (0xbbbbbbbb, true)", got, ok)
	}
}

func TestICacheInvalidateClearsEverything(t *testing.T) {
	var ic InstructionCache
	ic.Fill(0x80000000, 0x11111111)
	ic.Fill(0x80001000, 0x22222222)

	ic.Invalidate()

	if _, ok := ic.Lookup(0x80000000); ok {
		t.Fatalf("Lookup after Invalidate reported a hit")
	}
	if _, ok := ic.Lookup(0x80001000); ok {
		t.Fatalf("Lookup after Invalidate reported a hit")
	}
}
