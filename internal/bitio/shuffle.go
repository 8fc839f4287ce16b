// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bitio

// Shuffle implements the bit-swap pass shared by both descrambler
// passes: a Fisher-Yates-seeded selection of bit positions followed by
// a pairwise bit exchange, applied independently to each contiguous
// slice of sliceSize bytes within chunk. Only whole slices are
// processed: trailing bytes past the last full slice, or a chunk
// shorter than sliceSize, are left unchanged. It is deterministic and
// self-inverse: applying it twice with a generator reset to the same
// seed restores the original bits.
//
// gen is advanced in place; callers that need its post-pass state (none
// of the current callers do, since each bit-swap pass owns a
// freshly-seeded generator) can inspect it via gen.State after return.
func Shuffle(chunk []byte, sliceSize int, gen *Generator) {
	tableSize := sliceSize * 8
	if tableSize < 4 {
		return
	}
	base := make([]int, tableSize)
	scrambled := make([]int, tableSize)

	for off := 0; off+sliceSize <= len(chunk); off += sliceSize {
		slice := chunk[off : off+sliceSize]
		remaining := len(chunk) - off
		if remaining > sliceSize {
			remaining = sliceSize
		}

		for i := range base {
			base[i] = i
		}
		live := base[:tableSize]
		for i := 0; i < tableSize; i++ {
			x := int(gen.NextIndex()) % len(live)
			scrambled[i] = live[x]
			live = append(live[:x], live[x+1:]...)
		}

		limit := tableSize
		if bits := remaining * 8; bits < limit {
			limit = bits
		}
		for i := 0; i+1 < limit; i += 2 {
			v0, v1 := scrambled[i], scrambled[i+1]
			p0, b0 := v0>>3, uint(v0&7)
			p1, b1 := v1>>3, uint(v1&7)
			bit0 := (slice[p0] >> b0) & 1
			bit1 := (slice[p1] >> b1) & 1
			slice[p0] = (slice[p0] &^ (1 << b0)) | (bit1 << b0)
			slice[p1] = (slice[p1] &^ (1 << b1)) | (bit0 << b1)
		}
	}
}
