// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package scramble implements the two descrambler passes that sit
// between a ".e" file's payload and its Glaze-compressed stream. Both
// passes are ported bit-for-bit from gust_enc.c's descrambler1 and
// descrambler2, reusing internal/bitio's generator and bit-swap pass
// for their shared primitives.
package scramble

import (
	"encoding/binary"

	"github.com/healingbrew/gust-tools/internal/bitio"
	"github.com/healingbrew/gust-tools/internal/coreerr"
)

// sharedMultiplier is the fixed PRNG multiplier used by every generator
// in this package except D2's rotating byte-XOR stream, which derives
// its own multiplier from the buffer's final seed word.
const sharedMultiplier = 0x3B9A73C9

// Seeds holds the per-title scrambling parameters recovered from the
// seed catalog: three generator seeds for the bit-swap and word-XOR
// steps, three generator seeds for D2's rotating byte-XOR stream, three
// length thresholds gating that rotation, and the fence value gating
// D1's conditional XOR.
type Seeds struct {
	Main   [3]uint32
	Table  [3]uint32
	Length [3]uint32
	Fence  uint32
}

// D1 runs the first descrambler pass over buf in place: a bit-swap of
// its trailing 0x800 bytes (in 0x100-byte slices), followed by a
// fence-gated 16-bit word XOR/subtract pass over the whole buffer.
func D1(buf []byte, seeds Seeds) {
	tailSize := len(buf)
	if tailSize > 0x800 {
		tailSize = 0x800
	}
	tail := buf[len(buf)-tailSize:]
	tailGen := bitio.NewGenerator(sharedMultiplier, seeds.Main[0])
	bitio.Shuffle(tail, 0x100, &tailGen)

	wordGen := bitio.NewGenerator(sharedMultiplier, seeds.Main[1])
	for i := 0; i+2 <= len(buf); i += 2 {
		x := wordGen.NextIndex()
		w := binary.BigEndian.Uint16(buf[i : i+2])
		if x%seeds.Fence >= seeds.Fence/2 {
			w ^= uint16(x)
		}
		w -= uint16(x)
		binary.BigEndian.PutUint16(buf[i:i+2], w)
	}
}

// D2 runs the second descrambler pass over buf in place and returns the
// leading portion of buf that holds the recovered Glaze stream, with
// its trailing marker, checksum pair and final seed word stripped off.
//
// buf must have a length that is a multiple of 4 and at least 16 bytes;
// violating either is reported as a SizeConstraint error, matching the
// bounds check gust_enc.c performs before touching the buffer.
func D2(buf []byte, seeds Seeds) ([]byte, error) {
	const op = "scramble.D2"
	if len(buf)%4 != 0 || len(buf) < 16 {
		return nil, coreerr.New(coreerr.SizeConstraint, op)
	}

	size := len(buf)
	size -= 4
	finalSeed := binary.BigEndian.Uint32(buf[size : size+4])
	size -= 4
	checksum0 := binary.BigEndian.Uint32(buf[size : size+4])
	size -= 4
	checksum1 := binary.BigEndian.Uint32(buf[size : size+4])
	size--

	// Scan backward from size for the 0xFF marker byte.
	end := size
	for end > 0 && buf[end] != 0xFF {
		end--
	}
	if end < 4 || buf[end] != 0xFF {
		return nil, coreerr.New(coreerr.MarkerNotFound, op)
	}

	gen := bitio.NewGenerator(finalSeed+sharedMultiplier, seeds.Table[0])
	seedIndex := 0
	counter := uint32(0)
	fudge := uint32(0)
	threshold := seeds.Length[0] + fudge

	for i := 0; i < end; i++ {
		w := gen.Next()
		buf[i] ^= byte(w)
		counter++
		if counter >= threshold {
			seeds.Table[seedIndex] = gen.State()
			seedIndex++
			if seedIndex >= len(seeds.Table) {
				seedIndex = 0
				fudge++
			}
			gen.SetState(seeds.Table[seedIndex])
			counter = 0
			threshold = seeds.Length[seedIndex] + fudge
		}
	}
	buf[end] = 0

	n := end &^ 3
	var c0, c1 uint32
	for i := 0; i+4 <= n; i += 4 {
		w := binary.BigEndian.Uint32(buf[i : i+4])
		c0 ^= ^w
		c1 -= w
	}
	if c0 != checksum0 || c1 != checksum1 {
		return nil, coreerr.New(coreerr.ChecksumMismatch, op)
	}

	tailSize := n
	if tailSize > 0x800 {
		tailSize = 0x800
	}
	tailGen := bitio.NewGenerator(sharedMultiplier, seeds.Main[2])
	bitio.Shuffle(buf[:tailSize], 0x80, &tailGen)

	return buf[:n], nil
}

// Descramble runs D1 then D2 over buf, in place, and returns the
// recovered Glaze stream.
func Descramble(buf []byte, seeds Seeds) ([]byte, error) {
	D1(buf, seeds)
	return D2(buf, seeds)
}
