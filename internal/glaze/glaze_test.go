// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package glaze

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/healingbrew/gust-tools/internal/coreerr"
)

func buildStream(outLen uint32, code, dict, lentab []byte) []byte {
	var buf bytes.Buffer
	put32 := func(v uint32) {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], v)
		buf.Write(b[:])
	}
	put32(outLen)

	// bitstream region: code_len followed by the opcodes packed with
	// the 1-bit-per-literal / 7-bit-prefix code used by buildCodeTable.
	var bits bytes.Buffer
	bw := &bitWriter{}
	for _, op := range code {
		bw.writeOpcode(op)
	}
	bits.Write(bw.bytes())

	var bitstream bytes.Buffer
	put32ToBuf(&bitstream, uint32(len(code)))
	bitstream.Write(bits.Bytes())

	put32(uint32(bitstream.Len()))
	buf.Write(bitstream.Bytes())

	put32(uint32(len(dict)))
	buf.Write(dict)

	put32(uint32(len(lentab)))
	buf.Write(lentab)

	return buf.Bytes()
}

func put32ToBuf(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// bitWriter packs opcodes using the inverse of buildCodeTable's prefix
// code, for constructing test fixtures.
type bitWriter struct {
	bits []bool
}

func (w *bitWriter) push(b bool) { w.bits = append(w.bits, b) }

func (w *bitWriter) writeOpcode(op byte) {
	if op == 0x01 {
		w.push(true)
		return
	}
	w.push(false)
	if op == 0x00 {
		// Seven more zero bits with no terminating 1 decode as 0x00.
		for i := 0; i < 7; i++ {
			w.push(false)
		}
		return
	}
	// Find codeLenBits and value such that (1<<codeLenBits)|value == op,
	// preferring the smallest codeLenBits (1 or 2, the only values the
	// execution table actually dispatches on).
	for codeLenBits := 1; codeLenBits <= 7; codeLenBits++ {
		lo := uint32(1) << uint(codeLenBits)
		hi := lo << 1
		if uint32(op) >= lo && uint32(op) < hi {
			for i := 0; i < codeLenBits-1; i++ {
				w.push(false)
			}
			w.push(true)
			value := uint32(op) - lo
			for i := codeLenBits - 1; i >= 0; i-- {
				w.push((value>>uint(i))&1 == 1)
			}
			return
		}
	}
	panic("opcode out of representable range")
}

func (w *bitWriter) bytes() []byte {
	out := make([]byte, 0, (len(w.bits)+7)/8)
	var cur byte
	var mask byte = 0x80
	for _, b := range w.bits {
		if b {
			cur |= mask
		}
		mask >>= 1
		if mask == 0 {
			out = append(out, cur)
			cur = 0
			mask = 0x80
		}
	}
	if mask != 0x80 {
		out = append(out, cur)
	}
	return out
}

func TestUnglazeLiteralsAndBackref(t *testing.T) {
	// "AB" then a literal run "12345678" via 0x06 with l=0 (l+8 means the
	// minimum run is 8 bytes), then a single back-ref of distance 1.
	dict := []byte("AB12345678")
	code := []byte{0x01, 0x01, 0x06, 0x00, 0x02, 0x01}
	stream := buildStream(11, code, dict, nil)

	got, err := Unglaze(stream, 11)
	if err != nil {
		t.Fatalf("Unglaze: %v", err)
	}
	want := "AB12345678" + "8"
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUnglazeOutputOverrun(t *testing.T) {
	dict := []byte("ABCCDEFGHIJ")
	code := []byte{0x01, 0x01, 0x06, 0x02}
	stream := buildStream(10, code, dict, nil)

	_, err := Unglaze(stream, 10)
	var ce *coreerr.Error
	if !errors.As(err, &ce) || ce.Kind != coreerr.DecompressionOverrun {
		t.Fatalf("expected DecompressionOverrun, got %v", err)
	}
}

func TestUnglazeLongLengthTable(t *testing.T) {
	dict := bytes.Repeat([]byte{'x'}, 20)
	lentab := []byte{3}
	code := []byte{0x07}
	stream := buildStream(17, code, dict, lentab)

	got, err := Unglaze(stream, 17)
	if err != nil {
		t.Fatalf("Unglaze: %v", err)
	}
	if len(got) != 17 {
		t.Fatalf("got %d bytes, want 17", len(got))
	}
}

func TestUnglazeDeclaredOutLenMismatch(t *testing.T) {
	stream := buildStream(5, []byte{0x01}, []byte("x"), nil)
	_, err := Unglaze(stream, 999)
	var ce *coreerr.Error
	if !errors.As(err, &ce) || ce.Kind != coreerr.SizeConstraint {
		t.Fatalf("expected SizeConstraint, got %v", err)
	}
}

func TestBuildCodeTableTruncatesOnEOF(t *testing.T) {
	// code_len claims 5 opcodes but the bitstream only encodes 1.
	var bitstream bytes.Buffer
	put32ToBuf(&bitstream, 5)
	bw := &bitWriter{}
	bw.writeOpcode(0x01)
	bitstream.Write(bw.bytes())

	code, err := buildCodeTable(bitstream.Bytes())
	if err != nil {
		t.Fatalf("buildCodeTable: %v", err)
	}
	if len(code) != 1 || code[0] != 0x01 {
		t.Fatalf("got %v, want [0x01]", code)
	}
}
