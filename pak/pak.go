// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package pak reads the Gust PAK archive format: a fixed header, a
// table of per-file entries in one of two historical layouts (narrower
// 32-bit data offsets or wider 64-bit ones), and a trailing blob of
// XOR-obfuscated file contents.
package pak

import (
	"encoding/binary"
	"strings"

	"github.com/healingbrew/gust-tools/internal/coreerr"
)

// Canonical header word values; a mismatch is a warning, not a fatal
// error (the archive may still be well-formed).
const (
	CanonicalMagic1 = 0x20000
	CanonicalMagic2 = 0x10
	CanonicalMagic3 = 0x0D

	headerSize = 16
	keySize    = 20
	nameSize   = 128

	// Stride is the byte width of one entry's physical record.
	StrideNarrow = 160
	StrideWide   = 168

	// suspiciousEntryCount flags an entry count unlikely to be genuine,
	// without treating it as fatal.
	suspiciousEntryCount = 16384

	// autodetectSampleSize bounds how many leading entries the layout
	// heuristic examines.
	autodetectSampleSize = 64
)

// Header is the 16-byte PAK archive header.
type Header struct {
	Magic1     uint32
	EntryCount uint32
	Magic2     uint32
	Magic3     uint32
}

// Canonical reports whether h's magic words match the known-good
// archive signature. A non-canonical header is a warning, not a
// reason to stop parsing.
func (h Header) Canonical() bool {
	return h.Magic1 == CanonicalMagic1 && h.Magic2 == CanonicalMagic2 && h.Magic3 == CanonicalMagic3
}

// Suspicious reports whether h declares an implausibly large entry
// count.
func (h Header) Suspicious() bool {
	return h.EntryCount > suspiciousEntryCount
}

// Entry is one logical PAK table record, normalized from whichever
// physical stride the archive uses. DataOffset is absolute within the
// archive: Parse has already added the entry table's end offset to the
// raw, table-relative value stored in the file.
type Entry struct {
	Filename    string
	Length      uint32
	Key         [keySize]byte
	DataOffset  uint64
	SkipDecode  bool
	rawFilename [nameSize]byte
}

// Stride identifies which physical entry layout an archive uses.
type Stride int

const (
	// Narrow is the 32-bit data-offset layout (160 bytes/entry).
	Narrow Stride = StrideNarrow
	// Wide is the 64-bit data-offset layout (168 bytes/entry).
	Wide Stride = StrideWide
)

func parseHeader(raw []byte) (Header, error) {
	if len(raw) < headerSize {
		return Header{}, coreerr.New(coreerr.SizeConstraint, "pak.parseHeader")
	}
	return Header{
		Magic1:     binary.LittleEndian.Uint32(raw[0:4]),
		EntryCount: binary.LittleEndian.Uint32(raw[4:8]),
		Magic2:     binary.LittleEndian.Uint32(raw[8:12]),
		Magic3:     binary.LittleEndian.Uint32(raw[12:16]),
	}, nil
}

// dataOffsetAt reads the data_offset field out of a raw entry-table
// buffer at the given stride, for entry index i, without otherwise
// decoding the entry. Used only by the autodetect heuristic.
func dataOffsetAt(table []byte, stride Stride, i int) uint32 {
	base := i * int(stride)
	off := base + nameSize + 4 + keySize
	return binary.LittleEndian.Uint32(table[off : off+4])
}

// detectStride picks Narrow or Wide by comparing, over up to the first
// 64 entries, the sum of absolute deltas between successive
// data_offset values under each candidate stride: real offsets
// increase monotonically, so the correct stride yields the smaller
// sum.
func detectStride(table []byte, count int) Stride {
	sample := count
	if sample > autodetectSampleSize {
		sample = autodetectSampleSize
	}
	var sum [2]uint64
	var last [2]uint32
	for i := 0; i < sample; i++ {
		vals := [2]uint32{
			dataOffsetAt(table, Narrow, i),
			dataOffsetAt(table, Wide, i),
		}
		for j, v := range vals {
			if v > last[j] {
				sum[j] += uint64(v - last[j])
			} else {
				sum[j] += uint64(last[j] - v)
			}
			last[j] = v
		}
	}
	if sum[0] < sum[1] {
		return Narrow
	}
	return Wide
}

// decodeXOR XORs a cycled 20-byte key into buf in place; an all-zero
// key leaves buf untouched (the "stored in clear" case).
func decodeXOR(buf []byte, key [keySize]byte) {
	for i := range buf {
		buf[i] ^= key[i%keySize]
	}
}

func allZero(key [keySize]byte) bool {
	for _, b := range key {
		if b != 0 {
			return false
		}
	}
	return true
}

func normalizePath(raw [nameSize]byte) string {
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	s := string(raw[:n])
	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.TrimPrefix(s, "/")
	return s
}

// Parse reads a PAK archive's header and entry table out of raw, which
// must hold at least the header and entry_count entries at the widest
// stride (the over-read the original format's layout autodetect
// depends on: the table is always sized as if 64-bit, then
// reinterpreted at the narrower stride if that's what the archive
// turns out to use). It returns the header and the normalized entry
// list, with filenames already XOR-decoded and path-normalized.
func Parse(raw []byte) (Header, []Entry, error) {
	const op = "pak.Parse"
	header, err := parseHeader(raw)
	if err != nil {
		return Header{}, nil, err
	}
	count := int(header.EntryCount)
	tableEnd := headerSize + count*StrideWide
	if tableEnd > len(raw) {
		return Header{}, nil, coreerr.New(coreerr.SizeConstraint, op)
	}
	table := raw[headerSize:tableEnd]

	stride := Wide
	if count >= 2 {
		stride = detectStride(table, count)
	}

	entries := make([]Entry, count)
	for i := 0; i < count; i++ {
		base := i * int(stride)
		rec := table[base : base+int(stride)]

		var e Entry
		copy(e.rawFilename[:], rec[0:nameSize])
		e.Length = binary.LittleEndian.Uint32(rec[nameSize : nameSize+4])
		copy(e.Key[:], rec[nameSize+4:nameSize+4+keySize])

		offsetField := rec[nameSize+4+keySize:]
		if stride == Narrow {
			e.DataOffset = uint64(binary.LittleEndian.Uint32(offsetField[0:4]))
		} else {
			e.DataOffset = binary.LittleEndian.Uint64(offsetField[0:8])
		}

		e.SkipDecode = allZero(e.Key)
		filename := e.rawFilename
		DecodeEntry(filename[:], e.Key)
		e.Filename = normalizePath(filename)
		entries[i] = e
	}

	tableEndForStride := headerSize + count*int(stride)
	for i := range entries {
		entries[i].DataOffset += uint64(tableEndForStride)
	}

	return header, entries, nil
}

// DecodeEntry XOR-decodes buf in place with the given 20-byte key. An
// all-zero key (the "stored in clear" case) is naturally a no-op, since
// XORing with all-zero bytes changes nothing; callers don't need to
// special-case it. The operation is its own inverse.
func DecodeEntry(buf []byte, key [keySize]byte) {
	decodeXOR(buf, key)
}
