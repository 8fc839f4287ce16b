// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package glaze implements the decompressor for the proprietary
// LZ77-family codec used by ".e" payloads: a split representation of
// opcode table, literal dictionary, and long-length table, executed by
// a small seven-opcode machine.
package glaze

import (
	"encoding/binary"

	"github.com/healingbrew/gust-tools/internal/bitio"
	"github.com/healingbrew/gust-tools/internal/coreerr"
)

// region is a length-prefixed slice read off the front of a parent
// buffer, carrying its own bounded cursor.
type region struct {
	bytes []byte
	pos   int
}

func (r *region) readByte(op string) (byte, error) {
	if r.pos >= len(r.bytes) {
		return 0, coreerr.New(coreerr.DecompressionOverrun, op)
	}
	b := r.bytes[r.pos]
	r.pos++
	return b, nil
}

func readRegion(op string, parent []byte, pos int) (region, int, error) {
	if pos+4 > len(parent) {
		return region{}, 0, coreerr.New(coreerr.SizeConstraint, op)
	}
	n := int(binary.BigEndian.Uint32(parent[pos : pos+4]))
	pos += 4
	if n < 0 || pos+n > len(parent) {
		return region{}, 0, coreerr.New(coreerr.SizeConstraint, op)
	}
	return region{bytes: parent[pos : pos+n]}, pos + n, nil
}

// Unglaze decompresses src, a descrambled ".e" payload laid out as four
// length-prefixed regions (declared output length, opcode bitstream,
// literal dictionary, long-length table), returning exactly out_len
// bytes as declared by the stream itself. declaredOutLen is the
// decompressed size taken from the outer ".e" header; it is cross
// checked against the stream's own embedded out_len rather than driving
// execution directly, so that a corrupt header and a corrupt stream are
// distinguishable failures.
func Unglaze(src []byte, declaredOutLen uint32) ([]byte, error) {
	const op = "glaze.Unglaze"
	if len(src) < 4 {
		return nil, coreerr.New(coreerr.SizeConstraint, op)
	}
	outLen := binary.BigEndian.Uint32(src[0:4])
	if declaredOutLen != 0 && declaredOutLen != outLen {
		return nil, coreerr.New(coreerr.SizeConstraint, op)
	}
	pos := 4

	bitstream, pos, err := readRegion(op, src, pos)
	if err != nil {
		return nil, err
	}
	dict, pos, err := readRegion(op, src, pos)
	if err != nil {
		return nil, err
	}
	lentab, _, err := readRegion(op, src, pos)
	if err != nil {
		return nil, err
	}

	code, err := buildCodeTable(bitstream.bytes)
	if err != nil {
		return nil, err
	}

	return execute(code, dict.bytes, lentab.bytes, outLen)
}

// buildCodeTable recovers the opcode array packed into the front of
// bitstream: a 4-byte big-endian count followed by that many opcodes
// encoded with a 1-bit/7-bit prefix code. A leading 1 bit means opcode
// 0x01; otherwise up to 7 further bits are read looking for a
// terminating 1, and the opcode is reconstructed from the number of
// leading zeros seen and the value bits that follow. Running out of
// bits mid-opcode simply truncates the table at its current length,
// matching the source's tolerance for a bitstream that ends exactly on
// an opcode boundary.
func buildCodeTable(bitstream []byte) ([]byte, error) {
	const op = "glaze.buildCodeTable"
	if len(bitstream) < 4 {
		return nil, coreerr.New(coreerr.SizeConstraint, op)
	}
	codeLen := binary.BigEndian.Uint32(bitstream[0:4])
	r := bitio.NewBitReader(bitstream[4:])

	code := make([]byte, 0, codeLen)
	for uint32(len(code)) < codeLen {
		b0, err := r.GetBit()
		if err != nil {
			break
		}
		if b0 == 1 {
			code = append(code, 0x01)
			continue
		}

		leadingZeros := 0
		terminated := false
		for s := 0; s < 7; s++ {
			b, err := r.GetBit()
			if err != nil {
				return code, nil
			}
			if b == 1 {
				terminated = true
				break
			}
			leadingZeros++
		}
		if !terminated {
			code = append(code, 0x00)
			continue
		}

		codeLenBits := leadingZeros + 1
		value, err := r.Get(codeLenBits)
		if err != nil {
			return code, nil
		}
		code = append(code, byte((uint32(1)<<uint(codeLenBits))|value))
	}
	return code, nil
}

// execute runs the seven-opcode machine described by code, consuming
// literal bytes from dict and long-run lengths from lentab, and
// emitting exactly outLen bytes into the returned slice.
func execute(code, dict, lentab []byte, outLen uint32) ([]byte, error) {
	const op = "glaze.execute"
	dst := make([]byte, 0, outLen)
	dictRegion := region{bytes: dict}
	lentabRegion := region{bytes: lentab}
	codeCur := 0

	emit := func(b byte) error {
		if uint32(len(dst)) >= outLen {
			return coreerr.New(coreerr.DecompressionOverrun, op)
		}
		dst = append(dst, b)
		return nil
	}

	copyBack := func(d uint32, count int) error {
		for i := 0; i < count; i++ {
			if d == 0 || uint32(len(dst)) < d {
				return coreerr.New(coreerr.DecompressionOverrun, op)
			}
			if err := emit(dst[uint32(len(dst))-d]); err != nil {
				return err
			}
		}
		return nil
	}

	copyDict := func(count int) error {
		for i := 0; i < count; i++ {
			b, err := dictRegion.readByte(op)
			if err != nil {
				return err
			}
			if err := emit(b); err != nil {
				return err
			}
		}
		return nil
	}

	nextCode := func() (byte, error) {
		if codeCur >= len(code) {
			return 0, coreerr.New(coreerr.DecompressionOverrun, op)
		}
		b := code[codeCur]
		codeCur++
		return b, nil
	}

	for uint32(len(dst)) < outLen {
		opcode, err := nextCode()
		if err != nil {
			return nil, err
		}
		switch opcode {
		case 0x01:
			if err := copyDict(1); err != nil {
				return nil, err
			}
		case 0x02:
			d, err := nextCode()
			if err != nil {
				return nil, err
			}
			if err := copyBack(uint32(d), 1); err != nil {
				return nil, err
			}
		case 0x03:
			d, err := nextCode()
			if err != nil {
				return nil, err
			}
			l, err := nextCode()
			if err != nil {
				return nil, err
			}
			if err := copyBack(uint32(d)+uint32(l), int(l)+1); err != nil {
				return nil, err
			}
		case 0x04:
			l, err := nextCode()
			if err != nil {
				return nil, err
			}
			d0, err := dictRegion.readByte(op)
			if err != nil {
				return nil, err
			}
			if err := copyBack(uint32(d0)+uint32(l), int(l)+1); err != nil {
				return nil, err
			}
		case 0x05:
			dhi, err := nextCode()
			if err != nil {
				return nil, err
			}
			dlo, err := dictRegion.readByte(op)
			if err != nil {
				return nil, err
			}
			l, err := nextCode()
			if err != nil {
				return nil, err
			}
			d := (uint32(dhi)<<8 | uint32(dlo)) + uint32(l)
			if err := copyBack(d, int(l)+1); err != nil {
				return nil, err
			}
		case 0x06:
			l, err := nextCode()
			if err != nil {
				return nil, err
			}
			if err := copyDict(int(l) + 8); err != nil {
				return nil, err
			}
		case 0x07:
			lb, err := lentabRegion.readByte(op)
			if err != nil {
				return nil, err
			}
			if err := copyDict(int(lb) + 14); err != nil {
				return nil, err
			}
		case 0x00:
			return nil, coreerr.New(coreerr.UnreachableOpcode, op)
		default:
			return nil, coreerr.New(coreerr.DecompressionOverrun, op)
		}
	}
	return dst, nil
}
