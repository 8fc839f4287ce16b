// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gust

import (
	"encoding/binary"

	"github.com/healingbrew/gust-tools/internal/coreerr"
	"github.com/healingbrew/gust-tools/internal/glaze"
	"github.com/healingbrew/gust-tools/internal/scramble"
)

// eFileHeaderSize is the fixed 16-byte header every ".e" file begins
// with: a 4-byte type tag, a 4-byte declared decompressed size, and 8
// reserved bytes.
const eFileHeaderSize = 16

// eFileTypeTag is the only type tag value DecodeEFile accepts.
const eFileTypeTag = 2

// DecodeEFile decodes a whole ".e" file: it validates the 16-byte
// header, then runs the scrambled-and-compressed payload (bytes
// 16..EOF) through D1, D2, and Glaze, returning the plain bytes.
func DecodeEFile(buf []byte, seeds scramble.Seeds) ([]byte, error) {
	const op = "gust.DecodeEFile"
	if len(buf) < eFileHeaderSize {
		return nil, coreerr.New(coreerr.SizeConstraint, op)
	}
	typeTag := binary.BigEndian.Uint32(buf[0:4])
	if typeTag != eFileTypeTag {
		return nil, coreerr.New(coreerr.MalformedHeader, op)
	}
	declaredSize := binary.BigEndian.Uint32(buf[4:8])

	payload := append([]byte(nil), buf[eFileHeaderSize:]...)
	descrambled, err := scramble.Descramble(payload, seeds)
	if err != nil {
		return nil, err
	}
	return glaze.Unglaze(descrambled, declaredSize)
}
