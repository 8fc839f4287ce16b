// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package gust is the top-level entry point for decoding Gust PAK
// archives and ".e" assets: it orchestrates the decoder core
// (internal/bitio, internal/scramble, internal/glaze, pak) into a
// single ".e" decode operation and a concurrent PAK batch extractor.
package gust

import "github.com/healingbrew/gust-tools/internal/coreerr"

// CoreError is the single error type every core invariant violation
// surfaces as, regardless of which internal package detected it. Use
// errors.As to recover the Kind.
type CoreError = coreerr.Error

// Re-exported Kind constants, so callers never need to import
// internal/coreerr directly.
const (
	MalformedHeader      = coreerr.MalformedHeader
	SizeConstraint       = coreerr.SizeConstraint
	MarkerNotFound       = coreerr.MarkerNotFound
	ChecksumMismatch     = coreerr.ChecksumMismatch
	DecompressionOverrun = coreerr.DecompressionOverrun
	UnreachableOpcode    = coreerr.UnreachableOpcode
	AllocFailure         = coreerr.AllocFailure
)
