// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bitio implements the low-level bit-level primitives shared by
// the Gust descramblers: the linear-congruential pseudo-random generator
// that drives every scrambling step, a most-significant-bit-first
// streaming bit reader, and the Fisher-Yates-seeded bit-swap pass used by
// both descrambler passes.
package bitio

// increment is the additive constant in the generator's recurrence.
const increment = 0x2F09

// Generator is the 32-bit pseudo-random generator used throughout the
// scrambling stage: state' = state*mult + increment, with the high 16
// bits of the new state as the emitted word. The multiplier is fixed for
// the lifetime of a single scrambling session; it is either the shared
// constant 0x3B9A73C9 or a value derived from the buffer being
// descrambled (see the D2 pass), never mutated mid-session.
type Generator struct {
	mult  uint32
	state uint32
}

// NewGenerator returns a Generator seeded with the given multiplier and
// initial state.
func NewGenerator(mult, state uint32) Generator {
	return Generator{mult: mult, state: state}
}

// Next advances the generator and returns the emitted 16-bit word.
func (g *Generator) Next() uint16 {
	g.state = g.state*g.mult + increment
	return uint16(g.state >> 16)
}

// NextIndex advances the generator and returns the low 15 bits of the
// emitted word, the non-negative form consumers use to index a table.
func (g *Generator) NextIndex() uint32 {
	g.state = g.state*g.mult + increment
	return (g.state >> 16) & 0x7FFF
}

// State returns the generator's raw 32-bit state, as needed where a
// caller must persist or re-seed a rotating generator (D2's per-seed
// table rotation).
func (g *Generator) State() uint32 {
	return g.state
}

// SetState overwrites the generator's state without touching its
// multiplier.
func (g *Generator) SetState(state uint32) {
	g.state = state
}
