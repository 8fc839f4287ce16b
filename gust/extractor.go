// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gust

import (
	"context"
	"encoding/binary"
	"runtime"
	"sync"
	"time"

	"github.com/healingbrew/gust-tools/internal/coreerr"
	"github.com/healingbrew/gust-tools/internal/scramble"
	"github.com/healingbrew/gust-tools/pak"
)

// ExtractionResult is the outcome of decoding a single PAK entry: its
// payload on success, or an error. Unlike pbzip2.Decompressor's
// reassembled stream, results are independent of one another and carry
// no ordering guarantee — each entry's data and key are disjoint.
type ExtractionResult struct {
	Entry pak.Entry
	Data  []byte
	Err   error
}

// Progress reports one entry's completed extraction, mirroring
// pbzip2.Progress.
type Progress struct {
	Duration time.Duration
	Entry    pak.Entry
	Size     int
}

type extractorOpts struct {
	concurrency int
	progressCh  chan<- Progress
	seeds       scramble.Seeds
}

// ExtractorOption configures a Extractor.
type ExtractorOption func(*extractorOpts)

// WithConcurrency sets the number of worker goroutines used to decode
// entries; it defaults to runtime.GOMAXPROCS(-1).
func WithConcurrency(n int) ExtractorOption {
	return func(o *extractorOpts) { o.concurrency = n }
}

// WithSeeds sets the scrambling seeds applied to any entry whose
// decoded content turns out to be a ".e" payload (a single PAK archive
// belongs to one title, hence one seed set).
func WithSeeds(s scramble.Seeds) ExtractorOption {
	return func(o *extractorOpts) { o.seeds = s }
}

// WithProgress sets the channel Extractor.Run sends a Progress update
// to after each entry decodes successfully; entries that fail send no
// update.
func WithProgress(ch chan<- Progress) ExtractorOption {
	return func(o *extractorOpts) { o.progressCh = ch }
}

// Extractor fans a PAK archive's entries out across a bounded worker
// pool, XOR-decoding each one and, when its content is itself a ".e"
// payload, descrambling and decompressing it too.
type Extractor struct {
	opts extractorOpts
}

// NewExtractor creates an Extractor configured by opts.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	o := extractorOpts{concurrency: runtime.GOMAXPROCS(-1)}
	for _, fn := range opts {
		fn(&o)
	}
	return &Extractor{opts: o}
}

// Run decodes every entry in entries against the archive bytes in
// fileData, concurrently, and returns a channel of results — one per
// entry, in completion order rather than entry order, since each
// entry's decode is independent (no CRC-ordered reassembly is needed
// the way pbzip2.Decompressor needs one for a single continuous
// stream). The returned channel is closed once every entry has been
// processed or ctx is done.
func (ex *Extractor) Run(ctx context.Context, fileData []byte, entries []pak.Entry) <-chan ExtractionResult {
	out := make(chan ExtractionResult, ex.opts.concurrency)
	work := make(chan pak.Entry, ex.opts.concurrency)

	var wg sync.WaitGroup
	wg.Add(ex.opts.concurrency)
	for i := 0; i < ex.opts.concurrency; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case e, ok := <-work:
					if !ok {
						return
					}
					ex.decodeOne(ctx, fileData, e, out)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, e := range entries {
			select {
			case work <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (ex *Extractor) decodeOne(ctx context.Context, fileData []byte, e pak.Entry, out chan<- ExtractionResult) {
	start := time.Now()
	const op = "gust.Extractor"

	end := e.DataOffset + uint64(e.Length)
	if end > uint64(len(fileData)) {
		sendResult(ctx, out, ExtractionResult{Entry: e, Err: coreerr.New(coreerr.SizeConstraint, op)})
		return
	}

	data := append([]byte(nil), fileData[e.DataOffset:end]...)
	pak.DecodeEntry(data, e.Key)

	if looksLikeEFile(data) {
		decoded, err := DecodeEFile(data, ex.opts.seeds)
		if err != nil {
			sendResult(ctx, out, ExtractionResult{Entry: e, Err: err})
			return
		}
		data = decoded
	}

	sendResult(ctx, out, ExtractionResult{Entry: e, Data: data})
	if ex.opts.progressCh != nil {
		select {
		case ex.opts.progressCh <- Progress{Duration: time.Since(start), Entry: e, Size: len(data)}:
		case <-ctx.Done():
		}
	}
}

func looksLikeEFile(b []byte) bool {
	return len(b) >= eFileHeaderSize && binary.BigEndian.Uint32(b[0:4]) == eFileTypeTag
}

func sendResult(ctx context.Context, out chan<- ExtractionResult, r ExtractionResult) {
	select {
	case out <- r:
	case <-ctx.Done():
	}
}
