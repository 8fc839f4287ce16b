// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gust

import (
	"context"
	"testing"
	"time"

	"github.com/healingbrew/gust-tools/pak"
)

func TestExtractorRunPlainEntries(t *testing.T) {
	fileData := []byte("headerpayloadAAApayloadBBB")
	entries := []pak.Entry{
		{Filename: "a.txt", DataOffset: 6, Length: 10}, // "payloadAAA"
		{Filename: "b.txt", DataOffset: 16, Length: 10}, // "payloadBBB"
	}

	ex := NewExtractor(WithConcurrency(2))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results := map[string][]byte{}
	for r := range ex.Run(ctx, fileData, entries) {
		if r.Err != nil {
			t.Fatalf("entry %s: %v", r.Entry.Filename, r.Err)
		}
		results[r.Entry.Filename] = r.Data
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if string(results["a.txt"]) != "payloadAAA" {
		t.Fatalf("a.txt = %q", results["a.txt"])
	}
	if string(results["b.txt"]) != "payloadBBB" {
		t.Fatalf("b.txt = %q", results["b.txt"])
	}
}

func TestExtractorRunOutOfBoundsEntry(t *testing.T) {
	fileData := []byte("short")
	entries := []pak.Entry{{Filename: "oops.bin", DataOffset: 0, Length: 100}}

	ex := NewExtractor(WithConcurrency(1))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got ExtractionResult
	for r := range ex.Run(ctx, fileData, entries) {
		got = r
	}
	if got.Err == nil {
		t.Fatalf("expected an error for an out-of-bounds entry")
	}
}

func TestExtractorRunProgress(t *testing.T) {
	fileData := []byte("xxxxxxpayload")
	entries := []pak.Entry{{Filename: "c.txt", DataOffset: 6, Length: 7}}

	progress := make(chan Progress, 1)
	ex := NewExtractor(WithConcurrency(1), WithProgress(progress))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for range ex.Run(ctx, fileData, entries) {
	}

	select {
	case p := <-progress:
		if p.Size != 7 {
			t.Fatalf("progress size = %d, want 7", p.Size)
		}
	default:
		t.Fatalf("expected a progress update")
	}
}
