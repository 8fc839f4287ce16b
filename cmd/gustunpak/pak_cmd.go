// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/schollz/progressbar/v2"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/healingbrew/gust-tools/gust"
	"github.com/healingbrew/gust-tools/gustseed"
	"github.com/healingbrew/gust-tools/internal/scramble"
	"github.com/healingbrew/gust-tools/pak"
)

type pakFlags struct {
	outputDir    string
	seedCatalog  string
	title        string
	include      []string
	exclude      []string
	concurrency  int
	listOnly     bool
	fingerprint  bool
	progressBars bool
}

func newPakCommand() *cobra.Command {
	fl := &pakFlags{concurrency: runtime.GOMAXPROCS(-1)}
	cmd := &cobra.Command{
		Use:   "pak <archive>",
		Short: "List or extract a Gust PAK archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPak(cmd.Context(), fl, args[0])
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&fl.outputDir, "output-dir", ".", "directory to extract into")
	flags.StringVar(&fl.seedCatalog, "seeds-catalog", "", "path to a seed catalog JSON document, used for entries whose content is a \".e\" payload (optional; when omitted, zero-valued seeds are used)")
	flags.StringVar(&fl.title, "title", "", "title ID to look up in the seed catalog")
	flags.StringSliceVar(&fl.include, "include", nil, "glob patterns an entry's path must match to be extracted")
	flags.StringSliceVar(&fl.exclude, "exclude", nil, "glob patterns that exclude a matching entry from extraction")
	flags.IntVar(&fl.concurrency, "concurrency", fl.concurrency, "number of entries to decode concurrently")
	flags.BoolVar(&fl.listOnly, "list", false, "print the unpack table without extracting")
	flags.BoolVar(&fl.fingerprint, "fingerprint", false, "hash each decoded entry with xxhash and print the digest")
	flags.BoolVar(&fl.progressBars, "progress", true, "display a progress bar while extracting")
	return cmd
}

func matchesFilters(name string, include, exclude []string) (bool, error) {
	for _, pattern := range exclude {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, err
		}
		if ok {
			return false, nil
		}
	}
	if len(include) == 0 {
		return true, nil
	}
	for _, pattern := range include {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func runPak(ctx context.Context, fl *pakFlags, archivePath string) error {
	rd, _, err := openFileOrURL(ctx, archivePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer rd.Close()

	raw, err := ioutil.ReadAll(rd)
	if err != nil {
		return fmt.Errorf("reading %s: %w", archivePath, err)
	}

	header, entries, err := pak.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing PAK table: %w", err)
	}
	if !header.Canonical() {
		fmt.Fprintln(os.Stderr, "WARNING: PAK header signature does not match the expected values")
	}
	if header.Suspicious() {
		fmt.Fprintln(os.Stderr, "WARNING: entry count looks implausibly large for a real archive")
	}

	var filtered []pak.Entry
	for _, e := range entries {
		ok, err := matchesFilters(e.Filename, fl.include, fl.exclude)
		if err != nil {
			return fmt.Errorf("evaluating glob filters: %w", err)
		}
		if ok {
			filtered = append(filtered, e)
		}
	}

	fmt.Println("OFFSET    SIZE     NAME")
	for _, e := range filtered {
		marker := ' '
		if e.SkipDecode {
			marker = '*'
		}
		fmt.Printf("%09x %08x %s%c\n", e.DataOffset, e.Length, e.Filename, marker)
	}
	if fl.listOnly {
		return nil
	}

	seeds, err := loadSeedsIfNeeded(fl.seedCatalog, fl.title, filtered)
	if err != nil {
		return err
	}

	isTTY := terminal.IsTerminal(int(os.Stdout.Fd()))
	var bar *progressbar.ProgressBar
	if fl.progressBars {
		wr := os.Stdout
		if !isTTY {
			wr = os.Stderr
		}
		bar = progressbar.NewOptions(len(filtered),
			progressbar.OptionSetWriter(wr),
			progressbar.OptionSetPredictTime(true))
		bar.RenderBlank()
	}

	ex := gust.NewExtractor(gust.WithConcurrency(fl.concurrency), gust.WithSeeds(seeds))
	for r := range ex.Run(ctx, raw, filtered) {
		if bar != nil {
			bar.Add(1)
		}
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s: %v\n", r.Entry.Filename, r.Err)
			continue
		}
		if err := writeExtractedEntry(ctx, fl.outputDir, r, fl.fingerprint); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s: %v\n", r.Entry.Filename, err)
		}
	}
	return nil
}

func loadSeedsIfNeeded(catalogPath, title string, entries []pak.Entry) (seeds scramble.Seeds, err error) {
	needsSeeds := false
	for _, e := range entries {
		if !e.SkipDecode {
			needsSeeds = true
			break
		}
	}
	if !needsSeeds || catalogPath == "" {
		return seeds, nil
	}
	catalog, err := gustseed.Load(catalogPath)
	if err != nil {
		return seeds, err
	}
	return catalog.Lookup(title)
}

func writeExtractedEntry(ctx context.Context, outputDir string, r gust.ExtractionResult, fingerprint bool) error {
	path := filepath.Join(outputDir, r.Entry.Filename)
	wr, err := createFile(ctx, path)
	if err != nil {
		return err
	}
	defer wr.Close()
	if _, err := wr.Write(r.Data); err != nil {
		return err
	}
	if fingerprint {
		fmt.Printf("%016x  %s\n", xxhash.Sum64(r.Data), r.Entry.Filename)
	}
	return nil
}
