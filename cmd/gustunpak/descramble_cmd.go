// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io/ioutil"

	"github.com/spf13/cobra"

	"github.com/healingbrew/gust-tools/gust"
	"github.com/healingbrew/gust-tools/gustseed"
	"github.com/healingbrew/gust-tools/internal/scramble"
)

type descrambleFlags struct {
	output      string
	seedCatalog string
	title       string
}

func newDescrambleCommand() *cobra.Command {
	fl := &descrambleFlags{}
	cmd := &cobra.Command{
		Use:   "descramble <file.e>",
		Short: "Decode a standalone \".e\" asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescramble(cmd.Context(), fl, args[0])
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&fl.output, "output", "", "path to write the decoded bytes to (defaults to <input> with the .e suffix stripped, or <input>.dec if it has none)")
	flags.StringVar(&fl.seedCatalog, "seeds-catalog", "", "path to a seed catalog JSON document")
	flags.StringVar(&fl.title, "title", "", "title ID to look up in the seed catalog")
	return cmd
}

func runDescramble(ctx context.Context, fl *descrambleFlags, inputPath string) error {
	rd, _, err := openFileOrURL(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputPath, err)
	}
	defer rd.Close()

	raw, err := ioutil.ReadAll(rd)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	var seeds scramble.Seeds
	if fl.seedCatalog != "" {
		catalog, err := gustseed.Load(fl.seedCatalog)
		if err != nil {
			return err
		}
		seeds, err = catalog.Lookup(fl.title)
		if err != nil {
			return err
		}
	}

	decoded, err := gust.DecodeEFile(raw, seeds)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", inputPath, err)
	}

	outputPath := fl.output
	if outputPath == "" {
		outputPath = strippedSuffix(inputPath)
	}
	wr, err := createFile(ctx, outputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	defer wr.Close()
	if _, err := wr.Write(decoded); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	fmt.Printf("%s -> %s (%d bytes)\n", inputPath, outputPath, len(decoded))
	return nil
}

// strippedSuffix drops a trailing ".e" from path, if present; otherwise
// it appends ".dec".
func strippedSuffix(path string) string {
	const suffix = ".e"
	if len(path) > len(suffix) && path[len(path)-len(suffix):] == suffix {
		return path[:len(path)-len(suffix)]
	}
	return path + ".dec"
}
