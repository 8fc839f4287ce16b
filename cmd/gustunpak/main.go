// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command gustunpak unpacks Gust PAK archives and decodes standalone
// ".e" assets. Inputs may be local paths, S3 paths, or HTTP(S) URLs.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/spf13/cobra"
)

func init() {
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

func main() {
	root := &cobra.Command{
		Use:   "gustunpak",
		Short: "Unpack Gust PAK archives and decode \".e\" assets",
	}
	root.AddCommand(newPakCommand())
	root.AddCommand(newDescrambleCommand())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "gustunpak:", err)
		os.Exit(1)
	}
}
