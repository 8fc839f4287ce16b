// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/grailbio/base/file"
)

// openFileOrURL opens name, which may be a local path, an s3:// path,
// or an http(s):// URL, returning a reader over its contents (closing
// it releases the underlying file or response) and its declared size
// (-1 if unknown).
func openFileOrURL(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		resp, err := http.Get(name)
		if err != nil {
			return nil, 0, err
		}
		return resp.Body, resp.ContentLength, nil
	}
	info, err := file.Stat(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	f, err := file.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	return readCloserFunc{Reader: f.Reader(ctx), close: func() error { return f.Close(ctx) }}, info.Size(), nil
}

type readCloserFunc struct {
	io.Reader
	close func() error
}

func (r readCloserFunc) Close() error { return r.close() }

// createFile creates name (a local path or s3:// path) for writing,
// creating any missing parent directories for local paths first.
func createFile(ctx context.Context, name string) (io.WriteCloser, error) {
	if !strings.Contains(name, "://") {
		if dir := parentDir(name); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
		}
	}
	f, err := file.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return writeCloserFunc{Writer: f.Writer(ctx), close: func() error { return f.Close(ctx) }}, nil
}

type writeCloserFunc struct {
	io.Writer
	close func() error
}

func (w writeCloserFunc) Close() error { return w.close() }

func parentDir(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return ""
	}
	return path[:i]
}
