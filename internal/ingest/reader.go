// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ingest reads local files into attachments and watches their
// source paths for changes.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jeranaias/battery-assistant/internal/model"
)

// ErrEmptyFile is returned for files with no content.
var ErrEmptyFile = errors.New("file is empty")

// ReadError reports which file in a batch could not be read.
type ReadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// Reader turns files on disk into attachments.
type Reader struct {
	logger   *zap.Logger
	readFile func(string) ([]byte, error)
}

// NewReader creates a Reader. A nil logger disables logging.
func NewReader(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger, readFile: os.ReadFile}
}

// ReadFiles reads every path concurrently. Either all files are returned, in
// the order given, or none are and the first failure is reported.
func (r *Reader) ReadFiles(ctx context.Context, paths []string) ([]model.Attachment, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	out := make([]model.Attachment, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return &ReadError{Path: path, Err: err}
			}
			a, err := r.readOne(path)
			if err != nil {
				return &ReadError{Path: path, Err: err}
			}
			out[i] = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Warn("attachment batch discarded", zap.Int("files", len(paths)), zap.Error(err))
		return nil, err
	}

	r.logger.Debug("attachment batch read", zap.Int("files", len(paths)))
	return out, nil
}

func (r *Reader) readOne(path string) (model.Attachment, error) {
	raw, err := r.readFile(path)
	if err != nil {
		return model.Attachment{}, err
	}
	if len(raw) == 0 {
		return model.Attachment{}, ErrEmptyFile
	}

	text, err := DecodeText(raw)
	if err != nil {
		return model.Attachment{}, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return model.Attachment{
		Name:    filepath.Base(path),
		Content: text,
		Path:    abs,
		Size:    int64(len(raw)),
	}, nil
}

// DecodeText decodes raw file bytes as UTF-8. A leading byte order mark
// selects UTF-16 instead and is stripped; invalid sequences become U+FFFD.
func DecodeText(raw []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}
