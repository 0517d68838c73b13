// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package evgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// FileWriter writes each formatted event as a line to a single file which
// stays open for the lifetime of the writer.
type FileWriter struct {
	path      string
	mode      Mode
	perm      os.FileMode
	formatter Formatter
	logger    hclog.Logger

	f      *os.File
	closed bool
	l      sync.Mutex
}

var _ Writer = &FileWriter{}

// NewFileWriter opens path and returns a FileWriter for it. The parent
// directory is created if it does not exist. Supported options are
// WithFormatter, WithMode, WithFilePerm and WithLogger.
func NewFileWriter(path string, opt ...Option) (*FileWriter, error) {
	const op = "evgen.NewFileWriter"
	if path == "" {
		return nil, fmt.Errorf("%s: missing path: %w", op, ErrInvalidParameter)
	}
	opts := getOpts(opt...)
	if err := opts.withMode.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	w := &FileWriter{
		path:      path,
		mode:      opts.withMode,
		perm:      opts.withFilePerm,
		formatter: opts.withFormatter,
		logger:    opts.withLogger,
	}
	if err := w.open(w.mode); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrConfiguration, err)
	}
	return w, nil
}

func (w *FileWriter) open(mode Mode) error {
	if err := os.MkdirAll(filepath.Dir(w.path), defaultDirPerm); err != nil {
		return err
	}
	f, err := os.OpenFile(w.path, mode.flags(), w.perm)
	if err != nil {
		return err
	}
	w.f = f
	w.logger.Debug("opened file", "path", w.path, "mode", mode)
	return nil
}

// Send formats the event, terminates it with a newline if the formatter did
// not, and writes it to the file. Write errors are not retried.
func (w *FileWriter) Send(_ context.Context, e *Event) error {
	const op = "evgen.(FileWriter).Send"
	if e == nil {
		return fmt.Errorf("%s: missing event: %w", op, ErrInvalidParameter)
	}
	s, err := w.formatter.Format(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.l.Lock()
	defer w.l.Unlock()
	if w.closed {
		return fmt.Errorf("%s: %w: %w", op, ErrSink, ErrClosed)
	}
	if w.f == nil {
		// a previous Reopen failed, try again before giving up on the event
		if err := w.open(ModeAppend); err != nil {
			return fmt.Errorf("%s: %w: %w", op, ErrSink, err)
		}
	}
	if _, err := w.f.Write(terminate(s)); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrSink, err)
	}
	return nil
}

// Reopen closes the file and opens it again in append mode, so that a file
// moved aside by log rotation is recreated at the configured path.
func (w *FileWriter) Reopen() error {
	const op = "evgen.(FileWriter).Reopen"
	w.l.Lock()
	defer w.l.Unlock()
	if w.closed {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}

	if w.f != nil {
		err := w.f.Close()
		// Set to nil here so that even if we error out, on the next access open()
		// will be tried
		w.f = nil
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := w.open(ModeAppend); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close closes the file.
func (w *FileWriter) Close() error {
	const op = "evgen.(FileWriter).Close"
	w.l.Lock()
	defer w.l.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Name returns a representation of the writer's destination.
func (w *FileWriter) Name() string {
	return fmt.Sprintf("file:%s", w.path)
}
