// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package evgen

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// ConsoleWriter writes each formatted event as a line to an io.Writer,
// os.Stdout unless WithOutput says otherwise.
type ConsoleWriter struct {
	formatter Formatter
	out       io.Writer
	l         sync.Mutex
}

var _ Writer = &ConsoleWriter{}

// NewConsoleWriter creates a ConsoleWriter. Supported options are
// WithFormatter and WithOutput.
func NewConsoleWriter(opt ...Option) (*ConsoleWriter, error) {
	const op = "evgen.NewConsoleWriter"
	opts := getOpts(opt...)
	if opts.withOutput == nil {
		return nil, fmt.Errorf("%s: missing output: %w", op, ErrInvalidParameter)
	}
	return &ConsoleWriter{
		formatter: opts.withFormatter,
		out:       opts.withOutput,
	}, nil
}

// Send writes the formatted event followed by a newline.
func (w *ConsoleWriter) Send(_ context.Context, e *Event) error {
	const op = "evgen.(ConsoleWriter).Send"
	if e == nil {
		return fmt.Errorf("%s: missing event: %w", op, ErrInvalidParameter)
	}
	s, err := w.formatter.Format(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.l.Lock()
	defer w.l.Unlock()
	if _, err := io.WriteString(w.out, s+"\n"); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrSink, err)
	}
	return nil
}

// Close does nothing; the output stream is not owned by the writer.
func (w *ConsoleWriter) Close() error { return nil }
