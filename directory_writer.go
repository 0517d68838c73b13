// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package evgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// DirectoryWriter writes events to one file per session inside a directory.
// The file for an event is named after its SessionId field plus the
// configured extension. Only the file of the current session is open; when
// an event for a different session arrives the current file is closed and
// the new session's file is opened.
type DirectoryWriter struct {
	dir       string
	ext       string
	mode      Mode
	perm      os.FileMode
	formatter Formatter
	logger    hclog.Logger

	session string
	f       *os.File
	closed  bool
	l       sync.Mutex
}

var _ Writer = &DirectoryWriter{}

// NewDirectoryWriter returns a DirectoryWriter for dir, creating dir if it
// does not exist. Creation is idempotent, so several writers racing to
// create the same directory all succeed. Supported options are
// WithFormatter, WithExtension, WithMode, WithFilePerm and WithLogger.
func NewDirectoryWriter(dir string, opt ...Option) (*DirectoryWriter, error) {
	const op = "evgen.NewDirectoryWriter"
	if dir == "" {
		return nil, fmt.Errorf("%s: missing directory: %w", op, ErrInvalidParameter)
	}
	opts := getOpts(opt...)
	if err := opts.withMode.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrConfiguration, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrConfiguration, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %s is not a directory: %w", op, dir, ErrConfiguration)
	}
	return &DirectoryWriter{
		dir:       dir,
		ext:       opts.withExtension,
		mode:      opts.withMode,
		perm:      opts.withFilePerm,
		formatter: opts.withFormatter,
		logger:    opts.withLogger,
	}, nil
}

// Send writes the event to the file of its session, switching files when the
// session differs from that of the previous event.
func (w *DirectoryWriter) Send(_ context.Context, e *Event) error {
	const op = "evgen.(DirectoryWriter).Send"
	if e == nil {
		return fmt.Errorf("%s: missing event: %w", op, ErrInvalidParameter)
	}
	session, err := e.SessionID()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := validSessionID(session); err != nil {
		return fmt.Errorf("%s: %w", op, err)
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
	if w.f == nil || w.session != session {
		if err := w.switchSession(session); err != nil {
			return fmt.Errorf("%s: %w: %w", op, ErrSink, err)
		}
	}
	if _, err := w.f.Write(terminate(s)); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrSink, err)
	}
	return nil
}

// switchSession closes the current session's file and opens the file for
// session. The caller must hold w.l.
func (w *DirectoryWriter) switchSession(session string) error {
	if w.f != nil {
		err := w.f.Close()
		w.f = nil
		w.session = ""
		if err != nil {
			return err
		}
	}
	path := filepath.Join(w.dir, session+w.ext)
	f, err := os.OpenFile(path, w.mode.flags(), w.perm)
	if err != nil {
		return err
	}
	w.logger.Debug("switched session", "session", session, "path", path)
	w.f = f
	w.session = session
	return nil
}

// CurrentSession returns the session whose file is open, or "" if none is.
func (w *DirectoryWriter) CurrentSession() string {
	w.l.Lock()
	defer w.l.Unlock()
	return w.session
}

// Close closes the current session's file.
func (w *DirectoryWriter) Close() error {
	const op = "evgen.(DirectoryWriter).Close"
	w.l.Lock()
	defer w.l.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.session = ""
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
func (w *DirectoryWriter) Name() string {
	return fmt.Sprintf("directory:%s", w.dir)
}

// validSessionID rejects session ids that would name a file outside the
// writer's directory.
func validSessionID(id string) error {
	const op = "evgen.validSessionID"
	switch {
	case id == "", id == ".", id == "..":
		return fmt.Errorf("%s: %q is not a valid session id: %w", op, id, ErrMalformedEvent)
	case strings.ContainsAny(id, `/\`), strings.ContainsRune(id, 0):
		return fmt.Errorf("%s: session id %q contains a path separator: %w", op, id, ErrMalformedEvent)
	}
	return nil
}
