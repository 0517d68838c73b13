// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package evgen

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

const (
	defaultFilePerm  os.FileMode = 0o600
	defaultDirPerm   os.FileMode = 0o700
	defaultExtension             = ".log"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(*options)

type options struct {
	withFormatter Formatter
	withLogger    hclog.Logger
	withMode      Mode
	withFilePerm  os.FileMode
	withExtension string
	withOutput    io.Writer
}

func getDefaultOptions() options {
	return options{
		withFormatter: &CSVFormatter{},
		withLogger:    hclog.NewNullLogger(),
		withMode:      ModeAppend,
		withFilePerm:  defaultFilePerm,
		withExtension: defaultExtension,
		withOutput:    os.Stdout,
	}
}

// getOpts iterates the inbound Options and returns a struct
func getOpts(opt ...Option) options {
	opts := getDefaultOptions()
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// WithFormatter sets the Formatter a writer uses. A nil Formatter leaves the
// default CSVFormatter in place.
func WithFormatter(f Formatter) Option {
	return func(o *options) {
		if f != nil {
			o.withFormatter = f
		}
	}
}

// WithLogger sets the logger a writer reports to.
func WithLogger(l hclog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.withLogger = l
		}
	}
}

// WithMode sets whether file writers append to or truncate existing files.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.withMode = m
	}
}

// WithFilePerm sets the permissions of files created by file writers.
func WithFilePerm(p os.FileMode) Option {
	return func(o *options) {
		if p != 0 {
			o.withFilePerm = p
		}
	}
}

// WithExtension sets the extension DirectoryWriter appends to session file
// names, including the leading dot.
func WithExtension(ext string) Option {
	return func(o *options) {
		o.withExtension = ext
	}
}

// WithOutput sets the stream ConsoleWriter writes to.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.withOutput = w
	}
}
