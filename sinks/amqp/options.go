// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package amqp

import (
	"github.com/hashicorp/evgen"
	"github.com/hashicorp/go-hclog"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(*options)

type options struct {
	withFormatter   evgen.Formatter
	withLogger      hclog.Logger
	withContentType string
}

func getDefaultOptions() options {
	return options{
		withFormatter:   &evgen.CSVFormatter{},
		withLogger:      hclog.NewNullLogger(),
		withContentType: "text/plain",
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

// WithFormatter sets the Formatter used to render message bodies.
func WithFormatter(f evgen.Formatter) Option {
	return func(o *options) {
		if f != nil {
			o.withFormatter = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.withLogger = l
		}
	}
}

// WithContentType sets the content type property of published messages.
func WithContentType(ct string) Option {
	return func(o *options) {
		o.withContentType = ct
	}
}
