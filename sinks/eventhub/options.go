// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package eventhub

import (
	"time"

	"github.com/hashicorp/evgen"
	"github.com/hashicorp/go-hclog"
)

// DefaultRetryBackoff is how long Send waits before its single retry.
const DefaultRetryBackoff = time.Second

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(*options)

type options struct {
	withFormatter    evgen.Formatter
	withLogger       hclog.Logger
	withRetryBackoff time.Duration
	withContentType  string
}

func getDefaultOptions() options {
	return options{
		withFormatter:    &evgen.CSVFormatter{},
		withLogger:       hclog.NewNullLogger(),
		withRetryBackoff: DefaultRetryBackoff,
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

// WithFormatter sets the Formatter used to render event bodies.
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

// WithRetryBackoff sets the pause before the retry of a failed send.
func WithRetryBackoff(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.withRetryBackoff = d
		}
	}
}

// WithContentType sets the content type of events sent through an Azure
// producer client.
func WithContentType(ct string) Option {
	return func(o *options) {
		o.withContentType = ct
	}
}
