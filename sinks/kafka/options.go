// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package kafka

import (
	"time"

	"github.com/hashicorp/evgen"
	"github.com/hashicorp/go-hclog"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(*options)

type options struct {
	withFormatter       evgen.Formatter
	withLogger          hclog.Logger
	withMaxMessageBytes int
	withRetryMax        int
	withRetryBackoff    time.Duration
	withKeyField        string
}

func getDefaultOptions() options {
	return options{
		withFormatter: &evgen.CSVFormatter{},
		withLogger:    hclog.NewNullLogger(),
		withKeyField:  evgen.FieldSessionID,
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

// WithFormatter sets the Formatter used to render message values.
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

// WithMaxMessageBytes sets the maximum permitted size of a message (defaults
// to 1000000). Should be set equal to or smaller than the broker's
// `message.max.bytes`.
func WithMaxMessageBytes(n int) Option {
	return func(o *options) {
		o.withMaxMessageBytes = n
	}
}

// WithProducerRetry sets the total number of times the producer retries
// sending a message (default 3) and how long it waits for the cluster to
// settle between retries (default 100ms).
func WithProducerRetry(max int, backoff time.Duration) Option {
	return func(o *options) {
		o.withRetryMax = max
		o.withRetryBackoff = backoff
	}
}

// WithKeyField sets the event field used as the message key, so events of one
// session land on one partition. Defaults to SessionId; an empty name sends
// messages without a key.
func WithKeyField(name string) Option {
	return func(o *options) {
		o.withKeyField = name
	}
}
