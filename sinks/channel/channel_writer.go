// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package channel implements an evgen.Writer which delivers events to a Go
// channel, for consumers running in the same process.
package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/evgen"
)

// Writer is a writer which sends the event to a channel
type Writer struct {
	mu sync.Mutex

	eventChan chan *evgen.Event
}

var _ evgen.Writer = &Writer{}

// NewWriter creates a channel Writer
func NewWriter(c chan *evgen.Event) (*Writer, error) {
	if c == nil {
		return nil, errors.New("missing event channel")
	}

	return &Writer{
		eventChan: c,
	}, nil
}

// Send delivers the event on the channel, blocking until it is received or
// ctx is done. The event is delivered as is; receivers must treat it as
// read-only.
func (c *Writer) Send(ctx context.Context, e *evgen.Event) error {
	const op = "channel.(Writer).Send"
	if e == nil {
		return fmt.Errorf("%s: missing event: %w", op, evgen.ErrInvalidParameter)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case c.eventChan <- e:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w: %w", op, evgen.ErrSink, ctx.Err())
	}
}

// Close is a no op; the channel belongs to the caller.
func (c *Writer) Close() error {
	return nil
}
