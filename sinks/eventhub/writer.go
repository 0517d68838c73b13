// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package eventhub implements an evgen.Writer which sends events to an Azure
// Event Hub. Events must carry a TimeStamp field holding a time.Time, which
// is sent as ISO-8601 text.
//
// Event Hubs ingestion has brief failures (throttling, reconnects) that heal
// on their own, so a failed send is retried once after a fixed pause. If the
// retry fails too the error is returned to the caller.
package eventhub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/evgen"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-uuid"
)

// maxRetries is the number of retries after the first attempt.
const maxRetries = 1

// Writer sends each formatted event to one event hub.
type Writer struct {
	hub       string
	formatter evgen.Formatter
	logger    hclog.Logger
	backoff   time.Duration

	sender Sender
	closed bool
	l      sync.Mutex
}

var _ evgen.Writer = &Writer{}

// New parses connectionString and returns a Writer sending to the event hub
// named hub in that namespace. If hub is empty the connection string's
// EntityPath is used.
func New(connectionString, hub string, opt ...Option) (*Writer, error) {
	const op = "eventhub.New"
	cs, err := ParseConnectionString(connectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	switch {
	case hub == "" && cs.EntityPath == "":
		return nil, fmt.Errorf("%s: missing event hub name: %w", op, evgen.ErrConfiguration)
	case hub == "":
		hub = cs.EntityPath
	case cs.EntityPath != "" && cs.EntityPath != hub:
		return nil, fmt.Errorf("%s: event hub %q does not match connection string EntityPath %q: %w", op, hub, cs.EntityPath, evgen.ErrConfiguration)
	}
	opts := getOpts(opt...)
	s, err := newProducerSender(cs, hub, opts.withContentType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opts.withLogger.Debug("created event hub producer", "namespace", cs.Namespace, "hub", hub)
	return NewWithSender(s, hub, opt...)
}

// NewWithSender returns a Writer which sends through s.
func NewWithSender(s Sender, hub string, opt ...Option) (*Writer, error) {
	const op = "eventhub.NewWithSender"
	if s == nil {
		return nil, fmt.Errorf("%s: missing sender: %w", op, evgen.ErrInvalidParameter)
	}
	if hub == "" {
		return nil, fmt.Errorf("%s: missing event hub name: %w", op, evgen.ErrConfiguration)
	}
	opts := getOpts(opt...)
	return &Writer{
		hub:       hub,
		formatter: opts.withFormatter,
		logger:    opts.withLogger,
		backoff:   opts.withRetryBackoff,
		sender:    s,
	}, nil
}

// Send formats the event with its TimeStamp rendered by evgen.ISOTimestamp
// and sends it. A send failing with a transport error is retried once after
// the backoff; if that fails as well an evgen.ErrSink error is returned.
// Other errors are returned without a retry.
//
// Once the event has been sent its TimeStamp field is replaced with the
// ISO-8601 text that was sent. An event that could not be sent is left
// unchanged and may be passed to Send again; a sent event may not, since its
// TimeStamp is no longer a time.Time.
func (w *Writer) Send(ctx context.Context, e *evgen.Event) error {
	const op = "eventhub.(Writer).Send"
	if e == nil {
		return fmt.Errorf("%s: missing event: %w", op, evgen.ErrInvalidParameter)
	}
	ts, err := e.Timestamp()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	normalized := evgen.ISOTimestamp(ts)
	out := e.Clone()
	out.Set(evgen.FieldTimeStamp, normalized)
	body, err := w.formatter.Format(out)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	messageID, err := uuid.GenerateUUID()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.l.Lock()
	defer w.l.Unlock()
	if w.closed {
		return fmt.Errorf("%s: %w: %w", op, evgen.ErrSink, evgen.ErrClosed)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(w.backoff), maxRetries), ctx)
	send := func() error {
		err := w.sender.SendEvent(ctx, []byte(body), messageID)
		if err != nil && !errors.Is(err, evgen.ErrTransport) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, d time.Duration) {
		w.logger.Warn("send to event hub failed, retrying", "hub", w.hub, "backoff", d, "error", err)
	}
	err = backoff.RetryNotify(send, b, notify)
	switch {
	case err == nil:
		e.Set(evgen.FieldTimeStamp, normalized)
		return nil
	case errors.Is(err, evgen.ErrTransport):
		w.logger.Error("event hub service unreachable", "hub", w.hub, "error", err)
		return fmt.Errorf("%s: cannot send message to event hub %q, service unreachable: %w: %w", op, w.hub, evgen.ErrSink, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, evgen.ErrSink, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// Close closes the sender.
func (w *Writer) Close() error {
	const op = "eventhub.(Writer).Close"
	w.l.Lock()
	defer w.l.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.sender.Close(context.Background()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
