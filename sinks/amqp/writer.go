// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package amqp implements an evgen.Writer which publishes events to a queue
// on an AMQP 0-9-1 broker such as RabbitMQ.
package amqp

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/evgen"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the subset of *amqp.Channel used by Writer.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var _ Channel = (*amqp.Channel)(nil)

// Writer publishes each formatted event as the body of one message to a
// declared queue, through the broker's default exchange. Publishing does not
// wait for broker confirmation and failures are not retried.
type Writer struct {
	queue       string
	contentType string
	formatter   evgen.Formatter
	logger      hclog.Logger

	conn   io.Closer
	ch     Channel
	closed bool
	l      sync.Mutex
}

var _ evgen.Writer = &Writer{}

// New connects to the broker at url, opens a channel and declares queue.
func New(url, queue string, opt ...Option) (*Writer, error) {
	const op = "amqp.New"
	if url == "" {
		return nil, fmt.Errorf("%s: missing url: %w", op, evgen.ErrConfiguration)
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to connect: %w: %w", op, evgen.ErrConfiguration, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: unable to open channel: %w: %w", op, evgen.ErrConfiguration, err)
	}
	w, err := newWriter(conn, ch, queue, opt...)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}

// NewWithChannel returns a Writer publishing on an existing channel and
// declares queue on it. Closing the Writer closes the channel.
func NewWithChannel(ch Channel, queue string, opt ...Option) (*Writer, error) {
	const op = "amqp.NewWithChannel"
	if ch == nil {
		return nil, fmt.Errorf("%s: missing channel: %w", op, evgen.ErrInvalidParameter)
	}
	w, err := newWriter(nil, ch, queue, opt...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}

func newWriter(conn io.Closer, ch Channel, queue string, opt ...Option) (*Writer, error) {
	const op = "amqp.newWriter"
	if queue == "" {
		return nil, fmt.Errorf("%s: missing queue: %w", op, evgen.ErrConfiguration)
	}
	opts := getOpts(opt...)

	// declaring a queue that already exists with the same arguments is a no-op
	if _, err := ch.QueueDeclare(queue, false, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("%s: unable to declare queue %q: %w: %w", op, queue, evgen.ErrConfiguration, err)
	}
	opts.withLogger.Debug("declared queue", "queue", queue)

	return &Writer{
		queue:       queue,
		contentType: opts.withContentType,
		formatter:   opts.withFormatter,
		logger:      opts.withLogger,
		conn:        conn,
		ch:          ch,
	}, nil
}

// Send formats the event and publishes it to the queue.
func (w *Writer) Send(ctx context.Context, e *evgen.Event) error {
	const op = "amqp.(Writer).Send"
	if e == nil {
		return fmt.Errorf("%s: missing event: %w", op, evgen.ErrInvalidParameter)
	}
	body, err := w.formatter.Format(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.l.Lock()
	defer w.l.Unlock()
	if w.closed {
		return fmt.Errorf("%s: %w: %w", op, evgen.ErrSink, evgen.ErrClosed)
	}
	msg := amqp.Publishing{
		ContentType: w.contentType,
		Body:        []byte(body),
	}
	if err := w.ch.PublishWithContext(ctx, "", w.queue, false, false, msg); err != nil {
		return fmt.Errorf("%s: unable to publish to %q: %w: %w", op, w.queue, evgen.ErrSink, err)
	}
	return nil
}

// Close closes the channel and, if the Writer dialed it, the connection.
func (w *Writer) Close() error {
	const op = "amqp.(Writer).Close"
	w.l.Lock()
	defer w.l.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	var result *multierror.Error
	if err := w.ch.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: channel: %w", op, err))
	}
	if w.conn != nil {
		if err := w.conn.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: connection: %w", op, err))
		}
	}
	return result.ErrorOrNil()
}
