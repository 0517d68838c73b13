// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package kafka implements an evgen.Writer which publishes events to a Kafka
// topic.
package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	"github.com/hashicorp/evgen"
	"github.com/hashicorp/go-hclog"
)

// Writer publishes each formatted event as one message with a synchronous
// producer. Retries are left to the producer's own configuration.
type Writer struct {
	topic     string
	keyField  string
	formatter evgen.Formatter
	logger    hclog.Logger

	producer sarama.SyncProducer
	closed   bool
	lock     sync.Mutex
}

var _ evgen.Writer = &Writer{}

// New creates a producer connected to brokers and returns a Writer
// publishing to topic.
func New(brokers []string, topic string, opt ...Option) (*Writer, error) {
	const op = "kafka.New"
	if len(brokers) == 0 {
		return nil, fmt.Errorf("%s: missing brokers: %w", op, evgen.ErrConfiguration)
	}
	opts := getOpts(opt...)
	p, err := sarama.NewSyncProducer(brokers, parseConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create producer: %w: %w", op, evgen.ErrConfiguration, err)
	}
	w, err := NewWithProducer(p, topic, opt...)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}

// NewWithProducer returns a Writer publishing to topic through p. Closing the
// Writer closes p.
func NewWithProducer(p sarama.SyncProducer, topic string, opt ...Option) (*Writer, error) {
	const op = "kafka.NewWithProducer"
	if p == nil {
		return nil, fmt.Errorf("%s: missing producer: %w", op, evgen.ErrInvalidParameter)
	}
	if topic == "" {
		return nil, fmt.Errorf("%s: missing topic: %w", op, evgen.ErrConfiguration)
	}
	opts := getOpts(opt...)
	return &Writer{
		topic:     topic,
		keyField:  opts.withKeyField,
		formatter: opts.withFormatter,
		logger:    opts.withLogger,
		producer:  p,
	}, nil
}

func parseConfig(opts options) *sarama.Config {
	config := sarama.NewConfig()

	if opts.withMaxMessageBytes > 0 {
		config.Producer.MaxMessageBytes = opts.withMaxMessageBytes
	}
	if opts.withRetryMax > 0 {
		config.Producer.Retry.Max = opts.withRetryMax
	}
	if opts.withRetryBackoff > 0 {
		config.Producer.Retry.Backoff = opts.withRetryBackoff
	}

	// required by the SyncProducer
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	return config
}

// Send formats the event and publishes it to the topic.
func (w *Writer) Send(_ context.Context, e *evgen.Event) error {
	const op = "kafka.(Writer).Send"
	if e == nil {
		return fmt.Errorf("%s: missing event: %w", op, evgen.ErrInvalidParameter)
	}
	val, err := w.formatter.Format(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: w.topic,
		Value: sarama.StringEncoder(val),
	}
	if w.keyField != "" {
		if k, ok := e.Get(w.keyField); ok {
			msg.Key = sarama.StringEncoder(evgen.FormatValue(k))
		}
	}

	w.lock.Lock()
	defer w.lock.Unlock()
	if w.closed {
		return fmt.Errorf("%s: %w: %w", op, evgen.ErrSink, evgen.ErrClosed)
	}
	partition, offset, err := w.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("%s: failed to send message: %w: %w", op, evgen.ErrSink, err)
	}
	w.logger.Trace("sent message", "topic", w.topic, "partition", partition, "offset", offset)
	return nil
}

// Close closes the producer.
func (w *Writer) Close() error {
	const op = "kafka.(Writer).Close"
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.producer.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
