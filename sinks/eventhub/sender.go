// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package eventhub

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs"
	"github.com/hashicorp/evgen"
)

// Sender publishes a single payload to the event hub it is scoped to.
// Failures the Writer may retry must wrap evgen.ErrTransport.
type Sender interface {
	SendEvent(ctx context.Context, body []byte, messageID string) error
	Close(ctx context.Context) error
}

// producerSender is a Sender backed by an Azure Event Hubs producer client.
type producerSender struct {
	client      *azeventhubs.ProducerClient
	contentType string
}

var _ Sender = &producerSender{}

func newProducerSender(cs *ConnectionString, hub, contentType string) (*producerSender, error) {
	const op = "eventhub.newProducerSender"
	client, err := azeventhubs.NewProducerClientFromConnectionString(cs.String(), hub, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, evgen.ErrConfiguration, err)
	}
	return &producerSender{client: client, contentType: contentType}, nil
}

// SendEvent sends body as a batch of one event.
func (s *producerSender) SendEvent(ctx context.Context, body []byte, messageID string) error {
	const op = "eventhub.(producerSender).SendEvent"
	batch, err := s.client.NewEventDataBatch(ctx, nil)
	if err != nil {
		return classify(op, err)
	}
	ed := &azeventhubs.EventData{
		Body:      body,
		MessageID: &messageID,
	}
	if s.contentType != "" {
		ed.ContentType = &s.contentType
	}
	if err := batch.AddEventData(ed, nil); err != nil {
		return classify(op, err)
	}
	if err := s.client.SendEventDataBatch(ctx, batch, nil); err != nil {
		return classify(op, err)
	}
	return nil
}

func (s *producerSender) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// classify marks err as a transport failure unless retrying cannot help: the
// event is too large for the hub or the caller gave up.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, azeventhubs.ErrEventDataTooLarge),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, evgen.ErrTransport, err)
	}
}
