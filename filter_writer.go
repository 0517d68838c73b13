// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package evgen

import (
	"context"
	"fmt"
)

// Predicate returns true if we want to keep the Event.
type Predicate func(e *Event) (bool, error)

// FilterWriter passes events its Predicate keeps on to Next and silently drops
// the rest.
type FilterWriter struct {
	Predicate Predicate
	Next      Writer
}

var _ Writer = &FilterWriter{}

func (f *FilterWriter) Send(ctx context.Context, e *Event) error {
	const op = "evgen.(FilterWriter).Send"
	if f.Predicate == nil {
		return fmt.Errorf("%s: missing predicate: %w", op, ErrInvalidParameter)
	}
	if f.Next == nil {
		return fmt.Errorf("%s: missing next writer: %w", op, ErrInvalidParameter)
	}

	// Use the predicate to see if we want to keep the event.
	keep, err := f.Predicate(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !keep {
		return nil
	}
	return f.Next.Send(ctx, e)
}

// Close closes the next writer.
func (f *FilterWriter) Close() error {
	if f.Next == nil {
		return nil
	}
	return f.Next.Close()
}
