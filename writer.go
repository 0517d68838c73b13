// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package evgen

import "context"

// Writer sends events to a sink. Each Writer owns one Formatter and one
// underlying resource (a stream, file or transport client) which it releases
// on Close. Send is synchronous: when it returns the event has been written
// or has failed, so events leave a Writer in the order they were sent.
type Writer interface {
	// Send formats the event and transmits it to the sink.
	Send(ctx context.Context, e *Event) error

	// Close releases the sink's resources. It is safe to call more than once.
	Close() error
}
