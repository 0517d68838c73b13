// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package evgen

import "errors"

var (
	// ErrInvalidParameter defines a value for invalid parameter errors
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrConfiguration is returned when a writer cannot be constructed from
	// its configuration: a malformed connection string, a missing key or an
	// inaccessible destination.
	ErrConfiguration = errors.New("configuration error")

	// ErrSink is returned when an event could not be written or published.
	ErrSink = errors.New("sink error")

	// ErrMalformedEvent is returned when an event is missing a field the
	// writer requires, or the field has the wrong type.
	ErrMalformedEvent = errors.New("malformed event")

	// ErrTransport marks a failure in the transport beneath a remote writer.
	// Writers that retry only do so for errors wrapping ErrTransport.
	ErrTransport = errors.New("transport failure")

	// ErrClosed is returned by Send once the writer has been closed.
	ErrClosed = errors.New("writer is closed")
)
