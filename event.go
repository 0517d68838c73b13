// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package evgen

import (
	"fmt"
	"time"
)

const (
	// FieldSessionID is the field DirectoryWriter uses to route events.
	FieldSessionID = "SessionId"

	// FieldTimeStamp is the field remote writers normalise before sending.
	FieldTimeStamp = "TimeStamp"
)

// Field is a single named value of an Event.
type Field struct {
	Name  string
	Value interface{}
}

// An Event is an ordered collection of named values, analogous to a log
// entry. Values are strings, numbers, bools or time.Time. Field order is the
// order in which names were first set and is preserved by formatters.
//
// An Event is owned by its producer; writers do not keep it after Send
// returns.
type Event struct {
	keys   []string
	values map[string]interface{}
}

// NewEvent creates an Event holding fields in the given order.
func NewEvent(fields ...Field) *Event {
	e := &Event{
		keys:   make([]string, 0, len(fields)),
		values: make(map[string]interface{}, len(fields)),
	}
	for _, f := range fields {
		e.Set(f.Name, f.Value)
	}
	return e
}

// Set stores value under name. Overwriting an existing field keeps its
// original position.
func (e *Event) Set(name string, value interface{}) {
	if e.values == nil {
		e.values = map[string]interface{}{}
	}
	if _, ok := e.values[name]; !ok {
		e.keys = append(e.keys, name)
	}
	e.values[name] = value
}

// Get returns the value stored under name.
func (e *Event) Get(name string) (interface{}, bool) {
	if e == nil || e.values == nil {
		return nil, false
	}
	v, ok := e.values[name]
	return v, ok
}

// Keys returns the field names in order.
func (e *Event) Keys() []string {
	if e == nil {
		return nil
	}
	keys := make([]string, len(e.keys))
	copy(keys, e.keys)
	return keys
}

// Len returns the number of fields.
func (e *Event) Len() int {
	if e == nil {
		return 0
	}
	return len(e.keys)
}

// Fields returns the fields in order.
func (e *Event) Fields() []Field {
	if e == nil {
		return nil
	}
	fields := make([]Field, 0, len(e.keys))
	for _, k := range e.keys {
		fields = append(fields, Field{Name: k, Value: e.values[k]})
	}
	return fields
}

// Clone returns a copy of the Event that can be mutated independently. Values
// themselves are not deep copied.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	return NewEvent(e.Fields()...)
}

// SessionID returns the event's SessionId field.
func (e *Event) SessionID() (string, error) {
	const op = "evgen.(Event).SessionID"
	v, ok := e.Get(FieldSessionID)
	if !ok {
		return "", fmt.Errorf("%s: missing %s field: %w", op, FieldSessionID, ErrMalformedEvent)
	}
	id, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: %s field is %T, not a string: %w", op, FieldSessionID, v, ErrMalformedEvent)
	}
	return id, nil
}

// Timestamp returns the event's TimeStamp field.
func (e *Event) Timestamp() (time.Time, error) {
	const op = "evgen.(Event).Timestamp"
	v, ok := e.Get(FieldTimeStamp)
	if !ok {
		return time.Time{}, fmt.Errorf("%s: missing %s field: %w", op, FieldTimeStamp, ErrMalformedEvent)
	}
	ts, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("%s: %s field is %T, not a timestamp: %w", op, FieldTimeStamp, v, ErrMalformedEvent)
	}
	return ts, nil
}

// ISOTimestamp renders t in UTC as an ISO-8601 string with a trailing Z.
// Microseconds are included only when non-zero, so 2024-01-01 midnight
// renders as "2024-01-01T00:00:00Z".
func ISOTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format("2006-01-02T15:04:05") + "Z"
	}
	return t.Format("2006-01-02T15:04:05.000000") + "Z"
}
