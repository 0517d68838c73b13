// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package cloudevents implements an evgen.Formatter which wraps events in a
// CloudEvents 1.0 envelope (See: https://github.com/cloudevents/spec)
package cloudevents

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/evgen"
)

const (
	SpecVersion    = "1.0"     // SpecVersion defines the cloudevents spec version supported
	TextIndent     = "  "      // TextIndent defines the indent used by EncodingText
	DefaultIDField = "EventId" // DefaultIDField is the event field used as the cloudevent ID
)

// CloudEvent defines type which is used when formatting cloudevents.
//
// For more info on the fields see: https://github.com/cloudevents/spec)
type CloudEvent struct {
	// ID identifies the event, cannot be an empty and is required.  The
	// combination of Source + ID must be unique.  Events with the same Source +
	// ID can be assumed to be duplicates by consumers
	ID string `json:"id"`

	// Source identifies the context in which the event happened, it is a
	// URI-reference, cannot be empty and is required.
	Source string `json:"source"`

	// SpecVersion defines the version of CloudEvents that the event is using,
	// it cannot be empty and is required.
	SpecVersion string `json:"specversion"`

	// Type defines the event's type, cannot be empty and is required.
	Type string `json:"type"`

	// Data holds the event's fields, in order, as a JSON object.
	Data json.RawMessage `json:"data,omitempty"`

	// DataContentType defines the content type of the event's data value and is
	// optional.  If present it must adhere to:
	// https://datatracker.ietf.org/doc/html/rfc2046
	DataContentType string `json:"datacontenttype,omitempty"`

	// DataSchema is a URI-reference and is optional.
	DataSchema string `json:"dataschema,omitempty"`

	// Time is in format RFC 3339 and is optional
	Time *time.Time `json:"time,omitempty"`
}

// Formatter formats an evgen.Event as a CloudEvent in JSON.
type Formatter struct {
	// Source identifies the context where the cloudevents happen and is
	// required
	Source *url.URL

	// Schema is the JSON schema for the cloudevent data and is optional
	Schema *url.URL

	// Type is the cloudevent type and is required.
	Type string

	// IDField names the event field holding the cloudevent ID. Defaults to
	// DefaultIDField. Events without the field get an ID derived from the
	// source and the event's data, so formatting the same event twice gives
	// the same ID.
	IDField string

	// Encoding selects the envelope layout. If empty, EncodingJSON is used.
	Encoding Encoding
}

var _ evgen.Formatter = &Formatter{}

func (f *Formatter) validate() error {
	const op = "cloudevents.(Formatter).validate"
	if f == nil {
		return fmt.Errorf("%s: missing formatter: %w", op, evgen.ErrInvalidParameter)
	}
	if f.Source == nil || f.Source.String() == "" {
		return fmt.Errorf("%s: missing source: %w", op, evgen.ErrInvalidParameter)
	}
	if strings.TrimSpace(f.Type) == "" {
		return fmt.Errorf("%s: missing type: %w", op, evgen.ErrInvalidParameter)
	}
	if err := f.Encoding.validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if f.Schema != nil && f.Schema.String() == "" {
		return fmt.Errorf("%s: an empty schema is not valid: %w", op, evgen.ErrInvalidParameter)
	}
	return nil
}

// Format renders the Event as a cloudevent. The event's TimeStamp field, as
// a timestamp or as RFC 3339 text, becomes the cloudevent time.
func (f *Formatter) Format(e *evgen.Event) (string, error) {
	const op = "cloudevents.(Formatter).Format"
	if err := f.validate(); err != nil {
		return "", fmt.Errorf("%s: invalid Formatter %w", op, err)
	}
	if e == nil {
		return "", fmt.Errorf("%s: missing event: %w", op, evgen.ErrInvalidParameter)
	}

	data, err := (&evgen.JSONFormatter{}).Format(e)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id, err := f.id(e, data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	var schema string
	if f.Schema != nil {
		schema = f.Schema.String()
	}

	ce := CloudEvent{
		ID:              id,
		Source:          f.Source.String(),
		SpecVersion:     SpecVersion,
		Type:            f.Type,
		Data:            json.RawMessage(data),
		DataSchema:      schema,
		DataContentType: DataContentType,
		Time:            eventTime(e),
	}
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	if indent := f.Encoding.indent(); indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(ce); err != nil {
		return "", fmt.Errorf("%s: error encoding cloudevent: %w", op, err)
	}
	return buf.String(), nil
}

func (f *Formatter) id(e *evgen.Event, data string) (string, error) {
	const op = "cloudevents.(Formatter).id"
	field := f.IDField
	if field == "" {
		field = DefaultIDField
	}
	if v, ok := e.Get(field); ok {
		id := evgen.FormatValue(v)
		if id == "" {
			return "", fmt.Errorf("%s: %s field is empty: %w", op, field, evgen.ErrMalformedEvent)
		}
		return id, nil
	}
	// name-based (version 5) within a namespace per source
	ns := uuid.NewSHA1(uuid.NameSpaceURL, []byte(f.Source.String()))
	return uuid.NewSHA1(ns, []byte(data)).String(), nil
}

func eventTime(e *evgen.Event) *time.Time {
	v, ok := e.Get(evgen.FieldTimeStamp)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return &parsed
		}
	}
	return nil
}
