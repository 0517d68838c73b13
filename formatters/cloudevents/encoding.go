// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cloudevents

import (
	"fmt"

	"github.com/hashicorp/evgen"
)

// DataContentType is the content type of a cloudevent's data, which is
// always the event rendered as a JSON object.
const DataContentType = "application/json"

// Encoding selects the layout of the envelope a Formatter writes.
type Encoding string

const (
	// EncodingJSON writes the envelope as a single JSON line.
	EncodingJSON Encoding = "cloudevents-json"

	// EncodingText writes the envelope as indented JSON, one field per line.
	EncodingText Encoding = "cloudevents-text"
)

// ParseEncoding converts a configured name into an Encoding. The short
// names "json" and "text" are accepted and an empty name selects
// EncodingJSON.
func ParseEncoding(name string) (Encoding, error) {
	const op = "cloudevents.ParseEncoding"
	switch name {
	case "", "json", string(EncodingJSON):
		return EncodingJSON, nil
	case "text", string(EncodingText):
		return EncodingText, nil
	default:
		return "", fmt.Errorf("%s: %q is not a valid encoding: %w", op, name, evgen.ErrConfiguration)
	}
}

func (enc Encoding) validate() error {
	const op = "cloudevents.(Encoding).validate"
	switch enc {
	case "", EncodingJSON, EncodingText:
		return nil
	default:
		return fmt.Errorf("%s: %q is not a valid encoding: %w", op, enc, evgen.ErrInvalidParameter)
	}
}

// indent returns the indent for the envelope, "" for a single line.
func (enc Encoding) indent() string {
	if enc == EncodingText {
		return TextIndent
	}
	return ""
}
