// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package evgen

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	CSVFormat  = "csv"
	JSONFormat = "json"
)

// Formatter renders one Event as text. Implementations must be free of side
// effects and return the same text for the same Event.
type Formatter interface {
	Format(e *Event) (string, error)
}

// FormatterFunc adapts an ordinary function to a Formatter.
type FormatterFunc func(e *Event) (string, error)

// Format calls f(e).
func (f FormatterFunc) Format(e *Event) (string, error) {
	return f(e)
}

// CSVFormatter renders the values of an Event as one CSV record, in field
// order. It is the default Formatter for every writer.
type CSVFormatter struct {
	// Comma is the field delimiter. Defaults to ','.
	Comma rune
}

var _ Formatter = &CSVFormatter{}

// Format renders the event's values as a CSV record without a line
// terminator.
func (f *CSVFormatter) Format(e *Event) (string, error) {
	const op = "evgen.(CSVFormatter).Format"
	if e == nil {
		return "", fmt.Errorf("%s: missing event: %w", op, ErrInvalidParameter)
	}
	record := make([]string, 0, e.Len())
	for _, field := range e.Fields() {
		record = append(record, FormatValue(field.Value))
	}
	s, err := f.write(record)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// Header renders the event's field names as a CSV record.
func (f *CSVFormatter) Header(e *Event) (string, error) {
	const op = "evgen.(CSVFormatter).Header"
	if e == nil {
		return "", fmt.Errorf("%s: missing event: %w", op, ErrInvalidParameter)
	}
	s, err := f.write(e.Keys())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (f *CSVFormatter) write(record []string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if f.Comma != 0 {
		w.Comma = f.Comma
	}
	if err := w.Write(record); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// JSONFormatter renders an Event as a single JSON object whose keys follow
// the event's field order.
type JSONFormatter struct{}

var _ Formatter = &JSONFormatter{}

func (f *JSONFormatter) Format(e *Event) (string, error) {
	const op = "evgen.(JSONFormatter).Format"
	if e == nil {
		return "", fmt.Errorf("%s: missing event: %w", op, ErrInvalidParameter)
	}
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, field := range e.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(field.Name)
		if err != nil {
			return "", fmt.Errorf("%s: error encoding field name %q: %w", op, field.Name, err)
		}
		v := field.Value
		if ts, ok := v.(time.Time); ok {
			v = ISOTimestamp(ts)
		}
		val, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("%s: error encoding field %q: %w", op, field.Name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

// FormatValue renders a single event value as text. Floats use the
// shortest representation that round trips and timestamps use ISOTimestamp.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return ISOTimestamp(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// NewFormatter returns the Formatter registered under name, either CSVFormat
// or JSONFormat. An empty name selects CSVFormat.
func NewFormatter(name string) (Formatter, error) {
	const op = "evgen.NewFormatter"
	switch name {
	case CSVFormat, "":
		return &CSVFormatter{}, nil
	case JSONFormat:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("%s: %q is not a supported format: %w", op, name, ErrConfiguration)
	}
}

// terminate appends a newline unless s already ends with one.
func terminate(s string) []byte {
	if strings.HasSuffix(s, "\n") {
		return []byte(s)
	}
	return []byte(s + "\n")
}
