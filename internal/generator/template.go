// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package generator produces sessions of synthetic events and hands each
// event to a single evgen.Writer.
package generator

import (
	"math"
	"math/rand"
	"time"

	"github.com/hashicorp/evgen"
)

// Provider returns the value of one field. It is called once per generated
// event.
type Provider func() interface{}

type attribute struct {
	name     string
	provider Provider
}

// Template describes the fields of generated events. Every event starts with
// SessionId and TimeStamp followed by the template's attributes in the order
// they were set.
type Template struct {
	attributes []attribute
}

// NewTemplate returns an empty Template.
func NewTemplate() *Template {
	return &Template{}
}

// SetAttribute binds the field name to p. Setting a name again replaces its
// provider and keeps its position.
func (t *Template) SetAttribute(name string, p Provider) *Template {
	for i := range t.attributes {
		if t.attributes[i].name == name {
			t.attributes[i].provider = p
			return t
		}
	}
	t.attributes = append(t.attributes, attribute{name: name, provider: p})
	return t
}

// Event builds one event for session at now, invoking every provider.
func (t *Template) Event(session string, now time.Time) *evgen.Event {
	e := evgen.NewEvent(
		evgen.Field{Name: evgen.FieldSessionID, Value: session},
		evgen.Field{Name: evgen.FieldTimeStamp, Value: now},
	)
	for _, a := range t.attributes {
		var v interface{}
		if a.provider != nil {
			v = a.provider()
		}
		e.Set(a.name, v)
	}
	return e
}

// Uniform returns a Provider drawing from [min, max) rounded to places
// decimal places.
func Uniform(r *rand.Rand, min, max float64, places int) Provider {
	scale := math.Pow(10, float64(places))
	return func() interface{} {
		v := min + r.Float64()*(max-min)
		return math.Round(v*scale) / scale
	}
}

// TemperatureTemplate returns a Template with a Temp attribute between 18
// and 34 degrees, rounded to four places.
func TemperatureTemplate(r *rand.Rand) *Template {
	return NewTemplate().SetAttribute("Temp", Uniform(r, 18, 34, 4))
}
