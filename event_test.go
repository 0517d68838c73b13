// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package evgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Set(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	e := NewEvent(Field{Name: "b", Value: 1}, Field{Name: "a", Value: "x"})
	e.Set("c", true)
	e.Set("b", 2)
	assert.Equal([]string{"b", "a", "c"}, e.Keys())
	assert.Equal(3, e.Len())

	v, ok := e.Get("b")
	assert.True(ok)
	assert.Equal(2, v)

	_, ok = e.Get("missing")
	assert.False(ok)

	var zero Event
	zero.Set("k", "v")
	assert.Equal([]string{"k"}, zero.Keys())
}

func TestEvent_Clone(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	e := NewEvent(Field{Name: "a", Value: 1})
	c := e.Clone()
	c.Set("a", 2)
	c.Set("b", 3)

	v, _ := e.Get("a")
	assert.Equal(1, v)
	assert.Equal([]string{"a"}, e.Keys())
	assert.Equal([]string{"a", "b"}, c.Keys())

	var nilEvent *Event
	assert.Nil(nilEvent.Clone())
	assert.Zero(nilEvent.Len())
}

func TestEvent_SessionID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		e       *Event
		want    string
		wantErr bool
	}{
		{
			name: "present",
			e:    NewEvent(Field{Name: FieldSessionID, Value: "abc"}),
			want: "abc",
		},
		{
			name:    "missing",
			e:       NewEvent(),
			wantErr: true,
		},
		{
			name:    "wrong-type",
			e:       NewEvent(Field{Name: FieldSessionID, Value: 42}),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := tt.e.SessionID()
			if tt.wantErr {
				require.Error(err)
				assert.ErrorIs(err, ErrMalformedEvent)
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestEvent_Timestamp(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := NewEvent(Field{Name: FieldTimeStamp, Value: ts}).Timestamp()
	assert.NoError(err)
	assert.Equal(ts, got)

	_, err = NewEvent().Timestamp()
	assert.ErrorIs(err, ErrMalformedEvent)

	_, err = NewEvent(Field{Name: FieldTimeStamp, Value: "2024-01-01"}).Timestamp()
	assert.ErrorIs(err, ErrMalformedEvent)
}

func TestISOTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{
			name: "whole-seconds",
			t:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			want: "2024-01-01T00:00:00Z",
		},
		{
			name: "microseconds",
			t:    time.Date(2024, 1, 1, 12, 30, 5, 1500, time.UTC),
			want: "2024-01-01T12:30:05.000001Z",
		},
		{
			name: "sub-microsecond-dropped",
			t:    time.Date(2024, 1, 1, 12, 30, 5, 999, time.UTC),
			want: "2024-01-01T12:30:05Z",
		},
		{
			name: "converted-to-utc",
			t:    time.Date(2024, 1, 1, 2, 0, 0, 0, time.FixedZone("EET", 2*60*60)),
			want: "2024-01-01T00:00:00Z",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ISOTimestamp(tt.t))
		})
	}
}
