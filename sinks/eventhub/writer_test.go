// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package eventhub

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hashicorp/evgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSender fails the first failures sends with err and records the rest.
// A negative failures fails every send.
type testSender struct {
	failures int
	err      error

	attempts   int
	attemptAt  []time.Time
	delivered  []string
	messageIDs []string
	closed     int
}

func (s *testSender) SendEvent(_ context.Context, body []byte, messageID string) error {
	s.attempts++
	s.attemptAt = append(s.attemptAt, time.Now())
	s.messageIDs = append(s.messageIDs, messageID)
	if s.failures < 0 || s.attempts <= s.failures {
		return s.err
	}
	s.delivered = append(s.delivered, string(body))
	return nil
}

func (s *testSender) Close(context.Context) error {
	s.closed++
	return nil
}

func transportErr(msg string) error {
	return fmt.Errorf("test: %w: %w", evgen.ErrTransport, errors.New(msg))
}

func testEvent() *evgen.Event {
	return evgen.NewEvent(
		evgen.Field{Name: evgen.FieldSessionID, Value: "s1"},
		evgen.Field{Name: evgen.FieldTimeStamp, Value: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		evgen.Field{Name: "Temp", Value: 19.5},
	)
}

func TestNewWithSender(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	_, err := NewWithSender(nil, "hub")
	assert.ErrorIs(err, evgen.ErrInvalidParameter)

	_, err = NewWithSender(&testSender{}, "")
	assert.ErrorIs(err, evgen.ErrConfiguration)

	w, err := NewWithSender(&testSender{}, "hub")
	assert.NoError(err)
	assert.Equal(DefaultRetryBackoff, w.backoff)
}

func TestNew_configuration(t *testing.T) {
	t.Parallel()
	const cs = "Endpoint=sb://example.servicebus.windows.net/;SharedAccessKeyName=send;SharedAccessKey=c2VjcmV0"

	tests := []struct {
		name            string
		cs              string
		hub             string
		wantErrContains string
	}{
		{
			name:            "malformed",
			cs:              "Endpoint",
			hub:             "hub",
			wantErrContains: "not a key=value pair",
		},
		{
			name:            "missing-hub",
			cs:              cs,
			wantErrContains: "missing event hub name",
		},
		{
			name:            "mismatched-entity-path",
			cs:              cs + ";EntityPath=other",
			hub:             "hub",
			wantErrContains: "does not match",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			w, err := New(tt.cs, tt.hub)
			require.Error(err)
			assert.Nil(w)
			assert.ErrorIs(err, evgen.ErrConfiguration)
			assert.Contains(err.Error(), tt.wantErrContains)
		})
	}
}

func TestWriter_Send(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name          string
		sender        *testSender
		wantAttempts  int
		wantDelivered int
		wantIsError   error
		wantContains  string
	}{
		{
			name:          "first-attempt",
			sender:        &testSender{},
			wantAttempts:  1,
			wantDelivered: 1,
		},
		{
			name:          "fails-once-then-succeeds",
			sender:        &testSender{failures: 1, err: transportErr("throttled")},
			wantAttempts:  2,
			wantDelivered: 1,
		},
		{
			name:         "always-fails",
			sender:       &testSender{failures: -1, err: transportErr("connection reset")},
			wantAttempts: 2,
			wantIsError:  evgen.ErrSink,
			wantContains: "service unreachable",
		},
		{
			name:         "non-transport-error-not-retried",
			sender:       &testSender{failures: -1, err: evgen.ErrInvalidParameter},
			wantAttempts: 1,
			wantIsError:  evgen.ErrInvalidParameter,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			w, err := NewWithSender(tt.sender, "hub", WithRetryBackoff(time.Millisecond))
			require.NoError(err)

			err = w.Send(ctx, testEvent())
			assert.Equal(tt.wantAttempts, tt.sender.attempts)
			assert.Len(tt.sender.delivered, tt.wantDelivered)
			if tt.wantIsError != nil {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsError)
				if tt.wantContains != "" {
					assert.Contains(err.Error(), tt.wantContains)
				}
				return
			}
			require.NoError(err)
			assert.Equal("s1,2024-01-01T00:00:00Z,19.5", tt.sender.delivered[0])
			for _, id := range tt.sender.messageIDs {
				assert.Equal(tt.sender.messageIDs[0], id, "retry must reuse the message id")
			}
		})
	}
}

func TestWriter_Send_timestamp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("normalised-in-place", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := &testSender{}
		w, err := NewWithSender(s, "hub", WithFormatter(&evgen.JSONFormatter{}))
		require.NoError(err)

		e := testEvent()
		require.NoError(w.Send(ctx, e))
		got, ok := e.Get(evgen.FieldTimeStamp)
		require.True(ok)
		assert.Equal("2024-01-01T00:00:00Z", got)
		assert.Equal(`{"SessionId":"s1","TimeStamp":"2024-01-01T00:00:00Z","Temp":19.5}`, s.delivered[0])

		// the sent event no longer carries a time.Time
		err = w.Send(ctx, e)
		assert.ErrorIs(err, evgen.ErrMalformedEvent)
		assert.Equal(1, s.attempts)
	})
	t.Run("unchanged-after-failure", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := &testSender{failures: 2, err: transportErr("unavailable")}
		w, err := NewWithSender(s, "hub", WithRetryBackoff(time.Millisecond))
		require.NoError(err)

		e := testEvent()
		err = w.Send(ctx, e)
		assert.ErrorIs(err, evgen.ErrSink)
		got, ok := e.Get(evgen.FieldTimeStamp)
		require.True(ok)
		assert.IsType(time.Time{}, got)

		// the failed event can be sent again
		require.NoError(w.Send(ctx, e))
		assert.Equal(3, s.attempts)
		require.Len(s.delivered, 1)
		assert.Equal("s1,2024-01-01T00:00:00Z,19.5", s.delivered[0])
	})
	t.Run("missing", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := &testSender{}
		w, err := NewWithSender(s, "hub")
		require.NoError(err)

		err = w.Send(ctx, evgen.NewEvent(evgen.Field{Name: "Temp", Value: 1}))
		assert.ErrorIs(err, evgen.ErrMalformedEvent)
		assert.Zero(s.attempts)
	})
	t.Run("wrong-type", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := &testSender{}
		w, err := NewWithSender(s, "hub")
		require.NoError(err)

		err = w.Send(ctx, evgen.NewEvent(evgen.Field{Name: evgen.FieldTimeStamp, Value: "yesterday"}))
		assert.ErrorIs(err, evgen.ErrMalformedEvent)
		assert.Zero(s.attempts)
	})
}

func TestWriter_Send_canceled(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)

	s := &testSender{failures: -1, err: transportErr("unavailable")}
	w, err := NewWithSender(s, "hub", WithRetryBackoff(time.Hour))
	require.NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err = w.Send(ctx, testEvent())
	assert.ErrorIs(err, evgen.ErrSink)
	assert.ErrorIs(err, context.DeadlineExceeded)
	assert.Equal(1, s.attempts)
}

func TestWriter_Close(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)

	s := &testSender{}
	w, err := NewWithSender(s, "hub")
	require.NoError(err)
	require.NoError(w.Close())
	require.NoError(w.Close())
	assert.Equal(1, s.closed)

	e := testEvent()
	err = w.Send(context.Background(), e)
	assert.ErrorIs(err, evgen.ErrSink)
	assert.ErrorIs(err, evgen.ErrClosed)
	assert.Zero(s.attempts)
	got, ok := e.Get(evgen.FieldTimeStamp)
	require.True(ok)
	assert.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestWriter_Send_retryBackoff(t *testing.T) {
	t.Parallel()
	const pause = 100 * time.Millisecond

	tests := []struct {
		name        string
		sender      *testSender
		wantIsError error
	}{
		{
			name:   "fails-once-then-succeeds",
			sender: &testSender{failures: 1, err: transportErr("throttled")},
		},
		{
			name:        "always-fails",
			sender:      &testSender{failures: -1, err: transportErr("connection reset")},
			wantIsError: evgen.ErrSink,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			w, err := NewWithSender(tt.sender, "hub", WithRetryBackoff(pause))
			require.NoError(err)

			start := time.Now()
			err = w.Send(context.Background(), testEvent())
			elapsed := time.Since(start)
			if tt.wantIsError != nil {
				assert.ErrorIs(err, tt.wantIsError)
			} else {
				assert.NoError(err)
			}
			require.Len(tt.sender.attemptAt, 2)
			assert.GreaterOrEqual(tt.sender.attemptAt[1].Sub(tt.sender.attemptAt[0]), pause)
			assert.GreaterOrEqual(elapsed, pause)
		})
	}
}
