// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/hashicorp/evgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *sarama.Config {
	return parseConfig(getDefaultOptions())
}

func TestNewWithProducer(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	_, err := NewWithProducer(nil, "events")
	assert.ErrorIs(err, evgen.ErrInvalidParameter)

	p := mocks.NewSyncProducer(t, testConfig())
	_, err = NewWithProducer(p, "")
	assert.ErrorIs(err, evgen.ErrConfiguration)
	assert.NoError(p.Close())
}

func TestNew_missingBrokers(t *testing.T) {
	t.Parallel()
	_, err := New(nil, "events")
	assert.ErrorIs(t, err, evgen.ErrConfiguration)
}

func TestParseConfig(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	c := parseConfig(getOpts(WithMaxMessageBytes(1024), WithProducerRetry(5, time.Second)))
	assert.Equal(1024, c.Producer.MaxMessageBytes)
	assert.Equal(5, c.Producer.Retry.Max)
	assert.Equal(time.Second, c.Producer.Retry.Backoff)
	assert.True(c.Producer.Return.Successes)

	d := parseConfig(getDefaultOptions())
	assert.Equal(sarama.NewConfig().Producer.Retry.Max, d.Producer.Retry.Max)
}

func TestWriter_Send(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := evgen.NewEvent(
		evgen.Field{Name: evgen.FieldSessionID, Value: "s1"},
		evgen.Field{Name: "Temp", Value: 30.1},
	)

	t.Run("success", func(t *testing.T) {
		require := require.New(t)
		p := mocks.NewSyncProducer(t, testConfig())
		p.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			if string(val) != "s1,30.1" {
				return fmt.Errorf("unexpected value %q", val)
			}
			return nil
		})
		w, err := NewWithProducer(p, "events")
		require.NoError(err)
		require.NoError(w.Send(ctx, e))
		require.NoError(w.Close())
	})
	t.Run("failure-is-sink-error", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		p := mocks.NewSyncProducer(t, testConfig())
		boom := errors.New("leader not available")
		p.ExpectSendMessageAndFail(boom)
		w, err := NewWithProducer(p, "events")
		require.NoError(err)

		err = w.Send(ctx, e)
		assert.ErrorIs(err, evgen.ErrSink)
		assert.ErrorIs(err, boom)
		require.NoError(w.Close())
	})
	t.Run("closed", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		p := mocks.NewSyncProducer(t, testConfig())
		w, err := NewWithProducer(p, "events")
		require.NoError(err)
		require.NoError(w.Close())
		require.NoError(w.Close())
		assert.ErrorIs(w.Send(ctx, e), evgen.ErrClosed)
	})
}
