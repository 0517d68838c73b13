// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package evgen

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
)

// Test_getOpts provides unit tests for getOpts and all the options
func Test_getOpts(t *testing.T) {
	t.Parallel()
	t.Run("defaults", func(t *testing.T) {
		assert := assert.New(t)
		opts := getOpts()
		assert.Equal(&CSVFormatter{}, opts.withFormatter)
		assert.Equal(ModeAppend, opts.withMode)
		assert.Equal(defaultFilePerm, opts.withFilePerm)
		assert.Equal(".log", opts.withExtension)
	})
	t.Run("WithFormatter", func(t *testing.T) {
		assert := assert.New(t)
		f := &JSONFormatter{}
		assert.Same(f, getOpts(WithFormatter(f)).withFormatter)
		assert.Equal(&CSVFormatter{}, getOpts(WithFormatter(nil)).withFormatter)
	})
	t.Run("WithLogger", func(t *testing.T) {
		l := hclog.New(&hclog.LoggerOptions{Name: "test", Output: &bytes.Buffer{}})
		assert.Equal(t, l, getOpts(WithLogger(l)).withLogger)
	})
	t.Run("WithMode", func(t *testing.T) {
		assert.Equal(t, ModeTruncate, getOpts(WithMode(ModeTruncate)).withMode)
	})
	t.Run("WithFilePerm", func(t *testing.T) {
		assert := assert.New(t)
		assert.Equal(0o644, int(getOpts(WithFilePerm(0o644)).withFilePerm))
		assert.Equal(defaultFilePerm, getOpts(WithFilePerm(0)).withFilePerm)
	})
	t.Run("WithExtension", func(t *testing.T) {
		assert.Equal(t, ".csv", getOpts(WithExtension(".csv")).withExtension)
	})
	t.Run("WithOutput", func(t *testing.T) {
		buf := &bytes.Buffer{}
		assert.Same(t, buf, getOpts(WithOutput(buf)).withOutput)
	})
	t.Run("nil-option", func(t *testing.T) {
		assert.Equal(t, ModeAppend, getOpts(nil).withMode)
	})
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Mode{
		"":         ModeAppend,
		"a":        ModeAppend,
		"append":   ModeAppend,
		"w":        ModeTruncate,
		"truncate": ModeTruncate,
	} {
		got, err := ParseMode(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("r+")
	assert.ErrorIs(t, err, ErrConfiguration)
}
