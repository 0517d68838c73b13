// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package evgen

import (
	"fmt"
	"os"
)

// Mode controls how file writers treat a file that already exists.
type Mode string

const (
	ModeAppend   Mode = "append"
	ModeTruncate Mode = "truncate"
)

// ParseMode converts a configured mode into a Mode. The short forms "a" and
// "w" are accepted as well.
func ParseMode(s string) (Mode, error) {
	const op = "evgen.ParseMode"
	switch s {
	case "", "a", string(ModeAppend):
		return ModeAppend, nil
	case "w", string(ModeTruncate):
		return ModeTruncate, nil
	default:
		return "", fmt.Errorf("%s: %q is not a valid mode: %w", op, s, ErrConfiguration)
	}
}

func (m Mode) validate() error {
	const op = "evgen.(Mode).validate"
	switch m {
	case ModeAppend, ModeTruncate:
		return nil
	default:
		return fmt.Errorf("%s: %q is not a valid mode: %w", op, m, ErrConfiguration)
	}
}

func (m Mode) flags() int {
	if m == ModeTruncate {
		return os.O_TRUNC | os.O_WRONLY | os.O_CREATE
	}
	return os.O_APPEND | os.O_WRONLY | os.O_CREATE
}
