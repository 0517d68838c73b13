// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build tools

// Package tools pins the versions of tools used by make fmt.
package tools

import (
	_ "mvdan.cc/gofumpt"
)
