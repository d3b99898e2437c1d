// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

// Package xiter contains small additions to the stdlib [iter] types.
package xiter

import (
	"iter"
)

// Error returns an iterator that yields only err and stops.
func Error[T any](err error) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		yield(nil, err)
	}
}
