// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

// Package pool provides strongly-typed object pooling on top of [sync.Pool],
// with shared pools for the buffer types the request path reuses.
package pool

import (
	"bytes"
	"strings"
	"sync"
)

// Pool is a generic wrapper around [sync.Pool].
type Pool[T any] struct {
	pool sync.Pool
}

// New returns a [Pool] for T that constructs fresh values with fn when empty.
func New[T any](fn func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return fn()
			},
		},
	}
}

// Get takes a T from the pool, or creates a new one if the pool is empty.
// Callers must reset reused values themselves before first use.
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put returns x to the pool.
func (p *Pool[T]) Put(x T) {
	p.pool.Put(x)
}

// Buffer pools [*bytes.Buffer] values for response payload assembly.
var Buffer = New(func() *bytes.Buffer {
	return &bytes.Buffer{}
})

// String pools [*strings.Builder] values for progress log and JSON assembly.
var String = New(func() *strings.Builder {
	return &strings.Builder{}
})
