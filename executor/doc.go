// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

// Package executor runs workflows against a hosted image-generation model.
//
// Steps run strictly in order: the image produced by one step is the input of
// the next, so the engine is sequential on purpose. Progress streams through
// [types.ExecutionEvent] values as it happens, which lets callers show
// intermediate images and model commentary while later steps are still
// running. The first failing step ends the stream with a
// [*types.ExecutionError]; everything yielded before it stays valid.
package executor
