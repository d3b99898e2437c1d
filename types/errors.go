// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"errors"
	"fmt"
)

// Sentinel errors recognized with [errors.Is] across package boundaries.
var (
	// ErrEmptyPlan is reported when the planner responds without a single
	// workflow step, leaving nothing to execute.
	ErrEmptyPlan = errors.New("planner returned a workflow with no steps")

	// ErrNoImage is reported when an execution step finishes without
	// producing an image, breaking the chain for the steps after it.
	ErrNoImage = errors.New("model response contains no image")
)

// PlanningError wraps any failure that prevents turning free-text intent into
// a usable workflow: the model call itself, an unparseable response, or a
// structurally invalid plan.
type PlanningError struct {
	Err error
}

// Error returns a string representation of the [PlanningError].
func (e *PlanningError) Error() string {
	return fmt.Sprintf("workflow definition: %v", e.Err)
}

// Unwrap supports [errors.Is] and [errors.As] on the underlying cause.
func (e *PlanningError) Unwrap() error {
	return e.Err
}

// ExecutionError reports the first step that failed while running a workflow.
// Steps before Index completed and their images remain valid; steps after it
// never ran.
type ExecutionError struct {
	// Index is the zero-based position of the failing step.
	Index int

	// Title is the failing step's title, for display without re-reading the
	// workflow.
	Title string

	Err error
}

// Error returns a string representation of the [ExecutionError].
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("workflow execution: step %d (%s): %v", e.Index+1, e.Title, e.Err)
}

// Unwrap supports [errors.Is] and [errors.As] on the underlying cause.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}
