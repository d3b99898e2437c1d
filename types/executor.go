// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"iter"

	"google.golang.org/genai"
)

// ExecutionEventKind identifies what an [ExecutionEvent] announces.
type ExecutionEventKind string

const (
	// EventWorkflowStarted opens the stream, before any step runs.
	EventWorkflowStarted ExecutionEventKind = "workflow_started"

	// EventStepStarted announces that a step is about to be applied.
	EventStepStarted ExecutionEventKind = "step_started"

	// EventModelText carries commentary the image model emitted alongside
	// (or instead of) an image.
	EventModelText ExecutionEventKind = "model_text"

	// EventStepImage carries the image a step produced, which becomes the
	// input of the next step.
	EventStepImage ExecutionEventKind = "step_image"

	// EventWorkflowDone closes the stream after the last step succeeded.
	EventWorkflowDone ExecutionEventKind = "workflow_done"
)

// ExecutionEvent is one item in the progress stream of a running workflow.
// Index and Step are set for step-scoped events ([EventStepStarted],
// [EventModelText], [EventStepImage]); Text only for [EventModelText]; Image
// only for [EventStepImage].
type ExecutionEvent struct {
	Kind ExecutionEventKind

	// Index is the zero-based position of the step this event belongs to.
	Index int

	Step *Step

	Text string

	Image *genai.Blob
}

// StepResult is the outcome of one completed step.
type StepResult struct {
	// Index is the zero-based position of the step in the workflow.
	Index int

	Step Step

	// Texts collects the model commentary emitted while the step ran, in
	// order.
	Texts []string

	// Image is the step's output, never nil for a completed step.
	Image *genai.Blob
}

// ExecutionResult collects everything a workflow run produced. When a run
// fails partway, Steps holds the results of the steps that completed before
// the failure.
type ExecutionResult struct {
	Workflow *Workflow

	Steps []StepResult
}

// Images returns the output image of every completed step, in step order.
func (r *ExecutionResult) Images() []*genai.Blob {
	images := make([]*genai.Blob, 0, len(r.Steps))
	for _, step := range r.Steps {
		images = append(images, step.Image)
	}
	return images
}

// Final returns the last produced image, or nil when no step completed. For a
// fully successful run this is the workflow's end product.
func (r *ExecutionResult) Final() *genai.Blob {
	if len(r.Steps) == 0 {
		return nil
	}
	return r.Steps[len(r.Steps)-1].Image
}

// Executor applies a workflow to an input image step by step.
//
// Execute streams progress as it happens: step boundaries, model commentary,
// and each intermediate image. The sequence stops at the first failure,
// yielding a [*ExecutionError] that names the failing step; events already
// yielded remain valid. Implementations honor ctx between steps so a closed
// connection stops paid model calls.
type Executor interface {
	// Execute runs workflow against input, yielding events in order. input
	// must carry the image bytes and their MIME type.
	Execute(ctx context.Context, workflow *Workflow, input *genai.Blob) iter.Seq2[*ExecutionEvent, error]
}
