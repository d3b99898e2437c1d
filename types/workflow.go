// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	json "github.com/go-json-experiment/json"
	deepcopy "github.com/tiendc/go-deepcopy"
)

// DefaultWorkflowName is the name given to a workflow before the planner has
// assigned a better one.
const DefaultWorkflowName = "Empty Workflow"

// Step is a single image transformation inside a workflow.
//
// Title is a short human label shown in the UI and in progress logs; Prompt is
// the full instruction handed to the image model together with the current
// image.
type Step struct {
	// Title names the step, e.g. "Remove Background".
	Title string `json:"title"`

	// Prompt is the complete, self-contained instruction for the image model.
	Prompt string `json:"prompt"`
}

// Workflow is an ordered sequence of image transformation steps.
//
// Workflows are built by a [Planner] from free-text intent, optionally edited
// by hand as JSON, and consumed by an [Executor] one step at a time in order.
type Workflow struct {
	// Name is a short human-readable title for the whole workflow.
	Name string `json:"name"`

	// Steps are applied in order; the output image of step i is the input
	// image of step i+1.
	Steps []Step `json:"steps"`
}

// NewEmptyWorkflow returns the workflow a fresh session starts from: the
// default name and no steps.
func NewEmptyWorkflow() *Workflow {
	return &Workflow{
		Name:  DefaultWorkflowName,
		Steps: []Step{},
	}
}

// Validate reports whether the workflow is structurally usable: a non-empty
// name and every step carrying both a title and a prompt. An empty step list
// is valid; it simply means there is nothing to execute yet.
func (w *Workflow) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("workflow name must not be empty")
	}
	for i, step := range w.Steps {
		if strings.TrimSpace(step.Title) == "" {
			return fmt.Errorf("step %d: title must not be empty", i+1)
		}
		if strings.TrimSpace(step.Prompt) == "" {
			return fmt.Errorf("step %d (%s): prompt must not be empty", i+1, step.Title)
		}
	}
	return nil
}

// Clone returns a deep copy of the workflow. Callers that hand workflows
// across goroutine or session boundaries clone first so later edits cannot
// alias shared state.
func (w *Workflow) Clone() (*Workflow, error) {
	cloned := &Workflow{}
	if err := deepcopy.Copy(cloned, w); err != nil {
		return nil, fmt.Errorf("clone workflow: %w", err)
	}
	return cloned, nil
}

// JSON renders the workflow as indented JSON, the representation shown in the
// editable workflow pane. The zero-value steps list renders as [] rather than
// null so round-tripping through the editor keeps the document well-formed.
func (w *Workflow) JSON() (string, error) {
	view := *w
	if view.Steps == nil {
		view.Steps = []Step{}
	}
	data, err := sonic.ConfigStd.MarshalIndent(&view, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal workflow: %w", err)
	}
	return string(data), nil
}

// WriteJSON streams the workflow as compact JSON to w, for API consumers
// where the editor pane's indentation is noise.
func (w *Workflow) WriteJSON(dst io.Writer) error {
	view := *w
	if view.Steps == nil {
		view.Steps = []Step{}
	}
	if err := json.MarshalWrite(dst, &view); err != nil {
		return fmt.Errorf("write workflow: %w", err)
	}
	return nil
}

// ParseWorkflow decodes and validates a JSON workflow document, as produced by
// [Workflow.JSON] or typed by a user into the workflow editor. Unknown fields
// are rejected so silent typos ("tittle") do not drop data.
func ParseWorkflow(data []byte) (*Workflow, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("workflow document is empty")
	}

	w := &Workflow{}
	dec := sonic.ConfigStd.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(w); err != nil {
		return nil, fmt.Errorf("decode workflow: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}
	if w.Steps == nil {
		w.Steps = []Step{}
	}

	return w, nil
}
