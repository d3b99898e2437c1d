// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/fmind/combanana/model"
	"github.com/fmind/combanana/pkg/logging"
	"github.com/fmind/combanana/types"
)

// Planning calls run deterministic and bounded: amendments to the same
// workflow should not drift, and a plan never needs more than a short JSON
// document.
const (
	defineTemperature     float32 = 0
	defineMaxOutputTokens int32   = 2000
)

// WorkflowPlanner implements [types.Planner] on top of a hosted language
// model.
type WorkflowPlanner struct {
	gen types.Generator
}

var _ types.Planner = (*WorkflowPlanner)(nil)

// New creates a [WorkflowPlanner] backed by gen.
func New(gen types.Generator) *WorkflowPlanner {
	return &WorkflowPlanner{gen: gen}
}

// Define builds a new workflow from intent, amending current.
func (p *WorkflowPlanner) Define(ctx context.Context, intent string, current *types.Workflow) (*types.Workflow, error) {
	logger := logging.FromContext(ctx)

	intent = strings.TrimSpace(intent)
	if intent == "" {
		return nil, &types.PlanningError{Err: errors.New("intent must not be empty")}
	}
	if current == nil {
		current = types.NewEmptyWorkflow()
	}

	workflowJSON, err := current.JSON()
	if err != nil {
		return nil, &types.PlanningError{Err: err}
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(defineTemperature),
		MaxOutputTokens:  defineMaxOutputTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   workflowSchema,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				genai.NewPartFromText(renderDefinePrompt(workflowJSON)),
			},
		},
	}
	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{genai.NewPartFromText(intent)},
		},
	}

	resp, err := p.gen.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, &types.PlanningError{Err: err}
	}
	if len(model.Parts(resp)) == 0 {
		return nil, &types.PlanningError{Err: errors.New("model response is empty")}
	}
	if model.FinishedWith(resp, genai.FinishReasonMaxTokens) {
		return nil, &types.PlanningError{Err: errors.New("model response truncated by the output token limit")}
	}

	raw := stripFences(resp.Text())
	workflow, err := types.ParseWorkflow([]byte(raw))
	if err != nil {
		return nil, &types.PlanningError{Err: fmt.Errorf("parse model response: %w", err)}
	}
	if len(workflow.Steps) == 0 {
		return nil, &types.PlanningError{Err: types.ErrEmptyPlan}
	}

	logger.InfoContext(ctx, "workflow defined",
		slog.String("model", p.gen.Name()),
		slog.String("name", workflow.Name),
		slog.Int("steps", len(workflow.Steps)),
	)

	return workflow, nil
}

// stripFences removes a Markdown code fence around a JSON document. Models
// without native JSON output wrap their answer this way.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
