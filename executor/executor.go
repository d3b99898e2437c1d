// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"google.golang.org/genai"

	"github.com/fmind/combanana/internal/xiter"
	"github.com/fmind/combanana/model"
	"github.com/fmind/combanana/pkg/logging"
	"github.com/fmind/combanana/types"
)

// Rendering runs deterministic; the token bound leaves room for commentary
// alongside the image payload.
const (
	executeTemperature     float32 = 0
	executeMaxOutputTokens int32   = 5000
)

// responseModalities asks the image model for commentary and pixels in one
// response.
var responseModalities = []string{"TEXT", "IMAGE"}

// Engine implements [types.Executor] on top of a hosted image-generation
// model.
type Engine struct {
	gen types.Generator
}

var _ types.Executor = (*Engine)(nil)

// New creates an [Engine] backed by gen.
func New(gen types.Generator) *Engine {
	return &Engine{gen: gen}
}

// Execute runs workflow against input, yielding progress events in order.
func (e *Engine) Execute(ctx context.Context, workflow *types.Workflow, input *genai.Blob) iter.Seq2[*types.ExecutionEvent, error] {
	if workflow == nil {
		return xiter.Error[types.ExecutionEvent](errors.New("workflow must not be nil"))
	}
	if input == nil || len(input.Data) == 0 {
		return xiter.Error[types.ExecutionEvent](errors.New("input image must not be empty"))
	}

	return func(yield func(*types.ExecutionEvent, error) bool) {
		logger := logging.FromContext(ctx)

		if !yield(&types.ExecutionEvent{Kind: types.EventWorkflowStarted}, nil) {
			return
		}

		current := input
		for i, step := range workflow.Steps {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			if !yield(&types.ExecutionEvent{Kind: types.EventStepStarted, Index: i, Step: &step}, nil) {
				return
			}

			resp, err := e.gen.GenerateContent(ctx, stepContents(current, step), stepConfig())
			if err != nil {
				yield(nil, &types.ExecutionError{Index: i, Title: step.Title, Err: err})
				return
			}

			var produced *genai.Blob
			for _, part := range model.Parts(resp) {
				switch {
				case part == nil:
				case part.Text != "":
					if !yield(&types.ExecutionEvent{Kind: types.EventModelText, Index: i, Step: &step, Text: part.Text}, nil) {
						return
					}
				case part.InlineData != nil && len(part.InlineData.Data) > 0:
					produced = part.InlineData
					if !yield(&types.ExecutionEvent{Kind: types.EventStepImage, Index: i, Step: &step, Image: produced}, nil) {
						return
					}
				}
			}

			if produced == nil {
				cause := error(types.ErrNoImage)
				if model.FinishedWith(resp, genai.FinishReasonMaxTokens) {
					cause = fmt.Errorf("response truncated by the output token limit: %w", types.ErrNoImage)
				}
				yield(nil, &types.ExecutionError{Index: i, Title: step.Title, Err: cause})
				return
			}
			current = produced

			logger.InfoContext(ctx, "step executed",
				slog.String("model", e.gen.Name()),
				slog.Int("step", i+1),
				slog.String("title", step.Title),
				slog.String("mime_type", produced.MIMEType),
				slog.Int("bytes", len(produced.Data)),
			)
		}

		yield(&types.ExecutionEvent{Kind: types.EventWorkflowDone}, nil)
	}
}

// Run executes the workflow to completion and collects every completed step.
// On failure the returned result still holds the steps that finished before
// the error.
func (e *Engine) Run(ctx context.Context, workflow *types.Workflow, input *genai.Blob) (*types.ExecutionResult, error) {
	result := &types.ExecutionResult{Workflow: workflow}

	var pending *types.StepResult
	flush := func() {
		if pending != nil && pending.Image != nil {
			result.Steps = append(result.Steps, *pending)
		}
		pending = nil
	}

	for event, err := range e.Execute(ctx, workflow, input) {
		if err != nil {
			return result, err
		}
		switch event.Kind {
		case types.EventStepStarted:
			flush()
			pending = &types.StepResult{Index: event.Index, Step: *event.Step}
		case types.EventModelText:
			if pending != nil {
				pending.Texts = append(pending.Texts, event.Text)
			}
		case types.EventStepImage:
			if pending != nil {
				pending.Image = event.Image
			}
		case types.EventWorkflowDone:
			flush()
		}
	}

	return result, nil
}

// stepContents pairs the running image with the step instruction, image
// first.
func stepContents(image *genai.Blob, step types.Step) []*genai.Content {
	return []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						MIMEType: image.MIMEType,
						Data:     image.Data,
					},
				},
				genai.NewPartFromText(step.Prompt),
			},
		},
	}
}

func stepConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:        genai.Ptr(executeTemperature),
		MaxOutputTokens:    executeMaxOutputTokens,
		ResponseModalities: responseModalities,
	}
}
