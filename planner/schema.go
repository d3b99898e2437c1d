// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"google.golang.org/genai"
)

// workflowSchema constrains structured planner output to the [types.Workflow]
// shape.
var workflowSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name": {
			Type:        genai.TypeString,
			Description: "The name of the workflow",
		},
		"steps": {
			Type:        genai.TypeArray,
			Description: "A list of steps in the image processing pipeline.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title": {
						Type:        genai.TypeString,
						Description: "The concise title of the step, e.g., 'Remove Background'.",
					},
					"prompt": {
						Type:        genai.TypeString,
						Description: "A clear, concise prompt describing the action to perform on the image.",
					},
				},
				Required: []string{"title", "prompt"},
			},
		},
	},
	Required: []string{"name", "steps"},
}
