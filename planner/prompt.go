// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
)

// definePromptTemplate is the system instruction for workflow planning. The
// {workflow} placeholder receives the session's current workflow as JSON so
// the model treats the request as an amendment to it.
var definePromptTemplate = heredoc.Doc(`
	Generate a structured multi-step JSON workflow for an image designer from a user request.

	The JSON object must contain:
	- "name": A string for the workflow's title.
	- "steps": A list of objects, where each object has:
	  - "title": A brief, descriptive string for the step's title.
	  - "prompt": A detailed string for the step's instruction.

	Example User Request:
	"Upscale the image, then add pop-art style, then add a designer signature"

	Example JSON Output:
	{
	    "name": "Creative Portrait",
	    "steps": [
	        {
	            "title": "Upscale Image",
	            "prompt": "Increase the image resolution and clarity for printing."
	        },
	        {
	            "title": "Add Pop-Art Style",
	            "prompt": "Apply a vibrant pop-art filter with bold colors and sharp lines."
	        },
	        {
	            "title": "Add Designer Signature",
	            "prompt": "Overlay a designer signature in the bottom-right corner."
	        }
	    ]
	}

	The steps should be concise and accurately capture all details from the user's request.

	User workflow:
	{workflow}
`)

// renderDefinePrompt injects the current workflow JSON into the planning
// instruction.
func renderDefinePrompt(workflowJSON string) string {
	return strings.ReplaceAll(definePromptTemplate, "{workflow}", workflowJSON)
}
