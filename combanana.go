// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

// Package combanana is a customizable multi-step image workflow studio: free-text
// intent becomes a structured workflow through a hosted language model, and each
// workflow step is applied to an image through a hosted image-generation model.
package combanana

import (
	// for prompt templating
	_ "github.com/google/dotprompt/go/dotprompt"
)

// Version is the version of Combo-Banana.
var Version = "v0.0.0"

// Title and Description identify the application in the UI and in logs.
const (
	Title       = "Combo-Banana"
	Description = "Your Customizable Image Workflow with Nano Banana"
)
