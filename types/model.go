// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"

	"google.golang.org/genai"
)

// Generator represents a hosted generative model.
//
// Both planning (text in, JSON out) and execution (image plus instruction in,
// image out) speak this interface, so backends are swappable per model name
// through the registry.
type Generator interface {
	// Name returns the model identifier this generator was created for.
	//
	// e.g. gemini-2.5-flash or gemini-2.5-flash-image-preview.
	Name() string

	// GenerateContent generates one response from the given contents.
	GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}
