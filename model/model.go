// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"google.golang.org/genai"
)

// Role represents the role of a participant in a conversation.
type Role = string

const (
	// RoleSystem is the role of the system.
	RoleSystem Role = "system"

	// RoleUser is the role of the user.
	RoleUser Role = genai.RoleUser

	// RoleModel is the role of the model.
	RoleModel Role = genai.RoleModel
)

// Options carries the credentials and backend selection shared by every
// generator created through the registry.
type Options struct {
	// Project and Location select the Vertex AI backend scope when
	// UseVertexAI is set.
	Project  string
	Location string

	// UseVertexAI routes Gemini calls through Vertex AI; when false the
	// Gemini API backend is used with APIKey.
	UseVertexAI bool

	// APIKey authenticates against the Gemini API backend.
	APIKey string

	// AnthropicAPIKey authenticates claude-* models.
	AnthropicAPIKey string
}

// Parts returns the parts of the first candidate, or nil when the response
// carries no usable content. Responses blocked by safety filters or truncated
// before any content land here as nil.
func Parts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return nil
	}
	return candidate.Content.Parts
}

// FinishedWith reports whether the first candidate stopped with the given
// finish reason.
func FinishedWith(resp *genai.GenerateContentResponse, reason genai.FinishReason) bool {
	return resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == reason
}
