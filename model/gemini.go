// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/fmind/combanana/types"
)

// GeminiDefaultModel is the default model name for [Gemini].
const GeminiDefaultModel = "gemini-2.5-flash"

// Gemini serves Gemini models through the google.golang.org/genai client, on
// the Vertex AI or Gemini API backend depending on [Options].
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

var _ types.Generator = (*Gemini)(nil)

// NewGemini creates a new [Gemini] instance for modelName.
func NewGemini(ctx context.Context, opts Options, modelName string) (*Gemini, error) {
	if modelName == "" {
		modelName = GeminiDefaultModel
	}

	cc := &genai.ClientConfig{}
	switch {
	case opts.UseVertexAI:
		if opts.Project == "" {
			return nil, fmt.Errorf("vertex backend requires a project")
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = opts.Project
		cc.Location = opts.Location
	default:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("gemini API backend requires an API key")
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = opts.APIKey
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  modelName,
		logger: slog.Default(),
	}, nil
}

// Name returns the model name this generator calls.
func (m *Gemini) Name() string {
	return m.model
}

// GenerateContent generates one response from the given contents.
func (m *Gemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}
	m.logger.DebugContext(ctx, "gemini response",
		slog.String("model", m.model),
		slog.Int("candidates", len(resp.Candidates)),
	)

	return resp, nil
}
