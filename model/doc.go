// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

// Package model provides the hosted model backends behind the
// [types.Generator] interface and a pattern registry that picks the right
// backend from a model name.
//
// Gemini models are served through the google.golang.org/genai client on
// either the Vertex AI or the Gemini API backend. Claude models are served
// through the Anthropic SDK and can plan workflows; only Gemini models render
// images.
//
// The registry resolves names with regex patterns, so deployments can switch
// models with a single environment variable:
//
//	gen, err := model.NewGenerator(ctx, opts, "gemini-2.5-flash")
package model
