// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package model_test

import (
	"context"
	"testing"

	"google.golang.org/genai"

	"github.com/fmind/combanana/model"
	"github.com/fmind/combanana/types"
)

type stubGenerator struct {
	name string
}

var _ types.Generator = (*stubGenerator)(nil)

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return &genai.GenerateContentResponse{}, nil
}

func TestRegistryResolve(t *testing.T) {
	tests := map[string]struct {
		model   string
		wantErr bool
	}{
		"gemini flash":         {model: "gemini-2.5-flash"},
		"gemini image preview": {model: "gemini-2.5-flash-image-preview"},
		"vertex publisher path": {
			model: "projects/my-project/locations/global/publishers/google/models/gemini-2.5-pro",
		},
		"claude haiku":  {model: "claude-3-5-haiku-latest"},
		"unknown model": {model: "imagen-4.0", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := model.GetRegistry().Resolve(tt.model)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error for %q, got nil", tt.model)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Resolve(%q): %v", tt.model, err)
			}
		})
	}
}

func TestNewGeneratorGemini(t *testing.T) {
	opts := model.Options{APIKey: "test-key"}

	gen, err := model.NewGenerator(t.Context(), opts, "gemini-2.5-flash")
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	if _, ok := gen.(*model.Gemini); !ok {
		t.Fatalf("expected *model.Gemini, got %T", gen)
	}
	if gen.Name() != "gemini-2.5-flash" {
		t.Errorf("expected name %q, got %q", "gemini-2.5-flash", gen.Name())
	}
}

func TestNewGeneratorClaude(t *testing.T) {
	opts := model.Options{AnthropicAPIKey: "test-key"}

	gen, err := model.NewGenerator(t.Context(), opts, "claude-3-5-haiku-latest")
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	if _, ok := gen.(*model.Claude); !ok {
		t.Fatalf("expected *model.Claude, got %T", gen)
	}
	if gen.Name() != "claude-3-5-haiku-latest" {
		t.Errorf("expected name %q, got %q", "claude-3-5-haiku-latest", gen.Name())
	}
}

func TestNewGeminiValidation(t *testing.T) {
	t.Run("vertex requires project", func(t *testing.T) {
		_, err := model.NewGemini(t.Context(), model.Options{UseVertexAI: true}, "gemini-2.5-flash")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("gemini API requires key", func(t *testing.T) {
		_, err := model.NewGemini(t.Context(), model.Options{}, "gemini-2.5-flash")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestNewClaudeValidation(t *testing.T) {
	if _, err := model.NewClaude(t.Context(), model.Options{}, "claude-3-5-haiku-latest"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestRegistryRegister(t *testing.T) {
	registry := model.NewRegistry(4)

	err := registry.Register(`stub-.*`, func(ctx context.Context, opts model.Options, modelName string) (types.Generator, error) {
		return &stubGenerator{name: modelName}, nil
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	gen, err := registry.NewGenerator(t.Context(), model.Options{}, "stub-model")
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if gen.Name() != "stub-model" {
		t.Errorf("expected name %q, got %q", "stub-model", gen.Name())
	}

	if err := registry.Register(`[`, nil); err == nil {
		t.Fatal("expected error for malformed pattern, got nil")
	}
}

func TestParts(t *testing.T) {
	t.Run("nil response", func(t *testing.T) {
		if got := model.Parts(nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		if got := model.Parts(&genai.GenerateContentResponse{}); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("candidate without content", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{}},
		}
		if got := model.Parts(resp); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("parts returned in order", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{
					Content: &genai.Content{
						Role: genai.RoleModel,
						Parts: []*genai.Part{
							genai.NewPartFromText("first"),
							genai.NewPartFromText("second"),
						},
					},
					FinishReason: genai.FinishReasonStop,
				},
			},
		}

		parts := model.Parts(resp)
		if len(parts) != 2 {
			t.Fatalf("expected 2 parts, got %d", len(parts))
		}
		if parts[0].Text != "first" || parts[1].Text != "second" {
			t.Errorf("unexpected parts order: %q, %q", parts[0].Text, parts[1].Text)
		}
		if !model.FinishedWith(resp, genai.FinishReasonStop) {
			t.Error("expected FinishedWith stop")
		}
		if model.FinishedWith(resp, genai.FinishReasonMaxTokens) {
			t.Error("unexpected FinishedWith max tokens")
		}
	})
}
