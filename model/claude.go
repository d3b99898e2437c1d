// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"slices"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"google.golang.org/genai"

	"github.com/fmind/combanana/types"
)

// ClaudeDefaultModel is the default model name for [Claude].
const ClaudeDefaultModel = "claude-3-5-haiku-latest"

// claudeDefaultMaxTokens bounds responses when the caller sets no limit.
const claudeDefaultMaxTokens = 4096

// Claude serves Anthropic Claude models behind the [types.Generator]
// interface. Claude plans workflows well but produces text only, so it is
// never registered for image rendering.
type Claude struct {
	client anthropic.Client
	model  string
}

var _ types.Generator = (*Claude)(nil)

// NewClaude creates a new [Claude] instance for modelName.
func NewClaude(ctx context.Context, opts Options, modelName string) (*Claude, error) {
	if opts.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("claude models require an Anthropic API key")
	}
	if modelName == "" {
		modelName = ClaudeDefaultModel
	}

	return &Claude{
		client: anthropic.NewClient(option.WithAPIKey(opts.AnthropicAPIKey)),
		model:  modelName,
	}, nil
}

// Name returns the model name this generator calls.
func (m *Claude) Name() string {
	return m.model
}

// GenerateContent generates one response from the given contents.
//
// The genai request vocabulary is translated on the way in: a leading system
// content becomes the system prompt, text parts become message blocks, and
// non-text parts are dropped since Claude receives only text here. Structured
// output options (response schema, MIME type) have no Anthropic equivalent
// and are ignored; callers parse the text instead.
func (m *Claude) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.model),
		Messages:  contentsToClaudeMessages(contents),
		MaxTokens: claudeDefaultMaxTokens,
	}

	if config != nil {
		if config.MaxOutputTokens > 0 {
			params.MaxTokens = int64(config.MaxOutputTokens)
		}
		if config.Temperature != nil {
			params.Temperature = anthropic.Float(float64(*config.Temperature))
		}
		if config.TopP != nil {
			params.TopP = anthropic.Float(float64(*config.TopP))
		}
		if config.SystemInstruction != nil {
			if text := contentText(config.SystemInstruction); text != "" {
				params.System = []anthropic.TextBlockParam{{
					Text: text,
					Type: constant.ValueOf[constant.Text]().Default(),
				}}
			}
		}
	}

	message, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claude API error: %w", err)
	}

	return claudeMessageToResponse(message), nil
}

// contentText concatenates the text parts of a content.
func contentText(content *genai.Content) string {
	text := ""
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			text += part.Text
		}
	}
	return text
}

// contentsToClaudeMessages converts genai contents to Anthropic messages,
// keeping only text parts.
func contentsToClaudeMessages(contents []*genai.Content) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(contents))
	for _, content := range contents {
		if content == nil || content.Role == RoleSystem {
			continue
		}
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(content.Parts))
		for _, part := range content.Parts {
			if part != nil && part.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			}
		}
		if len(blocks) == 0 {
			continue
		}
		messages = append(messages, anthropic.MessageParam{
			Role:    asClaudeRole(content.Role),
			Content: blocks,
		})
	}
	return messages
}

// asClaudeRole maps genai roles onto the two roles Anthropic knows.
func asClaudeRole(role string) anthropic.MessageParamRole {
	if role == RoleModel || role == "assistant" {
		return anthropic.MessageParamRoleAssistant
	}
	return anthropic.MessageParamRoleUser
}

var claudeStopReasons = []anthropic.StopReason{
	anthropic.StopReasonEndTurn,
	anthropic.StopReasonStopSequence,
}

// claudeMessageToResponse converts an Anthropic message into the genai
// response shape the rest of the system consumes.
func claudeMessageToResponse(message *anthropic.Message) *genai.GenerateContentResponse {
	var parts []*genai.Part
	for _, block := range message.Content {
		if block.Type == "text" {
			parts = append(parts, genai.NewPartFromText(block.Text))
		}
	}

	finish := genai.FinishReasonUnspecified
	switch {
	case slices.Contains(claudeStopReasons, message.StopReason):
		finish = genai.FinishReasonStop
	case message.StopReason == anthropic.StopReasonMaxTokens:
		finish = genai.FinishReasonMaxTokens
	}

	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Role:  RoleModel,
					Parts: parts,
				},
				FinishReason: finish,
			},
		},
	}
}
