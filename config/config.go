// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the Combo-Banana runtime configuration from the
// process environment, optionally seeded from a .env file in the working
// directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names recognized by [Load].
const (
	EnvGoogleCloudProject     = "GOOGLE_CLOUD_PROJECT"
	EnvGoogleCloudLocation    = "GOOGLE_CLOUD_LOCATION"
	EnvGoogleGenAIUseVertexAI = "GOOGLE_GENAI_USE_VERTEXAI"
	EnvGoogleAPIKey           = "GOOGLE_API_KEY"
	EnvAnthropicAPIKey        = "ANTHROPIC_API_KEY"
	EnvLanguageModel          = "LANGUAGE_MODEL"
	EnvImageModel             = "IMAGE_MODEL"
	EnvLoggingLevel           = "LOGGING_LEVEL"
	EnvAddr                   = "COMBANANA_ADDR"
	EnvArtifactBucket         = "COMBANANA_ARTIFACT_BUCKET"
	EnvSessionTTL             = "COMBANANA_SESSION_TTL"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultLocation      = "global"
	DefaultLanguageModel = "gemini-2.5-flash"
	DefaultImageModel    = "gemini-2.5-flash-image-preview"
	DefaultLoggingLevel  = "INFO"
	DefaultAddr          = ":7860"
	DefaultSessionTTL    = time.Hour
)

// Config holds everything the process needs to run: which Google Cloud
// backend to call, which models plan and render, and how the HTTP server and
// session store behave.
type Config struct {
	// Project is the Google Cloud project, required when UseVertexAI is set.
	Project string

	// Location is the Google Cloud region, e.g. "global" or "us-central1".
	Location string

	// UseVertexAI selects the Vertex AI backend; when false the Gemini API
	// backend is used with APIKey.
	UseVertexAI bool

	// APIKey authenticates against the Gemini API backend, required when
	// UseVertexAI is unset.
	APIKey string

	// AnthropicAPIKey enables claude-* planner models when present.
	AnthropicAPIKey string

	// LanguageModel plans workflows from free-text intent.
	LanguageModel string

	// ImageModel renders each workflow step.
	ImageModel string

	// LoggingLevel is one of DEBUG, INFO, WARNING, ERROR.
	LoggingLevel string

	// Addr is the HTTP listen address.
	Addr string

	// ArtifactBucket, when set, mirrors produced images to a GCS bucket of
	// that name instead of keeping them only in memory.
	ArtifactBucket string

	// SessionTTL is how long an idle session keeps its workflow and images.
	SessionTTL time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over values from the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Project:         os.Getenv(EnvGoogleCloudProject),
		Location:        getenv(EnvGoogleCloudLocation, DefaultLocation),
		UseVertexAI:     parseBool(getenv(EnvGoogleGenAIUseVertexAI, "true")),
		APIKey:          os.Getenv(EnvGoogleAPIKey),
		AnthropicAPIKey: os.Getenv(EnvAnthropicAPIKey),
		LanguageModel:   getenv(EnvLanguageModel, DefaultLanguageModel),
		ImageModel:      getenv(EnvImageModel, DefaultImageModel),
		LoggingLevel:    getenv(EnvLoggingLevel, DefaultLoggingLevel),
		Addr:            getenv(EnvAddr, DefaultAddr),
		ArtifactBucket:  os.Getenv(EnvArtifactBucket),
		SessionTTL:      DefaultSessionTTL,
	}

	if ttl := os.Getenv(EnvSessionTTL); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", EnvSessionTTL, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("parse %s: duration must be positive, got %s", EnvSessionTTL, d)
		}
		cfg.SessionTTL = d
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.UseVertexAI && c.Project == "" {
		return fmt.Errorf("%s is required when %s is enabled", EnvGoogleCloudProject, EnvGoogleGenAIUseVertexAI)
	}
	if !c.UseVertexAI && c.APIKey == "" {
		return fmt.Errorf("%s is required when %s is disabled", EnvGoogleAPIKey, EnvGoogleGenAIUseVertexAI)
	}
	return nil
}

// getenv returns the value of key, or fallback when key is unset or empty.
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseBool reports whether v spells an enabled flag. Only "true" and "1"
// count, case-insensitively; every other value disables.
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1":
		return true
	default:
		return false
	}
}
