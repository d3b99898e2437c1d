// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/fmind/combanana/types"
)

// init registers the built-in generator types.
func init() {
	// Register Claude models
	RegisterGeneratorType(
		[]string{
			`claude-.*`,
		},
		func(ctx context.Context, opts Options, modelName string) (types.Generator, error) {
			return NewClaude(ctx, opts, modelName)
		},
	)

	// Register Google/Gemini models
	RegisterGeneratorType(
		[]string{
			`gemini-.*`,
			`projects\/.*\/locations\/.*\/endpoints\/.*`,
			`projects\/.*\/locations\/.*\/publishers\/google\/models\/gemini-.*`,
		},
		func(ctx context.Context, opts Options, modelName string) (types.Generator, error) {
			return NewGemini(ctx, opts, modelName)
		},
	)
}

// CreatorFunc is a function type that creates a generator instance.
type CreatorFunc func(ctx context.Context, opts Options, modelName string) (types.Generator, error)

// registryEntry pairs a compiled name pattern with its creator function.
type registryEntry struct {
	pattern *regexp.Regexp
	creator CreatorFunc
}

// Registry resolves generator implementations from model names using regex
// patterns, with a small cache in front of the pattern scan.
type Registry struct {
	mu        sync.RWMutex
	registry  []registryEntry
	cacheSize int
	cache     map[string]CreatorFunc
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// GetRegistry returns the singleton registry instance.
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry(32)
	})
	return defaultRegistry
}

// NewRegistry creates a new registry with the specified cache size.
func NewRegistry(cacheSize int) *Registry {
	return &Registry{
		registry:  make([]registryEntry, 0),
		cacheSize: cacheSize,
		cache:     make(map[string]CreatorFunc),
	}
}

// Register registers a model name pattern with a creator function. When the
// pattern is already registered, its creator is replaced.
func (r *Registry) Register(pattern string, creator CreatorFunc) error {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compile pattern %s: %w", pattern, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, entry := range r.registry {
		if entry.pattern.String() == pattern {
			r.registry[i].creator = creator
			return nil
		}
	}

	r.registry = append(r.registry, registryEntry{
		pattern: regex,
		creator: creator,
	})
	return nil
}

// Resolve finds the creator function for the given model name.
func (r *Registry) Resolve(modelName string) (CreatorFunc, error) {
	r.mu.RLock()
	if creator, ok := r.cache[modelName]; ok {
		r.mu.RUnlock()
		return creator, nil
	}

	var matched CreatorFunc
	for _, entry := range r.registry {
		if entry.pattern.MatchString(modelName) {
			matched = entry.creator
			break
		}
	}
	r.mu.RUnlock()

	if matched == nil {
		return nil, fmt.Errorf("model %s not found", modelName)
	}

	r.mu.Lock()
	if len(r.cache) >= r.cacheSize {
		// Eviction is wholesale; the set of model names in play is tiny.
		r.cache = make(map[string]CreatorFunc)
	}
	r.cache[modelName] = matched
	r.mu.Unlock()

	return matched, nil
}

// NewGenerator creates a generator for the given model name, resolving the
// implementation through the registry patterns.
func (r *Registry) NewGenerator(ctx context.Context, opts Options, modelName string) (types.Generator, error) {
	creator, err := r.Resolve(modelName)
	if err != nil {
		return nil, err
	}

	return creator(ctx, opts, modelName)
}

// RegisterGenerator is a convenience function to register a pattern on the
// singleton registry.
func RegisterGenerator(pattern string, creator CreatorFunc) error {
	return GetRegistry().Register(pattern, creator)
}

// RegisterGeneratorType registers multiple patterns for a single creator on
// the singleton registry.
func RegisterGeneratorType(patterns []string, creator CreatorFunc) {
	registry := GetRegistry()
	for _, pattern := range patterns {
		if err := registry.Register(pattern, creator); err != nil {
			panic(err)
		}
	}
}

// NewGenerator is a convenience function to create a generator from the
// singleton registry.
func NewGenerator(ctx context.Context, opts Options, modelName string) (types.Generator, error) {
	return GetRegistry().NewGenerator(ctx, opts, modelName)
}
