// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// InMemoryService is an in-memory implementation of [Service].
type InMemoryService struct {
	artifacts map[string][]*genai.Blob
	mu        sync.Mutex
}

var _ Service = (*InMemoryService)(nil)

// NewInMemoryService creates a new instance of [InMemoryService].
func NewInMemoryService() *InMemoryService {
	return &InMemoryService{
		artifacts: make(map[string][]*genai.Blob),
	}
}

// artifactPath constructs the storage key for a session-scoped artifact.
func (a *InMemoryService) artifactPath(sessionID, name string) string {
	return fmt.Sprintf("%s/%s", sessionID, name)
}

// Save implements [Service].
func (a *InMemoryService) Save(ctx context.Context, sessionID, name string, artifact *genai.Blob) (int, error) {
	if artifact == nil || len(artifact.Data) == 0 {
		return 0, fmt.Errorf("artifact %s must not be empty", name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	path := a.artifactPath(sessionID, name)
	version := len(a.artifacts[path])
	a.artifacts[path] = append(a.artifacts[path], artifact)

	return version, nil
}

// Load implements [Service].
func (a *InMemoryService) Load(ctx context.Context, sessionID, name string, version int) (*genai.Blob, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	path := a.artifactPath(sessionID, name)
	versions, ok := a.artifacts[path]
	if !ok {
		return nil, fmt.Errorf("artifact %s: %w", name, ErrArtifactNotFound)
	}
	if version < 0 {
		version = len(versions) - 1
	}
	if version >= len(versions) {
		return nil, fmt.Errorf("artifact %s version %d: %w", name, version, ErrArtifactNotFound)
	}

	return versions[version], nil
}

// List implements [Service].
func (a *InMemoryService) List(ctx context.Context, sessionID string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	prefix := sessionID + "/"
	names := []string{}
	for path := range a.artifacts {
		if strings.HasPrefix(path, prefix) {
			names = append(names, strings.TrimPrefix(path, prefix))
		}
	}
	slices.Sort(names)

	return names, nil
}

// Delete implements [Service].
func (a *InMemoryService) Delete(ctx context.Context, sessionID, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.artifacts, a.artifactPath(sessionID, name))
	return nil
}

// DeleteSession implements [Service].
func (a *InMemoryService) DeleteSession(ctx context.Context, sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	prefix := sessionID + "/"
	for path := range a.artifacts {
		if strings.HasPrefix(path, prefix) {
			delete(a.artifacts, path)
		}
	}

	return nil
}

// Close implements [Service].
func (a *InMemoryService) Close() error {
	// nothing to do
	return nil
}
