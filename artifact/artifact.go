// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

// ErrArtifactNotFound is reported when an artifact name or version is
// unknown.
var ErrArtifactNotFound = errors.New("artifact not found")

// Service stores produced images per session. Implementations must be safe
// for concurrent use.
type Service interface {
	// Save stores artifact under the session and name, returning the version
	// it was assigned. Versions start at 0 and grow by one per save of the
	// same name.
	Save(ctx context.Context, sessionID, name string, artifact *genai.Blob) (int, error)

	// Load returns the artifact at version; a negative version loads the
	// latest one.
	Load(ctx context.Context, sessionID, name string, version int) (*genai.Blob, error)

	// List returns the artifact names of a session, sorted.
	List(ctx context.Context, sessionID string) ([]string, error)

	// Delete removes every version of the named artifact. Deleting an
	// unknown artifact is not an error.
	Delete(ctx context.Context, sessionID, name string) error

	// DeleteSession removes every artifact of a session.
	DeleteSession(ctx context.Context, sessionID string) error

	// Close releases any backing resources.
	Close() error
}
