// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"time"

	"github.com/fmind/combanana/types"
)

// Session is one browser's planning state: the workflow being built and when
// it was last touched.
type Session struct {
	// ID is the random identifier carried by the session cookie.
	ID string

	// Workflow is the plan the session is building. Never nil; fresh
	// sessions start from [types.NewEmptyWorkflow].
	Workflow *types.Workflow

	// UpdatedAt is the last time the session was created, read, or written.
	// The TTL sweep measures idleness against it.
	UpdatedAt time.Time
}

// Service stores sessions. Implementations must be safe for concurrent use
// and must return copies that callers can mutate freely.
type Service interface {
	// Create makes a fresh session with an empty workflow.
	Create(ctx context.Context) (*Session, error)

	// Get returns the session with the given ID, or [ErrSessionNotFound]
	// when it does not exist or has expired. Getting a session keeps it
	// alive.
	Get(ctx context.Context, id string) (*Session, error)

	// UpdateWorkflow replaces the session's workflow.
	UpdateWorkflow(ctx context.Context, id string, workflow *types.Workflow) error

	// Delete removes the session. Deleting an unknown session is not an
	// error.
	Delete(ctx context.Context, id string) error
}
