// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fmind/combanana/types"
)

// ErrSessionNotFound is reported when a session ID is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// InMemoryService is an in-memory implementation of [Service].
type InMemoryService struct {
	sessions map[string]*Session
	ttl      time.Duration

	logger *slog.Logger
	mu     sync.RWMutex

	now func() time.Time
}

var _ Service = (*InMemoryService)(nil)

// NewInMemoryService creates a new [InMemoryService]. Sessions idle longer
// than ttl are treated as gone; a non-positive ttl keeps sessions forever.
func NewInMemoryService(ttl time.Duration) *InMemoryService {
	return &InMemoryService{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

// Create makes a fresh session with an empty workflow.
func (s *InMemoryService) Create(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ses := &Session{
		ID:        uuid.New().String(),
		Workflow:  types.NewEmptyWorkflow(),
		UpdatedAt: s.now(),
	}
	s.sessions[ses.ID] = ses

	s.logger.InfoContext(ctx, "session created", slog.String("session_id", ses.ID))

	return s.copySession(ses)
}

// Get returns a copy of the session and refreshes its idle clock.
func (s *InMemoryService) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ses, ok := s.sessions[id]
	if !ok || s.expired(ses) {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	ses.UpdatedAt = s.now()

	return s.copySession(ses)
}

// UpdateWorkflow replaces the session's workflow with a copy of workflow.
func (s *InMemoryService) UpdateWorkflow(ctx context.Context, id string, workflow *types.Workflow) error {
	if workflow == nil {
		return errors.New("workflow must not be nil")
	}
	cloned, err := workflow.Clone()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ses, ok := s.sessions[id]
	if !ok || s.expired(ses) {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	ses.Workflow = cloned
	ses.UpdatedAt = s.now()

	s.logger.InfoContext(ctx, "session workflow updated",
		slog.String("session_id", id),
		slog.String("workflow", workflow.Name),
		slog.Int("steps", len(workflow.Steps)),
	)

	return nil
}

// Delete removes the session.
func (s *InMemoryService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Sweep drops every expired session and returns the reclaimed IDs, so the
// caller can release whatever it keeps per session elsewhere, like artifacts.
func (s *InMemoryService) Sweep(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reclaimed []string
	for id, ses := range s.sessions {
		if s.expired(ses) {
			delete(s.sessions, id)
			reclaimed = append(reclaimed, id)
		}
	}
	if len(reclaimed) > 0 {
		s.logger.InfoContext(ctx, "sessions reclaimed", slog.Int("count", len(reclaimed)))
	}

	return reclaimed
}

// Len reports how many sessions are stored, expired ones included until the
// next sweep.
func (s *InMemoryService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

func (s *InMemoryService) expired(ses *Session) bool {
	return s.ttl > 0 && s.now().Sub(ses.UpdatedAt) > s.ttl
}

// copySession deep-copies the session so the stored one cannot be modified
// through the returned value.
func (s *InMemoryService) copySession(ses *Session) (*Session, error) {
	workflow, err := ses.Workflow.Clone()
	if err != nil {
		return nil, fmt.Errorf("copy session %s: %w", ses.ID, err)
	}
	return &Session{
		ID:        ses.ID,
		Workflow:  workflow,
		UpdatedAt: ses.UpdatedAt,
	}, nil
}
