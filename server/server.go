// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"log/slog"
	"net/http"

	"github.com/fmind/combanana/artifact"
	"github.com/fmind/combanana/session"
	"github.com/fmind/combanana/types"
)

// SessionCookie is the name of the cookie binding a browser to its workflow
// state.
const SessionCookie = "combanana_session"

// Request body bounds. Intents are short text; uploads are single images.
const (
	maxIntentBytes   = 1 << 20
	maxWorkflowBytes = 1 << 20
	maxUploadBytes   = 32 << 20
)

// Server wires the planner, executor, and stores behind the HTTP surface.
type Server struct {
	planner   types.Planner
	executor  types.Executor
	sessions  session.Service
	artifacts artifact.Service

	logger *slog.Logger
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger used for request and handler logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a [Server] from its collaborators.
func New(planner types.Planner, executor types.Executor, sessions session.Service, artifacts artifact.Service, opts ...Option) *Server {
	s := &Server{
		planner:   planner,
		executor:  executor,
		sessions:  sessions,
		artifacts: artifacts,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler, request logging included.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("GET /api/workflows", s.handleWorkflow)
	mux.HandleFunc("POST /api/workflows", s.handleDefine)
	mux.HandleFunc("PUT /api/workflows", s.handleUpdate)
	mux.HandleFunc("POST /api/executions", s.handleExecute)
	mux.HandleFunc("GET /api/artifacts/{name}", s.handleArtifact)

	return s.withLogging(mux)
}

// ensureSession resolves the request's session, creating a fresh one (and
// setting the cookie) when the browser has none or its session expired.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		ses, err := s.sessions.Get(r.Context(), cookie.Value)
		if err == nil {
			return ses, nil
		}
	}

	ses, err := s.sessions.Create(r.Context())
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    ses.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ses, nil
}
