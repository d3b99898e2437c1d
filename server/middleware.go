// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fmind/combanana/pkg/logging"
)

// statusRecorder captures the response status for the access log while
// passing Flush through so streaming handlers keep working.
type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging attaches a request-scoped logger to the context and writes one
// access log line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger := s.logger.With(
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		ctx := logging.NewContext(r.Context(), logger)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.InfoContext(ctx, "request served",
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
