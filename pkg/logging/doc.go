// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging provides context-based structured logging on Go's standard slog package.
//
// A logger is attached to a [context.Context] once, near the top of the request
// or process lifecycle, and retrieved anywhere below it:
//
//	logger := logging.NewLogger(os.Getenv("LOGGING_LEVEL"))
//	ctx := logging.NewContext(ctx, logger)
//
//	// ... deeper in the stack
//	logging.FromContext(ctx).Info("workflow defined", "steps", len(workflow.Steps))
//
// When no logger is found in the context, FromContext returns a default JSON
// logger writing to stdout at INFO level, so logging always works even when no
// explicit logger is configured.
package logging
