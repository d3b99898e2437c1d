// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"
	"strings"

	"github.com/fmind/combanana/internal/pool"
)

// progressLog accumulates the execution log shown in the progress pane, one
// line per event.
type progressLog struct {
	b *strings.Builder
}

func newProgressLog(workflowName string) *progressLog {
	b := pool.String.Get()
	b.Reset()
	fmt.Fprintf(b, "# Executing Workflow: %s\n", workflowName)
	return &progressLog{b: b}
}

func (l *progressLog) stepStarted(title string) {
	fmt.Fprintf(l.b, "- Step: %s ...\n", title)
}

func (l *progressLog) modelText(text string) {
	fmt.Fprintf(l.b, "> Model: %s\n", text)
}

func (l *progressLog) done() {
	l.b.WriteString("DONE.")
}

func (l *progressLog) text() string {
	return l.b.String()
}

// release returns the builder to the pool; the log must not be used after.
func (l *progressLog) release() {
	pool.String.Put(l.b)
	l.b = nil
}
