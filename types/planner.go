// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
)

// Planner turns free-text user intent into a structured [Workflow].
//
// Define receives the session's current workflow so follow-up requests amend
// the existing plan instead of starting over: "make step 2 black and white"
// must keep the other steps intact. Implementations return a fresh workflow
// and never mutate current.
//
// Failures are reported as a [*PlanningError]; a plan with zero steps is
// rejected with [ErrEmptyPlan] inside it.
type Planner interface {
	// Define builds a new workflow from intent, using current as the plan
	// being amended. A nil current is treated as an empty workflow.
	Define(ctx context.Context, intent string, current *Workflow) (*Workflow, error)
}
