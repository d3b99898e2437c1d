// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

// Package types defines the domain model shared by every Combo-Banana component:
// workflows and their steps, the planner and executor contracts, the execution
// event stream, and the error kinds surfaced to the user.
//
// A [Workflow] is an ordered, named sequence of [Step] values produced by one
// planning call and treated as immutable afterwards; reads out of session state
// hand back deep copies. Execution pairs each step with the image it produced,
// collected in an [ExecutionResult].
//
// Two error kinds cross the API boundary: [PlanningError] when free-text intent
// cannot be turned into a usable workflow, and [ExecutionError] carrying the index
// of the failing step. Neither is fatal to the process; each request is independent.
package types
