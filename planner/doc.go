// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

// Package planner turns free-text user intent into structured workflows with
// a hosted language model.
//
// The model is instructed through a system prompt that embeds the session's
// current workflow, so consecutive requests amend the plan instead of
// replacing it. Responses are requested as JSON against a schema matching
// [types.Workflow] and are validated before they reach the caller; anything
// unusable surfaces as a [*types.PlanningError].
package planner
