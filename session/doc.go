// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

// Package session keeps per-browser workflow state between requests.
//
// Each session pairs a random ID with the workflow the user is building.
// Reads hand out deep copies, so two requests on the same session can never
// alias each other's workflow. Sessions idle longer than their TTL are
// reclaimed by [Service.Sweep], which the server runs on a ticker.
package session
