// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact stores the images produced by workflow executions, keyed
// by session and artifact name.
//
// Saving the same name again creates a new version rather than overwriting,
// so re-running a workflow keeps earlier takes addressable. Loads default to
// the latest version.
//
// Two implementations are provided: [InMemoryService] for the default
// ephemeral setup, and [GCSService] which persists artifacts to a Google
// Cloud Storage bucket when one is configured.
package artifact
