// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes Combo-Banana over HTTP: a single-page UI, a JSON API
// for defining and editing workflows, a Server-Sent Events stream for running
// them, and artifact serving for the produced images.
//
// Each browser is bound to its planning state through a session cookie; every
// request is otherwise independent and no handler failure is fatal to the
// process.
package server
