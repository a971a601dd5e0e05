// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the mtx command tree and executes it.
//
// Parsing and execution are separate phases. The cli.Command tree
// parses flags and positionals into a tagged Command value (one struct
// per leaf). Run then authenticates once, takes the initial sync
// snapshot, and races the background sync loop against the dispatched
// command; the first to finish decides the outcome and cancels the
// other.
package commands
