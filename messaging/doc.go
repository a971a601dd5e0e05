// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging is the Matrix client-server API layer.
//
// A Client is an unauthenticated connection to a homeserver. Login or
// SessionFromToken upgrades it to a DirectSession, which carries the
// access token (in mmap-backed memory, locked against swap) and wraps
// the authenticated endpoints: room lifecycle, membership, profile,
// media upload, and /sync.
//
// ResolveRoom turns a user-supplied room reference (a "!" room ID or a
// "#" alias) into a concrete room ID, and Syncer drives the long-poll
// /sync loop, fanning events out to subscribers.
package messaging
