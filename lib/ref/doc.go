// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated value types for Matrix identifiers.
//
// Matrix identifiers are sigil-prefixed strings: room IDs start with
// '!', room aliases with '#', and user IDs with '@', each followed by
// a localpart, a ':', and a server name. Raw strings arrive from the
// command line and from homeserver responses; they are parsed into
// these types at the boundary and stay validated from then on.
//
// All types are immutable value types. The zero value is not a valid
// identifier; use IsZero to check. UnmarshalText validates on the way
// in, so JSON decoding of API responses rejects malformed identifiers
// instead of letting them propagate.
package ref
