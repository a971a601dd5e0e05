// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"fmt"

	"github.com/matrixtool/mtx/lib/ref"
)

// AliasResolver resolves a room alias to a room ID via the homeserver
// directory. *DirectSession implements it.
type AliasResolver interface {
	ResolveAlias(ctx context.Context, alias ref.RoomAlias) (ref.RoomID, error)
}

// MalformedRoomRefError reports a room reference that carries no
// recognized sigil or fails structural validation. No network call was
// made for the reference.
type MalformedRoomRefError struct {
	Ref string
	Err error
}

func (e *MalformedRoomRefError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed room reference %q: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("malformed room reference %q: must start with '!' (room ID) or '#' (alias)", e.Ref)
}

func (e *MalformedRoomRefError) Unwrap() error { return e.Err }

// AliasNotFoundError reports a structurally valid alias that the
// homeserver directory has no mapping for.
type AliasNotFoundError struct {
	Alias ref.RoomAlias
}

func (e *AliasNotFoundError) Error() string {
	return fmt.Sprintf("room alias %s not found in the server directory", e.Alias)
}

// ResolveRoom turns a user-supplied room reference into a room ID.
//
// References starting with '!' are parsed as room IDs with no network
// traffic. References starting with '#' are parsed as aliases and
// resolved through a single directory lookup; a directory miss
// (M_NOT_FOUND) is reported as *AliasNotFoundError. Anything else is a
// *MalformedRoomRefError, again with no network traffic.
func ResolveRoom(ctx context.Context, resolver AliasResolver, reference string) (ref.RoomID, error) {
	if reference == "" {
		return ref.RoomID{}, &MalformedRoomRefError{Ref: reference}
	}

	switch reference[0] {
	case '!':
		roomID, err := ref.ParseRoomID(reference)
		if err != nil {
			return ref.RoomID{}, &MalformedRoomRefError{Ref: reference, Err: err}
		}
		return roomID, nil

	case '#':
		alias, err := ref.ParseRoomAlias(reference)
		if err != nil {
			return ref.RoomID{}, &MalformedRoomRefError{Ref: reference, Err: err}
		}
		roomID, err := resolver.ResolveAlias(ctx, alias)
		if err != nil {
			if IsMatrixError(err, ErrCodeNotFound) {
				return ref.RoomID{}, &AliasNotFoundError{Alias: alias}
			}
			return ref.RoomID{}, fmt.Errorf("resolving alias %s: %w", alias, err)
		}
		return roomID, nil

	default:
		return ref.RoomID{}, &MalformedRoomRefError{Ref: reference}
	}
}
