// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/matrixtool/mtx/cmd/mtx/cli"
	"github.com/matrixtool/mtx/lib/config"
	"github.com/matrixtool/mtx/lib/ref"
	"github.com/matrixtool/mtx/messaging"
)

// App is the execution context shared by all command handlers: the
// authenticated session, the login-time sync snapshot, and the running
// sync loop. Stdout and Stderr are injectable for tests.
type App struct {
	Options  *config.Options
	Session  *messaging.DirectSession
	Snapshot *messaging.SyncResponse
	Syncer   *messaging.Syncer
	Logger   *slog.Logger
	Stdout   io.Writer
	Stderr   io.Writer
}

// dispatch executes the parsed command. A nil command is a no-op: the
// invocation authenticated and synchronized, nothing more was asked.
func (a *App) dispatch(ctx context.Context, command Command) error {
	switch cmd := command.(type) {
	case nil:
		return nil
	case MessageSend:
		return a.runMessageSend(ctx, cmd)
	case MessageListen:
		return a.runMessageListen(ctx, cmd)
	case UserWhoAmI:
		return a.runWhoAmI(ctx)
	case UserGetDisplayName:
		return a.runGetDisplayName(ctx)
	case UserSetDisplayName:
		return a.runSetDisplayName(ctx, cmd)
	case UserGetAvatarURL:
		return a.runGetAvatarURL(ctx)
	case UserSetAvatar:
		return a.runSetAvatar(ctx, cmd)
	case UserSetAvatarURL:
		return a.runSetAvatarURL(ctx, cmd)
	case UserRooms:
		return a.runUserRooms(cmd)
	case RoomCreate:
		return a.runRoomCreate(ctx, cmd)
	case RoomCreateAlias:
		return a.runRoomCreateAlias(ctx, cmd)
	case RoomInvite:
		return a.runRoomInvite(ctx, cmd)
	case RoomJoin:
		return a.runRoomJoin(ctx, cmd)
	case RoomKick:
		return a.runRoomKick(ctx, cmd)
	case RoomBan:
		return a.runRoomBan(ctx, cmd)
	case RoomLeave:
		return a.runRoomLeave(ctx, cmd)
	default:
		return cli.Internal("unhandled command type %T", command)
	}
}

// resolveRoom resolves a user-supplied room reference and maps the
// resolver's typed errors onto command error categories.
func (a *App) resolveRoom(ctx context.Context, reference string) (ref.RoomID, error) {
	roomID, err := messaging.ResolveRoom(ctx, a.Session, reference)
	if err != nil {
		var malformed *messaging.MalformedRoomRefError
		if errors.As(err, &malformed) {
			return ref.RoomID{}, cli.Validation("%w", err)
		}
		var notFound *messaging.AliasNotFoundError
		if errors.As(err, &notFound) {
			return ref.RoomID{}, cli.NotFound("%w", err)
		}
		return ref.RoomID{}, remoteError(err)
	}
	return roomID, nil
}

// parseUser validates a user argument as a fully-qualified Matrix user ID.
func parseUser(raw string) (ref.UserID, error) {
	userID, err := ref.ParseUserID(raw)
	if err != nil {
		return ref.UserID{}, cli.Validation("%w", err)
	}
	return userID, nil
}

// Membership checks run against the login-time snapshot, which is
// complete for the session user: no network round-trip is needed to
// refuse an operation up front.

func (a *App) isJoined(roomID ref.RoomID) bool {
	_, ok := a.Snapshot.Rooms.Join[roomID]
	return ok
}

func (a *App) isInvited(roomID ref.RoomID) bool {
	_, ok := a.Snapshot.Rooms.Invite[roomID]
	return ok
}

func (a *App) isLeft(roomID ref.RoomID) bool {
	_, ok := a.Snapshot.Rooms.Leave[roomID]
	return ok
}

func (a *App) requireJoined(roomID ref.RoomID) error {
	if !a.isJoined(roomID) {
		return cli.Forbidden("not a member of %s (join it first)", roomID)
	}
	return nil
}

// dryRun short-circuits a mutating handler when --dry-run is set:
// it prints the request that would have been sent and reports true.
// Nothing reaches the network after a true return.
func (a *App) dryRun(method, path string, request any) (bool, error) {
	if !a.Options.DryRun {
		return false, nil
	}
	payload, err := json.MarshalIndent(request, "", "  ")
	if err != nil {
		return true, cli.Internal("encoding dry-run request: %w", err)
	}
	fmt.Fprintf(a.Stdout, "dry-run: %s %s\n%s\n", method, path, payload)
	return true, nil
}

// remoteError maps a homeserver failure onto a command error category.
// Already-categorized errors pass through unchanged.
func remoteError(err error) error {
	var cmdErr *cli.CommandError
	if errors.As(err, &cmdErr) {
		return err
	}

	var matrixErr *messaging.MatrixError
	if errors.As(err, &matrixErr) {
		switch {
		case matrixErr.Code == messaging.ErrCodeNotFound:
			return cli.NotFound("%w", err)
		case matrixErr.Code == messaging.ErrCodeForbidden:
			return cli.Forbidden("%w", err)
		case matrixErr.Code == messaging.ErrCodeRoomInUse:
			return cli.Conflict("%w", err)
		case matrixErr.Code == messaging.ErrCodeLimitExceeded, matrixErr.StatusCode >= 500:
			return cli.Transient("%w", err)
		default:
			return cli.Internal("%w", err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return cli.Transient("%w", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return cli.Transient("%w", err)
	}
	return cli.Internal("%w", err)
}
