// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"net/url"

	"github.com/matrixtool/mtx/cmd/mtx/cli"
	"github.com/matrixtool/mtx/lib/ref"
	"github.com/matrixtool/mtx/messaging"
)

func (a *App) runRoomCreate(ctx context.Context, cmd RoomCreate) error {
	request := messaging.CreateRoomRequest{
		Name:        cmd.Name,
		Topic:       cmd.Topic,
		Alias:       cmd.Alias,
		RoomVersion: cmd.Version,
		Visibility:  cmd.Visibility,
	}
	if done, err := a.dryRun("POST", "/_matrix/client/v3/createRoom", request); done {
		return err
	}

	response, err := a.Session.CreateRoom(ctx, request)
	if err != nil {
		return remoteError(err)
	}
	fmt.Fprintln(a.Stdout, response.RoomID)
	return nil
}

func (a *App) runRoomCreateAlias(ctx context.Context, cmd RoomCreateAlias) error {
	alias, err := ref.ParseRoomAlias(cmd.Alias)
	if err != nil {
		return cli.Validation("%w", err)
	}
	roomID, err := a.resolveRoom(ctx, cmd.Room)
	if err != nil {
		return err
	}

	path := "/_matrix/client/v3/directory/room/" + url.PathEscape(alias.String())
	if done, err := a.dryRun("PUT", path, messaging.CreateAliasRequest{RoomID: roomID}); done {
		return err
	}

	if err := a.Session.CreateAlias(ctx, alias, roomID); err != nil {
		return remoteError(err)
	}
	return nil
}

func (a *App) runRoomInvite(ctx context.Context, cmd RoomInvite) error {
	roomID, err := a.resolveRoom(ctx, cmd.Room)
	if err != nil {
		return err
	}
	userID, err := parseUser(cmd.User)
	if err != nil {
		return err
	}
	if err := a.requireJoined(roomID); err != nil {
		return err
	}

	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/invite", url.PathEscape(roomID.String()))
	if done, err := a.dryRun("POST", path, messaging.InviteRequest{UserID: userID}); done {
		return err
	}

	if err := a.Session.InviteUser(ctx, roomID, userID); err != nil {
		return remoteError(err)
	}
	return nil
}

func (a *App) runRoomJoin(ctx context.Context, cmd RoomJoin) error {
	roomID, err := a.resolveRoom(ctx, cmd.Room)
	if err != nil {
		return err
	}
	if a.isJoined(roomID) {
		return cli.Conflict("already a member of %s", roomID)
	}

	path := "/_matrix/client/v3/join/" + url.PathEscape(roomID.String())
	if done, err := a.dryRun("POST", path, struct{}{}); done {
		return err
	}

	joined, err := a.Session.JoinRoom(ctx, roomID)
	if err != nil {
		return remoteError(err)
	}
	fmt.Fprintln(a.Stdout, joined)
	return nil
}

func (a *App) runRoomKick(ctx context.Context, cmd RoomKick) error {
	roomID, err := a.resolveRoom(ctx, cmd.Room)
	if err != nil {
		return err
	}
	userID, err := parseUser(cmd.User)
	if err != nil {
		return err
	}
	if err := a.requireJoined(roomID); err != nil {
		return err
	}

	request := messaging.KickRequest{UserID: userID, Reason: cmd.Reason}
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/kick", url.PathEscape(roomID.String()))
	if done, err := a.dryRun("POST", path, request); done {
		return err
	}

	if err := a.Session.KickUser(ctx, roomID, userID, cmd.Reason); err != nil {
		return remoteError(err)
	}
	return nil
}

func (a *App) runRoomBan(ctx context.Context, cmd RoomBan) error {
	roomID, err := a.resolveRoom(ctx, cmd.Room)
	if err != nil {
		return err
	}
	userID, err := parseUser(cmd.User)
	if err != nil {
		return err
	}
	if err := a.requireJoined(roomID); err != nil {
		return err
	}

	request := messaging.BanRequest{UserID: userID, Reason: cmd.Reason}
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/ban", url.PathEscape(roomID.String()))
	if done, err := a.dryRun("POST", path, request); done {
		return err
	}

	if err := a.Session.BanUser(ctx, roomID, userID, cmd.Reason); err != nil {
		return remoteError(err)
	}
	return nil
}

func (a *App) runRoomLeave(ctx context.Context, cmd RoomLeave) error {
	roomID, err := a.resolveRoom(ctx, cmd.Room)
	if err != nil {
		return err
	}
	if !a.isJoined(roomID) {
		if a.isLeft(roomID) {
			return cli.Conflict("already left %s", roomID)
		}
		return cli.Conflict("not a member of %s", roomID)
	}

	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/leave", url.PathEscape(roomID.String()))
	if done, err := a.dryRun("POST", path, struct{}{}); done {
		return err
	}

	if err := a.Session.LeaveRoom(ctx, roomID); err != nil {
		return remoteError(err)
	}
	return nil
}
