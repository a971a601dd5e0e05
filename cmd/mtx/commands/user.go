// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/matrixtool/mtx/cmd/mtx/cli"
)

func (a *App) runWhoAmI(ctx context.Context) error {
	userID, err := a.Session.WhoAmI(ctx)
	if err != nil {
		return remoteError(err)
	}
	fmt.Fprintln(a.Stdout, userID)
	return nil
}

func (a *App) runGetDisplayName(ctx context.Context) error {
	name, err := a.Session.GetDisplayName(ctx, a.Session.UserID())
	if err != nil {
		return remoteError(err)
	}
	if name == "" {
		fmt.Fprintln(a.Stderr, "no display name set")
		return nil
	}
	fmt.Fprintln(a.Stdout, name)
	return nil
}

func (a *App) runSetDisplayName(ctx context.Context, cmd UserSetDisplayName) error {
	path := "/_matrix/client/v3/profile/" + a.Session.UserID().String() + "/displayname"
	if done, err := a.dryRun("PUT", path, map[string]string{"displayname": cmd.Name}); done {
		return err
	}
	if err := a.Session.SetDisplayName(ctx, cmd.Name); err != nil {
		return remoteError(err)
	}
	return nil
}

func (a *App) runGetAvatarURL(ctx context.Context) error {
	avatarURL, err := a.Session.AvatarURL(ctx, a.Session.UserID())
	if err != nil {
		return remoteError(err)
	}
	if avatarURL == "" {
		fmt.Fprintln(a.Stderr, "no avatar set")
		return nil
	}
	fmt.Fprintln(a.Stdout, avatarURL)
	return nil
}

// runSetAvatar uploads a local image and points the profile at it. The
// content type is sniffed from the file's leading bytes.
func (a *App) runSetAvatar(ctx context.Context, cmd UserSetAvatar) error {
	data, err := os.ReadFile(cmd.Path)
	if err != nil {
		return cli.Validation("reading avatar file: %w", err)
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return cli.Validation("%s does not look like an image (detected %s)", cmd.Path, contentType)
	}

	if done, err := a.dryRun("POST", "/_matrix/media/v3/upload", map[string]any{
		"content_type": contentType,
		"bytes":        len(data),
	}); done {
		return err
	}

	mxcURI, err := a.Session.UploadMedia(ctx, contentType, bytes.NewReader(data))
	if err != nil {
		return remoteError(err)
	}
	if err := a.Session.SetAvatarURL(ctx, mxcURI); err != nil {
		return remoteError(err)
	}
	fmt.Fprintln(a.Stdout, mxcURI)
	return nil
}

func (a *App) runSetAvatarURL(ctx context.Context, cmd UserSetAvatarURL) error {
	if !strings.HasPrefix(cmd.URL, "mxc://") {
		return cli.Validation("avatar URL must be an mxc:// URI, got %q", cmd.URL)
	}
	path := "/_matrix/client/v3/profile/" + a.Session.UserID().String() + "/avatar_url"
	if done, err := a.dryRun("PUT", path, map[string]string{"avatar_url": cmd.URL}); done {
		return err
	}
	if err := a.Session.SetAvatarURL(ctx, cmd.URL); err != nil {
		return remoteError(err)
	}
	return nil
}

// runUserRooms lists the rooms in one membership bucket of the
// login-time snapshot. No network traffic: the snapshot is complete
// for the session user.
func (a *App) runUserRooms(cmd UserRooms) error {
	var roomIDs []string
	switch cmd.Membership {
	case "joined":
		for roomID := range a.Snapshot.Rooms.Join {
			roomIDs = append(roomIDs, roomID.String())
		}
	case "invited":
		for roomID := range a.Snapshot.Rooms.Invite {
			roomIDs = append(roomIDs, roomID.String())
		}
	case "left":
		for roomID := range a.Snapshot.Rooms.Leave {
			roomIDs = append(roomIDs, roomID.String())
		}
	default:
		return cli.Internal("unknown membership bucket %q", cmd.Membership)
	}

	sort.Strings(roomIDs)
	renderRoomTable(a.Stdout, fmt.Sprintf("%s rooms", cmd.Membership), roomIDs)
	return nil
}
