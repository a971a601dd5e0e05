// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"net/url"

	"github.com/matrixtool/mtx/lib/ref"
	"github.com/matrixtool/mtx/messaging"
)

func (a *App) runMessageSend(ctx context.Context, cmd MessageSend) error {
	roomID, err := a.resolveRoom(ctx, cmd.Room)
	if err != nil {
		return err
	}
	if err := a.requireJoined(roomID); err != nil {
		return err
	}

	content := messaging.NewTextMessage(cmd.Body)
	sendPath := fmt.Sprintf("/_matrix/client/v3/rooms/%s/send/m.room.message/{txn}", url.PathEscape(roomID.String()))
	if done, err := a.dryRun("PUT", sendPath, content); done {
		return err
	}

	eventID, err := a.Session.SendMessage(ctx, roomID, content)
	if err != nil {
		return remoteError(err)
	}
	fmt.Fprintln(a.Stdout, eventID)
	return nil
}

func (a *App) runMessageListen(ctx context.Context, cmd MessageListen) error {
	roomID, err := a.resolveRoom(ctx, cmd.Room)
	if err != nil {
		return err
	}
	if err := a.requireJoined(roomID); err != nil {
		return err
	}

	subscription := a.Syncer.Subscribe(func(eventRoom ref.RoomID, event messaging.Event) {
		if eventRoom != roomID || event.Type != "m.room.message" {
			return
		}
		msgType, _ := event.Content["msgtype"].(string)
		if msgType != "m.text" {
			return
		}
		body, _ := event.Content["body"].(string)
		fmt.Fprintf(a.Stdout, "From: %s\nDate: %s\nMessage: %s\n\n",
			event.Sender, formatTimestamp(event.OriginServerTS), body)
	})
	defer subscription.Unsubscribe()

	fmt.Fprintf(a.Stderr, "Listening to %s, press Ctrl-C to stop\n", roomID)
	<-ctx.Done()
	return nil
}
