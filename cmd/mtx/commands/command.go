// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package commands

// Command is the parsed form of one mtx invocation. Each leaf of the
// CLI tree produces exactly one of the concrete types below; dispatch
// is an exhaustive type switch in App.dispatch.
type Command interface {
	isCommand()
}

// MessageSend sends a text message to a room.
type MessageSend struct {
	Room string
	Body string
}

// MessageListen streams messages from a room until interrupted.
type MessageListen struct {
	Room string
}

// UserWhoAmI reports the authenticated user ID.
type UserWhoAmI struct{}

// UserGetDisplayName prints the user's display name.
type UserGetDisplayName struct{}

// UserSetDisplayName sets the user's display name.
type UserSetDisplayName struct {
	Name string
}

// UserGetAvatarURL prints the user's avatar MXC URI.
type UserGetAvatarURL struct{}

// UserSetAvatar uploads a local image file and sets it as the avatar.
type UserSetAvatar struct {
	Path string
}

// UserSetAvatarURL sets the avatar to an already-uploaded MXC URI.
type UserSetAvatarURL struct {
	URL string
}

// UserRooms lists rooms by membership state ("joined", "invited", "left").
type UserRooms struct {
	Membership string
}

// RoomCreate creates a room.
type RoomCreate struct {
	Name       string
	Topic      string
	Alias      string
	Version    string
	Visibility string
}

// RoomCreateAlias publishes a directory alias for an existing room.
type RoomCreateAlias struct {
	Room  string
	Alias string
}

// RoomInvite invites a user to a room.
type RoomInvite struct {
	Room string
	User string
}

// RoomJoin joins a room.
type RoomJoin struct {
	Room string
}

// RoomKick removes a user from a room.
type RoomKick struct {
	Room   string
	User   string
	Reason string
}

// RoomBan bans a user from a room.
type RoomBan struct {
	Room   string
	User   string
	Reason string
}

// RoomLeave leaves a room.
type RoomLeave struct {
	Room string
}

func (MessageSend) isCommand()        {}
func (MessageListen) isCommand()      {}
func (UserWhoAmI) isCommand()         {}
func (UserGetDisplayName) isCommand() {}
func (UserSetDisplayName) isCommand() {}
func (UserGetAvatarURL) isCommand()   {}
func (UserSetAvatar) isCommand()      {}
func (UserSetAvatarURL) isCommand()   {}
func (UserRooms) isCommand()          {}
func (RoomCreate) isCommand()         {}
func (RoomCreateAlias) isCommand()    {}
func (RoomInvite) isCommand()         {}
func (RoomJoin) isCommand()           {}
func (RoomKick) isCommand()           {}
func (RoomBan) isCommand()            {}
func (RoomLeave) isCommand()          {}
