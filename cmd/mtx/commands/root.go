// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/matrixtool/mtx/cmd/mtx/cli"
	"github.com/matrixtool/mtx/lib/config"
)

// rootState carries everything the parse phase produces for the
// execution phase: resolved options and the tagged command. A nil
// parsed command with noop set means "authenticate and exit" (bare
// `mtx` with no subcommand); nil without noop means help was shown.
type rootState struct {
	options *config.Options
	verbose bool
	parsed  Command
	noop    bool
}

// Run is the entry point called from main. It loads configuration,
// parses args into a tagged command, then authenticates and races the
// sync loop against the command.
func Run(ctx context.Context, args []string) error {
	options, err := config.Load()
	if err != nil {
		return cli.Validation("loading configuration: %w", err)
	}

	state := &rootState{options: options}
	if err := rootCommand(state).Execute(args); err != nil {
		return err
	}
	if state.parsed == nil && !state.noop {
		// Help output was printed; nothing to execute.
		return nil
	}
	return execute(ctx, state)
}

func rootCommand(state *rootState) *cli.Command {
	return &cli.Command{
		Name:    "mtx",
		Summary: "A command-line Matrix client",
		Description: `mtx is a command-line Matrix client. Every invocation authenticates
(restoring a saved session when one exists, logging in otherwise),
synchronizes with the homeserver, runs one command, and exits.

Configuration is layered: the YAML config file, then MTX_* environment
variables, then flags. Run 'mtx <command> --help' for per-command
usage.`,
		Usage: "mtx [flags] <command>",
		Examples: []cli.Example{
			{
				Description: "Send a message to a room alias",
				Command:     "mtx message send '#general:example.org' 'Hello, world!'",
			},
			{
				Description: "Stream messages from a room until Ctrl-C",
				Command:     "mtx message listen '!roomid:example.org'",
			},
			{
				Description: "Create a room without touching the server",
				Command:     "mtx --dry-run room create --name Lobby --alias lobby",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("mtx", pflag.ContinueOnError)
			state.options.AddFlags(flagSet)
			flagSet.BoolVarP(&state.verbose, "verbose", "v", state.verbose, "enable debug logging")
			return flagSet
		},
		Subcommands: []*cli.Command{
			messageCommand(state),
			userCommand(state),
			roomCommand(state),
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unknown command %q\n\nRun 'mtx --help' for usage.", args[0])
			}
			state.noop = true
			return nil
		},
	}
}

func messageCommand(state *rootState) *cli.Command {
	return &cli.Command{
		Name:    "message",
		Summary: "Send and receive room messages",
		Subcommands: []*cli.Command{
			{
				Name:    "send",
				Summary: "Send a text message to a room",
				Description: `Send a plain text message (m.text) to a room. The room can be given
as a room ID (!abc:example.org) or an alias (#general:example.org);
aliases are resolved through the server directory.`,
				Usage: "mtx message send <room> <message>",
				Examples: []cli.Example{
					{Command: "mtx message send '#general:example.org' 'Hello, world!'"},
				},
				Run: func(args []string) error {
					if len(args) < 2 {
						return cli.Validation("usage: mtx message send <room> <message>")
					}
					if len(args) > 2 {
						return cli.Validation("unexpected argument: %s (room and message should each be a single argument)", args[2])
					}
					state.parsed = MessageSend{Room: args[0], Body: args[1]}
					return nil
				},
			},
			{
				Name:    "listen",
				Summary: "Stream messages from a room until interrupted",
				Description: `Print every text message arriving in the room as it happens. Only
events newer than the login-time snapshot are shown. Stop with Ctrl-C;
a clean interrupt exits 0.`,
				Usage: "mtx message listen <room>",
				Examples: []cli.Example{
					{Command: "mtx message listen '!roomid:example.org'"},
				},
				Run: func(args []string) error {
					if len(args) != 1 {
						return cli.Validation("usage: mtx message listen <room>")
					}
					state.parsed = MessageListen{Room: args[0]}
					return nil
				},
			},
		},
	}
}

func userCommand(state *rootState) *cli.Command {
	return &cli.Command{
		Name:    "user",
		Summary: "Profile and membership queries for the logged-in user",
		Subcommands: []*cli.Command{
			{
				Name:    "whoami",
				Summary: "Print the authenticated user ID",
				Usage:   "mtx user whoami",
				Run: func(args []string) error {
					if len(args) != 0 {
						return cli.Validation("usage: mtx user whoami")
					}
					state.parsed = UserWhoAmI{}
					return nil
				},
			},
			{
				Name:    "get-display-name",
				Summary: "Print the user's display name",
				Usage:   "mtx user get-display-name",
				Run: func(args []string) error {
					if len(args) != 0 {
						return cli.Validation("usage: mtx user get-display-name")
					}
					state.parsed = UserGetDisplayName{}
					return nil
				},
			},
			{
				Name:    "set-display-name",
				Summary: "Set the user's display name",
				Usage:   "mtx user set-display-name <name>",
				Run: func(args []string) error {
					if len(args) != 1 {
						return cli.Validation("usage: mtx user set-display-name <name>")
					}
					state.parsed = UserSetDisplayName{Name: args[0]}
					return nil
				},
			},
			{
				Name:    "get-avatar-url",
				Summary: "Print the user's avatar MXC URI",
				Usage:   "mtx user get-avatar-url",
				Run: func(args []string) error {
					if len(args) != 0 {
						return cli.Validation("usage: mtx user get-avatar-url")
					}
					state.parsed = UserGetAvatarURL{}
					return nil
				},
			},
			{
				Name:    "set-avatar",
				Summary: "Upload an image file and set it as the avatar",
				Usage:   "mtx user set-avatar <file>",
				Examples: []cli.Example{
					{Command: "mtx user set-avatar ./me.png"},
				},
				Run: func(args []string) error {
					if len(args) != 1 {
						return cli.Validation("usage: mtx user set-avatar <file>")
					}
					state.parsed = UserSetAvatar{Path: args[0]}
					return nil
				},
			},
			{
				Name:    "set-avatar-url",
				Summary: "Set the avatar to an already-uploaded MXC URI",
				Usage:   "mtx user set-avatar-url <mxc-uri>",
				Run: func(args []string) error {
					if len(args) != 1 {
						return cli.Validation("usage: mtx user set-avatar-url <mxc-uri>")
					}
					state.parsed = UserSetAvatarURL{URL: args[0]}
					return nil
				},
			},
			{
				Name:    "joined-rooms",
				Summary: "List rooms the user has joined",
				Usage:   "mtx user joined-rooms",
				Run: func(args []string) error {
					if len(args) != 0 {
						return cli.Validation("usage: mtx user joined-rooms")
					}
					state.parsed = UserRooms{Membership: "joined"}
					return nil
				},
			},
			{
				Name:    "invited-rooms",
				Summary: "List rooms the user has a pending invite to",
				Usage:   "mtx user invited-rooms",
				Run: func(args []string) error {
					if len(args) != 0 {
						return cli.Validation("usage: mtx user invited-rooms")
					}
					state.parsed = UserRooms{Membership: "invited"}
					return nil
				},
			},
			{
				Name:    "left-rooms",
				Summary: "List rooms the user has left",
				Usage:   "mtx user left-rooms",
				Run: func(args []string) error {
					if len(args) != 0 {
						return cli.Validation("usage: mtx user left-rooms")
					}
					state.parsed = UserRooms{Membership: "left"}
					return nil
				},
			},
		},
	}
}

func roomCommand(state *rootState) *cli.Command {
	var create RoomCreate
	var kickReason, banReason string

	return &cli.Command{
		Name:    "room",
		Summary: "Room lifecycle and membership operations",
		Subcommands: []*cli.Command{
			{
				Name:    "create",
				Summary: "Create a room",
				Description: `Create a room. All attributes are optional: an unnamed private room
is created by default. --alias takes the local part only (the server
name is appended by the homeserver). --version requests a specific
room version; the server's default applies when omitted.`,
				Usage: "mtx room create [--name <name>] [--topic <topic>] [--alias <local>] [--version <ver>] [--visibility <public|private>]",
				Examples: []cli.Example{
					{Command: "mtx room create --name Lobby --topic 'General chat' --alias lobby"},
					{Command: "mtx room create --name Modern --version 11"},
				},
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
					flagSet.StringVar(&create.Name, "name", "", "room name")
					flagSet.StringVar(&create.Topic, "topic", "", "room topic")
					flagSet.StringVar(&create.Alias, "alias", "", "local alias (without # or :server)")
					flagSet.StringVar(&create.Version, "version", "", "requested room version")
					flagSet.StringVar(&create.Visibility, "visibility", "", "directory visibility: public or private")
					return flagSet
				},
				Run: func(args []string) error {
					if len(args) != 0 {
						return cli.Validation("unexpected argument: %s", args[0])
					}
					if create.Visibility != "" && create.Visibility != "public" && create.Visibility != "private" {
						return cli.Validation("--visibility must be public or private, got %q", create.Visibility)
					}
					state.parsed = create
					return nil
				},
			},
			{
				Name:    "create-alias",
				Summary: "Publish a directory alias for an existing room",
				Usage:   "mtx room create-alias <room> <alias>",
				Examples: []cli.Example{
					{Command: "mtx room create-alias '!roomid:example.org' '#general:example.org'"},
				},
				Run: func(args []string) error {
					if len(args) != 2 {
						return cli.Validation("usage: mtx room create-alias <room> <alias>")
					}
					state.parsed = RoomCreateAlias{Room: args[0], Alias: args[1]}
					return nil
				},
			},
			{
				Name:    "invite",
				Summary: "Invite a user to a room",
				Usage:   "mtx room invite <room> <user>",
				Run: func(args []string) error {
					if len(args) != 2 {
						return cli.Validation("usage: mtx room invite <room> <user>")
					}
					state.parsed = RoomInvite{Room: args[0], User: args[1]}
					return nil
				},
			},
			{
				Name:    "join",
				Summary: "Join a room",
				Usage:   "mtx room join <room>",
				Run: func(args []string) error {
					if len(args) != 1 {
						return cli.Validation("usage: mtx room join <room>")
					}
					state.parsed = RoomJoin{Room: args[0]}
					return nil
				},
			},
			{
				Name:    "kick",
				Summary: "Remove a user from a room",
				Usage:   "mtx room kick <room> <user> [--reason <text>]",
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("kick", pflag.ContinueOnError)
					flagSet.StringVar(&kickReason, "reason", "", "reason shown to the removed user")
					return flagSet
				},
				Run: func(args []string) error {
					if len(args) != 2 {
						return cli.Validation("usage: mtx room kick <room> <user> [--reason <text>]")
					}
					state.parsed = RoomKick{Room: args[0], User: args[1], Reason: kickReason}
					return nil
				},
			},
			{
				Name:    "ban",
				Summary: "Ban a user from a room",
				Usage:   "mtx room ban <room> <user> [--reason <text>]",
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("ban", pflag.ContinueOnError)
					flagSet.StringVar(&banReason, "reason", "", "reason recorded in the ban event")
					return flagSet
				},
				Run: func(args []string) error {
					if len(args) != 2 {
						return cli.Validation("usage: mtx room ban <room> <user> [--reason <text>]")
					}
					state.parsed = RoomBan{Room: args[0], User: args[1], Reason: banReason}
					return nil
				},
			},
			{
				Name:    "leave",
				Summary: "Leave a room",
				Usage:   "mtx room leave <room>",
				Run: func(args []string) error {
					if len(args) != 1 {
						return cli.Validation("usage: mtx room leave <room>")
					}
					state.parsed = RoomLeave{Room: args[0]}
					return nil
				},
			},
		},
	}
}
