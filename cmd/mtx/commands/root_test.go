// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"reflect"
	"testing"

	"github.com/matrixtool/mtx/cmd/mtx/cli"
	"github.com/matrixtool/mtx/lib/config"
)

func parseArgs(t *testing.T, args ...string) (*rootState, error) {
	t.Helper()
	state := &rootState{options: &config.Options{}}
	err := rootCommand(state).Execute(args)
	return state, err
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
	}{
		{
			name: "message send",
			args: []string{"message", "send", "#general:example.org", "hello"},
			want: MessageSend{Room: "#general:example.org", Body: "hello"},
		},
		{
			name: "message listen",
			args: []string{"message", "listen", "!room:example.org"},
			want: MessageListen{Room: "!room:example.org"},
		},
		{
			name: "user whoami",
			args: []string{"user", "whoami"},
			want: UserWhoAmI{},
		},
		{
			name: "user joined-rooms",
			args: []string{"user", "joined-rooms"},
			want: UserRooms{Membership: "joined"},
		},
		{
			name: "room create with flags",
			args: []string{"room", "create", "--name", "Lobby", "--alias", "lobby", "--version", "11"},
			want: RoomCreate{Name: "Lobby", Alias: "lobby", Version: "11"},
		},
		{
			name: "room kick with trailing reason flag",
			args: []string{"room", "kick", "!room:example.org", "@bob:example.org", "--reason", "spam"},
			want: RoomKick{Room: "!room:example.org", User: "@bob:example.org", Reason: "spam"},
		},
		{
			name: "room ban",
			args: []string{"room", "ban", "!room:example.org", "@bob:example.org"},
			want: RoomBan{Room: "!room:example.org", User: "@bob:example.org"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			state, err := parseArgs(t, test.args...)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if !reflect.DeepEqual(state.parsed, test.want) {
				t.Errorf("parsed %#v, want %#v", state.parsed, test.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing message body", []string{"message", "send", "#general:example.org"}},
		{"too many send arguments", []string{"message", "send", "#general:example.org", "a", "b"}},
		{"unknown command", []string{"frobnicate"}},
		{"whoami takes no arguments", []string{"user", "whoami", "extra"}},
		{"bad visibility", []string{"room", "create", "--visibility", "internal"}},
		{"unknown flag", []string{"room", "create", "--nmae", "Lobby"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := parseArgs(t, test.args...)
			var commandErr *cli.CommandError
			if !errors.As(err, &commandErr) || commandErr.Category != cli.CategoryValidation {
				t.Fatalf("got %v, want a validation error", err)
			}
		})
	}
}

func TestParse_GlobalFlagsBeforeSubcommand(t *testing.T) {
	state, err := parseArgs(t, "--dry-run", "--verbose", "room", "join", "!room:example.org")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !state.options.DryRun {
		t.Error("--dry-run not applied to options")
	}
	if !state.verbose {
		t.Error("--verbose not recorded")
	}
	if _, ok := state.parsed.(RoomJoin); !ok {
		t.Errorf("parsed %#v, want RoomJoin", state.parsed)
	}
}

func TestParse_BareInvocationIsNoop(t *testing.T) {
	state, err := parseArgs(t)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if state.parsed != nil || !state.noop {
		t.Errorf("parsed=%#v noop=%v, want nil command with noop set", state.parsed, state.noop)
	}
}

func TestParse_HelpLeavesNothingToExecute(t *testing.T) {
	state, err := parseArgs(t, "--help")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if state.parsed != nil || state.noop {
		t.Errorf("parsed=%#v noop=%v, want neither after help", state.parsed, state.noop)
	}
}
