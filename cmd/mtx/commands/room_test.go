// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/matrixtool/mtx/cmd/mtx/cli"
)

func TestRoomCreate(t *testing.T) {
	var created map[string]any
	app := newTestApp(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost || !strings.HasSuffix(request.URL.Path, "/createRoom") {
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		}
		if err := json.NewDecoder(request.Body).Decode(&created); err != nil {
			t.Errorf("decoding create request: %v", err)
		}
		json.NewEncoder(writer).Encode(map[string]string{"room_id": "!new:example.org"})
	})

	err := app.dispatch(context.Background(), RoomCreate{
		Name:       "Planning",
		Topic:      "weekly planning",
		Alias:      "planning",
		Version:    "11",
		Visibility: "private",
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if created["name"] != "Planning" || created["room_alias_name"] != "planning" {
		t.Errorf("create request %v missing name or alias", created)
	}
	if created["room_version"] != "11" {
		t.Errorf("create request %v did not forward the room version", created)
	}
	if !strings.Contains(app.stdout.String(), "!new:example.org") {
		t.Errorf("stdout %q does not mention the new room ID", app.stdout.String())
	}
}

func TestRoomCreate_DryRunIncludesVersion(t *testing.T) {
	app := newTestApp(t, noRequests(t))
	app.Options.DryRun = true

	err := app.dispatch(context.Background(), RoomCreate{Name: "Planning", Version: "11"})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	output := app.stdout.String()
	if !strings.HasPrefix(output, "dry-run: POST ") {
		t.Errorf("output %q does not start with the dry-run header", output)
	}
	if !strings.Contains(output, `"room_version": "11"`) {
		t.Errorf("output %q does not include the room version", output)
	}
}

func TestRoomJoin_AlreadyMember(t *testing.T) {
	app := newTestApp(t, noRequests(t), "!room:example.org")

	err := app.dispatch(context.Background(), RoomJoin{Room: "!room:example.org"})
	var commandErr *cli.CommandError
	if !errors.As(err, &commandErr) || commandErr.Category != cli.CategoryConflict {
		t.Fatalf("got %v, want a conflict error", err)
	}
}

func TestRoomLeave_NotMember(t *testing.T) {
	app := newTestApp(t, noRequests(t))

	err := app.dispatch(context.Background(), RoomLeave{Room: "!room:example.org"})
	var commandErr *cli.CommandError
	if !errors.As(err, &commandErr) || commandErr.Category != cli.CategoryConflict {
		t.Fatalf("got %v, want a conflict error", err)
	}
}

func TestRoomKick_ForwardsReason(t *testing.T) {
	var kicked map[string]any
	app := newTestApp(t, func(writer http.ResponseWriter, request *http.Request) {
		if !strings.HasSuffix(request.URL.Path, "/kick") {
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		}
		if err := json.NewDecoder(request.Body).Decode(&kicked); err != nil {
			t.Errorf("decoding kick request: %v", err)
		}
		writer.Write([]byte("{}"))
	}, "!room:example.org")

	err := app.dispatch(context.Background(), RoomKick{
		Room:   "!room:example.org",
		User:   "@bob:example.org",
		Reason: "spamming",
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if kicked["user_id"] != "@bob:example.org" || kicked["reason"] != "spamming" {
		t.Errorf("kick request %v missing user or reason", kicked)
	}
}

func TestRoomInvite_BadUser(t *testing.T) {
	app := newTestApp(t, noRequests(t), "!room:example.org")

	err := app.dispatch(context.Background(), RoomInvite{
		Room: "!room:example.org",
		User: "bob",
	})
	var commandErr *cli.CommandError
	if !errors.As(err, &commandErr) || commandErr.Category != cli.CategoryValidation {
		t.Fatalf("got %v, want a validation error", err)
	}
}

func TestRoomForbiddenFromServer(t *testing.T) {
	app := newTestApp(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
		json.NewEncoder(writer).Encode(map[string]string{
			"errcode": "M_FORBIDDEN",
			"error":   "You are not invited to this room.",
		})
	})

	err := app.dispatch(context.Background(), RoomJoin{Room: "!private:example.org"})
	var commandErr *cli.CommandError
	if !errors.As(err, &commandErr) || commandErr.Category != cli.CategoryForbidden {
		t.Fatalf("got %v, want a forbidden error", err)
	}
}
