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

func TestMessageSend(t *testing.T) {
	var sentBody string
	app := newTestApp(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPut || !strings.Contains(request.URL.Path, "/send/m.room.message/") {
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		}
		var content map[string]any
		if err := json.NewDecoder(request.Body).Decode(&content); err != nil {
			t.Errorf("decoding message content: %v", err)
		}
		sentBody, _ = content["body"].(string)
		json.NewEncoder(writer).Encode(map[string]string{"event_id": "$sent:example.org"})
	}, "!room:example.org")

	err := app.dispatch(context.Background(), MessageSend{
		Room: "!room:example.org",
		Body: "hello there",
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if sentBody != "hello there" {
		t.Errorf("sent body %q, want %q", sentBody, "hello there")
	}
	if !strings.Contains(app.stdout.String(), "$sent:example.org") {
		t.Errorf("stdout %q does not mention the event ID", app.stdout.String())
	}
}

func TestMessageSend_NotJoined(t *testing.T) {
	app := newTestApp(t, noRequests(t), "!other:example.org")

	err := app.dispatch(context.Background(), MessageSend{
		Room: "!room:example.org",
		Body: "hello",
	})
	var commandErr *cli.CommandError
	if !errors.As(err, &commandErr) || commandErr.Category != cli.CategoryForbidden {
		t.Fatalf("got %v, want a forbidden error", err)
	}
}

func TestMessageSend_MalformedRoom(t *testing.T) {
	app := newTestApp(t, noRequests(t))

	err := app.dispatch(context.Background(), MessageSend{Room: "general", Body: "hi"})
	var commandErr *cli.CommandError
	if !errors.As(err, &commandErr) || commandErr.Category != cli.CategoryValidation {
		t.Fatalf("got %v, want a validation error", err)
	}
}

func TestMessageSend_AliasNotFound(t *testing.T) {
	app := newTestApp(t, func(writer http.ResponseWriter, request *http.Request) {
		if !strings.Contains(request.URL.Path, "/directory/room/") {
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		}
		writer.WriteHeader(http.StatusNotFound)
		json.NewEncoder(writer).Encode(map[string]string{
			"errcode": "M_NOT_FOUND",
			"error":   "Room alias not found",
		})
	})

	err := app.dispatch(context.Background(), MessageSend{Room: "#missing:example.org", Body: "hi"})
	var commandErr *cli.CommandError
	if !errors.As(err, &commandErr) || commandErr.Category != cli.CategoryNotFound {
		t.Fatalf("got %v, want a not-found error", err)
	}
	if !strings.Contains(err.Error(), "#missing:example.org") {
		t.Errorf("error %q does not name the alias", err)
	}
}

func TestMessageSend_DryRun(t *testing.T) {
	app := newTestApp(t, noRequests(t), "!room:example.org")
	app.Options.DryRun = true

	err := app.dispatch(context.Background(), MessageSend{
		Room: "!room:example.org",
		Body: "hello",
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	output := app.stdout.String()
	if !strings.HasPrefix(output, "dry-run: PUT ") {
		t.Errorf("output %q does not start with the dry-run header", output)
	}
	if !strings.Contains(output, `"body": "hello"`) {
		t.Errorf("output %q does not include the request body", output)
	}
}
