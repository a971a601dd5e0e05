// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matrixtool/mtx/cmd/mtx/cli"
)

func TestUserWhoAmI(t *testing.T) {
	app := newTestApp(t, func(writer http.ResponseWriter, request *http.Request) {
		if !strings.HasSuffix(request.URL.Path, "/account/whoami") {
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		}
		json.NewEncoder(writer).Encode(map[string]string{
			"user_id":   "@alice:example.org",
			"device_id": "DEVICE1",
		})
	})

	if err := app.dispatch(context.Background(), UserWhoAmI{}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if got := strings.TrimSpace(app.stdout.String()); got != "@alice:example.org" {
		t.Errorf("stdout %q, want the user ID", got)
	}
}

func TestUserGetDisplayName_Unset(t *testing.T) {
	app := newTestApp(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte("{}"))
	})

	if err := app.dispatch(context.Background(), UserGetDisplayName{}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if app.stdout.Len() != 0 {
		t.Errorf("stdout %q, want empty for an unset name", app.stdout.String())
	}
	if !strings.Contains(app.stderr.String(), "no display name set") {
		t.Errorf("stderr %q does not explain the unset name", app.stderr.String())
	}
}

func TestUserSetAvatar(t *testing.T) {
	// Minimal valid PNG header: sniffs as image/png.
	pngHeader := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	avatarPath := filepath.Join(t.TempDir(), "avatar.png")
	if err := os.WriteFile(avatarPath, pngHeader, 0o600); err != nil {
		t.Fatalf("writing avatar fixture: %v", err)
	}

	var uploadType string
	var profileBody map[string]string
	app := newTestApp(t, func(writer http.ResponseWriter, request *http.Request) {
		switch {
		case strings.Contains(request.URL.Path, "/media/"):
			uploadType = request.Header.Get("Content-Type")
			json.NewEncoder(writer).Encode(map[string]string{"content_uri": "mxc://example.org/abc123"})
		case strings.HasSuffix(request.URL.Path, "/avatar_url"):
			if err := json.NewDecoder(request.Body).Decode(&profileBody); err != nil {
				t.Errorf("decoding avatar_url request: %v", err)
			}
			writer.Write([]byte("{}"))
		default:
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		}
	})

	if err := app.dispatch(context.Background(), UserSetAvatar{Path: avatarPath}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if uploadType != "image/png" {
		t.Errorf("upload content type %q, want image/png", uploadType)
	}
	if profileBody["avatar_url"] != "mxc://example.org/abc123" {
		t.Errorf("profile update %v does not carry the uploaded URI", profileBody)
	}
	if !strings.Contains(app.stdout.String(), "mxc://example.org/abc123") {
		t.Errorf("stdout %q does not mention the mxc URI", app.stdout.String())
	}
}

func TestUserSetAvatar_RejectsNonImage(t *testing.T) {
	textPath := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(textPath, []byte("plain text, not an image"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	app := newTestApp(t, noRequests(t))

	err := app.dispatch(context.Background(), UserSetAvatar{Path: textPath})
	var commandErr *cli.CommandError
	if !errors.As(err, &commandErr) || commandErr.Category != cli.CategoryValidation {
		t.Fatalf("got %v, want a validation error", err)
	}
}

func TestUserSetAvatarURL_RequiresMXC(t *testing.T) {
	app := newTestApp(t, noRequests(t))

	err := app.dispatch(context.Background(), UserSetAvatarURL{URL: "https://example.org/pic.png"})
	var commandErr *cli.CommandError
	if !errors.As(err, &commandErr) || commandErr.Category != cli.CategoryValidation {
		t.Fatalf("got %v, want a validation error", err)
	}
}

func TestUserRooms(t *testing.T) {
	app := newTestApp(t, noRequests(t), "!zebra:example.org", "!apple:example.org")

	if err := app.dispatch(context.Background(), UserRooms{Membership: "joined"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	output := app.stdout.String()
	apple := strings.Index(output, "!apple:example.org")
	zebra := strings.Index(output, "!zebra:example.org")
	if apple < 0 || zebra < 0 {
		t.Fatalf("output %q does not list both rooms", output)
	}
	if apple > zebra {
		t.Errorf("output lists rooms out of order:\n%s", output)
	}
}

func TestUserRooms_EmptyBucket(t *testing.T) {
	app := newTestApp(t, noRequests(t))

	if err := app.dispatch(context.Background(), UserRooms{Membership: "invited"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
}
