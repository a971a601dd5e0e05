// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matrixtool/mtx/lib/config"
	"github.com/matrixtool/mtx/lib/ref"
	"github.com/matrixtool/mtx/messaging"
)

// testApp builds an App against a fake homeserver. The snapshot lists
// joinedRooms as current memberships; stdout and stderr are captured.
type testApp struct {
	*App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestApp(t *testing.T, handler http.HandlerFunc, joinedRooms ...string) *testApp {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: server.URL,
		Logger:        slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	directSession, err := client.SessionFromToken(ref.MustParseUserID("@alice:example.org"), "DEVICE1", "tok")
	if err != nil {
		t.Fatalf("SessionFromToken failed: %v", err)
	}
	t.Cleanup(func() { directSession.Close() })

	snapshot := &messaging.SyncResponse{
		NextBatch: "s1",
		Rooms: messaging.RoomsSection{
			Join:   make(map[ref.RoomID]messaging.JoinedRoom),
			Invite: make(map[ref.RoomID]messaging.InvitedRoom),
			Leave:  make(map[ref.RoomID]messaging.LeftRoom),
		},
	}
	for _, room := range joinedRooms {
		snapshot.Rooms.Join[ref.MustParseRoomID(room)] = messaging.JoinedRoom{}
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &testApp{
		App: &App{
			Options:  &config.Options{},
			Session:  directSession,
			Snapshot: snapshot,
			Syncer:   messaging.NewSyncer(directSession, nil, "s1", ""),
			Logger:   slog.New(slog.DiscardHandler),
			Stdout:   stdout,
			Stderr:   stderr,
		},
		stdout: stdout,
		stderr: stderr,
	}
}

// noRequests fails the test if any request reaches the fake homeserver.
func noRequests(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(writer http.ResponseWriter, request *http.Request) {
		t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		http.NotFound(writer, request)
	}
}
