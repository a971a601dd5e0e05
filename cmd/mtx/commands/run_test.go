// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matrixtool/mtx/cmd/mtx/cli"
	"github.com/matrixtool/mtx/lib/ref"
	"github.com/matrixtool/mtx/messaging"
)

// scriptedSession replays a fixed list of sync results, then blocks
// until the context is cancelled.
type scriptedSession struct {
	mu     sync.Mutex
	script []func() (*messaging.SyncResponse, error)
}

func (s *scriptedSession) Sync(ctx context.Context, options messaging.SyncOptions) (*messaging.SyncResponse, error) {
	s.mu.Lock()
	var step func() (*messaging.SyncResponse, error)
	if len(s.script) > 0 {
		step = s.script[0]
		s.script = s.script[1:]
	}
	s.mu.Unlock()

	if step != nil {
		return step()
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

// idleSession blocks on every sync until cancelled.
func idleSession() *scriptedSession { return &scriptedSession{} }

func TestRace_CommandResultWins(t *testing.T) {
	syncer := messaging.NewSyncer(idleSession(), nil, "s1", "")
	commandErr := cli.NotFound("no such thing")

	err := race(context.Background(), syncer, func(ctx context.Context) error {
		return commandErr
	})
	if !errors.Is(err, commandErr) {
		t.Fatalf("got %v, want the command's error", err)
	}
}

func TestRace_FatalSyncWins(t *testing.T) {
	session := &scriptedSession{script: []func() (*messaging.SyncResponse, error){
		func() (*messaging.SyncResponse, error) {
			return nil, &messaging.MatrixError{
				Code:       messaging.ErrCodeUnknownToken,
				Message:    "Access token revoked",
				StatusCode: 401,
			}
		},
	}}
	syncer := messaging.NewSyncer(session, nil, "s1", "")

	commandCancelled := make(chan struct{})
	err := race(context.Background(), syncer, func(ctx context.Context) error {
		<-ctx.Done()
		close(commandCancelled)
		return ctx.Err()
	})

	var commandErr *cli.CommandError
	if !errors.As(err, &commandErr) || commandErr.Category != cli.CategoryInternal {
		t.Fatalf("got %v, want an internal error from the rejected token", err)
	}
	if !strings.Contains(err.Error(), "Access token revoked") {
		t.Errorf("error %q does not carry the server message", err)
	}
	select {
	case <-commandCancelled:
	case <-time.After(time.Second):
		t.Fatal("command was not cancelled after the fatal sync error")
	}
}

func TestRace_OuterCancellationReturnsCommandResult(t *testing.T) {
	syncer := messaging.NewSyncer(idleSession(), nil, "s1", "")
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := race(ctx, syncer, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	if err != nil {
		t.Fatalf("got %v, want nil after a clean interrupt", err)
	}
}

// signalWriter closes a channel on the first write, letting a test
// order a scripted sync batch after the command has subscribed.
type signalWriter struct {
	writer io.Writer
	once   sync.Once
	ready  chan struct{}
}

func (s *signalWriter) Write(p []byte) (int, error) {
	s.once.Do(func() { close(s.ready) })
	return s.writer.Write(p)
}

func TestListen_PrintsIncomingMessages(t *testing.T) {
	roomID := ref.MustParseRoomID("!room:example.org")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The listening banner is written after the subscription exists;
	// hold back the first batch until then so no event is dropped.
	subscribed := make(chan struct{})

	session := &scriptedSession{script: []func() (*messaging.SyncResponse, error){
		func() (*messaging.SyncResponse, error) {
			<-subscribed
			return &messaging.SyncResponse{
				NextBatch: "s2",
				Rooms: messaging.RoomsSection{
					Join: map[ref.RoomID]messaging.JoinedRoom{
						roomID: {Timeline: messaging.TimelineSection{Events: []messaging.Event{
							{
								EventID:        "$text:example.org",
								Type:           "m.room.message",
								Sender:         ref.MustParseUserID("@bob:example.org"),
								OriginServerTS: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli(),
								Content:        map[string]any{"msgtype": "m.text", "body": "hi alice"},
							},
							{
								EventID: "$image:example.org",
								Type:    "m.room.message",
								Sender:  ref.MustParseUserID("@bob:example.org"),
								Content: map[string]any{"msgtype": "m.image", "body": "photo.png"},
							},
						}}},
					},
				},
			}, nil
		},
		func() (*messaging.SyncResponse, error) {
			// Delivered everything; stop the run.
			cancel()
			return nil, context.Canceled
		},
	}}

	app := newTestApp(t, noRequests(t), "!room:example.org")
	app.Syncer = messaging.NewSyncer(session, nil, "s1", "")
	app.App.Stderr = &signalWriter{writer: app.stderr, ready: subscribed}

	err := race(ctx, app.Syncer, func(ctx context.Context) error {
		return app.dispatch(ctx, MessageListen{Room: "!room:example.org"})
	})
	if err != nil {
		t.Fatalf("race returned %v, want nil", err)
	}

	output := app.stdout.String()
	if !strings.Contains(output, "From: @bob:example.org") {
		t.Errorf("output %q missing the sender line", output)
	}
	if !strings.Contains(output, "Message: hi alice") {
		t.Errorf("output %q missing the message body", output)
	}
	if strings.Contains(output, "photo.png") {
		t.Errorf("output %q includes a non-text message", output)
	}
	if !strings.Contains(app.stderr.String(), "Listening to !room:example.org") {
		t.Errorf("stderr %q missing the listening banner", app.stderr.String())
	}
}

func TestListen_NotJoined(t *testing.T) {
	app := newTestApp(t, noRequests(t))
	app.Syncer = messaging.NewSyncer(idleSession(), nil, "s1", "")

	err := race(context.Background(), app.Syncer, func(ctx context.Context) error {
		return app.dispatch(ctx, MessageListen{Room: "!room:example.org"})
	})
	var commandErr *cli.CommandError
	if !errors.As(err, &commandErr) || commandErr.Category != cli.CategoryForbidden {
		t.Fatalf("got %v, want a forbidden error", err)
	}
}
