// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/matrixtool/mtx/lib/ref"
)

// longPollTimeout is the server-side long-poll hold time in
// milliseconds for normal /sync calls. The server holds the connection
// for up to this duration, returning immediately when new events
// arrive. 30 seconds matches the Matrix client-server spec
// recommendation.
const longPollTimeout = 30000

// retryTimeout is the server-side timeout in milliseconds used after
// a /sync error. Short so the retry completes quickly and the next
// attempt can proceed. The HTTP round-trip itself provides backoff.
const retryTimeout = 1000

// syncTokenFile is the file name under the store directory that mirrors
// the most recent next_batch token.
const syncTokenFile = "sync_token"

// EventHandler receives one timeline or state event from the /sync
// stream. Handlers run on the sync goroutine: they must not block.
type EventHandler func(roomID ref.RoomID, event Event)

// SyncSession is the part of DirectSession the Syncer needs.
type SyncSession interface {
	Sync(ctx context.Context, options SyncOptions) (*SyncResponse, error)
}

// Syncer drives the incremental /sync long-poll loop and fans events
// out to subscribers. Events already represented in the snapshot the
// since token came from are never redelivered: every /sync call uses
// the previous response's next_batch exclusively.
//
// Subscribe and Unsubscribe are safe to call from any goroutine,
// including from inside a handler.
type Syncer struct {
	session   SyncSession
	logger    *slog.Logger
	storePath string // optional directory for the sync token mirror

	mu        sync.Mutex
	nextBatch string
	handlers  map[int]EventHandler
	nextID    int
}

// NewSyncer creates a Syncer resuming from the given since token
// (typically the next_batch of the login-time snapshot; empty starts
// from the beginning of the stream). When storePath is non-empty, the
// latest token is mirrored to a file under it after every successful
// sync.
func NewSyncer(session SyncSession, logger *slog.Logger, since, storePath string) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		session:   session,
		logger:    logger,
		storePath: storePath,
		nextBatch: since,
		handlers:  make(map[int]EventHandler),
	}
}

// Subscription is a handle to a registered event handler.
type Subscription struct {
	syncer *Syncer
	id     int
}

// Unsubscribe removes the handler. Idempotent. After Unsubscribe
// returns, no new sync batch will invoke the handler; a batch already
// being dispatched may still deliver to it.
func (sub *Subscription) Unsubscribe() {
	sub.syncer.mu.Lock()
	defer sub.syncer.mu.Unlock()
	delete(sub.syncer.handlers, sub.id)
}

// Subscribe registers a handler for all events the sync loop observes.
// Handlers are invoked in subscription order within each batch.
func (s *Syncer) Subscribe(handler EventHandler) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	return &Subscription{syncer: s, id: id}
}

// Position returns the current sync stream position token.
func (s *Syncer) Position() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextBatch
}

// Run executes the sync loop until ctx is cancelled or the access token
// is rejected. Transient failures (network errors, 5xx, rate limits)
// are retried indefinitely with a short server-side timeout; the stream
// position never advances past a failed response, so no events are
// skipped. Returns nil on cancellation and a non-nil error only when
// the homeserver rejects the token, which requires re-authentication.
func (s *Syncer) Run(ctx context.Context) error {
	lastErrored := false
	for {
		if ctx.Err() != nil {
			return nil
		}

		syncTimeout := longPollTimeout
		if lastErrored {
			syncTimeout = retryTimeout
		}

		response, err := s.session.Sync(ctx, SyncOptions{
			Since:      s.Position(),
			SetTimeout: true,
			Timeout:    syncTimeout,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if IsTokenInvalid(err) {
				return fmt.Errorf("sync stream rejected the access token, re-authentication required: %w", err)
			}
			lastErrored = true
			// TCP-level errors (connection reset, EOF) often indicate
			// a poisoned connection in Go's HTTP pool. Drop idle
			// connections so the next attempt opens a fresh socket.
			if closer, ok := s.session.(interface{ CloseIdleConnections() }); ok {
				closer.CloseIdleConnections()
			}
			s.logger.Warn("sync failed, retrying", "error", err)
			continue
		}
		lastErrored = false

		s.mu.Lock()
		s.nextBatch = response.NextBatch
		s.mu.Unlock()
		s.persistToken(response.NextBatch)

		s.dispatch(response)
	}
}

// dispatch delivers one sync batch to every registered handler. State
// events precede timeline events within a room, matching the delivery
// order from the Matrix server.
func (s *Syncer) dispatch(response *SyncResponse) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.handlers))
	for id := range s.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]EventHandler, len(ids))
	for i, id := range ids {
		handlers[i] = s.handlers[id]
	}
	s.mu.Unlock()

	if len(handlers) == 0 {
		return
	}

	for roomID, joined := range response.Rooms.Join {
		for _, event := range joined.State.Events {
			for _, handler := range handlers {
				handler(roomID, event)
			}
		}
		for _, event := range joined.Timeline.Events {
			for _, handler := range handlers {
				handler(roomID, event)
			}
		}
	}
}

// persistToken mirrors the sync token to the store directory so a later
// invocation could resume from it. Best-effort: a write failure is
// logged, not fatal — the in-memory token still advances.
func (s *Syncer) persistToken(token string) {
	if s.storePath == "" {
		return
	}
	if err := os.MkdirAll(s.storePath, 0o700); err != nil {
		s.logger.Warn("creating sync token store", "path", s.storePath, "error", err)
		return
	}
	path := filepath.Join(s.storePath, syncTokenFile)
	if err := os.WriteFile(path, []byte(token), 0o600); err != nil {
		s.logger.Warn("writing sync token", "path", path, "error", err)
	}
}
