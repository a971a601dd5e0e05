// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/matrixtool/mtx/lib/ref"
	"github.com/matrixtool/mtx/lib/secret"
	"github.com/matrixtool/mtx/messaging"
)

// ErrMissingHomeserver reports a fresh login attempted without a
// homeserver URL.
var ErrMissingHomeserver = errors.New("no homeserver URL configured and no session to restore")

// ErrMissingCredentials reports a fresh login attempted without a full
// username/password pair.
var ErrMissingCredentials = errors.New("username and password are required when no session file exists")

// InvalidSessionError reports a restored session whose access token the
// homeserver rejected. The stored token is stale: the user must remove
// the session file and log in again.
type InvalidSessionError struct {
	UserID string
	Err    error
}

func (e *InvalidSessionError) Error() string {
	return fmt.Sprintf("stored session for %s is no longer valid: %v", e.UserID, e.Err)
}

func (e *InvalidSessionError) Unwrap() error { return e.Err }

// ConnectOptions configures Connect.
type ConnectOptions struct {
	// HomeserverURL is the homeserver base URL. Required for a fresh
	// login; on restore the session file's recorded homeserver wins
	// when present.
	HomeserverURL string

	// SessionFile is the path to the session record. Empty disables
	// both restore and save: every invocation is a fresh login whose
	// token is discarded on exit.
	SessionFile string

	// Username and Password are the fresh-login credentials. Ignored
	// when a session is restored. Connect reads the password buffer
	// but does not close it.
	Username string
	Password *secret.Buffer

	// HTTPClient overrides the transport (tests). Nil uses the default.
	HTTPClient *http.Client

	// Logger is used for structured logging. Nil uses slog.Default().
	Logger *slog.Logger
}

// Connect establishes an authenticated session and takes the initial
// sync snapshot.
//
// When the session file exists it is restored and validated with a
// whoami probe — a corrupt file or rejected token is fatal, never a
// silent fallback to password login. Otherwise Connect logs in with
// the configured credentials and, if a session file path is set,
// persists the new session before syncing.
//
// The returned snapshot is a full non-blocking /sync (timeout 0): its
// room sections describe current memberships and its next_batch is the
// resume point for an incremental sync loop. The caller owns the
// returned session and must Close it.
func Connect(ctx context.Context, options ConnectOptions) (*messaging.DirectSession, *messaging.SyncResponse, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var stored *Session
	if options.SessionFile != "" {
		loaded, err := Load(options.SessionFile)
		switch {
		case err == nil:
			stored = loaded
		case errors.Is(err, ErrNotFound):
			// Fresh login path.
		default:
			return nil, nil, err
		}
	}

	var session *messaging.DirectSession
	if stored != nil {
		restored, err := restore(ctx, stored, options, logger)
		if err != nil {
			return nil, nil, err
		}
		session = restored
	} else {
		fresh, err := login(ctx, options, logger)
		if err != nil {
			return nil, nil, err
		}
		session = fresh
	}

	snapshot, err := session.Sync(ctx, messaging.SyncOptions{SetTimeout: true, Timeout: 0})
	if err != nil {
		session.Close()
		return nil, nil, fmt.Errorf("initial sync failed: %w", err)
	}
	logger.Debug("initial sync complete",
		"joined_rooms", len(snapshot.Rooms.Join),
		"next_batch", snapshot.NextBatch,
	)
	return session, snapshot, nil
}

func restore(ctx context.Context, stored *Session, options ConnectOptions, logger *slog.Logger) (*messaging.DirectSession, error) {
	homeserver := stored.Homeserver
	if homeserver == "" {
		homeserver = options.HomeserverURL
	}
	if homeserver == "" {
		return nil, &CorruptError{Path: options.SessionFile, Err: errors.New("missing homeserver")}
	}

	userID, err := ref.ParseUserID(stored.UserID)
	if err != nil {
		return nil, &CorruptError{Path: options.SessionFile, Err: fmt.Errorf("invalid user_id: %w", err)}
	}

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: homeserver,
		HTTPClient:    options.HTTPClient,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	session, err := client.SessionFromToken(userID, stored.DeviceID, stored.AccessToken)
	if err != nil {
		return nil, err
	}

	if _, err := session.WhoAmI(ctx); err != nil {
		session.Close()
		return nil, &InvalidSessionError{UserID: stored.UserID, Err: err}
	}

	logger.Debug("restored session", "user_id", stored.UserID, "session_file", options.SessionFile)
	return session, nil
}

func login(ctx context.Context, options ConnectOptions, logger *slog.Logger) (*messaging.DirectSession, error) {
	if options.HomeserverURL == "" {
		return nil, ErrMissingHomeserver
	}
	if options.Username == "" || options.Password == nil {
		return nil, ErrMissingCredentials
	}

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: options.HomeserverURL,
		HTTPClient:    options.HTTPClient,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	session, err := client.Login(ctx, options.Username, options.Password)
	if err != nil {
		return nil, err
	}

	if options.SessionFile != "" {
		record := &Session{
			UserID:      session.UserID().String(),
			DeviceID:    session.DeviceID(),
			AccessToken: session.AccessToken(),
			Homeserver:  options.HomeserverURL,
		}
		if err := Save(options.SessionFile, record); err != nil {
			session.Close()
			return nil, err
		}
		logger.Debug("saved session", "session_file", options.SessionFile)
	}
	return session, nil
}
