// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

// Package session persists login sessions and decides between restoring
// a saved session and performing a fresh login.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Session is the durable record of a login, written to the session file
// after a fresh password login and read back on later invocations.
type Session struct {
	UserID      string `json:"user_id"`
	DeviceID    string `json:"device_id,omitempty"`
	AccessToken string `json:"access_token"`
	Homeserver  string `json:"homeserver"`
}

// ErrNotFound reports that no session file exists at the given path.
var ErrNotFound = errors.New("session file not found")

// CorruptError reports a session file that exists but cannot be used:
// unreadable, invalid JSON, or missing required fields. A corrupt file
// is never silently replaced by a fresh login — the user must remove or
// fix it.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("session file %s is unusable: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Load reads and validates the session file at path.
// Returns ErrNotFound if the file does not exist, *CorruptError if it
// exists but cannot be parsed or lacks required fields.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, &CorruptError{Path: path, Err: err}
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	if session.UserID == "" {
		return nil, &CorruptError{Path: path, Err: errors.New("missing user_id")}
	}
	if session.AccessToken == "" {
		return nil, &CorruptError{Path: path, Err: errors.New("missing access_token")}
	}
	return &session, nil
}

// Save writes the session record to path. The parent directory is
// created with 0700 and the file with 0600: the file holds a live
// access token.
func Save(path string, session *Session) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file %s: %w", path, err)
	}
	return nil
}
