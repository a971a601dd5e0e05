// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"strings"
	"testing"
)

func TestReadResponse(t *testing.T) {
	data, err := ReadResponse(strings.NewReader(`{"ok":true}`))
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("unexpected body: %s", data)
	}
}

func TestDecodeResponse(t *testing.T) {
	var decoded struct {
		RoomID string `json:"room_id"`
	}
	err := DecodeResponse(strings.NewReader(`{"room_id":"!abc:example.org"}`), &decoded)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if decoded.RoomID != "!abc:example.org" {
		t.Errorf("unexpected room ID: %s", decoded.RoomID)
	}
}

func TestDecodeResponseMalformed(t *testing.T) {
	var decoded map[string]any
	if err := DecodeResponse(strings.NewReader("not json"), &decoded); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
