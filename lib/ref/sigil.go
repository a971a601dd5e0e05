// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// parseSigilID validates a sigil-prefixed Matrix identifier of the form
// <sigil><localpart>:<server> and returns the localpart and server.
func parseSigilID(raw string, sigil byte, kind string) (localpart, server string, err error) {
	if raw == "" {
		return "", "", fmt.Errorf("empty %s", kind)
	}
	if raw[0] != sigil {
		return "", "", fmt.Errorf("%s must start with %q: %q", kind, string(sigil), raw)
	}

	colon := -1
	for i := 1; i < len(raw); i++ {
		if raw[i] == ':' {
			colon = i
			break
		}
	}
	if colon < 0 {
		return "", "", fmt.Errorf("%s missing ':server' suffix: %q", kind, raw)
	}
	if colon == 1 {
		return "", "", fmt.Errorf("%s has empty localpart: %q", kind, raw)
	}
	if colon == len(raw)-1 {
		return "", "", fmt.Errorf("%s has empty server name: %q", kind, raw)
	}

	return raw[1:colon], raw[colon+1:], nil
}
