// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// formatTimestamp converts an origin_server_ts (milliseconds since
// epoch) to a human-readable local time string.
func formatTimestamp(originServerTS int64) string {
	t := time.UnixMilli(originServerTS)
	return t.Local().Format("2006-01-02 15:04:05")
}

// renderRoomTable prints a one-column table of room IDs.
func renderRoomTable(w io.Writer, header string, roomIDs []string) {
	writer := table.NewWriter()
	writer.SetOutputMirror(w)
	writer.SetStyle(table.StyleLight)
	writer.AppendHeader(table.Row{header})
	for _, roomID := range roomIDs {
		writer.AppendRow(table.Row{roomID})
	}
	writer.Render()
}
