// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

// Command mtx is a command-line Matrix client.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matrixtool/mtx/cmd/mtx/cli"
	"github.com/matrixtool/mtx/cmd/mtx/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := commands.Run(ctx, os.Args[1:])
	stop()
	if err == nil {
		return
	}

	// Commands that already wrote their own output signal the code
	// without an extra message.
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}

	fmt.Fprintf(os.Stderr, "mtx: %v\n", err)

	var cmdErr *cli.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Category == cli.CategoryValidation {
		os.Exit(2)
	}
	os.Exit(1)
}
