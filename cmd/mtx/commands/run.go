// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/matrixtool/mtx/cmd/mtx/cli"
	"github.com/matrixtool/mtx/lib/config"
	"github.com/matrixtool/mtx/lib/secret"
	"github.com/matrixtool/mtx/messaging"
	"github.com/matrixtool/mtx/session"
)

// execute authenticates, builds the App, and races the sync loop
// against the parsed command.
func execute(ctx context.Context, state *rootState) error {
	logger := cli.NewCommandLogger(state.verbose)
	options := state.options

	// The password is only material on the fresh-login path; an
	// existing session file means no prompt and no password-file read.
	var password *secret.Buffer
	if !sessionFileExists(options.SessionFile) {
		resolved, err := resolvePassword(options)
		if err != nil {
			return cli.Validation("%w", err)
		}
		if resolved != nil {
			defer resolved.Close()
			password = resolved
		}
	}

	directSession, snapshot, err := session.Connect(ctx, session.ConnectOptions{
		HomeserverURL: options.HomeserverURL,
		SessionFile:   options.SessionFile,
		Username:      options.Username,
		Password:      password,
		Logger:        logger,
	})
	if err != nil {
		return connectError(err)
	}
	defer directSession.Close()

	syncer := messaging.NewSyncer(directSession, logger, snapshot.NextBatch, options.StorePath)
	app := &App{
		Options:  options,
		Session:  directSession,
		Snapshot: snapshot,
		Syncer:   syncer,
		Logger:   logger,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}

	return race(ctx, syncer, func(ctx context.Context) error {
		return app.dispatch(ctx, state.parsed)
	})
}

// race runs the sync loop and the command concurrently over the same
// session. The first to finish decides the outcome; the loser is
// cancelled and awaited so subscriptions are released on every exit
// path. The sync loop returns nil only when cancelled, so a nil from
// the sync side means an outside cancellation and the command's
// result stands.
func race(ctx context.Context, syncer *messaging.Syncer, command func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	syncDone := make(chan error, 1)
	go func() { syncDone <- syncer.Run(ctx) }()

	commandDone := make(chan error, 1)
	go func() { commandDone <- command(ctx) }()

	select {
	case err := <-commandDone:
		cancel()
		<-syncDone
		return err
	case err := <-syncDone:
		if err == nil {
			return <-commandDone
		}
		cancel()
		<-commandDone
		return remoteError(err)
	}
}

func sessionFileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// resolvePassword produces the login password from the configured
// sources: the inline option wins, then the password file, where "-"
// prompts on the terminal. A nil buffer with nil error means no
// password is configured, which Connect rejects if a login turns out
// to be needed.
func resolvePassword(options *config.Options) (*secret.Buffer, error) {
	if options.Password != "" {
		return secret.NewFromString(options.Password)
	}
	switch options.PasswordFile {
	case "":
		return nil, nil
	case "-":
		return promptPassword()
	default:
		return secret.ReadFromPath(options.PasswordFile)
	}
}

// promptPassword reads the password from the terminal with echo
// disabled.
func promptPassword() (*secret.Buffer, error) {
	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return nil, cli.Validation("no terminal available for interactive password prompt (use --password-file)")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, cli.Internal("reading password: %w", err)
	}

	buffer, err := secret.NewFromBytes(passwordBytes)
	if err != nil {
		secret.Zero(passwordBytes)
		return nil, err
	}
	return buffer, nil
}

// connectError maps authenticator failures onto command error
// categories: missing configuration is the user's to fix (usage exit
// code), everything else is an operational failure.
func connectError(err error) error {
	if errors.Is(err, session.ErrMissingHomeserver) || errors.Is(err, session.ErrMissingCredentials) {
		return cli.Validation("%w", err)
	}
	var corrupt *session.CorruptError
	if errors.As(err, &corrupt) {
		return cli.Internal("%w", err)
	}
	var invalid *session.InvalidSessionError
	if errors.As(err, &invalid) {
		return cli.Internal("%w", err)
	}
	return remoteError(err)
}
