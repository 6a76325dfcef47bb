// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

// splice-spawn runs one command through the full spawn decision
// engine, using the exec-backed native entry points instead of an
// interposition layer. It exists for test rigs and for exercising a
// Splice installation end to end: the command gets the same
// environment rewriting, restriction scan, and unrestrict-helper
// coordination an intercepted spawn would.
//
// Usage:
//
//	splice-spawn [flags] -- COMMAND [ARG...]
//
// The child's exit status is relayed. With --suspended the child is
// left stopped and its pid printed instead.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/splice-foundation/splice/dyldenv"
	"github.com/splice-foundation/splice/lib/config"
	"github.com/splice-foundation/splice/lib/process"
	"github.com/splice-foundation/splice/lib/version"
	"github.com/splice-foundation/splice/spawn"
	"github.com/splice-foundation/splice/unrestrict"
)

// exitError relays a child's exit status through run().
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("child exited with status %d", int(e)) }
func (e exitError) ExitCode() int { return int(e) }

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		process.Fatal(err)
	}
}

func run() error {
	var configPath string
	var suspended bool
	var safeMode bool
	var supervisor bool

	flagSet := pflag.NewFlagSet("splice-spawn", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to splice.yaml (default: SPLICE_CONFIG or shipped defaults)")
	flagSet.BoolVar(&suspended, "suspended", false, "start the child stopped and print its pid")
	flagSet.BoolVar(&safeMode, "safe-mode", false, "assert safe mode for this spawn (strip, never inject)")
	flagSet.BoolVar(&supervisor, "supervisor", spawn.DetectSupervisor(), "apply the supervisor identity rules")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("splice-spawn")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			flagSet.Usage()
			return nil
		}
		return err
	}

	command := flagSet.Args()
	if len(command) == 0 {
		return fmt.Errorf("no command given; usage: splice-spawn [flags] -- COMMAND [ARG...]")
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if os.Getenv("SPLICE_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	originals := spawn.NewExecOriginals(logger)
	if err := spawn.Install(originals); err != nil {
		return fmt.Errorf("installing originals: %w", err)
	}

	engine, err := spawn.New(spawn.Options{
		Config:       cfg,
		Logger:       logger,
		Supervisor:   supervisor,
		Originals:    originals,
		Unrestricter: unrestrict.New(cfg.Paths.Helper, originals.Spawn, logger),
	})
	if err != nil {
		return err
	}

	var flags spawn.Flags
	if suspended {
		flags |= spawn.FlagStartSuspended
	}

	env := os.Environ()
	if safeMode {
		env = append(env, dyldenv.SafeModeEnableEntry)
	}

	request := &spawn.Request{
		Path: command[0],
		Argv: command,
		Env:  env,
		Attr: spawn.NewAttributes(flags, nil),
	}

	pid, err := engine.HandleSpawnPath(request)
	if err != nil {
		return fmt.Errorf("spawning %s: %w", command[0], err)
	}

	if suspended {
		fmt.Printf("%d\n", pid)
		return nil
	}

	var status unix.WaitStatus
	if _, err := unix.Wait4(pid, &status, 0, nil); err != nil {
		return fmt.Errorf("waiting for pid %d: %w", pid, err)
	}
	switch {
	case status.Exited() && status.ExitStatus() != 0:
		return exitError(status.ExitStatus())
	case status.Signaled():
		return exitError(128 + int(status.Signal()))
	}
	return nil
}
