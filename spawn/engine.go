// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package spawn

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/splice-foundation/splice/dyldenv"
	"github.com/splice-foundation/splice/lib/config"
	"github.com/splice-foundation/splice/macho"
)

// Unrestricter lifts the __restrict marker on a process. Implemented
// by unrestrict.Coordinator; an interface here so engine tests can
// record calls without launching anything.
type Unrestricter interface {
	// Unrestrict runs the helper against pid. shouldResume asks the
	// helper to resume the (suspended) target afterward; isExec marks
	// a replace-in-place call, where pid is the caller itself.
	Unrestrict(pid int, shouldResume, isExec bool) bool
}

// Options configures an Engine.
type Options struct {
	// Config supplies the fixed paths and identifiers. nil means the
	// shipped defaults.
	Config *config.Config

	// Logger receives the engine's structured log output. nil means
	// slog.Default().
	Logger *slog.Logger

	// Supervisor marks the engine as running inside the process
	// supervisor, where only spawns of the intermediary launcher are
	// processed. See DetectSupervisor.
	Supervisor bool

	// Originals is the table of saved entry points to call through
	// to. Both functions are required.
	Originals Originals

	// Unrestricter coordinates the external helper. Required.
	Unrestricter Unrestricter
}

// Engine decides, per intercepted call, whether to splice the loader
// library into the child and whether to involve the unrestrict helper.
// Engines are stateless across calls and safe for concurrent use.
type Engine struct {
	cfg        *config.Config
	logger     *slog.Logger
	supervisor bool
	originals  Originals
	unrestrict Unrestricter

	// Seams with platform-backed defaults. Tests substitute them.
	scan       func(path string, logger *slog.Logger) bool
	probeRead  func(path string) error
	reserveFD  func(fd int) error
	ownPID     func() int
	processEnv func() []string
}

// New builds an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Originals.Spawn == nil || opts.Originals.SpawnPath == nil {
		return nil, fmt.Errorf("both original entry points are required")
	}
	if opts.Unrestricter == nil {
		return nil, fmt.Errorf("an unrestricter is required")
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		cfg:        cfg,
		logger:     logger,
		supervisor: opts.Supervisor,
		originals:  opts.Originals,
		unrestrict: opts.Unrestricter,
		scan:       macho.ScanFile,
		probeRead:  probeReadable,
		reserveFD:  reserveMarkerFD,
		ownPID:     os.Getpid,
		processEnv: os.Environ,
	}, nil
}

// HandleSpawn processes an intercepted spawn-by-exact-path call.
func (e *Engine) HandleSpawn(req *Request) (int, error) {
	return e.handle(req, e.originals.Spawn)
}

// HandleSpawnPath processes an intercepted spawn-with-path-search
// call. The decision logic is identical; only the entry point called
// through to differs.
func (e *Engine) HandleSpawnPath(req *Request) (int, error) {
	return e.handle(req, e.originals.SpawnPath)
}

// handle is the shared routine behind both entry points. Every
// abandonment path calls the original with the request exactly as the
// caller issued it; the worst outcome of any internal failure is an
// uninjected, unrestricted spawn.
func (e *Engine) handle(req *Request, original SpawnFunc) (int, error) {
	callThrough := func() (int, error) {
		return original(req.Path, req.FileActions, req.Attr, req.Argv, req.Env)
	}

	var flags Flags
	if req.Attr != nil {
		read, err := req.Attr.Flags()
		if err != nil {
			e.logger.Warn("cannot read spawn attributes, passing call through",
				"path", req.Path, "error", err)
			return callThrough()
		}
		flags = read
	}
	setexec := flags&FlagSetExec != 0
	suspended := flags&FlagStartSuspended != 0

	e.logger.Debug("intercepted spawn",
		"path", req.Path, "setexec", setexec, "suspended", suspended,
		"supervisor", e.supervisor)

	// Identity gate. Inside the supervisor, everything except the
	// intermediary launcher is left alone: the supervisor's early
	// startup spawns things the loader must not touch, and the
	// launcher is the one place the hook library needs to follow.
	var candidate string
	if e.supervisor {
		if req.Path != e.cfg.Paths.Launcher {
			return callThrough()
		}
		candidate = e.cfg.Paths.SpawnHookLibrary
	} else {
		if req.Path == e.cfg.Paths.Daemon || req.Path == e.cfg.Exclude.NotifyDaemon {
			return callThrough()
		}
		argv0 := ""
		if len(req.Argv) > 0 {
			argv0 = req.Argv[0]
		}
		if basename(argv0) == e.cfg.Exclude.LoginServer {
			return callThrough()
		}
		candidate = e.cfg.Paths.LoaderLibrary
	}

	// Readability probe. An unreadable candidate means Splice was
	// uninstalled out from under a still-loaded hook; spawns continue
	// unmodified.
	if err := e.probeRead(candidate); err != nil {
		e.logger.Debug("injection library not installed", "library", candidate, "error", err)
		return callThrough()
	}

	var attr AttributeBag
	if req.Attr != nil {
		clone, err := req.Attr.Clone()
		if err != nil {
			e.logger.Warn("cannot copy spawn attributes, passing call through",
				"path", req.Path, "error", err)
			return callThrough()
		}
		attr = clone
	} else {
		attr = NewAttributes(0, nil)
	}

	env := req.Env
	if env == nil {
		env = e.processEnv()
	}

	// Classification pass: a disable value is skipped rather than
	// recorded, so a later enable still wins; an unreadable value
	// abandons the whole call.
	safeMode := false
	for _, entry := range env {
		value, ok := dyldenv.CutSafeMode(entry)
		if !ok {
			continue
		}
		enabled, err := dyldenv.ParseSafeMode(value)
		if err != nil {
			e.logger.Warn("abandoning injection for this call",
				"path", req.Path, "error", err)
			return callThrough()
		}
		if enabled {
			safeMode = true
		}
	}

	newEnv := dyldenv.Compose(env, candidate, safeMode, e.cfg.OwnLibraries())
	e.logger.Debug("composed environment",
		"path", req.Path, "library", candidate, "safe_mode", safeMode)

	// Safe mode suppresses the append but the duplicate-removal
	// rebuild above still applies; scanning and unrestriction are
	// skipped and the attributes stay the caller's own.
	if safeMode {
		return original(req.Path, req.FileActions, req.Attr, req.Argv, newEnv)
	}

	needUnrestrict := e.scan(req.Path, e.logger)
	if needUnrestrict {
		if err := attr.SetFlags(flags | FlagStartSuspended); err != nil {
			e.logger.Warn("cannot set suspend flag, passing call through",
				"path", req.Path, "error", err)
			return callThrough()
		}
		if setexec {
			// Replace-in-place: the helper must act on this process
			// before the image is replaced. The reserved descriptor
			// is its synchronization marker.
			if err := e.reserveFD(e.cfg.MarkerFD); err != nil {
				e.logger.Warn("cannot reserve marker descriptor, passing call through",
					"path", req.Path, "fd", e.cfg.MarkerFD, "error", err)
				return callThrough()
			}
			if !e.unrestrict.Unrestrict(e.ownPID(), !suspended, true) {
				return callThrough()
			}
		}
	}

	pid, err := original(req.Path, req.FileActions, attr, req.Argv, newEnv)
	e.logger.Debug("spawn returned", "path", req.Path, "pid", pid, "error", err)
	if err != nil {
		return pid, err
	}

	// The call returned, so it was not replace-in-place: the child
	// exists and is suspended, and the helper unrestricts it now.
	if needUnrestrict && !setexec {
		e.unrestrict.Unrestrict(pid, !suspended, false)
	}
	return pid, nil
}

// basename returns the portion of path after the last slash.
func basename(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
