// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for Splice. All fields have
// shipped defaults; the file only overrides them.
type Config struct {
	// Paths configures where the Splice pieces are installed.
	Paths PathsConfig `yaml:"paths"`

	// Exclude configures targets that must never receive injection.
	Exclude ExcludeConfig `yaml:"exclude"`

	// Policy configures the sandbox policy override.
	Policy PolicyConfig `yaml:"policy"`

	// MarkerFD is the reserved descriptor number duplicated from
	// stderr before a replace-in-place spawn of a restricted binary.
	// The unrestrict helper uses its presence as a synchronization
	// marker. Default: 255.
	MarkerFD int `yaml:"marker_fd"`
}

// PathsConfig locates the Splice installation and the OS binaries the
// engine keys its decisions on.
type PathsConfig struct {
	// Helper is the external privileged unrestrict program.
	Helper string `yaml:"helper"`

	// LoaderLibrary is the library injected into ordinary spawns.
	LoaderLibrary string `yaml:"loader_library"`

	// SpawnHookLibrary is the library injected when the supervisor
	// spawns the intermediary launcher. It carries this same engine
	// into the launcher so the launcher's own spawns get the loader.
	SpawnHookLibrary string `yaml:"spawn_hook_library"`

	// Launcher is the intermediary the supervisor uses to perform
	// spawns on its behalf. Inside the supervisor, only spawns of
	// exactly this path are processed.
	Launcher string `yaml:"launcher"`

	// Daemon is the Splice daemon binary. The loader library contacts
	// it synchronously, so spawning it with injection would deadlock.
	Daemon string `yaml:"daemon"`
}

// ExcludeConfig lists targets outside the Splice installation that
// must never receive injection.
type ExcludeConfig struct {
	// NotifyDaemon is the OS notification daemon. libc routines the
	// supervisor calls contact it synchronously during early startup.
	NotifyDaemon string `yaml:"notify_daemon"`

	// LoginServer is matched against argv[0]'s basename rather than
	// the target path, because the login server is started through a
	// wrapper with argv[0] != path. Its descriptor-auditing habit is
	// incompatible with the loader's guarded descriptors.
	LoginServer string `yaml:"login_server"`
}

// PolicyConfig configures the sandbox policy override.
type PolicyConfig struct {
	// TrustedService is the one inter-process lookup name the
	// override whitelists unconditionally.
	TrustedService string `yaml:"trusted_service"`
}

// Default returns the shipped configuration. These are real values,
// not placeholders: the library operates on them when no file is
// loaded.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Helper:           "/Library/Splice/Helpers/unrestrict",
			LoaderLibrary:    "/Library/Splice/Helpers/loader.dylib",
			SpawnHookLibrary: "/Library/Splice/Helpers/spawn-hook.dylib",
			Launcher:         "/usr/libexec/xpcproxy",
			Daemon:           "/Library/Splice/Helpers/spliced",
		},
		Exclude: ExcludeConfig{
			NotifyDaemon: "/usr/sbin/notifyd",
			LoginServer:  "sshd",
		},
		Policy: PolicyConfig{
			TrustedService: "net.splice.spliced",
		},
		MarkerFD: 255,
	}
}

// Load loads configuration from the SPLICE_CONFIG environment
// variable, falling back to the shipped defaults when it is unset.
// Unlike most config systems the absent-file case is not an error
// here: the shim runs inside the supervisor, where requiring a config
// file would mean requiring one on every boot path.
func Load() (*Config, error) {
	configPath := os.Getenv("SPLICE_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging over
// the shipped defaults. Environment variables do not override config
// values; the only expansion performed is ${HOME} and similar path
// variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in all
// path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Paths.Helper = expandVars(c.Paths.Helper, vars)
	c.Paths.LoaderLibrary = expandVars(c.Paths.LoaderLibrary, vars)
	c.Paths.SpawnHookLibrary = expandVars(c.Paths.SpawnHookLibrary, vars)
	c.Paths.Launcher = expandVars(c.Paths.Launcher, vars)
	c.Paths.Daemon = expandVars(c.Paths.Daemon, vars)
	c.Exclude.NotifyDaemon = expandVars(c.Exclude.NotifyDaemon, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	required := []struct {
		name  string
		value string
	}{
		{"paths.helper", c.Paths.Helper},
		{"paths.loader_library", c.Paths.LoaderLibrary},
		{"paths.spawn_hook_library", c.Paths.SpawnHookLibrary},
		{"paths.launcher", c.Paths.Launcher},
		{"paths.daemon", c.Paths.Daemon},
		{"exclude.notify_daemon", c.Exclude.NotifyDaemon},
		{"exclude.login_server", c.Exclude.LoginServer},
		{"policy.trusted_service", c.Policy.TrustedService},
	}
	for _, field := range required {
		if field.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", field.name))
		}
	}

	// The login server is matched against a basename; a slash here
	// means the field was confused with a path field.
	if strings.Contains(c.Exclude.LoginServer, "/") {
		errs = append(errs, fmt.Errorf("exclude.login_server must be a bare name, got %q", c.Exclude.LoginServer))
	}

	// 0-2 are stdio; reserving one of them as the marker would clobber
	// a stream the child still needs.
	if c.MarkerFD <= 2 {
		errs = append(errs, fmt.Errorf("marker_fd must be above the stdio descriptors, got %d", c.MarkerFD))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// OwnLibraries returns the two shipped library paths. The composer
// strips these from any inherited tracked-variable value before
// appending the current candidate, which is what keeps repeated
// spawns from accreting duplicates.
func (c *Config) OwnLibraries() []string {
	return []string{c.Paths.LoaderLibrary, c.Paths.SpawnHookLibrary}
}
