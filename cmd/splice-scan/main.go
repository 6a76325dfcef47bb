// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

// splice-scan reports whether executables carry the __restrict
// load-command marker that makes the OS loader ignore injected
// libraries.
//
// Usage:
//
//	splice-scan [--cbor] [--digest] PATH...
//
// Plain output is one line per path, "restricted" or "clear" followed
// by the path; --digest appends the file's SHA256 so the verdict can
// be tied to an exact binary, and --cbor writes a single CBOR report
// to stdout instead.
// Exit status: 0 when no path is restricted, 2 when at least one is,
// 1 on any error. Unlike the in-engine scanner this tool does not fail
// open — an unreadable or malformed file is an error, because an
// operator asking the question wants the truth, not the safe answer.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/splice-foundation/splice/lib/codec"
	"github.com/splice-foundation/splice/lib/process"
	"github.com/splice-foundation/splice/lib/version"
	"github.com/splice-foundation/splice/macho"
)

// scanResult is one path's verdict in the --cbor report.
type scanResult struct {
	Path       string `json:"path"`
	Restricted bool   `json:"restricted"`
	Digest     string `json:"digest,omitempty"`
	Error      string `json:"error,omitempty"`
}

func main() {
	code, err := run()
	if err != nil {
		process.Fatal(err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var cborOutput, withDigest bool

	flagSet := pflag.NewFlagSet("splice-scan", pflag.ContinueOnError)
	flagSet.BoolVar(&cborOutput, "cbor", false, "write a CBOR report to stdout instead of text lines")
	flagSet.BoolVar(&withDigest, "digest", false, "include each file's SHA256 digest in the report")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("splice-scan")
		return 0, nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			flagSet.Usage()
			return 0, nil
		}
		return 0, err
	}

	paths := flagSet.Args()
	if len(paths) == 0 {
		return 0, fmt.Errorf("no paths given; usage: splice-scan [--cbor] [--digest] PATH...")
	}

	logLevel := slog.LevelInfo
	if os.Getenv("SPLICE_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	results := make([]scanResult, 0, len(paths))
	anyRestricted := false
	anyError := false
	for _, path := range paths {
		result := scanResult{Path: path}
		restricted, err := scanPath(path)
		if err != nil {
			result.Error = err.Error()
			anyError = true
		}
		result.Restricted = restricted
		anyRestricted = anyRestricted || restricted
		if withDigest && result.Error == "" {
			digest, err := macho.Fingerprint(path)
			if err != nil {
				result.Error = err.Error()
				anyError = true
			}
			result.Digest = digest
		}
		results = append(results, result)
	}

	if cborOutput {
		report, err := codec.Marshal(results)
		if err != nil {
			return 0, fmt.Errorf("encoding report: %w", err)
		}
		if _, err := os.Stdout.Write(report); err != nil {
			return 0, fmt.Errorf("writing report: %w", err)
		}
	} else {
		for _, result := range results {
			switch {
			case result.Error != "":
				fmt.Printf("error\t%s\t%s\n", result.Path, result.Error)
			case result.Restricted:
				fmt.Printf("restricted\t%s%s\n", result.Path, digestColumn(result))
			default:
				fmt.Printf("clear\t%s%s\n", result.Path, digestColumn(result))
			}
		}
	}

	switch {
	case anyError:
		return 1, nil
	case anyRestricted:
		return 2, nil
	default:
		return 0, nil
	}
}

func digestColumn(result scanResult) string {
	if result.Digest == "" {
		return ""
	}
	return "\t" + result.Digest
}

// scanPath is the strict (non-fail-open) form of the scan.
func scanPath(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()
	return macho.Restricted(file)
}
