// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for gradebook.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdReport
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool

	// login
	Email string

	// report
	XLSX       bool
	OutputPath string

	// config
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args remaining after parsing
	Raw []string
}

const usageText = `gradebook - terminal client for the Academic Gradebook

A role-aware client for the course gradebook backend. Teachers manage
assignments, grades and reports; students track their own progress.

Usage:
  gradebook                    Start the TUI (default)
  gradebook login [email]      Sign in and store the session
  gradebook logout             Drop the stored session
  gradebook whoami             Show the signed-in account
  gradebook report [path]      Export the course report (teacher only)
  gradebook config [show|get|set]  Configuration
  gradebook version, -v        Show version
  gradebook help, -h           Show this help

Report flags:
  --csv                        Export as CSV (default)
  --xlsx                       Export as an Excel workbook

Global flags:
  --quiet, -q                  Suppress non-essential output
  --verbose                    Verbose diagnostics to stderr

Environment:
  GRADEBOOK_API_URL            Backend URL (default http://localhost:8000)
  GRADEBOOK_DIR                Data directory (default ~/.gradebook)

Examples:
  gradebook login teacher@example.com
  gradebook report --xlsx otchet.xlsx
  gradebook config set api.base_url http://gradebook.local:8000
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("gradebook %s (%s, %s, %s/%s)\n",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// Parse reads os.Args into a command and its arguments.
func Parse() (Command, Args) {
	args := Args{}
	rest := parseGlobalFlags(os.Args[1:], &args)

	if len(rest) == 0 {
		return CmdTUI, args
	}

	cmd := rest[0]
	rest = rest[1:]

	switch cmd {
	case "login":
		if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
			args.Email = rest[0]
			rest = rest[1:]
		}
		args.Raw = rest
		return CmdLogin, args

	case "logout":
		args.Raw = rest
		return CmdLogout, args

	case "whoami":
		args.Raw = rest
		return CmdWhoami, args

	case "report":
		parseReportArgs(&args, rest)
		return CmdReport, args

	case "config":
		parseConfigArgs(&args, rest)
		return CmdConfig, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}

func parseGlobalFlags(argv []string, args *Args) []string {
	var rest []string
	for _, a := range argv {
		switch a {
		case "--quiet", "-q":
			args.Quiet = true
		case "--verbose":
			args.Verbose = true
		default:
			rest = append(rest, a)
		}
	}
	return rest
}

func parseReportArgs(args *Args, rest []string) {
	for _, a := range rest {
		switch a {
		case "--csv":
			args.XLSX = false
		case "--xlsx":
			args.XLSX = true
		default:
			if !strings.HasPrefix(a, "-") && args.OutputPath == "" {
				args.OutputPath = a
			}
		}
	}
}

func parseConfigArgs(args *Args, rest []string) {
	if len(rest) == 0 {
		args.Subcommand = "show"
		return
	}
	args.Subcommand = rest[0]
	if len(rest) > 1 {
		args.ConfigKey = rest[1]
	}
	if len(rest) > 2 {
		args.ConfigVal = rest[2]
	}
}
