// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and routing for qna.
package cli

import (
	"fmt"
	"os"
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
	CmdStatus
	CmdConfig
	CmdCache
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	User    string // --user for login
	Quiet   bool
	Verbose bool
	JSON    bool

	// Subcommand after the command word (e.g. "config show" -> "show")
	Subcommand string

	// Raw args remaining after the command word
	Raw []string
}

const usageText = `qna - a terminal client for the Q&A board

Usage:
  qna                        Start the TUI (default)
  qna login [--user ID]      Sign in and persist the session
  qna logout                 Sign out here and everywhere
  qna status                 Show session and board connectivity
  qna config [show|set|path] Configuration
  qna cache [stats|clear]    Offline cache management
  qna version                Show version
  qna help                   Show this help

Config Commands:
  qna config show            Print the effective configuration
  qna config set KEY VALUE   Set a key (api.url, session.timeout,
                             session.warning, ui.theme)
  qna config path            Print the config file location

Environment:
  QNA_API_URL                Backend base URL
  QNA_SESSION_TIMEOUT        Idle timeout in milliseconds
  QNA_SESSION_WARNING_TIME   Warning lead in milliseconds
  QNA_STATE_DIR              State directory (default ~/.qna)

The TUI and the CLI share one session. An idle session shows a warning
5 minutes before the 30 minute timeout and is logged out when it lapses.`

// Parse reads os.Args and returns the command with its arguments.
func Parse() (Command, Args) {
	raw := os.Args[1:]
	if len(raw) == 0 {
		return CmdTUI, Args{}
	}

	cmd := CmdTUI
	switch raw[0] {
	case "login":
		cmd = CmdLogin
	case "logout":
		cmd = CmdLogout
	case "status", "s":
		cmd = CmdStatus
	case "config":
		cmd = CmdConfig
	case "cache":
		cmd = CmdCache
	case "version", "--version", "-v":
		cmd = CmdVersion
	case "help", "--help", "-h":
		cmd = CmdHelp
	default:
		// Unknown word: keep everything for the TUI path.
		return CmdTUI, parseArgs(raw)
	}

	return cmd, parseArgs(raw[1:])
}

func parseArgs(raw []string) Args {
	p := NewArgParser(raw)
	return Args{
		User:       p.Flag("user"),
		Quiet:      p.BoolFlag("quiet") || p.BoolFlag("q"),
		Verbose:    p.BoolFlag("verbose"),
		JSON:       p.BoolFlag("json"),
		Subcommand: p.Subcommand(),
		Raw:        raw,
	}
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Println(usageText)
}

// HandleVersion prints version information.
func HandleVersion(args Args) {
	if args.JSON {
		fmt.Printf("{\"version\":%q,\"commit\":%q,\"built\":%q}\n", Version, GitCommit, BuildDate)
		return
	}
	fmt.Printf("qna %s (%s, built %s)\n", Version, GitCommit, BuildDate)
}
