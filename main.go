// qna - a terminal client for the Q&A board.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/qna-tui/internal/api"
	"github.com/jeranaias/qna-tui/internal/cache"
	"github.com/jeranaias/qna-tui/internal/cli"
	"github.com/jeranaias/qna-tui/internal/config"
	"github.com/jeranaias/qna-tui/internal/session"
	"github.com/jeranaias/qna-tui/internal/storage"
	"github.com/jeranaias/qna-tui/internal/ui/board"
	"github.com/jeranaias/qna-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI()
	case cli.CmdLogin:
		exitOnError(cli.HandleLogin(args))
	case cli.CmdLogout:
		exitOnError(cli.HandleLogout(args))
	case cli.CmdStatus:
		exitOnError(cli.HandleStatus(args))
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))
	case cli.CmdCache:
		exitOnError(cli.HandleCache(args))
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI()
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the full stack and starts the board.
func runTUI() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stateDir, err := cfg.StateDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Session state store, optionally sealed at rest.
	store := storage.NewStore(stateDir)
	if cfg.Storage.SealState {
		sealer, err := storage.NewSealer(stateDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not initialize state sealing: %v\n", err)
			os.Exit(1)
		}
		store = store.WithSealer(sealer)
	}

	client := api.New(cfg.API.BaseURL)

	// Offline question cache is best-effort: a broken cache file must not
	// keep the board from starting.
	var qcache *cache.Cache
	if cfg.Storage.CacheEnabled {
		ttl := time.Duration(cfg.Storage.CacheTTLHours) * time.Hour
		qcache, err = cache.Open(filepath.Join(stateDir, cli.CacheFileName), ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: offline cache unavailable: %v\n", err)
			qcache = nil
		} else {
			defer qcache.Close()
		}
	}

	mgr := session.NewManager(client, store, session.Options{
		IdleTimeout:        cfg.IdleTimeout(),
		WarningLead:        cfg.WarningLead(),
		CheckInterval:      cfg.CheckInterval(),
		ValidationInterval: cfg.ValidationInterval(),
	})
	defer mgr.Close()

	theme := styles.NewTheme()
	m := board.New(theme, client, mgr, store, qcache)

	// Another qna process logging out clears the shared state file; the
	// watcher turns that into our logout too.
	watcher, err := storage.NewWatcher(store, 200*time.Millisecond, mgr.HandleExternalState)
	if err == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		}
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running qna: %v\n", err)
		os.Exit(1)
	}
}
