// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - configuration show/set/path commands.
package cli

import (
	"fmt"
	"strconv"

	"github.com/jeranaias/qna-tui/internal/config"
)

// HandleConfig routes the config subcommands.
func HandleConfig(args Args) error {
	p := NewArgParser(args.Raw)

	switch p.Subcommand() {
	case "", "show":
		return configShow()
	case "set":
		return configSet(p.Positional(1), p.Positional(2))
	case "path":
		path, err := config.PathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand %q (want show, set, or path)", p.Subcommand())
	}
}

func configShow() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("api.url              = %s\n", cfg.API.BaseURL)
	fmt.Printf("session.timeout      = %ds\n", cfg.Session.IdleTimeoutSecs)
	fmt.Printf("session.warning      = %ds\n", cfg.Session.WarningLeadSecs)
	fmt.Printf("session.check        = %ds\n", cfg.Session.CheckIntervalSecs)
	fmt.Printf("session.validation   = %ds\n", cfg.Session.ValidationIntervalSecs)
	fmt.Printf("storage.seal_state   = %t\n", cfg.Storage.SealState)
	fmt.Printf("storage.cache        = %t\n", cfg.Storage.CacheEnabled)
	fmt.Printf("storage.cache_ttl    = %dh\n", cfg.Storage.CacheTTLHours)
	fmt.Printf("ui.theme             = %s\n", cfg.UI.Theme)
	return nil
}

func configSet(key, value string) error {
	if key == "" || value == "" {
		return fmt.Errorf("usage: qna config set KEY VALUE")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch key {
	case "api.url":
		cfg.API.BaseURL = value
	case "session.timeout":
		secs, err := strconv.Atoi(value)
		if err != nil || secs <= 0 {
			return fmt.Errorf("session.timeout must be a positive number of seconds")
		}
		cfg.Session.IdleTimeoutSecs = secs
	case "session.warning":
		secs, err := strconv.Atoi(value)
		if err != nil || secs <= 0 {
			return fmt.Errorf("session.warning must be a positive number of seconds")
		}
		cfg.Session.WarningLeadSecs = secs
	case "session.check":
		secs, err := strconv.Atoi(value)
		if err != nil || secs <= 0 {
			return fmt.Errorf("session.check must be a positive number of seconds")
		}
		cfg.Session.CheckIntervalSecs = secs
	case "session.validation":
		secs, err := strconv.Atoi(value)
		if err != nil || secs <= 0 {
			return fmt.Errorf("session.validation must be a positive number of seconds")
		}
		cfg.Session.ValidationIntervalSecs = secs
	case "storage.seal_state":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("storage.seal_state must be true or false")
		}
		cfg.Storage.SealState = b
	case "storage.cache":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("storage.cache must be true or false")
		}
		cfg.Storage.CacheEnabled = b
	case "ui.theme":
		cfg.UI.Theme = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	// Re-run the clamp and validation so a bad pair is caught here, not at
	// the next startup.
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}
