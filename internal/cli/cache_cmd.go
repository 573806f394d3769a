// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cache_cmd.go - offline cache stats and clearing.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jeranaias/qna-tui/internal/cache"
	"github.com/jeranaias/qna-tui/internal/config"
)

// CacheFileName is the sqlite file under the state directory.
const CacheFileName = "cache.db"

// CachePath returns the offline cache location for the loaded config.
func CachePath(cfg *config.Config) (string, error) {
	dir, err := cfg.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CacheFileName), nil
}

// HandleCache routes the cache subcommands.
func HandleCache(args Args) error {
	p := NewArgParser(args.Raw)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, err := CachePath(cfg)
	if err != nil {
		return err
	}

	switch p.Subcommand() {
	case "", "stats":
		return cacheStats(cfg, path)
	case "clear":
		return cacheClear(cfg, path)
	default:
		return fmt.Errorf("unknown cache subcommand %q (want stats or clear)", p.Subcommand())
	}
}

func cacheStats(cfg *config.Config, path string) error {
	fmt.Printf("Cache file: %s\n", path)
	fmt.Printf("Enabled:    %t\n", cfg.Storage.CacheEnabled)
	fmt.Printf("TTL:        %dh\n", cfg.Storage.CacheTTLHours)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		fmt.Println("Size:       empty (nothing cached yet)")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Size:       %d bytes\n", info.Size())
	return nil
}

func cacheClear(cfg *config.Config, path string) error {
	c, err := cache.Open(path, time.Duration(cfg.Storage.CacheTTLHours)*time.Hour)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer c.Close()

	if err := c.Purge(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	fmt.Println("Cache cleared.")
	return nil
}
