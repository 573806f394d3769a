// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login, logout, and status commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeranaias/qna-tui/internal/api"
	"github.com/jeranaias/qna-tui/internal/config"
	"github.com/jeranaias/qna-tui/internal/session"
	"github.com/jeranaias/qna-tui/internal/storage"
	"github.com/jeranaias/qna-tui/internal/util"
)

// openSession builds the shared client/store/manager stack the auth commands
// operate on. The manager hydrates any session persisted by a previous
// process, TUI or CLI alike.
func openSession() (*session.Manager, *api.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	stateDir, err := cfg.StateDir()
	if err != nil {
		return nil, nil, nil, err
	}
	store := storage.NewStore(stateDir)
	if cfg.Storage.SealState {
		sealer, err := storage.NewSealer(stateDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init state sealing: %w", err)
		}
		store = store.WithSealer(sealer)
	}

	client := api.New(cfg.API.BaseURL)
	mgr := session.NewManager(client, store, session.Options{
		IdleTimeout:        cfg.IdleTimeout(),
		WarningLead:        cfg.WarningLead(),
		CheckInterval:      cfg.CheckInterval(),
		ValidationInterval: cfg.ValidationInterval(),
	})
	return mgr, client, cfg, nil
}

// HandleLogin signs in and persists the session for other qna processes.
func HandleLogin(args Args) error {
	mgr, _, _, err := openSession()
	if err != nil {
		return err
	}
	defer mgr.Close()

	if mgr.LoggedIn() {
		u := mgr.User()
		fmt.Printf("Already signed in as %s. Run 'qna logout' first to switch accounts.\n", u.UserID)
		return nil
	}

	userID := args.User
	if userID == "" {
		if userID, err = PromptLine("User ID: "); err != nil {
			return err
		}
	}
	password, err := PromptPassword("Password: ")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), api.RequestTimeout)
	defer cancel()

	if err := mgr.Login(ctx, userID, password); err != nil {
		switch {
		case errors.Is(err, api.ErrLoginFailed):
			return errors.New("invalid user ID or password")
		case errors.Is(err, api.ErrTimeout):
			return errors.New("the server did not respond in time")
		default:
			return fmt.Errorf("login failed: %w", err)
		}
	}

	u := mgr.User()
	fmt.Printf("Signed in as %s (%s points).\n", u.UserID, util.FormatCount(u.Points))
	return nil
}

// HandleLogout ends the session. The server is notified best-effort and the
// state file is cleared, which any watching TUI process observes.
func HandleLogout(args Args) error {
	mgr, _, _, err := openSession()
	if err != nil {
		return err
	}
	defer mgr.Close()

	if !mgr.LoggedIn() {
		fmt.Println("Not signed in.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), api.RequestTimeout)
	defer cancel()
	mgr.Logout(ctx)
	fmt.Println("Signed out.")
	return nil
}

// HandleStatus reports the session and backend state.
func HandleStatus(args Args) error {
	mgr, client, cfg, err := openSession()
	if err != nil {
		return err
	}
	defer mgr.Close()

	if args.JSON {
		return statusJSON(mgr, cfg)
	}

	fmt.Printf("Backend:   %s\n", cfg.API.BaseURL)

	if !mgr.LoggedIn() {
		fmt.Println("Session:   not signed in")
		return nil
	}

	u := mgr.User()
	fmt.Printf("Session:   %s (member %d)\n", u.UserID, u.MemberID)
	fmt.Printf("Points:    %s\n", util.FormatCount(u.Points))
	fmt.Printf("Idle time: expires in %s\n", util.FormatDuration(mgr.Remaining()))

	// One live probe so "status" tells the truth about the server side too.
	ctx, cancel := context.WithTimeout(context.Background(), api.RequestTimeout)
	defer cancel()
	res, err := client.Validate(ctx)
	switch {
	case err != nil:
		fmt.Printf("Server:    unreachable (%v)\n", err)
	case res.Valid:
		if res.ExpiresAt != 0 {
			fmt.Printf("Server:    session valid until %s\n",
				time.UnixMilli(res.ExpiresAt).Local().Format("15:04:05"))
		} else {
			fmt.Println("Server:    session valid")
		}
	default:
		fmt.Println("Server:    session no longer valid")
	}
	return nil
}

func statusJSON(mgr *session.Manager, cfg *config.Config) error {
	if !mgr.LoggedIn() {
		fmt.Printf("{\"loggedIn\":false,\"backend\":%q}\n", cfg.API.BaseURL)
		return nil
	}
	u := mgr.User()
	fmt.Printf("{\"loggedIn\":true,\"backend\":%q,\"userId\":%q,\"mbrId\":%d,\"point\":%d,\"remainingSecs\":%d}\n",
		cfg.API.BaseURL, u.UserID, u.MemberID, u.Points, int(mgr.Remaining().Seconds()))
	return nil
}
