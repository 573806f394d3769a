// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jeranaias/qna-tui/internal/model"
	"github.com/jeranaias/qna-tui/internal/util"
)

// StateFileName is the session state file name inside the state directory.
const StateFileName = "state.json"

// State is the persisted session document.
//
// LoggedIn is kept separate from User so a half-written legacy file with a
// user record but no marker reads as logged out, matching how the absence
// of either reads.
type State struct {
	User         *model.User `json:"user,omitempty"`
	LoggedIn     bool        `json:"isLoggedIn"`
	LastActivity int64       `json:"lastActivity,omitempty"` // unix milliseconds
	ReturnView   string      `json:"returnView,omitempty"`
}

// LastActivityTime converts the persisted activity timestamp.
// Returns the zero time when none was recorded.
func (s *State) LastActivityTime() time.Time {
	if s == nil || s.LastActivity == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.LastActivity)
}

// Store reads and writes the session state file.
type Store struct {
	mu     sync.Mutex
	path   string
	sealer *Sealer // nil when sealing is disabled
}

// NewStore creates a store for the given state directory.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, StateFileName)}
}

// WithSealer enables at-rest encryption of the state file.
func (s *Store) WithSealer(sealer *Sealer) *Store {
	s.sealer = sealer
	return s
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted session state.
//
// RELIABILITY: A missing, corrupt, truncated, or tampered file all return an
// empty state and no error. Local state is a convenience mirror of the
// server session; when it cannot be trusted the user simply logs in again.
func (s *Store) Load() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() *State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return &State{}
	}

	if s.sealer != nil && IsSealed(data) {
		data, err = s.sealer.Unseal(data)
		if err != nil {
			return &State{}
		}
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return &State{}
	}
	return &st
}

// Save persists the session state.
func (s *Store) Save(st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(st)
}

func (s *Store) saveLocked(st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if s.sealer != nil {
		data, err = s.sealer.Seal(data)
		if err != nil {
			return fmt.Errorf("failed to seal state: %w", err)
		}
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	// SECURITY: 0600, the file mirrors an authenticated session
	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// Clear removes all persisted session state in one operation.
//
// A missing file is success: Clear is called from several teardown paths
// and must be idempotent.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear state file: %w", err)
	}
	return nil
}

// TouchActivity updates only the last-activity timestamp, preserving the
// rest of the document.
func (s *Store) TouchActivity(at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.loadLocked()
	st.LastActivity = at.UnixMilli()
	return s.saveLocked(st)
}

// SetReturnView records the view to restore after a forced re-login.
func (s *Store) SetReturnView(view string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.loadLocked()
	st.ReturnView = view
	return s.saveLocked(st)
}

// TakeReturnView reads and clears the recorded return view.
func (s *Store) TakeReturnView() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.loadLocked()
	view := st.ReturnView
	if view == "" {
		return "", nil
	}
	st.ReturnView = ""
	if err := s.saveLocked(st); err != nil {
		return "", err
	}
	return view, nil
}
