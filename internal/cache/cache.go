// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache provides an offline read-through cache for board data.
//
// Board views render from the backend when it answers and fall back to the
// last cached copy when it does not, marked stale so the UI can say so.
// Question rows are stored as JSON documents; SQLite buys durability,
// atomic swap-in of fresh listings, and cheap lookups by id.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/qna-tui/internal/model"
)

// ErrMiss indicates the cache has no copy of the requested data.
var ErrMiss = errors.New("not in cache")

// schema holds the cached board data. fetched_at drives staleness.
const schema = `
CREATE TABLE IF NOT EXISTS questions (
	id         INTEGER PRIMARY KEY,
	doc        TEXT NOT NULL,
	detail     INTEGER NOT NULL DEFAULT 0,
	fetched_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS listings (
	name       TEXT PRIMARY KEY,
	ids        TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
);
`

// Cache is a SQLite-backed store of board data for offline reads.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// Open opens (or creates) the cache database.
func Open(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Cache{db: db, ttl: ttl}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Stale reports whether a fetch timestamp is past the cache TTL.
func (c *Cache) Stale(fetchedAt time.Time) bool {
	return time.Since(fetchedAt) > c.ttl
}

// =============================================================================
// QUESTION LISTING
// =============================================================================

// PutListing replaces the cached question listing in one transaction, so a
// reader never sees half of an old listing and half of a new one.
func (c *Cache) PutListing(questions []model.Question) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	ids := make([]int64, 0, len(questions))

	for _, q := range questions {
		doc, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("failed to encode question %d: %w", q.ID, err)
		}
		// Listing rows never overwrite a cached detail row: the listing
		// variant lacks the body and answers.
		_, err = tx.Exec(`
			INSERT INTO questions (id, doc, detail, fetched_at) VALUES (?, ?, 0, ?)
			ON CONFLICT(id) DO UPDATE SET
				doc = CASE WHEN questions.detail = 0 THEN excluded.doc ELSE questions.doc END,
				fetched_at = excluded.fetched_at
		`, q.ID, string(doc), now)
		if err != nil {
			return err
		}
		ids = append(ids, q.ID)
	}

	idsDoc, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO listings (name, ids, fetched_at) VALUES ('questions', ?, ?)
		ON CONFLICT(name) DO UPDATE SET ids = excluded.ids, fetched_at = excluded.fetched_at
	`, string(idsDoc), now); err != nil {
		return err
	}

	return tx.Commit()
}

// GetListing returns the cached question listing and when it was fetched.
func (c *Cache) GetListing() ([]model.Question, time.Time, error) {
	var idsDoc string
	var fetchedAt int64
	err := c.db.QueryRow(`SELECT ids, fetched_at FROM listings WHERE name = 'questions'`).
		Scan(&idsDoc, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrMiss
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	var ids []int64
	if err := json.Unmarshal([]byte(idsDoc), &ids); err != nil {
		return nil, time.Time{}, fmt.Errorf("corrupt listing index: %w", err)
	}

	questions := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		q, _, err := c.GetQuestion(id)
		if errors.Is(err, ErrMiss) {
			continue
		}
		if err != nil {
			return nil, time.Time{}, err
		}
		questions = append(questions, *q)
	}
	return questions, time.Unix(fetchedAt, 0), nil
}

// =============================================================================
// QUESTION DETAIL
// =============================================================================

// PutQuestion caches a full question detail (body and answers included).
func (c *Cache) PutQuestion(q *model.Question) error {
	doc, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to encode question %d: %w", q.ID, err)
	}
	_, err = c.db.Exec(`
		INSERT INTO questions (id, doc, detail, fetched_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET
			doc = excluded.doc, detail = 1, fetched_at = excluded.fetched_at
	`, q.ID, string(doc), time.Now().Unix())
	return err
}

// GetQuestion returns a cached question and when it was fetched.
func (c *Cache) GetQuestion(id int64) (*model.Question, time.Time, error) {
	var doc string
	var fetchedAt int64
	err := c.db.QueryRow(`SELECT doc, fetched_at FROM questions WHERE id = ?`, id).
		Scan(&doc, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrMiss
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	var q model.Question
	if err := json.Unmarshal([]byte(doc), &q); err != nil {
		return nil, time.Time{}, fmt.Errorf("corrupt cached question %d: %w", id, err)
	}
	return &q, time.Unix(fetchedAt, 0), nil
}

// Purge drops all cached data.
func (c *Cache) Purge() error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM questions`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM listings`); err != nil {
		return err
	}
	return tx.Commit()
}
