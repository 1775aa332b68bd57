// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the opps project.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "opps-test.db")

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// TestMemoryDB creates an in-memory SQLite database for testing.
// Useful for tests that don't need persistent storage or migrations.
func TestMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Fixture holds the rows most content tests need: an editor, a site and a
// channel on that site.
type Fixture struct {
	User    store.User
	Site    store.Site
	Channel store.Channel
}

// NewFixture creates an editor, the site "example.com" and the channel "news".
func NewFixture(t *testing.T, db *sql.DB) Fixture {
	t.Helper()
	ctx := context.Background()
	q := store.New(db)
	now := time.Now()

	user, err := q.CreateUser(ctx, store.CreateUserParams{
		Email:        "editor@example.com",
		PasswordHash: "x",
		Role:         model.RoleEditor,
		Name:         "Editor",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	site, err := q.CreateSite(ctx, store.CreateSiteParams{Domain: "example.com", Name: "example"})
	if err != nil {
		t.Fatalf("CreateSite: %v", err)
	}

	f := Fixture{User: user, Site: site}
	f.Channel = f.NewChannel(t, db, "news")
	return f
}

// NewChannel creates a top-level channel on the fixture site.
func (f Fixture) NewChannel(t *testing.T, db *sql.DB, slug string) store.Channel {
	t.Helper()
	now := time.Now()

	ch, err := store.New(db).CreateChannel(context.Background(), store.CreateChannelParams{
		SiteID:    f.Site.ID,
		Name:      slug,
		Slug:      slug,
		LongSlug:  slug,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateChannel(%s): %v", slug, err)
	}
	return ch
}
