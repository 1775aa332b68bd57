// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/opps-go/internal/auth"
	"github.com/olegiv/opps-go/internal/model"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// Default site and channel
const (
	DefaultSiteName    = "opps"
	DefaultChannelName = "Home"
	DefaultChannelSlug = "home"
)

// SeedOptions configures Seed.
type SeedOptions struct {
	SiteDomain string
}

// Seed creates the default admin user, site and root channel when missing.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	queries := New(db)
	now := time.Now()

	if err := seedAdmin(ctx, queries, now); err != nil {
		return err
	}

	site, err := queries.GetSiteByDomain(ctx, opts.SiteDomain)
	if errors.Is(err, sql.ErrNoRows) {
		site, err = queries.CreateSite(ctx, CreateSiteParams{
			Domain: opts.SiteDomain,
			Name:   DefaultSiteName,
		})
		if err != nil {
			return fmt.Errorf("creating default site: %w", err)
		}
		slog.Info("created default site", "id", site.ID, "domain", site.Domain)
	} else if err != nil {
		return fmt.Errorf("checking for default site: %w", err)
	}

	_, err = queries.GetChannelByLongSlug(ctx, site.ID, DefaultChannelSlug)
	if errors.Is(err, sql.ErrNoRows) {
		ch, err := queries.CreateChannel(ctx, CreateChannelParams{
			SiteID:    site.ID,
			Name:      DefaultChannelName,
			Slug:      DefaultChannelSlug,
			LongSlug:  DefaultChannelSlug,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("creating default channel: %w", err)
		}
		slog.Info("created default channel", "id", ch.ID, "long_slug", ch.LongSlug)
	} else if err != nil {
		return fmt.Errorf("checking for default channel: %w", err)
	}

	return nil
}

func seedAdmin(ctx context.Context, queries *Queries, now time.Time) error {
	count, err := queries.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		slog.Info("users already exist, skipping admin seed", "count", count)
		return nil
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Name:         DefaultAdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)

	return nil
}
