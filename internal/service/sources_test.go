// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/testutil"
)

func TestSourceLifecycle(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	f := testutil.NewFixture(t, db)
	ctx := context.Background()
	svc := NewSourceService(db, testutil.TestLoggerSilent())

	src, err := svc.Create(ctx, f.User.ID, f.Site.ID, SourceInput{
		Name:      "Wire Agency",
		Published: true,
		URL:       "https://wire.example.com",
		Feed:      "https://wire.example.com/rss",
	})
	require.NoError(t, err)
	assert.Equal(t, "wire-agency", src.Slug)
	assert.False(t, src.DateAvailable.IsZero())

	bySlug, err := svc.GetBySlug(ctx, "wire-agency")
	require.NoError(t, err)
	assert.Equal(t, src.ID, bySlug.ID)

	updated, err := svc.Update(ctx, src.ID, SourceInput{Name: "Wire", Slug: "wire", URL: "https://wire.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "wire", updated.Slug)
	assert.Empty(t, updated.Feed)

	_, err = svc.Create(ctx, f.User.ID, f.Site.ID, SourceInput{Name: "Wire"})
	v, ok := content.AsValidationError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, content.MsgSlugExists, v.Fields["slug"])

	items, total, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
}

func TestSourceValidation(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	f := testutil.NewFixture(t, db)
	svc := NewSourceService(db, testutil.TestLoggerSilent())

	_, err := svc.Create(context.Background(), f.User.ID, f.Site.ID, SourceInput{Slug: "Not Valid"})
	v, ok := content.AsValidationError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, MsgNameRequired, v.Fields["name"])
	assert.Equal(t, content.MsgSlugInvalid, v.Fields["slug"])

	_, err = svc.Update(context.Background(), 404, SourceInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}
