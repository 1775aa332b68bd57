// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/testutil"
)

func TestChannelTree(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	f := testutil.NewFixture(t, db)
	ctx := context.Background()
	svc := NewChannelService(db, testutil.TestLoggerSilent())

	sports, err := svc.Create(ctx, f.Site.ID, ChannelInput{Name: "Sports"})
	require.NoError(t, err)
	assert.Equal(t, "sports", sports.LongSlug)

	football, err := svc.Create(ctx, f.Site.ID, ChannelInput{Name: "Football", ParentID: &sports.ID})
	require.NoError(t, err)
	assert.Equal(t, "sports/football", football.LongSlug)

	cup, err := svc.Create(ctx, f.Site.ID, ChannelInput{Name: "Cup", ParentID: &football.ID})
	require.NoError(t, err)
	assert.Equal(t, "sports/football/cup", cup.LongSlug)

	got, err := svc.GetByLongSlug(ctx, f.Site.ID, "sports/football")
	require.NoError(t, err)
	assert.Equal(t, football.ID, got.ID)

	_, err = svc.Create(ctx, f.Site.ID, ChannelInput{Name: "Football", ParentID: &sports.ID})
	v, ok := content.AsValidationError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, MsgLongSlugExists, v.Fields["slug"])

	_, err = svc.Update(ctx, sports.ID, ChannelInput{Name: "Sports", ParentID: &cup.ID})
	v, ok = content.AsValidationError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, MsgParentCycle, v.Fields["parent_id"])

	_, err = svc.Update(ctx, sports.ID, ChannelInput{Name: "Sport", Slug: "sport"})
	require.NoError(t, err)

	got, err = svc.Get(ctx, cup.ID)
	require.NoError(t, err)
	assert.Equal(t, "sport/football/cup", got.LongSlug)

	all, err := svc.List(ctx, f.Site.ID)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestChannelRenameRefreshesContainers(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	f := testutil.NewFixture(t, db)
	ctx := context.Background()
	svc := NewChannelService(db, testutil.TestLoggerSilent())

	now := time.Now()
	row, err := store.New(db).CreateContainer(ctx, store.CreateContainerParams{
		UserID:          f.User.ID,
		SiteID:          f.Site.ID,
		DateAvailable:   now,
		Published:       true,
		DateInsert:      now,
		DateUpdate:      now,
		Title:           "Hello",
		Slug:            "hello",
		ChannelID:       f.Channel.ID,
		ChannelName:     f.Channel.Name,
		ChannelLongSlug: f.Channel.LongSlug,
		ChildClass:      "Post",
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, f.Channel.ID, ChannelInput{Name: "World News", Slug: "world"})
	require.NoError(t, err)

	row, err = store.New(db).GetContainerByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "World News", row.ChannelName)
	assert.Equal(t, "world", row.ChannelLongSlug)
}

func TestChannelValidation(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	f := testutil.NewFixture(t, db)
	svc := NewChannelService(db, testutil.TestLoggerSilent())
	missing := int64(777)

	_, err := svc.Create(context.Background(), f.Site.ID, ChannelInput{ParentID: &missing})
	v, ok := content.AsValidationError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, MsgNameRequired, v.Fields["name"])
	assert.Equal(t, MsgParentMissing, v.Fields["parent_id"])

	_, err = svc.GetByLongSlug(context.Background(), f.Site.ID, "../etc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChannelUpdateNotifiesListeners(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	f := testutil.NewFixture(t, db)
	ctx := context.Background()
	svc := NewChannelService(db, testutil.TestLoggerSilent())

	var calls int
	svc.OnChange(func(context.Context) { calls++ })

	world, err := svc.Create(ctx, f.Site.ID, ChannelInput{Name: "World"})
	require.NoError(t, err)
	assert.Zero(t, calls, "creating a channel touches no container")

	_, err = svc.Update(ctx, world.ID, ChannelInput{Name: "Globe", Slug: "globe"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = svc.Update(ctx, world.ID, ChannelInput{Name: "News", Slug: f.Channel.Slug})
	_, ok := content.AsValidationError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, 1, calls, "a rejected update must not notify")
}
