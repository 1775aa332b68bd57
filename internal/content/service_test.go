// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/shortener"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/testutil"
)

// storeRedirects is a RedirectStore backed by the redirects table.
type storeRedirects struct {
	q *store.Queries
}

func (r storeRedirects) Exists(ctx context.Context, siteID int64, oldPath string) (bool, error) {
	return r.q.RedirectExists(ctx, siteID, oldPath)
}

func (r storeRedirects) Record(ctx context.Context, siteID int64, oldPath, newPath string) error {
	_, err := r.q.UpsertRedirect(ctx, store.UpsertRedirectParams{SiteID: siteID, OldPath: oldPath, NewPath: newPath, Now: time.Now()})
	return err
}

type env struct {
	db  *sql.DB
	q   *store.Queries
	f   testutil.Fixture
	sh  *shortener.Memory
	svc *ContainerService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	q := store.New(db)
	sh := &shortener.Memory{}
	return &env{
		db:  db,
		q:   q,
		f:   testutil.NewFixture(t, db),
		sh:  sh,
		svc: NewContainerService(db, storeRedirects{q}, sh, nil, testutil.TestLoggerSilent()),
	}
}

func (e *env) create(t *testing.T, channelID int64, slug string, body model.Body, published bool) *model.Container {
	t.Helper()
	c, err := e.svc.Create(context.Background(), e.f.User.ID, e.f.Site.ID, Input{
		Title:         slug,
		Slug:          slug,
		ChannelID:     channelID,
		Published:     published,
		DateAvailable: time.Now().Add(-time.Hour),
		Body:          body,
	})
	require.NoError(t, err, "create %s", slug)
	return c
}

func (e *env) redirectCount(t *testing.T) int64 {
	t.Helper()
	n, err := e.q.CountRedirects(context.Background(), e.f.Site.ID)
	require.NoError(t, err)
	return n
}

func TestCreateTagsKindAndDenormalizesChannel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	bodies := []model.Body{model.PostBody{Content: "hi"}, model.AlbumBody{}, model.LinkBody{URL: "http://elsewhere.example/"}}
	for i, body := range bodies {
		ch := e.f.Channel
		if i > 0 {
			ch = e.f.NewChannel(t, e.db, strings.ToLower(body.Kind().String())+"-channel")
		}
		c := e.create(t, ch.ID, "item-"+strings.ToLower(body.Kind().String()), body, true)

		row, err := e.q.GetContainerByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, body.Kind().String(), row.ChildClass)
		assert.Equal(t, ch.Name, row.ChannelName)
		assert.Equal(t, ch.LongSlug, row.ChannelLongSlug)
		assert.Equal(t, e.f.User.ID, row.UserID)
		assert.Equal(t, e.f.Site.ID, row.SiteID)
	}
}

func TestShortURLAssignedOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c := e.create(t, e.f.Channel.ID, "first", model.PostBody{}, true)
	require.NotEmpty(t, c.ShortURL)
	assert.Equal(t, []string{"http://example.com/news/first"}, e.sh.Calls())

	updated, err := e.svc.Update(ctx, c.ID, Input{Title: "First", Slug: "renamed", ChannelID: e.f.Channel.ID, Published: true, Body: model.PostBody{}})
	require.NoError(t, err)
	assert.Equal(t, c.ShortURL, updated.ShortURL)
	assert.Len(t, e.sh.Calls(), 1)
}

func TestShortenerFailureAbortsSave(t *testing.T) {
	e := newEnv(t)
	e.sh.Err = errors.New("service down")

	_, err := e.svc.Create(context.Background(), e.f.User.ID, e.f.Site.ID, Input{
		Title: "x", Slug: "x", ChannelID: e.f.Channel.ID, Body: model.PostBody{},
	})
	require.ErrorIs(t, err, shortener.ErrShorten)

	n, err := e.q.CountContainers(context.Background(), store.ContainerFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSlugRenameCreatesOneRedirect(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c := e.create(t, e.f.Channel.ID, "a", model.AlbumBody{}, true)

	_, err := e.svc.Update(ctx, c.ID, Input{Title: "a", Slug: "a", ChannelID: e.f.Channel.ID, Published: true, Body: model.AlbumBody{}})
	require.NoError(t, err)
	assert.Zero(t, e.redirectCount(t), "saving without a slug change must not redirect")

	_, err = e.svc.Update(ctx, c.ID, Input{Title: "a", Slug: "b", ChannelID: e.f.Channel.ID, Published: true, Body: model.AlbumBody{}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.redirectCount(t))

	rd, err := e.q.GetRedirectByPath(ctx, e.f.Site.ID, "/album/news/a")
	require.NoError(t, err)
	assert.Equal(t, "/album/news/b", rd.NewPath)
}

func TestSlugCollidingWithRedirectIsRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.q.UpsertRedirect(ctx, store.UpsertRedirectParams{SiteID: e.f.Site.ID, OldPath: "/news/taken", NewPath: "/elsewhere", Now: time.Now()})
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, e.f.User.ID, e.f.Site.ID, Input{Title: "t", Slug: "taken", ChannelID: e.f.Channel.ID, Body: model.PostBody{}})
	v, ok := AsValidationError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, MsgSlugIsRedirect, v.Fields["slug"])
}

func TestLinkValidationAndRedirect(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, e.f.User.ID, e.f.Site.ID, Input{Title: "l", Slug: "l", ChannelID: e.f.Channel.ID, Body: model.LinkBody{}})
	v, ok := AsValidationError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, MsgLinkURLRequired, v.Fields["url"])

	target := e.create(t, e.f.NewChannel(t, e.db, "culture").ID, "target", model.PostBody{}, true)

	linkChannel := e.f.NewChannel(t, e.db, "links")
	id := target.ID
	link, err := e.svc.Create(ctx, e.f.User.ID, e.f.Site.ID, Input{
		Title: "go", Slug: "go", ChannelID: linkChannel.ID,
		Body: model.LinkBody{URL: "http://stale.example/", ContainerID: &id},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/culture/target", link.Body.(model.LinkBody).URL)

	rd, err := e.q.GetRedirectByPath(ctx, e.f.Site.ID, "/link/links/go")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/culture/target", rd.NewPath)

	// Re-saving with a new external URL updates the same redirect row.
	_, err = e.svc.Update(ctx, link.ID, Input{Title: "go", Slug: "go", ChannelID: linkChannel.ID, Body: model.LinkBody{URL: "http://new.example/"}})
	require.NoError(t, err)
	rd, err = e.q.GetRedirectByPath(ctx, e.f.Site.ID, "/link/links/go")
	require.NoError(t, err)
	assert.Equal(t, "http://new.example/", rd.NewPath)
	assert.Equal(t, int64(1), e.redirectCount(t))
}

func TestChannelUniquePerSite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first := e.create(t, e.f.Channel.ID, "one", model.PostBody{}, true)

	_, err := e.svc.Create(ctx, e.f.User.ID, e.f.Site.ID, Input{Title: "two", Slug: "two", ChannelID: e.f.Channel.ID, Body: model.PostBody{}})
	v, ok := AsValidationError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, MsgChannelTaken, v.Fields["channel_id"])

	_, err = e.svc.Update(ctx, first.ID, Input{Title: "one", Slug: "one", ChannelID: e.f.Channel.ID, Body: model.PostBody{}})
	assert.NoError(t, err, "a container may be re-saved in its own channel")
}

func TestUpdateRejectsKindChange(t *testing.T) {
	e := newEnv(t)
	c := e.create(t, e.f.Channel.ID, "p", model.PostBody{}, true)

	_, err := e.svc.Update(context.Background(), c.ID, Input{Title: "p", Slug: "p", ChannelID: e.f.Channel.ID, Body: model.AlbumBody{}})
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = e.svc.GetKind(context.Background(), model.KindAlbum, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSlugDefaultsFromTitleAndTags(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c, err := e.svc.Create(ctx, e.f.User.ID, e.f.Site.ID, Input{
		Title: "Héllo World", ChannelID: e.f.Channel.ID, Tags: []string{"Go", "go", "SQL", " "},
		Body: model.PostBody{Content: "<p>x</p>"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello-world", c.Slug)

	got, err := e.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Go", "SQL"}, got.Tags)
}

func addImage(t *testing.T, e *env, slug string, published bool) int64 {
	t.Helper()
	now := time.Now()
	img, err := e.q.CreateImage(context.Background(), store.CreateImageParams{
		UserID: e.f.User.ID, SiteID: e.f.Site.ID, DateAvailable: now.Add(-time.Hour), Published: published,
		DateInsert: now, DateUpdate: now, Title: slug, Slug: slug, FilePath: "images/" + slug + ".jpg",
	})
	require.NoError(t, err)
	return img.ID
}

func imageIDs(images []model.Image) []int64 {
	ids := make([]int64, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.ID)
	}
	return ids
}

func TestAllImages(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	own1 := addImage(t, e, "own-1", true)
	own2 := addImage(t, e, "own-2", true)
	hidden := addImage(t, e, "hidden", false)
	albumOnly := addImage(t, e, "album-only", true)

	album := e.create(t, e.f.NewChannel(t, e.db, "galleries").ID, "gallery", model.AlbumBody{}, true)
	require.NoError(t, e.svc.SetImages(ctx, album.ID, []ImageRef{{albumOnly, 1}, {own1, 2}, {hidden, 3}}))

	draftAlbum := e.create(t, e.f.NewChannel(t, e.db, "drafts").ID, "draft", model.AlbumBody{}, false)
	draftImage := addImage(t, e, "draft-image", true)
	require.NoError(t, e.svc.SetImages(ctx, draftAlbum.ID, []ImageRef{{draftImage, 1}}))

	post := e.create(t, e.f.Channel.ID, "story", model.PostBody{AlbumIDs: []int64{album.ID, draftAlbum.ID}}, true)
	require.NoError(t, e.svc.SetImages(ctx, post.ID, []ImageRef{{own2, 2}, {own1, 1}, {hidden, 3}}))

	all, err := e.svc.AllImages(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{own1, own2, albumOnly}, imageIDs(all))

	set, err := e.svc.Images(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{own1, own2, hidden}, imageIDs(set))

	err = e.svc.SetImages(ctx, post.ID, []ImageRef{{9999, 1}})
	_, ok := AsValidationError(err)
	assert.True(t, ok, "unknown image should be a validation error, got %v", err)
}

func TestPostAlbumsMustBeAlbums(t *testing.T) {
	e := newEnv(t)
	other := e.create(t, e.f.NewChannel(t, e.db, "other").ID, "other", model.PostBody{}, true)

	_, err := e.svc.Create(context.Background(), e.f.User.ID, e.f.Site.ID, Input{
		Title: "p", Slug: "p", ChannelID: e.f.Channel.ID, Body: model.PostBody{AlbumIDs: []int64{other.ID}},
	})
	v, ok := AsValidationError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, MsgAlbumInvalid, v.Fields["album_ids"])
}

func TestRecommendations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	mk := func(slug string, tags []string, published bool) *model.Container {
		c, err := e.svc.Create(ctx, e.f.User.ID, e.f.Site.ID, Input{
			Title: slug, Slug: slug, ChannelID: e.f.NewChannel(t, e.db, "ch-"+slug).ID, Published: published,
			DateAvailable: time.Now().Add(-time.Hour), Tags: tags, Body: model.PostBody{},
		})
		require.NoError(t, err)
		return c
	}

	self := mk("self", []string{"go", "db"}, true)
	shared := mk("shared", []string{"go"}, true)
	mk("draft", []string{"db"}, false)
	mk("unrelated", []string{"cooking"}, true)

	recs, err := e.svc.Recommendations(ctx, self.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, shared.ID, recs[0].ID)
}

func TestSetSources(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	now := time.Now()

	var ids []int64
	for _, slug := range []string{"wire", "agency"} {
		src, err := e.q.CreateSource(ctx, store.CreateSourceParams{
			UserID: e.f.User.ID, SiteID: e.f.Site.ID, DateAvailable: now, Published: true,
			DateInsert: now, DateUpdate: now, Name: slug, Slug: slug,
		})
		require.NoError(t, err)
		ids = append(ids, src.ID)
	}

	c := e.create(t, e.f.Channel.ID, "sourced", model.PostBody{}, true)
	require.NoError(t, e.svc.SetSources(ctx, c.ID, []SourceRef{{ids[0], 2}, {ids[1], 1}}))

	sources, err := e.svc.Sources(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "agency", sources[0].Slug)
	assert.Equal(t, "wire", sources[1].Slug)
}
