// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/testutil"
)

func pngBytes(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			n++
		}
		return err
	})
	require.NoError(t, err)
	return n
}

func TestImageUploadAndUpdate(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	f := testutil.NewFixture(t, db)
	ctx := context.Background()

	dir := t.TempDir()
	svc := NewImageService(db, dir, "/media/", testutil.TestLoggerSilent())

	img, err := svc.Upload(ctx, f.User.ID, f.Site.ID, pngBytes(t, 30, 10), ImageInput{
		Title:         "Harbour at Dawn",
		Published:     true,
		DateAvailable: time.Now().Add(-time.Hour),
		Tags:          []string{"Sea", "sea", "Boats"},
	})
	require.NoError(t, err)
	assert.Equal(t, "harbour-at-dawn", img.Slug)
	assert.Equal(t, int64(30), img.Width)
	assert.Equal(t, int64(10), img.Height)
	assert.True(t, strings.HasPrefix(img.FilePath, "images/"), img.FilePath)
	assert.Equal(t, []string{"Sea", "Boats"}, img.Tags)
	assert.Equal(t, "/media/"+img.FilePath, svc.AbsoluteURL(img))
	assert.Equal(t, 1, countFiles(t, dir))

	updated, err := svc.Update(ctx, img.ID, ImageInput{
		Title:       "Harbour",
		Slug:        "harbour",
		Published:   false,
		Description: "Fishing boats",
		Tags:        []string{"Boats"},
	})
	require.NoError(t, err)
	assert.Equal(t, img.FilePath, updated.FilePath)
	assert.Equal(t, img.DateAvailable.Unix(), updated.DateAvailable.Unix())
	assert.Empty(t, svc.AbsoluteURL(updated))

	got, err := svc.Get(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fishing boats", got.Description)
	assert.Equal(t, []string{"Boats"}, got.Tags)

	items, total, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
}

func TestImageUploadRejectsDuplicateSlug(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	f := testutil.NewFixture(t, db)
	ctx := context.Background()

	dir := t.TempDir()
	svc := NewImageService(db, dir, "/media/", testutil.TestLoggerSilent())

	_, err := svc.Upload(ctx, f.User.ID, f.Site.ID, pngBytes(t, 4, 4), ImageInput{Title: "Cover"})
	require.NoError(t, err)

	_, err = svc.Upload(ctx, f.User.ID, f.Site.ID, pngBytes(t, 4, 4), ImageInput{Title: "Cover"})
	v, ok := content.AsValidationError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, content.MsgSlugExists, v.Fields["slug"])
	assert.Equal(t, 1, countFiles(t, dir), "orphaned upload not removed")
}

func TestImageUploadValidation(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	f := testutil.NewFixture(t, db)
	ctx := context.Background()

	svc := NewImageService(db, t.TempDir(), "/media/", testutil.TestLoggerSilent())
	missing := int64(999)

	_, err := svc.Upload(ctx, f.User.ID, f.Site.ID, pngBytes(t, 4, 4), ImageInput{SourceID: &missing})
	v, ok := content.AsValidationError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, content.MsgTitleRequired, v.Fields["title"])
	assert.Equal(t, MsgSourceMissing, v.Fields["source_id"])

	_, err = svc.Upload(ctx, f.User.ID, f.Site.ID, strings.NewReader("not an image"), ImageInput{Title: "Notes"})
	v, ok = content.AsValidationError(err)
	require.True(t, ok, "err = %v", err)
	assert.Contains(t, v.Fields, "file")

	_, err = svc.Get(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}
