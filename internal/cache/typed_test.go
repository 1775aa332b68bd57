// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testBox struct {
	Slug    string  `json:"slug"`
	Members []int64 `json:"members"`
}

func newJSONCache(t *testing.T) (*JSON[testBox], *MemoryCache) {
	t.Helper()
	backend := NewSimpleMemoryCache(time.Hour)
	t.Cleanup(func() { _ = backend.Close() })
	return NewJSON[testBox](backend, time.Minute), backend
}

func TestJSONSetGetDelete(t *testing.T) {
	c, _ := newJSONCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "boxes:front")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "boxes:front", &testBox{Slug: "front", Members: []int64{3, 1}}))
	got, err := c.Get(ctx, "boxes:front")
	require.NoError(t, err)
	assert.Equal(t, testBox{Slug: "front", Members: []int64{3, 1}}, *got)

	require.NoError(t, c.Delete(ctx, "boxes:front"))
	_, err = c.Get(ctx, "boxes:front")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestJSONCorruptEntryIsMiss(t *testing.T) {
	c, backend := newJSONCache(t)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "boxes:bad", []byte("{not json"), 0))
	_, err := c.Get(ctx, "boxes:bad")
	assert.ErrorIs(t, err, ErrCacheMiss)

	got, err := c.GetOrLoad(ctx, "boxes:bad", func() (*testBox, error) {
		return &testBox{Slug: "bad"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "bad", got.Slug)
}

func TestJSONGetOrLoad(t *testing.T) {
	c, _ := newJSONCache(t)
	ctx := context.Background()

	var calls int
	load := func() (*testBox, error) {
		calls++
		return &testBox{Slug: "front"}, nil
	}

	for range 3 {
		got, err := c.GetOrLoad(ctx, "boxes:front", load)
		require.NoError(t, err)
		assert.Equal(t, "front", got.Slug)
	}
	assert.Equal(t, 1, calls)
}

func TestJSONGetOrLoadErrorNotCached(t *testing.T) {
	c, _ := newJSONCache(t)
	ctx := context.Background()
	errGone := errors.New("gone")

	_, err := c.GetOrLoad(ctx, "boxes:x", func() (*testBox, error) { return nil, errGone })
	assert.ErrorIs(t, err, errGone)

	got, err := c.GetOrLoad(ctx, "boxes:x", func() (*testBox, error) { return &testBox{Slug: "x"}, nil })
	require.NoError(t, err)
	assert.Equal(t, "x", got.Slug)
}

func TestJSONGetOrLoadSharesConcurrentLoads(t *testing.T) {
	c, _ := newJSONCache(t)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	load := func() (*testBox, error) {
		calls.Add(1)
		<-release
		return &testBox{Slug: "front"}, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetOrLoad(ctx, "boxes:front", load)
			assert.NoError(t, err)
			assert.Equal(t, "front", got.Slug)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestJSONStaleWhen(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Hour)
	t.Cleanup(func() { _ = backend.Close() })
	c := NewJSON[testBox](backend, time.Minute).StaleWhen(func(b *testBox) bool {
		return len(b.Members) == 0
	})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "boxes:empty", &testBox{Slug: "empty"}))
	_, err := c.Get(ctx, "boxes:empty")
	assert.ErrorIs(t, err, ErrCacheMiss)

	var calls int
	got, err := c.GetOrLoad(ctx, "boxes:empty", func() (*testBox, error) {
		calls++
		return &testBox{Slug: "empty", Members: []int64{1}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, got.Members)
	assert.Equal(t, 1, calls)

	got, err = c.Get(ctx, "boxes:empty")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, got.Members)
}
