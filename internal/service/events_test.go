// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/testutil"
)

func TestLogEvent(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	f := testutil.NewFixture(t, db)
	svc := NewEventService(db)
	ctx := context.Background()

	userID := f.User.ID
	err := svc.LogEvent(ctx, model.EventLevelWarning, model.EventCategoryContent, "Post saved",
		&userID, "10.0.0.1", "/api/v1/posts/3", map[string]any{"id": 3, "slug": "hello"})
	if err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	events, err := svc.ListEvents(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	e := events[0]
	if e.Level != model.EventLevelWarning || e.Category != model.EventCategoryContent {
		t.Errorf("level/category = %q/%q", e.Level, e.Category)
	}
	if !e.UserID.Valid || e.UserID.Int64 != userID {
		t.Errorf("UserID = %+v, want %d", e.UserID, userID)
	}
	if e.IpAddress != "10.0.0.1" || e.RequestUrl != "/api/v1/posts/3" {
		t.Errorf("ip/url = %q/%q", e.IpAddress, e.RequestUrl)
	}

	var meta map[string]any
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta["slug"] != "hello" {
		t.Errorf("metadata slug = %v", meta["slug"])
	}
}

func TestLogEvent_NilUserAndMetadata(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db)
	if err := svc.LogInfo(context.Background(), model.EventCategorySystem, "started", nil, "", "", nil); err != nil {
		t.Fatalf("LogInfo: %v", err)
	}

	events, _ := svc.ListEvents(context.Background(), 10, 0)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].UserID.Valid {
		t.Error("UserID should be NULL")
	}
	if events[0].Metadata != "{}" {
		t.Errorf("Metadata = %q, want {}", events[0].Metadata)
	}
}

func TestLogCategoryEvents(t *testing.T) {
	type logFn func(*EventService, context.Context) error
	tests := []struct {
		name  string
		logFn logFn
		want  string
	}{
		{"auth", func(s *EventService, ctx context.Context) error {
			return s.LogAuthEvent(ctx, model.EventLevelInfo, "login", nil, "", "", nil)
		}, model.EventCategoryAuth},
		{"content", func(s *EventService, ctx context.Context) error {
			return s.LogContentEvent(ctx, model.EventLevelInfo, "post saved", nil, "", "", nil)
		}, model.EventCategoryContent},
		{"redirect", func(s *EventService, ctx context.Context) error {
			return s.LogRedirectEvent(ctx, model.EventLevelInfo, "redirect added", nil, "", "", nil)
		}, model.EventCategoryRedirect},
		{"config", func(s *EventService, ctx context.Context) error {
			return s.LogConfigEvent(ctx, model.EventLevelInfo, "config saved", nil, "", "", nil)
		}, model.EventCategoryConfig},
		{"box", func(s *EventService, ctx context.Context) error {
			return s.LogBoxEvent(ctx, model.EventLevelInfo, "box saved", nil, "", "", nil)
		}, model.EventCategoryBox},
		{"system", func(s *EventService, ctx context.Context) error {
			return s.LogSystemEvent(ctx, model.EventLevelInfo, "started", nil, "", "", nil)
		}, model.EventCategorySystem},
		{"cache", func(s *EventService, ctx context.Context) error {
			return s.LogCacheEvent(ctx, model.EventLevelInfo, "flushed", nil, "", "", nil)
		}, model.EventCategoryCache},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, cleanup := testutil.TestDB(t)
			defer cleanup()

			if err := tt.logFn(NewEventService(db), context.Background()); err != nil {
				t.Fatalf("log: %v", err)
			}
			var category string
			if err := db.QueryRow("SELECT category FROM events").Scan(&category); err != nil {
				t.Fatalf("reading event: %v", err)
			}
			if category != tt.want {
				t.Errorf("category = %q, want %q", category, tt.want)
			}
		})
	}
}

func TestDeleteOldEvents(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db)
	ctx := context.Background()

	_, err := store.New(db).CreateEvent(ctx, store.CreateEventParams{
		Level: model.EventLevelInfo, Category: model.EventCategorySystem, Message: "old",
		Metadata: "{}", UserID: sql.NullInt64{}, CreatedAt: time.Now().AddDate(0, 0, -31),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if err := svc.LogInfo(ctx, model.EventCategorySystem, "recent", nil, "", "", nil); err != nil {
		t.Fatalf("LogInfo: %v", err)
	}

	if err := svc.DeleteOldEvents(ctx, 30*24*time.Hour); err != nil {
		t.Fatalf("DeleteOldEvents: %v", err)
	}

	events, _ := svc.ListEvents(ctx, 10, 0)
	if len(events) != 1 || events[0].Message != "recent" {
		t.Fatalf("remaining events = %+v, want only recent", events)
	}
}
