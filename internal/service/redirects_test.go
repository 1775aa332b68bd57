// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/olegiv/opps-go/internal/testutil"
)

func TestRedirectRecordAndResolve(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	f := testutil.NewFixture(t, db)
	ctx := context.Background()

	svc := NewRedirectService(db, testutil.TestLoggerSilent())
	changes := 0
	svc.OnChange(func() { changes++ })

	if err := svc.Record(ctx, f.Site.ID, "/news/old", "/news/new"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := svc.Record(ctx, f.Site.ID, "/news/old", "/news/newer"); err != nil {
		t.Fatalf("Record again: %v", err)
	}
	if changes != 2 {
		t.Errorf("listeners called %d times, want 2", changes)
	}

	rd, ok, err := svc.Resolve(ctx, f.Site.ID, "/news/old")
	if err != nil || !ok {
		t.Fatalf("Resolve: ok=%v err=%v", ok, err)
	}
	if rd.NewPath != "/news/newer" {
		t.Errorf("NewPath = %q, want /news/newer", rd.NewPath)
	}

	exists, err := svc.Exists(ctx, f.Site.ID, "/news/old")
	if err != nil || !exists {
		t.Errorf("Exists = %v, %v", exists, err)
	}
	if _, ok, _ := svc.Resolve(ctx, f.Site.ID+1, "/news/old"); ok {
		t.Error("redirect leaked to another site")
	}

	items, total, err := svc.List(ctx, f.Site.ID, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("List = %d items, total %d; want 1, 1", len(items), total)
	}
}
