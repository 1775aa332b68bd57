// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"testing"
	"time"
)

func TestNullInt64RoundTrip(t *testing.T) {
	if PtrFromNullInt64(NullInt64FromPtr(nil)) != nil {
		t.Error("nil pointer did not survive the round trip")
	}

	v := int64(42)
	got := PtrFromNullInt64(NullInt64FromPtr(&v))
	if got == nil || *got != 42 {
		t.Errorf("round trip = %v, want 42", got)
	}
	if got == &v {
		t.Error("PtrFromNullInt64 must not alias the input")
	}
}

func TestNullStringRoundTrip(t *testing.T) {
	if PtrFromNullString(sql.NullString{}) != nil {
		t.Error("invalid NullString should map to nil")
	}

	empty := ""
	n := NullStringFromPtr(&empty)
	if !n.Valid {
		t.Error("pointer to empty string should be a valid NullString")
	}
}

func TestPtrFromNullTime(t *testing.T) {
	if PtrFromNullTime(sql.NullTime{}) != nil {
		t.Error("invalid NullTime should map to nil")
	}
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	got := PtrFromNullTime(sql.NullTime{Time: at, Valid: true})
	if got == nil || !got.Equal(at) {
		t.Errorf("PtrFromNullTime = %v, want %v", got, at)
	}
}
