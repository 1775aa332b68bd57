// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package boxes

import (
	"reflect"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name       string
		childClass string
		ok         bool
	}{
		{"core.Container", "", true},
		{"articles.Post", "Post", true},
		{"articles.Album", "Album", true},
		{"articles.Link", "Link", true},
		{"articles.Video", "", false},
		{"Post", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			childClass, ok := r.Lookup(tt.name)
			if ok != tt.ok || childClass != tt.childClass {
				t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.name, childClass, ok, tt.childClass, tt.ok)
			}
		})
	}

	want := []string{"articles.Album", "articles.Link", "articles.Post", "core.Container"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRegistryRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register("videos.Video", "Post")
	r.Register("videos.Video", "Album")

	if got, _ := r.Lookup("videos.Video"); got != "Album" {
		t.Errorf("Lookup = %q, want Album", got)
	}
	if len(r.Names()) != 1 {
		t.Errorf("Names() = %v, want one entry", r.Names())
	}
}
