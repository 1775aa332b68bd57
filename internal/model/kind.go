// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
)

// Kind identifies the concrete type of a container.
type Kind int

const (
	KindPost Kind = iota + 1
	KindAlbum
	KindLink
)

// Kinds lists every valid kind.
var Kinds = []Kind{KindPost, KindAlbum, KindLink}

// String returns the name stored in the child_class column.
func (k Kind) String() string {
	switch k {
	case KindPost:
		return "Post"
	case KindAlbum:
		return "Album"
	case KindLink:
		return "Link"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsValid reports whether k is one of the declared kinds.
func (k Kind) IsValid() bool {
	return k >= KindPost && k <= KindLink
}

// ParseKind parses a child_class value.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown container kind %q", s)
}

// URLPrefix is prepended to the channel path in canonical URLs.
func (k Kind) URLPrefix() string {
	switch k {
	case KindAlbum:
		return "/album"
	case KindLink:
		return "/link"
	default:
		return ""
	}
}

// ModelName is the "app.Model" identifier used by querysets.
func (k Kind) ModelName() string {
	return "articles." + k.String()
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("invalid container kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
