// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package shortener turns absolute container URLs into short URLs, either
// through a remote link-shortening service or through site redirects.
package shortener

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Shortener returns a short URL for longURL.
type Shortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// ErrShorten wraps every failure to obtain a short URL.
var ErrShorten = errors.New("url shortener failed")

// CodeLength is the length of generated short codes.
const CodeLength = 6

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode returns a random base62 code of length n.
func GenerateCode(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("generating short code: %w", err)
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
