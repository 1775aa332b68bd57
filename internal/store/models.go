// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"password_hash"`
	Role         string       `json:"role"`
	Name         string       `json:"name"`
	LastLoginAt  sql.NullTime `json:"last_login_at"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type Site struct {
	ID     int64  `json:"id"`
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

type Channel struct {
	ID        int64         `json:"id"`
	SiteID    int64         `json:"site_id"`
	ParentID  sql.NullInt64 `json:"parent_id"`
	Name      string        `json:"name"`
	Slug      string        `json:"slug"`
	LongSlug  string        `json:"long_slug"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type Redirect struct {
	ID        int64     `json:"id"`
	SiteID    int64     `json:"site_id"`
	OldPath   string    `json:"old_path"`
	NewPath   string    `json:"new_path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Source struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	SiteID        int64     `json:"site_id"`
	DateAvailable time.Time `json:"date_available"`
	Published     bool      `json:"published"`
	DateInsert    time.Time `json:"date_insert"`
	DateUpdate    time.Time `json:"date_update"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Url           string    `json:"url"`
	Feed          string    `json:"feed"`
}

type Image struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	SiteID        int64         `json:"site_id"`
	DateAvailable time.Time     `json:"date_available"`
	Published     bool          `json:"published"`
	DateInsert    time.Time     `json:"date_insert"`
	DateUpdate    time.Time     `json:"date_update"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	FilePath      string        `json:"file_path"`
	MimeType      string        `json:"mime_type"`
	Width         int64         `json:"width"`
	Height        int64         `json:"height"`
	Size          int64         `json:"size"`
	Description   string        `json:"description"`
	SourceID      sql.NullInt64 `json:"source_id"`
}

// Container is a row of the single containers table. Post, album and link
// columns share the row; child_class tells them apart.
type Container struct {
	ID              int64          `json:"id"`
	UserID          int64          `json:"user_id"`
	SiteID          int64          `json:"site_id"`
	DateAvailable   time.Time      `json:"date_available"`
	Published       bool           `json:"published"`
	DateInsert      time.Time      `json:"date_insert"`
	DateUpdate      time.Time      `json:"date_update"`
	Title           string         `json:"title"`
	Slug            string         `json:"slug"`
	ChannelID       int64          `json:"channel_id"`
	ChannelName     string         `json:"channel_name"`
	ChannelLongSlug string         `json:"channel_long_slug"`
	ChildClass      string         `json:"child_class"`
	ShortUrl        string         `json:"short_url"`
	MainImageID     sql.NullInt64  `json:"main_image_id"`
	Headline        string         `json:"headline"`
	ShortTitle      string         `json:"short_title"`
	Content         sql.NullString `json:"content"`
	Url             sql.NullString `json:"url"`
	LinkContainerID sql.NullInt64  `json:"link_container_id"`
}

type ContainerImage struct {
	ID          int64 `json:"id"`
	ContainerID int64 `json:"container_id"`
	ImageID     int64 `json:"image_id"`
	Position    int64 `json:"position"`
}

type ContainerSource struct {
	ID          int64 `json:"id"`
	ContainerID int64 `json:"container_id"`
	SourceID    int64 `json:"source_id"`
	Position    int64 `json:"position"`
}

type QuerySet struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	SiteID        int64         `json:"site_id"`
	DateAvailable time.Time     `json:"date_available"`
	Published     bool          `json:"published"`
	DateInsert    time.Time     `json:"date_insert"`
	DateUpdate    time.Time     `json:"date_update"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Model         string        `json:"model"`
	Ordering      string        `json:"ordering"`
	RowLimit      int64         `json:"row_limit"`
	ChannelID     sql.NullInt64 `json:"channel_id"`
}

type ContainerBox struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	SiteID        int64         `json:"site_id"`
	DateAvailable time.Time     `json:"date_available"`
	Published     bool          `json:"published"`
	DateInsert    time.Time     `json:"date_insert"`
	DateUpdate    time.Time     `json:"date_update"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	ContainerID   sql.NullInt64 `json:"container_id"`
	ChannelID     sql.NullInt64 `json:"channel_id"`
	Mode          string        `json:"mode"`
	QuerysetID    sql.NullInt64 `json:"queryset_id"`
}

type ContainerBoxContainer struct {
	ID          int64 `json:"id"`
	BoxID       int64 `json:"box_id"`
	ContainerID int64 `json:"container_id"`
	Position    int64 `json:"position"`
}

type DynamicBox struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	SiteID        int64         `json:"site_id"`
	DateAvailable time.Time     `json:"date_available"`
	Published     bool          `json:"published"`
	DateInsert    time.Time     `json:"date_insert"`
	DateUpdate    time.Time     `json:"date_update"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	ContainerID   sql.NullInt64 `json:"container_id"`
	ChannelID     sql.NullInt64 `json:"channel_id"`
	QuerysetID    int64         `json:"queryset_id"`
}

type ArticleConfig struct {
	ID            int64          `json:"id"`
	UserID        int64          `json:"user_id"`
	SiteID        int64          `json:"site_id"`
	DateAvailable time.Time      `json:"date_available"`
	Published     bool           `json:"published"`
	DateInsert    time.Time      `json:"date_insert"`
	DateUpdate    time.Time      `json:"date_update"`
	KeyGroup      sql.NullString `json:"key_group"`
	Key           string         `json:"key"`
	Format        string         `json:"format"`
	Value         string         `json:"value"`
	Description   string         `json:"description"`
	ContainerID   sql.NullInt64  `json:"container_id"`
	ChannelID     sql.NullInt64  `json:"channel_id"`
}

type Event struct {
	ID         int64         `json:"id"`
	Level      string        `json:"level"`
	Category   string        `json:"category"`
	Message    string        `json:"message"`
	UserID     sql.NullInt64 `json:"user_id"`
	Metadata   string        `json:"metadata"`
	IpAddress  string        `json:"ip_address"`
	RequestUrl string        `json:"request_url"`
	CreatedAt  time.Time     `json:"created_at"`
}
