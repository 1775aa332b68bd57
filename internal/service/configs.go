// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/util"
)

// Config field messages.
const (
	MsgKeyRequired   = "Key is required"
	MsgFormatInvalid = "Format must be one of text, json or yaml"
	MsgValueNotJSON  = "Value is not valid JSON"
	MsgConfigExists  = "This key is already configured for the same scope"
)

// ConfigInput is the editable part of a configuration entry.
type ConfigInput struct {
	KeyGroup      *string
	Key           string
	Format        model.ConfigFormat
	Value         string
	Description   string
	Published     bool
	DateAvailable time.Time
	ContainerID   *int64
	ChannelID     *int64
}

// ConfigService stores typed configuration entries and answers value
// lookups. Lookups never fail loudly: a missing or undecodable value is
// reported as absent.
type ConfigService struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewConfigService creates a ConfigService.
func NewConfigService(db store.DBTX, logger *slog.Logger) *ConfigService {
	return &ConfigService{queries: store.New(db), logger: logger, now: time.Now}
}

// Create stores a new entry owned by userID on siteID.
func (s *ConfigService) Create(ctx context.Context, userID, siteID int64, in ConfigInput) (model.ConfigEntry, error) {
	in = normalizeConfigInput(in)
	if err := validateConfig(in); err != nil {
		return model.ConfigEntry{}, err
	}

	now := s.now()
	row, err := s.queries.CreateArticleConfig(ctx, store.CreateArticleConfigParams{
		UserID:        userID,
		SiteID:        siteID,
		DateAvailable: availableAt(in.DateAvailable, now),
		Published:     in.Published,
		DateInsert:    now,
		DateUpdate:    now,
		KeyGroup:      util.NullStringFromPtr(in.KeyGroup),
		Key:           in.Key,
		Format:        string(in.Format),
		Value:         in.Value,
		Description:   in.Description,
		ContainerID:   util.NullInt64FromPtr(in.ContainerID),
		ChannelID:     util.NullInt64FromPtr(in.ChannelID),
	})
	if store.IsUniqueViolation(err) {
		return model.ConfigEntry{}, content.NewValidationError("key", MsgConfigExists)
	}
	if err != nil {
		return model.ConfigEntry{}, fmt.Errorf("creating config %q: %w", in.Key, err)
	}
	s.logger.Info("config created", "config_id", row.ID, "key", row.Key)
	return ConfigFromRow(row), nil
}

// Update changes entry id.
func (s *ConfigService) Update(ctx context.Context, id int64, in ConfigInput) (model.ConfigEntry, error) {
	prev, err := s.Get(ctx, id)
	if err != nil {
		return model.ConfigEntry{}, err
	}
	in = normalizeConfigInput(in)
	if err := validateConfig(in); err != nil {
		return model.ConfigEntry{}, err
	}

	row, err := s.queries.UpdateArticleConfig(ctx, store.UpdateArticleConfigParams{
		ID:            id,
		DateAvailable: availableAt(in.DateAvailable, prev.DateAvailable),
		Published:     in.Published,
		DateUpdate:    s.now(),
		KeyGroup:      util.NullStringFromPtr(in.KeyGroup),
		Key:           in.Key,
		Format:        string(in.Format),
		Value:         in.Value,
		Description:   in.Description,
		ContainerID:   util.NullInt64FromPtr(in.ContainerID),
		ChannelID:     util.NullInt64FromPtr(in.ChannelID),
	})
	if store.IsUniqueViolation(err) {
		return model.ConfigEntry{}, content.NewValidationError("key", MsgConfigExists)
	}
	if err != nil {
		return model.ConfigEntry{}, fmt.Errorf("updating config %d: %w", id, err)
	}
	return ConfigFromRow(row), nil
}

// Get loads entry id.
func (s *ConfigService) Get(ctx context.Context, id int64) (model.ConfigEntry, error) {
	row, err := s.queries.GetArticleConfigByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ConfigEntry{}, ErrNotFound
	}
	if err != nil {
		return model.ConfigEntry{}, fmt.Errorf("loading config %d: %w", id, err)
	}
	return ConfigFromRow(row), nil
}

// List returns a page of entries, newest first.
func (s *ConfigService) List(ctx context.Context, limit, offset int64) ([]model.ConfigEntry, error) {
	rows, err := s.queries.ListArticleConfigs(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing configs: %w", err)
	}
	items := make([]model.ConfigEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, ConfigFromRow(row))
	}
	return items, nil
}

// Count returns the number of stored entries.
func (s *ConfigService) Count(ctx context.Context) (int64, error) {
	n, err := s.queries.CountArticleConfigs(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting configs: %w", err)
	}
	return n, nil
}

// GetValue returns the decoded value of the most recently inserted live
// entry for key within scope. ok is false when nothing matches.
func (s *ConfigService) GetValue(ctx context.Context, key string, scope store.ConfigScope) (value any, ok bool) {
	row, err := s.queries.GetLatestLiveConfig(ctx, key, scope, s.now())
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("config lookup failed", "key", key, "error", err)
		}
		return nil, false
	}
	v, err := model.DecodeConfigValue(row.Value, model.ConfigFormat(row.Format))
	if err != nil {
		s.logger.Warn("config value cannot be decoded", "key", key, "config_id", row.ID, "error", err)
		return nil, false
	}
	return v, true
}

// GetValues returns key -> decoded value for the live entries of keyGroup
// within scope. For a repeated key the latest insert wins. The map is empty
// when nothing matches.
func (s *ConfigService) GetValues(ctx context.Context, keyGroup string, scope store.ConfigScope) map[string]any {
	values := make(map[string]any)
	rows, err := s.queries.ListLiveConfigsByGroup(ctx, keyGroup, scope, s.now())
	if err != nil {
		s.logger.Warn("config group lookup failed", "key_group", keyGroup, "error", err)
		return values
	}
	for _, row := range rows {
		v, err := model.DecodeConfigValue(row.Value, model.ConfigFormat(row.Format))
		if err != nil {
			s.logger.Warn("config value cannot be decoded", "key", row.Key, "config_id", row.ID, "error", err)
			continue
		}
		values[row.Key] = v
	}
	return values
}

// ConfigFromRow converts an article_configs row.
func ConfigFromRow(row store.ArticleConfig) model.ConfigEntry {
	return model.ConfigEntry{
		ID: row.ID,
		Publishable: model.Publishable{
			UserID:        row.UserID,
			SiteID:        row.SiteID,
			DateAvailable: row.DateAvailable,
			Published:     row.Published,
			DateInsert:    row.DateInsert,
			DateUpdate:    row.DateUpdate,
		},
		KeyGroup:    util.PtrFromNullString(row.KeyGroup),
		Key:         row.Key,
		Format:      model.ConfigFormat(row.Format),
		Value:       row.Value,
		Description: row.Description,
		ContainerID: util.PtrFromNullInt64(row.ContainerID),
		ChannelID:   util.PtrFromNullInt64(row.ChannelID),
	}
}

func normalizeConfigInput(in ConfigInput) ConfigInput {
	if in.Format == "" {
		in.Format = model.ConfigFormatText
	}
	if in.KeyGroup != nil && *in.KeyGroup == "" {
		in.KeyGroup = nil
	}
	return in
}

func validateConfig(in ConfigInput) error {
	v := &content.ValidationError{}
	if in.Key == "" {
		v.Add("key", MsgKeyRequired)
	}
	if !in.Format.IsValid() {
		v.Add("format", MsgFormatInvalid)
	}
	if in.Format == model.ConfigFormatJSON && !json.Valid([]byte(in.Value)) {
		v.Add("value", MsgValueNotJSON)
	}
	if !v.Empty() {
		return v
	}
	return nil
}
