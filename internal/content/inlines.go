// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"
)

// RecommendationLimit caps Recommendations.
const RecommendationLimit = 10

// ImageRef places an image at Order inside a container.
type ImageRef struct {
	ImageID int64 `json:"image_id"`
	Order   int64 `json:"order"`
}

// SourceRef places a source at Order inside a container.
type SourceRef struct {
	SourceID int64 `json:"source_id"`
	Order    int64 `json:"order"`
}

// SetImages replaces the ordered image set of a container.
func (s *ContainerService) SetImages(ctx context.Context, id int64, refs []ImageRef) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	refs = append([]ImageRef(nil), refs...)
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Order < refs[j].Order })

	for _, ref := range refs {
		if _, err := s.queries.GetImageByID(ctx, ref.ImageID); errors.Is(err, sql.ErrNoRows) {
			return NewValidationError("images", fmt.Sprintf("Image %d does not exist", ref.ImageID))
		} else if err != nil {
			return fmt.Errorf("loading image %d: %w", ref.ImageID, err)
		}
	}

	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.DeleteContainerImages(ctx, id); err != nil {
			return err
		}
		for _, ref := range refs {
			if err := q.AddContainerImage(ctx, store.ContainerImage{ContainerID: id, ImageID: ref.ImageID, Position: ref.Order}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving images of container %d: %w", id, err)
	}
	s.logger.Info("container images saved", "container_id", id, "count", len(refs))
	return nil
}

// SetSources replaces the ordered source list of a container.
func (s *ContainerService) SetSources(ctx context.Context, id int64, refs []SourceRef) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	refs = append([]SourceRef(nil), refs...)
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Order < refs[j].Order })

	for _, ref := range refs {
		if _, err := s.queries.GetSourceByID(ctx, ref.SourceID); errors.Is(err, sql.ErrNoRows) {
			return NewValidationError("sources", fmt.Sprintf("Source %d does not exist", ref.SourceID))
		} else if err != nil {
			return fmt.Errorf("loading source %d: %w", ref.SourceID, err)
		}
	}

	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.DeleteContainerSources(ctx, id); err != nil {
			return err
		}
		for _, ref := range refs {
			if err := q.AddContainerSource(ctx, store.ContainerSource{ContainerID: id, SourceID: ref.SourceID, Position: ref.Order}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving sources of container %d: %w", id, err)
	}
	s.logger.Info("container sources saved", "container_id", id, "count", len(refs))
	return nil
}

// Images returns every image attached to a container, live or not, in order.
func (s *ContainerService) Images(ctx context.Context, id int64) ([]model.Image, error) {
	rows, err := s.queries.ListContainerImages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing images of container %d: %w", id, err)
	}
	return imagesFromRows(rows), nil
}

// Sources returns the sources of a container in order.
func (s *ContainerService) Sources(ctx context.Context, id int64) ([]model.Source, error) {
	rows, err := s.queries.ListContainerSources(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing sources of container %d: %w", id, err)
	}
	out := make([]model.Source, 0, len(rows))
	for _, row := range rows {
		out = append(out, SourceFromRow(row))
	}
	return out, nil
}

// AllImages returns the live images of a container in order. For a post the
// live images of its live albums follow its own, without duplicates.
func (s *ContainerService) AllImages(ctx context.Context, id int64) ([]model.Image, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	rows, err := s.queries.ListLiveContainerImages(ctx, id, now)
	if err != nil {
		return nil, fmt.Errorf("listing images of container %d: %w", id, err)
	}
	if c.Kind() == model.KindPost {
		albumRows, err := s.queries.ListLiveAlbumImagesForPost(ctx, id, now)
		if err != nil {
			return nil, fmt.Errorf("listing album images of post %d: %w", id, err)
		}
		rows = append(rows, albumRows...)
	}

	seen := make(map[int64]bool, len(rows))
	unique := rows[:0]
	for _, row := range rows {
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		unique = append(unique, row)
	}
	return imagesFromRows(unique), nil
}

// Recommendations returns live containers sharing a tag with id.
func (s *ContainerService) Recommendations(ctx context.Context, id int64) ([]*model.Container, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.queries.ListRecommendations(ctx, id, s.now(), RecommendationLimit)
	if err != nil {
		return nil, fmt.Errorf("listing recommendations for %d: %w", id, err)
	}
	return FromRows(rows)
}

// ChannelContainers returns up to limit live containers of kind in the
// channel, newest first.
func (s *ContainerService) ChannelContainers(ctx context.Context, siteID int64, longSlug string, kind model.Kind, limit int64) ([]*model.Container, error) {
	rows, err := s.queries.ListLiveChannelContainers(ctx, store.ListLiveChannelContainersParams{
		SiteID:          siteID,
		ChannelLongSlug: longSlug,
		ChildClass:      kind.String(),
		Now:             s.now(),
		Limit:           limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s in %s: %w", kind, longSlug, err)
	}
	return FromRows(rows)
}

func imagesFromRows(rows []store.Image) []model.Image {
	out := make([]model.Image, 0, len(rows))
	for _, row := range rows {
		out = append(out, ImageFromRow(row))
	}
	return out
}
