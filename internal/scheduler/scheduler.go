// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: repairing the
// channel copies stored on containers, flushing resolved boxes and pruning
// old events.
package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"
)

// Job names.
const (
	JobChannelResync = "channel-resync"
	JobBoxCacheFlush = "box-cache-flush"
	JobEventCleanup  = "event-cleanup"
)

// Default schedules.
const (
	ChannelResyncSchedule = "*/5 * * * *"
	BoxCacheFlushSchedule = "* * * * *"
	EventCleanupSchedule  = "0 3 * * *"
)

// EventRetention is how long events are kept by the cleanup job.
const EventRetention = 30 * 24 * time.Hour

// ErrUnknownJob is returned by Trigger for an unregistered name.
var ErrUnknownJob = errors.New("unknown job")

// BoxCache drops resolved boxes.
type BoxCache interface {
	Invalidate(ctx context.Context)
}

// EventLogger records system events and prunes old ones.
type EventLogger interface {
	LogSystemEvent(ctx context.Context, level, message string, userID *int64, ipAddress, requestURL string, metadata map[string]any) error
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) error
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Schedule    string    `json:"schedule"`
	LastRun     time.Time `json:"last_run"`
	NextRun     time.Time `json:"next_run"`
	LastError   string    `json:"last_error,omitempty"`
}

type job struct {
	name        string
	description string
	schedule    string
	entryID     cron.EntryID
	run         func(ctx context.Context) error
	lastRun     time.Time
	lastErr     error
}

// Scheduler handles the periodic jobs.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	boxes  BoxCache
	events EventLogger
	logger *slog.Logger

	mu   sync.Mutex
	jobs map[string]*job
}

// New creates a scheduler. boxes and events may be nil, which leaves out
// the jobs that need them.
func New(db *sql.DB, boxes BoxCache, events EventLogger, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		boxes:  boxes,
		events: events,
		logger: logger,
		jobs:   make(map[string]*job),
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if err := s.add(JobChannelResync, "Re-copy channel name and long slug into drifted containers", ChannelResyncSchedule, s.resyncChannels); err != nil {
		return err
	}
	if s.boxes != nil {
		if err := s.add(JobBoxCacheFlush, "Drop resolved boxes so scheduled content appears", BoxCacheFlushSchedule, s.flushBoxes); err != nil {
			return err
		}
	}
	if s.events != nil {
		if err := s.add(JobEventCleanup, "Delete events older than the retention period", EventCleanupSchedule, s.cleanupEvents); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Jobs returns the registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := JobInfo{
			Name:        j.name,
			Description: j.description,
			Schedule:    j.schedule,
			LastRun:     j.lastRun,
			NextRun:     s.cron.Entry(j.entryID).Next,
		}
		if j.lastErr != nil {
			info.LastError = j.lastErr.Error()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// Trigger runs the named job now, outside its schedule.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.runJob(ctx, j)
}

func (s *Scheduler) add(name, description, schedule string, run func(ctx context.Context) error) error {
	j := &job{name: name, description: description, schedule: schedule, run: run}
	id, err := s.cron.AddFunc(schedule, func() {
		if err := s.runJob(context.Background(), j); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", name, err)
	}
	j.entryID = id

	s.mu.Lock()
	s.jobs[name] = j
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, j *job) error {
	err := j.run(ctx)
	s.mu.Lock()
	j.lastRun = time.Now()
	j.lastErr = err
	s.mu.Unlock()
	return err
}

// resyncChannels repairs drifted channel copies on containers.
func (s *Scheduler) resyncChannels(ctx context.Context) error {
	n, err := store.New(s.db).ResyncContainerChannels(ctx)
	if err != nil {
		return fmt.Errorf("resyncing container channels: %w", err)
	}
	if n == 0 {
		return nil
	}

	s.logger.Info("container channel copies repaired", "count", n)
	if s.boxes != nil {
		s.boxes.Invalidate(ctx)
	}
	if s.events != nil {
		if err := s.events.LogSystemEvent(ctx, model.EventLevelInfo, "Container channel copies repaired by scheduler", nil, "", "", map[string]any{
			"count": n,
		}); err != nil {
			s.logger.Warn("failed to log resync event", "error", err)
		}
	}
	return nil
}

func (s *Scheduler) flushBoxes(ctx context.Context) error {
	s.boxes.Invalidate(ctx)
	return nil
}

func (s *Scheduler) cleanupEvents(ctx context.Context) error {
	if err := s.events.DeleteOldEvents(ctx, EventRetention); err != nil {
		return fmt.Errorf("deleting old events: %w", err)
	}
	return nil
}
