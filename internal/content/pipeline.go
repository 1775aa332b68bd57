// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/opps-go/internal/model"
)

// Save is the state carried through one container write.
type Save struct {
	// Container is the record being written. Steps may modify it.
	Container *model.Container
	// Previous is the stored record before the write, nil on create.
	Previous *model.Container
	// Site is the site the container belongs to.
	Site model.Site
	// Channel is the channel the container is being saved into.
	Channel model.Channel
	// ChildClass is the value written to the child_class column.
	ChildClass string

	errs ValidationError
}

// IsCreate reports whether the save inserts a new record.
func (s *Save) IsCreate() bool {
	return s.Previous == nil
}

// Invalid records a field-level validation failure.
func (s *Save) Invalid(field, msg string) {
	s.errs.Add(field, msg)
}

// StepFunc runs one step. A returned error aborts the save.
type StepFunc func(ctx context.Context, s *Save) error

// Step is a named pipeline step.
type Step struct {
	Name string
	Run  StepFunc
}

// PersistFunc writes the container and its relations.
type PersistFunc func(ctx context.Context, s *Save) error

// Pipeline runs the steps of a container save in a fixed order:
// every Validate step, then Prepare, then the persist function, then After.
// Validate steps report field errors through Save.Invalid; the save stops
// with a *ValidationError once they have all run.
type Pipeline struct {
	Validate []Step
	Prepare  []Step
	After    []Step
	Logger   *slog.Logger
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	var names []string
	for _, group := range [][]Step{p.Validate, p.Prepare, p.After} {
		for _, st := range group {
			names = append(names, st.Name)
		}
	}
	return names
}

// Run executes the pipeline around persist.
func (p *Pipeline) Run(ctx context.Context, s *Save, persist PersistFunc) error {
	for _, st := range p.Validate {
		if err := st.Run(ctx, s); err != nil {
			return fmt.Errorf("%s: %w", st.Name, err)
		}
	}
	if !s.errs.Empty() {
		v := s.errs
		return &v
	}

	for _, st := range p.Prepare {
		if err := st.Run(ctx, s); err != nil {
			return fmt.Errorf("%s: %w", st.Name, err)
		}
	}

	if err := persist(ctx, s); err != nil {
		return err
	}

	// The record is committed at this point; a failing step leaves it saved.
	for _, st := range p.After {
		if err := st.Run(ctx, s); err != nil {
			p.logger().Error("post-save step failed", "step", st.Name, "container_id", s.Container.ID, "error", err)
			return fmt.Errorf("%s: %w", st.Name, err)
		}
	}
	return nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
