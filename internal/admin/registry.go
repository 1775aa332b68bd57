// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package admin

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/sahilm/fuzzy"
)

// Registry holds the layouts of every registered model. Rules are applied
// once, when a layout is registered.
type Registry struct {
	mu      sync.RWMutex
	rules   RuleSet
	admins  map[string]ModelAdmin
	byModel map[string]string
	logger  *slog.Logger
}

// NewRegistry creates an empty registry that applies rules on registration.
func NewRegistry(rules RuleSet, logger *slog.Logger) *Registry {
	return &Registry{
		rules:   rules,
		admins:  make(map[string]ModelAdmin),
		byModel: make(map[string]string),
		logger:  logger,
	}
}

// Register adds a layout, applying the rules keyed by its name.
func (r *Registry) Register(a ModelAdmin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.admins[a.Name]; ok {
		return fmt.Errorf("admin %s already registered", a.Name)
	}
	if other, ok := r.byModel[a.Model]; ok {
		return fmt.Errorf("model %s already registered by %s", a.Model, other)
	}
	if rules, ok := r.rules[a.Name]; ok {
		a = ApplyRules(a, rules)
		r.logger.Info("admin rules applied", "admin", a.Name)
	}
	r.admins[a.Name] = a
	r.byModel[a.Model] = a.Name
	return nil
}

// Get returns the layout registered under an admin name or a model name.
func (r *Registry) Get(name string) (ModelAdmin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.admins[name]; ok {
		return a.Clone(), true
	}
	if adminName, ok := r.byModel[name]; ok {
		return r.admins[adminName].Clone(), true
	}
	return ModelAdmin{}, false
}

// All returns every layout sorted by name.
func (r *Registry) All() []ModelAdmin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ModelAdmin, 0, len(r.admins))
	for _, a := range r.admins {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Suggest returns up to three registered names close to name, best first.
func (r *Registry) Suggest(name string) []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.admins)+len(r.byModel))
	for n := range r.admins {
		names = append(names, n)
	}
	for m := range r.byModel {
		names = append(names, m)
	}
	r.mu.RUnlock()
	sort.Strings(names)

	matches := fuzzy.Find(name, names)
	out := make([]string, 0, 3)
	for _, m := range matches {
		if len(out) == 3 {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// UnusedRules returns the rule keys that matched no registered layout.
func (r *Registry) UnusedRules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for key := range r.rules {
		if _, ok := r.admins[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
