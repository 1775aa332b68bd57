// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package boxes aggregates containers into curated or query-driven boxes
// and resolves them at render time.
package boxes

import (
	"sort"

	"github.com/olegiv/opps-go/internal/model"
)

// ContainerModel is the registry name matching containers of every kind.
const ContainerModel = "core.Container"

// Registry maps the "app.Model" names a queryset may target to the
// child_class filter applied when the queryset is replayed. An empty filter
// matches every kind.
type Registry struct {
	models map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]string)}
}

// DefaultRegistry registers core.Container and one entry per container kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ContainerModel, "")
	for _, k := range model.Kinds {
		r.Register(k.ModelName(), k.String())
	}
	return r
}

// Register maps name to childClass, replacing an earlier entry.
func (r *Registry) Register(name, childClass string) {
	r.models[name] = childClass
}

// Lookup returns the child_class filter registered for name.
func (r *Registry) Lookup(name string) (childClass string, ok bool) {
	childClass, ok = r.models[name]
	return childClass, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
