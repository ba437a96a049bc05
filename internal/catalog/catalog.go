// Package catalog describes every backend collection once, in a form both the
// one-shot CLI and the interactive screens can render without knowing the
// record type.
package catalog

import (
	"context"
	"sort"
	"time"

	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/resource"
	"github.com/Makepad-fr/nexo/internal/view"
)

// Snapshot is a rendered view of a list's state.
type Snapshot struct {
	Headers []string
	Widths  []int
	Rows    [][]string
	IDs     []int64
	Filter  resource.Filter
	Loading bool
	Message string
	Empty   bool
}

// Lister is a type-erased view.List.
type Lister interface {
	Load(f resource.Filter)
	Search(term string)
	Reload()
	Delete(ctx context.Context, id int64, c view.Confirmer) error
	Snapshot() Snapshot
	Wait()
	Close()
}

// Editor is a type-erased view.Form whose values travel as strings.
type Editor interface {
	Fields() []Field
	Open(ctx context.Context, param string) ([]string, error)
	Submit(ctx context.Context, values []string) error
	Delete(ctx context.Context, c view.Confirmer) error
	IsNew() bool
	State() view.FormState
	Message() string
}

// Resource is one entry of the catalogue.
type Resource struct {
	Name  string // path segment and CLI argument, e.g. "clients"
	Title string
	Level guard.Level
	// Field marks the collections the field app shows.
	Field bool
	// Statuses are the values the list's status filter cycles through.
	Statuses []string

	NewList   func(ctx context.Context, set *resource.Set, notify func(), delay time.Duration) Lister
	NewEditor func(set *resource.Set) Editor
}

var registry = map[string]Resource{}

func register(r Resource) { registry[r.Name] = r }

// Lookup finds a resource by name.
func Lookup(name string) (Resource, bool) {
	r, ok := registry[name]
	return r, ok
}

// All returns the catalogue sorted by title.
func All() []Resource {
	out := make([]Resource, 0, len(registry))
	for _, r := range registry {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// Names lists every resource name, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
