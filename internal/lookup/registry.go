package lookup

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/flosch/pongo2/v6"
)

// ResolveFunc produces the value of a lookup context variable.
type ResolveFunc func(ctx context.Context) (any, error)

// Entry is a named variable available to lookup and default templates.
type Entry struct {
	Name        string
	Description string
	Resolve     ResolveFunc
}

// Registry holds the template context variables, in registration order.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	index   map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// Register adds or replaces a context variable.
func (r *Registry) Register(name, description string, resolve ResolveFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := Entry{Name: name, Description: description, Resolve: resolve}
	if i, ok := r.index[name]; ok {
		r.entries[i] = entry
		return
	}

	r.index[name] = len(r.entries)
	r.entries = append(r.entries, entry)
}

// RegisterValue adds a context variable with a fixed value.
func (r *Registry) RegisterValue(name, description string, value any) {
	r.Register(name, description, func(context.Context) (any, error) {
		return value, nil
	})
}

func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Context resolves the variables template refers to into a template
// context. Entries the template never names are not resolved, so their
// failures cannot affect it.
func (r *Registry) Context(ctx context.Context, template string) (pongo2.Context, error) {
	referenced := mapset.NewSet(identifierPattern.FindAllString(template, -1)...)

	values := pongo2.Context{}
	for _, entry := range r.Entries() {
		if !referenced.Contains(entry.Name) {
			continue
		}

		value, err := entry.Resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", entry.Name, err)
		}
		values[entry.Name] = value
	}

	return values, nil
}

// HelpText describes the available variables, for use in form help texts.
func (r *Registry) HelpText() string {
	parts := make([]string, 0)
	for _, entry := range r.Entries() {
		parts = append(parts, fmt.Sprintf("{{ %s }} = %q", entry.Name, entry.Description))
	}

	return strings.Join(parts, ", ")
}
