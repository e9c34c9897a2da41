package channel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Factory creates a channel.
type Factory func(ctx context.Context) (Channel, error)

// PipeFactory creates a channel whose input is the results of another one.
type PipeFactory func(ctx context.Context, entries []Entry) (Channel, error)

// Def describes a registered channel.
type Def struct {
	Name        string
	Description string
	Hidden      bool        // Left out of listings and the channel guide
	New         Factory     // Required
	Pipe        PipeFactory // Optional; channels without it cannot receive results
}

// Registry maps channel names to their definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Def)}
}

// Register adds d. Names must be unique.
func (r *Registry) Register(d Def) error {
	if d.Name == "" {
		return errors.New("register channel: empty name")
	}
	if d.New == nil {
		return fmt.Errorf("register channel %q: no factory", d.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[d.Name]; ok {
		return fmt.Errorf("register channel %q: already registered", d.Name)
	}
	r.defs[d.Name] = d
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// New creates the channel registered under name.
func (r *Registry) New(ctx context.Context, name string) (Channel, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
	}
	return d.New(ctx)
}

// Pipe creates the channel registered under name fed with entries.
func (r *Registry) Pipe(ctx context.Context, name string, entries []Entry) (Channel, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
	}
	if d.Pipe == nil {
		return nil, fmt.Errorf("channel %q does not accept piped results", name)
	}
	return d.Pipe(ctx, entries)
}

// Defs returns the visible definitions sorted by name. Hidden ones are
// included when includeHidden is set.
func (r *Registry) Defs(includeHidden bool) []Def {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Def, 0, len(r.defs))
	for _, d := range r.defs {
		if d.Hidden && !includeHidden {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the names of Defs(includeHidden).
func (r *Registry) Names(includeHidden bool) []string {
	defs := r.Defs(includeHidden)
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}
