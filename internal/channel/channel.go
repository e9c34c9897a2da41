// Package channel provides the data sources a picker browses. A channel
// loads its items in the background and filters them with a fuzzy matcher,
// so the number of results can change from one frame to the next.
package channel

import (
	"context"
	"errors"
)

// ErrUnknownChannel is returned when a channel name is not registered.
var ErrUnknownChannel = errors.New("unknown channel")

// Item is a raw value produced by a Source.
type Item struct {
	Name  string // Text shown and matched against
	Value string // Text printed on selection; Name when empty
}

// Entry is a matched item.
type Entry struct {
	Name    string
	Value   string
	Matches []int // Byte offsets into Name that matched the pattern
}

// Output returns the text printed when the entry is selected.
func (e Entry) Output() string {
	if e.Value != "" {
		return e.Value
	}
	return e.Name
}

// Channel is a searchable, possibly still loading, set of entries.
type Channel interface {
	// Name identifies the channel in the UI.
	Name() string

	// Find sets the pattern used to filter results. An empty pattern
	// matches every item in load order.
	Find(pattern string)

	// Results returns at most limit matched entries starting at offset.
	Results(limit, offset int) []Entry

	// Get returns the matched entry at index.
	Get(index int) (Entry, bool)

	// ResultCount is the number of entries matching the current pattern.
	ResultCount() int

	// TotalCount is the number of items loaded so far.
	TotalCount() int

	// Running reports whether items are still being loaded.
	Running() bool

	// Preview renders the details of an entry.
	Preview(ctx context.Context, e Entry) (string, error)

	// Shutdown stops loading. It is safe to call more than once.
	Shutdown()
}

// Source produces items for a Streaming channel.
type Source interface {
	// Load calls emit for every batch of items until the source is
	// exhausted or ctx is cancelled.
	Load(ctx context.Context, emit func(items ...Item)) error

	// Preview renders the details of an entry.
	Preview(ctx context.Context, e Entry) (string, error)
}
