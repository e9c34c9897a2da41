package channel

import (
	"context"
	"fmt"
)

// RecentLister reads previously selected entries, most recent first.
type RecentLister interface {
	Recent(ctx context.Context, channel string, limit int) ([]string, error)
}

// History is a Source replaying past selections.
type History struct {
	store   RecentLister
	channel string // Empty means every channel
	limit   int
}

// NewHistory creates a Source over the selections recorded in store.
func NewHistory(store RecentLister, channel string, limit int) *History {
	return &History{store: store, channel: channel, limit: limit}
}

// Load implements Source.
func (h *History) Load(ctx context.Context, emit func(items ...Item)) error {
	entries, err := h.store.Recent(ctx, h.channel, h.limit)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Name: e}
	}
	emit(items...)
	return nil
}

// Preview implements Source.
func (h *History) Preview(_ context.Context, e Entry) (string, error) {
	return e.Output(), nil
}
