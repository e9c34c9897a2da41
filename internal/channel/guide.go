package channel

import (
	"context"
	"log/slog"
)

// GuideName is the name of the channel listing other channels.
const GuideName = "guide"

// guideSource lists registered channels.
type guideSource struct {
	registry  *Registry
	pipesOnly bool
}

func (g *guideSource) Load(_ context.Context, emit func(items ...Item)) error {
	var items []Item
	for _, d := range g.registry.Defs(g.pipesOnly) {
		if g.pipesOnly && d.Pipe == nil {
			continue
		}
		items = append(items, Item{Name: d.Name})
	}
	emit(items...)
	return nil
}

func (g *guideSource) Preview(_ context.Context, e Entry) (string, error) {
	d, ok := g.registry.Lookup(e.Name)
	if !ok {
		return "", nil
	}
	return d.Description, nil
}

// NewGuide creates a channel listing the visible channels of r.
func NewGuide(ctx context.Context, r *Registry, logger *slog.Logger) *Streaming {
	return NewStreaming(ctx, GuideName, &guideSource{registry: r}, logger)
}

// NewPipeGuide creates a channel listing the channels of r that accept
// piped results, hidden ones included.
func NewPipeGuide(ctx context.Context, r *Registry, logger *slog.Logger) *Streaming {
	return NewStreaming(ctx, GuideName, &guideSource{registry: r, pipesOnly: true}, logger)
}
