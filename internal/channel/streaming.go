package channel

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sahilm/fuzzy"
)

// Streaming is a Channel fed by a Source running in its own goroutine.
// Matching is lazy: the pattern is re-applied on the next read after the
// pattern or the number of loaded items changed.
type Streaming struct {
	name   string
	source Source
	logger *slog.Logger

	mu      sync.Mutex
	items   []Item
	names   []string // Item names, kept for the matcher
	pattern string
	matched []Entry // nil when pattern is empty
	stale   bool    // matched must be recomputed
	running bool
	err     error

	cancel context.CancelFunc
	done   chan struct{}
}

// Compile-time check that Streaming implements Channel.
var _ Channel = (*Streaming)(nil)

// NewStreaming starts loading src and returns the channel immediately.
func NewStreaming(ctx context.Context, name string, src Source, logger *slog.Logger) *Streaming {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Streaming{
		name:    name,
		source:  src,
		logger:  logger.With("channel", name),
		running: true,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.load(ctx)
	return s
}

func (s *Streaming) load(ctx context.Context) {
	defer close(s.done)

	err := s.source.Load(ctx, s.append)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if err != nil && !errors.Is(err, context.Canceled) {
		s.err = err
		s.logger.Warn("channel load failed", "error", err)
		return
	}
	s.logger.Debug("channel loaded", "items", len(s.items))
}

func (s *Streaming) append(items ...Item) {
	if len(items) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		it.Name = Clean(it.Name)
		s.items = append(s.items, it)
		s.names = append(s.names, it.Name)
	}
	s.stale = true
}

// Name implements Channel.
func (s *Streaming) Name() string {
	return s.name
}

// Find implements Channel.
func (s *Streaming) Find(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pattern == s.pattern {
		return
	}
	s.pattern = pattern
	s.stale = true
}

// refresh recomputes matches. Callers must hold s.mu.
func (s *Streaming) refresh() {
	if !s.stale {
		return
	}
	s.stale = false
	if s.pattern == "" {
		s.matched = nil
		return
	}
	found := fuzzy.Find(s.pattern, s.names)
	s.matched = make([]Entry, len(found))
	for i, m := range found {
		it := s.items[m.Index]
		s.matched[i] = Entry{Name: it.Name, Value: it.Value, Matches: m.MatchedIndexes}
	}
}

// count returns the number of matched entries. Callers must hold s.mu.
func (s *Streaming) count() int {
	s.refresh()
	if s.pattern == "" {
		return len(s.items)
	}
	return len(s.matched)
}

// at returns the matched entry at i. Callers must hold s.mu and have
// checked the bounds.
func (s *Streaming) at(i int) Entry {
	if s.pattern == "" {
		it := s.items[i]
		return Entry{Name: it.Name, Value: it.Value}
	}
	return s.matched[i]
}

// Results implements Channel.
func (s *Streaming) Results(limit, offset int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.count()
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= n {
		return nil
	}
	end := min(offset+limit, n)
	out := make([]Entry, 0, end-offset)
	for i := offset; i < end; i++ {
		out = append(out, s.at(i))
	}
	return out
}

// Get implements Channel.
func (s *Streaming) Get(index int) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= s.count() {
		return Entry{}, false
	}
	return s.at(index), true
}

// ResultCount implements Channel.
func (s *Streaming) ResultCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count()
}

// TotalCount implements Channel.
func (s *Streaming) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Running implements Channel.
func (s *Streaming) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Err returns the error that stopped loading, if any.
func (s *Streaming) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Preview implements Channel.
func (s *Streaming) Preview(ctx context.Context, e Entry) (string, error) {
	return s.source.Preview(ctx, e)
}

// Wait blocks until loading finished or ctx is done.
func (s *Streaming) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown implements Channel. It does not wait for the source: a reader
// blocked on stdin only returns once the writer closes it.
func (s *Streaming) Shutdown() {
	s.cancel()
}
