package channel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitLoaded blocks until s finished loading.
func waitLoaded(t *testing.T, s *Streaming) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func fixed(names ...string) *entriesSource {
	items := make([]Item, len(names))
	for i, n := range names {
		items[i] = Item{Name: n}
	}
	return &entriesSource{items: items}
}

// gatedSource emits one batch per value sent on next.
type gatedSource struct {
	next chan []Item
}

func (g *gatedSource) Load(ctx context.Context, emit func(items ...Item)) error {
	for {
		select {
		case items, ok := <-g.next:
			if !ok {
				return nil
			}
			emit(items...)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (g *gatedSource) Preview(_ context.Context, e Entry) (string, error) {
	return "preview:" + e.Name, nil
}

type failingSource struct{ err error }

func (f failingSource) Load(context.Context, func(items ...Item)) error { return f.err }
func (f failingSource) Preview(context.Context, Entry) (string, error) { return "", nil }

func TestStreaming_EmptyPatternKeepsLoadOrder(t *testing.T) {
	s := NewStreaming(context.Background(), "t", fixed("zeta", "alpha", "mid"), nil)
	waitLoaded(t, s)

	assert.False(t, s.Running())
	assert.Equal(t, 3, s.ResultCount())
	assert.Equal(t, 3, s.TotalCount())

	got := s.Results(10, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "zeta", got[0].Name)
	assert.Equal(t, "alpha", got[1].Name)
	assert.Empty(t, got[0].Matches)
}

func TestStreaming_Find(t *testing.T) {
	s := NewStreaming(context.Background(), "t", fixed("main.go", "README.md", "model.go", "Makefile"), nil)
	waitLoaded(t, s)

	s.Find("go")
	assert.Equal(t, 2, s.ResultCount())
	assert.Equal(t, 4, s.TotalCount())
	for _, e := range s.Results(10, 0) {
		assert.Contains(t, e.Name, ".go")
		assert.NotEmpty(t, e.Matches)
	}

	s.Find("zzz")
	assert.Equal(t, 0, s.ResultCount())
	_, ok := s.Get(0)
	assert.False(t, ok)

	s.Find("")
	assert.Equal(t, 4, s.ResultCount())
}

func TestStreaming_ResultsPaging(t *testing.T) {
	s := NewStreaming(context.Background(), "t", fixed("a", "b", "c", "d", "e"), nil)
	waitLoaded(t, s)

	page := s.Results(2, 3)
	require.Len(t, page, 2)
	assert.Equal(t, "d", page[0].Name)
	assert.Equal(t, "e", page[1].Name)

	assert.Len(t, s.Results(10, 4), 1)
	assert.Empty(t, s.Results(10, 5))
	assert.Empty(t, s.Results(0, 0))
	assert.Len(t, s.Results(2, -3), 2)
}

func TestStreaming_Get(t *testing.T) {
	s := NewStreaming(context.Background(), "t", fixed("a", "b"), nil)
	waitLoaded(t, s)

	e, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "b", e.Name)

	_, ok = s.Get(-1)
	assert.False(t, ok)
	_, ok = s.Get(2)
	assert.False(t, ok)
}

func TestStreaming_CountGrowsWhileLoading(t *testing.T) {
	src := &gatedSource{next: make(chan []Item)}
	s := NewStreaming(context.Background(), "t", src, nil)
	defer s.Shutdown()

	assert.True(t, s.Running())
	assert.Equal(t, 0, s.ResultCount())

	src.next <- []Item{{Name: "apple"}, {Name: "banana"}}
	require.Eventually(t, func() bool { return s.ResultCount() == 2 }, time.Second, 5*time.Millisecond)

	s.Find("an")
	assert.Equal(t, 1, s.ResultCount())

	src.next <- []Item{{Name: "mango"}, {Name: "cherry"}}
	require.Eventually(t, func() bool { return s.ResultCount() == 2 }, time.Second, 5*time.Millisecond,
		"matches are recomputed when new items arrive")

	close(src.next)
	waitLoaded(t, s)
	assert.False(t, s.Running())
	assert.Equal(t, 4, s.TotalCount())
}

func TestStreaming_CleansNames(t *testing.T) {
	s := NewStreaming(context.Background(), "t", fixed("\x1b[31mred\x1b[0m\tx"), nil)
	waitLoaded(t, s)

	e, ok := s.Get(0)
	require.True(t, ok)
	assert.Equal(t, "red    x", e.Name)
}

func TestStreaming_LoadError(t *testing.T) {
	s := NewStreaming(context.Background(), "t", failingSource{err: errors.New("boom")}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := s.Wait(ctx)
	assert.EqualError(t, err, "boom")
	assert.False(t, s.Running())
}

func TestStreaming_ShutdownIsNotAnError(t *testing.T) {
	src := &gatedSource{next: make(chan []Item)}
	s := NewStreaming(context.Background(), "t", src, nil)
	s.Shutdown()
	s.Shutdown()

	waitLoaded(t, s)
	assert.NoError(t, s.Err())
}

func TestStreaming_Preview(t *testing.T) {
	src := &gatedSource{next: make(chan []Item)}
	s := NewStreaming(context.Background(), "t", src, nil)
	defer s.Shutdown()

	out, err := s.Preview(context.Background(), Entry{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "preview:x", out)
	assert.Equal(t, "t", s.Name())
}

func TestEntry_Output(t *testing.T) {
	assert.Equal(t, "name", Entry{Name: "name"}.Output())
	assert.Equal(t, "value", Entry{Name: "name", Value: "value"}.Output())
}
