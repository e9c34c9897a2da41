package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

const (
	// batchSize is the number of items handed to emit at once.
	batchSize = 256

	// maxLineBytes bounds a single input line.
	maxLineBytes = 1 << 20
)

// Lines is a Source reading one item per line.
type Lines struct {
	r io.Reader
}

// NewLines creates a Source over r.
func NewLines(r io.Reader) *Lines {
	return &Lines{r: r}
}

// Load implements Source.
func (l *Lines) Load(ctx context.Context, emit func(items ...Item)) error {
	return scanLines(ctx, l.r, emit)
}

// Preview implements Source. The preview of a line is the line itself.
func (l *Lines) Preview(_ context.Context, e Entry) (string, error) {
	return e.Output(), nil
}

// scanLines emits every non-empty line of r in batches. A partial batch is
// flushed whenever the scanner has to wait for more input, so slow
// producers show up line by line.
func scanLines(ctx context.Context, r io.Reader, emit func(items ...Item)) error {
	batch := make([]Item, 0, batchSize)
	flush := func() {
		if len(batch) > 0 {
			emit(batch...)
			batch = make([]Item, 0, batchSize)
		}
	}

	sc := bufio.NewScanner(&flushReader{r: r, flush: flush})
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := sc.Text()
		if line == "" {
			continue
		}
		batch = append(batch, Item{Name: line})
		if len(batch) == batchSize {
			flush()
		}
	}
	flush()
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read lines: %w", err)
	}
	return nil
}

// flushReader calls flush before every read of the underlying reader.
type flushReader struct {
	r     io.Reader
	flush func()
}

func (f *flushReader) Read(p []byte) (int, error) {
	f.flush()
	return f.r.Read(p)
}

// entriesSource replays a fixed list of entries, e.g. results piped from
// another channel.
type entriesSource struct {
	items   []Item
	preview func(ctx context.Context, e Entry) (string, error)
}

func (s *entriesSource) Load(_ context.Context, emit func(items ...Item)) error {
	emit(s.items...)
	return nil
}

func (s *entriesSource) Preview(ctx context.Context, e Entry) (string, error) {
	if s.preview == nil {
		return e.Output(), nil
	}
	return s.preview(ctx, e)
}

// itemsOf converts entries back into items.
func itemsOf(entries []Entry) []Item {
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Name: e.Name, Value: e.Value}
	}
	return items
}
