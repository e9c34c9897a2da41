package channel

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/runger/lookout/internal/sanitize"
)

// Env is a Source listing environment variables. Entries are named after
// the variable and print its value when selected.
type Env struct {
	environ func() []string
}

// NewEnv creates a Source over the process environment.
func NewEnv() *Env {
	return &Env{environ: os.Environ}
}

// Load implements Source.
func (e *Env) Load(_ context.Context, emit func(items ...Item)) error {
	vars := e.environ()
	items := make([]Item, 0, len(vars))
	for _, kv := range vars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		items = append(items, Item{Name: name, Value: value})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	emit(items...)
	return nil
}

// Preview implements Source. Secrets are masked and colon separated lists
// are shown one per line.
func (e *Env) Preview(_ context.Context, entry Entry) (string, error) {
	value := sanitize.Value(entry.Name, entry.Value)
	if strings.Count(value, string(os.PathListSeparator)) > 1 {
		return strings.ReplaceAll(value, string(os.PathListSeparator), "\n"), nil
	}
	return value, nil
}
