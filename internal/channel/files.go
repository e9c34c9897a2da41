package channel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// previewBytes bounds how much of a file is read for a preview.
const previewBytes = 16 * 1024

// Files is a Source walking a directory tree. Hidden directories are
// skipped; paths are emitted relative to the root.
type Files struct {
	root string
}

// NewFiles creates a Source rooted at dir.
func NewFiles(dir string) *Files {
	return &Files{root: dir}
}

// Load implements Source.
func (f *Files) Load(ctx context.Context, emit func(items ...Item)) error {
	batch := make([]Item, 0, batchSize)
	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == f.root {
				return err
			}
			// Unreadable directories are skipped, not fatal.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != f.root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			rel = path
		}
		batch = append(batch, Item{Name: rel})
		if len(batch) == batchSize {
			emit(batch...)
			batch = make([]Item, 0, batchSize)
		}
		return nil
	})
	emit(batch...)
	if err != nil {
		return fmt.Errorf("walk %s: %w", f.root, err)
	}
	return nil
}

// Preview implements Source.
func (f *Files) Preview(_ context.Context, e Entry) (string, error) {
	path := e.Output()
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.root, path)
	}
	return previewFile(path)
}

// previewFile returns the beginning of a text file.
func previewFile(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("preview: %w", err)
	}
	defer fh.Close()

	buf := make([]byte, previewBytes)
	n, err := io.ReadFull(fh, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("preview: %w", err)
	}
	buf = buf[:n]
	if bytes.IndexByte(buf, 0) >= 0 {
		return "<binary file>", nil
	}
	return StripANSI(ValidateUTF8(string(buf))), nil
}
