package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DirSink mirrors relative paths below a local directory
type DirSink struct {
	root      string
	overwrite bool
}

// NewDirSink creates a sink rooted at dir. Existing files are only
// replaced when overwrite is set.
func NewDirSink(dir string, overwrite bool) *DirSink {
	return &DirSink{root: dir, overwrite: overwrite}
}

// Write stores data at root/rel, creating parent directories
func (d *DirSink) Write(ctx context.Context, rel string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := cleanRel(rel)
	if err != nil {
		return err
	}

	target := filepath.Join(d.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !d.overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(target, flags, 0644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %s", ErrExists, target)
	}
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	return f.Close()
}

// Describe returns the output directory
func (d *DirSink) Describe() string {
	return d.root
}

var _ Sink = (*DirSink)(nil)
