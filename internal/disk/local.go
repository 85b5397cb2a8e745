package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"medialib/internal/config"
)

// Local stores files under a root directory.
type Local struct {
	root string
}

var _ Disk = (*Local)(nil)

// NewLocal returns a local disk rooted at root.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) Name() string { return config.DiskLocal }

// Root returns the directory files are stored under.
func (l *Local) Root() string { return l.root }

func (l *Local) resolve(relPath string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(relPath, "\\", "/"))
	if cleaned == "/" {
		return "", fmt.Errorf("invalid path %q", relPath)
	}
	return filepath.Join(l.root, filepath.FromSlash(cleaned)), nil
}

func (l *Local) Open(_ context.Context, relPath string) (io.ReadCloser, error) {
	full, err := l.resolve(relPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s on local disk: %w", relPath, ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", relPath, err)
	}
	return f, nil
}

func (l *Local) Put(_ context.Context, relPath string, data []byte, _ string) error {
	full, err := l.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", relPath, err)
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", relPath, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize %s: %w", relPath, err)
	}
	return nil
}

func (l *Local) Delete(_ context.Context, relPath string) error {
	full, err := l.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", relPath, err)
	}
	return nil
}

func (l *Local) Exists(_ context.Context, relPath string) (bool, error) {
	full, err := l.resolve(relPath)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", relPath, err)
	}
}
