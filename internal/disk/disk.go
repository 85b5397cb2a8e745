// Package disk abstracts where original and derived media files are stored.
//
// A Disk addresses files by slash-separated relative paths. The local disk
// maps them under a root directory; the S3 disk maps them to object keys
// under an optional prefix.
package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"medialib/internal/config"
)

// ErrNotExist is returned when a path has no file on the disk.
var ErrNotExist = errors.New("file does not exist")

// Disk stores and retrieves files by relative path.
type Disk interface {
	Name() string
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// Registry resolves disks by name.
type Registry struct {
	disks map[string]Disk
}

// NewRegistry builds the disks described by cfg. The S3 disk is only
// constructed when a bucket is configured.
func NewRegistry(ctx context.Context, cfg *config.Config) (*Registry, error) {
	reg := &Registry{disks: map[string]Disk{}}
	reg.Register(NewLocal(cfg.Disks.Local.Root))
	if cfg.Disks.S3.Bucket != "" {
		s3Disk, err := NewS3(ctx, cfg.Disks.S3)
		if err != nil {
			return nil, err
		}
		reg.Register(s3Disk)
	}
	return reg, nil
}

// NewStaticRegistry returns a registry holding exactly the given disks.
func NewStaticRegistry(disks ...Disk) *Registry {
	reg := &Registry{disks: map[string]Disk{}}
	for _, d := range disks {
		reg.Register(d)
	}
	return reg
}

// Register adds or replaces a disk.
func (r *Registry) Register(d Disk) {
	r.disks[d.Name()] = d
}

// Get returns the named disk.
func (r *Registry) Get(name string) (Disk, error) {
	d, ok := r.disks[name]
	if !ok {
		return nil, fmt.Errorf("disk %q is not configured", name)
	}
	return d, nil
}

// Names lists registered disk names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.disks))
	for name := range r.disks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadAll reads a whole file from d.
func ReadAll(ctx context.Context, d Disk, path string) ([]byte, error) {
	rc, err := d.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s from %s disk: %w", path, d.Name(), err)
	}
	return data, nil
}
