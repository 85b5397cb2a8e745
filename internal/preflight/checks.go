package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"medialib/internal/config"
	"medialib/internal/disk"
	"medialib/internal/mediastore"
)

const probeName = ".medialib-probe"

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStore opens the configured media store, which verifies connectivity
// and the schema version.
func CheckStore(ctx context.Context, cfg *config.Config) Result {
	const name = "Media store"
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := mediastore.Open(ctx, cfg)
	if err != nil {
		if errors.Is(err, mediastore.ErrSchemaMismatch) {
			return Result{Name: name, Detail: "schema version mismatch; back up and recreate the database"}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()

	records, err := store.All(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("query failed: %v", err)}
	}
	target := cfg.Store.SQLitePath
	if cfg.Store.Driver == config.StorePostgres {
		target = "postgres"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d media)", target, len(records))}
}

// CheckDisk writes, stats and removes a probe file on d.
func CheckDisk(ctx context.Context, name string, d disk.Disk) Result {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := d.Put(ctx, probeName, []byte("ok"), "text/plain"); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("write failed: %v", err)}
	}
	exists, err := d.Exists(ctx, probeName)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("stat failed: %v", err)}
	}
	if !exists {
		return Result{Name: name, Detail: "probe file missing after write"}
	}
	if err := d.Delete(ctx, probeName); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("delete failed: %v", err)}
	}
	return Result{Name: name, Passed: true, Detail: d.Name() + " (read/write ok)"}
}
