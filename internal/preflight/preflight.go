package preflight

import (
	"context"

	"medialib/internal/config"
	"medialib/internal/disk"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// DiskResolver looks up configured disks.
type DiskResolver interface {
	Get(name string) (disk.Disk, error)
}

// RunAll executes every applicable check for cfg.
func RunAll(ctx context.Context, cfg *config.Config, disks DiskResolver) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckStore(ctx, cfg),
	}

	for _, name := range usedDisks(cfg) {
		label := "Disk " + name
		if disks == nil {
			results = append(results, Result{Name: label, Detail: "no disks configured"})
			continue
		}
		d, err := disks.Get(name)
		if err != nil {
			results = append(results, Result{Name: label, Detail: err.Error()})
			continue
		}
		results = append(results, CheckDisk(ctx, label, d))
	}
	return results
}

func usedDisks(cfg *config.Config) []string {
	names := []string{cfg.Disks.Default}
	if cfg.Disks.Conversions != "" && cfg.Disks.Conversions != cfg.Disks.Default {
		names = append(names, cfg.Disks.Conversions)
	}
	return names
}
