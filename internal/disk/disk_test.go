package disk_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"medialib/internal/config"
	"medialib/internal/disk"
)

func TestLocalRoundTrip(t *testing.T) {
	root := t.TempDir()
	d := disk.NewLocal(root)
	ctx := context.Background()

	if err := d.Put(ctx, "7/conversions/a-thumb.jpg", []byte("data"), "image/jpeg"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "7", "conversions", "a-thumb.jpg")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	data, err := disk.ReadAll(ctx, d, "7/conversions/a-thumb.jpg")
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "data" {
		t.Fatalf("unexpected content %q", data)
	}

	ok, err := d.Exists(ctx, "7/conversions/a-thumb.jpg")
	if err != nil || !ok {
		t.Fatalf("expected file to exist: %v %v", ok, err)
	}
	if err := d.Delete(ctx, "7/conversions/a-thumb.jpg"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := d.Delete(ctx, "7/conversions/a-thumb.jpg"); err != nil {
		t.Fatalf("Delete of missing file should be a no-op: %v", err)
	}
	ok, err = d.Exists(ctx, "7/conversions/a-thumb.jpg")
	if err != nil || ok {
		t.Fatalf("expected file to be gone: %v %v", ok, err)
	}
}

func TestLocalOpenMissing(t *testing.T) {
	d := disk.NewLocal(t.TempDir())
	_, err := d.Open(context.Background(), "nope.jpg")
	if !errors.Is(err, disk.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestLocalStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	d := disk.NewLocal(root)
	if err := d.Put(context.Background(), "../../escape.txt", []byte("x"), ""); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.txt")); err != nil {
		t.Fatalf("expected traversal to be clamped under root: %v", err)
	}
	if err := d.Put(context.Background(), "", []byte("x"), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestS3Key(t *testing.T) {
	d := disk.NewS3WithClient(nil, "bucket", "/media/")
	if got := d.Key("7/a.jpg"); got != "media/7/a.jpg" {
		t.Fatalf("unexpected key %q", got)
	}
	bare := disk.NewS3WithClient(nil, "bucket", "")
	if got := bare.Key("/7/../8/a.jpg"); got != "8/a.jpg" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestRegistry(t *testing.T) {
	cfg := config.Default()
	cfg.Disks.Local.Root = t.TempDir()
	reg, err := disk.NewRegistry(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	if names := reg.Names(); len(names) != 1 || names[0] != config.DiskLocal {
		t.Fatalf("expected only local disk, got %v", names)
	}
	if _, err := reg.Get(config.DiskS3); err == nil {
		t.Fatal("expected error for unconfigured s3 disk")
	}
	local, err := reg.Get(config.DiskLocal)
	if err != nil {
		t.Fatalf("Get local failed: %v", err)
	}
	if local.(*disk.Local).Root() != cfg.Disks.Local.Root {
		t.Fatalf("unexpected root")
	}
}
