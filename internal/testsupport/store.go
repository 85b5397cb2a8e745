package testsupport

import (
	"context"
	"testing"

	"medialib/internal/config"
	"medialib/internal/media"
	"medialib/internal/mediastore"
)

// MustOpenStore opens a SQLite mediastore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *mediastore.Store {
	t.Helper()

	store, err := mediastore.OpenSQLite(context.Background(), cfg.Store.SQLitePath)
	if err != nil {
		t.Fatalf("mediastore.OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustAddMedia inserts a record owned by modelType on the local disk.
func MustAddMedia(t testing.TB, store mediastore.Repository, modelType, fileName string) *media.Media {
	t.Helper()

	m, err := store.Add(context.Background(), &media.Media{
		ModelType: modelType,
		ModelID:   1,
		FileName:  fileName,
		Disk:      config.DiskLocal,
	})
	if err != nil {
		t.Fatalf("add media %s: %v", fileName, err)
	}
	return m
}
