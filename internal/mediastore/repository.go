package mediastore

import (
	"context"
	"errors"
	"fmt"

	"medialib/internal/config"
	"medialib/internal/media"
)

// ErrNotFound is returned when a single-record lookup matches nothing.
var ErrNotFound = errors.New("media not found")

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// Repository is the storage contract shared by the SQLite and PostgreSQL backends.
type Repository interface {
	// Add inserts a record, assigning ID, UUID and timestamps.
	Add(ctx context.Context, m *media.Media) (*media.Media, error)
	// Get fetches one record or returns ErrNotFound.
	Get(ctx context.Context, id string) (*media.Media, error)
	// All returns every record in store order.
	All(ctx context.Context) ([]*media.Media, error)
	// GetByIDs returns the records whose identifiers appear in ids, in store
	// order. Identifiers with no matching record are omitted.
	GetByIDs(ctx context.Context, ids []string) ([]*media.Media, error)
	// GetByModelType returns records owned by the given model type, in store order.
	GetByModelType(ctx context.Context, modelType string) ([]*media.Media, error)
	// SetConversionGenerated records whether a conversion exists for a record.
	SetConversionGenerated(ctx context.Context, id, conversion string, generated bool) error
	Close() error
}

// Open connects to the backend selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite, "":
		return OpenSQLite(ctx, cfg.Store.SQLitePath)
	case config.StorePostgres:
		return OpenPostgres(ctx, cfg.Store.PostgresDSN)
	default:
		return nil, fmt.Errorf("open media store: unsupported driver %q", cfg.Store.Driver)
	}
}
