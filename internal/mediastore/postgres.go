package mediastore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medialib/internal/media"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS medialib_schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS media (
    id BIGSERIAL PRIMARY KEY,
    uuid UUID NOT NULL UNIQUE,
    model_type TEXT NOT NULL,
    model_id BIGINT NOT NULL DEFAULT 0,
    collection_name TEXT NOT NULL,
    name TEXT NOT NULL,
    file_name TEXT NOT NULL,
    mime_type TEXT NOT NULL,
    disk TEXT NOT NULL,
    conversions_disk TEXT,
    size BIGINT NOT NULL DEFAULT 0,
    generated_conversions JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_media_model ON media(model_type, model_id);
`

const postgresColumns = `id, uuid::text, model_type, model_id, collection_name, name, file_name,
    mime_type, disk, conversions_disk, size, generated_conversions, created_at, updated_at`

// PostgresStore manages media persistence backed by PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresStore)(nil)

// OpenPostgres connects to dsn and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("open postgres: dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	store := &PostgresStore{pool: pool}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	err = tx.QueryRow(ctx, `SELECT version FROM medialib_schema_version LIMIT 1`).Scan(&version)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := tx.Exec(ctx, `INSERT INTO medialib_schema_version (version) VALUES ($1)`, schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Add inserts a media record.
func (s *PostgresStore) Add(ctx context.Context, m *media.Media) (*media.Media, error) {
	record, generated, err := prepareInsert(m, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	var id int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO media (
            uuid, model_type, model_id, collection_name, name, file_name, mime_type,
            disk, conversions_disk, size, generated_conversions, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12, $13)
        RETURNING id`,
		record.UUID,
		record.ModelType,
		record.ModelID,
		record.CollectionName,
		record.Name,
		record.FileName,
		record.MimeType,
		record.Disk,
		nullableString(record.ConversionsDisk),
		record.Size,
		string(generated),
		record.CreatedAt,
		record.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert media: %w", err)
	}
	record.ID = strconv.FormatInt(id, 10)
	return record, nil
}

// Get fetches a media record by identifier.
func (s *PostgresStore) Get(ctx context.Context, id string) (*media.Media, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+postgresColumns+` FROM media WHERE id::text = $1`, id)
	m, err := scanPostgresMedia(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("media %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	return m, nil
}

// All returns every media record ordered by id.
func (s *PostgresStore) All(ctx context.Context) ([]*media.Media, error) {
	return s.query(ctx, `SELECT `+postgresColumns+` FROM media ORDER BY id`)
}

// GetByIDs returns the records matching ids ordered by id.
func (s *PostgresStore) GetByIDs(ctx context.Context, ids []string) ([]*media.Media, error) {
	if len(ids) == 0 {
		return []*media.Media{}, nil
	}
	return s.query(ctx, `SELECT `+postgresColumns+` FROM media WHERE id::text = ANY($1) ORDER BY id`, ids)
}

// GetByModelType returns records owned by modelType ordered by id.
func (s *PostgresStore) GetByModelType(ctx context.Context, modelType string) ([]*media.Media, error) {
	return s.query(ctx, `SELECT `+postgresColumns+` FROM media WHERE model_type = $1 ORDER BY id`, modelType)
}

// SetConversionGenerated updates the generated flag of one conversion.
func (s *PostgresStore) SetConversionGenerated(ctx context.Context, id, conversion string, generated bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE media
         SET generated_conversions = generated_conversions || jsonb_build_object($2::text, $3::boolean),
             updated_at = $4
         WHERE id::text = $1`,
		id, conversion, generated, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update generated conversions: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("media %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*media.Media, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query media: %w", err)
	}
	defer rows.Close()

	result := make([]*media.Media, 0)
	for rows.Next() {
		m, err := scanPostgresMedia(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media: %w", err)
	}
	return result, nil
}

func scanPostgresMedia(row rowScanner) (*media.Media, error) {
	var (
		m               media.Media
		id              int64
		conversionsDisk *string
		generated       []byte
	)
	if err := row.Scan(
		&id,
		&m.UUID,
		&m.ModelType,
		&m.ModelID,
		&m.CollectionName,
		&m.Name,
		&m.FileName,
		&m.MimeType,
		&m.Disk,
		&conversionsDisk,
		&m.Size,
		&generated,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	m.ID = strconv.FormatInt(id, 10)
	if conversionsDisk != nil {
		m.ConversionsDisk = *conversionsDisk
	}
	flags, err := decodeGenerated(generated)
	if err != nil {
		return nil, err
	}
	m.GeneratedConversions = flags
	return &m, nil
}
