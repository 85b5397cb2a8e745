package mediastore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"medialib/internal/media"
)

//go:embed schema.sql
var schemaSQL string

// Store manages media persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

var _ Repository = (*Store)(nil)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// OpenSQLite initializes or connects to the media database at path.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("open sqlite db: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate it)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Add inserts a media record.
func (s *Store) Add(ctx context.Context, m *media.Media) (*media.Media, error) {
	record, generated, err := prepareInsert(m, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	timestamp := record.CreatedAt.Format(time.RFC3339Nano)

	var res sql.Result
	err = retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO media (
                uuid, model_type, model_id, collection_name, name, file_name, mime_type,
                disk, conversions_disk, size, generated_conversions, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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
			timestamp,
			timestamp,
		)
		return execErr
	})
	if err != nil {
		return nil, fmt.Errorf("insert media: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	record.ID = strconv.FormatInt(id, 10)
	return record, nil
}

// Get fetches a media record by identifier.
func (s *Store) Get(ctx context.Context, id string) (*media.Media, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE CAST(id AS TEXT) = ?`, id)
	m, err := scanSQLiteMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("media %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	return m, nil
}

// All returns every media record ordered by id.
func (s *Store) All(ctx context.Context) ([]*media.Media, error) {
	return s.query(ctx, `SELECT `+mediaColumns+` FROM media ORDER BY id`)
}

// GetByIDs returns the records matching ids ordered by id.
func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]*media.Media, error) {
	if len(ids) == 0 {
		return []*media.Media{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.query(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE CAST(id AS TEXT) IN (`+placeholders+`) ORDER BY id`,
		args...,
	)
}

// GetByModelType returns records owned by modelType ordered by id.
func (s *Store) GetByModelType(ctx context.Context, modelType string) ([]*media.Media, error) {
	return s.query(ctx, `SELECT `+mediaColumns+` FROM media WHERE model_type = ? ORDER BY id`, modelType)
}

// SetConversionGenerated updates the generated flag of one conversion.
func (s *Store) SetConversionGenerated(ctx context.Context, id, conversion string, generated bool) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var raw string
		err = tx.QueryRowContext(ctx, `SELECT generated_conversions FROM media WHERE CAST(id AS TEXT) = ?`, id).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("media %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("read generated conversions: %w", err)
		}
		flags, err := decodeGenerated([]byte(raw))
		if err != nil {
			return err
		}
		flags[conversion] = generated
		encoded, err := encodeGenerated(flags)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE media SET generated_conversions = ?, updated_at = ? WHERE CAST(id AS TEXT) = ?`,
			encoded, time.Now().UTC().Format(time.RFC3339Nano), id,
		); err != nil {
			return fmt.Errorf("update generated conversions: %w", err)
		}
		return tx.Commit()
	})
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*media.Media, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query media: %w", err)
	}
	defer rows.Close()

	result := make([]*media.Media, 0)
	for rows.Next() {
		m, err := scanSQLiteMedia(rows)
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

func scanSQLiteMedia(row rowScanner) (*media.Media, error) {
	var (
		m               media.Media
		id              int64
		conversionsDisk sql.NullString
		generated       string
		createdAt       string
		updatedAt       string
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
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	m.ID = strconv.FormatInt(id, 10)
	m.ConversionsDisk = conversionsDisk.String
	flags, err := decodeGenerated([]byte(generated))
	if err != nil {
		return nil, err
	}
	m.GeneratedConversions = flags
	m.CreatedAt = parseTimestamp(createdAt)
	m.UpdatedAt = parseTimestamp(updatedAt)
	return &m, nil
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
