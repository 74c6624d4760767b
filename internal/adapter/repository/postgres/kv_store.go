package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/V4T54L/brokerdesk/internal/domain"
	"github.com/lib/pq"
)

const (
	kvTableName = "kv_store"

	// undefinedTable is the SQLSTATE reported before EnsureSchema has run.
	undefinedTable pq.ErrorCode = "42P01"
)

// KVStore implements domain.KVStore on a PostgreSQL table keyed by name.
type KVStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewKVStore creates a new PostgreSQL key/value store.
func NewKVStore(db *sql.DB, logger *slog.Logger) *KVStore {
	return &KVStore{db: db, logger: logger.With("component", "postgres_kv_store")}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (s *KVStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+kvTableName+` (
		key TEXT PRIMARY KEY,
		payload BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return fmt.Errorf("failed to create %s table: %w", kvTableName, err)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM `+kvTableName+` WHERE key = $1`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) || isUndefinedTable(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to read key", "key", key, "error", err)
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return payload, nil
}

// Put upserts the payload so the key always holds the latest write.
func (s *KVStore) Put(ctx context.Context, key string, payload []byte) error {
	query := `
		INSERT INTO ` + kvTableName + ` (key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query, key, payload); err != nil {
		s.logger.Error("failed to write key", "key", key, "error", err)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == undefinedTable
}
