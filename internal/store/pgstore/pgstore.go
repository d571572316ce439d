// Package pgstore implements store.Store on PostgreSQL, keeping every
// document as a JSONB row in a single documents table.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/proset/internal/store"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         uuid        PRIMARY KEY,
	seq        bigserial   NOT NULL,
	collection text        NOT NULL,
	body       jsonb       NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS documents_collection_seq ON documents (collection, seq);
CREATE INDEX IF NOT EXISTS documents_body ON documents USING gin (body jsonb_path_ops);
`

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Store is a store.Store backed by a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Connect opens a pool, verifies it and creates the documents table and its
// unique indexes if they are missing.
func Connect(ctx context.Context, cfg PoolConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	slog.Info("postgres store ready", "max_conns", poolConfig.MaxConns)
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	for _, idx := range store.UniqueIndexes {
		if _, err := s.pool.Exec(ctx, uniqueIndexSQL(idx)); err != nil {
			return fmt.Errorf("create index %s: %w", idx.Name, err)
		}
	}
	return nil
}

// uniqueIndexSQL builds a partial unique expression index for idx. Index
// definitions are package constants, so inlining them is safe.
func uniqueIndexSQL(idx store.UniqueIndex) string {
	exprs := make([]string, len(idx.Fields))
	for i, f := range idx.Fields {
		exprs[i] = fmt.Sprintf("(body #>> '{%s}')", strings.ReplaceAll(f, ".", ","))
	}
	return fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS documents_%s ON documents (%s) WHERE collection = '%s'",
		idx.Name, strings.Join(exprs, ", "), idx.Collection,
	)
}

// containment renders filter as the JSON document used with @>.
func containment(filter store.Filter) (string, error) {
	f, err := store.NormalizeFilter(filter)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(store.Expand(f))
	if err != nil {
		return "", fmt.Errorf("encode filter: %w", err)
	}
	return string(data), nil
}

func wrap(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %s", op, store.ErrDuplicateKey, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", op, err)
}

const selectFirst = `
SELECT id, body FROM documents
WHERE collection = $1 AND body @> $2::jsonb
ORDER BY seq
LIMIT 1`

// FindOne implements store.Store.
func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter, out any) (bool, error) {
	match, err := containment(filter)
	if err != nil {
		return false, err
	}

	var (
		id   string
		body []byte
	)
	err = s.pool.QueryRow(ctx, selectFirst, collection, match).Scan(&id, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, wrap("find one", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("decode document %s: %w", id, err)
	}
	return true, nil
}

// FindMany implements store.Store.
func (s *Store) FindMany(ctx context.Context, collection string, filter store.Filter, out any) error {
	match, err := containment(filter)
	if err != nil {
		return err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT body FROM documents WHERE collection = $1 AND body @> $2::jsonb ORDER BY seq`,
		collection, match)
	if err != nil {
		return wrap("find", err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return wrap("scan", err)
		}
		var doc store.Document
		if err := json.Unmarshal(body, &doc); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return wrap("find", err)
	}
	return store.DecodeAll(docs, out)
}

// Upsert implements store.Store. The matched row is locked for the duration
// of the read-modify-write so the modified flag reflects the stored state.
func (s *Store) Upsert(ctx context.Context, collection string, filter store.Filter, patch store.Patch) (store.UpsertResult, error) {
	return s.write(ctx, collection, filter, patch, true)
}

// Update implements store.Store.
func (s *Store) Update(ctx context.Context, collection string, filter store.Filter, patch store.Patch) (store.UpsertResult, error) {
	return s.write(ctx, collection, filter, patch, false)
}

func (s *Store) write(ctx context.Context, collection string, filter store.Filter, patch store.Patch, insertMissing bool) (store.UpsertResult, error) {
	match, err := containment(filter)
	if err != nil {
		return store.UpsertResult{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return store.UpsertResult{}, wrap("begin", err)
	}
	defer tx.Rollback(ctx)

	var (
		id   string
		body []byte
	)
	err = tx.QueryRow(ctx, selectFirst+" FOR UPDATE", collection, match).Scan(&id, &body)
	switch {
	case errors.Is(err, pgx.ErrNoRows) && !insertMissing:
		return store.UpsertResult{}, nil

	case errors.Is(err, pgx.ErrNoRows):
		f, err := store.NormalizeFilter(filter)
		if err != nil {
			return store.UpsertResult{}, err
		}
		doc := store.Expand(f)
		if _, err := store.ApplyPatch(doc, patch); err != nil {
			return store.UpsertResult{}, err
		}
		newID, err := insert(ctx, tx, collection, doc)
		if err != nil {
			return store.UpsertResult{}, err
		}
		if err := tx.Commit(ctx); err != nil {
			return store.UpsertResult{}, wrap("commit", err)
		}
		return store.UpsertResult{CreatedID: newID}, nil

	case err != nil:
		return store.UpsertResult{}, wrap("select for update", err)
	}

	var doc store.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return store.UpsertResult{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	changed, err := store.ApplyPatch(doc, patch)
	if err != nil {
		return store.UpsertResult{}, err
	}
	if !changed {
		return store.UpsertResult{Matched: true}, nil
	}

	next, err := json.Marshal(doc)
	if err != nil {
		return store.UpsertResult{}, fmt.Errorf("encode document: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE documents SET body = $1::jsonb, updated_at = now() WHERE id = $2`,
		string(next), id); err != nil {
		return store.UpsertResult{}, wrap("update", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return store.UpsertResult{}, wrap("commit", err)
	}
	return store.UpsertResult{Matched: true, Modified: true}, nil
}

// DeleteOne implements store.Store.
func (s *Store) DeleteOne(ctx context.Context, collection string, filter store.Filter) (store.DeleteResult, error) {
	match, err := containment(filter)
	if err != nil {
		return store.DeleteResult{}, err
	}
	tag, err := s.pool.Exec(ctx, `
DELETE FROM documents WHERE id = (
	SELECT id FROM documents
	WHERE collection = $1 AND body @> $2::jsonb
	ORDER BY seq
	LIMIT 1
)`, collection, match)
	if err != nil {
		return store.DeleteResult{}, wrap("delete", err)
	}
	return store.DeleteResult{DeletedCount: tag.RowsAffected()}, nil
}

// InsertOne implements store.Store.
func (s *Store) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	d, err := store.ToDocument(doc)
	if err != nil {
		return "", err
	}
	return insert(ctx, s.pool, collection, d)
}

// Close implements store.Store.
func (s *Store) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

type execer interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
}

func insert(ctx context.Context, db execer, collection string, doc store.Document) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	id := uuid.NewString()
	if _, err := db.Exec(ctx,
		`INSERT INTO documents (id, collection, body) VALUES ($1, $2, $3::jsonb)`,
		id, collection, string(body)); err != nil {
		return "", wrap("insert", err)
	}
	return id, nil
}
