package docstore

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shandysiswandi/tailor/internal/pkg/valueobject"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres stores documents as JSONB rows in a single documents table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres applies pending migrations and returns the store. The pool
// stays owned by the caller.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if err := migrate(ctx, pool); err != nil {
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("docstore: set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("docstore: migrate: %w", err)
	}
	return nil
}

func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

func indexValue(index Index) valueobject.JSONMap {
	m := make(valueobject.JSONMap, len(index))
	for k, v := range index {
		m[k] = v
	}
	return m
}

func (p *Postgres) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if err := checkKey(collection, id); err != nil {
		return nil, err
	}

	var data []byte
	err := p.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if err != nil {
		return nil, mapPgError(err)
	}
	return data, nil
}

func (p *Postgres) Create(ctx context.Context, collection, id string, data []byte, index Index) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}

	_, err := p.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data, lookup) VALUES ($1, $2, $3, $4)`,
		collection, id, data, indexValue(index),
	)
	return mapPgError(err)
}

func (p *Postgres) Put(ctx context.Context, collection, id string, data []byte, index Index) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data, lookup) VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, lookup = EXCLUDED.lookup, updated_at = now()`,
		collection, id, data, indexValue(index),
	)
	return mapPgError(err)
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}

	tag, err := p.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, collection string) ([][]byte, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT data FROM documents WHERE collection = $1 ORDER BY id`,
		collection,
	)
	if err != nil {
		return nil, mapPgError(err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, mapPgError(err)
	}
	return out, nil
}

func (p *Postgres) FindOne(ctx context.Context, collection, field, value string) ([]byte, error) {
	if collection == "" || field == "" {
		return nil, ErrInvalidArgument
	}

	var data []byte
	err := p.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND lookup @> $2 ORDER BY id LIMIT 1`,
		collection, indexValue(Index{field: value}),
	).Scan(&data)
	if err != nil {
		return nil, mapPgError(err)
	}
	return data, nil
}

// Close is a no-op; the pool belongs to the caller.
func (p *Postgres) Close() error { return nil }
