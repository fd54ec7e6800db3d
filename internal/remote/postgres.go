package remote

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/autocheckhq/autocheck/internal/remote/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps all tenants' documents in a single table keyed by
// (tenant_id, collection, id). For deployments that prefer self-hosted SQL
// over a managed document database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database and runs the embedded migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) GetCollection(ctx context.Context, tenantID, collection string) ([]Doc, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, doc FROM documents WHERE tenant_id = $1 AND collection = $2 ORDER BY id`,
		tenantID, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Doc
	for rows.Next() {
		var d Doc
		if err := rows.Scan(&d.ID, &d.Data); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (p *PostgresStore) SaveItem(ctx context.Context, tenantID, collection, id string, data []byte) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO documents (tenant_id, collection, id, doc, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (tenant_id, collection, id)
		 DO UPDATE SET doc = excluded.doc, updated_at = now()`,
		tenantID, collection, id, data)
	if err != nil {
		return fmt.Errorf("failed to save %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *PostgresStore) DeleteItem(ctx context.Context, tenantID, collection, id string) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM documents WHERE tenant_id = $1 AND collection = $2 AND id = $3`,
		tenantID, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
