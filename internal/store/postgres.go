package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Postgres keeps every collection in a single (collection, id, doc) table so
// the store surface stays schemaless, the way the desktop build keeps JSON
// documents on disk.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open sqlx connection.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the records table when it does not exist yet.
func (p *Postgres) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			doc        JSONB NOT NULL,
			PRIMARY KEY (collection, id)
		)
	`
	_, err := p.db.ExecContext(ctx, query)
	return err
}

func (p *Postgres) GetAll(ctx context.Context, collection string) ([][]byte, error) {
	query := `SELECT doc FROM records WHERE collection = $1`

	var docs [][]byte
	if err := p.db.SelectContext(ctx, &docs, query, collection); err != nil {
		return nil, err
	}
	return docs, nil
}

func (p *Postgres) GetByID(ctx context.Context, collection, id string) ([]byte, error) {
	query := `SELECT doc FROM records WHERE collection = $1 AND id = $2`

	var doc []byte
	err := p.db.GetContext(ctx, &doc, query, collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *Postgres) Create(ctx context.Context, collection, id string, doc []byte) error {
	query := `INSERT INTO records (collection, id, doc) VALUES ($1, $2, $3)`

	_, err := p.db.ExecContext(ctx, query, collection, id, doc)
	return err
}

func (p *Postgres) Update(ctx context.Context, collection, id string, doc []byte) error {
	query := `UPDATE records SET doc = $3 WHERE collection = $1 AND id = $2`

	res, err := p.db.ExecContext(ctx, query, collection, id, doc)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	query := `DELETE FROM records WHERE collection = $1 AND id = $2`

	res, err := p.db.ExecContext(ctx, query, collection, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
