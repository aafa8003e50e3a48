// Package sqlitedao is a readmodel.Dao backed by a pure-Go SQLite
// database, with an FTS5 virtual table standing in for the external
// document search engine named alongside the read model: a real
// inverted-index search surface without a native cgo dependency.
package sqlitedao

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bankledger/eventbank/bankaccount"
	"github.com/bankledger/eventbank/readmodel"
)

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// Dao is a SQLite-backed readmodel.Dao.
type Dao struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at dsn and ensures its
// schema exists. Use ":memory:" for tests.
func Open(dsn string) (*Dao, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitedao: could not open database: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; avoid SQLITE_BUSY

	dao := &Dao{db: db}
	if err := dao.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return dao, nil
}

// DB exposes the underlying handle for callers that need to share a
// transaction with a projector checkpoint, mirroring the
// transactional-checkpoint pattern used elsewhere in this module.
func (d *Dao) DB() *sql.DB { return d.db }

// Close closes the underlying database.
func (d *Dao) Close() error { return d.db.Close() }

func (d *Dao) migrate() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS bank_accounts (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			balance    INTEGER NOT NULL,
			closed     INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			version    INTEGER NOT NULL
		);
		CREATE VIRTUAL TABLE IF NOT EXISTS bank_accounts_fts USING fts5(
			id UNINDEXED,
			name,
			content='bank_accounts',
			content_rowid='rowid'
		);
		CREATE TABLE IF NOT EXISTS projector_checkpoints (
			projector_name TEXT PRIMARY KEY,
			position       INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("sqlitedao: could not migrate: %w", err)
	}
	return nil
}

// Upsert implements readmodel.Dao.
func (d *Dao) Upsert(ctx context.Context, row readmodel.Row) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitedao: could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	closed := 0
	if row.Closed {
		closed = 1
	}

	// An FTS5 table does not accept UPSERT, so an existing index entry is
	// removed with the 'delete' command before the new one is inserted.
	var oldRowID int64
	var oldName string
	switch err := tx.QueryRowContext(ctx, `SELECT rowid, name FROM bank_accounts WHERE id = ?`, row.ID.String()).Scan(&oldRowID, &oldName); {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `INSERT INTO bank_accounts_fts (bank_accounts_fts, rowid, id, name) VALUES ('delete', ?, ?, ?)`,
			oldRowID, row.ID.String(), oldName); err != nil {
			return fmt.Errorf("sqlitedao: could not update search index: %w", err)
		}
	case err != sql.ErrNoRows:
		return fmt.Errorf("sqlitedao: could not read existing row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bank_accounts (id, name, balance, closed, created_at, updated_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			balance = excluded.balance,
			closed = excluded.closed,
			updated_at = excluded.updated_at,
			version = excluded.version
	`, row.ID.String(), row.Name, row.Balance, closed,
		row.CreatedAt.UTC().Format(timeLayout), row.UpdatedAt.UTC().Format(timeLayout), row.Version); err != nil {
		return fmt.Errorf("sqlitedao: could not upsert row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bank_accounts_fts (rowid, id, name)
		SELECT rowid, id, name FROM bank_accounts WHERE id = ?
	`, row.ID.String()); err != nil {
		return fmt.Errorf("sqlitedao: could not update search index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlitedao: could not commit transaction: %w", err)
	}
	return nil
}

// Get implements readmodel.Dao.
func (d *Dao) Get(ctx context.Context, id bankaccount.ID) (readmodel.Row, bool, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, name, balance, closed, created_at, updated_at, version FROM bank_accounts WHERE id = ?
	`, id.String())

	r, ok, err := scanRow(row)
	if err != nil {
		return readmodel.Row{}, false, fmt.Errorf("sqlitedao: could not scan row: %w", err)
	}
	return r, ok, nil
}

// Search implements readmodel.Dao using the FTS5 index.
func (d *Dao) Search(ctx context.Context, query string, limit int) ([]readmodel.Row, error) {
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT a.id, a.name, a.balance, a.closed, a.created_at, a.updated_at, a.version
		FROM bank_accounts_fts f
		JOIN bank_accounts a ON a.id = f.id
		WHERE bank_accounts_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlitedao: could not search: %w", err)
	}
	defer rows.Close()

	var out []readmodel.Row
	for rows.Next() {
		var r readmodel.Row
		var idStr, createdAt, updatedAt string
		var closed int
		if err := rows.Scan(&idStr, &r.Name, &r.Balance, &closed, &createdAt, &updatedAt, &r.Version); err != nil {
			return nil, fmt.Errorf("sqlitedao: could not scan search result: %w", err)
		}
		id, err := bankaccount.ParseID(idStr)
		if err != nil {
			return nil, fmt.Errorf("sqlitedao: malformed id in search result: %w", err)
		}
		createdParsed, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("sqlitedao: malformed created_at in search result: %w", err)
		}
		updatedParsed, err := time.Parse(timeLayout, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("sqlitedao: malformed updated_at in search result: %w", err)
		}
		r.ID = id
		r.Closed = closed != 0
		r.CreatedAt = createdParsed
		r.UpdatedAt = updatedParsed
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete implements readmodel.Dao.
func (d *Dao) Delete(ctx context.Context, id bankaccount.ID) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM bank_accounts WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("sqlitedao: could not delete row: %w", err)
	}
	return nil
}

func scanRow(row *sql.Row) (readmodel.Row, bool, error) {
	var r readmodel.Row
	var idStr, createdAt, updatedAt string
	var closed int
	err := row.Scan(&idStr, &r.Name, &r.Balance, &closed, &createdAt, &updatedAt, &r.Version)
	if err == sql.ErrNoRows {
		return readmodel.Row{}, false, nil
	}
	if err != nil {
		return readmodel.Row{}, false, err
	}
	id, err := bankaccount.ParseID(idStr)
	if err != nil {
		return readmodel.Row{}, false, err
	}
	createdParsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return readmodel.Row{}, false, err
	}
	updatedParsed, err := time.Parse(timeLayout, updatedAt)
	if err != nil {
		return readmodel.Row{}, false, err
	}
	r.ID = id
	r.Closed = closed != 0
	r.CreatedAt = createdParsed
	r.UpdatedAt = updatedParsed
	return r, true, nil
}

var _ readmodel.Dao = (*Dao)(nil)
