package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQLBackend stores documents in the records table created by the
// embedded migrations.  seq preserves insertion order.
type MySQLBackend struct {
	db *sql.DB
}

// NewMySQLBackend constructs a MySQLBackend with the given DB handle.
func NewMySQLBackend(db *sql.DB) *MySQLBackend {
	return &MySQLBackend{db: db}
}

const mysqlDuplicateEntry = 1062

func (r *MySQLBackend) Put(ctx context.Context, collection, id string, body []byte) error {
	const q = `INSERT INTO records (collection, id, body) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, collection, id, body); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *MySQLBackend) Replace(ctx context.Context, collection, id string, body []byte) (bool, error) {
	const q = `UPDATE records SET body = ? WHERE collection = ? AND id = ?`
	res, err := r.db.ExecContext(ctx, q, body, collection, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MySQLBackend) Get(ctx context.Context, collection, id string) ([]byte, error) {
	const q = `SELECT body FROM records WHERE collection = ? AND id = ?`
	var body []byte
	err := r.db.QueryRowContext(ctx, q, collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return body, nil
}

func (r *MySQLBackend) List(ctx context.Context, collection string) ([][]byte, error) {
	const q = `SELECT body FROM records WHERE collection = ? ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, q, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := [][]byte{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, body)
	}
	return out, rows.Err()
}

func (r *MySQLBackend) Delete(ctx context.Context, collection, id string) (bool, error) {
	const q = `DELETE FROM records WHERE collection = ? AND id = ?`
	res, err := r.db.ExecContext(ctx, q, collection, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
