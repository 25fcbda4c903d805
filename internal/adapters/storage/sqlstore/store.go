package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"pet-clinic-scheduling/internal/ports/kv"

	"github.com/jmoiron/sqlx"
)

var _ kv.Store = (*Store)(nil)

const maxUpdateAttempts = 50

// Store implementa kv.Store sobre una tabla (record_key, record_value, version).
// Update es optimistic: relee y reintenta si otro writer cambió la versión.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaFor(s.db.DriverName()) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, s.db.Rebind(
		`SELECT record_value FROM kv_records WHERE record_key = ?`,
	), key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO kv_records (record_key, record_value, version)
		VALUES (?, ?, 1)
		ON CONFLICT (record_key) DO UPDATE
		SET record_value = excluded.record_value,
			version = kv_records.version + 1
	`), key, value)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`DELETE FROM kv_records WHERE record_key = ?`,
	), key)
	return err
}

func (s *Store) MultiGet(ctx context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT record_key, record_value FROM kv_records WHERE record_key IN (?)`, keys)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[string][]byte, len(keys))
	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		found[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, k := range keys {
		out[i] = found[k]
	}
	return out, nil
}

func (s *Store) ScanPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(
		`SELECT record_value FROM kv_records WHERE record_key LIKE ? ESCAPE '\'`,
	), escapeLike(prefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([][]byte, 0)
	for rows.Next() {
		var v []byte
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, key string, fn kv.UpdateFunc) error {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var (
			current []byte
			version int64
		)
		err := s.db.QueryRowContext(ctx, s.db.Rebind(
			`SELECT record_value, version FROM kv_records WHERE record_key = ?`,
		), key).Scan(&current, &version)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		ok, err := s.compareAndSwap(ctx, key, version, next)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		backoff(attempt)
	}
	return kv.ErrContention
}

// compareAndSwap escribe next solo si la fila sigue en version (0 = no existía).
func (s *Store) compareAndSwap(ctx context.Context, key string, version int64, next []byte) (bool, error) {
	var (
		res sql.Result
		err error
	)

	switch {
	case next == nil && version == 0:
		return true, nil
	case next == nil:
		res, err = s.db.ExecContext(ctx, s.db.Rebind(
			`DELETE FROM kv_records WHERE record_key = ? AND version = ?`,
		), key, version)
	case version == 0:
		res, err = s.db.ExecContext(ctx, s.db.Rebind(`
			INSERT INTO kv_records (record_key, record_value, version)
			VALUES (?, ?, 1)
			ON CONFLICT (record_key) DO NOTHING
		`), key, next)
	default:
		res, err = s.db.ExecContext(ctx, s.db.Rebind(`
			UPDATE kv_records
			SET record_value = ?, version = version + 1
			WHERE record_key = ? AND version = ?
		`), next, key, version)
	}
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func backoff(attempt int) {
	ceil := time.Duration(attempt+1) * time.Millisecond
	if ceil > 20*time.Millisecond {
		ceil = 20 * time.Millisecond
	}
	time.Sleep(time.Duration(rand.Int63n(int64(ceil))))
}
