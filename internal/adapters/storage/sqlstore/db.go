package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Open abre el pool (pgx o sqlite vía database/sql), hace ping y crea la tabla kv.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	driver = normalizeDriver(driver)
	if driver == "" {
		return nil, fmt.Errorf("sqlstore: unsupported driver")
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlstore: empty dsn")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	switch driver {
	case DriverPostgres:
		// defaults razonables para MVP (ajustable luego)
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(5 * time.Minute)
		db.SetConnMaxLifetime(30 * time.Minute)
	case DriverSQLite:
		// sqlite serializa escrituras; una sola conexión evita SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := New(sqlx.NewDb(db, driver))
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func normalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "postgres", "postgresql", "pgx":
		return DriverPostgres
	case "sqlite", "sqlite3":
		return DriverSQLite
	default:
		return ""
	}
}

func schemaFor(driver string) []string {
	valueType := "BLOB"
	if driver == DriverPostgres {
		valueType = "BYTEA"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS kv_records (
			record_key   TEXT PRIMARY KEY,
			record_value ` + valueType + ` NOT NULL,
			version      BIGINT NOT NULL DEFAULT 1
		)`,
	}
}
