package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"pet-clinic-scheduling/internal/adapters/storage/storetest"
	"pet-clinic-scheduling/internal/ports/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := Open(context.Background(), "sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) kv.Store { return openSQLite(t) })
}

func TestSQLiteStore_MigrateIsIdempotent(t *testing.T) {
	s := openSQLite(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	require.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `idx\_owner\%x\\`, escapeLike(`idx_owner%x\`))
}
