package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("CLINIC_TIMEZONE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.False(t, cfg.OdinEnabled())
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DB_DSN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_UnknownTimezone(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CLINIC_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ClinicTimezone(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("CLINIC_TIMEZONE", "America/Argentina/Buenos_Aires")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "America/Argentina/Buenos_Aires", cfg.Location.String())
}
