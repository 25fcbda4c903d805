package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // CLINIC_TIMEZONE en imágenes sin zoneinfo

	"github.com/joho/godotenv"
)

// Drivers del kv.Store.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

type Config struct {
	Port string

	LogLevel  string
	LogFormat string
	AppName   string

	StoreDriver string
	DBDSN       string
	SQLitePath  string
	RedisURL    string

	// Zona de la clínica: define el día calendario de slots y bloqueos.
	Location *time.Location

	OdinBaseURL string
	OdinAPIKey  string

	// Cron (5 campos) para la limpieza de descartes. Vacío = desactivado.
	HousekeepingSchedule string
}

// Load lee .env si existe (no es error que falte) y después el entorno.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "text"),
		AppName:              getEnv("APP_NAME", "pet-clinic-scheduling"),
		StoreDriver:          strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		DBDSN:                getEnv("DB_DSN", ""),
		SQLitePath:           getEnv("SQLITE_PATH", "pet-clinic.db"),
		RedisURL:             getEnv("REDIS_URL", ""),
		OdinBaseURL:          getEnv("ODIN_BASE_URL", ""),
		OdinAPIKey:           getEnv("ODIN_API_KEY", ""),
		HousekeepingSchedule: getEnv("HOUSEKEEPING_SCHEDULE", "@hourly"),
	}

	tz := getEnv("CLINIC_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("CLINIC_TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreSQLite:
		return nil
	case StorePostgres:
		if c.DBDSN == "" {
			return errors.New("STORE_DRIVER=postgres requires DB_DSN")
		}
		return nil
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("STORE_DRIVER=redis requires REDIS_URL")
		}
		return nil
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
}

// OdinEnabled: sin base URL o API key el router queda en modo dev (X-Debug-User-*).
func (c Config) OdinEnabled() bool {
	return c.OdinBaseURL != "" && c.OdinAPIKey != ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
