// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.
type Config struct {
	Env               string // application environment (development, production)
	Port              string // HTTP port to listen on
	StoreDriver       string // memory or mysql
	DBUser            string
	DBPass            string // may be empty
	DBHost            string
	DBPort            string
	DBName            string
	JWTSecret         string // secret used to sign access tokens
	AccessTTLMin      int    // access token lifetime in minutes
	AdminUser         string // teacher login name
	AdminPasswordHash string // bcrypt hash of the teacher password
	AMQPURL           string // empty disables seating events
	EventLogDir       string // where the event consumer writes seating.log
	MigrateOnStart    bool
}

// Load reads the environment (after an optional .env file) and returns a
// Config.  Missing required variables are reported together in one error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:               envStr("APP_ENV", "development"),
		Port:              envStr("APP_PORT", "8080"),
		StoreDriver:       strings.ToLower(envStr("STORE_DRIVER", DriverMemory)),
		DBUser:            os.Getenv("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"),
		DBHost:            envStr("DB_HOST", "127.0.0.1"),
		DBPort:            envStr("DB_PORT", "3306"),
		DBName:            os.Getenv("DB_NAME"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AccessTTLMin:      envInt("ACCESS_TOKEN_TTL_MIN", 60),
		AdminUser:         envStr("ADMIN_USER", "teacher"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AMQPURL:           envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		EventLogDir:       envStr("EVENT_LOG_DIR", "logs"),
		MigrateOnStart:    envBool("MIGRATE_ON_START", false),
	}
	if cfg.AccessTTLMin <= 0 {
		cfg.AccessTTLMin = 60
	}

	var missing []string
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.AdminPasswordHash == "" {
		missing = append(missing, "ADMIN_PASSWORD_HASH")
	}
	switch cfg.StoreDriver {
	case DriverMemory:
	case DriverMySQL:
		if cfg.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
		if cfg.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}
