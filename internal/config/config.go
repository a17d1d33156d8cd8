package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Home string // credentials and the default sqlite database live here

	Backend    string
	SQLitePath string

	DatabaseURL string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	JWTSecret string

	Theme    string
	LogLevel slog.Level
	LogFile  string
}

func Load() *Config {
	home := os.Getenv("TASKTRACKER_HOME")
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = filepath.Join(h, ".tasktracker")
		} else {
			home = ".tasktracker"
		}
	}

	port, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		port = 5432 // fallback
	}

	c := &Config{
		Home:       home,
		Backend:    envOr("TASKTRACKER_BACKEND", BackendSQLite),
		SQLitePath: envOr("TASKTRACKER_SQLITE_PATH", filepath.Join(home, "tasks.db")),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      envOr("DB_HOST", "localhost"),
		DBPort:      port,
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBSSLMode:   envOr("DB_SSLMODE", "disable"),

		JWTSecret: os.Getenv("TASKTRACKER_JWT_SECRET"),

		Theme:    envOr("TASKTRACKER_THEME", "classic"),
		LogLevel: parseLevel(os.Getenv("TASKTRACKER_LOG_LEVEL")),
		LogFile:  os.Getenv("TASKTRACKER_LOG_FILE"),
	}
	return c
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" && c.DBName == "" {
			return fmt.Errorf("postgres backend needs DATABASE_URL or DB_NAME")
		}
	default:
		return fmt.Errorf("unknown backend %q (want memory, sqlite or postgres)", c.Backend)
	}
	return nil
}

// ConnString is DATABASE_URL when set, otherwise built from the DB_* parts.
func (c *Config) ConnString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
