package db

import (
	"fmt"
	"os"
	"strconv"
)

const (
	defaultMaxOpenConns = 20
	defaultMaxIdleConns = 10
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns int
	MaxIdleConns int
}

func LoadPostgresConfig() (PostgresConfig, error) {
	host := os.Getenv("DB_HOST")
	if host == "" {
		return PostgresConfig{}, fmt.Errorf("DB_HOST is not set")
	}

	port := 5432
	if p := os.Getenv("DB_PORT"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return PostgresConfig{}, fmt.Errorf("invalid DB_PORT %q: %w", p, err)
		}
		port = n
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	maxOpen, err := intEnv("DB_MAX_OPEN_CONNS", defaultMaxOpenConns)
	if err != nil {
		return PostgresConfig{}, err
	}
	maxIdle, err := intEnv("DB_MAX_IDLE_CONNS", defaultMaxIdleConns)
	if err != nil {
		return PostgresConfig{}, err
	}

	return PostgresConfig{
		Host:         host,
		Port:         port,
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		DBName:       os.Getenv("DB_NAME"),
		SSLMode:      sslMode,
		MaxOpenConns: maxOpen,
		MaxIdleConns: maxIdle,
	}, nil
}

// DSN renders the lib/pq connection URL.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
