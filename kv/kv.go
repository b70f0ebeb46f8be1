// kv/kv.go

// Package kv holds the key-value backends the mood store persists into.
// Every backend stores opaque byte values under string keys.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned by Get when the key has never been set or was deleted.
	ErrNotFound = errors.New("key not found")
	// ErrUnavailable marks failures of the storage medium itself.
	ErrUnavailable = errors.New("storage unavailable")
)

// Backend is the storage medium handle injected into the mood store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver      string
	DataDir     string
	SQLitePath  string
	RedisAddr   string
	DatabaseURL string
	// Migrate runs the embedded schema migrations before opening postgres.
	Migrate bool
	Logger  zerolog.Logger
}

// Open builds the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch strings.ToLower(opts.Driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile, "":
		return NewFile(opts.DataDir)
	case DriverSQLite:
		return NewSQLite(ctx, opts.SQLitePath)
	case DriverRedis:
		return NewRedis(ctx, opts.RedisAddr)
	case DriverPostgres:
		if opts.Migrate {
			if err := Migrate(opts.DatabaseURL, opts.Logger); err != nil {
				return nil, err
			}
		}
		return NewPostgres(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Driver)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("empty key")
	}
	return nil
}
