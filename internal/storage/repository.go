// Package storage contains the storage-agnostic contracts: the Repository
// interface every backend implements, a factory keyed by backend kind, the
// DDL bootstrap registry, and the chunked batch loader.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config carries everything a backend needs to open a Repository.
type Config struct {
	// Kind selects the backend: "mysql", "postgres", "sqlite" or "mssql".
	Kind string

	// DSN is the backend-specific connection string.
	DSN string
}

// Repository is a connection to the target store. Implementations are safe
// for sequential use by a single goroutine; the pipeline never shares one
// across goroutines.
type Repository interface {
	// Exec runs a statement (typically DDL) and discards any result.
	Exec(ctx context.Context, sql string) error

	// CopyInto bulk-inserts rows into table. Row values are aligned with
	// columns; nil values insert SQL NULL. It returns the number of rows the
	// store reported as inserted.
	CopyInto(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Query runs a read-only statement and returns column names plus all
	// result rows.
	Query(ctx context.Context, sql string) (columns []string, rows [][]any, err error)

	// Close releases the underlying connection or pool.
	Close()
}

// Factory opens a Repository for one backend kind. Backends register their
// factory from init().
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for a backend kind. It is
// called from backend packages' init() functions.
func Register(kind string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind. The backend must have been linked in,
// typically via a blank import of storage/all.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	fn, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no storage backend registered for kind=%q (known: %v)", cfg.Kind, Kinds())
	}
	return fn(ctx, cfg)
}

// Kinds lists the registered backend kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
