package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/byluca/flight-delays-etl/internal/schema"
)

// DDLBootstrapper drops and recreates the target star schema via repo.Exec.
// Backends register their implementation for a given kind at init time; each
// implementation renders the schema in its own dialect.
type DDLBootstrapper func(ctx context.Context, repo Repository) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for a backend kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureStarSchema locates the bootstrapper for kind and invokes it. Callers
// stay backend-agnostic; they pass the already-open Repository.
func EnsureStarSchema(ctx context.Context, kind string, repo Repository) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for kind=%q", kind)
	}
	return fn(ctx, repo)
}

// RecreateStarSchema is the shared bootstrapper body: drop the four tables in
// reverse dependency order (fact first), then create them in dependency
// order. Backends register a closure over their dialect name.
func RecreateStarSchema(ctx context.Context, repo Repository, dialect string) error {
	tables := schema.StarTables()

	for i := len(tables) - 1; i >= 0; i-- {
		drop, err := schema.BuildDropTableSQL(dialect, tables[i].Name)
		if err != nil {
			return fmt.Errorf("render drop %s: %w", tables[i].Name, err)
		}
		if err := repo.Exec(ctx, drop); err != nil {
			return fmt.Errorf("drop %s: %w", tables[i].Name, err)
		}
	}
	for _, t := range tables {
		create, err := schema.BuildCreateTableSQL(dialect, t)
		if err != nil {
			return fmt.Errorf("render create %s: %w", t.Name, err)
		}
		if err := repo.Exec(ctx, create); err != nil {
			return fmt.Errorf("create %s: %w", t.Name, err)
		}
	}
	return nil
}
