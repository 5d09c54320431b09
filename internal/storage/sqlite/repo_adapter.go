package sqlite

import (
	"context"

	"github.com/byluca/flight-delays-etl/internal/storage"
)

// newRepository is a test hook pointing at NewRepository by default.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

// init registers the "sqlite" backend and its DDL bootstrapper.
func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("sqlite", func(ctx context.Context, repo storage.Repository) error {
		return storage.RecreateStarSchema(ctx, repo, "sqlite")
	})
}

// wrappedRepo adapts *Repository to storage.Repository and adds Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close closes the underlying database handle.
func (w *wrappedRepo) Close() { w.closeFn() }
