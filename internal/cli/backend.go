package cli

import (
	"context"
	"fmt"

	"github.com/Makepad-fr/tasktracker/internal/config"
	"github.com/Makepad-fr/tasktracker/internal/store"
	"github.com/Makepad-fr/tasktracker/internal/store/memstore"
	"github.com/Makepad-fr/tasktracker/internal/store/pgstore"
	"github.com/Makepad-fr/tasktracker/internal/store/sqlitestore"
)

func nopClose() error { return nil }

// openBackend connects the configured persistence service. The returned
// close func must be called once the client is no longer used.
func openBackend(ctx context.Context, cfg *config.Config) (store.Client, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	switch cfg.Backend {
	case config.BackendMemory:
		return memstore.New(), nopClose, nil

	case config.BackendPostgres:
		db, err := pgstore.Connect(cfg.ConnString())
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		s := pgstore.New(db)
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, nil, err
		}
		return s, s.Close, nil

	default:
		s, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", cfg.SQLitePath, err)
		}
		return s, s.Close, nil
	}
}
