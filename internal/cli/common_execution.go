package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/openfootprint/internal/cache"
	"github.com/rshade/openfootprint/internal/catalog"
	"github.com/rshade/openfootprint/internal/config"
	"github.com/rshade/openfootprint/internal/logging"
	"github.com/rshade/openfootprint/internal/store"
)

// session holds what a record command needs: the effective config, the
// opened store and the catalog service over it.
type session struct {
	cfg   *config.Config
	store *store.SQLite
	svc   *catalog.Service
	cache *cache.FileStore
}

// Close releases the database.
func (s *session) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

// effectiveConfig returns a copy of the global config with the --db and
// --mock-delay flags applied. The global config is left untouched.
func effectiveConfig(cmd *cobra.Command) *config.Config {
	cfg := *config.GetGlobalConfig()
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Storage.Path = db
	}
	if cmd.Flags().Changed("mock-delay") {
		if delay, err := cmd.Flags().GetDuration("mock-delay"); err == nil {
			cfg.Storage.MockDelay = delay
		}
	}
	return &cfg
}

// openSession opens the configured database and builds the catalog service.
// With seed set, the fixture records are loaded when the storage config asks
// for it.
func openSession(cmd *cobra.Command, seed bool) (*session, error) {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	cfg := effectiveConfig(cmd)

	st, err := store.OpenSQLite(ctx, cfg.Storage.Path, store.WithLogger(logging.ComponentLogger(*log, "store")))
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.Storage.Path, err)
	}
	s := &session{cfg: cfg, store: st}

	if seed && cfg.Storage.Seed {
		if _, err = seedStore(ctx, st); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	opts := []catalog.Option{
		catalog.WithDateLayout(cfg.Display.DateLayout),
		catalog.WithLogger(logging.ComponentLogger(*log, "catalog")),
	}
	docs, cacheErr := openCache(cfg)
	switch {
	case errors.Is(cacheErr, cache.ErrCacheDisabled):
		log.Debug().Msg("document cache disabled")
	case cacheErr != nil:
		log.Warn().Err(cacheErr).Msg("document cache unavailable, documents are rendered on every download")
	default:
		s.cache = docs
		opts = append(opts, catalog.WithDocumentCache(docs))
	}

	var records store.Store = st
	if cfg.Storage.MockDelay > 0 {
		records = store.NewDelayed(st, cfg.Storage.MockDelay)
	}
	s.svc = catalog.New(records, opts...)
	log.Debug().Str("db", cfg.Storage.Path).Msg("session opened")
	return s, nil
}

// openCache opens the file cache named by cfg. A disabled cache is reported
// as cache.ErrCacheDisabled so callers can skip it.
func openCache(cfg *config.Config) (*cache.FileStore, error) {
	if !cfg.Cache.Enabled {
		return nil, cache.ErrCacheDisabled
	}
	return cache.NewFileStore(cfg.Cache.Directory, true, cfg.Cache.TTLSeconds)
}

// seedStore loads the fixtures, logging how many were new.
func seedStore(ctx context.Context, st store.Store) (store.SeedResult, error) {
	res, err := store.Seed(ctx, st)
	if err != nil {
		return res, fmt.Errorf("seeding database: %w", err)
	}
	logging.FromContext(ctx).Debug().Int("created", res.Created).Int("skipped", res.Skipped).Msg("fixtures loaded")
	return res, nil
}

// withSession opens a session for the duration of fn.
func withSession(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(s)
}
