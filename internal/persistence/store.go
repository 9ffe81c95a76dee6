package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/code-arena/internal/config"
	"github.com/spec-kit/code-arena/internal/repository"
	"github.com/spec-kit/code-arena/internal/repository/memory"
	"github.com/spec-kit/code-arena/internal/repository/sqlite"
)

// Store is the record store selected by configuration.
type Store struct {
	Driver   string
	Users    repository.UserRepository
	Problems repository.ProblemRepository

	ping  func(context.Context) error
	close func()
}

// OpenStore opens the configured backend. For postgres, pg must hold a live pool.
func OpenStore(ctx context.Context, cfg config.StoreConfig, pg *Postgres, logger *zap.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.StoreDriverPostgres:
		pool := pg.PoolHandle()
		if pool == nil {
			return nil, fmt.Errorf("postgres store selected without a connection")
		}
		logger.Info("using postgres record store")
		return &Store{
			Driver:   cfg.Driver,
			Users:    repository.NewUserRepository(pool),
			Problems: repository.NewProblemRepository(pool),
			ping:     pg.Ping,
			close:    func() {},
		}, nil
	case config.StoreDriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping sqlite store: %w", err)
		}
		logger.Info("using sqlite record store", zap.String("path", cfg.SQLitePath))
		return &Store{
			Driver:   cfg.Driver,
			Users:    db.Users(),
			Problems: db.Problems(),
			ping:     db.Ping,
			close:    func() { _ = db.Close() },
		}, nil
	default:
		logger.Warn("using in-memory record store; data is lost on restart")
		mem := memory.NewStore(logger)
		return &Store{
			Driver:   config.StoreDriverMemory,
			Users:    mem.Users(),
			Problems: mem.Problems(),
			ping:     func(context.Context) error { return nil },
			close:    func() {},
		}, nil
	}
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.ping == nil {
		return fmt.Errorf("record store not configured")
	}
	return s.ping(ctx)
}

// Close releases backend resources. The postgres pool is owned by its Postgres wrapper.
func (s *Store) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}
