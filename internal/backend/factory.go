package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/ledger"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// Create implements Factory.Create
func (f *DefaultFactory) Create(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case Memory:
		return f.createMemory(), nil
	case SQLite:
		return f.createSQL(ctx, storage.DialectSQLite, cfg.SQLiteDBPath)
	case Postgres:
		return f.createSQL(ctx, storage.DialectPostgres, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func (f *DefaultFactory) createMemory() *Result {
	store := memory.New(ledger.DefaultCategories)
	f.logger.Info("Initialized memory backend", "default_categories", len(ledger.DefaultCategories))
	return &Result{
		Store: store,
		Ready: func(context.Context) error { return nil },
	}
}

func (f *DefaultFactory) createSQL(ctx context.Context, dialect storage.Dialect, dsn string) (*Result, error) {
	repo, err := storage.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s repository: %w", dialect, err)
	}

	attrs := []any{"dialect", string(dialect)}
	if dialect == storage.DialectSQLite {
		attrs = append(attrs, "db_path", dsn)
	}
	f.logger.Info("Initialized SQL backend", attrs...)

	return &Result{
		Store:   repo,
		DB:      repo.DB(),
		Ready:   repo.Ping,
		Cleanup: repo.Close,
	}, nil
}
