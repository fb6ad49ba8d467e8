package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "postgres", DatabaseURL: "postgres://localhost/fin"})
	require.NoError(t, err)
	assert.Equal(t, Postgres, cfg.Type)
	assert.Equal(t, "postgres://localhost/fin", cfg.DatabaseURL)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Type: Memory}.Validate())
	assert.Error(t, Config{Type: SQLite}.Validate())
	assert.Error(t, Config{Type: Postgres}.Validate())
	assert.Error(t, Config{Type: "mongo"}.Validate())
	assert.Len(t, Types(), 3)
}

func TestCreateMemory(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).Create(ctx, Config{Type: Memory})
	require.NoError(t, err)
	assert.Nil(t, res.DB)
	assert.NoError(t, res.Ready(ctx))
	assert.NoError(t, res.Close())

	cats, err := res.Store.ListCategories(ctx, "alice", "")
	require.NoError(t, err)
	assert.Len(t, cats, len(ledger.DefaultCategories))
}

func TestCreateSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "fintrack.db")

	res, err := NewFactory(nil).Create(ctx, Config{Type: SQLite, SQLiteDBPath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Close() })

	require.NotNil(t, res.DB)
	assert.NoError(t, res.Ready(ctx))

	acc, err := res.Store.CreateAccount(ctx, core.BankAccount{OwnerID: "alice", Name: "Main", Balance: core.MustMoney("10")})
	require.NoError(t, err)
	assert.NotEmpty(t, acc.ID)
}
