package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/code-arena/internal/config"
	"github.com/spec-kit/code-arena/internal/domain"
)

func TestOpenStoreMemory(t *testing.T) {
	store, err := OpenStore(context.Background(), config.StoreConfig{Driver: config.StoreDriverMemory}, nil, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, config.StoreDriverMemory, store.Driver)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpenStoreSQLite(t *testing.T) {
	cfg := config.StoreConfig{Driver: config.StoreDriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "arena.db")}
	store, err := OpenStore(context.Background(), cfg, nil, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	user := domain.NewUser("ana", "ana@example.com", "h", "", "", "")
	require.NoError(t, store.Users.Create(context.Background(), user))
	got, err := store.Users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Username)
}

func TestOpenStorePostgresNeedsPool(t *testing.T) {
	_, err := OpenStore(context.Background(), config.StoreConfig{Driver: config.StoreDriverPostgres}, &Postgres{}, zap.NewNop())
	assert.Error(t, err)
}

func TestRedisPingWithoutClient(t *testing.T) {
	var r *Redis
	assert.Error(t, r.Ping(context.Background()))
}

func TestMigrationFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_more.sql", "001_init.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}

	names, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_more.sql"}, names)

	_, err = migrationFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
