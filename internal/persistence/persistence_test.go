package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/config"
)

func TestPostgresWithoutDSN(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	require.False(t, pg.Enabled())
	require.Nil(t, pg.PoolHandle())
	require.Error(t, pg.Ping(context.Background()))
	pg.Close()

	var nilPG *Postgres
	require.False(t, nilPG.Enabled())
}

func TestRedisNotConfigured(t *testing.T) {
	var r *Redis
	require.Error(t, r.Ping(context.Background()))
	r.Close()
}

func TestRunMigrationsSkipsWithoutDSN(t *testing.T) {
	require.NoError(t, RunMigrations("", zap.NewNop()))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 4)
}
