package testutil

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pgutil "github.com/nlgkit/subjectivity/pkg/postgres"
)

const postgresImage = "postgres:16-alpine"

// Postgres is a throwaway database for integration tests. The container and
// pool are released through t.Cleanup.
type Postgres struct {
	DSN  string
	Pool *pgxpool.Pool
}

// StartPostgres runs a PostgreSQL container and opens a pool against it.
func StartPostgres(ctx context.Context, t *testing.T) *Postgres {
	t.Helper()

	ctr, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("subjectivity"),
		postgres.WithUsername("subjectivity"),
		postgres.WithPassword("subjectivity"),
		testcontainers.WithWaitStrategy(
			// postgres restarts once after initdb, so the ready line shows up twice.
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(45*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	terminateOnCleanup(t, "postgres", ctr)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "postgres connection string")

	pool, err := pgutil.NewPool(ctx, pgutil.Config{URL: dsn, ApplicationName: t.Name()})
	require.NoError(t, err, "open pool")
	t.Cleanup(pool.Close)

	return &Postgres{DSN: dsn, Pool: pool}
}

// Migrate applies the migrations in dir, resolved relative to the test's
// working directory.
func (p *Postgres) Migrate(t *testing.T, dir string) {
	t.Helper()

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	require.NoError(t, pgutil.Migrate(p.DSN, "file://"+abs, slog.Default()), "migrate %s", abs)
}

// terminateOnCleanup stops ctr after the test. A failure to terminate is
// logged only; the container reaper collects leftovers.
func terminateOnCleanup(t *testing.T, name string, ctr testcontainers.Container) {
	t.Helper()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := ctr.Terminate(ctx); err != nil {
			t.Logf("terminate %s container: %v", name, err)
		}
	})
}
