//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlgkit/subjectivity/internal/domain/valueobject"
	"github.com/nlgkit/subjectivity/internal/infrastructure/postgres"
	"github.com/nlgkit/subjectivity/pkg/testutil"
)

func TestAssessmentRepository_Integration(t *testing.T) {
	ctx := context.Background()
	db := testutil.StartPostgres(ctx, t)
	db.Migrate(t, "../../../migrations")

	repo := postgres.NewAssessmentRepository(db.Pool)

	a := newAssessed(t, testutil.TestTenantID, testutil.SubjectiveText, 91.237)
	require.NoError(t, repo.Save(ctx, a))

	t.Run("round trip", func(t *testing.T) {
		got, err := repo.FindByID(ctx, testutil.TestTenantID, a.ID())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, a.Text(), got.Text())
		assert.InDelta(t, 91.24, got.Subjectivity().Float64(), 1e-9)
		assert.Equal(t, valueobject.LevelSubjective, got.Level())
		assert.Equal(t, a.Version(), got.Version())
		assert.False(t, got.AssessedAt().IsZero())
	})

	t.Run("missing returns nil", func(t *testing.T) {
		got, err := repo.FindByID(ctx, testutil.TestTenantID, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("stale save rejected", func(t *testing.T) {
		assert.ErrorIs(t, repo.Save(ctx, a), postgres.ErrStaleAssessment)
	})

	t.Run("list by tenant", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, newAssessed(t, testutil.TestTenantID, testutil.ObjectiveText, 4)))
		require.NoError(t, repo.Save(ctx, newAssessed(t, testutil.TestTenantID2, "elsewhere", 50)))

		list, err := repo.FindByTenant(ctx, testutil.TestTenantID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}
