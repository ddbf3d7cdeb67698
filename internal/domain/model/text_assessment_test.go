package model_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlgkit/subjectivity/internal/domain/event"
	"github.com/nlgkit/subjectivity/internal/domain/model"
	"github.com/nlgkit/subjectivity/internal/domain/valueobject"
)

func TestNewTextAssessment(t *testing.T) {
	tenantID := uuid.New()

	t.Run("valid assessment", func(t *testing.T) {
		a, err := model.NewTextAssessment(tenantID, "doc-1", "The sky is blue.", "objectivity-detection-direct")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, a.ID())
		assert.Equal(t, tenantID, a.TenantID())
		assert.Equal(t, "doc-1", a.Reference())
		assert.Equal(t, 1, a.Version())
		assert.True(t, a.AssessedAt().IsZero())
	})

	t.Run("blank text rejected", func(t *testing.T) {
		_, err := model.NewTextAssessment(tenantID, "", "   \n", "m")
		assert.Error(t, err)
	})

	t.Run("oversized text rejected", func(t *testing.T) {
		_, err := model.NewTextAssessment(tenantID, "", strings.Repeat("a", model.MaxTextLength+1), "m")
		assert.Error(t, err)
	})

	t.Run("model name required", func(t *testing.T) {
		_, err := model.NewTextAssessment(tenantID, "", "text", "")
		assert.Error(t, err)
	})
}

func TestTextAssessment_Assess(t *testing.T) {
	t.Run("mixed text emits a single event", func(t *testing.T) {
		a, err := model.NewTextAssessment(uuid.New(), "", "text", "m")
		require.NoError(t, err)

		require.NoError(t, a.Assess(55, 55))
		assert.Equal(t, valueobject.LevelMixed, a.Level())
		assert.Equal(t, 2, a.Version())
		assert.False(t, a.AssessedAt().IsZero())

		events := a.DomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, event.EventTypeTextAssessed, events[0].EventType())
		assert.Equal(t, a.ID(), events[0].AggregateID())
		assert.Empty(t, a.DomainEvents())
	})

	t.Run("highly subjective text emits detection event", func(t *testing.T) {
		a, err := model.NewTextAssessment(uuid.New(), "", "text", "m")
		require.NoError(t, err)

		require.NoError(t, a.Assess(95.5, 95.5))
		assert.Equal(t, valueobject.LevelSubjective, a.Level())

		events := a.DomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, event.EventTypeHighlySubjectiveDetected, events[1].EventType())
	})

	t.Run("out of range score rejected", func(t *testing.T) {
		a, err := model.NewTextAssessment(uuid.New(), "", "text", "m")
		require.NoError(t, err)

		assert.Error(t, a.Assess(101, 50))
		assert.Error(t, a.Assess(50, -1))
		assert.Empty(t, a.DomainEvents())
	})
}

func TestTextAssessment_AssessedEvents(t *testing.T) {
	id := uuid.New()
	a, err := model.NewTextAssessmentWithID(id, uuid.New(), "doc", "text", "m")
	require.NoError(t, err)
	assert.Nil(t, a.AssessedEvents(), "unscored assessment announces nothing")

	require.NoError(t, a.Assess(92, 92))
	pending := a.DomainEvents()
	replayed := a.AssessedEvents()

	require.Len(t, replayed, 2)
	for i := range pending {
		assert.Equal(t, pending[i].EventID(), replayed[i].EventID())
		assert.Equal(t, id, replayed[i].AggregateID())
	}
	assert.Empty(t, a.DomainEvents(), "replaying leaves pending events alone")

	_, err = model.NewTextAssessmentWithID(uuid.Nil, uuid.New(), "", "text", "m")
	assert.Error(t, err)
}
