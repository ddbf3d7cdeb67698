package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics_RecordsAssessments(t *testing.T) {
	provider, handler, err := InitMetrics(MetricsConfig{ServiceName: "subjectivity-service"})
	require.NoError(t, err)
	defer provider.Shutdown(context.Background()) //nolint:errcheck

	m, err := NewAssessmentMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordAssessment(ctx, "score", 73, 5*time.Millisecond, nil)
	m.RecordAssessment(ctx, "score", 0, time.Millisecond, errors.New("boom"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "subjectivity_service_assessments_total")
	assert.Contains(t, text, `outcome="error"`)
	assert.Contains(t, text, "subjectivity_service_subjectivity_score_bucket")
}

func TestInitMetrics_Independent(t *testing.T) {
	for i := 0; i < 2; i++ {
		provider, _, err := InitMetrics(MetricsConfig{ServiceName: "svc"})
		require.NoError(t, err)
		require.NoError(t, provider.Shutdown(context.Background()))
	}
}

func TestInitTracer_RequiresEndpoint(t *testing.T) {
	_, err := InitTracer(context.Background(), TracingConfig{ServiceName: "svc"})
	assert.Error(t, err)
}
