package grpc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nlgkit/subjectivity/internal/application/usecase"
	"github.com/nlgkit/subjectivity/internal/domain/service"
	"github.com/nlgkit/subjectivity/internal/infrastructure/messaging"
	"github.com/nlgkit/subjectivity/internal/infrastructure/ml"
	"github.com/nlgkit/subjectivity/internal/infrastructure/postgres"
	"github.com/nlgkit/subjectivity/pkg/auth"
	"github.com/nlgkit/subjectivity/pkg/testutil"
)

// --- Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func buildTestHandler(t *testing.T) *SubjectivityServiceHandler {
	t.Helper()

	path := filepath.Join(t.TempDir(), service.DefaultModelPath)
	testutil.WriteFixtureModel(t, path, true)

	logger := testLogger()
	assessor := service.NewAssessor(service.AssessorConfig{ModelPath: path}, ml.NewLoader(logger))
	require.NoError(t, assessor.Load(context.Background()))

	repo := postgres.NewMemoryRepository()
	publisher := messaging.NewLogPublisher(logger)
	assess := usecase.NewAssessText(repo, publisher, assessor, nil)

	return NewSubjectivityServiceHandler(
		usecase.NewScoreText(assessor, nil),
		assess,
		usecase.NewAssessBatch(assess, usecase.BatchConfig{MaxBatchSize: 3}),
		usecase.NewGetAssessment(repo),
		usecase.NewListAssessments(repo),
		logger,
	)
}

func startBufServer(t *testing.T, opts ServerOptions) *bufconn.Listener {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(buildTestHandler(t), opts, testLogger())
	srv.SetServing(true)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)
	return lis
}

func dialBuf(t *testing.T, lis *bufconn.Listener, token string) *Client {
	t.Helper()

	c, err := NewClient("passthrough:///bufnet", ClientOptions{
		Token: token,
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// --- Tests ---

func TestHandler_ScoreIsSymmetric(t *testing.T) {
	h := buildTestHandler(t)

	resp, err := h.Score(context.Background(), &ScoreRequest{Text: testutil.SubjectiveText})
	require.NoError(t, err)
	testutil.AssertPercent(t, resp.Subjectivity)
	assert.Equal(t, resp.Subjectivity, resp.Objectivity)
	assert.Equal(t, "SUBJECTIVE", resp.Level)
	assert.Equal(t, "fixture-subjectivity", resp.ModelName)

	objective, err := h.Score(context.Background(), &ScoreRequest{Text: testutil.ObjectiveText})
	require.NoError(t, err)
	assert.Less(t, objective.Subjectivity, resp.Subjectivity)
}

func TestHandler_Validation(t *testing.T) {
	h := buildTestHandler(t)
	ctx := context.Background()

	_, err := h.Score(ctx, &ScoreRequest{Text: "  "})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.AssessText(ctx, &AssessTextRequest{TenantID: "not-a-uuid", Text: "x"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.GetAssessment(ctx, &GetAssessmentRequest{ID: "nope"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.GetAssessment(ctx, &GetAssessmentRequest{ID: uuid.NewString()})
	assert.Equal(t, codes.NotFound, status.Code(err))

	items := make([]BatchItemMsg, 4)
	for i := range items {
		items[i] = BatchItemMsg{Text: fmt.Sprintf("text %d", i)}
	}
	_, err = h.AssessBatch(ctx, &AssessBatchRequest{Items: items})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHandler_AssessAndFetch(t *testing.T) {
	h := buildTestHandler(t)
	tenant := testutil.TestTenantID
	ctx := auth.ContextWithClaims(context.Background(), &auth.Claims{TenantID: tenant, Roles: []string{auth.RoleScorer}})

	created, err := h.AssessText(ctx, &AssessTextRequest{Reference: "r-1", Text: testutil.SubjectiveText})
	require.NoError(t, err)
	assert.Equal(t, tenant.String(), created.Assessment.TenantID)
	assert.NotEmpty(t, created.Assessment.AssessedAt)

	got, err := h.GetAssessment(ctx, &GetAssessmentRequest{ID: created.Assessment.ID})
	require.NoError(t, err)
	assert.Equal(t, created.Assessment.Subjectivity, got.Assessment.Subjectivity)

	other := auth.ContextWithClaims(context.Background(), &auth.Claims{TenantID: testutil.TestTenantID2})
	_, err = h.GetAssessment(other, &GetAssessmentRequest{ID: created.Assessment.ID})
	assert.Equal(t, codes.NotFound, status.Code(err), "claims tenant wins over request")

	batch, err := h.AssessBatch(ctx, &AssessBatchRequest{Items: []BatchItemMsg{
		{Reference: "a", Text: testutil.ObjectiveText},
		{Reference: "b", Text: testutil.SubjectiveText},
	}})
	require.NoError(t, err)
	require.Len(t, batch.Assessments, 2)
	assert.Equal(t, "a", batch.Assessments[0].Reference)
	assert.Equal(t, "b", batch.Assessments[1].Reference)

	list, err := h.ListAssessments(ctx, &ListAssessmentsRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Assessments, 3)
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{fmt.Errorf("wrap: %w", usecase.ErrEmptyText), codes.InvalidArgument},
		{usecase.ErrBatchTooLarge, codes.InvalidArgument},
		{fmt.Errorf("x: %w", usecase.ErrAssessmentNotFound), codes.NotFound},
		{fmt.Errorf("load: %w", fs.ErrNotExist), codes.Unavailable},
		{fmt.Errorf("load: %w", ml.ErrIncompatibleModel), codes.Unavailable},
		{context.Canceled, codes.Canceled},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, StatusCode(tt.err))
		})
	}
}

func TestServer_JSONOverWire(t *testing.T) {
	client := dialBuf(t, startBufServer(t, ServerOptions{}), "")
	ctx := context.Background()

	resp, err := client.Score(ctx, &ScoreRequest{Text: testutil.SubjectiveText})
	require.NoError(t, err)
	assert.Equal(t, resp.Subjectivity, resp.Objectivity)

	created, err := client.AssessText(ctx, &AssessTextRequest{TenantID: testutil.TestTenantID.String(), Reference: "wire", Text: testutil.ObjectiveText})
	require.NoError(t, err)
	got, err := client.GetAssessment(ctx, &GetAssessmentRequest{TenantID: testutil.TestTenantID.String(), ID: created.Assessment.ID})
	require.NoError(t, err)
	assert.Equal(t, "wire", got.Assessment.Reference)

	_, err = client.AssessBatch(ctx, &AssessBatchRequest{Items: make([]BatchItemMsg, 4)})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	hc, err := healthpb.NewHealthClient(client.Conn()).Check(ctx, &healthpb.HealthCheckRequest{Service: HealthServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hc.Status)
}

func TestServer_Authentication(t *testing.T) {
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "grpc-test-secret", Issuer: "test"})
	require.NoError(t, err)
	lis := startBufServer(t, ServerOptions{JWT: jwtSvc})
	ctx := context.Background()

	_, err = dialBuf(t, lis, "").Score(ctx, &ScoreRequest{Text: "x y"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	readerToken, err := jwtSvc.GenerateToken("dashboard", testutil.TestTenantID, []string{auth.RoleReader})
	require.NoError(t, err)
	_, err = dialBuf(t, lis, readerToken).Score(ctx, &ScoreRequest{Text: testutil.SubjectiveText})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	scorerToken, err := jwtSvc.GenerateToken("pipeline", testutil.TestTenantID, []string{auth.RoleScorer})
	require.NoError(t, err)
	scorer := dialBuf(t, lis, scorerToken)
	_, err = scorer.Score(ctx, &ScoreRequest{Text: testutil.SubjectiveText})
	require.NoError(t, err)

	unauthenticated := dialBuf(t, lis, "")
	_, err = healthpb.NewHealthClient(unauthenticated.Conn()).Check(ctx, &healthpb.HealthCheckRequest{Service: HealthServiceName})
	assert.NoError(t, err, "health checks skip authentication")
}
