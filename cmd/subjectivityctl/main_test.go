package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlgkit/subjectivity/internal/application/dto"
	"github.com/nlgkit/subjectivity/internal/application/usecase"
	"github.com/nlgkit/subjectivity/internal/domain/service"
	"github.com/nlgkit/subjectivity/internal/infrastructure/messaging"
	"github.com/nlgkit/subjectivity/internal/infrastructure/ml"
	"github.com/nlgkit/subjectivity/internal/infrastructure/postgres"
	grpcapi "github.com/nlgkit/subjectivity/internal/presentation/grpc"
	"github.com/nlgkit/subjectivity/pkg/auth"
	"github.com/nlgkit/subjectivity/pkg/testutil"
)

func fixturePath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.sav")
	testutil.WriteFixtureModel(t, path, true)
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScoreCmd_Args(t *testing.T) {
	out, err := execute(t, "", "--model", fixturePath(t), "score", "--json", testutil.SubjectiveText)
	require.NoError(t, err)

	var resp dto.ScoreResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	testutil.AssertPercent(t, resp.Subjectivity)
	assert.Equal(t, resp.Subjectivity, resp.Objectivity)
	assert.Equal(t, "SUBJECTIVE", resp.Level)
}

func TestScoreCmd_Stdin(t *testing.T) {
	out, err := execute(t, testutil.ObjectiveText, "--model", fixturePath(t), "score")
	require.NoError(t, err)
	assert.Contains(t, out, "level=OBJECTIVE")
	assert.Contains(t, out, "subjectivity=")
}

func TestScoreCmd_Errors(t *testing.T) {
	t.Run("missing model", func(t *testing.T) {
		_, err := execute(t, "", "--model", filepath.Join(t.TempDir(), "absent.sav"), "score", "hello")
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := execute(t, "  \n", "--model", fixturePath(t), "score")
		assert.Error(t, err)
	})
}

func TestBatchCmd(t *testing.T) {
	input := testutil.SubjectiveText + "\n\n" + testutil.ObjectiveText + "\n"
	out, err := execute(t, input, "--model", fixturePath(t), "batch", "--json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var first, second dto.ScoreResponse
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "SUBJECTIVE", first.Level)
	assert.Equal(t, "OBJECTIVE", second.Level)
}

func TestInspectCmd(t *testing.T) {
	out, err := execute(t, "", "--model", fixturePath(t), "inspect", "--json")
	require.NoError(t, err)

	var info ml.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "fixture-subjectivity", info.Name)
	assert.Equal(t, ml.FormatV1, info.Format)
	assert.Positive(t, info.VocabularySize)
}

func TestTokenCmd(t *testing.T) {
	out, err := execute(t, "", "token",
		"--secret", "ctl-secret",
		"--tenant", testutil.TestTenantID.String(),
		"--role", auth.RoleReader,
	)
	require.NoError(t, err)

	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: "ctl-secret", Issuer: "subjectivity"})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, testutil.TestTenantID, claims.TenantID)
	assert.True(t, claims.HasRole(auth.RoleReader))

	_, err = execute(t, "", "token", "--secret", "s", "--tenant", "acme")
	assert.Error(t, err)
}

func TestCertsCmd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tls")
	out, err := execute(t, "", "certs", "--out", dir, "--host", "subjectivity.local")
	require.NoError(t, err)
	assert.Contains(t, out, dir)

	for _, name := range []string{"ca.pem", "ca-key.pem", "server.pem", "server-key.pem"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func startService(t *testing.T) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	assessor := service.NewAssessor(service.AssessorConfig{ModelPath: fixturePath(t)}, ml.NewLoader(logger))
	require.NoError(t, assessor.Load(context.Background()))
	repo := postgres.NewMemoryRepository()
	assess := usecase.NewAssessText(repo, messaging.NewLogPublisher(logger), assessor, nil)

	handler := grpcapi.NewSubjectivityServiceHandler(
		usecase.NewScoreText(assessor, nil),
		assess,
		usecase.NewAssessBatch(assess, usecase.BatchConfig{}),
		usecase.NewGetAssessment(repo),
		usecase.NewListAssessments(repo),
		logger,
	)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := grpcapi.NewServer(handler, grpcapi.ServerOptions{}, logger)
	srv.SetServing(true)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)
	return lis.Addr().String()
}

func TestRemoteCmd(t *testing.T) {
	addr := startService(t)
	tenant := testutil.TestTenantID.String()

	out, err := execute(t, "", "remote", "--addr", addr, "score", testutil.SubjectiveText)
	require.NoError(t, err)
	var scored grpcapi.ScoreResponse
	require.NoError(t, json.Unmarshal([]byte(out), &scored))
	assert.Equal(t, "SUBJECTIVE", scored.Level)

	out, err = execute(t, testutil.ObjectiveText, "remote", "--addr", addr, "--tenant", tenant, "assess", "--reference", "cli-1")
	require.NoError(t, err)
	var created grpcapi.AssessTextResponse
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.NotNil(t, created.Assessment)
	assert.Equal(t, "cli-1", created.Assessment.Reference)

	out, err = execute(t, "", "remote", "--addr", addr, "--tenant", tenant, "get", created.Assessment.ID)
	require.NoError(t, err)
	var got grpcapi.GetAssessmentResponse
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, created.Assessment.ID, got.Assessment.ID)

	out, err = execute(t, "", "remote", "--addr", addr, "--tenant", tenant, "list", "--limit", "5")
	require.NoError(t, err)
	var listed grpcapi.ListAssessmentsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Len(t, listed.Assessments, 1)

	_, err = execute(t, "", "remote", "--addr", addr, "--tenant", tenant, "get", "00000000-0000-0000-0000-0000000000ff")
	assert.Error(t, err)
}
