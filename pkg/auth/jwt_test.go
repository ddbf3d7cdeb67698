package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		Issuer:     "subjectivity-test",
		Expiration: 15 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(t)
	tenantID := uuid.New()

	token, err := svc.GenerateToken("batch-job", tenantID, []string{RoleScorer})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, "batch-job", claims.Subject)
	assert.True(t, claims.HasRole(RoleScorer))
	assert.False(t, claims.HasRole(RoleAdmin))
}

func TestValidateToken_Rejections(t *testing.T) {
	svc := newTestJWTService(t)

	t.Run("expired", func(t *testing.T) {
		expired := newTestJWTService(t)
		expired.ttl = -time.Hour
		token, err := expired.GenerateToken("s", uuid.New(), nil)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewJWTService(JWTConfig{Secret: "another-secret", Issuer: "subjectivity-test"})
		require.NoError(t, err)
		token, err := other.GenerateToken("s", uuid.New(), nil)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewJWTService(JWTConfig{Secret: "test-secret-key-for-unit-tests", Issuer: "elsewhere"})
		require.NoError(t, err)
		token, err := other.GenerateToken("s", uuid.New(), nil)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestRSAModes(t *testing.T) {
	privPEM, pubPEM, err := GenerateKeyPair()
	require.NoError(t, err)

	issuer, err := NewJWTService(JWTConfig{PrivateKeyPEM: string(privPEM), Issuer: "idp"})
	require.NoError(t, err)
	validator, err := NewJWTService(JWTConfig{PublicKeyPEM: string(pubPEM), Issuer: "idp"})
	require.NoError(t, err)

	token, err := issuer.GenerateToken("svc", uuid.New(), []string{RoleReader})
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.HasRole(RoleReader))

	_, err = validator.GenerateToken("svc", uuid.New(), nil)
	assert.ErrorIs(t, err, ErrNoSigningKey)

	hmac := newTestJWTService(t)
	hmacToken, err := hmac.GenerateToken("svc", uuid.New(), nil)
	require.NoError(t, err)
	_, err = validator.ValidateToken(hmacToken)
	assert.Error(t, err, "HS256 token must not validate against an RSA key")
}

func TestNewJWTService_RequiresKey(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	assert.Error(t, err)
}

func TestUnaryAuthInterceptor(t *testing.T) {
	svc := newTestJWTService(t)
	interceptor := UnaryAuthInterceptor(svc, []string{"/grpc.health.v1.Health/Check"})

	var gotClaims *Claims
	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		gotClaims, _ = ClaimsFromContext(ctx)
		return "ok", nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/subjectivity.v1.SubjectivityService/Score"}

	t.Run("missing metadata", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, info, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := svc.GenerateToken("svc", uuid.New(), nil)
		require.NoError(t, err)
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))

		resp, err := interceptor(ctx, nil, info, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
		require.NotNil(t, gotClaims)
		assert.Equal(t, "svc", gotClaims.Subject)
	})

	t.Run("skipped method", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
		assert.NoError(t, err)
	})
}

func TestRequireRole(t *testing.T) {
	interceptor := RequireRole(RoleScorer, RoleAdmin)
	handler := func(context.Context, interface{}) (interface{}, error) { return "ok", nil }
	info := &grpc.UnaryServerInfo{FullMethod: "/x"}

	ctx := ContextWithClaims(context.Background(), &Claims{Roles: []string{RoleReader}})
	_, err := interceptor(ctx, nil, info, handler)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	ctx = ContextWithClaims(context.Background(), &Claims{Roles: []string{RoleAdmin}})
	_, err = interceptor(ctx, nil, info, handler)
	assert.NoError(t, err)
}

func TestHTTPMiddleware(t *testing.T) {
	svc := newTestJWTService(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); ok {
			w.Header().Set("X-Authenticated", "yes")
		}
		w.WriteHeader(http.StatusOK)
	})
	h := HTTPMiddleware(svc, []string{"/healthz"})(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/score", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	token, err := svc.GenerateToken("svc", uuid.New(), nil)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/score", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "yes", rec.Header().Get("X-Authenticated"))
}

func TestAuthenticate_HeaderForms(t *testing.T) {
	svc := newTestJWTService(t)
	token, err := svc.GenerateToken("svc", uuid.New(), []string{RoleReader})
	require.NoError(t, err)

	for _, header := range []string{"Bearer " + token, "bearer " + token, "  Bearer   " + token + " "} {
		claims, err := svc.authenticate(header)
		require.NoError(t, err, header)
		assert.True(t, claims.HasAnyRole(RoleAdmin, RoleReader))
	}

	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic " + token, token} {
		_, err := svc.authenticate(header)
		assert.ErrorIs(t, err, ErrMissingToken, header)
	}
}
