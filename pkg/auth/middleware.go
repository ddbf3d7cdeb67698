package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ErrMissingToken is returned when a request carries no bearer token.
var ErrMissingToken = errors.New("missing bearer token")

type claimsKey struct{}

// ContextWithClaims attaches verified claims to ctx.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims attached by the auth middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

// authenticate verifies an Authorization header value.
func (s *JWTService) authenticate(header string) (*Claims, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	return s.ValidateToken(strings.TrimSpace(token))
}

// UnaryAuthInterceptor rejects calls without a valid bearer token in the
// "authorization" metadata, except for the methods in skipMethods.
func UnaryAuthInterceptor(jwtService *JWTService, skipMethods []string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if slices.Contains(skipMethods, info.FullMethod) {
			return handler(ctx, req)
		}

		var header string
		if values := metadata.ValueFromIncomingContext(ctx, "authorization"); len(values) > 0 {
			header = values[0]
		}
		claims, err := jwtService.authenticate(header)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return handler(ContextWithClaims(ctx, claims), req)
	}
}

// RequireRole rejects authenticated callers holding none of roles. Calls
// without claims pass through; authentication is UnaryAuthInterceptor's job.
func RequireRole(roles ...string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if claims, ok := ClaimsFromContext(ctx); ok && !claims.HasAnyRole(roles...) {
			return nil, status.Errorf(codes.PermissionDenied, "%s requires one of roles %v", info.FullMethod, roles)
		}
		return handler(ctx, req)
	}
}

// HTTPMiddleware is the HTTP counterpart of UnaryAuthInterceptor. Requests
// for skipPaths are served without a token.
func HTTPMiddleware(jwtService *JWTService, skipPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(skipPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := jwtService.authenticate(r.Header.Get("Authorization"))
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, ErrMissingToken) {
					msg = err.Error()
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="subjectivity"`)
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}
