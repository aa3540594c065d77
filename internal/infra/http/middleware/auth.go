package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/userdeskio/api/internal/metrics"
	"github.com/userdeskio/api/pkg/apierror"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/logger"
)

// TokenVerifier validates an access token and returns its subject.
// Satisfied by app.AuthService.
type TokenVerifier interface {
	VerifyToken(token string) (shared.ID, error)
}

// PermissionChecker answers point permission questions about a user.
// Satisfied by app.AccessService.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID shared.ID, perm string) (bool, error)
	HasAnyPermission(ctx context.Context, userID shared.ID, perms ...string) (bool, error)
}

// Authenticate verifies the bearer token and stores the subject user ID in
// the request context.
func Authenticate(verifier TokenVerifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				apierror.Unauthorized("missing bearer token").WriteJSON(w)
				return
			}

			userID, err := verifier.VerifyToken(token)
			if err != nil {
				log.Debug("token rejected", "request_id", GetRequestID(r.Context()), "error", err)
				apierror.Unauthorized("invalid or expired token").WriteJSON(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the authenticated user ID from the context.
func GetUserID(ctx context.Context) (shared.ID, bool) {
	id, ok := ctx.Value(userIDKey).(shared.ID)
	return id, ok
}

// RequirePermission rejects requests whose subject does not hold perm.
// Runs after Authenticate.
func RequirePermission(checker PermissionChecker, perm string) func(http.Handler) http.Handler {
	return requireCheck(perm, func(ctx context.Context, userID shared.ID) (bool, error) {
		return checker.HasPermission(ctx, userID, perm)
	})
}

// RequireAnyPermission rejects requests whose subject holds none of perms.
func RequireAnyPermission(checker PermissionChecker, perms ...string) func(http.Handler) http.Handler {
	return requireCheck(strings.Join(perms, ","), func(ctx context.Context, userID shared.ID) (bool, error) {
		return checker.HasAnyPermission(ctx, userID, perms...)
	})
}

func requireCheck(label string, check func(context.Context, shared.ID) (bool, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				apierror.Unauthorized("authentication required").WriteJSON(w)
				return
			}

			allowed, err := check(r.Context(), userID)
			if err != nil {
				apierror.Internal(err).WriteJSON(w)
				return
			}
			if !allowed {
				metrics.PermissionChecksTotal.WithLabelValues("denied").Inc()
				apierror.Forbidden("missing permission: " + label).WriteJSON(w)
				return
			}

			metrics.PermissionChecksTotal.WithLabelValues("allowed").Inc()
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
