package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "text", Output: io.Discard})
}

type verifierFake struct {
	subject shared.ID
	err     error
}

func (v verifierFake) VerifyToken(string) (shared.ID, error) {
	return v.subject, v.err
}

type checkerFake struct {
	allowed bool
	err     error
}

func (c checkerFake) HasPermission(context.Context, shared.ID, string) (bool, error) {
	return c.allowed, c.err
}

func (c checkerFake) HasAnyPermission(context.Context, shared.ID, ...string) (bool, error) {
	return c.allowed, c.err
}

func okHandler(captured *shared.ID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			if id, ok := GetUserID(r.Context()); ok {
				*captured = id
			}
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateMissingToken(t *testing.T) {
	mw := Authenticate(verifierFake{}, testLogger())
	rec := httptest.NewRecorder()

	mw(okHandler(nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectedToken(t *testing.T) {
	mw := Authenticate(verifierFake{err: errors.New("expired")}, testLogger())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer whatever")

	mw(okHandler(nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatePutsSubjectInContext(t *testing.T) {
	subject := shared.NewID()
	mw := Authenticate(verifierFake{subject: subject}, testLogger())

	var captured shared.ID
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")

	mw(okHandler(&captured)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, captured.Equal(subject))
}

func TestRequirePermission(t *testing.T) {
	subject := shared.NewID()
	auth := Authenticate(verifierFake{subject: subject}, testLogger())

	run := func(allowed bool) int {
		guard := RequirePermission(checkerFake{allowed: allowed}, "users:read")
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		auth(guard(okHandler(nil))).ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run(true))
	assert.Equal(t, http.StatusForbidden, run(false))
}

func TestRequirePermissionWithoutAuthentication(t *testing.T) {
	guard := RequirePermission(checkerFake{allowed: true}, "users:read")
	rec := httptest.NewRecorder()

	guard(okHandler(nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
