package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-clinic-scheduling/internal/platform/logger"
	"pet-clinic-scheduling/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubVerifier struct {
	claims auth.Claims
	err    error
}

func (v stubVerifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if token != "good" {
		return auth.Claims{}, errors.New("bad token")
	}
	return v.claims, v.err
}

func captureClaims(got *auth.Claims, found *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *found = GetClaims(r.Context())
	})
}

func TestAuthContext_DevHeaders(t *testing.T) {
	var (
		got   auth.Claims
		found bool
	)
	h := AuthContext(nil)(captureClaims(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u1")
	req.Header.Set("X-Debug-User-Role", "STAFF")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, found)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, auth.RoleStaff, got.Role)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, found)
}

func TestAuthContext_Verifier(t *testing.T) {
	var (
		got   auth.Claims
		found bool
	)
	v := stubVerifier{claims: auth.Claims{UserID: "u2", Role: auth.RoleOwner}}
	h := AuthContext(v)(captureClaims(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, found)
	assert.Equal(t, "u2", got.UserID)

	// con verifier los headers de debug no valen
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "intruder")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, found)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, found)
}

func TestRequireStaff(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := RequireStaff(w, r); ok {
			w.WriteHeader(http.StatusNoContent)
		}
	})

	cases := []struct {
		claims *auth.Claims
		want   int
	}{
		{nil, http.StatusUnauthorized},
		{&auth.Claims{UserID: "o", Role: auth.RoleOwner}, http.StatusForbidden},
		{&auth.Claims{UserID: "s", Role: auth.RoleStaff}, http.StatusNoContent},
		{&auth.Claims{UserID: "a", Role: auth.RoleAdmin}, http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.claims != nil {
			req = req.WithContext(WithClaims(req.Context(), *tc.claims))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code)
	}
}

func TestRequestLoggerAndRecover(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})
	h := AuthContext(nil)(RequestLogger(log)(Recover(log)(panicky)))

	req := httptest.NewRequest(http.MethodGet, "/pets", nil)
	req.Header.Set("X-Debug-User-ID", "u1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	panics := logs.FilterMessage("panic recovered").All()
	require.Len(t, panics, 1)
	assert.Equal(t, "kaboom", panics[0].ContextMap()["panic"])

	requests := logs.FilterMessage("request").All()
	require.Len(t, requests, 1)
	assert.Equal(t, zapcore.ErrorLevel, requests[0].Level)
	fields := requests[0].ContextMap()
	assert.Equal(t, "u1", fields["user_id"])
	assert.Equal(t, "/pets", fields["path"])
	assert.EqualValues(t, http.StatusInternalServerError, fields["status"])
}
