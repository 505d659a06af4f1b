package handler

import (
	"net/http"
	"net/http/httptest"
	"nutritrack-api/model"
	"nutritrack-api/service"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens(t *testing.T) *service.TokenService {
	t.Helper()
	return service.NewTokenServiceWith("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func accessTokenFor(t *testing.T, tokens *service.TokenService, role model.Role) string {
	t.Helper()
	token, err := tokens.IssueAccessToken(&model.User{ID: 1, Email: "a@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func TestRequireAuth_RoleGating(t *testing.T) {
	tokens := testTokens(t)

	// Every (role, requiredRoles) pair: the guard admits iff the role is in
	// the set, or the set is empty.
	cases := []struct {
		name     string
		role     model.Role
		required []model.Role
		want     int
	}{
		{"empty set admits user", model.RoleUser, nil, http.StatusOK},
		{"empty set admits admin", model.RoleAdmin, nil, http.StatusOK},
		{"user blocked from editor set", model.RoleUser, []model.Role{model.RoleEditor, model.RoleAdmin}, http.StatusForbidden},
		{"editor admitted to editor set", model.RoleEditor, []model.Role{model.RoleEditor, model.RoleAdmin}, http.StatusOK},
		{"admin admitted to editor set", model.RoleAdmin, []model.Role{model.RoleEditor, model.RoleAdmin}, http.StatusOK},
		{"editor blocked from admin set", model.RoleEditor, []model.Role{model.RoleAdmin}, http.StatusForbidden},
		{"user blocked from admin set", model.RoleUser, []model.Role{model.RoleAdmin}, http.StatusForbidden},
		{"admin admitted to admin set", model.RoleAdmin, []model.Role{model.RoleAdmin}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			guard := RequireAuth(tokens, tc.required...)
			handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, ok := ClaimsFromContext(r.Context())
				require.True(t, ok, "claims must be in context for admitted requests")
				assert.Equal(t, tc.role, claims.Role)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, tokens, tc.role))
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestRequireAuth_MissingOrInvalidToken(t *testing.T) {
	tokens := testTokens(t)
	guard := RequireAuth(tokens)
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a valid token")
	}))

	t.Run("no header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		refresh, err := tokens.IssueRefreshToken(&model.User{ID: 1, Role: model.RoleAdmin})
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
