package mw

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unlockmart/internal/model"
)

const secret = "test-secret"

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := UserFrom(r.Context())
		w.Header().Set("X-User", id)
		w.Header().Set("X-Role", string(RoleFrom(r.Context())))
	})
}

func TestAuthMiddleware(t *testing.T) {
	token, err := IssueToken(secret, "acc-1", model.RoleOperator)
	require.NoError(t, err)
	other, err := IssueToken("another-secret", "acc-1", model.RoleOperator)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + other, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			AuthMiddleware(secret)(echoIdentity()).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "acc-1", rec.Header().Get("X-User"))
				assert.Equal(t, "operator", rec.Header().Get("X-Role"))
			} else {
				assert.True(t, json.Valid(rec.Body.Bytes()))
				assert.Contains(t, rec.Body.String(), `"message"`)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := AuthMiddleware(secret)(RequireRole(model.RoleAdministrator)(echoIdentity()))

	for role, status := range map[model.Role]int{
		model.RoleAdministrator: http.StatusOK,
		model.RoleCustomer:      http.StatusForbidden,
		model.RoleOperator:      http.StatusForbidden,
	} {
		token, err := IssueToken(secret, "acc-1", role)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, status, rec.Code, role)
	}
}
