package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiopredict/cardiopredict/internal/auth"
	"github.com/cardiopredict/cardiopredict/internal/model"
	"github.com/cardiopredict/cardiopredict/internal/testutil"
)

type stubVerifier struct {
	token  string
	claims *model.Claims
}

func (s stubVerifier) Verify(token string) (*model.Claims, error) {
	if token != s.token {
		return nil, auth.ErrInvalidToken
	}
	return s.claims, nil
}

func TestAuth(t *testing.T) {
	alice := &model.Claims{UserID: 7, Username: "alice", Role: model.RoleUser}
	mw := Auth(AuthConfig{
		Logger:   testutil.NoopLogger(),
		Verifier: stubVerifier{token: "good", claims: alice},
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid bearer", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer forged", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *model.Claims
			called := false
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				got = auth.ClaimsFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/prediction/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				assert.False(t, called, "handler must not run without valid credentials")
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

				var body map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, "UNAUTHENTICATED", body["code"])
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, alice.UserID, got.UserID)
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer  abc.def.ghi ")
	assert.Equal(t, "abc.def.ghi", extractBearerToken(req))

	req.Header.Set("Authorization", "Token abc")
	assert.Empty(t, extractBearerToken(req))
}
