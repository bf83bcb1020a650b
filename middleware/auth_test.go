package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	var seenSubject string
	protected := Authenticate(testSecret)(Authorize("organizer")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenSubject, _ = GetSubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	valid := jwt.MapClaims{
		"sub":  "organizer@example.com",
		"role": "organizer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid organizer token", "Bearer " + signedToken(t, testSecret, valid), http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signedToken(t, "other", valid), http.StatusUnauthorized},
		{"expired", "Bearer " + signedToken(t, testSecret, jwt.MapClaims{
			"sub": "organizer@example.com", "role": "organizer", "exp": time.Now().Add(-time.Hour).Unix(),
		}), http.StatusUnauthorized},
		{"other role", "Bearer " + signedToken(t, testSecret, jwt.MapClaims{
			"sub": "viewer", "role": "viewer", "exp": time.Now().Add(time.Hour).Unix(),
		}), http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seenSubject = ""
			req := httptest.NewRequest(http.MethodPost, "/draws", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusNoContent {
				assert.Equal(t, "organizer@example.com", seenSubject)
			} else {
				assert.Contains(t, rec.Body.String(), `"code"`)
			}
		})
	}
}

func TestAuthorizeWithoutAuthenticate(t *testing.T) {
	handler := Authorize("organizer")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
