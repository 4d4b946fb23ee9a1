package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/esports-arena/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

const userID = "6f1c2d8e-3b5a-4c7d-9e0f-112233445566"

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User", UserIDOrAnonymous(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
}

func do(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	valid, err := IssueToken(secret, userID, models.RoleUser, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(secret, userID, models.RoleUser, -time.Hour)
	require.NoError(t, err)
	foreign, err := IssueToken("other-secret", userID, models.RoleUser, time.Hour)
	require.NoError(t, err)

	h := Authenticate(secret)(echoUser(t))

	rec := do(h, valid)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, rec.Header().Get("X-User"))

	for name, token := range map[string]string{"missing": "", "expired": expired, "foreign": foreign, "garbage": "abc.def.ghi"} {
		t.Run(name, func(t *testing.T) {
			rec := do(h, token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestOptionalAuthenticate(t *testing.T) {
	h := OptionalAuthenticate(secret)(echoUser(t))

	rec := do(h, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-User"))

	rec = do(h, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuthenticateWebSocket_QueryToken(t *testing.T) {
	valid, err := IssueToken(secret, userID, models.RoleUser, time.Hour)
	require.NoError(t, err)

	ws := OptionalAuthenticateWebSocket(secret)(echoUser(t))
	plain := OptionalAuthenticate(secret)(echoUser(t))

	tests := []struct {
		name     string
		h        http.Handler
		query    string
		wantCode int
		wantUser string
	}{
		{"websocket query token", ws, "?access_token=" + valid, http.StatusNoContent, userID},
		{"websocket no token", ws, "", http.StatusNoContent, ""},
		{"websocket bad query token", ws, "?access_token=abc.def.ghi", http.StatusUnauthorized, ""},
		{"plain ignores query token", plain, "?access_token=" + valid, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws"+tt.query, nil)
			rec := httptest.NewRecorder()
			tt.h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantUser, rec.Header().Get("X-User"))
		})
	}
}

func TestRequireRole(t *testing.T) {
	admin, err := IssueToken(secret, userID, models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	user, err := IssueToken(secret, userID, models.RoleUser, time.Hour)
	require.NoError(t, err)

	h := Authenticate(secret)(RequireRole(models.RoleAdmin)(echoUser(t)))

	assert.Equal(t, http.StatusNoContent, do(h, admin).Code)
	assert.Equal(t, http.StatusForbidden, do(h, user).Code)
}

func TestGetUserIDFromContext_RejectsNonUUID(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	var gotErr error
	h := Authenticate(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, gotErr = GetUserIDFromContext(r.Context())
	}))
	do(h, token)
	assert.Error(t, gotErr)
}
