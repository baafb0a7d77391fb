package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nattawatz/blog-api/internal/auth"
	"github.com/nattawatz/blog-api/internal/http/respond"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestAuthenticate(t *testing.T) {
	codec, err := auth.NewCodec("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	require.NoError(t, err)

	validToken, err := codec.IssueAccess("user-42")
	require.NoError(t, err)

	expiredCodec, err := auth.NewCodec("access-secret", "refresh-secret", time.Nanosecond, time.Hour)
	require.NoError(t, err)
	expiredToken, err := expiredCodec.IssueAccess("user-42")
	require.NoError(t, err)

	refreshToken, err := codec.IssueRefresh("user-42")
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantUserID  string
		wantMessage string
	}{
		{"valid bearer token", "Bearer " + validToken, http.StatusOK, "user-42", ""},
		{"no header", "", http.StatusUnauthorized, "", "Access denied, no token provided"},
		{"wrong scheme", "Token abc", http.StatusUnauthorized, "", "Access denied, no token provided"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "", "Access denied, no token provided"},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized, "", "Access token invalid"},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized, "", "Access token expired, request a new one with refresh token"},
		{"refresh token as access", "Bearer " + refreshToken, http.StatusUnauthorized, "", "Access token invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			handlerRan := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerRan = true
				gotUserID, _ = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			Authenticate(codec, quietLogger())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.True(t, handlerRan)
				assert.Equal(t, tt.wantUserID, gotUserID)
				return
			}

			assert.False(t, handlerRan, "handler must not run on rejected requests")
			var body respond.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, respond.KindAuthentication, body.Code)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}
