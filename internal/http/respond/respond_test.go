package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorEnvelopeShape(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusUnauthorized, KindAuthentication, "Invalid refresh token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AuthenticationError", body["code"])
	assert.Equal(t, "Invalid refresh token", body["message"])
	_, hasDetail := body["error"]
	assert.False(t, hasDetail, "error detail is reserved for server errors")
}

func TestServerErrorDetailExposure(t *testing.T) {
	cause := errors.New("mongo: connection refused")

	rec := httptest.NewRecorder()
	ServerError(rec, cause, true)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, KindServer, body.Code)
	assert.Equal(t, "mongo: connection refused", body.Detail)

	// Production must not echo raw error detail to clients.
	rec = httptest.NewRecorder()
	ServerError(rec, cause, false)
	body = ErrorBody{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, KindServer, body.Code)
	assert.Empty(t, body.Detail)
}
