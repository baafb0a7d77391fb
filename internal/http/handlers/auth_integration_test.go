package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nattawatz/blog-api/internal/auth"
	"github.com/nattawatz/blog-api/internal/config"
	"github.com/nattawatz/blog-api/internal/middleware"
	"github.com/nattawatz/blog-api/internal/models"
	"github.com/nattawatz/blog-api/internal/service"
	"github.com/nattawatz/blog-api/internal/storage/mongodb"
)

// TestAuthIntegration exercises the full auth loop against a live
// MongoDB instance.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	cfg, err := config.Load()
	require.NoError(t, err, "load config")

	ctx := context.Background()
	store, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
	require.NoError(t, err, "init store")
	defer store.Close(ctx)

	codec, err := auth.NewCodec(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := service.NewAuthService(store, store, codec, cfg.AdminEmails, logger)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	authHandler := NewAuthHandler(svc, &cfg, logger)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh-token", authHandler.RefreshToken).Methods(http.MethodPost)

	authenticate := middleware.Authenticate(codec, logger)
	userHandler := NewUserHandler(svc, &cfg, logger)
	authorize := middleware.Authorize(store, logger, models.RoleAdmin, models.RoleUser)
	api.Handle("/user/current", authenticate(authorize(http.HandlerFunc(userHandler.Current)))).Methods(http.MethodGet)

	ts := httptest.NewServer(router)
	defer ts.Close()

	email := fmt.Sprintf("apitest_%d@example.com", time.Now().UnixNano())
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())

	api2 := &testAPI{server: ts, codec: codec}

	resp := api2.post(t, "/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := refreshCookieFrom(t, resp)
	registered := decodeBody[authResponseBody](t, resp)
	assert.Equal(t, email, registered.User.Email)

	resp = api2.post(t, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loggedIn := decodeBody[authResponseBody](t, resp)
	assert.Equal(t, registered.User.Username, loggedIn.User.Username)

	resp = api2.post(t, "/api/v1/auth/refresh-token", nil, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	refreshed := decodeBody[struct {
		AccessToken string `json:"accessToken"`
	}](t, resp)
	assert.NotEmpty(t, refreshed.AccessToken)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/user/current", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+refreshed.AccessToken)
	currentResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, currentResp.StatusCode)
	current := decodeBody[struct {
		User models.User `json:"user"`
	}](t, currentResp)
	assert.Equal(t, email, current.User.Email)

	t.Logf("registered %s and completed the login/refresh/current loop", email)
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
