package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hongminglow/ledger-be/internal/auth"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/hongminglow/ledger-be/internal/storage/postgres"
)

// TestAuthIntegration exercises the register/login endpoints against a live Postgres.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := mustGetEnv(t, "DATABASE_URL")

	ctx := context.Background()
	store, err := postgres.New(ctx, dbURL, postgres.Options{MaxConns: 2, Logger: zap.NewNop()})
	require.NoError(t, err, "init store")
	defer store.Close()

	tokens := auth.NewTokenManager(mustGetEnv(t, "JWT_SECRET"), mustGetEnv(t, "JWT_ISSUER"), mustGetTTL(t))

	mux := http.NewServeMux()
	NewAuthHandler(store, tokens, zap.NewNop()).Register(mux)

	ts := httptest.NewServer(mux)
	defer ts.Close()

	username := fmt.Sprintf("apitest_%d", time.Now().UnixNano())
	email := fmt.Sprintf("%s@example.com", username)
	phone := fmt.Sprintf("+1555%07d", time.Now().UnixNano()%1_000_0000)
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())

	user := requestRegister(t, ts.URL, map[string]string{
		"username": username,
		"email":    email,
		"phone":    phone,
		"password": password,
	})
	require.Equal(t, username, user.Username)
	require.Equal(t, email, user.Email)
	require.Equal(t, phone, user.Phone)

	loggedIn := requestLogin(t, ts.URL, username, password)
	require.Equal(t, user.ID, loggedIn.User.ID)
	require.NotEmpty(t, strings.TrimSpace(loggedIn.Token))

	identity, err := tokens.Parse(loggedIn.Token)
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.UserID)
}

type loginResponseBody struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func postJSON[T any](t *testing.T, url string, payload any, wantStatus int) T {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)

	var out envelope[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, wantStatus, out.Code)
	return out.Data
}

func requestRegister(t *testing.T, baseURL string, payload map[string]string) models.User {
	t.Helper()
	return postJSON[models.User](t, baseURL+"/register", payload, http.StatusCreated)
}

func requestLogin(t *testing.T, baseURL, identifier, password string) loginResponseBody {
	t.Helper()
	return postJSON[loginResponseBody](t, baseURL+"/login", map[string]string{
		"identifier": identifier,
		"password":   password,
	}, http.StatusOK)
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func mustGetTTL(t *testing.T) time.Duration {
	t.Helper()
	minutesStr := mustGetEnv(t, "JWT_TTL_MINUTES")
	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes <= 0 {
		t.Fatalf("invalid JWT_TTL_MINUTES value: %q", minutesStr)
	}
	return time.Duration(minutes) * time.Minute
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
