package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/all-in-blog/internal/auth"
	"github.com/hongminglow/all-in-blog/internal/http/respond"
	"github.com/hongminglow/all-in-blog/internal/kv"
	"github.com/hongminglow/all-in-blog/internal/mail"
	"github.com/hongminglow/all-in-blog/internal/middleware"
	"github.com/hongminglow/all-in-blog/internal/models"
	"github.com/hongminglow/all-in-blog/internal/service"
	"github.com/hongminglow/all-in-blog/internal/storage/postgres"
)

// TestAuthIntegration exercises register/login/me against live Postgres and Redis.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	ctx := context.Background()
	store, err := postgres.NewStore(ctx, mustGetEnv(t, "DATABASE_URL"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	redisCfg := kv.DefaultConfig()
	redisCfg.Addr = mustGetEnv(t, "REDIS_ADDR")
	rdb, err := kv.Connect(ctx, redisCfg, zap.NewNop())
	if err != nil {
		t.Fatalf("init redis: %v", err)
	}
	defer rdb.Close()

	sessions := auth.NewSessionManager(rdb, auth.NewCookieSigner(mustGetEnv(t, "SESSION_SECRET"), "integration", time.Hour), auth.SessionOptions{TTL: time.Hour})
	accounts := service.NewAccounts(service.AccountsDeps{
		Users:    store,
		Sessions: sessions,
		Resets:   auth.NewResetTokenStore(rdb, time.Hour),
		Hasher:   auth.NewBcryptHasher(bcrypt.MinCost),
		Mailer:   mail.NewLogSender(zap.NewNop()),
	}, service.AccountsConfig{ClientURL: "http://localhost:3000"})

	r := chi.NewRouter()
	r.Use(middleware.Session(sessions, zap.NewNop()))
	NewAuthHandler(accounts, sessions, zap.NewNop()).Routes(r)
	ts := httptest.NewServer(r)
	defer ts.Close()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	username := fmt.Sprintf("apitest_%d", time.Now().UnixNano())
	email := fmt.Sprintf("%s@example.com", username)
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())

	post(t, client, ts.URL+"/register", map[string]string{
		"username": username, "email": email, "password": password, "confirmPassword": password,
	}, http.StatusOK)
	post(t, client, ts.URL+"/login", map[string]string{"email": email, "password": password}, http.StatusOK)

	resp, err := client.Get(ts.URL + "/me")
	if err != nil {
		t.Fatalf("me request failed: %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		respond.Envelope
		Data models.User `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if out.Data.Username != username || out.Data.Email != email {
		t.Fatalf("me mismatch: got %+v", out.Data)
	}
	t.Logf("created user %s (id=%d) and resolved it through the session cookie", username, out.Data.ID)
}

func post(t *testing.T, client *http.Client, url string, payload map[string]string, want int) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		t.Fatalf("POST %s status = %d, want %d", url, resp.StatusCode, want)
	}
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
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
