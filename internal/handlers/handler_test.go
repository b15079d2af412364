// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Integration tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/blog"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens the test PostgreSQL through a connection manager and runs
// migrations.
func testDB(t *testing.T) (*database.Manager, *sql.DB) {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	m := database.NewManager(dsn)
	db, err := m.DB(context.Background())
	if err != nil {
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		m.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { m.Close() })
	return m, db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "inkwell:session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds the database-backed dependencies for integration tests.
type testEnv struct {
	DB       *sql.DB
	Users    *store.UserStore
	Blog     *blog.Service
	API      *API
	Public   *Public
	Admin    *Admin
	Renderer *render.Renderer
}

// newTestEnv wires the real stores and service over the test database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	m, db := testDB(t)
	renderer := testRenderer(t)

	svc := blog.NewService(store.NewCategoryStore(m), store.NewPostStore(m))
	return &testEnv{
		DB:       db,
		Users:    store.NewUserStore(m),
		Blog:     svc,
		API:      NewAPI(svc),
		Public:   NewPublic(renderer, svc, "Inkwell", "https://blog.example"),
		Admin:    NewAdmin(renderer, svc),
		Renderer: renderer,
	}
}

// cleanCategory removes a category and its posts by slug when the test ends.
func (e *testEnv) cleanCategory(t *testing.T, slug string) {
	t.Helper()
	t.Cleanup(func() {
		e.DB.Exec("DELETE FROM posts WHERE category_id IN (SELECT id FROM categories WHERE slug = $1)", slug)
		e.DB.Exec("DELETE FROM categories WHERE slug = $1", slug)
	})
}

func testRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	renderer, err := render.New("Inkwell")
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return renderer
}

// uniq returns a slug unique to this test run.
func uniq(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// testSession returns an authenticated identity for request contexts.
func testSession() *session.Data {
	return &session.Data{UserID: uuid.New(), Email: "admin@inkwell.local"}
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// authed marks the request as coming from a signed-in user.
func authed(r *http.Request) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), testSession()))
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeBody decodes a JSON response body into a generic map.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return out
}
