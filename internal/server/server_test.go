package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"tracker/internal/config"
	"tracker/internal/database"
	"tracker/internal/repositories"
	"tracker/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		APIPrefix:  "/api",
		DBDriver:   config.DriverMemory,
		BcryptCost: bcrypt.MinCost,
		BodyLimit:  1024 * 1024,
	}
}

func memoryDeps() server.Dependencies {
	return server.Dependencies{
		Users:      repositories.NewMemoryUserRepository(),
		Activities: repositories.NewMemoryActivityRepository(),
	}
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func registerToken(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp := do(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "User",
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return readJSON(t, resp)["token"].(string)
}

func TestHealth(t *testing.T) {
	app, err := server.NewApp(testConfig(), memoryDeps())
	require.NoError(t, err)

	resp := do(t, app, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readJSON(t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ok", body["database"])
	_, err = time.Parse(time.RFC3339, body["time"].(string))
	assert.NoError(t, err)
}

func TestHealthReportsUnavailableDatabase(t *testing.T) {
	db, err := database.Open(config.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)

	deps := memoryDeps()
	deps.DB = db
	app, err := server.NewApp(testConfig(), deps)
	require.NoError(t, err)

	resp := do(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, "ok", readJSON(t, resp)["database"])

	require.NoError(t, database.Close(db))
	resp = do(t, app, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "unavailable", readJSON(t, resp)["database"])
}

func TestUnknownRoute(t *testing.T) {
	app, err := server.NewApp(testConfig(), memoryDeps())
	require.NoError(t, err)

	resp := do(t, app, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, readJSON(t, resp)["error"])
}

func TestMemoryStoreEndToEnd(t *testing.T) {
	app, err := server.NewApp(testConfig(), memoryDeps())
	require.NoError(t, err)

	ana := registerToken(t, app, "ana@x.com")
	ben := registerToken(t, app, "ben@x.com")

	resp := do(t, app, http.MethodPost, "/api/activities", ana, map[string]any{
		"title":    "Run",
		"category": "Self-care",
		"duration": 30,
		"date":     "2024-01-15",
		"feeling":  7,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := readJSON(t, resp)["activity"].(map[string]any)["id"].(string)

	resp = do(t, app, http.MethodGet, "/api/activities/"+id, ben, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, app, http.MethodGet, "/api/activities", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestStatsCacheIsPerUser(t *testing.T) {
	cfg := testConfig()
	cfg.StatsCacheTTL = time.Minute
	app, err := server.NewApp(cfg, memoryDeps())
	require.NoError(t, err)

	ana := registerToken(t, app, "ana@x.com")
	ben := registerToken(t, app, "ben@x.com")

	resp := do(t, app, http.MethodPost, "/api/activities", ana, map[string]any{
		"title":    "Run",
		"category": "Self-care",
		"duration": 30,
		"date":     "2024-01-15",
		"feeling":  7,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, app, http.MethodGet, "/api/activities/stats", ana, nil)
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))
	assert.EqualValues(t, 1, readJSON(t, resp)["total_activities"])

	resp = do(t, app, http.MethodGet, "/api/activities/stats", ana, nil)
	assert.Equal(t, "hit", resp.Header.Get("X-Cache"))
	assert.EqualValues(t, 1, readJSON(t, resp)["total_activities"])

	resp = do(t, app, http.MethodGet, "/api/activities/stats", ben, nil)
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))
	assert.EqualValues(t, 0, readJSON(t, resp)["total_activities"])

	// The cache sits behind the guard.
	resp = do(t, app, http.MethodGet, "/api/activities/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
