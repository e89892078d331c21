package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/lacasadark/casadark-core/internal/cache"
	"github.com/lacasadark/casadark-core/internal/db"
	"github.com/lacasadark/casadark-core/internal/export"
	"github.com/lacasadark/casadark-core/internal/project"
)

const testToken = "test-token-1234567890"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestConfig wires a server config over a real SQLite database in a temp
// dir.
func newTestConfig(t *testing.T) ServerConfig {
	t.Helper()

	dir := t.TempDir()
	database, err := db.New(filepath.Join(dir, "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := project.NewRepository(database.Conn())
	if err := repo.SetConfig(context.Background(), AuthTokenKey, testToken); err != nil {
		t.Fatalf("set auth token: %v", err)
	}

	defaults := export.DefaultSettings()
	svc := project.NewService(repo, filepath.Join(dir, "exports"), defaults, nil)

	return ServerConfig{
		Projects:    svc,
		Repository:  repo,
		Runner:      project.NewRunner(svc, repo, nil, testLogger()),
		RenderCache: cache.NewRenderCache(time.Minute, nil),
		Defaults:    defaults,
		Logger:      testLogger(),
		StartTime:   time.Now(),
		Version:     "test",
	}
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("json.Marshal error: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rr.Body.String(), err)
	}
	return body
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	code, _ := decodeJSONBody(t, rr)["code"].(string)
	return code
}
