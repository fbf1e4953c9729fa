package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apiMiddleware "github.com/phrazzld/tactics-srs/internal/api/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	app := newTestApp(t)
	srv := httptest.NewServer(newRouter(app.practice, app.loc, time.Now, app.logger))
	t.Cleanup(srv.Close)

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	do := func(method, path string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(method, srv.URL+path, nil)
		require.NoError(t, err)
		if method == http.MethodOptions {
			req.Header.Set("Origin", "http://example.test")
			req.Header.Set("Access-Control-Request-Method", "POST")
		}
		resp, err := client.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}
	decode := func(resp *http.Response) map[string]any {
		t.Helper()
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body
	}

	t.Run("root redirects to queue", func(t *testing.T) {
		resp := do(http.MethodGet, "/")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/queue", resp.Header.Get("Location"))
		assert.NotEmpty(t, resp.Header.Get(apiMiddleware.TraceIDHeader))
	})

	t.Run("favicon", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, do(http.MethodGet, "/favicon.ico").StatusCode)
	})

	t.Run("health allows any origin", func(t *testing.T) {
		resp := do(http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, true, decode(resp)["ok"])
	})

	t.Run("queue page has no cors header", func(t *testing.T) {
		resp := do(http.MethodGet, "/queue")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Nothing due.")
	})

	t.Run("preflight", func(t *testing.T) {
		resp := do(http.MethodOptions, "/log")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "GET, POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	})

	t.Run("bad log request", func(t *testing.T) {
		resp := do(http.MethodGet, "/log?p=abc&r=draw")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "need puzzle_id and result=win|loss", decode(resp)["error"])
	})

	t.Run("log then queue", func(t *testing.T) {
		resp := do(http.MethodPost, "/log?puzzle_id=abc12&result=loss")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "abc12", decode(resp)["puzzle_id"])

		// A first loss is scheduled for a later day, so it only shows in the stats.
		resp = do(http.MethodGet, "/api/queue")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode(resp)
		assert.EqualValues(t, 0, body["count"])
		stats := body["stats"].(map[string]any)
		assert.EqualValues(t, 1, stats["attempts"])
		assert.EqualValues(t, 1, stats["losses"])

		entry, err := app.schedule.Get(context.Background(), "abc12")
		require.NoError(t, err)
		assert.Equal(t, 1, entry.IntervalDays)
	})

	t.Run("unknown route", func(t *testing.T) {
		resp := do(http.MethodGet, "/nope")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "not found", decode(resp)["error"])
	})
}
