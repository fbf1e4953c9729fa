package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/phrazzld/tactics-srs/internal/config"
	"github.com/stretchr/testify/require"
)

// testEnv points the configuration at a fresh database and report
// directory. It uses t.Setenv, so callers cannot run in parallel.
func testEnv(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("DB_PATH", filepath.Join(dir, "db", "puzzles.sqlite3"))
	t.Setenv("DATABASE_DRIVER", "sqlite3")
	t.Setenv("REPORT_OUTPUT_DIR", filepath.Join(dir, "reports"))
	t.Setenv("REPORT_HTML", "true")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("PUZZLE_CSV_URL", "")
	t.Setenv("UPDATE_BACKUP", "false")
	return dir
}

// runCLI executes the root command with args and returns what it printed
// on stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// newTestApp builds a migrated application on a temporary database.
func newTestApp(t *testing.T) *application {
	t.Helper()
	testEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplication(context.Background(), cfg, logger, appOptions{})
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app
}

// writeDump writes a zstd-compressed puzzle CSV and returns its file URL.
func writeDump(t *testing.T, csv string) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = io.WriteString(w, csv)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "puzzles.csv.zst")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return "file://" + path
}
