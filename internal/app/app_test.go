package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JobScanner/internal/config"
	"JobScanner/internal/domain"
	"JobScanner/internal/logging"
)

func loadConfig(t *testing.T, raw string) config.Config {
	t.Helper()
	for _, key := range []string{"JOB_SCANNER_CONFIG", "DATABASE_DRIVER", "REDIS_URL", "JOB_ROLES", "TELEGRAM_BOT_TOKEN"} {
		t.Setenv(key, "")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestRunOnceAndSweepEndToEnd(t *testing.T) {
	posted := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
	board := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{"jobs":[
		  {"id":1,"title":"Senior Data Scientist","absolute_url":"https://boards.example.com/acme/1","location":{"name":"Remote"},"updated_at":%q},
		  {"id":2,"title":"Office Manager","absolute_url":"https://boards.example.com/acme/2","location":{"name":"Remote"},"updated_at":%q}
		]}`, posted, posted)
	}))
	defer board.Close()

	cfg := loadConfig(t, fmt.Sprintf(`
database:
  driver: memory
pipeline:
  roles: ["Data Scientist"]
sites:
  - name: acme
    scanner: greenhouse
    url: %s
    options:
      board: acme
  - name: parked
    scanner: nowhere
    url: https://parked.example.com
    enabled: false
`, board.URL))

	ctx := context.Background()
	application, err := New(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	defer application.Close(ctx)

	report, err := application.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CycleCompleted, report.Status)
	assert.Equal(t, 1, report.Totals.Inserted)
	assert.Equal(t, 1, report.Rejected)
	require.Len(t, report.Sources, 1)
	assert.Equal(t, "Acme", report.Sources[0].Company)

	deleted, err := application.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	sites, scanners := application.Sites()
	assert.Len(t, sites, 2)
	assert.Equal(t, []string{"greenhouse", "html", "workday"}, scanners)
}

func TestNewRejectsUnknownScanner(t *testing.T) {
	cfg := loadConfig(t, `
database:
  driver: memory
sites:
  - name: acme
    scanner: nowhere
    url: https://acme.example.com
`)

	_, err := New(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanner nowhere is not registered")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := loadConfig(t, `
database:
  driver: sqlite
`)

	_, err := New(context.Background(), cfg, logging.Discard())
	assert.ErrorContains(t, err, "invalid config")
}
