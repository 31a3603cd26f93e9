package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/digideskio/git-cinnabar/internal/fakequeue"
	"github.com/digideskio/git-cinnabar/internal/inmemorystore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// FakeQueue is a fake index and queue served over HTTP for one test.
type FakeQueue struct {
	Server *httptest.Server
	Store  *inmemorystore.Store
}

// NewFakeQueue starts a fake queue that is closed when the test ends.
func NewFakeQueue(t *testing.T) *FakeQueue {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := inmemorystore.New()
	srv := httptest.NewServer(fakequeue.NewRouter(store, slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(srv.Close)
	return &FakeQueue{Server: srv, Store: store}
}

// SettingsFile writes a YAML settings file pointing every endpoint at the
// fake queue, followed by extra, and returns its path.
func (q *FakeQueue) SettingsFile(t *testing.T, extra string) string {
	t.Helper()
	e := fakequeue.Endpoints(q.Server.URL)
	content := fmt.Sprintf("endpoints:\n  index: %s\n  queue: %s\n  artifacts: %s\n%s", e.Index, e.Queue, e.Artifacts, extra)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
