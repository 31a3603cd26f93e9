package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/digideskio/git-cinnabar/internal/fakequeue"
	"github.com/digideskio/git-cinnabar/internal/hcl_adapter"
	"github.com/digideskio/git-cinnabar/internal/inmemorystore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const decisionHCL = `
task "hg" {
  index    = "hg.${github.head_sha}"
  image    = "ubuntu:16.04"
  command  = ["make"]
  artifact = "/tmp/hg.tar.gz"
}

task "clone" {
  description = "clone"
  image       = "ubuntu:16.04"
  command     = ["tar", "-xf", task.hg.artifact]
}
`

type testEnv struct {
	dir      string
	settings string
	store    *inmemorystore.Store
	server   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := inmemorystore.New()
	srv := httptest.NewServer(fakequeue.NewRouter(store, slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(srv.Close)

	root := t.TempDir()
	dir := filepath.Join(root, ".taskcluster")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "decision.hcl"), []byte(decisionHCL), 0o644))

	endpoints := fakequeue.Endpoints(srv.URL)
	settings := filepath.Join(root, "settings.yaml")
	content := "endpoints:\n" +
		"  index: " + endpoints.Index + "\n" +
		"  queue: " + endpoints.Queue + "\n" +
		"  artifacts: " + endpoints.Artifacts + "\n"
	require.NoError(t, os.WriteFile(settings, []byte(content), 0o644))

	return &testEnv{dir: dir, settings: settings, store: store, server: srv}
}

func (e *testEnv) newApp(t *testing.T, cfg Config, out io.Writer) *App {
	t.Helper()
	cfg.Dir = e.dir
	cfg.SettingsPath = e.settings
	cfg.LogLevel = "debug"
	if cfg.Getenv == nil {
		cfg.Getenv = envFrom(map[string]string{"GITHUB_HEAD_SHA": "0123abcd"})
	}
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	a, err := NewApp(out, io.Discard, appConfig, hcl_adapter.NewLoader(), WithHTTPClient(e.server.Client()))
	require.NoError(t, err)
	return a
}

func TestApp_Run_PrintsOutsideOfTask(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	result, err := env.newApp(t, Config{}, &out).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Printed, 2)
	assert.Empty(t, result.Submitted)
	assert.Contains(t, out.String(), `"name": "clone"`)
	assert.Empty(t, env.store.TaskIDs())
}

func TestApp_Run_SubmitsThenReuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.newApp(t, Config{Submit: true}, io.Discard).Run(ctx)
	require.NoError(t, err)
	require.Len(t, first.Submitted, 2)
	assert.ElementsMatch(t, first.Submitted, env.store.TaskIDs())

	second, err := env.newApp(t, Config{Submit: true}, io.Discard).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{first.Submitted[0]}, second.Reused)
	require.Len(t, second.Submitted, 1)
	assert.NotEqual(t, first.Submitted[1], second.Submitted[0])

	clone, ok := env.store.GetTask(ctx, second.Submitted[0])
	require.True(t, ok)
	assert.Contains(t, clone.Dependencies, first.Submitted[0])
}

func TestApp_Run_InTaskSubmitsUnlessDryRun(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	getenv := envFrom(map[string]string{"TASK_ID": "decision-task", "GITHUB_HEAD_SHA": "feed"})

	result, err := env.newApp(t, Config{DryRun: true, Getenv: getenv}, io.Discard).Run(ctx)
	require.NoError(t, err)
	assert.Len(t, result.Printed, 2)
	assert.Empty(t, env.store.TaskIDs())

	a := env.newApp(t, Config{Getenv: getenv}, io.Discard)
	assert.True(t, a.Environment().InTask())
	result, err = a.Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Submitted, 2)

	task, ok := env.store.GetTask(ctx, result.Submitted[0])
	require.True(t, ok)
	assert.Equal(t, "decision-task", task.TaskGroupID)
}

func TestApp_Show(t *testing.T) {
	env := newTestEnv(t)
	a := env.newApp(t, Config{}, io.Discard)
	ctx := context.Background()

	task, err := a.Show(ctx, "clone", "")
	require.NoError(t, err)
	assert.Equal(t, "clone", task.Name)

	task, err = a.Show(ctx, "", "hg.")
	require.NoError(t, err)
	assert.Equal(t, "hg", task.Name)
	assert.Equal(t, "hg.0123abcd", task.IndexKey)

	_, err = a.Show(ctx, "nope", "")
	assert.ErrorContains(t, err, `no task named "nope"`)

	_, err = a.Show(ctx, "hg[4.3]", "")
	assert.ErrorContains(t, err, "quoted string")

	_, err = a.Show(ctx, "", "")
	assert.ErrorContains(t, err, "exactly one of")
}

func TestApp_Images_NoDockerBlock(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.newApp(t, Config{}, io.Discard).Images(context.Background())
	assert.ErrorContains(t, err, "no docker block declared")
}
