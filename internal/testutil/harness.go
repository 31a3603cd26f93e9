package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/digideskio/git-cinnabar/internal/app"
	"github.com/digideskio/git-cinnabar/internal/hcl_adapter"
	"github.com/digideskio/git-cinnabar/internal/submit"
	"github.com/stretchr/testify/require"
)

// Harness is a repository checkout in a temporary directory, with its own
// fake queue. Several runs against the same harness share the queue.
type Harness struct {
	Root     string
	Queue    *FakeQueue
	Settings string
}

// NewHarness writes files under a new temporary root (decision files go
// under ".taskcluster/") and starts a fake queue for it.
func NewHarness(t *testing.T, files map[string]string) *Harness {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, files)

	q := NewFakeQueue(t)
	return &Harness{Root: root, Queue: q, Settings: q.SettingsFile(t, "")}
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Result    *submit.Result
	Err       error
	App       *app.App
}

// Run runs the App once with cfg and the given environment variables.
// Dir, SettingsPath and the log configuration are filled in by the harness.
func (h *Harness) Run(t *testing.T, cfg app.Config, env map[string]string) *HarnessResult {
	t.Helper()
	return h.RunWithContext(context.Background(), t, cfg, env)
}

// RunWithContext is Run with a caller provided context.
func (h *Harness) RunWithContext(ctx context.Context, t *testing.T, cfg app.Config, env map[string]string) *HarnessResult {
	t.Helper()

	cfg.Dir = filepath.Join(h.Root, app.DefaultDir)
	if cfg.SettingsPath == "" {
		cfg.SettingsPath = h.Settings
	}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	cfg.Getenv = func(key string) string { return env[key] }

	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logBuffer := &SafeBuffer{}
	testApp, err := app.NewApp(out, logBuffer, appConfig, hcl_adapter.NewLoader(), app.WithHTTPClient(h.Queue.Server.Client()))
	require.NoError(t, err)

	result, runErr := testApp.Run(ctx)

	if os.Getenv("DECISION_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Output:    out.String(),
		LogOutput: logBuffer.String(),
		Result:    result,
		Err:       runErr,
		App:       testApp,
	}
}
