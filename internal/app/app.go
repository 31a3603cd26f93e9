package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/digideskio/git-cinnabar/internal/builder"
	"github.com/digideskio/git-cinnabar/internal/config"
	"github.com/digideskio/git-cinnabar/internal/ctxlog"
	"github.com/digideskio/git-cinnabar/internal/decision"
	"github.com/digideskio/git-cinnabar/internal/index"
	"github.com/digideskio/git-cinnabar/internal/slugid"
	"github.com/digideskio/git-cinnabar/internal/taskcluster"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	settings *Settings
	env      Environment
	loader   config.Loader
	client   *taskcluster.Client
	now      func() time.Time
}

// Option customizes an App.
type Option func(*App)

// WithHTTPClient makes the App talk to the services through c.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) {
		a.client = taskcluster.NewClient(a.client.Endpoints(), c)
	}
}

// WithClock makes the App read the current time from now.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// NewApp is the constructor for the main application. outW receives task
// definitions and reports, logW receives logs.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	settings, err := LoadSettings(appConfig.SettingsPath)
	if err != nil {
		return nil, err
	}
	env := LoadEnvironment(appConfig.Getenv, settings.Repo)
	logger.Debug("Environment loaded.", "in_task", env.InTask(), "head", env.Repo.HeadUser+"/"+env.Repo.HeadRepoName, "sha", env.Repo.HeadSHA)

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		settings: settings,
		env:      env,
		loader:   loader,
		client:   taskcluster.NewClient(settings.endpoints(env.InTask()), nil),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Environment returns what the App read from its environment.
func (a *App) Environment() Environment {
	return a.env
}

// submitting reports whether built tasks are sent to the queue.
func (a *App) submitting() bool {
	if a.config.DryRun {
		return false
	}
	return a.config.Submit || a.env.InTask()
}

func (a *App) loadModel(ctx context.Context) (*config.Model, error) {
	model, err := a.loader.Load(ctx, a.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load decision files: %w", err)
	}
	if len(model.Tasks) == 0 && model.Docker == nil {
		a.logger.Warn("No tasks declared.", "dir", a.config.Dir)
	}
	return model, nil
}

// Build loads the decision files and declares every task, looking up index
// keys along the way. Nothing is submitted.
func (a *App) Build(ctx context.Context) (*builder.Builder, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Build method started.")

	model, err := a.loadModel(ctx)
	if err != nil {
		return nil, err
	}

	groupID := a.env.TaskID
	if groupID == "" {
		groupID = slugid.New()
	}
	now := a.now()
	cache := index.New(a.client, a.env.Repo.Namespaces(), now)
	b := builder.New(cache, builder.Options{
		Repo:        a.env.Repo,
		TaskGroupID: groupID,
		Now:         now,
		Endpoints:   a.client.Endpoints(),
		Defaults:    a.settings.defaults(),
	})

	engine := decision.New(b, decision.Options{Images: a.settings.Images})
	if err := engine.Run(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to build decision graph: %w", err)
	}
	a.logger.Debug("App.Build method finished.", "tasks", b.Len(), "task_group_id", groupID, "index_keys", cache.Keys())
	return b, nil
}
