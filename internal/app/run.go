package app

import (
	"context"
	"fmt"

	"github.com/digideskio/git-cinnabar/internal/ctxlog"
	"github.com/digideskio/git-cinnabar/internal/submit"
)

// Run builds the decision graph and submits every task that is not reused.
// Outside of a task, definitions are only printed unless Submit is set.
func (a *App) Run(ctx context.Context) (*submit.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	b, err := a.Build(ctx)
	if err != nil {
		return nil, err
	}

	var submitter submit.Submitter
	if a.submitting() {
		submitter = a.client
		a.logger.Info("Submitting tasks.", "queue", a.client.Endpoints().Queue, "task_group_id", b.TaskGroupID())
	} else {
		a.logger.Info("Not submitting tasks, printing definitions only.")
	}

	driver := submit.New(submitter, a.outW)
	result, err := driver.Run(ctx, b.Tasks())
	if err != nil {
		return result, fmt.Errorf("submission failed: %w", err)
	}
	a.logger.Debug("App.Run method finished.")
	return result, nil
}
