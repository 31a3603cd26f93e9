// Package submit sends the declared tasks of a run to the queue.
package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/digideskio/git-cinnabar/internal/builder"
	"github.com/digideskio/git-cinnabar/internal/ctxlog"
	"github.com/digideskio/git-cinnabar/internal/taskcluster"
)

// Submitter creates tasks on the queue.
type Submitter interface {
	CreateTask(ctx context.Context, taskID string, task *taskcluster.Task) (*taskcluster.TaskStatus, error)
}

// Driver walks declared tasks and submits those that are not reused.
type Driver struct {
	submitter Submitter
	out       io.Writer
	// DryRun prints the definitions without submitting them.
	DryRun bool
}

// Result summarizes one submission pass.
type Result struct {
	Submitted []string
	Printed   []string
	Reused    []string
}

// New creates a driver. Definitions are written to out as indented JSON; a
// nil out discards them.
func New(submitter Submitter, out io.Writer) *Driver {
	if out == nil {
		out = io.Discard
	}
	return &Driver{submitter: submitter, out: out}
}

// Run submits tasks in order. The first rejected submission stops the pass;
// tasks submitted before it stay on the queue.
func (d *Driver) Run(ctx context.Context, tasks []*builder.Task) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	result := &Result{}

	for _, task := range tasks {
		if task.Reused {
			logger.Debug("Skipping reused task.", "task", task.Name, "task_id", task.ID)
			result.Reused = append(result.Reused, task.ID)
			continue
		}

		fmt.Fprintf(d.out, "Submitting task %q:\n", task.ID)
		body, err := json.MarshalIndent(task.Definition, "", "    ")
		if err != nil {
			return result, fmt.Errorf("failed to encode task %s: %w", task.ID, err)
		}
		fmt.Fprintf(d.out, "%s\n", body)

		if d.DryRun || d.submitter == nil {
			result.Printed = append(result.Printed, task.ID)
			continue
		}

		status, err := d.submitter.CreateTask(ctx, task.ID, &task.Definition)
		if err != nil {
			logger.Error("Task submission failed.", "task", task.Name, "task_id", task.ID, "error", err)
			return result, fmt.Errorf("failed to submit task %q (%s): %w", task.Name, task.ID, err)
		}
		logger.Info("Task submitted.", "task", task.Name, "task_id", task.ID, "state", status.Status.State)
		result.Submitted = append(result.Submitted, task.ID)
	}

	logger.Info("Submission pass finished.",
		"submitted", len(result.Submitted),
		"printed", len(result.Printed),
		"reused", len(result.Reused),
	)
	return result, nil
}
