package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/digideskio/git-cinnabar/internal/builder"
	"github.com/spf13/cobra"
)

func newRunCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the task graph and submit the tasks that are not reused",
		Args:  noArgs,
		RunE:  o.runRun,
	}
	addSubmitFlags(cmd, o)
	return cmd
}

func (o *options) runRun(cmd *cobra.Command, _ []string) error {
	a, err := o.newApp()
	if err != nil {
		return err
	}
	result, err := a.Run(cmd.Context())
	if err != nil {
		return err
	}
	a.Logger().Info("Decision finished.",
		"submitted", len(result.Submitted),
		"printed", len(result.Printed),
		"reused", len(result.Reused),
	)
	return nil
}

func newPlanCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show which tasks would be reused or submitted",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.newApp()
			if err != nil {
				return err
			}
			b, err := a.Build(cmd.Context())
			if err != nil {
				return err
			}

			table := NewTable([]string{"ID", "NAME", "STATE", "DEPS"})
			for _, task := range b.Tasks() {
				table.AddRow([]string{task.ID, task.Name, taskState(task), strings.Join(taskDeps(b, task), ",")})
			}
			table.Render(o.outW)
			return nil
		},
	}
}

func taskState(task *builder.Task) string {
	if task.Reused {
		return StateReuse
	}
	return StateSubmit
}

// taskDeps lists the tasks a task waits for, without the task group.
func taskDeps(b *builder.Builder, task *builder.Task) []string {
	var deps []string
	for _, dep := range task.Definition.Dependencies {
		if dep != b.TaskGroupID() {
			deps = append(deps, dep)
		}
	}
	return deps
}

func newImagesCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "List the docker build contexts with their hashes",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.newApp()
			if err != nil {
				return err
			}
			infos, err := a.Images(cmd.Context())
			if err != nil {
				return err
			}

			table := NewTable([]string{"NAME", "BASE", "LEAF", "HASH"})
			for _, info := range infos {
				table.AddRow([]string{info.Name, info.Base, info.LeafHash, info.Hash})
			}
			table.Render(o.outW)
			return nil
		},
	}
}

// taskDescriptor is what show prints.
type taskDescriptor struct {
	TaskID    string   `json:"taskId"`
	Name      string   `json:"name"`
	Reused    bool     `json:"reused"`
	IndexKey  string   `json:"index,omitempty"`
	Artifacts []string `json:"artifacts,omitempty"`
	Task      any      `json:"task"`
}

func newShowCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print one task as JSON, by name or by index prefix",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return usageError(err)
			}
			if (len(args) == 0) == (o.prefix == "") {
				return usageError(errors.New("exactly one of a task name or --index-prefix is required"))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.newApp()
			if err != nil {
				return err
			}
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			task, err := a.Show(cmd.Context(), name, o.prefix)
			if err != nil {
				return err
			}

			body, err := json.MarshalIndent(taskDescriptor{
				TaskID:    task.ID,
				Name:      task.Name,
				Reused:    task.Reused,
				IndexKey:  task.IndexKey,
				Artifacts: task.Artifacts,
				Task:      task.Definition,
			}, "", "    ")
			if err != nil {
				return err
			}
			fmt.Fprintf(o.outW, "%s\n", body)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.prefix, "index-prefix", "", "Select the task whose index key starts with this prefix.")
	return cmd
}

func newFakeQueueCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fake-queue",
		Short: "Serve an in-memory index and queue for local runs",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.newApp()
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", o.addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", o.addr, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.ServeFakeQueue(ctx, ln)
		},
	}
	cmd.Flags().StringVar(&o.addr, "addr", ":8080", "Address to listen on.")
	return cmd
}
