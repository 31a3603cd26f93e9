package builder

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/digideskio/git-cinnabar/internal/ctxlog"
	"github.com/digideskio/git-cinnabar/internal/expiry"
	"github.com/digideskio/git-cinnabar/internal/index"
	"github.com/digideskio/git-cinnabar/internal/resolver"
	"github.com/digideskio/git-cinnabar/internal/taskcluster"
)

// Add declares a task and returns its handle. Nothing is recorded when an
// error is returned.
func (b *Builder) Add(ctx context.Context, spec Spec) (resolver.Handle, error) {
	logger := ctxlog.FromContext(ctx).With("task", spec.Name)

	if err := spec.Validate(); err != nil {
		return -1, err
	}
	if err := b.checkRefs(&spec); err != nil {
		return -1, err
	}

	fail := func(field string, err error) (resolver.Handle, error) {
		return -1, &ConfigError{Task: spec.Name, Field: field, Err: err}
	}
	res := resolver.New(b)

	// Identity.
	task := &Task{Name: spec.Name}
	if spec.Index != nil {
		key, err := spec.Index.Resolve(res)
		if err != nil {
			return fail("index", err)
		}
		if key == "" {
			return fail("index", errors.New("must not be empty"))
		}
		entry := b.index.GetOrCreate(ctx, key)
		task.ID, task.Reused, task.IndexKey = entry.TaskID, entry.Reused, key
	} else {
		task.ID = b.opts.NewID()
	}
	if other, dup := b.byID[task.ID]; dup {
		return fail("index", fmt.Errorf("task ID %s is already used by task %q", task.ID, b.tasks[other].Name))
	}
	logger.Debug("Task identity resolved.", "task_id", task.ID, "reused", task.Reused, "index", task.IndexKey)

	def, err := b.newDefinition(&spec, task)
	if err != nil {
		return fail("expires_in", err)
	}
	deps := []string{b.opts.TaskGroupID}

	if spec.Description != nil {
		desc, err := spec.Description.Resolve(res)
		if err != nil {
			return fail("description", err)
		}
		def.Metadata.Name = desc
		def.Metadata.Description = desc
	}

	// References.
	if len(spec.Command) > 0 {
		cmd, err := res.ResolveAll(spec.Command)
		if err != nil {
			return fail("command", err)
		}
		def.Payload.Command = cmd
	}
	if len(spec.Env) > 0 {
		def.Payload.Env = make(map[string]string, len(spec.Env))
		for _, name := range slices.Sorted(maps.Keys(spec.Env)) {
			v, err := spec.Env[name].Resolve(res)
			if err != nil {
				return fail("env."+name, err)
			}
			def.Payload.Env[name] = v
		}
	}
	switch {
	case spec.Image.Task != nil:
		target, err := res.Use(*spec.Image.Task)
		if err != nil {
			return fail("image", err)
		}
		def.Payload.Image = &taskcluster.Image{Path: taskcluster.ArtifactName(target.Artifacts[0]), TaskID: target.ID}
	case spec.Image.Ref != nil:
		ref, err := spec.Image.Ref.Resolve(res)
		if err != nil {
			return fail("image", err)
		}
		def.Payload.Image = &taskcluster.Image{Ref: ref}
	}

	// Artifacts.
	if paths := spec.artifactPaths(); len(paths) > 0 {
		artifacts := &taskcluster.Artifacts{AsList: listArtifactWorkers[def.WorkerType]}
		seen := make(map[string]string, len(paths))
		for _, p := range paths {
			name := taskcluster.ArtifactName(p)
			if prev, dup := seen[name]; dup {
				return fail("artifacts", fmt.Errorf("%s and %s would both be published as %s", prev, p, name))
			}
			seen[name] = p
			artifacts.Entries = append(artifacts.Entries, taskcluster.Artifact{Name: name, Path: p, Type: "file"})
			task.Artifacts = append(task.Artifacts, b.opts.Endpoints.ArtifactURL(task.ID, p))
		}
		def.Payload.Artifacts = artifacts
	}

	if len(spec.Scopes) > 0 {
		def.Scopes = append([]string(nil), spec.Scopes...)
		for _, scope := range spec.Scopes {
			if strings.HasPrefix(scope, "secrets:") {
				def.Payload.Features = map[string]bool{"taskclusterProxy": true}
				break
			}
		}
	}

	for _, h := range spec.Mounts {
		target, err := res.Use(h)
		if err != nil {
			return fail("mounts", err)
		}
		format, _ := mountFormat(target.Artifacts[0])
		def.Payload.Mounts = append(def.Payload.Mounts, taskcluster.Mount{
			Content: taskcluster.MountContent{
				Artifact: taskcluster.ArtifactName(target.Artifacts[0]),
				TaskID:   target.ID,
			},
			Directory: ".",
			Format:    format,
		})
	}

	for _, h := range spec.DependsOn {
		if _, err := res.Use(h); err != nil {
			return fail("depends_on", err)
		}
	}

	// Dependencies.
	deps = append(deps, res.Deps()...)
	slices.Sort(deps)
	def.Dependencies = slices.Compact(deps)
	task.Definition = *def

	task.Handle = resolver.Handle(len(b.tasks))
	b.tasks = append(b.tasks, task)
	b.byID[task.ID] = task.Handle
	b.byName[task.Name] = task.Handle

	logger.Debug("Task declared.", "task_id", task.ID, "dependencies", len(def.Dependencies))
	return task.Handle, nil
}

// newDefinition returns the task definition with every default filled in.
func (b *Builder) newDefinition(spec *Spec, task *Task) (*taskcluster.Task, error) {
	now := b.opts.Now
	d := b.opts.Defaults

	expires := now.Add(d.Expires)
	if spec.ExpiresIn != "" {
		var err error
		if expires, err = expiry.From(now, spec.ExpiresIn); err != nil {
			return nil, err
		}
	}

	def := &taskcluster.Task{
		Created:       taskcluster.FormatTime(now),
		Deadline:      taskcluster.FormatTime(now.Add(d.Deadline)),
		Expires:       taskcluster.FormatTime(expires),
		Retries:       0,
		ProvisionerID: cmp.Or(spec.ProvisionerID, d.ProvisionerID),
		WorkerType:    cmp.Or(spec.WorkerType, d.WorkerType),
		SchedulerID:   d.SchedulerID,
		TaskGroupID:   b.opts.TaskGroupID,
		Metadata: taskcluster.Metadata{
			Owner:  b.opts.Repo.HeadUserEmail,
			Source: b.opts.Repo.HeadRepoURL,
		},
		Payload: taskcluster.Payload{
			MaxRunTime: d.MaxRunTime,
		},
	}
	if spec.MaxRunTime > 0 {
		def.Payload.MaxRunTime = spec.MaxRunTime
	}
	if task.IndexKey != "" {
		ns := index.RepoNamespace(b.opts.Repo.HeadUser, b.opts.Repo.HeadRepoName)
		def.Routes = []string{fmt.Sprintf("index.%s.%s", ns, task.IndexKey)}
	}
	return def, nil
}

// checkRefs verifies the handles of a Spec before anything is looked up.
func (b *Builder) checkRefs(spec *Spec) error {
	fail := func(field string, err error) error {
		return &ConfigError{Task: spec.Name, Field: field, Err: err}
	}

	if _, dup := b.byName[spec.Name]; dup {
		return fail("name", errors.New("a task with this name is already declared"))
	}

	singleArtifact := func(field string, h resolver.Handle) (*Task, error) {
		t, ok := b.Task(h)
		if !ok {
			return nil, fail(field, &resolver.RefError{Ref: resolver.ID(h), Reason: "no such task has been declared"})
		}
		if len(t.Artifacts) != 1 {
			return nil, fail(field, fmt.Errorf("task %q must declare exactly one artifact, it declares %d", t.Name, len(t.Artifacts)))
		}
		return t, nil
	}

	if spec.Image.Task != nil {
		if _, err := singleArtifact("image", *spec.Image.Task); err != nil {
			return err
		}
	}
	for _, h := range spec.Mounts {
		t, err := singleArtifact("mounts", h)
		if err != nil {
			return err
		}
		if _, err := mountFormat(t.Artifacts[0]); err != nil {
			return fail("mounts", err)
		}
	}
	for _, h := range spec.DependsOn {
		if _, ok := b.Task(h); !ok {
			return fail("depends_on", &resolver.RefError{Ref: resolver.ID(h), Reason: "no such task has been declared"})
		}
	}
	return nil
}
