package builder

import (
	"context"
	"fmt"
	"maps"
	"path"

	"github.com/digideskio/git-cinnabar/internal/buildctx"
	"github.com/digideskio/git-cinnabar/internal/ctxlog"
	"github.com/digideskio/git-cinnabar/internal/resolver"
)

// ImageOptions describe the tasks building docker images from build
// contexts.
type ImageOptions struct {
	ProvisionerID string            `yaml:"provisioner_id"`
	WorkerType    string            `yaml:"worker_type"`
	WorkerImage   string            `yaml:"worker_image"`
	Command       []string          `yaml:"command"`
	ArtifactDir   string            `yaml:"artifact_dir"`
	ExpiresIn     string            `yaml:"expires_in"`
	Env           map[string]string `yaml:"env"`
}

// DefaultImageOptions returns the options image tasks use unless overridden.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		ProvisionerID: "test-dummy-provisioner",
		WorkerType:    "dummy-worker-packet",
		WorkerImage:   "https://s3-us-west-2.amazonaws.com/public-qemu-images/repository/github.com/taskcluster/taskcluster-worker/ubuntu-worker.tar.zst",
		Command:       []string{"clone-and-exec.sh", ".taskcluster/docker-image.sh"},
		ArtifactDir:   "/tmp",
	}
}

// ImageTaskName is the task name of the image built from a context.
func ImageTaskName(buildContext string) string {
	return "image." + buildContext
}

// AddImages declares one task per build context, bases first. Each task is
// indexed by the context's chain hash, so an image is rebuilt only when its
// context or one of its ancestors changes. A derived image receives its base
// image's artifact URL as last command argument.
func (b *Builder) AddImages(ctx context.Context, reg *buildctx.Registry, opts ImageOptions) (map[string]resolver.Handle, error) {
	logger := ctxlog.FromContext(ctx)
	defaults := DefaultImageOptions()
	if opts.ProvisionerID == "" {
		opts.ProvisionerID = defaults.ProvisionerID
	}
	if opts.WorkerType == "" {
		opts.WorkerType = defaults.WorkerType
	}
	if opts.WorkerImage == "" {
		opts.WorkerImage = defaults.WorkerImage
	}
	if len(opts.Command) == 0 {
		opts.Command = defaults.Command
	}
	if opts.ArtifactDir == "" {
		opts.ArtifactDir = defaults.ArtifactDir
	}

	repo := b.opts.Repo
	env := map[string]resolver.Template{
		"REPOSITORY":            resolver.Text(repo.HeadRepoURL),
		"REVISION":              resolver.Text(repo.HeadSHA),
		"GITHUB_HEAD_REPO_NAME": resolver.Text(repo.HeadRepoName),
	}
	for k, v := range opts.Env {
		env[k] = resolver.Text(v)
	}

	handles := make(map[string]resolver.Handle)
	for name := range reg.All() {
		hash, err := reg.Resolve(name)
		if err != nil {
			return nil, err
		}

		command := make([]resolver.Template, 0, len(opts.Command)+2)
		for _, arg := range opts.Command {
			command = append(command, resolver.Text(arg))
		}
		command = append(command, resolver.Text(name))
		if base, ok := reg.Base(name); ok {
			command = append(command, resolver.Concat(resolver.At(resolver.Artifact(handles[base]))))
		}

		h, err := b.Add(ctx, Spec{
			Name:          ImageTaskName(name),
			Description:   resolver.Text("docker image: " + name),
			ProvisionerID: opts.ProvisionerID,
			WorkerType:    opts.WorkerType,
			Index:         resolver.Text(fmt.Sprintf("docker-image.%s", hash)),
			ExpiresIn:     opts.ExpiresIn,
			Image:         ImageRef(resolver.Text(opts.WorkerImage)),
			Command:       command,
			Env:           maps.Clone(env),
			Artifact:      path.Join(opts.ArtifactDir, fmt.Sprintf("%s-%s.tar.zst", repo.HeadRepoName, name)),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to declare image %q: %w", name, err)
		}
		handles[name] = h
		logger.Debug("Docker image task declared.", "context", name, "hash", hash)
	}
	return handles, nil
}
