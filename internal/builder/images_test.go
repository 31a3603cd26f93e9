package builder

import (
	"context"
	"testing"
	"time"

	"github.com/digideskio/git-cinnabar/internal/buildctx"
	"github.com/digideskio/git-cinnabar/internal/taskcluster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddImages(t *testing.T) {
	t.Parallel()

	reg, err := buildctx.New(
		map[string]string{"base": "1111", "build": "2222", "test": "3333"},
		map[string]string{"build": "base", "test": "build"},
	)
	require.NoError(t, err)
	buildHash, err := reg.Resolve("build")
	require.NoError(t, err)

	b, finder := newTestBuilder(t, map[string]*taskcluster.IndexedTask{
		"github.glandium.git-cinnabar.docker-image.1111": {
			TaskID:  "base-image",
			Expires: now.Add(30 * 24 * time.Hour).Format(time.RFC3339Nano),
		},
	})

	handles, err := b.AddImages(context.Background(), reg, ImageOptions{})
	require.NoError(t, err)
	require.Len(t, handles, 3)
	assert.Len(t, finder.calls, 3)

	var names []string
	for _, task := range b.Tasks() {
		names = append(names, task.Name)
	}
	assert.Equal(t, []string{"image.base", "image.build", "image.test"}, names)

	base, _ := b.Task(handles["base"])
	assert.True(t, base.Reused)
	assert.Equal(t, []string{
		"clone-and-exec.sh", ".taskcluster/docker-image.sh", "base",
	}, base.Definition.Payload.Command)

	build, _ := b.Task(handles["build"])
	assert.False(t, build.Reused)
	assert.Equal(t, "docker-image."+buildHash, build.IndexKey)
	def := build.Definition
	assert.Equal(t, "docker image: build", def.Metadata.Description)
	assert.Equal(t, "test-dummy-provisioner", def.ProvisionerID)
	assert.Equal(t, "dummy-worker-packet", def.WorkerType)
	assert.Equal(t, []string{
		"clone-and-exec.sh", ".taskcluster/docker-image.sh", "build",
		"https://queue.taskcluster.net/v1/task/base-image/artifacts/public/git-cinnabar-base.tar.zst",
	}, def.Payload.Command)
	assert.Equal(t, map[string]string{
		"REPOSITORY":            "https://github.com/glandium/git-cinnabar",
		"REVISION":              "abc123",
		"GITHUB_HEAD_REPO_NAME": "git-cinnabar",
	}, def.Payload.Env)
	assert.True(t, def.Payload.Artifacts.AsList)
	assert.Equal(t, "/tmp/git-cinnabar-build.tar.zst", def.Payload.Artifacts.Entries[0].Path)
	assert.Equal(t, []string{"base-image", "group"}, def.Dependencies)

	test, _ := b.Task(handles["test"])
	assert.Contains(t, test.Definition.Dependencies, build.ID)
}

func TestAddImages_Overrides(t *testing.T) {
	t.Parallel()

	reg, err := buildctx.New(map[string]string{"lint": "abcd"}, nil)
	require.NoError(t, err)
	b, _ := newTestBuilder(t, nil)

	handles, err := b.AddImages(context.Background(), reg, ImageOptions{
		WorkerType:  "docker-worker",
		Command:     []string{"build-image.sh"},
		ArtifactDir: "/builds",
		Env:         map[string]string{"REVISION": "override", "EXTRA": "1"},
	})
	require.NoError(t, err)

	task, _ := b.Task(handles["lint"])
	def := task.Definition
	assert.Equal(t, "docker-worker", def.WorkerType)
	assert.False(t, def.Payload.Artifacts.AsList)
	assert.Equal(t, []string{"build-image.sh", "lint"}, def.Payload.Command)
	assert.Equal(t, "override", def.Payload.Env["REVISION"])
	assert.Equal(t, "1", def.Payload.Env["EXTRA"])
	assert.Equal(t, "/builds/git-cinnabar-lint.tar.zst", def.Payload.Artifacts.Entries[0].Path)
}
