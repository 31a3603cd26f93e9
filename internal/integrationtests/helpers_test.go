package integration_tests

import (
	"context"
	"testing"

	"github.com/digideskio/git-cinnabar/internal/taskcluster"
	"github.com/digideskio/git-cinnabar/internal/testutil"
	"github.com/stretchr/testify/require"
)

const cinnabarHCL = `
docker {
  dir = "../docker"
}

task "hg" {
  for_each    = ["4.3", "4.4"]
  description = "hg ${each.key}"
  index       = "hg.${each.key}"
  image       = image["build"]
  command     = ["build-hg.sh", each.value]
  artifact    = "/tmp/mercurial-${each.key}.tar.gz"
}

task "git" {
  description = "git v2.14.1"
  index       = "git.v2.14.1"
  image       = image["build"]
  command     = ["build-git.sh", "v2.14.1"]
  artifact    = "/tmp/git.tar.gz"
}

task "test" {
  for_each    = task.hg
  description = "test hg ${each.key} ${github.head_sha}"
  image       = image["build"]
  command     = ["run-tests.sh", each.value.artifact, task.git.artifact]
}
`

func cinnabarFiles() map[string]string {
	return map[string]string{
		".taskcluster/decision.hcl":      cinnabarHCL,
		"docker/docker-base/Dockerfile":  "FROM debian:stretch\n",
		"docker/docker-build/Dockerfile": "FROM ${REPO_NAME}-base\nRUN apt-get install -y make gcc\n",
	}
}

type queuedTask struct {
	ID   string
	Task *taskcluster.Task
}

// queued returns the tasks of the fake queue keyed by their metadata name.
func queued(t *testing.T, q *testutil.FakeQueue) map[string]queuedTask {
	t.Helper()
	out := make(map[string]queuedTask)
	for _, id := range q.Store.TaskIDs() {
		task, ok := q.Store.GetTask(context.Background(), id)
		require.True(t, ok)
		out[task.Metadata.Name] = queuedTask{ID: id, Task: task}
	}
	return out
}
