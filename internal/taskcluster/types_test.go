package taskcluster

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2017, 6, 1, 12, 30, 45, 123456789, time.UTC)
	assert.Equal(t, "2017-06-01T12:30:45Z", FormatTime(ts))

	paris := time.FixedZone("CEST", 2*3600)
	assert.Equal(t, "2017-06-01T10:30:45Z", FormatTime(time.Date(2017, 6, 1, 12, 30, 45, 0, paris)))
}

func TestImage_JSON(t *testing.T) {
	t.Parallel()

	t.Run("plain reference", func(t *testing.T) {
		data, err := json.Marshal(Image{Ref: "ubuntu:16.04"})
		require.NoError(t, err)
		assert.JSONEq(t, `"ubuntu:16.04"`, string(data))

		var back Image
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, Image{Ref: "ubuntu:16.04"}, back)
	})

	t.Run("task image", func(t *testing.T) {
		img := Image{Path: "public/git-cinnabar-build.tar.zst", TaskID: "abc"}
		data, err := json.Marshal(img)
		require.NoError(t, err)
		assert.JSONEq(t, `{"path":"public/git-cinnabar-build.tar.zst","taskId":"abc","type":"task-image"}`, string(data))

		var back Image
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, img, back)
	})
}

func TestArtifacts_JSON(t *testing.T) {
	t.Parallel()

	entries := []Artifact{
		{Name: "public/git-cinnabar-helper", Path: "/tmp/git-cinnabar/git-cinnabar-helper", Type: "file"},
		{Name: "public/coverage.tar.xz", Path: "/tmp/git-cinnabar/coverage.tar.xz", Type: "file"},
	}

	t.Run("map form", func(t *testing.T) {
		data, err := json.Marshal(Artifacts{Entries: entries})
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"public/git-cinnabar-helper": {"path": "/tmp/git-cinnabar/git-cinnabar-helper", "type": "file"},
			"public/coverage.tar.xz": {"path": "/tmp/git-cinnabar/coverage.tar.xz", "type": "file"}
		}`, string(data))

		var back Artifacts
		require.NoError(t, json.Unmarshal(data, &back))
		assert.False(t, back.AsList)
		assert.ElementsMatch(t, entries, back.Entries)
	})

	t.Run("list form", func(t *testing.T) {
		data, err := json.Marshal(Artifacts{AsList: true, Entries: entries})
		require.NoError(t, err)
		assert.JSONEq(t, `[
			{"name": "public/git-cinnabar-helper", "path": "/tmp/git-cinnabar/git-cinnabar-helper", "type": "file"},
			{"name": "public/coverage.tar.xz", "path": "/tmp/git-cinnabar/coverage.tar.xz", "type": "file"}
		]`, string(data))

		var back Artifacts
		require.NoError(t, json.Unmarshal(data, &back))
		if diff := cmp.Diff(Artifacts{AsList: true, Entries: entries}, back); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestTask_OmitsEmptyPayloadParts(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Task{Dependencies: []string{"group"}})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "routes")
	assert.NotContains(t, raw, "scopes")
	assert.Equal(t, map[string]any{"maxRunTime": float64(0)}, raw["payload"])
}

func TestEndpoints(t *testing.T) {
	t.Parallel()

	inTask := DefaultEndpoints(true)
	assert.Equal(t, "http://taskcluster/index/v1/task/github.glandium.git-cinnabar.helper", inTask.IndexTaskURL("github.glandium.git-cinnabar.helper"))
	assert.Equal(t, "http://taskcluster/queue/v1/task/abc", inTask.QueueTaskURL("abc"))

	outside := DefaultEndpoints(false)
	assert.Equal(t, "https://index.taskcluster.net/v1/task/ns", outside.IndexTaskURL("ns"))
	assert.Equal(t,
		"https://queue.taskcluster.net/v1/task/abc/artifacts/public/git-2.14.1.tar.xz",
		outside.ArtifactURL("abc", "/tmp/git-2.14.1.tar.xz"))

	custom := Endpoints{Index: "http://localhost:8080/index/v1/", Queue: "http://localhost:8080/queue/v1/", Artifacts: "http://localhost:8080/queue/v1"}
	assert.Equal(t, "http://localhost:8080/index/v1/task/ns", custom.IndexTaskURL("ns"))
	assert.Equal(t, "http://localhost:8080/queue/v1/task/abc", custom.QueueTaskURL("abc"))
}
