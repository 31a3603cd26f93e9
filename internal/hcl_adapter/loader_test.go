package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/digideskio/git-cinnabar/internal/config"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestLoader_Load(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"b.hcl": `
			task "test" {
				for_each    = ["a", "b"]
				description = "test ${each.value}"
				command     = ["make", "test"]
				mounts      = [task.build]
			}
		`,
		"a.hcl": `
			docker {
				dir          = "images"
				worker_type  = "builder"
				command      = ["build.sh"]
				env = {
					FOO = "bar"
				}
			}

			task "build" {
				index    = "build.${github.head_sha}"
				artifact = "/tmp/out.tar.gz"
			}
		`,
		"notes.txt": "ignored",
	})

	model, err := NewLoader().Load(context.Background(), root)
	require.NoError(t, err)

	wantDocker := &config.Docker{
		Dir:        filepath.Join(root, "images"),
		WorkerType: "builder",
		Command:    []string{"build.sh"},
		Env:        map[string]string{"FOO": "bar"},
	}
	if diff := cmp.Diff(wantDocker, model.Docker); diff != "" {
		t.Errorf("docker mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, model.Tasks, 2)
	build, test := model.Tasks[0], model.Tasks[1]
	assert.Equal(t, "build", build.Name)
	assert.Nil(t, build.ForEach)
	assert.Equal(t, []string{config.AttrArtifact, config.AttrIndex}, sortedKeys(build.Attrs))

	assert.Equal(t, "test", test.Name)
	assert.NotNil(t, test.ForEach)
	assert.Equal(t, []string{config.AttrCommand, config.AttrDescription, config.AttrMounts}, sortedKeys(test.Attrs))
	assert.Len(t, test.Expressions(), 4)
}

func TestLoader_Load_DockerDirDefaultsToFileDir(t *testing.T) {
	root := writeFiles(t, map[string]string{"sub/d.hcl": `docker {}`})

	model, err := NewLoader().Load(context.Background(), filepath.Join(root, "sub", "d.hcl"))
	require.NoError(t, err)
	require.NotNil(t, model.Docker)
	assert.Equal(t, filepath.Join(root, "sub"), model.Docker.Dir)
}

func TestLoader_Load_MissingPathIsIgnored(t *testing.T) {
	model, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, model.Tasks)
	assert.Nil(t, model.Docker)
}

func TestLoader_Load_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"a.hcl": `task "a" {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown attribute",
			files:   map[string]string{"a.hcl": `task "a" { colour = "red" }`},
			wantErr: "Unsupported argument",
		},
		{
			name:    "unknown block",
			files:   map[string]string{"a.hcl": `step "a" {}`},
			wantErr: "Unsupported block type",
		},
		{
			name:    "invalid task name",
			files:   map[string]string{"a.hcl": `task "not a name" {}`},
			wantErr: `invalid task name "not a name"`,
		},
		{
			name: "duplicate docker block",
			files: map[string]string{
				"a.hcl": `docker {}`,
				"b.hcl": `docker {}`,
			},
			wantErr: "duplicate docker block",
		},
		{
			name:    "docker values must be literals",
			files:   map[string]string{"a.hcl": `docker { dir = github.head_sha }`},
			wantErr: "failed to decode HCL file",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root := writeFiles(t, tc.files)
			_, err := NewLoader().Load(context.Background(), root)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
