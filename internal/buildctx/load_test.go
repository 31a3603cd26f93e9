package buildctx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("discovers contexts and their bases", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{
			"docker-base/Dockerfile":  "FROM debian:stretch\nRUN apt-get update\n",
			"docker-build/Dockerfile": "FROM ${REPO_NAME}-base\nRUN make\n",
			"docker-build/setup.sh":   "echo setup\n",
			"docker-test/Dockerfile":  "FROM ${REPO_NAME}-build\n",
			"not-docker/Dockerfile":   "FROM scratch\n",
			"docker-file":             "not a directory",
			"decision.hcl":            "",
		})

		reg, err := Load(context.Background(), dir, "")
		require.NoError(t, err)

		assert.Equal(t, []string{"base", "build", "test"}, reg.Names())
		base, ok := reg.Base("build")
		assert.True(t, ok)
		assert.Equal(t, "base", base)
		_, ok = reg.Base("base")
		assert.False(t, ok)

		leaf, err := reg.LeafHash("build")
		require.NoError(t, err)
		want, err := TreeHash(filepath.Join(dir, "docker-build"))
		require.NoError(t, err)
		assert.Equal(t, want, leaf)
	})

	t.Run("custom repository prefix", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{
			"docker-base/Dockerfile":  "FROM debian\n",
			"docker-build/Dockerfile": "FROM cinnabar-base\n",
		})

		reg, err := Load(context.Background(), dir, "cinnabar-")
		require.NoError(t, err)
		base, ok := reg.Base("build")
		assert.True(t, ok)
		assert.Equal(t, "base", base)
	})

	t.Run("multiple FROM lines are rejected", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{
			"docker-multi/Dockerfile": "FROM debian AS a\nFROM debian AS b\n",
		})

		_, err := Load(context.Background(), dir, "")
		assert.ErrorContains(t, err, "2 FROM lines")
	})

	t.Run("missing Dockerfile", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"docker-empty/README": "x"})

		_, err := Load(context.Background(), dir, "")
		assert.ErrorContains(t, err, `build context "empty"`)
	})

	t.Run("base cycle through Dockerfiles", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{
			"docker-a/Dockerfile": "FROM ${REPO_NAME}-b\n",
			"docker-b/Dockerfile": "FROM ${REPO_NAME}-a\n",
		})

		_, err := Load(context.Background(), dir, "")
		var cycleErr *CycleError
		assert.ErrorAs(t, err, &cycleErr)
	})
}
