package buildctx

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/digideskio/git-cinnabar/internal/ctxlog"
)

const (
	// DirPrefix marks a directory as a build context.
	DirPrefix = "docker-"
	// DefaultRepoPrefix is how a Dockerfile names an image built from
	// another context of the same repository.
	DefaultRepoPrefix = "${REPO_NAME}-"
)

// Load scans dir for build context directories and returns their registry.
// repoPrefix is the image name prefix identifying a base built from another
// context; an empty value means DefaultRepoPrefix.
func Load(ctx context.Context, dir, repoPrefix string) (*Registry, error) {
	logger := ctxlog.FromContext(ctx)
	if repoPrefix == "" {
		repoPrefix = DefaultRepoPrefix
	}
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read build context directory %s: %w", dir, err)
	}

	leaves := make(map[string]string)
	bases := make(map[string]string)
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), DirPrefix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		name := strings.TrimPrefix(entry.Name(), DirPrefix)

		base, err := readBase(filepath.Join(path, "Dockerfile"), repoPrefix)
		if err != nil {
			return nil, fmt.Errorf("build context %q: %w", name, err)
		}
		if base != "" {
			bases[name] = base
		}

		h, err := TreeHash(path)
		if err != nil {
			return nil, fmt.Errorf("build context %q: %w", name, err)
		}
		leaves[name] = h
		logger.Debug("Build context hashed.", "context", name, "leaf_hash", h, "base", base)
	}

	reg, err := New(leaves, bases)
	if err != nil {
		return nil, err
	}
	logger.Debug("Build context registry loaded.", "dir", dir, "contexts", reg.Names())
	return reg, nil
}

// readBase returns the base context named by the Dockerfile's FROM line, or
// "" when the image derives from something outside the repository.
func readBase(dockerfile, repoPrefix string) (string, error) {
	f, err := os.Open(dockerfile)
	if err != nil {
		return "", fmt.Errorf("failed to open Dockerfile: %w", err)
	}
	defer f.Close()

	var from []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "FROM ") {
			from = append(from, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read Dockerfile: %w", err)
	}

	switch len(from) {
	case 0:
		return "", nil
	case 1:
	default:
		return "", fmt.Errorf("%s has %d FROM lines, expected at most one", dockerfile, len(from))
	}

	fields := strings.Fields(strings.TrimPrefix(from[0], "FROM "))
	if len(fields) == 0 {
		return "", fmt.Errorf("%s has an empty FROM line", dockerfile)
	}
	image := fields[0]
	if !strings.HasPrefix(image, repoPrefix) {
		return "", nil
	}
	return strings.TrimPrefix(image, repoPrefix), nil
}
