package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/digideskio/git-cinnabar/internal/config"
	"github.com/digideskio/git-cinnabar/internal/ctxlog"
	"github.com/digideskio/git-cinnabar/internal/fsutil"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Extension is the file extension of decision files.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load orchestrates the entire HCL configuration loading process. Paths may
// be files or directories; directories are searched recursively for .hcl
// files. Tasks keep the order they are found in.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Docker {
			if model.Docker != nil {
				return nil, fmt.Errorf("%s: duplicate docker block", block.DeclRange)
			}
			model.Docker = l.translateDocker(ctx, block, filepath.Dir(file))
		}
		for _, block := range root.Tasks {
			decl, err := l.translateTask(ctx, block)
			if err != nil {
				return nil, err
			}
			model.Tasks = append(model.Tasks, decl)
		}
	}

	logger.Debug("HCL loading complete.", "tasks", len(model.Tasks), "docker", model.Docker != nil)
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found, each once.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(files ...string) {
		for _, f := range files {
			if _, wasSeen := seen[f]; !wasSeen {
				allFiles = append(allFiles, f)
				seen[f] = struct{}{}
			}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			files, err := fsutil.FindFilesByExtension(path, Extension)
			if err != nil {
				return nil, fmt.Errorf("error searching %s: %w", path, err)
			}
			add(files...)
		} else if filepath.Ext(path) == Extension {
			add(path)
		}
	}
	return allFiles, nil
}
