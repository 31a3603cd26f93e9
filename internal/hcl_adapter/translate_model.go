// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/digideskio/git-cinnabar/internal/config"
	"github.com/digideskio/git-cinnabar/internal/ctxlog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// translateTask converts the HCL-specific task schema into the agnostic model.
func (l *Loader) translateTask(ctx context.Context, t *taskBlock) (*config.TaskDecl, error) {
	logger := ctxlog.FromContext(ctx).With("task", t.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	if !hclsyntax.ValidIdentifier(t.Name) {
		return nil, fmt.Errorf("%s: invalid task name %q: must be a valid identifier", t.DeclRange, t.Name)
	}

	logger.Debug("Translating HCL task to internal config model.")

	decl := &config.TaskDecl{
		Name:      t.Name,
		Attrs:     make(map[string]hcl.Expression),
		DeclRange: t.DeclRange,
	}
	if isExprDefined(ctx, t.ForEach, config.AttrForEach) {
		logger.Debug("`for_each` attribute is defined. Marking task as instanced.")
		decl.ForEach = t.ForEach
	}

	attrs := map[string]hcl.Expression{
		config.AttrDescription:   t.Description,
		config.AttrIndex:         t.Index,
		config.AttrExpiresIn:     t.ExpiresIn,
		config.AttrProvisionerID: t.ProvisionerID,
		config.AttrWorkerType:    t.WorkerType,
		config.AttrMaxRunTime:    t.MaxRunTime,
		config.AttrImage:         t.Image,
		config.AttrCommand:       t.Command,
		config.AttrEnv:           t.Env,
		config.AttrArtifact:      t.Artifact,
		config.AttrArtifacts:     t.Artifacts,
		config.AttrScopes:        t.Scopes,
		config.AttrMounts:        t.Mounts,
		config.AttrDependsOn:     t.DependsOn,
	}
	for name, expr := range attrs {
		if isExprDefined(ctx, expr, name) {
			decl.Attrs[name] = expr
		}
	}
	return decl, nil
}

// translateDocker converts the docker block. A relative dir is resolved
// against the directory of the declaring file.
func (l *Loader) translateDocker(ctx context.Context, d *dockerBlock, fileDir string) *config.Docker {
	dir := d.Dir
	if dir == "" {
		dir = fileDir
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(fileDir, dir)
	}
	ctxlog.FromContext(ctx).Debug("Translating HCL docker block.", "dir", dir)

	return &config.Docker{
		Dir:           dir,
		RepoPrefix:    d.RepoPrefix,
		ProvisionerID: d.ProvisionerID,
		WorkerType:    d.WorkerType,
		WorkerImage:   d.WorkerImage,
		Command:       d.Command,
		ArtifactDir:   d.ArtifactDir,
		ExpiresIn:     d.ExpiresIn,
		Env:           d.Env,
	}
}
