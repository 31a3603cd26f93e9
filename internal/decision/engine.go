package decision

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/digideskio/git-cinnabar/internal/buildctx"
	"github.com/digideskio/git-cinnabar/internal/builder"
	"github.com/digideskio/git-cinnabar/internal/config"
	"github.com/digideskio/git-cinnabar/internal/ctxlog"
	"github.com/digideskio/git-cinnabar/internal/dag"
	"github.com/digideskio/git-cinnabar/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Options configure an Engine.
type Options struct {
	// Images are the image task options used unless the model's docker block
	// overrides them.
	Images builder.ImageOptions
}

// Engine declares the tasks of a model on a builder.
type Engine struct {
	builder *builder.Builder
	opts    Options
	// tasks and images hold the values of declared tasks as seen by
	// expressions, keyed by declaration and build context name.
	tasks  map[string]cty.Value
	images map[string]cty.Value
}

// New creates an Engine declaring tasks on b.
func New(b *builder.Builder, opts Options) *Engine {
	return &Engine{
		builder: b,
		opts:    opts,
		tasks:   make(map[string]cty.Value),
		images:  make(map[string]cty.Value),
	}
}

// Run declares the image tasks of model, then its task declarations in
// dependency order. It stops at the first error.
func (e *Engine) Run(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)

	if model.Docker != nil {
		reg, err := LoadRegistry(ctx, model.Docker)
		if err != nil {
			return err
		}
		handles, err := e.builder.AddImages(ctx, reg, e.ImageOptions(model.Docker))
		if err != nil {
			return err
		}
		for name, h := range handles {
			t, _ := e.builder.Task(h)
			e.images[name] = taskObject(t)
		}
		logger.Info("Image tasks declared.", "count", len(handles))
	}

	decls, err := dag.Order(ctx, model)
	if err != nil {
		return err
	}
	for _, decl := range decls {
		if err := e.declare(ctx, decl); err != nil {
			return err
		}
	}
	logger.Info("Decision graph built.", "tasks", e.builder.Len())
	return nil
}

// LoadRegistry scans the build contexts of a docker block.
func LoadRegistry(ctx context.Context, docker *config.Docker) (*buildctx.Registry, error) {
	return buildctx.Load(ctx, docker.Dir, docker.RepoPrefix)
}

// ImageOptions merges the docker block into the engine's image options.
func (e *Engine) ImageOptions(docker *config.Docker) builder.ImageOptions {
	opts := e.opts.Images
	if docker == nil {
		return opts
	}
	if docker.ProvisionerID != "" {
		opts.ProvisionerID = docker.ProvisionerID
	}
	if docker.WorkerType != "" {
		opts.WorkerType = docker.WorkerType
	}
	if docker.WorkerImage != "" {
		opts.WorkerImage = docker.WorkerImage
	}
	if len(docker.Command) > 0 {
		opts.Command = docker.Command
	}
	if docker.ArtifactDir != "" {
		opts.ArtifactDir = docker.ArtifactDir
	}
	if docker.ExpiresIn != "" {
		opts.ExpiresIn = docker.ExpiresIn
	}
	if len(docker.Env) > 0 {
		env := make(map[string]string, len(opts.Env)+len(docker.Env))
		maps.Copy(env, opts.Env)
		maps.Copy(env, docker.Env)
		opts.Env = env
	}
	return opts
}

// declare adds the task, or the tasks, of one declaration.
func (e *Engine) declare(ctx context.Context, decl *config.TaskDecl) error {
	logger := ctxlog.FromContext(ctx).With("task", decl.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	if decl.ForEach == nil {
		t, err := e.add(ctx, decl, nodeid.Task(decl.Name).String(), nil)
		if err != nil {
			return err
		}
		e.tasks[decl.Name] = taskObject(t)
		return nil
	}

	instances, err := e.instances(ctx, decl)
	if err != nil {
		return &builder.ConfigError{Task: decl.Name, Field: config.AttrForEach, Err: err}
	}
	logger.Debug("Expanding for_each.", "instances", len(instances))

	objects := make(map[string]cty.Value, len(instances))
	for _, inst := range instances {
		t, err := e.add(ctx, decl, nodeid.Instance(decl.Name, inst.key).String(), &inst)
		if err != nil {
			return err
		}
		objects[inst.key] = taskObject(t)
	}
	e.tasks[decl.Name] = objectOrEmpty(objects)
	return nil
}

func (e *Engine) add(ctx context.Context, decl *config.TaskDecl, name string, each *instance) (*builder.Task, error) {
	ev := &evaluator{
		decl:    decl,
		name:    name,
		evalCtx: e.buildEvalContext(ctx, name, each),
	}
	spec, err := ev.spec()
	if err != nil {
		return nil, err
	}
	h, err := e.builder.Add(ctx, spec)
	if err != nil {
		return nil, err
	}
	t, _ := e.builder.Task(h)
	return t, nil
}

// instances evaluates for_each. Lists and sets of strings use each element
// as both key and value; maps and objects use their keys.
func (e *Engine) instances(ctx context.Context, decl *config.TaskDecl) ([]instance, error) {
	val, diags := decl.ForEach.Value(e.buildEvalContext(ctx, decl.Name, nil))
	if diags.HasErrors() {
		return nil, diags
	}
	raw, marks := val.Unmark()
	if raw.IsNull() {
		return nil, errors.New("must not be null")
	}
	if !raw.IsWhollyKnown() {
		return nil, errors.New("value is not known")
	}

	ty := raw.Type()
	var out []instance
	switch {
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		seen := make(map[string]bool)
		for it := raw.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			plain, _ := elem.UnmarkDeep()
			key, err := convert.Convert(plain, cty.String)
			if err != nil || key.IsNull() {
				return nil, fmt.Errorf("list elements must be strings, got %s", plain.Type().FriendlyName())
			}
			k := key.AsString()
			if seen[k] {
				return nil, fmt.Errorf("duplicate key %q", k)
			}
			seen[k] = true
			out = append(out, instance{key: k, value: elem.WithMarks(marks)})
		}
	case ty.IsMapType() || ty.IsObjectType():
		for it := raw.ElementIterator(); it.Next(); {
			k, elem := it.Element()
			out = append(out, instance{key: k.AsString(), value: elem.WithMarks(marks)})
		}
	default:
		return nil, fmt.Errorf("must be a list, set or map, got %s", ty.FriendlyName())
	}
	return out, nil
}
