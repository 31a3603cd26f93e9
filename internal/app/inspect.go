package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/digideskio/git-cinnabar/internal/builder"
	"github.com/digideskio/git-cinnabar/internal/ctxlog"
	"github.com/digideskio/git-cinnabar/internal/decision"
	"github.com/digideskio/git-cinnabar/internal/nodeid"
)

// ImageInfo describes one build context.
type ImageInfo struct {
	Name     string
	Base     string
	LeafHash string
	Hash     string
}

// Images lists the build contexts of the docker block, bases first.
func (a *App) Images(ctx context.Context) ([]ImageInfo, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	model, err := a.loadModel(ctx)
	if err != nil {
		return nil, err
	}
	if model.Docker == nil {
		return nil, errors.New("no docker block declared")
	}

	reg, err := decision.LoadRegistry(ctx, model.Docker)
	if err != nil {
		return nil, err
	}

	var infos []ImageInfo
	for name := range reg.All() {
		leaf, err := reg.LeafHash(name)
		if err != nil {
			return nil, err
		}
		hash, err := reg.Resolve(name)
		if err != nil {
			return nil, err
		}
		base, _ := reg.Base(name)
		infos = append(infos, ImageInfo{Name: name, Base: base, LeafHash: leaf, Hash: hash})
	}
	return infos, nil
}

// Show builds the decision graph and returns one task, selected by name or,
// when name is empty, by a prefix of its index key.
func (a *App) Show(ctx context.Context, name, indexPrefix string) (*builder.Task, error) {
	if (name == "") == (indexPrefix == "") {
		return nil, errors.New("exactly one of a task name or an index prefix is required")
	}

	var addr nodeid.Address
	if name != "" {
		var err error
		if addr, err = nodeid.Parse(name); err != nil {
			return nil, err
		}
	}

	b, err := a.Build(ctx)
	if err != nil {
		return nil, err
	}
	if indexPrefix != "" {
		return b.ByIndexPrefix(indexPrefix)
	}

	h, ok := b.ByName(addr.String())
	if !ok {
		return nil, fmt.Errorf("no task named %q", addr)
	}
	task, _ := b.Task(h)
	return task, nil
}
