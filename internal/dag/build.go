package dag

import (
	"context"
	"fmt"

	"github.com/digideskio/git-cinnabar/internal/config"
	"github.com/digideskio/git-cinnabar/internal/ctxlog"
)

// Order returns the task declarations of model sorted so that each one comes
// after every declaration it references.
func Order(ctx context.Context, model *config.Model) ([]*config.TaskDecl, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Ordering task declarations.", "count", len(model.Tasks))

	g, err := Build(ctx, model)
	if err != nil {
		return nil, err
	}

	names, err := g.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("task declarations: %w", err)
	}

	ordered := make([]*config.TaskDecl, 0, len(names))
	for _, name := range names {
		decl, _ := model.Task(name)
		ordered = append(ordered, decl)
		logger.Debug("Task declaration ordered.", "task", name, "references", g.dependencies(name))
	}
	logger.Debug("Task declarations ordered.", "order", names)
	return ordered, nil
}

// Build creates the reference graph of model's task declarations.
func Build(ctx context.Context, model *config.Model) (*Graph, error) {
	g := New()
	if err := createNodes(model, g); err != nil {
		return nil, err
	}
	if err := linkNodes(ctx, model, g); err != nil {
		return nil, err
	}
	return g, nil
}

func createNodes(model *config.Model, g *Graph) error {
	seen := make(map[string]*config.TaskDecl, len(model.Tasks))
	for _, decl := range model.Tasks {
		if prev, dup := seen[decl.Name]; dup {
			return fmt.Errorf("%s: task %q is already declared at %s", decl.DeclRange, decl.Name, prev.DeclRange)
		}
		seen[decl.Name] = decl
		g.AddNode(decl.Name)
	}
	return nil
}

// linkNodes adds an edge for every `task.<name>` traversal found in a
// declaration's expressions.
func linkNodes(ctx context.Context, model *config.Model, g *Graph) error {
	baseLogger := ctxlog.FromContext(ctx)
	for _, decl := range model.Tasks {
		logger := baseLogger.With("task", decl.Name)
		for _, expr := range decl.Expressions() {
			for _, traversal := range expr.Variables() {
				name, ok, err := parseTaskTraversal(traversal)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				if name == decl.Name {
					return fmt.Errorf("%s: task %q references itself", traversal.SourceRange(), decl.Name)
				}
				if _, found := model.Task(name); !found {
					return fmt.Errorf("%s: task %q references undeclared task %q", traversal.SourceRange(), decl.Name, name)
				}
				logger.Debug("Found task reference.", "traversal", formatTraversal(traversal), "depends_on", name)
				if err := g.AddEdge(name, decl.Name); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
