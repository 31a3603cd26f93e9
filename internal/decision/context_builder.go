package decision

import (
	"context"

	"github.com/digideskio/git-cinnabar/internal/builder"
	"github.com/digideskio/git-cinnabar/internal/ctxlog"
	"github.com/digideskio/git-cinnabar/internal/resolver"
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// instance is the `each` object of one for_each instance.
type instance struct {
	key   string
	value cty.Value
}

// functions are available to every expression.
var functions = map[string]function.Function{
	"concat":    stdlib.ConcatFunc,
	"contains":  stdlib.ContainsFunc,
	"format":    stdlib.FormatFunc,
	"join":      stdlib.JoinFunc,
	"keys":      stdlib.KeysFunc,
	"length":    stdlib.LengthFunc,
	"lower":     stdlib.LowerFunc,
	"replace":   stdlib.ReplaceFunc,
	"split":     stdlib.SplitFunc,
	"trimspace": stdlib.TrimSpaceFunc,
	"upper":     stdlib.UpperFunc,
	"values":    stdlib.ValuesFunc,
}

// githubObject exposes the repository identity as `github.*`.
func githubObject(repo builder.Repo) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"head_user":       cty.StringVal(repo.HeadUser),
		"head_user_email": cty.StringVal(repo.HeadUserEmail),
		"head_repo_name":  cty.StringVal(repo.HeadRepoName),
		"head_repo_url":   cty.StringVal(repo.HeadRepoURL),
		"head_sha":        cty.StringVal(repo.HeadSHA),
		"head_branch":     cty.StringVal(repo.HeadBranch),
		"base_user":       cty.StringVal(repo.BaseUser),
		"base_repo_name":  cty.StringVal(repo.BaseRepoName),
	})
}

// taskObject is the value other declarations see for a declared task. The
// object and each of its computed fields are marked with where they come
// from.
func taskObject(t *builder.Task) cty.Value {
	h := t.Handle

	artifacts := cty.ListValEmpty(cty.String)
	if len(t.Artifacts) > 0 {
		vals := make([]cty.Value, len(t.Artifacts))
		for i, url := range t.Artifacts {
			vals[i] = cty.StringVal(url).Mark(refMark{resolver.ArtifactAt(h, i)})
		}
		artifacts = cty.ListVal(vals)
	}

	artifact := cty.NullVal(cty.String)
	if len(t.Artifacts) == 1 {
		artifact = cty.StringVal(t.Artifacts[0]).Mark(refMark{resolver.Artifact(h)})
	}

	return cty.ObjectVal(map[string]cty.Value{
		"id":        cty.StringVal(t.ID).Mark(refMark{resolver.ID(h)}),
		"name":      cty.StringVal(t.Name),
		"index":     cty.StringVal(t.IndexKey),
		"artifact":  artifact,
		"artifacts": artifacts,
	}).Mark(taskMark{h})
}

func objectOrEmpty(attrs map[string]cty.Value) cty.Value {
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

// buildEvalContext creates the HCL evaluation context for one declaration,
// or for one of its instances when each is set.
func (e *Engine) buildEvalContext(ctx context.Context, name string, each *instance) *hcl.EvalContext {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building HCL evaluation context.", "task", name, "tasks", len(e.tasks), "images", len(e.images))

	vars := map[string]cty.Value{
		"github":        githubObject(e.builder.Repo()),
		"task_group_id": cty.StringVal(e.builder.TaskGroupID()),
		"task":          objectOrEmpty(e.tasks),
		"image":         objectOrEmpty(e.images),
	}
	if each != nil {
		vars["each"] = cty.ObjectVal(map[string]cty.Value{
			"key":   cty.StringVal(each.key),
			"value": each.value,
		})
	}
	return &hcl.EvalContext{Variables: vars, Functions: functions}
}
