package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Attribute names of a task declaration.
const (
	AttrForEach       = "for_each"
	AttrDescription   = "description"
	AttrIndex         = "index"
	AttrExpiresIn     = "expires_in"
	AttrProvisionerID = "provisioner_id"
	AttrWorkerType    = "worker_type"
	AttrMaxRunTime    = "max_run_time"
	AttrImage         = "image"
	AttrCommand       = "command"
	AttrEnv           = "env"
	AttrArtifact      = "artifact"
	AttrArtifacts     = "artifacts"
	AttrScopes        = "scopes"
	AttrMounts        = "mounts"
	AttrDependsOn     = "depends_on"
)

// Loader reads decision graph definitions from the given paths.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Model is the complete decision graph definition.
type Model struct {
	// Docker configures the image tasks built from build contexts. It is nil
	// when no image tasks are wanted.
	Docker *Docker
	// Tasks are in declaration order.
	Tasks []*TaskDecl
}

// Task returns the declaration named name.
func (m *Model) Task(name string) (*TaskDecl, bool) {
	for _, t := range m.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Docker describes where build contexts live and how their images are
// built. Empty fields take the builder's defaults.
type Docker struct {
	// Dir holds the docker-<name> directories. A relative path is relative to
	// the directory of the file declaring it.
	Dir           string
	RepoPrefix    string
	ProvisionerID string
	WorkerType    string
	WorkerImage   string
	Command       []string
	ArtifactDir   string
	ExpiresIn     string
	Env           map[string]string
}

// TaskDecl is one task block. With ForEach set, it declares one task per
// element of the collection ForEach evaluates to.
type TaskDecl struct {
	Name    string
	ForEach hcl.Expression
	// Attrs holds only the attributes present in the source, keyed by the
	// Attr* constants.
	Attrs     map[string]hcl.Expression
	DeclRange hcl.Range
}

// Expressions returns every expression of the declaration, for dependency
// analysis.
func (d *TaskDecl) Expressions() []hcl.Expression {
	exprs := make([]hcl.Expression, 0, len(d.Attrs)+1)
	if d.ForEach != nil {
		exprs = append(exprs, d.ForEach)
	}
	for _, name := range AttrOrder {
		if expr, ok := d.Attrs[name]; ok {
			exprs = append(exprs, expr)
		}
	}
	return exprs
}

// AttrOrder is the fixed order attributes are evaluated in.
var AttrOrder = []string{
	AttrIndex,
	AttrDescription,
	AttrExpiresIn,
	AttrProvisionerID,
	AttrWorkerType,
	AttrMaxRunTime,
	AttrImage,
	AttrCommand,
	AttrEnv,
	AttrArtifact,
	AttrArtifacts,
	AttrScopes,
	AttrMounts,
	AttrDependsOn,
}
