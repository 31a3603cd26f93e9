package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any
// file. It has no remain field, so unknown blocks and attributes are errors.
type fileRoot struct {
	Docker []*dockerBlock `hcl:"docker,block"`
	Tasks  []*taskBlock   `hcl:"task,block"`
}

// dockerBlock configures image tasks. All of its values are literals.
type dockerBlock struct {
	Dir           string            `hcl:"dir,optional"`
	RepoPrefix    string            `hcl:"repo_prefix,optional"`
	ProvisionerID string            `hcl:"provisioner_id,optional"`
	WorkerType    string            `hcl:"worker_type,optional"`
	WorkerImage   string            `hcl:"worker_image,optional"`
	Command       []string          `hcl:"command,optional"`
	ArtifactDir   string            `hcl:"artifact_dir,optional"`
	ExpiresIn     string            `hcl:"expires_in,optional"`
	Env           map[string]string `hcl:"env,optional"`
	DeclRange     hcl.Range         `hcl:",def_range"`
}

// taskBlock is a `task "<name>"` block. Its attributes are kept as
// expressions and evaluated later, in dependency order.
type taskBlock struct {
	Name          string         `hcl:"name,label"`
	ForEach       hcl.Expression `hcl:"for_each,optional"`
	Description   hcl.Expression `hcl:"description,optional"`
	Index         hcl.Expression `hcl:"index,optional"`
	ExpiresIn     hcl.Expression `hcl:"expires_in,optional"`
	ProvisionerID hcl.Expression `hcl:"provisioner_id,optional"`
	WorkerType    hcl.Expression `hcl:"worker_type,optional"`
	MaxRunTime    hcl.Expression `hcl:"max_run_time,optional"`
	Image         hcl.Expression `hcl:"image,optional"`
	Command       hcl.Expression `hcl:"command,optional"`
	Env           hcl.Expression `hcl:"env,optional"`
	Artifact      hcl.Expression `hcl:"artifact,optional"`
	Artifacts     hcl.Expression `hcl:"artifacts,optional"`
	Scopes        hcl.Expression `hcl:"scopes,optional"`
	Mounts        hcl.Expression `hcl:"mounts,optional"`
	DependsOn     hcl.Expression `hcl:"depends_on,optional"`
	DeclRange     hcl.Range      `hcl:",def_range"`
}
