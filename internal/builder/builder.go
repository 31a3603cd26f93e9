package builder

import (
	"fmt"
	"time"

	"github.com/digideskio/git-cinnabar/internal/index"
	"github.com/digideskio/git-cinnabar/internal/resolver"
	"github.com/digideskio/git-cinnabar/internal/slugid"
	"github.com/digideskio/git-cinnabar/internal/taskcluster"
)

// Repo is the identity of the repository the decision task runs for.
type Repo struct {
	HeadUser      string `yaml:"head_user"`
	HeadUserEmail string `yaml:"head_user_email"`
	HeadRepoName  string `yaml:"head_repo_name"`
	HeadRepoURL   string `yaml:"head_repo_url"`
	HeadSHA       string `yaml:"head_sha"`
	HeadBranch    string `yaml:"head_branch"`
	BaseUser      string `yaml:"base_user"`
	BaseRepoName  string `yaml:"base_repo_name"`
}

// Namespaces returns the index namespaces for the head and base repositories.
func (r Repo) Namespaces() index.Namespaces {
	return index.Namespaces{
		Head: index.RepoNamespace(r.HeadUser, r.HeadRepoName),
		Base: index.RepoNamespace(r.BaseUser, r.BaseRepoName),
	}
}

// Defaults are the task definition values used when a Spec leaves them out.
type Defaults struct {
	ProvisionerID string        `yaml:"provisioner_id"`
	WorkerType    string        `yaml:"worker_type"`
	SchedulerID   string        `yaml:"scheduler_id"`
	MaxRunTime    int           `yaml:"max_run_time"`
	Deadline      time.Duration `yaml:"deadline"`
	Expires       time.Duration `yaml:"expires"`
}

// DefaultDefaults returns the defaults of GitHub-triggered tasks.
func DefaultDefaults() Defaults {
	return Defaults{
		ProvisionerID: "aws-provisioner-v1",
		WorkerType:    "github-worker",
		SchedulerID:   "taskcluster-github",
		MaxRunTime:    1800,
		Deadline:      time.Hour,
		Expires:       24 * time.Hour,
	}
}

// listArtifactWorkers take their payload artifacts as a list of named
// entries rather than a map keyed by name.
var listArtifactWorkers = map[string]bool{
	"dummy-worker-packet": true,
	"win2012r2":           true,
}

// Options configure a Builder.
type Options struct {
	Repo        Repo
	TaskGroupID string
	Now         time.Time
	Endpoints   taskcluster.Endpoints
	Defaults    Defaults
	// NewID allocates IDs for tasks without an index key. Defaults to
	// slugid.New.
	NewID func() string
}

// Task is a declared task.
type Task struct {
	Handle   resolver.Handle
	Name     string
	ID       string
	Reused   bool
	IndexKey string
	// Artifacts are the public URLs of the task's artifacts, in declaration
	// order.
	Artifacts  []string
	Definition taskcluster.Task
}

// Builder accumulates the tasks of one run. It is not safe for concurrent use.
type Builder struct {
	opts   Options
	index  *index.Cache
	tasks  []*Task
	byID   map[string]resolver.Handle
	byName map[string]resolver.Handle
}

// New creates a Builder resolving index keys through cache.
func New(cache *index.Cache, opts Options) *Builder {
	if opts.NewID == nil {
		opts.NewID = slugid.New
	}
	if opts.Defaults == (Defaults{}) {
		opts.Defaults = DefaultDefaults()
	}
	opts.Now = opts.Now.UTC().Truncate(time.Second)
	return &Builder{
		opts:   opts,
		index:  cache,
		byID:   make(map[string]resolver.Handle),
		byName: make(map[string]resolver.Handle),
	}
}

// Now is the instant the run's timestamps are computed from.
func (b *Builder) Now() time.Time {
	return b.opts.Now
}

// TaskGroupID is the group every task of the run belongs to.
func (b *Builder) TaskGroupID() string {
	return b.opts.TaskGroupID
}

// Repo is the repository identity of the run.
func (b *Builder) Repo() Repo {
	return b.opts.Repo
}

// Len returns the number of declared tasks.
func (b *Builder) Len() int {
	return len(b.tasks)
}

// Tasks returns all declared tasks in declaration order.
func (b *Builder) Tasks() []*Task {
	return append([]*Task(nil), b.tasks...)
}

// Task returns the task with handle h.
func (b *Builder) Task(h resolver.Handle) (*Task, bool) {
	if h < 0 || int(h) >= len(b.tasks) {
		return nil, false
	}
	return b.tasks[h], true
}

// ByName returns the handle of the task declared under name.
func (b *Builder) ByName(name string) (resolver.Handle, bool) {
	h, ok := b.byName[name]
	return h, ok
}

// ByIndexPrefix returns the task whose index key is the only one starting
// with prefix.
func (b *Builder) ByIndexPrefix(prefix string) (*Task, error) {
	key, entry, err := b.index.SearchPrefix(prefix)
	if err != nil {
		return nil, err
	}
	h, ok := b.byID[entry.TaskID]
	if !ok {
		return nil, fmt.Errorf("no task declared for index key %q", key)
	}
	return b.tasks[h], nil
}

// Lookup implements resolver.Source.
func (b *Builder) Lookup(h resolver.Handle) (resolver.Target, bool) {
	t, ok := b.Task(h)
	if !ok {
		return resolver.Target{}, false
	}
	return resolver.Target{Name: t.Name, ID: t.ID, Artifacts: t.Artifacts}, true
}
