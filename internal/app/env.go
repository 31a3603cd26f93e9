package app

import (
	"cmp"
	"fmt"

	"github.com/digideskio/git-cinnabar/internal/builder"
)

// Environment is what a run learns from its environment variables.
type Environment struct {
	Repo builder.Repo
	// TaskID is the ID of the running decision task, empty outside of one.
	TaskID string
}

// InTask reports whether the run happens inside a Taskcluster task.
func (e Environment) InTask() bool {
	return e.TaskID != ""
}

// LoadEnvironment reads GITHUB_* and TASK_ID. Variables that are unset or
// empty take the value from base, then the built-in defaults.
func LoadEnvironment(getenv func(string) string, base builder.Repo) Environment {
	r := builder.Repo{
		HeadUser:      cmp.Or(getenv("GITHUB_HEAD_USER"), base.HeadUser, "glandium"),
		HeadUserEmail: cmp.Or(getenv("GITHUB_HEAD_USER_EMAIL"), base.HeadUserEmail),
		HeadRepoName:  cmp.Or(getenv("GITHUB_HEAD_REPO_NAME"), base.HeadRepoName, "git-cinnabar"),
		HeadRepoURL:   cmp.Or(getenv("GITHUB_HEAD_REPO_URL"), base.HeadRepoURL),
		HeadSHA:       cmp.Or(getenv("GITHUB_HEAD_SHA"), base.HeadSHA, "HEAD"),
		HeadBranch:    cmp.Or(getenv("GITHUB_HEAD_BRANCH"), base.HeadBranch, "HEAD"),
		BaseUser:      cmp.Or(getenv("GITHUB_BASE_USER"), base.BaseUser),
		BaseRepoName:  cmp.Or(getenv("GITHUB_BASE_REPO_NAME"), base.BaseRepoName),
	}
	r.HeadUserEmail = cmp.Or(r.HeadUserEmail, r.HeadUser+"@")
	r.HeadRepoURL = cmp.Or(r.HeadRepoURL, fmt.Sprintf("https://github.com/%s/%s", r.HeadUser, r.HeadRepoName))
	r.BaseUser = cmp.Or(r.BaseUser, r.HeadUser)
	r.BaseRepoName = cmp.Or(r.BaseRepoName, r.HeadRepoName)

	return Environment{Repo: r, TaskID: getenv("TASK_ID")}
}
