package app

import (
	"testing"

	"github.com/digideskio/git-cinnabar/internal/builder"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func envFrom(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadEnvironment(t *testing.T) {
	testCases := []struct {
		name string
		vars map[string]string
		base builder.Repo
		want Environment
	}{
		{
			name: "defaults",
			want: Environment{Repo: builder.Repo{
				HeadUser:      "glandium",
				HeadUserEmail: "glandium@",
				HeadRepoName:  "git-cinnabar",
				HeadRepoURL:   "https://github.com/glandium/git-cinnabar",
				HeadSHA:       "HEAD",
				HeadBranch:    "HEAD",
				BaseUser:      "glandium",
				BaseRepoName:  "git-cinnabar",
			}},
		},
		{
			name: "pull request from a fork",
			vars: map[string]string{
				"GITHUB_HEAD_USER":      "contributor",
				"GITHUB_HEAD_REPO_NAME": "cinnabar-fork",
				"GITHUB_HEAD_SHA":       "0123abcd",
				"GITHUB_HEAD_BRANCH":    "fix",
				"GITHUB_BASE_USER":      "glandium",
				"GITHUB_BASE_REPO_NAME": "git-cinnabar",
				"TASK_ID":               "decision-task",
			},
			want: Environment{
				TaskID: "decision-task",
				Repo: builder.Repo{
					HeadUser:      "contributor",
					HeadUserEmail: "contributor@",
					HeadRepoName:  "cinnabar-fork",
					HeadRepoURL:   "https://github.com/contributor/cinnabar-fork",
					HeadSHA:       "0123abcd",
					HeadBranch:    "fix",
					BaseUser:      "glandium",
					BaseRepoName:  "git-cinnabar",
				},
			},
		},
		{
			name: "settings fill in before defaults",
			vars: map[string]string{"GITHUB_HEAD_SHA": "feed"},
			base: builder.Repo{HeadUser: "someone", HeadRepoURL: "https://example.com/repo"},
			want: Environment{Repo: builder.Repo{
				HeadUser:      "someone",
				HeadUserEmail: "someone@",
				HeadRepoName:  "git-cinnabar",
				HeadRepoURL:   "https://example.com/repo",
				HeadSHA:       "feed",
				HeadBranch:    "HEAD",
				BaseUser:      "someone",
				BaseRepoName:  "git-cinnabar",
			}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := LoadEnvironment(envFrom(tc.vars), tc.base)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("environment mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tc.want.TaskID != "", got.InTask())
		})
	}
}
