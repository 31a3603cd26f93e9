package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/digideskio/git-cinnabar/internal/expiry"
	"github.com/digideskio/git-cinnabar/internal/resolver"
)

// Spec declares one task. Fields left at their zero value take the builder's
// defaults.
type Spec struct {
	Name          string
	Description   resolver.Template
	ProvisionerID string
	WorkerType    string
	// Index is the cache key. Tasks with a key are looked up in the index and
	// routed to it so later runs can reuse them.
	Index      resolver.Template
	ExpiresIn  string
	MaxRunTime int
	Image      Image
	Command    []resolver.Template
	Env        map[string]resolver.Template
	// Artifact and Artifacts are mutually exclusive.
	Artifact  string
	Artifacts []string
	Scopes    []string
	// Mounts extract the single artifact of each task into the working
	// directory before the command runs.
	Mounts    []resolver.Handle
	DependsOn []resolver.Handle
}

// Image is the container image of a task: either a plain reference or the
// image artifact of another task.
type Image struct {
	Ref  resolver.Template
	Task *resolver.Handle
}

// ImageRef uses a plain image reference.
func ImageRef(ref resolver.Template) Image {
	return Image{Ref: ref}
}

// TaskImage uses the image produced by task h.
func TaskImage(h resolver.Handle) Image {
	return Image{Task: &h}
}

// IsZero reports whether no image was set.
func (i Image) IsZero() bool {
	return i.Ref == nil && i.Task == nil
}

// ConfigError reports an invalid task declaration.
type ConfigError struct {
	Task  string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("task %q: %v", e.Task, e.Err)
	}
	return fmt.Sprintf("task %q: %s: %v", e.Task, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Validate checks the parts of a Spec that do not depend on other tasks.
func (s *Spec) Validate() error {
	fail := func(field string, err error) error {
		return &ConfigError{Task: s.Name, Field: field, Err: err}
	}

	if strings.TrimSpace(s.Name) == "" {
		return fail("name", errors.New("must not be empty"))
	}
	if s.Artifact != "" && len(s.Artifacts) > 0 {
		return fail("artifact", errors.New("artifact and artifacts are mutually exclusive"))
	}
	for i, a := range s.Artifacts {
		if strings.TrimSpace(a) == "" {
			return fail("artifacts", fmt.Errorf("element %d must not be empty", i))
		}
	}
	if s.Image.Ref != nil && s.Image.Task != nil {
		return fail("image", errors.New("must be either a reference or a task, not both"))
	}
	if s.ExpiresIn != "" {
		if _, err := expiry.Parse(s.ExpiresIn); err != nil {
			return fail("expires_in", err)
		}
	}
	if s.MaxRunTime < 0 {
		return fail("max_run_time", errors.New("must not be negative"))
	}
	for i, scope := range s.Scopes {
		if strings.TrimSpace(scope) == "" {
			return fail("scopes", fmt.Errorf("element %d must not be empty", i))
		}
	}
	return nil
}

// artifactPaths returns the declared artifact paths, singular or plural.
func (s *Spec) artifactPaths() []string {
	if s.Artifact != "" {
		return []string{s.Artifact}
	}
	return s.Artifacts
}

// mountFormats are the archive formats a mount can extract.
var mountFormats = []string{"rar", "tar.bz2", "tar.gz", "zip"}

// mountFormat returns the archive format of an artifact URL.
func mountFormat(url string) (string, error) {
	for _, ext := range mountFormats {
		if strings.HasSuffix(url, "."+ext) {
			return ext, nil
		}
	}
	return "", fmt.Errorf("unsupported or unknown archive format for %s (supported: %s)", url, strings.Join(mountFormats, ", "))
}
