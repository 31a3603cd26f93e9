package taskcluster

import (
	"fmt"
	"path"
	"strings"
)

const (
	// ProxyIndexURL is the index endpoint as seen from inside a running task.
	ProxyIndexURL = "http://taskcluster/index/v1"
	// PublicIndexURL is the index endpoint used outside of Taskcluster.
	PublicIndexURL = "https://index.taskcluster.net/v1"
	// ProxyQueueURL is the queue endpoint as seen from inside a running task.
	ProxyQueueURL = "http://taskcluster/queue/v1"
	// PublicQueueURL serves published artifacts.
	PublicQueueURL = "https://queue.taskcluster.net/v1"
)

// Endpoints holds the base URLs of the services the decision task talks to.
type Endpoints struct {
	Index     string `yaml:"index"`
	Queue     string `yaml:"queue"`
	Artifacts string `yaml:"artifacts"`
}

// DefaultEndpoints returns the endpoints for a run inside a task (with the
// taskcluster proxy available) or outside of one.
func DefaultEndpoints(inTask bool) Endpoints {
	e := Endpoints{
		Index:     PublicIndexURL,
		Queue:     ProxyQueueURL,
		Artifacts: PublicQueueURL,
	}
	if inTask {
		e.Index = ProxyIndexURL
	}
	return e
}

// IndexTaskURL is the lookup URL for an indexed namespace.
func (e Endpoints) IndexTaskURL(namespace string) string {
	return fmt.Sprintf("%s/task/%s", strings.TrimRight(e.Index, "/"), namespace)
}

// QueueTaskURL is the creation URL for a task.
func (e Endpoints) QueueTaskURL(taskID string) string {
	return fmt.Sprintf("%s/task/%s", strings.TrimRight(e.Queue, "/"), taskID)
}

// ArtifactURL is the public URL of an artifact of a task, derived from the
// base name of the path it is produced at.
func (e Endpoints) ArtifactURL(taskID, artifactPath string) string {
	return fmt.Sprintf("%s/task/%s/artifacts/%s", strings.TrimRight(e.Artifacts, "/"), taskID, ArtifactName(artifactPath))
}

// ArtifactName is the public name of an artifact produced at the given path.
func ArtifactName(artifactPath string) string {
	return "public/" + path.Base(artifactPath)
}
