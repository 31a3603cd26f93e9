package taskcluster

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// TimeFormat is the timestamp layout used in task descriptors: UTC, second
// precision, trailing Z.
const TimeFormat = "2006-01-02T15:04:05Z"

// FormatTime renders t for a task descriptor.
func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(TimeFormat)
}

// Task is the task definition sent to the queue.
type Task struct {
	Created       string   `json:"created"`
	Deadline      string   `json:"deadline"`
	Expires       string   `json:"expires"`
	Retries       int      `json:"retries"`
	ProvisionerID string   `json:"provisionerId"`
	WorkerType    string   `json:"workerType"`
	SchedulerID   string   `json:"schedulerId"`
	TaskGroupID   string   `json:"taskGroupId"`
	Metadata      Metadata `json:"metadata"`
	Payload       Payload  `json:"payload"`
	Routes        []string `json:"routes,omitempty"`
	Scopes        []string `json:"scopes,omitempty"`
	Dependencies  []string `json:"dependencies"`
}

type Metadata struct {
	Owner       string `json:"owner"`
	Source      string `json:"source"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

type Payload struct {
	MaxRunTime int               `json:"maxRunTime"`
	Command    []string          `json:"command,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
	Image      *Image            `json:"image,omitempty"`
	Artifacts  *Artifacts        `json:"artifacts,omitempty"`
	Features   map[string]bool   `json:"features,omitempty"`
	Mounts     []Mount           `json:"mounts,omitempty"`
}

// Image is either a plain image reference or an image produced as an
// artifact of another task.
type Image struct {
	Ref    string
	Path   string
	TaskID string
}

// MarshalJSON encodes a plain reference as a string and a task image as
// {path, taskId, type: "task-image"}.
func (i Image) MarshalJSON() ([]byte, error) {
	if i.TaskID == "" {
		return json.Marshal(i.Ref)
	}
	return json.Marshal(struct {
		Path   string `json:"path"`
		TaskID string `json:"taskId"`
		Type   string `json:"type"`
	}{i.Path, i.TaskID, "task-image"})
}

// UnmarshalJSON accepts both encodings produced by MarshalJSON.
func (i *Image) UnmarshalJSON(data []byte) error {
	var ref string
	if err := json.Unmarshal(data, &ref); err == nil {
		*i = Image{Ref: ref}
		return nil
	}
	var obj struct {
		Path   string `json:"path"`
		TaskID string `json:"taskId"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*i = Image{Path: obj.Path, TaskID: obj.TaskID}
	return nil
}

// Artifact is one file published by a task.
type Artifact struct {
	Name string
	Path string
	Type string
}

// Artifacts is the payload artifact declaration. Docker-worker style payloads
// take a map keyed by artifact name; some worker types take a list of
// entries carrying their own name instead.
type Artifacts struct {
	AsList  bool
	Entries []Artifact
}

type artifactEntry struct {
	Name string `json:"name,omitempty"`
	Path string `json:"path"`
	Type string `json:"type"`
}

func (a Artifacts) MarshalJSON() ([]byte, error) {
	if a.AsList {
		list := make([]artifactEntry, 0, len(a.Entries))
		for _, e := range a.Entries {
			list = append(list, artifactEntry{Name: e.Name, Path: e.Path, Type: e.Type})
		}
		return json.Marshal(list)
	}
	m := make(map[string]artifactEntry, len(a.Entries))
	for _, e := range a.Entries {
		m[e.Name] = artifactEntry{Path: e.Path, Type: e.Type}
	}
	return json.Marshal(m)
}

func (a *Artifacts) UnmarshalJSON(data []byte) error {
	var list []artifactEntry
	if err := json.Unmarshal(data, &list); err == nil {
		*a = Artifacts{AsList: true}
		for _, e := range list {
			a.Entries = append(a.Entries, Artifact(e))
		}
		return nil
	}
	var m map[string]artifactEntry
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*a = Artifacts{}
	for _, name := range slices.Sorted(maps.Keys(m)) {
		e := m[name]
		a.Entries = append(a.Entries, Artifact{Name: name, Path: e.Path, Type: e.Type})
	}
	return nil
}

// Mount extracts an artifact of another task into the task's directory.
type Mount struct {
	Content   MountContent `json:"content"`
	Directory string       `json:"directory"`
	Format    string       `json:"format"`
}

type MountContent struct {
	Artifact string `json:"artifact"`
	TaskID   string `json:"taskId"`
}

// IndexedTask is the index service's answer for a namespace.
type IndexedTask struct {
	Namespace string `json:"namespace"`
	TaskID    string `json:"taskId"`
	Rank      int    `json:"rank"`
	Expires   string `json:"expires"`
}

// TaskStatus is the relevant part of the queue's answer to a task creation.
type TaskStatus struct {
	Status struct {
		TaskID      string `json:"taskId"`
		TaskGroupID string `json:"taskGroupId"`
		State       string `json:"state"`
	} `json:"status"`
}
