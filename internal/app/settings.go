package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/digideskio/git-cinnabar/internal/builder"
	"github.com/digideskio/git-cinnabar/internal/taskcluster"
	"gopkg.in/yaml.v3"
)

// Settings are the optional file-based settings of a run. Empty values keep
// the built-in defaults.
type Settings struct {
	Endpoints taskcluster.Endpoints `yaml:"endpoints"`
	Defaults  builder.Defaults      `yaml:"defaults"`
	Images    builder.ImageOptions  `yaml:"images"`
	Repo      builder.Repo          `yaml:"repo"`
}

// LoadSettings reads a YAML settings file. An empty path yields empty
// settings. Unknown keys are errors.
func LoadSettings(path string) (*Settings, error) {
	settings := &Settings{}
	if path == "" {
		return settings, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(settings); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return settings, nil
}

// endpoints returns the settings' endpoints over the defaults.
func (s *Settings) endpoints(inTask bool) taskcluster.Endpoints {
	e := taskcluster.DefaultEndpoints(inTask)
	if s.Endpoints.Index != "" {
		e.Index = s.Endpoints.Index
	}
	if s.Endpoints.Queue != "" {
		e.Queue = s.Endpoints.Queue
	}
	if s.Endpoints.Artifacts != "" {
		e.Artifacts = s.Endpoints.Artifacts
	}
	return e
}

// defaults returns the settings' task defaults over the built-in ones.
func (s *Settings) defaults() builder.Defaults {
	d := builder.DefaultDefaults()
	o := s.Defaults
	if o.ProvisionerID != "" {
		d.ProvisionerID = o.ProvisionerID
	}
	if o.WorkerType != "" {
		d.WorkerType = o.WorkerType
	}
	if o.SchedulerID != "" {
		d.SchedulerID = o.SchedulerID
	}
	if o.MaxRunTime != 0 {
		d.MaxRunTime = o.MaxRunTime
	}
	if o.Deadline != 0 {
		d.Deadline = o.Deadline
	}
	if o.Expires != 0 {
		d.Expires = o.Expires
	}
	return d
}
