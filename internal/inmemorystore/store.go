package inmemorystore

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"sync"

	"github.com/digideskio/git-cinnabar/internal/taskcluster"
)

// ErrConflict is returned when a task ID is reused for a different
// definition.
var ErrConflict = errors.New("task already exists with a different definition")

// Store keeps queued task definitions and index records in memory.
type Store struct {
	tasks sync.Map // Key: task ID, Value: *taskcluster.Task
	index sync.Map // Key: namespace, Value: taskcluster.IndexedTask
}

// New creates a new, empty store.
func New() *Store {
	return &Store{}
}

// PutTask stores a task definition. Putting the same definition twice is
// allowed and reports created as false.
func (s *Store) PutTask(_ context.Context, taskID string, task *taskcluster.Task) (created bool, err error) {
	prev, loaded := s.tasks.LoadOrStore(taskID, task)
	if !loaded {
		return true, nil
	}
	if !reflect.DeepEqual(prev.(*taskcluster.Task), task) {
		return false, ErrConflict
	}
	return false, nil
}

// GetTask retrieves a stored task definition.
func (s *Store) GetTask(_ context.Context, taskID string) (*taskcluster.Task, bool) {
	task, ok := s.tasks.Load(taskID)
	if !ok {
		return nil, false
	}
	return task.(*taskcluster.Task), true
}

// TaskIDs returns the IDs of all stored tasks, sorted.
func (s *Store) TaskIDs() []string {
	var ids []string
	s.tasks.Range(func(key, _ any) bool {
		ids = append(ids, key.(string))
		return true
	})
	slices.Sort(ids)
	return ids
}

// IndexTask records rec under its namespace, replacing any previous record.
func (s *Store) IndexTask(_ context.Context, rec taskcluster.IndexedTask) {
	s.index.Store(rec.Namespace, rec)
}

// FindTask retrieves the record of a namespace.
func (s *Store) FindTask(_ context.Context, namespace string) (taskcluster.IndexedTask, bool) {
	rec, ok := s.index.Load(namespace)
	if !ok {
		return taskcluster.IndexedTask{}, false
	}
	return rec.(taskcluster.IndexedTask), true
}
