package inmemorystore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/digideskio/git-cinnabar/internal/taskcluster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndGetTask(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, ok := s.GetTask(ctx, "abc")
	assert.False(t, ok)

	task := &taskcluster.Task{WorkerType: "github-worker"}
	created, err := s.PutTask(ctx, "abc", task)
	require.NoError(t, err)
	assert.True(t, created)

	got, ok := s.GetTask(ctx, "abc")
	require.True(t, ok)
	assert.Equal(t, task, got)

	// Same definition again is idempotent.
	created, err = s.PutTask(ctx, "abc", &taskcluster.Task{WorkerType: "github-worker"})
	require.NoError(t, err)
	assert.False(t, created)

	_, err = s.PutTask(ctx, "abc", &taskcluster.Task{WorkerType: "other"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestIndex(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, ok := s.FindTask(ctx, "github.a.b.key")
	assert.False(t, ok)

	s.IndexTask(ctx, taskcluster.IndexedTask{Namespace: "github.a.b.key", TaskID: "one"})
	s.IndexTask(ctx, taskcluster.IndexedTask{Namespace: "github.a.b.key", TaskID: "two"})

	rec, ok := s.FindTask(ctx, "github.a.b.key")
	require.True(t, ok)
	assert.Equal(t, "two", rec.TaskID)
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	numGoroutines := 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("task-%02d", i)
			_, err := s.PutTask(ctx, id, &taskcluster.Task{TaskGroupID: "group"})
			assert.NoError(t, err)
			s.IndexTask(ctx, taskcluster.IndexedTask{Namespace: "ns." + id, TaskID: id})
		}(i)
	}
	wg.Wait()

	ids := s.TaskIDs()
	assert.Len(t, ids, numGoroutines)
	assert.Equal(t, "task-00", ids[0])
	rec, ok := s.FindTask(ctx, "ns.task-49")
	require.True(t, ok)
	assert.Equal(t, "task-49", rec.TaskID)
}
