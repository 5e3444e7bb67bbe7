package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForTerminal(t *testing.T, m *Manager, id string) Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := m.Get(id)
		require.NoError(t, err)
		if job.Status == StatusCompleted || job.Status == StatusFailed {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
	return Job{}
}

func TestManagerRunsTaskOnce(t *testing.T) {
	m := NewManager(2, 100)
	defer m.Shutdown()

	var runs atomic.Int32
	id := m.Submit("test", func(ctx context.Context, jobID string, progress func(int, string)) (any, error) {
		runs.Add(1)
		progress(50, "halfway")
		return "done", nil
	})

	job := waitForTerminal(t, m, id)
	assert.Equal(t, StatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, "done", job.Result)
	assert.Equal(t, int32(1), runs.Load())
	require.NotNil(t, job.StartedAt)
	require.NotNil(t, job.FinishedAt)
}

func TestManagerFailedTaskKeepsError(t *testing.T) {
	m := NewManager(1, 100)
	defer m.Shutdown()

	id := m.Submit("test", func(ctx context.Context, jobID string, progress func(int, string)) (any, error) {
		return nil, errors.New("replay exploded")
	})

	job := waitForTerminal(t, m, id)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Equal(t, "replay exploded", job.Message)
	assert.Nil(t, job.Result)
}

func TestManagerTaskReceivesOwnID(t *testing.T) {
	m := NewManager(1, 100)
	defer m.Shutdown()

	var seen string
	var mu sync.Mutex
	id := m.Submit("test", func(ctx context.Context, jobID string, progress func(int, string)) (any, error) {
		mu.Lock()
		seen = jobID
		mu.Unlock()
		return nil, nil
	})

	waitForTerminal(t, m, id)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, id, seen)
}

func TestManagerUnknownJob(t *testing.T) {
	m := NewManager(1, 100)
	defer m.Shutdown()

	_, err := m.Get("no-such-job")
	require.Error(t, err)
	assert.True(t, faults.IsKind(err, faults.NotFound))
}

func TestManagerBoundedPool(t *testing.T) {
	m := NewManager(1, 100)
	defer m.Shutdown()

	var concurrent, peak atomic.Int32
	var ids []string
	for i := 0; i < 4; i++ {
		ids = append(ids, m.Submit("test", func(ctx context.Context, jobID string, progress func(int, string)) (any, error) {
			cur := concurrent.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			concurrent.Add(-1)
			return nil, nil
		}))
	}

	for _, id := range ids {
		waitForTerminal(t, m, id)
	}
	assert.Equal(t, int32(1), peak.Load())
}

func TestManagerEvictsOldestTerminalJobs(t *testing.T) {
	m := NewManager(2, 2)
	defer m.Shutdown()

	first := m.Submit("test", func(ctx context.Context, jobID string, progress func(int, string)) (any, error) {
		return nil, nil
	})
	waitForTerminal(t, m, first)

	second := m.Submit("test", func(ctx context.Context, jobID string, progress func(int, string)) (any, error) {
		return nil, nil
	})
	waitForTerminal(t, m, second)

	third := m.Submit("test", func(ctx context.Context, jobID string, progress func(int, string)) (any, error) {
		return nil, nil
	})
	waitForTerminal(t, m, third)

	// Retention cap of 2: the oldest terminal job is gone.
	_, err := m.Get(first)
	assert.True(t, faults.IsKind(err, faults.NotFound))
	_, err = m.Get(third)
	assert.NoError(t, err)
}

func TestManagerListNewestFirst(t *testing.T) {
	m := NewManager(1, 100)
	defer m.Shutdown()

	a := m.Submit("test", func(ctx context.Context, jobID string, progress func(int, string)) (any, error) { return nil, nil })
	waitForTerminal(t, m, a)
	b := m.Submit("test", func(ctx context.Context, jobID string, progress func(int, string)) (any, error) { return nil, nil })
	waitForTerminal(t, m, b)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, b, list[0].ID)
	assert.Equal(t, a, list[1].ID)
}
