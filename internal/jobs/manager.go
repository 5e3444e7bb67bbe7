package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/andresuchdata/demandcast/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Status is the lifecycle state of a submitted job.
type Status string

const (
	StatusQueued    Status = "QUEUED"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

const (
	defaultPoolSize    = 4
	defaultMaxRetained = 1000
)

// Job is a snapshot of a submitted job's state.
type Job struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"`
	Message     string     `json:"message,omitempty"`
	Result      any        `json:"result,omitempty"`
	SubmittedAt time.Time  `json:"submittedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}

// Task does the actual work of a job. It receives its own job id,
// reports coarse progress through the supplied callback, and returns
// the result retained on completion.
type Task func(ctx context.Context, jobID string, progress func(pct int, message string)) (any, error)

// Manager runs submitted tasks on a bounded pool and retains their
// terminal state for later polling. Each task runs at most once and is
// never retried.
type Manager struct {
	mu          sync.Mutex
	jobs        map[string]*Job
	order       []string
	sem         *semaphore.Weighted
	maxRetained int
	baseCtx     context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewManager(poolSize, maxRetained int) *Manager {
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	if maxRetained <= 0 {
		maxRetained = defaultMaxRetained
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		jobs:        make(map[string]*Job),
		sem:         semaphore.NewWeighted(int64(poolSize)),
		maxRetained: maxRetained,
		baseCtx:     ctx,
		cancel:      cancel,
	}
}

// Submit registers the task and schedules it on the pool. The returned
// id can be polled with Get until the job reaches a terminal state.
func (m *Manager) Submit(kind string, task Task) string {
	job := &Job{
		ID:          uuid.New().String(),
		Kind:        kind,
		Status:      StatusQueued,
		SubmittedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.order = append(m.order, job.ID)
	m.evictLocked()
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(job.ID, task)

	return job.ID
}

// Get returns a copy of the job's current state.
func (m *Manager) Get(id string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return Job{}, faults.New(faults.NotFound, "job %s not found", id)
	}
	return *job, nil
}

// List returns snapshots of all retained jobs, newest first.
func (m *Manager) List() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Job, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		if job, ok := m.jobs[m.order[i]]; ok {
			out = append(out, *job)
		}
	}
	return out
}

// Shutdown stops accepting progress and waits for in-flight jobs.
func (m *Manager) Shutdown() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) run(id string, task Task) {
	defer m.wg.Done()

	if err := m.sem.Acquire(m.baseCtx, 1); err != nil {
		m.finish(id, StatusFailed, nil, "job manager shut down before the job started")
		return
	}
	defer m.sem.Release(1)

	now := time.Now().UTC()
	m.update(id, func(job *Job) {
		job.Status = StatusRunning
		job.StartedAt = &now
	})

	progress := func(pct int, message string) {
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		m.update(id, func(job *Job) {
			job.Progress = pct
			job.Message = message
		})
	}

	result, err := task(m.baseCtx, id, progress)
	if err != nil {
		logger.Log.Error().Err(err).Str("job_id", id).Msg("job failed")
		m.finish(id, StatusFailed, nil, err.Error())
		return
	}

	m.finish(id, StatusCompleted, result, "")
}

func (m *Manager) finish(id string, status Status, result any, message string) {
	now := time.Now().UTC()
	m.update(id, func(job *Job) {
		job.Status = status
		job.Result = result
		job.FinishedAt = &now
		if message != "" {
			job.Message = message
		}
		if status == StatusCompleted {
			job.Progress = 100
		}
	})
}

func (m *Manager) update(id string, fn func(job *Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		fn(job)
	}
}

// evictLocked drops the oldest terminal jobs once the retained set
// exceeds the cap. Queued and running jobs are never evicted.
func (m *Manager) evictLocked() {
	if len(m.order) <= m.maxRetained {
		return
	}

	kept := m.order[:0]
	excess := len(m.order) - m.maxRetained
	for _, id := range m.order {
		job := m.jobs[id]
		if excess > 0 && job != nil && (job.Status == StatusCompleted || job.Status == StatusFailed) {
			delete(m.jobs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
}
