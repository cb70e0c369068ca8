package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job states as reported by GET /api/jobs/:id.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// keepFinished bounds the job map: finished jobs older than this are
// dropped when a new job is created.
const keepFinished = time.Hour

// Report describes one completed daily-brief run.
type Report struct {
	RunID          string        `json:"run_id"`
	Outcome        string        `json:"outcome"`
	Degraded       []string      `json:"degraded,omitempty"`
	Outputs        []string      `json:"outputs"`
	Printed        bool          `json:"printed"`
	RenderDuration time.Duration `json:"render_duration_ns"`
}

// Job tracks an async brief run triggered over HTTP.
type Job struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
	Report     *Report   `json:"report,omitempty"`
}

type jobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	now  func() time.Time
}

func newJobStore() *jobStore {
	return &jobStore{jobs: make(map[string]*Job), now: time.Now}
}

func (s *jobStore) create() Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	job := &Job{ID: uuid.NewString(), Status: JobQueued, CreatedAt: s.now()}
	s.jobs[job.ID] = job
	return *job
}

// get returns a copy so callers never see concurrent updates mid-marshal.
func (s *jobStore) get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (s *jobStore) setRunning(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = JobRunning
	}
}

func (s *jobStore) finish(id string, report *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = JobDone
		job.Report = report
		job.FinishedAt = s.now()
	}
}

func (s *jobStore) fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = JobFailed
		job.Error = err.Error()
		job.FinishedAt = s.now()
	}
}

func (s *jobStore) pruneLocked() {
	cutoff := s.now().Add(-keepFinished)
	for id, job := range s.jobs {
		if !job.FinishedAt.IsZero() && job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}
