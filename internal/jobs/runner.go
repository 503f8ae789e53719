// Package jobs runs extractions too large for a request/response context on
// a fixed worker pool. The size split is a deployment policy decided by the
// caller; the pipeline itself has no size branch.
package jobs

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sync"
	"time"

	"meterprofile/internal/profile/application"
)

// Status of a background extraction job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// ErrQueueFull is returned when the job queue cannot accept more work.
var ErrQueueFull = errors.New("jobs: queue is full")

// Job is one queued extraction. Result is set once Status is done. Records
// live in memory only and expire after the retention window.
type Job struct {
	ID          string              `json:"id"`
	Status      Status              `json:"status"`
	Actor       string              `json:"actor,omitempty"`
	SubmittedAt time.Time           `json:"submitted_at"`
	StartedAt   time.Time           `json:"started_at"`
	FinishedAt  time.Time           `json:"finished_at"`
	Error       string              `json:"error,omitempty"`
	Result      *application.Result `json:"result,omitempty"`
}

type task struct {
	id   string
	text string
	cfg  application.Config
}

// Runner owns the worker pool and the in-memory job store.
type Runner struct {
	extractor  *application.Extractor
	logger     *log.Logger
	workers    int
	queueDepth int
	retention  time.Duration

	mu    sync.Mutex
	jobs  map[string]*Job
	queue chan task
	stop  chan struct{}
	wg    sync.WaitGroup
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithQueueDepth sets how many jobs may wait before Submit refuses.
func WithQueueDepth(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.queueDepth = n
		}
	}
}

// WithRetention sets how long finished jobs stay queryable.
func WithRetention(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.retention = d
		}
	}
}

// NewRunner constructs a Runner; Start launches it.
func NewRunner(extractor *application.Extractor, logger *log.Logger, opts ...Option) *Runner {
	r := &Runner{
		extractor:  extractor,
		logger:     logger,
		workers:    2,
		queueDepth: 16,
		retention:  time.Hour,
		jobs:       make(map[string]*Job),
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.queue = make(chan task, r.queueDepth)
	return r
}

// Start launches the workers and the expiry sweep.
func (r *Runner) Start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
	r.wg.Add(1)
	go r.sweep()
}

// Stop halts the workers after their in-flight jobs finish.
func (r *Runner) Stop() {
	close(r.stop)
	r.wg.Wait()
}

// Submit queues one extraction for the given actor and returns its job ID.
// Actor is the authenticated caller's subject, or "" when auth is off.
func (r *Runner) Submit(actor, text string, cfg application.Config) (string, error) {
	id := newJobID()
	job := &Job{ID: id, Status: StatusQueued, Actor: actor, SubmittedAt: time.Now().UTC()}
	r.mu.Lock()
	r.jobs[id] = job
	r.mu.Unlock()

	select {
	case r.queue <- task{id: id, text: text, cfg: cfg}:
		return id, nil
	default:
		r.mu.Lock()
		delete(r.jobs, id)
		r.mu.Unlock()
		return "", ErrQueueFull
	}
}

// Get returns a copy of the job record.
func (r *Runner) Get(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (r *Runner) work() {
	defer r.wg.Done()
	for {
		select {
		case <-r.stop:
			return
		case t := <-r.queue:
			r.run(t)
		}
	}
}

func (r *Runner) run(t task) {
	r.mu.Lock()
	if job := r.jobs[t.id]; job != nil {
		job.Status = StatusRunning
		job.StartedAt = time.Now().UTC()
	}
	r.mu.Unlock()

	result, err := r.extractor.Extract(t.text, t.cfg)

	r.mu.Lock()
	if job := r.jobs[t.id]; job != nil {
		job.FinishedAt = time.Now().UTC()
		if err != nil {
			job.Status = StatusFailed
			job.Error = err.Error()
		} else {
			job.Status = StatusDone
			job.Result = result
		}
	}
	r.mu.Unlock()

	if r.logger != nil {
		if err != nil {
			r.logger.Printf("job %s failed: %v", t.id, err)
		} else {
			r.logger.Printf("job %s done: points=%d", t.id, result.DataPointCount)
		}
	}
}

func (r *Runner) sweep() {
	defer r.wg.Done()
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			cutoff := now.UTC().Add(-r.retention)
			r.mu.Lock()
			for id, job := range r.jobs {
				if (job.Status == StatusDone || job.Status == StatusFailed) && job.FinishedAt.Before(cutoff) {
					delete(r.jobs, id)
				}
			}
			r.mu.Unlock()
		}
	}
}

func newJobID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err == nil {
		// UUIDv4 formatting (without external dependency).
		buf[6] = (buf[6] & 0x0f) | 0x40
		buf[8] = (buf[8] & 0x3f) | 0x80
	}
	return hex.EncodeToString(buf[:])
}
