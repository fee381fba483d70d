package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veriface/veriface/internal/audit"
	"github.com/veriface/veriface/internal/encoding"
	"github.com/veriface/veriface/internal/store"
	"github.com/veriface/veriface/internal/vision"
)

// JobStatus represents the lifecycle state of an enrollment task.
type JobStatus string

const (
	JobStatusCollecting JobStatus = "collecting"
	JobStatusCommitted  JobStatus = "committed"
	JobStatusTimedOut   JobStatus = "timed_out"
	JobStatusAborted    JobStatus = "aborted"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s != JobStatusCollecting
}

// EnrollmentJob tracks one async enrollment task.
type EnrollmentJob struct {
	mu          sync.RWMutex
	id          string
	name        string
	status      JobStatus
	collected   int
	required    int
	errMessage  string
	startedAt   time.Time
	completedAt *time.Time
	cancel      context.CancelFunc
	aborted     bool
}

// EnrollmentView is the JSON-safe snapshot of a job.
type EnrollmentView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      JobStatus  `json:"status"`
	Collected   int        `json:"collected"`
	Required    int        `json:"required"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Snapshot returns a consistent view of the job.
func (j *EnrollmentJob) Snapshot() EnrollmentView {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return EnrollmentView{
		ID:          j.id,
		Name:        j.name,
		Status:      j.status,
		Collected:   j.collected,
		Required:    j.required,
		Error:       j.errMessage,
		StartedAt:   j.startedAt,
		CompletedAt: j.completedAt,
	}
}

func (j *EnrollmentJob) addSample() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.collected++
	return j.collected
}

func (j *EnrollmentJob) finish(status JobStatus, errMessage string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() {
		return
	}
	j.status = status
	j.errMessage = errMessage
	now := time.Now()
	j.completedAt = &now
}

// abort cancels a collecting job. Returns false when already terminal.
func (j *EnrollmentJob) abort() bool {
	j.mu.Lock()
	if j.status.Terminal() {
		j.mu.Unlock()
		return false
	}
	j.aborted = true
	cancel := j.cancel
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return true
}

func (j *EnrollmentJob) wasAborted() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.aborted
}

// JobManager tracks enrollment tasks by ID.
type JobManager struct {
	mu   sync.RWMutex
	jobs map[string]*EnrollmentJob
}

// NewJobManager creates an empty manager.
func NewJobManager() *JobManager {
	return &JobManager{jobs: make(map[string]*EnrollmentJob)}
}

func (m *JobManager) add(job *EnrollmentJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.id] = job
}

// Get retrieves a job by ID, or nil.
func (m *JobManager) Get(id string) *EnrollmentJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// ActiveCount returns the number of collecting jobs.
func (m *JobManager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, job := range m.jobs {
		if !job.Snapshot().Status.Terminal() {
			count++
		}
	}
	return count
}

// StartEnrollment begins collecting samples for a new identity and
// returns a task ID to poll. The duplicate check runs before any frame
// is captured.
func (e *Engine) StartEnrollment(name string) (string, error) {
	if store.NormalizeName(name) == "" {
		return "", fmt.Errorf("identity name must not be empty")
	}
	if e.store.Has(name) {
		return "", store.ErrDuplicateIdentity
	}
	if e.camera == nil {
		return "", ErrResourceUnavailable
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.enrollTimeout)

	job := &EnrollmentJob{
		id:        uuid.New().String(),
		name:      name,
		status:    JobStatusCollecting,
		required:  e.requiredSamples,
		startedAt: time.Now(),
		cancel:    cancel,
	}
	e.jobs.add(job)

	go func() {
		defer cancel()
		e.runEnrollment(ctx, job)
	}()

	return job.id, nil
}

// EnrollmentStatus returns the snapshot for a task ID.
func (e *Engine) EnrollmentStatus(id string) (EnrollmentView, bool) {
	job := e.jobs.Get(id)
	if job == nil {
		return EnrollmentView{}, false
	}
	return job.Snapshot(), true
}

// AbortEnrollment cancels a collecting task. Returns false when the
// task is unknown or already terminal.
func (e *Engine) AbortEnrollment(id string) bool {
	job := e.jobs.Get(id)
	if job == nil {
		return false
	}
	return job.abort()
}

// AwaitEnrollment blocks until the task reaches a terminal state,
// polling the job snapshot. Used by the CLI.
func (e *Engine) AwaitEnrollment(ctx context.Context, id string) (EnrollmentView, error) {
	for {
		view, ok := e.EnrollmentStatus(id)
		if !ok {
			return EnrollmentView{}, fmt.Errorf("unknown enrollment task %q", id)
		}
		if view.Status.Terminal() {
			if view.Status == JobStatusTimedOut {
				return view, ErrTimeout
			}
			return view, nil
		}

		select {
		case <-ctx.Done():
			return view, ctx.Err()
		case <-time.After(e.pollInterval):
		}
	}
}

// runEnrollment is the sampling loop. Every poll interval it captures
// one frame, takes the first detection that meets the minimum size,
// and extracts an encoding. Accepted samples are followed by a pause
// so consecutive samples come from distinct moments.
func (e *Engine) runEnrollment(ctx context.Context, job *EnrollmentJob) {
	var samples []encoding.Encoding

	for len(samples) < job.required {
		select {
		case <-ctx.Done():
			e.finishEnrollment(job, nil)
			return
		case <-time.After(e.pollInterval):
		}

		frame := e.camera.Capture(ctx)
		if frame == nil {
			continue
		}

		boxes, err := e.locator.Detect(ctx, frame)
		if err != nil || len(boxes) == 0 {
			continue
		}

		box := boxes[0]
		if !box.MeetsMinSize(e.minFaceSize) {
			continue
		}

		crop := vision.Crop(frame, box)
		enc, _, err := e.extractor.Extract(ctx, crop)
		if err != nil {
			log.Printf("enrollment sample rejected: %v", err)
			continue
		}

		samples = append(samples, enc)
		job.addSample()

		if len(samples) < job.required {
			select {
			case <-ctx.Done():
				e.finishEnrollment(job, nil)
				return
			case <-time.After(e.samplePause):
			}
		}
	}

	e.finishEnrollment(job, samples)
}

// finishEnrollment commits collected samples or records the failure.
// A nil samples slice means the loop ended before collecting enough.
func (e *Engine) finishEnrollment(job *EnrollmentJob, samples []encoding.Encoding) {
	view := job.Snapshot()

	if len(samples) < view.Required {
		status := JobStatusTimedOut
		detail := fmt.Sprintf("collected %d of %d samples before timeout", view.Collected, view.Required)
		if job.wasAborted() {
			status = JobStatusAborted
			detail = "aborted by operator"
		}
		job.finish(status, detail)
		e.auditLog.Record(audit.Event{
			Kind:    audit.KindEnrollment,
			Name:    view.Name,
			Success: false,
			Detail:  detail,
		})
		return
	}

	aggregated, err := AggregateEncodings(samples)
	if err != nil {
		job.finish(JobStatusFailed, err.Error())
		e.auditLog.Record(audit.Event{
			Kind:    audit.KindEnrollment,
			Name:    view.Name,
			Success: false,
			Detail:  err.Error(),
		})
		return
	}

	identity := store.Identity{
		Name:        view.Name,
		Encoding:    aggregated,
		SampleCount: len(samples),
		EnrolledAt:  time.Now(),
	}
	if err := e.store.Create(identity); err != nil {
		job.finish(JobStatusFailed, err.Error())
		e.auditLog.Record(audit.Event{
			Kind:    audit.KindEnrollment,
			Name:    view.Name,
			Success: false,
			Detail:  err.Error(),
		})
		return
	}

	job.finish(JobStatusCommitted, "")
	e.auditLog.Record(audit.Event{
		Kind:    audit.KindEnrollment,
		Name:    view.Name,
		Success: true,
		Method:  string(aggregated.Method),
	})
}

// AggregateEncodings averages samples element-wise. When any sample
// came from the embedding path, only the embedding subset contributes;
// otherwise the feature-based samples are averaged. Samples whose
// length disagrees with the first of the chosen subset are skipped.
func AggregateEncodings(samples []encoding.Encoding) (encoding.Encoding, error) {
	if len(samples) == 0 {
		return encoding.Encoding{}, fmt.Errorf("no samples to aggregate")
	}

	method := encoding.MethodFeature
	for _, s := range samples {
		if s.Method == encoding.MethodEmbedding {
			method = encoding.MethodEmbedding
			break
		}
	}

	var sum []float64
	var count int
	for _, s := range samples {
		if s.Method != method || s.IsZero() {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(s.Vector))
		}
		if len(s.Vector) != len(sum) {
			continue
		}
		for i, v := range s.Vector {
			sum[i] += float64(v)
		}
		count++
	}
	if count == 0 {
		return encoding.Encoding{}, fmt.Errorf("no usable samples for method %s", method)
	}

	vector := make([]float32, len(sum))
	for i, v := range sum {
		vector[i] = float32(v / float64(count))
	}
	return encoding.Encoding{Vector: vector, Method: method}, nil
}
