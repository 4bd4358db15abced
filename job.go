package qiskitruntime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// InterimResultCallback receives interim payloads observed while a job is
// being polled.
type InterimResultCallback func(jobID string, payload json.RawMessage)

type runConfig struct {
	callback         InterimResultCallback
	tags             []string
	maxExecutionTime time.Duration
}

// RunOption configures a single job submission.
type RunOption func(*runConfig)

// WithInterimResultCallback streams interim results to cb while the job is
// waited on.
func WithInterimResultCallback(cb InterimResultCallback) RunOption {
	return func(cfg *runConfig) {
		cfg.callback = cb
	}
}

// WithJobTags attaches free-form tags to the job.
func WithJobTags(tags ...string) RunOption {
	return func(cfg *runConfig) {
		cfg.tags = tags
	}
}

// WithMaxExecutionTime caps the server-side execution time of the job.
func WithMaxExecutionTime(d time.Duration) RunOption {
	return func(cfg *runConfig) {
		cfg.maxExecutionTime = d
	}
}

// jobResp is the wire form of a job record.
type jobResp struct {
	ID        string  `json:"id"`
	Backend   string  `json:"backend"`
	Status    string  `json:"status"`
	SessionID string  `json:"session_id"`
	Created   ISOTime `json:"created"`
	Program   struct {
		ID string `json:"id"`
	} `json:"program"`
	State struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"state"`
}

// Job is a handle to an asynchronous job on the service.
type Job struct {
	ID        string
	ProgramID string
	Backend   string
	SessionID string
	Created   time.Time

	conn     *Conn
	callback InterimResultCallback

	mu          sync.Mutex
	seenInterim int
	final       *JobStatus
}

func jobFromResp(conn *Conn, resp jobResp) *Job {
	return &Job{
		ID:        resp.ID,
		ProgramID: resp.Program.ID,
		Backend:   resp.Backend,
		SessionID: resp.SessionID,
		Created:   resp.Created.Time,
		conn:      conn,
	}
}

// Status retrieves the current status of the job.
func (j *Job) Status(ctx context.Context) (*JobStatus, error) {
	j.mu.Lock()
	if j.final != nil {
		status := *j.final
		j.mu.Unlock()
		return &status, nil
	}
	j.mu.Unlock()

	var resp jobResp
	if err := j.conn.get(ctx, "jobs/"+j.ID, nil, &resp); err != nil {
		return nil, err
	}
	status := &JobStatus{JobID: j.ID, Status: resp.Status, StatusMsg: resp.State.Reason}
	if status.Terminal() {
		j.mu.Lock()
		j.final = status
		j.mu.Unlock()
	}
	return status, nil
}

// Done reports whether the job reached a terminal state.
func (j *Job) Done(ctx context.Context) (bool, error) {
	status, err := j.Status(ctx)
	if err != nil {
		return false, err
	}
	return status.Terminal(), nil
}

// Cancel asks the service to cancel the job.
func (j *Job) Cancel(ctx context.Context) error {
	return j.conn.post(ctx, fmt.Sprintf("jobs/%s/cancel", j.ID), nil, nil)
}

// JobMetrics is the accounting data the service keeps per job.
type JobMetrics struct {
	Timestamps struct {
		Created  ISOTime `json:"created"`
		Running  ISOTime `json:"running"`
		Finished ISOTime `json:"finished"`
	} `json:"timestamps"`
	Usage struct {
		QuantumSeconds float64 `json:"quantum_seconds"`
		Seconds        float64 `json:"seconds"`
	} `json:"usage"`
	Executions  int `json:"executions"`
	NumCircuits int `json:"num_circuits"`
}

// Metrics retrieves the job's execution metrics.
func (j *Job) Metrics(ctx context.Context) (*JobMetrics, error) {
	metrics := new(JobMetrics)
	if err := j.conn.get(ctx, fmt.Sprintf("jobs/%s/metrics", j.ID), nil, metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// Wait polls the job until it reaches a terminal state, pacing polls with
// the connection's rate limiter. When an interim result callback was set at
// submission, unseen interim payloads are delivered between polls. A context
// deadline surfaces as ErrJobTimeout.
func (j *Job) Wait(ctx context.Context) (*JobStatus, error) {
	for {
		if err := j.conn.waitPoll(ctx); err != nil {
			// The limiter fails either because the deadline passed while
			// waiting or because the next poll would fall beyond it. Both
			// mean the caller's time is up.
			if ctx.Err() == nil || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("job %s: %w", j.ID, ErrJobTimeout)
			}
			return nil, err
		}

		status, err := j.Status(ctx)
		if err != nil {
			return nil, err
		}
		if j.callback != nil {
			j.deliverInterim(ctx)
		}
		if status.Terminal() {
			logger.Debugf("job %s finished with status %s", j.ID, status.Status)
			return status, nil
		}
	}
}

// deliverInterim fetches interim results and invokes the callback for the
// ones not seen before. Fetch failures are logged, not fatal: interim data
// is best effort.
func (j *Job) deliverInterim(ctx context.Context) {
	var payloads []json.RawMessage
	if err := j.conn.get(ctx, fmt.Sprintf("jobs/%s/interim_results", j.ID), nil, &payloads); err != nil {
		logger.Debugf("job %s: cannot fetch interim results: %v", j.ID, err)
		return
	}

	j.mu.Lock()
	seen := j.seenInterim
	if len(payloads) > seen {
		j.seenInterim = len(payloads)
	}
	j.mu.Unlock()

	for _, payload := range payloads[min(seen, len(payloads)):] {
		j.callback(j.ID, payload)
	}
}

// Result blocks until the job completes and returns its decoded result.
// Failed and cancelled jobs surface as a JobError.
func (j *Job) Result(ctx context.Context) (*PrimitiveResult, error) {
	status, err := j.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if status.Status != StatusCompleted {
		return nil, &JobError{JobID: j.ID, Status: status.Status, Reason: status.StatusMsg}
	}

	var raw json.RawMessage
	if err := j.conn.get(ctx, fmt.Sprintf("jobs/%s/results", j.ID), nil, &raw); err != nil {
		return nil, err
	}
	return DecodePrimitiveResult(raw)
}
