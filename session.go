package qiskitruntime

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Session modes accepted by the service.
const (
	SessionModeDedicated = "dedicated"
	SessionModeBatch     = "batch"
)

type sessionOptions struct {
	maxTime time.Duration
	mode    string
}

// SessionOption configures a new session.
type SessionOption func(*sessionOptions)

// WithMaxTime caps how long the session may stay open on the server.
func WithMaxTime(d time.Duration) SessionOption {
	return func(options *sessionOptions) {
		options.maxTime = d
	}
}

// WithMode selects dedicated or batch scheduling for the session.
func WithMode(mode string) SessionOption {
	return func(options *sessionOptions) {
		options.mode = mode
	}
}

// Session is a client-side handle to a server-side session: jobs submitted
// through it carry its id so the scheduler groups them together.
type Session struct {
	svc     *Service
	id      string
	backend string
	mode    string

	mu     sync.Mutex
	closed bool
}

type sessionCreateReq struct {
	Backend string `json:"backend"`
	Mode    string `json:"mode,omitempty"`
	MaxTTL  int    `json:"max_ttl,omitempty"`
}

type sessionResp struct {
	ID             string  `json:"id"`
	Backend        string  `json:"backend_name"`
	Mode           string  `json:"mode"`
	State          string  `json:"state"`
	AcceptingJobs  bool    `json:"accepting_jobs"`
	StartedAt      ISOTime `json:"started_at"`
	LastJobStarted ISOTime `json:"last_job_started"`
}

// NewSession opens a session on the given backend.
func NewSession(ctx context.Context, svc *Service, backend string, options ...SessionOption) (*Session, error) {
	var opts sessionOptions
	for _, option := range options {
		option(&opts)
	}
	if opts.mode == "" {
		opts.mode = SessionModeDedicated
	}

	req := sessionCreateReq{Backend: backend, Mode: opts.mode}
	if opts.maxTime > 0 {
		req.MaxTTL = int(opts.maxTime.Seconds())
	}

	var resp sessionResp
	if err := svc.conn.post(ctx, "sessions", req, &resp); err != nil {
		return nil, err
	}
	logger.Debugf("opened %s session %s on backend %s", opts.mode, resp.ID, backend)
	return &Session{svc: svc, id: resp.ID, backend: backend, mode: opts.mode}, nil
}

// ID returns the server-assigned session id.
func (s *Session) ID() string { return s.id }

// Backend returns the backend the session was opened on.
func (s *Session) Backend() string { return s.backend }

type jobSubmitReq struct {
	ProgramID        string      `json:"program_id"`
	Backend          string      `json:"backend"`
	SessionID        string      `json:"session_id,omitempty"`
	Params           interface{} `json:"params"`
	Tags             []string    `json:"tags,omitempty"`
	MaxExecutionTime int         `json:"cost,omitempty"`
}

// Run submits a primitive job through the session and returns its handle.
func (s *Session) Run(ctx context.Context, programID string, inputs interface{}, options ...RunOption) (*Job, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	s.mu.Unlock()

	var cfg runConfig
	for _, option := range options {
		option(&cfg)
	}

	req := jobSubmitReq{
		ProgramID: programID,
		Backend:   s.backend,
		SessionID: s.id,
		Params:    inputs,
		Tags:      cfg.tags,
	}
	if cfg.maxExecutionTime > 0 {
		req.MaxExecutionTime = int(cfg.maxExecutionTime.Seconds())
	}

	var resp jobResp
	if err := s.svc.conn.post(ctx, "jobs", req, &resp); err != nil {
		return nil, err
	}

	job := jobFromResp(s.svc.conn, resp)
	if job.ProgramID == "" {
		job.ProgramID = programID
	}
	if job.Backend == "" {
		job.Backend = s.backend
	}
	if job.SessionID == "" {
		job.SessionID = s.id
	}
	job.callback = cfg.callback
	logger.Infof("submitted %s job %s to backend %s (session %s)", programID, job.ID, s.backend, s.id)
	return job, nil
}

// Runner submits primitive jobs. A Session groups the jobs it submits on the
// server side; OnBackend submits them standalone.
type Runner interface {
	Run(ctx context.Context, programID string, inputs interface{}, options ...RunOption) (*Job, error)
}

// backendRunner submits jobs directly against a backend, outside any session.
type backendRunner struct {
	svc     *Service
	backend string
}

// OnBackend returns a Runner that submits jobs to the named backend without
// opening a session.
func (s *Service) OnBackend(backend string) Runner {
	return &backendRunner{svc: s, backend: backend}
}

func (r *backendRunner) Run(ctx context.Context, programID string, inputs interface{}, options ...RunOption) (*Job, error) {
	var cfg runConfig
	for _, option := range options {
		option(&cfg)
	}

	req := jobSubmitReq{
		ProgramID: programID,
		Backend:   r.backend,
		Params:    inputs,
		Tags:      cfg.tags,
	}
	if cfg.maxExecutionTime > 0 {
		req.MaxExecutionTime = int(cfg.maxExecutionTime.Seconds())
	}

	var resp jobResp
	if err := r.svc.conn.post(ctx, "jobs", req, &resp); err != nil {
		return nil, err
	}

	job := jobFromResp(r.svc.conn, resp)
	if job.ProgramID == "" {
		job.ProgramID = programID
	}
	if job.Backend == "" {
		job.Backend = r.backend
	}
	job.callback = cfg.callback
	logger.Infof("submitted %s job %s to backend %s", programID, job.ID, r.backend)
	return job, nil
}

// Details retrieves the server's view of the session.
func (s *Session) Details(ctx context.Context) (*SessionDetails, error) {
	var resp sessionResp
	if err := s.svc.conn.get(ctx, "sessions/"+s.id, nil, &resp); err != nil {
		return nil, err
	}
	return &SessionDetails{
		ID:            resp.ID,
		Backend:       resp.Backend,
		Mode:          resp.Mode,
		State:         resp.State,
		AcceptingJobs: resp.AcceptingJobs,
		StartedAt:     resp.StartedAt.Time,
	}, nil
}

// SessionDetails is the server's view of a session.
type SessionDetails struct {
	ID            string
	Backend       string
	Mode          string
	State         string
	AcceptingJobs bool
	StartedAt     time.Time
}

// Close stops the session from accepting further jobs. Jobs already queued
// keep running.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.svc.conn.del(ctx, fmt.Sprintf("sessions/%s/close", s.id)); err != nil {
		return err
	}
	logger.Debugf("closed session %s", s.id)
	return nil
}
