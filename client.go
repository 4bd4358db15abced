package qiskitruntime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/Zaba505/qiskit-runtime-go/accounts"
	"golang.org/x/sync/errgroup"
)

// Service is a concurrent-safe client for the runtime API, the entry point
// for everything else in this package.
type Service struct {
	conn *Conn

	// UseFractionalGates controls how backend configurations are filtered,
	// see ConfigurationFromServerData. Set it before the first Backends call.
	UseFractionalGates bool

	mu       sync.Mutex
	backends map[string]*Backend
}

// NewService wraps a dialed connection.
func NewService(conn *Conn) *Service {
	return &Service{
		conn:     conn,
		backends: make(map[string]*Backend),
	}
}

// Open resolves the named account (or the default one when name is empty)
// from the default account file and environment, dials, and returns a
// service client.
func Open(name string, options ...DialOption) (*Service, error) {
	path, err := accounts.DefaultPath()
	if err != nil {
		return nil, err
	}
	acct, err := accounts.Resolve(path, name)
	if err != nil {
		return nil, err
	}
	conn, err := Dial(ParamsFromAccount(acct), options...)
	if err != nil {
		return nil, err
	}
	return NewService(conn), nil
}

type backendsResp struct {
	Devices []string `json:"devices"`
}

// Backends lists the backends visible to the account. Configurations are
// fetched concurrently and cached; backends whose configuration the server
// reports malformed are skipped.
func (s *Service) Backends(ctx context.Context) ([]*Backend, error) {
	var names backendsResp
	if err := s.conn.get(ctx, "backends", nil, &names); err != nil {
		return nil, err
	}

	configs := make([]*BackendConfiguration, len(names.Devices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, name := range names.Devices {
		i, name := i, name
		g.Go(func() error {
			var raw json.RawMessage
			if err := s.conn.get(gctx, fmt.Sprintf("backends/%s/configuration", name), nil, &raw); err != nil {
				return fmt.Errorf("backend %s: %w", name, err)
			}
			configs[i] = ConfigurationFromServerData(raw, s.conn.params.Instance, s.UseFractionalGates)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Backend, 0, len(names.Devices))
	for i, name := range names.Devices {
		if configs[i] == nil {
			continue
		}
		b := &Backend{Name: name, conn: s.conn, cfg: configs[i]}
		s.backends[name] = b
		out = append(out, b)
	}
	return out, nil
}

// Backend returns a single backend by name, from the cache when possible.
func (s *Service) Backend(ctx context.Context, name string) (*Backend, error) {
	s.mu.Lock()
	b, ok := s.backends[name]
	s.mu.Unlock()
	if ok {
		return b, nil
	}

	var raw json.RawMessage
	if err := s.conn.get(ctx, fmt.Sprintf("backends/%s/configuration", name), nil, &raw); err != nil {
		return nil, err
	}
	cfg := ConfigurationFromServerData(raw, s.conn.params.Instance, s.UseFractionalGates)
	if cfg == nil {
		return nil, fmt.Errorf("backend %q has an invalid server-side configuration", name)
	}

	b = &Backend{Name: name, conn: s.conn, cfg: cfg}
	s.mu.Lock()
	s.backends[name] = b
	s.mu.Unlock()
	return b, nil
}

// JobsFilter narrows a job listing.
type JobsFilter struct {
	Limit     int
	Offset    int
	Pending   bool
	ProgramID string
	Backend   string
	SessionID string
}

func (f JobsFilter) query() url.Values {
	q := url.Values{}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	if f.Pending {
		q.Set("pending", "true")
	}
	if f.ProgramID != "" {
		q.Set("program", f.ProgramID)
	}
	if f.Backend != "" {
		q.Set("backend", f.Backend)
	}
	if f.SessionID != "" {
		q.Set("session_id", f.SessionID)
	}
	return q
}

type jobsResp struct {
	Jobs  []jobResp `json:"jobs"`
	Count int       `json:"count"`
}

// Jobs lists jobs submitted by the account, newest first.
func (s *Service) Jobs(ctx context.Context, filter JobsFilter) ([]*Job, error) {
	var resp jobsResp
	if err := s.conn.get(ctx, "jobs", filter.query(), &resp); err != nil {
		return nil, err
	}
	jobs := make([]*Job, len(resp.Jobs))
	for i, jr := range resp.Jobs {
		jobs[i] = jobFromResp(s.conn, jr)
	}
	return jobs, nil
}

// Job returns a handle to an existing job by id.
func (s *Service) Job(ctx context.Context, jobID string) (*Job, error) {
	var resp jobResp
	if err := s.conn.get(ctx, "jobs/"+jobID, nil, &resp); err != nil {
		return nil, err
	}
	return jobFromResp(s.conn, resp), nil
}

// DeleteJob removes a terminal job from the service.
func (s *Service) DeleteJob(ctx context.Context, jobID string) error {
	return s.conn.del(ctx, "jobs/"+jobID)
}

// Usage is the account's consumption of the service for the current period.
type Usage struct {
	Period struct {
		Start ISOTime `json:"start"`
		End   ISOTime `json:"end"`
	} `json:"period"`
	ByInstance []struct {
		Instance string  `json:"instance"`
		Quota    float64 `json:"quota"`
		Usage    float64 `json:"usage"`
	} `json:"byInstance"`
}

// Usage retrieves the account usage for the current billing period.
func (s *Service) Usage(ctx context.Context) (*Usage, error) {
	usage := new(Usage)
	if err := s.conn.get(ctx, "usage", nil, usage); err != nil {
		return nil, err
	}
	return usage, nil
}
