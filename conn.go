package qiskitruntime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	// DefaultRetries is the default number of attempts every request gets.
	DefaultRetries = 5
	// DefaultTimeout is the default timeout for each request.
	DefaultTimeout = 30 * time.Second
	// DefaultPollInterval is the default spacing between job status polls.
	DefaultPollInterval = 5 * time.Second
	// DefaultClientAppl identifies this client to the service.
	DefaultClientAppl = "qiskit-runtime-go"
)

type dialOptions struct {
	clientAppl   string
	retries      int
	timeout      time.Duration
	pollInterval time.Duration
	breaker      bool
	registerer   prometheus.Registerer
	httpClient   *http.Client
}

// DialOption configures how the connection works.
type DialOption func(*dialOptions)

// WithClientApplication specifies which application is using the service.
func WithClientApplication(appl string) DialOption {
	return func(options *dialOptions) {
		options.clientAppl = DefaultClientAppl + ":" + appl
	}
}

// WithRetries configures the number of attempts performed for any request.
func WithRetries(retries int) DialOption {
	return func(options *dialOptions) {
		options.retries = retries
	}
}

// WithTimeout configures the timeout for each request.
func WithTimeout(timeout time.Duration) DialOption {
	return func(options *dialOptions) {
		options.timeout = timeout
	}
}

// WithPollInterval configures the minimum spacing between job status polls.
func WithPollInterval(interval time.Duration) DialOption {
	return func(options *dialOptions) {
		options.pollInterval = interval
	}
}

// WithCircuitBreaker trips the connection open after consecutive transport
// failures instead of hammering an unreachable service.
func WithCircuitBreaker() DialOption {
	return func(options *dialOptions) {
		options.breaker = true
	}
}

// WithMetrics registers request counters and latency histograms with the
// given registerer.
func WithMetrics(reg prometheus.Registerer) DialOption {
	return func(options *dialOptions) {
		options.registerer = reg
	}
}

// WithHTTPClient substitutes the underlying HTTP client. Proxy and TLS
// settings from the client parameters are not applied to a substituted
// client.
func WithHTTPClient(client *http.Client) DialOption {
	return func(options *dialOptions) {
		options.httpClient = client
	}
}

// Conn is an authenticated connection to the runtime API.
type Conn struct {
	params  ClientParameters
	dopts   dialOptions
	baseURL string
	c       *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker
	metrics *connMetrics

	mu   sync.Mutex
	auth AuthHandler
}

// Dial validates the client parameters and returns a connection to the
// runtime API. Quantum channel tokens are exchanged for an access token
// before the connection is handed back.
func Dial(params ClientParameters, options ...DialOption) (*Conn, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	c := &Conn{params: params, baseURL: strings.TrimRight(params.BaseURL(), "/")}
	for _, option := range options {
		option(&c.dopts)
	}

	if c.dopts.clientAppl == "" {
		c.dopts.clientAppl = DefaultClientAppl
	}
	if c.dopts.retries == 0 {
		c.dopts.retries = DefaultRetries
	}
	if c.dopts.timeout == 0 {
		c.dopts.timeout = DefaultTimeout
	}
	if c.dopts.pollInterval == 0 {
		c.dopts.pollInterval = DefaultPollInterval
	}
	c.limiter = rate.NewLimiter(rate.Every(c.dopts.pollInterval), 1)

	if c.dopts.httpClient != nil {
		c.c = c.dopts.httpClient
	} else {
		transport, err := params.transport()
		if err != nil {
			return nil, err
		}
		c.c = &http.Client{Transport: transport, Timeout: c.dopts.timeout}
	}

	if c.dopts.breaker {
		c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "runtime-api"})
	}
	if c.dopts.registerer != nil {
		c.metrics = newConnMetrics(c.dopts.registerer)
	}

	c.auth = params.AuthHandler()
	if params.Channel == ChannelIBMQuantum {
		if err := c.obtainToken(context.Background()); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type loginReq struct {
	Token string `json:"apiToken"`
}

type loginResp struct {
	ID     string  `json:"id"`
	UserID string  `json:"userId"`
	TTL    float64 `json:"ttl"`
}

// obtainToken exchanges the quantum channel API token for an access token.
func (c *Conn) obtainToken(ctx context.Context) error {
	var b bytes.Buffer
	if err := json.NewEncoder(&b).Encode(loginReq{Token: c.params.Token}); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/loginWithToken", &b)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.roundTrip(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return NewCredentialsErr(
			"login failed, check your API token",
			fmt.Sprintf("loginWithToken returned status %d: %s", resp.StatusCode, body),
		)
	}

	var r loginResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return err
	}

	c.mu.Lock()
	c.auth = &QuantumAuth{AccessToken: r.ID}
	c.mu.Unlock()
	logger.Debugf("obtained access token for user %s, ttl %.0fs", r.UserID, r.TTL)
	return nil
}

// newRequest builds an authenticated request against the runtime API.
func (c *Conn) newRequest(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.auth.Apply(req)
	c.mu.Unlock()

	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Qx-Client-Application", c.dopts.clientAppl)
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func (c *Conn) roundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	var resp *http.Response
	var err error
	if c.cb != nil {
		var v interface{}
		v, err = c.cb.Execute(func() (interface{}, error) {
			return c.c.Do(req)
		})
		if v != nil {
			resp = v.(*http.Response)
		}
	} else {
		resp, err = c.c.Do(req)
	}

	if c.metrics != nil {
		c.metrics.observe(req, resp, time.Since(start))
	}
	return resp, err
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// do runs a request, retrying transient failures and refreshing the access
// token once on a 401 when the channel supports it.
func (c *Conn) do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error
	refreshed := false

	for attempt := 0; attempt < c.dopts.retries; attempt++ {
		if attempt > 0 {
			if req.GetBody != nil {
				if req.Body, err = req.GetBody(); err != nil {
					return nil, err
				}
			}
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		resp, err = c.roundTrip(req)
		if err != nil {
			logger.Warnf("request %s %s failed: %v", req.Method, req.URL.Path, err)
			continue
		}

		if resp.StatusCode == http.StatusUnauthorized && c.params.Channel == ChannelIBMQuantum && !refreshed {
			resp.Body.Close()
			refreshed = true
			if err = c.obtainToken(req.Context()); err != nil {
				return nil, err
			}
			c.mu.Lock()
			c.auth.Apply(req)
			c.mu.Unlock()
			continue
		}

		if retryable(resp.StatusCode) {
			logger.Warnf("got a %d response to %v", resp.StatusCode, resp.Request.URL)
			resp.Body.Close()
			continue
		}
		return resp, nil
	}

	if err != nil {
		return nil, err
	}
	return nil, &RequestError{
		StatusCode: resp.StatusCode,
		Body:       fmt.Sprintf("no proper response after %d attempts", c.dopts.retries),
		RequestID:  req.Header.Get("X-Request-ID"),
	}
}

// call issues a request and decodes the JSON response into out, which may
// be nil when the body is irrelevant.
func (c *Conn) call(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return err
		}
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RequestError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			RequestID:  req.Header.Get("X-Request-ID"),
		}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Conn) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.call(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Conn) post(ctx context.Context, path string, in, out interface{}) error {
	return c.call(ctx, http.MethodPost, path, nil, in, out)
}

func (c *Conn) del(ctx context.Context, path string) error {
	return c.call(ctx, http.MethodDelete, path, nil, nil, nil)
}

// waitPoll blocks until the next status poll is allowed.
func (c *Conn) waitPoll(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}
