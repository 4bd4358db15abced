package qiskitruntime

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfiguration = `{
	"backend_name": "ibm_test",
	"backend_version": "1.0.2",
	"n_qubits": 5,
	"basis_gates": ["id", "sx", "x", "cx", "rzz"],
	"gates": [{"name": "cx"}, {"name": "rzz"}],
	"coupling_map": [[0, 1], [1, 2], [2, 3], [3, 4]],
	"supported_instructions": ["cx", "if_else", "rzz"],
	"supported_features": ["qasm3"],
	"online_date": "2024-03-01T00:00:00Z"
}`

func TestBackendsSkipsMalformedConfigurations(t *testing.T) {
	var configCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/backends", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"devices": ["ibm_test", "ibm_broken"]}`))
	})
	mux.HandleFunc("/backends/ibm_test/configuration", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&configCalls, 1)
		w.Write([]byte(testConfiguration))
	})
	mux.HandleFunc("/backends/ibm_broken/configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	})

	svc := NewService(testConn(t, mux))
	backends, err := svc.Backends(context.Background())
	require.NoError(t, err)
	require.Len(t, backends, 1)
	assert.Equal(t, "ibm_test", backends[0].Name)
	assert.Equal(t, 5, backends[0].Configuration().NumQubits)

	// The listing fills the cache, so a lookup does not refetch.
	_, err = svc.Backend(context.Background(), "ibm_test")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&configCalls))
}

func TestBackendFetchesAndCaches(t *testing.T) {
	var configCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/backends/ibm_test/configuration", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&configCalls, 1)
		w.Write([]byte(testConfiguration))
	})

	svc := NewService(testConn(t, mux))
	b, err := svc.Backend(context.Background(), "ibm_test")
	require.NoError(t, err)
	assert.Equal(t, "ibm_test", b.Name)

	_, err = svc.Backend(context.Background(), "ibm_test")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&configCalls))
}

func TestJobsFilterQuery(t *testing.T) {
	q := JobsFilter{
		Limit:     10,
		Offset:    20,
		Pending:   true,
		ProgramID: "sampler",
		Backend:   "ibm_test",
		SessionID: "ses-1",
	}.query()

	assert.Equal(t, "10", q.Get("limit"))
	assert.Equal(t, "20", q.Get("offset"))
	assert.Equal(t, "true", q.Get("pending"))
	assert.Equal(t, "sampler", q.Get("program"))
	assert.Equal(t, "ibm_test", q.Get("backend"))
	assert.Equal(t, "ses-1", q.Get("session_id"))

	assert.Empty(t, JobsFilter{}.query())
}

func TestJobsListing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sampler", r.URL.Query().Get("program"))
		w.Write([]byte(`{
			"jobs": [
				{"id": "job-1", "backend": "ibm_test", "program": {"id": "sampler"}, "session_id": "ses-1"},
				{"id": "job-2", "backend": "ibm_test", "program": {"id": "sampler"}}
			],
			"count": 2
		}`))
	})

	svc := NewService(testConn(t, mux))
	jobs, err := svc.Jobs(context.Background(), JobsFilter{ProgramID: "sampler"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, "sampler", jobs[0].ProgramID)
	assert.Equal(t, "ses-1", jobs[0].SessionID)
	assert.Equal(t, "job-2", jobs[1].ID)
}

func TestBackendStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/backends/ibm_test/configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testConfiguration))
	})
	mux.HandleFunc("/backends/ibm_test/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"state": true, "status": "active", "length_queue": 7}`))
	})

	svc := NewService(testConn(t, mux))
	b, err := svc.Backend(context.Background(), "ibm_test")
	require.NoError(t, err)

	status, err := b.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Operational)
	assert.Equal(t, 7, status.PendingJobs)
	assert.Equal(t, "ibm_test", status.BackendName)
}
