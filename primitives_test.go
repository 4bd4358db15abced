package qiskitruntime

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zaba505/qiskit-runtime-go/options"
)

// primitiveSession opens a session against a server that records the job
// submission body.
func primitiveSession(t *testing.T, jobBody *map[string]json.RawMessage) *Session {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "ses-1"}`))
	})
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(jobBody))
		w.Write([]byte(`{"id": "job-1", "status": "Queued"}`))
	})

	svc := NewService(testConn(t, mux))
	session, err := NewSession(context.Background(), svc, "ibm_test")
	require.NoError(t, err)
	return session
}

func submittedParams(t *testing.T, jobBody map[string]json.RawMessage) map[string]json.RawMessage {
	t.Helper()
	var params map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(jobBody["params"], &params))
	return params
}

func TestEstimatorRun(t *testing.T) {
	var jobBody map[string]json.RawMessage
	session := primitiveSession(t, &jobBody)

	opts := options.Default()
	opts.Twirling.EnableGates = options.Bool(true)
	estimator := NewEstimator(session, opts)

	pub := &EstimatorPub{
		Circuit:     bellCircuit(),
		Observables: []ObservableTerm{{Pauli: "ZZ", Coeff: 1.0}},
		Precision:   0.015,
	}
	job, err := estimator.Run(context.Background(), []*EstimatorPub{pub})
	require.NoError(t, err)
	assert.Equal(t, EstimatorProgramID, job.ProgramID)

	assert.JSONEq(t, `"estimator"`, string(jobBody["program_id"]))
	params := submittedParams(t, jobBody)
	assert.JSONEq(t, `2`, string(params["version"]))

	var pubs []EstimatorPub
	require.NoError(t, json.Unmarshal(params["pubs"], &pubs))
	require.Len(t, pubs, 1)
	assert.InDelta(t, 0.015, pubs[0].Precision, 1e-9)

	assert.JSONEq(t, `{"twirling": {"enable_gates": true}}`, string(params["options"]))
}

func TestEstimatorRejectsInvalidInput(t *testing.T) {
	session := primitiveSession(t, new(map[string]json.RawMessage))
	estimator := NewEstimator(session, nil)

	_, err := estimator.Run(context.Background(), nil)
	assert.Error(t, err, "no pubs")

	_, err = estimator.Run(context.Background(), []*EstimatorPub{
		{Circuit: bellCircuit(), Observables: []ObservableTerm{{Pauli: "ZZ"}}},
		{Circuit: bellCircuit()},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pub 1")
}

func TestEstimatorRejectsInvalidOptions(t *testing.T) {
	session := primitiveSession(t, new(map[string]json.RawMessage))
	opts := options.Default()
	opts.Transpilation.LayoutMethod = options.String("magic")
	estimator := NewEstimator(session, opts)

	_, err := estimator.Run(context.Background(), []*EstimatorPub{
		{Circuit: bellCircuit(), Observables: []ObservableTerm{{Pauli: "ZZ"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transpilation")
}

func TestSamplerRunLeavesCallerPubsUntouched(t *testing.T) {
	var jobBody map[string]json.RawMessage
	session := primitiveSession(t, &jobBody)
	sampler := NewSampler(session, nil)

	unset := &SamplerPub{Circuit: bellCircuit()}
	oversized := &SamplerPub{Circuit: bellCircuit(), Shots: MaxShots + 5}
	_, err := sampler.Run(context.Background(), []*SamplerPub{unset, oversized})
	require.NoError(t, err)

	assert.Equal(t, 0, unset.Shots, "shots defaulting stays on the submitted copy")
	assert.Equal(t, MaxShots+5, oversized.Shots, "clamping stays on the submitted copy")

	var pubs []SamplerPub
	require.NoError(t, json.Unmarshal(submittedParams(t, jobBody)["pubs"], &pubs))
	require.Len(t, pubs, 2)
	assert.Equal(t, DefaultShots, pubs[0].Shots)
	assert.Equal(t, MaxShots, pubs[1].Shots)
}

func TestSamplerOnBareBackend(t *testing.T) {
	var jobBody map[string]json.RawMessage
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&jobBody))
		w.Write([]byte(`{"id": "job-1", "status": "Queued"}`))
	})

	svc := NewService(testConn(t, mux))
	sampler := NewSampler(svc.OnBackend("ibm_test"), nil)

	job, err := sampler.Run(context.Background(), []*SamplerPub{{Circuit: bellCircuit()}})
	require.NoError(t, err)
	assert.Equal(t, "ibm_test", job.Backend)

	assert.JSONEq(t, `"ibm_test"`, string(jobBody["backend"]))
	_, hasSession := jobBody["session_id"]
	assert.False(t, hasSession, "standalone jobs carry no session id")
}

func TestSamplerRunDefaultShots(t *testing.T) {
	var jobBody map[string]json.RawMessage
	session := primitiveSession(t, &jobBody)
	sampler := NewSampler(session, nil)

	_, err := sampler.Run(context.Background(), []*SamplerPub{{Circuit: bellCircuit()}})
	require.NoError(t, err)

	var pubs []SamplerPub
	require.NoError(t, json.Unmarshal(submittedParams(t, jobBody)["pubs"], &pubs))
	require.Len(t, pubs, 1)
	assert.Equal(t, DefaultShots, pubs[0].Shots)
}

func TestSamplerShotsFromExecutionOptions(t *testing.T) {
	var jobBody map[string]json.RawMessage
	session := primitiveSession(t, &jobBody)

	opts := options.Default()
	opts.Execution.Shots = options.Int(1024)
	sampler := NewSampler(session, opts)

	_, err := sampler.Run(context.Background(), []*SamplerPub{
		{Circuit: bellCircuit()},
		{Circuit: bellCircuit(), Shots: 32},
	})
	require.NoError(t, err)

	var pubs []SamplerPub
	require.NoError(t, json.Unmarshal(submittedParams(t, jobBody)["pubs"], &pubs))
	require.Len(t, pubs, 2)
	assert.Equal(t, 1024, pubs[0].Shots, "unset shots inherit the execution options")
	assert.Equal(t, 32, pubs[1].Shots, "explicit shots win")
}
