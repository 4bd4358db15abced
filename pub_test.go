package qiskitruntime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bellCircuit() *Circuit {
	return &Circuit{
		Name:      "bell",
		QASM:      "OPENQASM 3.0; qubit[2] q; h q[0]; cx q[0], q[1];",
		NumQubits: 2,
	}
}

func TestValidatePauli(t *testing.T) {
	assert.NoError(t, validatePauli("XZ", 2))
	assert.NoError(t, validatePauli("II", 2))

	err := validatePauli("X", 2)
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	assert.Error(t, validatePauli("XA", 2))
}

func TestEstimatorPubValidate(t *testing.T) {
	pub := &EstimatorPub{
		Circuit:     bellCircuit(),
		Observables: []ObservableTerm{{Pauli: "ZZ", Coeff: 1.0}, {Pauli: "XX", Coeff: 0.5}},
	}
	require.NoError(t, pub.Validate())

	assert.Error(t, (&EstimatorPub{}).Validate(), "missing circuit")
	assert.Error(t, (&EstimatorPub{Circuit: bellCircuit()}).Validate(), "no observables")

	pub.Observables = []ObservableTerm{{Pauli: "ZZZ", Coeff: 1.0}}
	assert.Error(t, pub.Validate(), "observable wider than the circuit")

	pub.Observables = []ObservableTerm{{Pauli: "ZZ", Coeff: 1.0}}
	pub.Precision = -0.01
	assert.Error(t, pub.Validate())
}

func TestPubParameterBindings(t *testing.T) {
	circuit := bellCircuit()
	circuit.Parameters = []string{"theta", "phi"}

	pub := &SamplerPub{Circuit: circuit, ParameterValues: [][]float64{{0.1, 0.2}, {0.3, 0.4}}}
	require.NoError(t, pub.Validate())

	pub.ParameterValues = [][]float64{{0.1}}
	assert.Error(t, pub.Validate(), "binding arity mismatch")

	pub = &SamplerPub{Circuit: bellCircuit(), ParameterValues: [][]float64{{0.1}}}
	assert.Error(t, pub.Validate(), "bindings for an unparameterized circuit")
}

func TestSamplerPubShots(t *testing.T) {
	pub := &SamplerPub{Circuit: bellCircuit(), Shots: -1}
	assert.Error(t, pub.Validate())

	pub = &SamplerPub{Circuit: bellCircuit(), Shots: MaxShots + 1}
	require.NoError(t, pub.Validate())
	assert.Equal(t, MaxShots, pub.Shots, "oversized shot counts are clamped")

	pub = &SamplerPub{Circuit: bellCircuit(), Shots: 1024}
	require.NoError(t, pub.Validate())
	assert.Equal(t, 1024, pub.Shots)
}

func TestCircuitValidate(t *testing.T) {
	assert.Error(t, (&Circuit{NumQubits: 2}).Validate(), "missing body")
	assert.Error(t, (&Circuit{QASM: "x", NumQubits: 0}).Validate())
	assert.NoError(t, bellCircuit().Validate())
}
