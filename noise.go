package qiskitruntime

import (
	"encoding/json"
	"math"
)

// pauliWeight counts the non-identity factors of a Pauli label.
func pauliWeight(label string) int {
	weight := 0
	for _, c := range label {
		if c != 'I' {
			weight++
		}
	}
	return weight
}

// PauliLindbladError is an N-qubit Pauli error channel generated by Pauli
// Lindblad dissipators: a list of Pauli generator terms with one dissipator
// rate each. The probability of the single-Pauli channel term for rate r is
// p = 1/2 - 1/2 exp(-2r).
type PauliLindbladError struct {
	generators []string
	rates      []float64
}

// NewPauliLindbladError validates that generators and rates line up and
// that every generator is a Pauli label over the same number of qubits.
func NewPauliLindbladError(generators []string, rates []float64) (*PauliLindbladError, error) {
	if len(generators) != len(rates) {
		return nil, validationErr("rates", "generators has length %d but rates has length %d",
			len(generators), len(rates))
	}
	numQubits := -1
	for _, label := range generators {
		if numQubits == -1 {
			numQubits = len(label)
		}
		if err := validatePauli(label, numQubits); err != nil {
			return nil, err
		}
	}
	return &PauliLindbladError{
		generators: append([]string(nil), generators...),
		rates:      append([]float64(nil), rates...),
	}, nil
}

// Generators returns the Pauli generator labels.
func (e *PauliLindbladError) Generators() []string { return e.generators }

// Rates returns the Lindblad generator rates.
func (e *PauliLindbladError) Rates() []float64 { return e.rates }

// NumQubits returns the number of qubits the channel acts on.
func (e *PauliLindbladError) NumQubits() int {
	if len(e.generators) == 0 {
		return 0
	}
	return len(e.generators[0])
}

// Probabilities returns the per-term channel probabilities
// p_j = 1/2 - 1/2 exp(-2 r_j).
func (e *PauliLindbladError) Probabilities() []float64 {
	probs := make([]float64, len(e.rates))
	for i, r := range e.rates {
		probs[i] = 0.5 - 0.5*math.Exp(-2*r)
	}
	return probs
}

// RestrictNumBodies keeps only the terms acting on exactly numQubits qubits.
func (e *PauliLindbladError) RestrictNumBodies(numQubits int) (*PauliLindbladError, error) {
	if numQubits < 0 {
		return nil, validationErr("num_qubits", "must be 0 or larger, got %d", numQubits)
	}
	var generators []string
	var rates []float64
	for i, label := range e.generators {
		if pauliWeight(label) == numQubits {
			generators = append(generators, label)
			rates = append(rates, e.rates[i])
		}
	}
	return &PauliLindbladError{generators: generators, rates: rates}, nil
}

type pauliLindbladErrorWire struct {
	Generators []string  `json:"generators"`
	Rates      []float64 `json:"rates"`
}

func (e PauliLindbladError) MarshalJSON() ([]byte, error) {
	return json.Marshal(pauliLindbladErrorWire{Generators: e.generators, Rates: e.rates})
}

func (e *PauliLindbladError) UnmarshalJSON(raw []byte) error {
	var wire pauliLindbladErrorWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	parsed, err := NewPauliLindbladError(wire.Generators, wire.Rates)
	if err != nil {
		return err
	}
	*e = *parsed
	return nil
}

// LayerError is the error channel of a single layer of instructions: the
// layer's circuit, the physical qubits it ran on, and the learnt channel.
type LayerError struct {
	circuit *Circuit
	qubits  []int
	err     *PauliLindbladError
}

// NewLayerError validates that circuit, qubits and error agree on the
// number of qubits.
func NewLayerError(circuit *Circuit, qubits []int, channelErr *PauliLindbladError) (*LayerError, error) {
	if circuit == nil {
		return nil, validationErr("circuit", "is required")
	}
	if channelErr == nil {
		return nil, validationErr("error", "is required")
	}
	if circuit.NumQubits != len(qubits) || circuit.NumQubits != channelErr.NumQubits() {
		return nil, validationErr("qubits",
			"mismatching numbers of qubits: circuit has %d, qubits has %d, error has %d",
			circuit.NumQubits, len(qubits), channelErr.NumQubits())
	}
	return &LayerError{circuit: circuit, qubits: append([]int(nil), qubits...), err: channelErr}, nil
}

// Circuit returns the layer's circuit.
func (l *LayerError) Circuit() *Circuit { return l.circuit }

// Qubits returns the physical qubits the layer ran on.
func (l *LayerError) Qubits() []int { return l.qubits }

// Error returns the learnt error channel.
func (l *LayerError) Error() *PauliLindbladError { return l.err }

// NumQubits returns the number of qubits in the layer.
func (l *LayerError) NumQubits() int { return len(l.qubits) }

type layerErrorWire struct {
	Circuit *Circuit            `json:"circuit"`
	Qubits  []int               `json:"qubits"`
	Error   *PauliLindbladError `json:"error"`
}

func (l LayerError) MarshalJSON() ([]byte, error) {
	return json.Marshal(layerErrorWire{Circuit: l.circuit, Qubits: l.qubits, Error: l.err})
}

func (l *LayerError) UnmarshalJSON(raw []byte) error {
	var wire layerErrorWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	parsed, err := NewLayerError(wire.Circuit, wire.Qubits, wire.Error)
	if err != nil {
		return err
	}
	*l = *parsed
	return nil
}

// NoiseLearnerResult is the outcome of a noise learner experiment: one
// LayerError per learnt layer, plus shared metadata.
type NoiseLearnerResult struct {
	data     []*LayerError
	metadata map[string]interface{}
}

// NewNoiseLearnerResult wraps the given layer errors and metadata.
func NewNoiseLearnerResult(data []*LayerError, metadata map[string]interface{}) *NoiseLearnerResult {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return &NoiseLearnerResult{data: append([]*LayerError(nil), data...), metadata: metadata}
}

// Data returns the layer errors.
func (r *NoiseLearnerResult) Data() []*LayerError { return r.data }

// Metadata returns the shared metadata.
func (r *NoiseLearnerResult) Metadata() map[string]interface{} { return r.metadata }

// Len returns the number of layer errors.
func (r *NoiseLearnerResult) Len() int { return len(r.data) }

// At returns the i-th layer error.
func (r *NoiseLearnerResult) At(i int) *LayerError { return r.data[i] }
