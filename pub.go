package qiskitruntime

import (
	"fmt"
	"strings"
)

const (
	// DefaultShots is the number of shots used when neither the pub nor the
	// options specify one.
	DefaultShots = 4000
	// MaxShots is the most shots a single pub can ask for.
	MaxShots = 100000
)

// Circuit is an opaque, caller-constructed circuit: this package only ships
// it to the service and checks the declared parameter list against the
// bindings it is submitted with.
type Circuit struct {
	Name       string   `json:"name,omitempty"`
	QASM       string   `json:"qasm"`
	NumQubits  int      `json:"num_qubits"`
	Parameters []string `json:"parameters,omitempty"`
}

// Validate checks the structural constraints of the circuit.
func (c *Circuit) Validate() error {
	if c.QASM == "" {
		return validationErr("qasm", "circuit body is required")
	}
	if c.NumQubits < 1 {
		return validationErr("num_qubits", "must be positive, got %d", c.NumQubits)
	}
	return nil
}

// validatePauli checks that label is a Pauli string over exactly numQubits
// qubits.
func validatePauli(label string, numQubits int) error {
	if len(label) != numQubits {
		return validationErr("pauli", "label %q acts on %d qubits, want %d", label, len(label), numQubits)
	}
	if i := strings.IndexFunc(label, func(c rune) bool {
		return c != 'I' && c != 'X' && c != 'Y' && c != 'Z'
	}); i >= 0 {
		return validationErr("pauli", "label %q contains %q, want only I, X, Y, Z", label, label[i])
	}
	return nil
}

// validateBindings checks that every parameter binding matches the
// circuit's declared parameter list.
func validateBindings(circuit *Circuit, parameterValues [][]float64) error {
	want := len(circuit.Parameters)
	if want == 0 && len(parameterValues) > 0 {
		return validationErr("parameter_values", "circuit declares no parameters but bindings were given")
	}
	for i, binding := range parameterValues {
		if len(binding) != want {
			return validationErr("parameter_values",
				"binding %d has %d values but the circuit declares %d parameters", i, len(binding), want)
		}
	}
	return nil
}

// ObservableTerm is one Pauli term of an observable, with its coefficient.
type ObservableTerm struct {
	Pauli string  `json:"pauli"`
	Coeff float64 `json:"coeff"`
}

// EstimatorPub bundles a circuit, the observables to estimate, and the
// parameter bindings to run it under.
type EstimatorPub struct {
	Circuit         *Circuit         `json:"circuit"`
	Observables     []ObservableTerm `json:"observables"`
	ParameterValues [][]float64      `json:"parameter_values,omitempty"`
	// Precision is the target standard error; zero leaves it to the server
	// default.
	Precision float64 `json:"precision,omitempty"`
}

// Validate checks the pub before submission.
func (p *EstimatorPub) Validate() error {
	if p.Circuit == nil {
		return validationErr("circuit", "is required")
	}
	if err := p.Circuit.Validate(); err != nil {
		return err
	}
	if len(p.Observables) == 0 {
		return validationErr("observables", "at least one observable is required")
	}
	for _, term := range p.Observables {
		if err := validatePauli(term.Pauli, p.Circuit.NumQubits); err != nil {
			return err
		}
	}
	if err := validateBindings(p.Circuit, p.ParameterValues); err != nil {
		return err
	}
	if p.Precision < 0 {
		return validationErr("precision", "must not be negative, got %v", p.Precision)
	}
	return nil
}

// SamplerPub bundles a circuit and the parameter bindings to sample it
// under.
type SamplerPub struct {
	Circuit         *Circuit    `json:"circuit"`
	ParameterValues [][]float64 `json:"parameter_values,omitempty"`
	// Shots of zero falls back to the execution options, then DefaultShots.
	Shots int `json:"shots,omitempty"`
}

// Validate checks the pub before submission. Shot counts above MaxShots are
// clamped with a warning rather than rejected.
func (p *SamplerPub) Validate() error {
	if p.Circuit == nil {
		return validationErr("circuit", "is required")
	}
	if err := p.Circuit.Validate(); err != nil {
		return err
	}
	if err := validateBindings(p.Circuit, p.ParameterValues); err != nil {
		return err
	}
	if p.Shots < 0 {
		return validationErr("shots", "must not be negative, got %d", p.Shots)
	}
	if p.Shots > MaxShots {
		logger.Warnf("shots were more than the maximum, %d, so they were set to be the maximum shots, %d",
			p.Shots, MaxShots)
		p.Shots = MaxShots
	}
	return nil
}

// pubError annotates a pub validation failure with the pub's position.
func pubError(i int, err error) error {
	return fmt.Errorf("pub %d: %w", i, err)
}
