package options

import "fmt"

// DefaultShots is the server-side default number of shots per circuit.
const DefaultShots = 4000

// ExecutionOptions controls how circuits are executed.
type ExecutionOptions struct {
	// Shots is the number of repetitions of each circuit, for sampling.
	Shots *int `json:"shots,omitempty"`
	// InitQubits selects whether qubits are reset to the ground state for
	// each shot.
	InitQubits *bool `json:"init_qubits,omitempty"`
}

// Validate checks the field constraints.
func (o *ExecutionOptions) Validate() error {
	if o.Shots != nil && *o.Shots < 1 {
		return fmt.Errorf("shots must be positive, got %d", *o.Shots)
	}
	return nil
}

func (o *ExecutionOptions) asMap() map[string]interface{} {
	m := make(map[string]interface{})
	if o.Shots != nil {
		m["shots"] = *o.Shots
	}
	if o.InitQubits != nil {
		m["init_qubits"] = *o.InitQubits
	}
	return m
}
