package options

import "fmt"

// Twirling strategies accepted by the service.
var TwirlingStrategies = []string{"active", "active-accum", "active-circuit", "all"}

// TwirlingOptions controls Pauli twirling of gates and measurements.
type TwirlingOptions struct {
	// EnableGates turns on twirling of entangling gates.
	EnableGates *bool `json:"enable_gates,omitempty"`
	// EnableMeasure turns on twirling of measurements.
	EnableMeasure *bool `json:"enable_measure,omitempty"`
	// NumRandomizations is the number of twirled circuit instances to draw.
	// Nil lets the server choose automatically.
	NumRandomizations *int `json:"num_randomizations,omitempty"`
	// ShotsPerRandomization is the number of shots per twirled instance. Nil
	// lets the server choose automatically.
	ShotsPerRandomization *int `json:"shots_per_randomization,omitempty"`
	// Strategy selects which layers get twirled:
	//
	//   active: gates in the target layer
	//   active-accum: accumulated active gates of all layers so far
	//   active-circuit: active gates of the whole circuit
	//   all: every qubit of every layer
	Strategy *string `json:"strategy,omitempty"`
}

// Validate checks the enumerations and counts.
func (o *TwirlingOptions) Validate() error {
	if o.NumRandomizations != nil && *o.NumRandomizations < 1 {
		return fmt.Errorf("num_randomizations must be at least 1, got %d", *o.NumRandomizations)
	}
	if o.ShotsPerRandomization != nil && *o.ShotsPerRandomization < 1 {
		return fmt.Errorf("shots_per_randomization must be at least 1, got %d", *o.ShotsPerRandomization)
	}
	if o.Strategy != nil && !oneOf(*o.Strategy, TwirlingStrategies...) {
		return enumErr("strategy", *o.Strategy, TwirlingStrategies)
	}
	return nil
}

func (o *TwirlingOptions) asMap() map[string]interface{} {
	m := make(map[string]interface{})
	if o.EnableGates != nil {
		m["enable_gates"] = *o.EnableGates
	}
	if o.EnableMeasure != nil {
		m["enable_measure"] = *o.EnableMeasure
	}
	if o.NumRandomizations != nil {
		m["num_randomizations"] = *o.NumRandomizations
	}
	if o.ShotsPerRandomization != nil {
		m["shots_per_randomization"] = *o.ShotsPerRandomization
	}
	if o.Strategy != nil {
		m["strategy"] = *o.Strategy
	}
	return m
}
