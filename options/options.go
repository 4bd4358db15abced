// Package options holds the nested configuration records accepted by the
// runtime primitives. Nil pointer fields mean "unset": they are omitted from
// the program inputs and the server applies its defaults.
package options

import "fmt"

// Bool returns a pointer to b, for filling option fields inline.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i, for filling option fields inline.
func Int(i int) *int { return &i }

// Float returns a pointer to f, for filling option fields inline.
func Float(f float64) *float64 { return &f }

// String returns a pointer to s, for filling option fields inline.
func String(s string) *string { return &s }

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func enumErr(field, value string, allowed []string) error {
	return fmt.Errorf("unsupported value %q for %s, supported values are %q", value, field, allowed)
}

// Options aggregates every option group a primitive accepts.
type Options struct {
	Execution           ExecutionOptions           `json:"execution,omitempty"`
	Transpilation       TranspilationOptions       `json:"transpilation,omitempty"`
	Twirling            TwirlingOptions            `json:"twirling,omitempty"`
	DynamicalDecoupling DynamicalDecouplingOptions `json:"dynamical_decoupling,omitempty"`
}

// Default returns an empty option tree: everything left to server defaults.
func Default() *Options { return &Options{} }

// Validate checks every option group.
func (o *Options) Validate() error {
	if err := o.Execution.Validate(); err != nil {
		return fmt.Errorf("execution: %w", err)
	}
	if err := o.Transpilation.Validate(); err != nil {
		return fmt.Errorf("transpilation: %w", err)
	}
	if err := o.Twirling.Validate(); err != nil {
		return fmt.Errorf("twirling: %w", err)
	}
	if err := o.DynamicalDecoupling.Validate(); err != nil {
		return fmt.Errorf("dynamical_decoupling: %w", err)
	}
	return nil
}

// ProgramInputs renders the set fields as the nested map carried in the job
// request payload. Unset groups are omitted entirely.
func (o *Options) ProgramInputs() map[string]interface{} {
	inputs := make(map[string]interface{})
	if m := o.Execution.asMap(); len(m) > 0 {
		inputs["execution"] = m
	}
	if m := o.Transpilation.asMap(); len(m) > 0 {
		inputs["transpilation"] = m
	}
	if m := o.Twirling.asMap(); len(m) > 0 {
		inputs["twirling"] = m
	}
	if m := o.DynamicalDecoupling.asMap(); len(m) > 0 {
		inputs["dynamical_decoupling"] = m
	}
	return inputs
}
