package options

import "fmt"

// Layout selection passes accepted by the service.
var LayoutMethods = []string{"trivial", "dense", "noise_adaptive", "sabre"}

// Routing passes accepted by the service.
var RoutingMethods = []string{"basic", "lookahead", "stochastic", "sabre", "none"}

// TranspilationOptions controls the server-side transpilation step.
type TranspilationOptions struct {
	// SkipTranspilation submits circuits exactly as given.
	SkipTranspilation *bool `json:"skip_transpilation,omitempty"`
	// InitialLayout is the initial position of virtual qubits on physical
	// qubits.
	InitialLayout []int `json:"initial_layout,omitempty"`
	// LayoutMethod names the layout selection pass.
	LayoutMethod *string `json:"layout_method,omitempty"`
	// RoutingMethod names the routing pass.
	RoutingMethod *string `json:"routing_method,omitempty"`
	// ApproximationDegree is the heuristic dial used for circuit
	// approximation: 1.0 is no approximation, 0.0 maximal approximation.
	ApproximationDegree *float64 `json:"approximation_degree,omitempty"`
}

// Validate checks the enumerations and ranges.
func (o *TranspilationOptions) Validate() error {
	if o.LayoutMethod != nil && !oneOf(*o.LayoutMethod, LayoutMethods...) {
		return enumErr("layout_method", *o.LayoutMethod, LayoutMethods)
	}
	if o.RoutingMethod != nil && !oneOf(*o.RoutingMethod, RoutingMethods...) {
		return enumErr("routing_method", *o.RoutingMethod, RoutingMethods)
	}
	if o.ApproximationDegree != nil {
		if d := *o.ApproximationDegree; d < 0.0 || d > 1.0 {
			return fmt.Errorf(
				"approximation_degree must be between 0.0 (maximal approximation) and 1.0 (no approximation), got %v", d)
		}
	}
	return nil
}

func (o *TranspilationOptions) asMap() map[string]interface{} {
	m := make(map[string]interface{})
	if o.SkipTranspilation != nil {
		m["skip_transpilation"] = *o.SkipTranspilation
	}
	if o.InitialLayout != nil {
		m["initial_layout"] = o.InitialLayout
	}
	if o.LayoutMethod != nil {
		m["layout_method"] = *o.LayoutMethod
	}
	if o.RoutingMethod != nil {
		m["routing_method"] = *o.RoutingMethod
	}
	if o.ApproximationDegree != nil {
		m["approximation_degree"] = *o.ApproximationDegree
	}
	return m
}
