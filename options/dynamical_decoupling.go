package options

// Dynamical decoupling pulse sequences accepted by the service.
var DDSequenceTypes = []string{"XX", "XpXm", "XY4"}

// Placement of extra idle time that cannot be divided evenly.
var DDSlackDistributions = []string{"middle", "edges"}

// Scheduling passes accepted by the service.
var DDSchedulingMethods = []string{"alap", "asap"}

// DynamicalDecouplingOptions controls insertion of dynamical decoupling
// sequences into idle periods.
type DynamicalDecouplingOptions struct {
	// Enable turns dynamical decoupling on.
	Enable *bool `json:"enable,omitempty"`
	// SequenceType selects the decoupling pulse sequence.
	SequenceType *string `json:"sequence_type,omitempty"`
	// ExtraSlackDistribution says where slack that cannot be split evenly
	// between the pulses goes.
	ExtraSlackDistribution *string `json:"extra_slack_distribution,omitempty"`
	// SchedulingMethod selects the scheduling pass used to find idle periods.
	SchedulingMethod *string `json:"scheduling_method,omitempty"`
}

// Validate checks the enumerations.
func (o *DynamicalDecouplingOptions) Validate() error {
	if o.SequenceType != nil && !oneOf(*o.SequenceType, DDSequenceTypes...) {
		return enumErr("sequence_type", *o.SequenceType, DDSequenceTypes)
	}
	if o.ExtraSlackDistribution != nil && !oneOf(*o.ExtraSlackDistribution, DDSlackDistributions...) {
		return enumErr("extra_slack_distribution", *o.ExtraSlackDistribution, DDSlackDistributions)
	}
	if o.SchedulingMethod != nil && !oneOf(*o.SchedulingMethod, DDSchedulingMethods...) {
		return enumErr("scheduling_method", *o.SchedulingMethod, DDSchedulingMethods)
	}
	return nil
}

func (o *DynamicalDecouplingOptions) asMap() map[string]interface{} {
	m := make(map[string]interface{})
	if o.Enable != nil {
		m["enable"] = *o.Enable
	}
	if o.SequenceType != nil {
		m["sequence_type"] = *o.SequenceType
	}
	if o.ExtraSlackDistribution != nil {
		m["extra_slack_distribution"] = *o.ExtraSlackDistribution
	}
	if o.SchedulingMethod != nil {
		m["scheduling_method"] = *o.SchedulingMethod
	}
	return m
}
