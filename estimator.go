package qiskitruntime

import (
	"context"

	"github.com/Zaba505/qiskit-runtime-go/options"
)

// EstimatorProgramID is the program the service runs for expectation value
// estimation.
const EstimatorProgramID = "estimator"

// Estimator computes expectation values of observables over parameterized
// circuits.
type Estimator struct {
	runner  Runner
	options *options.Options
}

// NewEstimator binds an estimator to a session or to a bare backend runner.
// A nil opts uses server defaults for everything.
func NewEstimator(runner Runner, opts *options.Options) *Estimator {
	if opts == nil {
		opts = options.Default()
	}
	return &Estimator{runner: runner, options: opts}
}

// Options returns the option tree the estimator submits with.
func (e *Estimator) Options() *options.Options { return e.options }

// Run validates the pubs and submits one estimator job covering all of them.
func (e *Estimator) Run(ctx context.Context, pubs []*EstimatorPub, runOptions ...RunOption) (*Job, error) {
	if len(pubs) == 0 {
		return nil, validationErr("pubs", "at least one pub is required")
	}
	if err := e.options.Validate(); err != nil {
		return nil, err
	}
	for i, pub := range pubs {
		if err := pub.Validate(); err != nil {
			return nil, pubError(i, err)
		}
	}

	inputs := map[string]interface{}{
		"pubs":    pubs,
		"version": 2,
	}
	if opts := e.options.ProgramInputs(); len(opts) > 0 {
		inputs["options"] = opts
	}
	return e.runner.Run(ctx, EstimatorProgramID, inputs, runOptions...)
}
