package qiskitruntime

import (
	"context"

	"github.com/Zaba505/qiskit-runtime-go/options"
)

// SamplerProgramID is the program the service runs for bitstring sampling.
const SamplerProgramID = "sampler"

// Sampler draws measurement outcome samples from parameterized circuits.
type Sampler struct {
	runner  Runner
	options *options.Options
}

// NewSampler binds a sampler to a session or to a bare backend runner. A nil
// opts uses server defaults for everything.
func NewSampler(runner Runner, opts *options.Options) *Sampler {
	if opts == nil {
		opts = options.Default()
	}
	return &Sampler{runner: runner, options: opts}
}

// Options returns the option tree the sampler submits with.
func (s *Sampler) Options() *options.Options { return s.options }

// Run validates the pubs and submits one sampler job covering all of them.
// Pubs without a shot count inherit the execution options' shots, falling
// back to DefaultShots.
func (s *Sampler) Run(ctx context.Context, pubs []*SamplerPub, runOptions ...RunOption) (*Job, error) {
	if len(pubs) == 0 {
		return nil, validationErr("pubs", "at least one pub is required")
	}
	if err := s.options.Validate(); err != nil {
		return nil, err
	}

	defaultShots := DefaultShots
	if s.options.Execution.Shots != nil {
		defaultShots = *s.options.Execution.Shots
	}
	// Shots defaulting and clamping happen on copies so the caller's pubs
	// come back untouched.
	coerced := make([]*SamplerPub, len(pubs))
	for i, pub := range pubs {
		if pub == nil {
			return nil, pubError(i, validationErr("pub", "is required"))
		}
		p := *pub
		if p.Shots == 0 {
			p.Shots = defaultShots
		}
		if err := p.Validate(); err != nil {
			return nil, pubError(i, err)
		}
		coerced[i] = &p
	}

	inputs := map[string]interface{}{
		"pubs":    coerced,
		"version": 2,
	}
	if opts := s.options.ProgramInputs(); len(opts) > 0 {
		inputs["options"] = opts
	}
	return s.runner.Run(ctx, SamplerProgramID, inputs, runOptions...)
}
