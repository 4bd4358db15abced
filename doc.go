// Package qiskitruntime is a client for the IBM Quantum runtime service.
//
// The service exposes two primitives, Sampler and Estimator, that execute
// parameterized quantum circuits remotely. A typical flow is: resolve a saved
// account, dial a connection, open a session on a backend, submit pubs
// through a primitive, and poll the returned job handle for its result.
//
//	svc, err := qiskitruntime.Open("")
//	session, err := qiskitruntime.NewSession(ctx, svc, "ibm_kyoto")
//	estimator := qiskitruntime.NewEstimator(session, nil)
//	job, err := estimator.Run(ctx, pubs)
//	result, err := job.Result(ctx)
//
// Circuits, observables and parameter bindings are treated as opaque caller
// constructed inputs; this package only packages them into request payloads
// and decodes what the service sends back.
package qiskitruntime
