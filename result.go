package qiskitruntime

import (
	"encoding/json"
	"fmt"
	"math"
)

// Array is a shaped, dense float64 array: the container primitive results
// come back in. Elementwise arithmetic against scalars and same-shape arrays
// is provided so callers can build figures of merit without pulling the data
// out first.
type Array struct {
	shape []int
	data  []float64
}

// NewArray builds an array from a shape and its row-major data.
func NewArray(shape []int, data []float64) (*Array, error) {
	size := 1
	for _, dim := range shape {
		if dim < 0 {
			return nil, validationErr("shape", "negative dimension %d", dim)
		}
		size *= dim
	}
	if size != len(data) {
		return nil, validationErr("data", "shape %v wants %d values, got %d", shape, size, len(data))
	}
	return &Array{shape: append([]int(nil), shape...), data: data}, nil
}

// Shape returns a copy of the array's shape.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// Size returns the total number of elements.
func (a *Array) Size() int { return len(a.data) }

// Data returns the backing row-major data.
func (a *Array) Data() []float64 { return a.data }

// At returns the element at the given index. It panics when the index does
// not match the array's rank or bounds, like slice indexing does.
func (a *Array) At(index ...int) float64 {
	if len(index) != len(a.shape) {
		panic(fmt.Sprintf("array: %d indexes for rank %d array", len(index), len(a.shape)))
	}
	flat := 0
	for dim, i := range index {
		if i < 0 || i >= a.shape[dim] {
			panic(fmt.Sprintf("array: index %d out of range for axis %d of size %d", i, dim, a.shape[dim]))
		}
		flat = flat*a.shape[dim] + i
	}
	return a.data[flat]
}

// Slice returns the sub-array at position i along the first axis.
func (a *Array) Slice(i int) (*Array, error) {
	if len(a.shape) == 0 {
		return nil, validationErr("slice", "cannot slice a rank-0 array")
	}
	if i < 0 || i >= a.shape[0] {
		return nil, validationErr("slice", "index %d out of range for axis of size %d", i, a.shape[0])
	}
	stride := len(a.data) / a.shape[0]
	sub := make([]float64, stride)
	copy(sub, a.data[i*stride:(i+1)*stride])
	return &Array{shape: append([]int(nil), a.shape[1:]...), data: sub}, nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (a *Array) zip(b *Array, op func(x, y float64) float64) (*Array, error) {
	if !sameShape(a.shape, b.shape) {
		return nil, validationErr("operand", "mismatched shapes %v and %v", a.shape, b.shape)
	}
	out := make([]float64, len(a.data))
	for i := range a.data {
		out[i] = op(a.data[i], b.data[i])
	}
	return &Array{shape: append([]int(nil), a.shape...), data: out}, nil
}

func (a *Array) apply(op func(x float64) float64) *Array {
	out := make([]float64, len(a.data))
	for i, x := range a.data {
		out[i] = op(x)
	}
	return &Array{shape: append([]int(nil), a.shape...), data: out}
}

// Add returns a + b elementwise.
func (a *Array) Add(b *Array) (*Array, error) {
	return a.zip(b, func(x, y float64) float64 { return x + y })
}

// Sub returns a - b elementwise.
func (a *Array) Sub(b *Array) (*Array, error) {
	return a.zip(b, func(x, y float64) float64 { return x - y })
}

// Mul returns a * b elementwise.
func (a *Array) Mul(b *Array) (*Array, error) {
	return a.zip(b, func(x, y float64) float64 { return x * y })
}

// Div returns a / b elementwise.
func (a *Array) Div(b *Array) (*Array, error) {
	return a.zip(b, func(x, y float64) float64 { return x / y })
}

// AddScalar returns a + x elementwise.
func (a *Array) AddScalar(x float64) *Array { return a.apply(func(v float64) float64 { return v + x }) }

// SubScalar returns a - x elementwise.
func (a *Array) SubScalar(x float64) *Array { return a.apply(func(v float64) float64 { return v - x }) }

// MulScalar returns a * x elementwise.
func (a *Array) MulScalar(x float64) *Array { return a.apply(func(v float64) float64 { return v * x }) }

// DivScalar returns a / x elementwise.
func (a *Array) DivScalar(x float64) *Array { return a.apply(func(v float64) float64 { return v / x }) }

// Abs returns |a| elementwise.
func (a *Array) Abs() *Array { return a.apply(math.Abs) }

// Pow returns a**x elementwise.
func (a *Array) Pow(x float64) *Array {
	return a.apply(func(v float64) float64 { return math.Pow(v, x) })
}

// arrayWire is the object form of an array on the wire.
type arrayWire struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

func (a Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(arrayWire{Shape: a.shape, Data: a.data})
}

// UnmarshalJSON accepts either the {shape, data} object form or a bare
// one-dimensional list of numbers.
func (a *Array) UnmarshalJSON(raw []byte) error {
	var wire arrayWire
	if err := json.Unmarshal(raw, &wire); err == nil && wire.Data != nil {
		parsed, err := NewArray(wire.Shape, wire.Data)
		if err != nil {
			return err
		}
		*a = *parsed
		return nil
	}
	var flat []float64
	if err := json.Unmarshal(raw, &flat); err != nil {
		return fmt.Errorf("%s is not a valid array", raw)
	}
	a.shape = []int{len(flat)}
	a.data = flat
	return nil
}

// DataBin holds the decoded payload of one pub result. Estimator pubs fill
// the expectation value fields, sampler pubs the per-register counts.
type DataBin struct {
	Evs    *Array                    `json:"evs,omitempty"`
	Stds   *Array                    `json:"stds,omitempty"`
	Counts map[string]map[string]int `json:"counts,omitempty"`
}

// PubResult is the decoded result of a single pub.
type PubResult struct {
	Data     DataBin                `json:"data"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Counts returns the bitstring counts of one classical register.
func (r *PubResult) Counts(register string) map[string]int {
	return r.Data.Counts[register]
}

// PrimitiveResult is the decoded result of a primitive job: one PubResult
// per submitted pub, in submission order.
type PrimitiveResult struct {
	PubResults []*PubResult
	Metadata   map[string]interface{}
	Spans      ExecutionSpans
}

// Len returns the number of pub results.
func (r *PrimitiveResult) Len() int { return len(r.PubResults) }

type primitiveResultWire struct {
	Results  []*PubResult           `json:"results"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type resultMetadataWire struct {
	Execution struct {
		ExecutionSpans ExecutionSpans `json:"execution_spans"`
	} `json:"execution"`
}

// DecodePrimitiveResult decodes a raw job result payload, pulling execution
// spans out of the result metadata when present.
func DecodePrimitiveResult(raw json.RawMessage) (*PrimitiveResult, error) {
	var wire primitiveResultWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("cannot decode primitive result: %w", err)
	}

	result := &PrimitiveResult{PubResults: wire.Results, Metadata: wire.Metadata}
	var meta resultMetadataWire
	if err := json.Unmarshal(raw, &struct {
		Metadata *resultMetadataWire `json:"metadata"`
	}{&meta}); err == nil {
		result.Spans = meta.Execution.ExecutionSpans
	}
	return result, nil
}
