package qiskitruntime

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArrayShapeCheck(t *testing.T) {
	_, err := NewArray([]int{2, 3}, []float64{1, 2, 3})
	assert.Error(t, err)

	_, err = NewArray([]int{-2}, nil)
	assert.Error(t, err)

	a, err := NewArray([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, 6, a.Size())
	assert.Equal(t, []int{2, 3}, a.Shape())
}

func TestArrayIndexing(t *testing.T) {
	a, err := NewArray([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	assert.Equal(t, 1.0, a.At(0, 0))
	assert.Equal(t, 6.0, a.At(1, 2))
	assert.Panics(t, func() { a.At(0) })
	assert.Panics(t, func() { a.At(2, 0) })

	row, err := a.Slice(1)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, row.Shape())
	assert.Equal(t, []float64{4, 5, 6}, row.Data())

	_, err = a.Slice(5)
	assert.Error(t, err)
}

func TestArrayArithmetic(t *testing.T) {
	a, _ := NewArray([]int{2}, []float64{1, -2})
	b, _ := NewArray([]int{2}, []float64{3, 5})

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 3}, sum.Data())

	ratio, err := b.Div(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, -2.5}, ratio.Data())

	assert.Equal(t, []float64{2, -4}, a.MulScalar(2).Data())
	assert.Equal(t, []float64{1, 2}, a.Abs().Data())
	assert.Equal(t, []float64{1, 4}, a.Pow(2).Data())

	c, _ := NewArray([]int{3}, []float64{1, 2, 3})
	_, err = a.Add(c)
	assert.Error(t, err, "mismatched shapes")
}

func TestArrayUnmarshalForms(t *testing.T) {
	var a Array
	require.NoError(t, json.Unmarshal([]byte(`{"shape": [2, 2], "data": [1, 2, 3, 4]}`), &a))
	assert.Equal(t, []int{2, 2}, a.Shape())

	var flat Array
	require.NoError(t, json.Unmarshal([]byte(`[0.1, 0.2, 0.3]`), &flat))
	assert.Equal(t, []int{3}, flat.Shape())
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, flat.Data())

	var bad Array
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"shape": [3], "data": [1]}`), &bad))
}

func TestDecodePrimitiveResult(t *testing.T) {
	result, err := DecodePrimitiveResult(json.RawMessage(testResult))
	require.NoError(t, err)

	require.Equal(t, 1, result.Len())
	pub := result.PubResults[0]
	assert.InDelta(t, 0.52, pub.Data.Evs.At(0), 1e-9)
	assert.InDelta(t, 0.01, pub.Data.Stds.At(0), 1e-9)
	assert.EqualValues(t, 4096, pub.Metadata["shots"])

	require.Len(t, result.Spans, 2)
	assert.Equal(t, []int{0}, result.Spans.PubIdxs())
}

func TestDecodeSamplerCounts(t *testing.T) {
	result, err := DecodePrimitiveResult(json.RawMessage(`{
		"results": [
			{"data": {"counts": {"meas": {"00": 2012, "11": 2084}}}}
		]
	}`))
	require.NoError(t, err)

	counts := result.PubResults[0].Counts("meas")
	want := map[string]int{"00": 2012, "11": 2084}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, result.PubResults[0].Counts("other"))
}
