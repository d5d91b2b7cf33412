package prob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestConvertSampleShape(t *testing.T) {
	tests := []struct {
		in   interface{}
		want SampleShape
	}{
		{nil, SampleShape{}},
		{SampleShape{2, 3}, SampleShape{2, 3}},
		{tensor.Shape{2, 3}, SampleShape{2, 3}},
		{[]int{2, 3}, SampleShape{2, 3}},
		{[]int32{2, 3}, SampleShape{2, 3}},
		{[]int64{2, 3}, SampleShape{2, 3}},
		{[]int{}, SampleShape{}},
		{5, SampleShape{5}},
		{int8(5), SampleShape{5}},
		{int32(5), SampleShape{5}},
		{int64(5), SampleShape{5}},
		{uint(5), SampleShape{5}},
		{uint16(5), SampleShape{5}},
		{uint64(5), SampleShape{5}},
		{0, SampleShape{0}},
	}

	for _, test := range tests {
		got, err := ConvertSampleShape(test.in)
		require.NoError(t, err, "shape %T(%v)", test.in, test.in)
		assert.Equal(t, test.want, got, "shape %T(%v)", test.in, test.in)
	}
}

func TestConvertSampleShapeCopies(t *testing.T) {
	// The normalized shape must not alias the caller's slice.
	in := []int{2, 3}
	got, err := ConvertSampleShape(in)
	require.NoError(t, err)

	in[0] = 99
	assert.Equal(t, SampleShape{2, 3}, got)
}

func TestConvertSampleShapeInvalid(t *testing.T) {
	for _, in := range []interface{}{"shape", 1.5, [][]int{{1}}, -1,
		[]int{2, -3}} {
		_, err := ConvertSampleShape(in)
		assert.ErrorIs(t, err, ErrInvalidShapeKind, "shape %T(%v)", in, in)
	}
}

func TestSampleShapeSize(t *testing.T) {
	assert.Equal(t, 1, SampleShape{}.Size())
	assert.Equal(t, 6, SampleShape{2, 3}.Size())
	assert.Equal(t, 0, SampleShape{2, 0}.Size())
}

func TestConvertSeedAndSampleShape(t *testing.T) {
	key, shape, err := ConvertSeedAndSampleShape(12, []int{4, 2})
	require.NoError(t, err)
	assert.Equal(t, NewKey(12), key)
	assert.Equal(t, SampleShape{4, 2}, shape)

	_, _, err = ConvertSeedAndSampleShape("bad", []int{4})
	assert.ErrorIs(t, err, ErrInvalidSeedKind)

	_, _, err = ConvertSeedAndSampleShape(12, "bad")
	assert.ErrorIs(t, err, ErrInvalidShapeKind)
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b, want tensor.Shape
	}{
		{tensor.Shape{}, tensor.Shape{}, tensor.Shape{}},
		{tensor.Shape{}, tensor.Shape{3}, tensor.Shape{3}},
		{tensor.Shape{3}, tensor.Shape{3}, tensor.Shape{3}},
		{tensor.Shape{1}, tensor.Shape{3}, tensor.Shape{3}},
		{tensor.Shape{2, 1}, tensor.Shape{3}, tensor.Shape{2, 3}},
		{tensor.Shape{4, 1, 3}, tensor.Shape{2, 1}, tensor.Shape{4, 2, 3}},
	}

	for _, test := range tests {
		got, err := BroadcastShapes(test.a, test.b)
		require.NoError(t, err, "%v and %v", test.a, test.b)
		assert.Equal(t, test.want, got, "%v and %v", test.a, test.b)

		// Broadcasting is symmetric.
		got, err = BroadcastShapes(test.b, test.a)
		require.NoError(t, err, "%v and %v", test.b, test.a)
		assert.Equal(t, test.want, got, "%v and %v", test.b, test.a)
	}
}

func TestBroadcastShapesIncompatible(t *testing.T) {
	_, err := BroadcastShapes(tensor.Shape{2}, tensor.Shape{3})
	assert.ErrorIs(t, err, ErrIncompatibleShapes)

	_, err = BroadcastShapes(tensor.Shape{4, 2}, tensor.Shape{4, 3})
	assert.ErrorIs(t, err, ErrIncompatibleShapes)
}
