package prob

import (
	"fmt"

	"gorgonia.org/tensor"
)

// New constructs a float64 dense tensor with the given shape and
// backing. The empty shape produces a true scalar tensor. The backing
// is owned by the returned tensor.
func New(shape tensor.Shape, backing []float64) *tensor.Dense {
	if len(shape) == 0 {
		return tensor.New(tensor.FromScalar(backing[0]))
	}
	if shape.TotalSize() == 0 {
		return tensor.New(tensor.Of(tensor.Float64),
			tensor.WithShape(shape...))
	}

	return tensor.New(
		tensor.WithShape(shape...),
		tensor.WithBacking(backing),
	)
}

// New32 is New for float32 backings.
func New32(shape tensor.Shape, backing []float32) *tensor.Dense {
	if len(shape) == 0 {
		return tensor.New(tensor.FromScalar(backing[0]))
	}
	if shape.TotalSize() == 0 {
		return tensor.New(tensor.Of(tensor.Float32),
			tensor.WithShape(shape...))
	}

	return tensor.New(
		tensor.WithShape(shape...),
		tensor.WithBacking(backing),
	)
}

// Scalar wraps a float64 in a scalar (0-d) dense tensor.
func Scalar(v float64) *tensor.Dense {
	return tensor.New(tensor.FromScalar(v))
}

// Float64s returns the float64 backing of t as a slice, whether t is a
// scalar or a tensor.
func Float64s(t *tensor.Dense) ([]float64, error) {
	// Data panics on a zero-element tensor.
	if t.Shape().TotalSize() == 0 {
		return []float64{}, nil
	}

	switch data := t.Data().(type) {
	case []float64:
		return data, nil
	case float64:
		return []float64{data}, nil
	default:
		return nil, fmt.Errorf("float64s: expected float64 data but got %T",
			t.Data())
	}
}

// Float32s returns the float32 backing of t as a slice, whether t is a
// scalar or a tensor.
func Float32s(t *tensor.Dense) ([]float32, error) {
	if t.Shape().TotalSize() == 0 {
		return []float32{}, nil
	}

	switch data := t.Data().(type) {
	case []float32:
		return data, nil
	case float32:
		return []float32{data}, nil
	default:
		return nil, fmt.Errorf("float32s: expected float32 data but got %T",
			t.Data())
	}
}

// broadcastStrides returns, for each dimension of out, the stride into
// the flat backing of a tensor of shape in when in is broadcast to
// out. Dimensions that in lacks, or holds with size 1, contribute
// stride 0.
func broadcastStrides(out, in tensor.Shape) []int {
	strides := make([]int, len(out))

	stride := 1
	for i := 1; i <= len(in); i++ {
		d := len(out) - i
		if in[len(in)-i] != 1 {
			strides[d] = stride
		}
		stride *= in[len(in)-i]
	}

	return strides
}

// offsetOf maps a flat index into a tensor of shape out to the flat
// index of the corresponding element of a broadcast operand with the
// given broadcast strides.
func offsetOf(flat int, out tensor.Shape, strides []int) int {
	offset := 0
	for i := len(out) - 1; i >= 0; i-- {
		offset += (flat % out[i]) * strides[i]
		flat /= out[i]
	}

	return offset
}

// Apply returns f applied elementwise to t, in t's dtype. Float64 and
// float32 tensors are supported; f32 is the float32 form of f and is
// used for float32 tensors so single precision math stays in single
// precision.
func Apply(t *tensor.Dense, f func(float64) float64,
	f32 func(float32) float32) (*tensor.Dense, error) {
	switch t.Dtype() {
	case tensor.Float64:
		data, err := Float64s(t)
		if err != nil {
			return nil, fmt.Errorf("apply: %v", err)
		}

		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = f(v)
		}

		return New(t.Shape(), out), nil

	case tensor.Float32:
		data, err := Float32s(t)
		if err != nil {
			return nil, fmt.Errorf("apply: %v", err)
		}

		out := make([]float32, len(data))
		if f32 != nil {
			for i, v := range data {
				out[i] = f32(v)
			}
		} else {
			for i, v := range data {
				out[i] = float32(f(float64(v)))
			}
		}

		return New32(t.Shape(), out), nil

	default:
		return nil, fmt.Errorf("apply: dtype %v unsupported", t.Dtype())
	}
}

// Apply2 returns f applied elementwise to a and b after broadcasting
// them to a common shape. Both operands must hold float64s.
func Apply2(f func(a, b float64) float64, a, b *tensor.Dense) (*tensor.Dense,
	error) {
	shape, err := BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, fmt.Errorf("apply2: %w", err)
	}

	aData, err := Float64s(a)
	if err != nil {
		return nil, fmt.Errorf("apply2: %v", err)
	}
	bData, err := Float64s(b)
	if err != nil {
		return nil, fmt.Errorf("apply2: %v", err)
	}

	aStrides := broadcastStrides(shape, a.Shape())
	bStrides := broadcastStrides(shape, b.Shape())

	out := make([]float64, numElements(shape))
	for i := range out {
		out[i] = f(aData[offsetOf(i, shape, aStrides)],
			bData[offsetOf(i, shape, bStrides)])
	}

	return New(shape, out), nil
}

// Apply3 returns f applied elementwise to a, b, and c after
// broadcasting all three to a common shape. All operands must hold
// float64s.
func Apply3(f func(a, b, c float64) float64, a, b,
	c *tensor.Dense) (*tensor.Dense, error) {
	shape, err := BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, fmt.Errorf("apply3: %w", err)
	}
	shape, err = BroadcastShapes(shape, c.Shape())
	if err != nil {
		return nil, fmt.Errorf("apply3: %w", err)
	}

	aData, err := Float64s(a)
	if err != nil {
		return nil, fmt.Errorf("apply3: %v", err)
	}
	bData, err := Float64s(b)
	if err != nil {
		return nil, fmt.Errorf("apply3: %v", err)
	}
	cData, err := Float64s(c)
	if err != nil {
		return nil, fmt.Errorf("apply3: %v", err)
	}

	aStrides := broadcastStrides(shape, a.Shape())
	bStrides := broadcastStrides(shape, b.Shape())
	cStrides := broadcastStrides(shape, c.Shape())

	out := make([]float64, numElements(shape))
	for i := range out {
		out[i] = f(aData[offsetOf(i, shape, aStrides)],
			bData[offsetOf(i, shape, bStrides)],
			cData[offsetOf(i, shape, cStrides)])
	}

	return New(shape, out), nil
}

// BroadcastTo materializes t broadcast to shape. The shapes must be
// broadcast-compatible and shape must not be smaller than t's shape in
// any dimension.
func BroadcastTo(t *tensor.Dense, shape tensor.Shape) (*tensor.Dense, error) {
	common, err := BroadcastShapes(t.Shape(), shape)
	if err != nil {
		return nil, fmt.Errorf("broadcastTo: %w", err)
	}
	if !common.Eq(shape) {
		return nil, fmt.Errorf("broadcastTo: %w: cannot broadcast %v to %v",
			ErrIncompatibleShapes, t.Shape(), shape)
	}

	data, err := Float64s(t)
	if err != nil {
		return nil, fmt.Errorf("broadcastTo: %v", err)
	}

	strides := broadcastStrides(shape, t.Shape())
	out := make([]float64, numElements(shape))
	for i := range out {
		out[i] = data[offsetOf(i, shape, strides)]
	}

	return New(shape, out), nil
}

// SumTrailing sums t over its last k dimensions. With k = 0 the result
// is a copy of t; summing all dimensions produces a scalar tensor.
func SumTrailing(t *tensor.Dense, k int) (*tensor.Dense, error) {
	shape := t.Shape()
	if k < 0 || k > len(shape) {
		return nil, fmt.Errorf("sumTrailing: cannot sum %v trailing "+
			"dimensions of shape %v", k, shape)
	}

	data, err := Float64s(t)
	if err != nil {
		return nil, fmt.Errorf("sumTrailing: %v", err)
	}

	keep := shape[:len(shape)-k]
	inner := 1
	for _, dim := range shape[len(shape)-k:] {
		inner *= dim
	}

	out := make([]float64, numElements(keep))
	for i := range out {
		total := 0.0
		for j := 0; j < inner; j++ {
			total += data[i*inner+j]
		}
		out[i] = total
	}

	return New(keep.Clone(), out), nil
}
