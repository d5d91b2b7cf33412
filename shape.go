package prob

import (
	"fmt"

	"gorgonia.org/tensor"
)

// A SampleShape is the canonical form of a "how many samples" request:
// an ordered sequence of non-negative integers prepended to the
// batch and event shape of whatever is sampled. The empty SampleShape
// means "draw exactly one sample", with no extra leading dimensions.
type SampleShape []int

// Size returns the total number of samples the shape describes. The
// empty shape describes a single sample.
func (s SampleShape) Size() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}

	return n
}

// ConvertSampleShape normalizes a sample shape value into a
// SampleShape. A single integer of any fixed width becomes a 1-tuple,
// integer slices become copies with every element converted to int,
// and nil becomes the empty shape. Elements must be non-negative.
// Anything else fails with ErrInvalidShapeKind.
func ConvertSampleShape(shape interface{}) (SampleShape, error) {
	out := SampleShape{}

	switch s := shape.(type) {
	case nil:
		return out, nil
	case SampleShape:
		out = append(out, s...)
	case tensor.Shape:
		out = append(out, s...)
	case []int:
		out = append(out, s...)
	case []int32:
		for _, dim := range s {
			out = append(out, int(dim))
		}
	case []int64:
		for _, dim := range s {
			out = append(out, int(dim))
		}
	case int:
		out = SampleShape{s}
	case int8:
		out = SampleShape{int(s)}
	case int16:
		out = SampleShape{int(s)}
	case int32:
		out = SampleShape{int(s)}
	case int64:
		out = SampleShape{int(s)}
	case uint:
		out = SampleShape{int(s)}
	case uint8:
		out = SampleShape{int(s)}
	case uint16:
		out = SampleShape{int(s)}
	case uint32:
		out = SampleShape{int(s)}
	case uint64:
		out = SampleShape{int(s)}
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidShapeKind, shape)
	}

	for _, dim := range out {
		if dim < 0 {
			return nil, fmt.Errorf("%w: negative dimension %v",
				ErrInvalidShapeKind, dim)
		}
	}

	return out, nil
}

// ConvertSeedAndSampleShape normalizes a heterogeneous seed and sample
// shape in one call. It validates both eagerly, before any numeric
// work, so malformed inputs fail fast with a precise diagnostic.
func ConvertSeedAndSampleShape(seed, shape interface{}) (Key, SampleShape,
	error) {
	key, err := ConvertSeed(seed)
	if err != nil {
		return Key{}, nil, err
	}

	sampleShape, err := ConvertSampleShape(shape)
	if err != nil {
		return Key{}, nil, err
	}

	return key, sampleShape, nil
}

// BroadcastShapes returns the shape that a and b broadcast to, aligning
// trailing dimensions and expanding size-1 dimensions, or
// ErrIncompatibleShapes if no such shape exists. Scalar shapes
// broadcast with everything.
func BroadcastShapes(a, b tensor.Shape) (tensor.Shape, error) {
	rank := len(a)
	if len(b) > rank {
		rank = len(b)
	}

	out := make(tensor.Shape, rank)
	for i := 1; i <= rank; i++ {
		da, db := 1, 1
		if i <= len(a) {
			da = a[len(a)-i]
		}
		if i <= len(b) {
			db = b[len(b)-i]
		}

		switch {
		case da == db:
			out[rank-i] = da
		case da == 1:
			out[rank-i] = db
		case db == 1:
			out[rank-i] = da
		default:
			return nil, fmt.Errorf("%w: %v and %v", ErrIncompatibleShapes,
				a, b)
		}
	}

	return out, nil
}
