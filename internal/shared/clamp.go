package shared

import (
	"cmp"
	"context"
)

// Clamp bounds v to [lo, hi].
func Clamp[N cmp.Ordered](v, lo, hi N) N {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// Adjust adds delta to the value held by s and clamps the result to
// [lo, hi] in the same critical section. It returns the stored value.
func Adjust(ctx context.Context, s *State[int32], delta, lo, hi int32) (int32, error) {
	return With(ctx, s, func(v *int32) (int32, error) {
		*v = Clamp(*v+delta, lo, hi)
		return *v, nil
	})
}
