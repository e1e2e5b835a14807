package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi int32
		want      int32
	}{
		{"inside", 500, 0, 2000, 500},
		{"at lower bound", 0, 0, 2000, 0},
		{"at upper bound", 2000, 0, 2000, 2000},
		{"below", -50, 0, 2000, 0},
		{"above", 2050, 0, 2000, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.v, tt.lo, tt.hi))
		})
	}
}

func TestAdjust_ClampsAtUpperBound(t *testing.T) {
	ctx := context.Background()
	period := New[int32](1950)

	got, err := Adjust(ctx, period, 100, 0, 2000)
	require.NoError(t, err)
	assert.Equal(t, int32(2000), got)

	got, err = Adjust(ctx, period, 100, 0, 2000)
	require.NoError(t, err)
	assert.Equal(t, int32(2000), got)
}

func TestAdjust_ClampsAtLowerBound(t *testing.T) {
	ctx := context.Background()
	period := New[int32](50)

	got, err := Adjust(ctx, period, -100, 0, 2000)
	require.NoError(t, err)
	assert.Equal(t, int32(0), got)

	got, err = Adjust(ctx, period, -100, 0, 2000)
	require.NoError(t, err)
	assert.Equal(t, int32(0), got)
}

func TestAdjust_NeverLeavesRange(t *testing.T) {
	ctx := context.Background()
	period := New[int32](500)
	deltas := []int32{100, 100, -100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100,
		-100, -100, -100, -100, -100, -100, -100, -100, -100, -100, -100, -100, -100, -100, -100, -100, -100, -100, -100, -100, -100, -100, -100}

	for _, d := range deltas {
		got, err := Adjust(ctx, period, d, 0, 2000)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, int32(0))
		assert.LessOrEqual(t, got, int32(2000))
	}
}
