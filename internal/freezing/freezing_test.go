package freezing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepressionFromSE(t *testing.T) {
	tests := []struct {
		name        string
		se          float64
		want        float64
		wantClamped bool
	}{
		{name: "zero", se: 0, want: 0},
		{name: "exact breakpoint", se: 30, want: 1.86},
		{name: "midpoint interpolation", se: 31.5, want: 1.945},
		{name: "first segment", se: 1.5, want: 0.09},
		{name: "last breakpoint", se: 120, want: 8.92},
		{name: "beyond table clamps", se: 180, want: 8.92, wantClamped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DepressionFromSE(tt.se)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got.FPDSE, 1e-9)
			assert.Equal(t, tt.wantClamped, got.Clamped)
		})
	}
}

func TestDepressionRejectsInvalid(t *testing.T) {
	_, err := DepressionFromSE(-1)
	assert.Error(t, err)

	_, err = DepressionFromSE(math.NaN())
	assert.Error(t, err)
}

func TestTableIsMonotonic(t *testing.T) {
	table := Table()
	require.NotEmpty(t, table)
	for i := 1; i < len(table); i++ {
		assert.Greater(t, table[i].SE, table[i-1].SE)
		assert.Greater(t, table[i].FPD, table[i-1].FPD)
	}
	assert.Equal(t, 120.0, MaxSE())
}

func TestDepressionIsMonotonicAcrossRange(t *testing.T) {
	prev := -1.0
	for se := 0.0; se <= MaxSE(); se += 0.7 {
		d, err := DepressionFromSE(se)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, d.FPDSE, prev)
		prev = d.FPDSE
	}
}

func TestTableReturnsCopy(t *testing.T) {
	table := Table()
	table[1].FPD = 99
	d, err := DepressionFromSE(3)
	require.NoError(t, err)
	assert.InDelta(t, 0.18, d.FPDSE, 1e-9)
}
