package planning

import (
	"testing"

	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInverseNormalCDFKnownValues(t *testing.T) {
	cases := []struct {
		p    float64
		want float64
	}{
		{0.5, 0.0},
		{0.95, 1.6449},
		{0.99, 2.3263},
		{0.975, 1.9600},
	}

	for _, tc := range cases {
		z, err := InverseNormalCDF(tc.p)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, z, 1e-4, "p=%v", tc.p)
	}
}

func TestInverseNormalCDFSymmetry(t *testing.T) {
	for _, p := range []float64{0.01, 0.1, 0.25, 0.4} {
		lo, err := InverseNormalCDF(p)
		require.NoError(t, err)
		hi, err := InverseNormalCDF(1.0 - p)
		require.NoError(t, err)
		assert.InDelta(t, -hi, lo, 1e-9)
	}
}

func TestInverseNormalCDFMonotonic(t *testing.T) {
	prev := -1e9
	for p := 0.001; p < 1.0; p += 0.001 {
		z, err := InverseNormalCDF(p)
		require.NoError(t, err)
		assert.Greater(t, z, prev, "p=%v", p)
		prev = z
	}
}

func TestInverseNormalCDFRejectsBounds(t *testing.T) {
	for _, p := range []float64{0.0, 1.0, -0.5, 1.5} {
		_, err := InverseNormalCDF(p)
		require.Error(t, err)
		assert.True(t, faults.IsKind(err, faults.InputValidation))
	}
}
