package thickness

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fringeprofile/internal/models"
)

// TestComputeExample verifies thickness of the first two red fringes
func TestComputeExample(t *testing.T) {
	minima := []models.MinimaRecord{
		{PixelPosition: 2, Order: 0},
		{PixelPosition: 6, Order: 1},
	}
	got := Compute(minima, models.Red, 650, 1.33, 3.09e-5)

	require.Len(t, got, 2)
	require.Equal(t, 0.0, got[0].ThicknessNm)
	require.InDelta(t, 244.36, got[1].ThicknessNm, 0.005)
	require.InDelta(t, 6*3.09e-5, got[1].PositionMeters, 1e-15)
	require.Equal(t, models.Red, got[1].Channel)
	require.Equal(t, 6, got[1].PixelPosition)
	require.Equal(t, 1, got[1].Order)
}

// TestZeroOrderIsZeroThickness verifies order 0 maps to 0 nm for any constants
func TestZeroOrderIsZeroThickness(t *testing.T) {
	for _, lambda := range []float64{400, 532.1, 700} {
		for _, n := range []float64{1.0, 1.33, 2.4} {
			require.Equal(t, 0.0, Thickness(0, lambda, n))
		}
	}
}

// TestComputeEmpty verifies no minima produce no records
func TestComputeEmpty(t *testing.T) {
	require.Empty(t, Compute(nil, models.Green, 550, 1.33, 1))
}

// TestComputeAll verifies each channel uses its own wavelength
func TestComputeAll(t *testing.T) {
	params := models.DefaultParams()
	two := []models.MinimaRecord{{PixelPosition: 3, Order: 0}, {PixelPosition: 9, Order: 1}}
	result := ComputeAll([3][]models.MinimaRecord{two, two, nil}, params)

	require.InDelta(t, 650/2.66, result.Red[1].ThicknessNm, 1e-9)
	require.InDelta(t, 550/2.66, result.Green[1].ThicknessNm, 1e-9)
	require.Empty(t, result.Blue)
	require.Equal(t, 4, result.Len())
	require.Equal(t, models.Green, result.Channel(models.Green)[0].Channel)

	for i := 1; i < len(result.Red); i++ {
		require.Greater(t, result.Red[i].PixelPosition, result.Red[i-1].PixelPosition)
	}
}
