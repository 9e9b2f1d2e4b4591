package sampling

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"fringeprofile/internal/models"
)

// rampImage builds a width x 1 buffer whose red channel is a linear ramp 0..255
func rampImage(width int) *RGBBuffer {
	buf := NewRGBBuffer(width, 1)
	for x := 0; x < width; x++ {
		v := uint8(math.Round(float64(x) * 255 / float64(width-1)))
		buf.Set(x, 0, v, 255-v, 7)
	}
	return buf
}

func segment(x0, y0, x1, y1 float64) models.LineSegment {
	return models.LineSegment{
		Start: &models.Point{X: x0, Y: y0},
		End:   &models.Point{X: x1, Y: y1},
	}
}

// TestSampleRamp verifies sampling a horizontal line across a 10x1 ramp
func TestSampleRamp(t *testing.T) {
	img := rampImage(10)
	profile := Sample(img, segment(0, 0, 9, 0))

	// length 9 -> 9 points, x = round(9*i/8) = 0,1,2,3,5,6,7,8,9
	require.Equal(t, 9, profile.Len())
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, profile.Positions)
	require.Equal(t, []int{0, 28, 57, 85, 142, 170, 198, 227, 255}, profile.Red)
	require.Equal(t, 7, profile.Blue[0])
}

// TestSampleZeroLength verifies a degenerate line yields two identical samples
func TestSampleZeroLength(t *testing.T) {
	img := rampImage(10)
	for _, p := range []models.Point{{X: 0, Y: 0}, {X: 4.4, Y: 0.2}, {X: 9, Y: 0}} {
		p := p
		profile := Sample(img, models.LineSegment{Start: &p, End: &p})
		require.Equal(t, 2, profile.Len())
		require.Equal(t, []int{0, 1}, profile.Positions)
		require.Equal(t, profile.Red[0], profile.Red[1])
		require.Equal(t, profile.Green[0], profile.Green[1])
		require.Equal(t, profile.Blue[0], profile.Blue[1])
	}
}

// TestSampleDropsOutOfBounds verifies out-of-image points leave gaps in positions
func TestSampleDropsOutOfBounds(t *testing.T) {
	img := rampImage(10)

	// x = -5..4 over 10 points; only x>=0 survive
	profile := Sample(img, segment(-5, 0, 4, 0))
	require.Equal(t, NumPoints(segment(-5, 0, 4, 0)), 9)
	for i := 1; i < profile.Len(); i++ {
		require.Greater(t, profile.Positions[i], profile.Positions[i-1])
	}
	require.NotEqual(t, 0, profile.Positions[0])

	// line that leaves and re-enters through the row
	buf := NewRGBBuffer(10, 3)
	line := segment(0, 0, 9, 2.9)
	profile = Sample(buf, line)
	require.LessOrEqual(t, profile.Len(), NumPoints(line))
	require.Less(t, profile.Len(), NumPoints(line))
}

// TestSampleAllOutOfBounds verifies a line entirely off the image yields an empty profile
func TestSampleAllOutOfBounds(t *testing.T) {
	img := rampImage(10)
	profile := Sample(img, segment(20, 20, 40, 40))
	require.Equal(t, 0, profile.Len())
	require.NotNil(t, profile.Positions)
	require.Empty(t, profile.Red)
}

// TestSampleIncompleteLine verifies sampling is skipped without both ends
func TestSampleIncompleteLine(t *testing.T) {
	img := rampImage(10)
	profile := Sample(img, models.LineSegment{Start: &models.Point{}})
	require.Equal(t, 0, profile.Len())
}

// TestSampleBounds verifies sample counts and that every sampled pixel lies in the image
func TestSampleBounds(t *testing.T) {
	buf := NewRGBBuffer(17, 11)
	for y := 0; y < 11; y++ {
		for x := 0; x < 17; x++ {
			buf.Set(x, y, uint8(x), uint8(y), 0)
		}
	}

	lines := []models.LineSegment{
		segment(-3, -3, 20, 14),
		segment(16, 0, 0, 10),
		segment(2.5, 2.5, 2.5, 9.7),
		segment(-0.4, 5, 16.4, 5),
	}
	for _, line := range lines {
		profile := Sample(buf, line)
		require.LessOrEqual(t, profile.Len(), NumPoints(line))
		for i := 0; i < profile.Len(); i++ {
			// red carries x, green carries y
			require.GreaterOrEqual(t, profile.Red[i], 0)
			require.Less(t, profile.Red[i], 17)
			require.Less(t, profile.Green[i], 11)
			if i > 0 {
				require.Greater(t, profile.Positions[i], profile.Positions[i-1])
			}
		}
	}
}

// TestRoundHalfUp verifies rounding of halves toward positive infinity
func TestRoundHalfUp(t *testing.T) {
	require.Equal(t, 5, roundHalfUp(4.5))
	require.Equal(t, -2, roundHalfUp(-2.5))
	require.Equal(t, -1, roundHalfUp(-0.6))
	require.Equal(t, 0, roundHalfUp(-0.4))
}

// TestFromImage verifies decoded images are re-based and converted to 8-bit RGB
func TestFromImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 7))
	src.Set(5, 5, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	src.Set(7, 6, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	buf := FromImage(src)
	require.Equal(t, 3, buf.Width())
	require.Equal(t, 2, buf.Height())

	r, g, b := buf.RGB(0, 0)
	require.Equal(t, []uint8{10, 20, 30}, []uint8{r, g, b})
	r, g, b = buf.RGB(2, 1)
	require.Equal(t, []uint8{200, 100, 50}, []uint8{r, g, b})
}

// TestLoadImage verifies a PNG written to disk decodes back
func TestLoadImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	src.Set(3, 1, color.RGBA{R: 9, G: 8, B: 7, A: 255})

	path := filepath.Join(t.TempDir(), "fringes.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	img, err := LoadImage(path)
	require.NoError(t, err)
	buf := FromImage(img)
	r, g, b := buf.RGB(3, 1)
	require.Equal(t, []uint8{9, 8, 7}, []uint8{r, g, b})

	_, err = LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}
